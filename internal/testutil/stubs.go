// Package testutil provides shared test doubles for the coordinator tests.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"socialmesh/internal/models"
)

// EventLogStub is an in-memory event log. Events for a post are returned
// newest first, with later inserts first among equal timestamps.
type EventLogStub struct {
	mu     sync.Mutex
	events map[string][]models.PostEvent
	now    func() time.Time

	// InsertErr and ReadErr, when set, are returned by the matching method.
	InsertErr error
	ReadErr   error
}

// NewEventLogStub creates an empty event log stub.
func NewEventLogStub() *EventLogStub {
	return &EventLogStub{
		events: make(map[string][]models.PostEvent),
		now:    time.Now,
	}
}

// InsertEvent appends an event in-memory.
func (s *EventLogStub) InsertEvent(_ context.Context, postID string, eventType models.EventType, value int, eventTime time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.InsertErr != nil {
		return s.InsertErr
	}
	if eventTime.IsZero() {
		eventTime = s.now()
	}
	s.events[postID] = append(s.events[postID], models.PostEvent{
		PostID:    postID,
		EventTime: eventTime.UTC().Truncate(time.Millisecond),
		EventType: eventType,
		Value:     value,
	})
	return nil
}

// EventsForPost returns up to limit events, newest first.
func (s *EventLogStub) EventsForPost(_ context.Context, postID string, limit int) ([]models.PostEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReadErr != nil {
		return nil, s.ReadErr
	}
	if limit <= 0 {
		limit = 50
	}

	stored := s.events[postID]
	out := make([]models.PostEvent, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		out = append(out, stored[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EventTime.After(out[j].EventTime)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Ping reports ReadErr.
func (s *EventLogStub) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ReadErr
}

// GraphStub is an in-memory graph projection with MERGE semantics.
type GraphStub struct {
	mu    sync.Mutex
	users map[string]string
	posts map[string]models.GraphPost
	edges map[string]map[string]struct{}

	// UserErr, PostErr and ReadErr, when set, are returned by the matching method.
	UserErr error
	PostErr error
	ReadErr error
}

// NewGraphStub creates an empty graph stub.
func NewGraphStub() *GraphStub {
	return &GraphStub{
		users: make(map[string]string),
		posts: make(map[string]models.GraphPost),
		edges: make(map[string]map[string]struct{}),
	}
}

// MergeUserNode creates the user or overwrites its name.
func (s *GraphStub) MergeUserNode(_ context.Context, userID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UserErr != nil {
		return s.UserErr
	}
	s.users[userID] = name
	return nil
}

// MergePostNodeAndRelation upserts the post and links it when the user exists.
func (s *GraphStub) MergePostNodeAndRelation(_ context.Context, post *models.Post) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.PostErr != nil {
		return false, s.PostErr
	}

	hashtags := append([]string{}, post.Hashtags...)
	s.posts[post.PostID] = models.GraphPost{PostID: post.PostID, Content: post.Content, Hashtags: hashtags}

	if _, ok := s.users[post.UserID]; !ok {
		return false, nil
	}
	if s.edges[post.UserID] == nil {
		s.edges[post.UserID] = make(map[string]struct{})
	}
	s.edges[post.UserID][post.PostID] = struct{}{}
	return true, nil
}

// UserPosts returns the linked posts ordered by post_id.
func (s *GraphStub) UserPosts(_ context.Context, userID string) ([]models.GraphPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReadErr != nil {
		return nil, s.ReadErr
	}

	out := make([]models.GraphPost, 0, len(s.edges[userID]))
	for postID := range s.edges[userID] {
		out = append(out, s.posts[postID])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PostID < out[j].PostID })
	return out, nil
}

// UserName returns the stored node name.
func (s *GraphStub) UserName(userID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.users[userID]
	return name, ok
}

// Ping reports ReadErr.
func (s *GraphStub) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ReadErr
}
