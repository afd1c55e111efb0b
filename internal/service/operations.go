package service

import (
	"context"
	"strings"
	"time"

	"socialmesh/internal/models"
)

// Operation names used in saga outcomes and metrics.
const (
	OpCreateUser    = "create_user"
	OpCreatePost    = "create_post"
	OpLikePost      = "like_post"
	OpReadPost      = "read_post"
	OpReadTrending  = "read_trending"
	OpReadUserPosts = "read_user_posts"
	OpPostEvents    = "post_events"
)

type CreateUserInput struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

type CreateUserResult struct {
	User    *models.User
	Outcome Outcome
}

type CreatePostInput struct {
	PostID   string   `json:"post_id"`
	UserID   string   `json:"user_id"`
	Content  string   `json:"content"`
	Hashtags []string `json:"hashtags"`
}

type CreatePostResult struct {
	Post    *models.Post
	Outcome Outcome
}

type LikePostResult struct {
	PostID  string
	Outcome Outcome
}

// PostView merges the cached snapshot with the post's recent events. Cached
// is nil on a cache miss; the record store is not consulted.
type PostView struct {
	Cached      *models.Post       `json:"cached"`
	EventsCount int                `json:"events_count"`
	Events      []models.PostEvent `json:"events"`
}

// UserPosts holds the record-store and graph views of a user's posts side
// by side. They are not reconciled and may differ.
type UserPosts struct {
	MongoPosts []models.Post      `json:"mongo_posts"`
	GraphPosts []models.GraphPost `json:"graph_posts"`
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// CreateUser stores the user record, then projects the user node into the
// graph. The record insert is the commit point: if it fails nothing else
// runs. A graph failure leaves the record in place and yields OutcomePartial.
func (c *Coordinator) CreateUser(ctx context.Context, in CreateUserInput) (*CreateUserResult, error) {
	if blank(in.UserID) || blank(in.Name) {
		return nil, models.NewValidationError("user_id and name are required")
	}

	s := c.newSaga(OpCreateUser)

	var user *models.User
	if err := s.run(ctx, StoreRecord, "upsert_user", func(ctx context.Context) (err error) {
		user, err = c.records.UpsertUser(ctx, in.UserID, in.Name)
		return err
	}); err != nil {
		s.finish(false)
		return nil, err
	}

	_ = s.run(ctx, StoreGraph, "merge_user_node", func(ctx context.Context) error {
		return c.graph.MergeUserNode(ctx, in.UserID, in.Name)
	})

	return &CreateUserResult{User: user, Outcome: s.finish(true)}, nil
}

// CreatePost stores the post record and then attempts every projection in
// order: cache snapshot, create event, zero ranking seed, graph node and
// edge. Projections run even when an earlier one failed. A missing user
// node in the graph skips the edge without failing the step.
func (c *Coordinator) CreatePost(ctx context.Context, in CreatePostInput) (*CreatePostResult, error) {
	if blank(in.PostID) || blank(in.UserID) || blank(in.Content) {
		return nil, models.NewValidationError("post_id, user_id and content are required")
	}

	s := c.newSaga(OpCreatePost)

	var post *models.Post
	if err := s.run(ctx, StoreRecord, "upsert_post", func(ctx context.Context) (err error) {
		post, err = c.records.UpsertPost(ctx, in.PostID, in.UserID, in.Content, in.Hashtags)
		return err
	}); err != nil {
		s.finish(false)
		return nil, err
	}

	_ = s.run(ctx, StoreCache, "cache_post", func(ctx context.Context) error {
		return c.cache.CachePost(ctx, post)
	})
	_ = s.run(ctx, StoreEventLog, "insert_create_event", func(ctx context.Context) error {
		return c.events.InsertEvent(ctx, post.PostID, models.EventTypeCreate, 1, time.Time{})
	})
	_ = s.run(ctx, StoreRanking, "seed_ranking", func(ctx context.Context) error {
		return c.cache.IncrementRanking(ctx, post.PostID, 0)
	})
	_ = s.run(ctx, StoreGraph, "merge_post_node", func(ctx context.Context) error {
		linked, err := c.graph.MergePostNodeAndRelation(ctx, post)
		if err != nil {
			return err
		}
		if !linked {
			return skip("user node " + post.UserID + " not found, relation not created")
		}
		return nil
	})

	return &CreatePostResult{Post: post, Outcome: s.finish(true)}, nil
}

// LikePost adds one to the trending score, appends a like event and bumps
// the canonical like counter. The ranking increment is the commit point. An
// unknown post in the record store skips the counter step.
func (c *Coordinator) LikePost(ctx context.Context, postID string) (*LikePostResult, error) {
	if blank(postID) {
		return nil, models.NewValidationError("post_id is required")
	}

	s := c.newSaga(OpLikePost)

	if err := s.run(ctx, StoreRanking, "increment_ranking", func(ctx context.Context) error {
		return c.cache.IncrementRanking(ctx, postID, 1)
	}); err != nil {
		s.finish(false)
		return nil, err
	}

	_ = s.run(ctx, StoreEventLog, "insert_like_event", func(ctx context.Context) error {
		return c.events.InsertEvent(ctx, postID, models.EventTypeLike, 1, time.Time{})
	})
	_ = s.run(ctx, StoreRecord, "increment_likes", func(ctx context.Context) error {
		found, err := c.records.IncrementLikes(ctx, postID)
		if err != nil {
			return err
		}
		if !found {
			return skip("post " + postID + " not in record store")
		}
		return nil
	})

	return &LikePostResult{PostID: postID, Outcome: s.finish(true)}, nil
}

// ReadPost returns the cached snapshot (nil when absent or expired) and up
// to MaxEvents events, newest first.
func (c *Coordinator) ReadPost(ctx context.Context, postID string) (*PostView, error) {
	if blank(postID) {
		return nil, models.NewValidationError("post_id is required")
	}

	view := &PostView{}
	if err := c.read(ctx, OpReadPost, StoreCache, "get_cached_post", func(ctx context.Context) (err error) {
		view.Cached, err = c.cache.GetCachedPost(ctx, postID)
		return err
	}); err != nil {
		return nil, err
	}
	if err := c.read(ctx, OpReadPost, StoreEventLog, "events_for_post", func(ctx context.Context) (err error) {
		view.Events, err = c.events.EventsForPost(ctx, postID, MaxEvents)
		return err
	}); err != nil {
		return nil, err
	}

	if view.Events == nil {
		view.Events = []models.PostEvent{}
	}
	view.EventsCount = len(view.Events)
	return view, nil
}

// ReadTrending returns the TrendingLimit highest-scored posts.
func (c *Coordinator) ReadTrending(ctx context.Context) ([]models.TrendingEntry, error) {
	var entries []models.TrendingEntry
	if err := c.read(ctx, OpReadTrending, StoreRanking, "top_ranked", func(ctx context.Context) (err error) {
		entries, err = c.cache.TopRanked(ctx, TrendingLimit)
		return err
	}); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.TrendingEntry{}
	}
	return entries, nil
}

// ReadUserPosts lists the user's posts from the record store and from the
// graph.
func (c *Coordinator) ReadUserPosts(ctx context.Context, userID string) (*UserPosts, error) {
	if blank(userID) {
		return nil, models.NewValidationError("user_id is required")
	}

	out := &UserPosts{}
	if err := c.read(ctx, OpReadUserPosts, StoreRecord, "list_posts_by_user", func(ctx context.Context) (err error) {
		out.MongoPosts, err = c.records.ListPostsByUser(ctx, userID)
		return err
	}); err != nil {
		return nil, err
	}
	if err := c.read(ctx, OpReadUserPosts, StoreGraph, "user_posts", func(ctx context.Context) (err error) {
		out.GraphPosts, err = c.graph.UserPosts(ctx, userID)
		return err
	}); err != nil {
		return nil, err
	}

	if out.MongoPosts == nil {
		out.MongoPosts = []models.Post{}
	}
	if out.GraphPosts == nil {
		out.GraphPosts = []models.GraphPost{}
	}
	return out, nil
}

// PostEvents returns the raw event list for a post. limit is clamped to
// [1, MaxEvents].
func (c *Coordinator) PostEvents(ctx context.Context, postID string, limit int) ([]models.PostEvent, error) {
	if blank(postID) {
		return nil, models.NewValidationError("post_id is required")
	}
	limit = min(max(limit, 1), MaxEvents)

	var events []models.PostEvent
	if err := c.read(ctx, OpPostEvents, StoreEventLog, "events_for_post", func(ctx context.Context) (err error) {
		events, err = c.events.EventsForPost(ctx, postID, limit)
		return err
	}); err != nil {
		return nil, err
	}
	if events == nil {
		events = []models.PostEvent{}
	}
	return events, nil
}
