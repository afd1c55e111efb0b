// Package service coordinates writes and reads across the four backing stores.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"socialmesh/internal/middleware"
	"socialmesh/internal/models"
	"socialmesh/internal/observability"
)

const (
	// TrendingLimit is the fixed size of the trending read.
	TrendingLimit = 10
	// MaxEvents caps every event log read.
	MaxEvents = 50
	// DefaultStepTimeout bounds a single store call when none is configured.
	DefaultStepTimeout = 5 * time.Second
)

// RecordStore is the authoritative user and post store.
type RecordStore interface {
	UpsertUser(ctx context.Context, userID, name string) (*models.User, error)
	UpsertPost(ctx context.Context, postID, userID, content string, hashtags []string) (*models.Post, error)
	ListPostsByUser(ctx context.Context, userID string) ([]models.Post, error)
	IncrementLikes(ctx context.Context, postID string) (bool, error)
	Ping(ctx context.Context) error
}

// PostCache holds post snapshots and the trending ranking.
type PostCache interface {
	CachePost(ctx context.Context, post *models.Post) error
	GetCachedPost(ctx context.Context, postID string) (*models.Post, error)
	IncrementRanking(ctx context.Context, postID string, delta float64) error
	TopRanked(ctx context.Context, n int) ([]models.TrendingEntry, error)
	Ping(ctx context.Context) error
}

// EventLog is the append-only post event stream.
type EventLog interface {
	InsertEvent(ctx context.Context, postID string, eventType models.EventType, value int, eventTime time.Time) error
	EventsForPost(ctx context.Context, postID string, limit int) ([]models.PostEvent, error)
	Ping(ctx context.Context) error
}

// Graph is the User/Post relationship projection.
type Graph interface {
	MergeUserNode(ctx context.Context, userID, name string) error
	MergePostNodeAndRelation(ctx context.Context, post *models.Post) (bool, error)
	UserPosts(ctx context.Context, userID string) ([]models.GraphPost, error)
	Ping(ctx context.Context) error
}

// Coordinator runs each operation as an ordered sequence of store calls.
// It holds no mutable state and is safe for concurrent use.
type Coordinator struct {
	records     RecordStore
	cache       PostCache
	events      EventLog
	graph       Graph
	stepTimeout time.Duration
	logger      *slog.Logger
}

// NewCoordinator wires the four stores. A non-positive stepTimeout selects
// DefaultStepTimeout.
func NewCoordinator(records RecordStore, cache PostCache, events EventLog, graph Graph, stepTimeout time.Duration) *Coordinator {
	if stepTimeout <= 0 {
		stepTimeout = DefaultStepTimeout
	}
	return &Coordinator{
		records:     records,
		cache:       cache,
		events:      events,
		graph:       graph,
		stepTimeout: stepTimeout,
		logger:      middleware.Logger,
	}
}

// call runs fn under the per-step timeout with a span and latency metrics.
func (c *Coordinator) call(ctx context.Context, store, op string, fn func(context.Context) error) (err error) {
	ctx, cancel := context.WithTimeout(ctx, c.stepTimeout)
	defer cancel()

	ctx, span := observability.StartStoreSpan(ctx, store, op)
	track := observability.TrackStoreOperation(store, op)
	defer func() {
		var skipped *skipError
		if errors.As(err, &skipped) {
			track(nil)
			observability.EndSpan(span, nil)
			return
		}
		track(err)
		observability.EndSpan(span, err)
	}()

	return fn(ctx)
}

// read runs a single read step and wraps any failure.
func (c *Coordinator) read(ctx context.Context, op, store, step string, fn func(context.Context) error) error {
	if err := c.call(ctx, store, step, fn); err != nil {
		return &StoreError{Op: op, Store: store, Err: err}
	}
	return nil
}

// StoreHealth is the ping result for one store.
type StoreHealth struct {
	Store string `json:"store"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Health pings every store. healthy is false when any ping failed.
func (c *Coordinator) Health(ctx context.Context) (healthy bool, stores []StoreHealth) {
	checks := []struct {
		store string
		ping  func(context.Context) error
	}{
		{StoreRecord, c.records.Ping},
		{StoreCache, c.cache.Ping},
		{StoreEventLog, c.events.Ping},
		{StoreGraph, c.graph.Ping},
	}

	healthy = true
	for _, check := range checks {
		h := StoreHealth{Store: check.store, OK: true}
		if err := c.call(ctx, check.store, "ping", check.ping); err != nil {
			healthy = false
			h.OK = false
			h.Error = err.Error()
		}
		stores = append(stores, h)
	}
	return healthy, stores
}
