// Package bootstrap connects the backing stores and assembles the coordinator.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"socialmesh/internal/cache"
	"socialmesh/internal/config"
	"socialmesh/internal/database"
	"socialmesh/internal/eventlog"
	"socialmesh/internal/graph"
	"socialmesh/internal/repository"
	"socialmesh/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrStartupConnectivity wraps any store that could not be reached at boot.
var ErrStartupConnectivity = errors.New("startup connectivity")

// Runtime owns the process-wide store clients.
type Runtime struct {
	DB          *gorm.DB
	Redis       *redis.Client
	Events      *eventlog.Store
	Graph       *graph.Neo4jExecutor
	Coordinator *service.Coordinator
}

// InitRuntime connects all four stores in order. Any failure closes what was
// already opened and returns an error wrapping ErrStartupConnectivity.
func InitRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	rt := &Runtime{}

	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: record store: %w", ErrStartupConnectivity, err)
	}
	rt.DB = db

	rdb, err := cache.Connect(ctx, cfg)
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("%w: cache: %w", ErrStartupConnectivity, err)
	}
	rt.Redis = rdb

	events, err := eventlog.Connect(ctx, cfg)
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("%w: event log: %w", ErrStartupConnectivity, err)
	}
	rt.Events = events

	g, err := graph.Connect(ctx, cfg)
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("%w: graph: %w", ErrStartupConnectivity, err)
	}
	rt.Graph = g

	rt.Coordinator = service.NewCoordinator(
		repository.NewRecordRepository(db),
		cache.NewStore(rdb, cfg.PostCacheTTL),
		events,
		graph.NewStore(g),
		cfg.StoreOpTimeout,
	)
	return rt, nil
}

// Close releases every client that was opened. It is safe on a partially
// initialized Runtime.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	if rt.Graph != nil {
		errs = append(errs, rt.Graph.Close(ctx))
	}
	if rt.Events != nil {
		rt.Events.Close()
	}
	if rt.Redis != nil {
		errs = append(errs, rt.Redis.Close())
	}
	if rt.DB != nil {
		if sqlDB, err := rt.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}
