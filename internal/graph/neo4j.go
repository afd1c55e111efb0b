// Package graph keeps the User/Post relationship projection in Neo4j.
package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"socialmesh/internal/config"
	"socialmesh/internal/middleware"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Runner executes one Cypher statement and buffers the result.
type Runner interface {
	Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error)
}

// Neo4jExecutor is the driver-backed Runner.
type Neo4jExecutor struct {
	Driver neo4j.DriverWithContext
	DBName string
}

// NewNeo4jExecutor creates a driver. It does not contact the server.
func NewNeo4jExecutor(uri, username, password, dbName string) (*Neo4jExecutor, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("could not create neo4j driver: %w", err)
	}
	return &Neo4jExecutor{Driver: driver, DBName: dbName}, nil
}

// Run executes query in a managed transaction against DBName.
func (e *Neo4jExecutor) Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(
		ctx,
		e.Driver,
		query,
		params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(e.DBName),
	)
	if err != nil {
		return nil, fmt.Errorf("error executing neo4j query: %w", err)
	}
	return result, nil
}

// Verify checks connectivity to the server.
func (e *Neo4jExecutor) Verify(ctx context.Context) error {
	return e.Driver.VerifyConnectivity(ctx)
}

// Close releases the driver's connection pool.
func (e *Neo4jExecutor) Close(ctx context.Context) error {
	return e.Driver.Close(ctx)
}

// Connect builds an executor and verifies it, retrying with a fixed delay.
func Connect(ctx context.Context, cfg *config.Config) (*Neo4jExecutor, error) {
	var exec *Neo4jExecutor
	err := retry(ctx, cfg.Neo4jConnectRetries, cfg.Neo4jRetryDelay, func(ctx context.Context) error {
		e, err := NewNeo4jExecutor(cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase)
		if err != nil {
			return err
		}
		if err := e.Verify(ctx); err != nil {
			_ = e.Close(ctx)
			return err
		}
		exec = e
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cannot initialize neo4j: %w", err)
	}

	middleware.Logger.Info("Neo4j connected successfully", "uri", cfg.Neo4jURI)
	return exec, nil
}

// retry calls fn up to attempts times, sleeping delay between failures.
func retry(ctx context.Context, attempts int, delay time.Duration, fn func(context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var errs []error
	for i := 1; i <= attempts; i++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
		middleware.Logger.Warn("Neo4j connection attempt failed",
			"attempt", i, "max_attempts", attempts, "error", err)

		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Join(append(errs, ctx.Err())...)
		case <-time.After(delay):
		}
	}
	return errors.Join(errs...)
}
