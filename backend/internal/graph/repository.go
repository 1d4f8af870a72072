package graph

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/bbrillhart19/vapor/backend/pkg/errors"
	"github.com/bbrillhart19/vapor/backend/pkg/logger"
)

const (
	// connectAttempts bounds the startup connectivity retry. This is the
	// one place a transient infrastructure fault is actively retried.
	connectAttempts = 5
	connectInterval = 2 * time.Second
)

// Repository handles all Neo4j database operations for the Steam graph
type Repository struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *zap.Logger
}

// NewRepository creates a repository over an existing driver, verifying
// connectivity with a bounded retry before returning. The caller keeps
// ownership of the driver; Close releases it.
func NewRepository(ctx context.Context, driver neo4j.DriverWithContext, database string) (*Repository, error) {
	r := &Repository{
		driver:   driver,
		database: database,
		logger:   logger.Get(),
	}

	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		if err = driver.VerifyConnectivity(ctx); err == nil {
			return r, nil
		}
		r.logger.Warn("Neo4j not reachable yet",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt < connectAttempts {
			time.Sleep(connectInterval)
		}
	}

	target := driver.Target()
	return nil, errors.NewGraphConnectionFailed(target.String(), connectAttempts, err)
}

// Connect creates a driver from connection parameters and returns a
// verified repository over it.
func Connect(ctx context.Context, uri, user, password, database string) (*Repository, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, errors.NewGraphConnectionFailed(uri, 0, err)
	}
	repo, err := NewRepository(ctx, driver, database)
	if err != nil {
		_ = driver.Close(ctx)
		return nil, err
	}
	return repo, nil
}

// Close closes the Neo4j driver connection
func (r *Repository) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}

// Write runs the cypher query in a write session. Every mutating
// operation in this package is built on it.
func (r *Repository) Write(ctx context.Context, cypher string, params map[string]any) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: r.database,
	})
	defer session.Close(ctx)

	result, err := session.Run(ctx, cypher, params)
	if err != nil {
		return errors.NewGraphQueryFailed(cypher, err)
	}
	if _, err := result.Consume(ctx); err != nil {
		return errors.NewGraphQueryFailed(cypher, err)
	}
	return nil
}

// Read runs the cypher query in a read session and returns the result as
// tabular rows keyed by the query's return aliases. A limit > 0 caps the
// number of rows collected.
func (r *Repository) Read(ctx context.Context, cypher string, params map[string]any, limit int) ([]map[string]any, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: r.database,
	})
	defer session.Close(ctx)

	result, err := session.Run(ctx, cypher, params)
	if err != nil {
		return nil, errors.NewGraphQueryFailed(cypher, err)
	}

	var rows []map[string]any
	for result.Next(ctx) {
		rows = append(rows, result.Record().AsMap())
		if limit > 0 && len(rows) >= limit {
			break
		}
	}
	if err := result.Err(); err != nil {
		return nil, errors.NewGraphQueryFailed(cypher, err)
	}
	return rows, nil
}
