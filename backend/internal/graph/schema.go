package graph

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bbrillhart19/vapor/backend/pkg/errors"
)

// setupAttempts bounds the verify-act-reverify setup loop so a store that
// never converges fails loudly instead of looping forever.
const setupAttempts = 3

// requiredConstraints is the full uniqueness constraint set the graph
// needs before any population step may run.
var requiredConstraints = map[string]string{
	"user_constraint":  "CREATE CONSTRAINT user_constraint IF NOT EXISTS FOR (u:User) REQUIRE (u.steamId) IS UNIQUE",
	"game_constraint":  "CREATE CONSTRAINT game_constraint IF NOT EXISTS FOR (g:Game) REQUIRE (g.appId) IS UNIQUE",
	"genre_constraint": "CREATE CONSTRAINT genre_constraint IF NOT EXISTS FOR (n:Genre) REQUIRE (n.genreId) IS UNIQUE",
	"chunk_constraint": "CREATE CONSTRAINT chunk_constraint IF NOT EXISTS FOR (c:DescriptionChunk) REQUIRE (c.chunkId) IS UNIQUE",
}

// PrimaryUser returns the Primary-tagged user, the anchor of the crawl.
func (r *Repository) PrimaryUser(ctx context.Context) (*User, error) {
	cypher := `
		MATCH (p:Primary)
		RETURN p.steamId as steamid, p.personaName as personaname
	`
	rows, err := r.Read(ctx, cypher, nil, 1)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.NewPrimaryUserNotFound()
	}
	return &User{
		SteamID:     rowString(rows[0], "steamid"),
		PersonaName: rowString(rows[0], "personaname"),
	}, nil
}

func (r *Repository) setPrimaryUser(ctx context.Context, steamID string) error {
	cypher := `
		MATCH (u:User)
		WHERE u.steamId = $steamid
		SET u:Primary
	`
	return r.Write(ctx, cypher, map[string]any{"steamid": steamID})
}

func (r *Repository) constraintNames(ctx context.Context) (map[string]bool, error) {
	rows, err := r.Read(ctx, "SHOW CONSTRAINTS", nil, 0)
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(rows))
	for _, row := range rows {
		if name := rowString(row, "name"); name != "" {
			names[name] = true
		}
	}
	return names, nil
}

// IsSetup reports whether the graph holds a valid initial state: a
// Primary user plus the full required constraint set. Every population
// operation uses this as its precondition guard.
func (r *Repository) IsSetup(ctx context.Context) (bool, error) {
	if _, err := r.PrimaryUser(ctx); err != nil {
		if _, ok := err.(*errors.ErrPrimaryUserNotFound); ok {
			r.logger.Debug("No primary user found")
			return false, nil
		}
		return false, err
	}

	names, err := r.constraintNames(ctx)
	if err != nil {
		return false, err
	}
	for name := range requiredConstraints {
		if !names[name] {
			r.logger.Debug("Missing constraint", zap.String("constraint", name))
			return false, nil
		}
	}
	return true, nil
}

// SetupFromPrimaryUser ensures the graph's initial state: the primary
// User node with its Primary label and the required uniqueness
// constraints. It is idempotent and convergent; each pass re-checks its
// own postconditions and only acts on what is still missing, up to a
// bounded number of attempts.
func (r *Repository) SetupFromPrimaryUser(ctx context.Context, steamID, personaName string) error {
	var lastErr error
	for attempt := 1; attempt <= setupAttempts; attempt++ {
		ok, err := r.IsSetup(ctx)
		if err != nil {
			return err
		}
		if ok {
			r.logger.Info("Neo4j database is set up and valid")
			return nil
		}

		r.logger.Info("Setting up Neo4j database with valid initial state",
			zap.String("steamid", steamID),
			zap.Int("attempt", attempt),
		)
		if err := r.AddUser(ctx, steamID, personaName); err != nil {
			lastErr = err
			continue
		}
		if err := r.setPrimaryUser(ctx, steamID); err != nil {
			lastErr = err
			continue
		}
		for _, cypher := range requiredConstraints {
			if err := r.Write(ctx, cypher, nil); err != nil {
				lastErr = err
				break
			}
		}
	}

	ok, err := r.IsSetup(ctx)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return errors.NewGraphSetupFailed(setupAttempts, lastErr)
}

// Clear removes all nodes, relationships and constraints from the graph.
// Destructive and unconfirmed; the caller owns that decision.
func (r *Repository) Clear(ctx context.Context) error {
	r.logger.Warn("Removing all nodes, relationships and constraints from the graph")

	if err := r.Write(ctx, "MATCH (n) DETACH DELETE n", nil); err != nil {
		return err
	}

	names, err := r.constraintNames(ctx)
	if err != nil {
		return err
	}
	for name := range names {
		cypher := fmt.Sprintf("DROP CONSTRAINT %s IF EXISTS", name)
		if err := r.Write(ctx, cypher, nil); err != nil {
			return err
		}
	}
	return nil
}
