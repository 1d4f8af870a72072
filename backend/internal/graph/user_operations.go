package graph

import (
	"context"

	"go.uber.org/zap"
)

// AddUser merges a User node by steamId, overwriting personaName with
// the latest value. Re-running is safe.
func (r *Repository) AddUser(ctx context.Context, steamID, personaName string) error {
	cypher := `
		MERGE (u:User {steamId: $steamid})
		SET u.personaName = $personaname
	`
	return r.Write(ctx, cypher, map[string]any{
		"steamid":     steamID,
		"personaname": personaName,
	})
}

// AddFriends merges each friend record as a User node and an undirected
// friendship edge to the subject user. Friend records require a steamid
// (dropped otherwise) and default a missing personaname to "Unavailable".
// A defaulted personaname never replaces a real one already stored.
func (r *Repository) AddFriends(ctx context.Context, steamID string, friends []map[string]any) error {
	validated := ValidateFields(friends, map[string]any{
		"steamid":     Required,
		"personaname": "Unavailable",
	})
	if dropped := len(friends) - len(validated); dropped > 0 {
		r.logger.Debug("Dropped friend records missing steamid",
			zap.String("steamid", steamID),
			zap.Int("dropped", dropped),
		)
	}

	cypher := `
		MATCH (u:User {steamId: $steamid})
		UNWIND $friends AS friend
		MERGE (f:User {steamId: friend.steamid})
		SET f.personaName = CASE
			WHEN friend.personaname <> 'Unavailable' THEN friend.personaname
			ELSE coalesce(f.personaName, friend.personaname)
		END
		MERGE (u)-[:HAS_FRIEND]-(f)
	`
	return r.Write(ctx, cypher, map[string]any{
		"steamid": steamID,
		"friends": validated,
	})
}

// AllUsers returns every user currently in the graph.
func (r *Repository) AllUsers(ctx context.Context) ([]User, error) {
	cypher := `
		MATCH (u:User)
		RETURN u.steamId as steamid, u.personaName as personaname
	`
	rows, err := r.Read(ctx, cypher, nil, 0)
	if err != nil {
		return nil, err
	}

	users := make([]User, 0, len(rows))
	for _, row := range rows {
		users = append(users, User{
			SteamID:     rowString(row, "steamid"),
			PersonaName: rowString(row, "personaname"),
		})
	}
	return users, nil
}
