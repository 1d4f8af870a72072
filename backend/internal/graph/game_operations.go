package graph

import (
	"context"

	"go.uber.org/zap"
)

// AddOwnedGames merges Game nodes and OWNS_GAME edges carrying total
// playtime for the user. Game records require an appid; name and
// playtime_forever are optional with zero-value defaults.
func (r *Repository) AddOwnedGames(ctx context.Context, steamID string, games []map[string]any) error {
	validated := ValidateFields(games, map[string]any{
		"appid":            Required,
		"name":             "",
		"playtime_forever": 0,
	})

	cypher := `
		MATCH (u:User {steamId: $steamid})
		UNWIND $games AS game
		MERGE (g:Game {appId: game.appid})
		SET g.name = CASE WHEN game.name <> '' THEN game.name ELSE g.name END
		MERGE (u)-[r:OWNS_GAME]->(g)
		SET r.playtime = game.playtime_forever
	`
	return r.Write(ctx, cypher, map[string]any{
		"steamid": steamID,
		"games":   validated,
	})
}

// UpdateRecentlyPlayedGames replaces the user's RECENTLY_PLAYED edge set
// with the provided snapshot: existing edges are deleted first, then the
// validated input is merged. An edge absent from the input does not
// survive the sync.
func (r *Repository) UpdateRecentlyPlayedGames(ctx context.Context, steamID string, games []map[string]any) error {
	deleteCypher := `
		MATCH (u:User {steamId: $steamid})-[r:RECENTLY_PLAYED]->(:Game)
		DELETE r
	`
	if err := r.Write(ctx, deleteCypher, map[string]any{"steamid": steamID}); err != nil {
		return err
	}

	validated := ValidateFields(games, map[string]any{
		"appid":           Required,
		"playtime_2weeks": 0,
	})

	cypher := `
		MATCH (u:User {steamId: $steamid})
		UNWIND $games AS game
		MERGE (g:Game {appId: game.appid})
		MERGE (u)-[r:RECENTLY_PLAYED]->(g)
		SET r.recentPlaytime = game.playtime_2weeks
	`
	return r.Write(ctx, cypher, map[string]any{
		"steamid": steamID,
		"games":   validated,
	})
}

// RecentlyPlayedGames returns the user's current recently-played snapshot.
func (r *Repository) RecentlyPlayedGames(ctx context.Context, steamID string) ([]RecentlyPlayedGame, error) {
	cypher := `
		MATCH (u:User {steamId: $steamid})-[r:RECENTLY_PLAYED]->(g:Game)
		RETURN g.appId as appid, g.name as name, r.recentPlaytime as playtime_2weeks
	`
	rows, err := r.Read(ctx, cypher, map[string]any{"steamid": steamID}, 0)
	if err != nil {
		return nil, err
	}

	games := make([]RecentlyPlayedGame, 0, len(rows))
	for _, row := range rows {
		games = append(games, RecentlyPlayedGame{
			Game: Game{
				AppID: rowInt64(row, "appid"),
				Name:  rowString(row, "name"),
			},
			RecentPlaytime: rowInt64(row, "playtime_2weeks"),
		})
	}
	return games, nil
}

// AddGameGenres merges Genre nodes keyed by integer id and HAS_GENRE
// edges from the game. Genre records require both id and description.
func (r *Repository) AddGameGenres(ctx context.Context, appID int64, genres []map[string]any) error {
	validated := ValidateFields(genres, map[string]any{
		"id":          Required,
		"description": Required,
	})
	if dropped := len(genres) - len(validated); dropped > 0 {
		r.logger.Debug("Dropped malformed genre records",
			zap.Int64("appid", appID),
			zap.Int("dropped", dropped),
		)
	}

	cypher := `
		MATCH (g:Game {appId: $appid})
		UNWIND $genres AS genre
		MERGE (n:Genre {genreId: genre.id})
		SET n.description = genre.description
		MERGE (g)-[:HAS_GENRE]->(n)
	`
	return r.Write(ctx, cypher, map[string]any{
		"appid":  appID,
		"genres": validated,
	})
}

// AddGameDescriptions sets the aboutTheGame text for a batch of games.
// Entries failing validation are skipped.
func (r *Repository) AddGameDescriptions(ctx context.Context, descriptions []map[string]any) error {
	validated := ValidateFields(descriptions, map[string]any{
		"appid":          Required,
		"about_the_game": Required,
	})

	cypher := `
		UNWIND $descriptions AS description
		MATCH (g:Game {appId: description.appid})
		SET g.aboutTheGame = description.about_the_game
	`
	return r.Write(ctx, cypher, map[string]any{"descriptions": validated})
}

// GameDescription returns the stored aboutTheGame text for a game, or
// empty if none has been populated.
func (r *Repository) GameDescription(ctx context.Context, appID int64) (string, error) {
	cypher := `
		MATCH (g:Game {appId: $appid})
		RETURN g.aboutTheGame as about_the_game
	`
	rows, err := r.Read(ctx, cypher, map[string]any{"appid": appID}, 1)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", nil
	}
	return rowString(rows[0], "about_the_game"), nil
}

// AllGames returns every game currently in the graph, optionally capped.
func (r *Repository) AllGames(ctx context.Context, limit int) ([]Game, error) {
	cypher := `
		MATCH (g:Game)
		RETURN g.appId as appid, g.name as name
	`
	rows, err := r.Read(ctx, cypher, nil, limit)
	if err != nil {
		return nil, err
	}

	games := make([]Game, 0, len(rows))
	for _, row := range rows {
		games = append(games, Game{
			AppID: rowInt64(row, "appid"),
			Name:  rowString(row, "name"),
		})
	}
	return games, nil
}

// GamesWithDescriptions returns games that have a stored description,
// including the description text.
func (r *Repository) GamesWithDescriptions(ctx context.Context, limit int) ([]Game, error) {
	cypher := `
		MATCH (g:Game)
		WHERE g.aboutTheGame IS NOT NULL AND g.aboutTheGame <> ''
		RETURN g.appId as appid, g.name as name, g.aboutTheGame as about_the_game
	`
	rows, err := r.Read(ctx, cypher, nil, limit)
	if err != nil {
		return nil, err
	}

	games := make([]Game, 0, len(rows))
	for _, row := range rows {
		games = append(games, Game{
			AppID:        rowInt64(row, "appid"),
			Name:         rowString(row, "name"),
			AboutTheGame: rowString(row, "about_the_game"),
		})
	}
	return games, nil
}
