package populate

import (
	"context"
	"iter"

	"go.uber.org/zap"

	"github.com/bbrillhart19/vapor/backend/internal/chunker"
	"github.com/bbrillhart19/vapor/backend/internal/graph"
	"github.com/bbrillhart19/vapor/backend/internal/steam"
	"github.com/bbrillhart19/vapor/backend/pkg/errors"
	"github.com/bbrillhart19/vapor/backend/pkg/logger"
)

// Field selections pulled from the remote API for each node kind.
var (
	primaryUserFields    = []string{"steamid", "personaname"}
	friendFields         = []string{"steamid", "personaname"}
	ownedGamesFields     = []string{"appid", "name", "playtime_forever"}
	recentlyPlayedFields = []string{"appid", "playtime_2weeks"}
)

// GameService is the remote catalog/social surface the populator crawls.
type GameService interface {
	PrimaryUserDetails(ctx context.Context, fields []string) steam.Record
	UserFriends(ctx context.Context, steamID string, fields []string, limit int) iter.Seq[steam.Record]
	UserOwnedGames(ctx context.Context, steamID string, fields []string, limit int) iter.Seq[steam.Record]
	UserRecentlyPlayedGames(ctx context.Context, steamID string, fields []string, limit int) iter.Seq[steam.Record]
	GameGenres(ctx context.Context, appID int64) []steam.Record
	AboutTheGame(ctx context.Context, appID int64) string
}

// GraphStore is the persistence surface the populator merges into.
type GraphStore interface {
	IsSetup(ctx context.Context) (bool, error)
	SetupFromPrimaryUser(ctx context.Context, steamID, personaName string) error
	Clear(ctx context.Context) error
	PrimaryUser(ctx context.Context) (*graph.User, error)
	AllUsers(ctx context.Context) ([]graph.User, error)
	AddFriends(ctx context.Context, steamID string, friends []map[string]any) error
	AddOwnedGames(ctx context.Context, steamID string, games []map[string]any) error
	UpdateRecentlyPlayedGames(ctx context.Context, steamID string, games []map[string]any) error
	AllGames(ctx context.Context, limit int) ([]graph.Game, error)
	AddGameGenres(ctx context.Context, appID int64, genres []map[string]any) error
	AddGameDescriptions(ctx context.Context, descriptions []map[string]any) error
	GamesWithDescriptions(ctx context.Context, limit int) ([]graph.Game, error)
	SetGameDescriptionEmbeddings(ctx context.Context, appID int64, chunks []map[string]any) error
	SetGameDescriptionVectorIndex(ctx context.Context, dimension int) error
}

// Embedder turns text into fixed-length vectors.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbeddingSize() int
}

// Options selects which population stages run and bounds their work.
type Options struct {
	Hops         int
	Limit        int
	Init         bool
	Delete       bool
	Friends      bool
	Games        bool
	Genres       bool
	Descriptions bool
	Embed        bool
	// TrackVisited short-circuits friend recursion into users already
	// crawled this run. Off by default: merge idempotence already
	// guarantees correctness, this only trades memory for fewer
	// redundant remote calls on path-dense graphs.
	TrackVisited bool
}

// Populator sequences the game service and graph store into full or
// partial population passes. One instance per graph; not safe for
// concurrent Run calls.
type Populator struct {
	steam    GameService
	store    GraphStore
	embedder Embedder
	splitter *chunker.Splitter
	visited  map[string]bool
	logger   *zap.Logger
}

// New wires a Populator. The embedder may be nil when the embed stage
// will not run.
func New(svc GameService, store GraphStore, embedder Embedder) *Populator {
	return &Populator{
		steam:    svc,
		store:    store,
		embedder: embedder,
		splitter: chunker.New(500, 50),
		logger:   logger.Get(),
	}
}

// Run executes the selected stages in their fixed order. An unset-up
// graph is a loud precondition failure; individual stage faults are
// logged at this boundary without aborting the remaining stages.
func (p *Populator) Run(ctx context.Context, opts Options) error {
	if opts.Init {
		p.logger.Info("Retrieving primary user details and setting up...")
		details := p.steam.PrimaryUserDetails(ctx, primaryUserFields)
		steamID, _ := details["steamid"].(string)
		if steamID == "" {
			return errors.NewGraphNotSetup("could not resolve primary user details from Steam")
		}
		personaName, _ := details["personaname"].(string)
		if err := p.store.SetupFromPrimaryUser(ctx, steamID, personaName); err != nil {
			return err
		}
	}

	if opts.Delete {
		return p.store.Clear(ctx)
	}

	ok, err := p.store.IsSetup(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return errors.NewGraphNotSetup("run the populate command with init enabled first")
	}

	if opts.TrackVisited {
		p.visited = make(map[string]bool)
	}

	if opts.Friends {
		p.logger.Info("Populating Steam users from friends lists...")
		if err := p.PopulateFriends(ctx, "", opts.Hops, opts.Limit); err != nil {
			p.logger.Error("Friend population failed", zap.Error(err))
		}
	}

	if opts.Games {
		p.logger.Info("Populating Steam games from available Steam users...")
		if err := p.PopulateGames(ctx, opts.Limit); err != nil {
			p.logger.Error("Game population failed", zap.Error(err))
		}
	}

	if opts.Genres {
		p.logger.Info("Populating genres from available Steam games...")
		if err := p.PopulateGenres(ctx, opts.Limit); err != nil {
			p.logger.Error("Genre population failed", zap.Error(err))
		}
	}

	if opts.Descriptions {
		p.logger.Info("Populating game descriptions from the Steam catalog...")
		if err := p.PopulateGameDescriptions(ctx, opts.Limit); err != nil {
			p.logger.Error("Description population failed", zap.Error(err))
		}
	}

	if opts.Embed {
		p.logger.Info("Embedding game descriptions...")
		if err := p.EmbedGameDescriptions(ctx, opts.Limit); err != nil {
			p.logger.Error("Description embedding failed", zap.Error(err))
		}
	}

	p.logger.Info("Completed population sequence >>>")
	return nil
}

// PopulateFriends discovers users breadth-first from steamID (the
// primary user when empty) down to hops levels, fetching up to limit
// friends per user. Friendship edges are only written while hops > 0,
// but terminal-level users are still recursed into (at hops-1 < 0 the
// recursion returns immediately) so later stages can populate games for
// every discovered user. Revisits are harmless: merges are idempotent,
// an explicit visited set is optional via Options.TrackVisited.
func (p *Populator) PopulateFriends(ctx context.Context, steamID string, hops, limit int) error {
	if hops < 0 {
		return nil
	}

	if steamID == "" {
		primary, err := p.store.PrimaryUser(ctx)
		if err != nil {
			return err
		}
		return p.PopulateFriends(ctx, primary.SteamID, hops, limit)
	}

	if p.visited != nil {
		if p.visited[steamID] {
			return nil
		}
		p.visited[steamID] = true
	}

	friends := collect(p.steam.UserFriends(ctx, steamID, friendFields, limit))

	if hops > 0 {
		p.logger.Info("Adding friends",
			zap.String("steamid", steamID),
			zap.Int("friends", len(friends)),
			zap.Int("hops_remaining", hops),
		)
		if err := p.store.AddFriends(ctx, steamID, friends); err != nil {
			return err
		}
	}

	for _, friend := range friends {
		friendID, _ := friend["steamid"].(string)
		if friendID == "" {
			continue
		}
		if err := p.PopulateFriends(ctx, friendID, hops-1, limit); err != nil {
			return err
		}
	}
	return nil
}

// PopulateGames merges owned games and a full recently-played
// replacement for every user already discovered in the graph.
func (p *Populator) PopulateGames(ctx context.Context, limit int) error {
	users, err := p.store.AllUsers(ctx)
	if err != nil {
		return err
	}
	p.logger.Info("Found users to populate games from", zap.Int("users", len(users)))

	for _, user := range users {
		owned := collect(p.steam.UserOwnedGames(ctx, user.SteamID, ownedGamesFields, limit))
		if err := p.store.AddOwnedGames(ctx, user.SteamID, owned); err != nil {
			return err
		}

		recent := collect(p.steam.UserRecentlyPlayedGames(ctx, user.SteamID, recentlyPlayedFields, limit))
		if err := p.store.UpdateRecentlyPlayedGames(ctx, user.SteamID, recent); err != nil {
			return err
		}
	}
	return nil
}

// PopulateGenres merges genres for every game already in the graph.
func (p *Populator) PopulateGenres(ctx context.Context, limit int) error {
	games, err := p.store.AllGames(ctx, limit)
	if err != nil {
		return err
	}
	p.logger.Info("Found games to populate genres from", zap.Int("games", len(games)))

	for _, game := range games {
		genres := p.steam.GameGenres(ctx, game.AppID)
		if len(genres) == 0 {
			continue
		}
		if err := p.store.AddGameGenres(ctx, game.AppID, genres); err != nil {
			return err
		}
	}
	return nil
}

// PopulateGameDescriptions fetches plain-text descriptions for every
// game already in the graph, one remote call at a time, and stores them
// in one batch. The store endpoint rate limits aggressively; the client
// sleep-retry loop only behaves with a single fetch in flight.
func (p *Populator) PopulateGameDescriptions(ctx context.Context, limit int) error {
	games, err := p.store.AllGames(ctx, limit)
	if err != nil {
		return err
	}
	p.logger.Info("Found games to populate descriptions from", zap.Int("games", len(games)))

	var descriptions []map[string]any
	for _, game := range games {
		text := p.steam.AboutTheGame(ctx, game.AppID)
		if text == "" {
			continue
		}
		descriptions = append(descriptions, map[string]any{
			"appid":          game.AppID,
			"about_the_game": text,
		})
	}
	if len(descriptions) == 0 {
		return nil
	}
	return p.store.AddGameDescriptions(ctx, descriptions)
}

// EmbedGameDescriptions chunks every stored description, embeds the
// chunks, attaches them (replacing any prior chunks per game) and
// finally (re)creates the description vector index sized to the
// embedder's dimensionality. Requires the descriptions stage to have
// run and an embedder to be wired.
func (p *Populator) EmbedGameDescriptions(ctx context.Context, limit int) error {
	if p.embedder == nil {
		return errors.NewEmbeddingModelUnavailable("", nil)
	}

	games, err := p.store.GamesWithDescriptions(ctx, limit)
	if err != nil {
		return err
	}
	p.logger.Info("Found games with descriptions to embed", zap.Int("games", len(games)))

	for _, game := range games {
		chunks := p.splitter.Split(game.AboutTheGame)
		if len(chunks) == 0 {
			continue
		}

		texts := make([]string, len(chunks))
		for i, chunk := range chunks {
			texts[i] = chunk.Text
		}
		vectors, err := p.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return err
		}
		if len(vectors) != len(chunks) {
			return errors.NewEmbeddingFailed("", nil)
		}

		records := make([]map[string]any, len(chunks))
		for i, chunk := range chunks {
			records[i] = map[string]any{
				"chunkid":      chunker.ChunkID(game.AppID, i),
				"source":       game.AppID,
				"text":         chunk.Text,
				"start_index":  chunk.StartIndex,
				"total_length": chunk.TotalLength,
				"embedding":    vectors[i],
			}
		}
		if err := p.store.SetGameDescriptionEmbeddings(ctx, game.AppID, records); err != nil {
			return err
		}
	}

	return p.store.SetGameDescriptionVectorIndex(ctx, p.embedder.EmbeddingSize())
}

func collect(seq iter.Seq[steam.Record]) []steam.Record {
	var records []steam.Record
	for record := range seq {
		records = append(records, record)
	}
	return records
}
