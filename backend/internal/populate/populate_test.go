package populate

import (
	"context"
	"iter"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbrillhart19/vapor/backend/internal/graph"
	"github.com/bbrillhart19/vapor/backend/internal/steam"
	"github.com/bbrillhart19/vapor/backend/pkg/errors"
)

// fakeGameService serves a canned social graph and catalog.
type fakeGameService struct {
	primary      steam.Record
	friends      map[string][]steam.Record
	ownedGames   map[string][]steam.Record
	recentGames  map[string][]steam.Record
	genres       map[int64][]steam.Record
	descriptions map[int64]string

	friendCalls map[string]int

	mu              sync.Mutex
	descInFlight    int
	maxDescInFlight int
}

func seqOf(records []steam.Record, limit int) iter.Seq[steam.Record] {
	return func(yield func(steam.Record) bool) {
		for i, r := range records {
			if limit > 0 && i >= limit {
				return
			}
			if !yield(r) {
				return
			}
		}
	}
}

func (f *fakeGameService) PrimaryUserDetails(ctx context.Context, fields []string) steam.Record {
	return f.primary
}

func (f *fakeGameService) UserFriends(ctx context.Context, steamID string, fields []string, limit int) iter.Seq[steam.Record] {
	if f.friendCalls == nil {
		f.friendCalls = make(map[string]int)
	}
	f.friendCalls[steamID]++
	return seqOf(f.friends[steamID], limit)
}

func (f *fakeGameService) UserOwnedGames(ctx context.Context, steamID string, fields []string, limit int) iter.Seq[steam.Record] {
	return seqOf(f.ownedGames[steamID], limit)
}

func (f *fakeGameService) UserRecentlyPlayedGames(ctx context.Context, steamID string, fields []string, limit int) iter.Seq[steam.Record] {
	return seqOf(f.recentGames[steamID], limit)
}

func (f *fakeGameService) GameGenres(ctx context.Context, appID int64) []steam.Record {
	return f.genres[appID]
}

func (f *fakeGameService) AboutTheGame(ctx context.Context, appID int64) string {
	f.mu.Lock()
	f.descInFlight++
	if f.descInFlight > f.maxDescInFlight {
		f.maxDescInFlight = f.descInFlight
	}
	f.mu.Unlock()

	// Hold the call open long enough for overlapping fetches to show up
	time.Sleep(time.Millisecond)

	f.mu.Lock()
	f.descInFlight--
	f.mu.Unlock()
	return f.descriptions[appID]
}

// memoryStore is an in-memory GraphStore capturing every merge.
type memoryStore struct {
	setup   bool
	primary *graph.User
	users   map[string]string

	friendEdges  map[string][]string
	ownedGames   map[string][]map[string]any
	recentGames  map[string][]map[string]any
	games        map[int64]*graph.Game
	genres       map[int64][]map[string]any
	chunks       map[int64][]map[string]any
	indexDim     int
	indexCreated int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:       map[string]string{},
		friendEdges: map[string][]string{},
		ownedGames:  map[string][]map[string]any{},
		recentGames: map[string][]map[string]any{},
		games:       map[int64]*graph.Game{},
		genres:      map[int64][]map[string]any{},
		chunks:      map[int64][]map[string]any{},
	}
}

func (s *memoryStore) IsSetup(ctx context.Context) (bool, error) {
	return s.setup, nil
}

func (s *memoryStore) SetupFromPrimaryUser(ctx context.Context, steamID, personaName string) error {
	s.setup = true
	s.primary = &graph.User{SteamID: steamID, PersonaName: personaName}
	s.users[steamID] = personaName
	return nil
}

func (s *memoryStore) Clear(ctx context.Context) error {
	*s = *newMemoryStore()
	return nil
}

func (s *memoryStore) PrimaryUser(ctx context.Context) (*graph.User, error) {
	if s.primary == nil {
		return nil, errors.NewPrimaryUserNotFound()
	}
	return s.primary, nil
}

func (s *memoryStore) AllUsers(ctx context.Context) ([]graph.User, error) {
	users := make([]graph.User, 0, len(s.users))
	for id, name := range s.users {
		users = append(users, graph.User{SteamID: id, PersonaName: name})
	}
	return users, nil
}

func (s *memoryStore) AddFriends(ctx context.Context, steamID string, friends []map[string]any) error {
	for _, friend := range graph.ValidateFields(friends, map[string]any{
		"steamid":     graph.Required,
		"personaname": "Unavailable",
	}) {
		friendID := friend["steamid"].(string)
		s.users[friendID] = friend["personaname"].(string)
		s.friendEdges[steamID] = append(s.friendEdges[steamID], friendID)
	}
	return nil
}

func (s *memoryStore) AddOwnedGames(ctx context.Context, steamID string, games []map[string]any) error {
	validated := graph.ValidateFields(games, map[string]any{
		"appid":            graph.Required,
		"name":             "",
		"playtime_forever": 0,
	})
	s.ownedGames[steamID] = append(s.ownedGames[steamID], validated...)
	for _, game := range validated {
		appID := game["appid"].(int64)
		if s.games[appID] == nil {
			s.games[appID] = &graph.Game{AppID: appID}
		}
		if name, _ := game["name"].(string); name != "" {
			s.games[appID].Name = name
		}
	}
	return nil
}

func (s *memoryStore) UpdateRecentlyPlayedGames(ctx context.Context, steamID string, games []map[string]any) error {
	// Full replacement, matching the graph semantics
	s.recentGames[steamID] = graph.ValidateFields(games, map[string]any{
		"appid":           graph.Required,
		"playtime_2weeks": 0,
	})
	return nil
}

func (s *memoryStore) AllGames(ctx context.Context, limit int) ([]graph.Game, error) {
	games := make([]graph.Game, 0, len(s.games))
	for _, game := range s.games {
		if limit > 0 && len(games) >= limit {
			break
		}
		games = append(games, *game)
	}
	return games, nil
}

func (s *memoryStore) AddGameGenres(ctx context.Context, appID int64, genres []map[string]any) error {
	s.genres[appID] = append(s.genres[appID], genres...)
	return nil
}

func (s *memoryStore) AddGameDescriptions(ctx context.Context, descriptions []map[string]any) error {
	for _, record := range descriptions {
		appID := record["appid"].(int64)
		if s.games[appID] != nil {
			s.games[appID].AboutTheGame = record["about_the_game"].(string)
		}
	}
	return nil
}

func (s *memoryStore) GamesWithDescriptions(ctx context.Context, limit int) ([]graph.Game, error) {
	var games []graph.Game
	for _, game := range s.games {
		if game.AboutTheGame == "" {
			continue
		}
		if limit > 0 && len(games) >= limit {
			break
		}
		games = append(games, *game)
	}
	return games, nil
}

func (s *memoryStore) SetGameDescriptionEmbeddings(ctx context.Context, appID int64, chunks []map[string]any) error {
	s.chunks[appID] = chunks
	return nil
}

func (s *memoryStore) SetGameDescriptionVectorIndex(ctx context.Context, dimension int) error {
	s.indexDim = dimension
	s.indexCreated++
	return nil
}

// fakeEmbedder returns constant-size vectors.
type fakeEmbedder struct {
	dim int
}

func (f *fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = make([]float32, f.dim)
	}
	return vectors, nil
}

func (f *fakeEmbedder) EmbeddingSize() int {
	return f.dim
}

func testService() *fakeGameService {
	return &fakeGameService{
		primary: steam.Record{"steamid": "primary", "personaname": "Primary User"},
		friends: map[string][]steam.Record{
			"primary": {
				{"steamid": "friend1", "personaname": "Friend One"},
				{"steamid": "friend2", "personaname": "Friend Two"},
				{"steamid": "friend3", "personaname": "Friend Three"},
			},
			"friend1": {
				{"steamid": "fof1", "personaname": "FoF One"},
			},
			"fof1": {
				{"steamid": "fof2", "personaname": "FoF Two"},
			},
		},
	}
}

func TestRun_RequiresSetup(t *testing.T) {
	store := newMemoryStore()
	populator := New(testService(), store, nil)

	err := populator.Run(context.Background(), Options{Friends: true, Hops: 1})

	require.Error(t, err)
	var notSetup *errors.ErrGraphNotSetup
	assert.ErrorAs(t, err, &notSetup)
}

func TestRun_InitSetsUpFromPrimaryUser(t *testing.T) {
	store := newMemoryStore()
	populator := New(testService(), store, nil)

	err := populator.Run(context.Background(), Options{Init: true})

	require.NoError(t, err)
	assert.True(t, store.setup)
	require.NotNil(t, store.primary)
	assert.Equal(t, "primary", store.primary.SteamID)
	assert.Equal(t, "Primary User", store.primary.PersonaName)
}

func TestRun_DeleteClearsGraph(t *testing.T) {
	store := newMemoryStore()
	store.setup = true
	store.users["primary"] = "Primary User"
	populator := New(testService(), store, nil)

	err := populator.Run(context.Background(), Options{Delete: true})

	require.NoError(t, err)
	assert.False(t, store.setup)
	assert.Empty(t, store.users)
}

func TestPopulateFriends_HopsLimitEdges(t *testing.T) {
	svc := testService()
	store := newMemoryStore()
	require.NoError(t, store.SetupFromPrimaryUser(context.Background(), "primary", "Primary User"))
	populator := New(svc, store, nil)

	err := populator.PopulateFriends(context.Background(), "", 2, 2)
	require.NoError(t, err)

	// limit=2 truncates the primary's three friends to two
	assert.ElementsMatch(t, []string{"friend1", "friend2"}, store.friendEdges["primary"])
	// hop 1 users still get their friendships written
	assert.ElementsMatch(t, []string{"fof1"}, store.friendEdges["friend1"])
	// hop 2 users are discovered but their own friendships are not
	assert.Empty(t, store.friendEdges["fof1"])
	assert.NotContains(t, store.users, "fof2")

	expected := []string{"primary", "friend1", "friend2", "fof1"}
	assert.Len(t, store.users, len(expected))
	for _, id := range expected {
		assert.Contains(t, store.users, id)
	}
}

func TestPopulateFriends_ZeroHopsWritesNothing(t *testing.T) {
	svc := testService()
	store := newMemoryStore()
	require.NoError(t, store.SetupFromPrimaryUser(context.Background(), "primary", "Primary User"))
	populator := New(svc, store, nil)

	err := populator.PopulateFriends(context.Background(), "", 0, -1)
	require.NoError(t, err)

	assert.Empty(t, store.friendEdges)
	assert.Len(t, store.users, 1)
}

func TestPopulateFriends_TrackVisitedFetchesOncePerUser(t *testing.T) {
	svc := testService()
	// Make the graph cyclic: friend1 lists primary back
	svc.friends["friend1"] = append(svc.friends["friend1"], steam.Record{
		"steamid": "primary", "personaname": "Primary User",
	})
	store := newMemoryStore()
	require.NoError(t, store.SetupFromPrimaryUser(context.Background(), "primary", "Primary User"))

	populator := New(svc, store, nil)
	populator.visited = make(map[string]bool)

	err := populator.PopulateFriends(context.Background(), "", 3, -1)
	require.NoError(t, err)

	for id, calls := range svc.friendCalls {
		assert.Equal(t, 1, calls, "expected a single fetch for %s", id)
	}
}

func TestPopulateGames_MergesOwnedAndReplacesRecent(t *testing.T) {
	svc := testService()
	svc.ownedGames = map[string][]steam.Record{
		"primary": {
			{"appid": int64(440), "name": "Team Fortress 2", "playtime_forever": int64(9000)},
			{"appid": int64(570), "name": "Dota 2", "playtime_forever": int64(100)},
		},
	}
	svc.recentGames = map[string][]steam.Record{
		"primary": {
			{"appid": int64(440), "playtime_2weeks": int64(120)},
		},
	}
	store := newMemoryStore()
	require.NoError(t, store.SetupFromPrimaryUser(context.Background(), "primary", "Primary User"))
	populator := New(svc, store, nil)

	require.NoError(t, populator.PopulateGames(context.Background(), -1))
	assert.Len(t, store.ownedGames["primary"], 2)
	require.Len(t, store.recentGames["primary"], 1)
	assert.Equal(t, int64(440), store.recentGames["primary"][0]["appid"])

	// A later pass with a different recent set fully replaces the old one
	svc.recentGames["primary"] = []steam.Record{
		{"appid": int64(570), "playtime_2weeks": int64(30)},
	}
	require.NoError(t, populator.PopulateGames(context.Background(), -1))
	require.Len(t, store.recentGames["primary"], 1)
	assert.Equal(t, int64(570), store.recentGames["primary"][0]["appid"])
}

func TestPopulateGenres_SkipsGamesWithoutGenreData(t *testing.T) {
	svc := testService()
	svc.genres = map[int64][]steam.Record{
		440: {{"id": int64(1), "description": "Action"}},
	}
	store := newMemoryStore()
	require.NoError(t, store.SetupFromPrimaryUser(context.Background(), "primary", "Primary User"))
	store.games[440] = &graph.Game{AppID: 440, Name: "Team Fortress 2"}
	store.games[570] = &graph.Game{AppID: 570, Name: "Dota 2"}
	populator := New(svc, store, nil)

	require.NoError(t, populator.PopulateGenres(context.Background(), -1))

	assert.Len(t, store.genres[440], 1)
	assert.Empty(t, store.genres[570])
}

func TestPopulateGameDescriptions_StoresNonEmptyOnly(t *testing.T) {
	svc := testService()
	svc.descriptions = map[int64]string{
		440: "A team based shooter.",
	}
	store := newMemoryStore()
	require.NoError(t, store.SetupFromPrimaryUser(context.Background(), "primary", "Primary User"))
	store.games[440] = &graph.Game{AppID: 440, Name: "Team Fortress 2"}
	store.games[570] = &graph.Game{AppID: 570, Name: "Dota 2"}
	populator := New(svc, store, nil)

	require.NoError(t, populator.PopulateGameDescriptions(context.Background(), -1))

	assert.Equal(t, "A team based shooter.", store.games[440].AboutTheGame)
	assert.Empty(t, store.games[570].AboutTheGame)
}

func TestPopulateGameDescriptions_OneFetchAtATime(t *testing.T) {
	svc := testService()
	svc.descriptions = map[int64]string{}
	store := newMemoryStore()
	require.NoError(t, store.SetupFromPrimaryUser(context.Background(), "primary", "Primary User"))
	for appID := int64(1); appID <= 8; appID++ {
		store.games[appID] = &graph.Game{AppID: appID, Name: "Rate Limited Game"}
		svc.descriptions[appID] = "some description"
	}
	populator := New(svc, store, nil)

	require.NoError(t, populator.PopulateGameDescriptions(context.Background(), -1))

	assert.Equal(t, 1, svc.maxDescInFlight,
		"description fetches must be issued one remote call at a time")
}

func TestEmbedGameDescriptions_ChunksAndIndexes(t *testing.T) {
	store := newMemoryStore()
	require.NoError(t, store.SetupFromPrimaryUser(context.Background(), "primary", "Primary User"))
	store.games[440] = &graph.Game{
		AppID:        440,
		Name:         "Team Fortress 2",
		AboutTheGame: "A team based shooter where two teams compete in a variety of game modes.",
	}
	populator := New(testService(), store, &fakeEmbedder{dim: 768})

	require.NoError(t, populator.EmbedGameDescriptions(context.Background(), -1))

	chunks := store.chunks[440]
	require.NotEmpty(t, chunks)
	assert.Equal(t, "440-chunk0", chunks[0]["chunkid"])
	assert.Equal(t, int64(440), chunks[0]["source"])
	assert.NotEmpty(t, chunks[0]["text"])
	assert.Len(t, chunks[0]["embedding"], 768)
	assert.Equal(t, 768, store.indexDim)
	assert.Equal(t, 1, store.indexCreated)
}

func TestEmbedGameDescriptions_RequiresEmbedder(t *testing.T) {
	store := newMemoryStore()
	populator := New(testService(), store, nil)

	err := populator.EmbedGameDescriptions(context.Background(), -1)

	require.Error(t, err)
	var unavailable *errors.ErrEmbeddingModelUnavailable
	assert.ErrorAs(t, err, &unavailable)
}
