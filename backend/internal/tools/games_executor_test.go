package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbrillhart19/vapor/backend/internal/graph"
	"github.com/bbrillhart19/vapor/backend/pkg/errors"
)

type fakeGameGraph struct {
	matches      []graph.GameMatch
	descriptions map[int64]string
	chunkMatches []graph.ChunkMatch
}

func (f *fakeGameGraph) SearchGameByName(ctx context.Context, query string) ([]graph.GameMatch, error) {
	return f.matches, nil
}

func (f *fakeGameGraph) GameDescription(ctx context.Context, appID int64) (string, error) {
	return f.descriptions[appID], nil
}

func (f *fakeGameGraph) GameDescriptionsSemanticSearch(ctx context.Context, embedding []float32, nNeighbors int, minScore float64) ([]graph.ChunkMatch, error) {
	return f.chunkMatches, nil
}

type fakeQueryEmbedder struct{}

func (f *fakeQueryEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return make([]float32, 768), nil
}

func TestAboutTheGame_ReturnsBestMatchAndDescription(t *testing.T) {
	repo := &fakeGameGraph{
		matches: []graph.GameMatch{
			{AppID: 440, Name: "Team Fortress 2", Distance: 1},
			{AppID: 570, Name: "Dota 2", Distance: 8},
		},
		descriptions: map[int64]string{440: "A team based shooter."},
	}
	executor := NewGamesExecutor(repo, &fakeQueryEmbedder{})

	result, err := executor.Execute(context.Background(), ToolAboutTheGame, map[string]any{"name": "team fortress"})
	require.NoError(t, err)

	var response map[string]string
	require.NoError(t, json.Unmarshal([]byte(result), &response))
	assert.Equal(t, "Team Fortress 2", response["matched_game"])
	assert.Equal(t, "A team based shooter.", response["about_the_game"])
}

func TestAboutTheGame_NoMatch(t *testing.T) {
	executor := NewGamesExecutor(&fakeGameGraph{}, &fakeQueryEmbedder{})

	result, err := executor.Execute(context.Background(), ToolAboutTheGame, map[string]any{"name": "zzzzz"})
	require.NoError(t, err)

	var response map[string]string
	require.NoError(t, json.Unmarshal([]byte(result), &response))
	assert.NotContains(t, response, "matched_game")
	assert.NotContains(t, response, "about_the_game")
}

func TestAboutTheGame_MatchWithoutDescription(t *testing.T) {
	repo := &fakeGameGraph{
		matches: []graph.GameMatch{{AppID: 570, Name: "Dota 2", Distance: 0}},
	}
	executor := NewGamesExecutor(repo, &fakeQueryEmbedder{})

	result, err := executor.Execute(context.Background(), ToolAboutTheGame, map[string]any{"name": "Dota 2"})
	require.NoError(t, err)

	var response map[string]string
	require.NoError(t, json.Unmarshal([]byte(result), &response))
	assert.Equal(t, "Dota 2", response["matched_game"])
	assert.NotContains(t, response, "about_the_game")
}

func TestFindSimilarGames_GroupsChunksPerGame(t *testing.T) {
	repo := &fakeGameGraph{
		chunkMatches: []graph.ChunkMatch{
			{AppID: 440, Name: "Team Fortress 2", Text: "team based shooter", Score: 0.92},
			{AppID: 570, Name: "Dota 2", Text: "competitive strategy", Score: 0.81},
			{AppID: 440, Name: "Team Fortress 2", Text: "nine distinct classes", Score: 0.74},
		},
	}
	executor := NewGamesExecutor(repo, &fakeQueryEmbedder{})

	result, err := executor.Execute(context.Background(), ToolFindSimilarGames, map[string]any{
		"summarized_description": "a class based multiplayer shooter",
	})
	require.NoError(t, err)

	var games []struct {
		Name              string   `json:"name"`
		AppID             int64    `json:"appid"`
		DescriptionChunks []string `json:"description_chunks"`
	}
	require.NoError(t, json.Unmarshal([]byte(result), &games))

	require.Len(t, games, 2)
	assert.Equal(t, int64(440), games[0].AppID)
	assert.Equal(t, []string{"team based shooter", "nine distinct classes"}, games[0].DescriptionChunks)
	assert.Equal(t, int64(570), games[1].AppID)
	assert.Equal(t, []string{"competitive strategy"}, games[1].DescriptionChunks)
}

func TestFindSimilarGames_EmptyResult(t *testing.T) {
	executor := NewGamesExecutor(&fakeGameGraph{}, &fakeQueryEmbedder{})

	result, err := executor.Execute(context.Background(), ToolFindSimilarGames, map[string]any{
		"summarized_description": "nothing like this exists",
	})
	require.NoError(t, err)
	assert.Equal(t, "[]", result)
}

func TestExecute_UnknownTool(t *testing.T) {
	executor := NewGamesExecutor(&fakeGameGraph{}, &fakeQueryEmbedder{})

	_, err := executor.Execute(context.Background(), "no_such_tool", nil)

	require.Error(t, err)
	var notFound *errors.ErrToolNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestGetGameTools_DefinesBothTools(t *testing.T) {
	defs := GetGameTools()
	require.Len(t, defs, 2)
	assert.Equal(t, ToolAboutTheGame, defs[0].Function.Name)
	assert.Equal(t, ToolFindSimilarGames, defs[1].Function.Name)
}
