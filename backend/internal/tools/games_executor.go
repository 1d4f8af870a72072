package tools

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/bbrillhart19/vapor/backend/internal/graph"
	"github.com/bbrillhart19/vapor/backend/pkg/errors"
	"github.com/bbrillhart19/vapor/backend/pkg/logger"
)

// Similarity search parameters for find_similar_games.
const (
	similarNeighbors = 10
	similarMinScore  = 0.65
)

// GameGraph is the graph surface the game tools read from.
type GameGraph interface {
	SearchGameByName(ctx context.Context, query string) ([]graph.GameMatch, error)
	GameDescription(ctx context.Context, appID int64) (string, error)
	GameDescriptionsSemanticSearch(ctx context.Context, embedding []float32, nNeighbors int, minScore float64) ([]graph.ChunkMatch, error)
}

// QueryEmbedder embeds a search query for semantic similarity.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// GamesExecutor executes the graph-backed game tools. Results are
// JSON-formatted strings fed back to the agent as tool output.
type GamesExecutor struct {
	repo     GameGraph
	embedder QueryEmbedder
	logger   *zap.Logger
}

// NewGamesExecutor creates a games tool executor
func NewGamesExecutor(repo GameGraph, embedder QueryEmbedder) *GamesExecutor {
	return &GamesExecutor{
		repo:     repo,
		embedder: embedder,
		logger:   logger.Get(),
	}
}

// Execute routes a tool call by name
func (e *GamesExecutor) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	switch name {
	case ToolAboutTheGame:
		query, _ := args["name"].(string)
		return e.AboutTheGame(ctx, query)
	case ToolFindSimilarGames:
		query, _ := args["summarized_description"].(string)
		return e.FindSimilarGames(ctx, query)
	default:
		return "", errors.NewToolNotFound(name)
	}
}

// AboutTheGame fuzzy-matches the name against stored games and returns
// the best match and its stored description. The response omits
// matched_game when nothing matched, and about_the_game when the match
// has no populated description.
func (e *GamesExecutor) AboutTheGame(ctx context.Context, name string) (string, error) {
	response := map[string]string{}

	matches, err := e.repo.SearchGameByName(ctx, name)
	if err != nil {
		return "", errors.NewToolExecutionFailed(ToolAboutTheGame, err)
	}
	if len(matches) == 0 {
		return marshal(response)
	}

	best := matches[0]
	response["matched_game"] = best.Name

	description, err := e.repo.GameDescription(ctx, best.AppID)
	if err != nil {
		return "", errors.NewToolExecutionFailed(ToolAboutTheGame, err)
	}
	if description == "" {
		return marshal(response)
	}

	response["about_the_game"] = description
	return marshal(response)
}

// similarGame is one find_similar_games result row
type similarGame struct {
	Name              string   `json:"name"`
	AppID             int64    `json:"appid"`
	DescriptionChunks []string `json:"description_chunks"`
}

// FindSimilarGames embeds the query text and returns games whose
// description chunks score above the similarity threshold, best first,
// with each game's matching chunks grouped under it.
func (e *GamesExecutor) FindSimilarGames(ctx context.Context, query string) (string, error) {
	embedding, err := e.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return "", errors.NewToolExecutionFailed(ToolFindSimilarGames, err)
	}

	matches, err := e.repo.GameDescriptionsSemanticSearch(ctx, embedding, similarNeighbors, similarMinScore)
	if err != nil {
		return "", errors.NewToolExecutionFailed(ToolFindSimilarGames, err)
	}

	// Matches arrive best-first; group chunks per game preserving that order
	games := []similarGame{}
	indexByApp := map[int64]int{}
	for _, match := range matches {
		i, ok := indexByApp[match.AppID]
		if !ok {
			i = len(games)
			indexByApp[match.AppID] = i
			games = append(games, similarGame{
				Name:  match.Name,
				AppID: match.AppID,
			})
		}
		games[i].DescriptionChunks = append(games[i].DescriptionChunks, match.Text)
	}

	return marshal(games)
}

func marshal(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
