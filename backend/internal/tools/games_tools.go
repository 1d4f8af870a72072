package tools

import (
	"github.com/bbrillhart19/vapor/backend/internal/adapter"
)

// Tool names
const (
	ToolAboutTheGame     = "about_the_game"
	ToolFindSimilarGames = "find_similar_games"
)

// GetGameTools returns the graph-backed game tools exposed to the agent
func GetGameTools() []adapter.Tool {
	return []adapter.Tool{
		{
			Type: "function",
			Function: adapter.FunctionDefinition{
				Name:        ToolAboutTheGame,
				Description: "Retrieves the 'about the game' description for the game in the database that best matches the provided name using a fuzzy match technique. The game descriptions have been populated from Steam. The 'matched_game' field gives the title that best matched the query name, absent if nothing matched. The 'about_the_game' field gives the description for the matched game, absent if no description has been populated.",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"name": map[string]interface{}{
							"type":        "string",
							"description": "The name of the game to search for. This is not expected to be a perfect character-for-character match to the stored game titles.",
						},
					},
					"required": []string{"name"},
				},
			},
		},
		{
			Type: "function",
			Function: adapter.FunctionDefinition{
				Name:        ToolFindSimilarGames,
				Description: "Finds games whose 'about the game' descriptions are semantically similar to the provided summarized description. Returns each discovered game with its 'name', unique Steam 'appid', and the 'description_chunks' most similar to the query. Empty if nothing in the database is similar enough.",
				Parameters: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"summarized_description": map[string]interface{}{
							"type":        "string",
							"description": "A summarized game description, optionally tailored to highlight specific aspects to find games that are similar in specific ways. This is embedded and used for semantic similarity search.",
						},
					},
					"required": []string{"summarized_description"},
				},
			},
		},
	}
}
