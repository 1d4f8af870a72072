package graph

// User represents a Steam user node
type User struct {
	SteamID     string `json:"steamid"`
	PersonaName string `json:"personaname"`
}

// Game represents a Steam game node
type Game struct {
	AppID        int64  `json:"appid"`
	Name         string `json:"name"`
	AboutTheGame string `json:"about_the_game,omitempty"`
}

// Genre represents a Steam game genre node
type Genre struct {
	GenreID     int64  `json:"id"`
	Description string `json:"description"`
}

// OwnedGame is a Game edge with total playtime in minutes
type OwnedGame struct {
	Game
	Playtime int64 `json:"playtime_forever"`
}

// RecentlyPlayedGame is a Game edge with trailing-window playtime in minutes
type RecentlyPlayedGame struct {
	Game
	RecentPlaytime int64 `json:"playtime_2weeks"`
}

// GameMatch is a fuzzy name-search result, lower distance is better
type GameMatch struct {
	AppID    int64  `json:"appid"`
	Name     string `json:"name"`
	Distance int    `json:"distance"`
}

// ChunkMatch is a semantic-search result joining a description chunk
// with its owning game
type ChunkMatch struct {
	AppID int64   `json:"appid"`
	Name  string  `json:"name"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}
