package domain

// Game is one entry in the game catalog recruitments are filed under.
type Game struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// DefaultGames is the built-in catalog used when the games endpoint is
// unreachable, so filtering still works offline.
var DefaultGames = []Game{
	{ID: "valorant", Name: "Valorant"},
	{ID: "league-of-legends", Name: "League of Legends"},
	{ID: "apex-legends", Name: "Apex Legends"},
	{ID: "overwatch", Name: "Overwatch 2"},
	{ID: "monster-hunter", Name: "Monster Hunter"},
	{ID: "among-us", Name: "Among Us"},
}

// GameName resolves a game ID against a catalog, falling back to the ID
// itself for unknown games.
func GameName(games []Game, id string) string {
	for _, g := range games {
		if g.ID == id {
			return g.Name
		}
	}
	return id
}
