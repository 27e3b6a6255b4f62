package model

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player represents a room participant
type Player struct {
	ID       PlayerID `json:"id"`
	Name     string   `json:"name"`
	Language string   `json:"lang,omitempty"`
	Score    *Score   `json:"score,omitempty"`
}

// Score holds the server-computed similarity for a player's photo.
// A nil Score on a Player means no photo has been scored yet.
type Score struct {
	Similarity float64 `json:"similarity"`
}
