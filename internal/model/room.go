package model

// RoomID is the short numeric code players use to join a room.
// Valid room ids are 1-6 digit strings.
type RoomID string

// RoomStatus represents the lifecycle state of a room
type RoomStatus string

const (
	RoomStatusLobby         RoomStatus = "lobby"
	RoomStatusInProgress    RoomStatus = "in-progress"
	RoomStatusAwaitingPhoto RoomStatus = "awaiting-photos"
	RoomStatusResult        RoomStatus = "result"
)

// Room is a full snapshot of room membership and game progress.
// Invariant: GameMasterID is always a key of Users.
type Room struct {
	ID           RoomID              `json:"id"`
	Status       RoomStatus          `json:"status"`
	CurrentRound int                 `json:"current_round"`
	TotalRounds  int                 `json:"total_rounds,omitempty"`
	GameMasterID PlayerID            `json:"game_master_id"`
	Users        map[PlayerID]Player `json:"users"`
}

// GameMaster returns the game master's player entry, or nil if the
// snapshot is inconsistent and the game master is missing from Users.
func (r *Room) GameMaster() *Player {
	if p, ok := r.Users[r.GameMasterID]; ok {
		return &p
	}
	return nil
}

// IsGameMaster reports whether the given player is the room's game
// master. This equality check is the only authoritative test; there is
// exactly one game master per room.
func (r *Room) IsGameMaster(id PlayerID) bool {
	return id != "" && id == r.GameMasterID
}

// Participants returns all players except the game master.
func (r *Room) Participants() []Player {
	var players []Player
	for id, p := range r.Users {
		if id != r.GameMasterID {
			players = append(players, p)
		}
	}
	return players
}
