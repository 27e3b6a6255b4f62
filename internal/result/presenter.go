// Package result fetches final scores and renders the leaderboard.
package result

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/scene-hunter/scenehunter/internal/model"
)

// API is the score surface the presenter needs
type API interface {
	Scores(ctx context.Context, roomID model.RoomID) ([]model.Player, error)
}

// Entry is one leaderboard row
type Entry struct {
	Rank       int
	Player     model.Player
	Similarity float64
}

// Standings is the room-wide ranking with the caller located in it
type Standings struct {
	Entries []Entry
	// SelfRank is the caller's position, 0 when the caller has no
	// scored photo or is the game master
	SelfRank     int
	IsGameMaster bool
	// Unscored lists players without a similarity score, after the
	// ranked entries
	Unscored []model.Player
}

// Presenter builds and renders standings
type Presenter struct {
	api API
}

// NewPresenter creates a result presenter
func NewPresenter(api API) *Presenter {
	return &Presenter{api: api}
}

// Standings fetches scores and ranks players with a defined similarity
// score in descending order. Ties keep the fetch order (stable sort).
func (p *Presenter) Standings(ctx context.Context, roomID model.RoomID, selfID model.PlayerID, gameMasterID model.PlayerID) (*Standings, error) {
	players, err := p.api.Scores(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch scores: %w", err)
	}

	standings := &Standings{
		IsGameMaster: selfID != "" && selfID == gameMasterID,
	}

	var scored []model.Player
	for _, player := range players {
		if player.ID == gameMasterID {
			// The game master sets the reference photo and is not ranked
			continue
		}
		if player.Score == nil {
			standings.Unscored = append(standings.Unscored, player)
			continue
		}
		scored = append(scored, player)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score.Similarity > scored[j].Score.Similarity
	})

	for i, player := range scored {
		entry := Entry{
			Rank:       i + 1,
			Player:     player,
			Similarity: player.Score.Similarity,
		}
		standings.Entries = append(standings.Entries, entry)
		if player.ID == selfID {
			standings.SelfRank = entry.Rank
		}
	}

	return standings, nil
}

// Render writes a human-readable leaderboard
func (s *Standings) Render(w io.Writer) {
	if s.IsGameMaster {
		fmt.Fprintln(w, "You are the game master - no score for you this round.")
	} else if s.SelfRank > 0 {
		fmt.Fprintf(w, "Your rank: %d of %d\n", s.SelfRank, len(s.Entries))
	}

	fmt.Fprintln(w, "Leaderboard:")
	for _, entry := range s.Entries {
		fmt.Fprintf(w, "  %2d. %-12s %.1f%%\n", entry.Rank, entry.Player.Name, entry.Similarity)
	}
	for _, player := range s.Unscored {
		fmt.Fprintf(w, "   -. %-12s (no photo scored)\n", player.Name)
	}
}
