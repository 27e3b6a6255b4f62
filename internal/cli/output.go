package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/scene-hunter/scenehunter/internal/model"
	"github.com/scene-hunter/scenehunter/internal/session"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
		return
	}

	switch v := data.(type) {
	case *model.Room:
		o.printRoom(v)
	case *session.Credential:
		o.printCredential(v)
	default:
		o.printJSON(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]any{
			"error": map[string]string{"message": err.Error()},
		})
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printRoom(r *model.Room) {
	fmt.Printf("Room: %s\n", r.ID)
	fmt.Printf("Status: %s\n", r.Status)
	fmt.Printf("Round: %d\n", r.CurrentRound)
	fmt.Printf("Players (%d):\n", len(r.Users))
	for _, p := range sortedPlayers(r) {
		crown := ""
		if r.IsGameMaster(p.ID) {
			crown = " 👑"
		}
		fmt.Printf("  - %s%s\n", p.Name, crown)
	}
}

func (o *Output) printCredential(c *session.Credential) {
	fmt.Printf("Player ID: %s\n", c.PlayerID)
	if c.PlayerName != "" {
		fmt.Printf("Name: %s\n", c.PlayerName)
	}
	if c.Language != "" {
		fmt.Printf("Language: %s\n", c.Language)
	}
	fmt.Printf("Token: %s\n", c.Token)
	fmt.Printf("Saved: %s\n", c.SavedAt.Format("2006-01-02 15:04:05"))
}

// sortedPlayers lists a room's players in a stable name order
func sortedPlayers(r *model.Room) []model.Player {
	players := make([]model.Player, 0, len(r.Users))
	for _, p := range r.Users {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool {
		return players[i].Name < players[j].Name
	})
	return players
}
