package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/scene-hunter/scenehunter/internal/model"
)

func newEventsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "events <code>",
		Short: "Stream a room's notifications",
		Long: `Connect to the room's notification stream and print events as they
arrive.

Events include:
  - update game status: phase change (game-master-photo, player-photo, result)
  - update game rounds: a new round began
  - update photo uploaded users: a player finished their shots
  - update user name: a player was renamed
  - change game master: the game master role moved
  - update number of users: room membership changed

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if _, err := ensureSession(ctx); err != nil {
				return err
			}
			roomID, err := roomCodeArg(args)
			if err != nil {
				return err
			}

			stream, err := api.Subscribe(ctx, roomID)
			if err != nil {
				return err
			}
			defer func() { _ = stream.Close() }()

			fmt.Fprintf(os.Stderr, "Connected to room %s, streaming events...\n", roomID)

			for {
				ev, err := stream.Next()
				if err != nil {
					if errors.Is(err, model.ErrUnknownEvent) {
						fmt.Fprintf(os.Stderr, "Skipping unknown event: %v\n", err)
						continue
					}
					if ctx.Err() != nil || errors.Is(err, io.EOF) {
						return nil
					}
					return err
				}
				printEvent(ev, jsonOutput)
			}
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")

	return cmd
}

func printEvent(ev model.GameEvent, jsonOutput bool) {
	if jsonOutput {
		data, _ := json.Marshal(map[string]any{
			"time":    time.Now().Format(time.RFC3339),
			"message": string(ev.Kind),
			"result":  string(ev.Phase),
			"round":   ev.Round,
			"user_id": string(ev.UserID),
			"name":    ev.Name,
		})
		fmt.Println(string(data))
		return
	}

	line := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), ev.Kind)
	if ev.Phase != model.PhaseNone {
		line += fmt.Sprintf(" -> %s", ev.Phase)
	}
	if ev.Round > 0 {
		line += fmt.Sprintf(" (round %d)", ev.Round)
	}
	if ev.Name != "" {
		line += fmt.Sprintf(" %s", ev.Name)
	}
	fmt.Println(line)
}
