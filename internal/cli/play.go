package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/scene-hunter/scenehunter/internal/capture"
	"github.com/scene-hunter/scenehunter/internal/lobby"
	"github.com/scene-hunter/scenehunter/internal/model"
	"github.com/scene-hunter/scenehunter/internal/result"
	"github.com/scene-hunter/scenehunter/internal/roomsync"
)

// syncOpener adapts the API client to the synchronizer's opener
// interface
type syncOpener struct{}

func (syncOpener) Subscribe(ctx context.Context, roomID model.RoomID) (roomsync.Stream, error) {
	return api.Subscribe(ctx, roomID)
}

func newPlayCmd() *cobra.Command {
	var (
		name   string
		source string
	)

	cmd := &cobra.Command{
		Use:   "play [code]",
		Short: "Play a full game interactively",
		Long: `Join a room (or create one when no code is given) and play through
the whole game: the lobby, the capture rounds and the final standings.

Photos are read from --source, a file or directory standing in for
the camera. Press Ctrl+C at any point to leave the room.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cred, err := ensureSession(ctx)
			if err != nil {
				return err
			}
			displayName := playerName(cred, name)

			ctrl := lobby.NewController(api, logger)
			var roomID model.RoomID
			if len(args) == 0 {
				roomID, err = ctrl.CreateRoom(ctx, displayName, cfg.Language)
				if err != nil {
					return err
				}
				fmt.Printf("Room %s created, you are the game master\n", roomID)
			} else {
				roomID, err = roomCodeArg(args)
				if err != nil {
					return err
				}
				if err := ctrl.JoinRoom(ctx, roomID, displayName, cfg.Language); err != nil {
					return err
				}
				fmt.Printf("Joined room %s as %s\n", roomID, displayName)
			}
			rememberName(cred, displayName)

			return runPlayLoop(ctx, roomID, cred.PlayerID, source)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (defaults to the session name)")
	cmd.Flags().StringVar(&source, "source", ".", "Photo file or directory used as the camera")

	return cmd
}

// runPlayLoop drives the terminal UI from synchronizer state updates
func runPlayLoop(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, source string) error {
	sync := roomsync.New(api, syncOpener{}, clockwork.NewRealClock(), roomID, playerID, logger)
	go func() { _ = sync.Run(ctx) }()

	// Enter presses, for the game master's start action
	keys := make(chan struct{})
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case keys <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
	}()

	// A finished capture sequence reports back here
	captureDone := make(chan error, 1)
	capturing := false

	var lastScreen roomsync.Screen
	lastRound := 0

	renderLobby(sync.State())

	for {
		select {
		case <-ctx.Done():
			leaveRoom(roomID)
			return nil

		case <-keys:
			st := sync.State()
			if st.Screen == roomsync.ScreenLobby && st.IsGameMaster {
				if err := api.StartGame(ctx, roomID); err != nil {
					fmt.Printf("Could not start the game: %v\n", err)
				}
			}

		case err := <-captureDone:
			capturing = false
			if err != nil && !errors.Is(err, capture.ErrUploadFailed) {
				fmt.Printf("Capture failed: %v\n", err)
				continue
			}
			// A sequence that finished with lost uploads still counts
			// as taken; the player is not sent back into capture.
			if err != nil {
				fmt.Printf("Some uploads failed: %v\n", err)
			}
			sync.MarkPhotoTaken()
			fmt.Println("Photos submitted, waiting for the others...")

		case st := <-sync.Updates():
			// The lobby re-renders on every membership change; the
			// other screens only on transitions
			if st.Screen == roomsync.ScreenLobby {
				lastScreen, lastRound = st.Screen, st.Round
				renderLobby(st)
				continue
			}
			if st.Screen == lastScreen && st.Round == lastRound {
				continue
			}
			lastScreen, lastRound = st.Screen, st.Round

			switch st.Screen {
			case roomsync.ScreenCapture:
				if capturing {
					continue
				}
				capturing = true
				announceCapture(ctx, st, roomID)
				go func(isGameMaster bool) {
					flow := capture.NewFlow(capture.NewFileSource(source), api, clockwork.NewRealClock(), logger)
					captureDone <- flow.Run(ctx, roomID, isGameMaster)
				}(st.IsGameMaster)

			case roomsync.ScreenWaiting:
				fmt.Printf("Round %d: waiting for the other players...\n", st.Round)

			case roomsync.ScreenResult:
				renderResult(ctx, st, roomID, playerID)
			}
		}
	}
}

func renderLobby(st roomsync.State) {
	if st.Room == nil {
		fmt.Println("Waiting for the room...")
		return
	}

	fmt.Printf("\nRoom %s - %d players\n", st.Room.ID, len(st.Room.Users))
	for _, p := range sortedPlayers(st.Room) {
		crown := ""
		if st.Room.IsGameMaster(p.ID) {
			crown = " 👑"
		}
		fmt.Printf("  %s%s\n", p.Name, crown)
	}
	if st.IsGameMaster {
		fmt.Println("Press Enter to start the game")
	} else {
		fmt.Println("Waiting for the game master to start...")
	}
}

func announceCapture(ctx context.Context, st roomsync.State, roomID model.RoomID) {
	if st.IsGameMaster {
		fmt.Printf("\nRound %d: you are the game master. Photograph the scene!\n", st.Round)
		return
	}

	fmt.Printf("\nRound %d: hunt the scene!\n", st.Round)
	if clue, err := api.Description(ctx, roomID); err == nil {
		fmt.Printf("Clue: %s\n", clue)
	}
}

func renderResult(ctx context.Context, st roomsync.State, roomID model.RoomID, playerID model.PlayerID) {
	fmt.Println("\nGame over!")

	var gameMasterID model.PlayerID
	if st.Room != nil {
		gameMasterID = st.Room.GameMasterID
	}
	standings, err := result.NewPresenter(api).Standings(ctx, roomID, playerID, gameMasterID)
	if err != nil {
		fmt.Printf("Could not fetch the standings: %v\n", err)
		return
	}
	standings.Render(os.Stdout)
	fmt.Println("Press Ctrl+C to leave the room")
}

// leaveRoom is the best-effort exit on interrupt. The play context is
// already cancelled, so it runs on its own short deadline.
func leaveRoom(roomID model.RoomID) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := api.ExitRoom(ctx, roomID); err != nil {
		logger.Warn("failed to leave room", slog.Any("error", err))
		return
	}
	fmt.Printf("\nLeft room %s\n", roomID)
}
