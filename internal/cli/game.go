package cli

import (
	"fmt"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/scene-hunter/scenehunter/internal/capture"
	"github.com/scene-hunter/scenehunter/internal/result"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game actions",
	}

	cmd.AddCommand(newGameStartCmd())
	cmd.AddCommand(newGameDescriptionCmd())
	cmd.AddCommand(newGameScoreCmd())
	cmd.AddCommand(newGameUploadCmd())
	cmd.AddCommand(newGameCaptureCmd())

	return cmd
}

func newGameStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <code>",
		Short: "Start the game (game master only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := ensureSession(ctx); err != nil {
				return err
			}
			roomID, err := roomCodeArg(args)
			if err != nil {
				return err
			}

			if err := api.StartGame(ctx, roomID); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Game started")
			return nil
		},
	}
}

func newGameDescriptionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "description <code>",
		Short: "Show the scene clue for the current round",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := ensureSession(ctx); err != nil {
				return err
			}
			roomID, err := roomCodeArg(args)
			if err != nil {
				return err
			}

			clue, err := api.Description(ctx, roomID)
			if err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage(clue)
			return nil
		},
	}
}

func newGameScoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score <code>",
		Short: "Show the round standings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cred, err := ensureSession(ctx)
			if err != nil {
				return err
			}
			roomID, err := roomCodeArg(args)
			if err != nil {
				return err
			}

			snapshot, err := api.RoomSnapshot(ctx, roomID)
			if err != nil {
				return err
			}

			standings, err := result.NewPresenter(api).Standings(ctx, roomID, cred.PlayerID, snapshot.GameMasterID)
			if err != nil {
				return err
			}
			standings.Render(os.Stdout)
			return nil
		},
	}
}

func newGameUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <code> <file>",
		Short: "Upload a photo from a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := ensureSession(ctx); err != nil {
				return err
			}
			roomID, err := roomCodeArg(args)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("failed to read photo: %w", err)
			}

			if err := api.UploadPhoto(ctx, roomID, data); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Photo uploaded")
			return nil
		},
	}
}

func newGameCaptureCmd() *cobra.Command {
	var (
		source     string
		gameMaster bool
	)

	cmd := &cobra.Command{
		Use:   "capture <code>",
		Short: "Run the timed capture sequence",
		Long: `Run the countdown-and-shoot capture sequence for the current round.

The game master takes one reference shot; players take two. Frames are
read from --source, a photo file or a directory of photos standing in
for the camera.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := ensureSession(ctx); err != nil {
				return err
			}
			roomID, err := roomCodeArg(args)
			if err != nil {
				return err
			}

			flow := capture.NewFlow(capture.NewFileSource(source), api, clockwork.NewRealClock(), logger)
			if err := flow.Run(ctx, roomID, gameMaster); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Capture complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", ".", "Photo file or directory used as the camera")
	cmd.Flags().BoolVar(&gameMaster, "game-master", false, "Capture the single game master reference shot")

	return cmd
}
