package cli

import (
	"fmt"
	"net/url"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"

	"github.com/scene-hunter/scenehunter/internal/lobby"
	"github.com/scene-hunter/scenehunter/internal/model"
	"github.com/scene-hunter/scenehunter/internal/validate"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room management commands",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomJoinCmd())
	cmd.AddCommand(newRoomUsersCmd())
	cmd.AddCommand(newRoomRenameCmd())
	cmd.AddCommand(newRoomExitCmd())
	cmd.AddCommand(newRoomQRCmd())

	return cmd
}

// roomCodeArg validates a room code positional argument
func roomCodeArg(args []string) (model.RoomID, error) {
	if err := validate.RoomCode(args[0]); err != nil {
		return "", err
	}
	return model.RoomID(args[0]), nil
}

func newRoomCreateCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a room with yourself as game master",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cred, err := ensureSession(ctx)
			if err != nil {
				return err
			}

			displayName := playerName(cred, name)
			ctrl := lobby.NewController(api, logger)
			roomID, err := ctrl.CreateRoom(ctx, displayName, cfg.Language)
			if err != nil {
				return err
			}
			rememberName(cred, displayName)

			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("Room %s created, you are the game master", roomID))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (defaults to the session name)")

	return cmd
}

func newRoomJoinCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "join <code>",
		Short: "Join a room by its six digit code",
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

			displayName := playerName(cred, name)
			ctrl := lobby.NewController(api, logger)
			if err := ctrl.JoinRoom(ctx, roomID, displayName, cfg.Language); err != nil {
				return err
			}
			rememberName(cred, displayName)

			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("Joined room %s as %s", roomID, displayName))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (defaults to the session name)")

	return cmd
}

func newRoomUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users <code>",
		Short: "Show a room's players and status",
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

			snapshot, err := api.RoomSnapshot(ctx, roomID)
			if err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(snapshot)
			return nil
		},
	}
}

func newRoomRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <code> <name>",
		Short: "Change your display name in a room",
		Args:  cobra.ExactArgs(2),
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
			name := args[1]
			if err := validate.Name(name); err != nil {
				return err
			}

			if err := api.RenameUser(ctx, roomID, name); err != nil {
				return err
			}
			rememberName(cred, name)

			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("Renamed to %s", name))
			return nil
		},
	}
}

func newRoomExitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exit <code>",
		Short: "Leave a room",
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

			if err := api.ExitRoom(ctx, roomID); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("Left room %s", roomID))
			return nil
		},
	}
}

func newRoomQRCmd() *cobra.Command {
	var (
		baseURL string
		outFile string
	)

	cmd := &cobra.Command{
		Use:   "qr <code>",
		Short: "Write a QR code for the room's join link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roomID, err := roomCodeArg(args)
			if err != nil {
				return err
			}

			base := baseURL
			if base == "" {
				base = cfg.ServerURL
			}
			joinURL := fmt.Sprintf("%s/?room_id=%s", base, url.QueryEscape(string(roomID)))

			if err := qrcode.WriteFile(joinURL, qrcode.Medium, 256, outFile); err != nil {
				return fmt.Errorf("failed to write QR code: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Join link: %s", joinURL))
			out.PrintMessage(fmt.Sprintf("QR code written to %s", outFile))
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "", "Base URL for the join link (defaults to --server)")
	cmd.Flags().StringVar(&outFile, "out", "room-qr.png", "Output PNG path")

	return cmd
}
