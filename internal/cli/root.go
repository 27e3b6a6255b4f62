// Package cli implements the scene-hunter command line interface.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/scene-hunter/scenehunter/internal/client"
	"github.com/scene-hunter/scenehunter/internal/session"
)

var (
	cfg    *Config
	logger *slog.Logger
	api    *client.Client
	store  *session.FileStore
	boot   *session.Bootstrapper
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "scene-hunter",
		Short: "Play Scene Hunter from the terminal",
		Long: `scene-hunter is a client for the Scene Hunter party game.

One player, the game master, photographs a scene; everyone else hunts
for it and submits their best matching shots. Rooms are joined with a
six digit code and all state is pushed live over the room's
notification stream.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Verbose {
				logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
			} else {
				logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
			}

			api = client.New(cfg.ServerURL, "", logger)
			store = session.NewFileStore(cfg.SessionFile)
			boot = session.NewBootstrapper(store, api, clockwork.NewRealClock(), session.DefaultTTL, logger)
			return nil
		},
		SilenceUsage: true,
	}

	bindFlags(rootCmd, cfg)

	rootCmd.AddCommand(newSessionCmd())
	rootCmd.AddCommand(newRoomCmd())
	rootCmd.AddCommand(newGameCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newPlayCmd())

	return rootCmd
}

// ensureSession establishes (or reuses) a credential and authenticates
// the API client with it
func ensureSession(ctx context.Context) (*session.Credential, error) {
	cred, err := boot.Session(ctx)
	if err != nil {
		return nil, err
	}
	api.SetToken(cred.Token)
	return cred, nil
}

// rememberName persists the player's chosen name and language so the
// next invocation can default to them
func rememberName(cred *session.Credential, name string) {
	cred.PlayerName = name
	cred.Language = cfg.Language
	if err := boot.Update(cred); err != nil {
		logger.Warn("failed to persist session", slog.Any("error", err))
	}
}

// playerName resolves the display name for a command: flag value
// first, then the persisted session name
func playerName(cred *session.Credential, flagName string) string {
	if flagName != "" {
		return flagName
	}
	return cred.PlayerName
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
