package cli

import (
	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage the cached player identity",
	}

	cmd.AddCommand(newSessionShowCmd())
	cmd.AddCommand(newSessionClearCmd())

	return cmd
}

func newSessionShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current session, establishing one if needed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, err := ensureSession(cmd.Context())
			if err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(cred)
			return nil
		},
	}
}

func newSessionClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget the cached session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := store.Clear(); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Session cleared")
			return nil
		},
	}
}
