package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/scene-hunter/scenehunter/internal/session"
)

// Config holds CLI configuration
type Config struct {
	ServerURL   string
	SessionFile string
	Language    string
	Output      string
	Verbose     bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:   "http://localhost:8080",
		SessionFile: session.DefaultPath(),
		Language:    "en",
		Output:      "text",
		Verbose:     false,
	}
}

// bindFlags registers the global flags and wires them to the
// SCENEHUNTER_* environment variables
func bindFlags(cmd *cobra.Command, cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix("SCENEHUNTER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs := cmd.PersistentFlags()
	fs.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: SCENEHUNTER_SERVER)")
	fs.StringVar(&cfg.SessionFile, "session-file", cfg.SessionFile, "Session file path (env: SCENEHUNTER_SESSION_FILE)")
	fs.StringVar(&cfg.Language, "lang", cfg.Language, "Language preference, en or jp (env: SCENEHUNTER_LANG)")
	fs.StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}
