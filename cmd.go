package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"memory-match/config"
)

// cliFlags overlay the loaded config. Each flag can also be set from the
// environment as MEMORY_MATCH_<FLAG>, e.g. MEMORY_MATCH_PAIRS=6.
type cliFlags struct {
	configPath    string
	port          int
	pairs         int
	revealDelay   time.Duration
	gameOverDelay time.Duration
	databaseURL   string
	logLevel      string
}

// load reads the config file and env, then applies every flag that was set.
func (f *cliFlags) load(fs *pflag.FlagSet) (*config.Config, error) {
	cfg := config.Load(f.configPath)
	if fs.Changed("port") {
		cfg.WSPort = f.port
	}
	if fs.Changed("pairs") {
		cfg.PairCount = f.pairs
	}
	if fs.Changed("reveal-delay") {
		cfg.RevealDelayMS = int(f.revealDelay / time.Millisecond)
	}
	if fs.Changed("game-over-delay") {
		cfg.GameOverDelayMS = int(f.gameOverDelay / time.Millisecond)
	}
	if fs.Changed("database-url") {
		cfg.DatabaseURL = f.databaseURL
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("MEMORY_MATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	flags := &cliFlags{}

	cmd := &cobra.Command{
		Use:           "memory-match",
		Short:         "A two-player memory card matching game.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       releaseVersion,
	}

	fs := cmd.PersistentFlags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&flags.configPath, "config", "c", "config.json", "path to the JSON config file (env: MEMORY_MATCH_CONFIG)")
	fs.IntVarP(&flags.port, "port", "p", 8080, "port to listen on (env: MEMORY_MATCH_PORT)")
	fs.IntVar(&flags.pairs, "pairs", 10, "number of card pairs per round (env: MEMORY_MATCH_PAIRS)")
	fs.DurationVar(&flags.revealDelay, "reveal-delay", time.Second, "how long a revealed pair stays face-up before it is resolved (env: MEMORY_MATCH_REVEAL_DELAY)")
	fs.DurationVar(&flags.gameOverDelay, "game-over-delay", time.Second, "pause between the last match and the result (env: MEMORY_MATCH_GAME_OVER_DELAY)")
	fs.StringVar(&flags.databaseURL, "database-url", "", "Postgres URL for history and remembered names (env: MEMORY_MATCH_DATABASE_URL)")
	fs.StringVar(&flags.logLevel, "log-level", "info", "debug, info, warn or error (env: MEMORY_MATCH_LOG_LEVEL)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve the websocket game host and HTTP API",
		Args:  cobra.ExactArgs(0),
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := flags.load(fs)
			if err != nil {
				return err
			}
			return runServe(c.Context(), cfg)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "play",
		Short: "Play at this terminal",
		Args:  cobra.ExactArgs(0),
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := flags.load(fs)
			if err != nil {
				return err
			}
			return runPlay(c.Context(), cfg)
		},
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetVersionTemplate("memory-match v{{.Version}}\n")

	return cmd
}
