package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/whispernotes/whisper"
)

var (
	verbose    bool
	stateDir   string
	apiBaseURL string
	configPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "whisper",
	Short: "Local-first state layer for a personal note journal",
	Long: `Whisper keeps your journal usable with or without a backend.
Notes, notebooks, the signed-in identity and the active theme live in
durable local state files; auth calls fall back to a local session when
the backend is unreachable.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&stateDir, "dir", "", "State directory (default: user config dir)")
	rootCmd.PersistentFlags().StringVar(&apiBaseURL, "api", "", "Auth backend base URL")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "whisper.yaml", "Config file path")
}

// openApp assembles the state layer from the config file and flags. Flags
// win over file values.
func openApp(extra ...whisper.Option) *whisper.App {
	cfg, err := whisper.LoadConfig(configPath)
	if err != nil {
		fatal("Error reading config", err)
	}

	dir := cfg.StateDir
	if stateDir != "" {
		dir = stateDir
	}
	baseURL := cfg.APIBaseURL
	if apiBaseURL != "" {
		baseURL = apiBaseURL
	}

	opts := []whisper.Option{
		whisper.WithLogger(slog.Default()),
		whisper.WithBaseURL(baseURL),
	}
	opts = append(opts, extra...)

	app, err := whisper.New(dir, opts...)
	if err != nil {
		fatal("Error initializing whisper", err)
	}
	return app
}
