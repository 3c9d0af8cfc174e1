package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	gdrive "github.com/mtoivanen/gdrive-go"
	"github.com/mtoivanen/gdrive-go/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath string
	flagVerbose    bool
	flagQuiet      bool
)

// resolvedCfg holds the effective configuration loaded by
// PersistentPreRunE, available to all subcommands afterwards.
var resolvedCfg *config.Config

// httpClientTimeout prevents hung connections from blocking CLI
// commands indefinitely.
const httpClientTimeout = 30 * time.Second

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "gdrive",
		Short:   "Google Drive upload/download client",
		Long:    "A concurrency-guarded, rate-limited Google Drive client for uploads, downloads, folders, and comments.",
		Version: version,
		// Silence Cobra's default error/usage printing — main handles it.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return loadConfig()
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")

	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newPutCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newMkdirCmd())
	cmd.AddCommand(newCommentCmd())

	return cmd
}

func loadConfig() error {
	path := flagConfigPath
	if path == "" {
		path = config.DefaultConfigPath()
	}

	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	resolvedCfg = cfg

	return nil
}

// buildLogger creates an slog.Logger from the config log level; the
// --verbose and --quiet flags override it because flags always win.
func buildLogger() *slog.Logger {
	level := slog.LevelInfo

	if resolvedCfg != nil {
		switch resolvedCfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	if flagVerbose {
		level = slog.LevelDebug
	}

	if flagQuiet {
		level = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// statusf prints a status message to stderr unless quiet mode is set or
// stderr is not a terminal (piped/captured output stays clean).
func statusf(format string, args ...any) {
	if flagQuiet || !isatty.IsTerminal(os.Stderr.Fd()) {
		return
	}

	fmt.Fprintf(os.Stderr, format, args...)
}

// newClient builds the wrapper client from the resolved config.
func newClient(ctx context.Context, logger *slog.Logger) (*gdrive.Client, error) {
	cfg := resolvedCfg

	bandwidth, err := config.ParseRate(cfg.BandwidthLimit)
	if err != nil {
		return nil, err
	}

	opts := []gdrive.Option{
		gdrive.WithLogger(logger),
		gdrive.WithHTTPClient(&http.Client{Timeout: httpClientTimeout}),
		gdrive.WithBandwidthLimit(bandwidth),
	}

	switch {
	case cfg.LockFile != "":
		opts = append(opts, gdrive.WithLockFile(cfg.LockFile))
	case cfg.SerializeCalls:
		opts = append(opts, gdrive.WithSerializedCalls())
	}

	return gdrive.New(ctx, cfg.Scopes, cfg.CredentialsPath, cfg.TokenPath, opts...)
}
