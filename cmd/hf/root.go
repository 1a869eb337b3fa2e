package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/hupe1980/hfabric"
	"github.com/hupe1980/hfabric/internal/config"
	"github.com/spf13/cobra"
)

// app carries the state shared by all subcommands.
type app struct {
	configPath string
	envFile    string
	logLevel   string
	pkgDir     string
	remote     bool

	cfg    *config.Config
	logger *hfabric.Logger
}

func rootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Hadith-Fabric package tool",
		Long: `hf builds Hadith-Fabric packages from raw scraper output, publishes
them to S3 or MinIO and answers lookups, text searches, similarity and
narrator graph queries against a local or remote package.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Environment file loaded before the config")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVarP(&a.pkgDir, "pkg", "p", ".", "Package directory")
	cmd.PersistentFlags().BoolVar(&a.remote, "remote", false, "Read the package from the configured remote store")

	cmd.AddCommand(
		buildCmd(a),
		publishCmd(a),
		versionsCmd(a),
		inspectCmd(a),
		verifyCmd(a),
		getCmd(a),
		searchCmd(a),
		similarCmd(a),
		featureCmd(a),
		chainCmd(a),
		rawiCmd(a),
		pathCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(a.envFile); err != nil {
		return err
	}
	path := a.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg
	a.logger = newLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	return nil
}

func newLogger(w io.Writer, level, format string) *hfabric.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return hfabric.NewLogger(slog.NewJSONHandler(w, opts))
	}
	return hfabric.NewLogger(slog.NewTextHandler(w, opts))
}

// open opens the package selected by --pkg or --remote.
func (a *app) open(ctx context.Context) (*hfabric.HF, error) {
	src := hfabric.Local(a.pkgDir)
	if a.remote {
		store, err := a.remoteStore(ctx)
		if err != nil {
			return nil, err
		}
		src = hfabric.Remote(store)
	}
	return hfabric.Open(ctx, src,
		hfabric.WithLogger(a.logger),
		hfabric.WithMaterializeTimeout(a.cfg.MaterializeTimeout),
		hfabric.WithBlockCache(a.cfg.Cache.Bytes, a.cfg.Cache.BlockSize),
		hfabric.WithIORateLimit(a.cfg.IOBytesPerSec),
	)
}

// withHF opens the package, runs fn and closes the handle.
func (a *app) withHF(cmd *cobra.Command, fn func(ctx context.Context, hf *hfabric.HF) error) error {
	ctx := cmd.Context()
	hf, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer hf.Close()
	return fn(ctx, hf)
}
