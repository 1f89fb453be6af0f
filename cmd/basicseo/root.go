package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eringen/basicseo"
)

var (
	cfgFile string
	verbose bool
	cfg     basicseo.SiteConfig
	logger  *zap.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "basicseo",
	Short: "Publishing host with editor-controlled SEO metadata",
	Long: `basicseo serves pages, posts and products from SQLite with per-entry
title and meta description overrides, Open Graph tags and a hierarchical
sitemap.

Configuration comes from an optional YAML file, a .env file and the
environment (SITE_URL, ADMIN_PASSWORD, SESSION_SECRET, ...).

Example usage:
  basicseo serve --config site.yaml     # Start the server
  basicseo import content.yaml          # Load content fixtures
  basicseo sitemap /sitemap.xml         # Print a sitemap document`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func execute() error {
	return rootCmd.Execute()
}

func setVersion(v string) {
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func initConfig() error {
	zc := zap.NewProductionConfig()
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	zc.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	l, err := zc.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	logger = l

	cfg, err = basicseo.LoadConfig(cfgFile)
	if err != nil {
		return err
	}
	logger.Debug("configuration loaded",
		zap.String("url", cfg.URL),
		zap.String("database", cfg.DatabasePath),
		zap.String("sitemap_format", cfg.SitemapFormat))
	return nil
}

// openStore opens the configured database.
func openStore() (*basicseo.Store, error) {
	store, err := basicseo.NewStore(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", cfg.DatabasePath, err)
	}
	return store, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	// Skips config loading.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "basicseo %s\n", rootCmd.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
