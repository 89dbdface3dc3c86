// Package main is the edura-match CLI entry point.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rawanfarouq/EduRA-sub001/internal/config"
	"github.com/rawanfarouq/EduRA-sub001/pkg/utils"
)

const app = "edura-match"

var (
	cfgFile   string
	debugFlag bool
	jsonFlag  bool

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "Match tutor CVs to courses and notify tutors about new courses",
		Long: `edura-match ranks courses for a submitted CV and, when a course is published,
notifies every tutor whose CV matches it closely enough.`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is config.yaml in the current directory, if present)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&jsonFlag, "json", "j", false, "json format for logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads the config at path. With no path it uses ./config.yaml when that exists
// and the defaults otherwise. It returns the path actually loaded, or "" for defaults.
func loadConfig(path string) (*config.Config, string, error) {
	if path == "" {
		if cwd, err := os.Getwd(); err == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, err := os.Stat(fallback); err == nil {
				path = fallback
			}
		}
	}
	if path == "" {
		cfg, err := config.Default()
		return cfg, "", err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// setup loads the config and builds the logger every command starts with.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, path, err := loadConfig(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Debug = cfg.Debug || debugFlag
	cfg.JSONLogs = cfg.JSONLogs || jsonFlag
	logger, err := utils.NewLogger(cfg.Debug, cfg.JSONLogs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	logger.Debug("config loaded",
		zap.String("config_path", path),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("database_path", cfg.Storage.DatabasePath))
	return cfg, logger, nil
}
