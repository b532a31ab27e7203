package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vitaliisemenov/alert-history/internal/config"
	"github.com/vitaliisemenov/alert-history/internal/facts"
)

// CLI holds the flags shared by every subcommand, mirroring the teacher's
// migration CLI's constructor-holds-shared-state shape.
type CLI struct {
	configPath string
}

// NewRootCommand builds the apriz root command and wires every subcommand.
func NewRootCommand() *cobra.Command {
	cli := &CLI{}

	root := &cobra.Command{
		Use:           "apriz",
		Short:         "Appraise crates.io packages against a risk policy",
		Long:          "apriz gathers facts about one or more crates, evaluates a configured risk policy against them, and prints the resulting risk band and score.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cli.configPath, "config", "", "path to a YAML configuration file (defaults to environment variables only)")

	root.AddCommand(cli.appraiseCommand(), cli.tablesCommand())
	return root
}

func (cli *CLI) loadConfig() (*config.Config, error) {
	if cli.configPath != "" {
		return config.LoadConfig(cli.configPath)
	}
	return config.LoadConfigFromEnv()
}

// resolveCacheDir returns the configured cache directory, or a platform
// cache root under "apriz" when none was configured, per §6's "platform-
// appropriate cache root" contract.
func resolveCacheDir(cfg *config.Config) (string, error) {
	if cfg.CacheDir != "" {
		return cfg.CacheDir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%w: resolving default cache directory: %v", facts.ErrIO, err)
	}
	return filepath.Join(base, "apriz"), nil
}
