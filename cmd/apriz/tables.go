package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/vitaliisemenov/alert-history/internal/facts"
	"github.com/vitaliisemenov/alert-history/internal/facts/tables"
)

func (cli *CLI) tablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "Force a fresh ingest of the registry dump into the binary table cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.runTables(cmd.Context())
		},
	}
}

func (cli *CLI) runTables(ctx context.Context) error {
	cfg, err := cli.loadConfig()
	if err != nil {
		return err
	}

	cacheDir, err := resolveCacheDir(cfg)
	if err != nil {
		return err
	}
	cratesDir := filepath.Join(cacheDir, "crates")
	if err := os.MkdirAll(cratesDir, 0o755); err != nil {
		return fmt.Errorf("%w: creating crates cache directory: %v", facts.ErrIO, err)
	}

	if err := tables.Ingest(ctx, http.DefaultClient, cfg.DumpURL, cratesDir, time.Now()); err != nil {
		return err
	}

	fmt.Println("Registry tables re-ingested successfully")
	return nil
}
