package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vitaliisemenov/alert-history/internal/expr"
	"github.com/vitaliisemenov/alert-history/internal/facts"
	"github.com/vitaliisemenov/alert-history/internal/facts/collector"
	"github.com/vitaliisemenov/alert-history/internal/facts/progress"
	"github.com/vitaliisemenov/alert-history/internal/metrics"
	"github.com/vitaliisemenov/alert-history/pkg/logger"
)

const progressDelay = 500 * time.Millisecond

func (cli *CLI) appraiseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "appraise <crate>[@version] [<crate>[@version] ...]",
		Short: "Gather facts for one or more crates and evaluate the configured risk policy",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.runAppraise(cmd.Context(), args)
		},
	}
}

func (cli *CLI) runAppraise(ctx context.Context, args []string) error {
	cfg, err := cli.loadConfig()
	if err != nil {
		return err
	}

	log := logger.NewLogger(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		Filename:   cfg.Log.Filename,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})
	ctx = logger.WithRunID(ctx, logger.GenerateRunID())
	log = logger.FromContext(ctx, log)

	if cfg.GitHubToken != "" {
		if err := os.Setenv("APRZ_GITHUB_TOKEN", cfg.GitHubToken); err != nil {
			return fmt.Errorf("%w: setting APRZ_GITHUB_TOKEN: %v", facts.ErrConfig, err)
		}
	}

	refs := make([]facts.CrateRef, 0, len(args))
	for _, a := range args {
		ref, err := facts.ParseCrateRef(a)
		if err != nil {
			return fmt.Errorf("%w: %v", facts.ErrParse, err)
		}
		refs = append(refs, ref)
	}

	policy, err := cfg.CompilePolicy()
	if err != nil {
		return err
	}

	cacheDir, err := resolveCacheDir(cfg)
	if err != nil {
		return err
	}

	rep := progress.NewTerminal(progressDelay)
	defer rep.Done()

	now := time.Now()
	coll, err := collector.New(ctx, http.DefaultClient, collector.Config{
		CacheDir:      cacheDir,
		DumpURL:       cfg.DumpURL,
		CratesTTL:     cfg.CratesCacheTTL,
		HostingTTL:    cfg.HostingCacheTTL,
		CodebaseTTL:   cfg.CodebaseCacheTTL,
		CoverageTTL:   cfg.CoverageCacheTTL,
		AdvisoriesTTL: cfg.AdvisoriesCacheTTL,
	}, rep, now)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := coll.Close(); closeErr != nil {
			log.Warn("closing collector", "error", closeErr)
		}
	}()

	crateFacts, err := coll.Collect(ctx, refs, now)
	if err != nil {
		return err
	}

	defs := metrics.DefaultDefs()
	for i, cf := range crateFacts {
		if cf.CratesData.Kind != facts.Found {
			printUnresolved(refs[i], cf.CratesData)
			continue
		}
		appraisal := policy.Evaluate(metrics.Flatten(cf, defs), now)
		printAppraisal(cf, appraisal)
	}
	return nil
}

func printUnresolved(ref facts.CrateRef, result facts.ProviderResult[facts.CratesData]) {
	switch result.Kind {
	case facts.VersionNotFound:
		fmt.Printf("%-30s requested version not found\n", ref.String())
	default:
		fmt.Printf("%-30s not found", ref.String())
		if len(result.Suggestions) > 0 {
			fmt.Printf(" (did you mean: %s?)", strings.Join(result.Suggestions, ", "))
		}
		fmt.Println()
	}
}

func printAppraisal(cf facts.CrateFacts, a expr.Appraisal) {
	fmt.Printf("%-30s %-12s %-12s score=%5.1f (%d/%d points)\n",
		cf.Spec.Name(), cf.Spec.Version().String(), a.Risk, a.Score, a.AwardedPoints, a.AvailablePoints)

	for _, o := range a.Outcomes {
		if o.Disposition.Kind == expr.DispositionTrue {
			continue
		}
		fmt.Printf("  - %-24s %s\n", o.Name, o.Disposition)
	}
}
