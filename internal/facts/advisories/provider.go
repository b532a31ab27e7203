// Package advisories scans the RustSec advisory database for security
// advisories affecting a set of crates, both historically (any version
// ever affected) and for the specific version a spec names.
package advisories

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/vitaliisemenov/alert-history/internal/facts"
	"github.com/vitaliisemenov/alert-history/internal/facts/cache"
	"github.com/vitaliisemenov/alert-history/internal/facts/progress"
)

var logger = slog.Default().With("component", "advisories")

// lastSynced records when the advisory database was last cloned or
// fast-forwarded, cached independently of the database contents so a TTL
// hit can skip both the network round-trip and the disk walk that follows.
type lastSynced struct {
	Timestamp time.Time `json:"timestamp"`
}

func syncedAt(l lastSynced) time.Time { return l.Timestamp }

// Provider answers advisory queries against a database snapshot taken once
// at construction time; it does not re-sync mid-run.
type Provider struct {
	database  []advisory
	timestamp time.Time
	now       time.Time
}

// New opens (downloading or updating as needed) the advisory database
// rooted at cacheDir and loads it into memory.
func New(ctx context.Context, cacheDir string, ttl time.Duration, rep progress.Reporter, now time.Time) (*Provider, error) {
	syncPath := filepath.Join(cacheDir, "last_synced.json")
	repoPath := filepath.Join(cacheDir, "repo")

	var timestamp time.Time
	if cached, ok := cache.LoadWithTTL(syncPath, ttl, syncedAt, now, "advisory database"); ok {
		timestamp = cached.Timestamp
	} else {
		if err := ensureRepo(ctx, repoPath, rep); err != nil {
			return nil, fmt.Errorf("unable to download the advisory database: %w", err)
		}
		timestamp = now
		if err := cache.Save(lastSynced{Timestamp: timestamp}, syncPath); err != nil {
			return nil, err
		}
	}

	rep.SetIndeterminate(func() string { return "opening the advisory database" })
	db, err := loadDatabase(repoPath)
	if err != nil {
		return nil, fmt.Errorf("opening the advisory database: %w", err)
	}

	return &Provider{database: db, timestamp: timestamp, now: now}, nil
}

// GetAdvisoryData scans the whole database once, counting matches against
// every spec by crate name. Every spec yields Found, even one with zero
// matches: the database was queried successfully either way.
func (p *Provider) GetAdvisoryData(specs []facts.CrateSpec) map[string]facts.ProviderResult[facts.AdvisoryData] {
	type entry struct {
		spec facts.CrateSpec
		data facts.AdvisoryData
	}
	byName := make(map[string][]*entry)
	results := make(map[string]facts.ProviderResult[facts.AdvisoryData], len(specs))

	for _, spec := range specs {
		e := &entry{spec: spec, data: facts.AdvisoryData{}}
		byName[spec.Name()] = append(byName[spec.Name()], e)
	}

	checked, matched := 0, 0
	for _, adv := range p.database {
		checked++
		entries, ok := byName[adv.pkg]
		if !ok {
			continue
		}
		for _, e := range entries {
			matched++
			countAdvisory(&e.data.Total, adv)
			if adv.isVulnerable(e.spec.Version()) {
				countAdvisory(&e.data.PerVersion, adv)
			}
		}
	}

	logger.Debug("completed advisory database scan", "advisories_checked", checked, "matches", matched, "crates", len(byName))

	for _, entries := range byName {
		for _, e := range entries {
			results[e.spec.Key()] = facts.ResultFound(e.data)
		}
	}
	return results
}

func countAdvisory(counts *facts.AdvisoryCounts, adv advisory) {
	switch adv.informational {
	case "notice":
		counts.NoticeCount++
		return
	case "unmaintained":
		counts.UnmaintainedCount++
		return
	case "unsound":
		counts.UnsoundCount++
		return
	}
	if adv.informational != "" {
		return
	}

	switch adv.severity {
	case severityLow:
		counts.LowCount++
	case severityMedium:
		counts.MediumCount++
	case severityHigh:
		counts.HighCount++
	case severityCritical:
		counts.CriticalCount++
	}
}
