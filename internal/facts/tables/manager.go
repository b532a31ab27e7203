package tables

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Manager owns every memory-mapped table for one run and re-ingests the
// registry dump when the tables on disk are missing or stale.
type Manager struct {
	Crates            *Table[CrateRow]
	Versions          *Table[VersionRow]
	Users             *Table[UserRow]
	Teams             *Table[TeamRow]
	Categories        *Table[CategoryRow]
	Keywords          *Table[KeywordRow]
	CratesCategories  *Table[CratesCategoriesRow]
	CratesKeywords    *Table[CratesKeywordsRow]
	CrateOwners       *Table[CrateOwnerRow]
	Dependencies      *Table[DependencyRow]
	CrateDownloads    *Table[CrateDownloadRow]
	VersionDownloads  *Table[VersionDownloadRow]
}

// OpenManager opens every table under tablesRoot, re-ingesting from
// dumpURL first if any table is missing or older than maxTTL.
func OpenManager(ctx context.Context, client *http.Client, dumpURL, tablesRoot string, maxTTL time.Duration, now time.Time) (*Manager, error) {
	mgr, err := openAll(tablesRoot, maxTTL, now)
	if err == nil {
		return mgr, nil
	}

	if ingestErr := Ingest(ctx, client, dumpURL, tablesRoot, now); ingestErr != nil {
		return nil, fmt.Errorf("tables stale or missing (%v) and re-ingest failed: %w", err, ingestErr)
	}

	return openAll(tablesRoot, maxTTL, now)
}

func openAll(tablesRoot string, maxTTL time.Duration, now time.Time) (*Manager, error) {
	crates, err := OpenCratesTable(tablesRoot, maxTTL, now)
	if err != nil {
		return nil, err
	}
	versions, err := OpenVersionsTable(tablesRoot, maxTTL, now)
	if err != nil {
		return nil, err
	}
	users, err := OpenUsersTable(tablesRoot, maxTTL, now)
	if err != nil {
		return nil, err
	}
	teams, err := OpenTeamsTable(tablesRoot, maxTTL, now)
	if err != nil {
		return nil, err
	}
	categories, err := OpenCategoriesTable(tablesRoot, maxTTL, now)
	if err != nil {
		return nil, err
	}
	keywords, err := OpenKeywordsTable(tablesRoot, maxTTL, now)
	if err != nil {
		return nil, err
	}
	cratesCategories, err := OpenCratesCategoriesTable(tablesRoot, maxTTL, now)
	if err != nil {
		return nil, err
	}
	cratesKeywords, err := OpenCratesKeywordsTable(tablesRoot, maxTTL, now)
	if err != nil {
		return nil, err
	}
	crateOwners, err := OpenCrateOwnersTable(tablesRoot, maxTTL, now)
	if err != nil {
		return nil, err
	}
	dependencies, err := OpenDependenciesTable(tablesRoot, maxTTL, now)
	if err != nil {
		return nil, err
	}
	crateDownloads, err := OpenCrateDownloadsTable(tablesRoot, maxTTL, now)
	if err != nil {
		return nil, err
	}
	versionDownloads, err := OpenVersionDownloadsTable(tablesRoot, maxTTL, now)
	if err != nil {
		return nil, err
	}

	return &Manager{
		Crates:           crates,
		Versions:         versions,
		Users:            users,
		Teams:            teams,
		Categories:       categories,
		Keywords:         keywords,
		CratesCategories: cratesCategories,
		CratesKeywords:   cratesKeywords,
		CrateOwners:      crateOwners,
		Dependencies:     dependencies,
		CrateDownloads:   crateDownloads,
		VersionDownloads: versionDownloads,
	}, nil
}

// Close unmaps every table, still attempting the rest after a failure, and
// returns every error encountered joined with errors.Join.
func (m *Manager) Close() error {
	var errs []error
	closers := []interface{ Close() error }{
		m.Crates, m.Versions, m.Users, m.Teams, m.Categories, m.Keywords,
		m.CratesCategories, m.CratesKeywords, m.CrateOwners, m.Dependencies,
		m.CrateDownloads, m.VersionDownloads,
	}
	for _, c := range closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
