package tables

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/vitaliisemenov/alert-history/internal/facts/resilient"
)

var ingestLogger = slog.Default().With("component", "tables_ingest")

// csvMember maps a CSV file name inside the registry dump archive to the
// writer invoked for each of its rows.
type csvMember struct {
	csvName   string
	tableName string
	writeRow  func(record []string, header map[string]int, w *RowWriter) error
}

// knownMembers lists every relation converted during ingest. Entries not
// listed here are skipped as the tar stream is read.
func knownMembers() []csvMember {
	return []csvMember{
		{"crates.csv", CratesTableName, writeCrateRow},
		{"versions.csv", VersionsTableName, writeVersionRow},
		{"users.csv", UsersTableName, writeUserRow},
		{"teams.csv", TeamsTableName, writeTeamRow},
		{"categories.csv", CategoriesTableName, writeCategoryRow},
		{"keywords.csv", KeywordsTableName, writeKeywordRow},
		{"crates_categories.csv", CratesCategoriesTableName, writeCratesCategoriesRow},
		{"crates_keywords.csv", CratesKeywordsTableName, writeCratesKeywordsRow},
		{"crate_owners.csv", CrateOwnersTableName, writeCrateOwnerRow},
		{"dependencies.csv", DependenciesTableName, writeDependencyRow},
		{"crate_downloads.csv", CrateDownloadsTableName, writeCrateDownloadRow},
		{"version_downloads.csv", VersionDownloadsTableName, writeVersionDownloadRow},
	}
}

// Ingest downloads the registry's compressed dump archive from dumpURL and
// converts every known CSV member directly into its binary table under
// tablesRoot, without ever writing the decompressed tarball to disk: the
// HTTP response body is decompressed and un-tarred in a single streaming
// pass, each CSV member parsed and encoded row by row as it arrives.
func Ingest(ctx context.Context, client *http.Client, dumpURL, tablesRoot string, now time.Time) error {
	members := knownMembers()
	byName := make(map[string]csvMember, len(members))
	for _, m := range members {
		byName[m.csvName] = m
	}

	_, err := resilient.Download(ctx, 10*time.Minute, func(ctx context.Context) (struct{}, error) {
		resp, err := resilient.Get(ctx, client, dumpURL)
		if err != nil {
			return struct{}{}, err
		}
		defer resilient.DrainAndClose(resp)

		if resp.StatusCode != http.StatusOK {
			return struct{}{}, fmt.Errorf("unexpected status %d fetching dump", resp.StatusCode)
		}

		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return struct{}{}, fmt.Errorf("opening gzip stream: %w", err)
		}
		defer gz.Close()

		tr := tar.NewReader(gz)
		seen := make(map[string]bool, len(members))

		for {
			hdr, err := tr.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return struct{}{}, fmt.Errorf("reading tar stream: %w", err)
			}
			if hdr.Typeflag != tar.TypeReg {
				continue
			}

			name := filepath.Base(hdr.Name)
			member, ok := byName[name]
			if !ok {
				continue
			}

			ingestLogger.Debug("ingesting table member", "csv", name, "table", member.tableName)
			if err := Create(tablesRoot, member.tableName, tr, now, member.writeRow); err != nil {
				return struct{}{}, fmt.Errorf("converting %s: %w", name, err)
			}
			seen[name] = true
		}

		var missing []string
		for _, m := range members {
			if !seen[m.csvName] {
				missing = append(missing, m.csvName)
			}
		}
		if len(missing) > 0 {
			return struct{}{}, fmt.Errorf("dump archive missing expected members: %s", strings.Join(missing, ", "))
		}

		return struct{}{}, nil
	})

	return err
}
