package tables

import (
	"log/slog"
	"time"
)

var cratesLogger = slog.Default().With("component", "crates_table")

// CrateRow is one row of the crates table: the canonical name, its
// repository URL (if any valid one was recorded), and its timestamps.
type CrateRow struct {
	ID        CrateID
	Name      string
	CreatedAt time.Time
	Repository string
	UpdatedAt time.Time
}

const CratesTableName = "crates.table"

func writeCrateRow(record []string, header map[string]int, w *RowWriter) error {
	name := field(record, header, "name")
	w.WriteString(name)
	if err := w.WriteStringAsUint64(field(record, header, "id")); err != nil {
		return err
	}
	if err := w.WriteStringAsDateTime(field(record, header, "created_at")); err != nil {
		return err
	}

	repo := field(record, header, "repository")
	if err := w.WriteStringAsURL(repo); err != nil {
		cratesLogger.Debug("invalid repository URL", "crate", name, "error", err)
		w.WriteString("")
	}

	return w.WriteStringAsDateTime(field(record, header, "updated_at"))
}

func readCrateRow(r *RowReader) CrateRow {
	return CrateRow{
		Name:       r.ReadString(),
		ID:         CrateID(r.ReadUint64()),
		CreatedAt:  r.ReadDateTime(),
		Repository: r.ReadString(),
		UpdatedAt:  r.ReadDateTime(),
	}
}

// OpenCratesTable opens the crates table for reading.
func OpenCratesTable(tablesRoot string, maxTTL time.Duration, now time.Time) (*Table[CrateRow], error) {
	return Open(tablesRoot, CratesTableName, maxTTL, now, readCrateRow)
}
