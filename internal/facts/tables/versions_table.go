package tables

import (
	"log/slog"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/vitaliisemenov/alert-history/internal/facts"
)

var versionsLogger = slog.Default().With("component", "versions_table")

// VersionRow is one row of the versions table.
type VersionRow struct {
	ID            VersionID
	CrateID       CrateID
	Num           *semver.Version
	Downloads     uint64
	Edition       *uint64
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Description   string
	Features      string
	License       string
	RustVersion   string
	Yanked        bool
	Documentation string
	Homepage      string
}

// Edition resolves the raw edition number into facts.RustEdition.
func (v VersionRow) Edition_() facts.RustEdition {
	if v.Edition == nil {
		return facts.EditionUnknown
	}
	switch *v.Edition {
	case 2015:
		return facts.Edition2015
	case 2018:
		return facts.Edition2018
	case 2021:
		return facts.Edition2021
	case 2024:
		return facts.Edition2024
	default:
		return facts.EditionUnknown
	}
}

const VersionsTableName = "versions.table"

func writeVersionRow(record []string, header map[string]int, w *RowWriter) error {
	if err := w.WriteStringAsUint64(field(record, header, "id")); err != nil {
		return err
	}
	if err := w.WriteStringAsUint64(field(record, header, "crate_id")); err != nil {
		return err
	}
	num := field(record, header, "num")
	if err := w.WriteStringAsVersion(num); err != nil {
		return err
	}
	if err := w.WriteStringAsUint64(field(record, header, "downloads")); err != nil {
		return err
	}
	if err := w.WriteOptionalStringAsUint64(field(record, header, "edition")); err != nil {
		return err
	}
	if err := w.WriteStringAsDateTime(field(record, header, "created_at")); err != nil {
		return err
	}
	if err := w.WriteStringAsDateTime(field(record, header, "updated_at")); err != nil {
		return err
	}
	w.WriteString(field(record, header, "description"))
	w.WriteString(field(record, header, "features"))
	w.WriteString(field(record, header, "license"))
	w.WriteString(field(record, header, "rust_version"))
	if err := w.WriteStringAsBool(field(record, header, "yanked")); err != nil {
		return err
	}

	crateID := field(record, header, "crate_id")
	doc := field(record, header, "documentation")
	if err := w.WriteStringAsURL(doc); err != nil {
		versionsLogger.Debug("invalid documentation URL", "version", num, "crate_id", crateID, "error", err)
		w.WriteString("")
	}

	home := field(record, header, "homepage")
	if err := w.WriteStringAsURL(home); err != nil {
		versionsLogger.Debug("invalid homepage URL", "version", num, "crate_id", crateID, "error", err)
		w.WriteString("")
	}

	return nil
}

func readVersionRow(r *RowReader) VersionRow {
	return VersionRow{
		ID:            VersionID(r.ReadUint64()),
		CrateID:       CrateID(r.ReadUint64()),
		Num:           r.ReadVersion(),
		Downloads:     r.ReadUint64(),
		Edition:       r.ReadOptionalUint64(),
		CreatedAt:     r.ReadDateTime(),
		UpdatedAt:     r.ReadDateTime(),
		Description:   r.ReadString(),
		Features:      r.ReadString(),
		License:       r.ReadString(),
		RustVersion:   r.ReadString(),
		Yanked:        r.ReadBool(),
		Documentation: r.ReadString(),
		Homepage:      r.ReadString(),
	}
}

// OpenVersionsTable opens the versions table for reading.
func OpenVersionsTable(tablesRoot string, maxTTL time.Duration, now time.Time) (*Table[VersionRow], error) {
	return Open(tablesRoot, VersionsTableName, maxTTL, now, readVersionRow)
}
