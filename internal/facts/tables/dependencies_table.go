package tables

import "time"

// DependencyRow is one row of the dependencies table.
type DependencyRow struct {
	VersionID VersionID
	CrateID   CrateID
	Features  []string
}

const DependenciesTableName = "dependencies.table"

func writeDependencyRow(record []string, header map[string]int, w *RowWriter) error {
	if err := w.WriteStringAsUint64(field(record, header, "version_id")); err != nil {
		return err
	}
	if err := w.WriteStringAsUint64(field(record, header, "crate_id")); err != nil {
		return err
	}
	return w.WritePgArrayAsStringSlice(field(record, header, "features"))
}

func readDependencyRow(r *RowReader) DependencyRow {
	return DependencyRow{
		VersionID: VersionID(r.ReadUint64()),
		CrateID:   CrateID(r.ReadUint64()),
		Features:  r.ReadStringSlice(),
	}
}

// OpenDependenciesTable opens the dependencies table for reading.
func OpenDependenciesTable(tablesRoot string, maxTTL time.Duration, now time.Time) (*Table[DependencyRow], error) {
	return Open(tablesRoot, DependenciesTableName, maxTTL, now, readDependencyRow)
}
