package tables

import "time"

// CrateDownloadRow is one row of the crate_downloads table: total
// all-time downloads per crate.
type CrateDownloadRow struct {
	CrateID   CrateID
	Downloads uint64
}

const CrateDownloadsTableName = "crate_downloads.table"

func writeCrateDownloadRow(record []string, header map[string]int, w *RowWriter) error {
	if err := w.WriteStringAsUint64(field(record, header, "crate_id")); err != nil {
		return err
	}
	return w.WriteStringAsUint64(field(record, header, "downloads"))
}

func readCrateDownloadRow(r *RowReader) CrateDownloadRow {
	return CrateDownloadRow{
		CrateID:   CrateID(r.ReadUint64()),
		Downloads: r.ReadUint64(),
	}
}

// OpenCrateDownloadsTable opens the crate_downloads table for reading.
func OpenCrateDownloadsTable(tablesRoot string, maxTTL time.Duration, now time.Time) (*Table[CrateDownloadRow], error) {
	return Open(tablesRoot, CrateDownloadsTableName, maxTTL, now, readCrateDownloadRow)
}
