package tables

import "time"

// VersionDownloadRow is one row of the version_downloads table: a daily
// download count for one version.
type VersionDownloadRow struct {
	VersionID VersionID
	Downloads uint64
	Date      time.Time
}

const VersionDownloadsTableName = "version_downloads.table"

func writeVersionDownloadRow(record []string, header map[string]int, w *RowWriter) error {
	if err := w.WriteStringAsUint64(field(record, header, "version_id")); err != nil {
		return err
	}
	if err := w.WriteStringAsUint64(field(record, header, "downloads")); err != nil {
		return err
	}
	return w.WriteStringAsDate(field(record, header, "date"))
}

func readVersionDownloadRow(r *RowReader) VersionDownloadRow {
	return VersionDownloadRow{
		VersionID: VersionID(r.ReadUint64()),
		Downloads: r.ReadUint64(),
		Date:      r.ReadDate(),
	}
}

// OpenVersionDownloadsTable opens the version_downloads table for reading.
func OpenVersionDownloadsTable(tablesRoot string, maxTTL time.Duration, now time.Time) (*Table[VersionDownloadRow], error) {
	return Open(tablesRoot, VersionDownloadsTableName, maxTTL, now, readVersionDownloadRow)
}
