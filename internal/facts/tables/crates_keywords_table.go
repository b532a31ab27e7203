package tables

import "time"

// CratesKeywordsRow is one row of the crates/keywords join table.
type CratesKeywordsRow struct {
	CrateID   CrateID
	KeywordID KeywordID
}

const CratesKeywordsTableName = "crates_keywords.table"

func writeCratesKeywordsRow(record []string, header map[string]int, w *RowWriter) error {
	if err := w.WriteStringAsUint64(field(record, header, "crate_id")); err != nil {
		return err
	}
	return w.WriteStringAsUint64(field(record, header, "keyword_id"))
}

func readCratesKeywordsRow(r *RowReader) CratesKeywordsRow {
	return CratesKeywordsRow{
		CrateID:   CrateID(r.ReadUint64()),
		KeywordID: KeywordID(r.ReadUint64()),
	}
}

// OpenCratesKeywordsTable opens the crates/keywords join table for reading.
func OpenCratesKeywordsTable(tablesRoot string, maxTTL time.Duration, now time.Time) (*Table[CratesKeywordsRow], error) {
	return Open(tablesRoot, CratesKeywordsTableName, maxTTL, now, readCratesKeywordsRow)
}
