package tables

import "time"

// KeywordRow is one row of the keywords table.
type KeywordRow struct {
	ID      KeywordID
	Keyword string
}

const KeywordsTableName = "keywords.table"

func writeKeywordRow(record []string, header map[string]int, w *RowWriter) error {
	if err := w.WriteStringAsUint64(field(record, header, "id")); err != nil {
		return err
	}
	w.WriteString(field(record, header, "keyword"))
	return nil
}

func readKeywordRow(r *RowReader) KeywordRow {
	return KeywordRow{
		ID:      KeywordID(r.ReadUint64()),
		Keyword: r.ReadString(),
	}
}

// OpenKeywordsTable opens the keywords table for reading.
func OpenKeywordsTable(tablesRoot string, maxTTL time.Duration, now time.Time) (*Table[KeywordRow], error) {
	return Open(tablesRoot, KeywordsTableName, maxTTL, now, readKeywordRow)
}
