package tables

import "time"

// CategoryRow is one row of the categories table.
type CategoryRow struct {
	ID       CategoryID
	Category string
	Slug     string
}

const CategoriesTableName = "categories.table"

func writeCategoryRow(record []string, header map[string]int, w *RowWriter) error {
	if err := w.WriteStringAsUint64(field(record, header, "id")); err != nil {
		return err
	}
	w.WriteString(field(record, header, "category"))
	w.WriteString(field(record, header, "slug"))
	return nil
}

func readCategoryRow(r *RowReader) CategoryRow {
	return CategoryRow{
		ID:       CategoryID(r.ReadUint64()),
		Category: r.ReadString(),
		Slug:     r.ReadString(),
	}
}

// OpenCategoriesTable opens the categories table for reading.
func OpenCategoriesTable(tablesRoot string, maxTTL time.Duration, now time.Time) (*Table[CategoryRow], error) {
	return Open(tablesRoot, CategoriesTableName, maxTTL, now, readCategoryRow)
}
