package tables

import "time"

// UserRow is one row of the users table.
type UserRow struct {
	ID      UserID
	GHLogin string
	Name    string
}

const UsersTableName = "users.table"

func writeUserRow(record []string, header map[string]int, w *RowWriter) error {
	if err := w.WriteStringAsUint64(field(record, header, "id")); err != nil {
		return err
	}
	w.WriteString(field(record, header, "gh_login"))
	w.WriteString(field(record, header, "name"))
	return nil
}

func readUserRow(r *RowReader) UserRow {
	return UserRow{
		ID:      UserID(r.ReadUint64()),
		GHLogin: r.ReadString(),
		Name:    r.ReadString(),
	}
}

// OpenUsersTable opens the users table for reading.
func OpenUsersTable(tablesRoot string, maxTTL time.Duration, now time.Time) (*Table[UserRow], error) {
	return Open(tablesRoot, UsersTableName, maxTTL, now, readUserRow)
}
