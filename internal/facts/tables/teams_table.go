package tables

import "time"

// TeamRow is one row of the teams table.
type TeamRow struct {
	ID    TeamID
	Login string
	Name  string
}

const TeamsTableName = "teams.table"

func writeTeamRow(record []string, header map[string]int, w *RowWriter) error {
	if err := w.WriteStringAsUint64(field(record, header, "id")); err != nil {
		return err
	}
	w.WriteString(field(record, header, "login"))
	w.WriteString(field(record, header, "name"))
	return nil
}

func readTeamRow(r *RowReader) TeamRow {
	return TeamRow{
		ID:    TeamID(r.ReadUint64()),
		Login: r.ReadString(),
		Name:  r.ReadString(),
	}
}

// OpenTeamsTable opens the teams table for reading.
func OpenTeamsTable(tablesRoot string, maxTTL time.Duration, now time.Time) (*Table[TeamRow], error) {
	return Open(tablesRoot, TeamsTableName, maxTTL, now, readTeamRow)
}
