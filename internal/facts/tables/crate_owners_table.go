package tables

import (
	"fmt"
	"time"
)

// OwnerKind distinguishes a user owner from a team owner in the
// crate_owners table.
type OwnerKind int

const (
	OwnerKindUser OwnerKind = iota
	OwnerKindTeam
)

// CrateOwnerRow is one row of the crate_owners table.
type CrateOwnerRow struct {
	CrateID   CrateID
	ownerKind uint64
	OwnerID   uint64
}

// Owner resolves the raw owner_kind/owner_id pair into a typed value.
func (r CrateOwnerRow) Owner() (OwnerKind, uint64) {
	switch r.ownerKind {
	case 0:
		return OwnerKindUser, r.OwnerID
	case 1:
		return OwnerKindTeam, r.OwnerID
	default:
		panic(fmt.Sprintf("corrupt table: invalid owner_kind %d", r.ownerKind))
	}
}

const CrateOwnersTableName = "crate_owners.table"

func writeCrateOwnerRow(record []string, header map[string]int, w *RowWriter) error {
	kind := field(record, header, "owner_kind")
	if kind != "0" && kind != "1" {
		return fmt.Errorf("invalid owner_kind: %s", kind)
	}

	if err := w.WriteStringAsUint64(field(record, header, "crate_id")); err != nil {
		return err
	}
	if err := w.WriteStringAsUint64(kind); err != nil {
		return err
	}
	return w.WriteStringAsUint64(field(record, header, "owner_id"))
}

func readCrateOwnerRow(r *RowReader) CrateOwnerRow {
	return CrateOwnerRow{
		CrateID:   CrateID(r.ReadUint64()),
		ownerKind: r.ReadUint64(),
		OwnerID:   r.ReadUint64(),
	}
}

// OpenCrateOwnersTable opens the crate_owners table for reading.
func OpenCrateOwnersTable(tablesRoot string, maxTTL time.Duration, now time.Time) (*Table[CrateOwnerRow], error) {
	return Open(tablesRoot, CrateOwnersTableName, maxTTL, now, readCrateOwnerRow)
}
