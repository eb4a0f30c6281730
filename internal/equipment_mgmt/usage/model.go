// Package usage is the equipment ledger: one row per checkout, closed by exactly one check-in.
// An equipment item has at most one open row at any time.
package usage

import (
	"database/sql"
	"time"

	"equipment-tracker/internal/equipment_mgmt/holders"
)

const DateLayout = "2006-01-02"

// Usage は equipment_usage テーブルの1行を表す
type Usage struct {
	UsageID      uint64         `db:"usage_id"`
	UsageULID    string         `db:"usage_ulid"`
	EquipmentID  uint64         `db:"equipment_id"`
	HolderID     uint64         `db:"holder_id"`
	HolderType   holders.Type   `db:"holder_type"`
	LocationID   uint64         `db:"location_id"`
	CheckedOutOn time.Time      `db:"checked_out_on"`
	ReturnedOn   sql.NullTime   `db:"returned_on"`
	Note         sql.NullString `db:"note"`
	CreatedAt    time.Time      `db:"created_at"`
}

func (u Usage) Open() bool { return !u.ReturnedOn.Valid }

func (u Usage) Holder() holders.Ref {
	return holders.Ref{Type: u.HolderType, ID: u.HolderID}
}

// CurrentLocation is where an equipment item is while it is checked out.
// Open is nil when the item is on the shelf.
type CurrentLocation struct {
	EquipmentID   uint64
	EquipmentName string
	Open          *Usage
	LocationName  sql.NullString
	Building      sql.NullString
	RoomNo        sql.NullString
}

type Stats struct {
	TotalStudents  int64 `db:"total_students" json:"total_students"`
	TotalFaculty   int64 `db:"total_faculty" json:"total_faculty"`
	TotalEquipment int64 `db:"total_equipment" json:"total_equipment"`
	TotalLocations int64 `db:"total_locations" json:"total_locations"`
	CheckedOut     int64 `db:"checked_out" json:"checked_out"`
	TotalUsage     int64 `db:"total_usage" json:"total_usage"`
}

// 利用履歴一覧の検索条件
type Filter struct {
	EquipmentID *uint64
	HolderType  *holders.Type
	HolderID    *uint64
	LocationID  *uint64
	Open        *bool
}

// date truncates t to its calendar day in UTC, the precision of a DATE column.
func date(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
