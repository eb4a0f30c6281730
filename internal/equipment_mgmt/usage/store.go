package usage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"

	"equipment-tracker/internal/equipment_mgmt/holders"
	"equipment-tracker/internal/equipment_mgmt/locations"
	"equipment-tracker/internal/platform/apierr"
	"equipment-tracker/internal/platform/db"
	"equipment-tracker/internal/platform/paging"
)

// openUsageIndex is the unique index over the generated open_equipment_id column.
const openUsageIndex = "uq_usage_open_equipment"

// LedgerTx is the set of statements a checkout or check-in runs inside one transaction.
type LedgerTx interface {
	// LockEquipment row-locks the equipment until commit; every checkout of the
	// same item queues behind it.
	LockEquipment(ctx context.Context, equipmentID uint64) (found, archived bool, err error)
	LocationExists(ctx context.Context, locationID uint64) (bool, error)
	HolderExists(ctx context.Context, ref holders.Ref) (bool, error)
	FindOpenUsage(ctx context.Context, equipmentID uint64) (*Usage, error)
	// InsertUsage fills in u.UsageID. A second open row for the same equipment is a conflict.
	InsertUsage(ctx context.Context, u *Usage) error
	LockUsage(ctx context.Context, usageID uint64) (*Usage, error)
	MarkReturned(ctx context.Context, usageID uint64, returnedOn time.Time) error
}

type Store interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error

	GetUsage(ctx context.Context, usageID uint64) (*Usage, error)
	ListOpen(ctx context.Context) ([]Usage, error)
	ListUsage(ctx context.Context, f Filter, p paging.Page) ([]Usage, int64, error)
	EachUsage(ctx context.Context, f Filter, fn func(u *Usage) error) error
	// CurrentLocation returns (nil, nil) when no equipment row has the id.
	CurrentLocation(ctx context.Context, equipmentID uint64) (*CurrentLocation, error)
	Stats(ctx context.Context) (*Stats, error)
}

var usageCols = []any{
	"usage_id", "usage_ulid", "equipment_id", "holder_id", "holder_type", "location_id",
	"checked_out_on", "returned_on", "note", "created_at",
}

const selectUsage = `
SELECT usage_id, usage_ulid, equipment_id, holder_id, holder_type, location_id,
       checked_out_on, returned_on, note, created_at
FROM equipment_usage
`

type SQLStore struct{ db *sqlx.DB }

func NewStore(x *sqlx.DB) *SQLStore { return &SQLStore{db: x} }

// InTx runs fn at READ COMMITTED: every read inside it is a locking read, so it
// always sees the latest committed rows and takes no gap locks.
func (s *SQLStore) InTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	return db.RunInTx(ctx, s.db.DB, opts, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &sqlLedgerTx{tx: tx})
	})
}

type sqlLedgerTx struct{ tx db.DBTX }

func (t *sqlLedgerTx) LockEquipment(ctx context.Context, equipmentID uint64) (bool, bool, error) {
	var archivedAt sql.NullTime
	err := t.tx.QueryRowContext(ctx,
		`SELECT archived_at FROM equipment WHERE equipment_id = ? FOR UPDATE`, equipmentID).Scan(&archivedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return true, archivedAt.Valid, nil
}

func (t *sqlLedgerTx) LocationExists(ctx context.Context, locationID uint64) (bool, error) {
	return locations.LockShared(ctx, t.tx, locationID)
}

func (t *sqlLedgerTx) HolderExists(ctx context.Context, ref holders.Ref) (bool, error) {
	return holders.LockShared(ctx, t.tx, ref)
}

func (t *sqlLedgerTx) FindOpenUsage(ctx context.Context, equipmentID uint64) (*Usage, error) {
	u, err := scanUsage(t.tx.QueryRowContext(ctx,
		selectUsage+`WHERE open_equipment_id = ? FOR UPDATE`, equipmentID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (t *sqlLedgerTx) InsertUsage(ctx context.Context, u *Usage) error {
	const q = `
INSERT INTO equipment_usage
  (usage_ulid, equipment_id, holder_id, holder_type, location_id, checked_out_on, returned_on, note, created_at)
VALUES (?, ?, ?, ?, ?, ?, NULL, ?, ?)
`
	res, err := t.tx.ExecContext(ctx, q,
		u.UsageULID,
		u.EquipmentID,
		u.HolderID,
		string(u.HolderType),
		u.LocationID,
		u.CheckedOutOn,
		nullStr(u.Note),
		u.CreatedAt,
	)
	if err != nil {
		if db.IsDuplicateKeyOn(err, openUsageIndex) {
			return apierr.ErrConflict("equipment is already checked out")
		}
		if db.IsNoReferencedRow(err) {
			return apierr.ErrNotFound("equipment or location not found")
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.UsageID = uint64(id)
	return nil
}

func (t *sqlLedgerTx) LockUsage(ctx context.Context, usageID uint64) (*Usage, error) {
	u, err := scanUsage(t.tx.QueryRowContext(ctx, selectUsage+`WHERE usage_id = ? FOR UPDATE`, usageID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (t *sqlLedgerTx) MarkReturned(ctx context.Context, usageID uint64, returnedOn time.Time) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE equipment_usage SET returned_on = ? WHERE usage_id = ? AND returned_on IS NULL`,
		returnedOn, usageID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apierr.ErrConflict("equipment already checked in")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUsage(r rowScanner) (*Usage, error) {
	var u Usage
	var holderType string
	err := r.Scan(
		&u.UsageID,
		&u.UsageULID,
		&u.EquipmentID,
		&u.HolderID,
		&holderType,
		&u.LocationID,
		&u.CheckedOutOn,
		&u.ReturnedOn,
		&u.Note,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.HolderType = holders.Type(holderType)
	return &u, nil
}

func nullStr(ns sql.NullString) any {
	if ns.Valid {
		return ns.String
	}
	return nil
}

// ---------- reads ----------

func (s *SQLStore) GetUsage(ctx context.Context, usageID uint64) (*Usage, error) {
	q, args, err := db.Q.From("equipment_usage").Select(usageCols...).
		Where(goqu.C("usage_id").Eq(usageID)).Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	var u Usage
	if err := s.db.GetContext(ctx, &u, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// ListOpen orders by checkout date, then usage id.
func (s *SQLStore) ListOpen(ctx context.Context) ([]Usage, error) {
	q, args, err := db.Q.From("equipment_usage").Select(usageCols...).
		Where(goqu.C("returned_on").IsNull()).
		Order(goqu.C("checked_out_on").Asc(), goqu.C("usage_id").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	var out []Usage
	if err := s.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func filterExprs(f Filter) []exp.Expression {
	var where []exp.Expression
	if f.EquipmentID != nil {
		where = append(where, goqu.C("equipment_id").Eq(*f.EquipmentID))
	}
	if f.HolderType != nil {
		where = append(where, goqu.C("holder_type").Eq(string(*f.HolderType)))
	}
	if f.HolderID != nil {
		where = append(where, goqu.C("holder_id").Eq(*f.HolderID))
	}
	if f.LocationID != nil {
		where = append(where, goqu.C("location_id").Eq(*f.LocationID))
	}
	if f.Open != nil {
		if *f.Open {
			where = append(where, goqu.C("returned_on").IsNull())
		} else {
			where = append(where, goqu.C("returned_on").IsNotNull())
		}
	}
	return where
}

func (s *SQLStore) ListUsage(ctx context.Context, f Filter, p paging.Page) ([]Usage, int64, error) {
	base := db.Q.From("equipment_usage").Where(filterExprs(f)...)

	cq, cargs, err := base.Select(goqu.COUNT(goqu.Star())).Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := s.db.GetContext(ctx, &total, cq, cargs...); err != nil {
		return nil, 0, err
	}

	order := goqu.C("usage_id").Desc()
	if p.Asc() {
		order = goqu.C("usage_id").Asc()
	}
	q, args, err := base.Select(usageCols...).Order(order).
		Limit(uint(p.Limit)).Offset(uint(p.Offset)).Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, err
	}
	var out []Usage
	if err := s.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// EachUsage streams matching rows in usage id order.
func (s *SQLStore) EachUsage(ctx context.Context, f Filter, fn func(u *Usage) error) error {
	q, args, err := db.Q.From("equipment_usage").Select(usageCols...).
		Where(filterExprs(f)...).Order(goqu.C("usage_id").Asc()).Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	rows, err := s.db.QueryxContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var u Usage
		if err := rows.StructScan(&u); err != nil {
			return err
		}
		if err := fn(&u); err != nil {
			return err
		}
	}
	return rows.Err()
}

type locationRow struct {
	EquipmentID   uint64         `db:"equipment_id"`
	EquipmentName string         `db:"equipment_name"`
	UsageID       sql.NullInt64  `db:"usage_id"`
	UsageULID     sql.NullString `db:"usage_ulid"`
	HolderID      sql.NullInt64  `db:"holder_id"`
	HolderType    sql.NullString `db:"holder_type"`
	LocationID    sql.NullInt64  `db:"location_id"`
	CheckedOutOn  sql.NullTime   `db:"checked_out_on"`
	Note          sql.NullString `db:"note"`
	CreatedAt     sql.NullTime   `db:"created_at"`
	LocationName  sql.NullString `db:"location_name"`
	Building      sql.NullString `db:"building"`
	RoomNo        sql.NullString `db:"room_no"`
}

func (s *SQLStore) CurrentLocation(ctx context.Context, equipmentID uint64) (*CurrentLocation, error) {
	q, args, err := db.Q.From(goqu.T("equipment").As("e")).
		LeftJoin(goqu.T("equipment_usage").As("u"),
			goqu.On(goqu.I("u.open_equipment_id").Eq(goqu.I("e.equipment_id")))).
		LeftJoin(goqu.T("locations").As("l"),
			goqu.On(goqu.I("l.location_id").Eq(goqu.I("u.location_id")))).
		Select(
			goqu.I("e.equipment_id"),
			goqu.I("e.name").As("equipment_name"),
			goqu.I("u.usage_id"),
			goqu.I("u.usage_ulid"),
			goqu.I("u.holder_id"),
			goqu.I("u.holder_type"),
			goqu.I("u.location_id"),
			goqu.I("u.checked_out_on"),
			goqu.I("u.note"),
			goqu.I("u.created_at"),
			goqu.I("l.location_name"),
			goqu.I("l.building"),
			goqu.I("l.room_no"),
		).
		Where(goqu.I("e.equipment_id").Eq(equipmentID)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	var row locationRow
	if err := s.db.GetContext(ctx, &row, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	cl := &CurrentLocation{
		EquipmentID:   row.EquipmentID,
		EquipmentName: row.EquipmentName,
		LocationName:  row.LocationName,
		Building:      row.Building,
		RoomNo:        row.RoomNo,
	}
	if row.UsageID.Valid {
		cl.Open = &Usage{
			UsageID:      uint64(row.UsageID.Int64),
			UsageULID:    row.UsageULID.String,
			EquipmentID:  row.EquipmentID,
			HolderID:     uint64(row.HolderID.Int64),
			HolderType:   holders.Type(row.HolderType.String),
			LocationID:   uint64(row.LocationID.Int64),
			CheckedOutOn: row.CheckedOutOn.Time,
			Note:         row.Note,
			CreatedAt:    row.CreatedAt.Time,
		}
	}
	return cl, nil
}

const statsQuery = `
SELECT
  (SELECT COUNT(*) FROM students)                                   AS total_students,
  (SELECT COUNT(*) FROM faculty)                                    AS total_faculty,
  (SELECT COUNT(*) FROM equipment)                                  AS total_equipment,
  (SELECT COUNT(*) FROM locations)                                  AS total_locations,
  (SELECT COUNT(*) FROM equipment_usage WHERE returned_on IS NULL)  AS checked_out,
  (SELECT COUNT(*) FROM equipment_usage)                            AS total_usage
`

// Stats reads every count from one snapshot.
func (s *SQLStore) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	err := db.Snapshot(ctx, s.db.DB, func(ctx context.Context, tx db.DBTX) error {
		return tx.QueryRowContext(ctx, statsQuery).Scan(
			&st.TotalStudents,
			&st.TotalFaculty,
			&st.TotalEquipment,
			&st.TotalLocations,
			&st.CheckedOut,
			&st.TotalUsage,
		)
	})
	if err != nil {
		return nil, err
	}
	return &st, nil
}
