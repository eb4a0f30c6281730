// Package locations is the reference list of places equipment can be taken to.
package locations

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"equipment-tracker/internal/platform/apierr"
	"equipment-tracker/internal/platform/db"
	"equipment-tracker/internal/platform/paging"
)

type Location struct {
	LocationID   uint64    `db:"location_id" json:"location_id"`
	LocationName *string   `db:"location_name" json:"location_name,omitempty"`
	Building     *string   `db:"building" json:"building,omitempty"`
	RoomNo       *string   `db:"room_no" json:"room_no,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type CreateLocationRequest struct {
	LocationID   uint64  `json:"location_id"` // 0 = auto
	LocationName *string `json:"location_name,omitempty" binding:"omitempty,max=100"`
	Building     *string `json:"building,omitempty" binding:"omitempty,max=100"`
	RoomNo       *string `json:"room_no,omitempty" binding:"omitempty,max=20"`
}

var columns = []any{"location_id", "location_name", "building", "room_no", "created_at"}

type Store interface {
	Insert(ctx context.Context, l *Location) (uint64, error)
	Get(ctx context.Context, id uint64) (*Location, error)
	List(ctx context.Context, p paging.Page) ([]Location, int64, error)
	Delete(ctx context.Context, id uint64) error
}

type SQLStore struct{ db *sqlx.DB }

func NewStore(x *sqlx.DB) *SQLStore { return &SQLStore{db: x} }

// LockShared reports whether the location exists and keeps it from being deleted until tx ends.
func LockShared(ctx context.Context, tx db.DBTX, id uint64) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM locations WHERE location_id = ? FOR SHARE`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *SQLStore) Insert(ctx context.Context, l *Location) (uint64, error) {
	rec := goqu.Record{
		"location_name": l.LocationName,
		"building":      l.Building,
		"room_no":       l.RoomNo,
	}
	if l.LocationID != 0 {
		rec["location_id"] = l.LocationID
	}
	q, args, err := db.Q.Insert("locations").Rows(rec).Prepared(true).ToSQL()
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		if db.IsDuplicateKey(err) {
			return 0, apierr.ErrConflict("location id already exists")
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (s *SQLStore) Get(ctx context.Context, id uint64) (*Location, error) {
	q, args, err := db.Q.From("locations").Select(columns...).
		Where(goqu.C("location_id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	var l Location
	if err := s.db.GetContext(ctx, &l, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func (s *SQLStore) List(ctx context.Context, p paging.Page) ([]Location, int64, error) {
	var total int64
	cq, cargs, err := db.Q.From("locations").Select(goqu.COUNT(goqu.Star())).Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, err
	}
	if err := s.db.GetContext(ctx, &total, cq, cargs...); err != nil {
		return nil, 0, err
	}

	order := goqu.C("location_id").Desc()
	if p.Asc() {
		order = goqu.C("location_id").Asc()
	}
	q, args, err := db.Q.From("locations").Select(columns...).Order(order).
		Limit(uint(p.Limit)).Offset(uint(p.Offset)).Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, err
	}
	var out []Location
	if err := s.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Delete fails with a conflict while any usage row (open or closed) references the location.
func (s *SQLStore) Delete(ctx context.Context, id uint64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM locations WHERE location_id = ?`, id)
	if err != nil {
		if db.IsRowReferenced(err) {
			return apierr.ErrConflict("location has usage records and cannot be deleted")
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apierr.ErrNotFound("location not found")
	}
	return nil
}
