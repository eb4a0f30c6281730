package equipment

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"

	"equipment-tracker/internal/platform/apierr"
	"equipment-tracker/internal/platform/db"
	"equipment-tracker/internal/platform/paging"
)

var columns = []any{"equipment_id", "name", "category", "purchase_date", "condition_status", "archived_at", "created_at"}

type Store interface {
	Insert(ctx context.Context, e *Equipment) (uint64, error)
	Get(ctx context.Context, id uint64) (*Equipment, error)
	List(ctx context.Context, q ListQuery, p paging.Page) ([]Equipment, int64, error)
	UpdateAttributes(ctx context.Context, id uint64, category, condition *string) error
	Archive(ctx context.Context, id uint64, at time.Time) error
	Delete(ctx context.Context, id uint64) error
}

type SQLStore struct{ db *sqlx.DB }

func NewStore(x *sqlx.DB) *SQLStore { return &SQLStore{db: x} }

func (s *SQLStore) Insert(ctx context.Context, e *Equipment) (uint64, error) {
	rec := goqu.Record{
		"name":             e.Name,
		"category":         e.Category,
		"purchase_date":    e.PurchaseDate,
		"condition_status": e.ConditionStatus,
	}
	if e.EquipmentID != 0 {
		rec["equipment_id"] = e.EquipmentID
	}
	q, args, err := db.Q.Insert("equipment").Rows(rec).Prepared(true).ToSQL()
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		if db.IsDuplicateKey(err) {
			return 0, apierr.ErrConflict("equipment id already exists")
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Get returns (nil, nil) when absent.
func (s *SQLStore) Get(ctx context.Context, id uint64) (*Equipment, error) {
	q, args, err := db.Q.From("equipment").Select(columns...).
		Where(goqu.C("equipment_id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	var e Equipment
	if err := s.db.GetContext(ctx, &e, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (s *SQLStore) List(ctx context.Context, lq ListQuery, p paging.Page) ([]Equipment, int64, error) {
	var where []exp.Expression
	if lq.Category != nil {
		where = append(where, goqu.C("category").Eq(*lq.Category))
	}
	if lq.NameLike != nil {
		where = append(where, goqu.C("name").Like("%"+*lq.NameLike+"%"))
	}
	if !lq.IncludeArchived {
		where = append(where, goqu.C("archived_at").IsNull())
	}
	base := db.Q.From("equipment").Where(where...)

	cq, cargs, err := base.Select(goqu.COUNT(goqu.Star())).Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := s.db.GetContext(ctx, &total, cq, cargs...); err != nil {
		return nil, 0, err
	}

	order := goqu.C("equipment_id").Desc()
	if p.Asc() {
		order = goqu.C("equipment_id").Asc()
	}
	q, args, err := base.Select(columns...).Order(order).
		Limit(uint(p.Limit)).Offset(uint(p.Offset)).Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, err
	}
	var out []Equipment
	if err := s.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *SQLStore) UpdateAttributes(ctx context.Context, id uint64, category, condition *string) error {
	rec := goqu.Record{}
	if category != nil {
		rec["category"] = *category
	}
	if condition != nil {
		rec["condition_status"] = *condition
	}
	if len(rec) == 0 {
		return nil
	}
	q, args, err := db.Q.Update("equipment").Set(rec).
		Where(goqu.C("equipment_id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, q, args...)
	return err
}

// lockForChange takes the row lock that checkout also takes, so archive/delete
// and a checkout of the same equipment never interleave.
func lockForChange(ctx context.Context, tx db.DBTX, id uint64) (archived bool, err error) {
	var archivedAt sql.NullTime
	err = tx.QueryRowContext(ctx,
		`SELECT archived_at FROM equipment WHERE equipment_id = ? FOR UPDATE`, id).Scan(&archivedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, apierr.ErrNotFound("equipment not found")
	}
	if err != nil {
		return false, err
	}
	return archivedAt.Valid, nil
}

func (s *SQLStore) Archive(ctx context.Context, id uint64, at time.Time) error {
	return db.RunInTx(ctx, s.db.DB, nil, func(ctx context.Context, tx db.DBTX) error {
		archived, err := lockForChange(ctx, tx, id)
		if err != nil {
			return err
		}
		if archived {
			return apierr.ErrConflict("equipment is already archived")
		}

		var one int
		err = tx.QueryRowContext(ctx,
			`SELECT 1 FROM equipment_usage WHERE open_equipment_id = ? LIMIT 1`, id).Scan(&one)
		switch {
		case err == nil:
			return apierr.ErrConflict("equipment is checked out and cannot be archived")
		case !errors.Is(err, sql.ErrNoRows):
			return err
		}

		_, err = tx.ExecContext(ctx, `UPDATE equipment SET archived_at = ? WHERE equipment_id = ?`, at, id)
		return err
	})
}

func (s *SQLStore) Delete(ctx context.Context, id uint64) error {
	return db.RunInTx(ctx, s.db.DB, nil, func(ctx context.Context, tx db.DBTX) error {
		archived, err := lockForChange(ctx, tx, id)
		if err != nil {
			return err
		}
		if !archived {
			return apierr.ErrConflict("equipment must be archived before it can be deleted")
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM equipment WHERE equipment_id = ?`, id)
		if db.IsRowReferenced(err) {
			return apierr.ErrConflict("equipment has usage records and cannot be deleted")
		}
		return err
	})
}
