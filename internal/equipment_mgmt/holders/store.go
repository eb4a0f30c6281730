package holders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"equipment-tracker/internal/platform/apierr"
	"equipment-tracker/internal/platform/db"
	"equipment-tracker/internal/platform/paging"
)

// variant maps a holder type to the table holding it.
type variant struct {
	table string
	key   string
}

var variants = map[Type]variant{
	TypeStudent: {table: "students", key: "student_id"},
	TypeFaculty: {table: "faculty", key: "faculty_id"},
}

func variantOf(t Type) (variant, error) {
	v, ok := variants[t]
	if !ok {
		return variant{}, apierr.ErrInvalid("holder_type must be Student or Faculty")
	}
	return v, nil
}

var (
	studentCols = []any{"student_id", "name", "department", "year", "contact", "email", "created_at"}
	facultyCols = []any{"faculty_id", "name", "department", "designation", "contact", "email", "created_at"}
)

type Store interface {
	InsertStudent(ctx context.Context, s *Student) (uint64, error)
	GetStudent(ctx context.Context, id uint64) (*Student, error)
	ListStudents(ctx context.Context, p paging.Page) ([]Student, int64, error)

	InsertFaculty(ctx context.Context, f *Faculty) (uint64, error)
	GetFaculty(ctx context.Context, id uint64) (*Faculty, error)
	ListFaculty(ctx context.Context, p paging.Page) ([]Faculty, int64, error)

	// Delete removes a holder that no usage row references.
	Delete(ctx context.Context, ref Ref) error
}

type SQLStore struct{ db *sqlx.DB }

func NewStore(x *sqlx.DB) *SQLStore { return &SQLStore{db: x} }

// LockShared reports whether the holder exists, holding a shared row lock until tx ends
// so a concurrent delete of the same holder waits for the caller to commit.
func LockShared(ctx context.Context, tx db.DBTX, ref Ref) (bool, error) {
	v, err := variantOf(ref.Type)
	if err != nil {
		return false, err
	}
	q := fmt.Sprintf("SELECT 1 FROM %s WHERE %s = ? FOR SHARE", v.table, v.key)
	var one int
	err = tx.QueryRowContext(ctx, q, ref.ID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ---------- students ----------

func (s *SQLStore) InsertStudent(ctx context.Context, st *Student) (uint64, error) {
	rec := goqu.Record{
		"name":       st.Name,
		"department": st.Department,
		"year":       st.Year,
		"contact":    st.Contact,
		"email":      st.Email,
	}
	if st.StudentID != 0 {
		rec["student_id"] = st.StudentID
	}
	return s.insert(ctx, "students", rec, "student")
}

func (s *SQLStore) GetStudent(ctx context.Context, id uint64) (*Student, error) {
	q, args, err := db.Q.From("students").Select(studentCols...).
		Where(goqu.C("student_id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	var st Student
	if err := s.db.GetContext(ctx, &st, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &st, nil
}

func (s *SQLStore) ListStudents(ctx context.Context, p paging.Page) ([]Student, int64, error) {
	var out []Student
	total, err := s.list(ctx, "students", "student_id", studentCols, p, &out)
	return out, total, err
}

// ---------- faculty ----------

func (s *SQLStore) InsertFaculty(ctx context.Context, f *Faculty) (uint64, error) {
	rec := goqu.Record{
		"name":        f.Name,
		"department":  f.Department,
		"designation": f.Designation,
		"contact":     f.Contact,
		"email":       f.Email,
	}
	if f.FacultyID != 0 {
		rec["faculty_id"] = f.FacultyID
	}
	return s.insert(ctx, "faculty", rec, "faculty")
}

func (s *SQLStore) GetFaculty(ctx context.Context, id uint64) (*Faculty, error) {
	q, args, err := db.Q.From("faculty").Select(facultyCols...).
		Where(goqu.C("faculty_id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	var f Faculty
	if err := s.db.GetContext(ctx, &f, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

func (s *SQLStore) ListFaculty(ctx context.Context, p paging.Page) ([]Faculty, int64, error) {
	var out []Faculty
	total, err := s.list(ctx, "faculty", "faculty_id", facultyCols, p, &out)
	return out, total, err
}

// ---------- shared ----------

func (s *SQLStore) insert(ctx context.Context, table string, rec goqu.Record, what string) (uint64, error) {
	q, args, err := db.Q.Insert(table).Rows(rec).Prepared(true).ToSQL()
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		if db.IsDuplicateKey(err) {
			return 0, apierr.ErrConflict(what + " id already exists")
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (s *SQLStore) list(ctx context.Context, table, key string, cols []any, p paging.Page, dest any) (int64, error) {
	cq, cargs, err := db.Q.From(table).Select(goqu.COUNT(goqu.Star())).Prepared(true).ToSQL()
	if err != nil {
		return 0, err
	}
	var total int64
	if err := s.db.GetContext(ctx, &total, cq, cargs...); err != nil {
		return 0, err
	}

	order := goqu.C(key).Desc()
	if p.Asc() {
		order = goqu.C(key).Asc()
	}
	q, args, err := db.Q.From(table).Select(cols...).Order(order).
		Limit(uint(p.Limit)).Offset(uint(p.Offset)).Prepared(true).ToSQL()
	if err != nil {
		return 0, err
	}
	if err := s.db.SelectContext(ctx, dest, q, args...); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *SQLStore) Delete(ctx context.Context, ref Ref) error {
	v, err := variantOf(ref.Type)
	if err != nil {
		return err
	}
	return db.RunInTx(ctx, s.db.DB, nil, func(ctx context.Context, tx db.DBTX) error {
		var one int
		err := tx.QueryRowContext(ctx,
			fmt.Sprintf("SELECT 1 FROM %s WHERE %s = ? FOR UPDATE", v.table, v.key), ref.ID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return apierr.ErrNotFound(string(ref.Type) + " not found")
		}
		if err != nil {
			return err
		}

		// 利用履歴が1件でもあれば削除不可（返却済みも含む）
		err = tx.QueryRowContext(ctx, `
SELECT 1 FROM equipment_usage
WHERE holder_type = ? AND holder_id = ?
LIMIT 1
FOR SHARE`, string(ref.Type), ref.ID).Scan(&one)
		switch {
		case err == nil:
			return apierr.ErrConflict(string(ref.Type) + " has usage records and cannot be deleted")
		case !errors.Is(err, sql.ErrNoRows):
			return err
		}

		_, err = tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s = ?", v.table, v.key), ref.ID)
		return err
	})
}
