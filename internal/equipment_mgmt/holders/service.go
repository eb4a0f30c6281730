package holders

import (
	"context"

	"go.uber.org/zap"

	"equipment-tracker/internal/platform/apierr"
	"equipment-tracker/internal/platform/paging"
	"equipment-tracker/internal/platform/textnorm"
)

type Service struct {
	store Store
	log   *zap.Logger
}

func NewService(store Store, log *zap.Logger) *Service {
	return &Service{store: store, log: log}
}

func (s *Service) CreateStudent(ctx context.Context, req CreateStudentRequest) (*Student, error) {
	name := textnorm.Clean(req.Name)
	if name == "" {
		return nil, apierr.ErrInvalid("name is required")
	}
	st := &Student{
		StudentID:  req.StudentID,
		Name:       name,
		Department: textnorm.CleanPtr(req.Department),
		Year:       req.Year,
		Contact:    textnorm.CleanPtr(req.Contact),
		Email:      textnorm.CleanPtr(req.Email),
	}
	id, err := s.store.InsertStudent(ctx, st)
	if err != nil {
		return nil, apierr.FromStorage(err)
	}
	s.log.Info("student created", zap.Uint64("student_id", id))
	return s.GetStudent(ctx, id)
}

func (s *Service) GetStudent(ctx context.Context, id uint64) (*Student, error) {
	st, err := s.store.GetStudent(ctx, id)
	if err != nil {
		return nil, apierr.FromStorage(err)
	}
	if st == nil {
		return nil, apierr.ErrNotFound("student not found")
	}
	return st, nil
}

func (s *Service) ListStudents(ctx context.Context, p paging.Page) ([]Student, int64, error) {
	items, total, err := s.store.ListStudents(ctx, paging.Normalize(p))
	if err != nil {
		return nil, 0, apierr.FromStorage(err)
	}
	return items, total, nil
}

func (s *Service) CreateFaculty(ctx context.Context, req CreateFacultyRequest) (*Faculty, error) {
	name := textnorm.Clean(req.Name)
	if name == "" {
		return nil, apierr.ErrInvalid("name is required")
	}
	f := &Faculty{
		FacultyID:   req.FacultyID,
		Name:        name,
		Department:  textnorm.CleanPtr(req.Department),
		Designation: textnorm.CleanPtr(req.Designation),
		Contact:     textnorm.CleanPtr(req.Contact),
		Email:       textnorm.CleanPtr(req.Email),
	}
	id, err := s.store.InsertFaculty(ctx, f)
	if err != nil {
		return nil, apierr.FromStorage(err)
	}
	s.log.Info("faculty created", zap.Uint64("faculty_id", id))
	return s.GetFaculty(ctx, id)
}

func (s *Service) GetFaculty(ctx context.Context, id uint64) (*Faculty, error) {
	f, err := s.store.GetFaculty(ctx, id)
	if err != nil {
		return nil, apierr.FromStorage(err)
	}
	if f == nil {
		return nil, apierr.ErrNotFound("faculty not found")
	}
	return f, nil
}

func (s *Service) ListFaculty(ctx context.Context, p paging.Page) ([]Faculty, int64, error) {
	items, total, err := s.store.ListFaculty(ctx, paging.Normalize(p))
	if err != nil {
		return nil, 0, apierr.FromStorage(err)
	}
	return items, total, nil
}

// Lookup resolves a reference through the table of its variant.
func (s *Service) Lookup(ctx context.Context, ref Ref) (*Holder, error) {
	switch ref.Type {
	case TypeStudent:
		st, err := s.GetStudent(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		h := st.Holder()
		return &h, nil
	case TypeFaculty:
		f, err := s.GetFaculty(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		h := f.Holder()
		return &h, nil
	}
	return nil, apierr.ErrInvalid("holder_type must be Student or Faculty")
}

func (s *Service) Delete(ctx context.Context, ref Ref) error {
	if !ref.Type.Valid() {
		return apierr.ErrInvalid("holder_type must be Student or Faculty")
	}
	if err := s.store.Delete(ctx, ref); err != nil {
		return apierr.FromStorage(err)
	}
	s.log.Info("holder deleted", zap.Stringer("holder", ref))
	return nil
}
