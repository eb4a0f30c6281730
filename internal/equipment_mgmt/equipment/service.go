package equipment

import (
	"context"
	"time"

	"go.uber.org/zap"

	"equipment-tracker/internal/platform/apierr"
	"equipment-tracker/internal/platform/paging"
	"equipment-tracker/internal/platform/textnorm"
)

type Service struct {
	store Store
	now   func() time.Time
	log   *zap.Logger
}

func NewService(store Store, log *zap.Logger) *Service {
	return &Service{store: store, now: time.Now, log: log}
}

func (s *Service) Create(ctx context.Context, req CreateEquipmentRequest) (*EquipmentResponse, error) {
	name := textnorm.Clean(req.Name)
	if name == "" {
		return nil, apierr.ErrInvalid("name is required")
	}
	e := &Equipment{
		EquipmentID:     req.EquipmentID,
		Name:            name,
		Category:        textnorm.CleanPtr(req.Category),
		ConditionStatus: textnorm.CleanPtr(req.ConditionStatus),
	}
	if req.PurchaseDate != nil && *req.PurchaseDate != "" {
		d, err := time.Parse(DateLayout, *req.PurchaseDate)
		if err != nil {
			return nil, apierr.ErrInvalid("invalid purchase_date format, expected YYYY-MM-DD")
		}
		e.PurchaseDate = &d
	}

	id, err := s.store.Insert(ctx, e)
	if err != nil {
		return nil, apierr.FromStorage(err)
	}
	s.log.Info("equipment registered", zap.Uint64("equipment_id", id), zap.String("name", name))
	return s.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id uint64) (*EquipmentResponse, error) {
	e, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, apierr.FromStorage(err)
	}
	if e == nil {
		return nil, apierr.ErrNotFound("equipment not found")
	}
	res := toResponse(e)
	return &res, nil
}

func (s *Service) List(ctx context.Context, q ListQuery, p paging.Page) ([]EquipmentResponse, int64, error) {
	items, total, err := s.store.List(ctx, q, paging.Normalize(p))
	if err != nil {
		return nil, 0, apierr.FromStorage(err)
	}
	out := make([]EquipmentResponse, 0, len(items))
	for i := range items {
		out = append(out, toResponse(&items[i]))
	}
	return out, total, nil
}

func (s *Service) Update(ctx context.Context, id uint64, req UpdateEquipmentRequest) (*EquipmentResponse, error) {
	if req.Category == nil && req.ConditionStatus == nil {
		return nil, apierr.ErrInvalid("nothing to update: category or condition_status is required")
	}
	cur, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, apierr.FromStorage(err)
	}
	if cur == nil {
		return nil, apierr.ErrNotFound("equipment not found")
	}
	if cur.Archived() {
		return nil, apierr.ErrConflict("archived equipment cannot be modified")
	}
	if err := s.store.UpdateAttributes(ctx, id, textnorm.CleanPtr(req.Category), textnorm.CleanPtr(req.ConditionStatus)); err != nil {
		return nil, apierr.FromStorage(err)
	}
	return s.Get(ctx, id)
}

// Archive retires equipment: it can no longer be checked out, and it becomes deletable.
func (s *Service) Archive(ctx context.Context, id uint64) (*EquipmentResponse, error) {
	if err := s.store.Archive(ctx, id, s.now().UTC()); err != nil {
		return nil, apierr.FromStorage(err)
	}
	s.log.Info("equipment archived", zap.Uint64("equipment_id", id))
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uint64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return apierr.FromStorage(err)
	}
	s.log.Info("equipment deleted", zap.Uint64("equipment_id", id))
	return nil
}
