package locations

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

func (s *Service) Create(ctx context.Context, req CreateLocationRequest) (*Location, error) {
	l := &Location{
		LocationID:   req.LocationID,
		LocationName: textnorm.CleanPtr(req.LocationName),
		Building:     textnorm.CleanPtr(req.Building),
		RoomNo:       textnorm.CleanPtr(req.RoomNo),
	}
	if l.LocationName == nil && l.Building == nil && l.RoomNo == nil {
		return nil, apierr.ErrInvalid("one of location_name, building or room_no is required")
	}
	id, err := s.store.Insert(ctx, l)
	if err != nil {
		return nil, apierr.FromStorage(err)
	}
	s.log.Info("location created", zap.Uint64("location_id", id))
	return s.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id uint64) (*Location, error) {
	l, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, apierr.FromStorage(err)
	}
	if l == nil {
		return nil, apierr.ErrNotFound("location not found")
	}
	return l, nil
}

func (s *Service) List(ctx context.Context, p paging.Page) ([]Location, int64, error) {
	items, total, err := s.store.List(ctx, paging.Normalize(p))
	if err != nil {
		return nil, 0, apierr.FromStorage(err)
	}
	return items, total, nil
}

func (s *Service) Delete(ctx context.Context, id uint64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return apierr.FromStorage(err)
	}
	s.log.Info("location deleted", zap.Uint64("location_id", id))
	return nil
}
