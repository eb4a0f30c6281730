package usage

import (
	"context"

	"equipment-tracker/internal/platform/apierr"
	"equipment-tracker/internal/platform/paging"
)

// CurrentLocation reports where the equipment is, or that it is not checked out.
// An id with no equipment row has no open record either, so it gets the same
// not-checked-out body with an empty name.
func (s *Service) CurrentLocation(ctx context.Context, equipmentID uint64) (*LocationResponse, error) {
	if equipmentID == 0 {
		return nil, apierr.ErrInvalid("equipment_id must be > 0")
	}
	cl, err := s.store.CurrentLocation(ctx, equipmentID)
	if err != nil {
		return nil, apierr.FromStorage(err)
	}
	if cl == nil {
		cl = &CurrentLocation{EquipmentID: equipmentID}
	}
	res := buildLocationResponse(cl)
	return &res, nil
}

// ListOpen returns every open record, oldest checkout first (ties by usage id).
func (s *Service) ListOpen(ctx context.Context) ([]UsageResponse, error) {
	rows, err := s.store.ListOpen(ctx)
	if err != nil {
		return nil, apierr.FromStorage(err)
	}
	out := make([]UsageResponse, 0, len(rows))
	for i := range rows {
		out = append(out, buildUsageResponse(&rows[i]))
	}
	return out, nil
}

func (s *Service) ListUsage(ctx context.Context, f Filter, p paging.Page) ([]UsageResponse, int64, error) {
	rows, total, err := s.store.ListUsage(ctx, f, paging.Normalize(p))
	if err != nil {
		return nil, 0, apierr.FromStorage(err)
	}
	out := make([]UsageResponse, 0, len(rows))
	for i := range rows {
		out = append(out, buildUsageResponse(&rows[i]))
	}
	return out, total, nil
}

// GetUsage attaches the holder resolved through its variant. A holder row that no
// longer exists leaves Holder empty instead of failing the read.
func (s *Service) GetUsage(ctx context.Context, usageID uint64) (*UsageResponse, error) {
	if usageID == 0 {
		return nil, apierr.ErrInvalid("usage_id must be > 0")
	}
	u, err := s.store.GetUsage(ctx, usageID)
	if err != nil {
		return nil, apierr.FromStorage(err)
	}
	if u == nil {
		return nil, apierr.ErrNotFound("usage record not found")
	}
	res := buildUsageResponse(u)

	h, err := s.holders.Lookup(ctx, u.Holder())
	switch {
	case err == nil:
		res.Holder = h
	case apierr.Is(err, apierr.CodeNotFound):
	default:
		return nil, err
	}
	return &res, nil
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	st, err := s.store.Stats(ctx)
	if err != nil {
		return nil, apierr.FromStorage(err)
	}
	return st, nil
}
