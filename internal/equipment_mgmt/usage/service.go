package usage

import (
	"context"
	"crypto/rand"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"equipment-tracker/internal/equipment_mgmt/holders"
	"equipment-tracker/internal/platform/apierr"
)

// ===== インターフェース群 =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type IDGen interface {
	New() (string, error)
}

// ulidGen hands out monotonic ULIDs; the entropy source is not safe for concurrent use.
type ulidGen struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func newULIDGen() *ulidGen {
	return &ulidGen{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *ulidGen) New() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), g.entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// HolderLookup resolves a holder reference through its variant's table.
type HolderLookup interface {
	Lookup(ctx context.Context, ref holders.Ref) (*holders.Holder, error)
}

// ===== Service本体 =====

type Service struct {
	store   Store
	holders HolderLookup
	clock   Clock
	id      IDGen
	log     *zap.Logger
}

type Option func(*Service)

func WithClock(c Clock) Option { return func(s *Service) { s.clock = c } }
func WithIDGen(g IDGen) Option { return func(s *Service) { s.id = g } }

func NewService(store Store, hl HolderLookup, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:   store,
		holders: hl,
		clock:   realClock{},
		id:      newULIDGen(),
		log:     log,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// parseDate reads an optional YYYY-MM-DD; nil or "" means today.
func (s *Service) parseDate(v *string, field string) (time.Time, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return date(s.clock.Now()), nil
	}
	t, err := time.Parse(DateLayout, strings.TrimSpace(*v))
	if err != nil {
		return time.Time{}, apierr.ErrInvalid("invalid " + field + " format, expected YYYY-MM-DD")
	}
	return t, nil
}

// 貸出（チェックアウト）
func (s *Service) CheckOut(ctx context.Context, req CheckOutRequest) (*UsageResponse, error) {
	if req.EquipmentID == 0 {
		return nil, apierr.ErrInvalid("equipment_id must be > 0")
	}
	if req.HolderID == 0 {
		return nil, apierr.ErrInvalid("holder_id must be > 0")
	}
	if req.LocationID == 0 {
		return nil, apierr.ErrInvalid("location_id must be > 0")
	}
	ht, err := holders.ParseType(req.HolderType)
	if err != nil {
		return nil, apierr.ErrInvalid(err.Error())
	}
	checkedOutOn, err := s.parseDate(req.CheckedOutOn, "checked_out_on")
	if err != nil {
		return nil, err
	}

	ulidStr, err := s.id.New()
	if err != nil {
		return nil, apierr.ErrInternal("failed to generate usage id")
	}

	u := &Usage{
		UsageULID:    ulidStr,
		EquipmentID:  req.EquipmentID,
		HolderID:     req.HolderID,
		HolderType:   ht,
		LocationID:   req.LocationID,
		CheckedOutOn: checkedOutOn,
		CreatedAt:    s.clock.Now().UTC(),
	}
	if req.Note != nil && strings.TrimSpace(*req.Note) != "" {
		u.Note = sql.NullString{String: strings.TrimSpace(*req.Note), Valid: true}
	}

	err = s.store.InTx(ctx, func(ctx context.Context, tx LedgerTx) error {
		found, archived, err := tx.LockEquipment(ctx, u.EquipmentID)
		if err != nil {
			return err
		}
		if !found {
			return apierr.ErrNotFound("equipment not found")
		}
		if archived {
			return apierr.ErrConflict("equipment is archived")
		}

		ok, err := tx.LocationExists(ctx, u.LocationID)
		if err != nil {
			return err
		}
		if !ok {
			return apierr.ErrNotFound("location not found")
		}

		ok, err = tx.HolderExists(ctx, u.Holder())
		if err != nil {
			return err
		}
		if !ok {
			return apierr.ErrNotFound(string(ht) + " not found")
		}

		open, err := tx.FindOpenUsage(ctx, u.EquipmentID)
		if err != nil {
			return err
		}
		if open != nil {
			return apierr.ErrConflict("equipment is already checked out")
		}

		return tx.InsertUsage(ctx, u)
	})
	if err != nil {
		err = apierr.FromStorage(err)
		s.logFailure("check out", err, zap.Uint64("equipment_id", req.EquipmentID))
		return nil, err
	}

	s.log.Info("equipment checked out",
		zap.Uint64("usage_id", u.UsageID),
		zap.String("usage_ulid", u.UsageULID),
		zap.Uint64("equipment_id", u.EquipmentID),
		zap.Stringer("holder", u.Holder()),
		zap.Uint64("location_id", u.LocationID),
	)
	res := buildUsageResponse(u)
	return &res, nil
}

// 返却（チェックイン）
func (s *Service) CheckIn(ctx context.Context, req CheckInRequest) (*UsageResponse, error) {
	if req.UsageID == 0 {
		return nil, apierr.ErrInvalid("usage_id must be > 0")
	}
	returnedOn, err := s.parseDate(req.ReturnedOn, "returned_on")
	if err != nil {
		return nil, err
	}

	var u *Usage
	err = s.store.InTx(ctx, func(ctx context.Context, tx LedgerTx) error {
		cur, err := tx.LockUsage(ctx, req.UsageID)
		if err != nil {
			return err
		}
		if cur == nil {
			return apierr.ErrNotFound("usage record not found")
		}
		// 二重返却は黙って成功させずに弾く（最初の返却日は変えない）
		if !cur.Open() {
			return apierr.ErrConflict("equipment already checked in")
		}
		if returnedOn.Before(cur.CheckedOutOn) {
			return apierr.ErrInvalid("returned_on must not be before checked_out_on")
		}
		if err := tx.MarkReturned(ctx, cur.UsageID, returnedOn); err != nil {
			return err
		}
		cur.ReturnedOn = sql.NullTime{Time: returnedOn, Valid: true}
		u = cur
		return nil
	})
	if err != nil {
		err = apierr.FromStorage(err)
		s.logFailure("check in", err, zap.Uint64("usage_id", req.UsageID))
		return nil, err
	}

	s.log.Info("equipment checked in",
		zap.Uint64("usage_id", u.UsageID),
		zap.Uint64("equipment_id", u.EquipmentID),
		zap.String("returned_on", returnedOn.Format(DateLayout)),
	)
	res := buildUsageResponse(u)
	return &res, nil
}

// logFailure: ストレージ障害のみ error、業務エラーは debug
func (s *Service) logFailure(op string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if apierr.Is(err, apierr.CodeStorage) {
		s.log.Error(op+" failed", fields...)
		return
	}
	s.log.Debug(op+" rejected", fields...)
}
