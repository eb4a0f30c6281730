package usage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"equipment-tracker/internal/equipment_mgmt/holders"
	"equipment-tracker/internal/platform/apierr"
	"equipment-tracker/internal/platform/paging"
)

// memStore is a Store whose transactions run one at a time, the strongest
// isolation a real database could give the ledger.
type memStore struct {
	mu        sync.Mutex
	equipment map[uint64]memEquipment
	locations map[uint64]memLocation
	holders   map[holders.Ref]bool
	usage     []Usage
	nextID    uint64
	fail      error
}

type memEquipment struct {
	name     string
	archived bool
}

type memLocation struct {
	name, building, room string
}

func newMemStore() *memStore {
	return &memStore{
		equipment: map[uint64]memEquipment{},
		locations: map[uint64]memLocation{},
		holders:   map[holders.Ref]bool{},
		nextID:    1,
	}
}

// sampleStore holds a slice of the sample data set: equipment 201-205, locations 301-303,
// students 1-3 and faculty 101-102.
func sampleStore() *memStore {
	m := newMemStore()
	for id, name := range map[uint64]string{201: "Cricket Bat", 202: "Football", 203: "Guitar", 204: "Keyboard", 205: "Microscope"} {
		m.equipment[id] = memEquipment{name: name}
	}
	m.locations[301] = memLocation{"Sports Complex", "Building A", "Ground Floor"}
	m.locations[302] = memLocation{"Music Room", "Building B", "201"}
	m.locations[303] = memLocation{"Chemistry Lab", "Building C", "301"}
	for _, id := range []uint64{1, 2, 3} {
		m.holders[holders.Ref{Type: holders.TypeStudent, ID: id}] = true
	}
	for _, id := range []uint64{101, 102} {
		m.holders[holders.Ref{Type: holders.TypeFaculty, ID: id}] = true
	}
	return m
}

func (m *memStore) InTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	saved := append([]Usage(nil), m.usage...)
	savedID := m.nextID
	if err := fn(ctx, &memTx{m: m}); err != nil {
		m.usage = saved
		m.nextID = savedID
		return err
	}
	return nil
}

type memTx struct{ m *memStore }

func (t *memTx) LockEquipment(_ context.Context, id uint64) (bool, bool, error) {
	e, ok := t.m.equipment[id]
	return ok, e.archived, nil
}

func (t *memTx) LocationExists(_ context.Context, id uint64) (bool, error) {
	_, ok := t.m.locations[id]
	return ok, nil
}

func (t *memTx) HolderExists(_ context.Context, ref holders.Ref) (bool, error) {
	return t.m.holders[ref], nil
}

func (t *memTx) FindOpenUsage(_ context.Context, equipmentID uint64) (*Usage, error) {
	for _, u := range t.m.usage {
		if u.EquipmentID == equipmentID && u.Open() {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}

func (t *memTx) InsertUsage(_ context.Context, u *Usage) error {
	// same guarantee as the unique index on open_equipment_id
	for _, x := range t.m.usage {
		if x.EquipmentID == u.EquipmentID && x.Open() {
			return apierr.ErrConflict("equipment is already checked out")
		}
	}
	u.UsageID = t.m.nextID
	t.m.nextID++
	t.m.usage = append(t.m.usage, *u)
	return nil
}

func (t *memTx) LockUsage(_ context.Context, id uint64) (*Usage, error) {
	for _, u := range t.m.usage {
		if u.UsageID == id {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}

func (t *memTx) MarkReturned(_ context.Context, id uint64, on time.Time) error {
	for i := range t.m.usage {
		if t.m.usage[i].UsageID == id {
			if !t.m.usage[i].Open() {
				return apierr.ErrConflict("equipment already checked in")
			}
			t.m.usage[i].ReturnedOn = sql.NullTime{Time: on, Valid: true}
			return nil
		}
	}
	return apierr.ErrNotFound("usage record not found")
}

func (m *memStore) GetUsage(_ context.Context, id uint64) (*Usage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	for _, u := range m.usage {
		if u.UsageID == id {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListOpen(_ context.Context) ([]Usage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	var out []Usage
	for _, u := range m.usage {
		if u.Open() {
			out = append(out, u)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CheckedOutOn.Equal(out[j].CheckedOutOn) {
			return out[i].CheckedOutOn.Before(out[j].CheckedOutOn)
		}
		return out[i].UsageID < out[j].UsageID
	})
	return out, nil
}

func (m *memStore) matching(f Filter) []Usage {
	var out []Usage
	for _, u := range m.usage {
		if f.EquipmentID != nil && u.EquipmentID != *f.EquipmentID {
			continue
		}
		if f.HolderType != nil && u.HolderType != *f.HolderType {
			continue
		}
		if f.HolderID != nil && u.HolderID != *f.HolderID {
			continue
		}
		if f.LocationID != nil && u.LocationID != *f.LocationID {
			continue
		}
		if f.Open != nil && u.Open() != *f.Open {
			continue
		}
		out = append(out, u)
	}
	return out
}

func (m *memStore) ListUsage(_ context.Context, f Filter, p paging.Page) ([]Usage, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.matching(f)
	if !p.Asc() {
		sort.Slice(rows, func(i, j int) bool { return rows[i].UsageID > rows[j].UsageID })
	}
	total := int64(len(rows))
	if p.Offset >= len(rows) {
		return nil, total, nil
	}
	end := p.Offset + p.Limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[p.Offset:end], total, nil
}

func (m *memStore) EachUsage(_ context.Context, f Filter, fn func(u *Usage) error) error {
	m.mu.Lock()
	rows := m.matching(f)
	m.mu.Unlock()
	for i := range rows {
		if err := fn(&rows[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *memStore) CurrentLocation(_ context.Context, equipmentID uint64) (*CurrentLocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.equipment[equipmentID]
	if !ok {
		return nil, nil
	}
	cl := &CurrentLocation{EquipmentID: equipmentID, EquipmentName: e.name}
	for _, u := range m.usage {
		if u.EquipmentID == equipmentID && u.Open() {
			cp := u
			cl.Open = &cp
			l := m.locations[u.LocationID]
			cl.LocationName = sql.NullString{String: l.name, Valid: true}
			cl.Building = sql.NullString{String: l.building, Valid: true}
			cl.RoomNo = sql.NullString{String: l.room, Valid: true}
		}
	}
	return cl, nil
}

func (m *memStore) Stats(_ context.Context) (*Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	st := &Stats{
		TotalEquipment: int64(len(m.equipment)),
		TotalLocations: int64(len(m.locations)),
		TotalUsage:     int64(len(m.usage)),
	}
	for ref := range m.holders {
		if ref.Type == holders.TypeStudent {
			st.TotalStudents++
		} else {
			st.TotalFaculty++
		}
	}
	for _, u := range m.usage {
		if u.Open() {
			st.CheckedOut++
		}
	}
	return st, nil
}

// openCount is the number of open rows for one equipment item.
func (m *memStore) openCount(equipmentID uint64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, u := range m.usage {
		if u.EquipmentID == equipmentID && u.Open() {
			n++
		}
	}
	return n
}

type fakeHolders map[holders.Ref]holders.Holder

func (f fakeHolders) Lookup(_ context.Context, ref holders.Ref) (*holders.Holder, error) {
	h, ok := f[ref]
	if !ok {
		return nil, apierr.ErrNotFound(string(ref.Type) + " not found")
	}
	return &h, nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) New() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("01TESTULID%016d", g.n), nil
}
