package equipment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"equipment-tracker/internal/platform/apierr"
	"equipment-tracker/internal/platform/auth"
	"equipment-tracker/internal/platform/paging"
)

type MockStore struct{ mock.Mock }

func (m *MockStore) Insert(ctx context.Context, e *Equipment) (uint64, error) {
	args := m.Called(ctx, e)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockStore) Get(ctx context.Context, id uint64) (*Equipment, error) {
	args := m.Called(ctx, id)
	e, _ := args.Get(0).(*Equipment)
	return e, args.Error(1)
}

func (m *MockStore) List(ctx context.Context, q ListQuery, p paging.Page) ([]Equipment, int64, error) {
	args := m.Called(ctx, q, p)
	return args.Get(0).([]Equipment), args.Get(1).(int64), args.Error(2)
}

func (m *MockStore) UpdateAttributes(ctx context.Context, id uint64, category, condition *string) error {
	return m.Called(ctx, id, category, condition).Error(0)
}

func (m *MockStore) Archive(ctx context.Context, id uint64, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockStore) Delete(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

func strp(s string) *string { return &s }

func TestCreateParsesPurchaseDate(t *testing.T) {
	store := new(MockStore)
	svc := NewService(store, zap.NewNop())
	ctx := context.Background()

	purchased := time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)
	store.On("Insert", ctx, mock.MatchedBy(func(e *Equipment) bool {
		return e.EquipmentID == 201 && e.Name == "Cricket Bat" && e.PurchaseDate.Equal(purchased)
	})).Return(uint64(201), nil)
	store.On("Get", ctx, uint64(201)).Return(&Equipment{
		EquipmentID: 201, Name: "Cricket Bat", Category: strp("Sports"), PurchaseDate: &purchased,
	}, nil)

	res, err := svc.Create(ctx, CreateEquipmentRequest{
		EquipmentID:  201,
		Name:         "Cricket Bat",
		Category:     strp("Sports"),
		PurchaseDate: strp("2023-01-15"),
	})
	require.NoError(t, err)
	assert.Equal(t, "2023-01-15", *res.PurchaseDate)
	assert.False(t, res.Archived)

	_, err = svc.Create(ctx, CreateEquipmentRequest{Name: "Guitar", PurchaseDate: strp("15/01/2023")})
	assert.True(t, apierr.Is(err, apierr.CodeInvalidArgument))
	store.AssertExpectations(t)
}

func TestUpdateRules(t *testing.T) {
	store := new(MockStore)
	svc := NewService(store, zap.NewNop())
	ctx := context.Background()
	archivedAt := time.Now()

	store.On("Get", ctx, uint64(1)).Return(nil, nil)
	store.On("Get", ctx, uint64(2)).Return(&Equipment{EquipmentID: 2, Name: "old", ArchivedAt: &archivedAt}, nil)

	_, err := svc.Update(ctx, 1, UpdateEquipmentRequest{})
	assert.True(t, apierr.Is(err, apierr.CodeInvalidArgument))

	_, err = svc.Update(ctx, 1, UpdateEquipmentRequest{ConditionStatus: strp("Fair")})
	assert.True(t, apierr.Is(err, apierr.CodeNotFound))

	_, err = svc.Update(ctx, 2, UpdateEquipmentRequest{ConditionStatus: strp("Fair")})
	assert.True(t, apierr.Is(err, apierr.CodeConflict))
	store.AssertNotCalled(t, "UpdateAttributes", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func newRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, svc, auth.NewPolicy(false, ""))
	return r
}

func TestDeleteAndArchiveHandlers(t *testing.T) {
	store := new(MockStore)
	r := newRouter(NewService(store, zap.NewNop()))

	store.On("Delete", mock.Anything, uint64(203)).
		Return(apierr.ErrConflict("equipment must be archived before it can be deleted"))
	store.On("Archive", mock.Anything, uint64(201), mock.AnythingOfType("time.Time")).
		Return(apierr.ErrConflict("equipment is checked out and cannot be archived"))
	store.On("Archive", mock.Anything, uint64(9999), mock.AnythingOfType("time.Time")).
		Return(apierr.ErrNotFound("equipment not found"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/equipment/203", nil))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/equipment/201/archive", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "checked out")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/equipment/9999/archive", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/equipment/0", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	store.AssertExpectations(t)
}

func TestListHandlerFilters(t *testing.T) {
	store := new(MockStore)
	r := newRouter(NewService(store, zap.NewNop()))

	sports := "Sports"
	store.On("List", mock.Anything, ListQuery{Category: &sports, IncludeArchived: true}, paging.Page{Limit: 50, Order: "asc"}).
		Return([]Equipment{{EquipmentID: 201, Name: "Cricket Bat"}}, int64(1), nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/equipment?category=Sports&include_archived=true", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"equipment_id":201`)
	assert.Contains(t, w.Body.String(), `"next_offset":0`)
	store.AssertExpectations(t)
}

func TestCreateHandlerRejectsMissingName(t *testing.T) {
	r := newRouter(NewService(new(MockStore), zap.NewNop()))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/equipment", strings.NewReader(`{"category":"Sports"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"INVALID_ARGUMENT"`)
}
