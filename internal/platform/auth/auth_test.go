package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"equipment-tracker/internal/platform/apierr"
)

const testSecret = "test-secret"

type memAccounts struct {
	mu   sync.Mutex
	rows map[string]*Account
}

func newMemAccounts() *memAccounts { return &memAccounts{rows: map[string]*Account{}} }

func (m *memAccounts) GetByID(_ context.Context, id string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (m *memAccounts) Create(_ context.Context, a *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[a.ID]; ok {
		return apierr.ErrConflict("account id already exists")
	}
	cp := *a
	m.rows[a.ID] = &cp
	return nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(newMemAccounts(), testSecret, time.Hour, zap.NewNop())
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	require.NoError(t, svc.Register(ctx, "desk1", "password1", ""))

	err := svc.Register(ctx, "desk1", "password1", "")
	assert.True(t, apierr.Is(err, apierr.CodeConflict))

	err = svc.Register(ctx, "desk2", "short", "")
	assert.True(t, apierr.Is(err, apierr.CodeInvalidArgument))

	err = svc.Register(ctx, "desk3", "password1", "root")
	assert.True(t, apierr.Is(err, apierr.CodeInvalidArgument))

	_, err = svc.Login(ctx, "desk1", "wrong-password")
	assert.True(t, apierr.Is(err, apierr.CodeUnauthorized))
	_, err = svc.Login(ctx, "nobody", "password1")
	assert.True(t, apierr.Is(err, apierr.CodeUnauthorized))

	tok, err := svc.Login(ctx, "desk1", "password1")
	require.NoError(t, err)
	assert.NotEmpty(t, tok.Token)

	var claims Claims
	_, err = jwt.ParseWithClaims(tok.Token, &claims, func(*jwt.Token) (any, error) { return []byte(testSecret), nil })
	require.NoError(t, err)
	assert.Equal(t, "desk1", claims.Subject)
	assert.Equal(t, RoleOperator, claims.Role)
}

func TestLoginDisabledAccount(t *testing.T) {
	store := newMemAccounts()
	svc := NewService(store, testSecret, time.Hour, zap.NewNop())
	require.NoError(t, svc.Register(context.Background(), "old", "password1", ""))
	store.rows["old"].IsDisabled = true

	_, err := svc.Login(context.Background(), "old", "password1")
	assert.True(t, apierr.Is(err, apierr.CodeUnauthorized))
}

func signed(t *testing.T, secret, sub, role string, exp time.Time) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestPolicy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	pol := NewPolicy(true, testSecret)

	r := gin.New()
	r.POST("/op", pol.Operator, func(c *gin.Context) { c.String(http.StatusOK, UserID(c)) })
	r.POST("/admin", pol.Admin, func(c *gin.Context) { c.Status(http.StatusNoContent) })

	do := func(path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	future := time.Now().Add(time.Hour)
	opTok := signed(t, testSecret, "desk1", RoleOperator, future)
	adminTok := signed(t, testSecret, "boss", RoleAdmin, future)

	w := do("/op", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"UNAUTHORIZED"`)

	w = do("/op", opTok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "desk1", w.Body.String())

	assert.Equal(t, http.StatusForbidden, do("/admin", opTok).Code)
	assert.Equal(t, http.StatusNoContent, do("/admin", adminTok).Code)

	assert.Equal(t, http.StatusUnauthorized, do("/op", signed(t, "other", "x", RoleAdmin, future)).Code)
	assert.Equal(t, http.StatusUnauthorized, do("/op", signed(t, testSecret, "x", RoleAdmin, time.Now().Add(-time.Hour))).Code)
}

func TestPolicyDisabledPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	pol := NewPolicy(false, "")
	r := gin.New()
	r.POST("/admin", pol.Admin, func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestLoginHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newTestService(t)
	require.NoError(t, svc.Register(context.Background(), "boss", "password1", RoleAdmin))

	r := gin.New()
	RegisterRoutes(r, svc, NewPolicy(true, testSecret))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"id":"boss","password":"password1"}`)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// register without a token is rejected when auth is on
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"id":"desk9","password":"password9"}`)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
