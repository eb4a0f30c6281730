package cmd

import (
	"bytes"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"equipment-tracker/internal/equipment_mgmt/usage"
	"equipment-tracker/internal/platform/db"
)

func TestCommandStructure(t *testing.T) {
	for _, name := range []string{"serve", "migrate", "seed", "stats"} {
		t.Run(name, func(t *testing.T) {
			cmd, _, err := rootCmd.Find([]string{name})
			require.NoError(t, err)
			require.NotNil(t, cmd)
			assert.NotEmpty(t, cmd.Use)
			assert.NotEmpty(t, cmd.Short)
		})
	}
}

func TestRootConfigFlag(t *testing.T) {
	f := rootCmd.PersistentFlags().Lookup("config")
	require.NotNil(t, f)
	assert.Equal(t, db.DefaultConfigPath, f.DefValue)
	assert.Equal(t, "c", f.Shorthand)
}

func TestMigrateRejectsUnknownDirection(t *testing.T) {
	assert.Error(t, migrateCmd.Args(migrateCmd, []string{"sideways"}))
	assert.Error(t, migrateCmd.Args(migrateCmd, []string{}))
	assert.NoError(t, migrateCmd.Args(migrateCmd, []string{"up"}))
	assert.NoError(t, migrateCmd.Args(migrateCmd, []string{"version"}))
}

func TestPrintStats(t *testing.T) {
	var buf bytes.Buffer
	err := printStats(&buf, &usage.Stats{TotalStudents: 5, TotalFaculty: 3, TotalEquipment: 5, TotalLocations: 5, CheckedOut: 2, TotalUsage: 5})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Checked out")
	assert.Regexp(t, `Checked out\s+2`, out)
	assert.Regexp(t, `Usage records\s+5`, out)
}

// The router only touches the pool when a handler runs, so an unopened *sql.DB is enough here.
func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	conn, err := sql.Open(db.DriverName, "user:pass@tcp(127.0.0.1:1)/none")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	cfg := &db.Config{Mode: db.ModeDev, Version: "test"}
	cfg.Server.BasePath = "/api/v1"
	cfg.Server.AllowOrigins = []string{"http://localhost:3000"}
	r, err := newRouter(cfg, newServices(conn, cfg, zap.NewNop()), zap.NewNop())
	require.NoError(t, err)
	return r
}

func TestRouterHealthz(t *testing.T) {
	r := testRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouterUnknownRoute(t *testing.T) {
	r := testRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestRouterRegistersLedgerRoutes(t *testing.T) {
	r := testRouter(t)
	want := map[string]bool{
		"POST /api/v1/check_out":                       false,
		"POST /api/v1/check_in":                        false,
		"GET /api/v1/equipment/:equipment_id/location": false,
		"GET /api/v1/usage/checked_out":                false,
		"GET /api/v1/stats":                            false,
		"POST /api/v1/auth/login":                      false,
		"GET /swagger/*any":                            false,
	}
	for _, ri := range r.Routes() {
		key := ri.Method + " " + ri.Path
		if _, ok := want[key]; ok {
			want[key] = true
		}
	}
	for k, seen := range want {
		assert.True(t, seen, "route %s not registered", k)
	}
}

func TestRouterRejectsBadCheckoutBeforeTouchingDB(t *testing.T) {
	r := testRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/check_out", bytes.NewBufferString(`{"equipment_id":1}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_ARGUMENT")
}
