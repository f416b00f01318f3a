package leader

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunaricorn/lunaricorn/pkg/config"
	"github.com/lunaricorn/lunaricorn/pkg/database"
	"github.com/lunaricorn/lunaricorn/pkg/log"
)

func newTestServer(t *testing.T, cfg config.Leader) (*Server, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	adapter := database.NewWithDB(db, "sqlmock")
	l := &Leader{
		cfg:       cfg,
		inventory: NewInventory(adapter),
		state:     NewState(adapter),
		logger:    log.WithComponent("leader"),
	}
	return NewServer(l, cfg.APIPort), mock
}

func aliveRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"i", "name", "type", "key", "last_update", "host", "port"})
}

func doRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestImAliveValidatesRequiredFields(t *testing.T) {
	s, _ := newTestServer(t, config.DefaultLeader())

	tests := []struct {
		name    string
		body    map[string]any
		message string
	}{
		{
			name:    "missing node_name",
			body:    map[string]any{"node_type": "storage", "instance_key": "orb-1"},
			message: "Invalid or missing node_name",
		},
		{
			name:    "missing node_type",
			body:    map[string]any{"node_name": "orb", "instance_key": "orb-1"},
			message: "Invalid or missing node_type",
		},
		{
			name:    "missing instance_key",
			body:    map[string]any{"node_name": "orb", "node_type": "storage"},
			message: "Invalid or missing instance_key",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, s, http.MethodPost, "/v1/imalive", tt.body)
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, tt.message, decodeBody(t, rec)["message"])
		})
	}
}

func TestImAliveRecordsBeacon(t *testing.T) {
	s, mock := newTestServer(t, config.DefaultLeader())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO last_seen").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	rec := doRequest(t, s, http.MethodPost, "/v1/imalive", map[string]any{
		"node_name":    "orb",
		"node_type":    "storage",
		"instance_key": "orb-1",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "received", decodeBody(t, rec)["status"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRejectsWhenRequiredNodeMissing(t *testing.T) {
	cfg := config.DefaultLeader()
	cfg.Discover.RequiredNodes = []string{"signaling"}
	s, mock := newTestServer(t, cfg)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM last_seen").
		WillReturnRows(aliveRows())
	mock.ExpectCommit()

	rec := doRequest(t, s, http.MethodGet, "/v1/list", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, ErrNotReady.Error(), decodeBody(t, rec)["message"])
}

func TestListReturnsAliveNodesWhenReady(t *testing.T) {
	cfg := config.DefaultLeader()
	cfg.Discover.RequiredNodes = []string{"signaling"}
	s, mock := newTestServer(t, cfg)

	// Once for the readiness probe, once for the served list.
	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM last_seen").
			WillReturnRows(aliveRows().
				AddRow(1, "signaling", "bus", "sig-1", 1700000100, "10.0.0.2", 5555))
		mock.ExpectCommit()
	}

	rec := doRequest(t, s, http.MethodGet, "/v1/list", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.EqualValues(t, 1, body["total_count"])
	assert.NotNil(t, body["timestamp"])
	services := body["services"].([]any)
	require.Len(t, services, 1)
	assert.Equal(t, "signaling", services[0].(map[string]any)["name"])
}

func TestClusterInfoMarksRequiredNodes(t *testing.T) {
	cfg := config.DefaultLeader()
	cfg.Discover.RequiredNodes = []string{"signaling", "orb"}
	s, mock := newTestServer(t, cfg)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM last_seen").
		WillReturnRows(aliveRows().
			AddRow(1, "signaling", "bus", "sig-1", 1700000100, "10.0.0.2", 5555))
	mock.ExpectCommit()

	rec := doRequest(t, s, http.MethodGet, "/v1/clusterinfo", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	summary := body["nodes_summary"].(map[string]any)
	assert.Equal(t, "on", summary["signaling"])
	assert.Equal(t, "off", summary["orb"])
	assert.ElementsMatch(t, []any{"signaling", "orb"}, body["required_nodes"])
}

func TestGetEnvServesClusterConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cluster_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("domain: lunaricorn.local\nzone: dev\n"), 0644))

	cfg := config.DefaultLeader()
	cfg.ClusterConfigPath = path
	s, mock := newTestServer(t, cfg)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM last_seen").
		WillReturnRows(aliveRows())
	mock.ExpectCommit()

	rec := doRequest(t, s, http.MethodGet, "/v1/getenv", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "leader", body["core"])
	cfgDoc := body["cfg"].(map[string]any)
	assert.Equal(t, "lunaricorn.local", cfgDoc["domain"])
}

func TestGetMIDAndOID(t *testing.T) {
	s, mock := newTestServer(t, config.DefaultLeader())

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO cluster_state").
		WithArgs("MESSAGE_ID").
		WillReturnRows(sqlmock.NewRows([]string{"i"}).AddRow(7))
	mock.ExpectCommit()

	rec := doRequest(t, s, http.MethodGet, "/v1/utils/get_mid", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 7, decodeBody(t, rec)["mid"])

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO cluster_state").
		WithArgs("OBJECT_ID").
		WillReturnRows(sqlmock.NewRows([]string{"i"}).AddRow(3))
	mock.ExpectCommit()

	rec = doRequest(t, s, http.MethodGet, "/v1/utils/get_oid", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 3, decodeBody(t, rec)["oid"])
}

func TestHealthAndNotFound(t *testing.T) {
	s, _ := newTestServer(t, config.DefaultLeader())

	rec := doRequest(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeBody(t, rec)["status"])

	rec = doRequest(t, s, http.MethodGet, "/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Resource not found", decodeBody(t, rec)["message"])
}
