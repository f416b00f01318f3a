package signaling

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunaricorn/lunaricorn/pkg/config"
)

func newMockHub(t *testing.T) (*Hub, sqlmock.Sqlmock) {
	t.Helper()
	store, mock := newMockStore(t)
	return NewHub(config.DefaultSignaling(), store), mock
}

func frame(t *testing.T, v any) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestHandlePushStoresAndAcks(t *testing.T) {
	hub, mock := newMockHub(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO signaling_events").
		WillReturnRows(sqlmock.NewRows([]string{"eid"}).AddRow(55))
	mock.ExpectCommit()

	resp := hub.handle(context.Background(), frame(t, map[string]any{
		"type":       "push",
		"client_id":  "orb-1",
		"event_type": "FileOp_new",
		"message":    map[string]any{"id": 7},
		"source":     "orb",
		"tags":       []string{"orb"},
	}))

	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, int64(55), resp.EID)
	assert.NoError(t, mock.ExpectationsWereMet())

	// The pushing client counts as alive.
	clients := hub.Clients()
	require.Len(t, clients, 1)
	assert.Equal(t, "orb-1", clients[0].ClientID)
}

func TestHandlePushRequiresEventType(t *testing.T) {
	hub, _ := newMockHub(t)

	resp := hub.handle(context.Background(), frame(t, map[string]any{
		"type":      "push",
		"client_id": "orb-1",
	}))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "Missing required field: event_type", resp.Message)
}

func TestHandlePushRequiresMessage(t *testing.T) {
	hub, _ := newMockHub(t)

	resp := hub.handle(context.Background(), frame(t, map[string]any{
		"type":       "push",
		"client_id":  "orb-1",
		"event_type": "FileOp_new",
	}))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "Missing required field: message", resp.Message)
}

func TestHandlePushReportsStoreFailure(t *testing.T) {
	hub, mock := newMockHub(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO signaling_events").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	resp := hub.handle(context.Background(), frame(t, map[string]any{
		"type":       "push",
		"event_type": "FileOp_new",
		"message":    map[string]any{},
	}))
	assert.Equal(t, "failed", resp.Status)
}

func TestHandleHeartbeat(t *testing.T) {
	hub, _ := newMockHub(t)

	resp := hub.handle(context.Background(), frame(t, map[string]any{
		"type":      "heartbeat",
		"client_id": "portal-1",
	}))
	assert.Equal(t, "success", resp.Status)
	assert.Greater(t, resp.Timestamp, float64(0))

	resp = hub.handle(context.Background(), frame(t, map[string]any{"type": "heartbeat"}))
	assert.Equal(t, "error", resp.Status)
}

func TestHandleRejectsUnknownAndMalformed(t *testing.T) {
	hub, _ := newMockHub(t)

	resp := hub.handle(context.Background(), frame(t, map[string]any{"type": "subscribe"}))
	assert.Equal(t, "error", resp.Status)

	resp = hub.handle(context.Background(), []byte("not json"))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "malformed request", resp.Message)
}

func TestRegistryExpiresStaleClients(t *testing.T) {
	r := newRegistry(1)
	r.Touch("fresh")
	r.clients["stale"] = time.Now().Add(-2 * time.Second)

	active := r.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "fresh", active[0].ClientID)

	r.prune()
	r.mu.Lock()
	_, ok := r.clients["stale"]
	r.mu.Unlock()
	assert.False(t, ok)
}

func TestRegistryDefaultsTimeout(t *testing.T) {
	r := newRegistry(0)
	assert.Equal(t, 300*time.Second, r.timeout)
}
