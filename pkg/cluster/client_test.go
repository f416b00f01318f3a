package cluster

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunaricorn/lunaricorn/pkg/types"
)

func TestWaitReadyPollsUntilHealthy(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"status": "healthy"})
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := New(srv.URL)
	require.NoError(t, c.WaitReady(ctx))
	assert.GreaterOrEqual(t, calls.Load(), int64(3))
}

func TestWaitReadyHonorsContext(t *testing.T) {
	c := New("http://127.0.0.1:1") // nothing listens here

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := c.WaitReady(ctx)
	assert.Error(t, err)
}

func TestRegisterServiceBeaconsPeriodically(t *testing.T) {
	var beacons atomic.Int64
	var last atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/imalive", r.URL.Path)
		var b types.Beacon
		require.NoError(t, json.NewDecoder(r.Body).Decode(&b))
		last.Store(b)
		beacons.Add(1)
		json.NewEncoder(w).Encode(map[string]any{"status": "received"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.RegisterService(context.Background(), types.Beacon{
		NodeName:    "orb",
		NodeType:    "storage",
		InstanceKey: "orb-1",
		Host:        "10.0.0.5",
		Port:        50051,
	})
	require.NoError(t, err)
	defer c.Stop()

	require.Eventually(t, func() bool {
		return beacons.Load() >= 2
	}, 5*time.Second, 50*time.Millisecond, "expected the periodic beacon to fire")

	got := last.Load().(types.Beacon)
	assert.Equal(t, "orb", got.NodeName)
	assert.Equal(t, "orb-1", got.InstanceKey)
}

func TestRegisterServiceRejectsIncompleteBeacon(t *testing.T) {
	c := New("http://localhost:8001")
	err := c.RegisterService(context.Background(), types.Beacon{NodeName: "orb"})
	assert.Error(t, err)
}

func TestStopEndsBeaconLoop(t *testing.T) {
	var beacons atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		beacons.Add(1)
		json.NewEncoder(w).Encode(map[string]any{"status": "received"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	require.NoError(t, c.RegisterService(context.Background(), types.Beacon{
		NodeName: "orb", NodeType: "storage", InstanceKey: "orb-1",
	}))
	c.Stop()

	settled := beacons.Load()
	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, settled, beacons.Load())

	// Stop is safe to call again.
	c.Stop()
}

func TestListServices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/list", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"services": []types.Node{
				{Name: "signaling", Type: "bus", Key: "sig-1", Port: 5555},
				{Name: "orb", Type: "storage", Key: "orb-1", Port: 50051},
			},
			"total_count": 2,
			"timestamp":   time.Now().Unix(),
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	nodes, err := c.ListServices(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	node, err := c.ServiceByName(context.Background(), "orb")
	require.NoError(t, err)
	assert.Equal(t, 50051, node.Port)

	byType, err := c.ServicesByType(context.Background(), "bus")
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, "signaling", byType[0].Name)

	_, err = c.ServiceByName(context.Background(), "ghost")
	assert.Error(t, err)
}

func TestListServicesSurfacesNotReady(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{"message": "leader is not ready to start"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.ListServices(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not ready")
}

func TestIDCounters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/utils/get_mid":
			json.NewEncoder(w).Encode(map[string]any{"mid": 11})
		case "/v1/utils/get_oid":
			json.NewEncoder(w).Encode(map[string]any{"oid": 21})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	mid, err := c.NextMessageID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(11), mid)

	oid, err := c.NextObjectID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(21), oid)
}

func TestGetEnvAndClusterInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/getenv":
			json.NewEncoder(w).Encode(map[string]any{
				"cfg":       map[string]any{"domain": "lunaricorn.local"},
				"core":      "leader",
				"timestamp": time.Now().Unix(),
			})
		case "/v1/clusterinfo":
			json.NewEncoder(w).Encode(map[string]any{
				"nodes_summary":  map[string]string{"orb": "on", "signaling": "off"},
				"required_nodes": []string{"orb", "signaling"},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	cfg, err := c.GetEnv(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "lunaricorn.local", cfg["domain"])

	summary, required, err := c.ClusterInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "on", summary["orb"])
	assert.Len(t, required, 2)
}
