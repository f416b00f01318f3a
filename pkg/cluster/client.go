package cluster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lunaricorn/lunaricorn/pkg/log"
	"github.com/lunaricorn/lunaricorn/pkg/types"
)

const (
	beaconInterval = 1 * time.Second
	readyInterval  = 500 * time.Millisecond
	requestTimeout = 5 * time.Second
)

// Client talks to the registrar on behalf of one service instance. Register
// keeps the instance's record fresh with a periodic beacon; the query methods
// read cluster state.
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// New creates a registrar client for the given base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
		logger:  log.WithComponent("cluster-client"),
	}
}

// WaitReady blocks until the registrar answers its health endpoint or the
// context expires. Services call this before registering so boot order does
// not matter.
func (c *Client) WaitReady(ctx context.Context) error {
	ticker := time.NewTicker(readyInterval)
	defer ticker.Stop()

	for {
		if err := c.health(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("registrar did not become reachable: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *Client) health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("registrar health returned %d", resp.StatusCode)
	}
	return nil
}

// RegisterService sends an initial beacon and then keeps beaconing once per
// second until Stop is called. Beacon failures are logged and retried on the
// next tick; the service keeps running through registrar outages.
func (c *Client) RegisterService(ctx context.Context, b types.Beacon) error {
	if b.NodeName == "" || b.NodeType == "" || b.InstanceKey == "" {
		return fmt.Errorf("beacon requires node_name, node_type and instance_key")
	}

	if err := c.beacon(ctx, b); err != nil {
		return fmt.Errorf("initial beacon failed: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		return fmt.Errorf("service already registered")
	}
	c.stop = make(chan struct{})
	c.done = make(chan struct{})

	logger := log.WithNode(b.NodeName, b.InstanceKey)
	go func(stop, done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(beaconInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := c.beacon(context.Background(), b); err != nil {
					logger.Warn().Err(err).Msg("beacon failed")
				}
			}
		}
	}(c.stop, c.done)

	logger.Info().Msg("registered with the cluster")
	return nil
}

// Stop ends the beacon loop and waits for it to exit.
func (c *Client) Stop() {
	c.mu.Lock()
	stop, done := c.stop, c.done
	c.stop, c.done = nil, nil
	c.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

func (c *Client) beacon(ctx context.Context, b types.Beacon) error {
	var out struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := c.post(ctx, "/v1/imalive", b, &out); err != nil {
		return err
	}
	if out.Status != "received" {
		return fmt.Errorf("beacon rejected: %s", out.Message)
	}
	return nil
}

// ListServices returns the alive nodes. The registrar refuses until every
// required node is alive.
func (c *Client) ListServices(ctx context.Context) ([]types.Node, error) {
	var out struct {
		Services   []types.Node `json:"services"`
		TotalCount int          `json:"total_count"`
	}
	if err := c.get(ctx, "/v1/list", &out); err != nil {
		return nil, err
	}
	return out.Services, nil
}

// ServiceByName returns the first alive node with the given name.
func (c *Client) ServiceByName(ctx context.Context, name string) (*types.Node, error) {
	nodes, err := c.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	for i := range nodes {
		if nodes[i].Name == name {
			return &nodes[i], nil
		}
	}
	return nil, fmt.Errorf("no alive service named %s", name)
}

// ServicesByType returns the alive nodes with the given type.
func (c *Client) ServicesByType(ctx context.Context, nodeType string) ([]types.Node, error) {
	nodes, err := c.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	var matched []types.Node
	for _, n := range nodes {
		if n.Type == nodeType {
			matched = append(matched, n)
		}
	}
	return matched, nil
}

// ClusterInfo returns the per-node on/off summary.
func (c *Client) ClusterInfo(ctx context.Context) (map[string]string, []string, error) {
	var out struct {
		NodesSummary  map[string]string `json:"nodes_summary"`
		RequiredNodes []string          `json:"required_nodes"`
	}
	if err := c.get(ctx, "/v1/clusterinfo", &out); err != nil {
		return nil, nil, err
	}
	return out.NodesSummary, out.RequiredNodes, nil
}

// GetEnv returns the shared cluster configuration document.
func (c *Client) GetEnv(ctx context.Context) (map[string]any, error) {
	var out struct {
		Cfg map[string]any `json:"cfg"`
	}
	if err := c.get(ctx, "/v1/getenv", &out); err != nil {
		return nil, err
	}
	return out.Cfg, nil
}

// NextMessageID asks the registrar for the next cluster-wide message id.
func (c *Client) NextMessageID(ctx context.Context) (int64, error) {
	var out struct {
		MID int64 `json:"mid"`
	}
	if err := c.get(ctx, "/v1/utils/get_mid", &out); err != nil {
		return 0, err
	}
	return out.MID, nil
}

// NextObjectID asks the registrar for the next cluster-wide object id.
func (c *Client) NextObjectID(ctx context.Context) (int64, error) {
	var out struct {
		OID int64 `json:"oid"`
	}
	if err := c.get(ctx, "/v1/utils/get_oid", &out); err != nil {
		return 0, err
	}
	return out.OID, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("registrar request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("registrar returned %d: %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("registrar returned %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}
