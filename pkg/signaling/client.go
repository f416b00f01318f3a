package signaling

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-zeromq/zmq4"
	"github.com/rs/zerolog"

	"github.com/lunaricorn/lunaricorn/pkg/log"
	"github.com/lunaricorn/lunaricorn/pkg/types"
)

const (
	requestTimeout    = 3 * time.Second
	redialDelay       = 1 * time.Second
	defaultHeartbeats = 30 * time.Second
)

// Handler receives events delivered to a subscribed client.
type Handler func(types.Event)

// ClientConfig describes one bus client.
type ClientConfig struct {
	ClientID string
	// PushAddr is the hub's REP endpoint, e.g. tcp://signaling:5555.
	PushAddr string
	// SubAddr is the hub's PUB endpoint, e.g. tcp://signaling:5556.
	SubAddr string
	// APIAddr is the hub's HTTP base URL, e.g. http://signaling:5557. Empty
	// disables the browse and list helpers.
	APIAddr string
	// Watched lists the event types delivered to the handler. The wildcard
	// "*" matches every type. An empty list delivers nothing.
	Watched []types.EventType
	// Handler receives matching events. Nil disables the subscriber socket.
	Handler Handler
	// HeartbeatInterval defaults to 30 seconds.
	HeartbeatInterval time.Duration
}

// Client is a bus participant. Pushes go over a serialized REQ socket with a
// bounded wait and one reconnect-and-retry; subscriptions arrive on a SUB
// socket that redials on failure. Delivery on the SUB side is at most once.
type Client struct {
	cfg     ClientConfig
	watched map[types.EventType]struct{}
	logger  zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu  sync.Mutex
	req zmq4.Socket
}

// NewClient creates a bus client. Call Connect before Push.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("client_id is required")
	}
	if cfg.PushAddr == "" {
		return nil, fmt.Errorf("push address is required")
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = defaultHeartbeats
	}

	watched := make(map[types.EventType]struct{}, len(cfg.Watched))
	for _, t := range cfg.Watched {
		watched[t] = struct{}{}
	}

	return &Client{
		cfg:     cfg,
		watched: watched,
		logger:  log.WithClientID(cfg.ClientID),
	}, nil
}

// Connect dials the hub and starts the subscriber and heartbeat loops.
func (c *Client) Connect(ctx context.Context) error {
	c.ctx, c.cancel = context.WithCancel(ctx)

	c.mu.Lock()
	err := c.dialLocked()
	c.mu.Unlock()
	if err != nil {
		return err
	}

	if c.cfg.Handler != nil && c.cfg.SubAddr != "" {
		c.wg.Add(1)
		go c.subscribeLoop()
	}
	c.wg.Add(1)
	go c.heartbeatLoop()

	c.logger.Info().
		Str("push_addr", c.cfg.PushAddr).
		Str("sub_addr", c.cfg.SubAddr).
		Msg("connected to signaling hub")
	return nil
}

// Close tears down both sockets and waits for the loops to exit.
func (c *Client) Close() {
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Lock()
	if c.req != nil {
		c.req.Close()
		c.req = nil
	}
	c.mu.Unlock()
	c.wg.Wait()
}

// dialLocked replaces the REQ socket. Caller holds c.mu.
func (c *Client) dialLocked() error {
	if c.req != nil {
		c.req.Close()
	}
	req := zmq4.NewReq(c.ctx)
	if err := req.Dial(c.cfg.PushAddr); err != nil {
		c.req = nil
		return fmt.Errorf("failed to dial hub: %w", err)
	}
	c.req = req
	return nil
}

// PushOption refines an outgoing event.
type PushOption func(*request)

// WithSource sets the event owner. Without it the hub records the event
// under the ownerless sentinel.
func WithSource(source string) PushOption {
	return func(r *request) { r.Source = source }
}

// WithTags attaches tags to the event.
func WithTags(tags ...string) PushOption {
	return func(r *request) { r.Tags = tags }
}

// WithAffected attaches the affected-entity list to the event.
func WithAffected(affected ...string) PushOption {
	return func(r *request) { r.Affected = affected }
}

// Push sends one event to the hub and returns its assigned eid.
func (c *Client) Push(eventType types.EventType, message map[string]any, opts ...PushOption) (int64, error) {
	req := request{
		Type:      "push",
		ClientID:  c.cfg.ClientID,
		EventType: string(eventType),
		Message:   message,
		Timestamp: float64(time.Now().UnixNano()) / float64(time.Second),
	}
	for _, opt := range opts {
		opt(&req)
	}

	resp, err := c.roundTrip(req)
	if err != nil {
		return 0, err
	}
	if resp.Status != "success" {
		return 0, fmt.Errorf("push rejected: %s", resp.Message)
	}
	return resp.EID, nil
}

// Heartbeat tells the hub this client is still alive.
func (c *Client) Heartbeat() error {
	resp, err := c.roundTrip(request{Type: "heartbeat", ClientID: c.cfg.ClientID})
	if err != nil {
		return err
	}
	if resp.Status != "success" {
		return fmt.Errorf("heartbeat rejected: %s", resp.Message)
	}
	return nil
}

// roundTrip performs one REQ exchange under the socket mutex. A failed or
// timed-out exchange reconnects the socket and retries exactly once.
func (c *Client) roundTrip(req request) (*response, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	resp, firstErr := c.exchangeLocked(raw)
	if firstErr == nil {
		return resp, nil
	}

	c.logger.Warn().Err(firstErr).Msg("request failed, reconnecting")
	if err := c.dialLocked(); err != nil {
		return nil, firstErr
	}
	resp, err = c.exchangeLocked(raw)
	if err != nil {
		return nil, fmt.Errorf("request failed after reconnect: %w", err)
	}
	return resp, nil
}

func (c *Client) exchangeLocked(raw []byte) (*response, error) {
	if c.req == nil {
		if err := c.dialLocked(); err != nil {
			return nil, err
		}
	}
	sock := c.req

	if err := sock.Send(zmq4.NewMsg(raw)); err != nil {
		return nil, fmt.Errorf("send failed: %w", err)
	}

	type result struct {
		msg zmq4.Msg
		err error
	}
	ch := make(chan result, 1)
	go func() {
		msg, err := sock.Recv()
		ch <- result{msg, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("receive failed: %w", r.err)
		}
		var resp response
		if err := json.Unmarshal(r.msg.Bytes(), &resp); err != nil {
			return nil, fmt.Errorf("malformed response: %w", err)
		}
		return &resp, nil
	case <-time.After(requestTimeout):
		// The REQ state machine is stuck waiting for this reply; the socket
		// has to be replaced before the next exchange.
		sock.Close()
		c.req = nil
		return nil, fmt.Errorf("request timed out after %s", requestTimeout)
	}
}

// BrowseEvents queries the hub's HTTP history endpoint.
func (c *Client) BrowseEvents(ctx context.Context, q BrowseQuery) ([]types.Event, error) {
	if c.cfg.APIAddr == "" {
		return nil, fmt.Errorf("no API address configured")
	}
	body, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.APIAddr+"/v1/browse", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var events []types.Event
	if err := c.doJSON(req, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// ListValues returns the distinct values of one event column. kind is one of
// "types", "owners", "tags" or "affected".
func (c *Client) ListValues(ctx context.Context, kind string) ([]string, error) {
	if c.cfg.APIAddr == "" {
		return nil, fmt.Errorf("no API address configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.APIAddr+"/v1/list/"+kind, nil)
	if err != nil {
		return nil, err
	}

	var values []string
	if err := c.doJSON(req, &values); err != nil {
		return nil, err
	}
	return values, nil
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var failure struct {
			Message string `json:"message"`
		}
		if json.NewDecoder(resp.Body).Decode(&failure) == nil && failure.Message != "" {
			return fmt.Errorf("request failed: %s", failure.Message)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// wants reports whether the event type passes the watch filter.
func (c *Client) wants(t types.EventType) bool {
	if _, ok := c.watched[types.EventFilterAny]; ok {
		return true
	}
	_, ok := c.watched[t]
	return ok
}

func (c *Client) subscribeLoop() {
	defer c.wg.Done()

	for c.ctx.Err() == nil {
		sub := zmq4.NewSub(c.ctx)
		if err := sub.Dial(c.cfg.SubAddr); err != nil {
			c.logger.Warn().Err(err).Msg("failed to dial publish socket")
			c.sleep(redialDelay)
			continue
		}
		// The hub publishes whole-event frames; filtering happens client
		// side against the watched set.
		if err := sub.SetOption(zmq4.OptionSubscribe, ""); err != nil {
			c.logger.Warn().Err(err).Msg("failed to subscribe")
			sub.Close()
			c.sleep(redialDelay)
			continue
		}

		c.receive(sub)
		sub.Close()
		c.sleep(redialDelay)
	}
}

func (c *Client) receive(sub zmq4.Socket) {
	for {
		msg, err := sub.Recv()
		if err != nil {
			if c.ctx.Err() == nil {
				c.logger.Warn().Err(err).Msg("subscription lost, redialing")
			}
			return
		}

		var event types.Event
		if err := json.Unmarshal(msg.Bytes(), &event); err != nil {
			c.logger.Warn().Err(err).Msg("dropping malformed event")
			continue
		}
		if !c.wants(event.Type) {
			continue
		}
		c.cfg.Handler(event)
	}
}

func (c *Client) heartbeatLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			if err := c.Heartbeat(); err != nil {
				c.logger.Warn().Err(err).Msg("heartbeat failed")
			}
		}
	}
}

func (c *Client) sleep(d time.Duration) {
	select {
	case <-c.ctx.Done():
	case <-time.After(d):
	}
}
