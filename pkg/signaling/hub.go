package signaling

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-zeromq/zmq4"
	"github.com/rs/zerolog"

	"github.com/lunaricorn/lunaricorn/pkg/config"
	"github.com/lunaricorn/lunaricorn/pkg/log"
	"github.com/lunaricorn/lunaricorn/pkg/metrics"
	"github.com/lunaricorn/lunaricorn/pkg/types"
)

// request is the wire frame clients send on the REP socket.
type request struct {
	Type      string         `json:"type"`
	ClientID  string         `json:"client_id"`
	EventType string         `json:"event_type,omitempty"`
	Message   map[string]any `json:"message,omitempty"`
	Timestamp float64        `json:"timestamp,omitempty"`
	Source    string         `json:"source,omitempty"`
	Affected  []string       `json:"affected,omitempty"`
	Tags      []string       `json:"tags,omitempty"`
}

// response is the wire frame the hub answers with.
type response struct {
	Status    string  `json:"status"`
	EID       int64   `json:"eid,omitempty"`
	Message   string  `json:"message,omitempty"`
	Timestamp float64 `json:"timestamp,omitempty"`
}

// Hub is the signaling bus server. It answers pushes and heartbeats on a REP
// socket, persists every accepted event, and fans events out on a PUB
// socket. Subscriber liveness lives only in memory; a hub restart forgets
// all clients and they re-announce through their heartbeats.
type Hub struct {
	cfg      config.Signaling
	store    *Store
	registry *registry
	logger   zerolog.Logger

	mu  sync.Mutex
	rep zmq4.Socket
	pub zmq4.Socket
}

// NewHub creates the bus server over the given event store.
func NewHub(cfg config.Signaling, store *Store) *Hub {
	return &Hub{
		cfg:      cfg,
		store:    store,
		registry: newRegistry(cfg.MessageStorage.SubscriberTimeout),
		logger:   log.WithComponent("signaling-hub"),
	}
}

func (h *Hub) endpoint(port int) string {
	return fmt.Sprintf("%s://%s:%d", h.cfg.ZMQ.Protocol, h.cfg.ZMQ.BindAddress, port)
}

// Start binds both sockets and serves until the context is canceled.
func (h *Hub) Start(ctx context.Context) error {
	rep := zmq4.NewRep(ctx)
	if err := rep.Listen(h.endpoint(h.cfg.Port)); err != nil {
		return fmt.Errorf("failed to bind reply socket: %w", err)
	}
	pub := zmq4.NewPub(ctx)
	if err := pub.Listen(h.endpoint(h.cfg.PubPort)); err != nil {
		rep.Close()
		return fmt.Errorf("failed to bind publish socket: %w", err)
	}

	h.mu.Lock()
	h.rep, h.pub = rep, pub
	h.mu.Unlock()
	defer func() {
		rep.Close()
		pub.Close()
	}()

	h.logger.Info().
		Str("reply", h.endpoint(h.cfg.Port)).
		Str("publish", h.endpoint(h.cfg.PubPort)).
		Msg("signaling hub listening")

	if err := h.selfCheck(ctx); err != nil {
		return err
	}

	pruneEvery := time.Duration(h.cfg.ZMQ.HeartbeatInterval) * time.Second
	if pruneEvery <= 0 {
		pruneEvery = 30 * time.Second
	}
	go h.registry.pruneLoop(ctx, pruneEvery)

	for {
		msg, err := rep.Recv()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			h.logger.Error().Err(err).Msg("receive failed")
			continue
		}

		resp := h.handle(ctx, msg.Bytes())
		raw, err := json.Marshal(resp)
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to encode response")
			raw = []byte(`{"status":"error","message":"internal error"}`)
		}
		if err := rep.Send(zmq4.NewMsg(raw)); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			h.logger.Error().Err(err).Msg("send failed")
		}
	}
}

func (h *Hub) handle(ctx context.Context, raw []byte) response {
	var req request
	if err := json.Unmarshal(raw, &req); err != nil {
		return response{Status: "error", Message: "malformed request"}
	}

	switch req.Type {
	case "push":
		return h.handlePush(ctx, req)
	case "heartbeat":
		return h.handleHeartbeat(req)
	default:
		return response{Status: "error", Message: fmt.Sprintf("unknown request type %q", req.Type)}
	}
}

func (h *Hub) handlePush(ctx context.Context, req request) response {
	if req.EventType == "" {
		metrics.EventsPushed.WithLabelValues("error").Inc()
		return response{Status: "error", Message: "Missing required field: event_type"}
	}
	if req.Message == nil {
		metrics.EventsPushed.WithLabelValues("error").Inc()
		return response{Status: "error", Message: "Missing required field: message"}
	}

	event := &types.Event{
		Type:      types.EventType(req.EventType),
		Payload:   req.Message,
		Timestamp: req.Timestamp,
		Source:    req.Source,
		Affected:  req.Affected,
		Tags:      req.Tags,
	}
	if event.Timestamp == 0 {
		event.Timestamp = float64(time.Now().UnixNano()) / float64(time.Second)
	}

	eid, err := h.store.CreateEvent(ctx, event)
	if err != nil {
		metrics.EventsPushed.WithLabelValues("error").Inc()
		h.logger.Error().Err(err).Str("event_type", req.EventType).Msg("failed to store event")
		// The log is the source of truth: nothing is published for a failed
		// append.
		return response{Status: "failed", Message: err.Error()}
	}
	metrics.EventsPushed.WithLabelValues("success").Inc()

	if req.ClientID != "" {
		h.registry.Touch(req.ClientID)
	}
	h.publish(event)
	return response{Status: "success", EID: eid}
}

func (h *Hub) handleHeartbeat(req request) response {
	if req.ClientID == "" {
		return response{Status: "error", Message: "client_id is required"}
	}
	h.registry.Touch(req.ClientID)
	return response{
		Status:    "success",
		Timestamp: float64(time.Now().UnixNano()) / float64(time.Second),
	}
}

// publish fans one stored event out to every subscriber. Delivery is at most
// once; subscribers that need gap-free history use the browse API.
func (h *Hub) publish(event *types.Event) {
	h.mu.Lock()
	pub := h.pub
	h.mu.Unlock()
	if pub == nil {
		return
	}

	raw, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Int64("eid", event.EID).Msg("failed to encode event")
		return
	}
	if err := pub.Send(zmq4.NewMsg(raw)); err != nil {
		h.logger.Error().Err(err).Int64("eid", event.EID).Msg("publish failed")
		return
	}
	metrics.EventsPublished.Inc()
}

// selfCheck pushes two events through the full store-and-publish path at
// boot, one owned and one ownerless, so a broken database or a broken owner
// default surfaces before clients connect.
func (h *Hub) selfCheck(ctx context.Context) error {
	now := float64(time.Now().UnixNano()) / float64(time.Second)

	owned := &types.Event{
		Type:      "signaling_started",
		Payload:   map[string]any{"name": h.cfg.Name},
		Timestamp: now,
		Source:    h.cfg.Name,
		Tags:      []string{"selftest"},
	}
	if _, err := h.store.CreateEvent(ctx, owned); err != nil {
		return fmt.Errorf("boot self-check failed: %w", err)
	}
	h.publish(owned)

	orphan := &types.Event{
		Type:      "selftest",
		Payload:   map[string]any{"probe": "ownerless"},
		Timestamp: now,
		Tags:      []string{"selftest"},
	}
	if _, err := h.store.CreateEvent(ctx, orphan); err != nil {
		return fmt.Errorf("boot self-check failed: %w", err)
	}
	if orphan.Source != types.OwnerlessSource {
		return fmt.Errorf("boot self-check: owner defaulting is broken")
	}

	h.logger.Info().
		Int64("owned_eid", owned.EID).
		Int64("ownerless_eid", orphan.EID).
		Msg("boot self-check passed")
	return nil
}

// ClientStat describes one known subscriber.
type ClientStat struct {
	ClientID   string `json:"client_id"`
	LastSeen   int64  `json:"last_seen"`
	AgeSeconds int64  `json:"age_seconds"`
}

// Clients returns the subscribers with a heartbeat inside the timeout
// window.
func (h *Hub) Clients() []ClientStat {
	return h.registry.Active()
}

// registry tracks subscriber heartbeats in memory.
type registry struct {
	mu      sync.Mutex
	clients map[string]time.Time
	timeout time.Duration
}

func newRegistry(timeoutSeconds int64) *registry {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 300
	}
	return &registry{
		clients: make(map[string]time.Time),
		timeout: time.Duration(timeoutSeconds) * time.Second,
	}
}

func (r *registry) Touch(clientID string) {
	r.mu.Lock()
	r.clients[clientID] = time.Now()
	metrics.SubscribersActive.Set(float64(len(r.clients)))
	r.mu.Unlock()
}

func (r *registry) Active() []ClientStat {
	now := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := make([]ClientStat, 0, len(r.clients))
	for id, seen := range r.clients {
		if now.Sub(seen) > r.timeout {
			continue
		}
		stats = append(stats, ClientStat{
			ClientID:   id,
			LastSeen:   seen.Unix(),
			AgeSeconds: int64(now.Sub(seen).Seconds()),
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].ClientID < stats[j].ClientID })
	return stats
}

func (r *registry) prune() {
	now := time.Now()
	r.mu.Lock()
	for id, seen := range r.clients {
		if now.Sub(seen) > r.timeout {
			delete(r.clients, id)
		}
	}
	metrics.SubscribersActive.Set(float64(len(r.clients)))
	r.mu.Unlock()
}

func (r *registry) pruneLoop(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.prune()
		}
	}
}
