package leader

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lunaricorn/lunaricorn/pkg/config"
	"github.com/lunaricorn/lunaricorn/pkg/database"
	"github.com/lunaricorn/lunaricorn/pkg/log"
	"github.com/lunaricorn/lunaricorn/pkg/metrics"
	"github.com/lunaricorn/lunaricorn/pkg/types"
)

// ErrNotReady is returned when one or more required nodes are outside the
// alive window.
var ErrNotReady = errors.New("leader is not ready to start")

// Leader is the cluster registrar. It records liveness beacons, evaluates
// readiness against the required-node list, serves the inventory, and hands
// out the cluster-wide monotonic ids.
type Leader struct {
	cfg       config.Leader
	inventory *Inventory
	state     *State
	logger    zerolog.Logger
}

// New creates a Leader over the shared persistence adapter and installs its
// schema.
func New(ctx context.Context, cfg config.Leader, db *database.Adapter) (*Leader, error) {
	l := &Leader{
		cfg:       cfg,
		inventory: NewInventory(db),
		state:     NewState(db),
		logger:    log.WithComponent("leader"),
	}
	if err := l.inventory.Install(ctx); err != nil {
		return nil, err
	}
	if err := l.state.Install(ctx); err != nil {
		return nil, err
	}
	l.logger.Info().
		Int64("alive_timeout", cfg.Discover.AliveTimeout).
		Strs("required_nodes", cfg.Discover.RequiredNodes).
		Msg("leader initialized")
	return l, nil
}

// UpdateNode processes one beacon.
func (l *Leader) UpdateNode(ctx context.Context, b types.Beacon) error {
	if err := l.inventory.Update(ctx, b); err != nil {
		return err
	}
	metrics.BeaconsReceived.WithLabelValues(b.NodeType).Inc()
	return nil
}

// ActiveNodes returns the nodes inside the alive window.
func (l *Leader) ActiveNodes(ctx context.Context) ([]types.Node, error) {
	nodes, err := l.inventory.List(ctx, l.cfg.Discover.AliveTimeout)
	if err != nil {
		return nil, err
	}
	metrics.NodesAlive.Set(float64(len(nodes)))
	return nodes, nil
}

// MissingNodes returns the required node names with no alive record.
func (l *Leader) MissingNodes(ctx context.Context) ([]string, error) {
	alive, err := l.ActiveNodes(ctx)
	if err != nil {
		return nil, err
	}
	aliveNames := make(map[string]struct{}, len(alive))
	for _, n := range alive {
		aliveNames[n.Name] = struct{}{}
	}

	var missing []string
	for _, required := range l.cfg.Discover.RequiredNodes {
		if _, ok := aliveNames[required]; !ok {
			missing = append(missing, required)
		}
	}
	return missing, nil
}

// Ready reports whether every required node is alive.
func (l *Leader) Ready(ctx context.Context) (bool, error) {
	missing, err := l.MissingNodes(ctx)
	if err != nil {
		return false, err
	}
	if len(missing) > 0 {
		l.logger.Warn().
			Strs("missing", missing).
			Strs("required", l.cfg.Discover.RequiredNodes).
			Msg("missing required nodes")
		return false, nil
	}
	return true, nil
}

// List returns the alive nodes, gated on readiness.
func (l *Leader) List(ctx context.Context) ([]types.Node, error) {
	ready, err := l.Ready(ctx)
	if err != nil {
		return nil, err
	}
	if !ready {
		return nil, ErrNotReady
	}
	return l.ActiveNodes(ctx)
}

// ClusterInfo summarizes node state for the clusterinfo endpoint: the union
// of required and alive names, each marked "on" or "off".
type ClusterInfo struct {
	NodesSummary  map[string]string `json:"nodes_summary"`
	RequiredNodes []string          `json:"required_nodes"`
}

// Info assembles the detailed cluster status.
func (l *Leader) Info(ctx context.Context) (*ClusterInfo, error) {
	alive, err := l.ActiveNodes(ctx)
	if err != nil {
		return nil, err
	}

	summary := make(map[string]string)
	for _, name := range l.cfg.Discover.RequiredNodes {
		summary[name] = "off"
	}
	for _, n := range alive {
		summary[n.Name] = "on"
	}

	required := l.cfg.Discover.RequiredNodes
	if required == nil {
		required = []string{}
	}
	return &ClusterInfo{NodesSummary: summary, RequiredNodes: required}, nil
}

// ClusterConfig loads the opaque cluster configuration document, gated on
// readiness.
func (l *Leader) ClusterConfig(ctx context.Context) (map[string]any, error) {
	ready, err := l.Ready(ctx)
	if err != nil {
		return nil, err
	}
	if !ready {
		return nil, ErrNotReady
	}

	doc, err := config.LoadClusterConfig(l.cfg.ClusterConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load cluster configuration: %w", err)
	}
	return doc, nil
}

// NextMessageID returns the next value of the MESSAGE_ID counter.
func (l *Leader) NextMessageID(ctx context.Context) (int64, error) {
	return l.state.Next(ctx, types.StateMessageID)
}

// NextObjectID returns the next value of the OBJECT_ID counter.
func (l *Leader) NextObjectID(ctx context.Context) (int64, error) {
	return l.state.Next(ctx, types.StateObjectID)
}

// Inventory exposes the node store for maintenance tooling.
func (l *Leader) Inventory() *Inventory {
	return l.inventory
}
