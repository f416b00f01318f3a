package types

import (
	"time"

	"github.com/google/uuid"
)

// Node represents one entry in the cluster inventory. A node is identified
// by its instance key; name and type describe what the instance is.
type Node struct {
	ID         int64  `db:"i" json:"id"`
	Name       string `db:"name" json:"name"`
	Type       string `db:"type" json:"type"`
	Key        string `db:"key" json:"key"`
	LastSeen   int64  `db:"last_update" json:"last_update"`
	Host       string `db:"host" json:"host,omitempty"`
	Port       int    `db:"port" json:"port,omitempty"`
	AgeSeconds int64  `db:"-" json:"age_seconds"`
}

// Alive reports whether the node's last beacon falls inside the alive window.
func (n *Node) Alive(now int64, aliveTimeout int64) bool {
	return now-n.LastSeen <= aliveTimeout
}

// Beacon is the body of a /v1/imalive request.
type Beacon struct {
	NodeName    string         `json:"node_name"`
	NodeType    string         `json:"node_type"`
	InstanceKey string         `json:"instance_key"`
	Host        string         `json:"host,omitempty"`
	Port        int            `json:"port,omitempty"`
	Additional  map[string]any `json:"additional,omitempty"`
}

// ClusterStateKey names a cluster_state singleton row.
type ClusterStateKey string

const (
	// StateMessageID is the monotonic counter backing signaling message ids.
	StateMessageID ClusterStateKey = "MESSAGE_ID"

	// StateObjectID is the monotonic counter backing orb object ids.
	StateObjectID ClusterStateKey = "OBJECT_ID"
)

// EventType is the string tag of a signaling event. Well-known values are
// listed below; callers may define their own.
type EventType string

const (
	EventFileOpNew    EventType = "FileOp_new"
	EventFileOpUpdate EventType = "FileOp_update"

	// EventFilterAny matches every event type in a subscription filter.
	EventFilterAny EventType = "*"
)

// OwnerlessSource is stored as the event owner when a push carries no source.
const OwnerlessSource = "ownerless"

// Event is one persisted signaling event. EID is assigned by the store on
// insert and strictly increases within the event table.
type Event struct {
	EID       int64          `json:"eid"`
	Type      EventType      `json:"type"`
	Payload   map[string]any `json:"payload"`
	Timestamp float64        `json:"timestamp"`
	Source    string         `json:"source,omitempty"`
	Affected  []string       `json:"affected,omitempty"`
	Tags      []string       `json:"tags,omitempty"`
}

// Time converts the event's wire timestamp (unix seconds, fractional) to
// wall-clock time.
func (e *Event) Time() time.Time {
	sec := int64(e.Timestamp)
	nsec := int64((e.Timestamp - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec)
}

// OrbDataSubtype tags the payload encoding of an orb record.
type OrbDataSubtype string

const (
	OrbSubtypeJSON OrbDataSubtype = "@json"
	OrbSubtypeRaw  OrbDataSubtype = "@raw"
)

// RawDataKey is the json key carrying the base64 byte payload of an @raw
// record.
const RawDataKey = "data"

// OrbData is a data record keyed by a UUIDv7. The chain and parent fields are
// caller-controlled handles into other records; the store does not enforce
// them and they may form cycles. A zero UUID means the handle is unset.
type OrbData struct {
	U          uuid.UUID      `json:"u"`
	Subtype    OrbDataSubtype `json:"subtype"`
	Src        string         `json:"src,omitempty"`
	ChainLeft  uuid.UUID      `json:"chain_left"`
	ChainRight uuid.UUID      `json:"chain_right"`
	Parent     uuid.UUID      `json:"parent"`
	CTime      time.Time      `json:"ctime"`
	Flags      []string       `json:"flags"`
	Data       map[string]any `json:"data"`
}

// OrbMeta is a meta record keyed by a database-assigned integer id. Handle is
// an integer cross-reference whose semantics belong to the caller.
type OrbMeta struct {
	ID       int64          `json:"id"`
	U        uuid.UUID      `json:"u"`
	DataType OrbDataSubtype `json:"data_type"`
	CTime    time.Time      `json:"ctime"`
	Flags    []string       `json:"flags"`
	Handle   int64          `json:"handle"`
}
