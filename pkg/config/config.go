package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DB holds the connection settings for the cluster's relational store.
// Environment variables override file values when set.
type DB struct {
	Type     string `yaml:"db_type"`
	Host     string `yaml:"db_host"`
	Port     int    `yaml:"db_port"`
	User     string `yaml:"db_user"`
	Password string `yaml:"db_password"`
	Name     string `yaml:"dbname"`
}

// Valid reports whether the config carries enough to attempt a connection.
func (d *DB) Valid() bool {
	return d.Host != "" && d.Port > 0 && d.User != "" && d.Name != ""
}

// ApplyEnv overrides fields from the well-known environment variables. An
// environment variable wins over the file value only when it is set.
func (d *DB) ApplyEnv() {
	if v, ok := os.LookupEnv("db_type"); ok {
		d.Type = v
	}
	if v, ok := os.LookupEnv("db_host"); ok {
		d.Host = v
	}
	if v, ok := os.LookupEnv("db_port"); ok {
		if p, err := strconv.Atoi(v); err == nil {
			d.Port = p
		}
	}
	if v, ok := os.LookupEnv("db_user"); ok {
		d.User = v
	}
	if v, ok := os.LookupEnv("db_password"); ok {
		d.Password = v
	}
	if v, ok := os.LookupEnv("db_name"); ok {
		d.Name = v
	}
}

// Discover is the registrar's liveness configuration.
type Discover struct {
	AliveTimeout  int64    `yaml:"alive_timeout"`
	RequiredNodes []string `yaml:"required_nodes"`
}

// Leader is the registrar service configuration, loaded from
// leader_config.yaml.
type Leader struct {
	APIPort           int      `yaml:"api_port"`
	Discover          Discover `yaml:"discover"`
	ClusterConfigPath string   `yaml:"cluster_config_path"`
	DB                DB       `yaml:"database"`
}

// ZMQ holds the socket tuning for the signaling hub.
type ZMQ struct {
	Protocol          string `yaml:"protocol"`
	BindAddress       string `yaml:"bind_address"`
	HeartbeatInterval int    `yaml:"heartbeat_interval"`
	Timeout           int    `yaml:"timeout"`
}

// MessageStorage is the signaling event store configuration.
type MessageStorage struct {
	DB                DB    `yaml:",inline"`
	SubscriberTimeout int64 `yaml:"subscriber_timeout"`
}

// Signaling is the hub service configuration.
type Signaling struct {
	Name           string         `yaml:"name"`
	Host           string         `yaml:"host"`
	Port           int            `yaml:"port"`
	PubPort        int            `yaml:"pub_port"`
	APIPort        int            `yaml:"api_port"`
	ZMQ            ZMQ            `yaml:"zmq"`
	MessageStorage MessageStorage `yaml:"message_storage"`
}

// Orb is the object-store service configuration.
type Orb struct {
	APIPort int `yaml:"api_port"`
	RPCPort int `yaml:"rpc_port"`
	// SignalingPushAddr and SignalingSubAddr point at the hub sockets used
	// for mutation announcements.
	SignalingPushAddr string `yaml:"signaling_push_addr"`
	SignalingSubAddr  string `yaml:"signaling_sub_addr"`
	DB                DB     `yaml:"database"`
}

// LeaderURL returns the registrar base URL, preferring CLUSTER_LEADER_URL.
func LeaderURL(fileValue string) string {
	if v, ok := os.LookupEnv("CLUSTER_LEADER_URL"); ok {
		return v
	}
	return fileValue
}

// Load reads a yaml config file into out.
func Load(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// LoadOrCreate reads the config at path, writing def there first when the
// file does not exist yet.
func LoadOrCreate(path string, def, out any) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		raw, err := yaml.Marshal(def)
		if err != nil {
			return fmt.Errorf("failed to render default config: %w", err)
		}
		if err := os.WriteFile(path, raw, 0644); err != nil {
			return fmt.Errorf("failed to write default config %s: %w", path, err)
		}
	}
	return Load(path, out)
}

// LoadClusterConfig reads the opaque cluster configuration document served
// by the registrar's getenv endpoint.
func LoadClusterConfig(path string) (map[string]any, error) {
	var doc map[string]any
	if err := Load(path, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// DefaultLeader returns the registrar defaults used when no config exists.
func DefaultLeader() Leader {
	return Leader{
		APIPort: 8001,
		Discover: Discover{
			AliveTimeout:  10,
			RequiredNodes: []string{},
		},
		ClusterConfigPath: "cluster_config.yaml",
		DB: DB{
			Type: "postgresql",
			Host: "localhost",
			Port: 5432,
			User: "postgres",
			Name: "lunaricorn",
		},
	}
}

// DefaultSignaling returns the hub defaults used when no config exists.
func DefaultSignaling() Signaling {
	return Signaling{
		Name:    "signaling",
		Host:    "0.0.0.0",
		Port:    5555,
		PubPort: 5556,
		APIPort: 5557,
		ZMQ: ZMQ{
			Protocol:          "tcp",
			BindAddress:       "*",
			HeartbeatInterval: 30,
			Timeout:           60,
		},
		MessageStorage: MessageStorage{
			DB: DB{
				Type: "postgresql",
				Host: "localhost",
				Port: 5432,
				User: "postgres",
				Name: "lunaricorn",
			},
			SubscriberTimeout: 300,
		},
	}
}

// DefaultOrb returns the orb service defaults used when no config exists.
func DefaultOrb() Orb {
	return Orb{
		APIPort:           8080,
		RPCPort:           50051,
		SignalingPushAddr: "tcp://localhost:5555",
		SignalingSubAddr:  "tcp://localhost:5556",
		DB: DB{
			Type: "postgresql",
			Host: "localhost",
			Port: 5432,
			User: "postgres",
			Name: "lunaricorn",
		},
	}
}
