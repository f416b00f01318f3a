package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registrar metrics
	BeaconsReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lunaricorn_beacons_received_total",
			Help: "Total number of liveness beacons received by node type",
		},
		[]string{"node_type"},
	)

	NodesAlive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lunaricorn_nodes_alive",
			Help: "Number of nodes inside the alive window at last evaluation",
		},
	)

	IDsIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lunaricorn_ids_issued_total",
			Help: "Total number of cluster-wide ids issued by counter key",
		},
		[]string{"key"},
	)

	// Signaling metrics
	EventsPushed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lunaricorn_signaling_events_pushed_total",
			Help: "Total number of events pushed to the hub by result",
		},
		[]string{"status"},
	)

	EventsPublished = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lunaricorn_signaling_events_published_total",
			Help: "Total number of events fanned out on the publish socket",
		},
	)

	SubscribersActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lunaricorn_signaling_subscribers_active",
			Help: "Number of clients with a fresh heartbeat",
		},
	)

	BrowseQueries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lunaricorn_signaling_browse_queries_total",
			Help: "Total number of history queries served",
		},
	)

	// Orb metrics
	OrbOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lunaricorn_orb_operations_total",
			Help: "Total number of orb storage operations by kind and result",
		},
		[]string{"op", "status"},
	)

	// API metrics
	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lunaricorn_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "path"},
	)
)

func init() {
	prometheus.MustRegister(BeaconsReceived)
	prometheus.MustRegister(NodesAlive)
	prometheus.MustRegister(IDsIssued)
	prometheus.MustRegister(EventsPushed)
	prometheus.MustRegister(EventsPublished)
	prometheus.MustRegister(SubscribersActive)
	prometheus.MustRegister(BrowseQueries)
	prometheus.MustRegister(OrbOps)
	prometheus.MustRegister(APIRequestDuration)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
