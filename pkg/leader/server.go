package leader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/lunaricorn/lunaricorn/pkg/log"
	"github.com/lunaricorn/lunaricorn/pkg/metrics"
	"github.com/lunaricorn/lunaricorn/pkg/types"
)

// Server exposes the registrar over HTTP.
type Server struct {
	leader *Leader
	http   *http.Server
	logger zerolog.Logger
}

// NewServer wires the registrar API on the given port.
func NewServer(leader *Leader, port int) *Server {
	s := &Server{
		leader: leader,
		logger: log.WithComponent("leader-api"),
	}
	s.http = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.routes(),
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(observe("leader"))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/imalive", s.handleImAlive)
		r.Get("/list", s.handleList)
		r.Get("/clusterinfo", s.handleClusterInfo)
		r.Get("/getenv", s.handleGetEnv)
		r.Get("/utils/get_mid", s.handleGetMID)
		r.Get("/utils/get_oid", s.handleGetOID)
		r.Post("/discover", s.handleDiscover)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Resource not found"})
	})
	return r
}

// Start runs the HTTP listener until the context is canceled.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("registrar API listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Lunaricorn leader API",
		"version": "v1",
		"status":  "running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) handleImAlive(w http.ResponseWriter, r *http.Request) {
	var b types.Beacon
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Invalid request body"})
		return
	}
	if b.NodeName == "" {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Invalid or missing node_name"})
		return
	}
	if b.NodeType == "" {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Invalid or missing node_type"})
		return
	}
	if b.InstanceKey == "" {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Invalid or missing instance_key"})
		return
	}

	if err := s.leader.UpdateNode(r.Context(), b); err != nil {
		s.logger.Error().Err(err).Str("node", b.NodeName).Msg("failed to record beacon")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Failed to update node record"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "received"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	nodes, err := s.leader.List(r.Context())
	if errors.Is(err, ErrNotReady) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": ErrNotReady.Error()})
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list nodes")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Failed to list services"})
		return
	}
	if nodes == nil {
		nodes = []types.Node{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"services":    nodes,
		"total_count": len(nodes),
		"timestamp":   time.Now().Unix(),
	})
}

func (s *Server) handleClusterInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.leader.Info(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to assemble cluster info")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Failed to get cluster info"})
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleGetEnv(w http.ResponseWriter, r *http.Request) {
	doc, err := s.leader.ClusterConfig(r.Context())
	if errors.Is(err, ErrNotReady) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": ErrNotReady.Error()})
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load cluster configuration")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Failed to load cluster configuration"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"cfg":       doc,
		"core":      "leader",
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) handleGetMID(w http.ResponseWriter, r *http.Request) {
	mid, err := s.leader.NextMessageID(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to issue message id")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Failed to get message id"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"mid": mid})
}

func (s *Server) handleGetOID(w http.ResponseWriter, r *http.Request) {
	oid, err := s.leader.NextObjectID(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to issue object id")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Failed to get object id"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"oid": oid})
}

// handleDiscover is a reserved hook for active discovery. It acknowledges
// the query with an empty result set.
func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		body.Query = ""
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":       body.Query,
		"results":     []any{},
		"total_count": 0,
		"timestamp":   time.Now().Unix(),
	})
}

// observe wraps handlers with the request duration histogram.
func observe(service string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			metrics.APIRequestDuration.
				WithLabelValues(service, r.URL.Path).
				Observe(time.Since(start).Seconds())
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
