package orb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lunaricorn/lunaricorn/pkg/database"
	"github.com/lunaricorn/lunaricorn/pkg/log"
	"github.com/lunaricorn/lunaricorn/pkg/metrics"
	"github.com/lunaricorn/lunaricorn/pkg/types"
)

// HTTPServer is the object store's HTTP surface. It carries the same push
// and fetch operations as the RPC service, plus health and metrics.
type HTTPServer struct {
	storage *Storage
	http    *http.Server
	logger  zerolog.Logger
}

// NewHTTPServer wires the HTTP sidecar on the given port.
func NewHTTPServer(storage *Storage, port int) *HTTPServer {
	h := &HTTPServer{
		storage: storage,
		logger:  log.WithComponent("orb-api"),
	}
	h.http = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: h.routes(),
	}
	return h
}

func (h *HTTPServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, req)
			metrics.APIRequestDuration.
				WithLabelValues("orb", req.URL.Path).
				Observe(time.Since(start).Seconds())
		})
	})

	r.Get("/", h.handleRoot)
	r.Get("/health", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/data", h.handlePushData)
		r.Get("/data/{u}", h.handleGetData)
		r.Post("/meta", h.handlePushMeta)
		r.Get("/meta/{id}", h.handleGetMeta)
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		h.writeJSON(w, http.StatusNotFound, map[string]any{"message": "Resource not found"})
	})
	return r
}

// Start runs the HTTP listener until the context is canceled.
func (h *HTTPServer) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		h.logger.Info().Str("addr", h.http.Addr).Msg("orb API listening")
		if err := h.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return h.http.Shutdown(shutdownCtx)
	}
}

func (h *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"message": "Lunaricorn orb API",
		"version": "v1",
	})
}

func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}

func (h *HTTPServer) handlePushData(w http.ResponseWriter, r *http.Request) {
	var d types.OrbData
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid request body"})
		return
	}

	created, err := h.storage.PushData(r.Context(), &d)
	if errors.Is(err, database.ErrNotFound) {
		h.writeJSON(w, http.StatusNotFound, map[string]any{"message": "Record not found"})
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("push failed")
		h.writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Failed to store record"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"u": d.U.String(), "created": created})
}

func (h *HTTPServer) handlePushMeta(w http.ResponseWriter, r *http.Request) {
	var m types.OrbMeta
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid request body"})
		return
	}

	created, err := h.storage.PushMeta(r.Context(), &m)
	if errors.Is(err, database.ErrNotFound) {
		h.writeJSON(w, http.StatusNotFound, map[string]any{"message": "Record not found"})
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("push failed")
		h.writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Failed to store record"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"id": m.ID, "created": created})
}

func (h *HTTPServer) handleGetData(w http.ResponseWriter, r *http.Request) {
	u, err := uuid.Parse(chi.URLParam(r, "u"))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Malformed uuid"})
		return
	}

	d, err := h.storage.FetchData(r.Context(), u)
	if errors.Is(err, database.ErrNotFound) {
		// A missing record is a null document, not an error.
		h.writeJSON(w, http.StatusOK, nil)
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("u", u.String()).Msg("fetch failed")
		h.writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Failed to fetch record"})
		return
	}
	h.writeJSON(w, http.StatusOK, d)
}

func (h *HTTPServer) handleGetMeta(w http.ResponseWriter, r *http.Request) {
	var id int64
	if _, err := fmt.Sscanf(chi.URLParam(r, "id"), "%d", &id); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Malformed id"})
		return
	}

	m, err := h.storage.FetchMeta(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		h.writeJSON(w, http.StatusOK, nil)
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Int64("id", id).Msg("fetch failed")
		h.writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Failed to fetch record"})
		return
	}
	h.writeJSON(w, http.StatusOK, m)
}

func (h *HTTPServer) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
