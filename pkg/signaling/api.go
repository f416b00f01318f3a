package signaling

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

// API serves the signaling history and statistics over HTTP. The push path
// stays on the REP socket; HTTP is read-only.
type API struct {
	store  *Store
	hub    *Hub
	http   *http.Server
	logger zerolog.Logger
}

// NewAPI wires the history API on the given port.
func NewAPI(store *Store, hub *Hub, port int) *API {
	a := &API{
		store:  store,
		hub:    hub,
		logger: log.WithComponent("signaling-api"),
	}
	a.http = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: a.routes(),
	}
	return a
}

func (a *API) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, req)
			metrics.APIRequestDuration.
				WithLabelValues("signaling", req.URL.Path).
				Observe(time.Since(start).Seconds())
		})
	})

	r.Get("/health", a.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/browse", a.handleBrowse)
		r.Get("/list/types", a.handleList(a.store.DistinctTypes))
		r.Get("/list/owners", a.handleList(a.store.DistinctOwners))
		r.Get("/list/tags", a.handleList(a.store.DistinctTags))
		r.Get("/list/affected", a.handleList(a.store.DistinctAffected))
		r.Get("/stat/clients", a.handleClients)
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		a.writeJSON(w, http.StatusNotFound, map[string]any{"message": "Resource not found"})
	})
	return r
}

// Start runs the HTTP listener until the context is canceled.
func (a *API) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", a.http.Addr).Msg("signaling API listening")
		if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.http.Shutdown(shutdownCtx)
	}
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}

func (a *API) handleBrowse(w http.ResponseWriter, r *http.Request) {
	var q BrowseQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		a.writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid request body"})
		return
	}

	events, err := a.store.Browse(r.Context(), q)
	if errors.Is(err, ErrValidation) {
		a.writeJSON(w, http.StatusBadRequest, map[string]any{"message": err.Error()})
		return
	}
	if err != nil {
		a.logger.Error().Err(err).Msg("browse failed")
		a.writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Failed to browse events"})
		return
	}
	metrics.BrowseQueries.Inc()
	if events == nil {
		events = []types.Event{}
	}
	a.writeJSON(w, http.StatusOK, events)
}

func (a *API) handleList(fetch func(context.Context) ([]string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		values, err := fetch(r.Context())
		if err != nil {
			a.logger.Error().Err(err).Msg("list failed")
			a.writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "Failed to list values"})
			return
		}
		if values == nil {
			values = []string{}
		}
		a.writeJSON(w, http.StatusOK, values)
	}
}

func (a *API) handleClients(w http.ResponseWriter, r *http.Request) {
	clients := a.hub.Clients()
	a.writeJSON(w, http.StatusOK, map[string]any{
		"clients":     clients,
		"total_count": len(clients),
		"timestamp":   time.Now().Unix(),
	})
}

func (a *API) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
