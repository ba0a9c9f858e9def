// Package server exposes the engine's administrative and participant
// surfaces over HTTP. Identity verification proper is the job of the
// deployment's front proxy; this layer only enforces the admin secret
// and reads the authenticated caller from the request.
package server

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/n1platform/stakevault/internal/fault"
	"github.com/n1platform/stakevault/internal/service"
)

// Server wires the engine into an http.Handler.
type Server struct {
	engine     *service.Engine
	db         *sqlx.DB
	adminToken string
}

// New creates a Server. An empty adminToken disables the whole admin
// surface rather than leaving it open.
func New(engine *service.Engine, db *sqlx.DB, adminToken string) *Server {
	return &Server{engine: engine, db: db, adminToken: adminToken}
}

// Handler builds the full route table.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	admin := func(h http.HandlerFunc) http.Handler { return s.requireAdmin(h) }

	r.Handle("/v1/campaigns", admin(s.createCampaign)).Methods(http.MethodPost)
	r.HandleFunc("/v1/campaigns/{name}", s.getCampaign).Methods(http.MethodGet)
	r.Handle("/v1/campaigns/{name}", admin(s.deleteCampaign)).Methods(http.MethodDelete)
	r.Handle("/v1/campaigns/{name}/descriptor", admin(s.setDescriptor)).Methods(http.MethodPut)
	r.Handle("/v1/campaigns/{name}/descriptor", admin(s.deleteDescriptor)).Methods(http.MethodDelete)
	r.Handle("/v1/campaigns/{name}/stakers", admin(s.purgeStakers)).Methods(http.MethodDelete)
	r.Handle("/v1/campaigns/{name}/rewards", admin(s.purgeRewards)).Methods(http.MethodDelete)
	r.Handle("/v1/rewards/{id}", admin(s.deleteReward)).Methods(http.MethodDelete)

	r.HandleFunc("/v1/stakers/{participant}", s.getStaker).Methods(http.MethodGet)
	r.HandleFunc("/v1/stakers/{participant}/claim", s.claim).Methods(http.MethodPost)
	r.HandleFunc("/v1/stakers/{participant}/retire", s.retire).Methods(http.MethodPost)

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.HandleFunc("/health/db", s.healthDB).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return handlers.RecoveryHandler()(handlers.CompressHandler(logRequests(r)))
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("X-Admin-Token")
		if s.adminToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) != 1 {
			writeFault(w, fault.New(fault.Unauthorized, "admin authorization required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("request handled",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration", time.Since(start)))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", slog.String("error", err.Error()))
	}
}

type errorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func writeFault(w http.ResponseWriter, err error) {
	kind := fault.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case fault.AlreadyExists, fault.AlreadyParticipated, fault.CapacityExceeded:
		status = http.StatusConflict
	case fault.NotFound:
		status = http.StatusNotFound
	case fault.InvalidConfig, fault.IdentityMismatch:
		status = http.StatusBadRequest
	case fault.Unauthorized:
		status = http.StatusForbidden
	case fault.WindowViolation:
		status = http.StatusUnprocessableEntity
	case fault.Unsupported:
		status = http.StatusNotImplemented
	}
	if status == http.StatusInternalServerError {
		slog.Error("internal error", slog.String("error", err.Error()))
		writeJSON(w, status, errorResponse{Kind: string(fault.Internal), Message: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Kind: string(kind), Message: err.Error()})
}
