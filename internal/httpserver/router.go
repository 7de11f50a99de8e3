package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"infusionconsole/internal/console"
)

func NewRouter(
	logger *slog.Logger,
	con *console.Console,
	forms console.Forms,
	limiter *rate.Limiter,
) http.Handler {
	r := mux.NewRouter()

	// Liveness of the console itself, not of the platform API.
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	h := &consoleHandlers{console: con, forms: forms}
	api := r.PathPrefix("/console").Subrouter()

	// State and navigation
	api.HandleFunc("/state", wrap(logger, h.state)).Methods(http.MethodGet)
	api.HandleFunc("/state", wrap(logger, h.updateState)).Methods(http.MethodPut)
	api.HandleFunc("/tabs", wrap(logger, h.tabs)).Methods(http.MethodGet)
	api.HandleFunc("/forms", wrap(logger, h.defaultForms)).Methods(http.MethodGet)

	// System
	api.HandleFunc("/token", wrap(logger, h.generateToken)).Methods(http.MethodPost)
	api.HandleFunc("/token", wrap(logger, h.inspectToken)).Methods(http.MethodGet)
	api.HandleFunc("/health", wrap(logger, h.checkHealth)).Methods(http.MethodPost)

	// Platform resources
	api.HandleFunc("/patients", wrap(logger, h.createPatient)).Methods(http.MethodPost)
	api.HandleFunc("/patients/{id}", wrap(logger, h.getPatient)).Methods(http.MethodGet)
	api.HandleFunc("/devices/configurations", wrap(logger, h.createDeviceConfiguration)).Methods(http.MethodPost)
	api.HandleFunc("/devices/configurations/{id}", wrap(logger, h.getDeviceConfiguration)).Methods(http.MethodGet)
	api.HandleFunc("/sessions", wrap(logger, h.startSession)).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/close", wrap(logger, h.closeSession)).Methods(http.MethodPost)
	api.HandleFunc("/drugs", wrap(logger, h.createDrugEntry)).Methods(http.MethodPost)
	api.HandleFunc("/drugs/{id}", wrap(logger, h.fetchDrugEntry)).Methods(http.MethodGet)
	api.HandleFunc("/models", wrap(logger, h.registerModel)).Methods(http.MethodPost)
	api.HandleFunc("/models/{id}", wrap(logger, h.getModel)).Methods(http.MethodGet)
	api.HandleFunc("/audit/events", wrap(logger, h.auditEvents)).Methods(http.MethodGet)

	var handler http.Handler = r
	handler = withRateLimit(limiter)(handler)
	handler = withAccessLog(logger)(handler)
	handler = withRequestID(handler)
	return withCORS(handler)
}
