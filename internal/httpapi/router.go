// Package httpapi serves the HTTP admin surface: Prometheus metrics, a
// liveness probe, manual update and removal triggers, and aggregate history.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/tejusbharadwaj/narodmon-avg/internal/aggregator"
	server "github.com/tejusbharadwaj/narodmon-avg/internal/grpc"
	middleware "github.com/tejusbharadwaj/narodmon-avg/internal/grpc/middlewares"
	"github.com/tejusbharadwaj/narodmon-avg/internal/models"
)

type handler struct {
	service   server.Service
	history   server.HistoryReader
	validator *server.RequestValidator
	checks    map[string]func() bool
	logger    *logrus.Logger
}

// Option customizes the router.
type Option func(*handler)

// WithCheck reports the named dependency as up or down on /healthz.
func WithCheck(name string, up func() bool) Option {
	return func(h *handler) {
		h.checks[name] = up
	}
}

// NewRouter builds the routes. history may be nil.
func NewRouter(
	svc server.Service,
	history server.HistoryReader,
	gatherer prometheus.Gatherer,
	origins []string,
	logger *logrus.Logger,
	opts ...Option,
) http.Handler {
	h := &handler{
		service:   svc,
		history:   history,
		validator: server.NewRequestValidator(),
		checks:    make(map[string]func() bool),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(h)
	}

	router := mux.NewRouter()
	router.Use(h.requestID)

	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	router.HandleFunc("/healthz", h.health).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/update", h.updateAll).Methods(http.MethodPost)
	api.HandleFunc("/update/{type:[0-9]+}", h.updateSingle).Methods(http.MethodPost)
	api.HandleFunc("/remove", h.removeAll).Methods(http.MethodPost)
	api.HandleFunc("/history/{type:[0-9]+}", h.historyQuery).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})
	return c.Handler(router)
}

func (h *handler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(middleware.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(middleware.RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(middleware.WithRequestID(r.Context(), id)))
	})
}

// health stays 200 while a dependency is down; the process itself is alive
// and the MQTT client reconnects on its own.
func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{"status": "ok"}
	if len(h.checks) > 0 {
		components := make(map[string]string, len(h.checks))
		for name, up := range h.checks {
			if up() {
				components[name] = "up"
				continue
			}
			components[name] = "down"
			body["status"] = "degraded"
		}
		body["components"] = components
	}
	writeJSON(w, http.StatusOK, body)
}

// updateAll accepts an optional ?type= query parameter.
func (h *handler) updateAll(w http.ResponseWriter, r *http.Request) {
	typeID := int64(0)
	if raw := r.URL.Query().Get("type"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.fail(w, r, http.StatusBadRequest, errors.New("invalid type id: "+raw))
			return
		}
		typeID = v
	}
	if err := h.validator.ValidateTypeID(typeID, true); err != nil {
		h.fail(w, r, http.StatusBadRequest, err)
		return
	}

	report, err := h.service.UpdateAll(r.Context(), int(typeID))
	if err != nil {
		h.fail(w, r, statusFor(err), err)
		return
	}
	h.writeReport(w, r, report)
}

func (h *handler) updateSingle(w http.ResponseWriter, r *http.Request) {
	typeID, err := strconv.ParseInt(mux.Vars(r)["type"], 10, 64)
	if err == nil {
		err = h.validator.ValidateTypeID(typeID, false)
	}
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, err)
		return
	}

	report, err := h.service.UpdateSingle(r.Context(), int(typeID))
	if err != nil {
		h.fail(w, r, statusFor(err), err)
		return
	}
	h.writeReport(w, r, report)
}

func (h *handler) removeAll(w http.ResponseWriter, r *http.Request) {
	removed, err := h.service.RemoveAll(r.Context())
	if err != nil {
		h.fail(w, r, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func (h *handler) historyQuery(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.fail(w, r, http.StatusNotImplemented, errors.New("no history backend configured"))
		return
	}

	typeID, err := strconv.ParseInt(mux.Vars(r)["type"], 10, 64)
	if err == nil {
		err = h.validator.ValidateTypeID(typeID, false)
	}
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, err)
		return
	}

	q := r.URL.Query()
	end := time.Now().UTC()
	if raw := q.Get("end"); raw != "" {
		if end, err = cast.ToTimeE(raw); err != nil {
			h.fail(w, r, http.StatusBadRequest, fmt.Errorf("invalid end: %q", raw))
			return
		}
	}
	start := end.Add(-24 * time.Hour)
	if raw := q.Get("start"); raw != "" {
		if start, err = cast.ToTimeE(raw); err != nil {
			h.fail(w, r, http.StatusBadRequest, fmt.Errorf("invalid start: %q", raw))
			return
		}
	}
	window := valueOr(q.Get("window"), "1h")
	aggregation := valueOr(q.Get("aggregation"), "AVG")

	if err := h.validator.Validate(start, end, window, aggregation); err != nil {
		h.fail(w, r, http.StatusBadRequest, err)
		return
	}

	points, err := h.history.Query(r.Context(), int(typeID), start, end, window, aggregation)
	if err != nil {
		h.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	out, err := server.HistoryStruct(points)
	if err != nil {
		h.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	body, err := protojson.Marshal(out)
	if err != nil {
		h.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	writeRaw(w, http.StatusOK, body)
}

func (h *handler) writeReport(w http.ResponseWriter, r *http.Request, report *models.CycleReport) {
	out, err := server.ReportStruct(report)
	if err != nil {
		h.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	body, err := protojson.Marshal(out)
	if err != nil {
		h.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	writeRaw(w, http.StatusOK, body)
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, code int, err error) {
	h.logger.WithFields(logrus.Fields{
		"request_id": middleware.RequestID(r.Context()),
		"path":       r.URL.Path,
		"status":     code,
	}).WithError(err).Warn("HTTP request failed")
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, aggregator.ErrInvalidType):
		return http.StatusBadRequest
	case errors.Is(err, aggregator.ErrMissingAPIKey):
		return http.StatusPreconditionFailed
	case errors.Is(err, aggregator.ErrCoordinates):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeRaw(w, code, body)
}

func writeRaw(w http.ResponseWriter, code int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
