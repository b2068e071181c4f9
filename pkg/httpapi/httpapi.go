// Package httpapi provides the JSON API of the simulator.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mpapenbr/race-strategy-sim/log"
	"github.com/mpapenbr/race-strategy-sim/pkg/catalog"
	"github.com/mpapenbr/race-strategy-sim/pkg/model"
	"github.com/mpapenbr/race-strategy-sim/pkg/repository/api"
	"github.com/mpapenbr/race-strategy-sim/pkg/scenario"
	"github.com/mpapenbr/race-strategy-sim/pkg/service/simulation"
	"github.com/mpapenbr/race-strategy-sim/pkg/session"
	"github.com/mpapenbr/race-strategy-sim/pkg/sim/racestints"
	"github.com/mpapenbr/race-strategy-sim/pkg/utils/broadcast"
	"github.com/mpapenbr/race-strategy-sim/pkg/validate"
)

const maxBodySize = 1 << 20

type (
	Option  func(*Handler)
	Handler struct {
		svc     *simulation.Service
		session *session.Session
		stream  broadcast.Server[*model.RaceOutcome]
		mux     *http.ServeMux
		l       *log.Logger
	}

	Catalog struct {
		Tracks     []model.Track             `json:"tracks"`
		Weather    []model.Weather           `json:"weather"`
		Strategies map[string]model.Strategy `json:"strategies"`
		Engines    []model.Engine            `json:"engines"`
		Tyres      []model.TyreCompound      `json:"tyres"`
		AeroKits   []model.AeroKit           `json:"aeroKits"`
		DefaultCar model.Car                 `json:"defaultCar"`
	}
	Stats struct {
		Session   uuid.UUID               `json:"session"`
		StartedAt time.Time               `json:"startedAt"`
		Usage     map[session.Counter]int `json:"usage"`
	}
	errorBody struct {
		Error      string   `json:"error"`
		Messages   []string `json:"messages,omitempty"`
		ValidRange string   `json:"validRange,omitempty"`
	}
)

func WithSession(sess *session.Session) Option {
	return func(h *Handler) {
		h.session = sess
	}
}

// WithStream enables /v1/results/stream.
func WithStream(stream broadcast.Server[*model.RaceOutcome]) Option {
	return func(h *Handler) {
		h.stream = stream
	}
}

func WithLogger(l *log.Logger) Option {
	return func(h *Handler) {
		h.l = l
	}
}

func New(svc *simulation.Service, opts ...Option) *Handler {
	h := &Handler{
		svc: svc,
		mux: http.NewServeMux(),
		l:   log.Default().Named("httpapi"),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.mux.HandleFunc("POST /v1/simulate", h.simulate)
	h.mux.HandleFunc("POST /v1/lap", h.lap)
	h.mux.HandleFunc("GET /v1/catalog", h.catalog)
	h.mux.HandleFunc("GET /v1/results", h.results)
	h.mux.HandleFunc("GET /v1/summary", h.summary)
	h.mux.HandleFunc("GET /v1/stats", h.stats)
	if h.stream != nil {
		h.mux.HandleFunc("GET /v1/results/stream", h.streamResults)
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// readScenario accepts a yaml or json scenario. A missing version means the
// oldest supported one.
func readScenario(r *http.Request) (*scenario.Resolved, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return nil, err
	}
	// json documents are valid yaml
	doc, err := scenario.ParseDefaultVersion(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return doc.Resolve()
}

func (h *Handler) simulate(w http.ResponseWriter, r *http.Request) {
	resolved, err := readScenario(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	report, err := h.svc.Run(r.Context(), &simulation.Request{
		Car:      resolved.Car,
		Track:    resolved.Track,
		Strategy: resolved.Strategy,
		Weather:  resolved.Weather,
		Laps:     resolved.Laps,
		Seed:     resolved.Seed,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

func (h *Handler) lap(w http.ResponseWriter, r *http.Request) {
	resolved, err := readScenario(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	preview, err := h.svc.Lap(&resolved.Car, &resolved.Track, &resolved.Weather)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, preview)
}

func (h *Handler) catalog(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, &Catalog{
		Tracks:     catalog.Tracks(),
		Weather:    catalog.WeatherConditions(),
		Strategies: catalog.Strategies(),
		Engines:    catalog.Engines(),
		Tyres:      catalog.Tyres(),
		AeroKits:   catalog.AeroKits(),
		DefaultCar: catalog.DefaultCar(),
	})
}

func parseFilter(r *http.Request) (api.ResultFilter, error) {
	q := r.URL.Query()
	ret := api.ResultFilter{Track: q.Get("track"), Car: q.Get("car"), Limit: 20}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return ret, fmt.Errorf("%w: limit %q", errBadRequest, v)
		}
		ret.Limit = limit
	}
	return ret, nil
}

func (h *Handler) results(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	outcomes, err := h.svc.Results(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, outcomes)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	filter.Limit = 0
	summary, err := h.svc.Summary(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) stats(w http.ResponseWriter, _ *http.Request) {
	if h.session == nil {
		h.writeJSON(w, http.StatusOK, &Stats{Usage: map[session.Counter]int{}})
		return
	}
	h.writeJSON(w, http.StatusOK, &Stats{
		Session:   h.session.ID(),
		StartedAt: h.session.StartedAt(),
		Usage:     h.session.Usage(),
	})
}

// streamResults sends each new outcome as server-sent event.
func (h *Handler) streamResults(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	ch := h.stream.Subscribe()
	defer h.stream.CancelSubscription(ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	h.l.Debug("stream client connected", log.String("remote", r.RemoteAddr))
	for {
		select {
		case <-r.Context().Done():
			return
		case outcome, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(outcome)
			if err != nil {
				h.l.Warn("could not encode outcome", log.ErrorField(err))
				continue
			}
			fmt.Fprintf(w, "event: result\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

var errBadRequest = errors.New("bad request")

func statusOf(err error) int {
	var valErr *validate.Error
	var schedErr *racestints.InvalidScheduleError
	switch {
	case errors.As(err, &valErr), errors.As(err, &schedErr),
		errors.Is(err, scenario.ErrUnknown), errors.Is(err, scenario.ErrVersion),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, simulation.ErrNoStorage):
		return http.StatusNotImplemented
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	body := &errorBody{Error: err.Error()}
	var valErr *validate.Error
	if errors.As(err, &valErr) {
		body.Messages = valErr.Messages
		body.ValidRange = valErr.ValidRange
	}
	if status == http.StatusInternalServerError {
		h.l.Error("request failed", log.ErrorField(err))
	} else {
		h.l.Debug("request rejected", log.ErrorField(err), log.Int("status", status))
	}
	h.writeJSON(w, status, body)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.l.Warn("could not write response", log.ErrorField(err))
	}
}
