// Package api exposes the traffic generator over a small JSON HTTP surface:
// health, version, and a generate endpoint that accepts a situation request
// and returns the generated situations.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/seawaysim/traffic-generator/core"
	"github.com/seawaysim/traffic-generator/internal/config"
	"github.com/seawaysim/traffic-generator/internal/logging"
	"github.com/seawaysim/traffic-generator/internal/observability"
	"github.com/seawaysim/traffic-generator/kb"
	"github.com/seawaysim/traffic-generator/model"
)

// defaultMaxBodyBytes caps request payloads at 1 MiB.
const defaultMaxBodyBytes = 1 << 20

// Server handles the generator's HTTP endpoints.
type Server struct {
	store     *kb.ShipStore
	settings  model.EncounterSettings
	land      core.LandChecker
	log       logging.Logger
	collector *observability.GeneratorCollector
	version   string

	maxBodyBytes int64
	// now supplies the fallback seed for requests that don't pin one.
	now func() time.Time
}

// NewServer builds a Server. collector may be nil to skip metrics; land may be
// nil when the land check is disabled in the settings.
func NewServer(
	store *kb.ShipStore,
	settings model.EncounterSettings,
	land core.LandChecker,
	log logging.Logger,
	collector *observability.GeneratorCollector,
	version string,
) *Server {
	if log == nil {
		log = logging.Noop()
	}
	return &Server{
		store:        store,
		settings:     settings,
		land:         land,
		log:          log,
		collector:    collector,
		version:      version,
		maxBodyBytes: defaultMaxBodyBytes,
		now:          time.Now,
	}
}

// Handler returns the fully wired HTTP handler, including the /metrics
// endpoint when a collector is configured.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/version", s.handleVersion)
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	if s.collector != nil {
		mux.Handle("GET /metrics", s.collector.Handler())
	}

	var handler http.Handler = mux
	if s.collector != nil {
		handler = s.collector.Middleware(handler)
	}
	return s.requestIDMiddleware(handler)
}

// requestIDMiddleware ensures every request carries a request_id, sourcing it
// from the X-Request-Id header when provided, and attaches a request-scoped
// logger to the context.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		if incoming := req.Header.Get("X-Request-Id"); incoming != "" {
			ctx = logging.ContextWithRequestID(ctx, incoming)
		}
		ctx, reqLog := logging.WithRequestLogger(ctx, s.log.With(
			logging.String("path", req.URL.Path),
			logging.String("method", req.Method),
		))
		ctx = logging.ContextWithLogger(ctx, reqLog)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// handleGenerate accepts one situation request (same shape as a situation
// file) and responds with the generated situations. A seed query parameter
// pins the random sequence for reproducible output.
func (s *Server) handleGenerate(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	reqLog := logging.LoggerFromContext(ctx)
	if reqLog == nil {
		reqLog = s.log
	}

	body, err := io.ReadAll(io.LimitReader(req.Body, s.maxBodyBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("read request body: %w", err))
		return
	}
	if int64(len(body)) > s.maxBodyBytes {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Errorf("request body exceeds maximum allowed size (%d bytes)", s.maxBodyBytes))
		return
	}

	request, err := config.ParseSituation(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(request.Encounters) == 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("situation request has no encounters"))
		return
	}

	ownShip := model.Ship{}
	if request.OwnShip != nil {
		ownShip = *request.OwnShip
	} else if stored, ok := s.store.OwnShip(); ok {
		ownShip = stored
	}
	if ownShip.Initial == nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("no own ship in request and none configured"))
		return
	}

	templates := s.store.Templates()
	if len(templates) == 0 {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("no target ship templates configured"))
		return
	}

	seed := s.now().UnixNano()
	if raw := req.URL.Query().Get("seed"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid seed %q", raw))
			return
		}
		seed = parsed
	}

	generator := core.NewTrafficGenerator(s.settings, s.land, reqLog, s.collector, seed)
	situations, err := generator.GenerateSituations(ctx, []model.Situation{request}, ownShip, templates)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if s.collector != nil {
		for range situations {
			s.collector.SituationGenerated()
		}
	}

	data, err := config.MarshalSituations(situations)
	if err != nil {
		reqLog.Error(ctx, "marshal generated situations failed", logging.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, fmt.Errorf("encode response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
