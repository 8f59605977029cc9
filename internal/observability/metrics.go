package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/seawaysim/traffic-generator/model"
)

// GeneratorCollector bundles Prometheus metrics for the traffic generator and
// provides helpers to wire them into HTTP handlers. It also satisfies the
// core.GenerationMetrics interface so the encounter search can report
// outcomes directly.
type GeneratorCollector struct {
	gatherer prometheus.Gatherer

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec

	EncountersGenerated *prometheus.CounterVec
	EncounterAttempts   *prometheus.HistogramVec
	SituationsGenerated prometheus.Counter
}

// NewGeneratorCollector registers generator Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry when nil.
func NewGeneratorCollector(reg prometheus.Registerer) (*GeneratorCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trafficgen_http_requests_total",
		Help: "Total number of handled HTTP requests, labeled by path, method, and status code.",
	}, []string{"path", "method", "code"})
	requests, err := registerCounterVec(reg, requests, "trafficgen_http_requests_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trafficgen_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"path", "method"})
	durations, err = registerHistogramVec(reg, durations, "trafficgen_http_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	encounters := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trafficgen_encounters_generated_total",
		Help: "Encounter searches run, labeled by desired encounter type and whether a placement was found.",
	}, []string{"type", "found"})
	encounters, err = registerCounterVec(reg, encounters, "trafficgen_encounters_generated_total")
	if err != nil {
		return nil, err
	}

	attempts := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trafficgen_encounter_attempts",
		Help:    "Solver attempts consumed per encounter search (bounded at 25).",
		Buckets: []float64{1, 2, 3, 5, 10, 15, 20, 25},
	}, []string{"type"})
	attempts, err = registerHistogramVec(reg, attempts, "trafficgen_encounter_attempts")
	if err != nil {
		return nil, err
	}

	situations, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trafficgen_situations_generated_total",
		Help: "Traffic situations assembled.",
	}), "trafficgen_situations_generated_total")
	if err != nil {
		return nil, err
	}

	return &GeneratorCollector{
		gatherer:            gatherer,
		HTTPRequests:        requests,
		HTTPDurations:       durations,
		EncountersGenerated: encounters,
		EncounterAttempts:   attempts,
		SituationsGenerated: situations,
	}, nil
}

// EncounterGenerated records the outcome of one encounter search. It
// implements core.GenerationMetrics.
func (c *GeneratorCollector) EncounterGenerated(encounterType model.EncounterType, found bool, attempts int) {
	if c == nil {
		return
	}
	if c.EncountersGenerated != nil {
		c.EncountersGenerated.WithLabelValues(string(encounterType), strconv.FormatBool(found)).Inc()
	}
	if c.EncounterAttempts != nil {
		c.EncounterAttempts.WithLabelValues(string(encounterType)).Observe(float64(attempts))
	}
}

// SituationGenerated bumps the situation counter.
func (c *GeneratorCollector) SituationGenerated() {
	if c == nil || c.SituationsGenerated == nil {
		return
	}
	c.SituationsGenerated.Inc()
}

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and durations for HTTP handlers.
func (c *GeneratorCollector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, req)

		if c == nil {
			return
		}
		if c.HTTPRequests != nil {
			c.HTTPRequests.WithLabelValues(req.URL.Path, req.Method, strconv.Itoa(rec.status)).Inc()
		}
		if c.HTTPDurations != nil {
			c.HTTPDurations.WithLabelValues(req.URL.Path, req.Method).Observe(time.Since(start).Seconds())
		}
	})
}

// Handler exposes a ready-to-use /metrics handler.
func (c *GeneratorCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}
