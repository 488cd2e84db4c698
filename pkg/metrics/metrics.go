package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the service metrics. All recording methods are safe on a
// nil *Collector so components can run without metrics in tests.
type Collector struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	SearchesTotal         *prometheus.CounterVec
	SearchDuration        *prometheus.HistogramVec
	BranchesSkippedTotal  *prometheus.CounterVec
	ConflictFailuresTotal prometheus.Counter
	ScheduleParseFailures prometheus.Counter
	ClassificationsTotal  *prometheus.CounterVec
	StatusUpdatesTotal    *prometheus.CounterVec
}

func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route, and status code.",
		}, []string{"method", "route", "status"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "route"}),

		SearchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Branch searches by kind and outcome.",
		}, []string{"kind", "outcome"}),

		SearchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Branch search latency distribution.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}, []string{"kind"}),

		BranchesSkippedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "branches_skipped_total",
			Help:      "Branches left out of a search by reason.",
		}, []string{"reason"}),

		ConflictFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "conflict_check_failures_total",
			Help:      "Appointment conflict checks that failed and were treated per policy.",
		}),

		ScheduleParseFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "schedule_parse_failures_total",
			Help:      "Doctor schedules that could not be parsed.",
		}),

		ClassificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "classifications_total",
			Help:      "Doctor classifications by color.",
		}, []string{"classification"}),

		StatusUpdatesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "doctor",
			Name:      "status_updates_total",
			Help:      "Live doctor status updates by new status.",
		}, []string{"status"}),
	}
}

// Handler exposes the collector's registry
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Registry returns the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) ObserveSearch(kind, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.SearchesTotal.WithLabelValues(kind, outcome).Inc()
	c.SearchDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

func (c *Collector) BranchSkipped(reason string) {
	if c == nil {
		return
	}
	c.BranchesSkippedTotal.WithLabelValues(reason).Inc()
}

func (c *Collector) ConflictCheckFailed() {
	if c == nil {
		return
	}
	c.ConflictFailuresTotal.Inc()
}

func (c *Collector) ScheduleParseFailed() {
	if c == nil {
		return
	}
	c.ScheduleParseFailures.Inc()
}

func (c *Collector) Classified(classification string) {
	if c == nil {
		return
	}
	c.ClassificationsTotal.WithLabelValues(classification).Inc()
}

func (c *Collector) StatusUpdated(status string) {
	if c == nil {
		return
	}
	c.StatusUpdatesTotal.WithLabelValues(status).Inc()
}

// Middleware records request count and latency per matched mux route
func (c *Collector) Middleware(next http.Handler) http.Handler {
	if c == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		c.RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		c.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
