package metricsx

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shopfront"

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_in_flight_requests",
		Help:      "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latencies in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	authEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "events_total",
		Help:      "Auth flow outcomes by event (signup, login, refresh, ...) and outcome.",
	}, []string{"event", "outcome"})

	otpMailFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_mail_failures_total",
		Help:      "One-time code emails that could not be handed to the mail transport.",
	})

	registerOnce sync.Once
)

// Register adds the collectors to the default registry. Safe to call more
// than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpInFlight, httpRequestsTotal, httpRequestDuration, authEvents, otpMailFailures)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// AuthEvent counts one auth flow outcome, e.g. AuthEvent("login", "forbidden").
func AuthEvent(event, outcome string) {
	authEvents.WithLabelValues(event, outcome).Inc()
}

// OTPMailFailed counts a one-time code that never reached the mail server.
func OTPMailFailed() {
	otpMailFailures.Inc()
}

// Instrument records in-flight, count and latency per request. Paths are
// collapsed to the known prefixes so scanners cannot blow up label
// cardinality.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		path := pathLabel(r.URL.Path)
		if sw.code == http.StatusNotFound {
			path = "other"
		}
		labels := []string{r.Method, path, strconv.Itoa(sw.code)}
		httpRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(labels...).Inc()
	})
}

func pathLabel(p string) string {
	switch {
	case strings.HasPrefix(p, "/api/auth/"):
		return p
	case p == "/livez", p == "/readyz", p == "/metrics":
		return p
	case strings.HasPrefix(p, "/swagger/"):
		return "/swagger/"
	default:
		return "other"
	}
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
