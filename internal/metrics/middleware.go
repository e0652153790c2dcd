package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// unmatchedRoute labels requests that matched no chi route.
const unmatchedRoute = "unmatched"

// HTTPMetrics instruments the settings inspection API.
type HTTPMetrics struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	responseBytes *prometheus.CounterVec
	inFlight      prometheus.Gauge
}

// NewHTTPMetrics registers the inspection API collectors with reg.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	factory := promauto.With(reg)
	labels := []string{"method", "route", "code"}

	return &HTTPMetrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qatrack",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Requests served by the settings inspection API.",
		}, labels),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "qatrack",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Time spent serving settings inspection requests.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 7),
		}, labels),
		responseBytes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qatrack",
			Subsystem: "api",
			Name:      "response_bytes_total",
			Help:      "Bytes written by the settings inspection API.",
		}, []string{"route"}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "qatrack",
			Subsystem: "api",
			Name:      "requests_in_flight",
			Help:      "Settings inspection requests currently being served.",
		}),
	}
}

// Handler wraps next. The route label is read after next runs, since chi
// fills in the pattern while routing.
func (m *HTTPMetrics) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := routeLabel(r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		code := strconv.Itoa(status)
		m.requests.WithLabelValues(r.Method, route, code).Inc()
		m.duration.WithLabelValues(r.Method, route, code).Observe(time.Since(start).Seconds())
		m.responseBytes.WithLabelValues(route).Add(float64(ww.BytesWritten()))
	})
}

func routeLabel(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}
	if p := rctx.RoutePattern(); p != "" {
		return p
	}
	return unmatchedRoute
}

var defaultHTTP = NewHTTPMetrics(prometheus.DefaultRegisterer)

// Middleware instruments next with collectors on the default registry.
func Middleware(next http.Handler) http.Handler {
	return defaultHTTP.Handler(next)
}
