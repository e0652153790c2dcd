package security

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var disallowedHosts = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "qatrack_disallowed_host_requests_total",
		Help: "Total number of requests rejected because of their Host header",
	},
)

// AllowedHosts rejects requests whose Host header is not accepted by v.
func AllowedHosts(v *HostValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !v.Allowed(r.Host) {
				disallowedHosts.Inc()
				logger.Warn("rejected request with disallowed host",
					"host", r.Host,
					"remote_addr", r.RemoteAddr,
					"path", r.URL.Path,
				)
				http.Error(w, "Bad Request", http.StatusBadRequest)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
