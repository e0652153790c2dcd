package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"qatrack/internal/config"
)

var settingsInfo = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "qatrack_settings_info",
		Help: "Loaded settings, exposed as labels on a constant 1",
	},
	[]string{"debug", "engine", "time_zone", "allowed_hosts"},
)

// RecordSettings publishes the loaded settings as an info metric. Only
// non-secret fields are used as labels.
func RecordSettings(s *config.Settings) {
	settingsInfo.Reset()
	settingsInfo.WithLabelValues(
		strconv.FormatBool(s.Debug),
		s.DefaultDatabase().Engine.Vendor(),
		s.TimeZone,
		strconv.Itoa(len(s.AllowedHosts)),
	).Set(1)
}
