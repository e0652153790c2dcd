package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"qatrack/internal/config"
)

// ServerInfo is what Probe learns about a database server.
type ServerInfo struct {
	Vendor   string `json:"vendor"`
	Version  string `json:"version"`
	TimeZone string `json:"time_zone,omitempty"`
	// TimeZoneMismatch is set when the server session time zone differs
	// from the configured one.
	TimeZoneMismatch bool `json:"time_zone_mismatch,omitempty"`
}

var utcNames = map[string]bool{
	"utc":     true,
	"etc/utc": true,
	"gmt":     true,
	"etc/gmt": true,
	"zulu":    true,
	"+00:00":  true,
}

// Probe queries the server version and session time zone.
func Probe(ctx context.Context, db *sql.DB, d Dialect) (ServerInfo, error) {
	info := ServerInfo{Vendor: d.Vendor()}

	err := statementBuilder(d).
		Select(d.ProbeColumns()...).
		RunWith(db).
		QueryRowContext(ctx).
		Scan(&info.Version, &info.TimeZone)
	if err != nil {
		return ServerInfo{}, fmt.Errorf("probing %s server: %w", d.Vendor(), err)
	}
	return info, nil
}

// Check connects to the default database of s, probes it and compares the
// server time zone with the configured one.
func Check(ctx context.Context, s *config.Settings) (ServerInfo, error) {
	db := s.DefaultDatabase()
	d, err := DialectFor(db.Engine)
	if err != nil {
		return ServerInfo{}, err
	}

	conn, err := Open(ctx, db)
	if err != nil {
		return ServerInfo{}, err
	}
	defer conn.Close()

	info, err := Probe(ctx, conn, d)
	if err != nil {
		return ServerInfo{}, err
	}
	if info.TimeZone != "" && !SameTimeZone(info.TimeZone, s.TimeZone) {
		info.TimeZoneMismatch = true
	}
	return info, nil
}

// SameTimeZone compares time zone names case-insensitively, treating the
// common spellings of UTC as equal.
func SameTimeZone(a, b string) bool {
	a, b = strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return true
	}
	return utcNames[a] && utcNames[b]
}
