package testutil

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"qatrack/internal/config"
)

// LocalSettings returns the shipped defaults with the database password
// filled in, as Load would produce with QATRACK_DB_PASSWORD=postgres.
func LocalSettings(t *testing.T) *config.Settings {
	t.Helper()

	s := config.Defaults()
	db := s.Databases[config.DefaultAlias]
	db.Password = "postgres"
	s.Databases[config.DefaultAlias] = db

	if err := s.Validate(); err != nil {
		t.Fatalf("Local settings are invalid: %v", err)
	}
	return s
}

// SQLiteSettings returns settings whose default database is a SQLite file
// in a temporary directory removed at the end of the test.
func SQLiteSettings(t *testing.T) *config.Settings {
	t.Helper()

	s := config.Defaults()
	s.Databases[config.DefaultAlias] = config.Database{
		Engine: config.EngineSQLite3,
		Name:   filepath.Join(t.TempDir(), "qatrack.sqlite3"),
	}
	return s
}

// Logger returns a logger that discards output.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
