package database

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"qatrack/internal/config"
)

// Dialect describes vendor specific SQL used when talking to a database
type Dialect interface {
	// Vendor returns the backend family name
	Vendor() string

	// PlaceholderFormat returns the format for SQL placeholders ("?" or "$")
	PlaceholderFormat() string

	// DefaultPort returns the port the server listens on by default, zero
	// for file based databases
	DefaultPort() config.Port

	// ProbeColumns returns expressions selecting the server version and the
	// session time zone, in that order
	ProbeColumns() []string
}

// BaseDialect provides common implementations
type BaseDialect struct{}

// PlaceholderFormat returns "?" as the default placeholder format
func (d *BaseDialect) PlaceholderFormat() string {
	return "?"
}

// DefaultPort returns zero
func (d *BaseDialect) DefaultPort() config.Port {
	return 0
}

// PostgresDialect implements Dialect for PostgreSQL
type PostgresDialect struct {
	BaseDialect
}

func (d *PostgresDialect) Vendor() string {
	return "postgresql"
}

func (d *PostgresDialect) PlaceholderFormat() string {
	return "$"
}

func (d *PostgresDialect) DefaultPort() config.Port {
	return 5432
}

func (d *PostgresDialect) ProbeColumns() []string {
	return []string{"version()", "current_setting('TimeZone')"}
}

// MySQLDialect implements Dialect for MySQL
type MySQLDialect struct {
	BaseDialect
}

func (d *MySQLDialect) Vendor() string {
	return "mysql"
}

func (d *MySQLDialect) DefaultPort() config.Port {
	return 3306
}

func (d *MySQLDialect) ProbeColumns() []string {
	return []string{"VERSION()", "@@session.time_zone"}
}

// SQLiteDialect implements Dialect for SQLite. SQLite has no notion of a
// session time zone, so the probe reports an empty one.
type SQLiteDialect struct {
	BaseDialect
}

func (d *SQLiteDialect) Vendor() string {
	return "sqlite"
}

func (d *SQLiteDialect) ProbeColumns() []string {
	return []string{"sqlite_version()", "''"}
}

// DialectFor returns the dialect matching engine.
func DialectFor(engine config.Engine) (Dialect, error) {
	switch engine.Vendor() {
	case "postgresql":
		return &PostgresDialect{}, nil
	case "mysql":
		return &MySQLDialect{}, nil
	case "sqlite":
		return &SQLiteDialect{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEngine, engine)
	}
}

func statementBuilder(d Dialect) sq.StatementBuilderType {
	if d.PlaceholderFormat() == "$" {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}
