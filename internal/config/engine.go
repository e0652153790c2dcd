package config

import (
	"fmt"
	"strings"
)

const enginePrefix = "django.db.backends."

// Engine identifies a database backend by its Django engine path.
type Engine string

const (
	EnginePostgreSQL         Engine = enginePrefix + "postgresql"
	EnginePostgreSQLPsycopg2 Engine = enginePrefix + "postgresql_psycopg2"
	EngineMySQL              Engine = enginePrefix + "mysql"
	EngineSQLite3            Engine = enginePrefix + "sqlite3"
)

var knownEngines = []Engine{
	EnginePostgreSQL,
	EnginePostgreSQLPsycopg2,
	EngineMySQL,
	EngineSQLite3,
}

// ParseEngine accepts either a full engine path or its short backend name
// ("postgresql", "mysql", ...).
func ParseEngine(s string) (Engine, error) {
	s = strings.TrimSpace(s)
	e := Engine(s)
	if !strings.Contains(s, ".") {
		e = Engine(enginePrefix + s)
	}
	if !e.Known() {
		return "", fmt.Errorf("unknown database engine %q", s)
	}
	return e, nil
}

// Known reports whether e is a supported engine.
func (e Engine) Known() bool {
	for _, k := range knownEngines {
		if e == k {
			return true
		}
	}
	return false
}

// Vendor returns the backend family: postgresql, mysql or sqlite.
func (e Engine) Vendor() string {
	switch e {
	case EnginePostgreSQL, EnginePostgreSQLPsycopg2:
		return "postgresql"
	case EngineMySQL:
		return "mysql"
	case EngineSQLite3:
		return "sqlite"
	default:
		return ""
	}
}

// FileBased reports whether the engine stores data in a local file and
// therefore needs no network credentials.
func (e Engine) FileBased() bool {
	return e == EngineSQLite3
}

func (e Engine) String() string {
	return string(e)
}
