package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// DefaultAlias is the database alias every deployment must define.
const DefaultAlias = "default"

const redactedPassword = "********"

// Settings holds the deployment-local settings of a QATrack+ instance.
// A Settings value is built once at startup and treated as read-only;
// callers that need to change it work on a Clone.
type Settings struct {
	Debug        bool                `yaml:"debug" json:"debug"`
	Databases    map[string]Database `yaml:"databases" json:"databases"`
	AllowedHosts []string            `yaml:"allowed_hosts" json:"allowed_hosts"`
	TimeZone     string              `yaml:"time_zone" json:"time_zone"`
}

// Database describes a single database connection
type Database struct {
	Engine   Engine `yaml:"engine" json:"engine"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Password string `yaml:"password" json:"password"`
	Host     string `yaml:"host" json:"host"`
	Port     Port   `yaml:"port" json:"port"`
	// ConnMaxAge is the connection lifetime in seconds. 0 closes connections
	// after use, -1 keeps them open indefinitely.
	ConnMaxAge int               `yaml:"conn_max_age,omitempty" json:"conn_max_age,omitempty"`
	Options    map[string]string `yaml:"options,omitempty" json:"options,omitempty"`
}

// Defaults returns the settings shipped with the deployment. The database
// password is intentionally empty; Load fills it from a secret source.
func Defaults() *Settings {
	return &Settings{
		Debug: false,
		Databases: map[string]Database{
			DefaultAlias: {
				Engine: EnginePostgreSQLPsycopg2,
				Name:   "postgres",
				User:   "postgres",
				Host:   "qatrack-postgres",
				Port:   5432,
			},
		},
		AllowedHosts: []string{"192.168.1.13", "127.0.0.1"},
		TimeZone:     "UTC",
	}
}

// Parse decodes settings from their YAML representation. Unknown keys are
// rejected so that typos do not silently fall back to defaults.
func Parse(data []byte) (*Settings, error) {
	var s Settings
	if err := decodeInto(&s, data); err != nil {
		return nil, err
	}
	return &s, nil
}

// Marshal encodes the settings to YAML. Parse(Marshal(s)) yields a value
// equal to s.
func (s *Settings) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encoding settings: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding settings: %w", err)
	}
	return buf.Bytes(), nil
}

// Clone returns a deep copy of the settings.
func (s *Settings) Clone() *Settings {
	c := &Settings{
		Debug:        s.Debug,
		AllowedHosts: slices.Clone(s.AllowedHosts),
		TimeZone:     s.TimeZone,
	}
	if s.Databases != nil {
		c.Databases = make(map[string]Database, len(s.Databases))
		for alias, db := range s.Databases {
			db.Options = maps.Clone(db.Options)
			c.Databases[alias] = db
		}
	}
	return c
}

// Redacted returns a copy safe for display, with passwords masked.
func (s *Settings) Redacted() *Settings {
	c := s.Clone()
	for alias, db := range c.Databases {
		if db.Password != "" {
			db.Password = redactedPassword
			c.Databases[alias] = db
		}
	}
	return c
}

// DefaultDatabase returns the connection registered under DefaultAlias.
func (s *Settings) DefaultDatabase() Database {
	db := s.Databases[DefaultAlias]
	db.Options = maps.Clone(db.Options)
	return db
}

// Location resolves TimeZone to a *time.Location.
func (s *Settings) Location() (*time.Location, error) {
	if s.TimeZone == "" {
		return nil, errors.New("time zone is empty")
	}
	if s.TimeZone == "Local" {
		return nil, errors.New(`time zone "Local" depends on the host; use an IANA name`)
	}
	loc, err := time.LoadLocation(s.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("loading time zone %q: %w", s.TimeZone, err)
	}
	return loc, nil
}

// Aliases returns the database aliases in sorted order.
func (s *Settings) Aliases() []string {
	return slices.Sorted(maps.Keys(s.Databases))
}

func decodeInto(s *Settings, data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("parsing settings: empty document")
		}
		return fmt.Errorf("parsing settings: %w", err)
	}
	if len(s.AllowedHosts) == 0 {
		s.AllowedHosts = nil
	}
	if len(s.Databases) == 0 {
		s.Databases = nil
	}
	return nil
}
