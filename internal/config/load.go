package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"

	"qatrack/internal/secret"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "QATRACK_"

// LoadOptions controls where Load reads settings from.
type LoadOptions struct {
	// Path is an optional YAML file. Top-level keys present in the file
	// replace the defaults.
	Path string
	// EnvFiles are .env files read before environment overrides. Missing
	// files are ignored.
	EnvFiles []string
	// Environment replaces the process environment when non-nil.
	Environment map[string]string
	// Secrets resolves database passwords. When nil, passwords are read from
	// QATRACK_DB_PASSWORD or the file named by QATRACK_DB_PASSWORD_FILE.
	Secrets secret.Resolver
}

// envOverrides lists the settings that can be overridden from the
// environment. Database overrides apply to the default alias.
type envOverrides struct {
	Debug        string   `env:"DEBUG"`
	AllowedHosts []string `env:"ALLOWED_HOSTS" envSeparator:","`
	TimeZone     string   `env:"TIME_ZONE"`
	DB           struct {
		Engine     string `env:"ENGINE"`
		Name       string `env:"NAME"`
		User       string `env:"USER"`
		Host       string `env:"HOST"`
		Port       string `env:"PORT"`
		ConnMaxAge string `env:"CONN_MAX_AGE"`
	} `envPrefix:"DB_"`
}

// Load builds settings from defaults, an optional YAML file, .env files,
// environment overrides and secret sources, then validates the result.
// Every call returns a newly allocated value.
func Load(ctx context.Context, opts LoadOptions) (*Settings, error) {
	dotenv, err := secret.ReadDotEnv(opts.EnvFiles...)
	if err != nil {
		return nil, fmt.Errorf("loading env files: %w", err)
	}
	environ := secret.Environ(opts.Environment, dotenv)

	s := Defaults()
	if opts.Path != "" {
		data, err := os.ReadFile(opts.Path)
		if err != nil {
			return nil, fmt.Errorf("reading settings file: %w", err)
		}
		if err := s.merge(data); err != nil {
			return nil, err
		}
	}

	if err := s.applyEnv(environ); err != nil {
		return nil, err
	}

	resolver := opts.Secrets
	if resolver == nil {
		resolver = secret.Chain{
			secret.NewEnv(EnvPrefix, environ),
			secret.NewFile(EnvPrefix, environ),
		}
	}
	if err := s.resolveSecrets(ctx, resolver); err != nil {
		return nil, err
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// PasswordKey returns the secret key holding the password for alias.
func PasswordKey(alias string) string {
	if alias == DefaultAlias {
		return "DB_PASSWORD"
	}
	return "DB_" + strings.ToUpper(strings.ReplaceAll(alias, "-", "_")) + "_PASSWORD"
}

// merge decodes a settings file over s. A databases section replaces the
// default databases as a whole.
func (s *Settings) merge(data []byte) error {
	defaults := s.Databases
	s.Databases = nil
	if err := decodeInto(s, data); err != nil {
		return err
	}
	if s.Databases == nil {
		s.Databases = defaults
	}
	return nil
}

func (s *Settings) applyEnv(environ map[string]string) error {
	var o envOverrides
	if err := env.ParseWithOptions(&o, env.Options{
		Prefix:      EnvPrefix,
		Environment: environ,
	}); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}

	if o.Debug != "" {
		debug, err := strconv.ParseBool(strings.TrimSpace(o.Debug))
		if err != nil {
			return fmt.Errorf("invalid %sDEBUG %q: %w", EnvPrefix, o.Debug, err)
		}
		s.Debug = debug
	}
	if hosts := trimAll(o.AllowedHosts); len(hosts) > 0 {
		s.AllowedHosts = hosts
	}
	if o.TimeZone != "" {
		s.TimeZone = strings.TrimSpace(o.TimeZone)
	}

	if s.Databases == nil {
		s.Databases = make(map[string]Database)
	}
	db, changed := s.Databases[DefaultAlias], false
	if o.DB.Engine != "" {
		engine, err := ParseEngine(o.DB.Engine)
		if err != nil {
			return fmt.Errorf("invalid %sDB_ENGINE: %w", EnvPrefix, err)
		}
		db.Engine = engine
		changed = true
	}
	if o.DB.Name != "" {
		db.Name = o.DB.Name
		changed = true
	}
	if o.DB.User != "" {
		db.User = o.DB.User
		changed = true
	}
	if o.DB.Host != "" {
		db.Host = o.DB.Host
		changed = true
	}
	if o.DB.Port != "" {
		port, err := ParsePort(o.DB.Port)
		if err != nil {
			return fmt.Errorf("invalid %sDB_PORT: %w", EnvPrefix, err)
		}
		db.Port = port
		changed = true
	}
	if o.DB.ConnMaxAge != "" {
		age, err := strconv.Atoi(strings.TrimSpace(o.DB.ConnMaxAge))
		if err != nil {
			return fmt.Errorf("invalid %sDB_CONN_MAX_AGE %q: %w", EnvPrefix, o.DB.ConnMaxAge, err)
		}
		db.ConnMaxAge = age
		changed = true
	}
	if changed {
		s.Databases[DefaultAlias] = db
	}
	return nil
}

func (s *Settings) resolveSecrets(ctx context.Context, r secret.Resolver) error {
	for alias, db := range s.Databases {
		password, err := r.Resolve(ctx, PasswordKey(alias))
		if errors.Is(err, secret.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("resolving password for database %q: %w", alias, err)
		}
		db.Password = password
		s.Databases[alias] = db
	}
	return nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
