package config

import (
	"errors"
	"fmt"

	"qatrack/internal/security"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid settings")

// FieldError describes a single invalid setting.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *FieldError) Unwrap() error {
	return ErrInvalid
}

// Validate checks every field and reports all violations at once.
func (s *Settings) Validate() error {
	var errs []error
	fail := func(field, format string, args ...any) {
		errs = append(errs, &FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if _, ok := s.Databases[DefaultAlias]; !ok {
		fail("databases", "a %q database is required", DefaultAlias)
	}
	for _, alias := range s.Aliases() {
		validateDatabase(alias, s.Databases[alias], fail)
	}

	for i, host := range s.AllowedHosts {
		if err := security.ValidatePattern(host); err != nil {
			fail(fmt.Sprintf("allowed_hosts[%d]", i), "%v", err)
		}
	}

	if _, err := s.Location(); err != nil {
		fail("time_zone", "%v", err)
	}

	return errors.Join(errs...)
}

// ValidateProduction applies Validate plus the checks a public deployment
// must pass: debug disabled and no wildcard host.
func (s *Settings) ValidateProduction() error {
	var errs []error
	if err := s.Validate(); err != nil {
		errs = append(errs, err)
	}
	if s.Debug {
		errs = append(errs, &FieldError{Field: "debug", Message: "must be false in production"})
	}
	for i, host := range s.AllowedHosts {
		if host == "*" {
			errs = append(errs, &FieldError{
				Field:   fmt.Sprintf("allowed_hosts[%d]", i),
				Message: "wildcard host is not allowed in production",
			})
		}
	}
	return errors.Join(errs...)
}

func validateDatabase(alias string, db Database, fail func(field, format string, args ...any)) {
	field := func(name string) string {
		return "databases." + alias + "." + name
	}

	if !db.Engine.Known() {
		fail(field("engine"), "unknown engine %q", db.Engine)
	}
	if db.Name == "" {
		fail(field("name"), "must not be empty")
	}
	if db.ConnMaxAge < -1 {
		fail(field("conn_max_age"), "must be -1 (unlimited) or a number of seconds")
	}
	if db.Engine.FileBased() {
		return
	}

	if db.User == "" {
		fail(field("user"), "must not be empty")
	}
	if db.Password == "" {
		fail(field("password"), "must not be empty; set %s%s or %s%s_FILE",
			EnvPrefix, PasswordKey(alias), EnvPrefix, PasswordKey(alias))
	}
	if db.Host == "" {
		fail(field("host"), "must not be empty")
	} else if !security.ValidHost(db.Host) {
		fail(field("host"), "%q is not a valid hostname or address", db.Host)
	}
	if !db.Port.Valid() {
		fail(field("port"), "must be between 1 and 65535")
	}
}
