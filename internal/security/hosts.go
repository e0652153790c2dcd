package security

import (
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
)

var (
	hostHeaderRe = regexp.MustCompile(`^([a-z0-9.-]+|\[[a-f0-9]*:[a-f0-9.:]+\])(:[0-9]+)?$`)
	hostnameRe   = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?(\.[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?)*\.?$`)
)

// localDevHosts are allowed when debugging with an empty allow-list.
var localDevHosts = []string{".localhost", "127.0.0.1", "[::1]"}

// SplitHost splits a Host header value into domain and port. The domain is
// lowercased and stripped of a trailing dot. Malformed input yields an
// empty domain.
func SplitHost(host string) (domain, port string) {
	host = strings.ToLower(host)
	if !hostHeaderRe.MatchString(host) {
		return "", ""
	}
	if strings.HasSuffix(host, "]") {
		return host, ""
	}
	domain = host
	if i := strings.LastIndex(host, ":"); i >= 0 {
		domain, port = host[:i], host[i+1:]
	}
	return strings.TrimSuffix(domain, "."), port
}

// ValidatePattern checks a single allowed-host entry. Accepted forms are
// "*", ".example.com" (domain and subdomains), a hostname, an IPv4 literal
// or a bracketed IPv6 literal.
func ValidatePattern(pattern string) error {
	if pattern == "*" {
		return nil
	}
	if pattern == "" {
		return errors.New("empty host")
	}
	p := strings.ToLower(pattern)
	if strings.HasPrefix(p, "[") && strings.HasSuffix(p, "]") {
		if ip := net.ParseIP(p[1 : len(p)-1]); ip == nil || ip.To4() != nil {
			return fmt.Errorf("%q is not a valid IPv6 literal", pattern)
		}
		return nil
	}
	if ip := net.ParseIP(p); ip != nil {
		if ip.To4() == nil {
			return fmt.Errorf("IPv6 literal %q must be enclosed in brackets", pattern)
		}
		return nil
	}
	if !ValidHostname(strings.TrimPrefix(p, ".")) {
		return fmt.Errorf("%q is not a valid hostname", pattern)
	}
	return nil
}

// ValidHostname reports whether name is a syntactically valid DNS name.
func ValidHostname(name string) bool {
	if name == "" || len(name) > 253 {
		return false
	}
	return hostnameRe.MatchString(strings.ToLower(name))
}

// ValidHost reports whether host is a hostname or an IP literal, bracketed
// or not.
func ValidHost(host string) bool {
	h := strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	if net.ParseIP(h) != nil {
		return true
	}
	return ValidHostname(host)
}

// HostValidator matches Host headers against an allow-list.
type HostValidator struct {
	patterns []string
}

// NewHostValidator creates a validator for the given allow-list. When debug
// is set and the list is empty, local development hosts are allowed.
func NewHostValidator(allowed []string, debug bool) *HostValidator {
	if debug && len(allowed) == 0 {
		allowed = localDevHosts
	}
	patterns := make([]string, 0, len(allowed))
	for _, p := range allowed {
		patterns = append(patterns, strings.ToLower(p))
	}
	return &HostValidator{patterns: patterns}
}

// Allowed reports whether the Host header value is accepted.
func (v *HostValidator) Allowed(host string) bool {
	domain, _ := SplitHost(host)
	if domain == "" {
		return false
	}
	for _, p := range v.patterns {
		if matchPattern(p, domain) {
			return true
		}
	}
	return false
}

// Patterns returns a copy of the effective allow-list.
func (v *HostValidator) Patterns() []string {
	return append([]string(nil), v.patterns...)
}

func matchPattern(pattern, domain string) bool {
	if pattern == "*" {
		return true
	}
	if strings.HasPrefix(pattern, ".") {
		return strings.HasSuffix(domain, pattern) || domain == pattern[1:]
	}
	return domain == pattern
}
