package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Port is a TCP port number. It decodes from either a YAML integer or a
// string and always encodes as a string. Zero means unset.
type Port uint16

// ParsePort parses a decimal port number. An empty string yields zero.
func ParsePort(s string) (Port, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q: must be a number between 1 and 65535", s)
	}
	return Port(n), nil
}

// Valid reports whether p is within 1-65535.
func (p Port) Valid() bool {
	return p != 0
}

func (p Port) String() string {
	if p == 0 {
		return ""
	}
	return strconv.Itoa(int(p))
}

func (p *Port) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: port must be a scalar", value.Line)
	}
	parsed, err := ParsePort(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*p = parsed
	return nil
}

func (p Port) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

func (p *Port) UnmarshalText(text []byte) error {
	parsed, err := ParsePort(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p Port) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
