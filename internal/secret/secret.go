// Package secret resolves credentials at startup so they never have to be
// committed alongside the rest of the settings.
package secret

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotFound is returned when a resolver has no value for a key.
var ErrNotFound = errors.New("secret not found")

// Resolver looks up a secret by key.
type Resolver interface {
	Resolve(ctx context.Context, key string) (string, error)
}

// Env resolves secrets from environment variables named Prefix+key.
type Env struct {
	Prefix  string
	environ map[string]string
}

// NewEnv creates an environment resolver. A nil environ reads the process
// environment.
func NewEnv(prefix string, environ map[string]string) *Env {
	return &Env{Prefix: prefix, environ: environ}
}

func (e *Env) Resolve(_ context.Context, key string) (string, error) {
	v, ok := lookup(e.environ, e.Prefix+key)
	if !ok || v == "" {
		return "", ErrNotFound
	}
	return v, nil
}

// File resolves secrets from files whose path is given by the environment
// variable Prefix+key+"_FILE", the convention used by Docker and Kubernetes
// secret mounts.
type File struct {
	Prefix  string
	environ map[string]string
}

// NewFile creates a file resolver. A nil environ reads the process
// environment.
func NewFile(prefix string, environ map[string]string) *File {
	return &File{Prefix: prefix, environ: environ}
}

func (f *File) Resolve(_ context.Context, key string) (string, error) {
	name := f.Prefix + key + "_FILE"
	path, ok := lookup(f.environ, name)
	if !ok || path == "" {
		return "", ErrNotFound
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", name, err)
	}
	v := strings.TrimSuffix(string(data), "\n")
	v = strings.TrimSuffix(v, "\r")
	if v == "" {
		return "", fmt.Errorf("%s points to an empty file", name)
	}
	return v, nil
}

// Chain tries each resolver in order. The first result that is not
// ErrNotFound wins, including errors.
type Chain []Resolver

func (c Chain) Resolve(ctx context.Context, key string) (string, error) {
	for _, r := range c {
		v, err := r.Resolve(ctx, key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return v, err
	}
	return "", ErrNotFound
}

// Static resolves secrets from a fixed map. Useful for tests and for
// secrets already fetched by the caller.
type Static map[string]string

func (s Static) Resolve(_ context.Context, key string) (string, error) {
	v, ok := s[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func lookup(environ map[string]string, key string) (string, bool) {
	if environ == nil {
		return os.LookupEnv(key)
	}
	v, ok := environ[key]
	return v, ok
}
