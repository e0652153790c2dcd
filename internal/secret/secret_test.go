package secret_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qatrack/internal/secret"
)

func TestEnv(t *testing.T) {
	ctx := context.Background()
	r := secret.NewEnv("QATRACK_", map[string]string{
		"QATRACK_DB_PASSWORD": "s3cret",
		"QATRACK_EMPTY":       "",
	})

	v, err := r.Resolve(ctx, "DB_PASSWORD")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", v)

	_, err = r.Resolve(ctx, "EMPTY")
	assert.ErrorIs(t, err, secret.ErrNotFound)

	_, err = r.Resolve(ctx, "MISSING")
	assert.ErrorIs(t, err, secret.ErrNotFound)
}

func TestEnv_ProcessEnvironment(t *testing.T) {
	t.Setenv("QATRACK_TEST_SECRET", "from-process")

	v, err := secret.NewEnv("QATRACK_", nil).Resolve(context.Background(), "TEST_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "from-process", v)
}

func TestFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	good := filepath.Join(dir, "password")
	require.NoError(t, os.WriteFile(good, []byte("from-file\r\n"), 0o600))
	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))

	r := secret.NewFile("QATRACK_", map[string]string{
		"QATRACK_DB_PASSWORD_FILE": good,
		"QATRACK_EMPTY_FILE":       empty,
		"QATRACK_MISSING_FILE":     filepath.Join(dir, "nope"),
	})

	v, err := r.Resolve(ctx, "DB_PASSWORD")
	require.NoError(t, err)
	assert.Equal(t, "from-file", v)

	_, err = r.Resolve(ctx, "EMPTY")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, secret.ErrNotFound)

	_, err = r.Resolve(ctx, "MISSING")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, secret.ErrNotFound)

	_, err = r.Resolve(ctx, "UNSET")
	assert.ErrorIs(t, err, secret.ErrNotFound)
}

type failing struct{}

func (failing) Resolve(context.Context, string) (string, error) {
	return "", errors.New("vault unavailable")
}

func TestChain(t *testing.T) {
	ctx := context.Background()

	chain := secret.Chain{
		secret.Static{"A": "first"},
		secret.Static{"A": "second", "B": "second"},
	}

	v, err := chain.Resolve(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "first", v)

	v, err = chain.Resolve(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, "second", v)

	_, err = chain.Resolve(ctx, "C")
	assert.ErrorIs(t, err, secret.ErrNotFound)

	_, err = secret.Chain{failing{}, secret.Static{"A": "x"}}.Resolve(ctx, "A")
	assert.EqualError(t, err, "vault unavailable")
}

func TestReadDotEnv(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, ".env.local")
	base := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(local, []byte("A=local\n"), 0o600))
	require.NoError(t, os.WriteFile(base, []byte("A=base\nB=base\n"), 0o600))

	values, err := secret.ReadDotEnv(local, base, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "local", "B": "base"}, values)

	values, err = secret.ReadDotEnv()
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestEnviron(t *testing.T) {
	merged := secret.Environ(
		map[string]string{"A": "env"},
		map[string]string{"A": "dotenv", "B": "dotenv"},
	)
	assert.Equal(t, map[string]string{"A": "env", "B": "dotenv"}, merged)

	t.Setenv("QATRACK_ENVIRON_TEST", "process")
	merged = secret.Environ(nil, map[string]string{"QATRACK_ENVIRON_TEST": "dotenv"})
	assert.Equal(t, "process", merged["QATRACK_ENVIRON_TEST"])
}
