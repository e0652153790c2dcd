package secret

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// ReadDotEnv reads the given .env files into a single map. Files that do
// not exist are skipped. Earlier files take precedence over later ones,
// matching godotenv.Load.
func ReadDotEnv(paths ...string) (map[string]string, error) {
	out := make(map[string]string)
	for _, path := range paths {
		values, err := godotenv.Read(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("reading env file %s: %w", path, err)
		}
		for k, v := range values {
			if _, ok := out[k]; !ok {
				out[k] = v
			}
		}
	}
	return out, nil
}

// Environ merges .env values under an environment. Values already present
// in base (or in the process environment when base is nil) win.
func Environ(base map[string]string, dotenv map[string]string) map[string]string {
	merged := make(map[string]string, len(dotenv))
	for k, v := range dotenv {
		merged[k] = v
	}
	if base == nil {
		for _, kv := range os.Environ() {
			if k, v, ok := strings.Cut(kv, "="); ok {
				merged[k] = v
			}
		}
		return merged
	}
	for k, v := range base {
		merged[k] = v
	}
	return merged
}
