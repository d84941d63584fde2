package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// SecretStore is the fallback source consulted when a setting is absent from the environment.
type SecretStore interface {
	Lookup(key string) (string, bool)
}

// MapSecretStore is an in-memory SecretStore.
type MapSecretStore map[string]string

// Lookup returns the stored value for key.
func (m MapSecretStore) Lookup(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m[key]
	return v, ok
}

// LoadSecretsFile reads a flat key/value secrets file. YAML and JSON files are decoded
// with yaml.v3; anything else (.env, no extension) is read as dotenv.
// A file that does not exist yields an empty store and no error.
func LoadSecretsFile(path string) (MapSecretStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return MapSecretStore{}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return MapSecretStore{}, nil
		}
		return MapSecretStore{}, fmt.Errorf("read secrets file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return decodeYAMLSecrets(raw)
	default:
		vals, err := godotenv.UnmarshalBytes(raw)
		if err != nil {
			return MapSecretStore{}, fmt.Errorf("decode dotenv secrets: %w", err)
		}
		return MapSecretStore(vals), nil
	}
}

// decodeYAMLSecrets keeps scalar entries only; nested sections are ignored.
func decodeYAMLSecrets(raw []byte) (MapSecretStore, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return MapSecretStore{}, fmt.Errorf("decode yaml secrets: %w", err)
	}

	out := make(MapSecretStore, len(doc))
	for k, v := range doc {
		switch val := v.(type) {
		case nil, map[string]any, []any:
			continue
		case string:
			out[k] = val
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out, nil
}

// Resolver looks settings up in the environment first, then in the secret store.
type Resolver struct {
	store  SecretStore
	getenv func(string) string
}

// NewResolver builds a Resolver over the process environment and store (which may be nil).
func NewResolver(store SecretStore) *Resolver {
	return &Resolver{store: store, getenv: os.Getenv}
}

// Resolve returns the first non-empty trimmed value for key from the environment,
// the secret store, or def. It never fails; callers validate what they require.
func (r *Resolver) Resolve(key, def string) string {
	if r == nil {
		return strings.TrimSpace(def)
	}
	if r.getenv != nil {
		if v := strings.TrimSpace(r.getenv(key)); v != "" {
			return v
		}
	}
	if r.store != nil {
		if v, ok := r.store.Lookup(key); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return strings.TrimSpace(def)
}
