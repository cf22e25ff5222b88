package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Source contributes flat dotted keys to the merged configuration.
type Source interface {
	Name() string
	Load() (map[string]any, error)
}

// InitSource holds explicit overrides supplied when the settings are built.
type InitSource map[string]any

func (InitSource) Name() string { return "init" }

func (s InitSource) Load() (map[string]any, error) {
	out := make(map[string]any, len(s))
	flatten("", map[string]any(s), out)
	return out, nil
}

// EnvSource reads prefixed variables from the process environment. Matching
// of the prefix is case-insensitive.
type EnvSource struct {
	Prefix    string
	Delimiter string
	// Environ defaults to os.Environ.
	Environ func() []string
}

func (EnvSource) Name() string { return "env" }

func (s EnvSource) Load() (map[string]any, error) {
	environ := s.Environ
	if environ == nil {
		environ = os.Environ
	}

	pairs := make(map[string]string)
	for _, kv := range environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		pairs[key] = value
	}
	return prefixed(pairs, s.Prefix, s.Delimiter), nil
}

// DotenvSource reads prefixed variables from a dotenv file. An empty Path
// contributes nothing.
type DotenvSource struct {
	Path      string
	Prefix    string
	Delimiter string
}

func (DotenvSource) Name() string { return "dotenv" }

func (s DotenvSource) Load() (map[string]any, error) {
	if s.Path == "" {
		return map[string]any{}, nil
	}
	pairs, err := godotenv.Read(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("read dotenv %s: %w", s.Path, err)
	}
	return prefixed(pairs, s.Prefix, s.Delimiter), nil
}

// TOMLSource reads a TOML file. A missing file contributes nothing.
type TOMLSource struct {
	Path string
}

func (TOMLSource) Name() string { return "toml" }

func (s TOMLSource) Load() (map[string]any, error) {
	if s.Path == "" {
		return map[string]any{}, nil
	}

	var raw map[string]any
	if _, err := toml.DecodeFile(s.Path, &raw); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("decode %s: %w", s.Path, err)
	}

	out := make(map[string]any)
	flatten("", raw, out)
	return out, nil
}

// SecretsSource reads one file per key from Dir. The file name is the dotted
// key and its trimmed content the value.
type SecretsSource struct {
	Dir string
}

func (SecretsSource) Name() string { return "secrets" }

func (s SecretsSource) Load() (map[string]any, error) {
	out := make(map[string]any)
	if s.Dir == "" {
		return out, nil
	}

	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return out, nil
		}
		return nil, fmt.Errorf("read secrets dir: %w", err)
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.Dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read secret %s: %w", entry.Name(), err)
		}
		out[strings.ToLower(entry.Name())] = strings.TrimSpace(string(data))
	}
	return out, nil
}

func prefixed(pairs map[string]string, prefix, delimiter string) map[string]any {
	prefix = strings.ToLower(prefix)
	out := make(map[string]any)
	for key, value := range pairs {
		lower := strings.ToLower(key)
		if !strings.HasPrefix(lower, prefix) {
			continue
		}
		name := strings.TrimPrefix(lower, prefix)
		if delimiter != "" {
			name = strings.ReplaceAll(name, strings.ToLower(delimiter), ".")
		}
		if name == "" {
			continue
		}
		out[name] = value
	}
	return out
}

func flatten(prefix string, in map[string]any, out map[string]any) {
	for key, value := range in {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			flatten(full, nested, out)
			continue
		}
		out[full] = value
	}
}
