// Package settings merges the ava configuration sources into an immutable
// Settings record and provides dotted key-path lookups over it.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Fields lists every declared setting. Only these keys take part in a merge.
var Fields = []string{
	"resources.data.path_dir",
	"resources.assigns.path_dir",
	"app.logger_enabled",
	"app.verbose",
}

// Defaults holds the declared default values.
var Defaults = map[string]any{
	"app.logger_enabled": true,
	"app.verbose":        false,
}

// ResourceItem points at a directory used by the tool.
type ResourceItem struct {
	PathDir string `mapstructure:"path_dir"`
}

// Path expands environment variables and ~ in PathDir and returns an absolute
// path, resolving symlinks when the target exists. Unset variables are left
// as written.
func (r ResourceItem) Path() string {
	p := os.Expand(r.PathDir, expandKnown)
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		p = resolved
	}
	return p
}

func expandKnown(name string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return "$" + name
}

type Resources struct {
	Data    *ResourceItem `mapstructure:"data"`
	Assigns *ResourceItem `mapstructure:"assigns"`
}

type App struct {
	LoggerEnabled bool `mapstructure:"logger_enabled"`
	Verbose       bool `mapstructure:"verbose"`
}

// Environment is populated from the dotenv file.
type Environment struct {
	Verbose bool
}

// Project mirrors the project context the settings were loaded for.
type Project struct {
	Root           string
	Modules        string
	PathSettings   string
	FileSettings   string
	UserConfigPath string
	Name           string
	EnvFile        string
}

// Settings is the merged configuration. Values are not modified after Load.
type Settings struct {
	Resources   Resources `mapstructure:"resources"`
	App         App       `mapstructure:"app"`
	Environment *Environment
	Project     Project
}

func decode(merged map[string]any) (*Settings, error) {
	var s Settings
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &s,
	})
	if err != nil {
		return nil, fmt.Errorf("build decoder: %w", err)
	}
	if err := decoder.Decode(merged); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return &s, nil
}

// Map returns the settings as nested maps, computed fields included.
func (s *Settings) Map() map[string]any {
	m := map[string]any{
		"resources": map[string]any{
			"data":    s.Resources.Data.toMap(),
			"assigns": s.Resources.Assigns.toMap(),
		},
		"app": map[string]any{
			"logger_enabled": s.App.LoggerEnabled,
			"verbose":        s.App.Verbose,
		},
		"project": map[string]any{
			"root":             s.Project.Root,
			"modules":          s.Project.Modules,
			"path_settings":    s.Project.PathSettings,
			"file_settings":    s.Project.FileSettings,
			"user_config_path": s.Project.UserConfigPath,
			"name":             s.Project.Name,
			"env_file":         s.Project.EnvFile,
		},
	}
	if s.Environment != nil {
		m["environment"] = map[string]any{
			"verbose": s.Environment.Verbose,
		}
	}
	return m
}

func (r *ResourceItem) toMap() any {
	if r == nil {
		return nil
	}
	return map[string]any{
		"path_dir": r.PathDir,
		"path":     r.Path(),
	}
}
