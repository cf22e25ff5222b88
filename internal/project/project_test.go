package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ava", "settings.toml"), "[app]\nverbose = false\n")
	return root
}

func TestNewBuildsContext(t *testing.T) {
	root := newProject(t)
	home := t.TempDir()

	ctx, err := New(Options{Root: root, HomeDir: home, Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)

	assert.Equal(t, root, ctx.ProjectRoot)
	assert.Equal(t, filepath.Join(root, "ava"), ctx.ProjectModules)
	assert.Equal(t, filepath.Join(root, "ava", "settings.toml"), ctx.SettingsPath())
	assert.Equal(t, "settings.toml", ctx.ConfigFile)
	assert.Equal(t, filepath.Join(home, ".config", "ava"), ctx.UserConfigPath)
	assert.Empty(t, ctx.EnvFile)
}

func TestNewPrefersEnvSettingsFile(t *testing.T) {
	root := newProject(t)
	writeFile(t, filepath.Join(root, "ava", "settings_env.toml"), "")

	ctx, err := New(Options{Root: root, HomeDir: t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "ava", "settings_env.toml"), ctx.SettingsPath())
	assert.Equal(t, "settings_env.toml", ctx.Paths().ConfigFile)
}

func TestNewMissingLayout(t *testing.T) {
	tests := []struct {
		name  string
		setup func(root string)
	}{
		{"no modules dir", func(string) {}},
		{"no settings file", func(root string) {
			require.NoError(t, os.MkdirAll(filepath.Join(root, "ava"), 0o755))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			tt.setup(root)

			_, err := New(Options{Root: root, HomeDir: t.TempDir()})
			assert.ErrorIs(t, err, ErrConfigMissing)
		})
	}

	_, err := New(Options{Root: filepath.Join(t.TempDir(), "nope"), HomeDir: t.TempDir()})
	assert.ErrorIs(t, err, ErrConfigMissing)
}

func TestNewResolvesEnvFile(t *testing.T) {
	root := newProject(t)
	writeFile(t, filepath.Join(root, ".env"), "VERBOSE=true\n")

	ctx, err := New(Options{Root: root, HomeDir: t.TempDir(), SearchEnv: true})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".env"), ctx.EnvFile)
}

func TestFindRoot(t *testing.T) {
	root := newProject(t)
	nested := filepath.Join(root, "data", "deep")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, err := FindRoot(nested)
	require.NoError(t, err)
	assert.Equal(t, root, found)

	_, err = FindRoot(t.TempDir())
	assert.ErrorIs(t, err, ErrConfigMissing)
}

func TestExportEnv(t *testing.T) {
	root := newProject(t)
	ctx, err := New(Options{Root: root, HomeDir: t.TempDir()})
	require.NoError(t, err)

	t.Setenv("PROJECT_ROOT", "")
	t.Setenv("PROJECT_MODULES", "")
	t.Setenv("CONFIG_DIR", "")
	require.NoError(t, ctx.ExportEnv())

	assert.Equal(t, ctx.ProjectRoot, os.Getenv("PROJECT_ROOT"))
	assert.Equal(t, ctx.ProjectModules, os.Getenv("PROJECT_MODULES"))
	assert.Equal(t, ctx.UserConfigPath, os.Getenv("CONFIG_DIR"))
}
