package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTOML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func environ(vars ...string) func() []string {
	return func() []string { return vars }
}

func TestChainPrecedence(t *testing.T) {
	tomlPath := writeTOML(t, "[resources.data]\npath_dir = \"a\"\n")
	env := EnvSource{Prefix: EnvPrefix, Delimiter: EnvDelimiter, Environ: environ("AVA_RESOURCES_DATA_PATH_DIR=b")}
	field := []string{"resources.data.path_dir"}

	merged, err := Chain{TOMLSource{Path: tomlPath}}.Merge(field, nil)
	require.NoError(t, err)
	assert.Equal(t, "a", Lookup(merged, "resources.data.path_dir"))

	merged, err = Chain{env, TOMLSource{Path: tomlPath}}.Merge(field, nil)
	require.NoError(t, err)
	assert.Equal(t, "b", Lookup(merged, "resources.data.path_dir"))

	overrides := InitSource{"resources.data.path_dir": "c"}
	merged, err = Chain{overrides, env, TOMLSource{Path: tomlPath}}.Merge(field, nil)
	require.NoError(t, err)
	assert.Equal(t, "c", Lookup(merged, "resources.data.path_dir"))
}

func TestChainDefaultsAndUnknownKeys(t *testing.T) {
	tomlPath := writeTOML(t, "[app]\nverbose = true\nunknown = 1\n")

	merged, err := Chain{TOMLSource{Path: tomlPath}}.Merge(Fields, Defaults)
	require.NoError(t, err)

	assert.Equal(t, true, Lookup(merged, "app.verbose"))
	assert.Equal(t, true, Lookup(merged, "app.logger_enabled"))
	assert.True(t, IsMissing(Lookup(merged, "app.unknown")))
	assert.True(t, IsMissing(Lookup(merged, "resources")))
}

func TestChainMissingTOMLIsEmpty(t *testing.T) {
	src := TOMLSource{Path: filepath.Join(t.TempDir(), "absent.toml")}
	values, err := src.Load()
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestChainPropagatesSourceErrors(t *testing.T) {
	tomlPath := writeTOML(t, "[app\n")

	_, err := Chain{TOMLSource{Path: tomlPath}}.Merge(Fields, Defaults)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load toml source")
}

func TestEnvSourceIsCaseInsensitive(t *testing.T) {
	src := EnvSource{Prefix: EnvPrefix, Delimiter: EnvDelimiter, Environ: environ(
		"ava_app_verbose=true",
		"AVA_APP_LOGGER_ENABLED=false",
		"OTHER_APP_VERBOSE=false",
		"malformed",
	)}

	merged, err := Chain{src}.Merge(Fields, Defaults)
	require.NoError(t, err)
	assert.Equal(t, "true", Lookup(merged, "app.verbose"))
	assert.Equal(t, "false", Lookup(merged, "app.logger_enabled"))
}

func TestDotenvSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("AVA_APP_VERBOSE=true\nVERBOSE=false\n"), 0o644))

	values, err := DotenvSource{Path: path, Prefix: EnvPrefix, Delimiter: EnvDelimiter}.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"app.verbose": "true"}, values)

	values, err = DotenvSource{}.Load()
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestSecretsSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "resources.assigns.path_dir"), []byte("/srv/assigns\n"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	merged, err := Chain{SecretsSource{Dir: dir}}.Merge(Fields, nil)
	require.NoError(t, err)
	assert.Equal(t, "/srv/assigns", Lookup(merged, "resources.assigns.path_dir"))

	values, err := SecretsSource{Dir: filepath.Join(dir, "absent")}.Load()
	require.NoError(t, err)
	assert.Empty(t, values)
}
