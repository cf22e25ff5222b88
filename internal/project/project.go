// Package project locates the ava project on disk and exposes the paths the
// rest of the tool derives its configuration from.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const (
	Name          = "ava"
	MainModule    = "ava"
	EnvFilename   = ".env"
	EnvTemplate   = "env_example"
	UserConfigDir = ".config"

	settingsFile    = "settings.toml"
	settingsEnvFile = "settings_env.toml"
)

var (
	// ErrConfigMissing reports a required project path that does not exist.
	ErrConfigMissing = errors.New("required configuration missing")
	// ErrTemplateMissing reports that no dotenv file or template could be found.
	ErrTemplateMissing = errors.New("env template missing")
)

// Options controls how a Context is built.
type Options struct {
	// Root is the project root. When empty it is discovered from WorkDir.
	Root string
	// WorkDir is where root discovery starts. Defaults to the process cwd.
	WorkDir string
	// HomeDir overrides the user home directory.
	HomeDir string
	// SearchEnv enables dotenv resolution.
	SearchEnv bool
	Logger    *zap.Logger
}

// Context describes the project layout. It is immutable once built.
type Context struct {
	ProjectName    string
	MainModule     string
	EnvFilename    string
	EnvTemplate    string
	ProjectRoot    string
	ProjectModules string
	AppTOML        string
	AppEnvTOML     string
	ConfigFile     string
	UserConfigPath string
	EnvFile        string
	SearchEnv      bool
}

// New validates the project layout and resolves the dotenv file when
// SearchEnv is set.
func New(opts Options) (*Context, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	root := opts.Root
	if root == "" {
		found, err := FindRoot(opts.WorkDir)
		if err != nil {
			return nil, err
		}
		root = found
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}
	if !isDir(root) {
		return nil, fmt.Errorf("%w: project root %s", ErrConfigMissing, root)
	}

	modules := filepath.Join(root, MainModule)
	if !isDir(modules) {
		return nil, fmt.Errorf("%w: modules directory %s", ErrConfigMissing, modules)
	}

	appTOML := filepath.Join(modules, settingsFile)
	if !isFile(appTOML) {
		return nil, fmt.Errorf("%w: settings file %s", ErrConfigMissing, appTOML)
	}

	home := opts.HomeDir
	if home == "" {
		home, err = os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
	}

	ctx := &Context{
		ProjectName:    Name,
		MainModule:     MainModule,
		EnvFilename:    EnvFilename,
		EnvTemplate:    EnvTemplate,
		ProjectRoot:    root,
		ProjectModules: modules,
		AppTOML:        appTOML,
		AppEnvTOML:     filepath.Join(modules, settingsEnvFile),
		UserConfigPath: filepath.Join(home, UserConfigDir, Name),
		SearchEnv:      opts.SearchEnv,
	}
	ctx.ConfigFile = filepath.Base(ctx.SettingsPath())

	if opts.SearchEnv {
		resolver := Resolver{
			ProjectRoot:   root,
			Filename:      EnvFilename,
			Template:      EnvTemplate,
			UserConfigDir: ctx.UserConfigPath,
			Logger:        logger,
		}
		envFile, err := resolver.Resolve()
		if err != nil {
			return nil, err
		}
		ctx.EnvFile = envFile
	}

	logger.Debug("project context ready",
		zap.String("root", ctx.ProjectRoot),
		zap.String("settings", ctx.SettingsPath()),
		zap.String("env_file", ctx.EnvFile),
	)

	return ctx, nil
}

// SettingsPath returns the effective TOML file. The environment override
// replaces the main file when it exists.
func (c *Context) SettingsPath() string {
	if isFile(c.AppEnvTOML) {
		return c.AppEnvTOML
	}
	return c.AppTOML
}

// ExportEnv publishes the project locations to the process environment.
func (c *Context) ExportEnv() error {
	vars := [][2]string{
		{"PROJECT_ROOT", c.ProjectRoot},
		{"PROJECT_MODULES", c.ProjectModules},
		{"CONFIG_DIR", c.UserConfigPath},
	}
	for _, kv := range vars {
		if err := os.Setenv(kv[0], kv[1]); err != nil {
			return fmt.Errorf("export %s: %w", kv[0], err)
		}
	}
	return nil
}

// Paths groups the locations shown by the debug commands.
type Paths struct {
	Root           string
	Modules        string
	ConfigPath     string
	ConfigFile     string
	UserConfigPath string
}

func (c *Context) Paths() Paths {
	return Paths{
		Root:           c.ProjectRoot,
		Modules:        c.ProjectModules,
		ConfigPath:     c.SettingsPath(),
		ConfigFile:     c.ConfigFile,
		UserConfigPath: c.UserConfigPath,
	}
}

// FindRoot walks up from start until it finds a directory holding
// ava/settings.toml.
func FindRoot(start string) (string, error) {
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		start = wd
	}

	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", start, err)
	}

	for {
		if isFile(filepath.Join(dir, MainModule, settingsFile)) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: no %s found above %s", ErrConfigMissing, filepath.Join(MainModule, settingsFile), start)
		}
		dir = parent
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
