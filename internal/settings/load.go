package settings

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/eugenenazirov/ava/internal/project"
)

const (
	EnvPrefix    = "ava_"
	EnvDelimiter = "_"
)

// ErrVerboseMissing is returned when a dotenv file was resolved but VERBOSE
// is set neither there nor in the process environment.
var ErrVerboseMissing = errors.New("VERBOSE is not set")

// LoadOptions configures Load.
type LoadOptions struct {
	Project *project.Context
	// Overrides are init values keyed by dotted field path.
	Overrides  map[string]string
	SecretsDir string
	// Environ defaults to os.Environ.
	Environ func() []string
	Logger  *zap.Logger
}

// Chain returns the sources in priority order for the given options.
func (o LoadOptions) Chain() Chain {
	overrides := make(InitSource, len(o.Overrides))
	for key, value := range o.Overrides {
		overrides[key] = value
	}

	chain := Chain{
		overrides,
		EnvSource{Prefix: EnvPrefix, Delimiter: EnvDelimiter, Environ: o.Environ},
	}
	if o.Project != nil {
		chain = append(chain,
			DotenvSource{Path: o.Project.EnvFile, Prefix: EnvPrefix, Delimiter: EnvDelimiter},
			TOMLSource{Path: o.Project.SettingsPath()},
		)
	}
	return append(chain, SecretsSource{Dir: o.SecretsDir})
}

// Load merges every source and returns the resulting settings.
func Load(opts LoadOptions) (*Settings, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	chain := opts.Chain()
	merged, err := chain.Merge(Fields, Defaults)
	if err != nil {
		return nil, err
	}

	s, err := decode(merged)
	if err != nil {
		return nil, err
	}

	if ctx := opts.Project; ctx != nil {
		paths := ctx.Paths()
		s.Project = Project{
			Root:           paths.Root,
			Modules:        paths.Modules,
			PathSettings:   paths.ConfigPath,
			FileSettings:   paths.ConfigFile,
			UserConfigPath: paths.UserConfigPath,
			Name:           ctx.ProjectName,
			EnvFile:        ctx.EnvFile,
		}
		if ctx.EnvFile != "" {
			env, err := loadEnvironment(ctx.EnvFile, opts.Environ)
			if err != nil {
				return nil, err
			}
			s.Environment = env
		}
	}

	logger.Debug("settings loaded",
		zap.Int("sources", len(chain)),
		zap.Bool("app.verbose", s.App.Verbose),
		zap.Bool("app.logger_enabled", s.App.LoggerEnabled),
	)
	return s, nil
}

func loadEnvironment(envFile string, environ func() []string) (*Environment, error) {
	if environ == nil {
		environ = os.Environ
	}

	raw, ok := lookupEnv(environ(), "VERBOSE")
	if !ok {
		values, err := godotenv.Read(envFile)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", envFile, err)
		}
		raw, ok = values["VERBOSE"]
	}
	if !ok {
		return nil, fmt.Errorf("%w (env file %s)", ErrVerboseMissing, envFile)
	}

	verbose, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("parse VERBOSE: %w", err)
	}
	return &Environment{Verbose: verbose}, nil
}

func lookupEnv(environ []string, name string) (string, bool) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if ok && key == name {
			return value, true
		}
	}
	return "", false
}
