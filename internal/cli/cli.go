// Package cli wires the ava command tree to kingpin, the project context and
// the merged settings.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/ava/internal/command"
	"github.com/eugenenazirov/ava/internal/logging"
	"github.com/eugenenazirov/ava/internal/project"
	"github.com/eugenenazirov/ava/internal/settings"
)

// Version is overridden at build time with -ldflags "-X".
var Version = "0.1.0"

// CLI runs one ava invocation.
type CLI struct {
	Stdout io.Writer
	Stderr io.Writer
	// HomeDir overrides the user home directory.
	HomeDir string
	// Environ defaults to os.Environ.
	Environ func() []string

	root       string
	overrides  map[string]string
	searchEnv  bool
	secretsDir string
	logLevel   string

	logger   *zap.Logger
	router   *command.Router
	project  *project.Context
	settings *settings.Settings
}

// Run parses args, dispatches the selected command and returns the exit
// status.
func Run(args []string, stdout, stderr io.Writer) int {
	c := &CLI{Stdout: stdout, Stderr: stderr}
	return c.Run(args)
}

func (c *CLI) Run(args []string) int {
	if c.Stdout == nil {
		c.Stdout = os.Stdout
	}
	if c.Stderr == nil {
		c.Stderr = os.Stderr
	}

	app := kingpin.New(project.Name, "ava project tools")
	app.UsageWriter(c.Stdout)
	app.ErrorWriter(c.Stderr)
	terminated := -1
	app.Terminate(func(code int) {
		if terminated < 0 {
			terminated = code
		}
	})

	app.Flag("root", "Project root. Discovered from the working directory when omitted").StringVar(&c.root)
	c.overrides = make(map[string]string)
	app.Flag("set", "Override a setting, e.g. --set app.verbose=true").PlaceHolder("KEY=VALUE").StringMapVar(&c.overrides)
	app.Flag("search-env", "Resolve the project .env file").Default("true").BoolVar(&c.searchEnv)
	app.Flag("secrets-dir", "Directory holding one file per setting").StringVar(&c.secretsDir)
	app.Flag("log-level", "Enable logging at the given level (debug, info, warn, error)").Envar("AVA_LOG_LEVEL").StringVar(&c.logLevel)

	router, err := c.buildRouter()
	if err != nil {
		fmt.Fprintf(c.Stderr, "error: %v\n", err)
		return 1
	}
	c.router = router
	router.Mount(app)

	selected, err := app.Parse(args)
	if terminated >= 0 {
		return terminated
	}
	if err != nil {
		app.Errorf("%s, try --help", err)
		return 1
	}

	logger, err := logging.NewCLI(c.logLevel, c.Stderr)
	if err != nil {
		fmt.Fprintf(c.Stderr, "error: %v\n", err)
		return 1
	}
	c.logger = logger
	defer func() {
		_ = c.logger.Sync()
	}()

	parts := strings.Fields(selected)
	if len(parts) == 0 {
		app.Usage(nil)
		return 1
	}

	return c.exitCode(router.Dispatch(parts[0], parts[1:]...))
}

func (c *CLI) exitCode(err error) int {
	if err == nil {
		return 0
	}
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	fmt.Fprintf(c.Stderr, "error: %v\n", err)
	return 1
}

// load builds the project context and settings on first use.
func (c *CLI) load() (*settings.Settings, error) {
	if c.settings != nil {
		return c.settings, nil
	}

	ctx, err := project.New(project.Options{
		Root:      c.root,
		HomeDir:   c.HomeDir,
		SearchEnv: c.searchEnv,
		Logger:    c.logger,
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.ExportEnv(); err != nil {
		return nil, err
	}

	s, err := settings.Load(settings.LoadOptions{
		Project:    ctx,
		Overrides:  c.overrides,
		SecretsDir: c.secretsDir,
		Environ:    c.Environ,
		Logger:     c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	if !s.App.LoggerEnabled {
		c.logger = zap.NewNop()
	}
	c.project = ctx
	c.settings = s
	return s, nil
}
