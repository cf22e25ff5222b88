package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/ava/internal/command"
	"github.com/eugenenazirov/ava/internal/display"
	"github.com/eugenenazirov/ava/internal/files"
	"github.com/eugenenazirov/ava/internal/project"
	"github.com/eugenenazirov/ava/internal/settings"
)

func (c *CLI) buildRouter() (*command.Router, error) {
	root := command.New(project.Name, "ava project tools")

	var unzip struct {
		folder  string
		dry     bool
		ext     []string
		verbose bool
	}
	var cmds struct {
		format  string
		verbose bool
	}
	var dump struct {
		key     string
		verbose bool
		quiet   bool
	}
	var keys struct {
		name    string
		verbose bool
		quiet   bool
	}

	err := errors.Join(
		root.Add(command.Command{
			Name: "version",
			Help: "Show the version",
			Run:  c.version,
		}),
		root.Add(command.Command{
			Name: "unzip-all",
			Help: "Extract every archive found under a folder",
			Setup: func(cl *kingpin.CmdClause) {
				cl.Arg("folder", "Folder to search").Default(".").StringVar(&unzip.folder)
				cl.Flag("dry", "List the archives without extracting").BoolVar(&unzip.dry)
				cl.Flag("ext", "Archive file pattern, repeatable").PlaceHolder("*.zip").StringsVar(&unzip.ext)
				cl.Flag("verbose", "Print the resolved arguments").Short('v').BoolVar(&unzip.verbose)
			},
			Run: func() error {
				return c.unzipAll(unzip.folder, unzip.ext, unzip.dry, unzip.verbose)
			},
		}),
	)
	if err != nil {
		return nil, err
	}

	debug, err := root.Group("debug", "Inspect the CLI and its settings")
	if err != nil {
		return nil, err
	}

	err = errors.Join(
		debug.Add(command.Command{
			Name: "commands",
			Help: "List commands and groups",
			Setup: func(cl *kingpin.CmdClause) {
				cl.Flag("fmt", "Output format: "+strings.Join(display.Formats(), ", ")).Default(string(display.FormatTable)).StringVar(&cmds.format)
				cl.Flag("verbose", "Print the raw listing first").Short('v').BoolVar(&cmds.verbose)
			},
			Run: func() error {
				return c.debugCommands(root, cmds.format, cmds.verbose)
			},
		}),
		debug.Add(command.Command{
			Name: "settings",
			Help: "Show the merged settings",
			Setup: func(cl *kingpin.CmdClause) {
				cl.Flag("key", "Dotted key path to show").StringVar(&dump.key)
				cl.Flag("verbose", "Print the settings file path").Short('v').BoolVar(&dump.verbose)
				cl.Flag("quiet", "Print nothing").Short('q').BoolVar(&dump.quiet)
			},
			Run: func() error {
				return c.debugSettings(dump.key, dump.verbose, dump.quiet)
			},
		}),
		debug.Add(command.Command{
			Name: "settings-key",
			Help: "List the keys under a settings entry",
			Setup: func(cl *kingpin.CmdClause) {
				cl.Arg("name", "Dotted key path of a settings section").Required().StringVar(&keys.name)
				cl.Flag("verbose", "Print the settings file path").Short('v').BoolVar(&keys.verbose)
				cl.Flag("quiet", "Print nothing").Short('q').BoolVar(&keys.quiet)
			},
			Run: func() error {
				return c.debugSettingsKey(keys.name, keys.verbose, keys.quiet)
			},
		}),
	)
	if err != nil {
		return nil, err
	}
	return root, nil
}

func (c *CLI) version() error {
	_, err := fmt.Fprintln(c.Stdout, Version)
	return err
}

func (c *CLI) unzipAll(folder string, patterns []string, dry, verbose bool) error {
	if verbose {
		shown := patterns
		if len(shown) == 0 {
			shown = files.DefaultArchivePatterns
		}
		fmt.Fprintf(c.Stdout, "folder=%s\ndry=%t\next=[%s]\n", folder, dry, strings.Join(shown, ", "))
	}

	_, err := files.UnzipAll(folder, files.UnzipOptions{
		Patterns: patterns,
		Dry:      dry,
		Out:      c.Stdout,
		Logger:   c.logger,
	})
	return err
}

func (c *CLI) debugCommands(root *command.Router, format string, verbose bool) error {
	listing := root.Listing()
	if verbose {
		fmt.Fprintf(c.Stdout, "commands=[%s]\n", strings.Join(root.ListCommands(), ", "))
		fmt.Fprintln(c.Stdout, strings.Repeat("-", 60))
	}

	f, err := display.ParseFormat(format)
	if err != nil {
		fmt.Fprintf(c.Stdout, "Unknown format=%s\n", format)
		return nil
	}
	return display.Commands(c.Stdout, listing, f)
}

func (c *CLI) debugSettings(key string, verbose, quiet bool) error {
	s, err := c.load()
	if err != nil {
		return err
	}
	if !quiet {
		var value any = s.Map()
		if key != "" {
			value = settings.Lookup(s.Map(), key)
		}
		if err := display.Value(c.Stdout, value); err != nil {
			return err
		}
	}
	if verbose {
		fmt.Fprintf(c.Stdout, "settings_file=%s\n", c.project.SettingsPath())
	}
	return nil
}

func (c *CLI) debugSettingsKey(name string, verbose, quiet bool) error {
	s, err := c.load()
	if err != nil {
		return err
	}

	keys, err := settings.KeysAt(s.Map(), name)
	if err != nil {
		if !quiet {
			fmt.Fprintf(c.Stdout, "%s not found\n", name)
		}
		c.logger.Debug("settings key lookup failed", zap.String("key", name), zap.Error(err))
		return &ExitError{Code: 1}
	}
	if quiet {
		return nil
	}

	if verbose {
		fmt.Fprintf(c.Stdout, "settings_file=%s\n", c.project.SettingsPath())
	}
	fmt.Fprintf(c.Stdout, "key=%s\n", name)
	return display.Value(c.Stdout, keys)
}
