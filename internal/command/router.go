// Package command keeps the ava command tree and dispatches parsed commands
// to their handlers.
package command

import (
	"errors"
	"fmt"
	"sort"

	"github.com/alecthomas/kingpin/v2"
)

var (
	ErrDuplicate      = errors.New("duplicate command name")
	ErrUnknownCommand = errors.New("unknown command")
)

// Command is a leaf of the tree. Setup registers the command's flags and
// arguments on its kingpin clause.
type Command struct {
	Name  string
	Help  string
	Setup func(clause *kingpin.CmdClause)
	Run   func() error
}

// Router is a named group of commands and subgroups. Names are unique within
// a group.
type Router struct {
	name     string
	help     string
	commands map[string]*Command
	groups   map[string]*Router
}

func New(name, help string) *Router {
	return &Router{
		name:     name,
		help:     help,
		commands: make(map[string]*Command),
		groups:   make(map[string]*Router),
	}
}

func (r *Router) Name() string { return r.name }

// Add registers a command in the group.
func (r *Router) Add(cmd Command) error {
	if err := r.claim(cmd.Name); err != nil {
		return err
	}
	r.commands[cmd.Name] = &cmd
	return nil
}

// Group registers and returns a subgroup.
func (r *Router) Group(name, help string) (*Router, error) {
	if err := r.claim(name); err != nil {
		return nil, err
	}
	g := New(name, help)
	r.groups[name] = g
	return g, nil
}

func (r *Router) claim(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name in %s", ErrDuplicate, r.name)
	}
	_, isCmd := r.commands[name]
	_, isGroup := r.groups[name]
	if isCmd || isGroup {
		return fmt.Errorf("%w: %s in %s", ErrDuplicate, name, r.name)
	}
	return nil
}

// ListCommands returns command and group names in lexicographic order.
func (r *Router) ListCommands() []string {
	names := make([]string, 0, len(r.commands)+len(r.groups))
	for name := range r.commands {
		names = append(names, name)
	}
	for name := range r.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs the command called name. Groups consume the first argument
// as the name of their subcommand.
func (r *Router) Dispatch(name string, args ...string) error {
	if cmd, ok := r.commands[name]; ok {
		if cmd.Run == nil {
			return nil
		}
		return cmd.Run()
	}
	if g, ok := r.groups[name]; ok {
		if len(args) == 0 {
			return fmt.Errorf("%w: %s requires a subcommand", ErrUnknownCommand, name)
		}
		return g.Dispatch(args[0], args[1:]...)
	}
	return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
}

// Registrar is satisfied by *kingpin.Application and *kingpin.CmdClause.
type Registrar interface {
	Command(name, help string) *kingpin.CmdClause
}

// Mount registers the tree on app in sorted order.
func (r *Router) Mount(app Registrar) {
	for _, name := range r.ListCommands() {
		if cmd, ok := r.commands[name]; ok {
			clause := app.Command(cmd.Name, cmd.Help)
			if cmd.Setup != nil {
				cmd.Setup(clause)
			}
			continue
		}
		g := r.groups[name]
		g.Mount(app.Command(g.name, g.help))
	}
}

// Listing names the commands of one group.
type Listing struct {
	Group    string   `json:"group" yaml:"group"`
	Commands []string `json:"commands" yaml:"commands"`
}

// Listing returns the root's leaf commands followed by every subgroup and its
// commands, all sorted.
func (r *Router) Listing() []Listing {
	out := []Listing{{Group: r.name, Commands: r.leafNames()}}

	groups := make([]string, 0, len(r.groups))
	for name := range r.groups {
		groups = append(groups, name)
	}
	sort.Strings(groups)

	for _, name := range groups {
		out = append(out, Listing{Group: name, Commands: r.groups[name].ListCommands()})
	}
	return out
}

func (r *Router) leafNames() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
