package main

import (
	"flag"
	"io"
	"time"

	"github.com/urfave/cli/v2"
)

// commandFlags reads options given before and after positional arguments.
// The flag package stops at the first positional argument, so the rest of
// the command line is parsed again against the command's flags.
type commandFlags struct {
	leading  *cli.Context
	trailing *cli.Context
	visited  map[string]bool
	args     []string
}

func parseCommandFlags(c *cli.Context) (*commandFlags, error) {
	set := flag.NewFlagSet(c.Command.Name, flag.ContinueOnError)
	set.SetOutput(io.Discard)
	for _, f := range c.Command.Flags {
		if err := f.Apply(set); err != nil {
			return nil, err
		}
	}

	args := []string{}
	rest := c.Args().Slice()
	for len(rest) > 0 {
		args = append(args, rest[0])
		if err := set.Parse(rest[1:]); err != nil {
			return nil, err
		}
		rest = set.Args()
	}

	visited := map[string]bool{}
	set.Visit(func(f *flag.Flag) {
		visited[f.Name] = true
	})

	return &commandFlags{
		leading:  c,
		trailing: cli.NewContext(c.App, set, nil),
		visited:  visited,
		args:     args,
	}, nil
}

func (f *commandFlags) Args() []string {
	return f.args
}

func (f *commandFlags) StringSlice(name string) []string {
	values := f.leading.StringSlice(name)
	if f.visited[name] {
		values = append(values, f.trailing.StringSlice(name)...)
	}
	return values
}

func (f *commandFlags) String(name string) string {
	if f.visited[name] {
		return f.trailing.String(name)
	}
	return f.leading.String(name)
}

func (f *commandFlags) Duration(name string) time.Duration {
	if f.visited[name] {
		return f.trailing.Duration(name)
	}
	return f.leading.Duration(name)
}

// Bool is true when any of names was set anywhere on the command line.
func (f *commandFlags) Bool(names ...string) bool {
	for _, name := range names {
		if f.leading.Bool(name) || (f.visited[name] && f.trailing.Bool(name)) {
			return true
		}
	}
	return false
}
