package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/example/inkshot/internal/config"
)

var (
	version            = "dev"
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs      *flag.FlagSet
	program string
	config  *config.Config
	loader  *config.Loader
}

func (r *root) Program() string { return r.program }

func (r *root) Synopsis() string {
	return strings.Join([]string{
		"<command> [arguments]",
		"",
		"commands:",
		"  edit     open an image in the annotation editor",
		"  draw     add one annotation to an image from the command line",
		"  tools    list the annotation tools",
		"  colors   list the named colors",
		"  widths   list the stroke width options",
		"  config   print the active configuration",
		"  version  print the program version",
	}, "\n")
}

func (r *root) FlagSet() *flag.FlagSet { return r.fs }

func (r *root) subcommand(name string) *root {
	program := strings.TrimSpace(strings.Join([]string{r.program, name}, " "))
	return &root{program: program, config: r.config, loader: r.loader}
}

func newRoot() *root {
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}

	r := &root{
		fs:      flag.NewFlagSet("inkshot", flag.ExitOnError),
		program: "inkshot",
		config:  cfg,
		loader:  loader,
	}
	r.fs.Usage = usageFunc(r)
	return r
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "edit":
		cmd, err = parseEditCmd(subArgs, r.subcommand("edit"))
	case "draw":
		cmd, err = parseDrawCmd(subArgs, r.subcommand("draw"))
	case "tools":
		cmd, err = parseToolsCmd(subArgs, r.subcommand("tools"))
	case "colors":
		cmd, err = parseColorsCmd(subArgs, r.subcommand("colors"))
	case "widths":
		cmd, err = parseWidthsCmd(subArgs, r.subcommand("widths"))
	case "config":
		cmd, err = parseConfigCmd(subArgs, r.subcommand("config"))
	case "version":
		cmd = &versionCmd{r: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
		} else {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}
