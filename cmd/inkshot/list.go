package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/example/inkshot/internal/annotate"
	"github.com/example/inkshot/internal/editor"
)

func parseBareCmd(args []string, c HelpData, fs *flag.FlagSet) error {
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return &UsageError{of: c}
	}
	return nil
}

type toolsCmd struct {
	*root
	fs *flag.FlagSet
}

func (c *toolsCmd) FlagSet() *flag.FlagSet { return c.fs }
func (c *toolsCmd) Synopsis() string       { return "" }

func parseToolsCmd(args []string, r *root) (*toolsCmd, error) {
	c := &toolsCmd{root: r, fs: flag.NewFlagSet("tools", flag.ExitOnError)}
	if err := parseBareCmd(args, c, c.fs); err != nil {
		return nil, err
	}
	return c, nil
}

func gestureName(g annotate.Gesture) string {
	switch g {
	case annotate.GestureFreehand:
		return "freehand drag"
	case annotate.GestureTwoPoint:
		return "two-point drag"
	case annotate.GestureRect:
		return "rectangle drag"
	case annotate.GestureTap:
		return "tap"
	}
	return "pointer only"
}

func (c *toolsCmd) Run() error {
	fmt.Fprintln(os.Stdout, "available tools:")
	for _, t := range annotate.Tools() {
		info := t.Info()
		fmt.Fprintf(os.Stdout, "  %-12s %s\n", t, gestureName(info.Gesture))
	}
	return nil
}

type colorsCmd struct {
	*root
	fs *flag.FlagSet
}

func (c *colorsCmd) FlagSet() *flag.FlagSet { return c.fs }
func (c *colorsCmd) Synopsis() string       { return "" }

func parseColorsCmd(args []string, r *root) (*colorsCmd, error) {
	c := &colorsCmd{root: r, fs: flag.NewFlagSet("colors", flag.ExitOnError)}
	if err := parseBareCmd(args, c, c.fs); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *colorsCmd) Run() error {
	palette := editor.PaletteColors()
	if len(palette) == 0 {
		fmt.Fprintln(os.Stdout, "no colors available")
		return nil
	}
	fmt.Fprintln(os.Stdout, "available colors:")
	for _, entry := range palette {
		fmt.Fprintf(os.Stdout, "  %-8s #%02X%02X%02X\n",
			entry.Name, entry.Color.R, entry.Color.G, entry.Color.B)
	}
	fmt.Fprintln(os.Stdout, "any X11 color name or #RRGGBB / #RRGGBBAA value is also accepted")
	return nil
}

type widthsCmd struct {
	*root
	fs *flag.FlagSet
}

func (c *widthsCmd) FlagSet() *flag.FlagSet { return c.fs }
func (c *widthsCmd) Synopsis() string       { return "" }

func parseWidthsCmd(args []string, r *root) (*widthsCmd, error) {
	c := &widthsCmd{root: r, fs: flag.NewFlagSet("widths", flag.ExitOnError)}
	if err := parseBareCmd(args, c, c.fs); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *widthsCmd) Run() error {
	fmt.Fprintln(os.Stdout, "stroke width options (pixels):")
	for _, w := range editor.WidthOptions() {
		marker := " "
		if w == c.config.Defaults.Width {
			marker = "*"
		}
		fmt.Fprintf(os.Stdout, "%s %d\n", marker, w)
	}
	fmt.Fprintln(os.Stdout, "* marks the configured default; any positive width is accepted")
	return nil
}

type configCmd struct {
	*root
	fs *flag.FlagSet
}

func (c *configCmd) FlagSet() *flag.FlagSet { return c.fs }
func (c *configCmd) Synopsis() string       { return "" }

func parseConfigCmd(args []string, r *root) (*configCmd, error) {
	c := &configCmd{root: r, fs: flag.NewFlagSet("config", flag.ExitOnError)}
	if err := parseBareCmd(args, c, c.fs); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *configCmd) Run() error {
	if path := c.loader.GetConfigPath(); path != "" {
		fmt.Fprintf(os.Stdout, "# %s\n", path)
	} else {
		fmt.Fprintln(os.Stdout, "# no configuration file found, showing defaults")
	}
	fmt.Fprint(os.Stdout, c.config.String())
	return nil
}
