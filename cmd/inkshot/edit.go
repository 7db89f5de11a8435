package main

import (
	"flag"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/example/inkshot/internal/annotate"
	"github.com/example/inkshot/internal/clipboard"
	"github.com/example/inkshot/internal/editor"
)

// editCmd opens an image in the interactive annotation window.
type editCmd struct {
	file          string
	output        string
	fromClipboard bool
	toolName      string
	preset        string
	*root
	fs *flag.FlagSet
}

func (c *editCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *editCmd) Synopsis() string { return "[flags] [file]" }

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	c := &editCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.output, "output", "", "output file path (defaults to the input file)")
	fs.BoolVar(&c.fromClipboard, "from-clipboard", false, "read the input image from the clipboard")
	fs.StringVar(&c.toolName, "tool", "pen", "initially selected tool")
	fs.StringVar(&c.preset, "preset", "", "style preset from the configuration")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	switch fs.NArg() {
	case 0:
	case 1:
		c.file = fs.Arg(0)
	default:
		return nil, &UsageError{of: c}
	}
	if c.file == "" && !c.fromClipboard {
		return nil, &UsageError{of: c}
	}
	if c.fromClipboard && c.output == "" && c.file == "" {
		return nil, fmt.Errorf("output file is required when reading from the clipboard")
	}
	if c.output == "" {
		c.output = c.file
	}
	if _, err := annotate.ParseTool(c.toolName); err != nil {
		return nil, err
	}
	if c.preset != "" {
		if _, ok := r.config.Presets[c.preset]; !ok {
			return nil, fmt.Errorf("unknown preset %q", c.preset)
		}
	}
	return c, nil
}

func (c *editCmd) Run() error {
	var src image.Image
	if c.fromClipboard {
		img, err := clipboard.ReadImage()
		if err != nil {
			return fmt.Errorf("read clipboard image: %w", err)
		}
		src = img
	} else {
		f, err := os.Open(c.file)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		img, _, err := image.Decode(f)
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("decode %s: %w", c.file, err)
		}
		src = img
	}

	rgba := image.NewRGBA(src.Bounds())
	draw.Draw(rgba, rgba.Bounds(), src, src.Bounds().Min, draw.Src)

	tool, _ := annotate.ParseTool(c.toolName)
	opts := []editor.Option{
		editor.WithImage(rgba),
		editor.WithOutput(c.output),
		editor.WithConfig(c.config),
		editor.WithTool(tool),
	}
	if c.preset != "" {
		opts = append(opts, editor.WithStyle(c.config.Presets[c.preset].Style()))
	}
	editor.New(opts...).Run()
	return nil
}
