package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"os"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/example/inkshot/internal/annotate"
	"github.com/example/inkshot/internal/clipboard"
	"github.com/example/inkshot/internal/editor"
	"github.com/example/inkshot/internal/render"
)

// drawCmd commits one annotation to an image from the command line by
// replaying the tool's gesture through the engine, then flattens the
// result.
type drawCmd struct {
	file          string
	output        string
	fromClipboard bool
	toClipboard   bool
	colorSpec     string
	widthVal      int
	opacity       float64
	fontSize      float64
	shapeName     string
	filled        bool
	blurRadius    int
	arrowTail     bool
	noArrowHead   bool
	shadow        bool
	preset        string
	loadPath      string
	exportPath    string

	tool   annotate.Tool
	style  annotate.Style
	points []image.Point
	text   string

	*root
	fs *flag.FlagSet
}

func (d *drawCmd) FlagSet() *flag.FlagSet { return d.fs }

func (d *drawCmd) Synopsis() string {
	return strings.Join([]string{
		"[flags] <tool> <coords...>",
		"",
		"gestures:",
		"  pen|highlighter|eraser  x1 y1 x2 y2 [x y ...]",
		"  line|arrow              x0 y0 x1 y1",
		"  shape|blur|spotlight|callout|crop|fill|magicwand|magnify|cutout",
		"                          x0 y0 x1 y1",
		"  text                    x y content...",
		"  stamp|step              x y",
	}, "\n")
}

var drawFlagNames = map[string]struct{}{
	"file": {}, "output": {}, "from-clipboard": {}, "to-clipboard": {},
	"color": {}, "width": {}, "opacity": {}, "font-size": {}, "shape": {},
	"filled": {}, "blur-radius": {}, "arrow-tail": {}, "no-arrow-head": {},
	"shadow": {}, "preset": {}, "annotations": {}, "export-annotations": {},
}

var drawBoolFlags = map[string]struct{}{
	"from-clipboard": {}, "to-clipboard": {}, "filled": {},
	"arrow-tail": {}, "no-arrow-head": {}, "shadow": {},
}

func parseColor(s string) (color.RGBA, error) {
	spec := strings.ToLower(strings.TrimSpace(s))
	if spec == "" {
		return color.RGBA{}, fmt.Errorf("color cannot be empty")
	}
	if c, ok := colornames.Map[spec]; ok {
		return c, nil
	}
	for _, entry := range editor.PaletteColors() {
		if strings.EqualFold(entry.Name, s) {
			return entry.Color, nil
		}
	}
	if strings.HasPrefix(spec, "#") && (len(spec) == 7 || len(spec) == 9) {
		var vals [4]uint8
		vals[3] = 255
		for i := 0; i*2+1 < len(spec)-1; i++ {
			v, err := strconv.ParseUint(spec[1+i*2:3+i*2], 16, 8)
			if err != nil {
				return color.RGBA{}, fmt.Errorf("invalid color %q", s)
			}
			vals[i] = uint8(v)
		}
		return color.RGBA{vals[0], vals[1], vals[2], vals[3]}, nil
	}
	return color.RGBA{}, fmt.Errorf("invalid color %q", s)
}

func parseDrawCmd(args []string, r *root) (*drawCmd, error) {
	fs := flag.NewFlagSet("draw", flag.ExitOnError)
	d := &drawCmd{root: r, fs: fs}
	fs.Usage = usageFunc(d)
	fs.StringVar(&d.file, "file", "", "input image file")
	fs.StringVar(&d.output, "output", "", "output file path (defaults to the input file)")
	fs.BoolVar(&d.fromClipboard, "from-clipboard", false, "read the input image from the clipboard")
	fs.BoolVar(&d.toClipboard, "to-clipboard", false, "copy the result to the clipboard")
	fs.StringVar(&d.colorSpec, "color", "", "stroke or fill color name or hex value")
	fs.IntVar(&d.widthVal, "width", 0, "stroke width in pixels")
	fs.Float64Var(&d.opacity, "opacity", 0, "opacity between 0 and 1")
	fs.Float64Var(&d.fontSize, "font-size", 0, "text size in points")
	fs.StringVar(&d.shapeName, "shape", "", "shape kind: rectangle, ellipse or rounded")
	fs.BoolVar(&d.filled, "filled", false, "fill shapes and callouts")
	fs.IntVar(&d.blurRadius, "blur-radius", 0, "blur checker size in pixels")
	fs.BoolVar(&d.arrowTail, "arrow-tail", false, "draw an arrowhead at the start point too")
	fs.BoolVar(&d.noArrowHead, "no-arrow-head", false, "suppress the arrowhead at the end point")
	fs.BoolVar(&d.shadow, "shadow", false, "add a drop shadow to the exported image")
	fs.StringVar(&d.preset, "preset", "", "style preset from the configuration")
	fs.StringVar(&d.loadPath, "annotations", "", "annotation snapshot to load before drawing")
	fs.StringVar(&d.exportPath, "export-annotations", "", "write the annotation snapshot to this file")

	flagArgs, positionals, err := splitDrawArgs(args)
	if err != nil {
		return nil, err
	}
	if err := fs.Parse(flagArgs); err != nil {
		return nil, err
	}
	if len(positionals) < 1 {
		return nil, &UsageError{of: d}
	}

	d.tool, err = annotate.ParseTool(strings.ToLower(positionals[0]))
	if err != nil {
		return nil, err
	}
	remaining := positionals[1:]
	switch d.tool.Info().Gesture {
	case annotate.GestureNone:
		return nil, fmt.Errorf("tool %q has no drawable gesture", d.tool)
	case annotate.GestureFreehand:
		if len(remaining) < 4 || len(remaining)%2 != 0 {
			return nil, fmt.Errorf("%s requires an even number of at least 4 coordinates", d.tool)
		}
		d.points, err = expectPoints(remaining)
	case annotate.GestureTwoPoint, annotate.GestureRect:
		var coords []int
		coords, err = expectInts(remaining, 4, d.tool.String())
		if err == nil {
			d.points = []image.Point{{coords[0], coords[1]}, {coords[2], coords[3]}}
		}
	case annotate.GestureTap:
		if d.tool == annotate.ToolText {
			if len(remaining) < 3 {
				return nil, fmt.Errorf("text requires x y and content")
			}
			var coords []int
			coords, err = expectInts(remaining[:2], 2, "text")
			if err == nil {
				d.points = []image.Point{{coords[0], coords[1]}}
				d.text = strings.Join(remaining[2:], " ")
				if strings.TrimSpace(d.text) == "" {
					return nil, fmt.Errorf("text content cannot be empty")
				}
			}
		} else {
			var coords []int
			coords, err = expectInts(remaining, 2, d.tool.String())
			if err == nil {
				d.points = []image.Point{{coords[0], coords[1]}}
			}
		}
	}
	if err != nil {
		return nil, err
	}

	d.style, err = d.buildStyle()
	if err != nil {
		return nil, err
	}

	if d.fromClipboard && d.output == "" {
		if d.file != "" {
			d.output = d.file
		} else if !d.toClipboard {
			return nil, fmt.Errorf("output file is required when reading from the clipboard")
		}
	}
	if d.file == "" && !d.fromClipboard {
		return nil, fmt.Errorf("input image is required (use -file or -from-clipboard)")
	}
	if d.output == "" {
		d.output = d.file
	}
	return d, nil
}

// buildStyle starts from the preset or configured defaults and overlays
// any explicitly given style flags.
func (d *drawCmd) buildStyle() (annotate.Style, error) {
	st := d.config.Style()
	if d.preset != "" {
		p, ok := d.config.Presets[d.preset]
		if !ok {
			return st, fmt.Errorf("unknown preset %q", d.preset)
		}
		st = p.Style()
	}
	if d.colorSpec != "" {
		c, err := parseColor(d.colorSpec)
		if err != nil {
			return st, err
		}
		st.Color = c
	}
	if d.widthVal != 0 {
		if d.widthVal < 1 {
			return st, fmt.Errorf("width must be at least 1")
		}
		st.Width = d.widthVal
	}
	if d.opacity != 0 {
		if d.opacity < 0 || d.opacity > 1 {
			return st, fmt.Errorf("opacity must be between 0 and 1")
		}
		st.Opacity = d.opacity
	}
	if d.fontSize != 0 {
		st.FontSize = d.fontSize
	}
	if d.shapeName != "" {
		k, err := annotate.ParseShapeKind(d.shapeName)
		if err != nil {
			return st, err
		}
		st.Shape = k
	}
	if d.filled {
		st.Filled = true
	}
	if d.blurRadius != 0 {
		st.BlurRadius = d.blurRadius
	}
	if d.arrowTail {
		st.ArrowTail = true
	}
	if d.noArrowHead {
		st.ArrowHead = false
	}
	return st, nil
}

func (d *drawCmd) Run() error {
	var src image.Image
	if d.fromClipboard {
		img, err := clipboard.ReadImage()
		if err != nil {
			return fmt.Errorf("read clipboard image: %w", err)
		}
		src = img
	} else {
		f, err := os.Open(d.file)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		img, _, err := image.Decode(f)
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("decode %s: %w", d.file, err)
		}
		src = img
	}
	rgba := image.NewRGBA(src.Bounds())
	draw.Draw(rgba, rgba.Bounds(), src, src.Bounds().Min, draw.Src)

	store := annotate.NewStore(d.config.UndoDepth)
	if d.loadPath != "" {
		data, err := os.ReadFile(d.loadPath)
		if err != nil {
			return fmt.Errorf("read annotations: %w", err)
		}
		list, dropped := annotate.Decode(data)
		if dropped > 0 {
			fmt.Fprintf(os.Stderr, "warning: dropped %d undecodable annotation records\n", dropped)
		}
		for _, a := range list {
			store.Add(a)
		}
	}

	if _, ok := d.commit(store); !ok {
		return fmt.Errorf("%s annotation rejected: gesture below the minimum size", d.tool)
	}

	if d.exportPath != "" {
		if err := os.WriteFile(d.exportPath, store.Snapshot(), 0o644); err != nil {
			return fmt.Errorf("export annotations: %w", err)
		}
	}

	flat := render.Flatten(rgba, store.Annotations())
	if d.shadow {
		flat = render.DropShadow(flat, render.DefaultShadowOptions())
	}
	if d.toClipboard {
		if err := clipboard.WriteImage(flat); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
	}
	if d.output != "" {
		out, err := os.Create(d.output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		if err := png.Encode(out, flat); err != nil {
			out.Close()
			return fmt.Errorf("encode output: %w", err)
		}
		if err := out.Close(); err != nil {
			return fmt.Errorf("close output: %w", err)
		}
	}
	return nil
}

// commit replays the parsed gesture through a session so the scripted
// path takes the same admission test as the interactive editor.
func (d *drawCmd) commit(store *annotate.Store) (annotate.Annotation, bool) {
	session := annotate.NewSession(store)
	session.Begin(d.tool, d.style, d.points[0])
	last := len(d.points) - 1
	if last > 0 {
		for _, p := range d.points[1:last] {
			session.Move(p)
		}
	}
	if d.tool == annotate.ToolText {
		session.SetText(d.text)
	}
	// End runs the final Move itself.
	return session.End(d.points[last])
}

func expectInts(args []string, n int, what string) ([]int, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%s requires %d integer arguments", what, n)
	}
	vals := make([]int, n)
	for i, raw := range args {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", raw)
		}
		vals[i] = v
	}
	return vals, nil
}

func expectPoints(args []string) ([]image.Point, error) {
	coords, err := expectInts(args, len(args), "freehand")
	if err != nil {
		return nil, err
	}
	pts := make([]image.Point, len(coords)/2)
	for i := range pts {
		pts[i] = image.Pt(coords[i*2], coords[i*2+1])
	}
	return pts, nil
}

// splitDrawArgs separates known flags from positionals so style flags can
// appear after the tool name. Negative coordinates are left alone because
// only known flag names are treated as flags.
func splitDrawArgs(args []string) ([]string, []string, error) {
	var flags []string
	var positionals []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			positionals = append(positionals, args[i+1:]...)
			break
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			positionals = append(positionals, arg)
			continue
		}
		name := strings.TrimLeft(arg, "-")
		if name == "" {
			positionals = append(positionals, arg)
			continue
		}
		parts := strings.SplitN(name, "=", 2)
		base := strings.ToLower(parts[0])
		if _, ok := drawFlagNames[base]; !ok {
			positionals = append(positionals, arg)
			continue
		}
		norm := "-" + base
		if len(parts) == 2 {
			flags = append(flags, norm+"="+parts[1])
			continue
		}
		if _, ok := drawBoolFlags[base]; ok {
			flags = append(flags, norm)
			continue
		}
		if i+1 >= len(args) {
			return nil, nil, fmt.Errorf("flag %s requires a value", arg)
		}
		flags = append(flags, norm, args[i+1])
		i++
	}
	return flags, positionals, nil
}
