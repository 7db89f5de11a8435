// Package config loads and persists editor settings in a simple RC file
// format: `key = value` pairs with `[section]` headers. Unknown keys are
// ignored so older files keep working.
package config

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/example/inkshot/internal/annotate"
)

// Defaults holds the style settings a fresh editing session starts with.
type Defaults struct {
	Color      color.RGBA
	Width      int
	Opacity    float64
	FontSize   float64
	BlurRadius int
}

// Preset is a named style bundle selectable from the CLI or editor.
type Preset struct {
	Name       string
	Color      color.RGBA
	Width      int
	Opacity    float64
	FontSize   float64
	Shape      annotate.ShapeKind
	Filled     bool
	BlurRadius int
	ArrowHead  bool
	ArrowTail  bool
}

// Style converts the preset into the engine's style snapshot form.
func (p *Preset) Style() annotate.Style {
	return annotate.Style{
		Color:      p.Color,
		Width:      p.Width,
		Opacity:    p.Opacity,
		FontSize:   p.FontSize,
		Shape:      p.Shape,
		Filled:     p.Filled,
		BlurRadius: p.BlurRadius,
		ArrowHead:  p.ArrowHead,
		ArrowTail:  p.ArrowTail,
	}
}

// Config holds the application configuration.
type Config struct {
	SaveDir   string
	UndoDepth int
	Defaults  Defaults
	Presets   map[string]*Preset
}

// New creates a Config with engine defaults.
func New() *Config {
	st := annotate.DefaultStyle()
	return &Config{
		UndoDepth: annotate.DefaultUndoDepth,
		Defaults: Defaults{
			Color:      st.Color,
			Width:      st.Width,
			Opacity:    st.Opacity,
			FontSize:   st.FontSize,
			BlurRadius: st.BlurRadius,
		},
		Presets: make(map[string]*Preset),
	}
}

// Style returns the session style built from the configured defaults.
func (c *Config) Style() annotate.Style {
	st := annotate.DefaultStyle()
	st.Color = c.Defaults.Color
	st.Width = c.Defaults.Width
	st.Opacity = c.Defaults.Opacity
	st.FontSize = c.Defaults.FontSize
	st.BlurRadius = c.Defaults.BlurRadius
	return st
}

// String implements fmt.Stringer and returns the configuration in RC
// format, round-trippable through Parse.
func (c *Config) String() string {
	var sb strings.Builder

	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	fmt.Fprintf(&sb, "undo_depth = %d\n", c.UndoDepth)
	sb.WriteString("\n[defaults]\n")
	fmt.Fprintf(&sb, "color = %s\n", toHex(c.Defaults.Color))
	fmt.Fprintf(&sb, "width = %d\n", c.Defaults.Width)
	fmt.Fprintf(&sb, "opacity = %g\n", c.Defaults.Opacity)
	fmt.Fprintf(&sb, "font_size = %g\n", c.Defaults.FontSize)
	fmt.Fprintf(&sb, "blur_radius = %d\n", c.Defaults.BlurRadius)

	// Sort preset names for deterministic output.
	var names []string
	for name := range c.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p := c.Presets[name]
		fmt.Fprintf(&sb, "\n[preset.%s]\n", name)
		fmt.Fprintf(&sb, "color = %s\n", toHex(p.Color))
		fmt.Fprintf(&sb, "width = %d\n", p.Width)
		fmt.Fprintf(&sb, "opacity = %g\n", p.Opacity)
		fmt.Fprintf(&sb, "font_size = %g\n", p.FontSize)
		fmt.Fprintf(&sb, "shape = %s\n", p.Shape)
		fmt.Fprintf(&sb, "filled = %v\n", p.Filled)
		fmt.Fprintf(&sb, "blur_radius = %d\n", p.BlurRadius)
		fmt.Fprintf(&sb, "arrow_head = %v\n", p.ArrowHead)
		fmt.Fprintf(&sb, "arrow_tail = %v\n", p.ArrowTail)
	}
	return sb.String()
}

func toHex(c color.RGBA) string {
	if c.A != 255 {
		return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
	}
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
