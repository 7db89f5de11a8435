package config

import (
	"image/color"
	"strings"
	"testing"

	"github.com/example/inkshot/internal/annotate"
)

func TestParseFull(t *testing.T) {
	input := `# comment
save_dir = /tmp/shots
undo_depth = 20

[defaults]
color = #00FF00
width = 4
opacity = 0.8
font_size = 20
blur_radius = 12

[preset.review]
color = #FF990080
shape = ellipse
filled = true
arrow_tail = true
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.SaveDir != "/tmp/shots" {
		t.Errorf("save_dir = %q", cfg.SaveDir)
	}
	if cfg.UndoDepth != 20 {
		t.Errorf("undo_depth = %d", cfg.UndoDepth)
	}
	if cfg.Defaults.Color != (color.RGBA{0, 255, 0, 255}) {
		t.Errorf("defaults color = %v", cfg.Defaults.Color)
	}
	if cfg.Defaults.Width != 4 || cfg.Defaults.Opacity != 0.8 ||
		cfg.Defaults.FontSize != 20 || cfg.Defaults.BlurRadius != 12 {
		t.Errorf("defaults = %+v", cfg.Defaults)
	}

	p, ok := cfg.Presets["review"]
	if !ok {
		t.Fatal("preset review missing")
	}
	if p.Color != (color.RGBA{255, 153, 0, 128}) {
		t.Errorf("preset color = %v", p.Color)
	}
	if p.Shape != annotate.ShapeEllipse || !p.Filled || !p.ArrowTail {
		t.Errorf("preset = %+v", p)
	}
	// Keys the section never names come from the file's defaults.
	if p.Width != 4 || p.Opacity != 0.8 {
		t.Errorf("preset did not inherit defaults: %+v", p)
	}
}

func TestParseColonSeparatorAndQuotes(t *testing.T) {
	cfg, err := Parse(strings.NewReader("save_dir: \"/home/me/Pictures\"\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.SaveDir != "/home/me/Pictures" {
		t.Errorf("save_dir = %q", cfg.SaveDir)
	}
}

func TestParseIgnoresUnknownKeys(t *testing.T) {
	cfg, err := Parse(strings.NewReader("future_key = whatever\n[defaults]\nother = 1\n"))
	if err != nil {
		t.Fatalf("unknown keys must be ignored: %v", err)
	}
	if cfg.Defaults.Width != New().Defaults.Width {
		t.Errorf("defaults changed: %+v", cfg.Defaults)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name, input string
	}{
		{"bad hex", "[defaults]\ncolor = red\n"},
		{"short hex", "[defaults]\ncolor = #FFF\n"},
		{"opacity above one", "[defaults]\nopacity = 1.5\n"},
		{"zero width", "[defaults]\nwidth = 0\n"},
		{"undo depth", "undo_depth = none\n"},
		{"unknown shape", "[preset.p]\nshape = hexagon\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tc.input)); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	cfg := New()
	cfg.SaveDir = "/tmp/out"
	cfg.UndoDepth = 10
	cfg.Defaults.Color = color.RGBA{18, 52, 86, 255}
	cfg.Defaults.Width = 6
	cfg.Presets["bold"] = &Preset{
		Name: "bold", Color: color.RGBA{255, 0, 0, 200}, Width: 8,
		Opacity: 0.9, FontSize: 24, Shape: annotate.ShapeRounded,
		Filled: true, BlurRadius: 8, ArrowHead: true,
	}

	parsed, err := Parse(strings.NewReader(cfg.String()))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.SaveDir != cfg.SaveDir || parsed.UndoDepth != cfg.UndoDepth {
		t.Errorf("top level: %q %d", parsed.SaveDir, parsed.UndoDepth)
	}
	if parsed.Defaults != cfg.Defaults {
		t.Errorf("defaults: %+v vs %+v", parsed.Defaults, cfg.Defaults)
	}
	got, ok := parsed.Presets["bold"]
	if !ok {
		t.Fatal("preset lost in round trip")
	}
	if *got != *cfg.Presets["bold"] {
		t.Errorf("preset: %+v vs %+v", got, cfg.Presets["bold"])
	}
}
