package main

import (
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/inkshot/internal/annotate"
	"github.com/example/inkshot/internal/config"
)

func testRoot() *root {
	return &root{program: "inkshot", config: config.New()}
}

func TestParseDrawClipboardRequiresOutput(t *testing.T) {
	_, err := parseDrawCmd([]string{"-from-clipboard", "line", "0", "0", "10", "10"}, testRoot())
	if err == nil {
		t.Fatalf("expected error")
	}
	if want := "output file is required when reading from the clipboard"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to mention %q, got %v", want, err)
	}
}

func TestParseDrawUnknownTool(t *testing.T) {
	_, err := parseDrawCmd([]string{"-file", "in.png", "laser", "0", "0", "10", "10"}, testRoot())
	if err == nil {
		t.Fatalf("expected error")
	}
	if want := "unknown tool"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to mention %q, got %v", want, err)
	}
}

func TestParseDrawSelectHasNoGesture(t *testing.T) {
	_, err := parseDrawCmd([]string{"-file", "in.png", "select", "0", "0"}, testRoot())
	if err == nil {
		t.Fatalf("expected error")
	}
	if want := "no drawable gesture"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to mention %q, got %v", want, err)
	}
}

func TestParseDrawOddFreehandCoords(t *testing.T) {
	_, err := parseDrawCmd([]string{"-file", "in.png", "pen", "0", "0", "10", "10", "20"}, testRoot())
	if err == nil {
		t.Fatalf("expected error")
	}
	if want := "even number"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to mention %q, got %v", want, err)
	}
}

func TestParseDrawTextRequiresContent(t *testing.T) {
	_, err := parseDrawCmd([]string{"-file", "in.png", "text", "10", "10"}, testRoot())
	if err == nil {
		t.Fatalf("expected error")
	}
	if want := "requires x y and content"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error to mention %q, got %v", want, err)
	}

	_, err = parseDrawCmd([]string{"-file", "in.png", "text", "10", "10", " "}, testRoot())
	if err == nil || !strings.Contains(err.Error(), "cannot be empty") {
		t.Fatalf("blank content must be rejected, got %v", err)
	}
}

func TestParseDrawNegativeCoordinates(t *testing.T) {
	d, err := parseDrawCmd([]string{"-file", "in.png", "line", "-5", "-5", "40", "40"}, testRoot())
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if d.points[0] != image.Pt(-5, -5) || d.points[1] != image.Pt(40, 40) {
		t.Fatalf("negative coordinates mangled: %v", d.points)
	}
}

func TestParseDrawStyleFlagsAfterTool(t *testing.T) {
	d, err := parseDrawCmd([]string{"-file", "in.png", "arrow", "-color", "#336699", "-width", "6", "0", "0", "50", "50"}, testRoot())
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if d.style.Color != (color.RGBA{0x33, 0x66, 0x99, 255}) {
		t.Fatalf("color flag ignored: %v", d.style.Color)
	}
	if d.style.Width != 6 {
		t.Fatalf("width flag ignored: %d", d.style.Width)
	}
}

func TestParseDrawUnknownPreset(t *testing.T) {
	_, err := parseDrawCmd([]string{"-file", "in.png", "-preset", "ghost", "line", "0", "0", "10", "10"}, testRoot())
	if err == nil || !strings.Contains(err.Error(), `unknown preset "ghost"`) {
		t.Fatalf("expected unknown preset error, got %v", err)
	}
}

func TestParseEditRequiresInput(t *testing.T) {
	_, err := parseEditCmd(nil, testRoot())
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "usage:") {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestParseEditUnknownTool(t *testing.T) {
	_, err := parseEditCmd([]string{"-tool", "laser", "in.png"}, testRoot())
	if err == nil || !strings.Contains(err.Error(), "unknown tool") {
		t.Fatalf("expected unknown tool error, got %v", err)
	}
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want color.RGBA
	}{
		{"red", color.RGBA{255, 0, 0, 255}},
		{"#102030", color.RGBA{16, 32, 48, 255}},
		{"#10203040", color.RGBA{16, 32, 48, 64}},
		{"Orange", color.RGBA{255, 165, 0, 255}},
	}
	for _, tc := range cases {
		got, err := parseColor(tc.in)
		if err != nil {
			t.Errorf("parseColor(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseColor(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
	for _, bad := range []string{"", "notacolor", "#12", "#GG0000"} {
		if _, err := parseColor(bad); err == nil {
			t.Errorf("parseColor(%q) should fail", bad)
		}
	}
}

func TestSplitDrawArgs(t *testing.T) {
	flags, pos, err := splitDrawArgs([]string{"-file", "in.png", "line", "-5", "0", "-width=3", "10", "10"})
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	wantFlags := []string{"-file", "in.png", "-width=3"}
	wantPos := []string{"line", "-5", "0", "10", "10"}
	if strings.Join(flags, " ") != strings.Join(wantFlags, " ") {
		t.Errorf("flags = %v, want %v", flags, wantFlags)
	}
	if strings.Join(pos, " ") != strings.Join(wantPos, " ") {
		t.Errorf("positionals = %v, want %v", pos, wantPos)
	}

	if _, _, err := splitDrawArgs([]string{"-file"}); err == nil {
		t.Fatalf("dangling value flag must error")
	}

	_, pos, err = splitDrawArgs([]string{"--", "-file", "x"})
	if err != nil || strings.Join(pos, " ") != "-file x" {
		t.Fatalf("-- must stop flag parsing: %v %v", pos, err)
	}
}

func TestDrawCommitRejectsTinyArrow(t *testing.T) {
	d := &drawCmd{
		root:   testRoot(),
		tool:   annotate.ToolArrow,
		style:  annotate.DefaultStyle(),
		points: []image.Point{{10, 10}, {13, 13}},
	}
	store := annotate.NewStore(annotate.DefaultUndoDepth)
	if _, ok := d.commit(store); ok {
		t.Fatalf("a gesture below the minimum size must be rejected")
	}
	if store.Len() != 0 {
		t.Fatalf("rejected gesture must not reach the store")
	}
}

func TestDrawCommitText(t *testing.T) {
	d := &drawCmd{
		root:   testRoot(),
		tool:   annotate.ToolText,
		style:  annotate.DefaultStyle(),
		points: []image.Point{{30, 40}},
		text:   "release v2",
	}
	store := annotate.NewStore(annotate.DefaultUndoDepth)
	a, ok := d.commit(store)
	if !ok {
		t.Fatalf("text commit rejected")
	}
	if a.Text != "release v2" || a.Rect.Min != image.Pt(30, 40) {
		t.Fatalf("unexpected annotation: %+v", a)
	}
}

func TestRootUsageListsCommands(t *testing.T) {
	r := testRoot()
	msg := (&UsageError{of: r}).Error()
	for _, cmd := range []string{"edit", "draw", "tools", "colors", "widths", "config", "version"} {
		if !strings.Contains(msg, cmd) {
			t.Errorf("usage is missing the %s command:\n%s", cmd, msg)
		}
	}
}

func TestParseBareCmdRejectsArgs(t *testing.T) {
	if _, err := parseToolsCmd([]string{"extra"}, testRoot()); err == nil {
		t.Fatalf("expected usage error")
	}
	if _, err := parseToolsCmd(nil, testRoot()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDrawOutputDefaultsToInput(t *testing.T) {
	in := filepath.Join("shots", "in.png")
	d, err := parseDrawCmd([]string{"-file", in, "line", "0", "0", "10", "10"}, testRoot())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.output != in {
		t.Fatalf("output = %q, want %q", d.output, in)
	}
}
