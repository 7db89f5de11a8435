package editor

import (
	"image"
	"image/color"
	"testing"

	"github.com/example/inkshot/internal/annotate"
)

func TestFitZoom(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 800, 600))
	if z := fitZoom(img, 800+toolbarWidth, 600+headerHeight+bottomHeight); z != 1 {
		t.Errorf("exact fit should be 1, got %g", z)
	}
	// Never upscales.
	if z := fitZoom(img, 4000, 4000); z != 1 {
		t.Errorf("zoom must cap at 1, got %g", z)
	}
	// Never collapses below the floor for tiny windows.
	if z := fitZoom(img, toolbarWidth+10, headerHeight+bottomHeight+10); z != 0.1 {
		t.Errorf("zoom must floor at 0.1, got %g", z)
	}
	if z := fitZoom(img, 400+toolbarWidth, 600+headerHeight+bottomHeight); z != 0.5 {
		t.Errorf("width-bound fit should be 0.5, got %g", z)
	}
}

func TestImageRectAnchorsBelowHeader(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	r := imageRect(img, 0.5)
	want := image.Rect(toolbarWidth, headerHeight, toolbarWidth+100, headerHeight+50)
	if r != want {
		t.Errorf("imageRect = %v, want %v", r, want)
	}
}

func TestToolLabel(t *testing.T) {
	if got := toolLabel(annotate.ToolPen); got != "P:pen" {
		t.Errorf("pen label = %q", got)
	}
	if got := toolLabel(annotate.ToolMagicWand); got != "W:magicwand" {
		t.Errorf("magicwand label = %q", got)
	}
}

func TestToolKeysCoverEveryTool(t *testing.T) {
	seen := map[rune]annotate.Tool{}
	for _, tool := range annotate.Tools() {
		r, ok := toolKeys[tool]
		if !ok {
			t.Errorf("tool %s has no key binding", tool)
			continue
		}
		if prev, dup := seen[r]; dup {
			t.Errorf("key %q bound to both %s and %s", r, prev, tool)
		}
		seen[r] = tool
	}
}

func TestWidthTool(t *testing.T) {
	for _, tool := range []annotate.Tool{
		annotate.ToolPen, annotate.ToolArrow, annotate.ToolShape, annotate.ToolBlur,
	} {
		if !widthTool(tool) {
			t.Errorf("%s should expose width options", tool)
		}
	}
	for _, tool := range []annotate.Tool{
		annotate.ToolSelect, annotate.ToolText, annotate.ToolStamp, annotate.ToolStep,
	} {
		if widthTool(tool) {
			t.Errorf("%s should not expose width options", tool)
		}
	}
}

func TestSnapshotAnnotationsIsolatedFromStore(t *testing.T) {
	s := annotate.NewStore(0)
	a := annotate.Annotation{
		ID: "a", Tool: annotate.ToolShape, Style: annotate.DefaultStyle(),
		Rect: image.Rect(0, 0, 20, 20), Completed: true,
	}
	s.Add(a)

	snap := snapshotAnnotations(s)

	// A frame queued for painting must keep the geometry it was composed
	// with even if the store mutates before the frame is drawn.
	moved := a
	moved.Rect = image.Rect(90, 0, 110, 20)
	s.Update("a", moved)

	if len(snap) != 1 || snap[0].Rect.Min.X != 0 {
		t.Fatalf("snapshot changed under store update: %+v", snap)
	}
}

func TestEnsurePaletteColor(t *testing.T) {
	base := paletteLen()
	// An existing color reuses its slot.
	if idx := EnsurePaletteColor(color.RGBA{255, 0, 0, 255}, ""); idx != 2 {
		t.Errorf("red should stay at index 2, got %d", idx)
	}
	if paletteLen() != base {
		t.Fatalf("existing color must not grow the palette")
	}

	custom := color.RGBA{12, 34, 56, 255}
	idx := EnsurePaletteColor(custom, "")
	if idx != base {
		t.Errorf("new color should append at %d, got %d", base, idx)
	}
	if got := paletteColorAt(idx); got != custom {
		t.Errorf("palette[%d] = %v", idx, got)
	}
	// A repeat lookup finds the appended entry.
	if again := EnsurePaletteColor(custom, ""); again != idx {
		t.Errorf("repeat lookup = %d, want %d", again, idx)
	}
	names := PaletteColors()
	if names[idx].Name != "#0C2238" {
		t.Errorf("auto name = %q", names[idx].Name)
	}
}

func TestPaletteColsMatchesToolbarWidth(t *testing.T) {
	cols := paletteCols()
	if cols < 1 {
		t.Fatalf("cols = %d", cols)
	}
	// Every swatch cell must fit inside the toolbar.
	if 4+cols*18 > toolbarWidth+18 {
		t.Errorf("cols %d overflow toolbar width %d", cols, toolbarWidth)
	}
	if rows := paletteRows(); rows*cols < paletteLen() {
		t.Errorf("rows %d x cols %d cannot hold %d swatches", rows, cols, paletteLen())
	}
}
