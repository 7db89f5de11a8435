package editor

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"sync"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"

	"github.com/example/inkshot/internal/annotate"
	"github.com/example/inkshot/internal/render"
)

const (
	headerHeight = 24
	bottomHeight = 24
	buttonHeight = 20
)

var toolbarWidth = 72

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

var (
	paletteMu sync.RWMutex
	palette   = []color.RGBA{
		{0, 0, 0, 255},
		{255, 255, 255, 255},
		{255, 0, 0, 255},
		{0, 255, 0, 255},
		{0, 0, 255, 255},
		{255, 255, 0, 255},
		{0, 255, 255, 255},
		{255, 0, 255, 255},
		{255, 128, 0, 255},
		{128, 0, 128, 255},
		{0, 128, 128, 255},
		{128, 128, 128, 255},
	}
	paletteNames = []string{
		"Black", "White", "Red", "Lime", "Blue", "Yellow",
		"Cyan", "Magenta", "Orange", "Purple", "Teal", "Gray",
	}
)

var widthOptions = []int{1, 2, 4, 6, 8}
var fontSizeOptions = []float64{12, 16, 20, 24, 32}
var shapeOptions = []annotate.ShapeKind{annotate.ShapeRectangle, annotate.ShapeEllipse, annotate.ShapeRounded}

var checkerLight = color.RGBA{220, 220, 220, 255}
var checkerDark = color.RGBA{192, 192, 192, 255}

// toolKeys binds a keyboard rune to each tool button.
var toolKeys = map[annotate.Tool]rune{
	annotate.ToolSelect:      's',
	annotate.ToolPen:         'p',
	annotate.ToolHighlighter: 'h',
	annotate.ToolEraser:      'e',
	annotate.ToolLine:        'l',
	annotate.ToolArrow:       'a',
	annotate.ToolShape:       'x',
	annotate.ToolText:        't',
	annotate.ToolBlur:        'b',
	annotate.ToolSpotlight:   'o',
	annotate.ToolCallout:     'c',
	annotate.ToolCrop:        'r',
	annotate.ToolFill:        'f',
	annotate.ToolMagicWand:   'w',
	annotate.ToolMagnify:     'g',
	annotate.ToolMove:        'm',
	annotate.ToolCutOut:      'u',
	annotate.ToolStamp:       'k',
	annotate.ToolStep:        'n',
}

func toolLabel(t annotate.Tool) string {
	r, ok := toolKeys[t]
	if !ok {
		return t.String()
	}
	return fmt.Sprintf("%c:%s", r-32, t)
}

// widthTool reports whether the toolbar shows stroke width options for t.
func widthTool(t annotate.Tool) bool {
	switch t.Info().Gesture {
	case annotate.GestureFreehand, annotate.GestureTwoPoint:
		return true
	}
	switch t {
	case annotate.ToolShape, annotate.ToolBlur, annotate.ToolSpotlight,
		annotate.ToolCallout, annotate.ToolCrop, annotate.ToolMagicWand,
		annotate.ToolMagnify, annotate.ToolCutOut:
		return true
	}
	return false
}

// KeyShortcut describes a keyboard combination that triggers an action.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

// KeyboardShortcuts returns the shortcuts associated with an action.
type KeyboardShortcuts interface {
	KeyboardShortcuts() []KeyShortcut
}

// shortcutList is a helper to easily satisfy the KeyboardShortcuts interface.
type shortcutList []KeyShortcut

func (s shortcutList) KeyboardShortcuts() []KeyShortcut { return []KeyShortcut(s) }

// ButtonState describes the visual state of a button.
type ButtonState int

const (
	StateDefault ButtonState = iota
	StateHover
	StatePressed
)

// Button represents an interactive UI element.
// Activate performs the button's action when clicked.
type Button interface {
	Draw(dst *image.RGBA, state ButtonState)
	Rect() image.Rectangle
	SetRect(r image.Rectangle)
	Activate()
}

// CacheButton wraps another Button and caches its rendered states.
type CacheButton struct {
	Button
	cache [3]*image.RGBA
}

var _ Button = (*CacheButton)(nil)

func (cb *CacheButton) Draw(dst *image.RGBA, state ButtonState) {
	if cb.cache[state] == nil {
		rect := cb.Button.Rect()
		img := image.NewRGBA(rect)
		cb.Button.Draw(img, state)
		cb.cache[state] = img
	}
	draw.Draw(dst, cb.Button.Rect(), cb.cache[state], cb.Button.Rect().Min, draw.Src)
}

func (cb *CacheButton) Rect() image.Rectangle { return cb.Button.Rect() }

func (cb *CacheButton) SetRect(r image.Rectangle) {
	if r != cb.Button.Rect() {
		cb.Button.SetRect(r)
		cb.cache = [3]*image.RGBA{}
	}
}

func (cb *CacheButton) Activate() { cb.Button.Activate() }

func buttonFill(state ButtonState) color.RGBA {
	switch state {
	case StateHover:
		return color.RGBA{180, 180, 180, 255}
	case StatePressed:
		return color.RGBA{150, 150, 150, 255}
	}
	return color.RGBA{200, 200, 200, 255}
}

// ToolButton represents a toolbar button that selects a drawing tool.
type ToolButton struct {
	label    string
	tool     annotate.Tool
	rect     image.Rectangle
	onSelect func()
}

func (tb *ToolButton) Draw(dst *image.RGBA, state ButtonState) {
	draw.Draw(dst, tb.rect, &image.Uniform{buttonFill(state)}, image.Point{}, draw.Src)
	d := &font.Drawer{Dst: dst, Src: image.Black, Face: basicfont.Face7x13,
		Dot: fixed.P(tb.rect.Min.X+4, tb.rect.Min.Y+14)}
	d.DrawString(tb.label)
}

func (tb *ToolButton) Rect() image.Rectangle { return tb.rect }

func (tb *ToolButton) SetRect(r image.Rectangle) {
	if r != tb.rect {
		tb.rect = r
	}
}

func (tb *ToolButton) Activate() {
	if tb.onSelect != nil {
		tb.onSelect()
	}
}

// Shortcut draws a clickable hint in the bottom bar.
type Shortcut struct {
	label  string
	action func()
	rect   image.Rectangle
}

func (s *Shortcut) Draw(dst *image.RGBA, state ButtonState) {
	draw.Draw(dst, s.rect, &image.Uniform{buttonFill(state)}, image.Point{}, draw.Src)
	render.StrokeRect(dst, s.rect, color.Black, 1)
	d := &font.Drawer{Dst: dst, Src: image.Black, Face: basicfont.Face7x13,
		Dot: fixed.P(s.rect.Min.X+2, s.rect.Min.Y+14)}
	d.DrawString(s.label)
}

func (s *Shortcut) Rect() image.Rectangle { return s.rect }

func (s *Shortcut) SetRect(r image.Rectangle) {
	if r != s.rect {
		s.rect = r
	}
}

func (s *Shortcut) Activate() {
	if s.action != nil {
		s.action()
	}
}

var toolButtons []*CacheButton
var shortcutRects []Shortcut
var hoverShortcut = -1
var hoverTool = -1
var hoverPalette = -1
var hoverWidth = -1
var hoverShape = -1
var hoverFontSize = -1

// backdropCache holds a cached checkerboard backdrop.
var backdropCache *image.RGBA

// keyboardAction maps a keyboard shortcut to the action name.
var keyboardAction = map[KeyShortcut]string{}

func paletteLen() int {
	paletteMu.RLock()
	defer paletteMu.RUnlock()
	return len(palette)
}

func paletteColorAt(idx int) color.RGBA {
	paletteMu.RLock()
	defer paletteMu.RUnlock()
	if len(palette) == 0 {
		return color.RGBA{}
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= len(palette) {
		idx = len(palette) - 1
	}
	return palette[idx]
}

// paletteCols is the number of swatches per toolbar row.
func paletteCols() int {
	cols := (toolbarWidth - 4) / 18
	if cols < 1 {
		cols = 1
	}
	return cols
}

func paletteRows() int {
	cols := paletteCols()
	return (paletteLen() + cols - 1) / cols
}

// PaletteColor pairs a palette entry with its display name.
type PaletteColor struct {
	Name  string
	Color color.RGBA
}

// PaletteColors returns palette entries annotated with their display names.
func PaletteColors() []PaletteColor {
	paletteMu.RLock()
	defer paletteMu.RUnlock()
	out := make([]PaletteColor, len(palette))
	for i := range palette {
		out[i] = PaletteColor{Name: paletteNames[i], Color: palette[i]}
	}
	return out
}

// EnsurePaletteColor makes sure col is present in the palette and returns
// its index.
func EnsurePaletteColor(col color.RGBA, name string) int {
	paletteMu.Lock()
	defer paletteMu.Unlock()
	for idx, existing := range palette {
		if existing == col {
			return idx
		}
	}
	if name == "" {
		name = fmt.Sprintf("#%02X%02X%02X", col.R, col.G, col.B)
	}
	palette = append(palette, col)
	paletteNames = append(paletteNames, name)
	return len(palette) - 1
}

// WidthOptions returns a copy of the available stroke widths.
func WidthOptions() []int {
	out := make([]int, len(widthOptions))
	copy(out, widthOptions)
	return out
}

func fitZoom(img *image.RGBA, winW, winH int) float64 {
	availW := winW - toolbarWidth
	availH := winH - headerHeight - bottomHeight
	zx := float64(availW) / float64(img.Bounds().Dx())
	zy := float64(availH) / float64(img.Bounds().Dy())
	z := zx
	if zy < z {
		z = zy
	}
	if z > 1 {
		z = 1
	}
	if z < 0.1 {
		z = 0.1
	}
	return z
}

// imageRect returns the destination rectangle for drawing the image. It
// anchors the canvas origin just below the header instead of centering it
// so the image position stays stable as the window resizes.
func imageRect(img *image.RGBA, zoom float64) image.Rectangle {
	w := int(float64(img.Bounds().Dx()) * zoom)
	h := int(float64(img.Bounds().Dy()) * zoom)
	return image.Rect(toolbarWidth, headerHeight, toolbarWidth+w, headerHeight+h)
}

// drawBackdrop fills dst with a cached checkerboard pattern.
func drawBackdrop(dst *image.RGBA) {
	b := dst.Bounds()
	if backdropCache == nil || backdropCache.Bounds() != b {
		backdropCache = image.NewRGBA(b)
		render.Checkerboard(backdropCache, backdropCache.Bounds(), 8, checkerLight, checkerDark)
	}
	draw.Draw(dst, b, backdropCache, image.Point{}, draw.Src)
}

func drawHeader(dst *image.RGBA, width int, tool annotate.Tool, count int, zoom float64) {
	draw.Draw(dst, image.Rect(0, 0, width, headerHeight),
		&image.Uniform{color.RGBA{220, 220, 220, 255}}, image.Point{}, draw.Src)
	d := &font.Drawer{Dst: dst, Src: image.Black, Face: basicfont.Face7x13,
		Dot: fixed.P(4, 16)}
	d.DrawString("Inkshot")
	status := fmt.Sprintf("%s | %d annotations | %.0f%%", tool, count, zoom*100)
	w := d.MeasureString(status).Ceil()
	d.Dot = fixed.P(width-w-4, 16)
	d.DrawString(status)
}

func drawToolbar(dst *image.RGBA, height int, tool annotate.Tool, style annotate.Style, colorIdx int) {
	draw.Draw(dst, image.Rect(0, headerHeight, toolbarWidth, height-bottomHeight),
		&image.Uniform{color.RGBA{220, 220, 220, 255}}, image.Point{}, draw.Src)

	y := headerHeight
	for i, cb := range toolButtons {
		r := image.Rect(0, y, toolbarWidth, y+buttonHeight)
		cb.SetRect(r)
		tb := cb.Button.(*ToolButton)
		state := StateDefault
		if tb.tool == tool {
			state = StatePressed
		} else if i == hoverTool {
			state = StateHover
		}
		cb.Draw(dst, state)
		y += buttonHeight
	}

	// color palette below tools
	y += 4
	cols := paletteCols()
	for i, p := range palette {
		x := 4 + (i%cols)*18
		py := y + (i/cols)*18
		rect := image.Rect(x, py, x+16, py+16)
		draw.Draw(dst, rect, &image.Uniform{p}, image.Point{}, draw.Src)
		if i == hoverPalette {
			render.FillRect(dst, rect, color.RGBA{255, 255, 255, 80})
		}
		if i == colorIdx {
			render.StrokeRect(dst, rect, color.White, 1)
		}
	}
	y += paletteRows() * 18

	if widthTool(tool) {
		y += 4
		for i, w := range widthOptions {
			rect := image.Rect(0, y, toolbarWidth, y+16)
			state := StateDefault
			if w == style.Width {
				state = StatePressed
			} else if i == hoverWidth {
				state = StateHover
			}
			draw.Draw(dst, rect, &image.Uniform{buttonFill(state)}, image.Point{}, draw.Src)
			d := &font.Drawer{Dst: dst, Src: image.Black, Face: basicfont.Face7x13, Dot: fixed.P(4, y+12)}
			d.DrawString(fmt.Sprintf("%d", w))
			render.Line(dst, image.Pt(24, y+8), image.Pt(toolbarWidth-4, y+8), style.Color, w)
			y += 16
		}
	}

	if tool == annotate.ToolShape {
		y += 4
		for i, k := range shapeOptions {
			rect := image.Rect(0, y, toolbarWidth, y+16)
			state := StateDefault
			if k == style.Shape {
				state = StatePressed
			} else if i == hoverShape {
				state = StateHover
			}
			draw.Draw(dst, rect, &image.Uniform{buttonFill(state)}, image.Point{}, draw.Src)
			d := &font.Drawer{Dst: dst, Src: image.Black, Face: basicfont.Face7x13, Dot: fixed.P(4, y+12)}
			d.DrawString(k.String())
			y += 16
		}
	}

	if tool == annotate.ToolText {
		y += 4
		for i, sz := range fontSizeOptions {
			rect := image.Rect(0, y, toolbarWidth, y+16)
			state := StateDefault
			if sz == style.FontSize {
				state = StatePressed
			} else if i == hoverFontSize {
				state = StateHover
			}
			draw.Draw(dst, rect, &image.Uniform{buttonFill(state)}, image.Point{}, draw.Src)
			d := &font.Drawer{Dst: dst, Src: image.Black, Face: basicfont.Face7x13, Dot: fixed.P(4, y+12)}
			d.DrawString(fmt.Sprintf("%.0fpt", sz))
			y += 16
		}
	}
}

func drawShortcuts(dst *image.RGBA, width, height int, textMode bool, selected bool, trigger func(string)) {
	rect := image.Rect(0, height-bottomHeight, width, height)
	draw.Draw(dst, rect, &image.Uniform{color.RGBA{220, 220, 220, 255}}, image.Point{}, draw.Src)
	shortcutRects = shortcutRects[:0]
	var shortcuts []Shortcut
	if textMode {
		shortcuts = []Shortcut{
			{label: "Enter:place", action: func() { trigger("textdone") }},
			{label: "Esc:cancel", action: func() { trigger("textcancel") }},
		}
	} else {
		shortcuts = []Shortcut{
			{label: "^Z:undo", action: func() { trigger("undo") }},
			{label: "^Y:redo", action: func() { trigger("redo") }},
			{label: "^C:copy", action: func() { trigger("copy") }},
			{label: "^S:save", action: func() { trigger("save") }},
			{label: "Q:quit", action: func() { trigger("quit") }},
		}
		if selected {
			shortcuts = append(shortcuts,
				Shortcut{label: "Del:remove", action: func() { trigger("remove") }})
		}
	}
	x := toolbarWidth + 4
	y := height - bottomHeight + 16
	meas := &font.Drawer{Face: basicfont.Face7x13}
	for i := range shortcuts {
		sc := &shortcuts[i]
		w := meas.MeasureString(sc.label).Ceil()
		sc.SetRect(image.Rect(x-2, y-14, x+w+2, y+4))
		state := StateDefault
		if i == hoverShortcut {
			state = StateHover
		}
		sc.Draw(dst, state)
		shortcutRects = append(shortcutRects, *sc)
		x = sc.rect.Max.X + 8
	}
}

type paintState struct {
	width, height int
	img           *image.RGBA
	zoom          float64
	offset        image.Point

	tool        annotate.Tool
	style       annotate.Style
	colorIdx    int
	annotations []annotate.Annotation

	cand    annotate.Annotation
	hasCand bool

	selection    annotate.Annotation
	hasSelection bool
	dragDelta    image.Point

	textActive bool

	message        string
	messageUntil   time.Time
	handleShortcut func(string)
}

// snapshotAnnotations copies the store's live list for a queued frame. The
// paint goroutine reads the state after the event loop has moved on, so it
// must not share the slice the store keeps mutating.
func snapshotAnnotations(s *annotate.Store) []annotate.Annotation {
	live := s.Annotations()
	out := make([]annotate.Annotation, len(live))
	copy(out, live)
	return out
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st paintState) {
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()

	drawBackdrop(b.RGBA())
	if ctx.Err() != nil {
		return
	}

	// Compose the annotation layer at image resolution, then scale the
	// result to the viewport.
	composed := render.Flatten(st.img, st.annotations)
	if st.hasCand {
		cand := st.cand
		if st.textActive {
			cand.Text += "|"
		}
		render.Candidate(composed, cand)
	}
	if st.hasSelection {
		marquee := st.selection.Bounds().Add(st.dragDelta)
		render.DashedRect(composed, marquee, 4, 1, color.RGBA{30, 120, 255, 255})
	}
	if ctx.Err() != nil {
		return
	}

	base := imageRect(st.img, st.zoom)
	dst := base.Add(image.Pt(
		int(float64(st.offset.X)*st.zoom),
		int(float64(st.offset.Y)*st.zoom)))
	xdraw.NearestNeighbor.Scale(b.RGBA(), dst, composed, composed.Bounds(), draw.Over, nil)
	if ctx.Err() != nil {
		return
	}

	drawHeader(b.RGBA(), st.width, st.tool, len(st.annotations), st.zoom)
	drawToolbar(b.RGBA(), st.height, st.tool, st.style, st.colorIdx)
	drawShortcuts(b.RGBA(), st.width, st.height, st.textActive, st.hasSelection, st.handleShortcut)

	if ctx.Err() != nil {
		return
	}

	if st.message != "" && time.Now().Before(st.messageUntil) {
		d := &font.Drawer{Dst: b.RGBA(), Src: image.Black, Face: basicfont.Face7x13}
		wmsg := d.MeasureString(st.message).Ceil()
		px := (st.width - wmsg) / 2
		py := st.height / 2
		rect := image.Rect(px-8, py-18, px+wmsg+8, py+8)
		draw.Draw(b.RGBA(), rect, &image.Uniform{color.RGBA{255, 255, 255, 230}}, image.Point{}, draw.Over)
		render.StrokeRect(b.RGBA(), rect, color.Black, 2)
		d.Dot = fixed.P(px, py)
		d.DrawString(st.message)
	}

	if ctx.Err() != nil {
		return
	}

	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}
