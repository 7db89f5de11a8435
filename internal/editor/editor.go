// Package editor hosts the interactive annotation window: a shiny event
// loop feeding pointer gestures into the annotation engine and painting
// the committed layer over the screenshot.
package editor

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"sync"
	"time"
	"unicode"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/inkshot/internal/annotate"
	"github.com/example/inkshot/internal/clipboard"
	"github.com/example/inkshot/internal/config"
	"github.com/example/inkshot/internal/render"
)

// Editor holds the state of one editing window.
type Editor struct {
	Image  *image.RGBA
	Output string
	Config *config.Config

	store    *annotate.Store
	session  *annotate.Session
	tool     annotate.Tool
	style    annotate.Style
	styleSet bool

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an Editor during creation.
type Option func(*Editor)

// WithImage sets the screenshot being annotated.
func WithImage(img *image.RGBA) Option { return func(e *Editor) { e.Image = img } }

// WithOutput sets the file path used when saving the flattened image.
func WithOutput(out string) Option { return func(e *Editor) { e.Output = out } }

// WithConfig applies loaded settings: undo depth and default style.
func WithConfig(cfg *config.Config) Option { return func(e *Editor) { e.Config = cfg } }

// WithTool sets the initially selected tool.
func WithTool(t annotate.Tool) Option { return func(e *Editor) { e.tool = t } }

// WithStyle overrides the starting style.
func WithStyle(st annotate.Style) Option {
	return func(e *Editor) {
		e.style = st
		e.styleSet = true
	}
}

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(e *Editor) { e.onClose = fn } }

// New creates an Editor with the provided options.
func New(opts ...Option) *Editor {
	e := &Editor{
		tool: annotate.ToolPen,
	}
	for _, o := range opts {
		o(e)
	}
	if e.Config == nil {
		e.Config = config.New()
	}
	if !e.styleSet {
		e.style = e.Config.Style()
	}
	e.store = annotate.NewStore(undoDepth(e.Config))
	e.session = annotate.NewSession(e.store)
	return e
}

func undoDepth(cfg *config.Config) int {
	if cfg == nil {
		return annotate.DefaultUndoDepth
	}
	return cfg.UndoDepth
}

// Store exposes the committed annotation list for the host command.
func (e *Editor) Store() *annotate.Store { return e.store }

func (e *Editor) notifyClose() {
	e.closeOnce.Do(func() {
		if e.onClose != nil {
			e.onClose()
		}
	})
}

// Run executes the UI loop using shiny's driver.
func (e *Editor) Run() { driver.Main(e.main) }

func (e *Editor) main(s screen.Screen) {
	rgba := e.Image
	output := e.Output

	// Ensure the toolbar is wide enough to fit the program title and all
	// tool button labels so the UI contents are not clipped on start up.
	d := &font.Drawer{Face: basicfont.Face7x13}
	max := d.MeasureString("Inkshot").Ceil() + 8
	for _, t := range annotate.Tools() {
		w := d.MeasureString(toolLabel(t)).Ceil() + 8
		if w > max {
			max = w
		}
	}
	if max > toolbarWidth {
		toolbarWidth = max
	}

	toolButtons = toolButtons[:0]
	for _, t := range annotate.Tools() {
		tool := t
		toolButtons = append(toolButtons, &CacheButton{Button: &ToolButton{
			label: toolLabel(tool),
			tool:  tool,
			onSelect: func() {
				if e.session.Active() {
					e.session.Cancel()
				}
				e.tool = tool
			},
		}})
	}

	colorIdx := EnsurePaletteColor(e.style.Color, "")

	width := rgba.Bounds().Dx() + toolbarWidth
	height := rgba.Bounds().Dy() + headerHeight + bottomHeight
	if minH := toolbarContentHeight(); height < minH {
		height = minH
	}
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()
	defer e.notifyClose()

	zoom := fitZoom(rgba, width, height)
	offset := image.Point{}

	var selID string
	var dragStart image.Point
	var dragDelta image.Point
	var dragging bool
	var panStart image.Point
	var panOrigin image.Point
	var panning bool
	var textActive bool
	var textBuf string
	var textAnchor image.Point
	var message string
	var messageUntil time.Time
	var quit bool

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			drawFrame(ctx, s, w, st)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
		}
	}()

	flash := func(format string, args ...any) {
		message = fmt.Sprintf(format, args...)
		log.Print(message)
		messageUntil = time.Now().Add(2 * time.Second)
	}

	keyboardAction = map[KeyShortcut]string{}
	actions := map[string]func(){}
	register := func(name string, keys KeyboardShortcuts, fn func()) {
		actions[name] = fn
		if keys != nil {
			for _, sc := range keys.KeyboardShortcuts() {
				keyboardAction[sc] = name
			}
		}
	}

	register("copy", shortcutList{{Rune: 'c', Modifiers: key.ModControl}}, func() {
		flat := render.Flatten(rgba, e.store.Annotations())
		if err := clipboard.WriteImage(flat); err != nil {
			log.Printf("copy: %v", err)
			return
		}
		flash("image copied to clipboard")
	})

	register("save", shortcutList{{Rune: 's', Modifiers: key.ModControl}}, func() {
		flat := render.Flatten(rgba, e.store.Annotations())
		out, err := os.Create(output)
		if err != nil {
			log.Printf("save: %v", err)
			return
		}
		if err := png.Encode(out, flat); err != nil {
			log.Printf("save: %v", err)
			if cerr := out.Close(); cerr != nil {
				log.Printf("save: closing file: %v", cerr)
			}
			return
		}
		if err := out.Close(); err != nil {
			log.Printf("save: closing file: %v", err)
			return
		}
		flash("saved %s", output)
	})

	register("undo", shortcutList{{Rune: 'z', Modifiers: key.ModControl}}, func() {
		if e.session.Active() {
			e.session.Cancel()
			textActive = false
			return
		}
		if !e.store.Undo() {
			flash("nothing to undo")
			return
		}
		selID = ""
	})

	register("redo", shortcutList{
		{Rune: 'y', Modifiers: key.ModControl},
		{Rune: 'z', Modifiers: key.ModControl | key.ModShift},
	}, func() {
		if !e.store.Redo() {
			flash("nothing to redo")
			return
		}
		selID = ""
	})

	register("remove", shortcutList{{Code: key.CodeDeleteForward}}, func() {
		if selID == "" {
			return
		}
		e.store.Remove(selID)
		selID = ""
	})

	register("clear", shortcutList{{Rune: 'l', Modifiers: key.ModControl}}, func() {
		if e.store.Len() == 0 {
			return
		}
		e.store.ClearAll()
		selID = ""
		flash("cleared annotations")
	})

	register("textdone", nil, func() {
		if !textActive {
			return
		}
		e.session.SetText(textBuf)
		if _, ok := e.session.End(textAnchor); !ok {
			flash("empty text discarded")
		}
		textActive = false
		textBuf = ""
	})

	register("textcancel", nil, func() {
		e.session.Cancel()
		textActive = false
		textBuf = ""
	})

	register("quit", nil, func() { quit = true })

	handleShortcut := func(action string) {
		if fn, ok := actions[action]; ok {
			fn()
		}
		w.Send(paint.Event{})
	}

	runeTool := map[rune]annotate.Tool{}
	for t, r := range toolKeys {
		runeTool[r] = t
	}

	setStyle := func(mutate func(*annotate.Style)) {
		mutate(&e.style)
	}

	for {
		if quit {
			break
		}
		ev := w.NextEvent()
		switch ev := ev.(type) {
		case lifecycle.Event:
			if ev.To == lifecycle.StageDead {
				paintMu.Lock()
				if paintCancel != nil {
					paintCancel()
				}
				paintMu.Unlock()
				return
			}
		case size.Event:
			width = ev.WidthPx
			height = ev.HeightPx
			w.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil {
				if dropCount < frameDropThreshold {
					paintCancel()
					dropCount++
				}
			}
			paintMu.Unlock()

			st := paintState{
				width:          width,
				height:         height,
				img:            rgba,
				zoom:           zoom,
				offset:         offset,
				tool:           e.tool,
				style:          e.style,
				colorIdx:       colorIdx,
				annotations:    snapshotAnnotations(e.store),
				textActive:     textActive,
				message:        message,
				messageUntil:   messageUntil,
				handleShortcut: handleShortcut,
			}
			if cand, ok := e.session.Candidate(); ok {
				st.cand = cand
				st.hasCand = true
			}
			if selID != "" {
				if sel, ok := e.store.Find(selID); ok {
					st.selection = sel
					st.hasSelection = true
					st.dragDelta = dragDelta
				} else {
					selID = ""
				}
			}
			select {
			case paintCh <- st:
			default:
				<-paintCh
				paintCh <- st
			}
		case mouse.Event:
			if message != "" && time.Now().Before(messageUntil) && ev.Direction == mouse.DirPress {
				messageUntil = time.Time{}
				w.Send(paint.Event{})
				continue
			}
			if int(ev.Y) >= height-bottomHeight {
				p := image.Point{int(ev.X), int(ev.Y)}
				hoverShortcut = -1
				for i, sc := range shortcutRects {
					if p.In(sc.rect) {
						hoverShortcut = i
						if ev.Button == mouse.ButtonLeft && ev.Direction == mouse.DirPress {
							sc.Activate()
						}
						break
					}
				}
				if ev.Direction == mouse.DirNone {
					w.Send(paint.Event{})
				}
				continue
			}
			if int(ev.X) < toolbarWidth && int(ev.Y) >= headerHeight {
				e.handleToolbarMouse(ev, &colorIdx, setStyle, w)
				continue
			}
			if int(ev.Y) < headerHeight {
				continue
			}

			base := imageRect(rgba, zoom)
			mx := int((float64(ev.X)-float64(base.Min.X))/zoom) - offset.X
			my := int((float64(ev.Y)-float64(base.Min.Y))/zoom) - offset.Y
			pt := image.Pt(mx, my)

			if ev.Button == mouse.ButtonLeft && ev.Direction == mouse.DirPress {
				switch e.tool {
				case annotate.ToolSelect:
					if hit, ok := e.store.HitTest(pt); ok {
						selID = hit.ID
						dragging = true
						dragStart = pt
						dragDelta = image.Point{}
					} else {
						selID = ""
					}
					w.Send(paint.Event{})
				case annotate.ToolMove:
					panning = true
					panStart = image.Pt(int(ev.X), int(ev.Y))
					panOrigin = offset
				case annotate.ToolText:
					if textActive {
						e.session.Cancel()
					}
					e.session.Begin(e.tool, e.style, pt)
					textActive = e.session.Active()
					textBuf = ""
					textAnchor = pt
					w.Send(paint.Event{})
				default:
					e.session.Begin(e.tool, e.style, pt)
					w.Send(paint.Event{})
				}
				continue
			}

			if ev.Direction == mouse.DirNone {
				moved := false
				if e.session.Active() && !textActive {
					e.session.Move(pt)
					moved = true
				}
				if dragging {
					dragDelta = pt.Sub(dragStart)
					moved = true
				}
				if panning {
					dx := int(float64(int(ev.X)-panStart.X) / zoom)
					dy := int(float64(int(ev.Y)-panStart.Y) / zoom)
					offset = panOrigin.Add(image.Pt(dx, dy))
					moved = true
				}
				if moved {
					w.Send(paint.Event{})
				}
				continue
			}

			if ev.Button == mouse.ButtonLeft && ev.Direction == mouse.DirRelease {
				if panning {
					panning = false
					continue
				}
				if dragging {
					dragging = false
					if selID != "" && dragDelta != (image.Point{}) {
						if sel, ok := e.store.Find(selID); ok {
							e.store.Update(selID, sel.Translate(dragDelta))
						}
					}
					dragDelta = image.Point{}
					w.Send(paint.Event{})
					continue
				}
				if textActive {
					// The text gesture stays open until Enter or Escape.
					continue
				}
				if e.session.Active() {
					e.session.End(pt)
					w.Send(paint.Event{})
				}
			}
		case key.Event:
			if ev.Direction != key.DirPress {
				continue
			}
			if textActive {
				switch ev.Code {
				case key.CodeReturnEnter:
					handleShortcut("textdone")
					continue
				case key.CodeEscape:
					handleShortcut("textcancel")
					continue
				case key.CodeDeleteBackspace:
					if len(textBuf) > 0 {
						textBuf = textBuf[:len(textBuf)-1]
						e.session.SetText(textBuf)
						w.Send(paint.Event{})
					}
					continue
				}
				if ev.Rune > 0 {
					textBuf += string(ev.Rune)
					e.session.SetText(textBuf)
					w.Send(paint.Event{})
				}
				continue
			}
			ks := KeyShortcut{Rune: unicode.ToLower(ev.Rune), Code: ev.Code, Modifiers: ev.Modifiers}
			if action, ok := keyboardAction[ks]; ok {
				handleShortcut(action)
				continue
			}
			if ev.Modifiers == 0 {
				if t, ok := runeTool[unicode.ToLower(ev.Rune)]; ok {
					if e.session.Active() {
						e.session.Cancel()
					}
					e.tool = t
					w.Send(paint.Event{})
					continue
				}
			}
			switch ev.Rune {
			case 'q', 'Q':
				paintMu.Lock()
				if paintCancel != nil {
					paintCancel()
				}
				paintMu.Unlock()
				return
			case '+', '=':
				zoom *= 1.25
				if zoom > 8 {
					zoom = 8
				}
				w.Send(paint.Event{})
			case '-':
				zoom /= 1.25
				if zoom < 0.1 {
					zoom = 0.1
				}
				w.Send(paint.Event{})
			case -1:
				switch ev.Code {
				case key.CodeEscape:
					if e.session.Active() {
						e.session.Cancel()
					}
					selID = ""
					w.Send(paint.Event{})
				case key.CodeDeleteBackspace:
					if selID != "" {
						handleShortcut("remove")
					}
				case key.CodeLeftArrow:
					offset.X -= 10
					w.Send(paint.Event{})
				case key.CodeRightArrow:
					offset.X += 10
					w.Send(paint.Event{})
				case key.CodeUpArrow:
					offset.Y -= 10
					w.Send(paint.Event{})
				case key.CodeDownArrow:
					offset.Y += 10
					w.Send(paint.Event{})
				}
			}
		}
	}

	paintMu.Lock()
	if paintCancel != nil {
		paintCancel()
	}
	paintMu.Unlock()
}

// handleToolbarMouse resolves clicks and hovers inside the left toolbar,
// mirroring the layout math of drawToolbar.
func (e *Editor) handleToolbarMouse(ev mouse.Event, colorIdx *int, setStyle func(func(*annotate.Style)), w screen.Window) {
	press := ev.Button == mouse.ButtonLeft && ev.Direction == mouse.DirPress
	hover := ev.Direction == mouse.DirNone

	hoverTool = -1
	hoverPalette = -1
	hoverWidth = -1
	hoverShape = -1
	hoverFontSize = -1

	repaint := func() {
		if press || hover {
			w.Send(paint.Event{})
		}
	}

	pos := int(ev.Y) - headerHeight
	if idx := pos / buttonHeight; idx < len(toolButtons) {
		if press {
			toolButtons[idx].Activate()
		}
		hoverTool = idx
		repaint()
		return
	}
	pos -= len(toolButtons) * buttonHeight
	pos -= 4

	cols := paletteCols()
	paletteHeight := paletteRows() * 18
	if pos >= 0 && pos < paletteHeight {
		colX := (int(ev.X) - 4) / 18
		cidx := (pos/18)*cols + colX
		if colX >= 0 && colX < cols && cidx < paletteLen() {
			if press {
				*colorIdx = cidx
				setStyle(func(st *annotate.Style) { st.Color = paletteColorAt(cidx) })
			}
			hoverPalette = cidx
			repaint()
			return
		}
	}
	pos -= paletteHeight
	pos -= 4

	if widthTool(e.tool) {
		if widx := pos / 16; pos >= 0 && widx < len(widthOptions) {
			if press {
				setStyle(func(st *annotate.Style) { st.Width = widthOptions[widx] })
			}
			hoverWidth = widx
			repaint()
			return
		}
		pos -= len(widthOptions) * 16
		pos -= 4
	}

	if e.tool == annotate.ToolShape {
		if sidx := pos / 16; pos >= 0 && sidx < len(shapeOptions) {
			if press {
				setStyle(func(st *annotate.Style) { st.Shape = shapeOptions[sidx] })
			}
			hoverShape = sidx
			repaint()
			return
		}
	}

	if e.tool == annotate.ToolText {
		if fidx := pos / 16; pos >= 0 && fidx < len(fontSizeOptions) {
			if press {
				setStyle(func(st *annotate.Style) { st.FontSize = fontSizeOptions[fidx] })
			}
			hoverFontSize = fidx
			repaint()
			return
		}
	}

	repaint()
}

// toolbarContentHeight is the minimum window height that keeps every
// toolbar section visible.
func toolbarContentHeight() int {
	h := headerHeight + len(annotate.Tools())*buttonHeight
	h += 4 + paletteRows()*18
	h += 4 + len(widthOptions)*16
	h += 4 + len(fontSizeOptions)*16
	return h + bottomHeight
}
