package annotate

import "fmt"

// Tool identifies the drawing mode that produced an annotation. The set is
// closed; adding a variant requires a row in toolTable.
type Tool int

const (
	ToolSelect Tool = iota
	ToolPen
	ToolHighlighter
	ToolEraser
	ToolLine
	ToolArrow
	ToolShape
	ToolText
	ToolBlur
	ToolSpotlight
	ToolCallout
	ToolCrop
	ToolFill
	ToolMagicWand
	ToolMagnify
	ToolMove
	ToolCutOut
	ToolStamp
	ToolStep

	toolCount
)

// Gesture classifies how a tool accumulates geometry during a drag.
type Gesture int

const (
	// GestureNone marks tools that never build a candidate (select, move).
	GestureNone Gesture = iota
	// GestureFreehand appends every intermediate point to a polyline.
	GestureFreehand
	// GestureTwoPoint keeps exactly [start, current].
	GestureTwoPoint
	// GestureRect tracks the normalized bounding box of start and current.
	GestureRect
	// GestureTap commits a default-sized rect from a single tap.
	GestureTap
)

// HitKind selects the spatial query used when hit-testing a tool's geometry.
type HitKind int

const (
	HitNone HitKind = iota
	HitRect
	HitSegment
	HitPoints
)

// ToolInfo is the per-tool policy row consulted by the session, renderer,
// hit-tester and admission test so tool behavior lives in one table rather
// than parallel switches.
type ToolInfo struct {
	Name    string
	Gesture Gesture
	Hit     HitKind
	// MinSize is the admission threshold: minimum endpoint distance for
	// two-point tools, minimum width and height for rect tools.
	MinSize int
	// TapSize is the default rect extent for tap tools.
	TapSize  int
	ArrowEnd bool
}

var toolTable = [toolCount]ToolInfo{
	ToolSelect:      {Name: "select", Gesture: GestureNone, Hit: HitNone},
	ToolPen:         {Name: "pen", Gesture: GestureFreehand, Hit: HitPoints},
	ToolHighlighter: {Name: "highlighter", Gesture: GestureFreehand, Hit: HitPoints},
	ToolEraser:      {Name: "eraser", Gesture: GestureFreehand, Hit: HitPoints},
	ToolLine:        {Name: "line", Gesture: GestureTwoPoint, Hit: HitSegment, MinSize: 5},
	ToolArrow:       {Name: "arrow", Gesture: GestureTwoPoint, Hit: HitSegment, MinSize: 5, ArrowEnd: true},
	ToolShape:       {Name: "shape", Gesture: GestureRect, Hit: HitRect, MinSize: 5},
	ToolText:        {Name: "text", Gesture: GestureTap, Hit: HitRect, TapSize: 160},
	ToolBlur:        {Name: "blur", Gesture: GestureRect, Hit: HitRect, MinSize: 5},
	ToolSpotlight:   {Name: "spotlight", Gesture: GestureRect, Hit: HitRect, MinSize: 5},
	ToolCallout:     {Name: "callout", Gesture: GestureRect, Hit: HitRect, MinSize: 5},
	ToolCrop:        {Name: "crop", Gesture: GestureRect, Hit: HitRect, MinSize: 5},
	ToolFill:        {Name: "fill", Gesture: GestureRect, Hit: HitNone, MinSize: 5},
	ToolMagicWand:   {Name: "magicwand", Gesture: GestureRect, Hit: HitNone, MinSize: 5},
	ToolMagnify:     {Name: "magnify", Gesture: GestureRect, Hit: HitNone, MinSize: 5},
	ToolMove:        {Name: "move", Gesture: GestureNone, Hit: HitNone},
	ToolCutOut:      {Name: "cutout", Gesture: GestureRect, Hit: HitNone, MinSize: 5},
	ToolStamp:       {Name: "stamp", Gesture: GestureTap, Hit: HitRect, TapSize: 32},
	ToolStep:        {Name: "step", Gesture: GestureTap, Hit: HitRect, TapSize: 28},
}

// Info returns the policy row for t. Unknown tools yield a zero row with
// GestureNone, so they never build or match anything.
func (t Tool) Info() ToolInfo {
	if !t.Valid() {
		return ToolInfo{Name: "invalid"}
	}
	return toolTable[t]
}

// Valid reports whether t is one of the defined tool variants.
func (t Tool) Valid() bool { return t >= 0 && t < toolCount }

func (t Tool) String() string { return t.Info().Name }

// ParseTool resolves a tool name as emitted by Tool.String.
func ParseTool(name string) (Tool, error) {
	for t := Tool(0); t < toolCount; t++ {
		if toolTable[t].Name == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown tool %q", name)
}

// Tools returns all tool variants in declaration order.
func Tools() []Tool {
	out := make([]Tool, toolCount)
	for i := range out {
		out[i] = Tool(i)
	}
	return out
}

// ShapeKind selects the outline drawn by the shape tool.
type ShapeKind int

const (
	ShapeRectangle ShapeKind = iota
	ShapeEllipse
	ShapeRounded
)

var shapeNames = [...]string{"rectangle", "ellipse", "rounded"}

func (k ShapeKind) String() string {
	if k < 0 || int(k) >= len(shapeNames) {
		return "invalid"
	}
	return shapeNames[k]
}

// ParseShapeKind resolves a shape name as emitted by ShapeKind.String.
func ParseShapeKind(name string) (ShapeKind, error) {
	for i, n := range shapeNames {
		if n == name {
			return ShapeKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown shape %q", name)
}
