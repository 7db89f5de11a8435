package annotate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"
)

// The snapshot codec encodes a committed annotation list as newline
// delimited JSON, one record per annotation. Color and rect values travel
// as opaque strings so the record shape stays stable if their in-memory
// representation changes. Decoding is fail-soft: a record that does not
// decode is dropped and counted rather than failing the whole snapshot.

type record struct {
	ID         string  `json:"id"`
	Tool       string  `json:"tool"`
	Color      string  `json:"color"`
	Width      int     `json:"width"`
	Opacity    float64 `json:"opacity"`
	FontSize   float64 `json:"font_size,omitempty"`
	Shape      string  `json:"shape,omitempty"`
	Filled     bool    `json:"filled,omitempty"`
	BlurRadius int     `json:"blur_radius,omitempty"`
	ArrowHead  bool    `json:"arrow_head,omitempty"`
	ArrowTail  bool    `json:"arrow_tail,omitempty"`
	Rect       string  `json:"rect,omitempty"`
	Points     []int   `json:"points,omitempty"`
	Text       string  `json:"text,omitempty"`
	Step       int     `json:"step,omitempty"`
}

// EncodeRecord serializes one annotation to a single-line JSON record.
func EncodeRecord(a Annotation) []byte {
	rec := record{
		ID:         a.ID,
		Tool:       a.Tool.String(),
		Color:      encodeColor(a.Style.Color),
		Width:      a.Style.Width,
		Opacity:    a.Style.Opacity,
		FontSize:   a.Style.FontSize,
		Shape:      a.Style.Shape.String(),
		Filled:     a.Style.Filled,
		BlurRadius: a.Style.BlurRadius,
		ArrowHead:  a.Style.ArrowHead,
		ArrowTail:  a.Style.ArrowTail,
		Text:       a.Text,
		Step:       a.Step,
	}
	if a.Rect != (image.Rectangle{}) {
		rec.Rect = encodeRect(a.Rect)
	}
	if len(a.Points) > 0 {
		rec.Points = make([]int, 0, 2*len(a.Points))
		for _, p := range a.Points {
			rec.Points = append(rec.Points, p.X, p.Y)
		}
	}
	out, err := json.Marshal(rec)
	if err != nil {
		// A record is a plain struct of scalars; Marshal cannot fail.
		panic(err)
	}
	return out
}

// DecodeRecord restores one annotation from its JSON record.
func DecodeRecord(data []byte) (Annotation, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Annotation{}, fmt.Errorf("decode record: %w", err)
	}
	if rec.ID == "" {
		return Annotation{}, fmt.Errorf("decode record: missing id")
	}
	tool, err := ParseTool(rec.Tool)
	if err != nil {
		return Annotation{}, fmt.Errorf("decode record %s: %w", rec.ID, err)
	}
	col, err := decodeColor(rec.Color)
	if err != nil {
		return Annotation{}, fmt.Errorf("decode record %s: %w", rec.ID, err)
	}
	a := Annotation{
		ID:   rec.ID,
		Tool: tool,
		Style: Style{
			Color:      col,
			Width:      rec.Width,
			Opacity:    rec.Opacity,
			FontSize:   rec.FontSize,
			Filled:     rec.Filled,
			BlurRadius: rec.BlurRadius,
			ArrowHead:  rec.ArrowHead,
			ArrowTail:  rec.ArrowTail,
		},
		Text:      rec.Text,
		Step:      rec.Step,
		Completed: true,
	}
	if rec.Shape != "" {
		shape, err := ParseShapeKind(rec.Shape)
		if err != nil {
			return Annotation{}, fmt.Errorf("decode record %s: %w", rec.ID, err)
		}
		a.Style.Shape = shape
	}
	if rec.Rect != "" {
		r, err := decodeRect(rec.Rect)
		if err != nil {
			return Annotation{}, fmt.Errorf("decode record %s: %w", rec.ID, err)
		}
		a.Rect = r
	}
	if len(rec.Points)%2 != 0 {
		return Annotation{}, fmt.Errorf("decode record %s: odd point list", rec.ID)
	}
	if len(rec.Points) > 0 {
		a.Points = make([]image.Point, 0, len(rec.Points)/2)
		for i := 0; i < len(rec.Points); i += 2 {
			a.Points = append(a.Points, image.Pt(rec.Points[i], rec.Points[i+1]))
		}
	}
	return a, nil
}

// Encode serializes the list to a snapshot, preserving order.
func Encode(annotations []Annotation) []byte {
	var buf bytes.Buffer
	for i := range annotations {
		buf.Write(EncodeRecord(annotations[i]))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// Decode restores a snapshot. Undecodable records are skipped; dropped
// reports how many were lost so the caller can choose to surface it.
func Decode(data []byte) (annotations []Annotation, dropped int) {
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		a, err := DecodeRecord(line)
		if err != nil {
			dropped++
			continue
		}
		annotations = append(annotations, a)
	}
	return annotations, dropped
}

func encodeColor(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

func decodeColor(s string) (color.RGBA, error) {
	spec := strings.TrimSpace(s)
	if !strings.HasPrefix(spec, "#") || (len(spec) != 7 && len(spec) != 9) {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	var vals [4]uint8
	vals[3] = 255
	for i := 0; i*2+3 <= len(spec); i++ {
		v, err := strconv.ParseUint(spec[1+2*i:3+2*i], 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid color %q", s)
		}
		vals[i] = uint8(v)
	}
	return color.RGBA{vals[0], vals[1], vals[2], vals[3]}, nil
}

func encodeRect(r image.Rectangle) string {
	return fmt.Sprintf("%d,%d,%d,%d", r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
}

func decodeRect(s string) (image.Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("invalid rect %q", s)
	}
	var vals [4]int
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("invalid rect %q", s)
		}
		vals[i] = v
	}
	return image.Rect(vals[0], vals[1], vals[2], vals[3]), nil
}
