package config

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/example/inkshot/internal/annotate"
)

// Parse reads configuration from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var currentSection string
	var currentPreset *Preset

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentSection = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			currentPreset = nil
			if name, ok := strings.CutPrefix(currentSection, "preset."); ok {
				currentPreset = defaultPreset(cfg, name)
				cfg.Presets[name] = currentPreset
			}
			continue
		}

		key, value, ok := splitKeyValue(line)
		if !ok {
			continue
		}

		switch {
		case currentPreset != nil:
			if err := applyPresetKey(currentPreset, key, value); err != nil {
				return nil, err
			}
		case currentSection == "defaults":
			if err := applyDefaultsKey(&cfg.Defaults, key, value); err != nil {
				return nil, err
			}
		case currentSection == "":
			switch key {
			case "save_dir":
				cfg.SaveDir = value
			case "undo_depth":
				n, err := strconv.Atoi(value)
				if err != nil || n < 1 {
					return nil, fmt.Errorf("invalid undo_depth %q", value)
				}
				cfg.UndoDepth = n
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// defaultPreset seeds a preset with the file's defaults so sparse sections
// only override what they name.
func defaultPreset(cfg *Config, name string) *Preset {
	st := cfg.Style()
	return &Preset{
		Name:       name,
		Color:      st.Color,
		Width:      st.Width,
		Opacity:    st.Opacity,
		FontSize:   st.FontSize,
		Shape:      st.Shape,
		BlurRadius: st.BlurRadius,
		ArrowHead:  st.ArrowHead,
	}
}

func splitKeyValue(line string) (key, value string, ok bool) {
	var parts []string
	if strings.Contains(line, "=") {
		parts = strings.SplitN(line, "=", 2)
	} else if strings.Contains(line, ":") {
		parts = strings.SplitN(line, ":", 2)
	} else {
		return "", "", false
	}
	key = strings.ToLower(strings.TrimSpace(parts[0]))
	value = strings.TrimSpace(parts[1])
	if strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") && len(value) >= 2 {
		value = value[1 : len(value)-1]
	}
	return key, value, true
}

func applyDefaultsKey(d *Defaults, key, value string) error {
	switch key {
	case "color":
		c, err := parseHex(value)
		if err != nil {
			return err
		}
		d.Color = c
	case "width":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid width %q", value)
		}
		d.Width = n
	case "opacity":
		f, err := parseUnitFloat(value)
		if err != nil {
			return err
		}
		d.Opacity = f
	case "font_size":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("invalid font_size %q", value)
		}
		d.FontSize = f
	case "blur_radius":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid blur_radius %q", value)
		}
		d.BlurRadius = n
	}
	return nil
}

func applyPresetKey(p *Preset, key, value string) error {
	switch key {
	case "color":
		c, err := parseHex(value)
		if err != nil {
			return err
		}
		p.Color = c
	case "width":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid width %q", value)
		}
		p.Width = n
	case "opacity":
		f, err := parseUnitFloat(value)
		if err != nil {
			return err
		}
		p.Opacity = f
	case "font_size":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("invalid font_size %q", value)
		}
		p.FontSize = f
	case "shape":
		k, err := annotate.ParseShapeKind(strings.ToLower(value))
		if err != nil {
			return err
		}
		p.Shape = k
	case "filled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid filled %q", value)
		}
		p.Filled = b
	case "blur_radius":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid blur_radius %q", value)
		}
		p.BlurRadius = n
	case "arrow_head":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid arrow_head %q", value)
		}
		p.ArrowHead = b
	case "arrow_tail":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid arrow_tail %q", value)
		}
		p.ArrowTail = b
	}
	return nil
}

func parseUnitFloat(value string) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f <= 0 || f > 1 {
		return 0, fmt.Errorf("invalid opacity %q", value)
	}
	return f, nil
}

func parseHex(value string) (color.RGBA, error) {
	spec := strings.TrimSpace(value)
	if !strings.HasPrefix(spec, "#") || (len(spec) != 7 && len(spec) != 9) {
		return color.RGBA{}, fmt.Errorf("invalid color %q", value)
	}
	var vals [4]uint8
	vals[3] = 255
	for i := 0; i*2+3 <= len(spec); i++ {
		v, err := strconv.ParseUint(spec[1+2*i:3+2*i], 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid color %q", value)
		}
		vals[i] = uint8(v)
	}
	return color.RGBA{vals[0], vals[1], vals[2], vals[3]}, nil
}
