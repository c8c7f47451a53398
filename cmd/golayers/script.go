// script.go - Replays recorded editor interactions from YAML.
package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/xob0t/GoLayers/pkg/editor"
	"github.com/xob0t/GoLayers/pkg/interact"
	"github.com/xob0t/GoLayers/pkg/layer"
)

// Script is an ordered list of editor steps.
type Script struct {
	Steps []Step `yaml:"steps"`
}

// Step is one user action. Which fields apply depends on Action.
// ID selects the target layer: empty means the current selection, "$last"
// means the layer most recently added by the script.
type Step struct {
	Action  string      `yaml:"action"`
	X       float64     `yaml:"x"`
	Y       float64     `yaml:"y"`
	ID      string      `yaml:"id"`
	Text    string      `yaml:"text"`
	Shape   string      `yaml:"shape"`
	URL     string      `yaml:"url"`
	Content *string     `yaml:"content"`
	Box     *BoxStep    `yaml:"geometry"`
	Style   *StyleStep  `yaml:"style"`
	Canvas  *CanvasStep `yaml:"settings"`
}

// BoxStep sets layer geometry in percent.
type BoxStep struct {
	X      *float64 `yaml:"x"`
	Y      *float64 `yaml:"y"`
	Width  *float64 `yaml:"width"`
	Height *float64 `yaml:"height"`
}

// StyleStep overrides style fields.
type StyleStep struct {
	FontSize        float64  `yaml:"font_size"`
	FontFamily      string   `yaml:"font_family"`
	Color           string   `yaml:"color"`
	FontWeight      string   `yaml:"font_weight"`
	BackgroundColor string   `yaml:"background_color"`
	BorderRadius    *float64 `yaml:"border_radius"`
	TextAlign       string   `yaml:"text_align"`
	Opacity         *float64 `yaml:"opacity"`
	ShapeType       string   `yaml:"shape_type"`
	ImageClip       string   `yaml:"image_clip"`
}

// CanvasStep overrides canvas settings.
type CanvasStep struct {
	BackgroundColor *string  `yaml:"background_color"`
	ImageShape      *string  `yaml:"image_shape"`
	LockAspect      *bool    `yaml:"lock_aspect"`
	Overlay         *bool    `yaml:"overlay"`
	OverlayColor    *string  `yaml:"overlay_color"`
	OverlayOpacity  *float64 `yaml:"overlay_opacity"`
}

// LoadScript reads a YAML script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc := &Script{}
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return sc, nil
}

// Apply runs every step against s. It stops at the first invalid step.
func (sc *Script) Apply(s *editor.Session) error {
	last := ""
	for i, st := range sc.Steps {
		id := st.ID
		switch id {
		case "":
			id = s.Selected()
		case "$last":
			id = last
		}

		switch st.Action {
		case "down":
			s.PointerDown(interact.Point{X: st.X, Y: st.Y})
		case "move":
			s.PointerMove(interact.Point{X: st.X, Y: st.Y})
		case "up":
			s.PointerUp()
		case "drag":
			// Shorthand: move the selection by (x, y) pixels in one gesture.
			drag(s, id, st.X, st.Y)
		case "select":
			s.Select(id)
		case "clear":
			s.ClearSelection()
		case "add_text":
			last = s.AddText(st.Text)
		case "add_shape":
			last = s.AddShape(st.Shape)
		case "add_image":
			if st.URL == "" {
				return fmt.Errorf("step %d: add_image needs url", i+1)
			}
			last = s.AddImage(st.URL)
		case "duplicate":
			last = s.Duplicate(id)
		case "delete":
			s.Delete(id)
		case "forward":
			s.BringForward(id)
		case "back":
			s.SendBack(id)
		case "hide":
			s.SetVisible(id, false)
		case "show":
			s.SetVisible(id, true)
		case "patch":
			s.Patch(id, st.patch())
		case "settings":
			if st.Canvas == nil {
				return fmt.Errorf("step %d: settings needs a settings block", i+1)
			}
			s.SetCanvas(st.Canvas.merge(s.Document().Canvas))
		case "undo":
			s.Undo()
		case "redo":
			s.Redo()
		default:
			return fmt.Errorf("step %d: unknown action %q", i+1, st.Action)
		}
	}
	return nil
}

// drag presses at the center of the layer, moves by (dx, dy) and releases.
func drag(s *editor.Session, id string, dx, dy float64) {
	l, ok := s.Document().Layers.Find(id)
	if !ok {
		return
	}
	doc := s.Document()
	c := interact.Corners(l, doc.Width, doc.Height)
	cx, cy := (c[0].X+c[3].X)/2, (c[0].Y+c[3].Y)/2
	s.PointerDown(interact.Point{X: cx, Y: cy})
	s.PointerMove(interact.Point{X: cx + dx, Y: cy + dy})
	s.PointerUp()
}

func (st Step) patch() layer.Patch {
	p := layer.Patch{Content: st.Content}
	if b := st.Box; b != nil {
		p.X, p.Y, p.Width, p.Height = b.X, b.Y, b.Width, b.Height
	}
	if st.URL != "" {
		url := st.URL
		p.ImageURL = &url
	}
	if ss := st.Style; ss != nil {
		p.Style = &layer.StylePatch{
			FontSize:        ss.FontSize,
			FontFamily:      ss.FontFamily,
			Color:           ss.Color,
			FontWeight:      ss.FontWeight,
			BackgroundColor: ss.BackgroundColor,
			BorderRadius:    ss.BorderRadius,
			TextAlign:       ss.TextAlign,
			Opacity:         ss.Opacity,
			ShapeType:       ss.ShapeType,
			ImageClip:       ss.ImageClip,
		}
	}
	return p
}

func (cs CanvasStep) merge(c layer.Canvas) layer.Canvas {
	if cs.BackgroundColor != nil {
		c.BackgroundColor = *cs.BackgroundColor
	}
	if cs.ImageShape != nil {
		c.ImageShape = *cs.ImageShape
	}
	if cs.LockAspect != nil {
		c.LockAspect = *cs.LockAspect
	}
	if cs.Overlay != nil {
		c.Overlay.Enabled = *cs.Overlay
	}
	if cs.OverlayColor != nil {
		c.Overlay.Color = *cs.OverlayColor
	}
	if cs.OverlayOpacity != nil {
		c.Overlay.Opacity = *cs.OverlayOpacity
	}
	return c
}
