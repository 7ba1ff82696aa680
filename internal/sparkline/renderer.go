package sparkline

import (
	"github.com/wcharczuk/go-chart/v2/drawing"
	"image/color"
)

// Surface is a 2D raster target sized in logical (client) pixels.
type Surface interface {
	ClientSize() (width, height float64)
	PixelRatio() float64
	Resize(width, height int)
	Clear()
	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	SetLineWidth(width float64)
	SetStrokeColor(c color.Color)
	// SetShadow configures the blur applied to subsequent strokes; a zero
	// blur disables it.
	SetShadow(c color.Color, blur float64)
	Stroke()
}

// Presenter is implemented by surfaces that publish a finished frame.
type Presenter interface {
	Present()
}

// Style values are in logical pixels and get scaled by the pixel ratio.
type Style struct {
	Padding   float64
	LineWidth float64
	GlowBlur  float64
	Base      color.Color
	Glow      color.Color
}

var DefaultStyle = Style{
	Padding:   10,
	LineWidth: 2.2,
	GlowBlur:  12,
	Base:      drawing.Color{R: 255, G: 255, B: 255, A: 179},
	Glow:      drawing.Color{R: 34, G: 211, B: 238, A: 89},
}

// Renderer paints a series as a polyline with a glow. It keeps no state
// between paints.
type Renderer struct {
	surface Surface
	style   Style
}

func New(surface Surface) *Renderer {
	return NewWithStyle(surface, DefaultStyle)
}

func NewWithStyle(surface Surface, style Style) *Renderer {
	return &Renderer{surface: surface, style: style}
}

// Draw repaints the whole surface. Callers pass at least one value; an
// empty series leaves the surface untouched.
func (r *Renderer) Draw(values []float64) {
	if len(values) == 0 {
		return
	}
	s := r.surface

	ratio := s.PixelRatio()
	cw, ch := s.ClientSize()
	w, h := int(cw*ratio), int(ch*ratio)
	s.Resize(w, h)
	s.Clear()

	points := Layout(values, float64(w), float64(h), r.style.Padding*ratio)

	s.SetLineWidth(r.style.LineWidth * ratio)
	s.BeginPath()
	for i, p := range points {
		if i == 0 {
			s.MoveTo(p.X, p.Y)
			continue
		}
		s.LineTo(p.X, p.Y)
	}
	s.SetStrokeColor(r.style.Base)
	s.Stroke()

	s.SetShadow(r.style.Glow, r.style.GlowBlur*ratio)
	s.SetStrokeColor(r.style.Glow)
	s.Stroke()
	s.SetShadow(color.Transparent, 0)

	if p, ok := s.(Presenter); ok {
		p.Present()
	}
}
