package sparkline

import (
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"sync"
)

// Canvas is an in-memory Surface. Drawing happens on a back buffer;
// Present publishes it for Image and EncodePNG.
type Canvas struct {
	mu sync.Mutex

	clientW, clientH float64
	ratio            float64

	back  *image.RGBA
	front *image.RGBA
	gc    *drawing.RasterGraphicContext

	path      [][]Point
	lineWidth float64
	stroke    color.Color
	shadow    color.Color
	blur      float64
}

func NewCanvas(clientW, clientH int, ratio float64) *Canvas {
	c := &Canvas{
		clientW:   float64(clientW),
		clientH:   float64(clientH),
		ratio:     ratio,
		lineWidth: 1,
		stroke:    color.Black,
		shadow:    color.Transparent,
	}
	c.resize(int(c.clientW*ratio), int(c.clientH*ratio))
	c.front = c.back
	return c
}

func (c *Canvas) ClientSize() (float64, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clientW, c.clientH
}

func (c *Canvas) PixelRatio() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ratio
}

func (c *Canvas) Resize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resize(width, height)
}

func (c *Canvas) resize(width, height int) {
	c.back = image.NewRGBA(image.Rect(0, 0, max(width, 1), max(height, 1)))
	c.path = nil
	gc, err := drawing.NewRasterGraphicContext(c.back)
	if err != nil {
		c.gc = nil
		return
	}
	c.gc = gc
}

func (c *Canvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	draw.Draw(c.back, c.back.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

func (c *Canvas) BeginPath() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.path = nil
}

func (c *Canvas) MoveTo(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.path = append(c.path, []Point{{X: x, Y: y}})
}

func (c *Canvas) LineTo(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.path) == 0 {
		c.path = append(c.path, []Point{{X: x, Y: y}})
		return
	}
	last := len(c.path) - 1
	c.path[last] = append(c.path[last], Point{X: x, Y: y})
}

func (c *Canvas) SetLineWidth(width float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lineWidth = width
}

func (c *Canvas) SetStrokeColor(col color.Color) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stroke = col
}

func (c *Canvas) SetShadow(col color.Color, blur float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shadow = col
	c.blur = blur
}

// Stroke draws the current path. With a shadow set, the path is first
// traced on a separate layer in the shadow colour, blurred and composited
// underneath the line.
func (c *Canvas) Stroke() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.blur > 0 && c.shadow != nil {
		if _, _, _, a := c.shadow.RGBA(); a > 0 {
			layer := image.NewRGBA(c.back.Bounds())
			if gc, err := drawing.NewRasterGraphicContext(layer); err == nil {
				c.trace(gc, c.shadow)
				// A canvas shadowBlur of b corresponds to a gaussian sigma of b/2.
				glow := imaging.Blur(layer, c.blur/2)
				draw.Draw(c.back, c.back.Bounds(), glow, image.Point{}, draw.Over)
			}
		}
	}
	if c.gc != nil {
		c.trace(c.gc, c.stroke)
	}
}

func (c *Canvas) trace(gc *drawing.RasterGraphicContext, col color.Color) {
	gc.SetStrokeColor(col)
	gc.SetLineWidth(c.lineWidth)
	gc.BeginPath()
	for _, sub := range c.path {
		for i, p := range sub {
			if i == 0 {
				gc.MoveTo(p.X, p.Y)
				continue
			}
			gc.LineTo(p.X, p.Y)
		}
	}
	gc.Stroke()
}

// Present publishes a copy of the back buffer.
func (c *Canvas) Present() {
	c.mu.Lock()
	defer c.mu.Unlock()
	frame := image.NewRGBA(c.back.Bounds())
	copy(frame.Pix, c.back.Pix)
	c.front = frame
}

// Image returns the last presented frame.
func (c *Canvas) Image() image.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.front
}

func (c *Canvas) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, c.Image()); err != nil {
		return errors.Wrap(err, "encode sparkline png")
	}
	return nil
}
