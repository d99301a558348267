package pad

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/chewxy/math32"

	"github.com/itohio/gotouch/pkg/calib"
	"github.com/itohio/gotouch/pkg/gesture"
)

const (
	gridStep      = 20 // panel pixels
	crosshairSize = 10 // panel pixels
	margin        = 10
)

var (
	gridColor     = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	borderColor   = color.RGBA{R: 90, G: 90, B: 90, A: 255}
	trailColor    = color.RGBA{R: 255, G: 165, B: 0, A: 255}
	samplingColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	doneColor     = color.RGBA{R: 0, G: 200, B: 0, A: 255}
	textColor     = color.RGBA{R: 150, G: 150, B: 150, A: 255}
)

// viewport maps panel coordinates onto the widget, preserving aspect ratio.
type viewport struct {
	scale      float32
	offX, offY float32
}

// fit centers a width x height panel inside size.
func fit(width, height int, size fyne.Size) viewport {
	if width <= 0 || height <= 0 {
		return viewport{}
	}
	availW := size.Width - 2*margin
	availH := size.Height - 2*margin
	scale := math32.Max(0, math32.Min(availW/float32(width), availH/float32(height)))
	return viewport{
		scale: scale,
		offX:  (size.Width - scale*float32(width)) / 2,
		offY:  (size.Height - scale*float32(height)) / 2,
	}
}

func (v viewport) pos(x, y int) fyne.Position {
	return fyne.NewPos(v.offX+float32(x)*v.scale, v.offY+float32(y)*v.scale)
}

// panel converts a widget position to panel coordinates. It reports false
// outside the panel.
func (v viewport) panel(pos fyne.Position, width, height int) (calib.Point, bool) {
	if v.scale <= 0 {
		return calib.Point{}, false
	}
	x := int(math32.Round((pos.X - v.offX) / v.scale))
	y := int(math32.Round((pos.Y - v.offY) / v.scale))
	if x < 0 || y < 0 || x > width || y > height {
		return calib.Point{}, false
	}
	return calib.Point{X: x, Y: y}, true
}

// padRenderer renders the pad widget.
type padRenderer struct {
	pad     *PadWidget
	bg      *canvas.Rectangle
	objects []fyne.CanvasObject
}

func (r *padRenderer) MinSize() fyne.Size {
	return fyne.NewSize(340, 260)
}

func (r *padRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.Refresh()
}

func (r *padRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *padRenderer) Destroy() {}

func (r *padRenderer) Refresh() {
	r.pad.mu.RLock()
	width, height := r.pad.width, r.pad.height
	trail := make([]calib.Point, len(r.pad.trail))
	copy(trail, r.pad.trail)
	targets := r.pad.targets
	last := r.pad.last
	status := r.pad.status
	r.pad.mu.RUnlock()

	size := r.pad.Size()
	r.objects = []fyne.CanvasObject{r.bg}
	if size.Width == 0 || size.Height == 0 {
		return
	}

	v := fit(width, height, size)
	r.drawGrid(v, width, height)
	r.drawTrail(v, trail)
	for _, t := range targets {
		r.drawCrosshair(v, t)
	}
	r.drawLabels(v, last, status)
}

func (r *padRenderer) line(c color.Color, width float32, a, b fyne.Position) {
	l := canvas.NewLine(c)
	l.StrokeWidth = width
	l.Position1 = a
	l.Position2 = b
	r.objects = append(r.objects, l)
}

func (r *padRenderer) drawGrid(v viewport, width, height int) {
	for x := 0; x <= width; x += gridStep {
		r.line(gridColor, 1, v.pos(x, 0), v.pos(x, height))
	}
	for y := 0; y <= height; y += gridStep {
		r.line(gridColor, 1, v.pos(0, y), v.pos(width, y))
	}

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = borderColor
	border.StrokeWidth = 1
	border.Move(v.pos(0, 0))
	border.Resize(fyne.NewSize(float32(width)*v.scale, float32(height)*v.scale))
	r.objects = append(r.objects, border)
}

func (r *padRenderer) drawTrail(v viewport, trail []calib.Point) {
	for i := 1; i < len(trail); i++ {
		r.line(trailColor, 2, v.pos(trail[i-1].X, trail[i-1].Y), v.pos(trail[i].X, trail[i].Y))
	}
	if len(trail) > 0 {
		end := trail[len(trail)-1]
		dot := canvas.NewCircle(trailColor)
		radius := math32.Max(3, 2*v.scale)
		center := v.pos(end.X, end.Y)
		dot.Move(fyne.NewPos(center.X-radius, center.Y-radius))
		dot.Resize(fyne.NewSize(2*radius, 2*radius))
		r.objects = append(r.objects, dot)
	}
}

func (r *padRenderer) drawCrosshair(v viewport, t Target) {
	var c color.Color
	switch t.State {
	case TargetSampling:
		c = samplingColor
	case TargetDone:
		c = doneColor
	default:
		return
	}
	p := t.Point
	r.line(c, 1, v.pos(p.X-crosshairSize, p.Y), v.pos(p.X+crosshairSize, p.Y))
	r.line(c, 1, v.pos(p.X, p.Y-crosshairSize), v.pos(p.X, p.Y+crosshairSize))
}

func (r *padRenderer) drawLabels(v viewport, last gesture.Event, status string) {
	if last.Kind != gesture.None {
		text := canvas.NewText(label(last), textColor)
		text.TextSize = 14
		text.Move(fyne.NewPos(v.offX+4, v.offY+2))
		r.objects = append(r.objects, text)
	}
	if status != "" {
		text := canvas.NewText(status, textColor)
		text.TextSize = 12
		text.Move(fyne.NewPos(v.offX+4, v.offY+20))
		r.objects = append(r.objects, text)
	}
}

// label is the text shown for a gesture.
func label(ev gesture.Event) string {
	var name string
	switch ev.Kind {
	case gesture.ShortTouch:
		name = "Short touch"
	case gesture.LongTouch:
		name = "Long touch"
	case gesture.SwipeRight:
		name = "Swipe right"
	case gesture.SwipeUp:
		name = "Swipe up"
	case gesture.SwipeLeft:
		name = "Swipe left"
	case gesture.SwipeDown:
		name = "Swipe down"
	default:
		return ""
	}
	return fmt.Sprintf("%s  x=%d y=%d", name, ev.X, ev.Y)
}
