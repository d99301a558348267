// Package pad provides a Fyne widget that mirrors the touch panel: the
// contact trail, calibration crosshairs and the last recognized gesture.
package pad

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/gotouch/pkg/calib"
	"github.com/itohio/gotouch/pkg/gesture"
)

// MaxTrail is the number of contacts kept for the trail.
const MaxTrail = 256

// TargetState is the drawing state of a calibration crosshair.
type TargetState int

const (
	TargetHidden TargetState = iota
	TargetSampling
	TargetDone
)

// Target is a calibration crosshair.
type Target struct {
	Point calib.Point
	State TargetState
}

var (
	_ desktop.Mouseable = (*PadWidget)(nil)
	_ fyne.Draggable    = (*PadWidget)(nil)
)

// PadWidget draws the touch panel in panel coordinates scaled to fit.
// With OnPress set, the mouse acts as a stylus on the panel.
type PadWidget struct {
	widget.BaseWidget

	OnPress   func(p calib.Point)
	OnRelease func()

	mu      sync.RWMutex
	width   int
	height  int
	trail   []calib.Point
	targets [2]Target
	last    gesture.Event
	status  string
}

// New creates a pad for a panel of the given logical size.
func New(width, height int) *PadWidget {
	p := &PadWidget{
		width:  width,
		height: height,
		trail:  make([]calib.Point, 0, MaxTrail),
	}
	p.ExtendBaseWidget(p)
	return p
}

// SetPanelSize changes the logical size, e.g. after a rotation change.
func (p *PadWidget) SetPanelSize(width, height int) {
	p.mu.Lock()
	p.width, p.height = width, height
	p.mu.Unlock()
	p.Refresh()
}

// AddContact appends a contact to the trail.
func (p *PadWidget) AddContact(pt calib.Point) {
	p.mu.Lock()
	if len(p.trail) == MaxTrail {
		copy(p.trail, p.trail[1:])
		p.trail = p.trail[:MaxTrail-1]
	}
	p.trail = append(p.trail, pt)
	p.mu.Unlock()
	p.Refresh()
}

// ShowGesture records ev as the last gesture and starts a new trail.
func (p *PadWidget) ShowGesture(ev gesture.Event) {
	p.mu.Lock()
	p.last = ev
	p.trail = p.trail[:0]
	p.mu.Unlock()
	p.Refresh()
}

// SetTarget updates one calibration crosshair.
func (p *PadWidget) SetTarget(index int, pt calib.Point, state TargetState) {
	if index < 0 || index >= len(p.targets) {
		return
	}
	p.mu.Lock()
	p.targets[index] = Target{Point: pt, State: state}
	p.mu.Unlock()
	p.Refresh()
}

// ClearTargets hides both crosshairs.
func (p *PadWidget) ClearTargets() {
	p.mu.Lock()
	p.targets = [2]Target{}
	p.mu.Unlock()
	p.Refresh()
}

// SetStatus sets the line of text shown under the gesture label.
func (p *PadWidget) SetStatus(s string) {
	p.mu.Lock()
	p.status = s
	p.mu.Unlock()
	p.Refresh()
}

// Clear drops the trail and the last gesture.
func (p *PadWidget) Clear() {
	p.mu.Lock()
	p.trail = p.trail[:0]
	p.last = gesture.Event{}
	p.mu.Unlock()
	p.Refresh()
}

// Trail returns a copy of the current trail.
func (p *PadWidget) Trail() []calib.Point {
	p.mu.RLock()
	defer p.mu.RUnlock()
	result := make([]calib.Point, len(p.trail))
	copy(result, p.trail)
	return result
}

// LastGesture returns the last gesture shown.
func (p *PadWidget) LastGesture() gesture.Event {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last
}

// MouseDown presses the stylus.
func (p *PadWidget) MouseDown(ev *desktop.MouseEvent) {
	p.press(ev.Position)
}

// MouseUp lifts the stylus.
func (p *PadWidget) MouseUp(*desktop.MouseEvent) {
	p.release()
}

// Dragged moves the pressed stylus.
func (p *PadWidget) Dragged(ev *fyne.DragEvent) {
	p.press(ev.Position)
}

// DragEnd lifts the stylus.
func (p *PadWidget) DragEnd() {
	p.release()
}

func (p *PadWidget) press(pos fyne.Position) {
	if p.OnPress == nil {
		return
	}
	p.mu.RLock()
	v := fit(p.width, p.height, p.Size())
	pt, ok := v.panel(pos, p.width, p.height)
	p.mu.RUnlock()
	if ok {
		p.OnPress(pt)
	}
}

func (p *PadWidget) release() {
	if p.OnRelease != nil {
		p.OnRelease()
	}
}

// CreateRenderer creates the widget renderer.
func (p *PadWidget) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255})
	return &padRenderer{
		pad:     p,
		bg:      bg,
		objects: []fyne.CanvasObject{bg},
	}
}
