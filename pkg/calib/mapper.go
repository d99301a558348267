package calib

import (
	"fmt"
	"sync"

	"github.com/itohio/gotouch/pkg/touch"
)

// Rotation is the mounting orientation of the panel. The logical origin is
// always the top-left corner as seen by the viewer.
type Rotation int

const (
	Rotation0 Rotation = iota // landscape, primary orientation
	Rotation1                 // portrait, one quarter turn
	Rotation2                 // landscape, inverted
	Rotation3                 // portrait, opposite quarter turn
)

// Valid reports whether r is one of the four supported orientations.
func (r Rotation) Valid() bool {
	return r >= Rotation0 && r <= Rotation3
}

// Map converts a raw sample into screen coordinates for a width x height
// panel: per-axis linear interpolation, clamping, then rotation.
func Map(raw touch.RawSample, p Profile, width, height int, rot Rotation) Point {
	x := linearMap(raw.X, p.Min.RawX, p.Max.RawX, p.Min.X, p.Max.X)
	y := linearMap(raw.Y, p.Min.RawY, p.Max.RawY, p.Min.Y, p.Max.Y)

	x = clamp(x, 0, width)
	y = clamp(y, 0, height)

	return Rotate(Point{X: x, Y: y}, width, height, rot)
}

// Rotate converts a point of the unrotated width x height panel into the
// logical coordinates of orientation rot.
func Rotate(p Point, width, height int, rot Rotation) Point {
	switch rot {
	case Rotation1:
		return Point{X: p.Y, Y: width - p.X}
	case Rotation2:
		return Point{X: width - p.X, Y: height - p.Y}
	case Rotation3:
		return Point{X: height - p.Y, Y: p.X}
	}
	return p
}

// linearMap interpolates v from [inMin, inMax] onto [outMin, outMax] with
// integer arithmetic truncating toward zero. Values outside the input
// range extrapolate.
func linearMap(v, inMin, inMax, outMin, outMax int) int {
	return (v-inMin)*(outMax-outMin)/(inMax-inMin) + outMin
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// TouchedAt reports whether p lies strictly inside the rectangle of
// half-size dx, dy centered on target.
func TouchedAt(p, target Point, dx, dy int) bool {
	return p.X > target.X-dx && p.X < target.X+dx &&
		p.Y > target.Y-dy && p.Y < target.Y+dy
}

// Mapper owns the active calibration profile and panel geometry.
type Mapper struct {
	mu       sync.RWMutex
	profile  Profile
	width    int
	height   int
	rotation Rotation
}

// NewMapper creates a mapper using DefaultProfile.
func NewMapper(width, height int, rot Rotation) *Mapper {
	return &Mapper{
		profile:  DefaultProfile(),
		width:    width,
		height:   height,
		rotation: rot,
	}
}

// Map converts a raw sample with the active profile.
func (m *Mapper) Map(raw touch.RawSample) Point {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Map(raw, m.profile, m.width, m.height, m.rotation)
}

// SetProfile installs p for all subsequent Map calls.
func (m *Mapper) SetProfile(p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profile = p
	return nil
}

// Profile returns the active profile.
func (m *Mapper) Profile() Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.profile
}

// Rotate converts an unrotated panel point, such as a calibration target,
// into logical coordinates.
func (m *Mapper) Rotate(p Point) Point {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Rotate(p, m.width, m.height, m.rotation)
}

// SetSize changes the unrotated panel size.
func (m *Mapper) SetSize(width, height int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.width, m.height = width, height
}

// SetRotation changes the mounting orientation.
func (m *Mapper) SetRotation(rot Rotation) error {
	if !rot.Valid() {
		return fmt.Errorf("invalid rotation %d", rot)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rotation = rot
	return nil
}

// Rotation returns the mounting orientation.
func (m *Mapper) Rotation() Rotation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rotation
}

// Size returns the logical screen size for the current rotation.
func (m *Mapper) Size() (width, height int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.rotation == Rotation1 || m.rotation == Rotation3 {
		return m.height, m.width
	}
	return m.width, m.height
}

// Unmap returns a raw sample that Map would place at p. Truncation in Map
// can move the result by one pixel.
func Unmap(p Point, prof Profile, width, height int, rot Rotation) touch.RawSample {
	x, y := p.X, p.Y
	switch rot {
	case Rotation1:
		x, y = width-p.Y, p.X
	case Rotation2:
		x, y = width-p.X, height-p.Y
	case Rotation3:
		x, y = p.Y, height-p.X
	}

	return touch.RawSample{
		X: linearMap(x, prof.Min.X, prof.Max.X, prof.Min.RawX, prof.Max.RawX),
		Y: linearMap(y, prof.Min.Y, prof.Max.Y, prof.Min.RawY, prof.Max.RawY),
	}
}

// Unmap inverts Map with the active profile.
func (m *Mapper) Unmap(p Point) touch.RawSample {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Unmap(p, m.profile, m.width, m.height, m.rotation)
}
