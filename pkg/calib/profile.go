// Package calib maps raw touch samples to screen coordinates using a
// two-point linear calibration, and persists that calibration.
package calib

import (
	"errors"
	"fmt"
)

// ErrDegenerateProfile is returned for profiles whose reference points share
// a raw X or raw Y reading, which makes the linear mapping undefined.
var ErrDegenerateProfile = errors.New("calib: reference points must differ on both raw axes")

// Point is a position in screen coordinates.
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// ReferencePoint pairs a screen target with the averaged raw reading
// measured while the operator pressed it.
type ReferencePoint struct {
	X    int `json:"x" yaml:"x"`
	Y    int `json:"y" yaml:"y"`
	RawX int `json:"raw_x" yaml:"raw_x"`
	RawY int `json:"raw_y" yaml:"raw_y"`
	RawZ int `json:"raw_z,omitempty" yaml:"raw_z,omitempty"`
}

// Screen returns the screen target of the reference point.
func (r ReferencePoint) Screen() Point {
	return Point{X: r.X, Y: r.Y}
}

// Profile is a two-point calibration: Min and Max are opposite corners.
type Profile struct {
	Min ReferencePoint `json:"min" yaml:"min"`
	Max ReferencePoint `json:"max" yaml:"max"`
}

// DefaultProfile returns the factory calibration of a 320x240 panel in
// landscape orientation: targets 40/40 and 280/200.
func DefaultProfile() Profile {
	return Profile{
		Min: ReferencePoint{X: 40, Y: 40, RawX: 646, RawY: 1034},
		Max: ReferencePoint{X: 280, Y: 200, RawX: 3365, RawY: 3165},
	}
}

// Validate reports ErrDegenerateProfile if the profile cannot be interpolated.
func (p Profile) Validate() error {
	if p.Min.RawX == p.Max.RawX || p.Min.RawY == p.Max.RawY {
		return ErrDegenerateProfile
	}
	return nil
}

// Describe renders the profile for logs and consoles.
func Describe(p Profile) string {
	return fmt.Sprintf("Min: x, y = %4d, %4d  xValue, yValue = %4d, %4d\n"+
		"Max: x, y = %4d, %4d  xValue, yValue = %4d, %4d",
		p.Min.X, p.Min.Y, p.Min.RawX, p.Min.RawY,
		p.Max.X, p.Max.Y, p.Max.RawX, p.Max.RawY)
}
