// Package touch turns controller conversions into raw touch samples.
package touch

import (
	"fmt"

	"github.com/itohio/gotouch/pkg/xpt2046"
)

// DefaultPressureThreshold is the lowest pressure accepted as a contact.
const DefaultPressureThreshold = 100

// RawSample is an uncalibrated reading: raw X, raw Y and pressure Z.
type RawSample struct {
	X, Y, Z int
}

// Sampler polls the controller for contacts.
type Sampler struct {
	bus       xpt2046.Transport
	threshold int
}

// NewSampler creates a sampler. A non-positive threshold selects
// DefaultPressureThreshold.
func NewSampler(bus xpt2046.Transport, threshold int) *Sampler {
	if threshold <= 0 {
		threshold = DefaultPressureThreshold
	}
	return &Sampler{
		bus:       bus,
		threshold: threshold,
	}
}

// Poll reads one sample. It returns false without touching the X/Y channels
// when the pressure is below the threshold.
func (s *Sampler) Poll() (RawSample, bool, error) {
	z, ok, err := s.pressure()
	if err != nil || !ok {
		return RawSample{}, false, err
	}

	x, err := s.bus.Transact(xpt2046.CmdReadX)
	if err != nil {
		return RawSample{}, false, fmt.Errorf("failed to read X: %w", err)
	}
	y, err := s.bus.Transact(xpt2046.CmdReadY &^ 1)
	if err != nil {
		return RawSample{}, false, fmt.Errorf("failed to read Y: %w", err)
	}

	return RawSample{X: int(x), Y: int(y), Z: z}, true, nil
}

// Touched reports whether the panel is pressed, reading pressure only.
func (s *Sampler) Touched() (bool, error) {
	_, ok, err := s.pressure()
	return ok, err
}

// pressure combines the two pressure conversions: z = z1 + (4095 - z2).
func (s *Sampler) pressure() (int, bool, error) {
	z1, err := s.bus.Transact(xpt2046.CmdReadZ1)
	if err != nil {
		return 0, false, fmt.Errorf("failed to read Z1: %w", err)
	}
	z2, err := s.bus.Transact(xpt2046.CmdReadZ2)
	if err != nil {
		return 0, false, fmt.Errorf("failed to read Z2: %w", err)
	}

	z := int(z1) + xpt2046.MaxValue - int(z2)
	return z, z >= s.threshold, nil
}
