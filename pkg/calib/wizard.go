package calib

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/itohio/gotouch/pkg/touch"
)

// ErrInvalidSampleCount is returned when a wizard is asked for fewer than
// one sample per target.
var ErrInvalidSampleCount = errors.New("calib: samples per point must be positive")

const (
	// DefaultSampleDelay separates accepted samples so that one held
	// contact is not counted several times.
	DefaultSampleDelay = 500 * time.Millisecond
	// DefaultPollInterval is the pause after a no-touch poll.
	DefaultPollInterval = 10 * time.Millisecond
	// DefaultSamplesPerPoint is the number of contacts averaged per target.
	DefaultSamplesPerPoint = 5
)

// DefaultTargets returns the screen targets of the two-point calibration
// on a 320x240 panel.
func DefaultTargets() [2]Point {
	return [2]Point{{X: 90, Y: 50}, {X: 290, Y: 210}}
}

// Poller yields raw samples. touch.Sampler implements it.
type Poller interface {
	Poll() (touch.RawSample, bool, error)
}

var _ Poller = (*touch.Sampler)(nil)

// WizardObserver follows the progress of a calibration run, e.g. to draw
// crosshairs. Methods are called on the wizard goroutine.
type WizardObserver interface {
	TargetStarted(index int, target Point)
	SampleAccepted(index int, target Point, raw touch.RawSample, count int)
	TargetDone(index int, ref ReferencePoint)
}

// Wizard runs the interactive two-point calibration.
type Wizard struct {
	SampleDelay  time.Duration
	PollInterval time.Duration
	Observer     WizardObserver

	poller Poller
	store  Store
	mapper *Mapper
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewWizard creates a wizard that commits its result to store and mapper.
// Either may be nil.
func NewWizard(poller Poller, store Store, mapper *Mapper) *Wizard {
	return &Wizard{
		SampleDelay:  DefaultSampleDelay,
		PollInterval: DefaultPollInterval,
		poller:       poller,
		store:        store,
		mapper:       mapper,
		sleep:        sleepContext,
	}
}

// Run samples both targets, persists the resulting profile and installs it
// on the mapper. It blocks until the operator has supplied every contact or
// ctx is done.
func (w *Wizard) Run(ctx context.Context, targets [2]Point, samplesPerPoint int) (Profile, error) {
	if samplesPerPoint <= 0 {
		return Profile{}, ErrInvalidSampleCount
	}

	var refs [2]ReferencePoint
	for i, target := range targets {
		ref, err := w.collect(ctx, i, target, samplesPerPoint)
		if err != nil {
			return Profile{}, err
		}
		refs[i] = ref
	}

	p := Profile{Min: refs[0], Max: refs[1]}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}

	if w.store != nil {
		if err := w.store.Save(p); err != nil {
			return Profile{}, fmt.Errorf("failed to store calibration: %w", err)
		}
	}
	if w.mapper != nil {
		if err := w.mapper.SetProfile(p); err != nil {
			return Profile{}, err
		}
	}

	log.Printf("Calibration complete:\n%s", Describe(p))
	return p, nil
}

// collect averages samplesPerPoint accepted contacts for one target.
func (w *Wizard) collect(ctx context.Context, index int, target Point, samplesPerPoint int) (ReferencePoint, error) {
	if w.Observer != nil {
		w.Observer.TargetStarted(index, target)
	}

	var sumX, sumY, sumZ, count int
	for count < samplesPerPoint {
		if err := ctx.Err(); err != nil {
			return ReferencePoint{}, err
		}

		raw, ok, err := w.poller.Poll()
		if err != nil {
			return ReferencePoint{}, fmt.Errorf("calibration target %d: %w", index+1, err)
		}
		if !ok {
			if err := w.sleep(ctx, w.PollInterval); err != nil {
				return ReferencePoint{}, err
			}
			continue
		}

		sumX += raw.X
		sumY += raw.Y
		sumZ += raw.Z
		count++

		if w.Observer != nil {
			w.Observer.SampleAccepted(index, target, raw, count)
		}
		if err := w.sleep(ctx, w.SampleDelay); err != nil {
			return ReferencePoint{}, err
		}
	}

	ref := ReferencePoint{
		X:    target.X,
		Y:    target.Y,
		RawX: sumX / samplesPerPoint,
		RawY: sumY / samplesPerPoint,
		RawZ: sumZ / samplesPerPoint,
	}
	if w.Observer != nil {
		w.Observer.TargetDone(index, ref)
	}
	return ref, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
