package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"

	"github.com/itohio/gotouch/pkg/calib"
	"github.com/itohio/gotouch/pkg/pad"
	"github.com/itohio/gotouch/pkg/touch"
)

// padObserver draws wizard progress on the pad.
type padObserver struct {
	pad     *pad.PadWidget
	mapper  *calib.Mapper
	samples int
}

var _ calib.WizardObserver = (*padObserver)(nil)

func (o *padObserver) TargetStarted(index int, target calib.Point) {
	pt := o.mapper.Rotate(target)
	fyne.Do(func() {
		o.pad.SetTarget(index, pt, pad.TargetSampling)
		o.pad.SetStatus(fmt.Sprintf("Touch target %d", index+1))
	})
}

func (o *padObserver) SampleAccepted(index int, target calib.Point, raw touch.RawSample, count int) {
	log.Printf("Target %d sample %d: x=%d y=%d z=%d", index+1, count, raw.X, raw.Y, raw.Z)
	fyne.Do(func() {
		o.pad.SetStatus(fmt.Sprintf("Touch target %d (%d/%d)", index+1, count, o.samples))
	})
}

func (o *padObserver) TargetDone(index int, ref calib.ReferencePoint) {
	pt := o.mapper.Rotate(ref.Screen())
	fyne.Do(func() { o.pad.SetTarget(index, pt, pad.TargetDone) })
}

// handleCalibrate runs the calibration wizard on the current session,
// connecting first if needed. The gesture engine is paused meanwhile.
func handleCalibrate(state *appState) {
	if state.calibrating {
		return
	}
	if state.session == nil {
		if err := state.connect(); err != nil {
			dialog.ShowError(err, state.window)
			return
		}
	}
	state.stopEngine()

	samples := state.cfg.Calibration.SamplesPerPoint
	wizard := calib.NewWizard(state.session.sampler, state.store, state.mapper)
	wizard.SampleDelay = state.cfg.Calibration.SampleDelay
	wizard.PollInterval = state.cfg.Touch.PollInterval
	wizard.Observer = &padObserver{pad: state.pad, mapper: state.mapper, samples: samples}

	ctx, cancel := context.WithCancel(context.Background())
	state.calibrating = true
	state.stopCalibrator = cancel
	state.calibrateBtn.Disable()
	state.pad.Clear()

	targets := calibrationTargets(state.cfg)
	go func() {
		p, err := wizard.Run(ctx, targets, samples)
		fyne.Do(func() {
			cancel()
			state.calibrating = false
			state.stopCalibrator = nil
			state.calibrateBtn.Enable()
			state.pad.ClearTargets()

			switch {
			case errors.Is(err, context.Canceled):
				state.pad.SetStatus("")
			case err != nil:
				state.pad.SetStatus("")
				dialog.ShowError(fmt.Errorf("calibration failed: %w", err), state.window)
			default:
				state.pad.SetStatus("Calibrated")
				dialog.ShowInformation("Calibration", calib.Describe(p), state.window)
			}

			state.startEngine()
		})
	}()
}

// cancelCalibration aborts a running wizard.
func (state *appState) cancelCalibration() {
	if state.stopCalibrator != nil {
		state.stopCalibrator()
	}
}

// handleClearCalibration removes the stored calibration and reverts to the
// factory default.
func handleClearCalibration(state *appState) {
	dialog.ShowConfirm("Clear calibration", "Remove the stored calibration and use the factory default?", func(ok bool) {
		if !ok {
			return
		}
		if err := state.store.Clear(); err != nil {
			dialog.ShowError(err, state.window)
			return
		}
		if err := state.mapper.SetProfile(calib.DefaultProfile()); err != nil {
			dialog.ShowError(err, state.window)
			return
		}
		log.Printf("Calibration cleared")
		state.pad.SetStatus("Factory calibration")
	}, state.window)
}

// handleErasePreferences wipes every preference namespace.
func handleErasePreferences(state *appState) {
	if state.prefsDB == nil {
		return
	}
	dialog.ShowConfirm("Erase preferences", "Erase all stored preferences, including calibration?", func(ok bool) {
		if !ok {
			return
		}
		if err := state.prefsDB.Erase(); err != nil {
			dialog.ShowError(err, state.window)
			return
		}
		if err := state.mapper.SetProfile(calib.DefaultProfile()); err != nil {
			dialog.ShowError(err, state.window)
			return
		}
		log.Printf("Preferences erased")
		state.pad.SetStatus("Factory calibration")
	}, state.window)
}

// showCalibrationInfo prints the active and stored calibration.
func showCalibrationInfo(state *appState) {
	msg := "Active:\n" + calib.Describe(state.mapper.Profile())

	stored, ok, err := state.store.Load()
	switch {
	case err != nil:
		msg += "\n\nStored: " + err.Error()
	case ok:
		msg += "\n\nStored:\n" + calib.Describe(stored)
	default:
		msg += "\n\nStored: none"
	}

	log.Print(msg)
	dialog.ShowInformation("Calibration data", msg, state.window)
}
