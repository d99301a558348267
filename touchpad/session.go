package main

import (
	"context"
	"fmt"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"

	"github.com/itohio/gotouch/pkg/calib"
	"github.com/itohio/gotouch/pkg/gesture"
	"github.com/itohio/gotouch/pkg/touch"
	"github.com/itohio/gotouch/pkg/xpt2046"
)

// session is one connection to the controller and its gesture engine.
type session struct {
	closeBus func() error
	sampler  *touch.Sampler
	engine   *gesture.Engine

	cancel   context.CancelFunc
	done     chan struct{}
	stopDemo context.CancelFunc
}

// handleConnect toggles the connection.
func handleConnect(state *appState) {
	if state.session != nil {
		state.cancelCalibration()
		state.disconnect()
		return
	}
	if err := state.connect(); err != nil {
		dialog.ShowError(err, state.window)
	}
}

// connect opens the transport and starts the gesture engine.
func (state *appState) connect() error {
	cfg := *state.cfg
	if state.useMock {
		cfg.Bus.Kind = "mock"
	}

	bus, closeBus, err := openTransport(&cfg)
	if err != nil {
		return err
	}

	sampler := touch.NewSampler(bus, cfg.Touch.PressureThreshold)
	engine := gesture.NewEngine(sampler, state.mapper, state.registry, gesture.ThresholdsFromConfig(cfg.Gesture))
	engine.SetPollInterval(cfg.Touch.PollInterval)
	engine.OnContact(func(p calib.Point) {
		fyne.Do(func() { state.pad.AddContact(p) })
	})

	s := &session{
		closeBus: closeBus,
		sampler:  sampler,
		engine:   engine,
	}

	if mock, ok := bus.(*xpt2046.Mock); ok {
		if state.demo {
			ctx, cancel := context.WithCancel(context.Background())
			s.stopDemo = cancel
			go mock.Simulate(ctx)
		} else {
			state.attachStylus(mock)
		}
	}

	state.session = s
	state.startEngine()
	log.Printf("Connected over %s", cfg.Bus.Kind)
	return nil
}

// attachStylus lets the mouse press the simulated panel.
func (state *appState) attachStylus(mock *xpt2046.Mock) {
	state.pad.OnPress = func(p calib.Point) {
		raw := state.mapper.Unmap(p)
		mock.Press(raw.X, raw.Y, state.cfg.Mock.Pressure)
	}
	state.pad.OnRelease = mock.Release
}

// disconnect stops the engine and closes the transport.
func (state *appState) disconnect() {
	s := state.session
	if s == nil {
		return
	}
	state.stopEngine()
	if s.stopDemo != nil {
		s.stopDemo()
	}
	state.pad.OnPress = nil
	state.pad.OnRelease = nil
	if err := s.closeBus(); err != nil {
		log.Printf("Failed to close transport: %v", err)
	}
	state.session = nil
	log.Printf("Disconnected")
}

// startEngine runs the gesture engine of the current session.
func (state *appState) startEngine() {
	s := state.session
	if s == nil || s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		err := s.engine.Run(ctx)
		close(s.done)
		if err != nil {
			fyne.Do(func() {
				if state.session != s {
					return
				}
				dialog.ShowError(fmt.Errorf("touch controller failed: %w", err), state.window)
				state.disconnect()
			})
		}
	}()
}

// stopEngine stops the engine and waits for it, dropping any contact in
// progress.
func (state *appState) stopEngine() {
	s := state.session
	if s == nil || s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.engine.Reset()
}
