package main

import (
	"fmt"
	"path/filepath"

	"github.com/itohio/gotouch/pkg/calib"
	"github.com/itohio/gotouch/pkg/config"
	"github.com/itohio/gotouch/pkg/prefs"
	"github.com/itohio/gotouch/pkg/xpt2046"
)

// openTransport creates and connects the transport selected by the
// configuration. The returned close function is never nil.
func openTransport(cfg *config.Config) (xpt2046.Transport, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Bus.Kind {
	case "serial":
		s := xpt2046.NewSerial(cfg.Bus.Port, cfg.Bus.BaudRate)
		if err := s.Connect(); err != nil {
			return nil, noop, fmt.Errorf("failed to connect to %s: %w", cfg.Bus.Port, err)
		}
		return s, s.Close, nil
	case "gpio":
		pins, err := xpt2046.NewGPIOPins(cfg.Bus.Pins.MOSI, cfg.Bus.Pins.MISO, cfg.Bus.Pins.CLK, cfg.Bus.Pins.CS)
		if err != nil {
			return nil, noop, err
		}
		bus := xpt2046.NewBitBang(pins, cfg.Bus.HalfClock)
		if err := bus.Reset(); err != nil {
			return nil, noop, err
		}
		return bus, noop, nil
	case "mock":
		return xpt2046.NewMock(&cfg.Mock), noop, nil
	}
	return nil, noop, fmt.Errorf("unknown bus kind %q", cfg.Bus.Kind)
}

// openStore creates the calibration store selected by the configuration.
// For the "prefs" store the preferences database is returned as well.
func openStore(cfg *config.Config, baseDir string) (calib.Store, *prefs.DB, error) {
	path := cfg.Calibration.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	switch cfg.Calibration.Store {
	case "file":
		return calib.NewFileStore(path), nil, nil
	case "prefs":
		db, err := prefs.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return calib.NewPrefsStore(db.Namespace(calib.PrefsNamespace)), db, nil
	}
	return nil, nil, fmt.Errorf("unknown calibration store %q", cfg.Calibration.Store)
}

// restoreCalibration installs the stored profile on mapper. It reports
// false when the store holds no valid calibration, in which case the
// factory default stays active.
func restoreCalibration(store calib.Store, mapper *calib.Mapper) (bool, error) {
	p, ok, err := store.Load()
	if err != nil {
		return false, err
	}
	if !ok {
		return false, mapper.SetProfile(calib.DefaultProfile())
	}
	if err := mapper.SetProfile(p); err != nil {
		return false, fmt.Errorf("stored calibration is unusable: %w", err)
	}
	return true, nil
}

// calibrationTargets converts the configured targets.
func calibrationTargets(cfg *config.Config) [2]calib.Point {
	var targets [2]calib.Point
	for i := range targets {
		if i < len(cfg.Calibration.Targets) {
			targets[i] = calib.Point{X: cfg.Calibration.Targets[i].X, Y: cfg.Calibration.Targets[i].Y}
		}
	}
	return targets
}
