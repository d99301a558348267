package main

import (
	"context"
	"flag"
	"log"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/gotouch/pkg/calib"
	"github.com/itohio/gotouch/pkg/config"
	"github.com/itohio/gotouch/pkg/gesture"
	"github.com/itohio/gotouch/pkg/pad"
	"github.com/itohio/gotouch/pkg/prefs"
	"github.com/itohio/gotouch/pkg/server"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag   = flag.Bool("mock", false, "Use a simulated panel driven by the mouse")
		demoFlag   = flag.Bool("demo", false, "With -mock, play a looping gesture script instead")
		serveFlag  = flag.String("serve", "", "Serve calibration and gesture stream on this address (e.g., :8080)")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *portFlag != "" {
		cfg.Bus.Port = *portFlag
	}
	if *serveFlag != "" {
		cfg.Server.Listen = *serveFlag
	}

	store, db, err := openStore(cfg, filepath.Dir(*configFlag))
	if err != nil {
		log.Fatalf("Failed to open calibration store: %v", err)
	}

	mapper := calib.NewMapper(cfg.Display.Width, cfg.Display.Height, calib.Rotation(cfg.Display.Rotation))
	calibrated, err := restoreCalibration(store, mapper)
	switch {
	case err != nil:
		log.Printf("Failed to restore calibration, using factory default: %v", err)
	case calibrated:
		log.Printf("Calibration restored:\n%s", calib.Describe(mapper.Profile()))
	default:
		log.Printf("No stored calibration, using factory default")
	}

	application := app.NewWithID("com.itohio.gotouch")
	window := application.NewWindow("Touch Panel")
	window.Resize(fyne.NewSize(800, 600))
	window.CenterOnScreen()

	state := &appState{
		cfg:        cfg,
		configPath: *configFlag,
		window:     window,
		mapper:     mapper,
		registry:   gesture.NewRegistry(),
		store:      store,
		prefsDB:    db,
		useMock:    *mockFlag,
		demo:       *demoFlag,
	}
	state.pad = pad.New(mapper.Size())
	registerGestureHandlers(state)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.Server.Listen != "" {
		srv := server.New(mapper, store, state.registry)
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.Server.Listen); err != nil {
				log.Printf("Gesture server stopped: %v", err)
			}
		}()
	}

	window.SetContent(container.NewBorder(createToolbar(state), nil, nil, nil, state.pad))
	window.SetOnClosed(func() {
		state.cancelCalibration()
		state.disconnect()
		if db != nil {
			if err := db.Close(); err != nil {
				log.Printf("Failed to close preferences: %v", err)
			}
		}
	})

	if !calibrated {
		dialog.ShowConfirm("Calibration",
			"No stored calibration was found, the factory default is active.\nCalibrate now?",
			func(ok bool) {
				if ok {
					handleCalibrate(state)
				}
			}, window)
	}

	window.ShowAndRun()
}

// appState holds the application state. Fields are only touched on the
// Fyne main thread.
type appState struct {
	cfg        *config.Config
	configPath string
	window     fyne.Window
	pad        *pad.PadWidget
	mapper     *calib.Mapper
	registry   *gesture.Registry
	store      calib.Store
	prefsDB    *prefs.DB
	useMock    bool
	demo       bool

	connectBtn   *widget.Button
	calibrateBtn *widget.Button
	session      *session

	calibrating    bool
	stopCalibrator context.CancelFunc
}

// registerGestureHandlers logs every gesture kind and mirrors events on
// the pad.
func registerGestureHandlers(state *appState) {
	r := state.registry
	r.OnShortTouch(func(x, y int) { log.Printf("Short touch at %d,%d", x, y) })
	r.OnLongTouch(func(x, y int) { log.Printf("Long touch at %d,%d", x, y) })
	r.OnSwipeRight(func(x, y int) { log.Printf("Swipe right ending at %d,%d", x, y) })
	r.OnSwipeUp(func(x, y int) { log.Printf("Swipe up ending at %d,%d", x, y) })
	r.OnSwipeLeft(func(x, y int) { log.Printf("Swipe left ending at %d,%d", x, y) })
	r.OnSwipeDown(func(x, y int) { log.Printf("Swipe down ending at %d,%d", x, y) })

	r.OnEvent(func(ev gesture.Event) {
		fyne.Do(func() { state.pad.ShowGesture(ev) })
	})
}

// createToolbar creates the toolbar with Connect, Calibrate, Clear, Erase,
// Info and Settings buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	state.connectBtn = widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})

	state.calibrateBtn = widget.NewButtonWithIcon("Calibrate", theme.MediaRecordIcon(), func() {
		handleCalibrate(state)
	})

	clearBtn := widget.NewButtonWithIcon("Clear", theme.ContentClearIcon(), func() {
		handleClearCalibration(state)
	})

	eraseBtn := widget.NewButtonWithIcon("Erase", theme.DeleteIcon(), func() {
		handleErasePreferences(state)
	})
	if state.prefsDB == nil {
		eraseBtn.Disable()
	}

	infoBtn := widget.NewButtonWithIcon("", theme.InfoIcon(), func() {
		showCalibrationInfo(state)
	})

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	return container.NewBorder(
		nil,
		nil,
		container.NewHBox(state.connectBtn, settingsBtn),
		container.NewHBox(state.calibrateBtn, clearBtn, eraseBtn, infoBtn),
		nil,
	)
}
