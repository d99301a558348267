package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/gotouch/pkg/calib"
	"github.com/itohio/gotouch/pkg/xpt2046"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createBusTab(state),
		createDisplayTab(state),
		createGestureTab(state),
		createCalibrationTab(state),
		createMockTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 500))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 500))
	d.Show()
}

// saveConfig writes the configuration back to its file.
func saveConfig(state *appState) {
	if err := state.cfg.Validate(); err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	if err := state.cfg.Save(state.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
	}
}

// reconnect restarts the session so that new bus or gesture settings apply.
func reconnect(state *appState) {
	if state.session == nil {
		return
	}
	state.cancelCalibration()
	state.disconnect()
	if err := state.connect(); err != nil {
		dialog.ShowError(err, state.window)
	}
}

// createBusTab creates the Bus configuration tab.
func createBusTab(state *appState) *container.TabItem {
	kindSelect := widget.NewSelect([]string{"serial", "gpio", "mock"}, nil)
	kindSelect.SetSelected(state.cfg.Bus.Kind)

	ports, err := xpt2046.Ports()
	portOptions := []string{}
	portMap := make(map[string]string) // display name -> port name
	if err == nil {
		for _, port := range ports {
			displayName := port.Name
			if port.Description != "" && port.Description != port.Name {
				displayName = fmt.Sprintf("%s (%s)", port.Name, port.Description)
			}
			portOptions = append(portOptions, displayName)
			portMap[displayName] = port.Name
		}
	}

	currentDisplay := state.cfg.Bus.Port
	found := false
	for _, opt := range portOptions {
		if portMap[opt] == state.cfg.Bus.Port {
			currentDisplay = opt
			found = true
			break
		}
	}
	if !found && state.cfg.Bus.Port != "" {
		portOptions = append(portOptions, state.cfg.Bus.Port)
		portMap[state.cfg.Bus.Port] = state.cfg.Bus.Port
	}

	portSelect := widget.NewSelect(portOptions, nil)
	if currentDisplay != "" {
		portSelect.SetSelected(currentDisplay)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Bus.BaudRate))

	mosiEntry := widget.NewEntry()
	mosiEntry.SetText(state.cfg.Bus.Pins.MOSI)
	misoEntry := widget.NewEntry()
	misoEntry.SetText(state.cfg.Bus.Pins.MISO)
	clkEntry := widget.NewEntry()
	clkEntry.SetText(state.cfg.Bus.Pins.CLK)
	csEntry := widget.NewEntry()
	csEntry.SetText(state.cfg.Bus.Pins.CS)

	halfClockEntry := widget.NewEntry()
	halfClockEntry.SetText(state.cfg.Bus.HalfClock.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Transport", Widget: kindSelect},
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
			{Text: "MOSI Pin", Widget: mosiEntry},
			{Text: "MISO Pin", Widget: misoEntry},
			{Text: "CLK Pin", Widget: clkEntry},
			{Text: "CS Pin", Widget: csEntry},
			{Text: "Half Clock", Widget: halfClockEntry},
		},
		OnSubmit: func() {
			if kindSelect.Selected != "" {
				state.cfg.Bus.Kind = kindSelect.Selected
			}
			if portSelect.Selected != "" {
				port := portMap[portSelect.Selected]
				if port == "" {
					port = portSelect.Selected
				}
				state.cfg.Bus.Port = port
			}
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud > 0 {
				state.cfg.Bus.BaudRate = baud
			}
			state.cfg.Bus.Pins.MOSI = mosiEntry.Text
			state.cfg.Bus.Pins.MISO = misoEntry.Text
			state.cfg.Bus.Pins.CLK = clkEntry.Text
			state.cfg.Bus.Pins.CS = csEntry.Text
			if hc, err := time.ParseDuration(halfClockEntry.Text); err == nil {
				state.cfg.Bus.HalfClock = hc
			}
			saveConfig(state)
			reconnect(state)
		},
	}

	return container.NewTabItem("Bus", form)
}

// createDisplayTab creates the Display configuration tab.
func createDisplayTab(state *appState) *container.TabItem {
	widthEntry := widget.NewEntry()
	widthEntry.SetText(strconv.Itoa(state.cfg.Display.Width))

	heightEntry := widget.NewEntry()
	heightEntry.SetText(strconv.Itoa(state.cfg.Display.Height))

	rotations := []string{"0", "1", "2", "3"}
	rotationSelect := widget.NewSelect(rotations, nil)
	rotationSelect.SetSelected(strconv.Itoa(state.cfg.Display.Rotation))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Width", Widget: widthEntry},
			{Text: "Height", Widget: heightEntry},
			{Text: "Rotation", Widget: rotationSelect},
		},
		OnSubmit: func() {
			if w, err := strconv.Atoi(widthEntry.Text); err == nil && w > 0 {
				state.cfg.Display.Width = w
			}
			if h, err := strconv.Atoi(heightEntry.Text); err == nil && h > 0 {
				state.cfg.Display.Height = h
			}
			if r, err := strconv.Atoi(rotationSelect.Selected); err == nil {
				state.cfg.Display.Rotation = r
			}

			state.mapper.SetSize(state.cfg.Display.Width, state.cfg.Display.Height)
			if err := state.mapper.SetRotation(calib.Rotation(state.cfg.Display.Rotation)); err != nil {
				dialog.ShowError(err, state.window)
				return
			}
			state.pad.SetPanelSize(state.mapper.Size())
			saveConfig(state)
		},
	}

	return container.NewTabItem("Display", form)
}

// createGestureTab creates the Gesture configuration tab.
func createGestureTab(state *appState) *container.TabItem {
	thresholdEntry := widget.NewEntry()
	thresholdEntry.SetText(strconv.Itoa(state.cfg.Touch.PressureThreshold))

	pollEntry := widget.NewEntry()
	pollEntry.SetText(state.cfg.Touch.PollInterval.String())

	longEntry := widget.NewEntry()
	longEntry.SetText(state.cfg.Gesture.LongTouch.String())

	shortEntry := widget.NewEntry()
	shortEntry.SetText(state.cfg.Gesture.ShortTouch.String())

	swipeEntry := widget.NewEntry()
	swipeEntry.SetText(strconv.Itoa(state.cfg.Gesture.MinSwipe))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Pressure Threshold", Widget: thresholdEntry},
			{Text: "Poll Interval", Widget: pollEntry},
			{Text: "Long Touch", Widget: longEntry},
			{Text: "Short Touch", Widget: shortEntry},
			{Text: "Min Swipe (px)", Widget: swipeEntry},
		},
		OnSubmit: func() {
			if v, err := strconv.Atoi(thresholdEntry.Text); err == nil && v > 0 {
				state.cfg.Touch.PressureThreshold = v
			}
			if d, err := time.ParseDuration(pollEntry.Text); err == nil && d > 0 {
				state.cfg.Touch.PollInterval = d
			}
			if d, err := time.ParseDuration(longEntry.Text); err == nil {
				state.cfg.Gesture.LongTouch = d
			}
			if d, err := time.ParseDuration(shortEntry.Text); err == nil {
				state.cfg.Gesture.ShortTouch = d
			}
			if v, err := strconv.Atoi(swipeEntry.Text); err == nil && v > 0 {
				state.cfg.Gesture.MinSwipe = v
			}
			saveConfig(state)
			reconnect(state)
		},
	}

	return container.NewTabItem("Gesture", form)
}

// createCalibrationTab creates the Calibration configuration tab.
func createCalibrationTab(state *appState) *container.TabItem {
	samplesEntry := widget.NewEntry()
	samplesEntry.SetText(strconv.Itoa(state.cfg.Calibration.SamplesPerPoint))

	delayEntry := widget.NewEntry()
	delayEntry.SetText(state.cfg.Calibration.SampleDelay.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Samples per Target", Widget: samplesEntry},
			{Text: "Delay between Samples", Widget: delayEntry},
		},
		OnSubmit: func() {
			if n, err := strconv.Atoi(samplesEntry.Text); err == nil && n > 0 {
				state.cfg.Calibration.SamplesPerPoint = n
			}
			if d, err := time.ParseDuration(delayEntry.Text); err == nil {
				state.cfg.Calibration.SampleDelay = d
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Calibration", form)
}

// createMockTab creates the Mock panel configuration tab.
func createMockTab(state *appState) *container.TabItem {
	pressureEntry := widget.NewEntry()
	pressureEntry.SetText(strconv.Itoa(state.cfg.Mock.Pressure))

	noiseEntry := widget.NewEntry()
	noiseEntry.SetText(strconv.Itoa(state.cfg.Mock.Noise))

	stepEntry := widget.NewEntry()
	stepEntry.SetText(state.cfg.Mock.StepPeriod.String())

	pauseEntry := widget.NewEntry()
	pauseEntry.SetText(state.cfg.Mock.Pause.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Pressure", Widget: pressureEntry},
			{Text: "Noise (raw)", Widget: noiseEntry},
			{Text: "Step Period", Widget: stepEntry},
			{Text: "Pause", Widget: pauseEntry},
		},
		OnSubmit: func() {
			if v, err := strconv.Atoi(pressureEntry.Text); err == nil && v > 0 {
				state.cfg.Mock.Pressure = v
			}
			if v, err := strconv.Atoi(noiseEntry.Text); err == nil && v >= 0 {
				state.cfg.Mock.Noise = v
			}
			if d, err := time.ParseDuration(stepEntry.Text); err == nil {
				state.cfg.Mock.StepPeriod = d
			}
			if d, err := time.ParseDuration(pauseEntry.Text); err == nil {
				state.cfg.Mock.Pause = d
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Mock", form)
}
