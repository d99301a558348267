package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "serial", cfg.Bus.Kind)
	assert.Equal(t, "COM3", cfg.Bus.Port)
	assert.Equal(t, 115200, cfg.Bus.BaudRate)
	assert.Equal(t, 5*time.Microsecond, cfg.Bus.HalfClock)
	assert.Equal(t, 320, cfg.Display.Width)
	assert.Equal(t, 240, cfg.Display.Height)
	assert.Equal(t, 0, cfg.Display.Rotation)
	assert.Equal(t, 100, cfg.Touch.PressureThreshold)
	assert.Equal(t, 10*time.Millisecond, cfg.Touch.PollInterval)
	assert.Equal(t, 280*time.Millisecond, cfg.Gesture.LongTouch)
	assert.Equal(t, 35*time.Millisecond, cfg.Gesture.ShortTouch)
	assert.Equal(t, 20, cfg.Gesture.MinSwipe)
	assert.Equal(t, 5, cfg.Calibration.SamplesPerPoint)
	assert.Equal(t, 500*time.Millisecond, cfg.Calibration.SampleDelay)
	assert.Equal(t, []TargetPoint{{X: 90, Y: 50}, {X: 290, Y: 210}}, cfg.Calibration.Targets)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "COM3", cfg.Bus.Port)
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
bus:
  kind: gpio
  port: "/dev/ttyACM0"
  pins:
    mosi: GPIO20
    miso: GPIO19
    clk: GPIO21
    cs: GPIO16
  half_clock: 2us

display:
  width: 480
  height: 320
  rotation: 3

touch:
  pressure_threshold: 150
  poll_interval: 5ms

gesture:
  long_touch: 400ms
  short_touch: 50ms
  min_swipe: 30

calibration:
  store: prefs
  path: prefs.db
  samples_per_point: 8
  sample_delay: 250ms
  targets:
    - {x: 40, y: 40}
    - {x: 440, y: 280}
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "gpio", cfg.Bus.Kind)
	assert.Equal(t, "GPIO20", cfg.Bus.Pins.MOSI)
	assert.Equal(t, "GPIO16", cfg.Bus.Pins.CS)
	assert.Equal(t, 2*time.Microsecond, cfg.Bus.HalfClock)
	assert.Equal(t, 480, cfg.Display.Width)
	assert.Equal(t, 320, cfg.Display.Height)
	assert.Equal(t, 3, cfg.Display.Rotation)
	assert.Equal(t, 150, cfg.Touch.PressureThreshold)
	assert.Equal(t, 5*time.Millisecond, cfg.Touch.PollInterval)
	assert.Equal(t, 400*time.Millisecond, cfg.Gesture.LongTouch)
	assert.Equal(t, 50*time.Millisecond, cfg.Gesture.ShortTouch)
	assert.Equal(t, 30, cfg.Gesture.MinSwipe)
	assert.Equal(t, "prefs", cfg.Calibration.Store)
	assert.Equal(t, 8, cfg.Calibration.SamplesPerPoint)
	assert.Equal(t, 250*time.Millisecond, cfg.Calibration.SampleDelay)
	assert.Equal(t, []TargetPoint{{X: 40, Y: 40}, {X: 440, Y: 280}}, cfg.Calibration.Targets)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("invalid: yaml: content: [")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
bus:
  port: "/dev/ttyACM0"
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	// Should use defaults for missing fields
	assert.Equal(t, "/dev/ttyACM0", cfg.Bus.Port)
	assert.Equal(t, "serial", cfg.Bus.Kind)
	assert.Equal(t, 320, cfg.Display.Width)
	assert.Equal(t, 280*time.Millisecond, cfg.Gesture.LongTouch)
	assert.Equal(t, 500*time.Millisecond, cfg.Calibration.SampleDelay)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown bus", "bus:\n  kind: usb\n"},
		{"bad rotation", "display:\n  rotation: 4\n"},
		{"unknown store", "calibration:\n  store: eeprom\n"},
		{"single target", "calibration:\n  targets:\n    - {x: 10, y: 10}\n"},
		{"degenerate targets", "calibration:\n  targets:\n    - {x: 10, y: 10}\n    - {x: 10, y: 200}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
			require.NoError(t, err)
			defer os.Remove(tmpfile.Name())

			_, err = tmpfile.WriteString(tt.yaml)
			require.NoError(t, err)
			require.NoError(t, tmpfile.Close())

			cfg, err := Load(tmpfile.Name())
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Bus.Port = "/dev/ttyUSB0"
	cfg.Display.Rotation = 2

	tmpfile, err := os.CreateTemp("", "test_save_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	err = cfg.Save(tmpfile.Name())
	require.NoError(t, err)

	// Load it back and verify
	loaded, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", loaded.Bus.Port)
	assert.Equal(t, 2, loaded.Display.Rotation)
	assert.Equal(t, cfg.Calibration, loaded.Calibration)
}
