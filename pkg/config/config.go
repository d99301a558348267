package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Bus         BusConfig         `yaml:"bus"`
	Display     DisplayConfig     `yaml:"display"`
	Touch       TouchConfig       `yaml:"touch"`
	Gesture     GestureConfig     `yaml:"gesture"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Server      ServerConfig      `yaml:"server"`
	Mock        MockConfig        `yaml:"mock"`
}

// BusConfig selects and configures the transport to the touch controller.
type BusConfig struct {
	Kind      string        `yaml:"kind"` // "serial", "gpio" or "mock"
	Port      string        `yaml:"port"`
	BaudRate  int           `yaml:"baud_rate"`
	Pins      PinsConfig    `yaml:"pins"`
	HalfClock time.Duration `yaml:"half_clock"` // Bit-bang half period
}

// PinsConfig names the GPIO lines used by the bit-banged transport.
type PinsConfig struct {
	MOSI string `yaml:"mosi"`
	MISO string `yaml:"miso"`
	CLK  string `yaml:"clk"`
	CS   string `yaml:"cs"`
}

// DisplayConfig contains the panel geometry.
type DisplayConfig struct {
	Width    int `yaml:"width"`
	Height   int `yaml:"height"`
	Rotation int `yaml:"rotation"` // 0..3
}

// TouchConfig contains sampling parameters.
type TouchConfig struct {
	PressureThreshold int           `yaml:"pressure_threshold"`
	PollInterval      time.Duration `yaml:"poll_interval"`
}

// GestureConfig contains gesture classification thresholds.
type GestureConfig struct {
	LongTouch  time.Duration `yaml:"long_touch"`
	ShortTouch time.Duration `yaml:"short_touch"`
	MinSwipe   int           `yaml:"min_swipe"`
}

// CalibrationConfig contains the calibration store and wizard parameters.
type CalibrationConfig struct {
	Store           string        `yaml:"store"` // "file" or "prefs"
	Path            string        `yaml:"path"`
	SamplesPerPoint int           `yaml:"samples_per_point"`
	SampleDelay     time.Duration `yaml:"sample_delay"`
	Targets         []TargetPoint `yaml:"targets"`
}

// TargetPoint is a calibration target in screen coordinates.
type TargetPoint struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// ServerConfig contains the gesture stream server configuration.
type ServerConfig struct {
	Listen string `yaml:"listen"` // Empty disables the server
}

// MockConfig contains mock panel configuration.
type MockConfig struct {
	Pressure   int           `yaml:"pressure"`    // Simulated contact pressure
	Noise      int           `yaml:"noise"`       // Raw jitter amplitude
	StepPeriod time.Duration `yaml:"step_period"` // Time between simulated contact updates
	Pause      time.Duration `yaml:"pause"`       // Idle time between simulated gestures
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Bus: BusConfig{
			Kind:     "serial",
			Port:     "COM3", // Default for Windows, should be "/dev/ttyACM0" on Linux/Mac
			BaudRate: 115200,
			Pins: PinsConfig{
				MOSI: "GPIO10",
				MISO: "GPIO9",
				CLK:  "GPIO11",
				CS:   "GPIO8",
			},
			HalfClock: 5 * time.Microsecond,
		},
		Display: DisplayConfig{
			Width:    320,
			Height:   240,
			Rotation: 0,
		},
		Touch: TouchConfig{
			PressureThreshold: 100,
			PollInterval:      10 * time.Millisecond,
		},
		Gesture: GestureConfig{
			LongTouch:  280 * time.Millisecond,
			ShortTouch: 35 * time.Millisecond,
			MinSwipe:   20,
		},
		Calibration: CalibrationConfig{
			Store:           "file",
			Path:            "calibration.yaml",
			SamplesPerPoint: 5,
			SampleDelay:     500 * time.Millisecond,
			Targets: []TargetPoint{
				{X: 90, Y: 50},   // upper left
				{X: 290, Y: 210}, // lower right
			},
		},
		Server: ServerConfig{
			Listen: "",
		},
		Mock: MockConfig{
			Pressure:   800,
			Noise:      8,
			StepPeriod: 10 * time.Millisecond,
			Pause:      time.Second,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks values that have no sensible fallback.
func (c *Config) Validate() error {
	switch c.Bus.Kind {
	case "serial", "gpio", "mock":
	default:
		return fmt.Errorf("unknown bus kind %q", c.Bus.Kind)
	}
	if c.Display.Rotation < 0 || c.Display.Rotation > 3 {
		return fmt.Errorf("display rotation must be 0..3, got %d", c.Display.Rotation)
	}
	switch c.Calibration.Store {
	case "file", "prefs":
	default:
		return fmt.Errorf("unknown calibration store %q", c.Calibration.Store)
	}
	if len(c.Calibration.Targets) != 2 {
		return fmt.Errorf("calibration needs exactly 2 targets, got %d", len(c.Calibration.Targets))
	}
	t0, t1 := c.Calibration.Targets[0], c.Calibration.Targets[1]
	if t0.X == t1.X || t0.Y == t1.Y {
		return fmt.Errorf("calibration targets must differ on both axes")
	}
	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Bus.Kind == "" {
		c.Bus.Kind = def.Bus.Kind
	}
	if c.Bus.Port == "" {
		c.Bus.Port = def.Bus.Port
	}
	if c.Bus.BaudRate == 0 {
		c.Bus.BaudRate = def.Bus.BaudRate
	}
	if c.Bus.Pins.MOSI == "" {
		c.Bus.Pins.MOSI = def.Bus.Pins.MOSI
	}
	if c.Bus.Pins.MISO == "" {
		c.Bus.Pins.MISO = def.Bus.Pins.MISO
	}
	if c.Bus.Pins.CLK == "" {
		c.Bus.Pins.CLK = def.Bus.Pins.CLK
	}
	if c.Bus.Pins.CS == "" {
		c.Bus.Pins.CS = def.Bus.Pins.CS
	}
	if c.Bus.HalfClock == 0 {
		c.Bus.HalfClock = def.Bus.HalfClock
	}

	if c.Display.Width == 0 {
		c.Display.Width = def.Display.Width
	}
	if c.Display.Height == 0 {
		c.Display.Height = def.Display.Height
	}

	if c.Touch.PressureThreshold == 0 {
		c.Touch.PressureThreshold = def.Touch.PressureThreshold
	}
	if c.Touch.PollInterval == 0 {
		c.Touch.PollInterval = def.Touch.PollInterval
	}

	if c.Gesture.LongTouch == 0 {
		c.Gesture.LongTouch = def.Gesture.LongTouch
	}
	if c.Gesture.ShortTouch == 0 {
		c.Gesture.ShortTouch = def.Gesture.ShortTouch
	}
	if c.Gesture.MinSwipe == 0 {
		c.Gesture.MinSwipe = def.Gesture.MinSwipe
	}

	if c.Calibration.Store == "" {
		c.Calibration.Store = def.Calibration.Store
	}
	if c.Calibration.Path == "" {
		c.Calibration.Path = def.Calibration.Path
	}
	if c.Calibration.SamplesPerPoint == 0 {
		c.Calibration.SamplesPerPoint = def.Calibration.SamplesPerPoint
	}
	if c.Calibration.SampleDelay == 0 {
		c.Calibration.SampleDelay = def.Calibration.SampleDelay
	}
	if len(c.Calibration.Targets) == 0 {
		c.Calibration.Targets = def.Calibration.Targets
	}

	if c.Mock.Pressure == 0 {
		c.Mock.Pressure = def.Mock.Pressure
	}
	if c.Mock.StepPeriod == 0 {
		c.Mock.StepPeriod = def.Mock.StepPeriod
	}
	if c.Mock.Pause == 0 {
		c.Mock.Pause = def.Mock.Pause
	}
}
