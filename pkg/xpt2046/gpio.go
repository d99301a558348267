package xpt2046

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// GPIOPins drives the controller through host GPIO lines.
type GPIOPins struct {
	mosi gpio.PinIO
	miso gpio.PinIO
	clk  gpio.PinIO
	cs   gpio.PinIO
}

var _ Pins = (*GPIOPins)(nil)

// NewGPIOPins initializes the host drivers and configures the named lines
// (e.g. "GPIO10"): MISO as input, the rest as outputs with CS deasserted.
func NewGPIOPins(mosi, miso, clk, cs string) (*GPIOPins, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize host drivers: %w", err)
	}

	p := &GPIOPins{}
	var err error
	if p.mosi, err = lookupPin(mosi); err != nil {
		return nil, err
	}
	if p.miso, err = lookupPin(miso); err != nil {
		return nil, err
	}
	if p.clk, err = lookupPin(clk); err != nil {
		return nil, err
	}
	if p.cs, err = lookupPin(cs); err != nil {
		return nil, err
	}

	if err := p.miso.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("failed to configure MISO %s: %w", miso, err)
	}
	if err := p.cs.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("failed to configure CS %s: %w", cs, err)
	}
	if err := p.clk.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("failed to configure CLK %s: %w", clk, err)
	}
	if err := p.mosi.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("failed to configure MOSI %s: %w", mosi, err)
	}

	return p, nil
}

// Set drives an output line.
func (p *GPIOPins) Set(line Line, high bool) error {
	switch line {
	case LineMOSI:
		return p.mosi.Out(gpio.Level(high))
	case LineCLK:
		return p.clk.Out(gpio.Level(high))
	case LineCS:
		return p.cs.Out(gpio.Level(high))
	}
	return fmt.Errorf("unknown line %s", line)
}

// MISO samples the data line from the controller.
func (p *GPIOPins) MISO() bool {
	return p.miso.Read() == gpio.High
}

func lookupPin(name string) (gpio.PinIO, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("gpio %q not found", name)
	}
	return pin, nil
}
