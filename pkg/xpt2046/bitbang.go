package xpt2046

import (
	"fmt"
	"sync"
	"time"
)

// DefaultHalfClock is the default half period of the software clock.
const DefaultHalfClock = 5 * time.Microsecond

// Line identifies an output line driven by the host.
type Line int

const (
	LineMOSI Line = iota
	LineCLK
	LineCS
)

func (l Line) String() string {
	switch l {
	case LineMOSI:
		return "MOSI"
	case LineCLK:
		return "CLK"
	case LineCS:
		return "CS"
	}
	return fmt.Sprintf("Line(%d)", int(l))
}

// Pins abstracts the four wires of the controller's serial interface.
type Pins interface {
	Set(line Line, high bool) error
	MISO() bool
}

// BitBang clocks the controller's serial protocol by hand over Pins.
type BitBang struct {
	pins      Pins
	halfClock time.Duration
	sleep     func(time.Duration)

	mu sync.Mutex
}

// NewBitBang creates a bit-banged transport. A zero halfClock selects
// DefaultHalfClock; a negative one disables the delays entirely.
func NewBitBang(pins Pins, halfClock time.Duration) *BitBang {
	if halfClock == 0 {
		halfClock = DefaultHalfClock
	}
	return &BitBang{
		pins:      pins,
		halfClock: halfClock,
		sleep:     time.Sleep,
	}
}

// Reset puts the bus into its idle state: chip deselected, clock and data low.
func (b *BitBang) Reset() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	w := wire{pins: b.pins}
	w.set(LineCS, true)
	w.set(LineCLK, false)
	w.set(LineMOSI, false)
	return w.err
}

// Transact selects the chip, shifts out cmd MSB first, shifts in 16 bits
// and deselects the chip. The 12-bit result sits in the top of the word.
func (b *BitBang) Transact(cmd byte) (uint16, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	w := wire{pins: b.pins}
	w.set(LineCS, false)

	for i := 7; i >= 0; i-- {
		w.set(LineMOSI, cmd&(1<<i) != 0)
		w.set(LineCLK, false)
		b.delay()
		w.set(LineCLK, true)
		b.delay()
	}
	w.set(LineMOSI, false)
	w.set(LineCLK, false)

	var word uint16
	for i := 15; i >= 0; i-- {
		w.set(LineCLK, true)
		b.delay()
		w.set(LineCLK, false)
		b.delay()
		if b.pins.MISO() {
			word |= 1 << i
		}
	}

	w.set(LineCS, true)
	if w.err != nil {
		return 0, fmt.Errorf("transaction 0x%02X failed: %w", cmd, w.err)
	}

	return word >> 4, nil
}

func (b *BitBang) delay() {
	if b.halfClock > 0 {
		b.sleep(b.halfClock)
	}
}

// wire remembers the first pin error so the clocking loops stay readable.
type wire struct {
	pins Pins
	err  error
}

func (w *wire) set(line Line, high bool) {
	if w.err != nil {
		return
	}
	if err := w.pins.Set(line, high); err != nil {
		w.err = fmt.Errorf("set %s: %w", line, err)
	}
}
