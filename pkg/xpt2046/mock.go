package xpt2046

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/itohio/gotouch/pkg/config"
)

// Mock simulates a touch panel behind the controller.
type Mock struct {
	cfg *config.MockConfig

	mu       sync.Mutex
	pressed  bool
	x, y, z  int
	commands []byte
	rng      *rand.Rand
}

// NewMock creates a simulated panel. A nil cfg gives a noiseless panel.
func NewMock(cfg *config.MockConfig) *Mock {
	if cfg == nil {
		cfg = &config.MockConfig{
			Pressure:   800,
			Noise:      0,
			StepPeriod: 10 * time.Millisecond,
			Pause:      time.Second,
		}
	}

	return &Mock{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(1, 2)),
	}
}

// Press places a contact at raw coordinates x, y with pressure z.
func (m *Mock) Press(x, y, z int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pressed = true
	m.x, m.y, m.z = x, y, z
}

// Release lifts the contact.
func (m *Mock) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pressed = false
}

// Commands returns a copy of every control byte received so far.
func (m *Mock) Commands() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]byte, len(m.commands))
	copy(result, m.commands)
	return result
}

// ResetCommands clears the command log.
func (m *Mock) ResetCommands() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands = m.commands[:0]
}

// Transact answers a control byte the way the controller would for the
// current contact. The Z1/Z2 pair is split so that z1 + 4095 - z2 == z.
func (m *Mock) Transact(cmd byte) (uint16, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.commands = append(m.commands, cmd)

	switch cmd {
	case CmdReadZ1:
		if !m.pressed {
			return 0, nil
		}
		return clamp12(m.z / 2), nil
	case CmdReadZ2:
		if !m.pressed {
			return MaxValue, nil
		}
		return clamp12(MaxValue - (m.z - m.z/2)), nil
	case CmdReadX:
		if !m.pressed {
			return 0, nil
		}
		return clamp12(m.x + m.jitter()), nil
	case CmdReadY, CmdReadY &^ 1:
		if !m.pressed {
			return 0, nil
		}
		return clamp12(m.y + m.jitter()), nil
	}

	return 0, fmt.Errorf("mock: unsupported command 0x%02X", cmd)
}

// jitter must be called with mu held.
func (m *Mock) jitter() int {
	if m.cfg.Noise <= 0 {
		return 0
	}
	return m.rng.IntN(2*m.cfg.Noise+1) - m.cfg.Noise
}

// stroke is one scripted contact: from (x0,y0) to (x1,y1) over duration.
type stroke struct {
	x0, y0   int
	x1, y1   int
	duration time.Duration
}

// demoScript covers every gesture kind in raw panel coordinates.
var demoScript = []stroke{
	{2000, 2100, 2000, 2100, 100 * time.Millisecond}, // short touch
	{2000, 2100, 2000, 2100, 600 * time.Millisecond}, // long touch
	{1000, 2100, 3000, 2100, 400 * time.Millisecond}, // swipe right
	{2000, 2800, 2000, 1300, 400 * time.Millisecond}, // swipe up
	{3000, 2100, 1000, 2100, 400 * time.Millisecond}, // swipe left
	{2000, 1300, 2000, 2800, 400 * time.Millisecond}, // swipe down
}

// Simulate plays the demo script in a loop until ctx is done.
func (m *Mock) Simulate(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.StepPeriod)
	defer ticker.Stop()
	defer m.Release()

	for {
		for _, s := range demoScript {
			steps := int(s.duration / m.cfg.StepPeriod)
			if steps < 1 {
				steps = 1
			}
			for i := 0; i <= steps; i++ {
				x := s.x0 + (s.x1-s.x0)*i/steps
				y := s.y0 + (s.y1-s.y0)*i/steps
				m.Press(x, y, m.cfg.Pressure)
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
				}
			}
			m.Release()

			select {
			case <-ctx.Done():
				return
			case <-time.After(m.cfg.Pause):
			}
		}
	}
}

func clamp12(v int) uint16 {
	if v < 0 {
		return 0
	}
	if v > MaxValue {
		return MaxValue
	}
	return uint16(v)
}
