package touch

import (
	"errors"
	"testing"

	"github.com/itohio/gotouch/pkg/xpt2046"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingBus fails on one command and answers zero otherwise.
type failingBus struct {
	failOn byte
	err    error
}

func (b failingBus) Transact(cmd byte) (uint16, error) {
	if cmd == b.failOn {
		return 0, b.err
	}
	return 0, nil
}

func TestNewSampler_DefaultThreshold(t *testing.T) {
	s := NewSampler(xpt2046.NewMock(nil), 0)
	assert.Equal(t, DefaultPressureThreshold, s.threshold)
}

func TestPoll_Threshold(t *testing.T) {
	tests := []struct {
		name      string
		pressure  int
		wantTouch bool
	}{
		{"no contact", 0, false},
		{"just below threshold", 99, false},
		{"at threshold", 100, true},
		{"firm press", 1500, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := xpt2046.NewMock(nil)
			if tt.pressure > 0 {
				bus.Press(1200, 2400, tt.pressure)
			}
			s := NewSampler(bus, DefaultPressureThreshold)

			got, ok, err := s.Poll()
			require.NoError(t, err)
			assert.Equal(t, tt.wantTouch, ok)

			if tt.wantTouch {
				assert.Equal(t, RawSample{X: 1200, Y: 2400, Z: tt.pressure}, got)
				assert.Equal(t, []byte{
					xpt2046.CmdReadZ1, xpt2046.CmdReadZ2, xpt2046.CmdReadX, xpt2046.CmdReadY &^ 1,
				}, bus.Commands())
			} else {
				assert.Equal(t, RawSample{}, got)
				assert.Equal(t, []byte{xpt2046.CmdReadZ1, xpt2046.CmdReadZ2}, bus.Commands(),
					"X/Y must not be read without a contact")
			}
		})
	}
}

func TestPoll_YCommandHasLowBitCleared(t *testing.T) {
	bus := xpt2046.NewMock(nil)
	bus.Press(100, 200, 500)

	_, ok, err := NewSampler(bus, 0).Poll()
	require.NoError(t, err)
	require.True(t, ok)

	cmds := bus.Commands()
	assert.Equal(t, byte(0xD0), cmds[len(cmds)-1])
}

func TestTouched(t *testing.T) {
	bus := xpt2046.NewMock(nil)
	s := NewSampler(bus, 0)

	touched, err := s.Touched()
	require.NoError(t, err)
	assert.False(t, touched)

	bus.Press(100, 200, 500)
	touched, err = s.Touched()
	require.NoError(t, err)
	assert.True(t, touched)
	assert.Len(t, bus.Commands(), 4, "Touched reads pressure only")
}

func TestPoll_TransportErrors(t *testing.T) {
	boom := errors.New("bus fault")

	for _, cmd := range []byte{xpt2046.CmdReadZ1, xpt2046.CmdReadZ2} {
		_, ok, err := NewSampler(failingBus{failOn: cmd, err: boom}, 0).Poll()
		assert.ErrorIs(t, err, boom)
		assert.False(t, ok)
	}

	// failingBus answers z2 = 0, so the pressure reads full scale and X/Y are requested.
	for _, cmd := range []byte{xpt2046.CmdReadX, xpt2046.CmdReadY &^ 1} {
		_, ok, err := NewSampler(failingBus{failOn: cmd, err: boom}, 0).Poll()
		assert.ErrorIs(t, err, boom)
		assert.False(t, ok)
	}
}
