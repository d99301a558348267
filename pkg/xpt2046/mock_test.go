package xpt2046

import (
	"context"
	"testing"
	"time"

	"github.com/itohio/gotouch/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func read(t *testing.T, m *Mock, cmd byte) int {
	t.Helper()
	v, err := m.Transact(cmd)
	require.NoError(t, err)
	return int(v)
}

func TestMock_Released(t *testing.T) {
	m := NewMock(nil)

	z := read(t, m, CmdReadZ1) + MaxValue - read(t, m, CmdReadZ2)
	assert.Equal(t, 0, z)
}

func TestMock_PressureRoundTrip(t *testing.T) {
	m := NewMock(nil)

	for _, pressure := range []int{99, 100, 101, 800, 3000} {
		m.Press(1000, 2000, pressure)
		z := read(t, m, CmdReadZ1) + MaxValue - read(t, m, CmdReadZ2)
		assert.Equal(t, pressure, z)
	}
}

func TestMock_Coordinates(t *testing.T) {
	m := NewMock(nil)
	m.Press(646, 3165, 500)

	assert.Equal(t, 646, read(t, m, CmdReadX))
	assert.Equal(t, 3165, read(t, m, CmdReadY&^1))
	assert.Equal(t, 3165, read(t, m, CmdReadY))

	m.Press(-20, 5000, 500)
	assert.Equal(t, 0, read(t, m, CmdReadX))
	assert.Equal(t, MaxValue, read(t, m, CmdReadY&^1))
}

func TestMock_Noise(t *testing.T) {
	m := NewMock(&config.MockConfig{Noise: 5, StepPeriod: time.Millisecond, Pause: time.Millisecond})
	m.Press(2000, 2000, 500)

	for range 100 {
		x := read(t, m, CmdReadX)
		assert.InDelta(t, 2000, x, 5)
	}
}

func TestMock_CommandLog(t *testing.T) {
	m := NewMock(nil)

	read(t, m, CmdReadZ1)
	read(t, m, CmdReadZ2)
	assert.Equal(t, []byte{CmdReadZ1, CmdReadZ2}, m.Commands())

	m.ResetCommands()
	assert.Empty(t, m.Commands())
}

func TestMock_UnsupportedCommand(t *testing.T) {
	m := NewMock(nil)
	_, err := m.Transact(0xA1)
	assert.Error(t, err)
}

func TestMock_SimulateStopsOnCancel(t *testing.T) {
	m := NewMock(&config.MockConfig{Pressure: 800, StepPeriod: time.Millisecond, Pause: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Simulate(ctx)
	}()

	// Wait until the script presses the panel at least once.
	assert.Eventually(t, func() bool {
		return read(t, m, CmdReadZ1) > 0
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Simulate did not return after cancel")
	}

	z := read(t, m, CmdReadZ1) + MaxValue - read(t, m, CmdReadZ2)
	assert.Equal(t, 0, z, "panel must be released after Simulate returns")
}
