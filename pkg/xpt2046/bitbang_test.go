package xpt2046

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChip emulates the controller side of the wire: it latches MOSI on
// rising clock edges while selected and shifts a response out on MISO.
type fakeChip struct {
	responses map[byte]uint16 // 12-bit value per command

	cs, clk, mosi bool
	rising        int
	cmd           byte
	word          uint16
	commands      []byte
	transactions  int
	failOn        Line
	failErr       error
}

func newFakeChip(responses map[byte]uint16) *fakeChip {
	return &fakeChip{responses: responses, cs: true, failOn: -1}
}

func (f *fakeChip) Set(line Line, high bool) error {
	if line == f.failOn {
		return f.failErr
	}
	switch line {
	case LineCS:
		if f.cs && !high {
			f.rising = 0
			f.cmd = 0
		}
		if !f.cs && high {
			f.transactions++
		}
		f.cs = high
	case LineMOSI:
		f.mosi = high
	case LineCLK:
		if !f.clk && high && !f.cs {
			f.rising++
			if f.rising <= 8 {
				f.cmd <<= 1
				if f.mosi {
					f.cmd |= 1
				}
				if f.rising == 8 {
					f.commands = append(f.commands, f.cmd)
					f.word = f.responses[f.cmd] << 4
				}
			}
		}
		f.clk = high
	}
	return nil
}

// MISO presents bit (15-k) after the k-th read clock.
func (f *fakeChip) MISO() bool {
	k := f.rising - 9
	if f.cs || k < 0 || k > 15 {
		return false
	}
	return f.word&(1<<(15-k)) != 0
}

func TestBitBang_Transact(t *testing.T) {
	chip := newFakeChip(map[byte]uint16{
		CmdReadZ1:     300,
		CmdReadZ2:     3900,
		CmdReadX:      646,
		CmdReadY &^ 1: 3165,
	})
	bus := NewBitBang(chip, -1)

	tests := []struct {
		cmd  byte
		want uint16
	}{
		{CmdReadZ1, 300},
		{CmdReadZ2, 3900},
		{CmdReadX, 646},
		{CmdReadY &^ 1, 3165},
	}

	for _, tt := range tests {
		got, err := bus.Transact(tt.cmd)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "command 0x%02X", tt.cmd)
	}

	assert.Equal(t, []byte{CmdReadZ1, CmdReadZ2, CmdReadX, CmdReadY &^ 1}, chip.commands)
	assert.Equal(t, 4, chip.transactions)
	assert.True(t, chip.cs, "chip must be deselected after a transaction")
}

func TestBitBang_ClocksTwentyFourBits(t *testing.T) {
	chip := newFakeChip(map[byte]uint16{CmdReadX: MaxValue})
	bus := NewBitBang(chip, -1)

	got, err := bus.Transact(CmdReadX)
	require.NoError(t, err)
	assert.Equal(t, uint16(MaxValue), got)
	assert.Equal(t, 8+16, chip.rising)
}

func TestBitBang_DelaysEachHalfPeriod(t *testing.T) {
	chip := newFakeChip(nil)
	bus := NewBitBang(chip, 0)
	assert.Equal(t, DefaultHalfClock, bus.halfClock)

	var sleeps int
	bus.sleep = func(time.Duration) { sleeps++ }

	_, err := bus.Transact(CmdReadX)
	require.NoError(t, err)
	assert.Equal(t, 2*(8+16), sleeps)
}

func TestBitBang_PinError(t *testing.T) {
	chip := newFakeChip(nil)
	chip.failOn = LineCLK
	chip.failErr = errors.New("line busy")
	bus := NewBitBang(chip, -1)

	_, err := bus.Transact(CmdReadX)
	require.Error(t, err)
	assert.ErrorIs(t, err, chip.failErr)
	assert.Contains(t, err.Error(), "CLK")
}

func TestBitBang_Reset(t *testing.T) {
	chip := newFakeChip(nil)
	chip.cs = false
	chip.clk = true
	chip.mosi = true
	bus := NewBitBang(chip, -1)

	require.NoError(t, bus.Reset())
	assert.True(t, chip.cs)
	assert.False(t, chip.clk)
	assert.False(t, chip.mosi)
}
