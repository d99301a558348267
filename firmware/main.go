//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"time"
)

var (
	uart = machine.UART0

	// Serial buffer for reading request lines
	serialBuffer [LINE_MAX]byte
	serialPos    int
	overflow     bool
)

func main() {
	PIN_TP_MOSI.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_TP_CLK.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_TP_CS.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_TP_MISO.Configure(machine.PinConfig{Mode: machine.PinInput})

	// Idle bus: deselected, clock and data low
	PIN_TP_CS.High()
	PIN_TP_CLK.Low()
	PIN_TP_MOSI.Low()

	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	for {
		processSerial()
		time.Sleep(50 * time.Microsecond)
	}
}

// processSerial answers every complete request line with one conversion.
func processSerial() {
	for uart.Buffered() > 0 {
		data, err := uart.ReadByte()
		if err != nil {
			break
		}

		if data == '\n' || data == '\r' {
			if serialPos == 2 && !overflow {
				if cmd, ok := parseHexByte(serialBuffer[0], serialBuffer[1]); ok {
					print(transact(cmd))
					print("\n")
				}
			}
			serialPos = 0
			overflow = false
			continue
		}

		if data == ' ' || data == '\t' {
			continue
		}

		if serialPos < len(serialBuffer) {
			serialBuffer[serialPos] = data
			serialPos++
		} else {
			overflow = true
		}
	}
}

func parseHexByte(hi, lo byte) (byte, bool) {
	h, ok1 := hexNibble(hi)
	l, ok2 := hexNibble(lo)
	return h<<4 | l, ok1 && ok2
}

func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// transact clocks out cmd MSB first, then clocks in 16 bits and returns the
// 12-bit conversion.
func transact(cmd byte) uint16 {
	PIN_TP_CS.Low()

	for i := 7; i >= 0; i-- {
		PIN_TP_MOSI.Set(cmd&(1<<i) != 0)
		PIN_TP_CLK.Low()
		halfClock()
		PIN_TP_CLK.High()
		halfClock()
	}

	PIN_TP_MOSI.Low()
	PIN_TP_CLK.Low()

	var word uint16
	for i := 0; i < 16; i++ {
		PIN_TP_CLK.High()
		halfClock()
		PIN_TP_CLK.Low()
		halfClock()
		word <<= 1
		if PIN_TP_MISO.Get() {
			word |= 1
		}
	}

	PIN_TP_CS.High()
	return word >> 4
}

func halfClock() {
	time.Sleep(HALF_CLOCK_US * time.Microsecond)
}
