//go:build tinygo

package main

import "machine"

const (
	// Touch controller wiring
	PIN_TP_MOSI = machine.D10
	PIN_TP_MISO = machine.D9
	PIN_TP_CLK  = machine.D8
	PIN_TP_CS   = machine.D7

	// Half period of the bit-banged clock in microseconds
	HALF_CLOCK_US = 5

	// Serial configuration
	// Request "b1\n" is 3 bytes, reply "4095\n" is at most 5 bytes.
	// A 4-conversion poll every 10ms is 32 bytes, far below 115200 baud.
	UART_BAUD_RATE = 115200

	// Maximum request line length
	LINE_MAX = 4
)
