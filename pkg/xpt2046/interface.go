// Package xpt2046 implements transports to an XPT2046 resistive touch
// controller: a bit-banged GPIO link, a USB-serial bridge and a simulated panel.
package xpt2046

import "errors"

// Control bytes understood by the controller. Each selects a 12-bit
// differential conversion of the named channel.
const (
	CmdReadX  byte = 0x91
	CmdReadY  byte = 0xD1
	CmdReadZ1 byte = 0xB1
	CmdReadZ2 byte = 0xC1
)

// MaxValue is the full-scale reading of the 12-bit converter.
const MaxValue = 4095

// ErrNotConnected is returned by transports that were closed or never opened.
var ErrNotConnected = errors.New("xpt2046: not connected")

// Transport defines a synchronous command/response channel to the controller.
// Transact sends one control byte and returns the 12-bit conversion result.
// Implementations serialize transactions.
type Transport interface {
	Transact(cmd byte) (uint16, error)
}

var (
	_ Transport = (*BitBang)(nil)
	_ Transport = (*Serial)(nil)
	_ Transport = (*Mock)(nil)
)
