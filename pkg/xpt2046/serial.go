package xpt2046

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the baud rate of the bridge firmware.
	DefaultBaudRate = 115200
	// DefaultTimeout bounds the wait for a single reply line.
	DefaultTimeout = 100 * time.Millisecond
	// maxLineLength bounds a reply line; replies are at most 4 digits.
	maxLineLength = 16
)

// ErrTimeout is returned when the bridge does not answer in time.
var ErrTimeout = errors.New("xpt2046: bridge reply timeout")

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial talks to the controller through the USB-serial bridge firmware.
// Requests are "<hex cmd>\n", replies "<decimal value>\n".
type Serial struct {
	port     string
	baudRate int

	conn      io.ReadWriter
	closer    io.Closer
	mu        sync.Mutex
	connected bool
}

// NewSerial creates a bridge transport for the given port.
func NewSerial(port string, baudRate int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	return &Serial{
		port:     port,
		baudRate: baudRate,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Connect opens the serial port.
func (s *Serial) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return fmt.Errorf("already connected")
	}

	port, err := serial.Open(s.port, &serial.Mode{BaudRate: s.baudRate})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", s.port, err)
	}
	if err := port.SetReadTimeout(DefaultTimeout); err != nil {
		port.Close()
		return fmt.Errorf("failed to set read timeout on %s: %w", s.port, err)
	}

	s.conn = port
	s.closer = port
	s.connected = true

	return nil
}

// Close closes the serial port.
func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return nil
	}

	if s.closer != nil {
		if err := s.closer.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
	}
	s.conn = nil
	s.closer = nil
	s.connected = false

	return nil
}

// IsConnected returns whether the port is open.
func (s *Serial) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Transact sends one control byte to the bridge and waits for the reading.
func (s *Serial) Transact(cmd byte) (uint16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return 0, ErrNotConnected
	}

	if _, err := io.WriteString(s.conn, formatRequest(cmd)); err != nil {
		return 0, fmt.Errorf("failed to send command 0x%02X: %w", cmd, err)
	}

	for {
		line, err := readLine(s.conn)
		if err != nil {
			return 0, fmt.Errorf("failed to read reply to 0x%02X: %w", cmd, err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		return parseReply(line)
	}
}

// formatRequest encodes a control byte as a request line.
func formatRequest(cmd byte) string {
	return fmt.Sprintf("%02x\n", cmd)
}

// parseReply parses a reply line into a 12-bit reading.
func parseReply(line string) (uint16, error) {
	v, err := strconv.ParseUint(line, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid reply %q: %w", line, err)
	}
	if v > MaxValue {
		return 0, fmt.Errorf("reply out of range: %d (max %d)", v, MaxValue)
	}
	return uint16(v), nil
}

// readLine reads bytes up to and excluding '\n'. A read returning no data
// means the port timed out.
func readLine(r io.Reader) (string, error) {
	var sb strings.Builder
	var buf [1]byte
	for {
		n, err := r.Read(buf[:])
		if err != nil {
			return "", err
		}
		if n == 0 {
			return "", ErrTimeout
		}
		if buf[0] == '\n' {
			return sb.String(), nil
		}
		if sb.Len() >= maxLineLength {
			return "", fmt.Errorf("reply line too long")
		}
		sb.WriteByte(buf[0])
	}
}
