package telemetry

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// DefaultBaudRate is the USB console baud rate of the board.
const DefaultBaudRate = 115200

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err == nil {
		result := make([]Port, 0, len(details))
		for _, d := range details {
			desc := d.Name
			if d.IsUSB {
				desc = fmt.Sprintf("%s (USB %s:%s %s)", d.Name, d.VID, d.PID, d.Product)
			}
			result = append(result, Port{Name: d.Name, Description: desc})
		}
		return result, nil
	}

	names, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(names))
	for _, name := range names {
		result = append(result, Port{Name: name, Description: name})
	}
	return result, nil
}

// Opener opens a named port.
type Opener func(name string, baudRate int) (io.ReadWriteCloser, error)

// OpenSerial opens a real serial port.
func OpenSerial(name string, baudRate int) (io.ReadWriteCloser, error) {
	return serial.Open(name, &serial.Mode{BaudRate: baudRate})
}

// Serial reads telemetry frames from a board over a serial port.
type Serial struct {
	port     string
	baudRate int
	retries  int
	bufSize  int
	open     Opener

	mu        sync.RWMutex
	conn      io.ReadWriteCloser
	frames    chan Frame
	cancel    context.CancelFunc
	done      chan struct{}
	connected bool
	dropped   uint64
}

// NewSerial creates a serial link. Zero values select defaults.
func NewSerial(port string, baudRate, retries, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	return &Serial{
		port:     port,
		baudRate: baudRate,
		retries:  retries,
		bufSize:  bufSize,
		open:     OpenSerial,
		frames:   make(chan Frame),
	}
}

// WithOpener replaces the port opener.
func (s *Serial) WithOpener(open Opener) *Serial {
	s.open = open
	return s
}

// Connect opens the port, retrying with exponential backoff, and starts
// reading frames. The lock is only held to publish the open port.
func (s *Serial) Connect() error {
	if s.IsConnected() {
		return errors.New("already connected")
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 2 * time.Second

	var conn io.ReadWriteCloser
	err := backoff.RetryNotify(func() error {
		c, err := s.open(s.port, s.baudRate)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}, backoff.WithMaxRetries(b, uint64(max(s.retries, 0))), func(err error, d time.Duration) {
		log.Printf("Failed to open %s, retrying in %v: %v", s.port, d, err)
	})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", s.port, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		conn.Close()
		return errors.New("already connected")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.conn = conn
	s.frames = make(chan Frame, s.bufSize)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.connected = true

	go s.readFrames(ctx, conn, s.frames, s.done)

	return nil
}

// Close closes the port and waits for the reader to stop.
func (s *Serial) Close() error {
	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return nil
	}

	s.cancel()
	if err := s.conn.Close(); err != nil {
		log.Printf("Error closing serial port: %v", err)
	}
	s.conn = nil
	s.connected = false
	done := s.done
	s.mu.Unlock()

	<-done
	return nil
}

// Frames returns the channel of received frames.
func (s *Serial) Frames() <-chan Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frames
}

// IsConnected returns whether the port is open.
func (s *Serial) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// BufferSize returns the capacity of the frame channel.
func (s *Serial) BufferSize() int {
	return s.bufSize
}

// Dropped returns the number of frames dropped because the channel was full.
func (s *Serial) Dropped() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dropped
}

// readFrames reads lines until the port is closed. It owns frames and
// closes it on exit.
func (s *Serial) readFrames(ctx context.Context, conn io.Reader, frames chan<- Frame, done chan<- struct{}) {
	defer close(done)
	defer close(frames)

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		frame, err := ParseLine(line)
		if err != nil {
			// Board boot messages share the console
			log.Printf("Failed to parse line '%s': %v", line, err)
			continue
		}

		select {
		case frames <- frame:
		default:
			s.mu.Lock()
			s.dropped++
			s.mu.Unlock()
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil && !errors.Is(err, io.EOF) {
		log.Printf("Error reading from serial port: %v", err)
	}
}
