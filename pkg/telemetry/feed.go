package telemetry

import (
	"errors"
	"sync"

	"github.com/itohio/floodmon/pkg/flood"
	"github.com/itohio/floodmon/pkg/hal"
)

// Feed turns decisions of an in-process monitor into frames.
// It implements both Link and the decider's Reporter.
type Feed struct {
	clock   hal.Clock
	bufSize int

	mu        sync.RWMutex
	frames    chan Frame
	connected bool
	dropped   uint64
}

// NewFeed creates a feed stamping frames with clock. A nil clock uses the
// system clock.
func NewFeed(clock hal.Clock, bufSize int) *Feed {
	if clock == nil {
		clock = hal.SystemClock{}
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}
	return &Feed{
		clock:   clock,
		bufSize: bufSize,
		frames:  make(chan Frame),
	}
}

// Connect starts accepting decisions.
func (f *Feed) Connect() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.connected {
		return errors.New("already connected")
	}
	f.frames = make(chan Frame, f.bufSize)
	f.connected = true
	return nil
}

// Close stops accepting decisions and closes the frame channel.
func (f *Feed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.connected {
		return nil
	}
	f.connected = false
	close(f.frames)
	return nil
}

// Frames returns the channel of produced frames.
func (f *Feed) Frames() <-chan Frame {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.frames
}

// IsConnected returns whether the feed accepts decisions.
func (f *Feed) IsConnected() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.connected
}

// Dropped returns the number of frames dropped because the channel was full.
func (f *Feed) Dropped() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dropped
}

// Report converts d to a frame. It never blocks; decisions are dropped while
// the feed is closed or full.
func (f *Feed) Report(d flood.Decision) {
	frame := FrameOf(f.clock.Now(), d)

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.connected {
		return
	}
	select {
	case f.frames <- frame:
	default:
		f.dropped++
	}
}
