package mock

import (
	"image/color"
	"sync"
	"time"

	"github.com/itohio/floodmon/pkg/hal"
)

// maxEvents bounds the recorded output history.
const maxEvents = 1024

// PixelCount is the number of LEDs in the simulated matrix.
const PixelCount = 25

// PixelBus simulates a WS2812 chain of PixelCount LEDs.
// Bytes arrive in G, R, B order; every complete frame is latched.
type PixelBus struct {
	mu      sync.RWMutex
	pending []byte
	pixels  [PixelCount]color.RGBA
	frames  int
}

var _ hal.PixelBus = (*PixelBus)(nil)

// NewPixelBus creates a dark simulated matrix.
func NewPixelBus() *PixelBus {
	return &PixelBus{
		pending: make([]byte, 0, PixelCount*3),
	}
}

// Put receives one byte.
func (p *PixelBus) Put(b byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pending = append(p.pending, b)
	if len(p.pending) < PixelCount*3 {
		return
	}

	for i := range PixelCount {
		g, r, bl := p.pending[i*3], p.pending[i*3+1], p.pending[i*3+2]
		p.pixels[i] = color.RGBA{R: r, G: g, B: bl, A: 255}
	}
	p.pending = p.pending[:0]
	p.frames++
}

// Pixels returns the latched matrix colors.
func (p *PixelBus) Pixels() [PixelCount]color.RGBA {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pixels
}

// Frames returns the number of complete frames received.
func (p *PixelBus) Frames() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.frames
}

// Lit reports whether any pixel is on.
func (p *PixelBus) Lit() bool {
	for _, c := range p.Pixels() {
		if c.R != 0 || c.G != 0 || c.B != 0 {
			return true
		}
	}
	return false
}

// DutyEvent is a recorded PWM duty change.
type DutyEvent struct {
	At    time.Time
	Level uint32
}

// PWM simulates a PWM output.
type PWM struct {
	top   uint32
	clock hal.Clock

	mu      sync.RWMutex
	duty    uint32
	history []DutyEvent
}

var _ hal.PWM = (*PWM)(nil)

// NewPWM creates a simulated PWM output with the given counter top.
func NewPWM(top uint32, clock hal.Clock) *PWM {
	if clock == nil {
		clock = hal.SystemClock{}
	}
	return &PWM{top: top, clock: clock}
}

// Top returns the counter wrap value.
func (p *PWM) Top() uint32 {
	return p.top
}

// SetDuty sets the output level.
func (p *PWM) SetDuty(level uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.duty = level
	if len(p.history) >= maxEvents {
		p.history = p.history[1:]
	}
	p.history = append(p.history, DutyEvent{At: p.clock.Now(), Level: level})
}

// Duty returns the current level.
func (p *PWM) Duty() uint32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.duty
}

// Fraction returns the current duty cycle in [0, 1].
func (p *PWM) Fraction() float64 {
	if p.top == 0 {
		return 0
	}
	return float64(p.Duty()) / float64(p.top)
}

// History returns the recorded duty changes, oldest first.
func (p *PWM) History() []DutyEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make([]DutyEvent, len(p.history))
	copy(result, p.history)
	return result
}

// PinEvent is a recorded output level change.
type PinEvent struct {
	At    time.Time
	Level bool
}

// Pin simulates a digital output.
type Pin struct {
	clock hal.Clock

	mu      sync.RWMutex
	level   bool
	history []PinEvent
}

var _ hal.DigitalOutput = (*Pin)(nil)

// NewPin creates a simulated output, initially low.
func NewPin(clock hal.Clock) *Pin {
	if clock == nil {
		clock = hal.SystemClock{}
	}
	return &Pin{clock: clock}
}

// Set drives the output.
func (p *Pin) Set(level bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
	if len(p.history) >= maxEvents {
		p.history = p.history[1:]
	}
	p.history = append(p.history, PinEvent{At: p.clock.Now(), Level: level})
}

// Level returns the current output level.
func (p *Pin) Level() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.level
}

// History returns the recorded level changes, oldest first.
func (p *Pin) History() []PinEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make([]PinEvent, len(p.history))
	copy(result, p.history)
	return result
}
