package tasks

import (
	"context"
	"time"

	"github.com/itohio/floodmon/pkg/flood"
	"github.com/itohio/floodmon/pkg/hal"
	"github.com/itohio/floodmon/pkg/queue"
)

const (
	// MatrixSize is the number of LEDs in the 5x5 matrix.
	MatrixSize = 25
	// SettleDelay is the WS2812 reset time held after every frame.
	SettleDelay = 100 * time.Microsecond
	// MatrixYield is the pause after each handled message.
	MatrixYield = 10 * time.Millisecond
)

// Pixel is one LED color.
type Pixel struct {
	R, G, B uint8
}

var (
	off    = Pixel{}
	red    = Pixel{R: 25}
	yellow = Pixel{R: 25, G: 25}
)

// WarningGlyph is the 5x5 warning sign shown during an alert, row by row.
var WarningGlyph = [MatrixSize]Pixel{
	off, off, off, off, off,
	red, red, yellow, red, red,
	red, red, red, red, red,
	off, red, yellow, red, off,
	off, off, red, off, off,
}

// matrix owns the pixel buffer of the LED matrix.
type matrix struct {
	bus    hal.PixelBus
	pixels [MatrixSize]Pixel
	settle func(time.Duration)
}

func newMatrix(bus hal.PixelBus, settle func(time.Duration)) *matrix {
	if settle == nil {
		settle = hal.BusyWait
	}
	return &matrix{bus: bus, settle: settle}
}

func (m *matrix) SetPixel(index int, r, g, b uint8) {
	if index < 0 || index >= MatrixSize {
		return
	}
	m.pixels[index] = Pixel{R: r, G: g, B: b}
}

func (m *matrix) Clear() {
	for i := range m.pixels {
		m.pixels[i] = off
	}
}

// Write sends the buffer in G, R, B order and then holds the settle delay.
// It returns no earlier than SettleDelay after the last byte.
func (m *matrix) Write() {
	for _, p := range m.pixels {
		m.bus.Put(p.G)
		m.bus.Put(p.R)
		m.bus.Put(p.B)
	}
	m.settle(SettleDelay)
}

// MatrixActuator shows the warning glyph on the LED matrix while alerting.
type MatrixActuator struct {
	in     *queue.Queue[flood.AlertState]
	matrix *matrix
	clock  hal.Clock
}

// NewMatrixActuator creates the matrix task. A nil settle busy-waits.
func NewMatrixActuator(in *queue.Queue[flood.AlertState], bus hal.PixelBus, clock hal.Clock, settle func(time.Duration)) *MatrixActuator {
	if clock == nil {
		clock = hal.SystemClock{}
	}
	return &MatrixActuator{
		in:     in,
		matrix: newMatrix(bus, settle),
		clock:  clock,
	}
}

// Run clears the matrix and handles alert states until ctx is done.
func (a *MatrixActuator) Run(ctx context.Context) error {
	a.matrix.Clear()
	a.matrix.Write()

	for {
		state, err := a.in.Receive(ctx)
		if err != nil {
			return err
		}

		a.Apply(state)

		if err := a.clock.Sleep(ctx, MatrixYield); err != nil {
			return err
		}
	}
}

// Apply renders the matrix for one received state.
func (a *MatrixActuator) Apply(state flood.AlertState) {
	switch state {
	case flood.Alert:
		for i, p := range WarningGlyph {
			a.matrix.SetPixel(i, p.R, p.G, p.B)
		}
	case flood.Calm:
		a.matrix.Clear()
	}
	a.matrix.Write()
}
