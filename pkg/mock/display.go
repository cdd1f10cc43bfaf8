package mock

import (
	"strings"
	"sync"

	"github.com/itohio/floodmon/pkg/hal"
)

// maxOps bounds the recorded drawing operations.
const maxOps = 256

// Point is a display coordinate.
type Point struct {
	X, Y int16
}

// OpKind identifies a recorded drawing operation.
type OpKind uint8

const (
	OpString OpKind = iota
	OpBitmap
	OpBar
	OpFlush
)

// Op is a recorded drawing operation.
type Op struct {
	Kind    OpKind
	Text    string
	Percent uint16
	At      Point
}

// Screen is the content of the panel as of the last flush.
type Screen struct {
	Texts   map[Point]string
	Bars    map[Point]uint16
	Bitmap  []byte
	Flushes int
}

// Text returns the text at p with trailing blanks removed.
func (s Screen) Text(x, y int16) string {
	return strings.TrimRight(s.Texts[Point{X: x, Y: y}], " ")
}

// Display simulates the graphical panel. Text is modelled per draw position:
// drawing at a position replaces whatever was drawn there before.
type Display struct {
	mu      sync.RWMutex
	pending Screen
	visible Screen
	flushes int
	ops     []Op
}

var _ hal.Display = (*Display)(nil)

// NewDisplay creates a blank simulated panel.
func NewDisplay() *Display {
	return &Display{
		pending: newScreen(),
		visible: newScreen(),
	}
}

func newScreen() Screen {
	return Screen{
		Texts: make(map[Point]string),
		Bars:  make(map[Point]uint16),
	}
}

// DrawString draws text at (x, y).
func (d *Display) DrawString(text string, x, y int16) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p := Point{X: x, Y: y}
	d.pending.Texts[p] = text
	d.record(Op{Kind: OpString, Text: text, At: p})
}

// DrawBitmap replaces the frame buffer, clearing text and bars.
func (d *Display) DrawBitmap(bitmap []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = newScreen()
	d.pending.Bitmap = append([]byte(nil), bitmap...)
	d.record(Op{Kind: OpBitmap})
}

// DrawBar draws a level bar at (x, y).
func (d *Display) DrawBar(percent uint16, x, y int16) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p := Point{X: x, Y: y}
	d.pending.Bars[p] = percent
	d.record(Op{Kind: OpBar, Percent: percent, At: p})
}

// Flush makes the pending frame visible.
func (d *Display) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.flushes++
	d.visible = d.pending.clone()
	d.visible.Flushes = d.flushes
	d.record(Op{Kind: OpFlush})
}

// Screen returns a copy of the visible frame.
func (d *Display) Screen() Screen {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.visible.clone()
}

// Ops returns the most recent drawing operations, oldest first.
func (d *Display) Ops() []Op {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]Op, len(d.ops))
	copy(result, d.ops)
	return result
}

// record must be called with mu held.
func (d *Display) record(op Op) {
	if len(d.ops) >= maxOps {
		d.ops = d.ops[1:]
	}
	d.ops = append(d.ops, op)
}

func (s Screen) clone() Screen {
	c := Screen{
		Texts:   make(map[Point]string, len(s.Texts)),
		Bars:    make(map[Point]uint16, len(s.Bars)),
		Bitmap:  append([]byte(nil), s.Bitmap...),
		Flushes: s.Flushes,
	}
	for k, v := range s.Texts {
		c.Texts[k] = v
	}
	for k, v := range s.Bars {
		c.Bars[k] = v
	}
	return c
}
