// Package hal defines the peripheral capabilities used by the monitoring tasks.
//
// Every implementation is owned by exactly one task. Implementations are
// treated as infallible: drivers that can fail log the error and carry on.
package hal

import (
	"context"
	"time"
)

const (
	// DisplayWidth is the panel width in pixels.
	DisplayWidth = 128
	// DisplayHeight is the panel height in pixels.
	DisplayHeight = 64
	// BitmapSize is the size of a full-screen 1bpp bitmap (page-organized).
	BitmapSize = DisplayWidth * DisplayHeight / 8

	// BarWidth is the width of a level bar in pixels.
	BarWidth = 10
	// BarHeight is the height of a full (100%) level bar in pixels.
	BarHeight = 40
)

// Display is a small monochrome graphical panel.
// Drawing calls modify the frame buffer; Flush sends it to the panel.
type Display interface {
	// DrawString draws text at (x, y), overwriting the background of each character cell.
	DrawString(text string, x, y int16)
	// DrawBitmap replaces the frame buffer with a BitmapSize page-organized bitmap.
	DrawBitmap(bitmap []byte)
	// DrawBar draws a proportional level bar whose base is at (x, y).
	DrawBar(percent uint16, x, y int16)
	Flush()
}

// PixelBus transmits bytes to an addressable LED chain.
type PixelBus interface {
	// Put blocks until the byte was handed to the peripheral.
	Put(b byte)
}

// Channel selects an analog input.
type Channel uint8

const (
	// ChannelRain is ADC0 (GPIO 26), the rainfall volume input.
	ChannelRain Channel = 0
	// ChannelWater is ADC1 (GPIO 27), the water level input.
	ChannelWater Channel = 1
)

// AnalogInput is a multiplexed 12-bit ADC.
type AnalogInput interface {
	Select(ch Channel)
	// Read samples the selected channel (0-4095).
	Read() uint16
}

// PWM is a single pulse-width-modulated output.
type PWM interface {
	// Top returns the counter wrap value; SetDuty(Top()) is 100% duty.
	Top() uint32
	SetDuty(level uint32)
}

// DigitalOutput is a single GPIO output.
type DigitalOutput interface {
	Set(level bool)
}

// Clock provides time and task suspension.
type Clock interface {
	Now() time.Time
	// Sleep suspends the calling task for d. It returns early with ctx.Err() when ctx is done.
	Sleep(ctx context.Context, d time.Duration) error
}

// SystemClock is the Clock backed by the runtime timer.
type SystemClock struct{}

var _ Clock = SystemClock{}

// Now returns the current time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Sleep suspends for d or until ctx is done.
func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// BusyWait spins for at least d without yielding to other tasks.
// Used for protocol delays that must not be stretched by scheduling.
func BusyWait(d time.Duration) {
	start := time.Now()
	for time.Since(start) < d {
	}
}
