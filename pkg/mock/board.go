package mock

import (
	"github.com/itohio/floodmon/pkg/config"
	"github.com/itohio/floodmon/pkg/hal"
)

// BuzzerTop is the PWM wrap value of the simulated buzzer.
const BuzzerTop = 59609

// Board bundles a simulated device for every peripheral of the monitor.
type Board struct {
	Joystick *Joystick
	Display  *Display
	Pixels   *PixelBus
	Buzzer   *PWM
	Red      *Pin
	Green    *Pin
}

// NewBoard creates a simulated board. A nil clock uses the system clock.
func NewBoard(cfg *config.SimulationConfig, clock hal.Clock) *Board {
	if clock == nil {
		clock = hal.SystemClock{}
	}

	return &Board{
		Joystick: NewJoystick(cfg, clock),
		Display:  NewDisplay(),
		Pixels:   NewPixelBus(),
		Buzzer:   NewPWM(BuzzerTop, clock),
		Red:      NewPin(clock),
		Green:    NewPin(clock),
	}
}
