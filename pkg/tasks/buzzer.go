package tasks

import (
	"context"
	"time"

	"github.com/chewxy/math32"
	"github.com/itohio/floodmon/pkg/flood"
	"github.com/itohio/floodmon/pkg/hal"
	"github.com/itohio/floodmon/pkg/queue"
)

const (
	// BuzzerStep is how long each envelope step is held.
	BuzzerStep = 50 * time.Millisecond
	// BuzzerYield is the pause after each handled message.
	BuzzerYield = 100 * time.Millisecond
)

// Envelope is the duty cycle sequence played once per Alert message.
var Envelope = [...]float32{0.3, 0.5, 0.8}

// DutyLevel converts a duty cycle fraction to a PWM level, rounding down.
func DutyLevel(top uint32, fraction float32) uint32 {
	if fraction <= 0 {
		return 0
	}
	if fraction >= 1 {
		return top
	}
	return uint32(math32.Floor(float32(top) * fraction))
}

// BuzzerActuator sounds the buzzer envelope on every Alert message and
// silences it on Calm.
type BuzzerActuator struct {
	in     *queue.Queue[flood.AlertState]
	pwm    hal.PWM
	clock  hal.Clock
	levels [len(Envelope)]uint32
}

// NewBuzzerActuator creates the buzzer task.
func NewBuzzerActuator(in *queue.Queue[flood.AlertState], pwm hal.PWM, clock hal.Clock) *BuzzerActuator {
	if clock == nil {
		clock = hal.SystemClock{}
	}

	a := &BuzzerActuator{
		in:    in,
		pwm:   pwm,
		clock: clock,
	}
	top := pwm.Top()
	for i, f := range Envelope {
		a.levels[i] = DutyLevel(top, f)
	}
	return a
}

// Run silences the buzzer and handles alert states until ctx is done.
func (a *BuzzerActuator) Run(ctx context.Context) error {
	a.pwm.SetDuty(0)

	for {
		state, err := a.in.Receive(ctx)
		if err != nil {
			return err
		}

		if err := a.Apply(ctx, state); err != nil {
			return err
		}

		if err := a.clock.Sleep(ctx, BuzzerYield); err != nil {
			return err
		}
	}
}

// Apply plays the envelope for Alert or silences the buzzer for Calm.
// After the envelope the last level is held until the next message.
func (a *BuzzerActuator) Apply(ctx context.Context, state flood.AlertState) error {
	switch state {
	case flood.Alert:
		for _, level := range a.levels {
			a.pwm.SetDuty(level)
			if err := a.clock.Sleep(ctx, BuzzerStep); err != nil {
				a.pwm.SetDuty(0)
				return err
			}
		}
	case flood.Calm:
		a.pwm.SetDuty(0)
	}
	return nil
}
