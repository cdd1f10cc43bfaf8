package tasks

import (
	"context"
	"time"

	"github.com/itohio/floodmon/pkg/flood"
	"github.com/itohio/floodmon/pkg/hal"
	"github.com/itohio/floodmon/pkg/queue"
)

const (
	// IndicatorPulse is the on and off time of the alert blink.
	IndicatorPulse = 100 * time.Millisecond
	// IndicatorYield is the pause after each handled message.
	IndicatorYield = 10 * time.Millisecond
)

// IndicatorActuator drives the bicolor indicator light.
// Calm keeps the calm light on; every Alert message produces one blink of the
// alert light.
type IndicatorActuator struct {
	in    *queue.Queue[flood.AlertState]
	calm  hal.DigitalOutput
	alert hal.DigitalOutput
	clock hal.Clock
}

// NewIndicatorActuator creates the indicator task.
func NewIndicatorActuator(in *queue.Queue[flood.AlertState], calm, alert hal.DigitalOutput, clock hal.Clock) *IndicatorActuator {
	if clock == nil {
		clock = hal.SystemClock{}
	}
	return &IndicatorActuator{
		in:    in,
		calm:  calm,
		alert: alert,
		clock: clock,
	}
}

// Run handles alert states until ctx is done.
func (a *IndicatorActuator) Run(ctx context.Context) error {
	a.calm.Set(false)
	a.alert.Set(false)

	for {
		state, err := a.in.Receive(ctx)
		if err != nil {
			return err
		}

		if err := a.Apply(ctx, state); err != nil {
			return err
		}

		if err := a.clock.Sleep(ctx, IndicatorYield); err != nil {
			return err
		}
	}
}

// Apply drives the lights for one received state.
func (a *IndicatorActuator) Apply(ctx context.Context, state flood.AlertState) error {
	switch state {
	case flood.Calm:
		a.alert.Set(false)
		a.calm.Set(true)
	case flood.Alert:
		a.calm.Set(false)
		a.alert.Set(true)
		err := a.clock.Sleep(ctx, IndicatorPulse)
		a.alert.Set(false)
		if err != nil {
			return err
		}
		return a.clock.Sleep(ctx, IndicatorPulse)
	}
	return nil
}
