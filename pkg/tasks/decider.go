package tasks

import (
	"context"
	"strconv"

	"github.com/itohio/floodmon/pkg/flood"
	"github.com/itohio/floodmon/pkg/hal"
	"github.com/itohio/floodmon/pkg/queue"
)

// AlertDecider converts readings to percentages, renders them, evaluates the
// alert predicate and broadcasts the resulting state to every actuator queue.
type AlertDecider struct {
	in         *queue.Queue[flood.SensorReading]
	outs       []*queue.Queue[flood.AlertState]
	display    hal.Display
	thresholds flood.Thresholds
	reporter   Reporter
}

// NewAlertDecider creates a decider using the build-time thresholds.
// The reporter may be nil.
func NewAlertDecider(in *queue.Queue[flood.SensorReading], outs []*queue.Queue[flood.AlertState], display hal.Display, reporter Reporter) *AlertDecider {
	thresholds := flood.Default()
	if err := thresholds.Validate(); err != nil {
		panic(err)
	}

	return &AlertDecider{
		in:         in,
		outs:       outs,
		display:    display,
		thresholds: thresholds,
		reporter:   reporter,
	}
}

// Run draws the background and then handles readings until ctx is done.
// Receive has no timeout, so every broadcast follows a fresh reading.
func (d *AlertDecider) Run(ctx context.Context) error {
	d.display.DrawBitmap(Background())
	d.display.Flush()

	for {
		reading, err := d.in.Receive(ctx)
		if err != nil {
			return err
		}
		d.Decide(reading)
	}
}

// Decide runs one decision cycle for r.
func (d *AlertDecider) Decide(r flood.SensorReading) flood.Decision {
	decision := d.thresholds.Decide(r)

	d.render(decision)
	d.Broadcast(decision.State)

	if d.reporter != nil {
		d.reporter.Report(decision)
	}

	return decision
}

// Broadcast offers state to every actuator queue independently and returns
// how many queues accepted it. A full queue only loses its own copy.
func (d *AlertDecider) Broadcast(state flood.AlertState) int {
	delivered := 0
	for _, q := range d.outs {
		if q.TrySend(state) {
			delivered++
		}
	}
	return delivered
}

// render redraws bars, percentages and the alert label, then flushes.
func (d *AlertDecider) render(decision flood.Decision) {
	levels := decision.Levels

	d.display.DrawBar(levels.Water, waterBarX, waterBarY)
	d.display.DrawBar(levels.Rain, rainBarX, rainBarY)

	// Numerals have variable width: erase the old value first
	d.display.DrawString(percentBlank, waterTextX, waterTextY)
	d.display.DrawString(percentBlank, rainTextX, rainTextY)
	d.display.DrawString(strconv.Itoa(int(levels.Water)), waterTextX, waterTextY)
	d.display.DrawString(strconv.Itoa(int(levels.Rain)), rainTextX, rainTextY)

	d.display.DrawString(labelBlank, alertLabelX, alertLabelY)
	if decision.State.IsAlert() {
		d.display.DrawString(AlertLabel, alertLabelX, alertLabelY)
	}

	d.display.Flush()
}
