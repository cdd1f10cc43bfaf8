// Package tasks implements the flood monitor task topology: a sensor reader
// feeding an alert decider, which fans the alert state out to three actuators.
//
// Tasks communicate only through bounded queues and each task owns the
// peripherals it drives. No peripheral is ever shared between two tasks.
package tasks

import (
	"time"

	"github.com/itohio/floodmon/pkg/flood"
)

const (
	// SensorQueueSize is the capacity of the reading queue.
	SensorQueueSize = 5
	// ModeQueueSize is the capacity of each actuator queue.
	ModeQueueSize = 3

	// SamplePeriod is the sensor sampling period (10 Hz).
	SamplePeriod = 100 * time.Millisecond
)

// Queue names, used for drop accounting.
const (
	SensorQueue    = "sensor"
	IndicatorQueue = "indicator"
	MatrixQueue    = "matrix"
	BuzzerQueue    = "buzzer"
)

// Reporter receives every decision made by the alert decider.
// It is called from the decider task and must not block for long.
type Reporter interface {
	Report(d flood.Decision)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(d flood.Decision)

// Report calls f(d).
func (f ReporterFunc) Report(d flood.Decision) {
	f(d)
}

// Reporters fans a decision out to several reporters, skipping nil ones.
type Reporters []Reporter

// Report calls every reporter in order.
func (rs Reporters) Report(d flood.Decision) {
	for _, r := range rs {
		if r != nil {
			r.Report(d)
		}
	}
}
