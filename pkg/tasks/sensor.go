package tasks

import (
	"context"
	"time"

	"github.com/itohio/floodmon/pkg/flood"
	"github.com/itohio/floodmon/pkg/hal"
	"github.com/itohio/floodmon/pkg/queue"
)

// SensorReader samples both analog channels periodically and pushes the
// readings to the sensor queue. Readings are dropped when the queue is full.
type SensorReader struct {
	adc    hal.AnalogInput
	out    *queue.Queue[flood.SensorReading]
	clock  hal.Clock
	period time.Duration
}

// NewSensorReader creates a sensor reader sampling every SamplePeriod.
func NewSensorReader(adc hal.AnalogInput, out *queue.Queue[flood.SensorReading], clock hal.Clock) *SensorReader {
	if clock == nil {
		clock = hal.SystemClock{}
	}
	return &SensorReader{
		adc:    adc,
		out:    out,
		clock:  clock,
		period: SamplePeriod,
	}
}

// Sample reads rain (channel A) then water (channel B).
func (s *SensorReader) Sample() flood.SensorReading {
	var r flood.SensorReading

	s.adc.Select(hal.ChannelRain)
	r.RainRaw = s.adc.Read()

	s.adc.Select(hal.ChannelWater)
	r.WaterRaw = s.adc.Read()

	return r
}

// Run samples until ctx is done.
func (s *SensorReader) Run(ctx context.Context) error {
	for {
		s.out.TrySend(s.Sample())

		if err := s.clock.Sleep(ctx, s.period); err != nil {
			return err
		}
	}
}
