package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/itohio/floodmon/pkg/flood"
	"github.com/itohio/floodmon/pkg/hal"
	"github.com/itohio/floodmon/pkg/queue"
	"golang.org/x/sync/errgroup"
)

// Devices are the peripherals of the monitor. Each one is handed to exactly
// one task.
type Devices struct {
	ADC      hal.AnalogInput
	Display  hal.Display
	Pixels   hal.PixelBus
	Buzzer   hal.PWM
	CalmLED  hal.DigitalOutput
	AlertLED hal.DigitalOutput
}

// Options tune a System. The zero value runs on the system clock.
type Options struct {
	// Clock is used by the sensor reader and the actuators.
	Clock hal.Clock
	// ActuatorClock overrides Clock for the actuators only.
	ActuatorClock hal.Clock
	// Settle holds the LED matrix reset time. Nil busy-waits.
	Settle func(time.Duration)
	// Reporter receives every decision. May be nil.
	Reporter Reporter
	// OnDrop is called with the queue name whenever a message is dropped.
	OnDrop func(name string)
}

// QueueStat is a snapshot of one queue.
type QueueStat struct {
	Name    string
	Len     int
	Cap     int
	Dropped uint64
}

// System wires the five tasks and four queues of the monitor.
type System struct {
	sensorQueue *queue.Queue[flood.SensorReading]
	modeQueues  []*queue.Queue[flood.AlertState]

	Sensor    *SensorReader
	Decider   *AlertDecider
	Indicator *IndicatorActuator
	Matrix    *MatrixActuator
	Buzzer    *BuzzerActuator
}

// New creates the queues and tasks. It panics when a device is missing since
// the monitor cannot start without all of its peripherals.
func New(dev Devices, opts Options) *System {
	switch {
	case dev.ADC == nil:
		panic("tasks: missing ADC")
	case dev.Display == nil:
		panic("tasks: missing display")
	case dev.Pixels == nil:
		panic("tasks: missing pixel bus")
	case dev.Buzzer == nil:
		panic("tasks: missing buzzer")
	case dev.CalmLED == nil || dev.AlertLED == nil:
		panic("tasks: missing indicator")
	}

	clock := opts.Clock
	if clock == nil {
		clock = hal.SystemClock{}
	}
	actuatorClock := opts.ActuatorClock
	if actuatorClock == nil {
		actuatorClock = clock
	}

	s := &System{
		sensorQueue: queue.New[flood.SensorReading](SensorQueue, SensorQueueSize),
	}
	indicatorQueue := queue.New[flood.AlertState](IndicatorQueue, ModeQueueSize)
	matrixQueue := queue.New[flood.AlertState](MatrixQueue, ModeQueueSize)
	buzzerQueue := queue.New[flood.AlertState](BuzzerQueue, ModeQueueSize)
	s.modeQueues = []*queue.Queue[flood.AlertState]{indicatorQueue, matrixQueue, buzzerQueue}

	if opts.OnDrop != nil {
		s.sensorQueue.OnDrop(opts.OnDrop)
		for _, q := range s.modeQueues {
			q.OnDrop(opts.OnDrop)
		}
	}

	s.Sensor = NewSensorReader(dev.ADC, s.sensorQueue, clock)
	s.Decider = NewAlertDecider(s.sensorQueue, s.modeQueues, dev.Display, opts.Reporter)
	s.Indicator = NewIndicatorActuator(indicatorQueue, dev.CalmLED, dev.AlertLED, actuatorClock)
	s.Matrix = NewMatrixActuator(matrixQueue, dev.Pixels, actuatorClock, opts.Settle)
	s.Buzzer = NewBuzzerActuator(buzzerQueue, dev.Buzzer, actuatorClock)

	return s
}

// Run starts all tasks and blocks until ctx is done or a task fails.
// Cancellation is not an error.
func (s *System) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return s.Sensor.Run(ctx) })
	g.Go(func() error { return s.Decider.Run(ctx) })
	g.Go(func() error { return s.Indicator.Run(ctx) })
	g.Go(func() error { return s.Matrix.Run(ctx) })
	g.Go(func() error { return s.Buzzer.Run(ctx) })

	err := g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// QueueStats returns a snapshot of every queue, sensor queue first.
func (s *System) QueueStats() []QueueStat {
	stats := []QueueStat{statOf(s.sensorQueue)}
	for _, q := range s.modeQueues {
		stats = append(stats, statOf(q))
	}
	return stats
}

type stater interface {
	Name() string
	Len() int
	Cap() int
	Dropped() uint64
}

func statOf(q stater) QueueStat {
	return QueueStat{
		Name:    q.Name(),
		Len:     q.Len(),
		Cap:     q.Cap(),
		Dropped: q.Dropped(),
	}
}
