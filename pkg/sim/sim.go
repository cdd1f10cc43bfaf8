// Package sim runs the complete monitor in-process against a simulated board.
package sim

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/itohio/floodmon/pkg/config"
	"github.com/itohio/floodmon/pkg/metrics"
	"github.com/itohio/floodmon/pkg/mock"
	"github.com/itohio/floodmon/pkg/tasks"
	"github.com/itohio/floodmon/pkg/telemetry"
)

var _ telemetry.Link = (*Sim)(nil)

// Sim is a telemetry link backed by the five monitor tasks running on a
// mock.Board.
type Sim struct {
	board   *mock.Board
	metrics *metrics.Metrics
	feed    *telemetry.Feed

	mu        sync.RWMutex
	system    *tasks.System
	cancel    context.CancelFunc
	done      chan struct{}
	connected bool
}

// New creates a simulator. The board exists before Connect so its inputs can
// be bound to controls. A nil m disables metrics.
func New(cfg *config.SimulationConfig, m *metrics.Metrics) *Sim {
	return &Sim{
		board:   mock.NewBoard(cfg, nil),
		metrics: m,
		feed:    telemetry.NewFeed(nil, telemetry.DefaultBufferSize),
	}
}

// Board returns the simulated board.
func (s *Sim) Board() *mock.Board {
	return s.board
}

// Connect starts the monitor tasks.
func (s *Sim) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return errors.New("already connected")
	}
	if err := s.feed.Connect(); err != nil {
		return err
	}

	opts := tasks.Options{
		Reporter: tasks.Reporters{s.feed},
	}
	if s.metrics != nil {
		opts.Reporter = tasks.Reporters{s.feed, s.metrics}
		opts.OnDrop = s.metrics.QueueDropped
	}

	s.system = tasks.New(tasks.Devices{
		ADC:      s.board.Joystick,
		Display:  s.board.Display,
		Pixels:   s.board.Pixels,
		Buzzer:   s.board.Buzzer,
		CalmLED:  s.board.Green,
		AlertLED: s.board.Red,
	}, opts)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.connected = true

	go func(system *tasks.System, done chan<- struct{}) {
		defer close(done)
		if err := system.Run(ctx); err != nil {
			log.Printf("Simulated monitor stopped: %v", err)
		}
	}(s.system, s.done)

	return nil
}

// Close stops the tasks and closes the frame channel.
func (s *Sim) Close() error {
	s.mu.Lock()
	if !s.connected {
		s.mu.Unlock()
		return nil
	}
	s.cancel()
	done := s.done
	s.connected = false
	s.mu.Unlock()

	<-done
	return s.feed.Close()
}

// Frames returns the channel of decisions made by the simulated monitor.
func (s *Sim) Frames() <-chan telemetry.Frame {
	return s.feed.Frames()
}

// IsConnected returns whether the tasks are running.
func (s *Sim) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// QueueStats returns the queue snapshot of the running monitor, or nil.
func (s *Sim) QueueStats() []tasks.QueueStat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.system == nil {
		return nil
	}
	return s.system.QueueStats()
}
