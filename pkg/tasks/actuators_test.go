package tasks

import (
	"context"
	"image/color"
	"testing"
	"time"

	"github.com/itohio/floodmon/pkg/flood"
	"github.com/itohio/floodmon/pkg/mock"
	"github.com/itohio/floodmon/pkg/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newModeQueue(name string) *queue.Queue[flood.AlertState] {
	return queue.New[flood.AlertState](name, ModeQueueSize)
}

func waitStopped(t *testing.T, errs <-chan error) {
	t.Helper()
	select {
	case err := <-errs:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("task did not stop")
	}
}

func TestIndicator_Calm(t *testing.T) {
	clock := mock.NewClock(time.Unix(0, 0))
	calm, alert := mock.NewPin(clock), mock.NewPin(clock)
	a := NewIndicatorActuator(newModeQueue(IndicatorQueue), calm, alert, clock)

	require.NoError(t, a.Apply(context.Background(), flood.Calm))

	assert.True(t, calm.Level())
	assert.False(t, alert.Level())
	assert.Empty(t, clock.Sleeps())
}

func TestIndicator_AlertBlink(t *testing.T) {
	clock := mock.NewClock(time.Unix(0, 0))
	calm, alert := mock.NewPin(clock), mock.NewPin(clock)
	a := NewIndicatorActuator(newModeQueue(IndicatorQueue), calm, alert, clock)

	require.NoError(t, a.Apply(context.Background(), flood.Calm))
	require.NoError(t, a.Apply(context.Background(), flood.Alert))

	assert.False(t, calm.Level())
	assert.False(t, alert.Level(), "blink ends with the light off")
	assert.Equal(t, []time.Duration{IndicatorPulse, IndicatorPulse}, clock.Sleeps())

	history := alert.History()
	require.Len(t, history, 3)
	assert.True(t, history[1].Level)
	assert.False(t, history[2].Level)
	assert.Equal(t, IndicatorPulse, history[2].At.Sub(history[1].At))
}

func TestIndicator_AlertCancelledTurnsOff(t *testing.T) {
	clock := mock.NewClock(time.Unix(0, 0))
	calm, alert := mock.NewPin(clock), mock.NewPin(clock)
	a := NewIndicatorActuator(newModeQueue(IndicatorQueue), calm, alert, clock)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := a.Apply(ctx, flood.Alert)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, alert.Level())
}

func TestIndicator_Run(t *testing.T) {
	clock := mock.NewClock(time.Unix(0, 0))
	calm, alert := mock.NewPin(clock), mock.NewPin(clock)
	in := newModeQueue(IndicatorQueue)
	require.True(t, in.TrySend(flood.Alert))
	require.True(t, in.TrySend(flood.Calm))

	a := NewIndicatorActuator(in, calm, alert, clock)
	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		errs <- a.Run(ctx)
	}()

	assert.Eventually(t, calm.Level, time.Second, time.Millisecond)
	cancel()
	waitStopped(t, errs)

	var levels []bool
	for _, e := range alert.History() {
		levels = append(levels, e.Level)
	}
	assert.Equal(t, []bool{false, true, false, false}, levels)

	sleeps := clock.Sleeps()
	require.GreaterOrEqual(t, len(sleeps), 3)
	assert.Equal(t, []time.Duration{IndicatorPulse, IndicatorPulse, IndicatorYield}, sleeps[:3])
}

func TestMatrix_Alert(t *testing.T) {
	bus := mock.NewPixelBus()
	var settled []time.Duration
	a := NewMatrixActuator(newModeQueue(MatrixQueue), bus, mock.NewClock(time.Unix(0, 0)), func(d time.Duration) {
		settled = append(settled, d)
	})

	a.Apply(flood.Alert)

	require.Equal(t, 1, bus.Frames())
	pixels := bus.Pixels()
	for i, want := range WarningGlyph {
		assert.Equal(t, color.RGBA{R: want.R, G: want.G, B: want.B, A: 255}, pixels[i], "pixel %d", i)
	}
	assert.Equal(t, color.RGBA{R: 25, G: 25, A: 255}, pixels[7])
	assert.Equal(t, color.RGBA{A: 255}, pixels[0])
	assert.Equal(t, []time.Duration{SettleDelay}, settled)

	a.Apply(flood.Calm)
	assert.Equal(t, 2, bus.Frames())
	assert.False(t, bus.Lit())
	assert.Equal(t, []time.Duration{SettleDelay, SettleDelay}, settled)
}

func TestMatrix_RepeatedAlertRewrites(t *testing.T) {
	bus := mock.NewPixelBus()
	a := NewMatrixActuator(newModeQueue(MatrixQueue), bus, nil, func(time.Duration) {})

	a.Apply(flood.Alert)
	a.Apply(flood.Alert)

	assert.Equal(t, 2, bus.Frames())
	assert.True(t, bus.Lit())
}

func TestMatrix_SetPixelOutOfRange(t *testing.T) {
	m := newMatrix(mock.NewPixelBus(), func(time.Duration) {})
	m.SetPixel(-1, 1, 1, 1)
	m.SetPixel(MatrixSize, 1, 1, 1)
	assert.Equal(t, [MatrixSize]Pixel{}, m.pixels)
}

func TestMatrix_RunClearsAtStart(t *testing.T) {
	bus := mock.NewPixelBus()
	in := newModeQueue(MatrixQueue)
	a := NewMatrixActuator(in, bus, mock.NewClock(time.Unix(0, 0)), func(time.Duration) {})

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		errs <- a.Run(ctx)
	}()

	assert.Eventually(t, func() bool { return bus.Frames() == 1 }, time.Second, time.Millisecond)
	assert.False(t, bus.Lit())

	require.True(t, in.TrySend(flood.Alert))
	assert.Eventually(t, bus.Lit, time.Second, time.Millisecond)

	cancel()
	waitStopped(t, errs)
}

func TestDutyLevel(t *testing.T) {
	tests := []struct {
		name     string
		top      uint32
		fraction float32
		want     uint32
	}{
		{"zero", mock.BuzzerTop, 0, 0},
		{"negative", mock.BuzzerTop, -0.5, 0},
		{"full", mock.BuzzerTop, 1, mock.BuzzerTop},
		{"above full", mock.BuzzerTop, 2, mock.BuzzerTop},
		{"half of 100", 100, 0.5, 50},
		{"30%", mock.BuzzerTop, 0.3, 17882},
		{"50%", mock.BuzzerTop, 0.5, 29804},
		{"80%", mock.BuzzerTop, 0.8, 47687},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DutyLevel(tt.top, tt.fraction))
		})
	}
}

func TestBuzzer_AlertEnvelope(t *testing.T) {
	clock := mock.NewClock(time.Unix(0, 0))
	pwm := mock.NewPWM(mock.BuzzerTop, clock)
	a := NewBuzzerActuator(newModeQueue(BuzzerQueue), pwm, clock)

	require.NoError(t, a.Apply(context.Background(), flood.Alert))

	var levels []uint32
	for _, e := range pwm.History() {
		levels = append(levels, e.Level)
	}
	assert.Equal(t, []uint32{17882, 29804, 47687}, levels)
	assert.Equal(t, []time.Duration{BuzzerStep, BuzzerStep, BuzzerStep}, clock.Sleeps())
	assert.Equal(t, uint32(47687), pwm.Duty(), "last level held until the next message")

	require.NoError(t, a.Apply(context.Background(), flood.Calm))
	assert.Equal(t, uint32(0), pwm.Duty())
}

func TestBuzzer_Run(t *testing.T) {
	clock := mock.NewClock(time.Unix(0, 0))
	pwm := mock.NewPWM(mock.BuzzerTop, clock)
	in := newModeQueue(BuzzerQueue)
	require.True(t, in.TrySend(flood.Alert))
	require.True(t, in.TrySend(flood.Alert))
	require.True(t, in.TrySend(flood.Calm))

	a := NewBuzzerActuator(in, pwm, clock)
	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		errs <- a.Run(ctx)
	}()

	assert.Eventually(t, func() bool { return len(pwm.History()) == 8 }, time.Second, time.Millisecond)
	cancel()
	waitStopped(t, errs)

	var levels []uint32
	for _, e := range pwm.History() {
		levels = append(levels, e.Level)
	}
	assert.Equal(t, []uint32{0, 17882, 29804, 47687, 17882, 29804, 47687, 0}, levels)
}
