package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/itohio/floodmon/pkg/flood"
	"github.com/itohio/floodmon/pkg/hal"
	"github.com/itohio/floodmon/pkg/mock"
	"github.com/itohio/floodmon/pkg/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDeciderFixture(reporter Reporter) (*AlertDecider, *queue.Queue[flood.SensorReading], []*queue.Queue[flood.AlertState], *mock.Display) {
	in := queue.New[flood.SensorReading](SensorQueue, SensorQueueSize)
	outs := []*queue.Queue[flood.AlertState]{
		queue.New[flood.AlertState](IndicatorQueue, ModeQueueSize),
		queue.New[flood.AlertState](MatrixQueue, ModeQueueSize),
		queue.New[flood.AlertState](BuzzerQueue, ModeQueueSize),
	}
	display := mock.NewDisplay()
	return NewAlertDecider(in, outs, display, reporter), in, outs, display
}

func TestAlertDecider_Decide(t *testing.T) {
	tests := []struct {
		name    string
		reading flood.SensorReading
		water   string
		rain    string
		state   flood.AlertState
		label   string
	}{
		{"calm", flood.SensorReading{WaterRaw: 1000, RainRaw: 1000}, "24", "24", flood.Calm, ""},
		{"water at threshold", flood.SensorReading{WaterRaw: 3276, RainRaw: 0}, "80", "0", flood.Alert, AlertLabel},
		{"water below threshold", flood.SensorReading{WaterRaw: 3275, RainRaw: 0}, "79", "0", flood.Calm, ""},
		{"rain at threshold", flood.SensorReading{WaterRaw: 0, RainRaw: 2867}, "0", "70", flood.Alert, AlertLabel},
		{"rain below threshold", flood.SensorReading{WaterRaw: 0, RainRaw: 2866}, "0", "69", flood.Calm, ""},
		{"both full", flood.SensorReading{WaterRaw: 4095, RainRaw: 4095}, "100", "100", flood.Alert, AlertLabel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _, outs, display := newDeciderFixture(nil)

			decision := d.Decide(tt.reading)
			assert.Equal(t, tt.state, decision.State)

			screen := display.Screen()
			assert.Equal(t, tt.water, screen.Text(waterTextX, waterTextY))
			assert.Equal(t, tt.rain, screen.Text(rainTextX, rainTextY))
			assert.Equal(t, tt.label, screen.Text(alertLabelX, alertLabelY))
			assert.Equal(t, decision.Levels.Water, screen.Bars[mock.Point{X: waterBarX, Y: waterBarY}])
			assert.Equal(t, decision.Levels.Rain, screen.Bars[mock.Point{X: rainBarX, Y: rainBarY}])

			for _, q := range outs {
				got, ok := q.TryReceive()
				require.True(t, ok, q.Name())
				assert.Equal(t, tt.state, got, q.Name())
			}
		})
	}
}

func TestAlertDecider_RenderOrder(t *testing.T) {
	d, _, _, display := newDeciderFixture(nil)
	d.Decide(flood.SensorReading{WaterRaw: 4095})

	kinds := []mock.OpKind{}
	for _, op := range display.Ops() {
		kinds = append(kinds, op.Kind)
	}

	assert.Equal(t, []mock.OpKind{
		mock.OpBar, mock.OpBar,
		mock.OpString, mock.OpString, mock.OpString, mock.OpString,
		mock.OpString, mock.OpString,
		mock.OpFlush,
	}, kinds)

	ops := display.Ops()
	assert.Equal(t, percentBlank, ops[2].Text, "erase before write")
	assert.Equal(t, "100", ops[4].Text)
}

func TestAlertDecider_AlertClearedOnCalm(t *testing.T) {
	d, _, _, display := newDeciderFixture(nil)

	d.Decide(flood.SensorReading{WaterRaw: 4095})
	assert.Equal(t, AlertLabel, display.Screen().Text(alertLabelX, alertLabelY))

	d.Decide(flood.SensorReading{WaterRaw: 100})
	assert.Equal(t, "", display.Screen().Text(alertLabelX, alertLabelY))
	assert.Equal(t, "2", display.Screen().Text(waterTextX, waterTextY))
}

// TestAlertDecider_BroadcastIndependent verifies that a full actuator queue
// does not stop the other actuators from receiving the state.
func TestAlertDecider_BroadcastIndependent(t *testing.T) {
	d, _, outs, _ := newDeciderFixture(nil)
	matrix := outs[1]
	for range ModeQueueSize {
		require.True(t, matrix.TrySend(flood.Calm))
	}

	delivered := d.Broadcast(flood.Alert)

	assert.Equal(t, 2, delivered)
	assert.Equal(t, uint64(1), matrix.Dropped())
	assert.Equal(t, 1, outs[0].Len())
	assert.Equal(t, 1, outs[2].Len())

	for range ModeQueueSize {
		got, ok := matrix.TryReceive()
		require.True(t, ok)
		assert.Equal(t, flood.Calm, got)
	}
}

func TestAlertDecider_Reporter(t *testing.T) {
	var got []flood.Decision
	d, _, _, _ := newDeciderFixture(ReporterFunc(func(d flood.Decision) {
		got = append(got, d)
	}))

	d.Decide(flood.SensorReading{WaterRaw: 2048, RainRaw: 3000})

	require.Len(t, got, 1)
	assert.Equal(t, flood.Levels{Water: 50, Rain: 73}, got[0].Levels)
	assert.Equal(t, flood.Alert, got[0].State)
}

func TestAlertDecider_Run(t *testing.T) {
	d, in, outs, display := newDeciderFixture(nil)
	ctx, cancel := context.WithCancel(context.Background())

	errs := make(chan error, 1)
	go func() {
		errs <- d.Run(ctx)
	}()

	assert.Eventually(t, func() bool {
		return display.Screen().Flushes == 1
	}, time.Second, time.Millisecond)
	for _, q := range outs {
		assert.Equal(t, 0, q.Len(), "no broadcast without a reading")
	}

	require.True(t, in.TrySend(flood.SensorReading{RainRaw: 4095}))
	assert.Eventually(t, func() bool {
		return outs[2].Len() == 1
	}, time.Second, time.Millisecond)

	ops := display.Ops()
	require.GreaterOrEqual(t, len(ops), 2)
	assert.Equal(t, mock.OpBitmap, ops[0].Kind)
	assert.Equal(t, mock.OpFlush, ops[1].Kind)

	cancel()
	select {
	case err := <-errs:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("decider did not stop")
	}
}

func TestReporters(t *testing.T) {
	var a, b int
	rs := Reporters{
		ReporterFunc(func(flood.Decision) { a++ }),
		nil,
		ReporterFunc(func(flood.Decision) { b++ }),
	}

	rs.Report(flood.Decision{})

	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
}

func TestBackground(t *testing.T) {
	bitmap := Background()
	require.Len(t, bitmap, 1024)

	pixel := func(x, y int) bool {
		return bitmap[(y/8)*128+x]&(1<<(y%8)) != 0
	}

	assert.True(t, pixel(0, 0))
	assert.True(t, pixel(127, 63))
	assert.True(t, pixel(waterBarX-1, waterBarY))
	assert.True(t, pixel(rainBarX+10, waterBarY-20))
	assert.False(t, pixel(64, 30))
	assert.False(t, pixel(waterBarX+5, waterBarY-20), "bar interior is empty")

	// A full bar fills rows y-BarHeight..y-1, the outline hugs it on every side
	for _, x := range []int{waterBarX, rainBarX} {
		assert.True(t, pixel(x+5, waterBarY), "bottom edge right under the bar")
		assert.False(t, pixel(x+5, waterBarY+1), "no row below the bottom edge")
		assert.True(t, pixel(x+5, waterBarY-hal.BarHeight-1), "top edge right above a full bar")
		assert.False(t, pixel(x+5, waterBarY-hal.BarHeight), "top row of a full bar")
	}
}
