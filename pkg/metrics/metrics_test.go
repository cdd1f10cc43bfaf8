package metrics

import (
	"strings"
	"testing"

	"github.com/itohio/floodmon/pkg/flood"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueDropped(t *testing.T) {
	m := New()

	m.QueueDropped("matrix")
	m.QueueDropped("matrix")
	m.QueueDropped("sensor")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.queueDrops.WithLabelValues("matrix")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.queueDrops.WithLabelValues("sensor")))
}

func TestReport(t *testing.T) {
	m := New()
	th := flood.Default()

	m.Report(th.Decide(flood.SensorReading{WaterRaw: 4095, RainRaw: 0}))
	m.Report(th.Decide(flood.SensorReading{WaterRaw: 100, RainRaw: 2048}))

	expected := `
# HELP floodmon_decisions_total Decisions made by the alert decider, by resulting state.
# TYPE floodmon_decisions_total counter
floodmon_decisions_total{state="alert"} 1
floodmon_decisions_total{state="calm"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), DecisionsName))

	assert.Equal(t, float64(2), testutil.ToFloat64(m.levels.WithLabelValues(SensorWater)))
	assert.Equal(t, float64(50), testutil.ToFloat64(m.levels.WithLabelValues(SensorRain)))
}

func TestNil(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.QueueDropped("sensor")
		m.Report(flood.Decision{})
	})
}

func TestSnapshot(t *testing.T) {
	m := New()

	s, err := m.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"calm": 0, "alert": 0}, s.Decisions)
	assert.Empty(t, s.QueueDrops)

	m.QueueDropped("buzzer")
	m.Report(flood.Default().Decide(flood.SensorReading{WaterRaw: 3276, RainRaw: 2866}))

	s, err = m.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, float64(1), s.QueueDrops["buzzer"])
	assert.Equal(t, float64(1), s.Decisions["alert"])
	assert.Equal(t, float64(80), s.Levels[SensorWater])
	assert.Equal(t, float64(69), s.Levels[SensorRain])
}
