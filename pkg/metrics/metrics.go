// Package metrics counts what the monitor does: dropped queue messages,
// decisions per state and the latest levels.
package metrics

import (
	"fmt"

	"github.com/itohio/floodmon/pkg/flood"
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names.
const (
	QueueDropsName = "floodmon_queue_drops_total"
	DecisionsName  = "floodmon_decisions_total"
	LevelName      = "floodmon_level_percent"
)

// Sensor label values.
const (
	SensorWater = "water"
	SensorRain  = "rain"
)

// Metrics holds the collectors of one monitor on a private registry.
type Metrics struct {
	registry   *prometheus.Registry
	queueDrops *prometheus.CounterVec
	decisions  *prometheus.CounterVec
	levels     *prometheus.GaugeVec
}

// Snapshot is a plain copy of the current metric values.
type Snapshot struct {
	QueueDrops map[string]float64 // By queue name
	Decisions  map[string]float64 // By state
	Levels     map[string]float64 // By sensor
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		queueDrops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: QueueDropsName,
			Help: "Messages dropped because the destination queue was full.",
		}, []string{"queue"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: DecisionsName,
			Help: "Decisions made by the alert decider, by resulting state.",
		}, []string{"state"}),
		levels: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: LevelName,
			Help: "Latest sensor level in percent.",
		}, []string{"sensor"}),
	}

	m.registry.MustRegister(m.queueDrops, m.decisions, m.levels)

	m.decisions.WithLabelValues(flood.Calm.String())
	m.decisions.WithLabelValues(flood.Alert.String())

	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// QueueDropped counts one dropped message. It matches the queue drop hook.
func (m *Metrics) QueueDropped(queue string) {
	if m == nil {
		return
	}
	m.queueDrops.WithLabelValues(queue).Inc()
}

// Report records a decision.
func (m *Metrics) Report(d flood.Decision) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(d.State.String()).Inc()
	m.levels.WithLabelValues(SensorWater).Set(float64(d.Levels.Water))
	m.levels.WithLabelValues(SensorRain).Set(float64(d.Levels.Rain))
}

// Snapshot gathers the registry.
func (m *Metrics) Snapshot() (Snapshot, error) {
	s := Snapshot{
		QueueDrops: make(map[string]float64),
		Decisions:  make(map[string]float64),
		Levels:     make(map[string]float64),
	}

	families, err := m.registry.Gather()
	if err != nil {
		return s, fmt.Errorf("failed to gather metrics: %w", err)
	}

	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			var label string
			if pairs := metric.GetLabel(); len(pairs) > 0 {
				label = pairs[0].GetValue()
			}

			switch mf.GetName() {
			case QueueDropsName:
				s.QueueDrops[label] = metric.GetCounter().GetValue()
			case DecisionsName:
				s.Decisions[label] = metric.GetCounter().GetValue()
			case LevelName:
				s.Levels[label] = metric.GetGauge().GetValue()
			}
		}
	}

	return s, nil
}
