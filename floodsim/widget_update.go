package main

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/itohio/floodmon/pkg/flood"
	"github.com/itohio/floodmon/pkg/metrics"
	"github.com/itohio/floodmon/pkg/tasks"
)

// throttle limits how often the scope is redrawn.
type throttle struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

// Allow reports whether an update at now may proceed and records it if so.
func (t *throttle) Allow(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if now.Sub(t.last) < t.interval {
		return false
	}
	t.last = now
	return true
}

// formatMetrics renders the metrics snapshot and queue stats for the side panel.
func formatMetrics(s metrics.Snapshot, stats []tasks.QueueStat) string {
	var b strings.Builder

	b.WriteString("decisions\n")
	for _, state := range []flood.AlertState{flood.Calm, flood.Alert} {
		writeRow(&b, state.String(), strconv.FormatFloat(s.Decisions[state.String()], 'f', 0, 64))
	}

	b.WriteString("levels\n")
	writeRow(&b, metrics.SensorWater, strconv.FormatFloat(s.Levels[metrics.SensorWater], 'f', 0, 64)+"%")
	writeRow(&b, metrics.SensorRain, strconv.FormatFloat(s.Levels[metrics.SensorRain], 'f', 0, 64)+"%")

	b.WriteString("queue drops\n")
	names := make([]string, 0, len(s.QueueDrops))
	for name := range s.QueueDrops {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) == 0 {
		writeRow(&b, "none", "")
	}
	for _, name := range names {
		writeRow(&b, name, strconv.FormatFloat(s.QueueDrops[name], 'f', 0, 64))
	}

	if len(stats) > 0 {
		b.WriteString("queues\n")
		for _, q := range stats {
			writeRow(&b, q.Name, strconv.Itoa(q.Len)+"/"+strconv.Itoa(q.Cap))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func writeRow(b *strings.Builder, name, value string) {
	b.WriteString("  ")
	b.WriteString(name)
	if value != "" {
		b.WriteString(strings.Repeat(" ", max(1, 11-len(name))))
		b.WriteString(value)
	}
	b.WriteByte('\n')
}
