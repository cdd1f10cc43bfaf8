package main

import (
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/itohio/floodmon/pkg/config"
	"github.com/itohio/floodmon/pkg/metrics"
	"github.com/itohio/floodmon/pkg/tasks"
	"github.com/itohio/floodmon/pkg/telemetry"
	"github.com/stretchr/testify/assert"
)

func TestThrottle(t *testing.T) {
	th := throttle{interval: 50 * time.Millisecond}
	start := time.Unix(0, 0)

	assert.True(t, th.Allow(start.Add(time.Second)))
	assert.False(t, th.Allow(start.Add(time.Second+10*time.Millisecond)))
	assert.True(t, th.Allow(start.Add(time.Second+50*time.Millisecond)))
}

func TestFormatMetrics(t *testing.T) {
	s := metrics.Snapshot{
		QueueDrops: map[string]float64{"matrix": 3, "buzzer": 12},
		Decisions:  map[string]float64{"calm": 40, "alert": 2},
		Levels:     map[string]float64{"water": 81, "rain": 5},
	}
	stats := []tasks.QueueStat{{Name: "sensor", Len: 1, Cap: 5}}

	text := formatMetrics(s, stats)
	lines := strings.Split(text, "\n")

	assert.Equal(t, []string{
		"decisions",
		"  calm       40",
		"  alert      2",
		"levels",
		"  water      81%",
		"  rain       5%",
		"queue drops",
		"  buzzer     12",
		"  matrix     3",
		"queues",
		"  sensor     1/5",
	}, lines)
}

func TestFormatMetrics_Empty(t *testing.T) {
	text := formatMetrics(metrics.Snapshot{}, nil)
	assert.Contains(t, text, "  none")
	assert.NotContains(t, text, "queues")
}

func TestLedColor(t *testing.T) {
	assert.Equal(t, ledOff, ledColor(color.RGBA{A: 255}))
	assert.Equal(t, color.RGBA{R: 255, A: 255}, ledColor(color.RGBA{R: 25, A: 255}))
	assert.Equal(t, color.RGBA{R: 255, G: 255, A: 255}, ledColor(color.RGBA{R: 25, G: 25, A: 255}))
}

func TestPadPercent(t *testing.T) {
	assert.Equal(t, "  7%", padPercent("7"))
	assert.Equal(t, "100%", padPercent("100"))
	assert.Equal(t, "  -%", padPercent(""))
	assert.Equal(t, " 50%", formatPercent(49.6))
}

func TestNewSerialLink_BufferSize(t *testing.T) {
	cfg := config.Default().Serial
	assert.Equal(t, telemetry.DefaultBufferSize, newSerialLink(cfg).BufferSize())

	cfg.BufferSize = 250
	link := newSerialLink(cfg)
	assert.Equal(t, 250, link.BufferSize())
	assert.False(t, link.IsConnected())
}
