package scope

import (
	"testing"
	"time"

	"github.com/itohio/floodmon/pkg/telemetry"
	"github.com/stretchr/testify/assert"
)

func TestTimeRange(t *testing.T) {
	now := time.Unix(1000, 0)

	xMin, xMax := timeRange(nil, time.Minute, now)
	assert.Equal(t, now, xMin)
	assert.Equal(t, now.Add(time.Minute), xMax)

	frames := []telemetry.Frame{
		{Timestamp: now},
		{Timestamp: now.Add(5 * time.Second)},
	}
	xMin, xMax = timeRange(frames, time.Minute, now)
	assert.Equal(t, now, xMin)
	assert.Equal(t, now.Add(time.Minute), xMax, "at least one window wide")

	frames = append(frames, telemetry.Frame{Timestamp: now.Add(90 * time.Second)})
	_, xMax = timeRange(frames, time.Minute, now)
	assert.Equal(t, now.Add(90*time.Second), xMax)
}

func TestPlot(t *testing.T) {
	start := time.Unix(0, 0)
	p := plot{x: 50, y: 20, width: 200, height: 100, xMin: start, xMax: start.Add(10 * time.Second)}

	assert.Equal(t, float32(50), p.posX(start))
	assert.Equal(t, float32(150), p.posX(start.Add(5*time.Second)))
	assert.Equal(t, float32(120), p.posY(0))
	assert.Equal(t, float32(20), p.posY(100))
	assert.InDelta(t, 40, p.posY(80), 1e-3)

	empty := plot{x: 50, xMin: start, xMax: start}
	assert.Equal(t, float32(50), empty.posX(start.Add(time.Second)))
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "0.50s", formatTime(500*time.Millisecond))
	assert.Equal(t, "12.0s", formatTime(12*time.Second))
}
