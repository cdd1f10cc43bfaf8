package history

import (
	"sync"
	"testing"
	"time"

	"github.com/itohio/floodmon/pkg/config"
	"github.com/itohio/floodmon/pkg/flood"
	"github.com/itohio/floodmon/pkg/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(start time.Time, ms int, water, rain uint16) telemetry.Frame {
	r := flood.SensorReading{WaterRaw: water, RainRaw: rain}
	return telemetry.Frame{
		Timestamp: start.Add(time.Duration(ms) * time.Millisecond),
		Reading:   r,
		State:     flood.Default().Evaluate(r.Levels()),
	}
}

func TestNew(t *testing.T) {
	r := New(config.Default())

	assert.NotNil(t, r)
	assert.Empty(t, r.Frames())
	assert.Empty(t, r.Episodes())
	_, ok := r.Latest()
	assert.False(t, ok)
}

func TestAdd_Episode(t *testing.T) {
	r := New(config.Default())
	start := time.Unix(1000, 0)

	r.Add(frame(start, 0, 100, 100))
	r.Add(frame(start, 100, 3276, 100)) // water 80%
	r.Add(frame(start, 200, 4095, 100)) // water 100%
	r.Add(frame(start, 300, 100, 2867)) // rain 70%
	r.Add(frame(start, 400, 100, 100))

	episodes := r.Episodes()
	require.Len(t, episodes, 1)
	e := episodes[0]
	assert.Equal(t, start.Add(100*time.Millisecond), e.Start)
	assert.Equal(t, start.Add(300*time.Millisecond), e.End)
	assert.Equal(t, 200*time.Millisecond, e.Duration())
	assert.Equal(t, uint16(100), e.PeakWater)
	assert.Equal(t, uint16(70), e.PeakRain)
	assert.Equal(t, 3, e.Frames)
	assert.False(t, e.Active)
	assert.Len(t, r.Frames(), 5)
}

func TestAdd_ShortEpisodeFiltered(t *testing.T) {
	r := New(config.Default())
	start := time.Unix(1000, 0)

	r.Add(frame(start, 0, 4095, 0))
	assert.Empty(t, r.Episodes(), "active episode hidden until long enough")

	r.Add(frame(start, 100, 0, 0))
	assert.Empty(t, r.Episodes())

	// A new alert starts a fresh episode
	r.Add(frame(start, 200, 4095, 0))
	r.Add(frame(start, 400, 4095, 0))
	episodes := r.Episodes()
	require.Len(t, episodes, 1)
	assert.True(t, episodes[0].Active)
	assert.Equal(t, start.Add(200*time.Millisecond), episodes[0].Start)
}

func TestAdd_Window(t *testing.T) {
	cfg := config.Default()
	cfg.History.Window = time.Second
	r := New(cfg)
	start := time.Unix(1000, 0)

	// Episode at the beginning, then calm for two seconds
	for ms := 0; ms <= 300; ms += 100 {
		r.Add(frame(start, ms, 4095, 0))
	}
	for ms := 400; ms <= 2000; ms += 100 {
		r.Add(frame(start, ms, 0, 0))
	}

	frames := r.Frames()
	require.Len(t, frames, 10)
	assert.Equal(t, start.Add(1100*time.Millisecond), frames[0].Timestamp)
	assert.Empty(t, r.Episodes(), "episode left the window")

	latest, ok := r.Latest()
	require.True(t, ok)
	assert.Equal(t, start.Add(2*time.Second), latest.Timestamp)
}

func TestOnUpdate(t *testing.T) {
	r := New(config.Default())
	start := time.Unix(1000, 0)

	var mu sync.Mutex
	calls := 0
	var lastFrames []telemetry.Frame
	r.OnUpdate(func(frames []telemetry.Frame, episodes []Episode) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		lastFrames = frames
	})

	input := make(chan telemetry.Frame, 3)
	input <- frame(start, 0, 0, 0)
	input <- frame(start, 100, 0, 0)
	input <- frame(start, 200, 0, 0)
	close(input)

	r.ProcessFrames(input)

	mu.Lock()
	assert.Equal(t, 3, calls)
	assert.Len(t, lastFrames, 3)
	mu.Unlock()

	// No callbacks after the input closed
	r.Add(frame(start, 300, 0, 0))
	mu.Lock()
	assert.Equal(t, 3, calls)
	mu.Unlock()

	r.ResetShutdown()
	r.Add(frame(start, 400, 0, 0))
	mu.Lock()
	assert.Equal(t, 4, calls)
	mu.Unlock()
}

func TestDownsample_NoDownsampling(t *testing.T) {
	values := []int{1, 2, 3}

	result := Downsample(nil, values, 10)
	assert.Equal(t, values, result)

	dst := make([]int, 0, 10)
	result = Downsample(dst, values, 10)
	assert.Equal(t, values, result)
	assert.Equal(t, cap(dst), cap(result))
}

func TestDownsample_WithDownsampling(t *testing.T) {
	values := make([]int, 100)
	for i := range values {
		values[i] = i
	}

	dst := make([]int, 0, 20)
	result := Downsample(dst, values, 10)

	require.Len(t, result, 10)
	assert.Equal(t, []int{0, 10, 20, 30, 40, 50, 60, 70, 80, 90}, result)
	assert.Equal(t, cap(dst), cap(result))
}

func TestDownsample_Frames(t *testing.T) {
	start := time.Unix(0, 0)
	frames := make([]telemetry.Frame, 600)
	for i := range frames {
		frames[i] = frame(start, i*100, uint16(i), 0)
	}

	result := Downsample(nil, frames, 300)
	require.Len(t, result, 300)
	assert.Equal(t, frames[0], result[0])
	assert.Equal(t, frames[598], result[299])
}
