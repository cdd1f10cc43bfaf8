package mock

import (
	"math"
	"sync"
	"time"

	"github.com/itohio/floodmon/pkg/config"
	"github.com/itohio/floodmon/pkg/flood"
	"github.com/itohio/floodmon/pkg/hal"
)

// Joystick simulates the two analog inputs (water level and rainfall volume).
// Levels can be set manually or swept automatically.
type Joystick struct {
	cfg   config.SimulationConfig
	clock hal.Clock
	start time.Time

	mu         sync.RWMutex
	selected   hal.Channel
	water      float64 // Water level (%)
	rain       float64 // Rainfall volume (%)
	selections []hal.Channel
}

var _ hal.AnalogInput = (*Joystick)(nil)

// NewJoystick creates a simulated joystick.
func NewJoystick(cfg *config.SimulationConfig, clock hal.Clock) *Joystick {
	if cfg == nil {
		cfg = &config.Default().Simulation
	}
	if clock == nil {
		clock = hal.SystemClock{}
	}

	return &Joystick{
		cfg:   *cfg,
		clock: clock,
		start: clock.Now(),
		water: cfg.Water,
		rain:  cfg.Rain,
	}
}

// SetWater sets the base water level in percent.
func (j *Joystick) SetWater(pct float64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.water = pct
}

// SetRain sets the base rainfall volume in percent.
func (j *Joystick) SetRain(pct float64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.rain = pct
}

// SetRaw sets the base level of a channel from a raw ADC value.
func (j *Joystick) SetRaw(ch hal.Channel, raw uint16) {
	pct := float64(raw) * 100 / flood.ADCMax
	switch ch {
	case hal.ChannelWater:
		j.SetWater(pct)
	case hal.ChannelRain:
		j.SetRain(pct)
	}
}

// Levels returns the base levels in percent.
func (j *Joystick) Levels() (water, rain float64) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.water, j.rain
}

// Select selects the channel returned by the next Read.
func (j *Joystick) Select(ch hal.Channel) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.selected = ch
	if len(j.selections) < 1024 {
		j.selections = append(j.selections, ch)
	}
}

// Selections returns the channel selection order (up to the first 1024 selections).
func (j *Joystick) Selections() []hal.Channel {
	j.mu.RLock()
	defer j.mu.RUnlock()

	result := make([]hal.Channel, len(j.selections))
	copy(result, j.selections)
	return result
}

// Read samples the selected channel.
func (j *Joystick) Read() uint16 {
	j.mu.RLock()
	selected := j.selected
	water := j.water
	rain := j.rain
	j.mu.RUnlock()

	elapsed := j.clock.Now().Sub(j.start)

	var pct float64
	switch selected {
	case hal.ChannelWater:
		pct = water + j.sweep(elapsed, 0)
	case hal.ChannelRain:
		// Rain sweeps a quarter period ahead of water so both thresholds are exercised
		pct = rain + j.sweep(elapsed, math.Pi/2)
	}
	pct += j.noise(elapsed, float64(selected))

	return toRaw(pct)
}

// sweep returns the automatic sweep offset in percent.
func (j *Joystick) sweep(elapsed time.Duration, phase float64) float64 {
	if j.cfg.SweepPeriod <= 0 {
		return 0
	}
	angle := 2*math.Pi*elapsed.Seconds()/j.cfg.SweepPeriod.Seconds() + phase
	return j.cfg.SweepDepth * math.Sin(angle)
}

// noise returns a deterministic pseudo-noise offset in percent.
func (j *Joystick) noise(elapsed time.Duration, seed float64) float64 {
	if j.cfg.NoiseLevel == 0 {
		return 0
	}
	ns := float64(elapsed.Nanoseconds())
	return (math.Sin(ns*0.001+seed) + math.Cos(ns*0.0013+seed)) * j.cfg.NoiseLevel * 0.5
}

// rawEpsilon absorbs float error so raw values set through SetRaw survive the
// percent round trip.
const rawEpsilon = 1e-6

// toRaw converts a percentage to a clamped 12-bit ADC value. Whole percentages
// map to the lowest raw value that reads back as the same percentage.
func toRaw(pct float64) uint16 {
	raw := math.Ceil(pct*flood.ADCMax/100 - rawEpsilon)
	if raw < 0 {
		return 0
	}
	if raw > flood.ADCMax {
		return flood.ADCMax
	}
	return uint16(raw)
}
