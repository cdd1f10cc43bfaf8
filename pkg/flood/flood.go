package flood

import "fmt"

const (
	// ADCMax is the full-scale value of the 12-bit ADC (0-4095).
	ADCMax = 4095

	// WaterMax is the water level percentage at or above which the alert is raised.
	WaterMax = 80
	// RainMax is the rainfall volume percentage at or above which the alert is raised.
	RainMax = 70
)

// SensorReading is one sampling cycle of both analog channels.
type SensorReading struct {
	WaterRaw uint16 // 12-bit ADC reading for water level (0-4095)
	RainRaw  uint16 // 12-bit ADC reading for rainfall volume (0-4095)
}

// Levels holds both readings converted to percentages.
type Levels struct {
	Water uint16 // Water level (%)
	Rain  uint16 // Rainfall volume (%)
}

// Levels converts the raw readings to percentages.
func (r SensorReading) Levels() Levels {
	return Levels{
		Water: Percentage(r.WaterRaw),
		Rain:  Percentage(r.RainRaw),
	}
}

// Percentage converts a raw ADC reading to an integer percentage.
// The division truncates, so 4094 maps to 99 and only 4095 maps to 100.
// Readings above ADCMax are clamped.
func Percentage(raw uint16) uint16 {
	if raw > ADCMax {
		raw = ADCMax
	}
	return uint16(uint32(raw) * 100 / ADCMax)
}

// AlertState is the outcome of a decision cycle.
type AlertState uint8

const (
	// Calm means both readings are below their thresholds.
	Calm AlertState = iota
	// Alert means at least one reading reached its threshold.
	Alert
)

func (s AlertState) String() string {
	switch s {
	case Calm:
		return "calm"
	case Alert:
		return "alert"
	default:
		return "unknown"
	}
}

// IsAlert reports whether s is Alert.
func (s AlertState) IsAlert() bool {
	return s == Alert
}

// Thresholds are the percentage limits for both readings.
type Thresholds struct {
	Water uint16
	Rain  uint16
}

// Default returns the build-time thresholds.
func Default() Thresholds {
	return Thresholds{
		Water: WaterMax,
		Rain:  RainMax,
	}
}

// Validate checks that both thresholds are valid percentages.
func (t Thresholds) Validate() error {
	if t.Water > 100 {
		return fmt.Errorf("water threshold out of range: %d (max 100)", t.Water)
	}
	if t.Rain > 100 {
		return fmt.Errorf("rain threshold out of range: %d (max 100)", t.Rain)
	}
	return nil
}

// Evaluate applies the alert predicate to the given levels.
func (t Thresholds) Evaluate(l Levels) AlertState {
	if l.Rain >= t.Rain || l.Water >= t.Water {
		return Alert
	}
	return Calm
}

// Decision is the result of one decision cycle.
type Decision struct {
	Reading SensorReading
	Levels  Levels
	State   AlertState
}

// Decide converts the reading and evaluates it against t.
func (t Thresholds) Decide(r SensorReading) Decision {
	levels := r.Levels()
	return Decision{
		Reading: r,
		Levels:  levels,
		State:   t.Evaluate(levels),
	}
}
