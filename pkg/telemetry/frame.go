// Package telemetry carries monitor decisions from the board to host tools.
//
// The board writes one line per decision on its serial console:
//
//	unix_micros,water_raw,rain_raw,mode
//
// where mode is 0 (calm) or 1 (alert).
package telemetry

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/itohio/floodmon/pkg/flood"
)

// Frame is one decision as seen by a host tool.
type Frame struct {
	Timestamp time.Time
	Reading   flood.SensorReading
	State     flood.AlertState
}

// FrameOf converts a decision made at t to a frame.
func FrameOf(t time.Time, d flood.Decision) Frame {
	return Frame{
		Timestamp: t,
		Reading:   d.Reading,
		State:     d.State,
	}
}

// Levels returns the percentages of the frame's reading.
func (f Frame) Levels() flood.Levels {
	return f.Reading.Levels()
}

// Decision reconstructs the decision the frame was made from.
func (f Frame) Decision() flood.Decision {
	return flood.Decision{
		Reading: f.Reading,
		Levels:  f.Levels(),
		State:   f.State,
	}
}

// AppendLine appends the line encoding of f, including the newline, to buf.
// It avoids fmt so it can run on the board.
func AppendLine(buf []byte, f Frame) []byte {
	buf = strconv.AppendInt(buf, f.Timestamp.UnixMicro(), 10)
	buf = append(buf, ',')
	buf = strconv.AppendUint(buf, uint64(f.Reading.WaterRaw), 10)
	buf = append(buf, ',')
	buf = strconv.AppendUint(buf, uint64(f.Reading.RainRaw), 10)
	buf = append(buf, ',')
	if f.State.IsAlert() {
		buf = append(buf, '1')
	} else {
		buf = append(buf, '0')
	}
	return append(buf, '\n')
}

// ParseLine parses a line (without the newline) into a Frame.
// Example: 1234567890123,3276,1024,1
func ParseLine(line string) (Frame, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 4 {
		return Frame{}, fmt.Errorf("invalid line format: expected 4 comma-separated values, got %d", len(parts))
	}

	micros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Frame{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	water, err := parseRaw("water", parts[1])
	if err != nil {
		return Frame{}, err
	}
	rain, err := parseRaw("rain", parts[2])
	if err != nil {
		return Frame{}, err
	}

	var state flood.AlertState
	switch parts[3] {
	case "0":
		state = flood.Calm
	case "1":
		state = flood.Alert
	default:
		return Frame{}, fmt.Errorf("invalid mode: %q", parts[3])
	}

	return Frame{
		Timestamp: time.UnixMicro(micros),
		Reading:   flood.SensorReading{WaterRaw: water, RainRaw: rain},
		State:     state,
	}, nil
}

func parseRaw(field, s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", field, err)
	}
	if v > flood.ADCMax {
		return 0, fmt.Errorf("%s out of range: %d (max %d)", field, v, flood.ADCMax)
	}
	return uint16(v), nil
}
