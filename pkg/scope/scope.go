// Package scope provides a Fyne widget plotting water level and rainfall
// volume over time, with the alert thresholds and alert episodes.
package scope

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/floodmon/pkg/config"
	"github.com/itohio/floodmon/pkg/flood"
	"github.com/itohio/floodmon/pkg/history"
	"github.com/itohio/floodmon/pkg/telemetry"
)

// Trace colors.
var (
	WaterColor   = color.RGBA{R: 80, G: 160, B: 255, A: 255}
	RainColor    = color.RGBA{R: 120, G: 220, B: 120, A: 255}
	EpisodeColor = color.RGBA{R: 200, G: 40, B: 40, A: 70}
)

// ScopeWidget is a Fyne widget displaying the level history.
type ScopeWidget struct {
	widget.BaseWidget

	window time.Duration

	// Data (protected by mu)
	mu       sync.RWMutex
	frames   []telemetry.Frame
	episodes []history.Episode
	state    flood.AlertState

	// Reused for downsampling
	display []telemetry.Frame

	xMin, xMax time.Time

	maxDisplayPoints int
}

// New creates a new ScopeWidget instance.
func New(cfg *config.Config) *ScopeWidget {
	maxPoints := cfg.Display.MaxPoints
	if maxPoints <= 0 {
		maxPoints = config.Default().Display.MaxPoints
	}

	s := &ScopeWidget{
		window:           cfg.History.Window,
		frames:           make([]telemetry.Frame, 0),
		episodes:         make([]history.Episode, 0),
		display:          make([]telemetry.Frame, 0, maxPoints),
		maxDisplayPoints: maxPoints,
	}
	s.ExtendBaseWidget(s)
	s.Refresh()
	return s
}

// UpdateData replaces the plotted data.
// Call it from the history callback using fyne.Do().
func (s *ScopeWidget) UpdateData(frames []telemetry.Frame, episodes []history.Episode) {
	s.mu.Lock()

	s.display = history.Downsample(s.display, frames, s.maxDisplayPoints)
	s.frames = frames
	s.episodes = episodes
	if n := len(frames); n > 0 {
		s.state = frames[n-1].State
	}
	s.xMin, s.xMax = timeRange(s.display, s.window, time.Now())

	s.mu.Unlock()

	s.Refresh()
}

// timeRange returns the plotted time span: at least window wide, starting at
// the first frame.
func timeRange(frames []telemetry.Frame, window time.Duration, now time.Time) (time.Time, time.Time) {
	if window <= 0 {
		window = 10 * time.Second
	}
	if len(frames) == 0 {
		return now, now.Add(window)
	}

	xMin := frames[0].Timestamp
	xMax := frames[len(frames)-1].Timestamp
	if xMax.Sub(xMin) < window {
		xMax = xMin.Add(window)
	}
	return xMin, xMax
}

// CreateRenderer creates the widget renderer.
func (s *ScopeWidget) CreateRenderer() fyne.WidgetRenderer {
	background := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255})
	return &scopeRenderer{
		scope:      s,
		background: background,
		objects:    []fyne.CanvasObject{background},
	}
}
