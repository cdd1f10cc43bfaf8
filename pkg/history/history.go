// Package history keeps a time window of telemetry frames and the alert
// episodes seen within it.
package history

import (
	"sync"
	"time"

	"github.com/itohio/floodmon/pkg/config"
	"github.com/itohio/floodmon/pkg/flood"
	"github.com/itohio/floodmon/pkg/telemetry"
)

var _ Tracker = (*Recorder)(nil)

// Episode is a run of consecutive Alert frames.
type Episode struct {
	Start     time.Time // First Alert frame
	End       time.Time // Last Alert frame so far
	PeakWater uint16    // Highest water level (%)
	PeakRain  uint16    // Highest rainfall volume (%)
	Frames    int       // Number of Alert frames
	Active    bool      // No Calm frame seen yet
}

// Duration returns the time between the first and the last Alert frame.
func (e Episode) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Tracker processes frames, keeps the window and detects alert episodes.
type Tracker interface {
	ProcessFrames(input <-chan telemetry.Frame)
	Frames() []telemetry.Frame                                   // Frames within the window, oldest first
	Episodes() []Episode                                         // Episodes within the window, oldest first
	OnUpdate(func(frames []telemetry.Frame, episodes []Episode)) // Register callback for updates
}

// Recorder implements Tracker.
type Recorder struct {
	mu       sync.RWMutex
	frames   []telemetry.Frame
	episodes []Episode
	shutdown bool

	callbacks []func(frames []telemetry.Frame, episodes []Episode)
	cbMu      sync.RWMutex

	window     time.Duration
	minEpisode time.Duration
}

// New creates a Recorder using the history section of cfg.
func New(cfg *config.Config) *Recorder {
	return &Recorder{
		frames:     make([]telemetry.Frame, 0),
		episodes:   make([]Episode, 0),
		window:     cfg.History.Window,
		minEpisode: cfg.History.MinEpisodeDuration,
	}
}

// ProcessFrames adds frames from input until it is closed. After that no
// further callbacks are made until ResetShutdown.
func (r *Recorder) ProcessFrames(input <-chan telemetry.Frame) {
	for f := range input {
		r.Add(f)
	}

	r.mu.Lock()
	r.shutdown = true
	r.mu.Unlock()
}

// ResetShutdown re-enables callbacks for a new frame source.
func (r *Recorder) ResetShutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shutdown = false
}

// Add appends one frame, trims the window and updates episodes.
func (r *Recorder) Add(f telemetry.Frame) {
	r.mu.Lock()

	r.frames = append(r.frames, f)

	// Frames are dropped by timestamp, not count
	cutoff := f.Timestamp.Add(-r.window)
	drop := 0
	for drop < len(r.frames) && !r.frames[drop].Timestamp.After(cutoff) {
		drop++
	}
	if drop > 0 {
		r.frames = r.frames[drop:]
	}

	r.updateEpisodes(f)

	episodes := r.episodes[:0]
	for _, e := range r.episodes {
		if e.Active || e.End.After(cutoff) {
			episodes = append(episodes, e)
		}
	}
	r.episodes = episodes

	notify := !r.shutdown
	r.mu.Unlock()

	if notify {
		r.notifyCallbacks()
	}
}

// updateEpisodes must be called with mu held.
func (r *Recorder) updateEpisodes(f telemetry.Frame) {
	var last *Episode
	if n := len(r.episodes); n > 0 && r.episodes[n-1].Active {
		last = &r.episodes[n-1]
	}

	if f.State != flood.Alert {
		if last == nil {
			return
		}
		last.Active = false
		if last.Duration() < r.minEpisode {
			r.episodes = r.episodes[:len(r.episodes)-1]
		}
		return
	}

	levels := f.Levels()
	if last == nil {
		r.episodes = append(r.episodes, Episode{
			Start:     f.Timestamp,
			End:       f.Timestamp,
			PeakWater: levels.Water,
			PeakRain:  levels.Rain,
			Frames:    1,
			Active:    true,
		})
		return
	}

	last.End = f.Timestamp
	last.PeakWater = max(last.PeakWater, levels.Water)
	last.PeakRain = max(last.PeakRain, levels.Rain)
	last.Frames++
}

// Frames returns a copy of the frames within the window.
func (r *Recorder) Frames() []telemetry.Frame {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]telemetry.Frame, len(r.frames))
	copy(result, r.frames)
	return result
}

// Episodes returns the episodes within the window that lasted at least the
// minimum duration. An active episode is included once it is long enough.
func (r *Recorder) Episodes() []Episode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.visibleEpisodes()
}

// visibleEpisodes must be called with mu held.
func (r *Recorder) visibleEpisodes() []Episode {
	result := make([]Episode, 0, len(r.episodes))
	for _, e := range r.episodes {
		if e.Duration() >= r.minEpisode {
			result = append(result, e)
		}
	}
	return result
}

// Latest returns the newest frame.
func (r *Recorder) Latest() (telemetry.Frame, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.frames) == 0 {
		return telemetry.Frame{}, false
	}
	return r.frames[len(r.frames)-1], true
}

// OnUpdate registers a callback invoked after every frame.
// The callback receives copies and should return quickly.
func (r *Recorder) OnUpdate(callback func(frames []telemetry.Frame, episodes []Episode)) {
	r.cbMu.Lock()
	defer r.cbMu.Unlock()
	r.callbacks = append(r.callbacks, callback)
}

func (r *Recorder) notifyCallbacks() {
	r.mu.RLock()
	frames := make([]telemetry.Frame, len(r.frames))
	copy(frames, r.frames)
	episodes := r.visibleEpisodes()
	r.mu.RUnlock()

	r.cbMu.RLock()
	callbacks := make([]func(frames []telemetry.Frame, episodes []Episode), len(r.callbacks))
	copy(callbacks, r.callbacks)
	r.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(frames, episodes)
		}
	}
}
