package main

import (
	"flag"
	"fmt"
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/floodmon/pkg/config"
	"github.com/itohio/floodmon/pkg/history"
	"github.com/itohio/floodmon/pkg/metrics"
	"github.com/itohio/floodmon/pkg/scope"
	"github.com/itohio/floodmon/pkg/sim"
	"github.com/itohio/floodmon/pkg/tasks"
	"github.com/itohio/floodmon/pkg/telemetry"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag   = flag.Bool("mock", false, "Run the monitor on a simulated board instead of a serial port")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	application := app.NewWithID("com.itohio.floodmon")

	window := application.NewWindow("Flood Monitor")
	window.Resize(fyne.NewSize(1200, 800))
	window.CenterOnScreen()

	state := &appState{
		cfg:        cfg,
		configPath: *configFlag,
		recorder:   history.New(cfg),
		metrics:    metrics.New(),
		window:     window,
		useMock:    *mockFlag,
		throttle:   throttle{interval: cfg.Display.RefreshInterval},
	}
	if state.useMock {
		state.sim = sim.New(&cfg.Simulation, state.metrics)
	}

	toolbar := createToolbar(state)

	state.scopeWidget = scope.New(cfg)
	state.metricsLabel = widget.NewLabel(formatMetrics(metrics.Snapshot{}, nil))
	state.metricsLabel.TextStyle = fyne.TextStyle{Monospace: true}

	side := []fyne.CanvasObject{widget.NewCard("Metrics", "", state.metricsLabel)}
	if state.useMock {
		state.board = newBoardView(state.sim.Board())
		side = append([]fyne.CanvasObject{state.board.Container()}, side...)
	}

	state.recorder.OnUpdate(func(frames []telemetry.Frame, episodes []history.Episode) {
		if !state.throttle.Allow(time.Now()) {
			return
		}
		fyne.Do(func() {
			state.scopeWidget.UpdateData(frames, episodes)
		})
	})

	content := container.NewBorder(
		toolbar,
		nil,
		nil,
		container.NewVBox(side...),
		state.scopeWidget,
	)

	go refreshLoop(state, cfg.Display.RefreshInterval)

	window.SetContent(content)
	window.SetOnClosed(func() {
		closeMonitorChain(state.chain)
	})
	window.ShowAndRun()
}

// monitorChain tracks the goroutines fed by a link for graceful shutdown.
type monitorChain struct {
	link         telemetry.Link
	recorderDone chan struct{} // Closed when the recorder goroutine exits
}

// appState holds the application state.
type appState struct {
	cfg          *config.Config
	configPath   string
	recorder     *history.Recorder
	metrics      *metrics.Metrics
	sim          *sim.Sim
	scopeWidget  *scope.ScopeWidget
	board        *boardView
	metricsLabel *widget.Label
	window       fyne.Window
	connectBtn   *widget.Button
	useMock      bool

	mu    sync.Mutex
	chain *monitorChain // Current chain (nil if not connected)

	throttle throttle
}

// createToolbar creates the application toolbar with Connect and Settings buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("Connect", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	mode := "Serial"
	if state.useMock {
		mode = "Simulated board"
	}

	return container.NewBorder(
		nil,
		nil,
		container.NewHBox(connectBtn, settingsBtn),
		widget.NewLabel(mode),
		nil,
	)
}

// closeMonitorChain closes the link and waits for the recorder to drain.
func closeMonitorChain(chain *monitorChain) {
	if chain == nil {
		return
	}

	if chain.link != nil {
		if err := chain.link.Close(); err != nil {
			log.Printf("Error closing link: %v", err)
		}
	}

	if chain.recorderDone != nil {
		<-chain.recorderDone
	}
}

// newSerialLink creates the telemetry link to a real board.
func newSerialLink(cfg config.SerialConfig) *telemetry.Serial {
	return telemetry.NewSerial(cfg.Port, cfg.BaudRate, cfg.Retries, cfg.BufferSize)
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	state.mu.Lock()
	chain := state.chain
	state.mu.Unlock()

	if chain != nil && chain.link.IsConnected() {
		closeMonitorChain(chain)
		state.mu.Lock()
		state.chain = nil
		state.mu.Unlock()
		state.connectBtn.SetText("Connect")
		if state.useMock {
			fmt.Println("Stopped simulated board")
		} else {
			fmt.Println("Disconnected from serial port")
		}
		return
	}

	var link telemetry.Link
	if state.useMock {
		link = state.sim
	} else {
		link = newSerialLink(state.cfg.Serial)
	}

	if err := link.Connect(); err != nil {
		if state.useMock {
			dialog.ShowError(fmt.Errorf("failed to start simulated board: %w", err), state.window)
		} else {
			dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err), state.window)
		}
		return
	}
	if state.useMock {
		fmt.Println("Started simulated board")
	} else {
		fmt.Printf("Connected to serial port: %s\n", state.cfg.Serial.Port)
	}
	state.connectBtn.SetText("Disconnect")

	state.recorder.ResetShutdown()

	// The simulator reports to metrics itself; a real board only sends frames
	frames := link.Frames()
	if !state.useMock {
		frames = observe(frames, func(f telemetry.Frame) {
			state.metrics.Report(f.Decision())
		})
	}

	recorderDone := make(chan struct{})
	go func() {
		defer close(recorderDone)
		state.recorder.ProcessFrames(frames)
	}()

	state.mu.Lock()
	state.chain = &monitorChain{
		link:         link,
		recorderDone: recorderDone,
	}
	state.mu.Unlock()
}

// observe passes every frame of in to fn before forwarding it.
// The returned channel is closed when in is closed.
func observe(in <-chan telemetry.Frame, fn func(telemetry.Frame)) <-chan telemetry.Frame {
	out := make(chan telemetry.Frame, 100)

	go func() {
		defer close(out)
		for f := range in {
			fn(f)
			out <- f
		}
	}()

	return out
}

// refreshLoop periodically redraws the board view and the metrics.
func refreshLoop(state *appState, interval time.Duration) {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		snap, err := state.metrics.Snapshot()
		if err != nil {
			log.Printf("Failed to read metrics: %v", err)
			continue
		}
		var stats []tasks.QueueStat
		if state.sim != nil {
			stats = state.sim.QueueStats()
		}
		text := formatMetrics(snap, stats)

		fyne.Do(func() {
			state.metricsLabel.SetText(text)
			if state.board != nil {
				state.board.Refresh()
			}
		})
	}
}
