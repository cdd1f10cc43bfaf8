package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/floodmon/pkg/telemetry"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createHistoryTab(state),
		createSimulationTab(state),
		createDisplayTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 400))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 400))
	d.Show()
}

func saveConfig(state *appState) {
	if err := state.cfg.Save(state.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
	}
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	ports, err := telemetry.Ports()
	portOptions := []string{}
	portMap := make(map[string]string) // Display name to port name

	if err == nil {
		for _, port := range ports {
			portOptions = append(portOptions, port.Description)
			portMap[port.Description] = port.Name
		}
	}

	currentPort := state.cfg.Serial.Port
	currentDisplay := currentPort
	found := false
	for _, opt := range portOptions {
		if portMap[opt] == currentPort {
			currentDisplay = opt
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
		portMap[currentPort] = currentPort
	}

	portSelect := widget.NewSelect(portOptions, nil)
	if currentDisplay != "" {
		portSelect.SetSelected(currentDisplay)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Serial.BaudRate))

	retriesEntry := widget.NewEntry()
	retriesEntry.SetText(strconv.Itoa(state.cfg.Serial.Retries))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
			{Text: "Connect Retries", Widget: retriesEntry},
		},
		OnSubmit: func() {
			if portSelect.Selected != "" {
				selected := portMap[portSelect.Selected]
				if selected == "" {
					selected = portSelect.Selected
				}
				state.cfg.Serial.Port = selected
			}
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud > 0 {
				state.cfg.Serial.BaudRate = baud
			}
			if retries, err := strconv.Atoi(retriesEntry.Text); err == nil && retries >= 0 {
				state.cfg.Serial.Retries = retries
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Serial", form)
}

// createHistoryTab creates the History configuration tab.
// Changes apply on the next start.
func createHistoryTab(state *appState) *container.TabItem {
	windowEntry := widget.NewEntry()
	windowEntry.SetText(state.cfg.History.Window.String())

	minEpisodeEntry := widget.NewEntry()
	minEpisodeEntry.SetText(state.cfg.History.MinEpisodeDuration.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Window", Widget: windowEntry},
			{Text: "Min Episode Duration", Widget: minEpisodeEntry},
		},
		OnSubmit: func() {
			if w, err := time.ParseDuration(windowEntry.Text); err == nil && w > 0 {
				state.cfg.History.Window = w
			}
			if d, err := time.ParseDuration(minEpisodeEntry.Text); err == nil && d >= 0 {
				state.cfg.History.MinEpisodeDuration = d
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("History", form)
}

// createSimulationTab creates the simulated board configuration tab.
func createSimulationTab(state *appState) *container.TabItem {
	waterEntry := widget.NewEntry()
	waterEntry.SetText(strconv.FormatFloat(state.cfg.Simulation.Water, 'f', 1, 64))

	rainEntry := widget.NewEntry()
	rainEntry.SetText(strconv.FormatFloat(state.cfg.Simulation.Rain, 'f', 1, 64))

	noiseEntry := widget.NewEntry()
	noiseEntry.SetText(strconv.FormatFloat(state.cfg.Simulation.NoiseLevel, 'f', 2, 64))

	sweepPeriodEntry := widget.NewEntry()
	sweepPeriodEntry.SetText(state.cfg.Simulation.SweepPeriod.String())

	sweepDepthEntry := widget.NewEntry()
	sweepDepthEntry.SetText(strconv.FormatFloat(state.cfg.Simulation.SweepDepth, 'f', 1, 64))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Initial Water (%)", Widget: waterEntry},
			{Text: "Initial Rain (%)", Widget: rainEntry},
			{Text: "Noise Level (%)", Widget: noiseEntry},
			{Text: "Sweep Period (0 = off)", Widget: sweepPeriodEntry},
			{Text: "Sweep Depth (%)", Widget: sweepDepthEntry},
		},
		OnSubmit: func() {
			if v, err := strconv.ParseFloat(waterEntry.Text, 64); err == nil {
				state.cfg.Simulation.Water = v
			}
			if v, err := strconv.ParseFloat(rainEntry.Text, 64); err == nil {
				state.cfg.Simulation.Rain = v
			}
			if v, err := strconv.ParseFloat(noiseEntry.Text, 64); err == nil {
				state.cfg.Simulation.NoiseLevel = v
			}
			if d, err := time.ParseDuration(sweepPeriodEntry.Text); err == nil {
				state.cfg.Simulation.SweepPeriod = d
			}
			if v, err := strconv.ParseFloat(sweepDepthEntry.Text, 64); err == nil {
				state.cfg.Simulation.SweepDepth = v
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Simulation", form)
}

// createDisplayTab creates the Display configuration tab.
func createDisplayTab(state *appState) *container.TabItem {
	maxPointsEntry := widget.NewEntry()
	maxPointsEntry.SetText(strconv.Itoa(state.cfg.Display.MaxPoints))

	refreshEntry := widget.NewEntry()
	refreshEntry.SetText(state.cfg.Display.RefreshInterval.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Max Points", Widget: maxPointsEntry},
			{Text: "Refresh Interval", Widget: refreshEntry},
		},
		OnSubmit: func() {
			if n, err := strconv.Atoi(maxPointsEntry.Text); err == nil && n > 0 {
				state.cfg.Display.MaxPoints = n
			}
			if d, err := time.ParseDuration(refreshEntry.Text); err == nil && d > 0 {
				state.cfg.Display.RefreshInterval = d
			}
			saveConfig(state)
		},
	}

	return container.NewTabItem("Display", form)
}
