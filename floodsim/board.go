package main

import (
	"image/color"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/floodmon/pkg/mock"
	"github.com/itohio/floodmon/pkg/tasks"
)

const ledSize = 18

var (
	ledOff   = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	redOn    = color.RGBA{R: 255, G: 40, B: 40, A: 255}
	greenOn  = color.RGBA{R: 40, G: 220, B: 40, A: 255}
	panelInk = color.RGBA{R: 120, G: 200, B: 255, A: 255}
)

// Panel text positions as drawn by the decider.
var (
	panelWater = mock.Point{X: 24, Y: 12}
	panelRain  = mock.Point{X: 63, Y: 12}
	panelLabel = mock.Point{X: 75, Y: 38}
)

// boardView shows the simulated board and lets the user move the joystick.
type boardView struct {
	board *mock.Board

	panel   *canvas.Text
	label   *canvas.Text
	matrix  [mock.PixelCount]*canvas.Rectangle
	red     *canvas.Circle
	green   *canvas.Circle
	buzzer  *widget.ProgressBar
	content fyne.CanvasObject
}

func newBoardView(board *mock.Board) *boardView {
	v := &boardView{board: board}

	water, rain := board.Joystick.Levels()

	waterValue := widget.NewLabel(formatPercent(water))
	waterSlider := widget.NewSlider(0, 100)
	waterSlider.SetValue(water)
	waterSlider.OnChanged = func(pct float64) {
		board.Joystick.SetWater(pct)
		waterValue.SetText(formatPercent(pct))
	}

	rainValue := widget.NewLabel(formatPercent(rain))
	rainSlider := widget.NewSlider(0, 100)
	rainSlider.SetValue(rain)
	rainSlider.OnChanged = func(pct float64) {
		board.Joystick.SetRain(pct)
		rainValue.SetText(formatPercent(pct))
	}

	controls := widget.NewForm(
		widget.NewFormItem("Water", container.NewBorder(nil, nil, nil, waterValue, waterSlider)),
		widget.NewFormItem("Rain", container.NewBorder(nil, nil, nil, rainValue, rainSlider)),
	)

	v.panel = canvas.NewText("", panelInk)
	v.panel.TextStyle = fyne.TextStyle{Monospace: true}
	v.label = canvas.NewText("", redOn)
	v.label.TextStyle = fyne.TextStyle{Monospace: true, Bold: true}
	panelBg := canvas.NewRectangle(color.Black)
	panelBg.SetMinSize(fyne.NewSize(200, 50))
	panel := container.NewStack(panelBg, container.NewVBox(v.panel, v.label))

	cells := make([]fyne.CanvasObject, 0, mock.PixelCount)
	for i := range v.matrix {
		r := canvas.NewRectangle(ledOff)
		r.SetMinSize(fyne.NewSize(ledSize, ledSize))
		v.matrix[i] = r
		cells = append(cells, r)
	}
	matrix := container.NewGridWithColumns(tasks.MatrixSize/5, cells...)

	v.red = canvas.NewCircle(ledOff)
	v.green = canvas.NewCircle(ledOff)
	indicator := container.NewGridWithColumns(2, sized(v.red), sized(v.green))

	v.buzzer = widget.NewProgressBar()

	v.content = widget.NewCard("Simulated board", "", container.NewVBox(
		controls,
		panel,
		container.NewHBox(matrix, indicator),
		widget.NewLabel("Buzzer duty"),
		v.buzzer,
	))

	v.Refresh()
	return v
}

func sized(c *canvas.Circle) fyne.CanvasObject {
	bg := canvas.NewRectangle(color.Transparent)
	bg.SetMinSize(fyne.NewSize(ledSize, ledSize))
	return container.NewStack(bg, c)
}

// Container returns the view's root object.
func (v *boardView) Container() fyne.CanvasObject {
	return v.content
}

// Refresh copies the board outputs to the view. Must run on the UI thread.
func (v *boardView) Refresh() {
	screen := v.board.Display.Screen()
	v.panel.Text = "W " + padPercent(screen.Text(panelWater.X, panelWater.Y)) +
		"  R " + padPercent(screen.Text(panelRain.X, panelRain.Y))
	v.panel.Refresh()
	v.label.Text = screen.Text(panelLabel.X, panelLabel.Y)
	v.label.Refresh()

	pixels := v.board.Pixels.Pixels()
	for i, r := range v.matrix {
		r.FillColor = ledColor(pixels[i])
		r.Refresh()
	}

	v.red.FillColor = ledOff
	if v.board.Red.Level() {
		v.red.FillColor = redOn
	}
	v.red.Refresh()

	v.green.FillColor = ledOff
	if v.board.Green.Level() {
		v.green.FillColor = greenOn
	}
	v.green.Refresh()

	v.buzzer.SetValue(v.board.Buzzer.Fraction())
}

// ledColor brightens a dim LED color for display. Off stays dark grey.
func ledColor(c color.RGBA) color.RGBA {
	if c.R == 0 && c.G == 0 && c.B == 0 {
		return ledOff
	}

	peak := max(c.R, c.G, c.B)
	scale := func(v uint8) uint8 {
		return uint8(uint16(v) * 255 / uint16(peak))
	}
	return color.RGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: 255}
}

func padPercent(s string) string {
	if s == "" {
		s = "-"
	}
	return strings.Repeat(" ", max(0, 3-len(s))) + s + "%"
}

func formatPercent(v float64) string {
	return padPercent(strconv.Itoa(int(v + 0.5)))
}
