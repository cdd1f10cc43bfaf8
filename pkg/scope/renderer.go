package scope

import (
	"image/color"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/itohio/floodmon/pkg/flood"
	"github.com/itohio/floodmon/pkg/history"
	"github.com/itohio/floodmon/pkg/telemetry"
)

var (
	gridColor  = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	labelColor = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	alertColor = color.RGBA{R: 255, G: 60, B: 60, A: 255}
	calmColor  = color.RGBA{R: 120, G: 220, B: 120, A: 255}
)

// plot maps time and percentage to widget coordinates.
type plot struct {
	x, y, width, height float32
	xMin, xMax          time.Time
}

func (p plot) posX(t time.Time) float32 {
	span := p.xMax.Sub(p.xMin).Seconds()
	if span <= 0 {
		return p.x
	}
	return p.x + float32(t.Sub(p.xMin).Seconds()/span)*p.width
}

func (p plot) posY(percent uint16) float32 {
	return p.y + p.height - float32(percent)/100*p.height
}

// scopeRenderer renders the scope widget.
type scopeRenderer struct {
	scope      *ScopeWidget
	background *canvas.Rectangle
	objects    []fyne.CanvasObject
	lastSize   fyne.Size
}

// MinSize returns the minimum size of the widget.
func (r *scopeRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

// Layout arranges the widget components.
func (r *scopeRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)

	if r.lastSize != size {
		r.lastSize = size
		r.scope.BaseWidget.Refresh()
	}
}

// Refresh rebuilds all canvas objects.
func (r *scopeRenderer) Refresh() {
	r.scope.mu.RLock()
	frames := r.scope.display
	episodes := r.scope.episodes
	state := r.scope.state
	xMin, xMax := r.scope.xMin, r.scope.xMax
	r.scope.mu.RUnlock()

	size := r.scope.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	r.objects = []fyne.CanvasObject{r.background}

	const (
		marginLeft   = 50
		marginRight  = 20
		marginTop    = 20
		marginBottom = 40
	)
	p := plot{
		x:      marginLeft,
		y:      marginTop,
		width:  size.Width - marginLeft - marginRight,
		height: size.Height - marginTop - marginBottom,
		xMin:   xMin,
		xMax:   xMax,
	}

	r.drawEpisodes(p, episodes)
	r.drawGrid(p)
	r.drawThreshold(p, flood.WaterMax, WaterColor)
	r.drawThreshold(p, flood.RainMax, RainColor)
	r.drawTrace(p, frames, WaterColor, func(l flood.Levels) uint16 { return l.Water })
	r.drawTrace(p, frames, RainColor, func(l flood.Levels) uint16 { return l.Rain })
	r.drawLegend(p, frames, state)
}

// drawGrid draws percentage and time grid lines.
func (r *scopeRenderer) drawGrid(p plot) {
	for pct := 0; pct <= 100; pct += 10 {
		y := p.posY(uint16(pct))
		line := canvas.NewLine(gridColor)
		line.Position1 = fyne.NewPos(p.x, y)
		line.Position2 = fyne.NewPos(p.x+p.width, y)
		line.StrokeWidth = 1
		r.objects = append(r.objects, line)

		text := canvas.NewText(strconv.Itoa(pct)+"%", labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignTrailing
		text.Move(fyne.NewPos(p.x-5, y-6))
		r.objects = append(r.objects, text)
	}

	numVLines := 10
	span := p.xMax.Sub(p.xMin)
	for i := range numVLines + 1 {
		x := p.x + float32(i)*p.width/float32(numVLines)
		line := canvas.NewLine(gridColor)
		line.Position1 = fyne.NewPos(x, p.y)
		line.Position2 = fyne.NewPos(x, p.y+p.height)
		line.StrokeWidth = 1
		r.objects = append(r.objects, line)

		offset := span * time.Duration(i) / time.Duration(numVLines)
		text := canvas.NewText(formatTime(offset), labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignCenter
		text.Move(fyne.NewPos(x-20, p.y+p.height+5))
		r.objects = append(r.objects, text)
	}
}

// drawThreshold draws a horizontal line at the alert threshold of a sensor.
func (r *scopeRenderer) drawThreshold(p plot, percent uint16, c color.RGBA) {
	c.A = 140
	line := canvas.NewLine(c)
	line.Position1 = fyne.NewPos(p.x, p.posY(percent))
	line.Position2 = fyne.NewPos(p.x+p.width, p.posY(percent))
	line.StrokeWidth = 1
	r.objects = append(r.objects, line)
}

// drawTrace draws one level as connected line segments.
func (r *scopeRenderer) drawTrace(p plot, frames []telemetry.Frame, c color.Color, level func(flood.Levels) uint16) {
	if len(frames) < 2 {
		return
	}

	prev := fyne.NewPos(p.posX(frames[0].Timestamp), p.posY(level(frames[0].Levels())))
	for _, f := range frames[1:] {
		pos := fyne.NewPos(p.posX(f.Timestamp), p.posY(level(f.Levels())))
		line := canvas.NewLine(c)
		line.Position1 = prev
		line.Position2 = pos
		line.StrokeWidth = 1.5
		r.objects = append(r.objects, line)
		prev = pos
	}
}

// drawEpisodes shades the time span of every alert episode.
func (r *scopeRenderer) drawEpisodes(p plot, episodes []history.Episode) {
	for _, e := range episodes {
		x0 := max(p.posX(e.Start), p.x)
		x1 := min(p.posX(e.End), p.x+p.width)
		if x1 <= x0 {
			x1 = x0 + 1
		}

		rect := canvas.NewRectangle(EpisodeColor)
		rect.Move(fyne.NewPos(x0, p.y))
		rect.Resize(fyne.NewSize(x1-x0, p.height))
		r.objects = append(r.objects, rect)

		text := canvas.NewText("peak "+strconv.Itoa(int(max(e.PeakWater, e.PeakRain)))+"%", alertColor)
		text.TextSize = 10
		text.Move(fyne.NewPos(x0+2, p.y+2))
		r.objects = append(r.objects, text)
	}
}

// drawLegend shows the latest levels and the alert state.
func (r *scopeRenderer) drawLegend(p plot, frames []telemetry.Frame, state flood.AlertState) {
	if len(frames) == 0 {
		return
	}
	levels := frames[len(frames)-1].Levels()

	water := canvas.NewText("water "+strconv.Itoa(int(levels.Water))+"%", WaterColor)
	water.TextSize = 11
	water.Move(fyne.NewPos(p.x+10, p.y+10))

	rain := canvas.NewText("rain "+strconv.Itoa(int(levels.Rain))+"%", RainColor)
	rain.TextSize = 11
	rain.Move(fyne.NewPos(p.x+100, p.y+10))

	c := calmColor
	if state.IsAlert() {
		c = alertColor
	}
	mode := canvas.NewText(state.String(), c)
	mode.TextSize = 11
	mode.TextStyle = fyne.TextStyle{Bold: true}
	mode.Move(fyne.NewPos(p.x+180, p.y+10))

	r.objects = append(r.objects, water, rain, mode)
}

// Objects returns all canvas objects for rendering.
func (r *scopeRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *scopeRenderer) Destroy() {}

func formatTime(d time.Duration) string {
	prec := 1
	if d < time.Second {
		prec = 2
	}
	return strconv.FormatFloat(d.Seconds(), 'f', prec, 64) + "s"
}
