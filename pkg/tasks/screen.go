package tasks

import "github.com/itohio/floodmon/pkg/hal"

// Panel layout.
const (
	waterTextX, waterTextY   = 24, 12
	rainTextX, rainTextY     = 63, 12
	alertLabelX, alertLabelY = 75, 38
	waterBarX, waterBarY     = 11, 59
	rainBarX, rainBarY       = 49, 59

	// AlertLabel is shown while the alert is active.
	AlertLabel = "ALERT"

	// Blanks wide enough to erase the previous text.
	percentBlank = "   "
	labelBlank   = "       "
)

// Background returns the static panel background: a frame around the screen
// and an outline around each level bar.
func Background() []byte {
	bitmap := make([]byte, hal.BitmapSize)

	rect(bitmap, 0, 0, hal.DisplayWidth-1, hal.DisplayHeight-1)
	for _, x := range []int{waterBarX, rainBarX} {
		rect(bitmap, x-1, waterBarY-hal.BarHeight-1, x+hal.BarWidth, waterBarY)
	}

	return bitmap
}

// rect draws a one pixel rectangle outline into a page-organized bitmap.
func rect(bitmap []byte, x0, y0, x1, y1 int) {
	for x := x0; x <= x1; x++ {
		setPixel(bitmap, x, y0)
		setPixel(bitmap, x, y1)
	}
	for y := y0; y <= y1; y++ {
		setPixel(bitmap, x0, y)
		setPixel(bitmap, x1, y)
	}
}

func setPixel(bitmap []byte, x, y int) {
	if x < 0 || x >= hal.DisplayWidth || y < 0 || y >= hal.DisplayHeight {
		return
	}
	bitmap[(y/8)*hal.DisplayWidth+x] |= 1 << (y % 8)
}
