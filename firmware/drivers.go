//go:build tinygo

package main

import (
	"image/color"
	"machine"

	"github.com/itohio/floodmon/pkg/hal"
	"tinygo.org/x/drivers/ssd1306"
	"tinygo.org/x/drivers/ws2812"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

var (
	black = color.RGBA{A: 255}
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// panel draws on the SSD1306 frame buffer.
type panel struct {
	dev  *ssd1306.Device
	font tinyfont.Fonter
}

func newPanel(bus *machine.I2C) *panel {
	dev := ssd1306.NewI2C(bus)
	dev.Configure(ssd1306.Config{
		Address: DISPLAY_ADDRESS,
		Width:   hal.DisplayWidth,
		Height:  hal.DisplayHeight,
	})
	dev.ClearBuffer()
	dev.ClearDisplay()

	return &panel{dev: dev, font: &proggy.TinySZ8pt7b}
}

// DrawString clears the character cells under text, then draws it with (x, y)
// as the left end of the baseline.
func (p *panel) DrawString(text string, x, y int16) {
	_, width := tinyfont.LineWidth(p.font, text)
	height := int16(p.font.GetYAdvance())
	p.fill(x, y-height+2, int16(width), height, black)
	tinyfont.WriteLine(p.dev, p.font, x, y, text, white)
}

func (p *panel) DrawBitmap(bitmap []byte) {
	if err := p.dev.SetBuffer(bitmap); err != nil {
		println("display: bitmap:", err.Error())
	}
}

// DrawBar draws a vertical bar whose bottom row is y-1, just above the outline
// drawn at row y.
func (p *panel) DrawBar(percent uint16, x, y int16) {
	if percent > 100 {
		percent = 100
	}
	h := int16(uint32(percent) * hal.BarHeight / 100)
	p.fill(x, y-hal.BarHeight, hal.BarWidth, hal.BarHeight-h, black)
	p.fill(x, y-h, hal.BarWidth, h, white)
}

func (p *panel) Flush() {
	if err := p.dev.Display(); err != nil {
		println("display: flush:", err.Error())
	}
}

func (p *panel) fill(x, y, w, h int16, c color.RGBA) {
	for i := x; i < x+w; i++ {
		for j := y; j < y+h; j++ {
			p.dev.SetPixel(i, j, c)
		}
	}
}

// pixelBus sends bytes to the WS2812 chain.
type pixelBus struct {
	dev ws2812.Device
}

func newPixelBus(pin machine.Pin) *pixelBus {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &pixelBus{dev: ws2812.New(pin)}
}

func (b *pixelBus) Put(v byte) {
	b.dev.WriteByte(v)
}

// joystick multiplexes the two ADC inputs.
type joystick struct {
	inputs   [2]machine.ADC
	selected hal.Channel
}

func newJoystick() *joystick {
	machine.InitADC()

	j := &joystick{}
	j.inputs[hal.ChannelRain] = machine.ADC{Pin: PIN_ADC_RAIN}
	j.inputs[hal.ChannelWater] = machine.ADC{Pin: PIN_ADC_WATER}
	for i := range j.inputs {
		j.inputs[i].Configure(machine.ADCConfig{})
	}
	return j
}

func (j *joystick) Select(ch hal.Channel) {
	j.selected = ch
}

// Read returns a 12-bit sample. Get scales readings to 16 bits.
func (j *joystick) Read() uint16 {
	return j.inputs[j.selected].Get() >> 4
}

// pwmSlice is the part of a machine PWM peripheral used by the buzzer.
type pwmSlice interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

// buzzer is one channel of a PWM slice.
type buzzer struct {
	pwm     pwmSlice
	channel uint8
}

func newBuzzer(pwm pwmSlice, pin machine.Pin) *buzzer {
	if err := pwm.Configure(machine.PWMConfig{Period: BUZZER_PERIOD_NS}); err != nil {
		println("buzzer: configure:", err.Error())
	}
	ch, err := pwm.Channel(pin)
	if err != nil {
		println("buzzer: channel:", err.Error())
	}
	return &buzzer{pwm: pwm, channel: ch}
}

func (b *buzzer) Top() uint32 {
	return b.pwm.Top()
}

func (b *buzzer) SetDuty(level uint32) {
	b.pwm.Set(b.channel, level)
}

// led is a GPIO output.
type led struct {
	pin machine.Pin
}

func newLED(pin machine.Pin) led {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pin.Low()
	return led{pin: pin}
}

func (l led) Set(level bool) {
	l.pin.Set(level)
}

var (
	_ hal.Display       = (*panel)(nil)
	_ hal.PixelBus      = (*pixelBus)(nil)
	_ hal.AnalogInput   = (*joystick)(nil)
	_ hal.PWM           = (*buzzer)(nil)
	_ hal.DigitalOutput = led{}
)
