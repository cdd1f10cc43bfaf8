//go:build tinygo

//go:generate tinygo flash -target=pico

package main

import (
	"context"
	"machine"
	"time"

	"github.com/itohio/floodmon/pkg/flood"
	"github.com/itohio/floodmon/pkg/tasks"
	"github.com/itohio/floodmon/pkg/telemetry"
)

// console writes one telemetry line per decision on the USB serial port.
type console struct {
	buf []byte
}

func (c *console) Report(d flood.Decision) {
	c.buf = telemetry.AppendLine(c.buf[:0], telemetry.FrameOf(time.Now(), d))
	machine.Serial.Write(c.buf)
}

func main() {
	machine.Serial.Configure(machine.UARTConfig{BaudRate: UART_BAUD_RATE})

	machine.I2C1.Configure(machine.I2CConfig{
		SDA:       PIN_I2C_SDA,
		SCL:       PIN_I2C_SCL,
		Frequency: I2C_FREQUENCY,
	})

	system := tasks.New(tasks.Devices{
		ADC:      newJoystick(),
		Display:  newPanel(machine.I2C1),
		Pixels:   newPixelBus(PIN_MATRIX),
		Buzzer:   newBuzzer(machine.PWM2, PIN_BUZZER),
		CalmLED:  newLED(PIN_LED_GREEN),
		AlertLED: newLED(PIN_LED_RED),
	}, tasks.Options{
		Reporter: &console{buf: make([]byte, 0, 32)},
		OnDrop: func(name string) {
			println("drop:", name)
		},
	})

	// The tasks never return on the board
	err := system.Run(context.Background())
	panic("monitor stopped: " + errString(err))
}

func errString(err error) string {
	if err == nil {
		return "<nil>"
	}
	return err.Error()
}
