//go:build tinygo

package main

import "machine"

const (
	// Display (SSD1306 on I2C1)
	PIN_I2C_SDA     = machine.GP14
	PIN_I2C_SCL     = machine.GP15
	DISPLAY_ADDRESS = 0x3C
	I2C_FREQUENCY   = 400 * machine.KHz

	// Joystick axes
	PIN_ADC_RAIN  = machine.ADC0 // GPIO 26, channel A
	PIN_ADC_WATER = machine.ADC1 // GPIO 27, channel B

	// Bicolor indicator
	PIN_LED_RED   = machine.GP13
	PIN_LED_GREEN = machine.GP11

	// 5x5 WS2812 matrix
	PIN_MATRIX = machine.GP7

	// Buzzer on PWM slice 2, channel B
	PIN_BUZZER = machine.GP21
	// Buzzer PWM period in nanoseconds (~2.1 kHz, counter top 59609 at 125 MHz)
	BUZZER_PERIOD_NS = 476880

	// USB console
	UART_BAUD_RATE = 115200
)
