//go:build rp2040

/*
 * Copyright 2025 Ted Dunning
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package pico

import (
	"fmt"
	"machine"

	"tinygo.org/x/drivers/hd44780i2c"
)

// LCD is a character display on an I2C backpack. We only use the start of
// the first line.
type LCD struct {
	bus  *machine.I2C
	addr uint8
	dev  hd44780i2c.Device
}

func NewLCD(bus *machine.I2C, addr uint8) *LCD {
	return &LCD{bus: bus, addr: addr}
}

func (l *LCD) Init() error {
	err := l.bus.Configure(machine.I2CConfig{
		SDA: LCDSDA,
		SCL: LCDSCL,
	})
	if err != nil {
		return fmt.Errorf("pico: could not configure I2C: %w", err)
	}
	l.dev = hd44780i2c.New(l.bus, l.addr)
	l.dev.Configure(hd44780i2c.Config{
		Width:  LCDWidth,
		Height: LCDHeight,
	})
	l.dev.ClearDisplay()
	return nil
}

func (l *LCD) Home() {
	l.dev.SetCursor(0, 0)
}

func (l *LCD) WriteLine(line string) {
	l.dev.Print([]byte(line))
}
