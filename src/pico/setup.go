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
	"device/arm"
	"device/rp"
	"fmt"
	"machine"
	"runtime/interrupt"
	"time"

	"freqcount/src/counter"
	"freqcount/src/machine_x"
	"freqcount/src/support"
)

/*
The input signal has been converted to a square wave and inverted by the
hardware outside the microcontroller, so we count falling edges. It is fed to
two pins:

- GP2 raises an edge interrupt for every falling edge. This is slow mode and is
used for low frequencies, where counting even two events would take too long.

- GP3 is the B input of PWM slice 1, which counts falling edges and wraps after
2^n of them. The wrap interrupt is our compare-match. This is fast mode. The
slice keeps counting while slow mode is active so we can switch back quickly.

PWM slice 0 runs free on the system clock divided by 64 and is the hardware
half of the tick clock. Its wrap interrupt counts overflows.

Both slices share PWM_IRQ_WRAP. The edge interrupt gets the highest priority
because at high frequencies it is the only interrupt that is sure to run.
*/

const (
	EdgePin  = machine.GP2
	CountPin = machine.GP3 // PWM1 B

	LCDSDA     = machine.GP4
	LCDSCL     = machine.GP5
	LCDAddress = 0x27
	LCDWidth   = 16
	LCDHeight  = 2

	PollInterval = 100 * time.Millisecond

	edgePriority = 0x00
	wrapPriority = 0x80
)

var (
	engine *counter.Engine
	ticks  = machine_x.PWM0
	events = machine_x.PWM1
	edge   = edgePin{pin: EdgePin}
)

// Setup configures the counters, the interrupts and the display, and starts
// measuring.
func Setup() (*counter.Engine, *support.Display, error) {
	time.Sleep(100 * time.Millisecond) // wait for stable power

	if f := machine.CPUFrequency(); f != support.CPUFrequency {
		return nil, nil, fmt.Errorf("pico: cpu runs at %d Hz, tick rate assumes %d Hz", f, support.CPUFrequency)
	}

	lcd := NewLCD(machine.I2C0, LCDAddress)
	if err := lcd.Init(); err != nil {
		return nil, nil, err
	}

	setupFrequencyCounters()
	engine = counter.New(counter.DefaultConfig(),
		tickTimer{slice: ticks}, eventCounter{slice: events}, &edge, &irqLock{})
	setupInterrupt()
	engine.Start()

	// enable both counters simultaneously
	machine_x.SetEN_CH(ticks.Mask()|events.Mask(), 1)

	calc := support.NewReciprocal(support.DeciHertzPerTick)
	return engine, support.NewDisplay(lcd, calc, support.Bands), nil
}

func setupFrequencyCounters() {
	machine_x.SetEN_CH(ticks.Mask()|events.Mask(), 0)

	ticks.SetDivMode(rp.PWM_CH0_CSR_DIVMODE_DIV)
	ticks.SetClockDiv(counter.CyclesPerTick, 0)
	ticks.SetTop(1<<counter.TimerBits - 1)
	ticks.SetCounter(0)
	ticks.ClearWrap()
	ticks.SetWrapInterrupt(true)

	CountPin.Configure(machine.PinConfig{Mode: machine.PinPWM})
	events.SetDivMode(rp.PWM_CH0_CSR_DIVMODE_FALL)
	events.SetClockDiv(1, 0)
	events.SetCounter(0)
	events.ClearWrap()
	events.SetWrapInterrupt(true)

	EdgePin.Configure(machine.PinConfig{Mode: machine.PinInput})
}

func setupInterrupt() {
	irq := interrupt.New(rp.IRQ_PWM_IRQ_WRAP, func(interrupt.Interrupt) {
		state := interrupt.Disable()
		status := machine_x.WrapStatus()
		if status&events.Mask() != 0 {
			events.ClearWrap()
			engine.OnCompare()
		}
		if status&ticks.Mask() != 0 {
			// the handler clears the flag
			engine.OnOverflow()
		}
		interrupt.Restore(state)
	})
	irq.SetPriority(wrapPriority)
	irq.Enable()

	// the machine package enables IO_IRQ_BANK0 when the pin callback is set
	arm.SetPriority(rp.IRQ_IO_IRQ_BANK0, edgePriority)
}
