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
	"machine"
	"runtime/interrupt"

	"freqcount/src/counter"
	"freqcount/src/machine_x"
)

// tickTimer is PWM slice 0 counting cpu cycles divided by 64. It is the
// narrow half of the tick clock.
type tickTimer struct {
	slice machine_x.PWMSlice
}

func (t tickTimer) Count() uint32         { return t.slice.Counter() }
func (t tickTimer) OverflowPending() bool { return t.slice.WrapPending() }
func (t tickTimer) ClearOverflow()        { t.slice.ClearWrap() }

// eventCounter is PWM slice 1 counting falling edges on its B pin.
type eventCounter struct {
	slice machine_x.PWMSlice
}

func (c eventCounter) SetTop(top uint32) { c.slice.SetTop(top) }
func (c eventCounter) Reset()            { c.slice.SetCounter(0) }

// edgePin raises an interrupt for every falling edge in slow mode.
// Installing the callback again while it is installed is an error in the
// machine package, so we keep track of it.
type edgePin struct {
	pin     machine.Pin
	enabled bool
}

func (p *edgePin) EnableEdge() {
	if p.enabled {
		return
	}
	p.enabled = true
	err := p.pin.SetInterrupt(machine.PinFalling, onEdge)
	if err != nil {
		println("pico: edge interrupt:", err.Error())
	}
}

func (p *edgePin) DisableEdge() {
	if !p.enabled {
		return
	}
	p.enabled = false
	p.pin.SetInterrupt(machine.PinFalling, nil)
}

func onEdge(machine.Pin) {
	state := interrupt.Disable()
	engine.OnEdge()
	interrupt.Restore(state)
}

// irqLock is a critical section that masks all interrupts. It is not
// reentrant.
type irqLock struct {
	state interrupt.State
}

func (l *irqLock) Lock()   { l.state = interrupt.Disable() }
func (l *irqLock) Unlock() { interrupt.Restore(l.state) }

var _ counter.Timer = tickTimer{}
var _ counter.EventCounter = eventCounter{}
var _ counter.EdgeSource = (*edgePin)(nil)
