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

package sim

import (
	"math"
	"sync"
	"time"

	"freqcount/src/counter"
	"freqcount/src/support"
)

/*
Machine simulates the counter hardware well enough to run the measurement
engine on a host. Time is kept in cpu cycles. The tick timer, the event counter
and the edge interrupt are derived from the cycle count and the input signal,
and the interrupt routines are called in the order the hardware would call
them.

When the edge interrupt is masked, we don't visit every edge but jump straight
to the edge that makes the event counter wrap. That keeps simulating
megahertz signals cheap.
*/
type Machine struct {
	cfg     Config
	engine  *counter.Engine
	display *support.Display

	now uint64 // cycles since power up

	period   uint64 // cycles per input period, 0 means no signal
	nextEdge uint64

	serviced uint64 // tick timer overflows acknowledged

	count, top uint32 // event counter
	edgeOn     bool

	nextPoll uint64
	polls    int
	forced   int

	// OnPoll, if set, sees every reading the polling loop takes.
	OnPoll func(counter.Reading)

	// OnFrequency, if set, sees every input change as requested and as
	// simulated.
	OnFrequency func(requested, simulated float64)
}

type Config struct {
	CPUFrequency uint64
	PollInterval time.Duration
	Counter      counter.Config
}

func DefaultConfig() Config {
	return Config{
		CPUFrequency: support.CPUFrequency,
		PollInterval: 100 * time.Millisecond,
		Counter:      counter.DefaultConfig(),
	}
}

type event uint8

// in order of priority for events at the same time
const (
	evEdge event = iota
	evCompare
	evOverflow
	evPoll
	evNone
)

func New(cfg Config, sink support.Sink) *Machine {
	m := &Machine{cfg: cfg}
	m.engine = counter.New(cfg.Counter, timer{m}, eventCounter{m}, edgeSource{m}, &sync.Mutex{})
	calc := support.NewReciprocal(uint32(10 * cfg.CPUFrequency / counter.CyclesPerTick))
	m.display = support.NewDisplay(sink, calc, support.Bands)
	m.nextPoll = m.cycles(cfg.PollInterval)
	m.engine.Start()
	return m
}

func (m *Machine) cycles(d time.Duration) uint64 {
	return uint64(d/time.Microsecond) * m.cfg.CPUFrequency / 1_000_000
}

// Elapsed returns the simulated time since power up.
func (m *Machine) Elapsed() time.Duration {
	return time.Duration(m.now * 1_000_000 / m.cfg.CPUFrequency * uint64(time.Microsecond))
}

// SetFrequency changes the input signal. The first edge at the new frequency
// comes one period from now. Zero or less removes the signal.
//
// Edges fall on whole cpu cycles, so the period is rounded to the nearest
// cycle. Near the cpu clock that is a big change: 50MHz becomes 125MHz/3.
// Frequency returns what is actually simulated.
func (m *Machine) SetFrequency(hz float64) {
	m.catchUp()
	if hz <= 0 {
		m.period = 0
	} else {
		m.period = uint64(math.Max(1, math.Round(float64(m.cfg.CPUFrequency)/hz)))
		m.nextEdge = m.now + m.period
	}
	if m.OnFrequency != nil {
		m.OnFrequency(hz, m.Frequency())
	}
}

// Frequency returns the simulated input frequency in Hz.
func (m *Machine) Frequency() float64 {
	if m.period == 0 {
		return 0
	}
	return float64(m.cfg.CPUFrequency) / float64(m.period)
}

// Run advances the simulation by d.
func (m *Machine) Run(d time.Duration) {
	end := m.now + m.cycles(d)
	for {
		t, ev := m.next()
		if ev == evNone || t > end {
			break
		}
		m.now = t
		if ev != evCompare {
			m.catchUp()
		}
		switch ev {
		case evEdge:
			m.edge()
		case evCompare:
			m.skipToWrap()
		case evOverflow:
			m.engine.OnOverflow()
		case evPoll:
			m.poll()
		}
	}
	m.now = end
}

func (m *Machine) next() (uint64, event) {
	t, ev := uint64(math.MaxUint64), evNone
	consider := func(at uint64, e event) {
		if at < t || (at == t && e < ev) {
			t, ev = at, e
		}
	}
	if m.period != 0 {
		if m.edgeOn {
			consider(m.nextEdge, evEdge)
		} else {
			consider(m.nextEdge+(m.remaining()-1)*m.period, evCompare)
		}
	}
	wrap := (m.serviced + 1) << m.cfg.Counter.TimerBits * counter.CyclesPerTick
	consider(max(wrap, m.now), evOverflow)
	consider(m.nextPoll, evPoll)
	return t, ev
}

// remaining returns the number of edges until the event counter wraps.
func (m *Machine) remaining() uint64 {
	if m.count <= m.top {
		return uint64(m.top-m.count) + 1
	}
	return uint64(m.counterMask()-m.count) + uint64(m.top) + 2
}

func (m *Machine) counterMask() uint32 {
	return uint32(1)<<m.cfg.Counter.CounterBits - 1
}

// edge handles a single edge with the edge interrupt enabled. The event
// counter counts the edge first; the edge interrupt has a higher priority than
// the compare-match interrupt.
func (m *Machine) edge() {
	m.nextEdge += m.period
	wrapped := m.countEdge()
	m.engine.OnEdge()
	if wrapped {
		m.engine.OnCompare()
	}
}

// catchUp counts the edges we skipped while the edge interrupt was masked.
// None of them can have wrapped the event counter.
func (m *Machine) catchUp() {
	if m.edgeOn || m.period == 0 || m.nextEdge > m.now {
		return
	}
	k := (m.now-m.nextEdge)/m.period + 1
	m.nextEdge += k * m.period
	m.count = uint32((uint64(m.count) + k) & uint64(m.counterMask()))
}

func (m *Machine) countEdge() bool {
	if m.count == m.top {
		m.count = 0
		return true
	}
	m.count = (m.count + 1) & m.counterMask()
	return false
}

func (m *Machine) skipToWrap() {
	m.nextEdge = m.now + m.period
	m.count = 0
	m.engine.OnCompare()
}

func (m *Machine) poll() {
	m.nextPoll += m.cycles(m.cfg.PollInterval)
	m.polls++
	r := m.engine.Poll()
	if r.Forced {
		m.forced++
	}
	m.display.ShowMeasurement(r.Log2Events, uint32(r.Period))
	if m.OnPoll != nil {
		m.OnPoll(r)
	}
}

// Line returns the text on the display.
func (m *Machine) Line() string {
	return m.display.Line()
}

// Mode returns the active counting mode.
func (m *Machine) Mode() counter.Mode {
	return m.engine.Active()
}

// Reading returns the latest completed measurement.
func (m *Machine) Reading() counter.Reading {
	return m.engine.Snapshot()
}

// Forced returns how many times the watchdog forced slow mode.
func (m *Machine) Forced() int {
	return m.forced
}

func (m *Machine) ticks() uint64 {
	return m.now / counter.CyclesPerTick
}

type timer struct{ m *Machine }

func (t timer) Count() uint32 {
	return uint32(t.m.ticks()) & (1<<t.m.cfg.Counter.TimerBits - 1)
}

func (t timer) OverflowPending() bool {
	return t.m.ticks()>>t.m.cfg.Counter.TimerBits > t.m.serviced
}

func (t timer) ClearOverflow() {
	t.m.serviced++
}

type eventCounter struct{ m *Machine }

func (c eventCounter) SetTop(top uint32) { c.m.top = top & c.m.counterMask() }
func (c eventCounter) Reset()            { c.m.count = 0 }

type edgeSource struct{ m *Machine }

func (s edgeSource) EnableEdge()  { s.m.edgeOn = true }
func (s edgeSource) DisableEdge() { s.m.edgeOn = false }
