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

package counter

import "sync"

/*
Engine measures frequency with the reciprocal method. Instead of counting edges
during a fixed time, we measure the time taken by a fixed number of edges and
divide. That gives good resolution even at very low frequencies.

There are two ways of counting. In slow mode every falling edge raises an
interrupt and we time single periods. In fast mode a hardware counter divides
the input by 2^n and we only see an interrupt every 2^n edges. The exponent n is
adjusted after every period so that a period takes between MinPeriod and
3*MinPeriod ticks. The hardware counter keeps running while slow mode is
active so that switching back to fast mode needs no setup.

OnEdge, OnCompare and OnOverflow are interrupt bodies and must be called with
interrupts disabled. Poll, Snapshot and ForceSlow are for the polling loop and
take the lock themselves.
*/
type Engine struct {
	cfg    Config
	clock  *Clock
	events EventCounter
	edge   EdgeSource
	lock   sync.Locker

	slow, fast state
	active     Mode
	watchdog   int8

	// extended event counter for exponents above the hardware width
	counterHigh uint32
	cmpHigh     uint32
}

// EventCounter is the hardware counter that divides the input signal in fast
// mode. It raises a compare-match interrupt every top+1 input edges.
type EventCounter interface {
	SetTop(top uint32)
	Reset()
}

// EdgeSource controls the per-edge interrupt used in slow mode.
type EdgeSource interface {
	EnableEdge()
	DisableEdge()
}

type Mode uint8

const (
	Slow Mode = iota
	Fast
)

func (m Mode) String() string {
	if m == Fast {
		return "fast"
	}
	return "slow"
}

// state is the bookkeeping of one counting mode.
type state struct {
	period        Tick  // length of last measured period
	log2Events    uint8 // log2 of the number of events in period
	pendingLog2   uint8 // log2 of the number of events for the current period
	awaitingFirst bool  // no edge seen yet, so no period can be computed
	windowStart   Tick  // ticks at start of current period
}

// Reading is a consistent snapshot of the active counter.
type Reading struct {
	Log2Events uint8
	Period     Tick
	Mode       Mode
	Forced     bool // the watchdog forced slow mode during this poll
}

func New(cfg Config, timer Timer, events EventCounter, edge EdgeSource, lock sync.Locker) *Engine {
	return &Engine{
		cfg:      cfg,
		clock:    NewClock(timer, cfg.TimerBits),
		events:   events,
		edge:     edge,
		lock:     lock,
		slow:     state{period: MaxPeriod, awaitingFirst: true},
		fast:     state{period: MaxPeriod, awaitingFirst: true, pendingLog2: 1},
		active:   Slow,
		watchdog: cfg.WatchdogTop,
	}
}

// Start primes the event counter and the edge interrupt. We start in slow
// mode and the edge interrupt routine switches to fast mode if needed.
func (e *Engine) Start() {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.setCompare(e.fast.pendingLog2)
	e.events.Reset()
	e.active = Slow
	e.edge.EnableEdge()
}

// OnOverflow is the body of the tick timer overflow interrupt.
func (e *Engine) OnOverflow() {
	e.clock.OnOverflow()
}

// Snapshot reads the result of the latest completed period of the active
// counter.
func (e *Engine) Snapshot() Reading {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.reading()
}

func (e *Engine) reading() Reading {
	cur := &e.slow
	if e.active == Fast {
		cur = &e.fast
	}
	return Reading{Log2Events: cur.log2Events, Period: cur.period, Mode: e.active}
}

// Active returns the mode whose results are being displayed.
func (e *Engine) Active() Mode {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.active
}

// Poll is one iteration of the polling loop. It takes a snapshot of the
// active counter and counts down the watchdog. If fast mode has been silent
// for longer than the watchdog allows, we switch to slow mode. The snapshot is
// taken before the switch so the caller still shows the last fast result.
func (e *Engine) Poll() Reading {
	e.lock.Lock()
	r := e.reading()
	if e.watchdog > -128 {
		e.watchdog--
	}
	expired := e.watchdog < 0 && e.active == Fast
	if expired {
		e.watchdog = e.cfg.WatchdogTop
	}
	e.lock.Unlock()

	if expired {
		e.ForceSlow()
		r.Forced = true
	}
	return r
}

/*
ForceSlow switches to slow mode and reinitializes the fast counter to count two
events. At very low frequencies the compare-match interrupt may not come for a
long time because the exponent is still set for an earlier, faster signal.
*/
func (e *Engine) ForceSlow() {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.edge.EnableEdge()
	e.slow.awaitingFirst = true
	e.slow.period = MaxPeriod
	e.active = Slow
	e.fast.awaitingFirst = true
	e.fast.pendingLog2 = 1
	e.setCompare(1)
	e.events.Reset()
}

// setCompare programs the hardware counter for 2^log2ne events, using the
// extended counter when that is more than the hardware can count.
func (e *Engine) setCompare(log2ne uint8) {
	bits := e.cfg.CounterBits
	e.counterHigh = 0
	if log2ne <= bits {
		e.events.SetTop(uint32(1)<<log2ne - 1)
		e.cmpHigh = 0
	} else {
		e.events.SetTop(uint32(1)<<bits - 1)
		e.cmpHigh = uint32(1)<<(log2ne-bits) - 1
	}
}
