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

// OnCompare is the body of the compare-match interrupt of the event counter.
func (e *Engine) OnCompare() {
	now := e.clock.Now()

	// this interrupt is proof that fast mode is alive
	e.watchdog = e.cfg.WatchdogTop

	if e.counterHigh != e.cmpHigh {
		// counting more events than the hardware can
		e.counterHigh++
		return
	}
	e.counterHigh = 0

	f := &e.fast
	if f.awaitingFirst {
		f.awaitingFirst = false
		f.windowStart = now
		return
	}

	log2ne := f.pendingLog2
	f.log2Events = log2ne
	period := now - f.windowStart
	f.period = period
	f.windowStart = now

	// Adjust the number of events for the next period. This runs even if
	// slow mode is active so the fast counter is ready when we need it.
	lo, hi := e.cfg.MinPeriod, e.cfg.maxPeriod()
	adjusted, n := rescale(period, log2ne, lo, hi, e.cfg.MaxLog2Events)
	if n > log2ne {
		e.setCompare(n)
		e.edge.DisableEdge()
		e.active = Fast
		f.pendingLog2 = n
	} else if n < log2ne {
		e.setCompare(n)
		f.pendingLog2 = n
	}
	period = adjusted

	if e.active == Fast {
		if period > hi && n == 1 {
			// too slow even for two events
			e.edge.EnableEdge()
			s := &e.slow
			s.period = period / 2
			s.windowStart = now
			s.awaitingFirst = true
			e.active = Slow
		}
	} else if e.slow.period < lo {
		// running too fast for slow mode
		e.edge.DisableEdge()
		e.active = Fast
	}
}

// rescale doubles the number of events while the period is too short, or
// halves it while the period is too long, and returns the period we expect
// with the new exponent.
func rescale(period Tick, log2ne uint8, lo, hi Tick, maxLog2 uint8) (Tick, uint8) {
	for period < lo && log2ne < maxLog2 {
		log2ne++
		period *= 2
	}
	for period > hi && log2ne > 1 {
		log2ne--
		period /= 2
	}
	return period, log2ne
}
