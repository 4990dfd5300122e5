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

// OnEdge is the body of the edge interrupt used in slow mode.
//
// The edge interrupt has a higher priority than any of the timer interrupts,
// so when the input frequency rises quickly, this may be the only routine that
// gets to run at all. That is why it hands over to fast mode by itself when
// the period gets really short.
func (e *Engine) OnEdge() {
	now := e.clock.Now()
	s := &e.slow

	if s.awaitingFirst {
		// can't calculate a period from a single edge
		s.awaitingFirst = false
		s.windowStart = now
		return
	}

	// log2Events is always 0 (one event) in slow mode
	period := now - s.windowStart
	s.period = period
	s.windowStart = now

	if period < e.cfg.EmergencyPeriod {
		e.edge.DisableEdge()
		f := &e.fast
		f.period = MaxPeriod
		f.awaitingFirst = true
		f.pendingLog2 = 1
		f.windowStart = now
		e.setCompare(f.pendingLog2)
		e.events.Reset()
		e.active = Fast
	}
}
