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

type fakeTimer struct {
	count   uint32
	pending bool
	cleared int
}

func (t *fakeTimer) Count() uint32         { return t.count }
func (t *fakeTimer) OverflowPending() bool { return t.pending }
func (t *fakeTimer) ClearOverflow() {
	t.pending = false
	t.cleared++
}

type fakeEvents struct {
	top    uint32
	resets int
}

func (c *fakeEvents) SetTop(top uint32) { c.top = top }
func (c *fakeEvents) Reset()            { c.resets++ }

type fakeEdge struct {
	enabled bool
	changes int
}

func (s *fakeEdge) EnableEdge() {
	s.enabled = true
	s.changes++
}

func (s *fakeEdge) DisableEdge() {
	s.enabled = false
	s.changes++
}

type rig struct {
	e      *Engine
	timer  *fakeTimer
	events *fakeEvents
	edge   *fakeEdge
}

func newRig(cfg Config) *rig {
	r := &rig{timer: &fakeTimer{}, events: &fakeEvents{}, edge: &fakeEdge{}}
	r.e = New(cfg, r.timer, r.events, r.edge, &sync.Mutex{})
	r.e.Start()
	return r
}

// at sets the tick clock to t.
func (r *rig) at(t Tick) {
	bits := r.e.cfg.TimerBits
	r.e.clock.overflows = uint32(t) >> bits
	r.timer.count = uint32(t) & (1<<bits - 1)
	r.timer.pending = false
}

func (r *rig) edgeAt(t Tick) {
	r.at(t)
	r.e.OnEdge()
}

// windowAt delivers all the compare-match interrupts of one fast mode period,
// the last of which is at time t.
func (r *rig) windowAt(t Tick) {
	for r.e.counterHigh != r.e.cmpHigh {
		r.e.OnCompare()
	}
	r.at(t)
	r.e.OnCompare()
}
