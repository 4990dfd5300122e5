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

import "testing"

func TestEngine_start(t *testing.T) {
	r := newRig(DefaultConfig())
	if r.e.Active() != Slow || !r.edge.enabled {
		t.Errorf("engine does not start in slow mode")
	}
	if r.events.top != 1 || r.events.resets != 1 {
		t.Errorf("event counter top = %d, resets = %d, want 1, 1", r.events.top, r.events.resets)
	}
	if s := r.e.Snapshot(); s.Period != MaxPeriod {
		t.Errorf("fresh engine has a period: %+v", s)
	}
}

// fastRig returns an engine that has just switched to fast mode.
func fastRig(t *testing.T) *rig {
	r := newRig(DefaultConfig())
	r.edgeAt(0)
	r.edgeAt(10)
	if r.e.Active() != Fast {
		t.Fatalf("setup did not reach fast mode")
	}
	return r
}

func TestEngine_watchdog(t *testing.T) {
	r := fastRig(t)
	forced := 0
	for i := 1; i <= 20; i++ {
		s := r.e.Poll()
		if s.Forced {
			forced++
			if i != WatchdogTop+1 {
				t.Errorf("watchdog fired on poll %d, want %d", i, WatchdogTop+1)
			}
			if s.Mode != Fast {
				t.Errorf("snapshot was taken after the switch")
			}
		}
	}
	if forced != 1 {
		t.Errorf("watchdog fired %d times, want 1", forced)
	}
	if r.e.Active() != Slow || !r.edge.enabled {
		t.Errorf("watchdog did not switch to slow mode")
	}
}

func TestEngine_watchdogResetByCompare(t *testing.T) {
	r := fastRig(t)
	for i := 0; i < 100; i++ {
		if i%WatchdogTop == 0 {
			r.windowAt(Tick(1000 + 15_000*(i/WatchdogTop)))
		}
		if s := r.e.Poll(); s.Forced {
			t.Fatalf("watchdog fired at poll %d although fast mode is alive", i)
		}
	}
	if r.e.Active() != Fast {
		t.Errorf("mode = %v, want fast", r.e.Active())
	}
}

func TestEngine_watchdogIgnoredInSlowMode(t *testing.T) {
	r := newRig(DefaultConfig())
	for i := 0; i < 1000; i++ {
		if s := r.e.Poll(); s.Forced {
			t.Fatalf("watchdog fired in slow mode at poll %d", i)
		}
	}
	if r.e.watchdog != -128 {
		t.Errorf("watchdog = %d, want it to saturate at -128", r.e.watchdog)
	}

	// a compare-match brings it back before it can cause harm
	r.windowAt(0)
	if r.e.watchdog != WatchdogTop {
		t.Errorf("watchdog = %d after compare-match, want %d", r.e.watchdog, WatchdogTop)
	}
}

func TestEngine_forceSlow(t *testing.T) {
	r := newRig(DefaultConfig())
	r.windowAt(0)
	r.windowAt(800)
	r.windowAt(800 + 12_800)
	if r.e.Active() != Fast || r.e.fast.pendingLog2 != 5 {
		t.Fatalf("setup did not reach fast mode with exponent 5")
	}
	resets := r.events.resets

	r.e.ForceSlow()
	if r.e.Active() != Slow || !r.edge.enabled {
		t.Errorf("ForceSlow did not switch to slow mode")
	}
	if s := r.e.slow; !s.awaitingFirst || s.period != MaxPeriod {
		t.Errorf("slow counter = %+v", s)
	}
	if f := r.e.fast; !f.awaitingFirst || f.pendingLog2 != 1 {
		t.Errorf("fast counter = %+v", f)
	}
	if r.events.top != 1 || r.events.resets != resets+1 {
		t.Errorf("event counter top = %d, resets = %d", r.events.top, r.events.resets-resets)
	}
	if s := r.e.Snapshot(); s.Period != MaxPeriod || s.Mode != Slow {
		t.Errorf("snapshot = %+v", s)
	}
}

func TestEngine_forceSlowClearsExtendedCounter(t *testing.T) {
	r := newRig(DefaultConfig())
	r.windowAt(0)
	r.windowAt(1)
	r.windowAt(2001)
	r.e.OnCompare()
	if r.e.counterHigh != 1 {
		t.Fatalf("counterHigh = %d, want 1", r.e.counterHigh)
	}
	r.e.ForceSlow()
	if r.e.cmpHigh != 0 {
		t.Errorf("cmpHigh = %d, want 0", r.e.cmpHigh)
	}
	// the next compare-match starts a period again
	r.at(5000)
	r.e.OnCompare()
	if r.e.fast.awaitingFirst || r.e.fast.windowStart != 5000 {
		t.Errorf("compare-match after ForceSlow did not start a period")
	}
}

func TestMode_String(t *testing.T) {
	if Slow.String() != "slow" || Fast.String() != "fast" {
		t.Errorf("mode names = %s, %s", Slow, Fast)
	}
}
