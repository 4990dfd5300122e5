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

func Test_reduceTicks(t *testing.T) {
	tests := []struct {
		name      string
		bits      uint8
		overflows uint32
		count     uint32
		pending   bool
		want      Tick
	}{
		{"plain", 16, 3, 0x1234, false, 3<<16 | 0x1234},
		{"wrapped, interrupt not serviced", 16, 3, 5, true, 4<<16 | 5},
		{"pending flag at top", 16, 3, 0xffff, true, 3<<16 | 0xffff},
		{"just below top", 16, 3, 0xfffe, true, 4<<16 | 0xfffe},
		{"eight bit timer", 8, 0x10, 0x20, false, 0x1020},
		{"eight bit timer, pending", 8, 0x10, 0x00, true, 0x1100},
		{"eight bit timer, at top", 8, 0x10, 0xff, true, 0x10ff},
		{"wrap of the tick count", 16, 0xffff, 1, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reduceTicks(tt.bits, tt.overflows, tt.count, tt.pending)
			if got != tt.want {
				t.Errorf("reduceTicks() = %#x, want %#x", got, tt.want)
			}
		})
	}
}

func TestClock_overflow(t *testing.T) {
	timer := &fakeTimer{}
	c := NewClock(timer, 16)

	timer.count = 0xfff0
	t0 := c.Now()

	// hardware wraps, interrupt still pending
	timer.count = 0x0010
	timer.pending = true
	t1 := c.Now()
	if t1-t0 != 0x20 {
		t.Errorf("elapsed before overflow interrupt = %#x, want 0x20", t1-t0)
	}

	// interrupt serviced, same reading
	c.OnOverflow()
	if timer.pending || timer.cleared != 1 {
		t.Errorf("overflow not acknowledged")
	}
	if t2 := c.Now(); t2 != t1 {
		t.Errorf("Now() = %#x after overflow interrupt, want %#x", t2, t1)
	}
}

func TestClock_monotonic(t *testing.T) {
	timer := &fakeTimer{}
	c := NewClock(timer, 8)
	last := c.Now()
	for i := 0; i < 2000; i++ {
		timer.count = (timer.count + 7) & 0xff
		if timer.count < 7 {
			timer.pending = true
		}
		now := c.Now()
		if now < last {
			t.Fatalf("step %d: clock went backwards, %d < %d", i, now, last)
		}
		last = now
		// the overflow interrupt only gets to run every third step
		if timer.pending && i%3 == 0 {
			c.OnOverflow()
		}
	}
}
