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

// Tick is a count of timer ticks. A tick is CyclesPerTick cpu cycles. Ticks
// wrap around at 2^32 and periods are computed by subtraction, so a period is
// valid as long as it is shorter than the wrap time.
type Tick uint32

// MaxPeriod marks a counter that has not finished a measurement yet.
const MaxPeriod = Tick(0xffff_ffff)

// Timer is the narrow free-running hardware half of the tick clock.
type Timer interface {
	// Count returns the current hardware count.
	Count() uint32
	// OverflowPending reports whether the hardware has wrapped but the
	// overflow interrupt has not been serviced yet.
	OverflowPending() bool
	// ClearOverflow acknowledges the overflow.
	ClearOverflow()
}

/*
Clock extends a narrow hardware timer into a 32-bit tick count by counting
overflows in software.

Reading the clock is a reduction of two observations, the software overflow
count and the hardware count, that are not taken at the same instant. The
hardware may wrap after we read the overflow count but before the overflow
interrupt has been serviced. In that case the hardware count is small and the
pending flag is set, so the overflow has logically happened and we add it in
ourselves. If the hardware count is still at the top, the flag must belong to
the wrap that the interrupt routine is about to handle after this one and we
leave the overflow count alone.

Now must be called with interrupts disabled.
*/
type Clock struct {
	timer     Timer
	bits      uint8
	overflows uint32
}

func NewClock(timer Timer, bits uint8) *Clock {
	return &Clock{timer: timer, bits: bits}
}

// Now returns the current tick count. Interrupts MUST be disabled.
func (c *Clock) Now() Tick {
	m := c.overflows
	t := c.timer.Count()
	return reduceTicks(c.bits, m, t, c.timer.OverflowPending())
}

// OnOverflow is the body of the timer overflow interrupt.
func (c *Clock) OnOverflow() {
	c.timer.ClearOverflow()
	c.overflows++
}

func reduceTicks(bits uint8, overflows uint32, count uint32, pending bool) Tick {
	top := uint32(1)<<bits - 1
	count &= top
	if pending && count < top {
		overflows++
	}
	return Tick(overflows<<bits | count)
}
