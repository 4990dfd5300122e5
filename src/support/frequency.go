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

package support

import "math"

// CPUFrequency and CyclesPerTick fix the tick rate of the counter.
const (
	CPUFrequency  = 125_000_000
	CyclesPerTick = 64

	// DeciHertzPerTick is ten times the tick frequency. A period of one
	// tick for one event is this many dHz.
	DeciHertzPerTick = 10 * CPUFrequency / CyclesPerTick
)

var defaultReciprocal = NewReciprocal(DeciHertzPerTick)

// FreqDHz returns the frequency in dHz (tenths of Hz) of 2^n events that took
// ticks ticks using the reference clock. It returns 0 if ticks is 0, which
// callers show as "no measurement".
func FreqDHz(n uint8, ticks uint32) uint32 {
	return defaultReciprocal.DeciHertz(n, ticks)
}

/*
Reciprocal converts (log2 events, ticks) into a frequency in dHz without
floating point. The frequency expressed in ticks is 2^n / ticks. Multiplying by
the tick frequency times ten gives dHz:

	(scale << n) / ticks

To round to the nearest dHz, we first add ticks/2 before the division.

For small n, the shifted scale plus the rounding term fits in 32 bits and we
use 32-bit arithmetic, which is much faster on a microcontroller without a
64-bit divider. From split on up we do the arithmetic in 64 bits.
*/
type Reciprocal struct {
	scale uint32
	split uint8
}

func NewReciprocal(scale uint32) Reciprocal {
	return Reciprocal{scale: scale, split: narrowSplit(scale)}
}

// narrowSplit finds the smallest n for which scale<<n could overflow 32 bits
// once ticks/2 (< 2^31) is added.
func narrowSplit(scale uint32) uint8 {
	n := uint8(0)
	for n < 32 && uint64(scale)<<n < 1<<31 {
		n++
	}
	return n
}

// Split returns the exponent from which the 64-bit path is used.
func (r Reciprocal) Split() uint8 {
	return r.split
}

// DeciHertz computes round((scale << n) / ticks). Results too big for 32 bits
// saturate.
func (r Reciprocal) DeciHertz(n uint8, ticks uint32) uint32 {
	if ticks == 0 {
		return 0
	}
	if n < r.split {
		return ((r.scale << n) + ticks/2) / ticks
	}
	events := uint64(r.scale) << n
	f := (events + uint64(ticks/2)) / uint64(ticks)
	if f > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(f)
}
