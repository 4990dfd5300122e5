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

// Reference configuration. A tick is 64 cpu cycles; with a 125MHz clock that
// is 0.512µs, so MinPeriod is about 5ms.
const (
	CyclesPerTick   = 64
	TimerBits       = 16
	CounterBits     = 16
	MinPeriod       = Tick(10_000)
	EmergencyPeriod = Tick(100)
	WatchdogTop     = 4
	MaxLog2Events   = 20
)

type Config struct {
	TimerBits   uint8 // width of the hardware tick timer
	CounterBits uint8 // width of the hardware event counter

	// MinPeriod is the shortest period we aim for. Periods longer than
	// 3*MinPeriod make us count fewer events.
	MinPeriod Tick

	// EmergencyPeriod is the slow mode period below which the edge interrupt
	// hands over to fast mode on its own.
	EmergencyPeriod Tick

	// WatchdogTop is the number of polls without a compare-match interrupt
	// that fast mode survives.
	WatchdogTop int8

	MaxLog2Events uint8
}

func DefaultConfig() Config {
	return Config{
		TimerBits:       TimerBits,
		CounterBits:     CounterBits,
		MinPeriod:       MinPeriod,
		EmergencyPeriod: EmergencyPeriod,
		WatchdogTop:     WatchdogTop,
		MaxLog2Events:   MaxLog2Events,
	}
}

func (c Config) maxPeriod() Tick {
	return 3 * c.MinPeriod
}
