//go:build rp2040

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

package main

import (
	"fmt"
	"time"

	"freqcount/src/counter"
	"freqcount/src/pico"
)

func main() {
	engine, display, err := pico.Setup()
	if err != nil {
		panic("failed setup: " + err.Error())
	}
	fmt.Printf("setup complete, tick = %d cycles\n", counter.CyclesPerTick)

	mode := counter.Slow
	n := uint8(0)
	for {
		time.Sleep(pico.PollInterval)

		// latest completed period of the active counter
		r := engine.Poll()
		if r.Forced {
			fmt.Printf("no fast mode interrupts for %d polls\n", counter.WatchdogTop+1)
		}
		if r.Mode != mode || r.Log2Events != n {
			fmt.Printf("mode %s n=%d\n", r.Mode, r.Log2Events)
			mode, n = r.Mode, r.Log2Events
		}

		display.ShowMeasurement(r.Log2Events, uint32(r.Period))
	}
}
