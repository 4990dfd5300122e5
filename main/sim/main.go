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

// sim: runs the frequency counter on a simulated board.
//
// A scenario script sets the input frequency, advances simulated time and
// checks what the display shows. Every line written to the display is printed
// with the simulated time at which it appeared.
//
// Examples:
//
//	# watch a 1kHz signal for two seconds
//	printf 'freq 1000\nrun 2s\n' | ./sim
//
//	# check a scenario, printing mode changes as they happen
//	./sim -v -script scenarios/watchdog.txt
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"freqcount/src/counter"
	"freqcount/src/sim"
)

func main() {
	cpu := flag.Uint64("cpu", sim.DefaultConfig().CPUFrequency, "Simulated cpu clock in Hz")
	script := flag.String("script", "-", "Scenario file, - for stdin")
	verbose := flag.Bool("v", false, "Print mode changes")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Runs a frequency counter scenario on a simulated board\n\n")
		fmt.Fprintf(os.Stderr, "Scenario commands:\n")
		fmt.Fprintf(os.Stderr, "  freq <hz>        - set the input frequency, 0 for no signal\n")
		fmt.Fprintf(os.Stderr, "  run <duration>   - advance simulated time, e.g. 1.5s\n")
		fmt.Fprintf(os.Stderr, "  expect <line>    - check the display\n")
		fmt.Fprintf(os.Stderr, "  mode <slow|fast> - check the counting mode\n\n")
		fmt.Fprintf(os.Stderr, "Input edges fall on whole cpu cycles, so the period of the input is\n")
		fmt.Fprintf(os.Stderr, "rounded to the nearest cycle. With -v the simulated frequency is printed.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *cpu < counter.CyclesPerTick {
		fmt.Fprintf(os.Stderr, "Error: cpu clock must be at least %d Hz\n", counter.CyclesPerTick)
		os.Exit(1)
	}

	if err := run(*cpu, *script, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cpu uint64, script string, verbose bool) error {
	var in io.Reader = os.Stdin
	if script != "-" {
		f, err := os.Open(script)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	scenario, err := sim.ParseScenario(in)
	if err != nil {
		return fmt.Errorf("%s: %w", script, err)
	}

	cfg := sim.DefaultConfig()
	cfg.CPUFrequency = cpu

	var m *sim.Machine
	m = sim.New(cfg, sim.NewWriterSink(os.Stdout, func() time.Duration { return m.Elapsed() }))
	if verbose {
		mode := counter.Slow
		n := uint8(0)
		m.OnFrequency = func(requested, simulated float64) {
			fmt.Printf("%9.3fs  freq %g Hz simulated as %g Hz\n", m.Elapsed().Seconds(), requested, simulated)
		}
		m.OnPoll = func(r counter.Reading) {
			if r.Forced {
				fmt.Printf("%9.3fs  watchdog forced slow mode\n", m.Elapsed().Seconds())
			}
			if r.Mode != mode || r.Log2Events != n {
				fmt.Printf("%9.3fs  mode %s n=%d\n", m.Elapsed().Seconds(), r.Mode, r.Log2Events)
				mode, n = r.Mode, r.Log2Events
			}
		}
	}

	if err := scenario.Run(m); err != nil {
		return fmt.Errorf("%s: %w", script, err)
	}
	return nil
}
