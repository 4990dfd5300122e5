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

package sim

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"

	"freqcount/src/counter"
)

/*
A Scenario is a script for the simulator, one command per line:

	freq 1000        # input signal in Hz, 0 for none
	run 1.5s         # advance simulated time
	expect 1.000kHz  # check the display, trailing spaces don't matter
	mode fast        # check the active counting mode

Lines are split shell style so an expected line with spaces can be quoted.
*/
type Scenario struct {
	Steps []Step
}

type Step struct {
	Line    int
	Command string

	hz   float64
	d    time.Duration
	text string
	mode counter.Mode
}

func ParseScenario(r io.Reader) (*Scenario, error) {
	s := &Scenario{}
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		words, err := shlex.Split(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w: %v", line, ErrArguments, err)
		}
		if len(words) == 0 {
			continue
		}
		step, err := parseStep(words)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		step.Line = line
		s.Steps = append(s.Steps, step)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

func parseStep(words []string) (Step, error) {
	step := Step{Command: words[0]}
	args := words[1:]
	if len(args) != 1 {
		if step.Command == "freq" || step.Command == "run" || step.Command == "expect" || step.Command == "mode" {
			return step, fmt.Errorf("%w: %s takes one argument, got %d", ErrArguments, step.Command, len(args))
		}
		return step, fmt.Errorf("%w %q", ErrUnknownCommand, step.Command)
	}

	var err error
	switch step.Command {
	case "freq":
		step.hz, err = strconv.ParseFloat(args[0], 64)
		if err != nil || step.hz < 0 {
			return step, fmt.Errorf("%w: bad frequency %q", ErrArguments, args[0])
		}
	case "run":
		step.d, err = time.ParseDuration(args[0])
		if err != nil || step.d <= 0 {
			return step, fmt.Errorf("%w: bad duration %q", ErrArguments, args[0])
		}
	case "expect":
		step.text = args[0]
	case "mode":
		switch args[0] {
		case "slow":
			step.mode = counter.Slow
		case "fast":
			step.mode = counter.Fast
		default:
			return step, fmt.Errorf("%w: mode must be slow or fast, not %q", ErrArguments, args[0])
		}
	default:
		return step, fmt.Errorf("%w %q", ErrUnknownCommand, step.Command)
	}
	return step, nil
}

// Run executes the scenario on m and stops at the first failed expectation.
func (s *Scenario) Run(m *Machine) error {
	for _, step := range s.Steps {
		if err := step.run(m); err != nil {
			return fmt.Errorf("line %d: %w", step.Line, err)
		}
	}
	return nil
}

func (step Step) run(m *Machine) error {
	switch step.Command {
	case "freq":
		m.SetFrequency(step.hz)
	case "run":
		m.Run(step.d)
	case "expect":
		got := strings.TrimRight(m.Line(), " ")
		want := strings.TrimRight(step.text, " ")
		if got != want {
			return fmt.Errorf("%w at %v: display %q, want %q", ErrExpectation, m.Elapsed(), got, want)
		}
	case "mode":
		if got := m.Mode(); got != step.mode {
			return fmt.Errorf("%w at %v: mode %s, want %s", ErrExpectation, m.Elapsed(), got, step.mode)
		}
	}
	return nil
}
