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
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const watchdogScript = `
# a fast signal that suddenly slows down
freq 1000
run 1s
expect 1.000kHz
mode fast

freq 1          # the watchdog has to notice
run 1.5s
expect "---"
mode slow
run 1s
expect "   1.0Hz"
`

func TestScenario_run(t *testing.T) {
	s, err := ParseScenario(strings.NewReader(watchdogScript))
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Steps) != 10 {
		t.Fatalf("parsed %d steps, want 10", len(s.Steps))
	}
	if s.Steps[0].Line != 3 || s.Steps[0].Command != "freq" {
		t.Errorf("first step %+v", s.Steps[0])
	}

	m := New(DefaultConfig(), &lines{})
	if err := s.Run(m); err != nil {
		t.Fatal(err)
	}
	if got := m.Elapsed(); got != 3500*time.Millisecond {
		t.Errorf("elapsed %v", got)
	}
}

func TestScenario_expectationFails(t *testing.T) {
	s, err := ParseScenario(strings.NewReader("freq 1000\nrun 1s\nexpect 2.000kHz\n"))
	if err != nil {
		t.Fatal(err)
	}
	err = s.Run(New(DefaultConfig(), &lines{}))
	if !errors.Is(err, ErrExpectation) {
		t.Fatalf("got %v, want expectation failure", err)
	}
	if !strings.HasPrefix(err.Error(), "line 3: ") {
		t.Errorf("error %q does not name the line", err)
	}
}

func TestScenario_modeFails(t *testing.T) {
	s, err := ParseScenario(strings.NewReader("mode fast\n"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Run(New(DefaultConfig(), &lines{})); !errors.Is(err, ErrExpectation) {
		t.Errorf("got %v, want expectation failure", err)
	}
}

func TestParseScenario_errors(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   error
	}{
		{"unknown", "jump 3", ErrUnknownCommand},
		{"unknownNoArgs", "halt", ErrUnknownCommand},
		{"missingArg", "run", ErrArguments},
		{"extraArg", "freq 1 2", ErrArguments},
		{"badFreq", "freq fast", ErrArguments},
		{"negativeFreq", "freq -3", ErrArguments},
		{"badDuration", "run 3", ErrArguments},
		{"zeroDuration", "run 0s", ErrArguments},
		{"badMode", "mode medium", ErrArguments},
		{"unterminatedQuote", `expect "1.0Hz`, ErrArguments},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario(strings.NewReader("# header\n" + tt.script))
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			if !strings.HasPrefix(err.Error(), "line 2: ") {
				t.Errorf("error %q does not name the line", err)
			}
		})
	}
}

func TestScenario_files(t *testing.T) {
	files, err := filepath.Glob("../../scenarios/*.txt")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no scenarios found")
	}
	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			f, err := os.Open(file)
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()
			s, err := ParseScenario(f)
			if err != nil {
				t.Fatal(err)
			}
			if err := s.Run(New(DefaultConfig(), &lines{})); err != nil {
				t.Error(err)
			}
		})
	}
}
