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
	"fmt"
	"io"
	"time"
)

// WriterSink is a display that prints every line it is sent, stamped with
// the simulated time.
type WriterSink struct {
	w   io.Writer
	now func() time.Duration
}

func NewWriterSink(w io.Writer, now func() time.Duration) *WriterSink {
	return &WriterSink{w: w, now: now}
}

func (s *WriterSink) Init() error { return nil }
func (s *WriterSink) Home()       {}

func (s *WriterSink) WriteLine(line string) {
	fmt.Fprintf(s.w, "%9.3fs  [%s]\n", s.now().Seconds(), line)
}
