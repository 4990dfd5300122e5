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

import "errors"

// Scenario errors
var (
	// ErrUnknownCommand indicates a scenario line with an unknown command
	ErrUnknownCommand = errors.New("sim: unknown command")

	// ErrArguments indicates a command with missing or malformed arguments
	ErrArguments = errors.New("sim: bad arguments")

	// ErrExpectation indicates that the display or mode was not as expected
	ErrExpectation = errors.New("sim: expectation failed")
)
