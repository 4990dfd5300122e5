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

// Sink is a one line text display. It owns all the details of talking to
// the actual hardware.
type Sink interface {
	Init() error
	// Home moves the write position to the start of the line.
	Home()
	WriteLine(line string)
}

// LineWidth is the number of columns in a display line. The last two
// columns hold "Hz" and the one before holds the unit prefix.
const LineWidth = 8

// Placeholder is shown when there is no measurement.
const Placeholder = "---"

// Band is a range of frequencies (in dHz) that are shown the same way.
type Band struct {
	Min, Max uint32 // inclusive bounds for this band
	Point    int8   // column of the decimal point
	LSD      int8   // column of the least significant digit
	Divisor  uint32 // dHz per unit of the least significant digit
	Prefix   byte   // unit prefix
}

// Bands overlap a little so that a frequency hovering at a boundary does
// not make the display flip between two formats.
var Bands = []Band{
	// columns:                                             01234567
	{0, 9_999, 4, 5, 1, ' '},                            //  999.9Hz
	{9_900, 99_999, 1, 4, 10, 'k'},                      // 9.999kHz
	{99_000, 999_999, 2, 4, 100, 'k'},                   // 99.99kHz
	{990_000, 9_999_999, 3, 4, 1000, 'k'},               // 999.9kHz
	{9_900_000, 99_999_999, 1, 4, 10_000, 'M'},          // 9.999MHz
	{99_000_000, 999_999_999, 2, 4, 100_000, 'M'},       // 99.99MHz
	{990_000_000, math.MaxUint32, 3, 4, 1_000_000, 'M'}, // 999.9MHz
}

// SelectBand returns the band to use for freq, starting from band cur. We
// expect the frequency to change slowly compared to the display rate, so we
// step from the current band rather than search the table.
func SelectBand(bands []Band, freq uint32, cur int) int {
	for cur < len(bands)-1 && freq > bands[cur].Max {
		cur++
	}
	for cur > 0 && freq < bands[cur].Min {
		cur--
	}
	return cur
}

// Render formats freq (in dHz) as a display line using band b.
func Render(freq uint32, b Band) string {
	var line [LineWidth]byte
	for i := range line {
		line[i] = ' '
	}
	line[LineWidth-3] = b.Prefix
	line[LineWidth-2] = 'H'
	line[LineWidth-1] = 'z'

	pos := b.LSD
	f := freq / b.Divisor

	// digits to the right of the decimal point
	for pos > b.Point {
		line[pos] = byte(f%10) + '0'
		f /= 10
		pos--
	}

	// the decimal point and one digit to the left of it
	line[pos] = '.'
	pos--
	if pos >= 0 {
		line[pos] = byte(f%10) + '0'
		f /= 10
		pos--
	}

	// the rest of the integer part, leaving spaces in front
	for f != 0 && pos >= 0 {
		line[pos] = byte(f%10) + '0'
		f /= 10
		pos--
	}
	return string(line[:])
}

func pad(s string) string {
	for len(s) < LineWidth {
		s += " "
	}
	return s
}

// Display shows measurements on a Sink. The display is only written when the
// text actually changes.
type Display struct {
	sink  Sink
	calc  Reciprocal
	bands []Band
	band  int
	freq  uint32 // last frequency shown
	line  string
	shown bool
}

func NewDisplay(sink Sink, calc Reciprocal, bands []Band) *Display {
	return &Display{sink: sink, calc: calc, bands: bands}
}

// ShowMeasurement displays the frequency of 2^n events in ticks ticks.
func (d *Display) ShowMeasurement(n uint8, ticks uint32) {
	d.Show(d.calc.DeciHertz(n, ticks))
}

// Show displays a frequency in dHz. Zero means no measurement.
func (d *Display) Show(freq uint32) {
	if d.shown && freq == d.freq {
		return
	}
	d.freq = freq
	if freq == 0 {
		d.showLine(pad(Placeholder))
		return
	}
	d.band = SelectBand(d.bands, freq, d.band)
	d.showLine(Render(freq, d.bands[d.band]))
}

func (d *Display) showLine(line string) {
	if d.shown && line == d.line {
		return // no change
	}
	d.sink.Home()
	d.sink.WriteLine(line)
	d.line = line
	d.shown = true
}

// Line returns the text currently on the display.
func (d *Display) Line() string {
	return d.line
}

// Band returns the index of the current band.
func (d *Display) Band() int {
	return d.band
}
