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

package machine_x

import (
	"device/rp"
	"runtime/volatile"
	"unsafe"
)

// PWM slices are used here as plain counters. A slice counts either divided
// system clock cycles or edges on its B pin and wraps at TOP, raising the
// shared PWM_IRQ_WRAP interrupt.

// Single PWM slice. See rp.PWM_Type.
//
//goland:noinspection GoSnakeCaseUsage
type pwmSliceHW struct {
	CSR volatile.Register32
	DIV volatile.Register32
	CTR volatile.Register32
	CC  volatile.Register32
	TOP volatile.Register32
}

type PWMSlice struct {
	hw  *pwmSliceHW
	idx uint8
}

var (
	PWM0 = Slice(0)
	PWM1 = Slice(1)
)

func Slice(idx uint8) PWMSlice {
	if idx > 7 {
		panic("invalid PWM slice")
	}
	var slices = (*[8]pwmSliceHW)(unsafe.Pointer(rp.PWM))
	return PWMSlice{hw: &slices[idx], idx: idx}
}

// SetEN_CH enables or disables several slices at exactly the same time. The
// mask is built from PWMSlice.Mask.
//
//goland:noinspection GoSnakeCaseUsage
func SetEN_CH(mask uint32, on uint32) {
	if on != 0 {
		rp.PWM.EN.SetBits(mask)
	} else {
		rp.PWM.EN.ClearBits(mask)
	}
}

func (s PWMSlice) Mask() uint32 { return 1 << s.idx }

// SetDivMode selects what the slice counts, one of the
// rp.PWM_CH0_CSR_DIVMODE_* values.
func (s PWMSlice) SetDivMode(mode uint32) {
	csr := s.hw.CSR.Get() &^ rp.PWM_CH0_CSR_DIVMODE_Msk
	s.hw.CSR.Set(csr | mode<<rp.PWM_CH0_CSR_DIVMODE_Pos)
}

// SetClockDiv sets the 8.4 fractional clock divider. A divider below 1 is not
// allowed by the hardware and is raised to 1.
func (s PWMSlice) SetClockDiv(whole uint8, frac uint8) {
	w := u32max(uint32(whole), 1)
	s.hw.DIV.Set(w<<rp.PWM_CH0_DIV_INT_Pos | uint32(frac&0xf)<<rp.PWM_CH0_DIV_FRAC_Pos)
}

func (s PWMSlice) SetTop(top uint32) { s.hw.TOP.Set(top & 0xffff) }

func (s PWMSlice) Counter() uint32 { return s.hw.CTR.Get() }

func (s PWMSlice) SetCounter(ctr uint32) { s.hw.CTR.Set(ctr & 0xffff) }

// WrapPending reports whether the slice wrapped since the flag was last
// cleared. This is the raw flag, set whether or not the interrupt is enabled.
func (s PWMSlice) WrapPending() bool {
	return rp.PWM.INTR.Get()&s.Mask() != 0
}

func (s PWMSlice) ClearWrap() {
	// write 1 to clear
	rp.PWM.INTR.Set(s.Mask())
}

// SetWrapInterrupt routes the wrap flag of this slice to PWM_IRQ_WRAP.
func (s PWMSlice) SetWrapInterrupt(enable bool) {
	if enable {
		rp.PWM.INTE.SetBits(s.Mask())
	} else {
		rp.PWM.INTE.ClearBits(s.Mask())
	}
}

// WrapStatus returns the slices with a pending, enabled wrap interrupt.
func WrapStatus() uint32 {
	return rp.PWM.INTS.Get()
}

//go:inline
func u32max(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}
