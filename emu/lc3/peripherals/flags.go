/*
 * lc3sim - Peripheral interrupt flags.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package peripherals

import "sync/atomic"

// InterruptSource names one interrupt-capable signal the interpreter
// arbitrates between, in fixed priority order (highest first).
type InterruptSource int

const (
	SourceKeyboard InterruptSource = iota
	SourceDisplay
	SourceGpioA0
	SourceGpioA1
	SourceGpioA2
	SourceGpioA3
	SourceGpioA4
	SourceGpioA5
	SourceGpioA6
	SourceGpioA7
	SourceTimer0
	SourceTimer1
	NumSources
)

// InterruptFlags holds one pending/enabled pair of atomic booleans per
// InterruptSource. Peripheral implementations set Pending from whatever
// goroutine simulates a pin edge or a timer firing; the interpreter reads
// and clears them from the step loop. Every access goes through
// sync/atomic so the two sides never race.
type InterruptFlags struct {
	pending [NumSources]atomic.Bool
	enabled [NumSources]atomic.Bool
}

// NewInterruptFlags returns a flag set with everything disabled and clear.
func NewInterruptFlags() *InterruptFlags {
	return &InterruptFlags{}
}

func (f *InterruptFlags) SetPending(src InterruptSource)   { f.pending[src].Store(true) }
func (f *InterruptFlags) ClearPending(src InterruptSource) { f.pending[src].Store(false) }
func (f *InterruptFlags) Pending(src InterruptSource) bool { return f.pending[src].Load() }

func (f *InterruptFlags) SetEnabled(src InterruptSource, enabled bool) {
	f.enabled[src].Store(enabled)
}
func (f *InterruptFlags) Enabled(src InterruptSource) bool { return f.enabled[src].Load() }

// Take reports whether src is both enabled and pending, and if so clears
// the pending flag (consuming it) before returning true.
func (f *InterruptFlags) Take(src InterruptSource) bool {
	if f.enabled[src].Load() && f.pending[src].Load() {
		f.pending[src].Store(false)
		return true
	}
	return false
}

// Reset clears every pending flag but leaves enable bits untouched,
// mirroring peripheral register reset behavior (interrupt-enable bits
// live in the peripheral, not in a reset-to-default register image).
func (f *InterruptFlags) Reset() {
	for i := range f.pending {
		f.pending[i].Store(false)
	}
}
