/*
 * lc3sim - Keyboard input and display output peripherals.
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

import "sync"

// Input models the keyboard: a host-side producer (the console, or a
// remote controller's I/O frames) pushes bytes via Push; the interpreter
// consumes them through KBDR, which is a stateful read — each read
// removes the byte it returns.
type Input struct {
	mu      sync.Mutex
	pending []byte
	enabled bool
	flags   *InterruptFlags
}

func NewInput(flags *InterruptFlags) *Input {
	return &Input{flags: flags}
}

// Push queues a byte as if typed at the keyboard.
func (in *Input) Push(b byte) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.pending = append(in.pending, b)
	if in.flags != nil {
		in.flags.SetPending(SourceKeyboard)
	}
}

// Ready reports whether a byte is available (KBSR bit 15).
func (in *Input) Ready() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.pending) > 0
}

// SetInterruptEnable writes KBSR bit 14.
func (in *Input) SetInterruptEnable(enabled bool) {
	in.mu.Lock()
	in.enabled = enabled
	in.mu.Unlock()
	if in.flags != nil {
		in.flags.SetEnabled(SourceKeyboard, enabled)
	}
}

func (in *Input) InterruptEnable() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.enabled
}

// Read consumes and returns the oldest pending byte (the KBDR stateful
// read). Returns ok=false if nothing is pending.
func (in *Input) Read() (b byte, ok bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if len(in.pending) == 0 {
		return 0, false
	}
	b = in.pending[0]
	in.pending = in.pending[1:]
	if len(in.pending) == 0 && in.flags != nil {
		in.flags.ClearPending(SourceKeyboard)
	}
	return b, true
}

func (in *Input) Reset() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.pending = nil
	in.enabled = false
}

// Output models the display: the interpreter writes bytes through DDR,
// which Output buffers for a host-side consumer (the console, or a
// remote controller's I/O frames) to drain via Take.
type Output struct {
	mu      sync.Mutex
	buf     []byte
	ready   bool
	enabled bool
	flags   *InterruptFlags
}

func NewOutput(flags *InterruptFlags) *Output {
	return &Output{ready: true, flags: flags}
}

// Ready reports DSR bit 15: whether the display can accept another byte.
// A freshly reset/constructed display is always ready; this simulator
// never models output backpressure, so it stays true.
func (o *Output) Ready() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ready
}

func (o *Output) SetInterruptEnable(enabled bool) {
	o.mu.Lock()
	o.enabled = enabled
	o.mu.Unlock()
	if o.flags != nil {
		o.flags.SetEnabled(SourceDisplay, enabled)
	}
}

func (o *Output) InterruptEnable() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.enabled
}

// Write appends b to the output buffer (a DDR write).
func (o *Output) Write(b byte) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.buf = append(o.buf, b)
}

// Take drains and returns everything written to the display since the
// last Take call.
func (o *Output) Take() []byte {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := o.buf
	o.buf = nil
	return out
}

func (o *Output) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.buf = nil
	o.ready = true
	o.enabled = false
}
