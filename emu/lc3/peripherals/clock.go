/*
 * lc3sim - Clock peripheral.
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

import (
	"sync"
	"time"
)

// Clock models CLKR: reading it returns milliseconds elapsed since a
// settable base instant; writing it rebases that instant so the LC-3
// program can set its own epoch.
type Clock struct {
	mu   sync.Mutex
	base time.Time
	now  func() time.Time
}

// NewClock returns a Clock whose epoch is the current wall-clock time.
func NewClock() *Clock {
	return &Clock{base: time.Now(), now: time.Now}
}

// Milliseconds returns elapsed milliseconds since the last SetBase call
// (or construction), truncated to fit the 16-bit CLKR register.
func (c *Clock) Milliseconds() uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return uint16(c.now().Sub(c.base).Milliseconds())
}

// SetBase rebases the elapsed-time counter to the current instant,
// i.e. a write of any value to CLKR resets the elapsed-ms counter to 0.
func (c *Clock) SetBase() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.base = c.now()
}

func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.base = c.now()
}
