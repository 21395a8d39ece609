/*
 * lc3sim - Fixed-capacity byte ring buffer.
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

// Package fifo implements the fixed-capacity byte ring buffer the
// transport layer accumulates incoming frame bytes into: a bounded
// alternative to an ever-growing buffer, so a runaway stream without a
// sentinel byte cannot exhaust memory.
package fifo

// DefaultCapacity matches the byte budget of a single framed RPC message
// plus its COBS overhead.
const DefaultCapacity = 256

// Fifo is a fixed-capacity ring of bytes. The zero value is not usable;
// construct with New.
type Fifo struct {
	data          []byte
	start, length int
}

// New returns an empty Fifo with room for capacity bytes.
func New(capacity int) *Fifo {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Fifo{data: make([]byte, capacity)}
}

// Capacity is the maximum number of bytes the Fifo can hold.
func (f *Fifo) Capacity() int { return len(f.data) }

// Len is the number of bytes currently buffered.
func (f *Fifo) Len() int { return f.length }

// IsEmpty reports whether the Fifo holds no bytes.
func (f *Fifo) IsEmpty() bool { return f.length == 0 }

// IsFull reports whether the Fifo has no room for another byte.
func (f *Fifo) IsFull() bool { return f.length == len(f.data) }

// Remaining is the number of bytes that can still be pushed.
func (f *Fifo) Remaining() int { return len(f.data) - f.length }

// Push appends b, reporting false if the Fifo is already full.
func (f *Fifo) Push(b byte) bool {
	if f.IsFull() {
		return false
	}
	end := (f.start + f.length) % len(f.data)
	f.data[end] = b
	f.length++
	return true
}

// Pop removes and returns the oldest byte, if any.
func (f *Fifo) Pop() (byte, bool) {
	if f.IsEmpty() {
		return 0, false
	}
	b := f.data[f.start]
	f.start = (f.start + 1) % len(f.data)
	f.length--
	return b, true
}

// Bytes copies out the buffered bytes, oldest first, without consuming
// them.
func (f *Fifo) Bytes() []byte {
	out := make([]byte, f.length)
	for i := 0; i < f.length; i++ {
		out[i] = f.data[(f.start+i)%len(f.data)]
	}
	return out
}

// Reset empties the Fifo in place.
func (f *Fifo) Reset() {
	f.start = 0
	f.length = 0
}

// Swap returns the currently buffered bytes and resets the Fifo to
// empty, letting the framing layer hand off one whole message's worth
// of bytes without an intervening copy-then-clear race.
func (f *Fifo) Swap() []byte {
	out := f.Bytes()
	f.Reset()
	return out
}
