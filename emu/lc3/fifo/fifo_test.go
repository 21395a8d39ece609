package fifo

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

import (
	"testing"
)

func TestPushPop(t *testing.T) {
	f := New(4)
	if !f.IsEmpty() {
		t.Errorf("new Fifo not empty")
	}
	for i, b := range []byte{1, 2, 3, 4} {
		if !f.Push(b) {
			t.Errorf("push %d failed unexpectedly", i)
		}
	}
	if !f.IsFull() {
		t.Errorf("Fifo not full after filling capacity")
	}
	if f.Push(5) {
		t.Errorf("push into full Fifo should fail")
	}
	for _, want := range []byte{1, 2, 3, 4} {
		got, ok := f.Pop()
		if !ok {
			t.Fatalf("pop failed unexpectedly")
		}
		if got != want {
			t.Errorf("pop got %d want %d", got, want)
		}
	}
	if _, ok := f.Pop(); ok {
		t.Errorf("pop from empty Fifo should fail")
	}
}

func TestWrapAround(t *testing.T) {
	f := New(3)
	f.Push(1)
	f.Push(2)
	f.Pop()
	f.Push(3)
	f.Push(4)
	if f.Len() != 3 {
		t.Fatalf("Len got %d want 3", f.Len())
	}
	want := []byte{2, 3, 4}
	got := f.Bytes()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Bytes()[%d] got %d want %d", i, got[i], want[i])
		}
	}
}

func TestReset(t *testing.T) {
	f := New(2)
	f.Push(9)
	f.Reset()
	if !f.IsEmpty() || f.Len() != 0 {
		t.Errorf("Reset did not empty the Fifo")
	}
	if f.Remaining() != 2 {
		t.Errorf("Remaining after Reset got %d want 2", f.Remaining())
	}
}

func TestSwap(t *testing.T) {
	f := New(4)
	f.Push(1)
	f.Push(2)
	out := f.Swap()
	if len(out) != 2 || out[0] != 1 || out[1] != 2 {
		t.Errorf("Swap returned %v", out)
	}
	if !f.IsEmpty() {
		t.Errorf("Swap should leave the Fifo empty")
	}
}

func TestDefaultCapacity(t *testing.T) {
	f := New(0)
	if f.Capacity() != DefaultCapacity {
		t.Errorf("New(0) capacity got %d want %d", f.Capacity(), DefaultCapacity)
	}
}
