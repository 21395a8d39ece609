/*
 * lc3sim - Fixed-capacity breakpoint and watchpoint tables.
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

package control

import "errors"

// ErrTableFull is returned by Set/Add when a fixed-capacity table has no
// free slot.
var ErrTableFull = errors.New("table is full")

// ErrNoSuchIndex is returned by Unset when idx names an empty slot.
var ErrNoSuchIndex = errors.New("no entry at that index")

type breakpointTable struct {
	slots [MaxBreakpoints]struct {
		addr Word
		set  bool
	}
}

func (t *breakpointTable) add(addr Word) (int, error) {
	for i := range t.slots {
		if !t.slots[i].set {
			t.slots[i].addr = addr
			t.slots[i].set = true
			return i, nil
		}
	}
	return 0, ErrTableFull
}

func (t *breakpointTable) remove(idx int) error {
	if idx < 0 || idx >= len(t.slots) || !t.slots[idx].set {
		return ErrNoSuchIndex
	}
	t.slots[idx] = struct {
		addr Word
		set  bool
	}{}
	return nil
}

func (t *breakpointTable) list() [MaxBreakpoints]*Word {
	var out [MaxBreakpoints]*Word
	for i, s := range t.slots {
		if s.set {
			v := s.addr
			out[i] = &v
		}
	}
	return out
}

func (t *breakpointTable) hit(addr Word) bool {
	for _, s := range t.slots {
		if s.set && s.addr == addr {
			return true
		}
	}
	return false
}

func (t *breakpointTable) reset() {
	t.slots = [MaxBreakpoints]struct {
		addr Word
		set  bool
	}{}
}

type watchpointTable struct {
	slots [MaxMemoryWatchpoints]struct {
		addr Word
		set  bool
	}
}

func (t *watchpointTable) add(addr Word) (int, error) {
	for i := range t.slots {
		if !t.slots[i].set {
			t.slots[i].addr = addr
			t.slots[i].set = true
			return i, nil
		}
	}
	return 0, ErrTableFull
}

func (t *watchpointTable) remove(idx int) error {
	if idx < 0 || idx >= len(t.slots) || !t.slots[idx].set {
		return ErrNoSuchIndex
	}
	t.slots[idx] = struct {
		addr Word
		set  bool
	}{}
	return nil
}

func (t *watchpointTable) list(read func(Word) Word) [MaxMemoryWatchpoints]*struct {
	Addr Word
	Data Word
} {
	var out [MaxMemoryWatchpoints]*struct {
		Addr Word
		Data Word
	}
	for i, s := range t.slots {
		if s.set {
			out[i] = &struct {
				Addr Word
				Data Word
			}{Addr: s.addr, Data: read(s.addr)}
		}
	}
	return out
}

// hit reports whether a write to addr landed on a configured watchpoint.
func (t *watchpointTable) hit(addr Word) bool {
	for _, s := range t.slots {
		if s.set && s.addr == addr {
			return true
		}
	}
	return false
}

func (t *watchpointTable) reset() {
	t.slots = [MaxMemoryWatchpoints]struct {
		addr Word
		set  bool
	}{}
}
