/*
 * lc3sim - Debugger call-stack shadow.
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

package cpu

// ProcessorMode records whether a call-stack frame was entered from user
// or supervisor mode.
type ProcessorMode uint8

const (
	ModeUser ProcessorMode = iota
	ModeSupervisor
)

// CallStackDepth is the fixed size of the stored window.
const CallStackDepth = 10

type callFrame struct {
	addr Word
	mode ProcessorMode
	set  bool
}

// CallStack is a bounded ring of (address, mode) frames kept purely for
// debugger introspection, separate from the machine's own memory stack.
// depth tracks logical nesting independent of whether the ring still has
// room for it: push always increments depth, but only inserts a frame
// while depth < CallStackDepth; pop always decrements depth (saturating
// at 0) and only clears a slot while the new depth is still in range.
// The stored window therefore holds the outermost N frames; frames
// pushed while depth is already N or more are counted in depth but not
// stored.
type CallStack struct {
	frames [CallStackDepth]callFrame
	depth  int
}

// Push records entering a call at addr in mode.
func (c *CallStack) Push(addr Word, mode ProcessorMode) {
	if c.depth < CallStackDepth {
		c.frames[c.depth] = callFrame{addr: addr, mode: mode, set: true}
	}
	c.depth++
}

// Pop records returning from a call. Saturates at depth 0.
func (c *CallStack) Pop() {
	if c.depth == 0 {
		return
	}
	c.depth--
	if c.depth < CallStackDepth {
		c.frames[c.depth] = callFrame{}
	}
}

// Depth returns the logical nesting depth, which may exceed the stored
// window's capacity.
func (c *CallStack) Depth() int {
	return c.depth
}

// Frames returns the stored window, oldest first, as (addr, mode, ok)
// triples; ok is false for a slot beyond the current logical depth.
func (c *CallStack) Frames() [CallStackDepth]struct {
	Addr Word
	Mode ProcessorMode
	OK   bool
} {
	var out [CallStackDepth]struct {
		Addr Word
		Mode ProcessorMode
		OK   bool
	}
	for i, f := range c.frames {
		out[i] = struct {
			Addr Word
			Mode ProcessorMode
			OK   bool
		}{Addr: f.addr, Mode: f.mode, OK: f.set}
	}
	return out
}

// Reset clears the stack and its depth counter.
func (c *CallStack) Reset() {
	c.frames = [CallStackDepth]callFrame{}
	c.depth = 0
}
