/*
 * lc3sim - Control-layer breakpoint, watchpoint, and depth-condition ops.
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

// SetBreakpoint adds addr to the breakpoint table, returning its index.
func (m *Machine) SetBreakpoint(addr Word) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bp.add(addr)
}

// UnsetBreakpoint clears the breakpoint at idx.
func (m *Machine) UnsetBreakpoint(idx int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bp.remove(idx)
}

// GetBreakpoints lists the fixed-capacity breakpoint table.
func (m *Machine) GetBreakpoints() [MaxBreakpoints]*Word {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bp.list()
}

// GetMaxBreakpoints is the fixed capacity of the breakpoint table.
func (m *Machine) GetMaxBreakpoints() int { return MaxBreakpoints }

// SetMemoryWatchpoint adds addr to the watchpoint table, returning its
// index.
func (m *Machine) SetMemoryWatchpoint(addr Word) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wp.add(addr)
}

// UnsetMemoryWatchpoint clears the watchpoint at idx.
func (m *Machine) UnsetMemoryWatchpoint(idx int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wp.remove(idx)
}

// GetMemoryWatchpoints lists the fixed-capacity watchpoint table along
// with each address's current value.
func (m *Machine) GetMemoryWatchpoints() [MaxMemoryWatchpoints]*struct {
	Addr Word
	Data Word
} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wp.list(m.interp.PeekWord)
}

// GetMaxMemoryWatchpoints is the fixed capacity of the watchpoint table.
func (m *Machine) GetMaxMemoryWatchpoints() int { return MaxMemoryWatchpoints }

// SetDepthCondition arms a DepthReached event for the next time the
// call-stack shadow's logical depth equals target (e.g. "run until this
// subroutine returns").
func (m *Machine) SetDepthCondition(target int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.depthSet = true
	m.depthTarget = target
}

// ClearDepthCondition disarms the depth condition.
func (m *Machine) ClearDepthCondition() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.depthSet = false
}

// GetDepthCondition reports the currently armed depth target, if any.
func (m *Machine) GetDepthCondition() (target int, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.depthTarget, m.depthSet
}
