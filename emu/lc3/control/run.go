/*
 * lc3sim - Run-until-event, single-step, pause, and the Tick driver.
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

import (
	"context"
	"errors"

	"github.com/go-lc3/lc3sim/emu/lc3/cpu"
)

// ErrAbandoned is returned by RunUntilEvent when its wait was cut short
// by a Pause or Reset rather than resolved with a real Event — distinct
// from a nil ctx.Err() so a caller never mistakes an abandoned wait for
// a successful one carrying a zero-value Event.
var ErrAbandoned = errors.New("run-until-event wait abandoned")

// RunUntilEvent arms the RunningUntilEvent state (if not already armed)
// and blocks until some Tick call resolves the current batch, the
// context is cancelled, or the interpreter is already halted. Any
// number of concurrent callers join the same batch and observe the same
// Event, per the shared-state design in the design notes.
func (m *Machine) RunUntilEvent(ctx context.Context) (Event, State, error) {
	m.mu.Lock()
	if m.interp.State() == cpu.StateHalted {
		m.runState = StateHalted
		m.mu.Unlock()
		return Event{Kind: EventHalted}, StateHalted, nil
	}
	m.runState = StateRunningUntilEvent
	waiter, err := m.batch.Join()
	m.mu.Unlock()
	if err != nil {
		return Event{}, StateRunningUntilEvent, err
	}

	ev, ok := waiter.Await(ctx)
	if !ok {
		return Event{}, m.GetState(), ErrAbandoned
	}
	return ev, m.GetState(), nil
}

// Step runs exactly one fetch/decode/execute cycle and reports whether
// it coincided with an event (e.g. the single-stepped instruction is
// itself at a breakpoint address, or halted the machine).
func (m *Machine) Step() (*Event, State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.interp.Step()
	ev := m.checkEventLocked()
	return ev, m.stateLocked()
}

// Pause stops the run-until-event driver. Any futures still joined to
// the current batch are abandoned (Batch.Reset), per the Cancellation
// contract: dropping a future leaves no awaiter, and the next pause or
// reset is what settles it, since a manual pause has no Event of its
// own to resolve waiters with.
func (m *Machine) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.runState == StateRunningUntilEvent {
		m.batch.Reset()
	}
	if m.interp.State() != cpu.StateHalted {
		m.runState = StatePaused
	}
}

// Tick drives up to maxSteps interpreter steps while the control layer
// is in RunningUntilEvent state, stopping early and resolving the batch
// the moment an event is produced. It is meant to be called repeatedly
// from the device loop between servicing RPC messages (see 4.I/4.G:
// the device interleaves device.step() and sim.tick()). It returns the
// event if one resolved this call, or nil if maxSteps elapsed with
// nothing to report.
func (m *Machine) Tick(maxSteps int) *Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.runState != StateRunningUntilEvent {
		return nil
	}

	for i := 0; i < maxSteps; i++ {
		m.interp.Step()
		if ev := m.checkEventLocked(); ev != nil {
			m.runState = StatePaused
			if ev.Kind == EventHalted {
				m.runState = StateHalted
			}
			m.batch.Resolve(*ev)
			return ev
		}
	}
	return nil
}

// checkEventLocked inspects interpreter state immediately after a step
// and reports the first applicable event, in priority order: halted,
// then the interrupt that was just serviced, then a hit breakpoint, a
// hit watchpoint, and finally a satisfied depth condition. Caller must
// hold m.mu.
func (m *Machine) checkEventLocked() *Event {
	if m.interp.State() == cpu.StateHalted {
		return &Event{Kind: EventHalted}
	}
	if m.interp.LastInterrupt {
		return &Event{Kind: EventInterrupted}
	}
	if m.bp.hit(m.interp.PC) {
		return &Event{Kind: EventBreakpoint, Addr: m.interp.PC}
	}
	if w := m.interp.LastWrite; w.Set && m.wp.hit(w.Addr) {
		return &Event{Kind: EventMemoryWatch, Addr: w.Addr, Data: w.Data}
	}
	if m.depthSet && m.interp.CallStack.Depth() == m.depthTarget {
		return &Event{Kind: EventDepthReached}
	}
	return nil
}
