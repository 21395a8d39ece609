/*
 * lc3sim - The Control surface over a running Interpreter.
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
	"sync"

	"github.com/go-lc3/lc3sim/emu/lc3/cpu"
	"github.com/go-lc3/lc3sim/emu/lc3/isa"
)

// Machine wires the fetch/decode/execute Interpreter up to the ~35-op
// Control surface: register/memory inspection, fixed-capacity breakpoint
// and watchpoint tables, the long-poll run-until-event Batch, the
// chunked program-load session (session.go), and device/program
// metadata. One Machine is shared between an in-process console and any
// number of RPC devices driving the same simulator.
type Machine struct {
	mu sync.Mutex

	interp *cpu.Interpreter

	bp breakpointTable
	wp watchpointTable

	depthSet    bool
	depthTarget int

	runState State
	batch    *Batch

	sessionMu      sync.Mutex
	session        loadSession
	sessionCounter uint64

	info DeviceInfo
}

// New builds a Machine around an already-constructed Interpreter.
func New(interp *cpu.Interpreter, info DeviceInfo) *Machine {
	return &Machine{
		interp:   interp,
		runState: StatePaused,
		batch:    NewBatch(),
		info:     info,
	}
}

// Reset restores the interpreter to its power-on state and clears every
// piece of control-layer state: breakpoints, watchpoints, the depth
// condition, and the run-until-event batch (abandoning any pending
// futures, per the Cancellation contract in the design notes).
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interp.Reset()
	m.bp.reset()
	m.wp.reset()
	m.depthSet = false
	m.runState = StatePaused
	m.batch.Reset()
}

// GetPC / SetPC.

func (m *Machine) GetPC() Word {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interp.PC
}

func (m *Machine) SetPC(addr Word) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interp.PC = addr
}

// GetRegister / SetRegister.

func (m *Machine) GetRegister(r isa.Reg) Word {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interp.Regs[r]
}

func (m *Machine) SetRegister(r isa.Reg, w Word) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interp.Regs[r] = w
}

// GetRegistersPSRAndPC is the one batched accessor in the Control
// surface, letting a controller fetch the whole visible register file
// in a single round trip.
func (m *Machine) GetRegistersPSRAndPC() (regs [isa.NumRegs]Word, psr Word, pc Word) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interp.Regs, m.interp.PeekWord(isa.PSRAddr), m.interp.PC
}

// ReadWord performs a non-mutating memory peek: a stateful-read register
// (KBDR) is not actually consumed.
func (m *Machine) ReadWord(addr Word) Word {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interp.PeekWord(addr)
}

// WriteWord writes addr via the interpreter's unchecked path (the
// control layer is privileged by construction). It sets the
// interpreter's LastWrite like a store would, but the next Step clears
// LastWrite before checking for events, so a control-layer write never
// produces a MemoryWatch event.
func (m *Machine) WriteWord(addr Word, w Word) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.interp.SetWordUnchecked(addr, w)
}

// GetState reports Halted if the interpreter itself has halted
// (regardless of the last-observed run-until-event state), else the
// control layer's own Paused/RunningUntilEvent state.
func (m *Machine) GetState() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

func (m *Machine) stateLocked() State {
	if m.interp.State() == cpu.StateHalted {
		return StateHalted
	}
	return m.runState
}

// GetError returns (without clearing) the interpreter's last recorded
// non-fatal error.
func (m *Machine) GetError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interp.LastError()
}

// GetCallStack returns the debugger call-stack shadow's stored window.
func (m *Machine) GetCallStack() [cpu.CallStackDepth]struct {
	Addr Word
	Mode cpu.ProcessorMode
	OK   bool
} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interp.CallStack.Frames()
}

// GetCallStackDepth returns the logical call-stack depth, which may
// exceed the stored window.
func (m *Machine) GetCallStackDepth() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interp.CallStack.Depth()
}

// GetInfo returns the device's identity and currently loaded program
// metadata.
func (m *Machine) GetInfo() DeviceInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	info := m.info
	info.Metadata = m.programMetadataLocked()
	return info
}

// SetProgramMetadata records metadata for a freshly loaded image (name,
// version, load address, content hash), surfaced back via GetInfo.
func (m *Machine) SetProgramMetadata(md ProgramMetadata) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.info.Metadata = md
}

func (m *Machine) programMetadataLocked() ProgramMetadata {
	return m.info.Metadata
}
