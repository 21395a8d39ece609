/*
 * lc3sim - LC-3 interpreter state and access control.
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

// Package cpu implements the LC-3 fetch/decode/execute loop: register
// file, PSR/MCR/BSP, the call-stack shadow, memory-mapped I/O dispatch,
// and interrupt/exception/trap servicing.
package cpu

import (
	"log/slog"

	"github.com/go-lc3/lc3sim/emu/lc3/isa"
	"github.com/go-lc3/lc3sim/emu/lc3/memory"
	"github.com/go-lc3/lc3sim/emu/lc3/mmio"
	"github.com/go-lc3/lc3sim/emu/lc3/peripherals"
)

type Word = isa.Word

// MachineState is the interpreter's run/halt state.
type MachineState uint8

const (
	StateRunning MachineState = iota
	StateHalted
)

// PSR bit layout.
const (
	psrUserMode  = 0x8000
	psrPriShift  = 8
	psrPriMask   = 0x0700
	psrCondN     = 0x0004
	psrCondZ     = 0x0002
	psrCondP     = 0x0001
	psrCondMask  = 0x0007
	mcrRunning   = 0x8000
	interruptPri = 4
)

// MemWrite records the address/value of the most recent store, for the
// control layer's watchpoint checks.
type MemWrite struct {
	Addr Word
	Data Word
	Set  bool
}

// Interpreter is the LC-3 machine: registers, PC, a Memory, a peripheral
// Set behind an mmio.Facade, a run/halt state, the last non-fatal error,
// and the debugger's CallStack shadow.
type Interpreter struct {
	Regs [isa.NumRegs]Word
	PC   Word

	Memory      *memory.Memory
	Peripherals *peripherals.Set
	MMIO        *mmio.Facade

	state     MachineState
	lastErr   error
	CallStack CallStack
	LastWrite MemWrite
	LastInterrupt bool

	bsp Word // zeroed by Reset and otherwise unused; mode switches swap R6 with the memory-backed BSP register

	Log *slog.Logger
}

// New builds an Interpreter over mem and periph. Both must already be
// constructed (shared with any RPC/control layer that also inspects
// them directly).
func New(mem *memory.Memory, periph *peripherals.Set, log *slog.Logger) *Interpreter {
	if log == nil {
		log = slog.Default()
	}
	in := &Interpreter{
		Memory:      mem,
		Peripherals: periph,
		MMIO:        mmio.New(mem, periph),
		Log:         log,
	}
	in.Reset()
	return in
}

// Reset restores power-on state: PC = 0x0200, priority = 7, MCR run bit
// set, CC = Z, all peripherals reset, call-stack cleared, GPRs zeroed.
func (in *Interpreter) Reset() {
	in.Regs = [isa.NumRegs]Word{}
	in.PC = isa.OSStartAddr
	in.state = StateRunning
	in.lastErr = nil
	in.CallStack.Reset()
	in.LastWrite = MemWrite{}
	in.bsp = 0

	psr := Word(7<<psrPriShift) | psrCondZ
	in.Memory.WriteWord(isa.PSRAddr, psr)
	in.Memory.WriteWord(isa.MCRAddr, mcrRunning)
	in.Memory.WriteWord(isa.BSPAddr, 0)

	in.Peripherals.Reset()
}

// State returns the current run/halt state, deriving Halted from MCR's
// run bit so external writers (e.g. a program clearing MCR itself) are
// observed without an extra code path.
func (in *Interpreter) State() MachineState {
	if in.Memory.ReadWord(isa.MCRAddr)&mcrRunning == 0 {
		return StateHalted
	}
	return in.state
}

// Halt clears MCR's run bit and marks the interpreter halted.
func (in *Interpreter) Halt() {
	in.state = StateHalted
	mcr := in.Memory.ReadWord(isa.MCRAddr)
	in.Memory.WriteWord(isa.MCRAddr, mcr&^Word(mcrRunning))
}

// LastError returns (and does not clear) the most recent non-fatal error
// recorded by a peripheral access or access-control check.
func (in *Interpreter) LastError() error { return in.lastErr }

func (in *Interpreter) recordError(err error) { in.lastErr = err }

// PSR accessors.

func (in *Interpreter) psr() Word { return in.Memory.ReadWord(isa.PSRAddr) }
func (in *Interpreter) setPSR(v Word) { in.Memory.WriteWord(isa.PSRAddr, v) }

func (in *Interpreter) UserMode() bool { return in.psr()&psrUserMode != 0 }

func (in *Interpreter) Priority() uint8 {
	return uint8((in.psr() & psrPriMask) >> psrPriShift)
}

func (in *Interpreter) setPriority(p uint8) {
	v := in.psr()
	v = (v &^ Word(psrPriMask)) | (Word(p)<<psrPriShift)&psrPriMask
	in.setPSR(v)
}

// setCC sets PSR.N/Z/P from the sign of value; exactly one bit is set.
func (in *Interpreter) setCC(value Word) {
	v := in.psr() &^ Word(psrCondMask)
	switch {
	case value == 0:
		v |= psrCondZ
	case isa.SignedWord(value) < 0:
		v |= psrCondN
	default:
		v |= psrCondP
	}
	in.setPSR(v)
}

func (in *Interpreter) clearCC() {
	in.setPSR(in.psr() &^ Word(psrCondMask))
}

// ACV is returned by checked accesses that hit the user-mode guard.
type ACV struct {
	Addr Word
}

func (e *ACV) Error() string { return "access control violation" }

// checkedAccessAllowed reports whether addr may be touched from the
// current privilege level: user mode may not reach below 0x3000 or at/
// above 0xFE00.
func (in *Interpreter) checkedAccessAllowed(addr Word) bool {
	if !in.UserMode() {
		return true
	}
	return addr >= isa.UserProgStartAddr && addr < isa.MMIOStart
}

// GetWord performs a checked read: an ACV in user mode against a
// privileged address range.
func (in *Interpreter) GetWord(addr Word) (Word, error) {
	if !in.checkedAccessAllowed(addr) {
		return 0, &ACV{Addr: addr}
	}
	return in.getWordUnchecked(addr)
}

// SetWord performs a checked write.
func (in *Interpreter) SetWord(addr Word, w Word) error {
	if !in.checkedAccessAllowed(addr) {
		return &ACV{Addr: addr}
	}
	return in.setWordUnchecked(addr, w)
}

// GetWordUnchecked bypasses the user-mode guard; used by the event
// dispatcher and by the control API's memory inspection.
func (in *Interpreter) GetWordUnchecked(addr Word) (Word, error) { return in.getWordUnchecked(addr) }

// SetWordUnchecked bypasses the user-mode guard.
func (in *Interpreter) SetWordUnchecked(addr Word, w Word) error { return in.setWordUnchecked(addr, w) }

func (in *Interpreter) getWordUnchecked(addr Word) (Word, error) {
	if mmio.IsMMIO(addr) {
		v, err := in.MMIO.Read(addr)
		if err != nil {
			in.handlePeripheralError(err)
		}
		return v, nil
	}
	return in.Memory.ReadWord(addr), nil
}

func (in *Interpreter) setWordUnchecked(addr Word, w Word) error {
	in.LastWrite = MemWrite{Addr: addr, Data: w, Set: true}
	if mmio.IsMMIO(addr) {
		if err := in.MMIO.Write(addr, w); err != nil {
			in.handlePeripheralError(err)
		}
		return nil
	}
	in.Memory.WriteWord(addr, w)
	return nil
}

// PeekWord reads addr without perturbing state, for the control layer's
// non-mutating memory inspection. A stateful-read register (KBDR) is not
// actually consumed: it reports 0, since there is no separately shadowed
// value for it to return (see mmio package docs).
func (in *Interpreter) PeekWord(addr Word) Word {
	if mmio.IsStatefulRead(addr) {
		return 0
	}
	if mmio.IsMMIO(addr) {
		v, _ := in.MMIO.Read(addr) // a peripheral error is not recorded
		return v
	}
	return in.Memory.ReadWord(addr)
}

func (in *Interpreter) handlePeripheralError(err error) {
	perr, ok := err.(*peripherals.Error)
	if !ok {
		in.recordError(err)
		return
	}
	strategy, _, vector := peripherals.Resolve(perr)
	in.recordError(perr)
	switch strategy {
	case peripherals.StrategyWarn:
		in.Log.Warn("peripheral error", "err", perr)
	case peripherals.StrategyFireException:
		in.raiseException(vector)
	case peripherals.StrategyDefaultValue:
		// caller already received the default value from MMIO.Read.
	}
}
