/*
 * lc3sim - Interrupt, exception, and trap dispatch.
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

import (
	debug "github.com/go-lc3/lc3sim/config/debugconfig"
	"github.com/go-lc3/lc3sim/emu/lc3/isa"
	"github.com/go-lc3/lc3sim/emu/lc3/peripherals"
)

// eventKind distinguishes the three execution events; all three share
// the same state-push prep and differ only in vector base and whether
// the PC is rolled back first.
type eventKind uint8

const (
	eventTrap eventKind = iota
	eventException
	eventInterrupt
)

// pushStack pushes w onto the (possibly just-switched-to) supervisor
// stack in R6, honoring the OS-region floor: a push that would drop R6
// below 0x0200 overflows the system stack, halting the machine.
func (in *Interpreter) pushStack(w Word) error {
	if in.Regs[isa.R6] <= isa.OSStartAddr {
		in.Halt()
		in.recordError(&stackOverflowError{})
		return &ACV{Addr: in.Regs[isa.R6]}
	}
	in.Regs[isa.R6]--
	return in.setWordUnchecked(in.Regs[isa.R6], w)
}

func (in *Interpreter) popStack() (Word, error) {
	w, err := in.getWordUnchecked(in.Regs[isa.R6])
	in.Regs[isa.R6]++
	return w, err
}

type stackOverflowError struct{}

func (*stackOverflowError) Error() string { return "overflowed system stack" }

// prep performs the shared first half of every execution event: snapshot
// PSR, switch to supervisor mode (swapping R6 with BSP if we were in
// user mode), then push PSR followed by PC — PSR first so that PC pops
// first on RTI, which means a late ACV during the PSR-restore pop can't
// silently leave the PC half-restored.
func (in *Interpreter) prep() (oldMode ProcessorMode, ok bool) {
	wasUser := in.UserMode()
	oldMode = ModeUser
	if !wasUser {
		oldMode = ModeSupervisor
	}

	oldPSR := in.psr()

	if wasUser {
		bsp := in.Memory.ReadWord(isa.BSPAddr)
		in.Memory.WriteWord(isa.BSPAddr, in.Regs[isa.R6])
		in.Regs[isa.R6] = bsp
		in.setPSR(oldPSR &^ Word(psrUserMode))
	}

	if err := in.pushStack(oldPSR); err != nil {
		return oldMode, false
	}
	if err := in.pushStack(in.PC); err != nil {
		return oldMode, false
	}
	return oldMode, true
}

// dispatchTrap vectors through the trap table at 0x0000|vec.
func (in *Interpreter) dispatchTrap(vec uint8) {
	mode, ok := in.prep()
	if !ok {
		return
	}
	in.CallStack.Push(in.PC, mode)
	target, _ := in.getWordUnchecked(isa.TrapVectorTable | Word(vec))
	in.PC = target
}

// raiseException vectors through the exception table at 0x0100|vec.
func (in *Interpreter) raiseException(vec uint8) {
	mode, ok := in.prep()
	if !ok {
		return
	}
	in.CallStack.Push(in.PC, mode)
	target, _ := in.getWordUnchecked(isa.ExceptionVectorBase | Word(vec))
	in.PC = target
}

// dispatchInterrupt rolls the PC back by one (so the instruction that
// was about to execute re-runs after RTI), then vectors through the
// interrupt table at 0x0180|vec, raising PSR priority to the servicing
// level and clearing condition codes.
func (in *Interpreter) dispatchInterrupt(vec uint8) {
	in.PC--
	mode, ok := in.prep()
	if !ok {
		return
	}
	in.CallStack.Push(in.PC, mode)
	target, _ := in.getWordUnchecked(isa.InterruptVectorBase | Word(vec))
	in.PC = target
	in.setPriority(interruptPri)
	in.clearCC()

	if debug.Enabled(debug.IRQ) {
		in.Log.Debug("interrupt", "source", vec, "target", target)
	}
}

// rti services the RTI instruction: only valid in supervisor mode. Pops
// PC first, then PSR (matching the push order), and if the restored PSR
// is user-mode, swaps R6 back with BSP.
func (in *Interpreter) rti() {
	if in.UserMode() {
		in.raiseException(0x00) // privilege violation
		return
	}

	pc, err := in.popStack()
	if err != nil {
		return
	}
	in.PC = pc

	psr, err := in.popStack()
	if err != nil {
		return
	}
	in.setPSR(psr)

	if psr&psrUserMode != 0 {
		bsp := in.Memory.ReadWord(isa.BSPAddr)
		in.Memory.WriteWord(isa.BSPAddr, in.Regs[isa.R6])
		in.Regs[isa.R6] = bsp
	}

	in.CallStack.Pop()
}

// checkInterrupt looks for an interrupt to service in fixed priority
// order. All external sources share priority level interruptPri (4):
// once the current PSR priority is at or above that, no source may
// preempt, so the whole scan is skipped; otherwise the first enabled
// and pending source wins.
func (in *Interpreter) checkInterrupt() bool {
	if in.Priority() >= interruptPri {
		return false
	}
	flags := in.Peripherals.Flags
	for src := 0; src < int(peripherals.NumSources); src++ {
		if flags.Take(peripherals.InterruptSource(src)) {
			in.dispatchInterrupt(uint8(src))
			in.LastInterrupt = true
			return true
		}
	}
	return false
}
