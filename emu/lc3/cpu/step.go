/*
 * lc3sim - The interpreter's fetch/decode/execute step.
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
)

// Step runs exactly one fetch/decode/execute cycle and returns the
// resulting machine state.
func (in *Interpreter) Step() MachineState {
	if in.State() == StateHalted {
		return StateHalted
	}

	in.LastWrite = MemWrite{}
	in.LastInterrupt = false

	curPC := in.PC
	in.PC++ // advance before fetch: state-18 semantics, observable to the instruction itself

	if in.checkInterrupt() {
		in.Peripherals.Timers.Advance(1)
		return in.State()
	}

	w, err := in.GetWord(curPC)
	if err != nil {
		in.recordError(err)
		in.raiseException(0x02)
		in.Peripherals.Timers.Advance(1)
		return in.State()
	}

	instr, err := isa.Decode(w)
	if err != nil {
		in.recordError(err)
		in.raiseException(0x01)
		in.Peripherals.Timers.Advance(1)
		return in.State()
	}

	if debug.Enabled(debug.Inst) {
		in.Log.Debug("exec", "pc", curPC, "word", w, "kind", instr.Kind)
	}

	if err := in.execute(instr); err != nil {
		in.recordError(err)
		in.raiseException(0x02)
	}

	in.Peripherals.Timers.Advance(1)
	return in.State()
}
