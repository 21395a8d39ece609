/*
 * lc3sim - LC-3 instruction execution.
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

import "github.com/go-lc3/lc3sim/emu/lc3/isa"

// execute carries out a decoded instruction against the current
// register file, PC, and memory. A returned error is always an *ACV
// from a checked memory access during execution.
func (in *Interpreter) execute(ins isa.Instruction) error {
	switch ins.Kind {
	case isa.KindAddReg:
		v := in.Regs[ins.SR1] + in.Regs[ins.SR2]
		in.Regs[ins.DR] = v
		in.setCC(v)

	case isa.KindAddImm:
		v := in.Regs[ins.SR1] + ins.Imm5
		in.Regs[ins.DR] = v
		in.setCC(v)

	case isa.KindAndReg:
		v := in.Regs[ins.SR1] & in.Regs[ins.SR2]
		in.Regs[ins.DR] = v
		in.setCC(v)

	case isa.KindAndImm:
		v := in.Regs[ins.SR1] & ins.Imm5
		in.Regs[ins.DR] = v
		in.setCC(v)

	case isa.KindNot:
		v := ^in.Regs[ins.SR]
		in.Regs[ins.DR] = v
		in.setCC(v)

	case isa.KindBr:
		psr := in.psr()
		n := psr&psrCondN != 0
		z := psr&psrCondZ != 0
		p := psr&psrCondP != 0
		if (ins.N && n) || (ins.Z && z) || (ins.P && p) {
			in.PC += ins.PCOffset9
		}

	case isa.KindJmp:
		if ins.Base == isa.R7 {
			in.CallStack.Pop()
		}
		in.PC = in.Regs[ins.Base]

	case isa.KindJsr:
		ret := in.PC
		in.Regs[isa.R7] = ret
		in.PC += ins.PCOffset11
		in.CallStack.Push(ret, in.currentMode())

	case isa.KindJsrr:
		base := in.Regs[ins.Base]
		ret := in.PC
		in.Regs[isa.R7] = ret
		in.PC = base
		in.CallStack.Push(ret, in.currentMode())

	case isa.KindLd:
		v, err := in.GetWord(in.PC + ins.PCOffset9)
		if err != nil {
			return err
		}
		in.Regs[ins.DR] = v
		in.setCC(v)

	case isa.KindLdi:
		addr, err := in.GetWord(in.PC + ins.PCOffset9)
		if err != nil {
			return err
		}
		v, err := in.GetWord(addr)
		if err != nil {
			return err
		}
		in.Regs[ins.DR] = v
		in.setCC(v)

	case isa.KindLdr:
		v, err := in.GetWord(in.Regs[ins.Base] + ins.Offset6)
		if err != nil {
			return err
		}
		in.Regs[ins.DR] = v
		in.setCC(v)

	case isa.KindLea:
		v := in.PC + ins.PCOffset9
		in.Regs[ins.DR] = v
		in.setCC(v)

	case isa.KindSt:
		if err := in.SetWord(in.PC+ins.PCOffset9, in.Regs[ins.SR]); err != nil {
			return err
		}

	case isa.KindSti:
		addr, err := in.GetWord(in.PC + ins.PCOffset9)
		if err != nil {
			return err
		}
		if err := in.SetWord(addr, in.Regs[ins.SR]); err != nil {
			return err
		}

	case isa.KindStr:
		if err := in.SetWord(in.Regs[ins.Base]+ins.Offset6, in.Regs[ins.SR]); err != nil {
			return err
		}

	case isa.KindRti:
		in.rti()

	case isa.KindTrap:
		in.dispatchTrap(ins.TrapVec)
	}
	return nil
}

func (in *Interpreter) currentMode() ProcessorMode {
	if in.UserMode() {
		return ModeUser
	}
	return ModeSupervisor
}
