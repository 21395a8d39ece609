/*
 * lc3sim - Memory-mapped peripheral register façade.
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

// Package mmio translates reads and writes in [0xFE00, 0xFFFF] into calls
// on the peripheral capability set: each register is a typed view
// derived from peripheral state, not a shadow value, so the peripheral
// remains the single source of truth.
//
// Address map (see DESIGN.md for the one deliberate departure from the
// literal spec catalog — GPIO banks are spaced 0x10 apart, not 0x20, to
// avoid colliding with the ADC/PWM ranges):
//
//	0xFE00 KBSR   0xFE02 KBDR (stateful read)
//	0xFE04 DSR    0xFE06 DDR
//	0xFE10-1F GPIO bank A (CR/DR pairs, 8 pins)
//	0xFE20-2F GPIO bank B (optional)
//	0xFE30-3F GPIO bank C (optional)
//	0xFE40-4B ADC (CR/DR pairs, 6 pins)
//	0xFE50-53 PWM (CR/DR pairs, 2 pins)
//	0xFE60-63 Timers (CR/DR pairs, 2 timers)
//	0xFE70    CLKR
//	0xFFFA BSP   0xFFFC PSR   0xFFFE MCR   (special: backed by memory)
package mmio

import (
	"github.com/go-lc3/lc3sim/emu/lc3/isa"
	"github.com/go-lc3/lc3sim/emu/lc3/memory"
	"github.com/go-lc3/lc3sim/emu/lc3/peripherals"
)

const (
	addrKBSR = 0xFE00
	addrKBDR = 0xFE02
	addrDSR  = 0xFE04
	addrDDR  = 0xFE06

	addrGpioABase = 0xFE10
	addrGpioBBase = 0xFE20
	addrGpioCBase = 0xFE30
	gpioBankSize  = 0x10

	addrAdcBase = 0xFE40
	addrPwmBase = 0xFE50
	addrTimBase = 0xFE60
	addrCLKR    = 0xFE70
)

// Facade dispatches MMIO-range accesses to a peripheral Set, falling
// back to plain backing memory for the special registers and for any
// address in range that isn't assigned to a register.
type Facade struct {
	Memory      *memory.Memory
	Peripherals *peripherals.Set
}

func New(mem *memory.Memory, periph *peripherals.Set) *Facade {
	return &Facade{Memory: mem, Peripherals: periph}
}

// IsSpecial reports whether addr is one of PSR/MCR/BSP: registers that
// never raise ACVs and always access backing memory directly.
func IsSpecial(addr uint16) bool {
	return addr == isa.PSRAddr || addr == isa.MCRAddr || addr == isa.BSPAddr
}

// IsStatefulRead reports whether reading addr perturbs peripheral state
// (true only for KBDR).
func IsStatefulRead(addr uint16) bool {
	return addr == addrKBDR
}

// IsMMIO reports whether addr falls in the memory-mapped I/O region.
func IsMMIO(addr uint16) bool {
	return addr >= isa.MMIOStart
}

// Read projects peripheral (or, for special/unassigned addresses,
// backing memory) state into a Word. A non-nil error is always a
// *peripherals.Error describing a non-fatal condition; the caller
// resolves it via peripherals.Resolve.
func (f *Facade) Read(addr uint16) (uint16, error) {
	if IsSpecial(addr) {
		return f.Memory.ReadWord(addr), nil
	}

	switch {
	case addr == addrKBSR:
		v := uint16(0)
		if f.Peripherals.Input.Ready() {
			v |= 0x8000
		}
		if f.Peripherals.Input.InterruptEnable() {
			v |= 0x4000
		}
		return v, nil

	case addr == addrKBDR:
		b, _ := f.Peripherals.Input.Read()
		return uint16(b), nil

	case addr == addrDSR:
		v := uint16(0)
		if f.Peripherals.Output.Ready() {
			v |= 0x8000
		}
		if f.Peripherals.Output.InterruptEnable() {
			v |= 0x0002
		}
		return v, nil

	case addr == addrDDR:
		return 0, nil // write-only in practice; reads see 0

	case inRange(addr, addrGpioABase, gpioBankSize):
		return f.readGpio(f.Peripherals.GpioA, addr-addrGpioABase)
	case inRange(addr, addrGpioBBase, gpioBankSize):
		return f.readGpio(f.Peripherals.GpioB, addr-addrGpioBBase)
	case inRange(addr, addrGpioCBase, gpioBankSize):
		return f.readGpio(f.Peripherals.GpioC, addr-addrGpioCBase)

	case inRange(addr, addrAdcBase, 2*peripherals.NumAdcPins):
		off := addr - addrAdcBase
		pin := int(off / 2)
		if off%2 == 0 {
			enabled := f.Peripherals.Adc.Enabled(pin)
			if enabled {
				return 1, nil
			}
			return 0, nil
		}
		v, err := f.Peripherals.Adc.Read(pin)
		if err != nil {
			return 0, err
		}
		return uint16(v), nil

	case inRange(addr, addrPwmBase, 2*peripherals.NumPwmPins):
		off := addr - addrPwmBase
		pin := int(off / 2)
		if off%2 == 0 {
			return uint16(f.Peripherals.Pwm.Period(pin)), nil
		}
		return uint16(f.Peripherals.Pwm.Duty(pin)), nil

	case inRange(addr, addrTimBase, 2*peripherals.NumTimers):
		off := addr - addrTimBase
		timer := int(off / 2)
		if off%2 == 0 {
			return uint16(f.Peripherals.Timers.Mode(timer)), nil
		}
		return f.Peripherals.Timers.Period(timer), nil

	case addr == addrCLKR:
		return f.Peripherals.Clock.Milliseconds(), nil

	default:
		return f.Memory.ReadWord(addr), nil
	}
}

// Write drives peripheral (or backing memory) state from a Word.
func (f *Facade) Write(addr uint16, w uint16) error {
	if IsSpecial(addr) {
		f.Memory.WriteWord(addr, w)
		return nil
	}

	switch {
	case addr == addrKBSR:
		f.Peripherals.Input.SetInterruptEnable(w&0x4000 != 0)
		return nil

	case addr == addrKBDR:
		return nil // read-only

	case addr == addrDSR:
		f.Peripherals.Output.SetInterruptEnable(w&0x0002 != 0)
		return nil

	case addr == addrDDR:
		f.Peripherals.Output.Write(byte(w))
		return nil

	case inRange(addr, addrGpioABase, gpioBankSize):
		return f.writeGpio(f.Peripherals.GpioA, addr-addrGpioABase, w)
	case inRange(addr, addrGpioBBase, gpioBankSize):
		return f.writeGpio(f.Peripherals.GpioB, addr-addrGpioBBase, w)
	case inRange(addr, addrGpioCBase, gpioBankSize):
		return f.writeGpio(f.Peripherals.GpioC, addr-addrGpioCBase, w)

	case inRange(addr, addrAdcBase, 2*peripherals.NumAdcPins):
		off := addr - addrAdcBase
		pin := int(off / 2)
		if off%2 == 0 {
			f.Peripherals.Adc.SetEnabled(pin, w != 0)
			return nil
		}
		return nil // DR is read-only from the program's point of view

	case inRange(addr, addrPwmBase, 2*peripherals.NumPwmPins):
		off := addr - addrPwmBase
		pin := int(off / 2)
		if off%2 == 0 {
			f.Peripherals.Pwm.SetPeriod(pin, byte(w))
		} else {
			f.Peripherals.Pwm.SetDuty(pin, byte(w))
		}
		return nil

	case inRange(addr, addrTimBase, 2*peripherals.NumTimers):
		off := addr - addrTimBase
		timer := int(off / 2)
		if off%2 == 0 {
			f.Peripherals.Timers.SetMode(timer, peripherals.TimerMode(w))
		} else {
			f.Peripherals.Timers.SetPeriod(timer, w)
		}
		return nil

	case addr == addrCLKR:
		f.Peripherals.Clock.SetBase()
		return nil

	default:
		f.Memory.WriteWord(addr, w)
		return nil
	}
}

func (f *Facade) readGpio(bank *peripherals.GpioBank, off uint16) (uint16, error) {
	pin := int(off / 2)
	if off%2 == 0 {
		st, err := bank.PinState(pin)
		if err != nil {
			return 0, err
		}
		return uint16(st), nil
	}
	v, err := bank.Read(pin)
	if err != nil {
		return 0, err
	}
	if v {
		return 1, nil
	}
	return 0, nil
}

func (f *Facade) writeGpio(bank *peripherals.GpioBank, off uint16, w uint16) error {
	pin := int(off / 2)
	if off%2 == 0 {
		return bank.SetPinState(pin, peripherals.PinState(w))
	}
	return bank.Write(pin, w != 0)
}

func inRange(addr, base uint16, size int) bool {
	return addr >= base && int(addr-base) < size
}
