/*
 * lc3sim - Control-surface RPC request/response messages.
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

// Package rpc puts the control package's ~35-operation surface on the
// wire: a Request/Response tagged-union pair per operation, a Controller
// that drives them over a transport.Transport from the client side, and
// a Device that services them from the machine side while ticking the
// simulator between messages.
package rpc

import (
	"github.com/go-lc3/lc3sim/emu/lc3/control"
	"github.com/go-lc3/lc3sim/emu/lc3/cpu"
	"github.com/go-lc3/lc3sim/emu/lc3/isa"
	"github.com/go-lc3/lc3sim/emu/lc3/peripherals"
)

// Op names one of the control surface's operations. Request and
// Response both carry an Op plus only the fields that operation uses,
// mirroring isa.Instruction's Kind-plus-union-of-fields shape.
type Op uint8

const (
	OpGetPC Op = iota
	OpSetPC
	OpGetRegister
	OpSetRegister
	OpGetRegistersPSRAndPC
	OpReadWord
	OpWriteWord
	OpSetBreakpoint
	OpUnsetBreakpoint
	OpGetBreakpoints
	OpGetMaxBreakpoints
	OpSetMemoryWatchpoint
	OpUnsetMemoryWatchpoint
	OpGetMemoryWatchpoints
	OpGetMaxMemoryWatchpoints
	OpSetDepthCondition
	OpClearDepthCondition
	OpGetDepthCondition
	OpGetCallStack
	OpGetCallStackDepth
	OpRunUntilEvent
	OpStep
	OpPause
	OpGetState
	OpReset
	OpGetError
	OpGetGpioStates
	OpGetGpioReadings
	OpGetAdcStates
	OpGetAdcReadings
	OpGetTimerStates
	OpGetTimerConfig
	OpGetPwmStates
	OpGetPwmConfig
	OpGetClock
	OpGetInfo
	OpSetProgramMetadata
	OpStartPageWrite
	OpSendPageChunk
	OpFinishPageWrite
)

// Request is the client-to-device tagged union. Only the fields an Op
// actually uses are meaningful; the rest are left zero.
type Request struct {
	Op Op

	Addr Word
	Data Word
	Reg  isa.Reg
	Idx  int
	Bank peripherals.Bank

	DepthTarget int

	Metadata control.ProgramMetadata

	PageIdx          uint8
	ExpectedChecksum uint64
	SessionToken     control.SessionToken
	OffsetToken      control.OffsetToken
	Chunk            []uint16
}

// Word is aliased so this package reads naturally against control.Word
// without importing isa twice under different names in call sites.
type Word = isa.Word

// Response is the device-to-client tagged union, one variant per Op.
// A Response's Op always echoes the Request's Op it answers; Err is set
// instead of the success fields when the operation failed.
type Response struct {
	Op  Op
	Err string

	// MachineError is OpGetError's result: the interpreter's last
	// recorded non-fatal error, rendered to a string ("" if none). This
	// is a query result, distinct from Err, which reports the RPC
	// operation itself failing.
	MachineError string

	Word     Word
	Int      int
	Bool     bool
	HasEvent bool // OpStep: whether this step coincided with an event
	Event    control.Event
	State    control.State

	Regs [isa.NumRegs]Word
	PSR  Word
	PC   Word

	Breakpoints       [control.MaxBreakpoints]*Word
	MemoryWatchpoints [control.MaxMemoryWatchpoints]*struct {
		Addr Word
		Data Word
	}

	CallStack [cpu.CallStackDepth]struct {
		Addr Word
		Mode cpu.ProcessorMode
		OK   bool
	}
	Depth int

	GpioStates   [peripherals.GpioPinsPerBank]control.GpioPinInfo
	GpioReadings [peripherals.GpioPinsPerBank]control.GpioReading
	AdcStates    [peripherals.NumAdcPins]bool
	AdcReadings  [peripherals.NumAdcPins]control.AdcReading
	TimerStates  [peripherals.NumTimers]peripherals.TimerMode
	TimerConfig  [peripherals.NumTimers]uint16
	PwmStates    [peripherals.NumPwmPins]uint8
	PwmConfig    [peripherals.NumPwmPins]uint8

	Info control.DeviceInfo

	SessionToken control.SessionToken
}
