/*
 * lc3sim - Control-layer event, state, and metadata types.
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

// Package control implements the uniform control surface (~35
// operations) over a running Interpreter: register/memory inspection,
// breakpoints and watchpoints, the long-poll run-until-event future, and
// the chunked program-load session protocol.
package control

import (
	"fmt"

	"github.com/go-lc3/lc3sim/emu/lc3/isa"
)

type Word = isa.Word

// EventKind distinguishes why a run-until-event future resolved.
type EventKind uint8

const (
	EventBreakpoint EventKind = iota
	EventMemoryWatch
	EventInterrupted
	EventHalted
	EventDepthReached
)

// Event is the reason a batch of run-until-event futures resolved.
type Event struct {
	Kind EventKind
	Addr Word // Breakpoint, MemoryWatch
	Data Word // MemoryWatch
}

func (e Event) String() string {
	switch e.Kind {
	case EventBreakpoint:
		return fmt.Sprintf("breakpoint@0x%04X", e.Addr)
	case EventMemoryWatch:
		return fmt.Sprintf("watch@0x%04X=0x%04X", e.Addr, e.Data)
	case EventInterrupted:
		return "interrupted"
	case EventHalted:
		return "halted"
	case EventDepthReached:
		return "depth-reached"
	default:
		return "event"
	}
}

// State is the machine's control-layer run state.
type State uint8

const (
	StatePaused State = iota
	StateRunningUntilEvent
	StateHalted
)

// MaxBreakpoints and MaxMemoryWatchpoints bound the fixed-capacity
// breakpoint/watchpoint tables.
const (
	MaxBreakpoints       = 10
	MaxMemoryWatchpoints = 10
)

// ProgramMetadata is attached to a loaded image via SetProgramMetadata
// and surfaced back via GetInfo.
type ProgramMetadata struct {
	Name        string
	Version     Word
	LoadAddr    Word
	ContentHash uint64
}

// DeviceInfo identifies the simulator instance to a connecting controller.
type DeviceInfo struct {
	Name            string
	ProtocolVersion uint16
	Metadata        ProgramMetadata
}
