package parser

/*
 * lc3sim - Command parser.
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

import (
	"testing"

	"github.com/go-lc3/lc3sim/emu/lc3/control"
	"github.com/go-lc3/lc3sim/emu/lc3/cpu"
	"github.com/go-lc3/lc3sim/emu/lc3/memory"
	"github.com/go-lc3/lc3sim/emu/lc3/peripherals"
)

func newTestMachine() *control.Machine {
	mem := memory.New()
	periph := peripherals.NewSet(peripherals.Config{})
	interp := cpu.New(mem, periph, nil)
	return control.New(interp, control.DeviceInfo{Name: "test"})
}

func TestDepositAndMemory(t *testing.T) {
	m := newTestMachine()
	if quit, err := ProcessCommand("deposit x3000 x1234", m); err != nil || quit {
		t.Fatalf("deposit failed: quit=%v err=%v", quit, err)
	}
	if got := m.ReadWord(0x3000); got != 0x1234 {
		t.Errorf("memory after deposit got x%04X want x1234", got)
	}
}

func TestSetRegisterAndPC(t *testing.T) {
	m := newTestMachine()
	if _, err := ProcessCommand("set r3 x0042", m); err != nil {
		t.Fatalf("set r3 failed: %v", err)
	}
	if got := m.GetRegister(3); got != 0x0042 {
		t.Errorf("R3 got x%04X want x0042", got)
	}
	if _, err := ProcessCommand("set pc x4000", m); err != nil {
		t.Fatalf("set pc failed: %v", err)
	}
	if got := m.GetPC(); got != 0x4000 {
		t.Errorf("PC got x%04X want x4000", got)
	}
}

func TestBreakUnbreak(t *testing.T) {
	m := newTestMachine()
	if _, err := ProcessCommand("break x3000", m); err != nil {
		t.Fatalf("break failed: %v", err)
	}
	bps := m.GetBreakpoints()
	if bps[0] == nil || *bps[0] != 0x3000 {
		t.Fatalf("breakpoint not recorded: %v", bps)
	}
	if _, err := ProcessCommand("unbreak 0", m); err != nil {
		t.Fatalf("unbreak failed: %v", err)
	}
	bps = m.GetBreakpoints()
	if bps[0] != nil {
		t.Errorf("breakpoint 0 still set after unbreak: %v", *bps[0])
	}
}

func TestUnknownCommand(t *testing.T) {
	m := newTestMachine()
	if _, err := ProcessCommand("frobnicate", m); err == nil {
		t.Errorf("expected an error for an unknown command")
	}
}

func TestAmbiguousPrefix(t *testing.T) {
	m := newTestMachine()
	// "dep" matches both "depth" and "deposit".
	if _, err := ProcessCommand("dep", m); err == nil {
		t.Errorf("expected an ambiguous-command error")
	}
}

func TestQuit(t *testing.T) {
	m := newTestMachine()
	quit, err := ProcessCommand("quit", m)
	if err != nil || !quit {
		t.Errorf("quit got quit=%v err=%v, want true, nil", quit, err)
	}
}

func TestCompleteCmd(t *testing.T) {
	got := CompleteCmd("bre")
	if len(got) != 1 || got[0] != "break" {
		t.Errorf("CompleteCmd(%q) got %v want [break]", "bre", got)
	}
}
