package rpc

/*
 * lc3sim - Wire encoding for Request/Response messages.
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

	"github.com/google/go-cmp/cmp"

	"github.com/go-lc3/lc3sim/emu/lc3/control"
	"github.com/go-lc3/lc3sim/emu/lc3/isa"
)

func TestRequestRoundTrip(t *testing.T) {
	cases := []Request{
		{Op: OpGetPC},
		{Op: OpSetPC, Addr: 0x3000},
		{Op: OpGetRegister, Reg: isa.Reg(3)},
		{Op: OpSetRegister, Reg: isa.Reg(5), Data: 0xBEEF},
		{Op: OpWriteWord, Addr: 0x4000, Data: 0x1234},
		{Op: OpUnsetBreakpoint, Idx: 2},
		{Op: OpSetDepthCondition, DepthTarget: 7},
		{Op: OpSetProgramMetadata, Metadata: control.ProgramMetadata{
			Name: "prog", Version: 1, LoadAddr: 0x3000, ContentHash: 0xDEADBEEFCAFEBABE,
		}},
		{Op: OpSendPageChunk, OffsetToken: control.OffsetToken{
			SessionToken: control.SessionToken{Page: 4, SessionID: 99},
			WordOffset:   10,
		}, Chunk: []uint16{1, 2, 3}},
		{Op: OpFinishPageWrite, SessionToken: control.SessionToken{Page: 4, SessionID: 99}},
	}
	for i, req := range cases {
		buf := EncodeRequest(req)
		got, err := DecodeRequest(buf)
		if err != nil {
			t.Fatalf("case %d: decode failed: %v", i, err)
		}
		if diff := cmp.Diff(req, got); diff != "" {
			t.Errorf("case %d: round trip mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestResponseRoundTrip(t *testing.T) {
	cases := []Response{
		{Op: OpGetPC, Word: 0x3000},
		{Op: OpGetRegistersPSRAndPC, Regs: [isa.NumRegs]Word{1, 2, 3, 4, 5, 6, 7, 8}, PSR: 0x8002, PC: 0x3000},
		{Op: OpGetDepthCondition, Int: 3, Bool: true},
		{Op: OpStep, HasEvent: true, Event: control.Event{Kind: control.EventBreakpoint, Addr: 0x3000}, State: control.StatePaused},
		{Op: OpGetError, MachineError: "stack overflow"},
		{Op: OpGetState, State: control.StateRunningUntilEvent},
	}
	for i, resp := range cases {
		buf := EncodeResponse(resp)
		got, err := DecodeResponse(buf)
		if err != nil {
			t.Fatalf("case %d: decode failed: %v", i, err)
		}
		if diff := cmp.Diff(resp, got); diff != "" {
			t.Errorf("case %d: round trip mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestResponseErrShortCircuits(t *testing.T) {
	resp := Response{Op: OpGetPC, Err: "boom", Word: 0x3000}
	buf := EncodeResponse(resp)
	got, err := DecodeResponse(buf)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.Err != "boom" {
		t.Errorf("Err got %q want %q", got.Err, "boom")
	}
	if got.Word != 0 {
		t.Errorf("Word should not have been encoded alongside Err, got %v", got.Word)
	}
}
