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

// Wire layout: one byte Op tag followed by only the fields that Op uses,
// each in a fixed field order per variant. Multi-word/byte fields are
// length-prefixed with a uint16 count. There is no ecosystem
// serialization crate anywhere in the retrieved examples (see
// DESIGN.md), so this follows the same explicit offset-based
// encoding/binary style as the m68k core's CPU.Serialize.
package rpc

import (
	"encoding/binary"
	"errors"

	"github.com/go-lc3/lc3sim/emu/lc3/control"
	"github.com/go-lc3/lc3sim/emu/lc3/cpu"
	"github.com/go-lc3/lc3sim/emu/lc3/isa"
	"github.com/go-lc3/lc3sim/emu/lc3/peripherals"
)

// ErrShortBuffer is returned by a decode when the input ends before a
// complete message has been read.
var ErrShortBuffer = errors.New("rpc: short buffer")

type wireWriter struct {
	buf []byte
}

func (w *wireWriter) u8(v uint8)   { w.buf = append(w.buf, v) }
func (w *wireWriter) bool(v bool)  { w.u8(boolByte(v)) }
func (w *wireWriter) u16(v uint16) { w.buf = binary.BigEndian.AppendUint16(w.buf, v) }
func (w *wireWriter) u64(v uint64) { w.buf = binary.BigEndian.AppendUint64(w.buf, v) }

func (w *wireWriter) str(s string) {
	w.u16(uint16(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *wireWriter) words(ws []uint16) {
	w.u16(uint16(len(ws)))
	for _, v := range ws {
		w.u16(v)
	}
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

type wireReader struct {
	buf []byte
	off int
}

func (r *wireReader) u8() (uint8, error) {
	if r.off+1 > len(r.buf) {
		return 0, ErrShortBuffer
	}
	v := r.buf[r.off]
	r.off++
	return v, nil
}

func (r *wireReader) boolean() (bool, error) {
	v, err := r.u8()
	return v != 0, err
}

func (r *wireReader) u16() (uint16, error) {
	if r.off+2 > len(r.buf) {
		return 0, ErrShortBuffer
	}
	v := binary.BigEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v, nil
}

func (r *wireReader) u64() (uint64, error) {
	if r.off+8 > len(r.buf) {
		return 0, ErrShortBuffer
	}
	v := binary.BigEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return v, nil
}

func (r *wireReader) str() (string, error) {
	n, err := r.u16()
	if err != nil {
		return "", err
	}
	if r.off+int(n) > len(r.buf) {
		return "", ErrShortBuffer
	}
	s := string(r.buf[r.off : r.off+int(n)])
	r.off += int(n)
	return s, nil
}

func (r *wireReader) words() ([]uint16, error) {
	n, err := r.u16()
	if err != nil {
		return nil, err
	}
	out := make([]uint16, n)
	for i := range out {
		v, err := r.u16()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// EncodeRequest renders req as a self-contained frame body (pass the
// result to a transport.Transport's Send; framing/COBS is a lower
// layer's job, not this package's).
func EncodeRequest(req Request) []byte {
	w := &wireWriter{}
	w.u8(uint8(req.Op))
	switch req.Op {
	case OpSetPC, OpReadWord, OpWriteWord, OpSetBreakpoint, OpSetMemoryWatchpoint:
		w.u16(uint16(req.Addr))
		if req.Op == OpWriteWord {
			w.u16(uint16(req.Data))
		}
	case OpGetRegister:
		w.u8(uint8(req.Reg))
	case OpSetRegister:
		w.u8(uint8(req.Reg))
		w.u16(uint16(req.Data))
	case OpUnsetBreakpoint, OpUnsetMemoryWatchpoint:
		w.u16(uint16(req.Idx))
	case OpSetDepthCondition:
		w.u16(uint16(req.DepthTarget))
	case OpGetGpioStates, OpGetGpioReadings:
		w.u8(uint8(req.Bank))
	case OpSetProgramMetadata:
		w.str(req.Metadata.Name)
		w.u16(uint16(req.Metadata.Version))
		w.u16(uint16(req.Metadata.LoadAddr))
		w.u64(req.Metadata.ContentHash)
	case OpStartPageWrite:
		w.u8(req.PageIdx)
		w.u64(req.ExpectedChecksum)
	case OpSendPageChunk:
		w.u8(req.OffsetToken.Page)
		w.u64(req.OffsetToken.SessionID)
		w.u16(uint16(req.OffsetToken.WordOffset))
		w.words(req.Chunk)
	case OpFinishPageWrite:
		w.u8(req.SessionToken.Page)
		w.u64(req.SessionToken.SessionID)
	}
	return w.buf
}

// DecodeRequest parses a frame body produced by EncodeRequest.
func DecodeRequest(buf []byte) (Request, error) {
	r := &wireReader{buf: buf}
	opByte, err := r.u8()
	if err != nil {
		return Request{}, err
	}
	req := Request{Op: Op(opByte)}
	switch req.Op {
	case OpSetPC, OpReadWord, OpWriteWord, OpSetBreakpoint, OpSetMemoryWatchpoint:
		addr, err := r.u16()
		if err != nil {
			return Request{}, err
		}
		req.Addr = Word(addr)
		if req.Op == OpWriteWord {
			data, err := r.u16()
			if err != nil {
				return Request{}, err
			}
			req.Data = Word(data)
		}
	case OpGetRegister:
		reg, err := r.u8()
		if err != nil {
			return Request{}, err
		}
		req.Reg = isaReg(reg)
	case OpSetRegister:
		reg, err := r.u8()
		if err != nil {
			return Request{}, err
		}
		req.Reg = isaReg(reg)
		data, err := r.u16()
		if err != nil {
			return Request{}, err
		}
		req.Data = Word(data)
	case OpUnsetBreakpoint, OpUnsetMemoryWatchpoint:
		idx, err := r.u16()
		if err != nil {
			return Request{}, err
		}
		req.Idx = int(idx)
	case OpSetDepthCondition:
		target, err := r.u16()
		if err != nil {
			return Request{}, err
		}
		req.DepthTarget = int(target)
	case OpGetGpioStates, OpGetGpioReadings:
		bank, err := r.u8()
		if err != nil {
			return Request{}, err
		}
		req.Bank = peripherals.Bank(bank)
	case OpSetProgramMetadata:
		name, err := r.str()
		if err != nil {
			return Request{}, err
		}
		version, err := r.u16()
		if err != nil {
			return Request{}, err
		}
		loadAddr, err := r.u16()
		if err != nil {
			return Request{}, err
		}
		hash, err := r.u64()
		if err != nil {
			return Request{}, err
		}
		req.Metadata = control.ProgramMetadata{Name: name, Version: Word(version), LoadAddr: Word(loadAddr), ContentHash: hash}
	case OpStartPageWrite:
		page, err := r.u8()
		if err != nil {
			return Request{}, err
		}
		checksum, err := r.u64()
		if err != nil {
			return Request{}, err
		}
		req.PageIdx = page
		req.ExpectedChecksum = checksum
	case OpSendPageChunk:
		page, err := r.u8()
		if err != nil {
			return Request{}, err
		}
		sid, err := r.u64()
		if err != nil {
			return Request{}, err
		}
		wordOffset, err := r.u16()
		if err != nil {
			return Request{}, err
		}
		chunk, err := r.words()
		if err != nil {
			return Request{}, err
		}
		req.OffsetToken = control.OffsetToken{
			SessionToken: control.SessionToken{Page: page, SessionID: sid},
			WordOffset:   int(wordOffset),
		}
		req.Chunk = chunk
	case OpFinishPageWrite:
		page, err := r.u8()
		if err != nil {
			return Request{}, err
		}
		sid, err := r.u64()
		if err != nil {
			return Request{}, err
		}
		req.SessionToken = control.SessionToken{Page: page, SessionID: sid}
	}
	return req, nil
}

// EncodeResponse renders resp as a self-contained frame body.
func EncodeResponse(resp Response) []byte {
	w := &wireWriter{}
	w.u8(uint8(resp.Op))
	w.str(resp.Err)
	if resp.Err != "" {
		return w.buf
	}

	switch resp.Op {
	case OpGetPC, OpReadWord, OpGetRegister:
		w.u16(uint16(resp.Word))
	case OpSetBreakpoint, OpUnsetBreakpoint, OpSetMemoryWatchpoint, OpUnsetMemoryWatchpoint, OpGetMaxBreakpoints, OpGetMaxMemoryWatchpoints, OpGetCallStackDepth:
		w.u16(uint16(resp.Int))
	case OpGetDepthCondition:
		w.u16(uint16(resp.Int))
		w.bool(resp.Bool)
	case OpGetRegistersPSRAndPC:
		for _, v := range resp.Regs {
			w.u16(uint16(v))
		}
		w.u16(uint16(resp.PSR))
		w.u16(uint16(resp.PC))
	case OpGetBreakpoints:
		for _, p := range resp.Breakpoints {
			w.bool(p != nil)
			if p != nil {
				w.u16(uint16(*p))
			}
		}
	case OpGetMemoryWatchpoints:
		for _, p := range resp.MemoryWatchpoints {
			w.bool(p != nil)
			if p != nil {
				w.u16(uint16(p.Addr))
				w.u16(uint16(p.Data))
			}
		}
	case OpGetCallStack:
		w.u16(uint16(resp.Depth))
		for _, f := range resp.CallStack {
			w.bool(f.OK)
			w.u16(uint16(f.Addr))
			w.u8(uint8(f.Mode))
		}
	case OpRunUntilEvent:
		w.u8(uint8(resp.Event.Kind))
		w.u16(uint16(resp.Event.Addr))
		w.u16(uint16(resp.Event.Data))
		w.u8(uint8(resp.State))
	case OpStep:
		w.bool(resp.HasEvent)
		if resp.HasEvent {
			w.u8(uint8(resp.Event.Kind))
			w.u16(uint16(resp.Event.Addr))
			w.u16(uint16(resp.Event.Data))
		}
		w.u8(uint8(resp.State))
	case OpGetState:
		w.u8(uint8(resp.State))
	case OpGetError:
		w.str(resp.MachineError)
	case OpGetGpioStates:
		for _, g := range resp.GpioStates {
			w.u8(uint8(g.State))
			w.bool(g.Present)
		}
	case OpGetGpioReadings:
		for _, g := range resp.GpioReadings {
			w.bool(g.Value)
			w.bool(g.Err == nil)
		}
	case OpGetAdcStates:
		for _, v := range resp.AdcStates {
			w.bool(v)
		}
	case OpGetAdcReadings:
		for _, a := range resp.AdcReadings {
			w.u8(a.Value)
			w.bool(a.Err == nil)
		}
	case OpGetTimerStates:
		for _, v := range resp.TimerStates {
			w.u8(uint8(v))
		}
	case OpGetTimerConfig:
		for _, v := range resp.TimerConfig {
			w.u16(v)
		}
	case OpGetPwmStates:
		for _, v := range resp.PwmStates {
			w.u8(v)
		}
	case OpGetPwmConfig:
		for _, v := range resp.PwmConfig {
			w.u8(v)
		}
	case OpGetClock:
		w.u16(uint16(resp.Word))
	case OpGetInfo:
		w.str(resp.Info.Name)
		w.u16(resp.Info.ProtocolVersion)
		w.str(resp.Info.Metadata.Name)
		w.u16(uint16(resp.Info.Metadata.Version))
		w.u16(uint16(resp.Info.Metadata.LoadAddr))
		w.u64(resp.Info.Metadata.ContentHash)
	case OpStartPageWrite:
		w.u8(resp.SessionToken.Page)
		w.u64(resp.SessionToken.SessionID)
	}
	return w.buf
}

// DecodeResponse parses a frame body produced by EncodeResponse.
func DecodeResponse(buf []byte) (Response, error) {
	r := &wireReader{buf: buf}
	opByte, err := r.u8()
	if err != nil {
		return Response{}, err
	}
	resp := Response{Op: Op(opByte)}
	errStr, err := r.str()
	if err != nil {
		return Response{}, err
	}
	resp.Err = errStr
	if resp.Err != "" {
		return resp, nil
	}

	switch resp.Op {
	case OpGetPC, OpReadWord, OpGetRegister:
		v, err := r.u16()
		if err != nil {
			return Response{}, err
		}
		resp.Word = Word(v)
	case OpSetBreakpoint, OpUnsetBreakpoint, OpSetMemoryWatchpoint, OpUnsetMemoryWatchpoint, OpGetMaxBreakpoints, OpGetMaxMemoryWatchpoints, OpGetCallStackDepth:
		v, err := r.u16()
		if err != nil {
			return Response{}, err
		}
		resp.Int = int(v)
	case OpGetDepthCondition:
		v, err := r.u16()
		if err != nil {
			return Response{}, err
		}
		resp.Int = int(v)
		b, err := r.boolean()
		if err != nil {
			return Response{}, err
		}
		resp.Bool = b
	case OpGetRegistersPSRAndPC:
		for i := range resp.Regs {
			v, err := r.u16()
			if err != nil {
				return Response{}, err
			}
			resp.Regs[i] = Word(v)
		}
		psr, err := r.u16()
		if err != nil {
			return Response{}, err
		}
		pc, err := r.u16()
		if err != nil {
			return Response{}, err
		}
		resp.PSR, resp.PC = Word(psr), Word(pc)
	case OpGetBreakpoints:
		for i := range resp.Breakpoints {
			set, err := r.boolean()
			if err != nil {
				return Response{}, err
			}
			if set {
				v, err := r.u16()
				if err != nil {
					return Response{}, err
				}
				w := Word(v)
				resp.Breakpoints[i] = &w
			}
		}
	case OpGetMemoryWatchpoints:
		for i := range resp.MemoryWatchpoints {
			set, err := r.boolean()
			if err != nil {
				return Response{}, err
			}
			if set {
				addr, err := r.u16()
				if err != nil {
					return Response{}, err
				}
				data, err := r.u16()
				if err != nil {
					return Response{}, err
				}
				resp.MemoryWatchpoints[i] = &struct {
					Addr Word
					Data Word
				}{Addr: Word(addr), Data: Word(data)}
			}
		}
	case OpGetCallStack:
		depth, err := r.u16()
		if err != nil {
			return Response{}, err
		}
		resp.Depth = int(depth)
		for i := range resp.CallStack {
			ok, err := r.boolean()
			if err != nil {
				return Response{}, err
			}
			addr, err := r.u16()
			if err != nil {
				return Response{}, err
			}
			mode, err := r.u8()
			if err != nil {
				return Response{}, err
			}
			resp.CallStack[i].OK = ok
			resp.CallStack[i].Addr = Word(addr)
			resp.CallStack[i].Mode = cpu.ProcessorMode(mode)
		}
	case OpRunUntilEvent:
		kind, err := r.u8()
		if err != nil {
			return Response{}, err
		}
		addr, err := r.u16()
		if err != nil {
			return Response{}, err
		}
		data, err := r.u16()
		if err != nil {
			return Response{}, err
		}
		state, err := r.u8()
		if err != nil {
			return Response{}, err
		}
		resp.Event = control.Event{Kind: control.EventKind(kind), Addr: Word(addr), Data: Word(data)}
		resp.State = control.State(state)
	case OpStep:
		hasEvent, err := r.boolean()
		if err != nil {
			return Response{}, err
		}
		resp.HasEvent = hasEvent
		if hasEvent {
			kind, err := r.u8()
			if err != nil {
				return Response{}, err
			}
			addr, err := r.u16()
			if err != nil {
				return Response{}, err
			}
			data, err := r.u16()
			if err != nil {
				return Response{}, err
			}
			resp.Event = control.Event{Kind: control.EventKind(kind), Addr: Word(addr), Data: Word(data)}
		}
		state, err := r.u8()
		if err != nil {
			return Response{}, err
		}
		resp.State = control.State(state)
	case OpGetState:
		state, err := r.u8()
		if err != nil {
			return Response{}, err
		}
		resp.State = control.State(state)
	case OpGetError:
		msg, err := r.str()
		if err != nil {
			return Response{}, err
		}
		resp.MachineError = msg
	case OpGetGpioStates:
		for i := range resp.GpioStates {
			st, err := r.u8()
			if err != nil {
				return Response{}, err
			}
			present, err := r.boolean()
			if err != nil {
				return Response{}, err
			}
			resp.GpioStates[i] = control.GpioPinInfo{State: peripherals.PinState(st), Present: present}
		}
	case OpGetGpioReadings:
		for i := range resp.GpioReadings {
			v, err := r.boolean()
			if err != nil {
				return Response{}, err
			}
			ok, err := r.boolean()
			if err != nil {
				return Response{}, err
			}
			reading := control.GpioReading{Value: v}
			if !ok {
				reading.Err = errDisabledPin
			}
			resp.GpioReadings[i] = reading
		}
	case OpGetAdcStates:
		for i := range resp.AdcStates {
			v, err := r.boolean()
			if err != nil {
				return Response{}, err
			}
			resp.AdcStates[i] = v
		}
	case OpGetAdcReadings:
		for i := range resp.AdcReadings {
			v, err := r.u8()
			if err != nil {
				return Response{}, err
			}
			ok, err := r.boolean()
			if err != nil {
				return Response{}, err
			}
			reading := control.AdcReading{Value: v}
			if !ok {
				reading.Err = errDisabledPin
			}
			resp.AdcReadings[i] = reading
		}
	case OpGetTimerStates:
		for i := range resp.TimerStates {
			v, err := r.u8()
			if err != nil {
				return Response{}, err
			}
			resp.TimerStates[i] = peripherals.TimerMode(v)
		}
	case OpGetTimerConfig:
		for i := range resp.TimerConfig {
			v, err := r.u16()
			if err != nil {
				return Response{}, err
			}
			resp.TimerConfig[i] = v
		}
	case OpGetPwmStates:
		for i := range resp.PwmStates {
			v, err := r.u8()
			if err != nil {
				return Response{}, err
			}
			resp.PwmStates[i] = v
		}
	case OpGetPwmConfig:
		for i := range resp.PwmConfig {
			v, err := r.u8()
			if err != nil {
				return Response{}, err
			}
			resp.PwmConfig[i] = v
		}
	case OpGetClock:
		v, err := r.u16()
		if err != nil {
			return Response{}, err
		}
		resp.Word = Word(v)
	case OpGetInfo:
		name, err := r.str()
		if err != nil {
			return Response{}, err
		}
		protoVer, err := r.u16()
		if err != nil {
			return Response{}, err
		}
		mdName, err := r.str()
		if err != nil {
			return Response{}, err
		}
		mdVersion, err := r.u16()
		if err != nil {
			return Response{}, err
		}
		mdLoadAddr, err := r.u16()
		if err != nil {
			return Response{}, err
		}
		mdHash, err := r.u64()
		if err != nil {
			return Response{}, err
		}
		resp.Info = control.DeviceInfo{
			Name:            name,
			ProtocolVersion: protoVer,
			Metadata: control.ProgramMetadata{
				Name:        mdName,
				Version:     Word(mdVersion),
				LoadAddr:    Word(mdLoadAddr),
				ContentHash: mdHash,
			},
		}
	case OpStartPageWrite:
		page, err := r.u8()
		if err != nil {
			return Response{}, err
		}
		sid, err := r.u64()
		if err != nil {
			return Response{}, err
		}
		resp.SessionToken = control.SessionToken{Page: page, SessionID: sid}
	}
	return resp, nil
}

// errDisabledPin stands in for a peripheral read error that crossed the
// wire: the wire format only needs to know a read failed, not why, since
// a controller only ever surfaces "reading unavailable" to its caller.
var errDisabledPin = errors.New("peripheral read unavailable")

func isaReg(b uint8) isa.Reg { return isa.Reg(b) }
