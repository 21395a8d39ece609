/*
 * lc3sim - RPC Device: the machine side of the control surface.
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

package rpc

import (
	"context"
	"errors"
	"log/slog"

	debug "github.com/go-lc3/lc3sim/config/debugconfig"
	"github.com/go-lc3/lc3sim/emu/lc3/control"
)

// MaxStepsPerTick bounds how many interpreter steps Device.Run drives
// per loop iteration while servicing a RunUntilEvent, so the device loop
// still gets to poll for new requests (e.g. a Pause) at regular
// intervals rather than running to completion unattended.
const MaxStepsPerTick = 1000

var errUnknownOp = errors.New("rpc: unrecognized operation")

// Device services Requests against a *control.Machine, replying on the
// same ControlChannel, and ticks the machine between messages so a
// RunUntilEvent request in flight still makes forward progress.
type Device struct {
	m   *control.Machine
	ch  ControlChannel
	Log *slog.Logger
}

// NewDevice wires ch to m.
func NewDevice(m *control.Machine, ch ControlChannel, log *slog.Logger) *Device {
	if log == nil {
		log = slog.Default()
	}
	return &Device{m: m, ch: ch, Log: log}
}

// Run services requests and ticks the machine until ctx is cancelled.
// Each iteration: drain and dispatch one pending request (if any), then
// advance the simulator by up to MaxStepsPerTick steps. A RunUntilEvent
// request never blocks this loop: dispatch joins the Machine's batch
// from a background goroutine that sends its own reply once Tick
// resolves the batch, so Run keeps servicing other requests (and keeps
// calling Tick, which is what makes that resolution happen) meanwhile.
func (d *Device) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		frame, err := d.ch.Get()
		if err != nil {
			d.Log.Warn("rpc device: transport error", "err", err)
		} else if frame != nil {
			if debug.Enabled(debug.IO) {
				d.Log.Debug("rpc frame received", "bytes", len(frame))
			}
			d.handleFrame(frame)
		}

		d.m.Tick(MaxStepsPerTick)
	}
}

func (d *Device) handleFrame(frame []byte) {
	req, err := DecodeRequest(frame)
	if err != nil {
		d.Log.Warn("rpc device: undecodable request, dropping", "err", err)
		return
	}
	if debug.Enabled(debug.Cmd) {
		d.Log.Debug("rpc request", "op", req.Op)
	}
	resp, sendNow := d.dispatch(req)
	if !sendNow {
		return
	}
	if err := d.ch.Send(EncodeResponse(resp)); err != nil {
		d.Log.Warn("rpc device: send failed", "err", err)
	}
}

// sendAsync is called from the background goroutine RunUntilEvent spawns
// once its wait resolves.
func (d *Device) sendAsync(resp Response) {
	if err := d.ch.Send(EncodeResponse(resp)); err != nil {
		d.Log.Warn("rpc device: async send failed", "err", err)
	}
}

func fail(op Op, err error) Response { return Response{Op: op, Err: err.Error()} }

// dispatch executes one Request against the Machine and reports whether
// handleFrame should send the returned Response immediately. Only
// RunUntilEvent answers false: its eventual reply is sent later, from
// the goroutine it spawns, once the Machine's batch resolves.
func (d *Device) dispatch(req Request) (Response, bool) {
	switch req.Op {
	case OpGetPC:
		return Response{Op: req.Op, Word: d.m.GetPC()}, true
	case OpSetPC:
		d.m.SetPC(req.Addr)
		return Response{Op: req.Op}, true
	case OpGetRegister:
		return Response{Op: req.Op, Word: d.m.GetRegister(req.Reg)}, true
	case OpSetRegister:
		d.m.SetRegister(req.Reg, req.Data)
		return Response{Op: req.Op}, true
	case OpGetRegistersPSRAndPC:
		regs, psr, pc := d.m.GetRegistersPSRAndPC()
		return Response{Op: req.Op, Regs: regs, PSR: psr, PC: pc}, true
	case OpReadWord:
		return Response{Op: req.Op, Word: d.m.ReadWord(req.Addr)}, true
	case OpWriteWord:
		d.m.WriteWord(req.Addr, req.Data)
		return Response{Op: req.Op}, true
	case OpSetBreakpoint:
		idx, err := d.m.SetBreakpoint(req.Addr)
		if err != nil {
			return fail(req.Op, err), true
		}
		return Response{Op: req.Op, Int: idx}, true
	case OpUnsetBreakpoint:
		if err := d.m.UnsetBreakpoint(req.Idx); err != nil {
			return fail(req.Op, err), true
		}
		return Response{Op: req.Op}, true
	case OpGetBreakpoints:
		return Response{Op: req.Op, Breakpoints: d.m.GetBreakpoints()}, true
	case OpGetMaxBreakpoints:
		return Response{Op: req.Op, Int: d.m.GetMaxBreakpoints()}, true
	case OpSetMemoryWatchpoint:
		idx, err := d.m.SetMemoryWatchpoint(req.Addr)
		if err != nil {
			return fail(req.Op, err), true
		}
		return Response{Op: req.Op, Int: idx}, true
	case OpUnsetMemoryWatchpoint:
		if err := d.m.UnsetMemoryWatchpoint(req.Idx); err != nil {
			return fail(req.Op, err), true
		}
		return Response{Op: req.Op}, true
	case OpGetMemoryWatchpoints:
		return Response{Op: req.Op, MemoryWatchpoints: d.m.GetMemoryWatchpoints()}, true
	case OpGetMaxMemoryWatchpoints:
		return Response{Op: req.Op, Int: d.m.GetMaxMemoryWatchpoints()}, true
	case OpSetDepthCondition:
		d.m.SetDepthCondition(req.DepthTarget)
		return Response{Op: req.Op}, true
	case OpClearDepthCondition:
		d.m.ClearDepthCondition()
		return Response{Op: req.Op}, true
	case OpGetDepthCondition:
		target, ok := d.m.GetDepthCondition()
		return Response{Op: req.Op, Int: target, Bool: ok}, true
	case OpGetCallStack:
		frames := d.m.GetCallStack()
		resp := Response{Op: req.Op, Depth: d.m.GetCallStackDepth()}
		for i, f := range frames {
			resp.CallStack[i].Addr = f.Addr
			resp.CallStack[i].Mode = f.Mode
			resp.CallStack[i].OK = f.OK
		}
		return resp, true
	case OpGetCallStackDepth:
		return Response{Op: req.Op, Int: d.m.GetCallStackDepth()}, true
	case OpRunUntilEvent:
		go func() {
			ev, state, err := d.m.RunUntilEvent(context.Background())
			if err != nil {
				return // abandoned by a concurrent Pause/Reset; no reply is owed
			}
			d.sendAsync(Response{Op: OpRunUntilEvent, Event: ev, State: state})
		}()
		return Response{}, false
	case OpStep:
		ev, state := d.m.Step()
		resp := Response{Op: req.Op, State: state}
		if ev != nil {
			resp.HasEvent = true
			resp.Event = *ev
		}
		return resp, true
	case OpPause:
		d.m.Pause()
		return Response{Op: req.Op}, true
	case OpGetState:
		return Response{Op: req.Op, State: d.m.GetState()}, true
	case OpReset:
		d.m.Reset()
		return Response{Op: req.Op}, true
	case OpGetError:
		var msg string
		if err := d.m.GetError(); err != nil {
			msg = err.Error()
		}
		return Response{Op: req.Op, MachineError: msg}, true
	case OpGetGpioStates:
		return Response{Op: req.Op, GpioStates: d.m.GetGpioStates(req.Bank)}, true
	case OpGetGpioReadings:
		return Response{Op: req.Op, GpioReadings: d.m.GetGpioReadings(req.Bank)}, true
	case OpGetAdcStates:
		return Response{Op: req.Op, AdcStates: d.m.GetAdcStates()}, true
	case OpGetAdcReadings:
		return Response{Op: req.Op, AdcReadings: d.m.GetAdcReadings()}, true
	case OpGetTimerStates:
		return Response{Op: req.Op, TimerStates: d.m.GetTimerStates()}, true
	case OpGetTimerConfig:
		return Response{Op: req.Op, TimerConfig: d.m.GetTimerConfig()}, true
	case OpGetPwmStates:
		return Response{Op: req.Op, PwmStates: d.m.GetPwmStates()}, true
	case OpGetPwmConfig:
		return Response{Op: req.Op, PwmConfig: d.m.GetPwmConfig()}, true
	case OpGetClock:
		return Response{Op: req.Op, Word: d.m.GetClock()}, true
	case OpGetInfo:
		return Response{Op: req.Op, Info: d.m.GetInfo()}, true
	case OpSetProgramMetadata:
		d.m.SetProgramMetadata(req.Metadata)
		return Response{Op: req.Op}, true
	case OpStartPageWrite:
		tok, err := d.m.StartPageWrite(req.PageIdx, req.ExpectedChecksum)
		if err != nil {
			return fail(req.Op, err), true
		}
		return Response{Op: req.Op, SessionToken: tok}, true
	case OpSendPageChunk:
		if err := d.m.SendPageChunk(req.OffsetToken, req.Chunk); err != nil {
			return fail(req.Op, err), true
		}
		return Response{Op: req.Op}, true
	case OpFinishPageWrite:
		if err := d.m.FinishPageWrite(req.SessionToken); err != nil {
			return fail(req.Op, err), true
		}
		return Response{Op: req.Op}, true
	default:
		return fail(req.Op, errUnknownOp), true
	}
}
