/*
 * lc3sim - RPC Controller: the client side of the control surface.
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
	"fmt"
	"log/slog"
	"time"

	"github.com/go-lc3/lc3sim/emu/lc3/control"
	"github.com/go-lc3/lc3sim/emu/lc3/isa"
	"github.com/go-lc3/lc3sim/emu/lc3/peripherals"
	"github.com/go-lc3/lc3sim/emu/lc3/transport"
)

// ErrRetryTimeout describes a Timeout elapsing without a matching
// response arriving. Controller.call does not return it: on each timeout
// it resends the request and keeps polling until ctx is done.
var ErrRetryTimeout = errors.New("rpc: timed out waiting for a matching response")

// ControlChannel is the minimal send/non-blocking-get contract a
// Controller needs. A transport.Transport satisfies it directly; a
// *transport.Multiplexed satisfies it via ControlAdapter, so the same
// Controller code drives either a dedicated link or the shared
// control/console-I/O link.
type ControlChannel interface {
	Send(payload []byte) error
	Get() ([]byte, error)
}

// ControlAdapter presents a *transport.Multiplexed's control channel as
// a plain ControlChannel.
type ControlAdapter struct{ M *transport.Multiplexed }

func (a ControlAdapter) Send(payload []byte) error { return a.M.SendControl(payload) }
func (a ControlAdapter) Get() ([]byte, error)       { return a.M.GetControl() }

// Controller drives the control surface from the client side of a
// ControlChannel: it busy-polls Get for a response after each Send,
// discarding frames that don't decode or don't answer the request it is
// currently waiting on (a stale response left over from a prior,
// abandoned call), and retrying the request if Timeout elapses.
type Controller struct {
	t       ControlChannel
	Log     *slog.Logger
	Poll    time.Duration // interval between Get polls
	Timeout time.Duration // 0 disables the retry timeout
}

// NewController wraps t. Poll defaults to 2ms, Timeout to 0 (no retry).
func NewController(t ControlChannel, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{t: t, Log: log, Poll: 2 * time.Millisecond}
}

// call sends req, then polls for a Response whose Op matches, resending
// req once per Timeout interval if one is configured. Decode failures
// and Op mismatches are logged and discarded; they are expected whenever
// a previous call's response arrives late.
func (c *Controller) call(ctx context.Context, req Request) (Response, error) {
	if err := c.t.Send(EncodeRequest(req)); err != nil {
		return Response{}, fmt.Errorf("rpc: send: %w", err)
	}

	ticker := time.NewTicker(c.Poll)
	defer ticker.Stop()

	var deadline <-chan time.Time
	var timer *time.Timer
	if c.Timeout > 0 {
		timer = time.NewTimer(c.Timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return Response{}, ctx.Err()
		case <-deadline:
			c.Log.Warn("rpc controller: no response before timeout, resending", "op", req.Op)
			if err := c.t.Send(EncodeRequest(req)); err != nil {
				return Response{}, fmt.Errorf("rpc: send: %w", err)
			}
			timer.Reset(c.Timeout)
		case <-ticker.C:
			frame, err := c.t.Get()
			if err != nil {
				c.Log.Warn("rpc controller: transport error", "err", err)
				continue
			}
			if frame == nil {
				continue
			}
			resp, err := DecodeResponse(frame)
			if err != nil {
				c.Log.Warn("rpc controller: undecodable response, discarding", "err", err)
				continue
			}
			if resp.Op != req.Op {
				c.Log.Warn("rpc controller: stale response, discarding", "want", req.Op, "got", resp.Op)
				continue
			}
			if resp.Err != "" {
				return Response{}, errors.New(resp.Err)
			}
			return resp, nil
		}
	}
}

func (c *Controller) GetPC(ctx context.Context) (control.Word, error) {
	resp, err := c.call(ctx, Request{Op: OpGetPC})
	return resp.Word, err
}

func (c *Controller) SetPC(ctx context.Context, addr control.Word) error {
	_, err := c.call(ctx, Request{Op: OpSetPC, Addr: addr})
	return err
}

func (c *Controller) GetRegister(ctx context.Context, reg int) (control.Word, error) {
	resp, err := c.call(ctx, Request{Op: OpGetRegister, Reg: regOf(reg)})
	return resp.Word, err
}

func (c *Controller) SetRegister(ctx context.Context, reg int, w control.Word) error {
	_, err := c.call(ctx, Request{Op: OpSetRegister, Reg: regOf(reg), Data: w})
	return err
}

func (c *Controller) ReadWord(ctx context.Context, addr control.Word) (control.Word, error) {
	resp, err := c.call(ctx, Request{Op: OpReadWord, Addr: addr})
	return resp.Word, err
}

func (c *Controller) WriteWord(ctx context.Context, addr, data control.Word) error {
	_, err := c.call(ctx, Request{Op: OpWriteWord, Addr: addr, Data: data})
	return err
}

func (c *Controller) SetBreakpoint(ctx context.Context, addr control.Word) (int, error) {
	resp, err := c.call(ctx, Request{Op: OpSetBreakpoint, Addr: addr})
	return resp.Int, err
}

func (c *Controller) UnsetBreakpoint(ctx context.Context, idx int) error {
	_, err := c.call(ctx, Request{Op: OpUnsetBreakpoint, Idx: idx})
	return err
}

func (c *Controller) GetBreakpoints(ctx context.Context) ([control.MaxBreakpoints]*control.Word, error) {
	resp, err := c.call(ctx, Request{Op: OpGetBreakpoints})
	return resp.Breakpoints, err
}

func (c *Controller) SetMemoryWatchpoint(ctx context.Context, addr control.Word) (int, error) {
	resp, err := c.call(ctx, Request{Op: OpSetMemoryWatchpoint, Addr: addr})
	return resp.Int, err
}

func (c *Controller) UnsetMemoryWatchpoint(ctx context.Context, idx int) error {
	_, err := c.call(ctx, Request{Op: OpUnsetMemoryWatchpoint, Idx: idx})
	return err
}

func (c *Controller) GetMaxBreakpoints(ctx context.Context) (int, error) {
	resp, err := c.call(ctx, Request{Op: OpGetMaxBreakpoints})
	return resp.Int, err
}

func (c *Controller) GetMemoryWatchpoints(ctx context.Context) ([control.MaxMemoryWatchpoints]*struct {
	Addr control.Word
	Data control.Word
}, error) {
	resp, err := c.call(ctx, Request{Op: OpGetMemoryWatchpoints})
	return resp.MemoryWatchpoints, err
}

func (c *Controller) GetMaxMemoryWatchpoints(ctx context.Context) (int, error) {
	resp, err := c.call(ctx, Request{Op: OpGetMaxMemoryWatchpoints})
	return resp.Int, err
}

func (c *Controller) SetDepthCondition(ctx context.Context, target int) error {
	_, err := c.call(ctx, Request{Op: OpSetDepthCondition, DepthTarget: target})
	return err
}

func (c *Controller) ClearDepthCondition(ctx context.Context) error {
	_, err := c.call(ctx, Request{Op: OpClearDepthCondition})
	return err
}

func (c *Controller) GetDepthCondition(ctx context.Context) (target int, ok bool, err error) {
	resp, err := c.call(ctx, Request{Op: OpGetDepthCondition})
	return resp.Int, resp.Bool, err
}

func (c *Controller) GetCallStack(ctx context.Context) (frames [10]struct {
	Addr control.Word
	Mode uint8
	OK   bool
}, depth int, err error) {
	resp, err := c.call(ctx, Request{Op: OpGetCallStack})
	for i, f := range resp.CallStack {
		frames[i] = struct {
			Addr control.Word
			Mode uint8
			OK   bool
		}{Addr: f.Addr, Mode: uint8(f.Mode), OK: f.OK}
	}
	return frames, resp.Depth, err
}

func (c *Controller) GetCallStackDepth(ctx context.Context) (int, error) {
	resp, err := c.call(ctx, Request{Op: OpGetCallStackDepth})
	return resp.Int, err
}

// RunUntilEvent issues a run-until-event request and blocks (subject to
// ctx) until the device reports a resolved Event. The device may take
// arbitrarily long to reply; the Controller's own Timeout retry applies
// to each individual poll round, not to the overall wait, so set ctx's
// deadline instead when a wall-clock bound on the whole run is wanted.
func (c *Controller) RunUntilEvent(ctx context.Context) (control.Event, control.State, error) {
	resp, err := c.call(ctx, Request{Op: OpRunUntilEvent})
	return resp.Event, resp.State, err
}

func (c *Controller) Step(ctx context.Context) (*control.Event, control.State, error) {
	resp, err := c.call(ctx, Request{Op: OpStep})
	if err != nil {
		return nil, control.State(0), err
	}
	if !resp.HasEvent {
		return nil, resp.State, nil
	}
	ev := resp.Event
	return &ev, resp.State, nil
}

func (c *Controller) Pause(ctx context.Context) error {
	_, err := c.call(ctx, Request{Op: OpPause})
	return err
}

func (c *Controller) GetState(ctx context.Context) (control.State, error) {
	resp, err := c.call(ctx, Request{Op: OpGetState})
	return resp.State, err
}

func (c *Controller) Reset(ctx context.Context) error {
	_, err := c.call(ctx, Request{Op: OpReset})
	return err
}

func (c *Controller) GetError(ctx context.Context) (string, error) {
	resp, err := c.call(ctx, Request{Op: OpGetError})
	return resp.MachineError, err
}

func (c *Controller) GetInfo(ctx context.Context) (control.DeviceInfo, error) {
	resp, err := c.call(ctx, Request{Op: OpGetInfo})
	return resp.Info, err
}

func (c *Controller) SetProgramMetadata(ctx context.Context, md control.ProgramMetadata) error {
	_, err := c.call(ctx, Request{Op: OpSetProgramMetadata, Metadata: md})
	return err
}

func (c *Controller) GetGpioStates(ctx context.Context, bank peripherals.Bank) ([peripherals.GpioPinsPerBank]control.GpioPinInfo, error) {
	resp, err := c.call(ctx, Request{Op: OpGetGpioStates, Bank: bank})
	return resp.GpioStates, err
}

func (c *Controller) GetGpioReadings(ctx context.Context, bank peripherals.Bank) ([peripherals.GpioPinsPerBank]control.GpioReading, error) {
	resp, err := c.call(ctx, Request{Op: OpGetGpioReadings, Bank: bank})
	return resp.GpioReadings, err
}

func (c *Controller) GetAdcStates(ctx context.Context) ([peripherals.NumAdcPins]bool, error) {
	resp, err := c.call(ctx, Request{Op: OpGetAdcStates})
	return resp.AdcStates, err
}

func (c *Controller) GetAdcReadings(ctx context.Context) ([peripherals.NumAdcPins]control.AdcReading, error) {
	resp, err := c.call(ctx, Request{Op: OpGetAdcReadings})
	return resp.AdcReadings, err
}

func (c *Controller) GetTimerStates(ctx context.Context) ([peripherals.NumTimers]peripherals.TimerMode, error) {
	resp, err := c.call(ctx, Request{Op: OpGetTimerStates})
	return resp.TimerStates, err
}

func (c *Controller) GetTimerConfig(ctx context.Context) ([peripherals.NumTimers]uint16, error) {
	resp, err := c.call(ctx, Request{Op: OpGetTimerConfig})
	return resp.TimerConfig, err
}

func (c *Controller) GetPwmStates(ctx context.Context) ([peripherals.NumPwmPins]uint8, error) {
	resp, err := c.call(ctx, Request{Op: OpGetPwmStates})
	return resp.PwmStates, err
}

func (c *Controller) GetPwmConfig(ctx context.Context) ([peripherals.NumPwmPins]uint8, error) {
	resp, err := c.call(ctx, Request{Op: OpGetPwmConfig})
	return resp.PwmConfig, err
}

func (c *Controller) GetClock(ctx context.Context) (control.Word, error) {
	resp, err := c.call(ctx, Request{Op: OpGetClock})
	return resp.Word, err
}

// LoadImage drives the full three-call session protocol for one page:
// StartPageWrite, enough SendPageChunk calls to cover the page, then
// FinishPageWrite. Callers loading a multi-page image call this once
// per page.
func (c *Controller) LoadImage(ctx context.Context, pageIdx uint8, page [256]uint16, checksum uint64) error {
	resp, err := c.call(ctx, Request{Op: OpStartPageWrite, PageIdx: pageIdx, ExpectedChecksum: checksum})
	if err != nil {
		return err
	}
	tok := resp.SessionToken

	const chunkWords = control.ChunkSizeInWords
	for off := 0; off < len(page); off += chunkWords {
		chunk := page[off : off+chunkWords]
		_, err := c.call(ctx, Request{Op: OpSendPageChunk, OffsetToken: tok.Offset(off), Chunk: append([]uint16(nil), chunk...)})
		if err != nil {
			return err
		}
	}

	_, err = c.call(ctx, Request{Op: OpFinishPageWrite, SessionToken: tok})
	return err
}

func regOf(r int) isa.Reg { return isa.Reg(r) }
