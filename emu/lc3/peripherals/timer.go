/*
 * lc3sim - Timer peripheral.
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

package peripherals

import (
	"sync"

	"github.com/go-lc3/lc3sim/emu/lc3/scheduler"
)

const NumTimers = 2

// TimerMode selects whether a timer fires once or reschedules itself.
type TimerMode uint8

const (
	TimerSingleShot TimerMode = iota
	TimerRepeated
)

type timerState struct {
	mode   TimerMode
	period uint16 // in interpreter steps; 0 disables
}

// Timers models the two countdown timers. Each tick of the interpreter's
// step loop calls Advance, which drives an internal Scheduler; a timer
// reaching zero sets its InterruptFlags pending bit and, in Repeated
// mode, reschedules itself for another period.
type Timers struct {
	mu    sync.Mutex
	sched *scheduler.Scheduler
	state [NumTimers]timerState
	flags *InterruptFlags
	src   [NumTimers]InterruptSource
}

func NewTimers(flags *InterruptFlags, src [NumTimers]InterruptSource) *Timers {
	return &Timers{sched: scheduler.New(), flags: flags, src: src}
}

// SetMode configures timer t's run mode (CR write).
func (t *Timers) SetMode(timer int, mode TimerMode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state[timer].mode = mode
}

func (t *Timers) Mode(timer int) TimerMode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state[timer].mode
}

// SetPeriod configures timer t's period (DR write) in interpreter steps;
// a period of 0 disables the timer. Setting a nonzero period (re)arms it.
func (t *Timers) SetPeriod(timer int, period uint16) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state[timer].period = period
	t.sched.Cancel(timer, timer)
	if period != 0 {
		t.arm(timer, int(period))
	}
}

func (t *Timers) Period(timer int) uint16 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state[timer].period
}

func (t *Timers) arm(timer int, period int) {
	t.sched.Add(timer, period, timer, func(arg int) {
		t.fire(arg)
	})
}

// fire runs from inside Advance's scheduler callback, with t.mu already held.
func (t *Timers) fire(timer int) {
	if t.flags != nil {
		t.flags.SetPending(t.src[timer])
	}
	if t.state[timer].mode == TimerRepeated && t.state[timer].period != 0 {
		t.arm(timer, int(t.state[timer].period))
	}
}

// Advance steps the underlying scheduler by the given number of
// interpreter cycles; called once per Interpreter.Step.
func (t *Timers) Advance(steps int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sched.Advance(steps)
}

func (t *Timers) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sched = scheduler.New()
	t.state = [NumTimers]timerState{}
}
