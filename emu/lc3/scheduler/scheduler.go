/*
 * lc3sim - Relative-time event scheduler.
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

// Package scheduler runs callbacks a given number of interpreter steps in
// the future, ordered as a delta list so advancing time costs O(1) in the
// common case of an empty or near-empty queue. The LC-3 repeating timer
// peripheral reschedules itself from its own callback to produce periodic
// interrupts.
package scheduler

// Callback fires when its scheduled delay elapses. arg is whatever the
// caller of Add wants to receive back (e.g. a timer index).
type Callback func(arg int)

type event struct {
	ticks int
	cb    Callback
	arg   int
	owner int
	prev  *event
	next  *event
}

// Scheduler is a struct-based rendition of a classic delta-queue event
// list: each node stores its delay relative to the node before it, so
// Advance only has to walk the prefix of events that actually fire.
type Scheduler struct {
	head, tail *event
}

// New returns an empty Scheduler.
func New() *Scheduler {
	return &Scheduler{}
}

// Add schedules cb to run after ticks steps, tagged with owner (used by
// Cancel to find it again) and arg (passed back to cb).
func (s *Scheduler) Add(owner int, ticks int, arg int, cb Callback) {
	if ticks <= 0 {
		cb(arg)
		return
	}

	ev := &event{ticks: ticks, cb: cb, arg: arg, owner: owner}

	cur := s.head
	if cur == nil {
		s.head = ev
		s.tail = ev
		return
	}

	for cur != nil {
		if ev.ticks <= cur.ticks {
			cur.ticks -= ev.ticks
			ev.prev = cur.prev
			ev.next = cur
			cur.prev = ev
			if ev.prev != nil {
				ev.prev.next = ev
			} else {
				s.head = ev
			}
			return
		}
		ev.ticks -= cur.ticks
		cur = cur.next
	}

	ev.prev = s.tail
	s.tail.next = ev
	s.tail = ev
}

// Cancel removes the first pending event owned by owner with the given
// arg, if any.
func (s *Scheduler) Cancel(owner, arg int) {
	for cur := s.head; cur != nil; cur = cur.next {
		if cur.owner != owner || cur.arg != arg {
			continue
		}
		if cur.next != nil {
			cur.next.ticks += cur.ticks
			cur.next.prev = cur.prev
		} else {
			s.tail = cur.prev
		}
		if cur.prev != nil {
			cur.prev.next = cur.next
		} else {
			s.head = cur.next
		}
		return
	}
}

// Advance moves time forward by ticks steps, firing (and removing) every
// event whose delay has elapsed. A callback that reschedules itself
// (e.g. a repeating timer) is free to call Add again from within cb.
func (s *Scheduler) Advance(ticks int) {
	if s.head == nil {
		return
	}
	s.head.ticks -= ticks
	for s.head != nil && s.head.ticks <= 0 {
		ev := s.head
		s.head = ev.next
		if s.head != nil {
			s.head.prev = nil
			s.head.ticks += ev.ticks // carry any overshoot into the next delta
		} else {
			s.tail = nil
		}
		ev.cb(ev.arg)
	}
}
