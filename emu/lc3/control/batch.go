/*
 * lc3sim - Shared batch state backing run-until-event futures.
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

package control

import (
	"context"
	"errors"
	"sync"
)

// ErrBatchSealed is returned by Batch.Join when the current batch has
// already resolved but not every prior joiner has drained its result.
var ErrBatchSealed = errors.New("run-until-event batch is sealed and not yet drained")

// Batch coordinates any number of concurrent run_until_event awaiters:
// every future that joins the current batch resolves to the same Event.
// The batch seals when a producer calls Resolve; a sealed-but-undrained
// batch rejects new joiners until every existing one has collected its
// result via Waiter.Await. Reset abandons the batch outright, bumping
// its generation so in-flight waiters return ok=false instead of a stale
// event.
type Batch struct {
	mu         sync.Mutex
	generation uint64
	sealed     bool
	pending    int
	event      Event
	done       chan struct{}
}

// NewBatch returns a fresh, unsealed Batch.
func NewBatch() *Batch {
	return &Batch{done: make(chan struct{})}
}

// Waiter is a single future's membership in a Batch.
type Waiter struct {
	batch *Batch
	done  chan struct{}
	gen   uint64
}

// Join adds a new waiter to the batch, starting a fresh one if the
// previous batch fully drained, or failing if it is sealed but some
// other waiter hasn't yet collected its result.
func (b *Batch) Join() (*Waiter, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sealed {
		if b.pending > 0 {
			return nil, ErrBatchSealed
		}
		b.sealed = false
		b.event = Event{}
		b.done = make(chan struct{})
	}

	b.pending++
	return &Waiter{batch: b, done: b.done, gen: b.generation}, nil
}

// Await blocks until the batch resolves, is reset, or ctx is done.
// ok is false if the wait was abandoned by a Reset or cancelled context
// rather than resolved with a real Event.
func (w *Waiter) Await(ctx context.Context) (ev Event, ok bool) {
	select {
	case <-w.done:
	case <-ctx.Done():
		w.drain()
		return Event{}, false
	}
	ev, ok = w.drain()
	return ev, ok
}

func (w *Waiter) drain() (Event, bool) {
	b := w.batch
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending--
	if b.generation != w.gen {
		return Event{}, false
	}
	return b.event, true
}

// Resolve seals the batch with ev, waking every current waiter. A
// second Resolve on an already-sealed batch is a no-op.
func (b *Batch) Resolve(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sealed {
		return
	}
	b.sealed = true
	b.event = ev
	close(b.done)
}

// Reset abandons the current batch: its generation advances, so any
// still-pending Await calls return ok=false, and a fresh, unsealed
// generation is ready for new joiners. done is only closed here if
// Resolve hasn't already closed it; a batch can reach Reset either
// still open (waiters parked, no Resolve yet) or already sealed (a
// Resolve happened and callers are mid-drain), and closing an
// already-closed channel panics.
func (b *Batch) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.generation++
	if !b.sealed {
		close(b.done)
	}
	b.sealed = false
	b.pending = 0
	b.done = make(chan struct{})
}
