/*
 * lc3sim - Framed byte transport over an io.ReadWriter.
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

package transport

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/go-lc3/lc3sim/emu/lc3/fifo"
)

// Sentinel is the end-of-message byte: COBS guarantees it never appears
// inside an encoded payload.
const Sentinel = 0x00

// ErrFifoOverflow is logged (not returned) when the receive FIFO fills
// before a sentinel arrives: framing realigns on the next sentinel and
// whatever partial message was buffered is discarded.
var ErrFifoOverflow = errors.New("transport: receive fifo overflowed before sentinel")

// Transport moves whole framed messages in both directions over an
// unreliable byte link.
type Transport interface {
	// Send encodes and pushes one whole logical message.
	Send(msg []byte) error
	// Get returns one framed message if one is fully buffered, nil
	// otherwise. It never blocks.
	Get() ([]byte, error)
	// BlockingGet blocks until one message is available or a
	// transport-level error occurs.
	BlockingGet() ([]byte, error)
	// NumGetErrors is a monotonic count of decode/read failures, for
	// observability.
	NumGetErrors() uint64
}

// ByteStream is the minimal duplex byte-stream contract a Transport is
// built over: a real serial port, a net.Conn, or an in-memory pipe.
type ByteStream interface {
	io.Reader
	io.Writer
}

// FramedTransport implements Transport with zero-sentinel COBS framing
// over any ByteStream. Reads accumulate into a bounded FIFO; hitting the
// FIFO's capacity before a sentinel logs an error and keeps consuming
// bytes so the stream realigns on the next sentinel rather than wedging
// forever.
type FramedTransport struct {
	stream ByteStream
	log    *slog.Logger

	mu    sync.Mutex
	inbuf *fifo.Fifo

	readBuf  [1]byte
	getErrs  atomic.Uint64
	overflow bool
}

// New wraps stream with COBS/zero-sentinel framing. capacity bounds the
// receive FIFO; pass 0 for fifo.DefaultCapacity.
func New(stream ByteStream, capacity int, log *slog.Logger) *FramedTransport {
	if log == nil {
		log = slog.Default()
	}
	return &FramedTransport{stream: stream, log: log, inbuf: fifo.New(capacity)}
}

// Send COBS-encodes msg and appends the sentinel.
func (t *FramedTransport) Send(msg []byte) error {
	encoded := EncodeCOBS(msg)
	encoded = append(encoded, Sentinel)
	_, err := t.stream.Write(encoded)
	return err
}

// Get reads at most one byte from the underlying ByteStream per call and
// returns a decoded message if that byte was the sentinel completing one.
func (t *FramedTransport) Get() ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pollLocked()
}

// BlockingGet reads and accumulates until a full message is decoded or
// the underlying stream errors.
func (t *FramedTransport) BlockingGet() ([]byte, error) {
	for {
		t.mu.Lock()
		msg, err := t.readOneLocked()
		t.mu.Unlock()
		if msg != nil || err != nil {
			return msg, err
		}
	}
}

func (t *FramedTransport) NumGetErrors() uint64 { return t.getErrs.Load() }

// pollLocked consumes exactly the bytes already queued by the stream
// without blocking on a read that would have nothing to return; since
// io.Reader has no "available now" query, callers that truly need
// non-blocking semantics should wrap stream in a ByteStream whose Read
// itself never blocks (e.g. a net.Conn with a zero read deadline), which
// is how the device loop uses this type.
func (t *FramedTransport) pollLocked() ([]byte, error) {
	n, err := t.stream.Read(t.readBuf[:])
	if n == 0 {
		return nil, err
	}
	return t.consumeLocked(t.readBuf[0]), err
}

func (t *FramedTransport) readOneLocked() ([]byte, error) {
	n, err := t.stream.Read(t.readBuf[:])
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return t.consumeLocked(t.readBuf[0]), nil
}

// consumeLocked feeds one raw byte through the FIFO/sentinel state
// machine, returning a decoded message when b completes one.
func (t *FramedTransport) consumeLocked(b byte) []byte {
	if b != Sentinel {
		if !t.inbuf.Push(b) {
			if !t.overflow {
				t.log.Error(ErrFifoOverflow.Error())
				t.overflow = true
			}
			t.getErrs.Add(1)
		}
		return nil
	}

	raw := t.inbuf.Swap()
	overflowed := t.overflow
	t.overflow = false
	if overflowed {
		// The buffered bytes are a realigned partial frame; let the
		// caller's decode fail and retry rather than returning them.
		return nil
	}
	if len(raw) == 0 {
		return nil
	}
	msg, err := DecodeCOBS(raw)
	if err != nil {
		t.getErrs.Add(1)
		t.log.Error("cobs decode failed", "err", err)
		return nil
	}
	return msg
}
