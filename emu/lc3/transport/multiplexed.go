/*
 * lc3sim - Multiplexed control/IO transport.
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
	"sync"
	"unicode/utf8"
)

// Channel tags which logical stream a multiplexed frame belongs to.
type Channel byte

const (
	ChannelControl Channel = 'C'
	ChannelIO      Channel = 'I'
)

// ErrUnknownChannel is returned when a frame's leading tag byte is
// neither 'C' nor 'I'.
var ErrUnknownChannel = errors.New("transport: unrecognized multiplex channel tag")

// ErrBadIOFrame is returned when an 'I'-tagged frame doesn't decode as
// exactly one UTF-8 rune.
var ErrBadIOFrame = errors.New("transport: malformed multiplexed I/O frame")

// Multiplexed layers a 1-byte channel tag ('C' or 'I') in front of every
// frame carried by an inner Transport, letting one serial link carry
// both the control RPC and console I/O (keyboard/display bytes) without
// separate sockets. Frames for the channel not currently being drained
// are queued so a caller polling only one side doesn't lose the other's
// traffic.
type Multiplexed struct {
	inner Transport

	mu      sync.Mutex
	pending map[Channel][][]byte
}

// NewMultiplexed wraps inner, which must already do its own framing
// (e.g. a FramedTransport).
func NewMultiplexed(inner Transport) *Multiplexed {
	return &Multiplexed{inner: inner, pending: map[Channel][][]byte{}}
}

// SendControl sends payload tagged as a control-channel message.
func (m *Multiplexed) SendControl(payload []byte) error { return m.send(ChannelControl, payload) }

// SendIO sends a single rune tagged as a console I/O message.
func (m *Multiplexed) SendIO(r rune) error {
	buf := make([]byte, utf8.UTFMax)
	n := utf8.EncodeRune(buf, r)
	return m.send(ChannelIO, buf[:n])
}

func (m *Multiplexed) send(ch Channel, payload []byte) error {
	framed := make([]byte, 0, len(payload)+1)
	framed = append(framed, byte(ch))
	framed = append(framed, payload...)
	return m.inner.Send(framed)
}

// GetControl returns the next queued control-channel payload, pulling
// and routing fresh frames from the inner transport until a control
// frame turns up or none is available.
func (m *Multiplexed) GetControl() ([]byte, error) { return m.get(ChannelControl) }

// GetIO returns the next queued I/O-channel rune, or ok=false if none is
// available yet.
func (m *Multiplexed) GetIO() (rune, bool, error) {
	payload, err := m.get(ChannelIO)
	if err != nil || payload == nil {
		return 0, false, err
	}
	r, n := utf8.DecodeRune(payload)
	if (r == utf8.RuneError && n <= 1) || n != len(payload) {
		return 0, false, ErrBadIOFrame
	}
	return r, true, nil
}

func (m *Multiplexed) get(want Channel) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if q := m.pending[want]; len(q) > 0 {
		payload := q[0]
		m.pending[want] = q[1:]
		return payload, nil
	}

	for {
		frame, err := m.inner.Get()
		if err != nil {
			return nil, err
		}
		if frame == nil {
			return nil, nil
		}
		ch, payload, err := demux(frame)
		if err != nil {
			continue // malformed tag: drop and keep polling
		}
		if ch == want {
			return payload, nil
		}
		m.pending[ch] = append(m.pending[ch], payload)
	}
}

func demux(frame []byte) (Channel, []byte, error) {
	if len(frame) == 0 {
		return 0, nil, ErrUnknownChannel
	}
	ch := Channel(frame[0])
	if ch != ChannelControl && ch != ChannelIO {
		return 0, nil, ErrUnknownChannel
	}
	return ch, frame[1:], nil
}
