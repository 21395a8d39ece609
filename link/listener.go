/*
 * lc3sim - TCP listener for the framed control/console link.
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

// Package link accepts TCP connections and hands each one, framed and
// multiplexed, to a rpc.Device: one socket carries both the control
// surface and the console keyboard/display passthrough. Grounded on the
// teacher's telnet/listener.go accept loop (same shutdown-channel,
// WaitGroup-drained idiom), stripped of telnet option negotiation, which
// a binary COBS-framed link has no use for.
package link

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/go-lc3/lc3sim/emu/lc3/control"
	"github.com/go-lc3/lc3sim/emu/lc3/rpc"
	"github.com/go-lc3/lc3sim/emu/lc3/transport"
)

// Server accepts connections on one address and services each with its
// own rpc.Device driving the shared Machine.
type Server struct {
	wg       sync.WaitGroup
	listener net.Listener
	shutdown chan struct{}
	machine  *control.Machine
	log      *slog.Logger
}

// Listen opens addr and starts accepting connections against m. Each
// accepted connection gets its own framed+multiplexed transport and its
// own rpc.Device goroutine; all devices drive the same Machine, so only
// one client should issue mutating Control operations at a time in
// practice, though the Machine's locking makes concurrent clients safe.
func Listen(addr string, m *control.Machine, log *slog.Logger) (*Server, error) {
	if log == nil {
		log = slog.Default()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	s := &Server{listener: ln, shutdown: make(chan struct{}), machine: m, log: log}
	s.wg.Add(1)
	go s.acceptLoop()
	return s, nil
}

// Addr returns the listener's bound address.
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.shutdown:
			return
		default:
		}
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return
			default:
				s.log.Warn("link: accept failed", "err", err)
				continue
			}
		}
		s.wg.Add(1)
		go s.serve(conn)
	}
}

func (s *Server) serve(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	framed := transport.New(conn, 4096, s.log)
	mux := transport.NewMultiplexed(framed)
	ch := &rpc.ControlAdapter{M: mux}

	device := rpc.NewDevice(s.machine, ch, s.log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.relayConsole(ctx, mux)

	device.Run(ctx)
}

// relayConsole pumps the machine's display output to the client's I/O
// channel and the client's keystrokes into the Input peripheral, until
// ctx is cancelled.
func (s *Server) relayConsole(ctx context.Context, mux *transport.Multiplexed) {
	ticker := time.NewTicker(2 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r, ok, err := mux.GetIO()
			if err != nil {
				s.log.Warn("link: console read failed", "err", err)
				continue
			}
			if ok {
				s.machine.DeliverInput(byte(r))
			}
			for _, b := range s.machine.TakeOutput() {
				if err := mux.SendIO(rune(b)); err != nil {
					s.log.Warn("link: console write failed", "err", err)
				}
			}
		}
	}
}

// Close stops accepting new connections and waits (up to one second)
// for in-flight ones to finish.
func (s *Server) Close() {
	close(s.shutdown)
	s.listener.Close()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		s.log.Warn("link: timed out waiting for connections to close")
	}
}
