/*
 * lc3sim - Flat LC-3 memory with atomic page commit.
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

// Package memory implements the LC-3's flat 65536-word address space.
// Unlike the S/370 ancestor this is adapted from, there is no key/protect
// byte array: the LC-3 has no storage protection, only the PSR user-mode
// access check the interpreter layers on top of this package.
package memory

import (
	"sync"
	"time"
)

// PageSize is the unit of atomic commit used by the program-load protocol.
const PageSize = 256

// NumWords is the size of the LC-3 address space.
const NumWords = 1 << 16

// Metadata describes the most recently loaded program image.
type Metadata struct {
	ContentHash uint64
	LoadedAt    time.Time
}

// Memory is the simulator's 65536-word store. A single mutex guards page
// commits against concurrent word reads/writes; ordinary fetch/store
// traffic from the interpreter (which runs on a single goroutine) does
// not contend with it in the common case.
type Memory struct {
	mu   sync.RWMutex
	mem  [NumWords]uint16
	meta Metadata
}

// New returns a freshly zeroed Memory.
func New() *Memory {
	return &Memory{}
}

// ReadWord returns the word stored at addr. Never fails: an address
// outside the valid range cannot be constructed since Addr is itself a
// 16-bit value spanning exactly this space.
func (m *Memory) ReadWord(addr uint16) uint16 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mem[addr]
}

// WriteWord stores w at addr.
func (m *Memory) WriteWord(addr uint16, w uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mem[addr] = w
}

// CommitPage atomically replaces page pageIdx (256 words starting at
// pageIdx*256) with page. This is the only path by which an external
// loader may write memory while the interpreter is running: it bypasses
// breakpoints and watchpoints entirely, and is serialized against word
// reads/writes by the same lock.
func (m *Memory) CommitPage(pageIdx uint8, page [PageSize]uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	base := int(pageIdx) * PageSize
	copy(m.mem[base:base+PageSize], page[:])
}

// ReadPage copies out the 256 words of page pageIdx, e.g. for checksum
// verification against a pending load session.
func (m *Memory) ReadPage(pageIdx uint8) [PageSize]uint16 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var page [PageSize]uint16
	base := int(pageIdx) * PageSize
	copy(page[:], m.mem[base:base+PageSize])
	return page
}

// ProgramMetadata returns the metadata recorded for the last committed
// program image.
func (m *Memory) ProgramMetadata() Metadata {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.meta
}

// SetProgramMetadata records metadata for a freshly loaded image.
func (m *Memory) SetProgramMetadata(md Metadata) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meta = md
}

// Reset zeroes the entire address space and clears program metadata.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mem = [NumWords]uint16{}
	m.meta = Metadata{}
}

// Checksum64 computes the load protocol's page checksum: an FNV-1a hash
// over the page's words taken as little-endian byte pairs. Both the
// controller and device must use this exact function so that a checksum
// computed on one end matches a commit performed on the other.
func Checksum64(page [PageSize]uint16) uint64 {
	const (
		offset64 = 14695981039346656037
		prime64  = 1099511628211
	)
	h := uint64(offset64)
	for _, w := range page {
		h ^= uint64(w & 0xFF)
		h *= prime64
		h ^= uint64(w >> 8)
		h *= prime64
	}
	return h
}
