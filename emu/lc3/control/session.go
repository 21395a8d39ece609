/*
 * lc3sim - Chunked program-load session protocol.
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
	"errors"
	"fmt"

	"github.com/go-lc3/lc3sim/emu/lc3/memory"
)

// ChunkSizeInWords is the implementation's chosen chunk granularity;
// the protocol only requires that chunks align to it and never cross a
// page boundary.
const ChunkSizeInWords = 8

var (
	ErrUnfinishedSessionExists    = errors.New("an unfinished load session already exists")
	ErrInvalidPage                = errors.New("invalid page index")
	ErrNoCurrentSession           = errors.New("no active load session")
	ErrSessionMismatch            = errors.New("session token does not match the active session")
	ErrWrongPage                  = errors.New("token's page does not match the active session")
	ErrChunkCrossesPageBoundary   = errors.New("chunk offset/length would cross a page boundary")
)

// ChecksumMismatchError is returned by FinishPageWrite when the
// assembled page's checksum doesn't match the one declared at
// StartPageWrite time.
type ChecksumMismatchError struct {
	Page     uint8
	Given    uint64
	Computed uint64
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch for page 0x%02X: given=%d computed=%d", e.Page, e.Given, e.Computed)
}

// SessionToken binds subsequent chunk/finish calls to the session
// created by a specific StartPageWrite. Its fields are exported and can
// be filled in directly (the RPC decoder does so); SendPageChunk and
// FinishPageWrite reject a token whose SessionID or Page does not match
// the active session.
type SessionToken struct {
	Page      uint8
	SessionID uint64
}

// OffsetToken additionally carries a word offset within the page. It is
// normally derived from a SessionToken via Offset, but like SessionToken
// it can also be built directly from its exported fields.
type OffsetToken struct {
	SessionToken
	WordOffset int
}

// Offset derives an OffsetToken for a chunk starting at wordOffset
// within this session's page.
func (t SessionToken) Offset(wordOffset int) OffsetToken {
	return OffsetToken{SessionToken: t, WordOffset: wordOffset}
}

type loadSession struct {
	active           bool
	page             uint8
	sessionID        uint64
	expectedChecksum uint64
	buf              [memory.PageSize]uint16
}

// StartPageWrite begins a load session for pageIdx, remembering
// expectedChecksum for FinishPageWrite to verify against. Fails if a
// prior session was never finished.
func (m *Machine) StartPageWrite(pageIdx uint8, expectedChecksum uint64) (SessionToken, error) {
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()

	if m.session.active {
		return SessionToken{}, ErrUnfinishedSessionExists
	}

	m.sessionCounter++
	m.session = loadSession{
		active:           true,
		page:             pageIdx,
		sessionID:        m.sessionCounter,
		expectedChecksum: expectedChecksum,
	}
	return SessionToken{Page: pageIdx, SessionID: m.session.sessionID}, nil
}

// SendPageChunk writes chunk into the active session's buffer at the
// offset carried by tok.
func (m *Machine) SendPageChunk(tok OffsetToken, chunk []uint16) error {
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()

	if !m.session.active {
		return ErrNoCurrentSession
	}
	if tok.SessionID != m.session.sessionID {
		return ErrSessionMismatch
	}
	if tok.Page != m.session.page {
		return ErrWrongPage
	}
	if tok.WordOffset < 0 || tok.WordOffset+len(chunk) > memory.PageSize {
		return ErrChunkCrossesPageBoundary
	}

	copy(m.session.buf[tok.WordOffset:tok.WordOffset+len(chunk)], chunk)
	return nil
}

// FinishPageWrite verifies the assembled page's checksum and, on match,
// atomically commits it to Memory via Memory.CommitPage before clearing
// the session. On mismatch the session is cleared and the caller must
// retry the whole page.
func (m *Machine) FinishPageWrite(tok SessionToken) error {
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()

	if !m.session.active {
		return ErrNoCurrentSession
	}
	if tok.SessionID != m.session.sessionID {
		return ErrSessionMismatch
	}
	if tok.Page != m.session.page {
		return ErrWrongPage
	}

	computed := memory.Checksum64(m.session.buf)
	page, expected, buf := m.session.page, m.session.expectedChecksum, m.session.buf
	m.session = loadSession{}

	if computed != expected {
		return &ChecksumMismatchError{Page: page, Given: expected, Computed: computed}
	}

	m.interp.Memory.CommitPage(page, buf)
	return nil
}
