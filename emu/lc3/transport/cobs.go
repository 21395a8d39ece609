/*
 * lc3sim - Consistent Overhead Byte Stuffing framing.
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

// Package transport implements the zero-sentinel COBS byte-stream
// framing used between an RPC controller and device, the 'C'/'I'
// multiplexed variant that shares a link with console I/O, and the
// concrete UART-style transports built on an io.ReadWriter.
package transport

import "errors"

// ErrZeroInBlock is returned by decode when a stuffed block's declared
// length would have to include a literal zero byte, which cannot happen
// in a well-formed COBS stream.
var ErrZeroInBlock = errors.New("cobs: invalid encoding")

// EncodeCOBS returns src encoded so the only zero byte in the result is
// the caller-appended end-of-message sentinel: every run of non-zero
// bytes (capped at 254) is prefixed with a length byte one greater than
// its size, and a run that hits the cap is immediately followed by
// another block even if the next source byte isn't zero.
func EncodeCOBS(src []byte) []byte {
	out := make([]byte, 0, len(src)+len(src)/254+2)
	codeIdx := 0
	out = append(out, 0) // placeholder for the first block's length
	code := byte(1)

	for _, b := range src {
		if b != 0 {
			out = append(out, b)
			code++
		}
		if b == 0 || code == 0xFF {
			out[codeIdx] = code
			codeIdx = len(out)
			out = append(out, 0) // placeholder for the next block
			code = 1
		}
	}
	out[codeIdx] = code
	return out
}

// DecodeCOBS reverses EncodeCOBS. src must not include the trailing
// sentinel byte.
func DecodeCOBS(src []byte) ([]byte, error) {
	out := make([]byte, 0, len(src))
	i := 0
	for i < len(src) {
		code := int(src[i])
		if code == 0 {
			return nil, ErrZeroInBlock
		}
		i++
		blockLen := code - 1
		if i+blockLen > len(src) {
			return nil, ErrZeroInBlock
		}
		for _, b := range src[i : i+blockLen] {
			if b == 0 {
				return nil, ErrZeroInBlock
			}
		}
		out = append(out, src[i:i+blockLen]...)
		i += blockLen
		if code != 0xFF && i < len(src) {
			out = append(out, 0)
		}
	}
	return out, nil
}
