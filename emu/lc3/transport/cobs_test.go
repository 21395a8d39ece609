package transport

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

import (
	"bytes"
	"testing"
)

func TestCOBSRoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		{1},
		{0},
		{1, 2, 3},
		{0, 0, 0},
		{1, 0, 2, 0, 3},
		bytes.Repeat([]byte{0xAA}, 300),
		bytes.Repeat([]byte{0x01}, 254),
		bytes.Repeat([]byte{0x01}, 255),
	}
	for i, src := range cases {
		enc := EncodeCOBS(src)
		for _, b := range enc {
			if b == 0 {
				t.Fatalf("case %d: encoded stream contains a literal zero", i)
			}
		}
		dec, err := DecodeCOBS(enc)
		if err != nil {
			t.Fatalf("case %d: decode failed: %v", i, err)
		}
		if !bytes.Equal(dec, src) {
			t.Errorf("case %d: got %v want %v", i, dec, src)
		}
	}
}

func TestDecodeCOBSRejectsZeroInBlock(t *testing.T) {
	if _, err := DecodeCOBS([]byte{2, 0}); err != ErrZeroInBlock {
		t.Errorf("got err %v want ErrZeroInBlock", err)
	}
}

func TestDecodeCOBSRejectsTruncatedBlock(t *testing.T) {
	if _, err := DecodeCOBS([]byte{5, 1, 2}); err != ErrZeroInBlock {
		t.Errorf("got err %v want ErrZeroInBlock", err)
	}
}
