/*
 * lc3sim - Debug category configuration.
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

// Package debugconfig maps the named debug categories a boot file's
// "debug" directive can name onto a single process-wide bitmask that the
// interpreter and device loop consult for selective tracing.
package debugconfig

import (
	"strings"
	"sync/atomic"

	config "github.com/go-lc3/lc3sim/config/configparser"
)

// Category bits. cmd traces Control operations, inst traces each
// executed instruction, data traces memory reads/writes, io traces
// peripheral register accesses, irq traces interrupt/exception/trap
// dispatch, detail turns on the verbose form of whichever of the above
// are already enabled.
const (
	Cmd = 1 << iota
	Inst
	Data
	IO
	IRQ
	Detail
)

var mask atomic.Uint32

var names = map[string]uint32{
	"CMD":    Cmd,
	"INST":   Inst,
	"DATA":   Data,
	"IO":     IO,
	"IRQ":    IRQ,
	"DETAIL": Detail,
}

func init() {
	config.RegisterDirective("debug", setDebug)
}

func setDebug(first config.FirstOption, options []config.Option) error {
	if err := Set(first.Text()); err != nil {
		return err
	}
	for _, opt := range options {
		if err := Set(opt.Name); err != nil {
			return err
		}
		for _, v := range opt.Value {
			if err := Set(*v); err != nil {
				return err
			}
		}
	}
	return nil
}

// Set turns on one named category. Unknown names are rejected so a typo
// in a boot file is caught at load time instead of silently no-op'ing.
func Set(name string) error {
	bit, ok := names[strings.ToUpper(name)]
	if !ok {
		return &unknownCategoryError{name}
	}
	for {
		old := mask.Load()
		if mask.CompareAndSwap(old, old|bit) {
			return nil
		}
	}
}

// Enabled reports whether every bit in want is set in the current mask.
func Enabled(want uint32) bool {
	return mask.Load()&want == want
}

type unknownCategoryError struct{ name string }

func (e *unknownCategoryError) Error() string {
	return "unknown debug category: " + e.name
}
