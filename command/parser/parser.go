/*
 * lc3sim - Command parser.
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

// Package parser implements the operator console's command language: a
// small set of commands that map directly onto control.Machine
// operations (registers, memory, breakpoints, watchpoints, step,
// continue, reset), the human-operator analogue of the rpc.Controller.
package parser

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-lc3/lc3sim/emu/lc3/control"
	"github.com/go-lc3/lc3sim/emu/lc3/isa"
)

type cmd struct {
	name    string
	min     int
	process func(*cmdLine, *control.Machine) (bool, error)
}

type cmdLine struct {
	line string
	pos  int
}

var cmdList = []cmd{
	{name: "registers", min: 3, process: registers},
	{name: "set", min: 3, process: setReg},
	{name: "memory", min: 3, process: memory},
	{name: "deposit", min: 3, process: deposit},
	{name: "break", min: 3, process: breakCmd},
	{name: "unbreak", min: 5, process: unbreak},
	{name: "watch", min: 3, process: watch},
	{name: "unwatch", min: 5, process: unwatch},
	{name: "depth", min: 3, process: depth},
	{name: "step", min: 2, process: step},
	{name: "continue", min: 1, process: cont},
	{name: "pause", min: 3, process: pause},
	{name: "reset", min: 3, process: reset},
	{name: "info", min: 2, process: info},
	{name: "callstack", min: 4, process: callstack},
	{name: "quit", min: 4, process: quit},
}

// ProcessCommand executes one command line against m. The returned bool
// is true when the console should exit.
func ProcessCommand(commandLine string, m *control.Machine) (bool, error) {
	line := cmdLine{line: commandLine}
	name := line.getWord()

	match := matchList(name)
	if len(match) == 0 {
		return false, errors.New("command not found: " + name)
	}
	if len(match) > 1 {
		return false, errors.New("ambiguous command: " + name)
	}
	return match[0].process(&line, m)
}

// CompleteCmd returns command names matching the line typed so far, for
// liner's tab completion.
func CompleteCmd(commandLine string) []string {
	line := cmdLine{line: commandLine}
	name := line.getWord()
	if !line.isEOL() {
		return nil
	}
	match := matchList(name)
	out := make([]string, len(match))
	for i, m := range match {
		out[i] = m.name
	}
	return out
}

func matchCommand(m cmd, name string) bool {
	if len(name) > len(m.name) || len(name) < m.min {
		return false
	}
	return m.name[:len(name)] == name
}

func matchList(name string) []cmd {
	if name == "" {
		return nil
	}
	var match []cmd
	for _, m := range cmdList {
		if matchCommand(m, name) {
			match = append(match, m)
		}
	}
	return match
}

func (line *cmdLine) skipSpace() {
	for line.pos < len(line.line) && unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
}

func (line *cmdLine) isEOL() bool {
	return line.pos >= len(line.line) || line.line[line.pos] == '#'
}

func (line *cmdLine) getWord() string {
	line.skipSpace()
	start := line.pos
	for !line.isEOL() && !unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
	return strings.ToLower(line.line[start:line.pos])
}

func parseWord(addr string) (isa.Word, error) {
	text, base := addr, 0
	if strings.HasPrefix(text, "x") {
		text, base = text[1:], 16
	}
	v, err := strconv.ParseUint(text, base, 16)
	if err != nil {
		return 0, fmt.Errorf("not a number: %s", addr)
	}
	return isa.Word(v), nil
}

func parseReg(name string) (isa.Reg, error) {
	if len(name) != 2 || name[0] != 'r' || name[1] < '0' || name[1] > '7' {
		return 0, fmt.Errorf("not a register: %s", name)
	}
	return isa.Reg(name[1] - '0'), nil
}

func registers(_ *cmdLine, m *control.Machine) (bool, error) {
	regs, psr, pc := m.GetRegistersPSRAndPC()
	for i, r := range regs {
		fmt.Printf("R%d: x%04X\n", i, r)
	}
	fmt.Printf("PSR: x%04X  PC: x%04X\n", psr, pc)
	return false, nil
}

func setReg(line *cmdLine, m *control.Machine) (bool, error) {
	name := line.getWord()
	value := line.getWord()
	w, err := parseWord(value)
	if err != nil {
		return false, err
	}
	if name == "pc" {
		m.SetPC(w)
		return false, nil
	}
	r, err := parseReg(name)
	if err != nil {
		return false, err
	}
	m.SetRegister(r, w)
	return false, nil
}

func memory(line *cmdLine, m *control.Machine) (bool, error) {
	addr, err := parseWord(line.getWord())
	if err != nil {
		return false, err
	}
	count := 1
	if n := line.getWord(); n != "" {
		c, err := strconv.Atoi(n)
		if err != nil {
			return false, fmt.Errorf("not a count: %s", n)
		}
		count = c
	}
	for i := 0; i < count; i++ {
		fmt.Printf("x%04X: x%04X\n", addr, m.ReadWord(addr))
		addr++
	}
	return false, nil
}

func deposit(line *cmdLine, m *control.Machine) (bool, error) {
	addr, err := parseWord(line.getWord())
	if err != nil {
		return false, err
	}
	w, err := parseWord(line.getWord())
	if err != nil {
		return false, err
	}
	m.WriteWord(addr, w)
	return false, nil
}

func breakCmd(line *cmdLine, m *control.Machine) (bool, error) {
	addr, err := parseWord(line.getWord())
	if err != nil {
		return false, err
	}
	idx, err := m.SetBreakpoint(addr)
	if err != nil {
		return false, err
	}
	fmt.Printf("breakpoint %d set at x%04X\n", idx, addr)
	return false, nil
}

func unbreak(line *cmdLine, m *control.Machine) (bool, error) {
	idx, err := strconv.Atoi(line.getWord())
	if err != nil {
		return false, fmt.Errorf("not an index: %v", err)
	}
	return false, m.UnsetBreakpoint(idx)
}

func watch(line *cmdLine, m *control.Machine) (bool, error) {
	addr, err := parseWord(line.getWord())
	if err != nil {
		return false, err
	}
	idx, err := m.SetMemoryWatchpoint(addr)
	if err != nil {
		return false, err
	}
	fmt.Printf("watchpoint %d set at x%04X\n", idx, addr)
	return false, nil
}

func unwatch(line *cmdLine, m *control.Machine) (bool, error) {
	idx, err := strconv.Atoi(line.getWord())
	if err != nil {
		return false, fmt.Errorf("not an index: %v", err)
	}
	return false, m.UnsetMemoryWatchpoint(idx)
}

func depth(line *cmdLine, m *control.Machine) (bool, error) {
	word := line.getWord()
	if word == "" {
		m.ClearDepthCondition()
		return false, nil
	}
	target, err := strconv.Atoi(word)
	if err != nil {
		return false, fmt.Errorf("not a depth: %v", err)
	}
	m.SetDepthCondition(target)
	return false, nil
}

func step(_ *cmdLine, m *control.Machine) (bool, error) {
	ev, state := m.Step()
	fmt.Printf("state: %v\n", state)
	if ev != nil {
		fmt.Printf("event: %v\n", *ev)
	}
	return false, nil
}

func cont(_ *cmdLine, m *control.Machine) (bool, error) {
	go func() {
		ev, state, err := m.RunUntilEvent(context.Background())
		if err != nil {
			return
		}
		fmt.Printf("\nstopped: %v (state %v)\n", ev, state)
	}()
	return false, nil
}

func pause(_ *cmdLine, m *control.Machine) (bool, error) {
	m.Pause()
	return false, nil
}

func reset(_ *cmdLine, m *control.Machine) (bool, error) {
	m.Reset()
	return false, nil
}

func info(_ *cmdLine, m *control.Machine) (bool, error) {
	in := m.GetInfo()
	fmt.Printf("%+v\n", in)
	return false, nil
}

func callstack(_ *cmdLine, m *control.Machine) (bool, error) {
	depth := m.GetCallStackDepth()
	frames := m.GetCallStack()
	for i := 0; i < depth && i < len(frames); i++ {
		f := frames[i]
		if !f.OK {
			continue
		}
		fmt.Printf("#%d x%04X mode=%v\n", i, f.Addr, f.Mode)
	}
	return false, nil
}

func quit(_ *cmdLine, _ *control.Machine) (bool, error) {
	return true, nil
}
