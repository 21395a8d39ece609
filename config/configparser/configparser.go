/*
 * lc3sim - Configuration file parser
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

// Package configparser reads the machine boot file: one directive per
// line naming the memory image, which optional peripheral banks are
// present, the transport listen address, and session parameters.
// Directives register themselves from init() functions the same way the
// teacher's device models did, just keyed by directive name instead of
// device model name.
package configparser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
)

// NoValue marks a directive's first argument as absent or non-numeric.
const NoValue uint16 = 0xffff

// Option is one space- or comma-separated argument following a
// directive's first argument.
type Option struct {
	Name     string    // Name of option.
	EqualOpt string    // Value of string after =.
	Value    []*string // Comma-separated values following EqualOpt.
}

// directiveName is the bare word starting a configuration line.
type directiveName struct {
	name string
}

// FirstOption is the directive's first argument: a bank index/address if
// it parses as hex, otherwise just the literal text.
type FirstOption struct {
	value   uint16 // Parsed value if numeric.
	isValue bool   // Whether value is meaningful.
	text    string // Literal text of the argument.
}

// Value returns the parsed numeric first argument, or NoValue.
func (f *FirstOption) Value() uint16 {
	if !f.isValue {
		return NoValue
	}
	return f.value
}

// Text returns the first argument's literal text.
func (f *FirstOption) Text() string { return f.text }

// optionLine is the current line being tokenized.
type optionLine struct {
	line string
	pos  int
}

/* Configuration file format:
 *
 * '#' indicates comment, rest of line is ignored.
 * <line> := <directive> <whitespace> <firstarg> <whitespace> <options>
 * <options> ::= *(<option> *(<whitespace>))
 * <option> ::= <name> ['=' <quoteopt> *(',' *(<whitespace>) <string>)]
 * <quoteopt> ::= <string> | '"' *(<letter> | <whitespace>) '"'
 */

const (
	TypeDirective = 1 + iota // Takes a first argument plus option list.
	TypeOption               // Takes a single first argument, no options.
	TypeSwitch               // Bare flag, no arguments.
)

type directiveDef struct {
	handle func(FirstOption, []Option) error
	ty     int
}

var directives = map[string]directiveDef{}

var lineNumber int

func getDirective(name string) int {
	d, ok := directives[name]
	if !ok {
		return 0
	}
	return d.ty
}

// RegisterDirective registers a directive taking a first argument and a
// trailing option list, e.g. "MEMORY image.bin" or "GPIO b present".
func RegisterDirective(name string, fn func(FirstOption, []Option) error) {
	name = strings.ToUpper(name)
	directives[name] = directiveDef{handle: fn, ty: TypeDirective}
}

// RegisterOption registers a directive taking only a single first
// argument, e.g. "LISTEN :8080".
func RegisterOption(name string, fn func(FirstOption, []Option) error) {
	name = strings.ToUpper(name)
	directives[name] = directiveDef{handle: fn, ty: TypeOption}
}

// RegisterSwitch registers a bare flag directive with no arguments.
func RegisterSwitch(name string, fn func(FirstOption, []Option) error) {
	name = strings.ToUpper(name)
	directives[name] = directiveDef{handle: fn, ty: TypeSwitch}
}

// LoadConfigFile reads and applies every directive line in name.
func LoadConfigFile(name string) error {
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()

	lineNumber = 0
	reader := bufio.NewReader(file)
	for {
		line := optionLine{}
		line.line, err = reader.ReadString('\n')
		lineNumber++
		if len(line.line) == 0 && err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		if err := line.parseLine(); err != nil {
			return err
		}
	}
	return nil
}

func (line *optionLine) parseLine() error {
	name := line.parseDirective()
	if name == "" {
		return nil
	}

	switch getDirective(name) {
	case TypeDirective:
		first := line.parseFirst()
		if first == nil {
			return fmt.Errorf("directive %s requires an argument, line %d", name, lineNumber)
		}
		options, err := line.parseOptions()
		if err != nil {
			return err
		}
		return directives[name].handle(*first, options)

	case TypeOption:
		first := line.parseFirst()
		line.skipSpace()
		if first == nil || !line.isEOL() {
			return fmt.Errorf("directive %s takes exactly one argument, line %d", name, lineNumber)
		}
		return directives[name].handle(*first, nil)

	case TypeSwitch:
		line.skipSpace()
		if !line.isEOL() {
			return fmt.Errorf("switch directive %s takes no arguments, line %d", name, lineNumber)
		}
		return directives[name].handle(FirstOption{}, nil)

	case 0:
		return fmt.Errorf("unknown directive %s, line %d", name, lineNumber)
	}
	return nil
}

func (line *optionLine) skipSpace() {
	for line.pos < len(line.line) && unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
}

func (line *optionLine) isEOL() bool {
	return line.pos >= len(line.line) || line.line[line.pos] == '#'
}

func (line *optionLine) getNext(inQuote bool) byte {
	line.pos++
	if line.isEOL() {
		return 0
	}
	by := line.line[line.pos]
	if unicode.IsLetter(rune(by)) || unicode.IsNumber(rune(by)) || inQuote {
		return by
	}
	return 0
}

func (line *optionLine) getPeek() byte {
	if (line.pos + 1) >= len(line.line) {
		return 0
	}
	return line.line[line.pos+1]
}

func (line *optionLine) parseDirective() string {
	line.skipSpace()
	if line.isEOL() {
		return ""
	}

	name := ""
	for !line.isEOL() {
		by := line.line[line.pos]
		if unicode.IsLetter(rune(by)) || unicode.IsNumber(rune(by)) {
			name += string(by)
			line.pos++
			continue
		}
		break
	}
	return strings.ToUpper(name)
}

func (line *optionLine) parseFirst() *FirstOption {
	line.skipSpace()
	if line.isEOL() {
		return nil
	}

	text := ""
	for !line.isEOL() {
		by := line.line[line.pos]
		if unicode.IsSpace(rune(by)) {
			break
		}
		text += string(by)
		line.pos++
	}

	opt := FirstOption{text: text}
	if v, err := strconv.ParseUint(text, 16, 16); err == nil {
		opt.value = uint16(v)
		opt.isValue = true
	}
	return &opt
}

func (line *optionLine) parseQuoteString() (string, bool) {
	inQuote := false
	value := ""

	if line.getPeek() == '"' {
		inQuote = true
		_ = line.getNext(true)
	}

	for {
		by := line.getNext(inQuote)
		if by == '"' && inQuote {
			by = line.getNext(inQuote)
			if by != '"' {
				return value, true
			}
		}

		space := unicode.IsSpace(rune(by))
		if !inQuote && (space || by == 0 || by == ',') {
			return value, true
		}

		value += string(by)
		if line.isEOL() {
			return value, !inQuote
		}
	}
}

func (line *optionLine) getName() (string, error) {
	if line.isEOL() {
		return "", nil
	}

	by := line.line[line.pos]
	if !unicode.IsLetter(rune(by)) {
		return "", fmt.Errorf("invalid option at line %d [%d]", lineNumber, line.pos)
	}

	value := ""
	for {
		value += string(by)
		by = line.getNext(false)
		if by == 0 {
			break
		}
	}
	return value, nil
}

func (line *optionLine) parseOption() (*Option, error) {
	line.skipSpace()

	value, err := line.getName()
	if value == "" {
		return nil, err
	}

	option := Option{Name: value}
	if line.isEOL() {
		return &option, nil
	}

	if line.line[line.pos] == '=' {
		v, ok := line.parseQuoteString()
		if !ok {
			return nil, fmt.Errorf("invalid quoted string at line %d [%d]", lineNumber, line.pos)
		}
		option.EqualOpt = v
	}

	line.skipSpace()
	for !line.isEOL() && line.line[line.pos] == ',' {
		line.pos++
		line.skipSpace()
		v, err := line.getName()
		if err != nil {
			return nil, err
		}
		if v != "" {
			option.Value = append(option.Value, &v)
		}
		line.skipSpace()
	}

	return &option, nil
}

func (line *optionLine) parseOptions() ([]Option, error) {
	options := []Option{}
	for {
		option, err := line.parseOption()
		if err != nil {
			return nil, err
		}
		if option == nil {
			break
		}
		options = append(options, *option)
	}
	return options, nil
}
