/*
 * lc3sim - Configuration file parser test set.
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

package configparser

import (
	"testing"
)

var testOptions []Option
var testFirst uint16
var testText string
var testType string

func resetTest() {
	testOptions = []Option{}
	testFirst = NoValue
	testText = "error"
	testType = ""
}

func cleanUpConfig() {
	directives = map[string]directiveDef{}
	resetTest()
}

func recordDirective(kind string) func(FirstOption, []Option) error {
	return func(first FirstOption, options []Option) error {
		testFirst = first.Value()
		testText = first.Text()
		testType = kind
		testOptions = options
		return nil
	}
}

func TestRegisterDirective(t *testing.T) {
	cleanUpConfig()

	RegisterDirective("testdev", recordDirective("directive"))

	line := optionLine{line: "testdev 0100"}
	if err := line.parseLine(); err != nil {
		t.Errorf("Unable to parse registered directive: %v", err)
	}
	if testFirst != 0x100 {
		t.Errorf("first argument not parsed: %04x", testFirst)
	}

	line = optionLine{line: "unknown 0100"}
	if err := line.parseLine(); err == nil {
		t.Errorf("parsing unknown directive succeeded")
	}
}

func TestRegisterSwitch(t *testing.T) {
	cleanUpConfig()

	RegisterSwitch("testswitch", recordDirective("switch"))

	line := optionLine{line: "unknown"}
	if err := line.parseLine(); err == nil {
		t.Errorf("parsing unknown switch succeeded")
	}

	resetTest()
	line = optionLine{line: "testswitch"}
	if err := line.parseLine(); err != nil {
		t.Errorf("unable to parse switch: %v", err)
	}
	if testType != "switch" {
		t.Errorf("switch directive not invoked")
	}
	if len(testOptions) != 0 {
		t.Errorf("switch directive given options")
	}

	resetTest()
	line = optionLine{line: "testswitch extra"}
	if err := line.parseLine(); err == nil {
		t.Errorf("switch accepted an argument")
	}
}

func TestRegisterOption(t *testing.T) {
	cleanUpConfig()

	RegisterOption("testoption", recordDirective("option"))

	line := optionLine{line: "unknown test"}
	if err := line.parseLine(); err == nil {
		t.Errorf("parsing unknown option succeeded")
	}

	resetTest()
	line = optionLine{line: "testoption test"}
	if err := line.parseLine(); err != nil {
		t.Errorf("unable to parse option: %v", err)
	}
	if testFirst != NoValue {
		t.Errorf("non-numeric first argument parsed as number: %04x", testFirst)
	}
	if testText != "test" {
		t.Errorf("option text not captured: %q", testText)
	}
}

func TestParseLineModelOptions(t *testing.T) {
	cleanUpConfig()
	RegisterDirective("testdevice", recordDirective("directive"))

	resetTest()
	line := optionLine{line: "testDevice 0100   single "}
	if err := line.parseLine(); err != nil {
		t.Errorf("ParseLine failed to parse address: %v", err)
	}
	if testFirst != 0x100 {
		t.Errorf("Model set address to %04x", testFirst)
	}
	if len(testOptions) != 1 || testOptions[0].Name != "single" {
		t.Errorf("ParseLine did not give correct option: %+v", testOptions)
	}

	resetTest()
	line = optionLine{line: "testDevice 0100   single second  "}
	if err := line.parseLine(); err != nil {
		t.Errorf("ParseLine failed to parse address: %v", err)
	}
	if len(testOptions) != 2 || testOptions[1].Name != "second" {
		t.Errorf("ParseLine did not give correct second option: %+v", testOptions)
	}
}

func TestParseLineModelOptionsComma(t *testing.T) {
	cleanUpConfig()
	RegisterDirective("testdevice", recordDirective("directive"))

	line := optionLine{line: "testDevice 0101   test, second, third # comment"}
	if err := line.parseLine(); err != nil {
		t.Errorf("ParseLine failed to parse address: %v", err)
	}
	if testFirst != 0x101 {
		t.Errorf("Model set address to %04x", testFirst)
	}
	if len(testOptions) != 1 || testOptions[0].Name != "test" {
		t.Fatalf("ParseLine did not give correct option: %+v", testOptions)
	}
	if len(testOptions[0].Value) != 2 || *testOptions[0].Value[0] != "second" || *testOptions[0].Value[1] != "third" {
		t.Errorf("comma values not correct: %+v", testOptions[0].Value)
	}
}

func TestParseLineModelOptionsEqual(t *testing.T) {
	cleanUpConfig()
	RegisterDirective("testdevice", recordDirective("directive"))

	line := optionLine{line: "testDevice 0100   equal=value   "}
	if err := line.parseLine(); err != nil {
		t.Errorf("ParseLine failed to parse address: %v", err)
	}
	if len(testOptions) != 1 || testOptions[0].Name != "equal" || testOptions[0].EqualOpt != "value" {
		t.Errorf("ParseLine did not give = value: %+v", testOptions)
	}
}

func TestParseLineModelOptionsQuote(t *testing.T) {
	cleanUpConfig()
	RegisterDirective("testdevice", recordDirective("directive"))

	line := optionLine{line: `testDevice 0100   param="Value Second"  `}
	if err := line.parseLine(); err != nil {
		t.Errorf("ParseLine failed to parse address: %v", err)
	}
	if len(testOptions) != 1 || testOptions[0].EqualOpt != "Value Second" {
		t.Errorf("ParseLine did not give quoted = value: %+v", testOptions)
	}
}
