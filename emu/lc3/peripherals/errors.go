/*
 * lc3sim - Peripheral error kinds and handling strategy.
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

package peripherals

import "fmt"

// Bank names one of the three GPIO banks; B and C are optional.
type Bank uint8

const (
	BankA Bank = iota
	BankB
	BankC
)

func (b Bank) String() string {
	return [...]string{"A", "B", "C"}[b]
}

// Kind distinguishes the broad category of peripheral error.
type Kind uint8

const (
	KindGpioWrite Kind = iota
	KindGpioRead
	KindGpioMisc
	KindAdcRead
	KindAdcMisc
	KindInput
	KindOutput
	KindOptionalNotPresent
	KindSystemStackOverflow
)

// Error is the Go rendering of the original's Error enum: it carries
// enough context (bank, pin) for a human-facing Display, and a Kind a
// caller can switch on to decide an ErrorHandlingStrategy.
type Error struct {
	Kind Kind
	Bank Bank
	Pin  int
	Msg  string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindGpioWrite:
		return fmt.Sprintf("error writing to GPIO %s.%d: %s", e.Bank, e.Pin, e.Msg)
	case KindGpioRead:
		return fmt.Sprintf("error reading from GPIO %s.%d: %s", e.Bank, e.Pin, e.Msg)
	case KindGpioMisc:
		return fmt.Sprintf("GPIO error: %s", e.Msg)
	case KindAdcRead:
		return fmt.Sprintf("error reading ADC pin %d: %s", e.Pin, e.Msg)
	case KindAdcMisc:
		return fmt.Sprintf("ADC error: %s", e.Msg)
	case KindInput:
		return fmt.Sprintf("input peripheral error: %s", e.Msg)
	case KindOutput:
		return fmt.Sprintf("output peripheral error: %s", e.Msg)
	case KindOptionalNotPresent:
		return fmt.Sprintf("attempted to use optional peripheral %s which is not present", e.Bank)
	case KindSystemStackOverflow:
		return "overflowed system stack"
	default:
		return e.Msg
	}
}

// Strategy describes how the interpreter should react to a peripheral
// Error encountered while servicing an MMIO access, mirroring the
// original ErrorHandlingStrategy enum.
type Strategy uint8

const (
	StrategyDefaultValue Strategy = iota
	StrategyWarn
	StrategyFireException
)

// Resolve maps an Error to the strategy the MMIO façade should apply,
// along with a default value (only meaningful for StrategyDefaultValue)
// and an exception vector (only meaningful for StrategyFireException).
func Resolve(err *Error) (strategy Strategy, defaultValue uint16, vector uint8) {
	switch err.Kind {
	case KindGpioRead:
		return StrategyDefaultValue, 0, 0
	case KindGpioWrite, KindGpioMisc:
		return StrategyWarn, 0, 0
	case KindAdcRead:
		return StrategyDefaultValue, 0, 0
	case KindAdcMisc:
		return StrategyWarn, 0, 0
	case KindInput, KindOutput:
		return StrategyWarn, 0, 0
	case KindOptionalNotPresent:
		return StrategyWarn, 0, 0
	case KindSystemStackOverflow:
		return StrategyFireException, 0, 0x02
	default:
		return StrategyWarn, 0, 0
	}
}
