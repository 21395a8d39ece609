/*
 * lc3sim - GPIO peripheral bank.
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

import "sync"

// PinState is the mode a GPIO pin is configured in.
type PinState uint8

const (
	PinDisabled PinState = iota
	PinOutput
	PinInput
	PinInterrupt
)

const GpioPinsPerBank = 8

type gpioPin struct {
	state PinState
	value bool // last written (Output) or last sampled (Input/Interrupt) value
}

// GpioBank models one 8-pin GPIO bank. Bank A is always present; B and C
// are constructed with present=false when the machine configuration
// leaves them out, per the original's compile-time-optional peripheral
// set — here a runtime flag stands in for that, since Go has no
// const-generic witness types (see DESIGN.md).
type GpioBank struct {
	mu      sync.RWMutex
	present bool
	bank    Bank
	pins    [GpioPinsPerBank]gpioPin
	flags   *InterruptFlags
	sources [GpioPinsPerBank]InterruptSource
}

// NewGpioBank constructs a bank. sources supplies the InterruptFlags
// source slot backing each pin's interrupt-enable/pending state; pass
// nil flags (sources are then ignored) for banks that don't arbitrate
// interrupts.
func NewGpioBank(bank Bank, present bool, flags *InterruptFlags, sources [GpioPinsPerBank]InterruptSource) *GpioBank {
	return &GpioBank{present: present, bank: bank, flags: flags, sources: sources}
}

func (g *GpioBank) Present() bool { return g.present }

func (g *GpioBank) notPresentErr() *Error {
	return &Error{Kind: KindOptionalNotPresent, Bank: g.bank}
}

// SetPinState configures pin's mode. Switching into PinInterrupt arms
// the interrupt-flags enable bit for that pin; switching away disarms it.
func (g *GpioBank) SetPinState(pin int, state PinState) error {
	if !g.present {
		return g.notPresentErr()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pins[pin].state = state
	if g.flags != nil {
		g.flags.SetEnabled(g.sources[pin], state == PinInterrupt)
	}
	return nil
}

func (g *GpioBank) PinState(pin int) (PinState, error) {
	if !g.present {
		return PinDisabled, g.notPresentErr()
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.pins[pin].state, nil
}

// Write drives pin to value. Valid only in Output or Interrupt mode (an
// interrupt pin can still be driven by simulator-side code); writing a
// Disabled or Input pin is a GpioWriteError.
func (g *GpioBank) Write(pin int, value bool) error {
	if !g.present {
		return g.notPresentErr()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	switch g.pins[pin].state {
	case PinOutput, PinInterrupt:
		g.pins[pin].value = value
		return nil
	default:
		return &Error{Kind: KindGpioWrite, Bank: g.bank, Pin: pin, Msg: "pin is not configured for output"}
	}
}

// Read returns pin's logical value. Open question (see SPEC_FULL.md /
// DESIGN.md): a pin configured Output returns the value last written to
// it rather than erroring, so host-side monitoring code and the LC-3
// program observe the same state.
func (g *GpioBank) Read(pin int) (bool, error) {
	if !g.present {
		return false, g.notPresentErr()
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	switch g.pins[pin].state {
	case PinDisabled:
		return false, &Error{Kind: KindGpioRead, Bank: g.bank, Pin: pin, Msg: "pin is disabled"}
	default:
		return g.pins[pin].value, nil
	}
}

// SetInput is called by host-side code simulating an external signal
// edge on a pin configured Input or Interrupt; it latches the sampled
// value and, for an Interrupt-mode pin, raises the pending flag.
func (g *GpioBank) SetInput(pin int, value bool) error {
	if !g.present {
		return g.notPresentErr()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	switch g.pins[pin].state {
	case PinInput:
		g.pins[pin].value = value
		return nil
	case PinInterrupt:
		rising := value && !g.pins[pin].value
		g.pins[pin].value = value
		if rising && g.flags != nil {
			g.flags.SetPending(g.sources[pin])
		}
		return nil
	default:
		return &Error{Kind: KindGpioWrite, Bank: g.bank, Pin: pin, Msg: "pin is not configured for input"}
	}
}

// Reset returns every pin to Disabled and clears latched values.
func (g *GpioBank) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pins = [GpioPinsPerBank]gpioPin{}
	if g.flags != nil {
		for _, src := range g.sources {
			g.flags.SetEnabled(src, false)
		}
	}
}
