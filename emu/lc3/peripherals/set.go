/*
 * lc3sim - Peripheral set composition.
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

// Config selects which optional peripherals a machine is built with.
type Config struct {
	GpioBPresent bool
	GpioCPresent bool
}

// Set is the composition of one implementation per peripheral capability,
// plus the interrupt flags they share with the interpreter. Bank A, the
// ADC, PWM, timers, clock, input and output are always present; banks B
// and C are gated by Config.
type Set struct {
	Flags *InterruptFlags

	GpioA *GpioBank
	GpioB *GpioBank
	GpioC *GpioBank

	Adc    *Adc
	Pwm    *Pwm
	Timers *Timers
	Clock  *Clock
	Input  *Input
	Output *Output
}

// NewSet builds a full peripheral set per cfg.
func NewSet(cfg Config) *Set {
	flags := NewInterruptFlags()

	gpioASources := [GpioPinsPerBank]InterruptSource{
		SourceGpioA0, SourceGpioA1, SourceGpioA2, SourceGpioA3,
		SourceGpioA4, SourceGpioA5, SourceGpioA6, SourceGpioA7,
	}
	var noSources [GpioPinsPerBank]InterruptSource

	return &Set{
		Flags:  flags,
		GpioA:  NewGpioBank(BankA, true, flags, gpioASources),
		GpioB:  NewGpioBank(BankB, cfg.GpioBPresent, nil, noSources),
		GpioC:  NewGpioBank(BankC, cfg.GpioCPresent, nil, noSources),
		Adc:    NewAdc(),
		Pwm:    NewPwm(),
		Timers: NewTimers(flags, [NumTimers]InterruptSource{SourceTimer0, SourceTimer1}),
		Clock:  NewClock(),
		Input:  NewInput(flags),
		Output: NewOutput(flags),
	}
}

// Reset returns every peripheral to its power-on state.
func (s *Set) Reset() {
	s.Flags.Reset()
	s.GpioA.Reset()
	s.GpioB.Reset()
	s.GpioC.Reset()
	s.Adc.Reset()
	s.Pwm.Reset()
	s.Timers.Reset()
	s.Clock.Reset()
	s.Input.Reset()
	s.Output.Reset()
}

// Bank returns the GpioBank for b.
func (s *Set) Bank(b Bank) *GpioBank {
	switch b {
	case BankA:
		return s.GpioA
	case BankB:
		return s.GpioB
	case BankC:
		return s.GpioC
	default:
		return nil
	}
}
