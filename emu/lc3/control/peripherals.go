/*
 * lc3sim - Control-layer peripheral state/reading accessors.
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

// These mirror the original's GpioPinArr/AdcPinArr/PwmPinArr/TimerArr
// Control accessors: one state query and one reading/config query per
// peripheral kind, each returning a fixed-size array covering every pin
// or channel (see traits/src/control/rpc/messages.rs in the retrieved
// original source).
package control

import "github.com/go-lc3/lc3sim/emu/lc3/peripherals"

// GpioPinInfo reports one pin's configured mode, gated by whether its
// bank is present at all.
type GpioPinInfo struct {
	State   peripherals.PinState
	Present bool
}

// GetGpioStates reports every pin's configured mode for bank.
func (m *Machine) GetGpioStates(bank peripherals.Bank) [peripherals.GpioPinsPerBank]GpioPinInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.interp.Peripherals.Bank(bank)
	var out [peripherals.GpioPinsPerBank]GpioPinInfo
	for pin := range out {
		st, err := b.PinState(pin)
		out[pin] = GpioPinInfo{State: st, Present: err == nil}
	}
	return out
}

// GpioReading pairs a pin's logical value with any read error (e.g. the
// pin is Disabled, or the bank is an absent optional peripheral).
type GpioReading struct {
	Value bool
	Err   error
}

// GetGpioReadings reports every pin's current logical value for bank.
func (m *Machine) GetGpioReadings(bank peripherals.Bank) [peripherals.GpioPinsPerBank]GpioReading {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.interp.Peripherals.Bank(bank)
	var out [peripherals.GpioPinsPerBank]GpioReading
	for pin := range out {
		v, err := b.Read(pin)
		out[pin] = GpioReading{Value: v, Err: err}
	}
	return out
}

// GetAdcStates reports whether each ADC pin is currently enabled.
func (m *Machine) GetAdcStates() [peripherals.NumAdcPins]bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out [peripherals.NumAdcPins]bool
	for pin := range out {
		out[pin] = m.interp.Peripherals.Adc.Enabled(pin)
	}
	return out
}

// AdcReading pairs an ADC pin's latest sample with any read error (the
// pin is disabled).
type AdcReading struct {
	Value uint8
	Err   error
}

// GetAdcReadings reports every ADC pin's latest sample.
func (m *Machine) GetAdcReadings() [peripherals.NumAdcPins]AdcReading {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out [peripherals.NumAdcPins]AdcReading
	for pin := range out {
		v, err := m.interp.Peripherals.Adc.Read(pin)
		out[pin] = AdcReading{Value: v, Err: err}
	}
	return out
}

// GetTimerStates reports each timer's run mode (single-shot/repeated).
func (m *Machine) GetTimerStates() [peripherals.NumTimers]peripherals.TimerMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out [peripherals.NumTimers]peripherals.TimerMode
	for t := range out {
		out[t] = m.interp.Peripherals.Timers.Mode(t)
	}
	return out
}

// GetTimerConfig reports each timer's configured period, in interpreter
// steps (0 means disabled).
func (m *Machine) GetTimerConfig() [peripherals.NumTimers]uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out [peripherals.NumTimers]uint16
	for t := range out {
		out[t] = m.interp.Peripherals.Timers.Period(t)
	}
	return out
}

// GetPwmStates reports each PWM channel's configured period (CR).
func (m *Machine) GetPwmStates() [peripherals.NumPwmPins]uint8 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out [peripherals.NumPwmPins]uint8
	for pin := range out {
		out[pin] = m.interp.Peripherals.Pwm.Period(pin)
	}
	return out
}

// GetPwmConfig reports each PWM channel's configured duty cycle (DR).
func (m *Machine) GetPwmConfig() [peripherals.NumPwmPins]uint8 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out [peripherals.NumPwmPins]uint8
	for pin := range out {
		out[pin] = m.interp.Peripherals.Pwm.Duty(pin)
	}
	return out
}

// GetClock reports CLKR's current value: milliseconds elapsed since the
// last write to CLKR (or machine reset).
func (m *Machine) GetClock() Word {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Word(m.interp.Peripherals.Clock.Milliseconds())
}

// DeliverInput pushes one byte into the keyboard peripheral, as if typed
// at the console. Intended for a listener relaying a remote client's
// keystrokes, not for the interpreter itself.
func (m *Machine) DeliverInput(b byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interp.Peripherals.Input.Push(b)
}

// TakeOutput drains whatever the display peripheral has accumulated
// since the last call, for relaying to a remote console.
func (m *Machine) TakeOutput() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interp.Peripherals.Output.Take()
}
