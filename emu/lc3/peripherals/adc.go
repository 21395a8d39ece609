/*
 * lc3sim - ADC peripheral.
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

const NumAdcPins = 6

type adcPin struct {
	enabled bool
	value   uint8
}

// Adc models the six-channel analog-to-digital converter. Each pin's
// control register enables or disables sampling; its data register
// holds the most recent 8-bit reading, set from the host side via
// SetReading (e.g. a monitoring goroutine feeding real samples).
type Adc struct {
	mu   sync.RWMutex
	pins [NumAdcPins]adcPin
}

func NewAdc() *Adc { return &Adc{} }

func (a *Adc) SetEnabled(pin int, enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pins[pin].enabled = enabled
}

func (a *Adc) Enabled(pin int) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.pins[pin].enabled
}

// SetReading latches a fresh sample for pin, regardless of whether it is
// currently enabled (the sample becomes visible once enabled).
func (a *Adc) SetReading(pin int, value uint8) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pins[pin].value = value
}

// Read returns the latest sample for pin, or an error if the pin is
// disabled (the original's InvalidAdcRead: "attempted to read … when in
// disabled mode").
func (a *Adc) Read(pin int) (uint8, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.pins[pin].enabled {
		return 0, &Error{Kind: KindAdcRead, Pin: pin, Msg: "pin is disabled"}
	}
	return a.pins[pin].value, nil
}

func (a *Adc) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pins = [NumAdcPins]adcPin{}
}
