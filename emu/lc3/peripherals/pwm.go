/*
 * lc3sim - PWM peripheral.
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

const NumPwmPins = 2

type pwmPin struct {
	period uint8 // CR
	duty   uint8 // DR
}

// Pwm models the two-channel pulse-width-modulation output. CR holds the
// period, DR the duty cycle; both are opaque 8-bit values to the
// interpreter, interpreted only by whatever host-side signal generator
// observes them.
type Pwm struct {
	mu   sync.RWMutex
	pins [NumPwmPins]pwmPin
}

func NewPwm() *Pwm { return &Pwm{} }

func (p *Pwm) SetPeriod(pin int, period uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pins[pin].period = period
}

func (p *Pwm) Period(pin int) uint8 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pins[pin].period
}

func (p *Pwm) SetDuty(pin int, duty uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pins[pin].duty = duty
}

func (p *Pwm) Duty(pin int) uint8 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pins[pin].duty
}

func (p *Pwm) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pins = [NumPwmPins]pwmPin{}
}
