package register

import (
	"fmt"

	"github.com/mincpusim/mincpu/signal"
)

// Counter is a Register that additionally increments on the rising
// edge of a dedicated increment wire whenever its own inputEnable
// ("load") wire is deasserted, emitting a single-bit carry when the
// increment wraps from 2^width-1 back to 0. Chaining a low Counter's
// carry wire into a high Counter's increment wire builds a wider
// program counter out of two 8-bit halves.
type Counter struct {
	name string
	buf  signal.Buffer

	reset        *signal.Wire
	clock        *signal.Wire
	load         *signal.Wire // acts as Register's inputEnable
	outputEnable *signal.Wire
	increment    *signal.Wire
	carry        *signal.Wire

	input   *signal.Bus
	outputs []*signal.Bus

	prevIncrement bool
}

// NewCounter creates a width-bit Counter. carry may be nil if nothing
// chains off this counter's overflow.
func NewCounter(name string, width uint, reset, clock, load, outputEnable, increment, carry *signal.Wire, input *signal.Bus, outputs ...*signal.Bus) *Counter {
	return &Counter{
		name:         name,
		buf:          signal.NewBuffer(width),
		reset:        reset,
		clock:        clock,
		load:         load,
		outputEnable: outputEnable,
		increment:    increment,
		carry:        carry,
		input:        input,
		outputs:      outputs,
	}
}

// Name implements block.Block.
func (c *Counter) Name() string { return c.name }

// Value returns the counter's current latched value.
func (c *Counter) Value() uint8 { return c.buf.Get() }

// Evaluate implements the Counter contract: reset/load behave exactly
// as Register (reset takes priority and does not drive outputs), and
// between those two steps and the output drive, a rising edge on
// increment (while load is deasserted) advances the count by one
// modulo 2^width and raises carry on wraparound.
func (c *Counter) Evaluate() bool {
	incNow := c.increment.Get()
	rising := incNow && !c.prevIncrement
	c.prevIncrement = incNow

	if c.reset.Get() {
		changed := c.buf.Set(0)
		if c.carry != nil {
			changed = c.carry.Set(false) || changed
		}
		return changed
	}

	changed := false
	wrapped := false
	switch {
	case c.load.Get():
		changed = c.buf.Set(c.input.Get()) || changed
	case rising:
		next := (c.buf.Get() + 1) & uint8((1<<c.buf.Width)-1)
		changed = c.buf.Set(next) || changed
		wrapped = next == 0
	}

	if c.carry != nil {
		changed = c.carry.Set(wrapped) || changed
	}

	if c.outputEnable.Get() && c.clock.Get() {
		v := c.buf.Get()
		for _, out := range c.outputs {
			changed = out.Set(v) || changed
		}
	}
	return changed
}

func (c *Counter) String() string {
	return fmt.Sprintf("%s: %0*b", c.name, c.buf.Width, c.buf.Get())
}
