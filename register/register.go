// Package register implements the latched N-bit storage boards of the
// datapath: the plain Register, the continuously-tapped
// RegisterWithTap, and the incrementing Counter. All three share the
// same edge-free, level-gated contract described for the board family:
// reset clears unconditionally, input-enable snapshots the input bus
// whenever it is asserted, and output-enable together with the block's
// own clock line drives the latched value onto zero or more output
// buses.
package register

import (
	"fmt"

	"github.com/mincpusim/mincpu/signal"
)

// Register is a latched N-bit value gated by {reset, clock,
// inputEnable, outputEnable}. See the package doc for the Evaluate
// contract.
type Register struct {
	name string
	buf  signal.Buffer

	reset        *signal.Wire
	clock        *signal.Wire
	inputEnable  *signal.Wire
	outputEnable *signal.Wire

	input   *signal.Bus
	outputs []*signal.Bus
}

// New creates a width-bit Register wired to the given control signals
// and buses. outputEnable and outputs may be nil/empty for a register
// that is never driven onto a shared bus (it still clears on reset and
// latches on inputEnable).
func New(name string, width uint, reset, clock, inputEnable, outputEnable *signal.Wire, input *signal.Bus, outputs ...*signal.Bus) *Register {
	return &Register{
		name:         name,
		buf:          signal.NewBuffer(width),
		reset:        reset,
		clock:        clock,
		inputEnable:  inputEnable,
		outputEnable: outputEnable,
		input:        input,
		outputs:      outputs,
	}
}

// Name implements block.Block.
func (r *Register) Name() string { return r.name }

// Value returns the register's current latched value.
func (r *Register) Value() uint8 { return r.buf.Get() }

// Evaluate implements the Register contract:
//  1. reset asserted: clear the latched value; do not drive outputs.
//  2. else inputEnable asserted: snapshot the input bus.
//  3. outputEnable && clock both asserted: drive every output bus with
//     the latched value.
func (r *Register) Evaluate() bool {
	if r.reset.Get() {
		return r.buf.Set(0)
	}

	changed := false
	if r.inputEnable.Get() {
		changed = r.buf.Set(r.input.Get()) || changed
	}

	if r.outputEnable.Get() && r.clock.Get() {
		v := r.buf.Get()
		for _, out := range r.outputs {
			changed = out.Set(v) || changed
		}
	}
	return changed
}

func (r *Register) String() string {
	return fmt.Sprintf("%s: %0*b", r.name, r.buf.Width, r.buf.Get())
}

// RegisterWithTap is a Register whose latched value is additionally
// published, every Evaluate call, onto a dedicated tap Bus regardless
// of outputEnable. It is used to feed a continuously-available value
// (A/B into the ALU, MAL/MAH/BANK into memory) without contending for
// the shared bus.
type RegisterWithTap struct {
	*Register
	tap *signal.Bus
}

// NewWithTap creates a RegisterWithTap. outputEnable/outputs may be
// nil/empty when the register's only consumer is the tap (as with
// MAL, MAH, and BANK).
func NewWithTap(name string, width uint, reset, clock, inputEnable, outputEnable *signal.Wire, input *signal.Bus, tap *signal.Bus, outputs ...*signal.Bus) *RegisterWithTap {
	return &RegisterWithTap{
		Register: New(name, width, reset, clock, inputEnable, outputEnable, input, outputs...),
		tap:      tap,
	}
}

// Evaluate runs the base Register contract then unconditionally
// republishes the latched value onto the tap bus.
func (r *RegisterWithTap) Evaluate() bool {
	changed := r.Register.Evaluate()
	changed = r.tap.Set(r.Value()) || changed
	return changed
}
