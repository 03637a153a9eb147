// Package uart implements the board's console device: a byte sink for
// program output and a pending-input FIFO a host can push bytes onto
// before a Step, modeled after the PIA's combined read/write port
// exposed through a single chip-select in pia6532.go.
package uart

import (
	"fmt"
	"io"

	"github.com/mincpusim/mincpu/signal"
)

// ConsoleIO is the UART Block. TR with HI asserted writes the current
// MainBus value (driven there by the instruction's AO) to Out; TR with
// HI deasserted pops the next queued input byte onto MainBus, or 0xFF
// if the queue is empty.
//
// A transfer is irreversible (it writes a byte, or consumes one from
// the queue), unlike the idempotent register/memory operations, so
// each direction latches a per-half-cycle guard that only resets once
// the shared clock line goes low, preventing the settle loop's repeat
// evaluations from firing the same transfer more than once.
type ConsoleIO struct {
	Out io.Writer

	pending []byte

	transfer *signal.Wire // TR
	hi       *signal.Wire // HI
	clock    *signal.Wire
	bus      *signal.Bus // MainBus

	wroteThisPhase bool
	readThisPhase  bool
}

// New creates a ConsoleIO writing output bytes to out.
func New(out io.Writer, transfer, hi, clock *signal.Wire, bus *signal.Bus) *ConsoleIO {
	return &ConsoleIO{Out: out, transfer: transfer, hi: hi, clock: clock, bus: bus}
}

// PushInput queues a byte to be returned by the next UART read.
func (c *ConsoleIO) PushInput(b byte) {
	c.pending = append(c.pending, b)
}

// Name implements block.Block.
func (c *ConsoleIO) Name() string { return "ConsoleIO" }

// Evaluate implements block.Block.
func (c *ConsoleIO) Evaluate() bool {
	if !c.clock.Get() {
		c.wroteThisPhase = false
		c.readThisPhase = false
		return false
	}

	if !c.transfer.Get() {
		return false
	}

	changed := false
	if c.hi.Get() {
		if !c.wroteThisPhase {
			c.wroteThisPhase = true
			if c.Out != nil {
				c.Out.Write([]byte{c.bus.Get()})
			}
		}
		return changed
	}

	if c.readThisPhase {
		return changed
	}
	c.readThisPhase = true

	var b byte = 0xFF
	if len(c.pending) > 0 {
		b = c.pending[0]
		c.pending = c.pending[1:]
	}
	changed = c.bus.Set(b) || changed
	return changed
}

func (c *ConsoleIO) String() string {
	return fmt.Sprintf("ConsoleIO: %d byte(s) queued", len(c.pending))
}
