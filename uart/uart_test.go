package uart

import (
	"bytes"
	"testing"

	"github.com/mincpusim/mincpu/signal"
)

func newConsoleIO(out *bytes.Buffer) (*ConsoleIO, *signal.Wire, *signal.Wire, *signal.Wire, *signal.Bus) {
	transfer := signal.NewWire("tr")
	hi := signal.NewWire("hi")
	clock := signal.NewWire("clock")
	bus := signal.NewBus("bus", 8)
	return New(out, transfer, hi, clock, bus), transfer, hi, clock, bus
}

func TestConsoleIOWritesOnTransferWithHI(t *testing.T) {
	var out bytes.Buffer
	c, transfer, hi, clock, bus := newConsoleIO(&out)

	bus.Set('X')
	transfer.Set(true)
	hi.Set(true)
	clock.Set(true)
	c.Evaluate()

	if got := out.String(); got != "X" {
		t.Fatalf("output = %q, want %q", got, "X")
	}
}

func TestConsoleIOWritesOnlyOncePerPhase(t *testing.T) {
	var out bytes.Buffer
	c, transfer, hi, clock, bus := newConsoleIO(&out)

	bus.Set('Y')
	transfer.Set(true)
	hi.Set(true)
	clock.Set(true)
	c.Evaluate()
	c.Evaluate()
	c.Evaluate()

	if got := out.String(); got != "Y" {
		t.Fatalf("output = %q, want a single %q despite repeated settle iterations", got, "Y")
	}
}

func TestConsoleIOReadPopsQueueOrReturnsFF(t *testing.T) {
	var out bytes.Buffer
	c, transfer, hi, clock, bus := newConsoleIO(&out)

	c.PushInput(0x42)
	transfer.Set(true)
	hi.Set(false)
	clock.Set(true)
	c.Evaluate()
	if got := bus.Get(); got != 0x42 {
		t.Fatalf("first read = %#x, want 0x42", got)
	}

	bus.Set(0)
	clock.Set(false) // new half-cycle clears the once-per-phase guard
	c.Evaluate()
	clock.Set(true)
	c.Evaluate()
	if got := bus.Get(); got != 0xFF {
		t.Fatalf("read on empty queue = %#x, want 0xff", got)
	}
}

func TestConsoleIOIgnoresWhenNotSelected(t *testing.T) {
	var out bytes.Buffer
	c, transfer, _, clock, bus := newConsoleIO(&out)
	clock.Set(true)
	transfer.Set(false)
	bus.Set(0x11)
	c.Evaluate()
	if out.Len() != 0 {
		t.Fatalf("should not write when transfer is deasserted")
	}
}
