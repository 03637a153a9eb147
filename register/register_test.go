package register

import (
	"testing"

	"github.com/mincpusim/mincpu/signal"
)

func newWires() (reset, clock, in, out *signal.Wire) {
	return signal.NewWire("reset"), signal.NewWire("clock"), signal.NewWire("in"), signal.NewWire("out")
}

func TestRegisterLatchesOnInputEnableRegardlessOfClock(t *testing.T) {
	reset, clock, inEnable, outEnable := newWires()
	input := signal.NewBus("input", 8)
	output := signal.NewBus("output", 8)
	r := New("R", 8, reset, clock, inEnable, outEnable, input, output)

	input.Set(0x5A)
	inEnable.Set(true)
	clock.Set(false) // input latch is not clock-gated

	if changed := r.Evaluate(); !changed {
		t.Fatalf("Evaluate() should report a change when latching a new value")
	}
	if got, want := r.Value(), uint8(0x5A); got != want {
		t.Fatalf("Value() = %#x, want %#x", got, want)
	}
	if output.Get() != 0 {
		t.Fatalf("output bus should not be driven while outputEnable is false")
	}
}

func TestRegisterDrivesOutputOnlyWhenClockedAndEnabled(t *testing.T) {
	reset, clock, inEnable, outEnable := newWires()
	input := signal.NewBus("input", 8)
	output := signal.NewBus("output", 8)
	r := New("R", 8, reset, clock, inEnable, outEnable, input, output)

	input.Set(0x33)
	inEnable.Set(true)
	r.Evaluate()
	inEnable.Set(false)

	outEnable.Set(true)
	clock.Set(false)
	r.Evaluate()
	if output.Get() != 0 {
		t.Fatalf("output should stay undriven while clock is low")
	}

	clock.Set(true)
	r.Evaluate()
	if got, want := output.Get(), uint8(0x33); got != want {
		t.Fatalf("output = %#x, want %#x", got, want)
	}
}

func TestRegisterResetTakesPriorityAndDoesNotDrive(t *testing.T) {
	reset, clock, inEnable, outEnable := newWires()
	input := signal.NewBus("input", 8)
	output := signal.NewBus("output", 8)
	r := New("R", 8, reset, clock, inEnable, outEnable, input, output)

	// Park a sentinel on the output bus that only something other than
	// this register could have driven, so a reset that still drives its
	// (now-zeroed) value onto the bus is distinguishable from a reset
	// that leaves the bus alone entirely.
	output.Set(0xAB)

	input.Set(0xFF)
	inEnable.Set(true)
	outEnable.Set(true)
	clock.Set(true)
	reset.Set(true)

	r.Evaluate()
	if r.Value() != 0 {
		t.Fatalf("reset should clear the register even with inputEnable asserted")
	}
	if got, want := output.Get(), uint8(0xAB); got != want {
		t.Fatalf("reset should suppress output drive entirely, got output = %#x, want untouched sentinel %#x", got, want)
	}
}

func TestRegisterWithTapPublishesContinuously(t *testing.T) {
	reset, clock, inEnable, _ := newWires()
	input := signal.NewBus("input", 8)
	tap := signal.NewBus("tap", 8)
	r := NewWithTap("MAL", 8, reset, clock, inEnable, nil, input, tap)

	input.Set(0x77)
	inEnable.Set(true)
	r.Evaluate()
	if got := tap.Get(); got != 0x77 {
		t.Fatalf("tap = %#x, want 0x77", got)
	}

	inEnable.Set(false)
	r.Evaluate()
	if got := tap.Get(); got != 0x77 {
		t.Fatalf("tap should keep publishing the latched value: got %#x", got)
	}
}
