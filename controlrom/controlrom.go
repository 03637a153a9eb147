// Package controlrom owns the instruction-sequencing hardware: the
// instruction register and microstep counter that together with the
// flags register index the microcode ROM, the ROM lookup itself, and
// the combinational logic that demultiplexes a handful of raw control
// bits into their high/low-byte-specific variants.
package controlrom

import (
	"fmt"

	"github.com/mincpusim/mincpu/microcode"
	"github.com/mincpusim/mincpu/signal"
)

// Signals holds the sixteen raw control wires a microcode word
// decodes into, plus the handful of gated variants ControlLogic
// derives from them.
type Signals struct {
	AI, AO   *signal.Wire
	BI, BO   *signal.Wire
	CI, CO   *signal.Wire
	EC, ES   *signal.Wire
	CEME     *signal.Wire
	EOFI     *signal.Wire
	HI       *signal.Wire
	IC       *signal.Wire
	MI       *signal.Wire
	RI, RO   *signal.Wire
	TR       *signal.Wire

	// Derived by ControlLogic.
	MIL, MIH *signal.Wire // MAL / MAH input enable
	CIL, CIH *signal.Wire // PC low / high input enable
	COL, COH *signal.Wire // PC low / high output enable
	CEL, CEH *signal.Wire // CEME gated low/high; only CEH is consumed (ticks PC)
	ECH      *signal.Wire // BANK input enable

	// II is derived by ControlROM directly from the step counter, not
	// decoded from a ROM word bit: every opcode's fetch prelude reads
	// the opcode byte at step 2 (the one step shape shared, bit for
	// bit, with the operand-skip sequence branches use), so only the
	// step number distinguishes "this is the opcode on the bus" from
	// "this is some other byte on the bus." Asserted exactly while
	// step==2, II is the instruction register's input enable.
	II *signal.Wire
}

// NewSignals allocates every wire a Signals needs, named for
// diagnostics.
func NewSignals() *Signals {
	return &Signals{
		AI: signal.NewWire("AI"), AO: signal.NewWire("AO"),
		BI: signal.NewWire("BI"), BO: signal.NewWire("BO"),
		CI: signal.NewWire("CI"), CO: signal.NewWire("CO"),
		EC: signal.NewWire("EC"), ES: signal.NewWire("ES"),
		CEME: signal.NewWire("CEME"),
		EOFI: signal.NewWire("EOFI"),
		HI:   signal.NewWire("HI"),
		IC:   signal.NewWire("IC"),
		MI:   signal.NewWire("MI"),
		RI:   signal.NewWire("RI"), RO: signal.NewWire("RO"),
		TR: signal.NewWire("TR"),

		MIL: signal.NewWire("MIL"), MIH: signal.NewWire("MIH"),
		CIL: signal.NewWire("CIL"), CIH: signal.NewWire("CIH"),
		COL: signal.NewWire("COL"), COH: signal.NewWire("COH"),
		CEL: signal.NewWire("CEL"), CEH: signal.NewWire("CEH"),
		ECH: signal.NewWire("ECH"),
		II:  signal.NewWire("II"),
	}
}

// fetchStep is the microstep, constant across every opcode and flags
// combination, at which the fetch prelude's memory read places the
// opcode byte on MainBus.
const fetchStep = 2

// StepCounter is the 4-bit microstep counter. Unlike register.Counter
// it is not a plain increment-on-edge board: its "reset to 0" action
// (IC) and its "advance by one" action must take effect on the exact
// same clock edge, and only then, so that every block reads a stable
// set of control signals for the full half-cycle rather than seeing
// the next instruction's fetch leak in mid-settle. register.Counter's
// reset input is checked unconditionally on every Evaluate, which
// would let IC zero the counter the instant ControlROM decodes it —
// still mid rising-phase settle, before this step's own effects have
// necessarily committed. StepCounter instead samples IC only at the
// rising edge of its clock input (nclock, so the advance/reset happens
// once per Step, at the falling-phase transition), which is why the
// microstep counter is its own type rather than a register.Counter:
// the glossary already describes it as a distinct latch from the
// Counter the program counter is built from.
type StepCounter struct {
	value uint8

	reset *signal.Wire
	clock *signal.Wire // nclock
	ic    *signal.Wire

	prevClock bool
}

// NewStepCounter creates a StepCounter. clock should be wired to the
// system's nclock (not the main clock).
func NewStepCounter(reset, clock, ic *signal.Wire) *StepCounter {
	return &StepCounter{reset: reset, clock: clock, ic: ic}
}

func (s *StepCounter) Name() string { return "StepCounter" }

// Value returns the current 4-bit microstep.
func (s *StepCounter) Value() uint8 { return s.value }

// Evaluate implements block.Block.
func (s *StepCounter) Evaluate() bool {
	before := s.value
	now := s.clock.Get()
	edge := now && !s.prevClock
	s.prevClock = now

	switch {
	case s.reset.Get():
		s.value = 0
	case edge:
		if s.ic.Get() {
			s.value = 0
		} else {
			s.value = (s.value + 1) & 0x0F
		}
	}
	return before != s.value
}

func (s *StepCounter) String() string { return fmt.Sprintf("StepCounter: step=%d", s.value) }

// ControlROM looks up the current microcode word from the flags,
// opcode, and step taps and decodes it onto Signals' sixteen raw
// wires, plus the step-derived II wire (see Signals.II).
type ControlROM struct {
	rom [microcode.ROMSize]microcode.Word

	flags *signal.Bus
	step  *StepCounter
	op    *signal.Bus

	sig *Signals
}

// NewControlROM builds the full ROM and wires it to its three index
// inputs and its sixteen output wires.
func NewControlROM(flags, op *signal.Bus, step *StepCounter, sig *Signals) *ControlROM {
	return &ControlROM{
		rom:   microcode.BuildROM(),
		flags: flags,
		step:  step,
		op:    op,
		sig:   sig,
	}
}

func (c *ControlROM) Name() string { return "ControlROM" }

// Evaluate implements block.Block.
func (c *ControlROM) Evaluate() bool {
	idx := microcode.Index(uint16(c.flags.Get()), uint16(c.op.Get()), uint16(c.step.Value()))
	word := c.rom[idx]

	changed := false
	set := func(w *signal.Wire, bit microcode.Word) {
		changed = w.Set(word&bit != 0) || changed
	}
	set(c.sig.AI, microcode.AI)
	set(c.sig.AO, microcode.AO)
	set(c.sig.BI, microcode.BI)
	set(c.sig.BO, microcode.BO)
	set(c.sig.CI, microcode.CI)
	set(c.sig.CO, microcode.CO)
	set(c.sig.EC, microcode.EC)
	set(c.sig.ES, microcode.ES)
	set(c.sig.CEME, microcode.CEME)
	set(c.sig.EOFI, microcode.EOFI)
	set(c.sig.HI, microcode.HI)
	set(c.sig.IC, microcode.IC)
	set(c.sig.MI, microcode.MI)
	set(c.sig.RI, microcode.RI)
	set(c.sig.RO, microcode.RO)
	set(c.sig.TR, microcode.TR)

	changed = c.sig.II.Set(c.step.Value() == fetchStep) || changed
	return changed
}

func (c *ControlROM) String() string { return "ControlROM" }

// ControlLogic is the small demultiplexing layer that turns MI, CI,
// CO, CEME, and EC into their HI-qualified variants.
type ControlLogic struct {
	sig *Signals
}

// NewControlLogic wires ControlLogic to sig's raw and derived wires.
func NewControlLogic(sig *Signals) *ControlLogic { return &ControlLogic{sig: sig} }

func (l *ControlLogic) Name() string { return "ControlLogic" }

// Evaluate implements block.Block.
func (l *ControlLogic) Evaluate() bool {
	hi := l.sig.HI.Get()
	lo := !hi

	changed := false
	changed = l.sig.MIL.Set(l.sig.MI.Get() && lo) || changed
	changed = l.sig.MIH.Set(l.sig.MI.Get() && hi) || changed
	changed = l.sig.CIL.Set(l.sig.CI.Get() && lo) || changed
	changed = l.sig.CIH.Set(l.sig.CI.Get() && hi) || changed
	changed = l.sig.COL.Set(l.sig.CO.Get() && lo) || changed
	changed = l.sig.COH.Set(l.sig.CO.Get() && hi) || changed
	changed = l.sig.CEL.Set(l.sig.CEME.Get() && lo) || changed
	changed = l.sig.CEH.Set(l.sig.CEME.Get() && hi) || changed
	changed = l.sig.ECH.Set(l.sig.EC.Get() && hi) || changed
	return changed
}

func (l *ControlLogic) String() string { return "ControlLogic" }
