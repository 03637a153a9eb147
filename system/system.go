// Package system wires every block — registers, counters, the ALU,
// memory, the UART, and the control ROM — onto a shared MainBus and
// drives the two-phase clock that advances the simulation one cycle
// at a time, the same top-level assembly role cpu.go plays for the
// 6502 core.
package system

import (
	"fmt"
	"io"

	"github.com/mincpusim/mincpu/alu"
	"github.com/mincpusim/mincpu/block"
	"github.com/mincpusim/mincpu/controlrom"
	"github.com/mincpusim/mincpu/membank"
	"github.com/mincpusim/mincpu/register"
	"github.com/mincpusim/mincpu/signal"
	"github.com/mincpusim/mincpu/uart"
)

// maxSettleIterations bounds the fixed-point settle loop. A real
// well-formed microcode program converges in a handful of passes;
// anything still changing after 100 indicates a combinational loop
// that can never reach a stable state.
const maxSettleIterations = 100

// NonQuiescentError reports that a half-cycle's settle loop failed to
// reach a fixed point within the iteration budget.
type NonQuiescentError struct {
	Phase      string
	Iterations int
}

func (e *NonQuiescentError) Error() string {
	return fmt.Sprintf("system: %s-phase settle did not quiesce after %d iterations", e.Phase, e.Iterations)
}

// FlashImageError reports a flash image of the wrong size.
type FlashImageError struct {
	Got, Want int
}

func (e *FlashImageError) Error() string {
	return fmt.Sprintf("system: flash image is %d bytes, want %d", e.Got, e.Want)
}

// System is the fully wired Minimal CPU System datapath.
type System struct {
	mainBus *signal.Bus
	reset   *signal.Wire
	clock   *signal.Wire
	nclock  *signal.Wire

	sig  *controlrom.Signals
	step *controlrom.StepCounter

	a, b       *register.RegisterWithTap
	mal, mah   *register.RegisterWithTap
	bank       *register.RegisterWithTap
	pcLow      *register.Counter
	pcHigh     *register.Counter
	ir         *register.RegisterWithTap
	alu        *alu.ALU
	mem        *membank.RAMAndFlash
	console    *uart.ConsoleIO
	controlROM *controlrom.ControlROM
	controlLog *controlrom.ControlLogic

	blocks []block.Block

	cycles uint64
}

// New builds a System whose UART output goes to out.
func New(out io.Writer) *System {
	s := &System{
		mainBus: signal.NewBus("MainBus", 8),
		reset:   signal.NewWire("RESET"),
		clock:   signal.NewWire("clock"),
		nclock:  signal.NewWire("nclock"),
		sig:     controlrom.NewSignals(),
	}

	aTap := signal.NewBus("ATap", 8)
	bTap := signal.NewBus("BTap", 8)
	malTap := signal.NewBus("MALTap", 8)
	mahTap := signal.NewBus("MAHTap", 8)
	bankTap := signal.NewBus("BANKTap", 4)
	opTap := signal.NewBus("IRTap", 6)
	adderFlags := signal.NewBus("AdderFlags", 3)
	latchedFlags := signal.NewBus("Flags", 3)
	pcCarry := signal.NewWire("PCLowCarry")

	s.a = register.NewWithTap("A", 8, s.reset, s.clock, s.sig.AI, s.sig.AO, s.mainBus, aTap, s.mainBus)
	s.b = register.NewWithTap("B", 8, s.reset, s.clock, s.sig.BI, s.sig.BO, s.mainBus, bTap, s.mainBus)
	s.mal = register.NewWithTap("MAL", 8, s.reset, s.clock, s.sig.MIL, nil, s.mainBus, malTap)
	s.mah = register.NewWithTap("MAH", 8, s.reset, s.clock, s.sig.MIH, nil, s.mainBus, mahTap)
	s.bank = register.NewWithTap("BANK", 4, s.reset, s.clock, s.sig.ECH, nil, s.mainBus, bankTap)
	s.ir = register.NewWithTap("IR", 6, s.reset, s.clock, s.sig.II, nil, s.mainBus, opTap)

	s.pcLow = register.NewCounter("PCLow", 8, s.reset, s.clock, s.sig.CIL, s.sig.COL, s.sig.CEH, pcCarry, s.mainBus, s.mainBus)
	s.pcHigh = register.NewCounter("PCHigh", 8, s.reset, s.clock, s.sig.CIH, s.sig.COH, pcCarry, nil, s.mainBus, s.mainBus)

	s.alu = alu.New(aTap, bTap, s.sig.EC, s.sig.ES, s.sig.EOFI, s.clock, s.mainBus, adderFlags, latchedFlags)
	s.mem = membank.New(mahTap, malTap, bankTap, s.sig.RI, s.sig.RO, s.mainBus)
	s.console = uart.New(out, s.sig.TR, s.sig.HI, s.clock, s.mainBus)

	s.step = controlrom.NewStepCounter(s.reset, s.nclock, s.sig.IC)
	s.controlROM = controlrom.NewControlROM(latchedFlags, opTap, s.step, s.sig)
	s.controlLog = controlrom.NewControlLogic(s.sig)

	s.blocks = []block.Block{
		s.controlROM,
		s.controlLog,
		s.a, s.b,
		s.mal, s.mah, s.bank,
		s.ir,
		s.pcLow, s.pcHigh,
		s.alu,
		s.mem,
		s.console,
		s.step,
	}

	return s
}

// LoadFlash installs a flash image. img must be exactly
// membank.FlashSize bytes.
func (s *System) LoadFlash(img []byte) error {
	if len(img) != membank.FlashSize {
		return &FlashImageError{Got: len(img), Want: membank.FlashSize}
	}
	return s.mem.LoadFlash(img)
}

// PushInput queues a byte for the next UART read.
func (s *System) PushInput(b byte) { s.console.PushInput(b) }

// Cycles returns the number of completed Step calls.
func (s *System) Cycles() uint64 { return s.cycles }

// A returns the accumulator's current latched value, for tests and
// tracing.
func (s *System) A() uint8 { return s.a.Value() }

// B returns the B register's current latched value.
func (s *System) B() uint8 { return s.b.Value() }

// PC returns the 16-bit program counter as (high<<8)|low.
func (s *System) PC() uint16 { return uint16(s.pcHigh.Value())<<8 | uint16(s.pcLow.Value()) }

// Flags returns the latched N/C/Z flags, packed as (N<<2)|(C<<1)|Z.
func (s *System) Flags() uint8 { return s.alu.Flags() }

// Reset clears the registers, the program counter and the step
// counter. The ALU's latched flags and the UART's pending input queue
// have no reset input and keep their values.
func (s *System) Reset() error {
	s.reset.Set(true)
	if err := s.settle("reset"); err != nil {
		return err
	}
	s.reset.Set(false)
	return nil
}

// Step advances the simulation by one full clock cycle: MainBus is
// pre-charged to 0xFF (the tri-state "nothing is driving" value),
// then the rising and falling clock phases are each settled to a
// fixed point.
func (s *System) Step() error {
	s.mainBus.Set(0xFF)

	s.clock.Set(true)
	s.nclock.Set(false)
	if err := s.settle("rising"); err != nil {
		return err
	}

	s.clock.Set(false)
	s.nclock.Set(true)
	if err := s.settle("falling"); err != nil {
		return err
	}

	s.cycles++
	return nil
}

func (s *System) settle(phase string) error {
	for i := 0; i < maxSettleIterations; i++ {
		changed := false
		for _, b := range s.blocks {
			if b.Evaluate() {
				changed = true
			}
		}
		if !changed {
			return nil
		}
	}
	return &NonQuiescentError{Phase: phase, Iterations: maxSettleIterations}
}
