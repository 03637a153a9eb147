// Package alu implements the combinational adder/subtractor and the
// flags register it feeds. Both live in one Block, mirroring how
// oj-mik-eatersim's Alu.Exec computes its sum and latches CF/ZF in a
// single pass rather than splitting the adder and the flip-flops into
// separate components.
package alu

import (
	"fmt"

	"github.com/mincpusim/mincpu/microcode"
	"github.com/mincpusim/mincpu/signal"
)

// ALU computes A plus (B, optionally inverted) plus carry-in every
// Evaluate call and continuously publishes the would-be N/C/Z flags on
// AdderFlags. When EOFI is asserted together with the shared clock, it
// also drives the sum onto MainBus and latches the flags into
// LatchedFlags, the bus ControlROM indexes against.
type ALU struct {
	a, b *signal.Bus // continuous taps from A/B registers

	carryIn *signal.Wire // EC
	invertB *signal.Wire // ES
	drive   *signal.Wire // EOFI
	clock   *signal.Wire

	mainBus      *signal.Bus
	adderFlags   *signal.Bus // continuous: what the flags would become
	latchedFlags *signal.Bus // latched on EOFI&&clock; what ControlROM sees

	latched uint8
}

// New wires up an ALU. a and b are the continuously-tapped A/B
// register outputs; mainBus is driven with the sum when drive&&clock;
// adderFlags is updated every call; latchedFlags only changes when the
// result is actually committed.
func New(a, b *signal.Bus, carryIn, invertB, drive, clock *signal.Wire, mainBus, adderFlags, latchedFlags *signal.Bus) *ALU {
	return &ALU{
		a: a, b: b,
		carryIn: carryIn, invertB: invertB, drive: drive, clock: clock,
		mainBus: mainBus, adderFlags: adderFlags, latchedFlags: latchedFlags,
	}
}

func (u *ALU) Name() string { return "ALU" }

func (u *ALU) compute() (sum uint8, flags uint8) {
	bv := u.b.Get()
	if u.invertB.Get() {
		bv = ^bv
	}
	carry := uint16(0)
	if u.carryIn.Get() {
		carry = 1
	}
	wide := uint16(u.a.Get()) + uint16(bv) + carry
	sum = uint8(wide)

	var n, c, z uint8
	if wide > 0xFF {
		c = 1
	}
	if sum == 0 {
		z = 1
	}
	if sum&0x80 != 0 {
		n = 1
	}
	flags = n<<2 | c<<1 | z
	return sum, flags
}

// Evaluate implements block.Block.
func (u *ALU) Evaluate() bool {
	sum, flags := u.compute()
	changed := u.adderFlags.Set(flags)

	if u.drive.Get() && u.clock.Get() {
		changed = u.mainBus.Set(sum) || changed
		if u.latched != flags {
			u.latched = flags
			changed = true
		}
		changed = u.latchedFlags.Set(flags) || changed
	}
	return changed
}

// Flags returns the latched flags value ControlROM currently indexes
// against.
func (u *ALU) Flags() uint8 { return u.latched }

func (u *ALU) String() string {
	return fmt.Sprintf("ALU: latched=%03b (N=%d C=%d Z=%d)",
		u.latched,
		(u.latched&microcode.FlagN)>>2,
		(u.latched&microcode.FlagC)>>1,
		u.latched&microcode.FlagZ)
}
