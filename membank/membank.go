// Package membank implements the board's two storage devices, RAM and
// flash, as a single addressed Block the same way pia6532.go treats
// its RAM and registers as one decoded address space behind a single
// Read/Write pair.
package membank

import (
	"fmt"

	"github.com/mincpusim/mincpu/signal"
)

const (
	// RAMSize is the 32 KiB static RAM, selected when MAH bit 7 is set.
	RAMSize = 32 * 1024
	// FlashBankSize is one 32 KiB window of the flash array.
	FlashBankSize = 32 * 1024
	// FlashBanks is the number of selectable flash banks.
	FlashBanks = 16
	// FlashSize is the full flash image size an image file must match.
	FlashSize = FlashBankSize * FlashBanks
)

// RAMAndFlash is the board's addressed memory: MAH bit 7 selects RAM
// (bit clear selects flash), MAL and the low 7 bits of MAH form the
// 15-bit offset within whichever device is selected, and BANK picks
// which of the sixteen flash windows is visible.
//
// The flash address composition preserves the board's observed
// (BANK<<11) shift rather than the (BANK<<15) a flat 16-bank/32KiB
// layout would suggest; see DESIGN.md for why that shift is kept as
// specified rather than "corrected".
type RAMAndFlash struct {
	ram   [RAMSize]byte
	flash [FlashSize]byte

	mah  *signal.Bus // tap
	mal  *signal.Bus // tap
	bank *signal.Bus // tap

	inputEnable  *signal.Wire // RI
	outputEnable *signal.Wire // RO
	bus          *signal.Bus  // MainBus
}

// New creates an empty RAMAndFlash. LoadFlash populates the flash
// image afterward.
func New(mah, mal, bank *signal.Bus, inputEnable, outputEnable *signal.Wire, bus *signal.Bus) *RAMAndFlash {
	return &RAMAndFlash{
		mah: mah, mal: mal, bank: bank,
		inputEnable: inputEnable, outputEnable: outputEnable, bus: bus,
	}
}

// LoadFlash copies img into the flash array. img must be exactly
// FlashSize bytes.
func (m *RAMAndFlash) LoadFlash(img []byte) error {
	if len(img) != FlashSize {
		return fmt.Errorf("membank: flash image is %d bytes, want %d", len(img), FlashSize)
	}
	copy(m.flash[:], img)
	return nil
}

func (m *RAMAndFlash) isRAM() bool {
	return m.mah.Get()&0x80 != 0
}

func (m *RAMAndFlash) ramAddr() int {
	return int(m.mah.Get()&0x7F)<<8 | int(m.mal.Get())
}

func (m *RAMAndFlash) flashAddr() int {
	return int(m.bank.Get())<<11 | int(m.mah.Get()&0x7F)<<8 | int(m.mal.Get())
}

// Name implements block.Block.
func (m *RAMAndFlash) Name() string { return "RAMAndFlash" }

// Evaluate implements the Read/Write contract: output_enable drives
// the addressed byte onto MainBus, input_enable writes MainBus's
// current value into the addressed byte. Neither is gated by a clock
// signal; both read the live tap buses for addressing.
func (m *RAMAndFlash) Evaluate() bool {
	changed := false

	if m.isRAM() {
		addr := m.ramAddr()
		if m.outputEnable.Get() {
			changed = m.bus.Set(m.ram[addr]) || changed
		}
		if m.inputEnable.Get() {
			m.ram[addr] = m.bus.Get()
		}
		return changed
	}

	addr := m.flashAddr()
	if m.outputEnable.Get() {
		changed = m.bus.Set(m.flash[addr]) || changed
	}
	if m.inputEnable.Get() {
		m.flash[addr] = m.bus.Get()
	}
	return changed
}

func (m *RAMAndFlash) String() string {
	if m.isRAM() {
		return fmt.Sprintf("RAMAndFlash: RAM[0x%04x]", m.ramAddr())
	}
	return fmt.Sprintf("RAMAndFlash: flash bank %d [0x%05x]", m.bank.Get(), m.flashAddr())
}
