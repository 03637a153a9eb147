package membank

import (
	"testing"

	"github.com/mincpusim/mincpu/signal"
)

func newMemBank() (*RAMAndFlash, *signal.Bus, *signal.Bus, *signal.Bus, *signal.Wire, *signal.Wire, *signal.Bus) {
	mah := signal.NewBus("mah", 8)
	mal := signal.NewBus("mal", 8)
	bank := signal.NewBus("bank", 4)
	in := signal.NewWire("ri")
	out := signal.NewWire("ro")
	bus := signal.NewBus("bus", 8)
	return New(mah, mal, bank, in, out, bus), mah, mal, bank, in, out, bus
}

func TestRAMWriteThenRead(t *testing.T) {
	m, mah, mal, _, in, out, bus := newMemBank()
	mah.Set(0x80) // bit 7 selects RAM
	mal.Set(0x10)

	bus.Set(0xAB)
	in.Set(true)
	m.Evaluate()
	in.Set(false)

	bus.Set(0)
	out.Set(true)
	m.Evaluate()
	if got := bus.Get(); got != 0xAB {
		t.Fatalf("RAM read back = %#x, want 0xab", got)
	}
}

func TestFlashAddressUsesObservedBankShift(t *testing.T) {
	m, mah, mal, bank, in, _, bus := newMemBank()
	mah.Set(0x00) // bit 7 clear selects flash
	mal.Set(0x01)
	bank.Set(0x02)

	bus.Set(0x7E)
	in.Set(true)
	m.Evaluate()

	// (BANK<<11) | ((MAH&0x7F)<<8) | MAL, not the "natural" BANK<<15.
	wantAddr := 2<<11 | 0<<8 | 1
	if got := m.flash[wantAddr]; got != 0x7E {
		t.Fatalf("flash[%#x] = %#x, want 0x7e (bank-shift-by-11 address convention)", wantAddr, got)
	}
}

func TestMemBankOutputRequiresOutputEnable(t *testing.T) {
	m, mah, mal, _, _, out, bus := newMemBank()
	mah.Set(0x80)
	mal.Set(0)
	m.ram[0] = 0x99
	out.Set(false)
	bus.Set(0)
	m.Evaluate()
	if bus.Get() != 0 {
		t.Fatalf("bus should not be driven without output_enable")
	}
}

func TestLoadFlashRejectsWrongSize(t *testing.T) {
	m, _, _, _, _, _, _ := newMemBank()
	if err := m.LoadFlash(make([]byte, 4)); err == nil {
		t.Fatalf("expected an error loading an undersized flash image")
	}
	if err := m.LoadFlash(make([]byte, FlashSize)); err != nil {
		t.Fatalf("LoadFlash with a correctly sized image failed: %v", err)
	}
}
