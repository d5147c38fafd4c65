package debugcore

import (
	"testing"

	"beeb-core/internal/bigpage"
)

func testConfig(variant bigpage.Variant, ramSize int) bigpage.Config {
	cfg := bigpage.Config{
		Variant:   variant,
		RAMSize:   ramSize,
		HasANDY:   variant != bigpage.VariantB,
		HasHazel:  variant == bigpage.VariantMaster,
		HasShadow: ramSize >= 65536,
		OSROM:     make([]byte, bigpage.PageSize*bigpage.MOSCount),
	}
	for bank := 0; bank < bigpage.SidewaysBanks; bank++ {
		rom := make([]byte, bigpage.PageSize*bigpage.PagesPerBank)
		for pg := 0; pg < bigpage.PagesPerBank; pg++ {
			rom[pg*bigpage.PageSize] = byte(0xE0 + bank)
		}
		cfg.Sideways[bank] = bigpage.SidewaysBank{ROM: rom}
	}
	return cfg
}

func newTestDebugger(variant bigpage.Variant, ramSize int) *Debugger {
	p := bigpage.NewPaging(testConfig(variant, ramSize))
	return NewDebugger(p)
}

func TestSetAndGetByteFlagsRoundTrip(t *testing.T) {
	d := newTestDebugger(bigpage.VariantMaster, 65536)
	d.SetByteFlags(0x1000, bigpage.DebugBreakExecute|bigpage.DebugBreakWrite)
	got := d.GetByteFlags(0x1000)
	if got != bigpage.DebugBreakExecute|bigpage.DebugBreakWrite {
		t.Fatalf("GetByteFlags(0x1000) = %#x, want break_execute|break_write", got)
	}
	if d.GetByteFlags(0x1001) != 0 {
		t.Fatalf("expected the neighbouring byte to be unaffected")
	}
}

func TestExecuteBreakpointHalts(t *testing.T) {
	d := newTestDebugger(bigpage.VariantMaster, 65536)
	d.SetByteFlags(0x2000, bigpage.DebugBreakExecute)
	bp := d.paging.Default.BigPage[0x20]
	d.OnOpcodeFetch(bp.Index, bigPageOffset(0x20, 0x00))
	if !d.IsHalted() {
		t.Fatalf("expected an execute breakpoint to halt")
	}
}

func TestHaltClearsTempExecuteEverywhere(t *testing.T) {
	d := newTestDebugger(bigpage.VariantMaster, 65536)
	d.AddTempBreakpoint(0x3000)
	d.Halt("manual")
	if d.GetByteFlags(0x3000)&bigpage.DebugTempExecute != 0 {
		t.Fatalf("expected Halt to clear the temp-execute flag")
	}
}

func TestStepInHaltsOnNextOpcodeFetch(t *testing.T) {
	d := newTestDebugger(bigpage.VariantMaster, 65536)
	d.Halt("initial")
	d.StartStepIn()
	if d.IsHalted() {
		t.Fatalf("expected StartStepIn to resume execution")
	}
	bp := d.paging.Default.BigPage[0x40]
	d.OnOpcodeFetch(bp.Index, bigPageOffset(0x40, 0x10))
	if !d.IsHalted() {
		t.Fatalf("expected StepIn to halt at the next opcode fetch")
	}
	if d.GetHaltReason() != "step" {
		t.Fatalf("GetHaltReason() = %q, want %q", d.GetHaltReason(), "step")
	}
}

func TestStepInPreemptedByInterruptArmsReturnAddressInstead(t *testing.T) {
	d := newTestDebugger(bigpage.VariantMaster, 65536)
	d.Halt("initial")
	d.StartStepIn()

	bp := d.paging.Default.BigPage[0x50]
	offset := bigPageOffset(0x50, 0x20)
	d.OnInterruptEntry(bp.Index, offset)
	if d.IsHalted() {
		t.Fatalf("expected a StepIn pre-empted by an interrupt not to halt immediately")
	}
	if d.GetByteFlags(0x5020)&bigpage.DebugTempExecute == 0 {
		t.Fatalf("expected a temp breakpoint at the interrupt return address")
	}

	// The handler's own opcode fetches must not trigger the (now cleared)
	// step-in state.
	handlerBP := d.paging.Default.BigPage[0x60]
	d.OnOpcodeFetch(handlerBP.Index, bigPageOffset(0x60, 0x00))
	if d.IsHalted() {
		t.Fatalf("expected the handler's own fetches not to halt")
	}

	// Returning to the armed address does halt, via the ordinary
	// temp-execute breakpoint check.
	d.OnOpcodeFetch(bp.Index, offset)
	if !d.IsHalted() {
		t.Fatalf("expected the temp breakpoint at the return address to fire")
	}
}

func TestStepIntoIRQHandlerHaltsOnlyWhenMaskMatches(t *testing.T) {
	d := newTestDebugger(bigpage.VariantMaster, 65536)
	d.Halt("initial")
	d.SetHardwareDebugState(HardwareDebugState{SystemIRQBreakMask: 0x10})
	d.StartStepIntoIRQHandler()

	d.OnIRQVectorFetch(0x01, 0x00) // system IFR&IER, but not the armed bit
	if d.IsHalted() {
		t.Fatalf("expected no halt when the pending source does not match the mask")
	}

	d.OnIRQVectorFetch(0x10, 0x00)
	if !d.IsHalted() {
		t.Fatalf("expected a halt once the pending source matches SystemIRQBreakMask")
	}
}
