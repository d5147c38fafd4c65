package machine

import (
	"bytes"
	"encoding/gob"
	"testing"

	"beeb-core/internal/bigpage"
)

// osROM returns a minimal 16 KiB OS ROM image with the reset vector
// pointing at $8000 (the bottom of the sideways ROM window, which is as
// good a place as any for these tests to let the CPU fetch from).
func osROM() []byte {
	rom := make([]byte, bigpage.PageSize*bigpage.MOSCount)
	rom[len(rom)-4] = 0x00 // $FFFC low
	rom[len(rom)-3] = 0x80 // $FFFC high -> PC = $8000
	return rom
}

func newTestMachine(t *testing.T, variant Variant) *Machine {
	t.Helper()
	m, err := New(Config{
		Variant:      variant,
		OSROM:        osROM(),
		DiagCapacity: 64,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestNewRejectsWrongSizedOSROM(t *testing.T) {
	_, err := New(Config{Variant: VariantB, OSROM: make([]byte, 100)})
	if err == nil {
		t.Fatal("expected an error for a wrong-sized OS ROM")
	}
}

func TestResetLoadsVectorFromOSROM(t *testing.T) {
	m := newTestMachine(t, VariantMaster)
	defer m.Close()

	if m.CPU.PC != 0x8000 {
		t.Fatalf("PC after Reset = $%04X, want $8000", m.CPU.PC)
	}
}

func TestStepAdvancesCycleCounter(t *testing.T) {
	m := newTestMachine(t, VariantMaster)
	defer m.Close()

	for i := 0; i < 1000; i++ {
		m.Step()
	}
	if m.Cycle != 1000 {
		t.Fatalf("Cycle = %d, want 1000", m.Cycle)
	}
}

func TestVariantBHasNoANDYOrHazel(t *testing.T) {
	m := newTestMachine(t, VariantB)
	defer m.Close()

	if m.Paging.HasANDY() || m.Paging.HasHazel() {
		t.Fatalf("Model B should have neither ANDY nor HAZEL sideways RAM")
	}
}

func TestSetDiscImageReplacesPriorImage(t *testing.T) {
	m := newTestMachine(t, VariantMaster)
	defer m.Close()

	m.SetDiscImage(0, nil)
	if m.Discs[0] != nil {
		t.Fatalf("expected no disc in drive 0")
	}
}

func TestSaveLoadStateRoundTripsCPUAndCycle(t *testing.T) {
	m := newTestMachine(t, VariantMaster)
	defer m.Close()

	for i := 0; i < 500; i++ {
		m.Step()
	}
	wantCycle := m.Cycle
	m.CPU.A = 0x42
	m.CPU.X = 0x13

	data, err := m.SaveState()
	if err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	m.CPU.A = 0
	m.CPU.X = 0
	m.Cycle = 0

	if err := m.LoadState(data); err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if m.CPU.A != 0x42 || m.CPU.X != 0x13 {
		t.Fatalf("registers not restored: A=%#x X=%#x", m.CPU.A, m.CPU.X)
	}
	if m.Cycle != wantCycle {
		t.Fatalf("Cycle = %d, want %d", m.Cycle, wantCycle)
	}
}

func TestLoadStateRejectsWrongVersion(t *testing.T) {
	m := newTestMachine(t, VariantMaster)
	defer m.Close()

	var state MachineState
	state.Version = savestateVersion + 1
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		t.Fatalf("encode: %v", err)
	}

	if err := m.LoadState(buf.Bytes()); err == nil {
		t.Fatal("expected an error loading a state with a mismatched version")
	}
}

func TestSetKeyStateReportsMatrixChange(t *testing.T) {
	m := newTestMachine(t, VariantMaster)
	defer m.Close()

	if !m.SetKeyState(1, 1, true) {
		t.Fatal("expected first press to change the matrix")
	}
	if m.SetKeyState(1, 1, true) {
		t.Fatal("expected repeated press to report no change")
	}
}

func TestDebuggerSurfaceIsNoOpWhenDisabled(t *testing.T) {
	m := newTestMachine(t, VariantMaster)
	defer m.Close()

	if m.IsHalted() {
		t.Fatal("machine without a debugger should never report halted")
	}
	m.Halt("test") // must not panic
	if m.IsHalted() {
		t.Fatal("Halt should be a no-op without EnableDebugger")
	}
}
