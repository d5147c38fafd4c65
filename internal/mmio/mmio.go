// Package mmio implements the FRED/JIM/SHEILA memory-mapped I/O dispatch
// tables (spec §4.2 "MMIO Dispatch"): three 256-entry tables, one per
// paged-FC/FD/FE page, each slot holding the device that owns that byte and
// whether accessing it stretches the CPU cycle.
package mmio

// Device is implemented by anything that can be addressed through an MMIO
// table slot, mirroring the teacher's IOHandler interface
// (internal/memory/bus.go) narrowed to single-byte access, which is all the
// 1 MHz bus ever does.
type Device interface {
	ReadMMIO(offset uint8) uint8
	WriteMMIO(offset uint8, value uint8)
}

// slot is one entry of a table: which device owns this byte (nil if
// unmapped, reads as 0 per spec §7's silent-error-handling rule) and
// whether the access stretches the cycle to align the 2 MHz CPU bus with a
// 1 MHz peripheral.
type slot struct {
	device  Device
	stretch bool
}

// Table is a 256-entry MMIO dispatch table for one of FRED ($FC00-$FCFF),
// JIM ($FD00-$FDFF) or SHEILA ($FE00-$FEFF).
type Table struct {
	slots [256]slot
}

// NewTable returns an entirely unmapped table.
func NewTable() *Table {
	return &Table{}
}

// Map installs device across [low, high] (inclusive), with the given
// stretch behaviour.
func (t *Table) Map(low, high uint8, device Device, stretch bool) {
	for i := int(low); i <= int(high); i++ {
		t.slots[i] = slot{device: device, stretch: stretch}
	}
}

// Unmap clears [low, high] (inclusive) back to unmapped: reads return 0
// and writes are discarded.
func (t *Table) Unmap(low, high uint8) {
	for i := int(low); i <= int(high); i++ {
		t.slots[i] = slot{}
	}
}

// Read dispatches a read to the owning device, or returns 0 if the slot is
// unmapped (spec §7: unmapped MMIO reads return 0, not open-bus garbage).
func (t *Table) Read(offset uint8) (value uint8, stretch bool) {
	s := t.slots[offset]
	if s.device == nil {
		return 0, false
	}
	return s.device.ReadMMIO(offset), s.stretch
}

// Write dispatches a write to the owning device. Writes to unmapped slots
// are silently discarded.
func (t *Table) Write(offset uint8, value uint8) (stretch bool) {
	s := t.slots[offset]
	if s.device == nil {
		return false
	}
	s.device.WriteMMIO(offset, value)
	return s.stretch
}

// Stretch reports the stretch flag of a slot without performing an access;
// used by the CPU's data-bus router to compute stretched-cycle counts ahead
// of dispatching the actual access.
func (t *Table) Stretch(offset uint8) bool {
	return t.slots[offset].stretch
}

// Tables bundles the three MMIO pages a machine exposes through $FC00-$FEFF.
// The Master variant keeps a second SHEILA table (see EnableTestSheila) for
// ACCCON test mode, so the CPU always asks Tables for the currently active
// one rather than holding a *Table directly.
type Tables struct {
	FRED   *Table
	JIM    *Table
	SHEILA *Table

	sheilaTest *Table // nil unless the variant supports test mode
}

// NewTables returns three empty tables.
func NewTables() *Tables {
	return &Tables{FRED: NewTable(), JIM: NewTable(), SHEILA: NewTable()}
}

// EnableTestSheila installs a second, independently-mapped SHEILA table
// used while the Master's ACCCON test-mode bit is set (spec §4.2).
func (t *Tables) EnableTestSheila() *Table {
	if t.sheilaTest == nil {
		t.sheilaTest = NewTable()
	}
	return t.sheilaTest
}

// ActiveSheila returns the SHEILA table that should service the next
// access, given the current ACCCON test-mode state.
func (t *Tables) ActiveSheila(testMode bool) *Table {
	if testMode && t.sheilaTest != nil {
		return t.sheilaTest
	}
	return t.SHEILA
}
