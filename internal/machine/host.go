package machine

import (
	"time"

	"beeb-core/internal/debugcore"
	"beeb-core/internal/discimage"
)

// SetKeyState presses or releases a key at the given keyboard matrix
// column/row, returning whether this changed the matrix (matches
// peripherals.Keyboard.SetKeyState, surfaced here so hosts never need
// to reach into m.Bus directly).
func (m *Machine) SetKeyState(column, row int, down bool) bool {
	return m.Bus.Keyboard.SetKeyState(column, row, down)
}

// StartPaste begins injecting text as keystrokes via the OSRDCH
// interception hack (spec §4.7).
func (m *Machine) StartPaste(text string) {
	m.Paste.Start(text, m.Cycle)
}

// StopPaste cancels any in-flight paste.
func (m *Machine) StopPaste() {
	m.Paste.Stop()
}

// SetTime reprograms the real-time clock's current date/time. A no-op on
// variants without one.
func (m *Machine) SetTime(t time.Time) {
	if m.Bus.RTC != nil {
		m.Bus.RTC.SetTime(t)
	}
}

// NVRAM returns the RTC's battery-backed CMOS RAM contents, or nil on
// variants without an RTC.
func (m *Machine) NVRAM() []byte {
	if m.Bus.RTC == nil {
		return nil
	}
	return m.Bus.RTC.NVRAM()
}

// SetDiscImage attaches (or, with nil, detaches) a disc image to drive
// (0 or 1), handling the prior image's release.
func (m *Machine) SetDiscImage(drive int, image *discimage.DiscImage) {
	if drive < 0 || drive > 1 {
		return
	}
	if m.Discs[drive] != nil {
		m.Discs[drive].Close()
	}
	m.Discs[drive] = image
	m.Bus.FDC.SetDrive(drive, image)
}

// SetVideoAddressing configures the CRTC-address-to-RAM-address
// translation inputs that spec §4.1's screen-wrap and teletext base
// logic needs but that this project does not yet derive automatically
// from the addressable latch (see DESIGN.md): the two possible teletext
// fetch bases, the screen-wrap adjustment index, and whether the
// display currently reads through the shadow map rather than Default.
func (m *Machine) SetVideoAddressing(teletextBases [2]uint16, wrapAdjIndex uint8, shadowDisplay bool) {
	m.Video.teletextBases = teletextBases
	m.Video.wrapAdjIndex = wrapAdjIndex
	m.Video.shadowDisplay = shadowDisplay
}

// Texture returns the currently-published TV frame buffer.
func (m *Machine) Texture() []uint32 {
	return m.Video.TV.Texture()
}

// VideoVersion returns the TV's published-frame counter, incremented
// once per completed frame (spec §5's publish contract).
func (m *Machine) VideoVersion() uint64 {
	return m.Video.TV.VersionCount()
}

// Close releases this machine's shared ROM image references. Call once
// the Machine is no longer in use.
func (m *Machine) Close() {
	m.ROMShare.Release(m.osromHash)
	for bank, owned := range m.sidewaysOwned {
		if owned {
			m.ROMShare.Release(m.sidewaysHashes[bank])
		}
	}
	for _, d := range m.Discs {
		if d != nil {
			d.Close()
		}
	}
}

// --- Debugger surface delegation (spec §4.8) ---
//
// Every method below is a thin forward to the already-built
// debugcore.Debugger. They are no-ops (returning zero values where
// applicable) when the Machine was constructed with EnableDebugger
// false, since debugcore.Debugger owns the only copy of the per-byte
// flag storage and there is nothing to delegate to.

func (m *Machine) Halt(reason string) {
	if m.Debugger != nil {
		m.Debugger.Halt(reason)
	}
}

func (m *Machine) Run() {
	if m.Debugger != nil {
		m.Debugger.Run()
	}
}

func (m *Machine) IsHalted() bool {
	return m.Debugger != nil && m.Debugger.IsHalted()
}

func (m *Machine) GetHaltReason() string {
	if m.Debugger == nil {
		return ""
	}
	return m.Debugger.GetHaltReason()
}

func (m *Machine) SetByteFlags(addr uint16, flags uint8) {
	if m.Debugger != nil {
		m.Debugger.SetByteFlags(addr, flags)
	}
}

func (m *Machine) GetByteFlags(addr uint16) uint8 {
	if m.Debugger == nil {
		return 0
	}
	return m.Debugger.GetByteFlags(addr)
}

func (m *Machine) AddTempBreakpoint(addr uint16) {
	if m.Debugger != nil {
		m.Debugger.AddTempBreakpoint(addr)
	}
}

func (m *Machine) StepIn() {
	if m.Debugger != nil {
		m.Debugger.StartStepIn()
	}
}

func (m *Machine) StepIntoIRQHandler() {
	if m.Debugger != nil {
		m.Debugger.StartStepIntoIRQHandler()
	}
}

func (m *Machine) SetHardwareDebugState(hw debugcore.HardwareDebugState) {
	if m.Debugger != nil {
		m.Debugger.SetHardwareDebugState(hw)
	}
}

func (m *Machine) GetBigPage(highByte uint8, dpo debugcore.DPO) *bigPageView {
	if m.Debugger == nil {
		return nil
	}
	bp := m.Debugger.DebugGetBigPage(highByte, dpo)
	if bp == nil {
		return nil
	}
	return &bigPageView{Index: bp.Index, Provenance: bp.Provenance}
}

// bigPageView is a read-only, debugger-facing summary of a bigpage.BigPage
// that avoids exposing the package's internal Read/Write byte slices to
// callers outside the module.
type bigPageView struct {
	Index      int
	Provenance byte
}

func (m *Machine) ReadBytes(dst []byte, n int, addr uint16, dpo debugcore.DPO) {
	if m.Debugger != nil {
		m.Debugger.ReadBytes(dst, n, addr, dpo)
	}
}

func (m *Machine) WriteBytes(addr uint16, dpo debugcore.DPO, src []byte, n int) {
	if m.Debugger != nil {
		m.Debugger.WriteBytes(addr, dpo, src, n)
	}
}

func (m *Machine) ScheduleAsyncCall(address uint16, a, x, y uint8, carry bool, cb debugcore.AsyncCallback) {
	if m.Debugger != nil {
		m.Debugger.ScheduleAsyncCall(address, a, x, y, carry, cb)
	}
}

func (m *Machine) GetPageOverrideMask() uint8 {
	if m.Debugger == nil {
		return 0
	}
	return m.Debugger.GetPageOverrideMask()
}

func (m *Machine) GetCurrentPageOverride() debugcore.DPO {
	if m.Debugger == nil {
		return debugcore.DPO{}
	}
	return m.Debugger.GetCurrentPageOverride()
}
