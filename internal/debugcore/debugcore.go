// Package debugcore implements the per-byte breakpoint/watchpoint debugger
// and paging-override byte access described for the BBC Micro family core
// (spec "Debugger"): break/temp/read/write flag bits stored one bit per
// byte of emulated memory, step types that cooperate with interrupt entry,
// and a stable flat view over memory independent of the live paging state.
package debugcore

import (
	"fmt"
	"sync"

	"beeb-core/internal/bigpage"
)

// StepType selects what, if anything, a single-step request is waiting for.
type StepType int

const (
	StepNone StepType = iota
	StepIn
	StepIntoIRQHandler
)

// HardwareDebugState holds the hardware-level conditions StepIntoIRQHandler
// watches for: which IRQ sources on each VIA should be treated as a step
// target, plus a flag consumed by the video package's debug overlays.
type HardwareDebugState struct {
	SystemIRQBreakMask uint8
	UserIRQBreakMask   uint8
	TeletextDebug      bool
}

var allDebugBits = []uint8{
	bigpage.DebugBreakExecute,
	bigpage.DebugTempExecute,
	bigpage.DebugBreakRead,
	bigpage.DebugBreakWrite,
}

type tempBreakpoint struct {
	bigPage int
	offset  int
}

// Debugger owns the per-byte debug flag table, the halt/step state machine,
// and the paging-override byte access surface for one machine. Each concern
// gets its own mutex rather than one lock shared across all of them.
type Debugger struct {
	paging     *bigpage.Paging
	debugState *bigpage.DebugState

	haltMu     sync.RWMutex
	halted     bool
	haltReason string

	stepMu          sync.RWMutex
	stepType        StepType
	tempBreakpoints []tempBreakpoint

	hwMu sync.RWMutex
	hw   HardwareDebugState

	asyncMu sync.Mutex
	async   asyncState
}

// NewDebugger enables per-byte debug flag storage on paging and returns a
// Debugger wired to it. Callers that never attach a Debugger never pay for
// the ~336 KiB of flag storage (bigpage.Paging.EnableDebug is idempotent).
func NewDebugger(paging *bigpage.Paging) *Debugger {
	return &Debugger{
		paging:     paging,
		debugState: paging.EnableDebug(),
	}
}

// Halt stops execution and records reason. Halting always clears every
// temp-execute flag and the temp-breakpoint bookkeeping list, whether or
// not this halt was itself caused by a temp breakpoint.
func (d *Debugger) Halt(reason string) {
	d.haltMu.Lock()
	d.halted = true
	d.haltReason = reason
	d.haltMu.Unlock()

	d.debugState.ClearTempExecute()

	d.stepMu.Lock()
	d.tempBreakpoints = d.tempBreakpoints[:0]
	d.stepMu.Unlock()
}

// Run clears the halted state.
func (d *Debugger) Run() {
	d.haltMu.Lock()
	d.halted = false
	d.haltReason = ""
	d.haltMu.Unlock()
}

func (d *Debugger) IsHalted() bool {
	d.haltMu.RLock()
	defer d.haltMu.RUnlock()
	return d.halted
}

func (d *Debugger) GetHaltReason() string {
	d.haltMu.RLock()
	defer d.haltMu.RUnlock()
	return d.haltReason
}

// resolveDefault maps an address to the big page and in-page offset that
// currently backs it under the Default (non-shadow) map, the same mapping
// DebugGetBigPage falls back to for an unmasked override.
func (d *Debugger) resolveDefault(addr uint16) (*bigpage.BigPage, int) {
	high := uint8(addr >> 8)
	bp := d.paging.Default.BigPage[high]
	if bp == nil {
		return nil, 0
	}
	return bp, bigPageOffset(high, uint8(addr))
}

// bigPageOffset converts a high/low byte pair into the in-big-page byte
// offset. Every fixed region in the table is installed on 16-high-byte
// (4 KiB) boundaries, so the sub-page index is always high%16 regardless
// of which region the high byte belongs to.
func bigPageOffset(high, low uint8) int {
	subPage := int(high) % 16
	return subPage*256 + int(low)
}

// SetByteFlags overwrites the four debug flag bits at addr (under the live
// Default mapping) to exactly flags.
func (d *Debugger) SetByteFlags(addr uint16, flags uint8) {
	bp, offset := d.resolveDefault(addr)
	if bp == nil {
		return
	}
	for _, bit := range allDebugBits {
		d.debugState.SetFlag(bp.Index, offset, 1, bit, flags&bit != 0)
	}
}

// GetByteFlags reads the four debug flag bits at addr.
func (d *Debugger) GetByteFlags(addr uint16) uint8 {
	bp, offset := d.resolveDefault(addr)
	if bp == nil {
		return 0
	}
	return d.debugState.Flag(bp.Index, offset)
}

// AddTempBreakpoint arms a one-shot execute breakpoint at addr; it is
// cleared the moment any halt occurs, whether or not this is the one that
// triggered it.
func (d *Debugger) AddTempBreakpoint(addr uint16) {
	bp, offset := d.resolveDefault(addr)
	if bp == nil {
		return
	}
	d.debugState.SetFlag(bp.Index, offset, 1, bigpage.DebugTempExecute, true)
	d.stepMu.Lock()
	d.tempBreakpoints = append(d.tempBreakpoints, tempBreakpoint{bp.Index, offset})
	d.stepMu.Unlock()
}

// SetHardwareDebugState replaces the per-VIA IRQ-breakpoint masks and the
// teletext debug flag.
func (d *Debugger) SetHardwareDebugState(hw HardwareDebugState) {
	d.hwMu.Lock()
	d.hw = hw
	d.hwMu.Unlock()
}

func (d *Debugger) HardwareDebugState() HardwareDebugState {
	d.hwMu.RLock()
	defer d.hwMu.RUnlock()
	return d.hw
}

// StartStepIn arms a one-shot halt at the next opcode fetch.
func (d *Debugger) StartStepIn() {
	d.Run()
	d.stepMu.Lock()
	d.stepType = StepIn
	d.stepMu.Unlock()
}

// StartStepIntoIRQHandler arms a halt for the next IRQ-vectored opcode
// fetch whose pending source matches the hardware debug masks.
func (d *Debugger) StartStepIntoIRQHandler() {
	d.Run()
	d.stepMu.Lock()
	d.stepType = StepIntoIRQHandler
	d.stepMu.Unlock()
}

// OnOpcodeFetch is called once per instruction, at the opcode fetch cycle,
// before the opcode executes. It checks execute/temp-execute breakpoints
// first, then single-step state, halting at most once per call.
func (d *Debugger) OnOpcodeFetch(bigPage, offset int) {
	flag := d.debugState.Flag(bigPage, offset)
	if flag&(bigpage.DebugBreakExecute|bigpage.DebugTempExecute) != 0 {
		d.Halt(fmt.Sprintf("execute breakpoint at big page %d offset %#x", bigPage, offset))
		return
	}

	d.stepMu.Lock()
	st := d.stepType
	if st == StepIn {
		d.stepType = StepNone
	}
	d.stepMu.Unlock()

	if st == StepIn {
		d.Halt("step")
	}
}

// OnDataRead checks the break_read flag for a non-opcode-fetch memory read.
func (d *Debugger) OnDataRead(bigPage, offset int) {
	if d.debugState.Flag(bigPage, offset)&bigpage.DebugBreakRead != 0 {
		d.Halt(fmt.Sprintf("read breakpoint at big page %d offset %#x", bigPage, offset))
	}
}

// OnDataWrite checks the break_write flag for a memory write.
func (d *Debugger) OnDataWrite(bigPage, offset int) {
	if d.debugState.Flag(bigPage, offset)&bigpage.DebugBreakWrite != 0 {
		d.Halt(fmt.Sprintf("write breakpoint at big page %d offset %#x", bigPage, offset))
	}
}

// OnInterruptEntry is called whenever the CPU services any interrupt
// (NMI, IRQ, or BRK) while halted state is being tracked. If a StepIn was
// in flight, the interrupt pre-empted it: rather than halt inside the
// handler, arm a temp breakpoint at the address the handler will return to
// and let execution continue.
func (d *Debugger) OnInterruptEntry(returnBigPage, returnOffset int) {
	d.stepMu.Lock()
	st := d.stepType
	if st == StepIn {
		d.stepType = StepNone
	}
	d.stepMu.Unlock()

	if st != StepIn {
		return
	}
	d.debugState.SetFlag(returnBigPage, returnOffset, 1, bigpage.DebugTempExecute, true)
	d.stepMu.Lock()
	d.tempBreakpoints = append(d.tempBreakpoints, tempBreakpoint{returnBigPage, returnOffset})
	d.stepMu.Unlock()
}

// OnIRQVectorFetch is called at the moment a genuine hardware IRQ (not NMI,
// not BRK) is about to vector, with the IFR&IER byte from each VIA. It
// halts when StepIntoIRQHandler is armed and the pending source on either
// VIA matches that VIA's breakpoint mask.
func (d *Debugger) OnIRQVectorFetch(systemPending, userPending uint8) {
	d.stepMu.RLock()
	st := d.stepType
	d.stepMu.RUnlock()
	if st != StepIntoIRQHandler {
		return
	}

	hw := d.HardwareDebugState()
	if systemPending&hw.SystemIRQBreakMask == 0 && userPending&hw.UserIRQBreakMask == 0 {
		return
	}

	d.stepMu.Lock()
	d.stepType = StepNone
	d.stepMu.Unlock()
	d.Halt("step into IRQ handler")
}
