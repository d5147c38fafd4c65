package machine

import (
	"beeb-core/internal/bigpage"
	"beeb-core/internal/cpu6502"
	"beeb-core/internal/trace"
	"beeb-core/internal/video"
)

// makeInstructionRecord snapshots the CPU's register state at an
// instruction-fetch boundary into a trace.InstructionRecord. Effective
// and Indirect address tracking (the addressing-mode metadata spec's
// trace records also carry) is left at zero here: the cpu6502 core does
// not currently expose the per-instruction effective address it
// computed, only its side effects, so wiring it through would mean
// adding an output-only field to every addressing-mode helper for a
// debugger-only convenience. Documented as a simplification.
func makeInstructionRecord(c *cpu6502.CPU, pc uint16) trace.InstructionRecord {
	return trace.InstructionRecord{
		PC: pc,
		A:  c.A,
		X:  c.X,
		Y:  c.Y,
		P:  c.P,
		S:  c.S,
	}
}

// wireDebugHooks connects the CPU's interrupt-entry/IRQ-entry hooks and
// instruction callback to the debugger and trace sinks. Called once from
// New; a nil Debugger/Trace just means the corresponding hook does
// nothing, which keeps this safe to call even when both are disabled.
func (m *Machine) wireDebugHooks() {
	m.CPU.InstructionCallback = m.onInstructionFetch

	m.CPU.InterruptEntryCallback = func(returnPC uint16) {
		if m.Debugger == nil {
			return
		}
		bp, offset := m.resolveBigPage(returnPC)
		if bp < 0 {
			return
		}
		m.Debugger.OnInterruptEntry(bp, offset)
	}

	m.CPU.IRQEntryHook = func() (uint16, bool) {
		if m.Debugger == nil {
			return 0, false
		}
		m.Debugger.OnIRQVectorFetch(m.Bus.SystemVIA.IFR&m.Bus.SystemVIA.IER, m.Bus.UserVIA.IFR&m.Bus.UserVIA.IER)
		return m.Debugger.TryInjectAsyncCall()
	}
}

func (m *Machine) resolveBigPage(addr uint16) (int, int) {
	high := uint8(addr >> 8)
	bp := m.Paging.ActiveMap(high).BigPage[high]
	if bp == nil {
		return -1, 0
	}
	subPage := int(high) % 16
	return bp.Index, subPage*256 + int(addr&0xFF)
}

func (m *Machine) onInstructionFetch(pc uint16) {
	if m.Debugger != nil {
		if bp, offset := m.resolveBigPage(pc); bp >= 0 {
			m.Debugger.OnOpcodeFetch(bp, offset)
		}
	}
	if m.Trace != nil {
		rec := makeInstructionRecord(m.CPU, pc)
		rec.Opcode = m.Read(pc)
		m.Trace.RecordInstruction(m.Cycle, rec)
	}
	if m.Paste.Active() && pc == osrdchEntryPoint {
		a, forceRTS := m.Paste.OSRDCH()
		if forceRTS {
			m.CPU.A = a
			m.forceRTS()
		}
	}
	for _, cb := range m.instructionCallbacks {
		cb(pc)
	}
}

// osrdchEntryPoint is the MOS's character-input entry point that the
// paste engine intercepts (spec §4.7).
const osrdchEntryPoint = 0xFFE0

// forceRTS gives the effect of an RTS ($60) executed in place of the
// opcode at PC, with carry cleared (spec §4.7): it pops the return
// address and resumes after it. Memory is not modified; only the CPU's
// PC, S and carry flag change.
func (m *Machine) forceRTS() {
	m.CPU.PC = m.cpuPullReturnAddress() + 1
	m.CPU.P &^= 0x01 // clear carry
}

// cpuPullReturnAddress pops the two bytes RTS would have popped, i.e.
// the address JSR OSRDCH pushed (return address - 1).
func (m *Machine) cpuPullReturnAddress() uint16 {
	lo := m.Read(0x0100 | uint16(m.CPU.S+1))
	hi := m.Read(0x0100 | uint16(m.CPU.S+2))
	m.CPU.S += 2
	return uint16(lo) | uint16(hi)<<8
}

// AddInstructionCallback registers an additional host-side callback
// invoked on every instruction fetch, after the debugger/trace/paste
// hooks have run.
func (m *Machine) AddInstructionCallback(cb func(pc uint16)) {
	m.instructionCallbacks = append(m.instructionCallbacks, cb)
}

// Step advances the machine by exactly one 2 MHz bus cycle, per spec §2's
// control flow: video for this cycle, odd-cycle peripherals, then the CPU.
func (m *Machine) Step() {
	m.stepVideo()

	if m.Cycle&1 == 1 {
		nmi, sample, sampleReady := m.Bus.Update()
		m.CPU.RaiseNMI(nmi)
		if sampleReady {
			m.consumeAudioSample(sample)
		}
	}

	m.CPU.IRQLine = m.Bus.SystemVIA.IRQ() || m.Bus.UserVIA.IRQ()

	if m.Debugger != nil {
		m.Debugger.Tick()
	}
	if !m.halted() {
		m.CPU.Tick()
	}

	m.Cycle++
}

func (m *Machine) halted() bool {
	return m.Debugger != nil && m.Debugger.IsHalted()
}

// audioSamples buffers the last frame's worth of PSG output; a host reads
// it back with DrainAudioSamples.
func (m *Machine) consumeAudioSample(sample int16) {
	m.audioSamples = append(m.audioSamples, sample)
}

// DrainAudioSamples returns and clears the buffered audio samples
// produced since the last call.
func (m *Machine) DrainAudioSamples() []int16 {
	out := m.audioSamples
	m.audioSamples = nil
	return out
}

// stepVideo runs the CRTC/ULA/teletext/TV pipeline for one CPU cycle. The
// CRTC itself is clocked at half rate (spec §4.4 "twice its internal
// state at even cycles" describes the CPU stepping the video pipeline
// every cycle while the CRTC's own character counter only advances on
// every other call), so a CRTC character cycle completes every two calls
// to stepVideo.
func (m *Machine) stepVideo() {
	vp := m.Video
	if m.Cycle&1 != 0 {
		return
	}

	out := vp.CRTC.Clock()

	if out.VSync && !vp.prevDisplay {
		vp.Teletext.StartOfFrame(vp.linesThisFrame)
		vp.linesThisFrame = 0
	}
	if out.Raster == 0 && out.Display {
		vp.linesThisFrame++
	}

	ramAddr, isTeletext := bigpage.TranslateVideoAddress(out.Address, vp.teletextBases, vp.wrapAdjIndex, out.Raster, 0)

	var b uint8
	if isTeletext || out.Display {
		screenMap := m.Paging.Default
		if vp.shadowDisplay && m.Paging.Shadow != nil {
			screenMap = m.Paging.Shadow
		}
		b = screenMap.ReadByte(ramAddr)
	}

	unit := video.VideoDataUnit{
		HSync: out.HSync,
		VSync: out.VSync,
	}

	if vp.ULA.Teletext() {
		cell := vp.Teletext.Decode(b)
		px := video.Expand(cell)
		unit.Pixels = px
		unit.NumPixels = 12
		unit.IsTeletext = true
	} else {
		vp.ULA.Latch(b)
		n := vp.ULA.PixelsPerByte()
		for i := 0; i < n && i < 12; i++ {
			unit.Pixels[i] = vp.ULA.Shift()
		}
		unit.NumPixels = n
	}

	if m.cfg.TrackVideoMetadata {
		unit.Address = out.Address
		unit.Byte = b
		unit.DISPEN = out.Display
		unit.CUDISP = out.CUDisp
	}

	vp.TV.ConsumeUnit(unit)
	vp.prevDisplay = out.Display
}
