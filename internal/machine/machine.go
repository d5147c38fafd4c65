// Package machine wires every emulated subsystem (paging, MMIO, CPU,
// video, peripherals, disc images, debugger, trace, paste) into the
// single cycle-stepped object a host program drives: construct a
// Machine for a variant, feed it ROM/disc images and key events, call
// Step in a loop, and read back the TV texture and audio samples.
package machine

import (
	"errors"
	"fmt"
	"time"

	"beeb-core/internal/bigpage"
	"beeb-core/internal/cpu6502"
	"beeb-core/internal/debugcore"
	"beeb-core/internal/diag"
	"beeb-core/internal/discimage"
	"beeb-core/internal/mmio"
	"beeb-core/internal/paste"
	"beeb-core/internal/peripherals"
	"beeb-core/internal/romshare"
	"beeb-core/internal/trace"
	"beeb-core/internal/video"
)

// Variant selects which of the three machine variants to build. It
// mirrors bigpage.Variant so callers of this package never need to
// import bigpage just to pick a variant.
type Variant = bigpage.Variant

const (
	VariantB      = bigpage.VariantB
	VariantBPlus  = bigpage.VariantBPlus
	VariantMaster = bigpage.VariantMaster
)

// CyclesPerSecond is the 6502 bus clock every variant runs at.
const CyclesPerSecond = 2_000_000

var (
	errNoDrive     = errors.New("machine: no disc image in selected drive")
	errOutOfBounds = errors.New("machine: disc access out of geometry bounds")
)

// Config describes everything a Machine needs at construction time.
type Config struct {
	Variant Variant

	OSROM    []byte                          // 16 KiB MOS image
	Sideways [bigpage.SidewaysBanks][]byte   // 16 KiB each, nil for unfitted/RAM banks
	SidewaysRAM [bigpage.SidewaysBanks]bool  // true marks a bank as sideways RAM instead of ROM

	HasRTC bool
	NVRAM  []byte // Master CMOS RAM, nil elsewhere
	Now    *time.Time

	TrackVideoMetadata bool // spec §4.4 step 9 debugger overlay
	EnableDebugger     bool
	TraceCapacity      int // 0 disables the trace sink
	DiagCapacity       int
}

func ramSizeFor(v Variant) int {
	if v == VariantB {
		return 32768
	}
	return 65536
}

// Machine is the whole emulated computer.
type Machine struct {
	cfg Config

	CPU     *cpu6502.CPU
	Paging  *bigpage.Paging
	MMIO    *mmio.Tables
	Video   *videoPipeline
	Bus     *peripherals.Bus

	Discs   [2]*discimage.DiscImage
	fdcReg  *fdcAdapter

	Paste    *paste.Engine
	ROMShare *romshare.Registry
	Debugger *debugcore.Debugger
	Trace    *trace.Sink
	Diag     *diag.Sink

	Cycle uint64

	sidewaysHashes [bigpage.SidewaysBanks]romshare.Hash
	sidewaysOwned  [bigpage.SidewaysBanks]bool
	osromHash      romshare.Hash

	instructionCallbacks []func(pc uint16)
	audioSamples         []int16
}

// videoPipeline bundles the CRTC/ULA/teletext/TV quartet plus the small
// amount of state needed to drive spec §4.4's per-cycle sequencing.
type videoPipeline struct {
	CRTC     *video.CRTC
	ULA      *video.ULA
	Teletext *video.Teletext
	TV       *video.TV

	teletextBases [2]uint16
	wrapAdjIndex  uint8
	shadowDisplay bool

	prevDisplay bool
	linesThisFrame int
}

// New builds a Machine from cfg. OSROM and any sideways ROM images are
// registered with a romshare.Registry so identical images loaded into
// several banks share one backing buffer. Each Machine creates its own
// registry here, so two Machines never share ROM buffers.
func New(cfg Config) (*Machine, error) {
	if len(cfg.OSROM) != bigpage.PageSize*bigpage.MOSCount {
		return nil, fmt.Errorf("machine: OS ROM must be exactly %d bytes", bigpage.PageSize*bigpage.MOSCount)
	}

	m := &Machine{
		cfg:      cfg,
		ROMShare: romshare.NewRegistry(),
		Paste:    &paste.Engine{},
	}

	if cfg.DiagCapacity > 0 {
		m.Diag = diag.NewSink(cfg.DiagCapacity)
	}

	osrom, osromHash := m.ROMShare.Acquire(cfg.OSROM)
	m.osromHash = osromHash

	pagingCfg := bigpage.Config{
		Variant:   cfg.Variant,
		RAMSize:   ramSizeFor(cfg.Variant),
		HasANDY:   cfg.Variant != VariantB,
		HasHazel:  cfg.Variant == VariantMaster,
		HasShadow: cfg.Variant != VariantB,
		OSROM:     osrom,
	}

	for bank := 0; bank < bigpage.SidewaysBanks; bank++ {
		if cfg.SidewaysRAM[bank] {
			pagingCfg.Sideways[bank] = bigpage.SidewaysBank{RAM: make([]byte, bigpage.PageSize*bigpage.PagesPerBank)}
			continue
		}
		img := cfg.Sideways[bank]
		if img == nil {
			continue
		}
		if len(img) != bigpage.PageSize*bigpage.PagesPerBank {
			return nil, fmt.Errorf("machine: sideways bank %d must be exactly %d bytes", bank, bigpage.PageSize*bigpage.PagesPerBank)
		}
		shared, h := m.ROMShare.Acquire(img)
		m.sidewaysHashes[bank] = h
		m.sidewaysOwned[bank] = true
		pagingCfg.Sideways[bank] = bigpage.SidewaysBank{ROM: shared}
	}

	m.Paging = bigpage.NewPaging(pagingCfg)

	if cfg.EnableDebugger {
		m.Debugger = debugcore.NewDebugger(m.Paging)
	}
	if cfg.TraceCapacity > 0 {
		m.Trace = trace.NewSink(cfg.TraceCapacity)
	}

	var rtc *peripherals.RTC
	if cfg.HasRTC {
		rtc = peripherals.NewRTC(cfg.NVRAM, cfg.Now)
	}
	m.Bus = peripherals.NewBus(rtc)
	m.fdcReg = newFDCAdapter(m.Bus.FDC, m.onDiscError)

	m.MMIO = mmio.NewTables()
	if cfg.Variant == VariantMaster {
		m.MMIO.EnableTestSheila()
	}
	m.installMMIO()

	m.Video = &videoPipeline{
		CRTC:     video.NewCRTC(),
		ULA:      video.NewULA(),
		Teletext: video.NewTeletext(),
		TV:       video.NewTV(cfg.TrackVideoMetadata),
	}

	m.CPU = cpu6502.New(m, variantFor(cfg.Variant))
	m.wireDebugHooks()
	m.CPU.Reset()

	return m, nil
}

func variantFor(v Variant) cpu6502.Variant {
	if v == VariantB {
		return cpu6502.Variant6502
	}
	return cpu6502.Variant65C02
}

// installMMIO maps the two VIAs, and this variant's FDC register window,
// into SHEILA. Model B has no RTC and thus no latch-driven RTC traffic
// beyond what peripherals.Bus already gates internally.
func (m *Machine) installMMIO() {
	sheila := m.MMIO.SHEILA
	sheila.Map(0x40, 0x5F, m.Bus.SystemVIA, true)
	sheila.Map(0x60, 0x7F, m.Bus.UserVIA, true)
	sheila.Map(0x80, 0x9F, m.fdcReg, true)

	if m.cfg.Variant == VariantMaster {
		t := m.MMIO.EnableTestSheila()
		t.Map(0x40, 0x5F, m.Bus.SystemVIA, true)
		t.Map(0x60, 0x7F, m.Bus.UserVIA, true)
	}
}

func (m *Machine) onDiscError(err error) {
	if m.Diag != nil && err != nil {
		m.Diag.Logf(diag.ComponentDisc, diag.LevelError, "disc access failed: %v", err)
	}
}

// Reset re-homes the CPU at the reset vector without disturbing RAM,
// disc images, or paging register values, matching a real machine's
// reset button rather than a power cycle.
func (m *Machine) Reset() {
	m.CPU.Reset()
}

// Read implements cpu6502.Bus: dispatch to MMIO for $FC00-$FEFF, else
// through the currently active page map (spec §4.2 step "compute
// mmio_page = abus_high - 0xFC").
func (m *Machine) Read(addr uint16) uint8 {
	high := uint8(addr >> 8)
	if mmioPage := high - 0xFC; mmioPage < 3 {
		return m.readMMIO(mmioPage, uint8(addr))
	}
	return m.activeMap().ReadByte(addr)
}

// Write implements cpu6502.Bus.
func (m *Machine) Write(addr uint16, value uint8) {
	high := uint8(addr >> 8)
	if mmioPage := high - 0xFC; mmioPage < 3 {
		m.writeMMIO(mmioPage, uint8(addr), value)
		return
	}
	m.activeMap().WriteByte(addr, value)
}

// Stretch implements cpu6502.Bus: FRED/JIM always stretch; SHEILA
// stretches per-slot. A stretching access costs 1 extra cycle when the
// current cycle is even and 2 when it is odd; any other access costs 0.
func (m *Machine) Stretch(addr uint16) int {
	high := uint8(addr >> 8)
	mmioPage := high - 0xFC
	if mmioPage >= 3 {
		return 0
	}
	stretches := true
	if mmioPage == 2 {
		stretches = m.activeSheila().Stretch(uint8(addr))
	}
	if !stretches {
		return 0
	}
	odd := uint8(m.Cycle & 1)
	return 1 + int(odd)
}

func (m *Machine) readMMIO(mmioPage, offset uint8) uint8 {
	switch mmioPage {
	case 0:
		v, _ := m.MMIO.FRED.Read(offset)
		return v
	case 1:
		v, _ := m.MMIO.JIM.Read(offset)
		return v
	default:
		v, _ := m.activeSheila().Read(offset)
		return v
	}
}

func (m *Machine) writeMMIO(mmioPage, offset, value uint8) {
	switch mmioPage {
	case 0:
		m.MMIO.FRED.Write(offset, value)
	case 1:
		m.MMIO.JIM.Write(offset, value)
	default:
		if offset == 0x30 {
			m.Paging.UpdateROMSEL(value)
			return
		}
		if offset == 0x34 && m.Paging.Variant() != VariantB {
			m.Paging.UpdateACCCON(value)
			return
		}
		if offset >= 0x40 && offset <= 0x5F && offset&0x0F == peripherals.RegORB {
			// System VIA ORB: route through WriteSystemORB so the
			// addressable latch reacts immediately, instead of the
			// generic dispatch which would only take effect on the
			// next odd-cycle Update.
			m.Bus.WriteSystemORB(value)
			return
		}
		m.activeSheila().Write(offset, value)
	}
}

func (m *Machine) activeSheila() *mmio.Table {
	return m.MMIO.ActiveSheila(m.Paging.TestMode())
}

func (m *Machine) activeMap() *bigpage.PageMap {
	return m.Paging.ActiveMap(uint8(m.CPU.PC >> 8))
}
