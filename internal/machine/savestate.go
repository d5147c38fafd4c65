package machine

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"beeb-core/internal/bigpage"
	"beeb-core/internal/paste"
	"beeb-core/internal/peripherals"
	"beeb-core/internal/video"
)

func init() {
	gob.Register(CPUState{})
	gob.Register(MachineState{})
	gob.Register(peripherals.VIAState{})
	gob.Register(peripherals.PSGState{})
	gob.Register(video.State{})
	gob.Register(video.ULAState{})
	gob.Register(video.TeletextState{})
}

// savestateVersion guards against loading a state saved by an
// incompatible build.
const savestateVersion = 1

// CPUState mirrors the 6502/65C02 register file (spec "MachineState"'s
// "CPU register bank").
type CPUState struct {
	A, X, Y, S, P uint8
	PC            uint16
}

// MachineState is the complete savestate unit spec §3/§6 describes. ROM
// image bytes (OS, any sideways bank still backed by shared ROM) are
// deliberately not part of it: they are loaded once at construction and
// LoadState leaves them as they are, so a state is restored into a
// Machine built from the same ROM images.
type MachineState struct {
	Version int

	CPU   CPUState
	Cycle uint64

	RAM      []byte
	Sideways [bigpage.SidewaysBanks][]byte // nil unless that bank is sideways RAM
	Romsel   uint8
	Acccon   uint8

	SystemVIA, UserVIA peripherals.VIAState
	PSG                peripherals.PSGState
	Keyboard           keyboardState
	HasRTC             bool
	RTCRegisters       []byte
	RTCAddr            uint8

	CRTC     video.State
	ULA      video.ULAState
	Teletext video.TeletextState

	TeletextBases [2]uint16
	WrapAdjIndex  uint8
	ShadowDisplay bool

	PasteState    paste.State
	PasteText     []byte
	PasteIndex    int
	PasteDeadline uint64
}

// keyboardState mirrors the key matrix Keyboard.Snapshot/Restore operate
// on; Keyboard itself returns raw values rather than a named struct, so
// this is where the savestate ties them together.
type keyboardState struct {
	Down   [16][8]bool
	Column uint8
}

// SaveState captures a complete snapshot of the machine.
func (m *Machine) SaveState() ([]byte, error) {
	state := MachineState{
		Version: savestateVersion,
		CPU: CPUState{
			A: m.CPU.A, X: m.CPU.X, Y: m.CPU.Y, S: m.CPU.S, P: m.CPU.P, PC: m.CPU.PC,
		},
		Cycle:  m.Cycle,
		RAM:    append([]byte(nil), m.Paging.RAM()...),
		Romsel: m.Paging.Romsel,
		Acccon: m.Paging.Acccon,

		SystemVIA: m.Bus.SystemVIA.Snapshot(),
		UserVIA:   m.Bus.UserVIA.Snapshot(),
		PSG:       m.Bus.PSG.Snapshot(),

		CRTC:     m.Video.CRTC.Snapshot(),
		ULA:      m.Video.ULA.Snapshot(),
		Teletext: m.Video.Teletext.Snapshot(),

		TeletextBases: m.Video.teletextBases,
		WrapAdjIndex:  m.Video.wrapAdjIndex,
		ShadowDisplay: m.Video.shadowDisplay,

		PasteState: m.Paste.State(),
	}

	down, column := m.Bus.Keyboard.Snapshot()
	state.Keyboard = keyboardState{Down: down, Column: column}

	for bank, owned := range sidewaysRAMBanks(m.Paging) {
		if owned != nil {
			state.Sideways[bank] = append([]byte(nil), owned...)
		}
	}

	if m.Bus.RTC != nil {
		state.HasRTC = true
		state.RTCRegisters = m.Bus.RTC.NVRAM()
		state.RTCAddr = m.Bus.RTC.Addr()
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		return nil, fmt.Errorf("machine: encode save state: %w", err)
	}
	return buf.Bytes(), nil
}

// LoadState restores a snapshot previously produced by SaveState. The
// machine must already be constructed with the same Config (variant,
// ROM images, sideways bank layout) the snapshot was taken from;
// LoadState only restores mutable runtime state, not the fixed memory
// shape.
func (m *Machine) LoadState(data []byte) error {
	var state MachineState
	if err := gob.NewDecoder(bytes.NewBuffer(data)).Decode(&state); err != nil {
		return fmt.Errorf("machine: decode save state: %w", err)
	}
	if state.Version != savestateVersion {
		return fmt.Errorf("machine: unsupported save state version %d (expected %d)", state.Version, savestateVersion)
	}

	m.CPU.A, m.CPU.X, m.CPU.Y, m.CPU.S, m.CPU.P, m.CPU.PC =
		state.CPU.A, state.CPU.X, state.CPU.Y, state.CPU.S, state.CPU.P, state.CPU.PC
	m.Cycle = state.Cycle

	if len(state.RAM) == len(m.Paging.RAM()) {
		m.Paging.RestoreRAM(state.RAM)
	}
	m.Paging.UpdateROMSEL(state.Romsel)
	m.Paging.UpdateACCCON(state.Acccon)

	m.Bus.SystemVIA.Restore(state.SystemVIA)
	m.Bus.UserVIA.Restore(state.UserVIA)
	m.Bus.PSG.Restore(state.PSG)
	m.Bus.Keyboard.Restore(state.Keyboard.Down, state.Keyboard.Column)

	m.Video.CRTC.Restore(state.CRTC)
	m.Video.ULA.Restore(state.ULA)
	m.Video.Teletext.Restore(state.Teletext)
	m.Video.teletextBases = state.TeletextBases
	m.Video.wrapAdjIndex = state.WrapAdjIndex
	m.Video.shadowDisplay = state.ShadowDisplay

	if m.Bus.RTC != nil && state.HasRTC {
		m.Bus.RTC.Restore(state.RTCRegisters, state.RTCAddr)
	}

	for bank, saved := range state.Sideways {
		if saved == nil {
			continue
		}
		banks := sidewaysRAMBanks(m.Paging)
		if bank < len(banks) && banks[bank] != nil && len(saved) == len(banks[bank]) {
			copy(banks[bank], saved)
		}
	}

	return nil
}

func sidewaysRAMBanks(p *bigpage.Paging) [bigpage.SidewaysBanks][]byte {
	return p.SidewaysRAMBanks()
}
