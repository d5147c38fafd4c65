package peripherals

// NetworkLink is the optional external collaborator that can feed the
// user VIA's port B instead of leaving it idle, called only from the
// odd-cycle update on the emulation thread (spec §5).
type NetworkLink interface {
	// Poll returns the byte the user VIA's port B should read this
	// cycle.
	Poll() uint8
}

// SoundClockShift is the number of odd cycles between emitted PSG
// samples (2^SoundClockShift = 4).
const SoundClockShift = 2

// Addressable-latch bit indices within system-VIA port B.
const (
	latchBitSelect0    = 0
	latchBitSelect1    = 1
	latchBitSelect2    = 2
	latchBitValue      = 3
	LatchBitSoundWrite = 0 // sound-write gate, indexed by the latch
	LatchBitKBWrite     = 1 // keyboard-write gate
)

// Bus ties together the two VIAs and the chips hung off them (keyboard,
// sound, RTC, FDC) and implements the odd-cycle update spec §4.5
// describes.
type Bus struct {
	SystemVIA *VIA
	UserVIA   *VIA
	Keyboard  *Keyboard
	PSG       *PSG
	FDC       *FDC
	RTC       *RTC // nil on models without one
	Network   NetworkLink

	latch     uint8
	lastPortB uint8
	oddCycles uint64
	rtcASLast bool
}

// NewBus wires up a fresh, idle peripheral bus. rtc may be nil on
// variants without a real-time clock.
func NewBus(rtc *RTC) *Bus {
	return &Bus{
		SystemVIA: NewVIA(),
		UserVIA:   NewVIA(),
		Keyboard:  NewKeyboard(),
		PSG:       NewPSG(),
		FDC:       NewFDC(),
		RTC:       rtc,
	}
}

func (b *Bus) latchBit(index int) bool { return b.latch&(1<<uint(index)) != 0 }

// Update performs one odd-cycle peripheral step per spec §4.5, returning
// whether NMI should currently be asserted (from the FDC) and whether a
// new sound sample was produced this cycle.
func (b *Bus) Update() (nmi bool, sample int16, sampleReady bool) {
	kbWrite := b.latchBit(LatchBitKBWrite)
	if kbWrite {
		b.SystemVIA.CA2 = b.Keyboard.AutoScan()
	} else {
		selected := b.SystemVIA.ReadMMIO(RegORA)
		bit7 := b.Keyboard.ManualScan(selected & 0x7F)
		if bit7 {
			b.SystemVIA.InputA |= 0x80
		} else {
			b.SystemVIA.InputA &^= 0x80
		}
	}

	// Joystick fire/analogue-compare bits are tied high (not fitted).
	b.UserVIA.InputB |= 0xFF

	if b.Network != nil {
		b.UserVIA.InputB = b.Network.Poll()
	} else {
		b.UserVIA.InputB = 0xFF
	}

	b.SystemVIA.Clock()
	b.UserVIA.Clock()

	nmi = b.FDC.Clock()

	b.oddCycles++
	if b.oddCycles&((1<<SoundClockShift)-1) == 0 {
		if b.latchBit(LatchBitSoundWrite) {
			portA := b.SystemVIA.ReadMMIO(RegORA)
			b.PSG.Write(portA)
		}
		b.PSG.Clock()
		sample = b.PSG.Sample()
		sampleReady = true
	}

	return nmi, sample, sampleReady
}

// WriteSystemORB is how the CPU-facing MMIO dispatch must route writes
// to the system VIA's output register B, so that any change is
// evaluated against the addressable latch immediately rather than
// waiting for the next odd-cycle Update.
func (b *Bus) WriteSystemORB(value uint8) {
	b.SystemVIA.WriteMMIO(RegORB, value)
	newPortB := b.SystemVIA.ReadMMIO(RegORB)
	if newPortB != b.lastPortB {
		b.updateAddressableLatch(newPortB)
	}
	b.lastPortB = newPortB
}

// updateAddressableLatch implements spec §4.5's "any change of
// system-VIA port B" reaction: the low three bits select a latch bit,
// bit 3 supplies its new value, and (Master only) additional bits drive
// the RTC's address and data strobes.
func (b *Bus) updateAddressableLatch(portB uint8) {
	index := portB & 0x07
	value := portB&(1<<latchBitValue) != 0

	if value {
		b.latch |= 1 << index
	} else {
		b.latch &^= 1 << index
	}

	if b.RTC == nil {
		return
	}

	// Master-only bits: bit 4 is the RTC address strobe (AS), bit 5 is
	// chip-select (CS).
	as := portB&(1<<4) != 0
	cs := portB&(1<<5) != 0

	if cs && b.rtcASLast && !as {
		b.RTC.Latch(b.SystemVIA.ReadMMIO(RegORA))
	}
	b.rtcASLast = as

	if cs {
		if b.SystemVIA.DDRA == 0xFF {
			b.RTC.Write(b.SystemVIA.ReadMMIO(RegORA))
		} else {
			b.SystemVIA.InputA = b.RTC.Data()
		}
	}
}
