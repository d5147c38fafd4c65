package peripherals

import "time"

// RTC models the Master's real-time clock/NVRAM chip: a small register
// file addressed by a latched register index, with bytes 0-9 reflecting
// live calendar time and the rest opaque NVRAM the caller persists
// across sessions.
type RTC struct {
	registers [64]uint8
	addr      uint8
}

const (
	rtcRegSeconds = 0
	rtcRegMinutes = 2
	rtcRegHours   = 4
	rtcRegDay     = 7
	rtcRegMonth   = 8
	rtcRegYear    = 9
)

// NewRTC returns an RTC seeded from nvram (the full persisted register
// file; shorter slices are zero-padded) and, if now is non-nil, with the
// live calendar registers set from it.
func NewRTC(nvram []byte, now *time.Time) *RTC {
	r := &RTC{}
	copy(r.registers[:], nvram)
	if now != nil {
		r.SetTime(*now)
	}
	return r
}

func toBCD(v int) uint8 { return uint8((v/10)<<4 | (v % 10)) }

// SetTime loads the live calendar registers from t.
func (r *RTC) SetTime(t time.Time) {
	r.registers[rtcRegSeconds] = toBCD(t.Second())
	r.registers[rtcRegMinutes] = toBCD(t.Minute())
	r.registers[rtcRegHours] = toBCD(t.Hour())
	r.registers[rtcRegDay] = toBCD(t.Day())
	r.registers[rtcRegMonth] = toBCD(int(t.Month()))
	r.registers[rtcRegYear] = toBCD(t.Year() % 100)
}

// NVRAM returns the full persisted register file, suitable for saving
// and passing back into NewRTC on a later run.
func (r *RTC) NVRAM() []byte {
	out := make([]byte, len(r.registers))
	copy(out, r.registers[:])
	return out
}

// Latch sets the register index that the next data strobe will read or
// write, per the addressable latch's RTC address-strobe behaviour.
func (r *RTC) Latch(addr uint8) {
	r.addr = addr & 0x3F
}

// Data returns the currently latched register's value.
func (r *RTC) Data() uint8 { return r.registers[r.addr] }

// Write stores value into the currently latched register.
func (r *RTC) Write(value uint8) {
	r.registers[r.addr] = value
}

// Addr returns the currently latched register index, for savestate and
// clone support.
func (r *RTC) Addr() uint8 { return r.addr }

// Restore replaces the register file and latched address with previously
// captured values, for savestate support. len(registers) must equal
// len(r.registers); shorter or longer slices are ignored byte-for-byte
// beyond what copy handles.
func (r *RTC) Restore(registers []byte, addr uint8) {
	copy(r.registers[:], registers)
	r.addr = addr & 0x3F
}
