package peripherals

// PSG models the SN76489: three tone channels plus one noise channel,
// each with its own 4-bit attenuator, driven by a stream of register
// writes on a single 8-bit data port.
type PSG struct {
	toneFreq [3]uint16
	toneAtt  [3]uint8
	tonePos  [3]uint16
	toneOut  [3]bool

	noiseMode uint8 // low 2 bits: shift-rate select; bit 2: white(1)/periodic(0)
	noiseAtt  uint8
	noiseLFSR uint16
	noiseOut  bool
	noiseDiv  uint16

	latchedChannel uint8
	latchedIsFreq  bool
}

const noiseLFSRInit = 0x4000

// NewPSG returns a freshly reset SN76489 with all channels attenuated
// (silent), matching the real chip's power-on state.
func NewPSG() *PSG {
	p := &PSG{noiseLFSR: noiseLFSRInit}
	for i := range p.toneAtt {
		p.toneAtt[i] = 0x0F
	}
	p.noiseAtt = 0x0F
	return p
}

// Write feeds one byte to the PSG's data port, exactly as the real chip
// receives it: a byte with bit 7 set latches a channel+type and (for
// attenuation, or the low 4 bits of frequency), a byte with bit 7 clear
// supplies the high 6 bits of a previously latched frequency register.
func (p *PSG) Write(value uint8) {
	if value&0x80 != 0 {
		channel := (value >> 5) & 0x03
		isAttenuation := value&0x10 != 0
		data := value & 0x0F

		p.latchedChannel = channel
		p.latchedIsFreq = !isAttenuation

		if isAttenuation {
			p.setAttenuation(channel, data)
		} else {
			p.setFreqLow(channel, data)
		}
		return
	}

	data := value & 0x3F
	if p.latchedIsFreq {
		p.setFreqHigh(p.latchedChannel, data)
	} else {
		p.setAttenuation(p.latchedChannel, data&0x0F)
	}
}

func (p *PSG) setAttenuation(channel uint8, att uint8) {
	if channel == 3 {
		p.noiseAtt = att
		return
	}
	p.toneAtt[channel] = att
}

func (p *PSG) setFreqLow(channel uint8, low uint8) {
	if channel == 3 {
		p.noiseMode = low & 0x07
		p.resetNoise()
		return
	}
	p.toneFreq[channel] = (p.toneFreq[channel] & 0x3F0) | uint16(low)
}

func (p *PSG) setFreqHigh(channel uint8, high uint8) {
	if channel == 3 {
		return
	}
	p.toneFreq[channel] = (p.toneFreq[channel] & 0x0F) | uint16(high)<<4
}

func (p *PSG) resetNoise() {
	p.noiseLFSR = noiseLFSRInit
}

// State is a gob-friendly snapshot of every PSG register and internal
// divider, for savestate and clone support.
type PSGState struct {
	ToneFreq [3]uint16
	ToneAtt  [3]uint8
	TonePos  [3]uint16
	ToneOut  [3]bool

	NoiseMode uint8
	NoiseAtt  uint8
	NoiseLFSR uint16
	NoiseOut  bool
	NoiseDiv  uint16

	LatchedChannel uint8
	LatchedIsFreq  bool
}

// Snapshot captures this PSG's complete state.
func (p *PSG) Snapshot() PSGState {
	return PSGState{
		ToneFreq: p.toneFreq, ToneAtt: p.toneAtt, TonePos: p.tonePos, ToneOut: p.toneOut,
		NoiseMode: p.noiseMode, NoiseAtt: p.noiseAtt, NoiseLFSR: p.noiseLFSR,
		NoiseOut: p.noiseOut, NoiseDiv: p.noiseDiv,
		LatchedChannel: p.latchedChannel, LatchedIsFreq: p.latchedIsFreq,
	}
}

// Restore replaces this PSG's complete state with a previously captured
// Snapshot.
func (p *PSG) Restore(s PSGState) {
	p.toneFreq, p.toneAtt, p.tonePos, p.toneOut = s.ToneFreq, s.ToneAtt, s.TonePos, s.ToneOut
	p.noiseMode, p.noiseAtt, p.noiseLFSR = s.NoiseMode, s.NoiseAtt, s.NoiseLFSR
	p.noiseOut, p.noiseDiv = s.NoiseOut, s.NoiseDiv
	p.latchedChannel, p.latchedIsFreq = s.LatchedChannel, s.LatchedIsFreq
}

// attenuationTable converts a 4-bit SN76489 attenuation code (0 = loud,
// 15 = silent, 2 dB per step) to a linear amplitude out of 8191.
var attenuationTable = buildAttenuationTable()

func buildAttenuationTable() [16]int16 {
	var t [16]int16
	level := 8191.0
	for i := 0; i < 15; i++ {
		t[i] = int16(level)
		level /= 1.2589254 // 10^(2/20), i.e. 2 dB per step
	}
	t[15] = 0
	return t
}

// Clock advances every channel's internal divider by one PSG clock
// cycle. The caller is expected to call Clock at the chip's own clock
// rate and Sample at the host's output sample rate (spec's "every
// 2^SOUND_CLOCK_SHIFT odd cycles" cadence is implemented by the owning
// machine, not here).
func (p *PSG) Clock() {
	for ch := 0; ch < 3; ch++ {
		period := p.toneFreq[ch]
		if period == 0 {
			period = 1
		}
		p.tonePos[ch]++
		if p.tonePos[ch] >= period {
			p.tonePos[ch] = 0
			p.toneOut[ch] = !p.toneOut[ch]
		}
	}

	var noisePeriod uint16
	switch p.noiseMode & 0x03 {
	case 0:
		noisePeriod = 0x10
	case 1:
		noisePeriod = 0x20
	case 2:
		noisePeriod = 0x40
	default:
		noisePeriod = p.toneFreq[2]
		if noisePeriod == 0 {
			noisePeriod = 1
		}
	}

	p.noiseDiv++
	if p.noiseDiv >= noisePeriod {
		p.noiseDiv = 0
		p.noiseOut = !p.noiseOut
		if p.noiseOut {
			p.stepLFSR()
		}
	}
}

func (p *PSG) stepLFSR() {
	var feedback uint16
	if p.noiseMode&0x04 != 0 {
		feedback = ((p.noiseLFSR >> 0) ^ (p.noiseLFSR >> 3)) & 1
	} else {
		feedback = p.noiseLFSR & 1
	}
	p.noiseLFSR = (p.noiseLFSR >> 1) | (feedback << 14)
}

// Sample mixes the current state of all four channels into one signed
// 16-bit PCM sample.
func (p *PSG) Sample() int16 {
	var sum int32
	for ch := 0; ch < 3; ch++ {
		if p.toneOut[ch] {
			sum += int32(attenuationTable[p.toneAtt[ch]])
		} else {
			sum -= int32(attenuationTable[p.toneAtt[ch]])
		}
	}
	if p.noiseLFSR&1 != 0 {
		sum += int32(attenuationTable[p.noiseAtt])
	} else {
		sum -= int32(attenuationTable[p.noiseAtt])
	}
	return int16(sum / 4)
}
