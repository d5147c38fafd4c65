package video

// Teletext models the SAA5050-class teletext character decoder used
// when the Video ULA's control register selects the teletext data path.
// Full Mode 7 character-cell rendering (the 5x9 dot font, double-height
// latching, contiguous/separated graphics) is replaced here by a
// coarser per-character colour-block decode: correct enough to exercise
// the control-code colour/graphics state machine and the fixed
// six-pixel-per-character, twelve-pixel-per-output-unit cadence spec
// §4.4 describes, without a full glyph table.
type Teletext struct {
	fgColour uint8
	bgColour uint8
	graphics bool
	flash    bool
	held     bool

	lineStarted     bool
	lastFrameLength int
}

// NewTeletext returns a teletext decoder reset to white-on-black text
// mode.
func NewTeletext() *Teletext {
	return &Teletext{fgColour: 7}
}

// StartOfFrame is called on the CRTC's vsync rising edge: it records the
// completed frame's length (in lines) and resets per-frame state.
func (t *Teletext) StartOfFrame(linesThisFrame int) {
	t.lastFrameLength = linesThisFrame
	t.fgColour = 7
	t.bgColour = 0
	t.graphics = false
	t.flash = false
	t.held = false
}

// LastFrameLength returns the line count of the most recently completed
// frame.
func (t *Teletext) LastFrameLength() int { return t.lastFrameLength }

// StartOfLine is called on a display-edge rising transition.
func (t *Teletext) StartOfLine() {
	t.lineStarted = true
	t.fgColour = 7
	t.bgColour = 0
	t.graphics = false
	t.held = false
}

// EndOfLine is called on the matching falling transition.
func (t *Teletext) EndOfLine() { t.lineStarted = false }

// applyControlCode updates decoder state for a teletext control
// character (0x00-0x1F), matching the real chip's "alpha/graphics
// colour sets the new colour from the NEXT character onward" rule by
// returning the colour this character cell itself should render with
// before the state change takes effect.
func (t *Teletext) applyControlCode(code uint8) (renderFg uint8, isBlack bool) {
	renderFg = t.fgColour
	switch {
	case code <= 0x07: // alpha colour
		t.fgColour = code
		t.graphics = false
	case code == 0x08: // flash
		t.flash = true
	case code == 0x09: // steady
		t.flash = false
	case code == 0x0C: // normal height
	case code == 0x0D: // double height
	case code >= 0x10 && code <= 0x17: // graphics colour
		t.fgColour = code & 0x07
		t.graphics = true
	case code == 0x1C: // black background
		t.bgColour = 0
	case code == 0x1D: // new background
		t.bgColour = t.fgColour
	}
	return renderFg, false
}

// Decode consumes the byte latched for one character cell and produces
// six source pixels (the fixed teletext character cell width before
// horizontal doubling), each a 3-bit RGB colour index.
func (t *Teletext) Decode(b uint8) [6]uint8 {
	var cell [6]uint8
	code := b & 0x7F

	if code < 0x20 {
		fg, _ := t.applyControlCode(code)
		for i := range cell {
			cell[i] = t.bgColour
		}
		_ = fg
		return cell
	}

	fg := t.fgColour
	if t.flash {
		fg = t.bgColour // simplified: flash-off half of the cycle renders as background
	}
	filled := code != 0x20 // space renders as background
	for i := range cell {
		if filled {
			cell[i] = fg
		} else {
			cell[i] = t.bgColour
		}
	}
	return cell
}

// State is a gob-friendly snapshot of the teletext decoder's control
// state, for savestate and clone support.
type TeletextState struct {
	FgColour        uint8
	BgColour        uint8
	Graphics        bool
	Flash           bool
	Held            bool
	LineStarted     bool
	LastFrameLength int
}

// Snapshot captures this decoder's complete state.
func (t *Teletext) Snapshot() TeletextState {
	return TeletextState{
		FgColour: t.fgColour, BgColour: t.bgColour,
		Graphics: t.graphics, Flash: t.flash, Held: t.held,
		LineStarted: t.lineStarted, LastFrameLength: t.lastFrameLength,
	}
}

// Restore replaces this decoder's complete state with a previously
// captured Snapshot.
func (t *Teletext) Restore(s TeletextState) {
	t.fgColour, t.bgColour = s.FgColour, s.BgColour
	t.graphics, t.flash, t.held = s.Graphics, s.Flash, s.Held
	t.lineStarted, t.lastFrameLength = s.LineStarted, s.LastFrameLength
}

// Expand doubles a six-pixel teletext character cell horizontally into
// the twelve output pixels spec §4.4 step 5 describes.
func Expand(cell [6]uint8) [12]uint8 {
	var out [12]uint8
	for i, c := range cell {
		out[2*i] = c
		out[2*i+1] = c
	}
	return out
}
