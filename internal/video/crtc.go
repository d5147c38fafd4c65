// Package video implements the machine's display pipeline: a 6845-style
// CRTC driving a Video ULA pixel serialiser and an SAA5050-style
// teletext decoder, scanned out through a fixed-size TV texture.
package video

// CRTC register indices, matching the Motorola 6845/Hitachi HD6845S
// register file the BBC Micro uses.
const (
	RegHTotal = iota
	RegHDisplayed
	RegHSyncPos
	RegSyncWidth
	RegVTotal
	RegVTotalAdjust
	RegVDisplayed
	RegVSyncPos
	RegInterlace
	RegMaxScanLine
	RegCursorStart
	RegCursorEnd
	RegStartAddrHi
	RegStartAddrLo
	RegCursorHi
	RegCursorLo
	RegLightPenHi
	RegLightPenLo
	numCRTCRegs = 18
)

// CRTCOutput is what one clocked CRTC cycle hands the rest of the video
// pipeline, per spec §4.4 step 1.
type CRTCOutput struct {
	HSync    bool
	VSync    bool
	Display  bool
	CUDisp   bool
	Address  uint16
	Raster   uint8
}

// CRTC models the 6845's internal counters: horizontal character
// counter, scanline counter, vertical character counter, and the
// memory address counter/latch pair the video pipeline reads from.
type CRTC struct {
	regs    [numCRTCRegs]uint8
	selReg  uint8

	hCounter   uint8
	scanline   uint8
	vCounter   uint8
	vAdjust    uint8
	address    uint16
	rowAddress uint16

	inVSync    bool
	vSyncCount uint8
	inHSync    bool
	hSyncCount uint8
	cursorOn   bool
}

// NewCRTC returns a CRTC with every register zeroed, matching power-on.
func NewCRTC() *CRTC { return &CRTC{} }

// SelectRegister latches the register index addressed by subsequent
// WriteRegister/ReadRegister calls (CRTC address register, offset 0).
func (c *CRTC) SelectRegister(index uint8) { c.selReg = index & 0x1F }

// WriteRegister writes to the currently selected register (CRTC data
// register, offset 1).
func (c *CRTC) WriteRegister(value uint8) {
	if int(c.selReg) < numCRTCRegs {
		c.regs[c.selReg] = value
	}
}

// ReadRegister reads back the currently selected register's last written
// value (every register in the file reads back); an index past the file
// reads 0xFF.
func (c *CRTC) ReadRegister() uint8 {
	if int(c.selReg) < numCRTCRegs {
		return c.regs[c.selReg]
	}
	return 0xFF
}

func (c *CRTC) startAddress() uint16 {
	return uint16(c.regs[RegStartAddrHi]&0x3F)<<8 | uint16(c.regs[RegStartAddrLo])
}

// Clock advances the CRTC by one character cycle and returns the bus
// state the rest of the video pipeline needs.
func (c *CRTC) Clock() CRTCOutput {
	hTotal := c.regs[RegHTotal]
	hDisplayed := c.regs[RegHDisplayed]
	vTotal := c.regs[RegVTotal] & 0x7F
	vDisplayed := c.regs[RegVDisplayed] & 0x7F
	maxScanLine := c.regs[RegMaxScanLine] & 0x1F

	display := c.hCounter < hDisplayed && c.vCounter < vDisplayed

	out := CRTCOutput{
		Display: display,
		Address: c.address,
		Raster:  c.scanline,
	}

	if c.hCounter == c.regs[RegHSyncPos] && c.regs[RegSyncWidth]&0x0F != 0 {
		c.inHSync = true
		c.hSyncCount = 0
	}
	if c.inHSync {
		out.HSync = true
		c.hSyncCount++
		if c.hSyncCount >= c.regs[RegSyncWidth]&0x0F {
			c.inHSync = false
		}
	}

	if c.vCounter == c.regs[RegVSyncPos]&0x7F && c.scanline == 0 {
		c.inVSync = true
		c.vSyncCount = 0
	}
	if c.inVSync {
		out.VSync = true
		c.vSyncCount++
		vSyncWidth := c.regs[RegSyncWidth] >> 4
		if vSyncWidth == 0 {
			vSyncWidth = 16
		}
		if c.vSyncCount >= vSyncWidth {
			c.inVSync = false
		}
	}

	cursorStart := c.regs[RegCursorStart] & 0x1F
	cursorEnabled := c.regs[RegCursorStart]&0x60 != 0x20
	cursorPos := uint16(c.regs[RegCursorHi]&0x3F)<<8 | uint16(c.regs[RegCursorLo])
	wasCursor := c.cursorOn
	c.cursorOn = cursorEnabled && c.address == cursorPos && c.scanline >= cursorStart && c.scanline <= c.regs[RegCursorEnd]&0x1F
	out.CUDisp = c.cursorOn && !wasCursor

	if display {
		c.address = (c.address + 1) & 0x3FFF
	}

	c.hCounter++
	if c.hCounter > hTotal {
		c.hCounter = 0
		c.advanceLine(maxScanLine, vTotal)
	}

	return out
}

func (c *CRTC) advanceLine(maxScanLine, vTotal uint8) {
	c.scanline++
	if c.scanline > maxScanLine {
		c.scanline = 0
		c.vCounter++
		c.address = c.rowAddress
		if c.vCounter <= c.regs[RegVDisplayed]&0x7F {
			c.rowAddress = c.address
		}
		if c.vCounter > vTotal {
			c.vCounter = 0
			c.vAdjust = 0
			c.address = c.startAddress()
			c.rowAddress = c.address
		}
	} else if c.scanline == 1 {
		c.address = c.rowAddress
	}
}

// State is a gob-friendly snapshot of every CRTC register and internal
// counter, for savestate and clone support.
type State struct {
	Regs   [numCRTCRegs]uint8
	SelReg uint8

	HCounter   uint8
	Scanline   uint8
	VCounter   uint8
	VAdjust    uint8
	Address    uint16
	RowAddress uint16

	InVSync    bool
	VSyncCount uint8
	InHSync    bool
	HSyncCount uint8
	CursorOn   bool
}

// Snapshot captures this CRTC's complete state.
func (c *CRTC) Snapshot() State {
	return State{
		Regs: c.regs, SelReg: c.selReg,
		HCounter: c.hCounter, Scanline: c.scanline, VCounter: c.vCounter, VAdjust: c.vAdjust,
		Address: c.address, RowAddress: c.rowAddress,
		InVSync: c.inVSync, VSyncCount: c.vSyncCount,
		InHSync: c.inHSync, HSyncCount: c.hSyncCount,
		CursorOn: c.cursorOn,
	}
}

// Restore replaces this CRTC's complete state with a previously captured
// Snapshot.
func (c *CRTC) Restore(s State) {
	c.regs, c.selReg = s.Regs, s.SelReg
	c.hCounter, c.scanline, c.vCounter, c.vAdjust = s.HCounter, s.Scanline, s.VCounter, s.VAdjust
	c.address, c.rowAddress = s.Address, s.RowAddress
	c.inVSync, c.vSyncCount = s.InVSync, s.VSyncCount
	c.inHSync, c.hSyncCount = s.InHSync, s.HSyncCount
	c.cursorOn = s.CursorOn
}
