package peripherals

import "beeb-core/internal/discimage"

// FDC models an 8271-class floppy disc controller driving up to two
// drives, each an attached *discimage.DiscImage. Real controller command
// sequencing (seek/verify/multi-sector chaining) is reduced to
// single-sector read and write commands plus a seek, which is everything the
// owning machine's MMIO surface needs to drive disc I/O.
type FDC struct {
	drives   [2]*discimage.DiscImage
	selected int

	command uint8
	status  uint8
	result  uint8

	track, sector int
	side          int

	nmiPending bool
}

// FDC status-register bits.
const (
	StatusBusy   = 1 << 7
	StatusResult = 1 << 4
)

// FDC commands recognised on the command register.
const (
	CmdReadSector  = 0x00
	CmdWriteSector = 0x01
	CmdSeek        = 0x02
)

// Result codes.
const (
	ResultOK          = 0x00
	ResultNoDrive     = 0x10
	ResultOutOfBounds = 0x18
)

// NewFDC returns a reset FDC with no drives attached.
func NewFDC() *FDC { return &FDC{} }

// SetDrive attaches (or, with nil, detaches) a disc image to drive.
func (f *FDC) SetDrive(drive int, image *discimage.DiscImage) {
	if drive < 0 || drive > 1 {
		return
	}
	f.drives[drive] = image
}

// SelectDrive chooses which drive subsequent commands address.
func (f *FDC) SelectDrive(drive int) {
	if drive < 0 || drive > 1 {
		return
	}
	f.selected = drive
}

// SetGeometry sets the track/sector/side a command will act on.
func (f *FDC) SetGeometry(track, sector, side int) {
	f.track, f.sector, f.side = track, sector, side
}

// Execute runs command against the selected drive's current sector
// window, transferring through buf (len(buf) bytes for a read, or the
// bytes to write for a write). It sets status/result and raises NMI on
// completion, matching the real chip's asynchronous-looking but
// synchronously-modelled command execution.
func (f *FDC) Execute(command uint8, buf []byte) {
	f.command = command
	drive := f.drives[f.selected]
	if drive == nil {
		f.result = ResultNoDrive
		f.status = StatusResult
		f.nmiPending = true
		return
	}

	var err error
	switch command {
	case CmdReadSector:
		for i := range buf {
			v, e := drive.Read(f.side, f.track, f.sector, i)
			if e != nil {
				err = e
				break
			}
			buf[i] = v
		}
	case CmdWriteSector:
		for i, v := range buf {
			if e := drive.Write(f.side, f.track, f.sector, i, v); e != nil {
				err = e
				break
			}
		}
	case CmdSeek:
		// Seek has no byte transfer; just validates the track by reading
		// byte 0 of sector 0.
		_, err = drive.Read(f.side, f.track, 0, 0)
	}

	if err != nil {
		f.result = ResultOutOfBounds
	} else {
		f.result = ResultOK
	}
	f.status = StatusResult
	f.nmiPending = true
}

// Status returns the controller's status register.
func (f *FDC) Status() uint8 { return f.status }

// Result returns the controller's result register, and clears the
// result-available status bit (reading the result register
// acknowledges it, as on the real chip).
func (f *FDC) Result() uint8 {
	f.status &^= StatusResult
	return f.result
}

// State is a gob-friendly snapshot of the controller's registers, for
// savestate and clone support. Attached disc images are not part of
// this state; the host reattaches them separately via SetDrive.
type FDCState struct {
	Selected              int
	Command, Status, Result uint8
	Track, Sector, Side   int
	NMIPending            bool
}

// Snapshot captures this controller's register state.
func (f *FDC) Snapshot() FDCState {
	return FDCState{
		Selected: f.selected,
		Command:  f.command, Status: f.status, Result: f.result,
		Track: f.track, Sector: f.sector, Side: f.side,
		NMIPending: f.nmiPending,
	}
}

// Restore replaces this controller's register state with a previously
// captured Snapshot.
func (f *FDC) Restore(s FDCState) {
	f.selected = s.Selected
	f.command, f.status, f.result = s.Command, s.Status, s.Result
	f.track, f.sector, f.side = s.Track, s.Sector, s.Side
	f.nmiPending = s.NMIPending
}

// Clock advances the controller by one cycle and reports whether it
// wants to assert the NMI line this cycle. NMI is modelled as a single
// pulse on command completion rather than held until acknowledged.
func (f *FDC) Clock() (nmi bool) {
	if f.nmiPending {
		f.nmiPending = false
		return true
	}
	return false
}
