package machine

import "beeb-core/internal/peripherals"

// fdcAdapter exposes the simplified command/status/result peripherals.FDC
// as a byte-addressable MMIO device. The real 8271/1770 controllers are
// driven by a much richer register set (a multi-byte command FIFO,
// per-command parameter sequencing); this collapses that down to five
// registers, which is everything peripherals.FDC's single-sector
// Execute call needs filled in before it fires (see DESIGN.md).
type fdcAdapter struct {
	fdc *peripherals.FDC
	onError func(error)

	track, sector, side, drive uint8
	sectorBuf                  [256]byte
	dataIndex                  int
}

func newFDCAdapter(fdc *peripherals.FDC, onError func(error)) *fdcAdapter {
	return &fdcAdapter{fdc: fdc, onError: onError}
}

// Register offsets within the FDC's MMIO window.
const (
	fdcRegCommand = 0x00 // write: command+trigger; read: status
	fdcRegTrack   = 0x01
	fdcRegSector  = 0x02
	fdcRegSide    = 0x03 // bit0 selects side, bit1 selects drive
	fdcRegData    = 0x04 // read/write the current sector buffer byte-at-a-time
)

func (a *fdcAdapter) ReadMMIO(offset uint8) uint8 {
	switch offset & 0x1F {
	case fdcRegCommand:
		return a.fdc.Status()
	case fdcRegData:
		if a.dataIndex == 0 {
			result := a.fdc.Result()
			if result != peripherals.ResultOK && a.onError != nil {
				a.onError(fdcResultError(result))
			}
		}
		if a.dataIndex >= len(a.sectorBuf) {
			return 0
		}
		v := a.sectorBuf[a.dataIndex]
		a.dataIndex++
		return v
	default:
		return 0xFF
	}
}

func (a *fdcAdapter) WriteMMIO(offset uint8, value uint8) {
	switch offset & 0x1F {
	case fdcRegCommand:
		a.fdc.SelectDrive(int(a.drive))
		a.fdc.SetGeometry(int(a.track), int(a.sector), int(a.side))
		a.fdc.Execute(value, a.sectorBuf[:])
		a.dataIndex = 0
	case fdcRegTrack:
		a.track = value
	case fdcRegSector:
		a.sector = value
	case fdcRegSide:
		a.side = value & 0x01
		a.drive = (value >> 1) & 0x01
	case fdcRegData:
		if a.dataIndex < len(a.sectorBuf) {
			a.sectorBuf[a.dataIndex] = value
			a.dataIndex++
		}
	}
}

func fdcResultError(result uint8) error {
	switch result {
	case peripherals.ResultNoDrive:
		return errNoDrive
	case peripherals.ResultOutOfBounds:
		return errOutOfBounds
	default:
		return nil
	}
}
