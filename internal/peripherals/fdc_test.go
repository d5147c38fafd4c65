package peripherals

import (
	"testing"

	"beeb-core/internal/discimage"
)

func blankSSD40() *discimage.DiscImage {
	geo := discimage.Geometry{Tracks: 40, SectorsPerTrack: 10, BytesPerSector: 256}
	di, err := discimage.LoadFromBuffer("test.ssd", "file", make([]byte, geo.Size()), geo)
	if err != nil {
		panic(err)
	}
	return di
}

func TestExecuteWithNoDriveReportsNoDrive(t *testing.T) {
	f := NewFDC()
	f.Execute(CmdReadSector, make([]byte, 4))
	if f.Result() != ResultNoDrive {
		t.Fatalf("Result() = %#x, want ResultNoDrive", f.Result())
	}
}

func TestReadSectorCopiesBytesAndRaisesNMI(t *testing.T) {
	f := NewFDC()
	di := blankSSD40()
	if err := di.Write(0, 0, 0, 0, 0x7A); err != nil {
		t.Fatalf("Write: %v", err)
	}
	f.SetDrive(0, di)
	f.SelectDrive(0)
	f.SetGeometry(0, 0, 0)

	buf := make([]byte, 4)
	f.Execute(CmdReadSector, buf)
	if buf[0] != 0x7A {
		t.Fatalf("buf[0] = %#x, want 0x7A", buf[0])
	}
	if f.Result() != ResultOK {
		t.Fatalf("Result() = %#x, want ResultOK", f.Result())
	}
	if !f.Clock() {
		t.Fatalf("expected an NMI pulse after command completion")
	}
	if f.Clock() {
		t.Fatalf("expected the NMI pulse to be one cycle only")
	}
}

func TestWriteSectorThenReadBack(t *testing.T) {
	f := NewFDC()
	di := blankSSD40()
	f.SetDrive(0, di)
	f.SelectDrive(0)
	f.SetGeometry(1, 2, 0)

	f.Execute(CmdWriteSector, []byte{0x11, 0x22, 0x33})
	if f.Result() != ResultOK {
		t.Fatalf("write Result() = %#x, want ResultOK", f.Result())
	}

	buf := make([]byte, 3)
	f.Execute(CmdReadSector, buf)
	if buf[0] != 0x11 || buf[1] != 0x22 || buf[2] != 0x33 {
		t.Fatalf("read-back = % x, want 11 22 33", buf)
	}
}

func TestOutOfBoundsGeometryFails(t *testing.T) {
	f := NewFDC()
	di := blankSSD40()
	f.SetDrive(0, di)
	f.SelectDrive(0)
	f.SetGeometry(200, 0, 0)

	f.Execute(CmdReadSector, make([]byte, 1))
	if f.Result() != ResultOutOfBounds {
		t.Fatalf("Result() = %#x, want ResultOutOfBounds", f.Result())
	}
}
