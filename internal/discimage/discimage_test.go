package discimage

import (
	"os"
	"path/filepath"
	"testing"
)

func ssd40Bytes() []byte {
	geo := Geometry{Tracks: 40, SectorsPerTrack: 10, BytesPerSector: 256}
	return make([]byte, geo.Size())
}

func TestLoadFromBufferRejectsEmpty(t *testing.T) {
	geo, _ := FindGeometryBySize(40 * 10 * 256)
	_, err := LoadFromBuffer("x", loadMethodFile, nil, geo)
	if err == nil {
		t.Fatalf("expected error for empty buffer")
	}
}

func TestLoadFromBufferRejectsNonSectorMultiple(t *testing.T) {
	geo, _ := FindGeometryBySize(40 * 10 * 256)
	_, err := LoadFromBuffer("x", loadMethodFile, make([]byte, 10), geo)
	if err == nil {
		t.Fatalf("expected error for a size that isn't a sector multiple")
	}
}

func TestLoadFromFileUnknownSizeFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "image.ssd")
	if err := os.WriteFile(path, make([]byte, 123), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := LoadFromFile(path)
	if err == nil {
		t.Fatalf("expected unknown-geometry error for an odd-sized file")
	}
}

func TestLoadFromFileRecognisesSSD40(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "image.ssd")
	buf := ssd40Bytes()
	buf[0] = 0xAB
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	di, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if !di.CanSave() {
		t.Fatalf("expected a directly-loaded file image to be saveable")
	}
	v, err := di.Read(0, 0, 0, 0)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if v != 0xAB {
		t.Fatalf("Read(0,0,0,0) = %#x, want 0xAB", v)
	}
}

func TestReadPastEndReturnsFillByte(t *testing.T) {
	geo, _ := FindGeometryBySize(40 * 10 * 256)
	di, err := LoadFromBuffer("x", loadMethodFile, make([]byte, 256), geo)
	if err != nil {
		t.Fatalf("LoadFromBuffer: %v", err)
	}
	v, err := di.Read(0, 1, 0, 0)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if v != FillByte {
		t.Fatalf("Read past end = %#x, want FillByte", v)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	geo, _ := FindGeometryBySize(40 * 10 * 256)
	di, _ := LoadFromBuffer("x", loadMethodFile, make([]byte, geo.Size()), geo)

	if err := di.Write(0, 3, 2, 17, 0x7E); err != nil {
		t.Fatalf("Write: %v", err)
	}
	v, err := di.Read(0, 3, 2, 17)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if v != 0x7E {
		t.Fatalf("round-trip read = %#x, want 0x7E", v)
	}
}

func TestWritePastEndExtendsWithFillByte(t *testing.T) {
	geo, _ := FindGeometryBySize(40 * 10 * 256)
	di, _ := LoadFromBuffer("x", loadMethodFile, make([]byte, 256), geo)

	if err := di.Write(0, 2, 0, 5, 0x11); err != nil {
		t.Fatalf("Write: %v", err)
	}
	// the sector at track 2 sector 0 didn't exist before; bytes in
	// between should have been filled, not left zero.
	v, err := di.Read(0, 1, 9, 255)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if v != FillByte {
		t.Fatalf("gap byte = %#x, want FillByte", v)
	}
}

func TestOutOfGeometryReadFails(t *testing.T) {
	geo, _ := FindGeometryBySize(40 * 10 * 256)
	di, _ := LoadFromBuffer("x", loadMethodFile, make([]byte, geo.Size()), geo)
	if _, err := di.Read(1, 0, 0, 0); err != ErrOutOfGeometry {
		t.Fatalf("Read with side=1 on single-sided image: err = %v, want ErrOutOfGeometry", err)
	}
	if _, err := di.Read(0, 99, 0, 0); err != ErrOutOfGeometry {
		t.Fatalf("Read with out-of-range track: err = %v, want ErrOutOfGeometry", err)
	}
}

func TestCloneSharesUntilWriteThenDiverges(t *testing.T) {
	geo, _ := FindGeometryBySize(40 * 10 * 256)
	di, _ := LoadFromBuffer("x", loadMethodFile, make([]byte, geo.Size()), geo)
	clone := di.Clone()
	defer clone.Close()

	if err := di.Write(0, 0, 0, 0, 0x99); err != nil {
		t.Fatalf("Write: %v", err)
	}
	v, _ := clone.Read(0, 0, 0, 0)
	if v == 0x99 {
		t.Fatalf("expected copy-on-write to isolate the clone from the original's write")
	}
}

func TestGetHashStableAcrossNoOpAndChangesOnWrite(t *testing.T) {
	geo, _ := FindGeometryBySize(40 * 10 * 256)
	di, _ := LoadFromBuffer("x", loadMethodFile, make([]byte, geo.Size()), geo)

	h1 := di.GetHash()
	v, _ := di.Read(0, 0, 0, 0)
	_ = v
	h2 := di.GetHash()
	if h1 != h2 {
		t.Fatalf("hash changed without any write: %s -> %s", h1, h2)
	}

	if err := di.Write(0, 0, 0, 0, 0x42); err != nil {
		t.Fatalf("Write: %v", err)
	}
	h3 := di.GetHash()
	if h3 == h2 {
		t.Fatalf("expected hash to change after a byte-changing write")
	}
}

func TestSaveFailsForZipLoadedImage(t *testing.T) {
	geo, _ := FindGeometryBySize(40 * 10 * 256)
	di, _ := LoadFromBuffer("archive.zip::disc.ssd", loadMethodZip, make([]byte, geo.Size()), geo)
	if di.CanSave() {
		t.Fatalf("expected a zip-extracted image to report CanSave()=false")
	}
	if err := di.Save(); err == nil {
		t.Fatalf("expected Save to fail for a zip-extracted image")
	}
}
