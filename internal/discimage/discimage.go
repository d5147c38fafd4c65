// Package discimage implements a copy-on-write, reference-counted store
// for floppy disc images, shared across cloned machines without each
// clone needing its own copy of every byte.
package discimage

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	loadMethodFile = "file"
	loadMethodZip  = "zip"
)

// DiscImage is a handle onto a shared, possibly-cloned disc image. Reads
// lock briefly; writes copy-on-write onto a private data before
// mutating, so other handles sharing the same original bytes keep
// reading the unmodified content.
type DiscImage struct {
	name       string
	loadMethod string
	d          *data
}

// LoadFromBuffer wraps an already-read byte buffer as a new disc image,
// validating it against geometry the caller has already determined.
func LoadFromBuffer(name, loadMethod string, buf []byte, geometry Geometry) (*DiscImage, error) {
	if len(buf) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmpty)
	}
	if len(buf)%geometry.BytesPerSector != 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNotSectorMultiple)
	}
	return &DiscImage{name: name, loadMethod: loadMethod, d: newData(geometry, buf)}, nil
}

// LoadFromFile loads a disc image from path. If the extension is .zip,
// the archive is searched for exactly one entry whose size matches a
// known geometry; otherwise path is read directly. In both cases the
// geometry comes from the size alone (FindGeometryBySize); the file or
// entry name is not consulted.
func LoadFromFile(path string) (*DiscImage, error) {
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		return loadFromZip(path)
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrReadFailed, err)
	}

	geometry, ok := FindGeometryBySize(len(buf))
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrUnknownGeometry)
	}

	return LoadFromBuffer(path, loadMethodFile, buf, geometry)
}

func loadFromZip(path string) (*DiscImage, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrZipOpenFailed, err)
	}
	defer r.Close()

	var match *zip.File
	var matchGeometry Geometry
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		size := int64(f.UncompressedSize64)
		if size > int64(^uint(0)>>1) {
			return nil, fmt.Errorf("%s: %w: %s", path, ErrZipEntryTooLarge, f.Name)
		}
		geometry, ok := FindGeometryBySize(int(size))
		if !ok {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("%s: %w: at least %s, %s", path, ErrZipMultipleImages, f.Name, match.Name)
		}
		match = f
		matchGeometry = geometry
	}

	if match == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrZipNoImages)
	}

	rc, err := match.Open()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrZipStatFailed, err)
	}
	defer rc.Close()

	buf, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrZipExtractFailed, err)
	}

	name := path + "::" + match.Name
	return LoadFromBuffer(name, loadMethodZip, buf, matchGeometry)
}

// Name returns the image's display name (a "path::entry" pair for
// images extracted from inside a zip archive).
func (di *DiscImage) Name() string { return di.name }

// Geometry returns the image's fixed sector geometry.
func (di *DiscImage) Geometry() Geometry { return di.d.geometry }

// CanClone reports whether this image may be shared with a cloned
// machine. Disc images backed by this store can always be cloned; the
// clone-impediment bitmask tracked at the Machine level is where a
// "no, don't clone me" veto (e.g. a network-link handler) would apply
// instead.
func (di *DiscImage) CanClone() bool { return true }

// CanSave reports whether Save is permitted: only images loaded
// directly from a file, not those extracted from inside a zip archive.
func (di *DiscImage) CanSave() bool { return di.loadMethod == loadMethodFile }

// Clone returns a new handle sharing the same underlying bytes. The
// first write on either handle after a Clone copies the bytes privately
// before mutating (copy-on-write), so the other handle's reads are
// unaffected.
func (di *DiscImage) Clone() *DiscImage {
	di.d.addRef()
	return &DiscImage{name: di.name, loadMethod: di.loadMethod, d: di.d}
}

// Close releases this handle's reference to its underlying data. After
// Close the handle must not be used again.
func (di *DiscImage) Close() {
	di.d.release()
}

// GetHash returns the SHA-1 hash of the image's current contents as a
// hex string, cached until the next write.
func (di *DiscImage) GetHash() string {
	return di.d.hashString()
}

// makeUnique gives this handle a private copy of its data if any other
// handle shares it, so the mutation that follows does not leak across
// clones.
func (di *DiscImage) makeUnique() {
	if di.d.sharedCount() > 1 {
		old := di.d
		di.d = old.clone()
		old.release()
	}
}

func (di *DiscImage) offset(side, track, sector, byteOffset int) (int, error) {
	g := di.d.geometry
	if side < 0 || (side == 1 && !g.DoubleSided) || side > 1 {
		return 0, ErrOutOfGeometry
	}
	if track < 0 || track >= g.Tracks {
		return 0, ErrOutOfGeometry
	}
	if sector < 0 || sector >= g.SectorsPerTrack {
		return 0, ErrOutOfGeometry
	}
	if byteOffset < 0 || byteOffset >= g.BytesPerSector {
		return 0, ErrOutOfGeometry
	}

	tracksPerSide := g.Tracks
	trackIndex := side*tracksPerSide + track
	return (trackIndex*g.SectorsPerTrack+sector)*g.BytesPerSector + byteOffset, nil
}

// Read returns the byte at the given side/track/sector/offset. Reads
// past the image's current length return FillByte; requests outside the
// image's declared geometry fail with ErrOutOfGeometry.
func (di *DiscImage) Read(side, track, sector, byteOffset int) (uint8, error) {
	off, err := di.offset(side, track, sector, byteOffset)
	if err != nil {
		return 0, err
	}
	value, _ := di.d.readByte(off)
	return value, nil
}

// Write stores value at the given side/track/sector/offset, extending
// the backing store (filled with FillByte) if the write lands past the
// image's current length. Copy-on-write is applied first if this
// handle's data is shared with another clone.
func (di *DiscImage) Write(side, track, sector, byteOffset int, value uint8) error {
	off, err := di.offset(side, track, sector, byteOffset)
	if err != nil {
		return err
	}
	di.makeUnique()
	di.d.writeByte(off, value)
	return nil
}

// Save writes the image's current contents back to disk at its original
// path. Only permitted for images whose load method was "file".
func (di *DiscImage) Save() error {
	if !di.CanSave() {
		return fmt.Errorf("%s: %w", di.name, ErrCannotSave)
	}
	return os.WriteFile(di.name, di.d.snapshot(), 0o644)
}
