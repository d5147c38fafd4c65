package discimage

// Geometry describes the sector layout of a disc image.
type Geometry struct {
	Name            string
	DoubleSided     bool
	DoubleDensity   bool
	Tracks          int
	SectorsPerTrack int
	BytesPerSector  int
}

// Size returns the exact byte length a disc of this geometry occupies.
func (g Geometry) Size() int {
	sides := 1
	if g.DoubleSided {
		sides = 2
	}
	return sides * g.Tracks * g.SectorsPerTrack * g.BytesPerSector
}

// knownGeometries lists every disc geometry recognised by size, in the
// order they are tried. Single- and double-sided 40- and 80-track discs
// at the standard Acorn DFS 256-byte sector size cover every image this
// store is expected to see.
var knownGeometries = []Geometry{
	{Name: "ssd40", DoubleSided: false, Tracks: 40, SectorsPerTrack: 10, BytesPerSector: 256},
	{Name: "ssd80", DoubleSided: false, Tracks: 80, SectorsPerTrack: 10, BytesPerSector: 256},
	{Name: "dsd40", DoubleSided: true, Tracks: 40, SectorsPerTrack: 10, BytesPerSector: 256},
	{Name: "dsd80", DoubleSided: true, Tracks: 80, SectorsPerTrack: 10, BytesPerSector: 256},
}

// FindGeometryBySize returns the first known geometry whose Size matches
// size. ssd80 and dsd40 share a size (204800 bytes); ssd80 is returned
// for it.
func FindGeometryBySize(size int) (Geometry, bool) {
	for _, g := range knownGeometries {
		if g.Size() == size {
			return g, true
		}
	}
	return Geometry{}, false
}
