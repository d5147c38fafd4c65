// Package bigpage implements the flat 4 KiB-granular view over all RAM, ROM
// and MOS banks (spec §3 "BigPage", §4.1 "Paging and Big Pages"), plus the
// per-high-byte MemoryPageMap the CPU data-bus router consults every cycle.
package bigpage

const (
	// PageSize is the size in bytes of one big page.
	PageSize = 4096

	// NumBigPages is the total number of big pages across every region.
	NumBigPages = 84

	// Fixed big-page index ranges (spec §3 "Big-page layout").
	MainRAMStart    = 0
	MainRAMCount    = 8
	AndyStart       = MainRAMCount
	AndyCount       = 1
	HazelStart      = AndyStart + AndyCount
	HazelCount      = 2
	ShadowStart     = HazelStart + HazelCount
	ShadowCount     = 5
	SidewaysStart   = ShadowStart + ShadowCount
	SidewaysBanks   = 16
	PagesPerBank    = 4
	SidewaysCount   = SidewaysBanks * PagesPerBank
	MOSStart        = SidewaysStart + SidewaysCount
	MOSCount        = 4
)

func init() {
	if MOSStart+MOSCount != NumBigPages {
		panic("bigpage: fixed layout does not sum to NumBigPages")
	}
}

// BigPage is one 4 KiB logical page: an optional read slice (nil reads as
// all zero), an optional write slice (nil discards writes), and a
// provenance byte used purely for debugger display.
type BigPage struct {
	Index      int
	Read       []byte // len == PageSize, or nil
	Write      []byte // len == PageSize, or nil
	Provenance byte
}

// zeroPage backs every unmapped read: a shared 4 KiB buffer of zeroes that
// is never written to.
var zeroPage = make([]byte, PageSize)

// scratchPage absorbs every discarded write (ROM writes, unmapped writes):
// a shared 4 KiB buffer nothing ever reads back from.
var scratchPage = make([]byte, PageSize)

// Table is the set of all 84 big pages, built once at machine construction
// and never reallocated afterwards — only the Read/Write slices of the
// sideways bank entries are swapped when ROMSEL/sideways-RAM state changes.
type Table struct {
	Pages [NumBigPages]BigPage
}

// NewTable allocates a Table with every page unmapped (reads 0, writes
// discarded). Callers wire in the backing buffers with the Set* helpers.
func NewTable() *Table {
	t := &Table{}
	for i := range t.Pages {
		t.Pages[i] = BigPage{Index: i, Read: nil, Write: nil, Provenance: '?'}
	}
	return t
}

// SetRAM points big page index i at a 4 KiB window of a larger owned RAM
// buffer, readable and writable.
func (t *Table) SetRAM(i int, window []byte, provenance byte) {
	if len(window) != PageSize {
		panic("bigpage: RAM window must be exactly PageSize bytes")
	}
	t.Pages[i] = BigPage{Index: i, Read: window, Write: window, Provenance: provenance}
}

// SetROM points big page index i at a 4 KiB window of a shared immutable
// ROM buffer. Writes are redirected to the shared scratch page and
// discarded (spec §4.1 "writes to a ROM write slot are discarded").
func (t *Table) SetROM(i int, window []byte, provenance byte) {
	if len(window) != PageSize {
		panic("bigpage: ROM window must be exactly PageSize bytes")
	}
	t.Pages[i] = BigPage{Index: i, Read: window, Write: scratchPage, Provenance: provenance}
}

// SetUnmapped marks big page index i as having no backing store: reads
// return 0, writes are discarded.
func (t *Table) SetUnmapped(i int) {
	t.Pages[i] = BigPage{Index: i, Read: zeroPage, Write: scratchPage, Provenance: '?'}
}

// Page returns a pointer to big page i. i must be in [0, NumBigPages).
func (t *Table) Page(i int) *BigPage {
	if i < 0 || i >= NumBigPages {
		panic("bigpage: big page index out of range")
	}
	return &t.Pages[i]
}

// sidewaysPageIndex returns the big page index for the first of the four
// 4 KiB pages belonging to sideways bank (0-15).
func sidewaysPageIndex(bank int) int {
	return SidewaysStart + bank*PagesPerBank
}
