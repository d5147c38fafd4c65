package video

import "testing"

func TestDecodeSpaceRendersBackground(t *testing.T) {
	tt := NewTeletext()
	cell := tt.Decode(0x20)
	for i, c := range cell {
		if c != 0 {
			t.Fatalf("cell[%d] = %d, want 0 (background) for a space character", i, c)
		}
	}
}

func TestDecodeVisibleCharacterRendersForeground(t *testing.T) {
	tt := NewTeletext()
	cell := tt.Decode('A')
	for i, c := range cell {
		if c != 7 {
			t.Fatalf("cell[%d] = %d, want 7 (default white foreground)", i, c)
		}
	}
}

func TestAlphaColourControlCodeChangesSubsequentForeground(t *testing.T) {
	tt := NewTeletext()
	tt.Decode(0x02) // alpha red
	cell := tt.Decode('X')
	for i, c := range cell {
		if c != 2 {
			t.Fatalf("cell[%d] = %d, want 2 (red) after an alpha-red control code", i, c)
		}
	}
}

func TestExpandDoublesEachPixelHorizontally(t *testing.T) {
	cell := [6]uint8{1, 2, 3, 4, 5, 6}
	out := Expand(cell)
	for i, c := range cell {
		if out[2*i] != c || out[2*i+1] != c {
			t.Fatalf("Expand did not double cell[%d]=%d at output positions %d/%d: got %d/%d", i, c, 2*i, 2*i+1, out[2*i], out[2*i+1])
		}
	}
}

func TestStartOfFrameRecordsLineCountAndResetsColours(t *testing.T) {
	tt := NewTeletext()
	tt.Decode(0x02) // change foreground
	tt.StartOfFrame(312)
	if tt.LastFrameLength() != 312 {
		t.Fatalf("LastFrameLength() = %d, want 312", tt.LastFrameLength())
	}
	cell := tt.Decode('X')
	if cell[0] != 7 {
		t.Fatalf("expected foreground reset to white at start of frame, got %d", cell[0])
	}
}
