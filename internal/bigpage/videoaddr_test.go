package bigpage

import "testing"

func TestTranslateVideoAddressTeletext(t *testing.T) {
	bases := [2]uint16{0x3C00, 0x7C00}
	ram, isTeletext := TranslateVideoAddress(0x2400, bases, 0, 0, 0)
	if !isTeletext {
		t.Fatalf("expected bit13-set address to be flagged as teletext")
	}
	if ram != 0x3C00 {
		t.Fatalf("TranslateVideoAddress(0x2400) = %#x, want 0x3C00", ram)
	}
}

func TestTranslateVideoAddressTeletextHighBank(t *testing.T) {
	bases := [2]uint16{0x3C00, 0x7C00}
	ram, isTeletext := TranslateVideoAddress(0x2C00, bases, 0, 0, 0)
	if !isTeletext {
		t.Fatalf("expected bit13-set address to be flagged as teletext")
	}
	if ram != 0x7C00 {
		t.Fatalf("TranslateVideoAddress(0x2C00) = %#x, want 0x7C00", ram)
	}
}

func TestTranslateVideoAddressBitmapWrap(t *testing.T) {
	ram, isTeletext := TranslateVideoAddress(0x1000, [2]uint16{}, 0, 0, 0)
	if isTeletext {
		t.Fatalf("expected bit12-only address to be a bitmap fetch, not teletext")
	}
	if ram != 0x4000 {
		t.Fatalf("TranslateVideoAddress(0x1000, wrap 0) = %#x, want 0x4000", ram)
	}
}

func TestTranslateVideoAddressBitmapNoWrap(t *testing.T) {
	ram, isTeletext := TranslateVideoAddress(0x0200, [2]uint16{}, 0, 3, 0)
	if isTeletext {
		t.Fatalf("expected address with neither bit12 nor bit13 set to be a bitmap fetch")
	}
	want := uint16(0x0200<<3) | 3
	if ram != want {
		t.Fatalf("TranslateVideoAddress(0x0200) = %#x, want %#x", ram, want)
	}
}

func TestTranslateVideoAddressShadowMaskOred(t *testing.T) {
	ram, _ := TranslateVideoAddress(0x0100, [2]uint16{}, 0, 0, 0x8000)
	if ram&0x8000 == 0 {
		t.Fatalf("expected shadow-select mask to be ORed into the result, got %#x", ram)
	}
}
