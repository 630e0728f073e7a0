package tuiengine

import "testing"

func TestColorPacking(t *testing.T) {
	c := NewColor(1, 2, 3, 4)
	if c.R() != 1 || c.G() != 2 || c.B() != 3 || c.A() != 4 {
		t.Errorf("channel round-trip failed: %08x", uint32(c))
	}
	if !RGB(10, 20, 30).IsOpaque() {
		t.Errorf("RGB must be opaque")
	}
	if !ColorTransparent.IsTransparent() {
		t.Errorf("zero color must be transparent")
	}
}

func TestColorOver(t *testing.T) {
	bg := RGB(0, 0, 0)

	if got := RGB(255, 0, 0).Over(bg); got != RGB(255, 0, 0) {
		t.Errorf("opaque over: expected full replacement, got %08x", uint32(got))
	}
	if got := ColorTransparent.Over(bg); got != bg {
		t.Errorf("transparent over: expected background, got %08x", uint32(got))
	}

	half := NewColor(255, 0, 0, 128)
	got := half.Over(bg)
	if got.R() < 126 || got.R() > 130 || got.G() != 0 {
		t.Errorf("half-alpha blend off: %08x", uint32(got))
	}
}

func TestDefaultPaletteGeneration(t *testing.T) {
	// Color cube corners
	if DefaultPalette[16] != RGB(0, 0, 0) {
		t.Errorf("cube start wrong: %08x", uint32(DefaultPalette[16]))
	}
	if DefaultPalette[231] != RGB(255, 255, 255) {
		t.Errorf("cube end wrong: %08x", uint32(DefaultPalette[231]))
	}
	// Grayscale ramp
	if DefaultPalette[232] != RGB(8, 8, 8) {
		t.Errorf("grayscale start wrong: %08x", uint32(DefaultPalette[232]))
	}
	if DefaultPalette[255] != RGB(238, 238, 238) {
		t.Errorf("grayscale end wrong: %08x", uint32(DefaultPalette[255]))
	}
}

func TestPaletteColor(t *testing.T) {
	if PaletteColor(1) != DefaultPalette[1] {
		t.Errorf("indexed lookup failed")
	}
	if PaletteColor(NamedColorForeground) != DefaultForeground {
		t.Errorf("named foreground failed")
	}
	if PaletteColor(NamedColorBackground) != DefaultBackground {
		t.Errorf("named background failed")
	}
	if PaletteColor(9999) != DefaultForeground {
		t.Errorf("unknown index must fall back to foreground")
	}

	dim := PaletteColor(NamedColorDimRed)
	base := DefaultPalette[1]
	if dim.R() >= base.R() {
		t.Errorf("dim red must be darker than red")
	}
}
