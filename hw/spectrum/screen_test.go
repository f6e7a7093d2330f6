package spectrum

import (
	"image"
	"testing"
)

func TestPixelAddr(t *testing.T) {
	tests := []struct {
		x, y       int
		pix, attrs int
	}{
		{0, 0, 0x0000, 0x1800},
		{8, 0, 0x0001, 0x1801},
		{7, 0, 0x0000, 0x1800},
		{0, 1, 0x0100, 0x1800},
		{0, 8, 0x0020, 0x1820},
		{0, 64, 0x0800, 0x1900},
		{255, 191, 0x17FF, 0x1AFF},
	}
	for _, tt := range tests {
		if got := PixelAddr(tt.x, tt.y); got != tt.pix {
			t.Errorf("PixelAddr(%d,%d) = %04X, want %04X", tt.x, tt.y, got, tt.pix)
		}
		if got := AttrAddr(tt.x, tt.y); got != tt.attrs {
			t.Errorf("AttrAddr(%d,%d) = %04X, want %04X", tt.x, tt.y, got, tt.attrs)
		}
	}
}

func TestFramePixel(t *testing.T) {
	var f Frame
	f.Display[0] = 0x80      // leftmost pixel of the first cell
	f.Display[0x1800] = 0x47 // bright, white ink, black paper
	f.Display[1] = 0x01
	f.Display[0x1801] = 0x8A // flashing, red ink, blue paper

	tests := []struct {
		x, y  int
		flash bool
		want  uint8
	}{
		{0, 0, false, 15},
		{1, 0, false, 8},
		{15, 0, false, 2},
		{14, 0, false, 1},
		{15, 0, true, 1},
		{14, 0, true, 2},
	}
	for _, tt := range tests {
		f.Flash = tt.flash
		if got := f.Pixel(tt.x, tt.y); got != tt.want {
			t.Errorf("Pixel(%d,%d) flash=%v = %d, want %d", tt.x, tt.y, tt.flash, got, tt.want)
		}
	}
}

func TestFrameRender(t *testing.T) {
	var f Frame
	f.Border = 2
	f.Display[0] = 0x80
	f.Display[0x1800] = 0x38 // black ink, white paper

	img := f.Image()
	if img.Bounds() != image.Rect(0, 0, FrameWidth, FrameHeight) {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	tests := []struct {
		x, y int
		want uint8
	}{
		{0, 0, 2},
		{BorderSize - 1, BorderSize, 2},
		{BorderSize, BorderSize, 0},
		{BorderSize + 1, BorderSize, 7},
		{BorderSize + 8, BorderSize, 0}, // zero attribute, black on black
		{FrameWidth - 1, FrameHeight - 1, 2},
	}
	for _, tt := range tests {
		if got, want := img.RGBAAt(tt.x, tt.y), Palette[tt.want]; got != want {
			t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, want)
		}
	}
}
