package spectrum

import (
	"image"
	"image/color"
	"image/png"
	"os"
)

const (
	ScreenWidth  = 256
	ScreenHeight = 192
	BorderSize   = 32

	// FrameWidth and FrameHeight are the dimensions of a rendered frame,
	// border included.
	FrameWidth  = ScreenWidth + 2*BorderSize
	FrameHeight = ScreenHeight + 2*BorderSize

	bitmapSize  = 0x1800
	attrSize    = 0x300
	DisplaySize = bitmapSize + attrSize
)

// Palette holds the 8 normal colours followed by their 8 bright versions.
var Palette = [16]color.RGBA{
	{0x00, 0x00, 0x00, 0xFF},
	{0x00, 0x00, 0xD7, 0xFF},
	{0xD7, 0x00, 0x00, 0xFF},
	{0xD7, 0x00, 0xD7, 0xFF},
	{0x00, 0xD7, 0x00, 0xFF},
	{0x00, 0xD7, 0xD7, 0xFF},
	{0xD7, 0xD7, 0x00, 0xFF},
	{0xD7, 0xD7, 0xD7, 0xFF},

	{0x00, 0x00, 0x00, 0xFF},
	{0x00, 0x00, 0xFF, 0xFF},
	{0xFF, 0x00, 0x00, 0xFF},
	{0xFF, 0x00, 0xFF, 0xFF},
	{0x00, 0xFF, 0x00, 0xFF},
	{0x00, 0xFF, 0xFF, 0xFF},
	{0xFF, 0xFF, 0x00, 0xFF},
	{0xFF, 0xFF, 0xFF, 0xFF},
}

// Frame is a copy of the display memory taken at the end of a frame.
type Frame struct {
	Display [DisplaySize]byte
	Border  uint8 // 0-7
	Flash   bool  // flashing cells show inverted
	Number  uint64
}

// PixelAddr returns the offset in the display memory of the byte holding
// pixel (x, y). The leftmost pixel of the byte is bit 7.
func PixelAddr(x, y int) int {
	return (y&0xC0)<<5 | (y&0x07)<<8 | (y&0x38)<<2 | x>>3
}

// AttrAddr returns the offset in the display memory of the attribute byte of
// the 8x8 cell holding pixel (x, y).
func AttrAddr(x, y int) int {
	return bitmapSize + (y>>3)*32 + x>>3
}

// Pixel returns the palette index of the pixel at (x, y) of the 256x192 screen.
func (f *Frame) Pixel(x, y int) uint8 {
	attr := f.Display[AttrAddr(x, y)]
	ink := attr & 0x07
	paper := (attr >> 3) & 0x07
	if attr&0x40 != 0 {
		ink |= 8
		paper |= 8
	}
	if attr&0x80 != 0 && f.Flash {
		ink, paper = paper, ink
	}
	if f.Display[PixelAddr(x, y)]&(0x80>>(x&7)) != 0 {
		return ink
	}
	return paper
}

// Render paints the frame, border included, into img which must be at least
// FrameWidth x FrameHeight.
func (f *Frame) Render(img *image.RGBA) {
	border := Palette[f.Border&0x07]
	for y := range FrameHeight {
		row := img.Pix[y*img.Stride:]
		for x := range FrameWidth {
			c := border
			sx, sy := x-BorderSize, y-BorderSize
			if sx >= 0 && sx < ScreenWidth && sy >= 0 && sy < ScreenHeight {
				c = Palette[f.Pixel(sx, sy)]
			}
			row[x*4+0] = c.R
			row[x*4+1] = c.G
			row[x*4+2] = c.B
			row[x*4+3] = c.A
		}
	}
}

// Image returns a newly allocated rendering of the frame.
func (f *Frame) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, FrameWidth, FrameHeight))
	f.Render(img)
	return img
}

// SaveAsPNG saves the given image as PNG.
func SaveAsPNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
