package core

import (
	"encoding/binary"
	"image"
	"image/color"
)

// BytesPerPixel is the stride of one packed pixel in a Framebuffer.
const BytesPerPixel = 4

// Framebuffer is a fixed-stride packed-pixel buffer (BGR32, little endian).
// Pixel (x, y) lives at byte offset y*width*4 + x*4.
// It decouples rendering from the terminal: the render engine writes pixels,
// the presentation shell turns them into terminal cells.
type Framebuffer struct {
	width  int
	height int
	pix    []byte
}

// NewFramebuffer creates a framebuffer with the given dimensions, cleared to black.
func NewFramebuffer(width, height int) *Framebuffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Framebuffer{
		width:  width,
		height: height,
		pix:    make([]byte, width*height*BytesPerPixel),
	}
}

// Width returns the framebuffer width in pixels.
func (f *Framebuffer) Width() int {
	return f.width
}

// Height returns the framebuffer height in pixels.
func (f *Framebuffer) Height() int {
	return f.height
}

// Offset returns the byte offset of pixel (x, y).
func (f *Framebuffer) Offset(x, y int) int {
	return y*f.width*BytesPerPixel + x*BytesPerPixel
}

// Bytes exposes the underlying packed pixel storage.
func (f *Framebuffer) Bytes() []byte {
	return f.pix
}

// Set writes a pixel. Out-of-bounds coordinates are silently ignored.
func (f *Framebuffer) Set(x, y int, c Pixel) {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return
	}
	binary.LittleEndian.PutUint32(f.pix[f.Offset(x, y):], uint32(c))
}

// At returns the pixel at (x, y), or Black for out-of-bounds coordinates.
func (f *Framebuffer) At(x, y int) Pixel {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return Black
	}
	return Pixel(binary.LittleEndian.Uint32(f.pix[f.Offset(x, y):]))
}

// Clear fills the whole buffer with one pixel value.
func (f *Framebuffer) Clear(c Pixel) {
	if len(f.pix) == 0 {
		return
	}
	binary.LittleEndian.PutUint32(f.pix, uint32(c))
	// Doubling copy fills the rest of the buffer from the first pixel.
	for filled := BytesPerPixel; filled < len(f.pix); filled *= 2 {
		copy(f.pix[filled:], f.pix[:filled])
	}
}

// Image converts the framebuffer into an RGBA image (used for screenshots).
func (f *Framebuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.width, f.height))
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			r, g, b := f.At(x, y).RGB()
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return img
}
