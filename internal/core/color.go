package core

// Pixel is a packed 0x00RRGGBB color value stored in a Framebuffer.
type Pixel uint32

// RGB builds a pixel from its channels.
func RGB(r, g, b uint8) Pixel {
	return Pixel(uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// RGB splits a pixel into its channels.
func (p Pixel) RGB() (r, g, b uint8) {
	return uint8(p >> 16), uint8(p >> 8), uint8(p)
}

// Predefined colors for field elements.
const (
	Black Pixel = 0x000000

	// Background is also the transparency sentinel of sprites: sprite pixels
	// with this value are never written to the framebuffer.
	Background Pixel = 0x553103

	TowerColor  Pixel = 0xF0F0F0
	CorpseColor Pixel = 0x181818
)
