package gloo

import (
	"fmt"
	"image"
)

// Pixels is a read-back image: Height rows of Width pixels with Channels
// 8-bit channels each, row 0 at the top.
type Pixels struct {
	Height   int
	Width    int
	Channels int
	Pix      []uint8
}

// newPixels builds Pixels from tightly packed RGBA8 rows, dropping alpha
// unless requested.
func newPixels(s Shape, rgba []byte, alpha bool) *Pixels {
	p := &Pixels{Height: s.Height, Width: s.Width, Channels: 4}
	if alpha {
		p.Pix = rgba
		return p
	}
	p.Channels = 3
	p.Pix = make([]uint8, 0, s.Pixels()*3)
	for i := 0; i+4 <= len(rgba); i += 4 {
		p.Pix = append(p.Pix, rgba[i], rgba[i+1], rgba[i+2])
	}
	return p
}

// Shape returns (height, width, channels).
func (p *Pixels) Shape() [3]int {
	return [3]int{p.Height, p.Width, p.Channels}
}

// At returns the channels of the pixel in row y, column x. The slice
// aliases Pix.
func (p *Pixels) At(y, x int) []uint8 {
	if y < 0 || y >= p.Height || x < 0 || x >= p.Width {
		panic(fmt.Sprintf("gloo: pixel (%d, %d) outside %dx%d", y, x, p.Height, p.Width))
	}
	off := (y*p.Width + x) * p.Channels
	return p.Pix[off : off+p.Channels : off+p.Channels]
}

// RGBA returns the pixels as an image. Without alpha the image is opaque.
func (p *Pixels) RGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
	if p.Channels == 4 {
		copy(img.Pix, p.Pix)
		return img
	}
	for i, j := 0, 0; i+p.Channels <= len(p.Pix); i, j = i+p.Channels, j+4 {
		img.Pix[j], img.Pix[j+1], img.Pix[j+2], img.Pix[j+3] = p.Pix[i], p.Pix[i+1], p.Pix[i+2], 0xFF
	}
	return img
}
