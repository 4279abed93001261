package soft

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gloo/glir"
)

// toRGBA expands n pixels stored in format f to RGBA8.
// Non-color formats read back as opaque gray.
func toRGBA(src []byte, f glir.Format, n int) []byte {
	dst := make([]byte, n*4)
	bpp := f.BytesPerPixel()
	for i := 0; i < n; i++ {
		p := src[i*bpp : (i+1)*bpp]
		o := dst[i*4 : i*4+4]
		switch f {
		case glir.FormatColor, glir.FormatRGBA8:
			copy(o, p)
		case glir.FormatRGBA4:
			v := binary.LittleEndian.Uint16(p)
			o[0], o[1], o[2], o[3] = expand(v>>12, 4), expand(v>>8, 4), expand(v>>4, 4), expand(v, 4)
		case glir.FormatRGB5A1:
			v := binary.LittleEndian.Uint16(p)
			o[0], o[1], o[2] = expand(v>>11, 5), expand(v>>6, 5), expand(v>>1, 5)
			o[3] = uint8(v&1) * 255
		case glir.FormatRGB565:
			v := binary.LittleEndian.Uint16(p)
			o[0], o[1], o[2], o[3] = expand(v>>11, 5), expand(v>>5, 6), expand(v, 5), 255
		case glir.FormatDepth:
			gray(o, p[1])
		case glir.FormatDepth24:
			gray(o, p[2])
		case glir.FormatDepth32F:
			z := math.Float32frombits(binary.LittleEndian.Uint32(p))
			gray(o, uint8(math.Round(float64(clamp01(z))*255)))
		default:
			if bpp == 1 {
				gray(o, p[0])
			} else {
				copy(o, p)
			}
		}
	}
	return dst
}

// expand scales the low bits of v to 8 bits.
func expand(v uint16, bits uint) uint8 {
	top := uint16(1)<<bits - 1
	return uint8((uint32(v&top)*255 + uint32(top)/2) / uint32(top))
}

func gray(o []byte, v uint8) {
	o[0], o[1], o[2], o[3] = v, v, v, 255
}

func clamp01(z float32) float32 {
	switch {
	case z < 0 || z != z:
		return 0
	case z > 1:
		return 1
	}
	return z
}
