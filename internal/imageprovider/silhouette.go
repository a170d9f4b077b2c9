package imageprovider

import (
	"image"
	"image/color"
)

// silhouetteThreshold splits luminance into shape (below) and background.
const silhouetteThreshold = 150

var (
	silhouetteInk        = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	silhouetteBackground = color.NRGBA{R: 255, G: 255, B: 255, A: 0}
)

// luminance computes ITU-R 601-2 luma from 8-bit non-premultiplied RGB using
// the fixed point weights 19595, 38470 and 7471 (sum 65536).
func luminance(r, g, b uint8) uint8 {
	return uint8((uint32(r)*19595 + uint32(g)*38470 + uint32(b)*7471 + 0x8000) >> 16)
}

// Silhouette turns an image into an opaque black shape on a transparent
// background. Alpha is ignored: a transparent pixel with dark RGB is ink.
func Silhouette(src image.Image) *image.NRGBA {
	nrgba := toNRGBA(src)
	bounds := nrgba.Bounds()
	dst := image.NewNRGBA(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := nrgba.NRGBAAt(x, y)
			if luminance(c.R, c.G, c.B) < silhouetteThreshold {
				dst.SetNRGBA(x, y, silhouetteInk)
			} else {
				dst.SetNRGBA(x, y, silhouetteBackground)
			}
		}
	}

	return dst
}

// toNRGBA converts any decoded image into non-premultiplied RGBA. Colors
// that are already non-premultiplied keep their RGB even when fully
// transparent.
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}

	bounds := src.Bounds()
	dst := image.NewNRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dst.SetNRGBA(x, y, straightNRGBA(src.At(x, y)))
		}
	}
	return dst
}

// straightNRGBA narrows c to 8-bit NRGBA. 16-bit straight colors (16-bit
// PNGs) are shifted rather than round-tripped through premultiplied RGBA,
// which would zero the RGB of transparent pixels.
func straightNRGBA(c color.Color) color.NRGBA {
	if c64, ok := c.(color.NRGBA64); ok {
		return color.NRGBA{
			R: uint8(c64.R >> 8),
			G: uint8(c64.G >> 8),
			B: uint8(c64.B >> 8),
			A: uint8(c64.A >> 8),
		}
	}
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}
