package imaging

import (
	"image"

	"golang.org/x/image/vector"
)

// Vec is a point in pixel space.
type Vec struct {
	X, Y float32
}

// Triangle is three points in pixel space.
type Triangle [3]Vec

// FanTriangles splits a polygon into the triangles of a fan around its first vertex.
func FanTriangles(poly []Vec) []Triangle {
	if len(poly) < 3 {
		return nil
	}
	tris := make([]Triangle, 0, len(poly)-2)
	for i := 1; i+1 < len(poly); i++ {
		tris = append(tris, Triangle{poly[0], poly[i], poly[i+1]})
	}
	return tris
}

// Mask rasterises triangles into a binary w×h mask. Pixels at least half
// covered are set to 0xff, all others to 0.
func Mask(w, h int, tris []Triangle) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 || len(tris) == 0 {
		return mask
	}

	z := vector.NewRasterizer(w, h)
	for _, t := range tris {
		// Coverage accumulates by signed area; one winding keeps overlaps from cancelling.
		if cross(t) < 0 {
			t[1], t[2] = t[2], t[1]
		}
		z.MoveTo(t[0].X, t[0].Y)
		z.LineTo(t[1].X, t[1].Y)
		z.LineTo(t[2].X, t[2].Y)
		z.ClosePath()
	}
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	for i, a := range mask.Pix {
		if a >= 0x80 {
			mask.Pix[i] = 0xff
		} else {
			mask.Pix[i] = 0
		}
	}
	return mask
}

func cross(t Triangle) float32 {
	return (t[1].X-t[0].X)*(t[2].Y-t[0].Y) - (t[1].Y-t[0].Y)*(t[2].X-t[0].X)
}

// ApplyMask uses mask as the alpha channel of img. Opaque images are composed
// over a transparent background; images with alpha have it multiplied by the mask.
// img and mask must have the same size.
func ApplyMask(img image.Image, mask *image.Alpha) *image.NRGBA {
	opaque := IsOpaque(img)
	dst := ToNRGBA(img)
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m := uint32(mask.AlphaAt(x, y).A)
			o := dst.PixOffset(x, y)
			if opaque {
				if m == 0 {
					dst.Pix[o+0], dst.Pix[o+1], dst.Pix[o+2] = 0, 0, 0
				}
				dst.Pix[o+3] = uint8(m)
				continue
			}
			dst.Pix[o+3] = uint8(uint32(dst.Pix[o+3]) * m / 0xff)
		}
	}
	return dst
}

// CountOpaque returns the number of fully opaque mask pixels.
func CountOpaque(mask *image.Alpha) int {
	n := 0
	for _, a := range mask.Pix {
		if a == 0xff {
			n++
		}
	}
	return n
}
