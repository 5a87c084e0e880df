package imaging

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Plane extracts the single meaningful channel of a single-plane texture.
// Alpha textures yield their alpha, grey textures their luminance, and colour
// textures their red channel.
func Plane(img image.Image) *image.Gray {
	b := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	switch src := img.(type) {
	case *image.Alpha:
		for y := 0; y < b.Dy(); y++ {
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()], src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):])
		}
	case *image.Gray:
		for y := 0; y < b.Dy(); y++ {
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()], src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):])
		}
	default:
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				dst.Pix[y*dst.Stride+x] = c.R
			}
		}
	}
	return dst
}

// ResizePlane resamples a plane to w×h with bilinear filtering.
// A plane already of that size is returned as is.
func ResizePlane(p *image.Gray, w, h int) *image.Gray {
	if p.Rect.Dx() == w && p.Rect.Dy() == h {
		return p
	}
	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), p, p.Bounds(), draw.Src, nil)
	return dst
}

// MergeYCbCr builds a colour image from full-range luma and chroma planes.
// Chroma planes, and the optional alpha plane, are resampled to the luma
// plane's resolution first. A nil alpha yields an opaque image.
func MergeYCbCr(luma, cb, cr, alpha image.Image) *image.NRGBA {
	y := Plane(luma)
	w, h := y.Rect.Dx(), y.Rect.Dy()
	cbp := ResizePlane(Plane(cb), w, h)
	crp := ResizePlane(Plane(cr), w, h)

	var ap *image.Gray
	if alpha != nil {
		ap = ResizePlane(Plane(alpha), w, h)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for py := 0; py < h; py++ {
		for px := 0; px < w; px++ {
			i := py*y.Stride + px
			r, g, b := color.YCbCrToRGB(y.Pix[i], cbp.Pix[py*cbp.Stride+px], crp.Pix[py*crp.Stride+px])
			a := uint8(0xff)
			if ap != nil {
				a = ap.Pix[py*ap.Stride+px]
			}
			o := dst.PixOffset(px, py)
			dst.Pix[o+0] = r
			dst.Pix[o+1] = g
			dst.Pix[o+2] = b
			dst.Pix[o+3] = a
		}
	}
	return dst
}

// MergeAlpha replaces the alpha channel of img with an alpha-only texture,
// resampled to img's resolution.
func MergeAlpha(img, alpha image.Image) *image.NRGBA {
	dst := ToNRGBA(img)
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	ap := ResizePlane(Plane(alpha), w, h)
	for py := 0; py < h; py++ {
		for px := 0; px < w; px++ {
			dst.Pix[dst.PixOffset(px, py)+3] = ap.Pix[py*ap.Stride+px]
		}
	}
	return dst
}
