package imaging

import (
	"image"
	"image/draw"
)

// ToNRGBA returns a copy of img as non-premultiplied RGBA with origin (0, 0).
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// FlipVertical mirrors img top to bottom.
func FlipVertical(img image.Image) *image.NRGBA {
	src := ToNRGBA(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewNRGBA(src.Rect)
	rowLen := w * 4
	for y := 0; y < h; y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+rowLen], src.Pix[(h-1-y)*src.Stride:(h-1-y)*src.Stride+rowLen])
	}
	return dst
}

// FlipHorizontal mirrors img left to right.
func FlipHorizontal(img image.Image) *image.NRGBA {
	src := ToNRGBA(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewNRGBA(src.Rect)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			copy(dst.Pix[dst.PixOffset(x, y):dst.PixOffset(x, y)+4], src.Pix[src.PixOffset(w-1-x, y):src.PixOffset(w-1-x, y)+4])
		}
	}
	return dst
}

// Rotate180 turns img upside down.
func Rotate180(img image.Image) *image.NRGBA {
	return FlipHorizontal(FlipVertical(img))
}

// Rotate90CW rotates img a quarter turn clockwise.
func Rotate90CW(img image.Image) *image.NRGBA {
	src := ToNRGBA(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, h, w))
	for dy := 0; dy < w; dy++ {
		for dx := 0; dx < h; dx++ {
			so := src.PixOffset(dy, h-1-dx)
			do := dst.PixOffset(dx, dy)
			copy(dst.Pix[do:do+4], src.Pix[so:so+4])
		}
	}
	return dst
}

// Rotate90CCW rotates img a quarter turn counter-clockwise.
func Rotate90CCW(img image.Image) *image.NRGBA {
	return Rotate180(Rotate90CW(img))
}

// Crop copies the part of img inside r. r is in img's coordinate space and is
// clamped to img's bounds; the result may be empty.
func Crop(img image.Image, r image.Rectangle) *image.NRGBA {
	r = r.Intersect(img.Bounds())
	dst := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	if !r.Empty() {
		draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	}
	return dst
}

// IsOpaque reports whether every pixel of img is fully opaque.
func IsOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return false
			}
		}
	}
	return true
}
