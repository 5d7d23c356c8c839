package postprocess

import (
	"image"

	"golang.org/x/image/draw"
)

// Downsample shrinks a viewport rendered at Supersample× back to w×h.
// The scaler reads the NRGBA source premultiplied, so transparent
// background pixels never bleed their color into marker edges.
// Frames already within w×h are returned unchanged.
func Downsample(img *image.NRGBA, w, h int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() <= w && b.Dy() <= h {
		return img
	}
	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, b, draw.Src, nil)
	return straightAlpha(scaled)
}

// straightAlpha converts premultiplied pixels back to NRGBA. Filter
// ringing can push a channel past its alpha, so results are clamped.
func straightAlpha(src *image.RGBA) *image.NRGBA {
	out := image.NewNRGBA(src.Bounds())
	for i := 0; i < len(src.Pix); i += 4 {
		a := uint32(src.Pix[i+3])
		out.Pix[i+3] = uint8(a)
		switch a {
		case 0:
		case 0xff:
			copy(out.Pix[i:i+3], src.Pix[i:i+3])
		default:
			for c := 0; c < 3; c++ {
				out.Pix[i+c] = uint8(min((uint32(src.Pix[i+c])*0xff+a/2)/a, 0xff))
			}
		}
	}
	return out
}
