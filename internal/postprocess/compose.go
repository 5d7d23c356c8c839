package postprocess

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Panel is one viewport image with an optional caption.
type Panel struct {
	Image   *image.NRGBA
	Caption string
}

// Gutter is the gap in pixels between composed panels.
const Gutter = 4

var (
	gutterColor  = color.NRGBA{0xcc, 0xcc, 0xcc, 0xff}
	captionColor = color.NRGBA{0x22, 0x22, 0x22, 0xff}
)

// SideBySide lays panels out left to right on one canvas, top-aligned, with a
// caption in each panel's top-left corner. Nil panel images leave blank slots.
func SideBySide(panels []Panel) *image.NRGBA {
	w, h := 0, 0
	for i, p := range panels {
		if i > 0 {
			w += Gutter
		}
		if p.Image == nil {
			continue
		}
		b := p.Image.Bounds()
		w += b.Dx()
		if b.Dy() > h {
			h = b.Dy()
		}
	}
	// Blank slots take the width of the widest panel.
	slot := 0
	for _, p := range panels {
		if p.Image != nil && p.Image.Bounds().Dx() > slot {
			slot = p.Image.Bounds().Dx()
		}
	}
	for _, p := range panels {
		if p.Image == nil {
			w += slot
		}
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(gutterColor), image.Point{}, draw.Src)

	x := 0
	for _, p := range panels {
		pw := slot
		if p.Image != nil {
			b := p.Image.Bounds()
			pw = b.Dx()
			draw.Copy(canvas, image.Pt(x, 0), p.Image, b, draw.Src, nil)
		}
		if p.Caption != "" {
			drawCaption(canvas, x+6, 16, p.Caption)
		}
		x += pw + Gutter
	}
	return canvas
}

func drawCaption(dst *image.NRGBA, x, y int, s string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(captionColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
