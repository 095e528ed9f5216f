package export

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"io"

	"github.com/san-kum/gendrift/internal/popgen"
)

var genotypePalette = color.Palette{
	color.Black,
	color.White,
	color.RGBA{R: 0xe0, G: 0x4f, B: 0x5f, A: 0xff},
	color.RGBA{R: 0x5f, G: 0xd7, B: 0x87, A: 0xff},
	color.RGBA{R: 0x5f, G: 0x87, B: 0xff, A: 0xff},
}

type GIFOptions struct {
	Width  int
	Height int
	// Delay between frames in hundredths of a second.
	Delay int
}

func (o GIFOptions) withDefaults() GIFOptions {
	if o.Width <= 0 {
		o.Width = 240
	}
	if o.Height <= 0 {
		o.Height = 160
	}
	if o.Delay <= 0 {
		o.Delay = 5
	}
	return o
}

// GenotypeGIF animates AA, Aa and aa proportions as three bars, one frame
// per generation.
func GenotypeGIF(w io.Writer, series []popgen.Genotypes, opts GIFOptions) error {
	if len(series) == 0 {
		return fmt.Errorf("no genotype frames to encode")
	}
	opts = opts.withDefaults()

	anim := gif.GIF{LoopCount: 0}
	for _, g := range series {
		anim.Image = append(anim.Image, genotypeFrame(g, opts.Width, opts.Height))
		anim.Delay = append(anim.Delay, opts.Delay)
	}
	return gif.EncodeAll(w, &anim)
}

func genotypeFrame(g popgen.Genotypes, width, height int) *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, width, height), genotypePalette)

	slot := width / 3
	pad := slot / 6
	base := height - 2
	for i, v := range g.Slice() {
		v = min(max(v, 0), 1)
		top := base - int(v*float64(base))
		x0, x1 := i*slot+pad, (i+1)*slot-pad
		for y := top; y < base; y++ {
			for x := x0; x < x1; x++ {
				img.SetColorIndex(x, y, uint8(i+2))
			}
		}
	}
	for x := 0; x < width; x++ {
		img.SetColorIndex(x, base, 1)
	}
	return img
}
