package viz

import (
	"image"
	"image/color"
	"image/gif"
	"os"
)

const (
	cellW, cellH = 8, 16
	frameDelay   = 2 // hundredths of a second
)

// Frame pixels are drawn as blocks so a recording matches the terminal.
func captureFrame(c *Canvas) *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, c.Width*cellW, c.Height*cellH), color.Palette{color.Black, color.White})
	dotW, dotH := cellW/2, cellH/4
	cw, ch := c.Pixels()
	for y := 0; y < ch; y++ {
		for x := 0; x < cw; x++ {
			if !c.IsSet(x, y) {
				continue
			}
			for py := 0; py < dotH; py++ {
				for px := 0; px < dotW; px++ {
					img.SetColorIndex(x*dotW+px, y*dotH+py, 1)
				}
			}
		}
	}
	return img
}

// SaveGIF writes frames as a looping animation.
func SaveGIF(path string, frames []*image.Paletted) error {
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, frameDelay)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, &anim); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
