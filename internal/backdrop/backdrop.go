// Package backdrop loads the background picture shown on the backdrop
// window and renders it for the current theme.
package backdrop

import (
	"fmt"
	"image"
	"image/color"
	"os"

	// Decoders for the formats accepted as a background.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/1broseidon/workspace/internal/theme"
)

// Load decodes the image at path.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open background: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode background %s: %w", path, err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("background %s (%s) is empty", path, format)
	}
	return img, nil
}

// Render scales src to size and runs every pixel through the theme
// filter. src is never modified, so re-rendering with another theme
// always starts from the original colours.
func Render(src image.Image, size image.Point, t theme.Theme) *image.RGBA {
	if size.X <= 0 || size.Y <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	dst := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	if t == theme.Workbench {
		return dst
	}
	Tint(dst, t)
	return dst
}

// Tint applies the theme filter to img in place. Alpha is preserved.
func Tint(img *image.RGBA, t theme.Theme) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			f := t.Filter(theme.RGB{R: c.R, G: c.G, B: c.B})
			img.SetRGBA(x, y, color.RGBA{R: f.R, G: f.G, B: f.B, A: c.A})
		}
	}
}
