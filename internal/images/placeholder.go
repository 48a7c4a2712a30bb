package images

import (
	"image"
	"image/color"
	"image/jpeg"
	"os"
)

const (
	placeholderWidth  = 640
	placeholderHeight = 400
)

// settingTints maps each world setting to the base color of its
// fallback image, so a failed generation still hints at the scene.
var settingTints = map[string]color.RGBA{
	"Residential Neighborhood": {R: 0x87, G: 0xce, B: 0xeb, A: 0xff},
	"Small Urban Park":         {R: 0x38, G: 0xad, B: 0x4a, A: 0xff},
	"Quiet Shopping Street":    {R: 0xf7, G: 0x7f, B: 0xbe, A: 0xff},
	"Path near a Small Shrine": {R: 0xc4, G: 0x1e, B: 0x3a, A: 0xff},
	"Empty Field":              {R: 0xff, G: 0xc4, B: 0x00, A: 0xff},
	"Riverside Path":           {R: 0x42, G: 0x87, B: 0xf5, A: 0xff},
}

// defaultTint covers settings outside the generation pool.
var defaultTint = color.RGBA{R: 0x64, G: 0x64, B: 0x64, A: 0xff}

// writePlaceholder renders a gradient JPEG tinted for the setting,
// used when generation is unavailable.
func writePlaceholder(path, setting string) error {
	base, ok := settingTints[setting]
	if !ok {
		base = defaultTint
	}
	top := shade(base, 0.35)
	bottom := shade(base, 0.85)

	img := image.NewRGBA(image.Rect(0, 0, placeholderWidth, placeholderHeight))
	for y := 0; y < placeholderHeight; y++ {
		t := float64(y) / float64(placeholderHeight-1)
		c := color.RGBA{
			R: lerp(top.R, bottom.R, t),
			G: lerp(top.G, bottom.G, t),
			B: lerp(top.B, bottom.B, t),
			A: 0xff,
		}
		for x := 0; x < placeholderWidth; x++ {
			img.Set(x, y, c)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return jpeg.Encode(f, img, &jpeg.Options{Quality: 80})
}

// shade scales a color toward black; t=1 keeps the full tint.
func shade(c color.RGBA, t float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * t),
		G: uint8(float64(c.G) * t),
		B: uint8(float64(c.B) * t),
		A: 0xff,
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}
