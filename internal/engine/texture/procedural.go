// Package texture generates the built-in surface textures and loads
// replacements from image files.
package texture

import (
	"image"
	"image/color"
	"math/rand/v2"
)

// Size is the edge length of generated textures.
const Size = 64

// Bricks draws a staggered brick pattern with per-brick shade noise.
func Bricks(seed uint64, brick, mortar color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, Size, Size))
	rng := rand.New(rand.NewPCG(seed, seed+1))

	const rowH, brickW = 8, 16
	for y := 0; y < Size; y++ {
		row := y / rowH
		offset := (row % 2) * brickW / 2
		for x := 0; x < Size; x++ {
			bx := (x + offset) % brickW
			if y%rowH == 0 || bx == 0 {
				img.SetRGBA(x, y, mortar)
				continue
			}
			img.SetRGBA(x, y, shade(brick, 0.85+0.3*rng.Float64()))
		}
	}
	return img
}

// Tiles draws a square tile grid of the given cell size.
func Tiles(seed uint64, cell int, fill, grout color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, Size, Size))
	rng := rand.New(rand.NewPCG(seed, seed+1))
	if cell <= 1 {
		cell = Size
	}
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			if x%cell == 0 || y%cell == 0 {
				img.SetRGBA(x, y, grout)
				continue
			}
			img.SetRGBA(x, y, shade(fill, 0.9+0.2*rng.Float64()))
		}
	}
	return img
}

// Silhouette draws an opaque figure on a transparent background,
// a rounded head over a tapering body with two bright eyes.
func Silhouette(body, eyes color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, Size, Size))
	cx := Size / 2
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			dx := x - cx
			switch {
			case y < Size/3:
				// head
				dy := y - Size/6
				if dx*dx+dy*dy <= (Size/6)*(Size/6) {
					img.SetRGBA(x, y, body)
				}
			default:
				half := Size/6 + (y-Size/3)/3
				if dx >= -half && dx < half {
					img.SetRGBA(x, y, body)
				}
			}
		}
	}
	for _, ex := range []int{cx - Size/14, cx + Size/14} {
		for y := Size/6 - 2; y <= Size/6; y++ {
			for x := ex - 1; x <= ex+1; x++ {
				img.SetRGBA(x, y, eyes)
			}
		}
	}
	return img
}

func shade(c color.RGBA, f float64) color.RGBA {
	scale := func(v uint8) uint8 {
		s := float64(v) * f
		if s > 255 {
			return 255
		}
		return uint8(s)
	}
	return color.RGBA{scale(c.R), scale(c.G), scale(c.B), c.A}
}
