package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp" // BMP decoder registration
	"golang.org/x/image/draw"
)

// Load reads an image file into RGBA. PNG, JPEG, BMP and true-color TGA
// are understood. With colorKey set, magenta pixels become transparent,
// which lets sprite sheets without alpha be used as billboards.
func Load(path string, colorKey bool) (*image.RGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var img image.Image
	if strings.EqualFold(filepath.Ext(path), ".tga") {
		img, err = DecodeTGA(data)
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	rgba := ToRGBA(img)
	if colorKey {
		ApplyMagentaKey(rgba)
	}
	return rgba, nil
}

// ToRGBA copies any image into a new RGBA image anchored at the origin.
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// isMagentaKey allows a little slack for lossy encoders.
func isMagentaKey(r, g, b uint8) bool {
	return r >= 250 && g <= 10 && b >= 250
}

// ApplyMagentaKey makes magenta pixels transparent black in place, so
// filtering does not bleed the key colour into edges.
func ApplyMagentaKey(img *image.RGBA) {
	for i := 0; i+3 < len(img.Pix); i += 4 {
		if isMagentaKey(img.Pix[i], img.Pix[i+1], img.Pix[i+2]) {
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 0, 0, 0, 0
		}
	}
}

// TGA image types.
const (
	TGATypeUncompressed = 2
	TGATypeRLE          = 10
)

var errTGATruncated = errors.New("tga: pixel data truncated")

// DecodeTGA decodes uncompressed or RLE true-color TGA data, 24 or 32 bits per pixel.
func DecodeTGA(data []byte) (*image.RGBA, error) {
	if len(data) < 18 {
		return nil, errors.New("tga: header too short")
	}
	idLength := int(data[0])
	colorMapType, imageType := data[1], data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	topToBottom := data[17]&0x20 != 0

	if colorMapType != 0 {
		return nil, errors.New("tga: color-mapped images not supported")
	}
	if imageType != TGATypeUncompressed && imageType != TGATypeRLE {
		return nil, fmt.Errorf("tga: unsupported image type %d", imageType)
	}
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("tga: unsupported bit depth %d", bpp)
	}
	if 18+idLength > len(data) {
		return nil, errTGATruncated
	}

	r := tgaReader{
		data: data[18+idLength:],
		size: bpp / 8,
		img:  image.NewRGBA(image.Rect(0, 0, width, height)),
		flip: !topToBottom,
	}
	total := width * height

	if imageType == TGATypeUncompressed {
		if len(r.data) < total*r.size {
			return nil, errTGATruncated
		}
		for r.n < total {
			r.put(r.next())
		}
		return r.img, nil
	}

	for r.n < total {
		if r.pos >= len(r.data) {
			return nil, errTGATruncated
		}
		packet := r.data[r.pos]
		r.pos++
		count := int(packet&0x7f) + 1
		if r.pos+r.size*rleSpan(packet, count) > len(r.data) {
			return nil, errTGATruncated
		}

		if packet&0x80 != 0 {
			c := r.next()
			for i := 0; i < count && r.n < total; i++ {
				r.put(c)
			}
			continue
		}
		for i := 0; i < count && r.n < total; i++ {
			r.put(r.next())
		}
	}
	return r.img, nil
}

// rleSpan is how many pixel values follow a packet header.
func rleSpan(packet byte, count int) int {
	if packet&0x80 != 0 {
		return 1
	}
	return count
}

// tgaReader walks BGR(A) pixel data in file order.
type tgaReader struct {
	data []byte
	pos  int
	size int

	img  *image.RGBA
	n    int
	flip bool
}

func (r *tgaReader) next() color.RGBA {
	p := r.data[r.pos : r.pos+r.size]
	r.pos += r.size
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if r.size == 4 {
		c.A = p[3]
	}
	return c
}

func (r *tgaReader) put(c color.RGBA) {
	w := r.img.Rect.Dx()
	x, y := r.n%w, r.n/w
	if r.flip {
		y = r.img.Rect.Dy() - 1 - y
	}
	r.img.SetRGBA(x, y, c)
	r.n++
}
