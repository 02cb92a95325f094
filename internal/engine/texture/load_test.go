package texture

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
)

// tgaHeader builds an 18-byte header for a true-color image.
func tgaHeader(imageType byte, w, h, bpp int, topToBottom bool) []byte {
	hdr := make([]byte, 18)
	hdr[2] = imageType
	hdr[12], hdr[13] = byte(w), byte(w>>8)
	hdr[14], hdr[15] = byte(h), byte(h>>8)
	hdr[16] = byte(bpp)
	if topToBottom {
		hdr[17] = 0x20
	}
	return hdr
}

func TestDecodeTGAUncompressed(t *testing.T) {
	// 2x2, 24-bit, bottom-up: first row in the file is the bottom row.
	data := tgaHeader(TGATypeUncompressed, 2, 2, 24, false)
	data = append(data,
		0, 0, 255, 0, 255, 0, // bottom: red, green
		255, 0, 0, 255, 255, 255, // top: blue, white
	)

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{0, 1, color.RGBA{255, 0, 0, 255}},
		{1, 1, color.RGBA{0, 255, 0, 255}},
		{0, 0, color.RGBA{0, 0, 255, 255}},
		{1, 0, color.RGBA{255, 255, 255, 255}},
	}
	for _, tt := range tests {
		if got := img.RGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestDecodeTGARLE(t *testing.T) {
	// 3x1, 32-bit, top-down: a run of two reds then one raw green.
	data := tgaHeader(TGATypeRLE, 3, 1, 32, true)
	data = append(data,
		0x81, 0, 0, 255, 128, // run of 2
		0x00, 0, 255, 0, 255, // raw 1
	)

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	red := color.RGBA{255, 0, 0, 128}
	if img.RGBAAt(0, 0) != red || img.RGBAAt(1, 0) != red {
		t.Errorf("run not expanded: %v %v", img.RGBAAt(0, 0), img.RGBAAt(1, 0))
	}
	if got := img.RGBAAt(2, 0); got != (color.RGBA{0, 255, 0, 255}) {
		t.Errorf("raw pixel = %v", got)
	}
}

func TestDecodeTGAErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short header", []byte{0, 0, 2}},
		{"color mapped", func() []byte { h := tgaHeader(1, 1, 1, 24, false); h[1] = 1; return h }()},
		{"grayscale", tgaHeader(3, 1, 1, 8, false)},
		{"16 bit", tgaHeader(TGATypeUncompressed, 1, 1, 16, false)},
		{"truncated pixels", append(tgaHeader(TGATypeUncompressed, 2, 2, 24, false), 1, 2, 3)},
		{"truncated run", append(tgaHeader(TGATypeRLE, 4, 1, 24, false), 0x83, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeTGA(tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}

	_, err := DecodeTGA(append(tgaHeader(TGATypeRLE, 4, 1, 24, false), 0x83, 1))
	if !errors.Is(err, errTGATruncated) {
		t.Errorf("expected truncation error, got %v", err)
	}
}

func writeImage(t *testing.T, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	switch filepath.Ext(name) {
	case ".png":
		err = png.Encode(f, img)
	case ".bmp":
		err = bmp.Encode(f, img)
	}
	if err != nil {
		t.Fatalf("encode %s: %v", name, err)
	}
	return path
}

func TestLoadFormats(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	src.SetRGBA(1, 2, color.RGBA{255, 0, 255, 255})

	for _, name := range []string{"wall.png", "wall.bmp"} {
		t.Run(name, func(t *testing.T) {
			path := writeImage(t, name, src)

			img, err := Load(path, false)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if img.Bounds() != src.Bounds() {
				t.Errorf("bounds %v, want %v", img.Bounds(), src.Bounds())
			}
			if img.RGBAAt(1, 2) != (color.RGBA{255, 0, 255, 255}) {
				t.Errorf("pixel lost: %v", img.RGBAAt(1, 2))
			}

			keyed, err := Load(path, true)
			if err != nil {
				t.Fatalf("load keyed: %v", err)
			}
			if keyed.RGBAAt(1, 2).A != 0 {
				t.Error("magenta pixel not keyed out")
			}
			if keyed.RGBAAt(0, 0).A != 255 {
				t.Error("white pixel keyed out")
			}
		})
	}
}

func TestLoadTGAFile(t *testing.T) {
	data := tgaHeader(TGATypeUncompressed, 1, 1, 24, false)
	data = append(data, 10, 20, 30)
	path := filepath.Join(t.TempDir(), "floor.TGA")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	img, err := Load(path, false)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{30, 20, 10, 255}) {
		t.Errorf("pixel = %v", got)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.png"), false); err == nil {
		t.Error("expected error for missing file")
	}

	junk := filepath.Join(dir, "junk.png")
	if err := os.WriteFile(junk, []byte("not an image"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(junk, false); err == nil {
		t.Error("expected decode error")
	}
}

func TestToRGBAOffsetBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 12, 12))
	src.SetRGBA(10, 10, color.RGBA{1, 2, 3, 255})

	img := ToRGBA(src)
	if img.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Errorf("bounds %v, want origin-anchored 2x2", img.Bounds())
	}
	if img.RGBAAt(0, 0) != (color.RGBA{1, 2, 3, 255}) {
		t.Errorf("pixel = %v", img.RGBAAt(0, 0))
	}
}
