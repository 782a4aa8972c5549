package pfimage

import (
	"bytes"
	"image"
	"io"
	"os"

	// formats accepted as source images
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"golang.org/x/image/draw"
	"oss.terrastruct.com/xdefer"
)

// Decode reads any registered image format and returns the format name.
func Decode(r io.Reader) (_ image.Image, format string, err error) {
	defer xdefer.Errorf(&err, "failed to decode image")
	return image.Decode(r)
}

func DecodeBytes(b []byte) (image.Image, string, error) {
	return Decode(bytes.NewReader(b))
}

func Load(path string) (_ image.Image, err error) {
	defer xdefer.Errorf(&err, "failed to load image %q", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

// Fit downscales img so neither side exceeds maxDim, keeping the aspect
// ratio. Images that already fit, or a non-positive maxDim, are returned as is.
func Fit(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	if maxDim <= 0 || (b.Dx() <= maxDim && b.Dy() <= maxDim) {
		return img
	}
	w, h := maxDim, maxDim
	if b.Dx() >= b.Dy() {
		h = b.Dy() * maxDim / b.Dx()
	} else {
		w = b.Dx() * maxDim / b.Dy()
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
