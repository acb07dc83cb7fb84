package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"

	_ "image/gif"
	_ "image/png"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/bryanwahyu/inspekta/internal/domain/inspection"
)

const (
	DefaultMaxDimension = 1568
	DefaultJPEGQuality  = 88
)

// ImageDecodeError is returned for a photo that cannot be read or decoded.
// The orchestrator isolates it to that photo.
type ImageDecodeError struct {
	Path string
	Err  error
}

func (e *ImageDecodeError) Error() string {
	return fmt.Sprintf("decode image %s: %v", e.Path, e.Err)
}

func (e *ImageDecodeError) Unwrap() error { return e.Err }

// Normalizer produces the downsized copy sent to the vision model. The source
// file is only read.
type Normalizer struct {
	MaxDimension int
	JPEGQuality  int
}

func NewNormalizer(maxDimension, quality int) *Normalizer {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return &Normalizer{MaxDimension: maxDimension, JPEGQuality: quality}
}

func (n *Normalizer) Normalize(ctx context.Context, p inspection.Photo) (inspection.NormalizedImage, error) {
	if err := ctx.Err(); err != nil {
		return inspection.NormalizedImage{}, err
	}
	raw, err := os.ReadFile(p.Path)
	if err != nil {
		return inspection.NormalizedImage{}, &ImageDecodeError{Path: p.Path, Err: err}
	}

	orientation := p.Orientation
	if orientation == 0 {
		orientation = readOrientation(raw)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return inspection.NormalizedImage{}, &ImageDecodeError{Path: p.Path, Err: err}
	}
	// PNG kecil tanpa rotasi dikirim apa adanya
	if format == "png" && orientation <= 1 && max(cfg.Width, cfg.Height) <= n.MaxDimension {
		return inspection.NormalizedImage{Bytes: raw, MIME: "image/png"}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return inspection.NormalizedImage{}, &ImageDecodeError{Path: p.Path, Err: err}
	}
	img = Orient(Fit(img, n.MaxDimension), orientation)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: n.JPEGQuality}); err != nil {
		return inspection.NormalizedImage{}, fmt.Errorf("encode jpeg %s: %w", p.Path, err)
	}
	return inspection.NormalizedImage{Bytes: buf.Bytes(), MIME: "image/jpeg"}, nil
}

// Open decodes the full-resolution original and applies its EXIF orientation.
func Open(path string) (image.Image, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &ImageDecodeError{Path: path, Err: err}
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, &ImageDecodeError{Path: path, Err: err}
	}
	return Orient(img, readOrientation(raw)), nil
}

// Fit downsamples img so its longer side is at most maxDim, keeping the
// aspect ratio. Smaller images are returned unchanged.
func Fit(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim <= 0 || max(w, h) <= maxDim {
		return img
	}
	var nw, nh int
	if w >= h {
		nw = maxDim
		nh = max(1, h*maxDim/w)
	} else {
		nh = maxDim
		nw = max(1, w*maxDim/h)
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Orient applies an EXIF orientation value (1-8). Values outside that range
// return img unchanged.
func Orient(img image.Image, orientation int) image.Image {
	if orientation < 2 || orientation > 8 {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dw, dh := w, h
	if orientation >= 5 {
		dw, dh = h, w
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var dx, dy int
			switch orientation {
			case 2:
				dx, dy = w-1-x, y
			case 3:
				dx, dy = w-1-x, h-1-y
			case 4:
				dx, dy = x, h-1-y
			case 5:
				dx, dy = y, x
			case 6:
				dx, dy = h-1-y, x
			case 7:
				dx, dy = h-1-y, w-1-x
			case 8:
				dx, dy = y, w-1-x
			}
			dst.Set(dx, dy, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

// readOrientation returns the EXIF orientation tag, or 1 when there is none.
func readOrientation(raw []byte) (orientation int) {
	defer func() {
		if recover() != nil {
			orientation = 1
		}
	}()
	x, err := exif.Decode(bytes.NewReader(raw))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil || v < 1 || v > 8 {
		return 1
	}
	return v
}
