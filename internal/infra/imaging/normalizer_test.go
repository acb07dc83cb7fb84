package imaging

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/inspekta/internal/domain/inspection"
)

func solid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 120, G: 80, B: 40, A: 255})
		}
	}
	return img
}

func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, buf.Bytes(), 0o644))
	return p
}

func writeJPEG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, buf.Bytes(), 0o644))
	return p
}

func TestNormalize_SmallPNGIsReused(t *testing.T) {
	dir := t.TempDir()
	p := writePNG(t, dir, "a.png", solid(40, 20))
	src, err := os.ReadFile(p)
	require.NoError(t, err)

	out, err := NewNormalizer(100, 0).Normalize(context.Background(), inspection.Photo{Path: p})
	require.NoError(t, err)
	assert.Equal(t, "image/png", out.MIME)
	assert.Equal(t, src, out.Bytes)
}

func TestNormalize_DownsamplesLargeImage(t *testing.T) {
	dir := t.TempDir()
	p := writeJPEG(t, dir, "big.jpg", solid(400, 200))
	before, err := os.ReadFile(p)
	require.NoError(t, err)

	out, err := NewNormalizer(100, 88).Normalize(context.Background(), inspection.Photo{Path: p})
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", out.MIME)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out.Bytes))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)

	after, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, before, after, "source must stay untouched")
}

func TestNormalize_LargePNGIsReencoded(t *testing.T) {
	dir := t.TempDir()
	p := writePNG(t, dir, "big.png", solid(300, 300))
	out, err := NewNormalizer(150, 0).Normalize(context.Background(), inspection.Photo{Path: p})
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", out.MIME)
}

func TestNormalize_UndecodableImage(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "broken.jpg")
	require.NoError(t, os.WriteFile(p, []byte("definitely not an image"), 0o644))

	_, err := NewNormalizer(0, 0).Normalize(context.Background(), inspection.Photo{Path: p})
	var de *ImageDecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, p, de.Path)
}

func TestNormalize_MissingFile(t *testing.T) {
	_, err := NewNormalizer(0, 0).Normalize(context.Background(), inspection.Photo{Path: "/nope/x.jpg"})
	var de *ImageDecodeError
	assert.True(t, errors.As(err, &de))
}

func TestNormalize_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewNormalizer(0, 0).Normalize(ctx, inspection.Photo{Path: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFit_KeepsAspect(t *testing.T) {
	out := Fit(solid(90, 300), 60)
	assert.Equal(t, 18, out.Bounds().Dx())
	assert.Equal(t, 60, out.Bounds().Dy())

	small := solid(10, 10)
	assert.Same(t, small, Fit(small, 60))
}

func TestOrient(t *testing.T) {
	// 2x1: red at (0,0), blue at (1,0)
	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, red)
	src.Set(1, 0, blue)

	rgba := func(img image.Image, x, y int) color.RGBA {
		return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
	}

	assert.Same(t, image.Image(src), Orient(src, 1))

	mirrored := Orient(src, 2)
	assert.Equal(t, blue, rgba(mirrored, 0, 0))

	cw := Orient(src, 6)
	assert.Equal(t, image.Rect(0, 0, 1, 2), cw.Bounds())
	assert.Equal(t, red, rgba(cw, 0, 0))
	assert.Equal(t, blue, rgba(cw, 0, 1))

	ccw := Orient(src, 8)
	assert.Equal(t, blue, rgba(ccw, 0, 0))
	assert.Equal(t, red, rgba(ccw, 0, 1))

	upside := Orient(src, 3)
	assert.Equal(t, blue, rgba(upside, 0, 0))
}

func TestReadOrientation_NoExif(t *testing.T) {
	assert.Equal(t, 1, readOrientation([]byte("plain bytes")))
}
