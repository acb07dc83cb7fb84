package render

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"os"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/bryanwahyu/inspekta/internal/domain/reports"
	"github.com/bryanwahyu/inspekta/internal/infra/imaging"
)

// Annotator draws numbered issue markers over the full-resolution photo.
type Annotator struct {
	font    *truetype.Font
	Quality int
}

func NewAnnotator() (*Annotator, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return &Annotator{font: f, Quality: 90}, nil
}

func (a *Annotator) face(size float64) font.Face {
	return truetype.NewFace(a.font, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// Annotate returns the page image for rec. A photo that cannot be decoded
// gets a placeholder together with the decode error.
func (a *Annotator) Annotate(photoPath string, rec reports.PageRecord) (image.Image, error) {
	img, err := imaging.Open(photoPath)
	if err != nil {
		return a.placeholder("Photo could not be displayed"), err
	}
	if len(rec.Markers) == 0 {
		return img, nil
	}

	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	r := math.Max(10, math.Min(w, h)*0.035)

	dc := gg.NewContextForImage(img)
	dc.SetFontFace(a.face(r * 1.2))
	for _, m := range rec.Markers {
		cx, cy := m.X*w, m.Y*h
		dc.DrawCircle(cx, cy, r)
		dc.SetColor(toColor(severityRGB(m.Severity)))
		dc.FillPreserve()
		dc.SetColor(color.White)
		dc.SetLineWidth(math.Max(2, r*0.15))
		dc.Stroke()
		dc.DrawStringAnchored(strconv.Itoa(m.Number), cx, cy, 0.5, 0.35)
	}
	return dc.Image(), nil
}

func (a *Annotator) placeholder(text string) image.Image {
	const w, h = 1200, 900
	dc := gg.NewContext(w, h)
	dc.SetColor(toColor(colorGridLine))
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()
	dc.SetFontFace(a.face(42))
	dc.SetColor(toColor(colorTextMuted))
	dc.DrawStringAnchored(text, w/2, h/2, 0.5, 0.5)
	return dc.Image()
}

// WritePage annotates and stores the page image as JPEG at dst.
func (a *Annotator) WritePage(photoPath string, rec reports.PageRecord, dst string) error {
	img, decodeErr := a.Annotate(photoPath, rec)
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: a.Quality}); err != nil {
		f.Close()
		return fmt.Errorf("encode page %s: %w", dst, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return decodeErr
}
