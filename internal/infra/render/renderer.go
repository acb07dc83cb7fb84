package render

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bryanwahyu/inspekta/internal/domain/inspection"
	"github.com/bryanwahyu/inspekta/internal/domain/reports"
	"github.com/bryanwahyu/inspekta/internal/infra/imaging"
	"github.com/bryanwahyu/inspekta/internal/pkg/logger"
)

const (
	DocumentFile = "report.json"
	PDFFile      = "report.pdf"
	HTMLFile     = "index.html"
	PagesDir     = "pages"
)

// Renderer implements reports.Renderer on the local filesystem.
type Renderer struct {
	Annotator *Annotator
	PDF       PDFWriter
	HTML      HTMLWriter
	Log       *logger.Logger
}

func NewRenderer(log *logger.Logger) (*Renderer, error) {
	a, err := NewAnnotator()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Renderer{Annotator: a, Log: log.With("component", "renderer")}, nil
}

// Render builds the document once and draws every artifact from it into outDir.
func (r *Renderer) Render(rep *inspection.Report, outDir string) (reports.Artifacts, error) {
	doc := reports.NewDocument(rep)
	out := reports.Artifacts{
		Dir:          outDir,
		DocumentPath: filepath.Join(outDir, DocumentFile),
		PDFPath:      filepath.Join(outDir, PDFFile),
		HTMLPath:     filepath.Join(outDir, HTMLFile),
		Document:     doc,
	}
	if err := os.MkdirAll(filepath.Join(outDir, PagesDir), 0o755); err != nil {
		return out, fmt.Errorf("create output dir: %w", err)
	}

	for i, rec := range doc.Records {
		dst := filepath.Join(outDir, filepath.FromSlash(rec.PageImage))
		err := r.Annotator.WritePage(rep.Entries[i].Photo.Path, rec, dst)
		var de *imaging.ImageDecodeError
		switch {
		case errors.As(err, &de):
			r.Log.Warn("photo rendered as placeholder", "photo", rec.Image, "error", err)
		case err != nil:
			return out, err
		}
		out.PagePaths = append(out.PagePaths, dst)
	}

	if err := r.PDF.Write(doc, outDir, out.PDFPath); err != nil {
		return out, err
	}
	if err := r.HTML.Write(doc, out.HTMLPath); err != nil {
		return out, err
	}
	b, err := doc.Marshal()
	if err != nil {
		return out, err
	}
	if err := os.WriteFile(out.DocumentPath, b, 0o644); err != nil {
		return out, fmt.Errorf("write document: %w", err)
	}
	r.Log.Info("report rendered", "report", rep.ID, "pages", len(doc.Records), "dir", outDir)
	return out, nil
}
