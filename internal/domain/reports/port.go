package reports

import (
	"context"

	"github.com/bryanwahyu/inspekta/internal/domain/inspection"
)

// Repository port for report artifact links
type Repository interface {
	Save(ctx context.Context, r *ReportRecord) error
	Get(ctx context.Context, client, id string) (*ReportRecord, error)
	LatestByProperty(ctx context.Context, client, address string) (*ReportRecord, error)
}

// Artifacts are the local files produced for one report.
type Artifacts struct {
	Dir          string
	DocumentPath string
	PDFPath      string
	HTMLPath     string
	PagePaths    []string
	Document     Document
}

// Renderer port: draws every artifact from one Document built from the report.
type Renderer interface {
	Render(r *inspection.Report, outDir string) (Artifacts, error)
}
