package reports

import (
	"errors"
	"time"

	"github.com/bryanwahyu/inspekta/internal/domain/inspection"
)

var ErrNotFound = errors.New("report not found")

// ReportRecord links a finished report artifact to a client/property.
// Immutable: a new inspection produces a new record.
type ReportRecord struct {
	ID              string                    `json:"id"`
	ClientID        string                    `json:"client_id"`
	PropertyAddress string                    `json:"property_address"`
	InspectedAt     time.Time                 `json:"inspected_at"`
	Counts          inspection.SeverityCounts `json:"counts"`
	PDFURL          string                    `json:"pdf_url"`
	HTMLURL         string                    `json:"html_url"`
	DocumentURL     string                    `json:"document_url"`
	DocumentKey     string                    `json:"document_key"`
	CreatedAt       time.Time                 `json:"created_at"`
}
