package reports

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/bryanwahyu/inspekta/internal/domain/inspection"
)

// Observation is one issue line as shown on a page.
type Observation struct {
	Number      int    `json:"number"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Area        string `json:"area,omitempty"`
}

// Marker is a numbered dot over the photo. X and Y are fractions of the
// image width and height.
type Marker struct {
	Number   int     `json:"number"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Severity string  `json:"severity"`
}

// PageRecord mirrors one rendered photo page. Renderers draw pages from
// these records only, so a record looked up by file name is exactly what the
// page shows.
type PageRecord struct {
	Page               int           `json:"page"`
	Image              string        `json:"image"`
	PageImage          string        `json:"page_image"`
	Status             string        `json:"status"`
	Severity           string        `json:"severity"`
	Badge              string        `json:"badge"`
	Location           string        `json:"location"`
	Observations       []Observation `json:"observations"`
	RecommendedActions []string      `json:"recommended_actions"`
	Note               string        `json:"note,omitempty"`
	Failure            string        `json:"failure,omitempty"`
	Markers            []Marker      `json:"markers"`
}

// Document is the machine-readable sibling of the rendered report.
type Document struct {
	ReportID        string                    `json:"report_id"`
	ClientID        string                    `json:"client_id"`
	PropertyAddress string                    `json:"property_address"`
	InspectedAt     string                    `json:"inspected_at"`
	PhotoCount      int                       `json:"photo_count"`
	Counts          inspection.SeverityCounts `json:"counts"`
	Records         []PageRecord              `json:"records"`
}

// NewDocument builds the records in report order. It depends only on the
// report, so the same report always yields the same document.
func NewDocument(r *inspection.Report) Document {
	doc := Document{
		ReportID:        r.ID,
		ClientID:        r.ClientID,
		PropertyAddress: r.PropertyAddress,
		InspectedAt:     r.InspectedAt.UTC().Format(time.RFC3339),
		PhotoCount:      len(r.Entries),
		Counts:          inspection.Aggregate(r.Entries),
		Records:         make([]PageRecord, 0, len(r.Entries)),
	}
	for i, e := range r.Entries {
		doc.Records = append(doc.Records, newPageRecord(i+1, e))
	}
	return doc
}

func newPageRecord(page int, e inspection.Entry) PageRecord {
	f := e.Finding
	rec := PageRecord{
		Page:               page,
		Image:              e.Photo.Name,
		PageImage:          pageImageName(page, e.Photo.Name),
		Status:             string(f.Status),
		Severity:           string(inspection.Bucket(f)),
		Badge:              badge(f),
		Location:           f.Location,
		Observations:       make([]Observation, 0, len(f.Issues)),
		RecommendedActions: append([]string{}, f.RecommendedActions...),
		Note:               f.Note,
		Failure:            string(f.Failure),
		Markers:            placeMarkers(f.Issues),
	}
	for i, is := range f.Issues {
		rec.Observations = append(rec.Observations, Observation{
			Number:      i + 1,
			Description: is.Description,
			Severity:    string(is.Severity),
			Area:        is.Area,
		})
	}
	return rec
}

func badge(f inspection.Finding) string {
	switch f.Status {
	case inspection.StatusUnavailable:
		return "Analysis unavailable"
	case inspection.StatusNoRepairs:
		return "No issues"
	}
	return f.Severity.Label()
}

func pageImageName(page int, name string) string {
	return fmt.Sprintf("pages/%03d-%s.jpg", page, name)
}

// Lookup returns the record of the photo with the given file name.
func (d Document) Lookup(filename string) (PageRecord, bool) {
	for _, r := range d.Records {
		if r.Image == filename {
			return r, true
		}
	}
	return PageRecord{}, false
}

// Marshal encodes the document as indented JSON.
func (d Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func ReadDocument(r io.Reader) (Document, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return Document{}, fmt.Errorf("decode report document: %w", err)
	}
	return d, nil
}
