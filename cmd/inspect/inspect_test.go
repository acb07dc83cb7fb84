package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/inspekta/internal/domain/inspection"
	"github.com/bryanwahyu/inspekta/internal/domain/reports"
)

func sampleReport() *inspection.Report {
	rep := &inspection.Report{
		ID:          "r-1",
		ClientID:    "acme",
		InspectedAt: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
		Entries: []inspection.Entry{
			{Photo: inspection.Photo{Name: "porch.jpg"}, Finding: inspection.NewIssuesFinding("Porch",
				[]inspection.Issue{{Description: "Rotten step", Severity: inspection.SeverityImmediate}}, []string{"Replace step"})},
			{Photo: inspection.Photo{Name: "hall.jpg"}, Finding: inspection.UnavailableFinding(inspection.FailureTransport)},
		},
	}
	rep.Finalize()
	return rep
}

func TestLookupLocal(t *testing.T) {
	doc := reports.NewDocument(sampleReport())
	b, err := doc.Marshal()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, os.WriteFile(path, b, 0o644))

	var out bytes.Buffer
	require.NoError(t, lookupLocal(&out, path, "porch.jpg"))
	var page reports.PageRecord
	require.NoError(t, json.Unmarshal(out.Bytes(), &page))
	want, _ := doc.Lookup("porch.jpg")
	assert.Equal(t, want, page)

	assert.ErrorIs(t, lookupLocal(&out, path, "attic.jpg"), reports.ErrNotFound)
}

func TestPrintSummary(t *testing.T) {
	var out bytes.Buffer
	printSummary(&out, sampleReport(), reports.Artifacts{PDFPath: "out/r-1/report.pdf"}, &reports.ReportRecord{PDFURL: "https://x/report.pdf"})

	s := out.String()
	assert.Contains(t, s, "Report r-1 (2 photos)")
	assert.Contains(t, s, "Critical:      1")
	assert.Contains(t, s, "Informational: 1")
	assert.Contains(t, s, "1 photo(s) could not be analyzed")
	assert.Contains(t, s, "Published: https://x/report.pdf")
}
