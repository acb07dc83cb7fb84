// Package render draws the report artifacts (annotated page images, PDF and
// HTML) from a reports.Document.
package render

import (
	"fmt"
	"image/color"

	"github.com/bryanwahyu/inspekta/internal/domain/inspection"
	"github.com/bryanwahyu/inspekta/internal/domain/reports"
)

var (
	colorPrimary   = [3]int{30, 58, 95}
	colorTextDark  = [3]int{44, 62, 80}
	colorTextMuted = [3]int{127, 140, 141}
	colorGridLine  = [3]int{220, 220, 220}
	colorDanger    = [3]int{231, 76, 60}
	colorOrange    = [3]int{230, 126, 34}
	colorWarning   = [3]int{241, 196, 15}
	colorAccent    = [3]int{46, 204, 113}
)

func severityRGB(sev string) [3]int {
	switch inspection.Severity(sev) {
	case inspection.SeverityImmediate:
		return colorDanger
	case inspection.SeveritySoon:
		return colorOrange
	case inspection.SeverityCosmetic:
		return colorWarning
	}
	return colorAccent
}

func badgeRGB(rec reports.PageRecord) [3]int {
	if rec.Status == string(inspection.StatusUnavailable) {
		return colorTextMuted
	}
	return severityRGB(rec.Severity)
}

func toColor(c [3]int) color.RGBA {
	return color.RGBA{R: uint8(c[0]), G: uint8(c[1]), B: uint8(c[2]), A: 255}
}

func hex(c [3]int) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

// pageContent is the text block of one photo page. The PDF and HTML writers
// both print exactly these lines.
type pageContent struct {
	Heading  string
	Location string
	Badge    string
	Issues   []string
	Actions  []string
	Note     string
}

func contentOf(rec reports.PageRecord, total int) pageContent {
	c := pageContent{
		Heading:  fmt.Sprintf("Photo %d of %d: %s", rec.Page, total, rec.Image),
		Location: rec.Location,
		Badge:    rec.Badge,
		Actions:  rec.RecommendedActions,
	}
	if c.Location == "" {
		c.Location = "Unspecified location"
	}
	for _, o := range rec.Observations {
		c.Issues = append(c.Issues, fmt.Sprintf("%d. [%s] %s", o.Number, inspection.Severity(o.Severity).Label(), o.Description))
	}
	if len(rec.Observations) == 0 {
		c.Note = rec.Note
	}
	return c
}
