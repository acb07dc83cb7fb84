package render

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/bryanwahyu/inspekta/internal/domain/reports"
)

const fontFamily = "Go"

// PDFWriter lays out the cover page and one page per photo.
type PDFWriter struct{}

func (w PDFWriter) Write(doc reports.Document, baseDir, dst string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 25)
	// core fonts only speak cp1252; addresses and findings may not
	pdf.AddUTF8FontFromBytes(fontFamily, "", goregular.TTF)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", gobold.TTF)
	pdf.AddUTF8FontFromBytes(fontFamily, "I", goitalic.TTF)

	if t, err := time.Parse(time.RFC3339, doc.InspectedAt); err == nil {
		pdf.SetCreationDate(t)
		pdf.SetModificationDate(t)
	}
	pdf.SetTitle("Inspection report "+doc.PropertyAddress, true)
	pdf.SetCreator("inspekta", false)

	w.writeCover(pdf, doc)
	for _, rec := range doc.Records {
		w.writePhotoPage(pdf, doc, rec, filepath.Join(baseDir, filepath.FromSlash(rec.PageImage)))
	}
	w.addPageNumbers(pdf)

	if err := pdf.OutputFileAndClose(dst); err != nil {
		return fmt.Errorf("PDF output error: %w", err)
	}
	return nil
}

func displayDate(rfc3339 string) string {
	t, err := time.Parse(time.RFC3339, rfc3339)
	if err != nil {
		return rfc3339
	}
	return t.Format("January 2, 2006")
}

func setText(pdf *fpdf.Fpdf, c [3]int) { pdf.SetTextColor(c[0], c[1], c[2]) }
func setFill(pdf *fpdf.Fpdf, c [3]int) { pdf.SetFillColor(c[0], c[1], c[2]) }

func (w PDFWriter) writeCover(pdf *fpdf.Fpdf, doc reports.Document) {
	pdf.AddPage()
	pageWidth, pageHeight := pdf.GetPageSize()

	setFill(pdf, colorPrimary)
	pdf.Rect(0, 0, pageWidth, 8, "F")

	pdf.SetY(60)
	pdf.SetFont(fontFamily, "B", 28)
	setText(pdf, colorTextDark)
	pdf.CellFormat(0, 12, "Property Inspection Report", "", 1, "C", false, 0, "")

	pdf.Ln(8)
	pdf.SetFont(fontFamily, "B", 16)
	pdf.MultiCell(0, 9, doc.PropertyAddress, "", "C", false)

	pdf.Ln(4)
	pdf.SetFont(fontFamily, "", 12)
	setText(pdf, colorTextMuted)
	pdf.CellFormat(0, 8, "Inspected "+displayDate(doc.InspectedAt), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("%d photos", doc.PhotoCount), "", 1, "C", false, 0, "")

	// ringkasan severity
	pdf.SetY(150)
	boxW := (pageWidth - 40 - 3*4) / 4
	x := 20.0
	for _, b := range []struct {
		label string
		n     int
		c     [3]int
	}{
		{"Critical", doc.Counts.Critical, colorDanger},
		{"Important", doc.Counts.Important, colorOrange},
		{"Minor", doc.Counts.Minor, colorWarning},
		{"Informational", doc.Counts.Informational, colorAccent},
	} {
		setFill(pdf, b.c)
		pdf.RoundedRect(x, 150, boxW, 30, 3, "1234", "F")
		pdf.SetXY(x, 154)
		pdf.SetFont(fontFamily, "B", 20)
		pdf.SetTextColor(255, 255, 255)
		pdf.CellFormat(boxW, 10, fmt.Sprintf("%d", b.n), "", 0, "C", false, 0, "")
		pdf.SetXY(x, 166)
		pdf.SetFont(fontFamily, "", 10)
		pdf.CellFormat(boxW, 8, b.label, "", 0, "C", false, 0, "")
		x += boxW + 4
	}

	pdf.SetY(pageHeight - 40)
	pdf.SetFont(fontFamily, "", 9)
	setText(pdf, colorTextMuted)
	pdf.CellFormat(0, 6, "Report "+doc.ReportID, "", 1, "C", false, 0, "")

	setFill(pdf, colorPrimary)
	pdf.Rect(0, pageHeight-8, pageWidth, 8, "F")
}

func (w PDFWriter) writePhotoPage(pdf *fpdf.Fpdf, doc reports.Document, rec reports.PageRecord, imgPath string) {
	c := contentOf(rec, doc.PhotoCount)
	pdf.AddPage()
	pageWidth, _ := pdf.GetPageSize()

	pdf.SetDrawColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
	pdf.SetLineWidth(0.5)
	pdf.Line(20, 15, pageWidth-20, 15)
	pdf.SetY(18)
	pdf.SetFont(fontFamily, "B", 9)
	setText(pdf, colorPrimary)
	pdf.CellFormat(0, 5, c.Heading, "", 1, "L", false, 0, "")

	// foto, dimuat ke kotak maksimum 170x120 mm
	opts := fpdf.ImageOptions{ImageType: "JPG"}
	info := pdf.RegisterImageOptions(imgPath, opts)
	top := 26.0
	boxW, boxH := pageWidth-40, 120.0
	imgH := boxH
	if info != nil && info.Width() > 0 {
		iw, ih := boxW, boxW*info.Height()/info.Width()
		if ih > boxH {
			iw, ih = boxH*info.Width()/info.Height(), boxH
		}
		pdf.ImageOptions(imgPath, 20+(boxW-iw)/2, top, iw, ih, false, opts, 0, "")
		imgH = ih
	}
	pdf.SetY(top + imgH + 6)

	pdf.SetFont(fontFamily, "B", 14)
	setText(pdf, colorTextDark)
	pdf.CellFormat(120, 8, c.Location, "", 0, "L", false, 0, "")

	badgeW := 50.0
	setFill(pdf, badgeRGB(rec))
	y := pdf.GetY()
	pdf.RoundedRect(pageWidth-20-badgeW, y, badgeW, 8, 2, "1234", "F")
	pdf.SetXY(pageWidth-20-badgeW, y)
	pdf.SetFont(fontFamily, "B", 10)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(badgeW, 8, c.Badge, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	if len(c.Issues) == 0 {
		pdf.SetFont(fontFamily, "I", 11)
		setText(pdf, colorTextMuted)
		pdf.MultiCell(0, 6, c.Note, "", "L", false)
		return
	}

	pdf.SetFont(fontFamily, "B", 11)
	setText(pdf, colorTextDark)
	pdf.CellFormat(0, 7, "Issues to Address", "", 1, "L", false, 0, "")
	pdf.SetFont(fontFamily, "", 10)
	for i, line := range c.Issues {
		sev := rec.Observations[i].Severity
		col := severityRGB(sev)
		setFill(pdf, col)
		pdf.Rect(20, pdf.GetY()+1.5, 2, 3, "F")
		pdf.SetX(24)
		pdf.MultiCell(0, 6, line, "", "L", false)
	}

	pdf.Ln(2)
	pdf.SetFont(fontFamily, "B", 11)
	pdf.CellFormat(0, 7, "Recommended Action", "", 1, "L", false, 0, "")
	pdf.SetFont(fontFamily, "", 10)
	for _, a := range c.Actions {
		pdf.SetX(24)
		pdf.MultiCell(0, 6, "- "+a, "", "L", false)
	}
}

// addPageNumbers numbers every page except the cover.
func (w PDFWriter) addPageNumbers(pdf *fpdf.Fpdf) {
	pdf.SetAutoPageBreak(false, 0)
	total := pdf.PageCount()
	for i := 2; i <= total; i++ {
		pdf.SetPage(i)
		pageWidth, pageHeight := pdf.GetPageSize()
		pdf.SetDrawColor(colorGridLine[0], colorGridLine[1], colorGridLine[2])
		pdf.SetLineWidth(0.3)
		pdf.Line(20, pageHeight-20, pageWidth-20, pageHeight-20)
		pdf.SetY(pageHeight - 15)
		pdf.SetFont(fontFamily, "", 8)
		setText(pdf, colorTextMuted)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d of %d", i-1, total-1), "", 0, "C", false, 0, "")
	}
}
