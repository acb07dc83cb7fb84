package render

import (
	"bytes"
	"fmt"
	"html/template"
	"os"

	"github.com/bryanwahyu/inspekta/internal/domain/reports"
)

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Inspection report: {{.Doc.PropertyAddress}}</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; margin: 0; background: #f5f5f5; color: #2c3e50; }
section { max-width: 960px; margin: 24px auto; background: #fff; border-radius: 8px; padding: 24px 32px; box-shadow: 0 1px 3px rgba(0,0,0,0.1); }
.counts span { display: inline-block; margin-right: 12px; padding: 8px 14px; border-radius: 6px; color: #fff; font-weight: 600; }
.badge { display: inline-block; padding: 4px 12px; border-radius: 4px; color: #fff; font-weight: 600; float: right; }
img { max-width: 100%; border-radius: 4px; }
.note { color: #7f8c8d; font-style: italic; }
</style>
</head>
<body>
<section class="cover">
<h1>Property Inspection Report</h1>
<h2>{{.Doc.PropertyAddress}}</h2>
<p>Inspected {{.Date}} &middot; {{.Doc.PhotoCount}} photos</p>
<div class="counts">
<span style="background: {{.Colors.Critical}}">{{.Doc.Counts.Critical}} Critical</span>
<span style="background: {{.Colors.Important}}">{{.Doc.Counts.Important}} Important</span>
<span style="background: {{.Colors.Minor}}">{{.Doc.Counts.Minor}} Minor</span>
<span style="background: {{.Colors.Informational}}">{{.Doc.Counts.Informational}} Informational</span>
</div>
</section>
{{range .Pages}}
<section class="photo" id="photo-{{.Record.Page}}" data-image="{{.Record.Image}}">
<p><small>{{.Content.Heading}}</small></p>
<img src="{{.Record.PageImage}}" alt="{{.Record.Image}}">
<h3>{{.Content.Location}} <span class="badge" style="background: {{.BadgeColor}}">{{.Content.Badge}}</span></h3>
{{if .Content.Issues}}
<h4>Issues to Address</h4>
<ul class="issues">{{range .Content.Issues}}
<li>{{.}}</li>{{end}}
</ul>
<h4>Recommended Action</h4>
<ul class="actions">{{range .Content.Actions}}
<li>{{.}}</li>{{end}}
</ul>
{{else}}
<p class="note">{{.Content.Note}}</p>
{{end}}
</section>
{{end}}
</body>
</html>
`))

type htmlPage struct {
	Record     reports.PageRecord
	Content    pageContent
	BadgeColor string
}

type htmlData struct {
	Doc    reports.Document
	Date   string
	Colors struct{ Critical, Important, Minor, Informational string }
	Pages  []htmlPage
}

// HTMLWriter renders index.html next to the pages/ directory.
type HTMLWriter struct{}

func (HTMLWriter) Render(doc reports.Document) ([]byte, error) {
	data := htmlData{Doc: doc, Date: displayDate(doc.InspectedAt)}
	data.Colors.Critical = hex(colorDanger)
	data.Colors.Important = hex(colorOrange)
	data.Colors.Minor = hex(colorWarning)
	data.Colors.Informational = hex(colorAccent)
	for _, rec := range doc.Records {
		data.Pages = append(data.Pages, htmlPage{
			Record:     rec,
			Content:    contentOf(rec, doc.PhotoCount),
			BadgeColor: hex(badgeRGB(rec)),
		})
	}
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render report template: %w", err)
	}
	return buf.Bytes(), nil
}

func (h HTMLWriter) Write(doc reports.Document, dst string) error {
	b, err := h.Render(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, b, 0o644)
}
