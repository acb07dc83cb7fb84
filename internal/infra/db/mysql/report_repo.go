package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/bryanwahyu/inspekta/internal/domain/reports"
)

type ReportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

const reportColumns = `id, client_id, property_address, inspected_at,
       critical, important, minor, informational, photos_total,
       pdf_url, html_url, document_url, document_key, created_at`

// Save insert ReportRecord; publishing the same report twice only refreshes the URLs
func (r *ReportRepository) Save(ctx context.Context, rec *domain.ReportRecord) error {
	const q = `
INSERT INTO inspection_reports
(id, client_id, property_address, inspected_at,
 critical, important, minor, informational, photos_total,
 pdf_url, html_url, document_url, document_key, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 pdf_url=VALUES(pdf_url), html_url=VALUES(html_url),
 document_url=VALUES(document_url), document_key=VALUES(document_key);
`
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		rec.ID, stringOrDash(rec.ClientID), rec.PropertyAddress, rec.InspectedAt,
		rec.Counts.Critical, rec.Counts.Important, rec.Counts.Minor, rec.Counts.Informational, rec.Counts.Total,
		rec.PDFURL, rec.HTMLURL, rec.DocumentURL, rec.DocumentKey, created,
	)
	return err
}

// Get by ID + client
func (r *ReportRepository) Get(ctx context.Context, client, id string) (*domain.ReportRecord, error) {
	q := `SELECT ` + reportColumns + ` FROM inspection_reports WHERE client_id=? AND id=? LIMIT 1;`
	return scanReport(r.db.QueryRowContext(ctx, q, client, id))
}

// LatestByProperty returns the newest report for one address of a client.
func (r *ReportRepository) LatestByProperty(ctx context.Context, client, address string) (*domain.ReportRecord, error) {
	q := `SELECT ` + reportColumns + ` FROM inspection_reports
WHERE client_id=? AND property_address=?
ORDER BY inspected_at DESC, created_at DESC LIMIT 1;`
	return scanReport(r.db.QueryRowContext(ctx, q, client, address))
}

func scanReport(row *sql.Row) (*domain.ReportRecord, error) {
	var rec domain.ReportRecord
	if err := row.Scan(
		&rec.ID, &rec.ClientID, &rec.PropertyAddress, &rec.InspectedAt,
		&rec.Counts.Critical, &rec.Counts.Important, &rec.Counts.Minor, &rec.Counts.Informational, &rec.Counts.Total,
		&rec.PDFURL, &rec.HTMLURL, &rec.DocumentURL, &rec.DocumentKey, &rec.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}
