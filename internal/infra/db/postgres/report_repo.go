package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/bryanwahyu/inspekta/internal/domain/reports"
)

type ReportRepository struct{ db *sql.DB }

func NewReportRepository(db *sql.DB) *ReportRepository { return &ReportRepository{db: db} }

const reportColumns = `id, client_id, property_address, inspected_at,
       critical, important, minor, informational, photos_total,
       pdf_url, html_url, document_url, document_key, created_at`

// Save insert ReportRecord; republishing only refreshes the artifact URLs
func (r *ReportRepository) Save(ctx context.Context, rec *domain.ReportRecord) error {
	const q = `
INSERT INTO inspection_reports
(id, client_id, property_address, inspected_at,
 critical, important, minor, informational, photos_total,
 pdf_url, html_url, document_url, document_key, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
ON CONFLICT (id) DO UPDATE SET
 pdf_url = EXCLUDED.pdf_url,
 html_url = EXCLUDED.html_url,
 document_url = EXCLUDED.document_url,
 document_key = EXCLUDED.document_key;`

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

func (r *ReportRepository) Get(ctx context.Context, client, id string) (*domain.ReportRecord, error) {
	q := `SELECT ` + reportColumns + ` FROM inspection_reports WHERE client_id=$1 AND id=$2 LIMIT 1;`
	return scanReport(r.db.QueryRowContext(ctx, q, client, id))
}

func (r *ReportRepository) LatestByProperty(ctx context.Context, client, address string) (*domain.ReportRecord, error) {
	q := `SELECT ` + reportColumns + ` FROM inspection_reports
WHERE client_id=$1 AND property_address=$2
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
