package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/bryanwahyu/inspekta/internal/domain/photofailures"
)

type FailureRepository struct {
	db *sql.DB
}

func NewFailureRepository(db *sql.DB) *FailureRepository { return &FailureRepository{db: db} }

func (r *FailureRepository) Save(ctx context.Context, f *domain.Failure) error {
	const q = `
INSERT INTO inspection_photo_failures
  (client_id, report_id, photo, phase, message, created_at)
VALUES (?,?,?,?,?,?)
`
	msg := f.Message
	if strings.TrimSpace(msg) == "" {
		msg = "-"
	}
	created := f.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	res, err := r.db.ExecContext(ctx, q,
		stringOrDash(f.ClientID), stringOrDash(f.ReportID), stringOrDash(f.Photo), stringOrDash(f.Phase), msg, created)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		f.ID = id
	}
	return nil
}

func (r *FailureRepository) ListByReport(ctx context.Context, client, reportID string, limit int) ([]*domain.Failure, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT id, client_id, report_id, photo, phase, message, created_at
FROM inspection_photo_failures
WHERE client_id = ? AND report_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, client, reportID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Failure
	for rows.Next() {
		var f domain.Failure
		if err := rows.Scan(&f.ID, &f.ClientID, &f.ReportID, &f.Photo, &f.Phase, &f.Message, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}
