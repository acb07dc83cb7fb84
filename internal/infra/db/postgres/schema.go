package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS inspection_reports (
  id               TEXT PRIMARY KEY,
  client_id        TEXT NOT NULL,
  property_address TEXT NOT NULL,
  inspected_at     TIMESTAMPTZ NOT NULL,
  critical         INTEGER NOT NULL DEFAULT 0,
  important        INTEGER NOT NULL DEFAULT 0,
  minor            INTEGER NOT NULL DEFAULT 0,
  informational    INTEGER NOT NULL DEFAULT 0,
  photos_total     INTEGER NOT NULL DEFAULT 0,
  pdf_url          TEXT NOT NULL,
  html_url         TEXT NOT NULL,
  document_url     TEXT NOT NULL,
  document_key     TEXT NOT NULL,
  created_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_property ON inspection_reports (client_id, property_address, inspected_at DESC);

CREATE TABLE IF NOT EXISTS inspection_photo_failures (
  id         BIGSERIAL PRIMARY KEY,
  client_id  TEXT NOT NULL,
  report_id  TEXT NOT NULL,
  photo      TEXT NOT NULL,
  phase      TEXT NOT NULL,
  message    TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_failures_report ON inspection_photo_failures (client_id, report_id);
`

// Migrate creates the tables when they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	return nil
}
