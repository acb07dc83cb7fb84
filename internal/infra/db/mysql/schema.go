package mysql

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{`
CREATE TABLE IF NOT EXISTS inspection_reports (
  id               VARCHAR(64)  NOT NULL PRIMARY KEY,
  client_id        VARCHAR(64)  NOT NULL,
  property_address VARCHAR(512) NOT NULL,
  inspected_at     DATETIME     NOT NULL,
  critical         INT          NOT NULL DEFAULT 0,
  important        INT          NOT NULL DEFAULT 0,
  minor            INT          NOT NULL DEFAULT 0,
  informational    INT          NOT NULL DEFAULT 0,
  photos_total     INT          NOT NULL DEFAULT 0,
  pdf_url          TEXT         NOT NULL,
  html_url         TEXT         NOT NULL,
  document_url     TEXT         NOT NULL,
  document_key     VARCHAR(512) NOT NULL,
  created_at       DATETIME     NOT NULL,
  KEY idx_reports_property (client_id, property_address(191), inspected_at)
)`, `
CREATE TABLE IF NOT EXISTS inspection_photo_failures (
  id         BIGINT       NOT NULL AUTO_INCREMENT PRIMARY KEY,
  client_id  VARCHAR(64)  NOT NULL,
  report_id  VARCHAR(64)  NOT NULL,
  photo      VARCHAR(255) NOT NULL,
  phase      VARCHAR(32)  NOT NULL,
  message    TEXT         NOT NULL,
  created_at DATETIME     NOT NULL,
  KEY idx_failures_report (client_id, report_id)
)`}

// Migrate creates the tables when they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, q := range schema {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("mysql migrate: %w", err)
		}
	}
	return nil
}
