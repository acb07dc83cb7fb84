// Package bootstrap builds the adapters both binaries share from the config.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bryanwahyu/inspekta/internal/config"
	"github.com/bryanwahyu/inspekta/internal/domain/inspection"
	"github.com/bryanwahyu/inspekta/internal/domain/photofailures"
	"github.com/bryanwahyu/inspekta/internal/domain/reports"
	mysqlp "github.com/bryanwahyu/inspekta/internal/infra/db/mysql"
	pgp "github.com/bryanwahyu/inspekta/internal/infra/db/postgres"
	"github.com/bryanwahyu/inspekta/internal/infra/storage"
)

// Repositories holds the optional persistence adapters. All fields are nil
// when no database driver is configured.
type Repositories struct {
	DB       *sql.DB
	Reports  reports.Repository
	Failures photofailures.Repository
}

func (r *Repositories) Close() error {
	if r == nil || r.DB == nil {
		return nil
	}
	return r.DB.Close()
}

// OpenRepositories connects the configured driver and runs its migration.
func OpenRepositories(ctx context.Context, cfg *config.Config) (*Repositories, error) {
	switch strings.ToLower(cfg.Database.Driver) {
	case "":
		return &Repositories{}, nil
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, fmt.Errorf("mysql connect: %w", err)
		}
		if err := mysqlp.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("mysql migrate: %w", err)
		}
		return &Repositories{
			DB:       db,
			Reports:  mysqlp.NewReportRepository(db),
			Failures: mysqlp.NewFailureRepository(db),
		}, nil
	case "postgres", "postgresql":
		db, err := pgp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, fmt.Errorf("postgres connect: %w", err)
		}
		if err := pgp.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("postgres migrate: %w", err)
		}
		return &Repositories{
			DB:       db,
			Reports:  pgp.NewReportRepository(db),
			Failures: pgp.NewFailureRepository(db),
		}, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
}

// OpenArtifactStore returns MinIO when enabled, otherwise a local directory
// store under <output dir>/published.
func OpenArtifactStore(ctx context.Context, cfg *config.Config) (inspection.ArtifactStore, error) {
	if !cfg.Minio.Enabled {
		return storage.NewLocal(filepath.Join(cfg.Output.Dir, "published"), "")
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return storage.NewMinio(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
}

// ConfigPath is CONFIG_PATH or config.yaml.
func ConfigPath(getenv func(string) string) string {
	if v := getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "config.yaml"
}
