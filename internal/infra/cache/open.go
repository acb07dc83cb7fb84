package cache

import (
	"fmt"
	"io"
	"strings"

	"github.com/bryanwahyu/inspekta/internal/domain/inspection"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open picks a backend by driver name: file (default), sqlite or redis.
func Open(driver, dir, path, redisAddr string) (inspection.AnalysisCache, io.Closer, error) {
	switch strings.ToLower(driver) {
	case "", "file":
		s, err := NewFileStore(dir)
		if err != nil {
			return nil, nil, err
		}
		return s, nopCloser{}, nil
	case "sqlite":
		s, err := NewSQLiteStore(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case "redis":
		s, err := NewRedisStore(redisAddr)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	}
	return nil, nil, fmt.Errorf("unknown cache driver %q", driver)
}
