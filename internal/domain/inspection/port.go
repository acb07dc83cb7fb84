package inspection

import (
	"context"
	"errors"
	"io"
)

// ErrFatal marks batch-level failures detected before any photo is processed.
var ErrFatal = errors.New("inspection: fatal")

// NormalizedImage is the transient, downsized copy sent to the vision model.
type NormalizedImage struct {
	Bytes []byte
	MIME  string
}

// Normalizer port (decode, orient, downsample, re-encode)
type Normalizer interface {
	Normalize(ctx context.Context, p Photo) (NormalizedImage, error)
}

// AnalysisCache port: AnalysisKey string -> raw model output.
type AnalysisCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, text string) error
	Ping(ctx context.Context) error
}

// ArtifactStore port (interface untuk penyimpanan artefak report)
type ArtifactStore interface {
	Upload(ctx context.Context, localPath, key string) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}
