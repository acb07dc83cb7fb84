package inspection

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/bryanwahyu/inspekta/internal/application"
	"github.com/bryanwahyu/inspekta/internal/application/analysis"
	domain "github.com/bryanwahyu/inspekta/internal/domain/inspection"
	"github.com/bryanwahyu/inspekta/internal/domain/photofailures"
	"github.com/bryanwahyu/inspekta/internal/domain/reports"
	"github.com/bryanwahyu/inspekta/internal/infra/ai/prompt"
	"github.com/bryanwahyu/inspekta/internal/metrics"
	"github.com/bryanwahyu/inspekta/internal/pkg/logger"
)

const (
	DefaultConcurrency  = 4
	DefaultPhotoTimeout = 3 * time.Minute
)

var ErrNoPhotos = errors.New("batch has no photos")

// Service implements the inspection use-cases: run a batch, render it,
// publish the artifacts and look up single photos afterwards.
// Artifacts, Reports and Failures are optional.
type Service struct {
	Normalizer domain.Normalizer
	Cache      domain.AnalysisCache
	Engine     *analysis.Engine
	Renderer   reports.Renderer
	Artifacts  domain.ArtifactStore
	Reports    reports.Repository
	Failures   photofailures.Repository
	Clock      application.Clock
	Metrics    *metrics.Pipeline
	Log        *logger.Logger

	// PromptSalt is appended to prompt.Version in the cache key. Empty by default.
	PromptSalt    string
	Model         string
	MaxDimension  int
	Concurrency   int
	PhotoTimeout  time.Duration
}

//
// ==== USE CASES ====
//

// RunBatchCommand untuk satu batch inspeksi
type RunBatchCommand struct {
	ReportID        string
	ClientID        string
	PropertyAddress string
	Photos          []domain.Photo
}

// Preflight detects batch-level fatal conditions before any photo is touched.
func (s *Service) Preflight(ctx context.Context) error {
	if s.Engine == nil || s.Engine.Client == nil {
		return fmt.Errorf("%w: no vision client configured", domain.ErrFatal)
	}
	if s.Cache == nil {
		return fmt.Errorf("%w: no analysis cache configured", domain.ErrFatal)
	}
	if err := s.Cache.Ping(ctx); err != nil {
		return fmt.Errorf("%w: analysis cache unreachable: %v", domain.ErrFatal, err)
	}
	return nil
}

// RunBatch analyzes every photo and returns the aggregated report with one
// entry per input photo, in input order. Per-photo problems end up as
// unavailable findings; only an empty batch is an error.
//
// Cancelling ctx stops scheduling: photos not yet started are recorded as
// cancelled, while photos already dispatched finish their model calls and
// cache writes.
func (s *Service) RunBatch(ctx context.Context, cmd RunBatchCommand) (*domain.Report, error) {
	if len(cmd.Photos) == 0 {
		return nil, ErrNoPhotos
	}
	id := cmd.ReportID
	if id == "" {
		id = uuid.New().String()
	}
	rep := &domain.Report{
		ID:              id,
		ClientID:        cmd.ClientID,
		PropertyAddress: cmd.PropertyAddress,
		InspectedAt:     s.clock().Now(),
	}
	log := s.logger().With("report", id)
	log.Info("batch started", "photos", len(cmd.Photos), "concurrency", s.concurrency())

	entries := make([]domain.Entry, len(cmd.Photos))
	var g errgroup.Group
	g.SetLimit(s.concurrency())
	for i, p := range cmd.Photos {
		if ctx.Err() != nil {
			entries[i] = s.cancelled(rep, p)
			continue
		}
		g.Go(func() error {
			entries[i] = s.processPhoto(ctx, rep, p)
			return nil
		})
	}
	_ = g.Wait()

	rep.Entries = entries
	counts := rep.Finalize()
	log.Info("batch finished",
		"critical", counts.Critical, "important", counts.Important,
		"minor", counts.Minor, "informational", counts.Informational, "total", counts.Total)
	return rep, nil
}

func (s *Service) cancelled(rep *domain.Report, p domain.Photo) domain.Entry {
	f := domain.UnavailableFinding(domain.FailureCancelled)
	s.Metrics.Fallback(string(domain.FailureCancelled))
	s.Metrics.Photo(string(f.Status), 0)
	s.recordFailure(context.Background(), rep, p, f.Failure, context.Canceled)
	return domain.Entry{Photo: p, Finding: f}
}

// Key returns the cache key of a photo under the current prompt, model and
// resize settings.
func (s *Service) Key(p domain.Photo) domain.AnalysisKey {
	return domain.AnalysisKey{
		ContentHash:   p.ContentHash,
		PromptVersion: s.promptVersion(),
		Model:         s.model(),
		MaxDimension:  s.MaxDimension,
	}
}

func (s *Service) processPhoto(ctx context.Context, rep *domain.Report, p domain.Photo) domain.Entry {
	if ctx.Err() != nil {
		return s.cancelled(rep, p)
	}
	start := time.Now()
	log := s.logger().With("report", rep.ID, "photo", p.Name)

	// sudah dispatch: jalan sampai selesai walau batch dibatalkan
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.photoTimeout())
	defer cancel()

	key := s.Key(p).String()
	f, source := s.analyzePhoto(wctx, log.With("key", key), rep, p, key)
	s.Metrics.Photo(string(f.Status), time.Since(start))
	log.Debug("photo done", "status", f.Status, "source", source, "took", time.Since(start))
	return domain.Entry{Photo: p, Finding: f}
}

func (s *Service) analyzePhoto(ctx context.Context, log *logger.Logger, rep *domain.Report, p domain.Photo, key string) (domain.Finding, string) {
	text, ok, err := s.Cache.Get(ctx, key)
	switch {
	case err != nil:
		s.Metrics.CacheLookup("error")
		log.Warn("cache read failed, treating as miss", "error", err)
	case ok:
		f, perr := domain.ParseFinding(text)
		if perr == nil {
			s.Metrics.CacheLookup("hit")
			return f, "cache"
		}
		s.Metrics.CacheLookup("error")
		log.Warn("cached entry unreadable, treating as miss", "error", perr)
	default:
		s.Metrics.CacheLookup("miss")
	}

	img, err := s.Normalizer.Normalize(ctx, p)
	if err != nil {
		log.Warn("photo could not be normalized", "error", err)
		s.Metrics.Fallback(string(domain.FailureDecode))
		s.recordFailure(ctx, rep, p, domain.FailureDecode, err)
		return domain.UnavailableFinding(domain.FailureDecode), "decode"
	}

	out := s.Engine.Analyze(ctx, img)
	if !out.Cacheable {
		log.Warn("analysis unavailable", "reason", out.Finding.Failure, "passes", out.Passes, "error", out.Err)
		s.recordFailure(ctx, rep, p, out.Finding.Failure, out.Err)
		return out.Finding, "model"
	}
	if err := s.Cache.Put(ctx, key, out.Raw); err != nil {
		log.Warn("cache write failed", "error", err)
	}
	return out.Finding, "model"
}

func (s *Service) recordFailure(ctx context.Context, rep *domain.Report, p domain.Photo, reason domain.FailureReason, cause error) {
	if s.Failures == nil {
		return
	}
	msg := string(reason)
	if cause != nil {
		msg = cause.Error()
	}
	err := s.Failures.Save(ctx, &photofailures.Failure{
		ClientID:  rep.ClientID,
		ReportID:  rep.ID,
		Photo:     p.Name,
		Phase:     phaseOf(reason),
		Message:   msg,
		CreatedAt: s.clock().Now(),
	})
	if err != nil {
		s.logger().Warn("failed to record photo failure", "photo", p.Name, "error", err)
	}
}

func phaseOf(r domain.FailureReason) string {
	switch r {
	case domain.FailureDecode:
		return "decode"
	case domain.FailureParse:
		return "parse"
	case domain.FailureCancelled:
		return "cancelled"
	}
	return "vision"
}

// Render draws the report artifacts into outDir/<reportID>.
func (s *Service) Render(rep *domain.Report, outDir string) (reports.Artifacts, error) {
	if s.Renderer == nil {
		return reports.Artifacts{}, errors.New("no renderer configured")
	}
	return s.Renderer.Render(rep, filepath.Join(outDir, rep.ID))
}

// Publish uploads the rendered artifacts under <client>/<reportID>/ and
// stores the report link for the property.
func (s *Service) Publish(ctx context.Context, rep *domain.Report, arts reports.Artifacts) (*reports.ReportRecord, error) {
	if s.Artifacts == nil {
		return nil, errors.New("no artifact store configured")
	}
	prefix := fmt.Sprintf("%s/%s", rep.ClientID, rep.ID)
	upload := func(local string) (string, string, error) {
		rel, err := filepath.Rel(arts.Dir, local)
		if err != nil {
			rel = filepath.Base(local)
		}
		key := prefix + "/" + filepath.ToSlash(rel)
		url, err := s.Artifacts.Upload(ctx, local, key)
		if err != nil {
			return "", "", fmt.Errorf("upload %s: %w", rel, err)
		}
		return key, url, nil
	}

	for _, p := range arts.PagePaths {
		if _, _, err := upload(p); err != nil {
			return nil, err
		}
	}
	_, pdfURL, err := upload(arts.PDFPath)
	if err != nil {
		return nil, err
	}
	_, htmlURL, err := upload(arts.HTMLPath)
	if err != nil {
		return nil, err
	}
	docKey, docURL, err := upload(arts.DocumentPath)
	if err != nil {
		return nil, err
	}

	rec := &reports.ReportRecord{
		ID:              rep.ID,
		ClientID:        rep.ClientID,
		PropertyAddress: rep.PropertyAddress,
		InspectedAt:     rep.InspectedAt,
		Counts:          rep.Counts,
		PDFURL:          pdfURL,
		HTMLURL:         htmlURL,
		DocumentURL:     docURL,
		DocumentKey:     docKey,
		CreatedAt:       s.clock().Now(),
	}
	if s.Reports != nil {
		if err := s.Reports.Save(ctx, rec); err != nil {
			return nil, fmt.Errorf("save report record: %w", err)
		}
	}
	s.logger().Info("report published", "report", rep.ID, "client", rep.ClientID, "pdf", pdfURL)
	return rec, nil
}

// GetReport ambil 1 report by id
func (s *Service) GetReport(ctx context.Context, client, id string) (*reports.ReportRecord, error) {
	if s.Reports == nil {
		return nil, reports.ErrNotFound
	}
	return s.Reports.Get(ctx, client, id)
}

// LatestReport returns the newest report of a property.
func (s *Service) LatestReport(ctx context.Context, client, address string) (*reports.ReportRecord, error) {
	if s.Reports == nil {
		return nil, reports.ErrNotFound
	}
	return s.Reports.LatestByProperty(ctx, client, address)
}

// LookupPhoto is the read-side lookup of one photo's page record.
func (s *Service) LookupPhoto(ctx context.Context, client, reportID, filename string) (reports.PageRecord, error) {
	rec, err := s.GetReport(ctx, client, reportID)
	if err != nil {
		return reports.PageRecord{}, err
	}
	if s.Artifacts == nil {
		return reports.PageRecord{}, errors.New("no artifact store configured")
	}
	rc, err := s.Artifacts.Open(ctx, rec.DocumentKey)
	if err != nil {
		return reports.PageRecord{}, fmt.Errorf("open report document: %w", err)
	}
	defer rc.Close()
	doc, err := reports.ReadDocument(rc)
	if err != nil {
		return reports.PageRecord{}, err
	}
	page, ok := doc.Lookup(filename)
	if !ok {
		return reports.PageRecord{}, fmt.Errorf("%w: photo %s", reports.ErrNotFound, filename)
	}
	return page, nil
}

// ListFailures lists the recorded photo failures of a report.
func (s *Service) ListFailures(ctx context.Context, client, reportID string, limit int) ([]*photofailures.Failure, error) {
	if s.Failures == nil {
		return nil, nil
	}
	return s.Failures.ListByReport(ctx, client, reportID, limit)
}

// helpers

func (s *Service) clock() application.Clock {
	if s.Clock == nil {
		return application.SystemClock{}
	}
	return s.Clock
}

func (s *Service) logger() *logger.Logger {
	if s.Log == nil {
		return logger.NewNop()
	}
	return s.Log
}

func (s *Service) model() string {
	if s.Model != "" {
		return s.Model
	}
	if s.Engine != nil && s.Engine.Client != nil {
		return s.Engine.Client.Model()
	}
	return ""
}

// promptVersion always starts with the compiled prompt version, so editing the
// prompt text and bumping prompt.Version moves every photo to a new key.
func (s *Service) promptVersion() string {
	if s.PromptSalt == "" {
		return prompt.Version
	}
	return prompt.Version + "+" + s.PromptSalt
}

func (s *Service) concurrency() int {
	if s.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return s.Concurrency
}

func (s *Service) photoTimeout() time.Duration {
	if s.PhotoTimeout <= 0 {
		return DefaultPhotoTimeout
	}
	return s.PhotoTimeout
}
