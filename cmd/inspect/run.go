package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/bryanwahyu/inspekta/internal/application"
	"github.com/bryanwahyu/inspekta/internal/application/analysis"
	appinspection "github.com/bryanwahyu/inspekta/internal/application/inspection"
	"github.com/bryanwahyu/inspekta/internal/bootstrap"
	"github.com/bryanwahyu/inspekta/internal/config"
	"github.com/bryanwahyu/inspekta/internal/domain/inspection"
	"github.com/bryanwahyu/inspekta/internal/domain/reports"
	"github.com/bryanwahyu/inspekta/internal/infra/ai/openai"
	"github.com/bryanwahyu/inspekta/internal/infra/cache"
	"github.com/bryanwahyu/inspekta/internal/infra/imaging"
	"github.com/bryanwahyu/inspekta/internal/infra/render"
	"github.com/bryanwahyu/inspekta/internal/metrics"
	"github.com/bryanwahyu/inspekta/internal/pkg/logger"
)

var (
	runPhotos      string
	runAddress     string
	runClient      string
	runReportID    string
	runOut         string
	runPublish     bool
	runConcurrency int
	runMetricsFile string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Analyze a batch of photos and render the report",
	Long: `Analyze every photo in a directory or .zip archive and render the report.

Examples:
  inspect run --photos ./visit-0412 --address "12 Elm St" --client acme
  inspect run --photos visit.zip --address "12 Elm St" --client acme --publish

Ctrl-C stops scheduling new photos; photos already sent to the model finish
and are cached, the rest are reported as cancelled.`,
	RunE: runBatch,
}

func init() {
	runCmd.Flags().StringVar(&runPhotos, "photos", "", "photo directory or .zip archive (required)")
	runCmd.Flags().StringVar(&runAddress, "address", "", "property address")
	runCmd.Flags().StringVar(&runClient, "client", "default", "client id")
	runCmd.Flags().StringVar(&runReportID, "report-id", "", "report id (default: random uuid)")
	runCmd.Flags().StringVarP(&runOut, "out", "o", "", "output directory (default: output.dir from config)")
	runCmd.Flags().BoolVar(&runPublish, "publish", false, "upload artifacts and store the report link")
	runCmd.Flags().IntVar(&runConcurrency, "concurrency", 0, "parallel photos (default: analysis.concurrency)")
	runCmd.Flags().StringVar(&runMetricsFile, "metrics-file", "", "write prometheus text metrics here when done")
	_ = runCmd.MarkFlagRequired("photos")
}

func runBatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config load error: %w", err)
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return err
	}
	defer log.Sync()

	if runOut == "" {
		runOut = cfg.Output.Dir
	}
	if runConcurrency > 0 {
		cfg.Analysis.Concurrency = runConcurrency
	}

	workDir, err := os.MkdirTemp("", "inspekta-photos-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(workDir)
	photos, err := imaging.Load(runPhotos, workDir)
	if err != nil {
		return fmt.Errorf("load photos: %w", err)
	}

	analysisCache, closer, err := cache.Open(cfg.Cache.Driver, cfg.Cache.Dir, cfg.Cache.Path, cfg.Cache.RedisAddr)
	if err != nil {
		return fmt.Errorf("%w: open cache: %v", inspection.ErrFatal, err)
	}
	defer closer.Close()

	client, err := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL, cfg.OpenAI.Timeout)
	if err != nil {
		return fmt.Errorf("%w: %v", inspection.ErrFatal, err)
	}

	reg := prometheus.NewRegistry()
	pipeline := metrics.NewPipeline(reg)

	renderer, err := render.NewRenderer(log.With("component", "render"))
	if err != nil {
		return err
	}

	svc := &appinspection.Service{
		Normalizer: imaging.NewNormalizer(cfg.Analysis.MaxDimension, cfg.Analysis.JPEGQuality),
		Cache:      analysisCache,
		Engine: &analysis.Engine{
			Client:      client,
			Limiter:     rate.NewLimiter(rate.Limit(float64(cfg.Analysis.RequestsPerMinute)/60), 1),
			DefectTerms: cfg.Analysis.DefectTerms,
			Metrics:     pipeline,
			Log:         log.With("component", "engine"),
		},
		Renderer:      renderer,
		Clock:         application.SystemClock{},
		Metrics:       pipeline,
		Log:           log.With("component", "batch"),
		PromptSalt:    cfg.Analysis.PromptSalt,
		MaxDimension:  cfg.Analysis.MaxDimension,
		Concurrency:   cfg.Analysis.Concurrency,
		PhotoTimeout:  cfg.Analysis.PhotoTimeout,
	}

	if runPublish {
		repos, err := bootstrap.OpenRepositories(ctx, cfg)
		if err != nil {
			return fmt.Errorf("%w: %v", inspection.ErrFatal, err)
		}
		defer repos.Close()
		store, err := bootstrap.OpenArtifactStore(ctx, cfg)
		if err != nil {
			return fmt.Errorf("%w: artifact store: %v", inspection.ErrFatal, err)
		}
		svc.Artifacts = store
		svc.Reports = repos.Reports
		svc.Failures = repos.Failures
	}

	if err := svc.Preflight(ctx); err != nil {
		return err
	}

	rep, err := svc.RunBatch(ctx, appinspection.RunBatchCommand{
		ReportID:        runReportID,
		ClientID:        runClient,
		PropertyAddress: runAddress,
		Photos:          photos,
	})
	if err != nil {
		return err
	}
	arts, err := svc.Render(rep, runOut)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	var rec *reports.ReportRecord
	if runPublish {
		// publish juga kalau batch dibatalkan: report parsial tetap valid
		if rec, err = svc.Publish(context.WithoutCancel(ctx), rep, arts); err != nil {
			return fmt.Errorf("publish: %w", err)
		}
	}

	printSummary(cmd.OutOrStdout(), rep, arts, rec)

	if runMetricsFile != "" {
		if err := prometheus.WriteToTextfile(runMetricsFile, reg); err != nil {
			log.Warn("failed to write metrics file", "path", runMetricsFile, "error", err)
		}
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return errors.New("batch cancelled: unscheduled photos are marked cancelled in the report")
	}
	return nil
}

func printSummary(w io.Writer, rep *inspection.Report, arts reports.Artifacts, rec *reports.ReportRecord) {
	c := rep.Counts
	fmt.Fprintf(w, "Report %s (%d photos)\n", rep.ID, c.Total)
	fmt.Fprintf(w, "  Critical:      %d\n", c.Critical)
	fmt.Fprintf(w, "  Important:     %d\n", c.Important)
	fmt.Fprintf(w, "  Minor:         %d\n", c.Minor)
	fmt.Fprintf(w, "  Informational: %d\n", c.Informational)

	unavailable := 0
	for _, e := range rep.Entries {
		if e.Finding.Status == inspection.StatusUnavailable {
			unavailable++
		}
	}
	if unavailable > 0 {
		fmt.Fprintf(w, "  (%d photo(s) could not be analyzed)\n", unavailable)
	}

	fmt.Fprintf(w, "PDF:      %s\n", arts.PDFPath)
	fmt.Fprintf(w, "HTML:     %s\n", arts.HTMLPath)
	fmt.Fprintf(w, "Document: %s\n", arts.DocumentPath)
	if rec != nil {
		fmt.Fprintf(w, "Published: %s\n", rec.PDFURL)
	}
}
