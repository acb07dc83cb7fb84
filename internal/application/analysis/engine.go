package analysis

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/time/rate"

	"github.com/bryanwahyu/inspekta/internal/domain/ai"
	"github.com/bryanwahyu/inspekta/internal/domain/inspection"
	"github.com/bryanwahyu/inspekta/internal/infra/ai/prompt"
	"github.com/bryanwahyu/inspekta/internal/metrics"
	"github.com/bryanwahyu/inspekta/internal/pkg/logger"
)

// Pass labels one vision call.
type Pass string

const (
	PassFirst  Pass = "first"
	PassSecond Pass = "second"
)

// Outcome is what one photo's analysis produced. Only Cacheable outcomes carry
// a Raw text that may be stored under the AnalysisKey.
type Outcome struct {
	Finding   inspection.Finding
	Raw       string
	Passes    int
	Retried   bool
	Cacheable bool
	Err       error
}

// Engine runs the two-pass vision analysis for one normalized image.
// Safe for concurrent use once configured.
type Engine struct {
	Client      ai.VisionClient
	Limiter     *rate.Limiter
	DefectTerms []string
	Metrics     *metrics.Pipeline
	Log         *logger.Logger
}

func (e *Engine) terms() []string {
	if len(e.DefectTerms) == 0 {
		return inspection.DefaultDefectTerms
	}
	return e.DefectTerms
}

// Analyze never returns an error: every failure is folded into an
// unavailable Finding with its reason, and such outcomes are not cacheable.
func (e *Engine) Analyze(ctx context.Context, img inspection.NormalizedImage) Outcome {
	raw, err := e.call(ctx, PassFirst, img, prompt.GetUserPrompt())
	if err != nil {
		return e.degrade(ReasonFor(err), 1, false, err)
	}
	out := Outcome{Passes: 1}

	if inspection.IsWeak(raw, e.terms()) {
		out.Retried = true
		out.Passes = 2
		second, err := e.call(ctx, PassSecond, img, prompt.GetNudgePrompt())
		if err != nil {
			return e.degrade(ReasonFor(err), 2, true, err)
		}
		// respon kosong di pass kedua: tetap pakai jawaban pertama
		if strings.TrimSpace(second) != "" {
			raw = second
		}
	}

	f, err := inspection.ParseFinding(raw)
	if err != nil {
		e.logger().Warn("model output rejected", "passes", out.Passes, "error", err)
		o := e.degrade(inspection.FailureParse, out.Passes, out.Retried, err)
		o.Raw = raw
		o.Cacheable = false
		return o
	}
	out.Finding = f
	out.Raw = raw
	out.Cacheable = true
	return out
}

func (e *Engine) call(ctx context.Context, pass Pass, img inspection.NormalizedImage, userPrompt string) (string, error) {
	if e.Limiter != nil {
		if err := e.Limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	e.Metrics.VisionCall(string(pass))
	return e.Client.DescribeImage(ctx, ai.ImageRequest{
		System:    prompt.GetSystemPrompt(),
		Prompt:    userPrompt,
		Image:     img.Bytes,
		ImageMIME: img.MIME,
	})
}

func (e *Engine) degrade(reason inspection.FailureReason, passes int, retried bool, err error) Outcome {
	e.Metrics.Fallback(string(reason))
	return Outcome{
		Finding: inspection.UnavailableFinding(reason),
		Passes:  passes,
		Retried: retried,
		Err:     err,
	}
}

func (e *Engine) logger() *logger.Logger {
	if e.Log == nil {
		return logger.NewNop()
	}
	return e.Log
}

// ReasonFor maps a vision or parse error onto the failure reason recorded on
// the unavailable Finding.
func ReasonFor(err error) inspection.FailureReason {
	switch {
	case errors.Is(err, ai.ErrUnauthorized), errors.Is(err, ai.ErrMissingCredentials):
		return inspection.FailureAuth
	case errors.Is(err, ai.ErrQuotaExceeded):
		return inspection.FailureRateLimited
	case errors.Is(err, inspection.ErrMalformedFinding):
		return inspection.FailureParse
	case errors.Is(err, context.Canceled):
		return inspection.FailureCancelled
	default:
		return inspection.FailureTransport
	}
}
