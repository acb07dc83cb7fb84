// Package metrics holds the prometheus collectors for the analysis pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "inspekta"

// Pipeline groups the per-photo collectors. A nil *Pipeline is valid and
// records nothing.
type Pipeline struct {
	CacheLookups  *prometheus.CounterVec
	VisionCalls   *prometheus.CounterVec
	Fallbacks     *prometheus.CounterVec
	Photos        *prometheus.CounterVec
	PhotoDuration prometheus.Histogram
}

// NewPipeline creates and registers the collectors on reg.
func NewPipeline(reg prometheus.Registerer) *Pipeline {
	p := &Pipeline{
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Analysis cache lookups by result (hit, miss, error).",
		}, []string{"result"}),
		VisionCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vision_calls_total",
			Help:      "Vision model calls by pass (first, second).",
		}, []string{"pass"}),
		Fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Photos degraded to the unavailable finding, by reason.",
		}, []string{"reason"}),
		Photos: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "photos_total",
			Help:      "Photos processed by finding status.",
		}, []string{"status"}),
		PhotoDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "photo_duration_seconds",
			Help:      "Wall time spent per photo.",
			Buckets:   []float64{0.05, 0.25, 1, 2.5, 5, 10, 30, 60, 120},
		}),
	}
	if reg != nil {
		reg.MustRegister(p.CacheLookups, p.VisionCalls, p.Fallbacks, p.Photos, p.PhotoDuration)
	}
	return p
}

func (p *Pipeline) CacheLookup(result string) {
	if p == nil {
		return
	}
	p.CacheLookups.WithLabelValues(result).Inc()
}

func (p *Pipeline) VisionCall(pass string) {
	if p == nil {
		return
	}
	p.VisionCalls.WithLabelValues(pass).Inc()
}

func (p *Pipeline) Fallback(reason string) {
	if p == nil {
		return
	}
	p.Fallbacks.WithLabelValues(reason).Inc()
}

func (p *Pipeline) Photo(status string, d time.Duration) {
	if p == nil {
		return
	}
	p.Photos.WithLabelValues(status).Inc()
	p.PhotoDuration.Observe(d.Seconds())
}
