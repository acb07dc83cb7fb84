package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPipeline_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPipeline(reg)

	p.CacheLookup("hit")
	p.CacheLookup("hit")
	p.CacheLookup("miss")
	p.VisionCall("first")
	p.Fallback("auth")
	p.Photo("issues", 2*time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(p.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.CacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.VisionCalls.WithLabelValues("first")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.Fallbacks.WithLabelValues("auth")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.Photos.WithLabelValues("issues")))

	n, err := testutil.GatherAndCount(reg, "inspekta_cache_lookups_total")
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestPipeline_NilIsNoop(t *testing.T) {
	var p *Pipeline
	assert.NotPanics(t, func() {
		p.CacheLookup("hit")
		p.VisionCall("first")
		p.Fallback("auth")
		p.Photo("issues", time.Second)
	})
}
