package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/inspekta/internal/domain/ai"
	"github.com/bryanwahyu/inspekta/internal/domain/inspection"
	"github.com/bryanwahyu/inspekta/internal/infra/ai/prompt"
)

type reply struct {
	text string
	err  error
}

// scriptedClient answers each call with the next scripted reply.
type scriptedClient struct {
	mu      sync.Mutex
	replies []reply
	prompts []string
}

func (c *scriptedClient) Model() string { return "test-model" }

func (c *scriptedClient) DescribeImage(_ context.Context, in ai.ImageRequest) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, in.Prompt)
	if len(c.replies) == 0 {
		return "", errors.New("unexpected call")
	}
	r := c.replies[0]
	c.replies = c.replies[1:]
	return r.text, r.err
}

var img = inspection.NormalizedImage{Bytes: []byte{1, 2, 3}, MIME: "image/jpeg"}

const wellFormed = `Location: Kitchen
Issues to Address:
- [SOON] Water stain under the sink (area: bottom)
Recommended Action:
- Have a plumber check the trap`

func TestAnalyze_FirstPassAccepted(t *testing.T) {
	c := &scriptedClient{replies: []reply{{text: wellFormed}}}
	e := &Engine{Client: c}

	out := e.Analyze(context.Background(), img)
	assert.True(t, out.Cacheable)
	assert.False(t, out.Retried)
	assert.Equal(t, 1, out.Passes)
	assert.Equal(t, inspection.SeveritySoon, out.Finding.Severity)
	assert.Equal(t, "bottom", out.Finding.Issues[0].Area)
	assert.Equal(t, wellFormed, out.Raw)
	assert.Equal(t, []string{prompt.GetUserPrompt()}, c.prompts)
}

func TestAnalyze_SentinelIsNotRetried(t *testing.T) {
	c := &scriptedClient{replies: []reply{{text: inspection.CanonicalSentinel}}}
	out := (&Engine{Client: c}).Analyze(context.Background(), img)
	assert.Equal(t, 1, out.Passes)
	assert.Equal(t, inspection.StatusNoRepairs, out.Finding.Status)
	assert.True(t, out.Cacheable)
}

// weak first answer, nudged second answer is the sentinel
func TestAnalyze_WeakFirstPassThenSentinel(t *testing.T) {
	c := &scriptedClient{replies: []reply{
		{text: "The room looks clean and well kept."},
		{text: inspection.CanonicalSentinel},
	}}
	out := (&Engine{Client: c}).Analyze(context.Background(), img)

	require.True(t, out.Retried)
	assert.Equal(t, 2, out.Passes)
	assert.Equal(t, inspection.StatusNoRepairs, out.Finding.Status)
	assert.Equal(t, inspection.SeverityNone, inspection.Bucket(out.Finding))
	assert.Equal(t, inspection.CanonicalSentinel, out.Raw)
	assert.Equal(t, []string{prompt.GetUserPrompt(), prompt.GetNudgePrompt()}, c.prompts)
}

func TestAnalyze_WeakFirstPassThenDefects(t *testing.T) {
	c := &scriptedClient{replies: []reply{
		{text: "Looks fine overall."},
		{text: wellFormed},
	}}
	out := (&Engine{Client: c}).Analyze(context.Background(), img)
	assert.True(t, out.Cacheable)
	assert.Equal(t, inspection.StatusIssues, out.Finding.Status)
}

func TestAnalyze_EmptySecondPassKeepsFirst(t *testing.T) {
	c := &scriptedClient{replies: []reply{
		{text: "Looks fine overall."},
		{text: "   "},
	}}
	out := (&Engine{Client: c}).Analyze(context.Background(), img)
	assert.Equal(t, inspection.StatusUnavailable, out.Finding.Status)
	assert.Equal(t, inspection.FailureParse, out.Finding.Failure)
	assert.Equal(t, "Looks fine overall.", out.Raw)
	assert.False(t, out.Cacheable)
}

func TestAnalyze_FailuresDegrade(t *testing.T) {
	cases := []struct {
		err  error
		want inspection.FailureReason
	}{
		{fmt.Errorf("%w: 401", ai.ErrUnauthorized), inspection.FailureAuth},
		{fmt.Errorf("%w: 429", ai.ErrQuotaExceeded), inspection.FailureRateLimited},
		{errors.New("connection reset"), inspection.FailureTransport},
		{ai.ErrEmptyResponse, inspection.FailureTransport},
	}
	for _, tc := range cases {
		c := &scriptedClient{replies: []reply{{err: tc.err}}}
		out := (&Engine{Client: c}).Analyze(context.Background(), img)
		assert.Equal(t, inspection.StatusUnavailable, out.Finding.Status)
		assert.Equal(t, tc.want, out.Finding.Failure)
		assert.Equal(t, inspection.UnavailableNote, out.Finding.Note)
		assert.False(t, out.Cacheable)
		assert.ErrorIs(t, out.Err, tc.err)
	}
}

func TestAnalyze_MalformedOutputIsNotCached(t *testing.T) {
	c := &scriptedClient{replies: []reply{{text: "Issues to Address:\n- crack in wall with no tag\nRecommended Action:\n- fix"}}}
	out := (&Engine{Client: c}).Analyze(context.Background(), img)
	assert.Equal(t, inspection.FailureParse, out.Finding.Failure)
	assert.False(t, out.Cacheable)
	assert.ErrorIs(t, out.Err, inspection.ErrUntaggedIssue)
}

func TestAnalyze_CustomDefectTermsSkipRetry(t *testing.T) {
	// "efflorescent" is not in the default list; with it configured the
	// first answer is no longer weak and goes straight to the parser
	c := &scriptedClient{replies: []reply{{text: "White efflorescent bloom on the wall."}}}
	out := (&Engine{Client: c, DefectTerms: []string{"efflorescent"}}).Analyze(context.Background(), img)
	assert.False(t, out.Retried)
	assert.Equal(t, inspection.FailureParse, out.Finding.Failure)
}

func TestReasonFor(t *testing.T) {
	assert.Equal(t, inspection.FailureCancelled, ReasonFor(context.Canceled))
	assert.Equal(t, inspection.FailureTransport, ReasonFor(context.DeadlineExceeded))
	assert.Equal(t, inspection.FailureAuth, ReasonFor(ai.ErrMissingCredentials))
	assert.Equal(t, inspection.FailureParse, ReasonFor(&inspection.ParseError{Err: inspection.ErrEmptyIssues}))
}
