package inspection

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wellFormed = `Location: Kitchen, under the sink
Issues to Address:
- [IMMEDIATE] Active leak at the supply line fitting (area: lower left)
- [COSMETIC] Scuffed cabinet floor panel
Recommended Action:
- Have a licensed plumber replace the compression fitting
- Dry and refinish the cabinet floor`

func TestParseFinding_WellFormed(t *testing.T) {
	f, err := ParseFinding(wellFormed)
	require.NoError(t, err)

	assert.Equal(t, "Kitchen, under the sink", f.Location)
	assert.Equal(t, StatusIssues, f.Status)
	assert.Equal(t, SeverityImmediate, f.Severity)
	require.Len(t, f.Issues, 2)
	assert.Equal(t, Issue{Description: "Active leak at the supply line fitting", Severity: SeverityImmediate, Area: "lower left"}, f.Issues[0])
	assert.Equal(t, Issue{Description: "Scuffed cabinet floor panel", Severity: SeverityCosmetic}, f.Issues[1])
	assert.Equal(t, []string{
		"Have a licensed plumber replace the compression fitting",
		"Dry and refinish the cabinet floor",
	}, f.RecommendedActions)
}

func TestParseFinding_MarkdownDecorations(t *testing.T) {
	raw := "```\n**Location:** Attic\n### Issues to Address\n* **[SOON]** Daylight visible at roof deck seam\n  continuing along the ridge\n## Recommended Action:\n1. Have a roofer reseal the ridge\n```"
	f, err := ParseFinding(raw)
	require.NoError(t, err)
	assert.Equal(t, "Attic", f.Location)
	require.Len(t, f.Issues, 1)
	assert.Equal(t, "Daylight visible at roof deck seam continuing along the ridge", f.Issues[0].Description)
	assert.Equal(t, SeveritySoon, f.Severity)
	assert.Equal(t, []string{"Have a roofer reseal the ridge"}, f.RecommendedActions)
}

func TestParseFinding_TagSynonymsAndTrailingTag(t *testing.T) {
	raw := "Issues to Address:\n- Exposed wiring at junction box [critical]\n- Hairline drywall crack [minor]\nRecommended Action: Call an electrician"
	f, err := ParseFinding(raw)
	require.NoError(t, err)
	require.Len(t, f.Issues, 2)
	assert.Equal(t, SeverityImmediate, f.Issues[0].Severity)
	assert.Equal(t, "Exposed wiring at junction box", f.Issues[0].Description)
	assert.Equal(t, SeverityCosmetic, f.Issues[1].Severity)
	assert.Equal(t, []string{"Call an electrician"}, f.RecommendedActions)
}

func TestParseFinding_Sentinel(t *testing.T) {
	for _, raw := range []string{
		CanonicalSentinel,
		"no repairs needed",
		"**No repairs needed.**",
		"Location: Hallway\nNo repairs needed.",
	} {
		f, err := ParseFinding(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, StatusNoRepairs, f.Status, raw)
		assert.Empty(t, f.Issues)
		assert.NotNil(t, f.Issues)
		assert.Equal(t, SeverityNone, f.Severity)
	}
}

func TestParseFinding_NoneBulletIsSentinelEquivalent(t *testing.T) {
	f, err := ParseFinding("Location: Garage\nIssues to Address:\n- None\nRecommended Action:\n- None")
	require.NoError(t, err)
	assert.Equal(t, StatusNoRepairs, f.Status)
	assert.Equal(t, "Garage", f.Location)
}

func TestParseFinding_Errors(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want error
	}{
		{"empty", "   \n\n", ErrEmptyOutput},
		{"prose only", "The room looks fine overall.", ErrMissingIssuesSection},
		{"untagged bullet", "Issues to Address:\n- Cracked tile\nRecommended Action:\n- Replace", ErrUntaggedIssue},
		{"two tags", "Issues to Address:\n- [SOON] [COSMETIC] Worn grout\nRecommended Action:\n- Regrout", ErrAmbiguousSeverity},
		{"repeated tag", "Issues to Address:\n- [SOON] Worn grout [SOON]\nRecommended Action:\n- Regrout", ErrAmbiguousSeverity},
		{"tag only", "Issues to Address:\n- [SOON]\nRecommended Action:\n- Regrout", ErrEmptyDescription},
		{"no actions", "Issues to Address:\n- [SOON] Worn grout", ErrMissingActionSection},
		{"empty issues", "Issues to Address:\nRecommended Action:\n- Nothing", ErrEmptyIssues},
		{"unknown tag", "Issues to Address:\n- [HIGH] Loose railing\nRecommended Action:\n- Fix", ErrUntaggedIssue},
		{"untagged plain line", "Issues to Address:\n- [COSMETIC] Scuffed paint on the door\nCracked foundation wall with water seeping in\nRecommended Action:\n- Call a structural engineer", ErrUntaggedIssue},
		{"plain line first", "Issues to Address:\nSagging ceiling joist\n- [SOON] Loose handrail\nRecommended Action:\n- Fix", ErrUntaggedIssue},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseFinding(tc.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			assert.ErrorIs(t, err, ErrMalformedFinding)
			var pe *ParseError
			assert.True(t, errors.As(err, &pe))
		})
	}
}

func TestParseError_ReportsLine(t *testing.T) {
	_, err := ParseFinding("Location: Deck\nIssues to Address:\n- [SOON] Loose board\n- Rotten joist\nRecommended Action:\n- Fix")
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 4, pe.Line)
	assert.Contains(t, pe.Error(), "Rotten joist")
}

// Arbitrary bullet/tag combinations: a parse either fails with a typed error
// or yields a Finding where every issue carries exactly one known severity.
func TestParseFinding_RandomBulletTagCombinations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	bullets := []string{"- ", "* ", "• ", "1. ", "2) ", "", "  - ", "-"}
	tags := []string{"[IMMEDIATE]", "[SOON]", "[COSMETIC]", "[urgent]", "[Minor]", "[HIGH]", "[]", "[IMMEDIATE", "IMMEDIATE]", ""}
	texts := []string{"Cracked foundation wall", "Peeling paint", "", "(area: top right)", "None", "Loose handrail (area: center)"}

	for i := 0; i < 2000; i++ {
		var b strings.Builder
		if rng.Intn(3) > 0 {
			b.WriteString("Location: Room " + fmt.Sprint(i) + "\n")
		}
		if rng.Intn(8) > 0 {
			b.WriteString("Issues to Address:\n")
		}
		n := rng.Intn(4)
		for j := 0; j < n; j++ {
			tag1 := tags[rng.Intn(len(tags))]
			tag2 := ""
			if rng.Intn(5) == 0 {
				tag2 = tags[rng.Intn(len(tags))]
			}
			b.WriteString(bullets[rng.Intn(len(bullets))] + tag1 + " " + texts[rng.Intn(len(texts))] + " " + tag2 + "\n")
		}
		if rng.Intn(6) > 0 {
			b.WriteString("Recommended Action:\n- Consult a contractor\n")
		}
		raw := b.String()

		f, err := ParseFinding(raw)
		if err != nil {
			assert.ErrorIs(t, err, ErrMalformedFinding, raw)
			continue
		}
		switch f.Status {
		case StatusNoRepairs:
			assert.Empty(t, f.Issues, raw)
			assert.Equal(t, SeverityNone, f.Severity, raw)
		case StatusIssues:
			require.NotEmpty(t, f.Issues, raw)
			for _, is := range f.Issues {
				assert.Contains(t, []Severity{SeverityImmediate, SeveritySoon, SeverityCosmetic}, is.Severity, raw)
				assert.NotEmpty(t, is.Description, raw)
			}
			assert.Equal(t, maxSeverity(f.Issues), f.Severity, raw)
		default:
			t.Fatalf("unexpected status %q for %q", f.Status, raw)
		}
	}
}

// A flush-left line without a bullet or tag is never folded into its
// neighbour, wherever it lands among well-formed bullets.
func TestParseFinding_RandomPlainLineIsUntagged(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tagged := []string{"- [IMMEDIATE] Exposed wiring", "* [SOON] Loose handrail", "1. [COSMETIC] Scuffed skirting", "- Worn carpet [MINOR]"}
	plain := []string{"Cracked foundation wall", "Water pooling under the sink", "Missing smoke detector (area: hallway)"}

	for i := 0; i < 500; i++ {
		lines := make([]string, 1+rng.Intn(4))
		for j := range lines {
			lines[j] = tagged[rng.Intn(len(tagged))]
		}
		at := rng.Intn(len(lines) + 1)
		lines = append(lines[:at], append([]string{plain[rng.Intn(len(plain))]}, lines[at:]...)...)
		raw := "Location: Basement\nIssues to Address:\n" + strings.Join(lines, "\n") + "\nRecommended Action:\n- Repair"

		_, err := ParseFinding(raw)
		require.Error(t, err, raw)
		assert.ErrorIs(t, err, ErrUntaggedIssue, raw)
		var pe *ParseError
		require.True(t, errors.As(err, &pe), raw)
		assert.Equal(t, at+3, pe.Line, raw)
	}
}

func TestParseFinding_IndentedLineContinuesIssue(t *testing.T) {
	f, err := ParseFinding("Issues to Address:\n- [SOON] Gap under the door\n  letting in drafts\nRecommended Action:\n- Fit a sweep")
	require.NoError(t, err)
	require.Len(t, f.Issues, 1)
	assert.Equal(t, "Gap under the door letting in drafts", f.Issues[0].Description)
}

func maxSeverity(issues []Issue) Severity {
	top := SeverityNone
	for _, is := range issues {
		if is.Severity.Rank() > top.Rank() {
			top = is.Severity
		}
	}
	return top
}

func TestIsWeak(t *testing.T) {
	cases := []struct {
		raw  string
		weak bool
	}{
		{"This is a photo of a living room with a sofa.", true},
		{"", true},
		{CanonicalSentinel, false},
		{"Location: Bath\nNo repairs needed.", false},
		{"The ceiling shows a water stain near the vent.", false},
		{"Issues to Address:\n- [SOON] Something", false},
		{"Looks good. [COSMETIC] mention", false},
		{"Nice bright room, freshly painted walls.", true},
		{"A well-kept living room you can trust.", true},
		{"Stainless steel appliances and tidy counters.", true},
		{"Tripod floor lamp beside the window.", true},
		{"Rusted hinge on the side gate.", false},
		{"Early deterioration along the window sill.", false},
		{"The deck boards are buckling near the steps.", false},
		{"Exposed wiring behind the cover plate.", false},
		{"Some WATER   INTRUSION at the threshold.", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.weak, IsWeak(tc.raw, DefaultDefectTerms), tc.raw)
	}
}

func TestIsWeak_CustomTerms(t *testing.T) {
	raw := "Some efflorescence on the block wall."
	assert.False(t, IsWeak(raw, DefaultDefectTerms))
	assert.True(t, IsWeak(raw, []string{"leak"}))
	assert.False(t, IsWeak(raw, []string{"  EFFLORESCENCE "}))
	assert.True(t, IsWeak(raw, []string{"lock"}), "term inside a longer word")
	assert.True(t, IsWeak(raw, []string{" ", ""}))
}

func TestSeverityFromTag(t *testing.T) {
	s, ok := SeverityFromTag(" urgent ")
	assert.True(t, ok)
	assert.Equal(t, SeverityImmediate, s)
	_, ok = SeverityFromTag("note")
	assert.False(t, ok)
}
