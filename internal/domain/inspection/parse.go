package inspection

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// CanonicalSentinel is the single line the model emits when a photo shows
// nothing that needs attention.
const CanonicalSentinel = "No repairs needed."

var (
	ErrMalformedFinding     = errors.New("malformed finding")
	ErrEmptyOutput          = fmt.Errorf("%w: empty model output", ErrMalformedFinding)
	ErrMissingIssuesSection = fmt.Errorf("%w: missing issues section", ErrMalformedFinding)
	ErrMissingActionSection = fmt.Errorf("%w: missing recommended action section", ErrMalformedFinding)
	ErrEmptyIssues          = fmt.Errorf("%w: issues section has no entries", ErrMalformedFinding)
	ErrUntaggedIssue        = fmt.Errorf("%w: issue without severity tag", ErrMalformedFinding)
	ErrAmbiguousSeverity    = fmt.Errorf("%w: issue with more than one severity tag", ErrMalformedFinding)
	ErrEmptyDescription     = fmt.Errorf("%w: issue without description", ErrMalformedFinding)
)

// ParseError points at the offending line of the model output (1-based, 0 when
// the problem is not tied to one line).
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// DefaultDefectTerms is the vocabulary that marks a first-pass response as
// describing a defect. A term matches at the start of a word and may carry a
// common inflection, so "rust" hits "rusted" but never "trust".
var DefaultDefectTerms = []string{
	"crack", "leak", "damage", "rotted", "rotten", "wood rot", "mold", "mould", "mildew", "stain",
	"corrosion", "corroded", "rust", "missing", "loose", "broken", "worn",
	"peeling", "gap", "sagging", "moisture", "water intrusion", "deteriorat",
	"hazard", "exposed wir", "frayed", "improper", "defect", "repair", "replace",
	"settlement", "efflorescence", "trip", "spalling", "buckl", "warp",
}

var (
	tagRe      = regexp.MustCompile(`\[([A-Za-z][A-Za-z _-]*)\]`)
	areaRe     = regexp.MustCompile(`(?i)\(\s*(?:area|where|region)\s*:\s*([^)]*)\)`)
	numberedRe = regexp.MustCompile(`^\d+[.)]\s+`)
	spaceRe    = regexp.MustCompile(`\s+`)
)

var tagSynonyms = map[string]Severity{
	"IMMEDIATE": SeverityImmediate,
	"URGENT":    SeverityImmediate,
	"CRITICAL":  SeverityImmediate,
	"SAFETY":    SeverityImmediate,
	"SOON":      SeveritySoon,
	"IMPORTANT": SeveritySoon,
	"MODERATE":  SeveritySoon,
	"COSMETIC":  SeverityCosmetic,
	"MINOR":     SeverityCosmetic,
	"LOW":       SeverityCosmetic,
}

var nonePhrases = map[string]bool{
	"none":               true,
	"n/a":                true,
	"no issues":          true,
	"no issues found":    true,
	"no issues observed": true,
	"nothing to address": true,
	"no repairs needed":  true,
}

// SeverityFromTag maps a bracket tag body to a severity. ok is false for
// bracketed text that is not a severity tag.
func SeverityFromTag(tag string) (Severity, bool) {
	s, ok := tagSynonyms[strings.ToUpper(strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(tag)))]
	return s, ok
}

type section int

const (
	sectionPreamble section = iota
	sectionIssues
	sectionActions
)

type line struct {
	num      int
	raw      string
	text     string // cleaned
	indented bool
}

func splitLines(raw string) []line {
	var out []line
	for i, r := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		t := cleanLine(r)
		if t == "" || strings.HasPrefix(t, "```") {
			continue
		}
		indented := len(r) > 0 && (r[0] == ' ' || r[0] == '\t')
		out = append(out, line{num: i + 1, raw: r, text: t, indented: indented})
	}
	return out
}

// cleanLine strips markdown heading marks and emphasis around a line.
func cleanLine(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "#")
	s = strings.TrimSpace(s)
	for _, m := range []string{"**", "__"} {
		s = strings.ReplaceAll(s, m, "")
	}
	return strings.TrimSpace(s)
}

func normalizePhrase(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimRight(s, ".!:; ")
	return spaceRe.ReplaceAllString(s, " ")
}

// header recognises a section header and returns inline content after the colon.
func header(text string) (section, string, bool) {
	lower := strings.ToLower(text)
	for _, h := range []struct {
		prefix string
		sec    section
	}{
		{"issues to address", sectionIssues},
		{"recommended actions", sectionActions},
		{"recommended action", sectionActions},
	} {
		if strings.HasPrefix(lower, h.prefix) {
			rest := strings.TrimSpace(text[len(h.prefix):])
			rest = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
			return h.sec, rest, true
		}
	}
	return sectionPreamble, "", false
}

func locationValue(text string) (string, bool) {
	if len(text) < len("location:") || !strings.EqualFold(text[:len("location:")], "location:") {
		return "", false
	}
	return strings.TrimSpace(text[len("location:"):]), true
}

func bulletBody(text string) (string, bool) {
	for _, p := range []string{"- ", "* ", "• ", "– ", "— "} {
		if strings.HasPrefix(text, p) {
			return strings.TrimSpace(text[len(p):]), true
		}
	}
	if loc := numberedRe.FindStringIndex(text); loc != nil {
		return strings.TrimSpace(text[loc[1]:]), true
	}
	return text, false
}

// IsSentinel reports whether raw is exactly the canonical "no repairs needed"
// answer, optionally preceded by a location line.
func IsSentinel(raw string) bool {
	var rest []string
	for _, l := range splitLines(raw) {
		if _, ok := locationValue(l.text); ok {
			continue
		}
		rest = append(rest, l.text)
	}
	return len(rest) == 1 && normalizePhrase(rest[0]) == normalizePhrase(CanonicalSentinel)
}

// HasIssuesSection reports whether raw contains an "Issues to Address" header.
func HasIssuesSection(raw string) bool {
	for _, l := range splitLines(raw) {
		if sec, _, ok := header(l.text); ok && sec == sectionIssues {
			return true
		}
	}
	return false
}

// ContainsDefectTerm reports whether raw mentions any term (or a severity tag).
func ContainsDefectTerm(raw string, terms []string) bool {
	if re := defectTermRe(terms); re != nil && re.MatchString(raw) {
		return true
	}
	for _, m := range tagRe.FindAllStringSubmatch(raw, -1) {
		if _, ok := SeverityFromTag(m[1]); ok {
			return true
		}
	}
	return false
}

// inflections lets stems like "deteriorat" or "buckl" reach their full words.
const inflections = `(?:s|es|e|d|ed|n|ing|y|ly|ion|ions|ive|ous|age|ment|ments|ped|ping|ged|ging|ted|ting)?`

var defaultTermRe = compileDefectTerms(DefaultDefectTerms)

func defectTermRe(terms []string) *regexp.Regexp {
	if slices.Equal(terms, DefaultDefectTerms) {
		return defaultTermRe
	}
	return compileDefectTerms(terms)
}

// compileDefectTerms returns nil when terms holds nothing but blanks.
func compileDefectTerms(terms []string) *regexp.Regexp {
	alts := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.Join(strings.Fields(strings.ToLower(t)), " ")
		if t == "" {
			continue
		}
		alts = append(alts, strings.ReplaceAll(regexp.QuoteMeta(t), " ", `\s+`))
	}
	if len(alts) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(alts, "|") + `)` + inflections + `\b`)
}

// IsWeak classifies a first-pass response that looks suspiciously clean: no
// issues section, no defect vocabulary, and not the canonical sentinel.
func IsWeak(raw string, terms []string) bool {
	if IsSentinel(raw) {
		return false
	}
	return !HasIssuesSection(raw) && !ContainsDefectTerm(raw, terms)
}

// ParseFinding turns the model's two-section text into a Finding. Any
// deviation from the format is returned as a *ParseError wrapping one of the
// ErrMalformedFinding errors; nothing is guessed.
func ParseFinding(raw string) (Finding, error) {
	lines := splitLines(raw)
	if len(lines) == 0 {
		return Finding{}, &ParseError{Err: ErrEmptyOutput}
	}

	var (
		location    string
		sec         = sectionPreamble
		sawIssues   bool
		sawActions  bool
		sawNone     bool
		issues      []Issue
		actions     []string
		lastIsIssue bool
	)

	for _, l := range lines {
		if s, inline, ok := header(l.text); ok {
			sec = s
			lastIsIssue = false
			switch s {
			case sectionIssues:
				sawIssues = true
				if inline != "" {
					if nonePhrases[normalizePhrase(inline)] {
						sawNone = true
					} else {
						is, err := parseIssue(l, inline)
						if err != nil {
							return Finding{}, err
						}
						issues = append(issues, is)
						lastIsIssue = true
					}
				}
			case sectionActions:
				sawActions = true
				if inline != "" {
					actions = append(actions, inline)
				}
			}
			continue
		}

		switch sec {
		case sectionPreamble:
			if v, ok := locationValue(l.text); ok && location == "" {
				location = v
			}

		case sectionIssues:
			body, bullet := bulletBody(l.text)
			if nonePhrases[normalizePhrase(body)] {
				sawNone = true
				lastIsIssue = false
				continue
			}
			// an indented untagged line continues the previous bullet; any
			// other untagged line is an issue without a severity
			if !bullet && !hasTag(body) && l.indented && lastIsIssue && len(issues) > 0 {
				issues[len(issues)-1].Description += " " + body
				continue
			}
			is, err := parseIssue(l, body)
			if err != nil {
				return Finding{}, err
			}
			issues = append(issues, is)
			lastIsIssue = true

		case sectionActions:
			body, bullet := bulletBody(l.text)
			if !bullet && l.indented && len(actions) > 0 {
				actions[len(actions)-1] += " " + body
				continue
			}
			if body != "" {
				actions = append(actions, body)
			}
		}
	}

	if !sawIssues {
		if IsSentinel(raw) {
			return NoRepairsFinding(location), nil
		}
		return Finding{}, &ParseError{Err: ErrMissingIssuesSection}
	}
	if len(issues) == 0 {
		if sawNone {
			return NoRepairsFinding(location), nil
		}
		return Finding{}, &ParseError{Err: ErrEmptyIssues}
	}
	if !sawActions {
		return Finding{}, &ParseError{Err: ErrMissingActionSection}
	}
	return NewIssuesFinding(location, issues, actions), nil
}

func hasTag(s string) bool {
	for _, m := range tagRe.FindAllStringSubmatch(s, -1) {
		if _, ok := SeverityFromTag(m[1]); ok {
			return true
		}
	}
	return false
}

func parseIssue(l line, body string) (Issue, error) {
	var (
		sev   Severity
		count int
	)
	desc := tagRe.ReplaceAllStringFunc(body, func(m string) string {
		s, ok := SeverityFromTag(m[1 : len(m)-1])
		if !ok {
			return m
		}
		count++
		sev = s
		return " "
	})
	switch {
	case count == 0:
		return Issue{}, &ParseError{Line: l.num, Text: l.raw, Err: ErrUntaggedIssue}
	case count > 1:
		return Issue{}, &ParseError{Line: l.num, Text: l.raw, Err: ErrAmbiguousSeverity}
	}

	var area string
	if m := areaRe.FindStringSubmatch(desc); m != nil {
		area = strings.ToLower(strings.TrimSpace(m[1]))
		desc = areaRe.ReplaceAllString(desc, " ")
	}
	desc = spaceRe.ReplaceAllString(desc, " ")
	desc = strings.Trim(desc, " :-–—")
	if desc == "" {
		return Issue{}, &ParseError{Line: l.num, Text: l.raw, Err: ErrEmptyDescription}
	}
	return Issue{Description: desc, Severity: sev, Area: area}, nil
}
