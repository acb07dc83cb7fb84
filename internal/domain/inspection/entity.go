package inspection

import (
	"time"
)

// Severity tag enum. Urutan rank dipakai untuk top severity.
type Severity string

const (
	SeverityImmediate Severity = "IMMEDIATE"
	SeveritySoon      Severity = "SOON"
	SeverityCosmetic  Severity = "COSMETIC"
	SeverityNone      Severity = "none"
)

// Rank orders severities: IMMEDIATE > SOON > COSMETIC > none.
func (s Severity) Rank() int {
	switch s {
	case SeverityImmediate:
		return 3
	case SeveritySoon:
		return 2
	case SeverityCosmetic:
		return 1
	default:
		return 0
	}
}

// Label is the human wording used on rendered pages.
func (s Severity) Label() string {
	switch s {
	case SeverityImmediate:
		return "Immediate"
	case SeveritySoon:
		return "Soon"
	case SeverityCosmetic:
		return "Cosmetic"
	default:
		return "None"
	}
}

// FindingStatus enum
type FindingStatus string

const (
	StatusIssues      FindingStatus = "issues"
	StatusNoRepairs   FindingStatus = "no_repairs"
	StatusUnavailable FindingStatus = "unavailable"
)

// FailureReason explains an unavailable Finding.
type FailureReason string

const (
	FailureDecode      FailureReason = "decode_error"
	FailureAuth        FailureReason = "auth"
	FailureRateLimited FailureReason = "rate_limited"
	FailureTransport   FailureReason = "transport"
	FailureParse       FailureReason = "parse_error"
	FailureCancelled   FailureReason = "cancelled"
)

const (
	// NoRepairsNote is shown for the canonical sentinel.
	NoRepairsNote = "No repairs needed"
	// UnavailableNote is the fixed label of a degraded Finding.
	UnavailableNote = "No visible issues (analysis unavailable)"
)

// Photo is one source image. Immutable after ingest.
type Photo struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	ContentHash string `json:"content_hash"`
	Orientation int    `json:"orientation"`
}

// Issue is one defect entry carrying exactly one severity tag.
type Issue struct {
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Area        string   `json:"area,omitempty"`
}

// Finding is the structured result for one photo.
type Finding struct {
	Location           string        `json:"location"`
	Issues             []Issue       `json:"issues"`
	Severity           Severity      `json:"severity"`
	RecommendedActions []string      `json:"recommended_actions"`
	Status             FindingStatus `json:"status"`
	Failure            FailureReason `json:"failure,omitempty"`
	Note               string        `json:"note,omitempty"`
}

// NewIssuesFinding builds a Finding that has at least one Issue and derives
// its top severity.
func NewIssuesFinding(location string, issues []Issue, actions []string) Finding {
	top := SeverityNone
	for _, is := range issues {
		if is.Severity.Rank() > top.Rank() {
			top = is.Severity
		}
	}
	if actions == nil {
		actions = []string{}
	}
	return Finding{
		Location:           location,
		Issues:             issues,
		Severity:           top,
		RecommendedActions: actions,
		Status:             StatusIssues,
	}
}

// NoRepairsFinding is the canonical sentinel Finding: zero issues, severity none.
func NoRepairsFinding(location string) Finding {
	return Finding{
		Location:           location,
		Issues:             []Issue{},
		Severity:           SeverityNone,
		RecommendedActions: []string{},
		Status:             StatusNoRepairs,
		Note:               NoRepairsNote,
	}
}

// UnavailableFinding is the explicitly labeled fallback for a photo whose
// analysis could not be completed.
func UnavailableFinding(reason FailureReason) Finding {
	return Finding{
		Issues:             []Issue{},
		Severity:           SeverityNone,
		RecommendedActions: []string{},
		Status:             StatusUnavailable,
		Failure:            reason,
		Note:               UnavailableNote,
	}
}

// Has reports whether any issue carries the given tag.
func (f Finding) Has(s Severity) bool {
	for _, is := range f.Issues {
		if is.Severity == s {
			return true
		}
	}
	return false
}

// Entry pairs a photo with its finding. Position in Report.Entries is the page order.
type Entry struct {
	Photo   Photo   `json:"photo"`
	Finding Finding `json:"finding"`
}

// SeverityCounts value object. Total selalu = jumlah foto.
type SeverityCounts struct {
	Critical      int `json:"critical"`
	Important     int `json:"important"`
	Minor         int `json:"minor"`
	Informational int `json:"informational"`
	Total         int `json:"total"`
}

// Aggregate Root: Report
type Report struct {
	ID              string         `json:"id"`
	ClientID        string         `json:"client_id"`
	PropertyAddress string         `json:"property_address"`
	InspectedAt     time.Time      `json:"inspected_at"`
	Entries         []Entry        `json:"entries"`
	Counts          SeverityCounts `json:"counts"`
}
