package inspection

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func issuesFinding(sevs ...Severity) Finding {
	var issues []Issue
	for _, s := range sevs {
		issues = append(issues, Issue{Description: "defect", Severity: s})
	}
	return NewIssuesFinding("room", issues, []string{"fix it"})
}

func TestAggregate_ScenarioA(t *testing.T) {
	entries := []Entry{
		{Photo: Photo{Name: "1.jpg"}, Finding: issuesFinding(SeverityImmediate)},
		{Photo: Photo{Name: "2.jpg"}, Finding: issuesFinding(SeverityCosmetic)},
		{Photo: Photo{Name: "3.jpg"}, Finding: NoRepairsFinding("")},
	}
	assert.Equal(t, SeverityCounts{Critical: 1, Important: 0, Minor: 1, Informational: 1, Total: 3}, Aggregate(entries))
}

func TestAggregate_HighestSeverityWinsOncePerPhoto(t *testing.T) {
	entries := []Entry{
		{Finding: issuesFinding(SeverityImmediate, SeverityImmediate, SeveritySoon, SeverityCosmetic)},
		{Finding: issuesFinding(SeverityCosmetic, SeveritySoon)},
	}
	c := Aggregate(entries)
	assert.Equal(t, 1, c.Critical)
	assert.Equal(t, 1, c.Important)
	assert.Equal(t, 0, c.Minor)
	assert.Equal(t, 0, c.Informational)
}

func TestAggregate_UnavailableCountsAsInformational(t *testing.T) {
	c := Aggregate([]Entry{{Finding: UnavailableFinding(FailureAuth)}})
	assert.Equal(t, SeverityCounts{Informational: 1, Total: 1}, c)
}

func TestAggregate_BucketsSumToPhotoCount(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	all := []Severity{SeverityImmediate, SeveritySoon, SeverityCosmetic}
	for round := 0; round < 200; round++ {
		n := rng.Intn(30)
		entries := make([]Entry, n)
		critical := 0
		for i := range entries {
			switch rng.Intn(4) {
			case 0:
				entries[i].Finding = NoRepairsFinding("")
			case 1:
				entries[i].Finding = UnavailableFinding(FailureParse)
			default:
				var sevs []Severity
				for k := 0; k <= rng.Intn(4); k++ {
					sevs = append(sevs, all[rng.Intn(len(all))])
				}
				entries[i].Finding = issuesFinding(sevs...)
				if entries[i].Finding.Has(SeverityImmediate) {
					critical++
				}
			}
		}
		c := Aggregate(entries)
		assert.Equal(t, n, c.Critical+c.Important+c.Minor+c.Informational)
		assert.Equal(t, n, c.Total)
		assert.Equal(t, critical, c.Critical)
	}
}

func TestReportFinalize(t *testing.T) {
	r := &Report{Entries: []Entry{{Finding: issuesFinding(SeveritySoon)}}}
	c := r.Finalize()
	assert.Equal(t, c, r.Counts)
	assert.Equal(t, 1, r.Counts.Important)
}

func TestNewIssuesFinding_DerivesTopSeverity(t *testing.T) {
	f := issuesFinding(SeverityCosmetic, SeveritySoon)
	assert.Equal(t, SeveritySoon, f.Severity)
	assert.Equal(t, StatusIssues, f.Status)
}
