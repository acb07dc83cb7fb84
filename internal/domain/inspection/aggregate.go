package inspection

// Bucket returns the single severity bucket a finding contributes to: the
// highest tag present, or informational when there are no issues.
func Bucket(f Finding) Severity {
	switch {
	case f.Has(SeverityImmediate):
		return SeverityImmediate
	case f.Has(SeveritySoon):
		return SeveritySoon
	case f.Has(SeverityCosmetic):
		return SeverityCosmetic
	default:
		return SeverityNone
	}
}

// Aggregate counts one bucket per photo, so Total always equals len(entries).
func Aggregate(entries []Entry) SeverityCounts {
	var c SeverityCounts
	for _, e := range entries {
		switch Bucket(e.Finding) {
		case SeverityImmediate:
			c.Critical++
		case SeveritySoon:
			c.Important++
		case SeverityCosmetic:
			c.Minor++
		default:
			c.Informational++
		}
		c.Total++
	}
	return c
}

// Finalize stores the derived counts on the report.
func (r *Report) Finalize() SeverityCounts {
	r.Counts = Aggregate(r.Entries)
	return r.Counts
}
