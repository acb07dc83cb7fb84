package reports

import (
	"strings"

	"github.com/bryanwahyu/inspekta/internal/domain/inspection"
)

var areaPoints = map[string][2]float64{
	"upper left":   {0.2, 0.2},
	"top left":     {0.2, 0.2},
	"top":          {0.5, 0.18},
	"upper":        {0.5, 0.18},
	"upper right":  {0.8, 0.2},
	"top right":    {0.8, 0.2},
	"left":         {0.18, 0.5},
	"center":       {0.5, 0.5},
	"centre":       {0.5, 0.5},
	"middle":       {0.5, 0.5},
	"right":        {0.82, 0.5},
	"lower left":   {0.2, 0.8},
	"bottom left":  {0.2, 0.8},
	"bottom":       {0.5, 0.82},
	"lower":        {0.5, 0.82},
	"lower right":  {0.8, 0.8},
	"bottom right": {0.8, 0.8},
}

// placeMarkers puts one marker per issue: at its area hint when known,
// otherwise spread along the horizontal midline. Markers sharing a spot are
// nudged apart.
func placeMarkers(issues []inspection.Issue) []Marker {
	out := make([]Marker, 0, len(issues))
	used := map[[2]float64]int{}
	for i, is := range issues {
		pt, ok := areaPoints[strings.ToLower(strings.TrimSpace(is.Area))]
		if !ok {
			pt = [2]float64{float64(i+1) / float64(len(issues)+1), 0.5}
		}
		n := used[pt]
		used[pt]++
		out = append(out, Marker{
			Number:   i + 1,
			X:        clamp(pt[0] + 0.07*float64(n)),
			Y:        clamp(pt[1] + 0.05*float64(n)),
			Severity: string(is.Severity),
		})
	}
	return out
}

func clamp(v float64) float64 {
	switch {
	case v < 0.05:
		return 0.05
	case v > 0.95:
		return 0.95
	}
	return v
}
