package safety

import (
	"sort"
	"time"

	"github.com/tripsentry/tripsentry/internal/geo"
)

// ActiveEntry returns the itinerary entry whose [Start, End) window contains t.
// When windows overlap (a caller data-quality issue, not a fault) the first
// match in input order wins. The second return value is false when no entry
// is active at t.
func ActiveEntry(t time.Time, entries []ItineraryEntry) (ItineraryEntry, bool) {
	for _, e := range entries {
		if !t.Before(e.Start) && t.Before(e.End) {
			return e, true
		}
	}
	return ItineraryEntry{}, false
}

// Gap describes the longest stretch during which consecutive samples stayed
// within an area threshold of the start of the stretch.
type Gap struct {
	Duration time.Duration
	Start    time.Time
	End      time.Time
}

// LongestStationaryGap scans location samples in timestamp order and returns
// the longest run during which every sample stays within areaThresholdMeters
// of the run's first point. Unordered input is sorted defensively; zero or one
// samples yield a zero gap.
func LongestStationaryGap(samples []LocationSample, areaThresholdMeters float64) Gap {
	if len(samples) < 2 {
		return Gap{}
	}

	ordered := make([]LocationSample, len(samples))
	copy(ordered, samples)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	var longest Gap
	anchor := ordered[0]

	for _, s := range ordered[1:] {
		if geo.SameArea(anchor.Point, s.Point, areaThresholdMeters) {
			d := s.Timestamp.Sub(anchor.Timestamp)
			if d > longest.Duration {
				longest = Gap{Duration: d, Start: anchor.Timestamp, End: s.Timestamp}
			}
			continue
		}
		// Run broken: the sample that moved starts the next run.
		anchor = s
	}

	return longest
}
