package safety_test

import (
	"testing"
	"time"

	"github.com/tripsentry/tripsentry/internal/geo"
	"github.com/tripsentry/tripsentry/internal/safety"
)

var (
	hotel   = geo.Point{Lat: 52.379189, Lon: 4.899431}
	museum  = geo.Point{Lat: 52.360001, Lon: 4.885278}
	utrecht = geo.Point{Lat: 52.090737, Lon: 5.121420}
)

func at(hours int) time.Time {
	return time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(hours) * time.Hour)
}

func sample(p geo.Point, t time.Time) safety.LocationSample {
	return safety.LocationSample{Point: p, Timestamp: t}
}

func TestActiveEntry(t *testing.T) {
	entries := []safety.ItineraryEntry{
		{Label: "Hotel", Point: &hotel, Start: at(0), End: at(9)},
		{Label: "Museum", Point: &museum, Start: at(9), End: at(12)},
	}

	tests := []struct {
		name      string
		at        time.Time
		wantLabel string
		wantOK    bool
	}{
		{"inside first window", at(3), "Hotel", true},
		{"start is inclusive", at(0), "Hotel", true},
		{"end is exclusive, next window starts", at(9), "Museum", true},
		{"after all windows", at(12), "", false},
		{"before all windows", at(0).Add(-time.Hour), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, ok := safety.ActiveEntry(tt.at, entries)
			if ok != tt.wantOK {
				t.Fatalf("ActiveEntry() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && entry.Label != tt.wantLabel {
				t.Errorf("ActiveEntry() label = %q, want %q", entry.Label, tt.wantLabel)
			}
		})
	}
}

func TestActiveEntry_OverlapFirstWins(t *testing.T) {
	entries := []safety.ItineraryEntry{
		{Label: "First", Point: &hotel, Start: at(0), End: at(10)},
		{Label: "Second", Point: &museum, Start: at(5), End: at(15)},
	}

	entry, ok := safety.ActiveEntry(at(7), entries)
	if !ok {
		t.Fatal("expected an active entry")
	}
	if entry.Label != "First" {
		t.Errorf("expected first match to win, got %q", entry.Label)
	}
}

func TestLongestStationaryGap(t *testing.T) {
	threshold := 5000.0

	tests := []struct {
		name         string
		samples      []safety.LocationSample
		wantDuration time.Duration
	}{
		{"no samples", nil, 0},
		{"one sample", []safety.LocationSample{sample(hotel, at(0))}, 0},
		{
			"stationary overnight",
			[]safety.LocationSample{
				sample(hotel, at(0)),
				sample(hotel, at(6)),
				sample(hotel, at(14)),
			},
			14 * time.Hour,
		},
		{
			"movement splits the runs",
			[]safety.LocationSample{
				sample(hotel, at(0)),
				sample(hotel, at(5)),
				sample(utrecht, at(6)),
				sample(utrecht, at(9)),
			},
			5 * time.Hour,
		},
		{
			"small drift stays within the area",
			[]safety.LocationSample{
				sample(hotel, at(0)),
				sample(museum, at(13)), // ~2.5km away, same area
			},
			13 * time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gap := safety.LongestStationaryGap(tt.samples, threshold)
			if gap.Duration != tt.wantDuration {
				t.Errorf("LongestStationaryGap() = %s, want %s", gap.Duration, tt.wantDuration)
			}
		})
	}
}

func TestLongestStationaryGap_UnorderedInput(t *testing.T) {
	samples := []safety.LocationSample{
		sample(hotel, at(14)),
		sample(hotel, at(0)),
		sample(hotel, at(6)),
	}

	gap := safety.LongestStationaryGap(samples, 5000)
	if gap.Duration != 14*time.Hour {
		t.Errorf("expected 14h gap from unordered input, got %s", gap.Duration)
	}
	if !gap.Start.Equal(at(0)) || !gap.End.Equal(at(14)) {
		t.Errorf("expected gap [%s, %s], got [%s, %s]", at(0), at(14), gap.Start, gap.End)
	}
}

func TestLongestStationaryGap_DoesNotMutateInput(t *testing.T) {
	samples := []safety.LocationSample{
		sample(hotel, at(14)),
		sample(hotel, at(0)),
	}

	_ = safety.LongestStationaryGap(samples, 5000)

	if !samples[0].Timestamp.Equal(at(14)) {
		t.Error("input slice order must not change")
	}
}
