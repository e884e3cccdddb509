package geo_test

import (
	"math"
	"testing"

	"github.com/tripsentry/tripsentry/internal/geo"
)

var (
	amsterdamCentral = geo.Point{Lat: 52.379189, Lon: 4.899431}
	amsterdamZuid    = geo.Point{Lat: 52.338889, Lon: 4.873056}
	utrecht          = geo.Point{Lat: 52.090737, Lon: 5.121420}
)

func TestHaversineDistance(t *testing.T) {
	tests := []struct {
		name      string
		a, b      geo.Point
		wantMeter float64
		tolerance float64
	}{
		{"same point", amsterdamCentral, amsterdamCentral, 0, 0.001},
		{"across the city", amsterdamCentral, amsterdamZuid, 4830, 100},
		{"between cities", amsterdamCentral, utrecht, 35200, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := geo.HaversineDistance(tt.a, tt.b)
			if math.Abs(got-tt.wantMeter) > tt.tolerance {
				t.Errorf("expected ~%.0fm, got %.0fm", tt.wantMeter, got)
			}
		})
	}
}

func TestHaversineDistance_Symmetric(t *testing.T) {
	ab := geo.HaversineDistance(amsterdamCentral, utrecht)
	ba := geo.HaversineDistance(utrecht, amsterdamCentral)
	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("distance should be symmetric: %f vs %f", ab, ba)
	}
}

func TestSameArea(t *testing.T) {
	tests := []struct {
		name      string
		a, b      geo.Point
		threshold float64
		want      bool
	}{
		{"same point", amsterdamCentral, amsterdamCentral, 5000, true},
		{"within city", amsterdamCentral, amsterdamZuid, 5000, true},
		{"different cities", amsterdamCentral, utrecht, 5000, false},
		{"tight threshold splits city", amsterdamCentral, amsterdamZuid, 1000, false},
		{"zero threshold uses default", amsterdamCentral, amsterdamZuid, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := geo.SameArea(tt.a, tt.b, tt.threshold); got != tt.want {
				t.Errorf("SameArea() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPoint_Validate(t *testing.T) {
	tests := []struct {
		name    string
		point   geo.Point
		wantErr bool
	}{
		{"valid", amsterdamCentral, false},
		{"lat too high", geo.Point{Lat: 90.1, Lon: 0}, true},
		{"lat too low", geo.Point{Lat: -90.1, Lon: 0}, true},
		{"lon too high", geo.Point{Lat: 0, Lon: 180.1}, true},
		{"lon too low", geo.Point{Lat: 0, Lon: -180.1}, true},
		{"boundary values", geo.Point{Lat: -90, Lon: 180}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.point.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
