package geoutil

import (
	"math"
	"testing"
	"time"
)

func TestDistanceMetersZero(t *testing.T) {
	if d := DistanceMeters(12.9716, 77.5946, 12.9716, 77.5946); d != 0 {
		t.Fatalf("expected zero distance for identical points, got %f", d)
	}
}

func TestDistanceMetersSymmetry(t *testing.T) {
	a := DistanceMeters(12.9716, 77.5946, 13.0827, 80.2707)
	b := DistanceMeters(13.0827, 80.2707, 12.9716, 77.5946)
	if math.Abs(a-b) > 1e-6 {
		t.Fatalf("distance not symmetric: %f vs %f", a, b)
	}
}

func TestAbsDelta(t *testing.T) {
	now := time.Now()
	if d := AbsDelta(now, now.Add(5*time.Minute)); d != 5*time.Minute {
		t.Fatalf("expected 5m, got %s", d)
	}
	if d := AbsDelta(now.Add(5*time.Minute), now); d != 5*time.Minute {
		t.Fatalf("expected 5m for reversed order, got %s", d)
	}
	if d := AbsDelta(now, now); d != 0 {
		t.Fatalf("expected zero, got %s", d)
	}
}

func TestDistanceMetersKnownValues(t *testing.T) {
	cases := []struct {
		name           string
		lat1, lon1     float64
		lat2, lon2     float64
		want           float64
		toleranceRatio float64
	}{
		{
			// One degree of latitude along a meridian is ~111.2 km.
			name: "one degree latitude",
			lat1: 0, lon1: 0, lat2: 1, lon2: 0,
			want: 111195, toleranceRatio: 0.005,
		},
		{
			// A 0.001 degree latitude offset, the duplicate search
			// bounding box edge, is roughly 111 m.
			name: "bounding box edge",
			lat1: 12.9716, lon1: 77.5946, lat2: 12.9726, lon2: 77.5946,
			want: 111.2, toleranceRatio: 0.01,
		},
		{
			name: "fifty meter offset",
			lat1: 12.9716, lon1: 77.5946, lat2: 12.97205, lon2: 77.5946,
			want: 50.0, toleranceRatio: 0.02,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DistanceMeters(tc.lat1, tc.lon1, tc.lat2, tc.lon2)
			if math.Abs(got-tc.want) > tc.want*tc.toleranceRatio {
				t.Fatalf("distance = %f, want %f (±%.1f%%)", got, tc.want, tc.toleranceRatio*100)
			}
		})
	}
}
