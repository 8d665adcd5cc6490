// Package geoutil provides great-circle distance and time-delta math
// for duplicate detection over report coordinates.
package geoutil

import (
	"math"
	"time"
)

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371e3

// DistanceMeters returns the haversine distance between two WGS84
// coordinate pairs, in meters.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// AbsDelta returns the absolute duration between two instants.
func AbsDelta(t1, t2 time.Time) time.Duration {
	d := t1.Sub(t2)
	if d < 0 {
		return -d
	}
	return d
}
