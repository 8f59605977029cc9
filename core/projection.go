package core

import (
	"math"

	"github.com/seawaysim/traffic-generator/model"
)

// WGS-84 ellipsoid parameters used by the flat-earth projection.
const (
	semiMajorAxis = 6378137.0 // metres
	flattening    = 1 / 298.257223563
)

// eccentricitySq is e^2 = 2f - f^2 for the WGS-84 ellipsoid.
var eccentricitySq = 2*flattening - flattening*flattening

// Ssa wraps an angle in radians to the smallest signed angle in [-pi, pi).
func Ssa(angle float64) float64 {
	wrapped := math.Mod(angle+math.Pi, 2*math.Pi)
	if wrapped < 0 {
		wrapped += 2 * math.Pi
	}
	return wrapped - math.Pi
}

// earthRadii returns the WGS-84 radii of curvature at the reference latitude:
// Rn in the prime vertical and Rm in the meridian.
func earthRadii(lat0 float64) (rn, rm float64) {
	sinLat := math.Sin(lat0)
	rn = semiMajorAxis / math.Sqrt(1-eccentricitySq*sinLat*sinLat)
	rm = rn * (1 - eccentricitySq) / (1 - eccentricitySq*sinLat*sinLat)
	return rn, rm
}

// Flat2LLH converts a local flat-earth offset (north, east metres) relative to
// the reference point into a geodetic position. The flat-earth frame is the
// tangent plane of the WGS-84 ellipsoid at the reference point.
func Flat2LLH(pos model.LocalPosition, ref model.GeoPosition) model.GeoPosition {
	rn, rm := earthRadii(ref.Latitude)

	dLat := pos.North / rm
	dLon := pos.East / (rn * math.Cos(ref.Latitude))

	return model.GeoPosition{
		Latitude:  Ssa(ref.Latitude + dLat),
		Longitude: Ssa(ref.Longitude + dLon),
	}
}

// LLH2Flat converts a geodetic position into a local flat-earth offset
// (north, east metres) relative to the reference point. It is the inverse of
// Flat2LLH to within floating-point tolerance for |ref.Latitude| < pi/2.
func LLH2Flat(pos model.GeoPosition, ref model.GeoPosition) model.LocalPosition {
	rn, rm := earthRadii(ref.Latitude)

	return model.LocalPosition{
		North: (pos.Latitude - ref.Latitude) * rm,
		East:  (pos.Longitude - ref.Longitude) * rn * math.Cos(ref.Latitude),
	}
}
