package core

import "github.com/seawaysim/traffic-generator/model"

// LandChecker decides whether a straight-line track crosses land. The
// implementation samples equally spaced points along the track over the given
// horizon and resolves each against a geographic land mask.
type LandChecker interface {
	// PathCrossesLand reports whether a ship starting at pos and holding the
	// given speed (m/s) and course (radians) touches land within
	// horizonSeconds. ref anchors the local flat-earth frame pos lives in.
	PathCrossesLand(pos model.GeoPosition, speed, course float64, ref model.GeoPosition, horizonSeconds float64) bool
}

// OpenSea is a LandChecker for unbounded water; it never reports land.
type OpenSea struct{}

// PathCrossesLand always returns false.
func (OpenSea) PathCrossesLand(model.GeoPosition, float64, float64, model.GeoPosition, float64) bool {
	return false
}
