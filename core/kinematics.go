package core

import (
	"math"

	"github.com/seawaysim/traffic-generator/model"
)

// wrapTo2Pi normalizes an angle in radians to [0, 2*pi).
func wrapTo2Pi(angle float64) float64 {
	wrapped := math.Mod(angle, 2*math.Pi)
	if wrapped < 0 {
		wrapped += 2 * math.Pi
	}
	return wrapped
}

// PositionAtTime propagates a position along a constant course and speed for
// deltaTime seconds and returns the resulting geodetic position. deltaTime may
// be negative to rewind; propagating forward then backward by the same delta
// returns the original position to floating-point precision.
//
// Course follows the compass convention: radians clockwise from true north.
func PositionAtTime(pos model.GeoPosition, ref model.GeoPosition, speed, course, deltaTime float64) model.GeoPosition {
	local := LLH2Flat(pos, ref)
	local.North += speed * deltaTime * math.Cos(course)
	local.East += speed * deltaTime * math.Sin(course)
	return Flat2LLH(local, ref)
}

// DistanceBetweenPositions returns the flat-earth Euclidean distance in metres
// between two geodetic positions, both projected against ref.
func DistanceBetweenPositions(a, b model.GeoPosition, ref model.GeoPosition) float64 {
	la := LLH2Flat(a, ref)
	lb := LLH2Flat(b, ref)
	return math.Hypot(lb.North-la.North, lb.East-la.East)
}

// BearingBetweenPositions returns the compass bearing in [0, 2*pi) from a to b,
// both projected against ref.
func BearingBetweenPositions(a, b model.GeoPosition, ref model.GeoPosition) float64 {
	la := LLH2Flat(a, ref)
	lb := LLH2Flat(b, ref)
	return wrapTo2Pi(math.Atan2(lb.East-la.East, lb.North-la.North))
}

// destinationAlongBearing advances a geodetic position by distance metres on a
// constant compass bearing.
func destinationAlongBearing(start model.GeoPosition, distance, bearing float64, ref model.GeoPosition) model.GeoPosition {
	local := LLH2Flat(start, ref)
	local.North += distance * math.Cos(bearing)
	local.East += distance * math.Sin(bearing)
	return Flat2LLH(local, ref)
}

// PositionAlongTrack walks a waypoint polyline for vectorTime seconds and
// returns the position reached. Each leg travels at the leg's speed override
// when present, otherwise at initialSpeed. If vectorTime exceeds the total
// track duration the final waypoint is returned; the track is never
// extrapolated past its last leg.
func PositionAlongTrack(waypoints []model.Waypoint, initialSpeed, vectorTime float64, ref model.GeoPosition) model.GeoPosition {
	if len(waypoints) == 0 {
		return ref
	}
	if len(waypoints) == 1 {
		return waypoints[0].Position
	}

	timeInTransit := 0.0
	for i := 0; i < len(waypoints)-1; i++ {
		legStart := waypoints[i]
		legEnd := waypoints[i+1]

		speed := initialSpeed
		if legStart.Leg != nil && legStart.Leg.Speed != nil {
			speed = *legStart.Leg.Speed
		}
		if speed <= 0 {
			// A zero-speed leg never completes; the ship holds at its start.
			return legStart.Position
		}

		legLength := DistanceBetweenPositions(legStart.Position, legEnd.Position, ref)
		remainingDistance := speed * (vectorTime - timeInTransit)
		if remainingDistance > legLength {
			timeInTransit += legLength / speed
			continue
		}

		bearing := BearingBetweenPositions(legStart.Position, legEnd.Position, ref)
		return destinationAlongBearing(legStart.Position, remainingDistance, bearing, ref)
	}

	return waypoints[len(waypoints)-1].Position
}
