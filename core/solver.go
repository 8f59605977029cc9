package core

import (
	"math"

	"github.com/seawaysim/traffic-generator/model"
)

// betaAcceptTolerance is how far a solved start position's resulting relative
// bearing may deviate from the requested one before the root is rejected.
const betaAcceptTolerance = 0.01 // radians

// CalculateMinVectorLength returns the minimum closing-vector length, in
// metres, a target ship must travel to reach its future meeting point while
// approaching the own ship at the desired relative bearing. Geometrically it
// is the perpendicular distance from the meeting point to the ray leaving the
// own ship at ownCOG + desiredBeta.
func CalculateMinVectorLength(
	ownPos model.GeoPosition, ownCOG float64,
	targetFuturePos model.GeoPosition, desiredBeta float64,
	ref model.GeoPosition,
) float64 {
	psi := ownCOG + desiredBeta

	p1 := LLH2Flat(ownPos, ref)
	p2 := model.LocalPosition{North: p1.North + math.Cos(psi), East: p1.East + math.Sin(psi)}
	p3 := LLH2Flat(targetFuturePos, ref)

	dn := p2.North - p1.North
	de := p2.East - p1.East
	norm := math.Hypot(dn, de)
	if norm < 1e-12 {
		// Degenerate direction vector; fall back to the straight distance
		// rather than dividing by zero.
		return math.Hypot(p3.North-p1.North, p3.East-p1.East)
	}

	cross := dn*(p3.East-p1.East) - de*(p3.North-p1.North)
	return math.Abs(cross) / norm
}

// FindStartPositionTargetShip solves for a target ship start position that
// lies on the ray from the own ship at bearing ownCOG + desiredBeta and is
// vectorLength metres from the target's future meeting point.
//
// The ray is parametrized as (n1 + s*(n4-n1), e1 + s*(e4-e1)) and intersected
// with the circle of radius vectorLength around the meeting point, giving a
// quadratic in s. Each real root is a candidate start position; a root is
// accepted only if the geometry it produces classifies as desiredType and its
// resulting beta is within betaAcceptTolerance of desiredBeta. Roots are tried
// in a fixed order so the search is deterministic.
//
// When the discriminant is non-positive or neither root qualifies, the
// meeting point itself is returned with found=false. The fallback is
// conservative: callers never see a computed-but-wrong start position.
func FindStartPositionTargetShip(
	ownPos model.GeoPosition, ref model.GeoPosition, ownCOG float64,
	targetFuturePos model.GeoPosition, vectorLength, desiredBeta float64,
	desiredType model.EncounterType, classification model.EncounterClassification,
) (model.GeoPosition, bool) {
	own := LLH2Flat(ownPos, ref)
	future := LLH2Flat(targetFuturePos, ref)

	n1, e1 := own.North, own.East
	n2, e2 := future.North, future.East
	psi := ownCOG + desiredBeta
	n4 := n1 + math.Cos(psi)
	e4 := e1 + math.Sin(psi)

	a := (e4-e1)*(e4-e1) + (n4-n1)*(n4-n1)
	b := -2*e2*e4 - 2*n2*n4 + 2*e1*e2 + 2*n1*n2 + 2*e1*(e4-e1) + 2*n1*(n4-n1)
	c := e2*e2 + n2*n2 - 2*e1*e2 - 2*n1*n2 - vectorLength*vectorLength + e1*e1 + n1*n1

	discriminant := b*b - 4*a*c
	if discriminant <= 0 {
		return targetFuturePos, false
	}

	sqrtD := math.Sqrt(discriminant)
	for _, s := range [2]float64{(-b + sqrtD) / (2 * a), (-b - sqrtD) / (2 * a)} {
		candidate := Flat2LLH(model.LocalPosition{
			North: n1 + s*(n4-n1),
			East:  e1 + s*(e4-e1),
		}, ref)

		course := CalculateShipCOG(candidate, targetFuturePos, ref)
		beta, alpha := CalculateRelativeBearing(ownPos, ownCOG, candidate, course, ref)
		colreg := DetermineColreg(alpha, beta, classification)

		if colreg == desiredType && math.Abs(Ssa(beta-desiredBeta)) < betaAcceptTolerance {
			return candidate, true
		}
	}

	return targetFuturePos, false
}
