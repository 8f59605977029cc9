package core

import (
	"math"

	"github.com/seawaysim/traffic-generator/model"
)

// angleTolerance loosens the upper-bound comparisons in the classification
// rules so that angles sitting exactly on a threshold still classify.
const angleTolerance = 0.001 // radians

// CalculateRelativeBearing computes the two angles COLREGS classification is
// based on:
//
//	beta:  bearing of the target ship relative to the own ship's bow, [0, 2*pi)
//	alpha: bearing of the own ship relative to the target ship's bow, [-pi, pi)
//
// Both positions are projected to the local flat-earth frame at ref before the
// bearings are taken.
func CalculateRelativeBearing(
	posOwn model.GeoPosition, headingOwn float64,
	posTarget model.GeoPosition, headingTarget float64,
	ref model.GeoPosition,
) (beta, alpha float64) {
	own := LLH2Flat(posOwn, ref)
	target := LLH2Flat(posTarget, ref)

	// Absolute bearing of the target as seen from the own ship. The equal-east
	// case is handled explicitly so the ratio below never divides by zero.
	var bearingOwnToTarget float64
	switch {
	case own.East == target.East:
		if own.North <= target.North {
			bearingOwnToTarget = 0
		} else {
			bearingOwnToTarget = math.Pi
		}
	case own.East < target.East:
		ratio := math.Abs(target.North-own.North) / math.Abs(target.East-own.East)
		if own.North <= target.North {
			bearingOwnToTarget = math.Pi/2 - math.Atan(ratio)
		} else {
			bearingOwnToTarget = math.Pi/2 + math.Atan(ratio)
		}
	default:
		ratio := math.Abs(target.North-own.North) / math.Abs(target.East-own.East)
		if own.North <= target.North {
			bearingOwnToTarget = 3*math.Pi/2 + math.Atan(ratio)
		} else {
			bearingOwnToTarget = 3*math.Pi/2 - math.Atan(ratio)
		}
	}

	bearingTargetToOwn := bearingOwnToTarget + math.Pi

	beta = wrapTo2Pi(bearingOwnToTarget - headingOwn)

	alpha = bearingTargetToOwn - headingTarget
	for alpha < -math.Pi {
		alpha += 2 * math.Pi
	}
	for alpha >= math.Pi {
		alpha -= 2 * math.Pi
	}

	return beta, alpha
}

// DetermineColreg classifies a two-ship geometry into an encounter type.
//
// The rules are evaluated in a fixed priority order; the first match wins.
// alpha0To2Pi and betaPlusMinusPi re-express the same angles on the branch
// cuts the overtaking (rule 13) and crossing (rule 15) sectors are defined on,
// so the ordering below must not be rearranged.
func DetermineColreg(alpha, beta float64, c model.EncounterClassification) model.EncounterType {
	theta13 := c.Theta13Criteria
	theta14 := c.Theta14Criteria
	theta15Crit := c.Theta15Criteria
	theta15 := c.Theta15

	// Sector of the own ship as seen from the target, on [0, 2*pi).
	alpha0To2Pi := alpha
	if alpha < 0 {
		alpha0To2Pi += 2 * math.Pi
	}
	// Sector of the target as seen from the own ship, on [-pi, pi].
	betaPlusMinusPi := beta
	if beta < 0 || beta > math.Pi {
		betaPlusMinusPi -= 2 * math.Pi
	}

	// Rule 13: own ship is being overtaken.
	if beta > theta15[0] && beta < theta15[1] && math.Abs(alpha)-theta13 <= angleTolerance {
		return model.OvertakingStandOn
	}
	// Rule 13: own ship is the overtaking vessel.
	if alpha0To2Pi > theta15[0] && alpha0To2Pi < theta15[1] && math.Abs(betaPlusMinusPi)-theta13 <= angleTolerance {
		return model.OvertakingGiveWay
	}
	// Rule 14: reciprocal or nearly reciprocal courses.
	if math.Abs(betaPlusMinusPi)-theta14 <= angleTolerance && math.Abs(alpha)-theta14 <= angleTolerance {
		return model.HeadOn
	}
	// Rule 15: target on the own ship's starboard side.
	if beta > 0 && beta < theta15[0] && alpha > -theta15[0] && alpha-theta15Crit <= angleTolerance {
		return model.CrossingGiveWay
	}
	// Rule 15: own ship on the target's starboard side.
	if alpha0To2Pi > 0 && alpha0To2Pi < theta15[0] && betaPlusMinusPi > -theta15[0] && betaPlusMinusPi-theta15Crit <= angleTolerance {
		return model.CrossingStandOn
	}

	return model.NoRiskCollision
}

// CalculateShipCOG returns the course over ground in [0, 2*pi) a ship must
// steer to travel from one position to another.
func CalculateShipCOG(from, to model.GeoPosition, ref model.GeoPosition) float64 {
	a := LLH2Flat(from, ref)
	b := LLH2Flat(to, ref)
	return wrapTo2Pi(math.Atan2(b.East-a.East, b.North-a.North))
}
