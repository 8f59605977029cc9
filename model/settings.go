package model

// EncounterClassification holds the angular thresholds the COLREGS
// classification rules are evaluated against. All angles are radians.
//
// Theta13 covers "coming up with" relative bearings (overtaking), Theta14
// covers "reciprocal or nearly reciprocal courses" (head-on), Theta15Criteria
// is the crossing aspect limit, and Theta15 is the 22.5-degrees-abaft-the-beam
// sector that separates overtaking from crossing.
type EncounterClassification struct {
	Theta13Criteria float64
	Theta14Criteria float64
	Theta15Criteria float64
	Theta15         [2]float64
}

// RelativeSpeedRange is a [min, max] ratio of target ship speed to own ship
// speed for one encounter type.
type RelativeSpeedRange [2]float64

// EncounterRelativeSpeed maps each encounter type to its admissible relative
// speed range.
type EncounterRelativeSpeed struct {
	OvertakingStandOn RelativeSpeedRange
	OvertakingGiveWay RelativeSpeedRange
	HeadOn            RelativeSpeedRange
	CrossingGiveWay   RelativeSpeedRange
	CrossingStandOn   RelativeSpeedRange
}

// ForEncounter returns the relative speed range for the given encounter type.
// Unknown types get a zero range, which makes any sampled speed infeasible.
func (r EncounterRelativeSpeed) ForEncounter(t EncounterType) RelativeSpeedRange {
	switch t {
	case OvertakingStandOn:
		return r.OvertakingStandOn
	case OvertakingGiveWay:
		return r.OvertakingGiveWay
	case HeadOn:
		return r.HeadOn
	case CrossingGiveWay:
		return r.CrossingGiveWay
	case CrossingStandOn:
		return r.CrossingStandOn
	}
	return RelativeSpeedRange{}
}

// EncounterSettings is the immutable configuration for one generation run.
// Angles are radians, distances metres, times seconds; unit normalization
// happens in the config layer before the solver runs.
type EncounterSettings struct {
	Classification     EncounterClassification
	RelativeSpeed      EncounterRelativeSpeed
	VectorRange        [2]float64 // seconds
	SituationLength    float64    // seconds
	MaxMeetingDistance float64    // metres
	EvolveTime         float64    // seconds
	CommonVector       float64    // seconds
	DisableLandCheck   bool
}
