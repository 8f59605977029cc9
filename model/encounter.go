package model

// EncounterType classifies a two-ship meeting according to the COLREGS-derived
// rules used by the generator.
type EncounterType string

const (
	OvertakingStandOn EncounterType = "overtaking-stand-on"
	OvertakingGiveWay EncounterType = "overtaking-give-way"
	HeadOn            EncounterType = "head-on"
	CrossingGiveWay   EncounterType = "crossing-give-way"
	CrossingStandOn   EncounterType = "crossing-stand-on"
	NoRiskCollision   EncounterType = "noRiskCollision"
)

// Valid reports whether t is one of the known encounter types.
func (t EncounterType) Valid() bool {
	switch t {
	case OvertakingStandOn, OvertakingGiveWay, HeadOn,
		CrossingGiveWay, CrossingStandOn, NoRiskCollision:
		return true
	}
	return false
}

// BetaKind tags how a requested relative bearing is constrained.
type BetaKind int

const (
	// BetaUnset lets the generator sample beta from the angular sub-range
	// associated with the desired encounter type.
	BetaUnset BetaKind = iota
	// BetaFixed pins beta to a single value.
	BetaFixed
	// BetaRange samples beta uniformly from [Min, Max].
	BetaRange
)

// BetaSpec is a user constraint on the relative bearing of the target ship as
// seen from the own ship. Angles are radians.
type BetaSpec struct {
	Kind  BetaKind
	Value float64 // Kind == BetaFixed
	Min   float64 // Kind == BetaRange
	Max   float64 // Kind == BetaRange
}

// FixedBeta returns a BetaSpec pinning beta to v.
func FixedBeta(v float64) BetaSpec {
	return BetaSpec{Kind: BetaFixed, Value: v}
}

// BetaWithin returns a BetaSpec sampling beta uniformly from [min, max].
func BetaWithin(min, max float64) BetaSpec {
	return BetaSpec{Kind: BetaRange, Min: min, Max: max}
}

// Encounter is one requested encounter within a traffic situation. Optional
// fields left unset are sampled from the settings-defined bounds.
type Encounter struct {
	DesiredEncounterType EncounterType
	Beta                 BetaSpec
	RelativeSpeed        *float64 // ratio target/own, nil = sampled
	VectorTime           *float64 // seconds, nil = sampled
}

// Situation is one traffic situation: an own ship plus the target ships that
// were successfully placed for the requested encounters.
type Situation struct {
	Title         string
	InputFileName string
	CommonVector  float64 // seconds
	Origin        GeoPosition
	OwnShip       *Ship
	NumSituations int
	Encounters    []Encounter
	TargetShips   []TargetShip
}
