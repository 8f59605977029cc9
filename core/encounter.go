package core

import (
	"context"
	"fmt"
	"math"

	"github.com/seawaysim/traffic-generator/internal/logging"
	"github.com/seawaysim/traffic-generator/model"
)

// The search runs a bounded double loop: the outer iterations lock vector
// time and bearing, the inner iterations lock speed and solve for a start
// position. The budget is fixed, not configurable.
const (
	maxOuterAttempts = 5
	maxInnerAttempts = 5
)

// GenerationMetrics receives the outcome of each encounter search. The
// observability layer implements it; the zero-value noop is used otherwise.
type GenerationMetrics interface {
	EncounterGenerated(encounterType model.EncounterType, found bool, attempts int)
}

type noopMetrics struct{}

func (noopMetrics) EncounterGenerated(model.EncounterType, bool, int) {}

// EncounterGenerator searches for target ship placements that realize a
// desired COLREGS encounter against a given own ship. It is safe for
// sequential reuse; concurrent use requires one generator (and one Rand) per
// goroutine to keep results reproducible.
type EncounterGenerator struct {
	settings model.EncounterSettings
	land     LandChecker
	rng      Rand
	log      logging.Logger
	metrics  GenerationMetrics
}

// NewEncounterGenerator builds a generator. land may be nil when the land
// check is disabled in the settings; log and metrics may be nil.
func NewEncounterGenerator(
	settings model.EncounterSettings,
	land LandChecker,
	rng Rand,
	log logging.Logger,
	metrics GenerationMetrics,
) *EncounterGenerator {
	if land == nil {
		land = OpenSea{}
	}
	if log == nil {
		log = logging.Noop()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &EncounterGenerator{
		settings: settings,
		land:     land,
		rng:      rng,
		log:      log,
		metrics:  metrics,
	}
}

// Generate searches for a target ship realizing the requested encounter.
//
// The own ship is taken by value and never mutated; two encounters generated
// for the same situation do not observe each other's target assignments. On
// success the returned target ship carries an initial state and a two-point
// track; on exhaustion of the retry budget found is false and only the
// template's static data is populated. Exhaustion is an expected outcome, not
// an error: errors are reserved for precondition violations.
func (g *EncounterGenerator) Generate(
	ctx context.Context,
	enc model.Encounter,
	ownShip model.Ship,
	templates []model.ShipStatic,
	targetShipID int,
) (model.TargetShip, bool, error) {
	if !enc.DesiredEncounterType.Valid() {
		return model.TargetShip{}, false, fmt.Errorf("generate encounter: unknown encounter type %q", enc.DesiredEncounterType)
	}
	if len(templates) == 0 {
		return model.TargetShip{}, false, fmt.Errorf("generate encounter: no target ship templates")
	}
	if ownShip.Initial == nil {
		return model.TargetShip{}, false, fmt.Errorf("generate encounter: own ship has no initial state")
	}
	if ownShip.Initial.SOG <= 0 {
		return model.TargetShip{}, false, fmt.Errorf("generate encounter: own ship speed must be positive, got %v", ownShip.Initial.SOG)
	}

	target := g.decideTargetShip(templates, targetShipID)

	// The own ship's initial position anchors the local flat-earth frame for
	// every projection in this request.
	ref := ownShip.Initial.Position
	ownSpeed := ownShip.Initial.SOG
	ownCOG := ownShip.Initial.COG

	found := false
	attempts := 0

	for outer := 0; outer < maxOuterAttempts && !found; outer++ {
		vectorTime := g.resolveVectorTime(enc.VectorTime)
		beta := g.resolveBeta(enc.Beta, enc.DesiredEncounterType)

		ownFuture := g.propagateOwnShip(ownShip, ref, vectorTime)
		targetFuture := g.assignFuturePosition(ownFuture, ref)

		for inner := 0; inner < maxInnerAttempts && !found; inner++ {
			attempts++

			var targetSpeed float64
			if enc.RelativeSpeed != nil {
				targetSpeed = *enc.RelativeSpeed * ownSpeed
			} else {
				minSpeed := CalculateMinVectorLength(ownShip.Initial.Position, ownCOG, targetFuture, beta, ref) / vectorTime
				targetSpeed = g.assignSOGToTargetShip(enc.DesiredEncounterType, ownSpeed, minSpeed)
			}
			targetSpeed = math.Min(targetSpeed, target.Static.SpeedMax)

			vectorLength := targetSpeed * vectorTime
			startPos, ok := FindStartPositionTargetShip(
				ownShip.Initial.Position, ref, ownCOG,
				targetFuture, vectorLength, beta,
				enc.DesiredEncounterType, g.settings.Classification,
			)
			if !ok {
				continue
			}

			course := CalculateShipCOG(startPos, targetFuture, ref)

			if !g.checkEncounterEvolvement(ownShip, ownFuture, targetSpeed, course, targetFuture, enc.DesiredEncounterType, ref) {
				continue
			}
			if !g.settings.DisableLandCheck &&
				g.land.PathCrossesLand(startPos, targetSpeed, course, ref, g.settings.SituationLength) {
				continue
			}

			target.Initial = &model.Initial{
				Position:  startPos,
				SOG:       targetSpeed,
				COG:       course,
				Heading:   course,
				NavStatus: model.NavStatusUnderWayUsingEngine,
			}
			target.Waypoints = []model.Waypoint{
				{Position: startPos},
				{Position: PositionAtTime(startPos, ref, targetSpeed, course, g.settings.SituationLength)},
			}
			found = true
		}
	}

	g.metrics.EncounterGenerated(enc.DesiredEncounterType, found, attempts)
	g.log.Debug(ctx, "encounter search finished",
		logging.String("type", string(enc.DesiredEncounterType)),
		logging.Int("attempts", attempts),
		logging.Any("found", found),
	)

	return target, found, nil
}

// decideTargetShip picks a template uniformly at random and returns a fresh
// target ship carrying a copy of its static data.
func (g *EncounterGenerator) decideTargetShip(templates []model.ShipStatic, targetShipID int) model.TargetShip {
	static := templates[g.rng.IntN(len(templates))]
	static.ID = targetShipID
	return model.TargetShip{
		ID:   targetShipID,
		Ship: model.Ship{Static: &static},
	}
}

// resolveVectorTime returns the user-fixed vector time or samples one
// uniformly from the settings range.
func (g *EncounterGenerator) resolveVectorTime(fixed *float64) float64 {
	if fixed != nil {
		return *fixed
	}
	return uniform(g.rng, g.settings.VectorRange[0], g.settings.VectorRange[1])
}

// resolveBeta resolves a beta constraint to a concrete bearing for this outer
// iteration: a fixed value passes through, a range is sampled, and an unset
// constraint draws from the sector belonging to the desired encounter type.
func (g *EncounterGenerator) resolveBeta(spec model.BetaSpec, encounterType model.EncounterType) float64 {
	switch spec.Kind {
	case model.BetaFixed:
		return spec.Value
	case model.BetaRange:
		return uniform(g.rng, spec.Min, spec.Max)
	default:
		return g.assignBeta(encounterType)
	}
}

// assignBeta draws a relative bearing from the angular sub-range that can
// produce the desired encounter type.
func (g *EncounterGenerator) assignBeta(encounterType model.EncounterType) float64 {
	c := g.settings.Classification
	switch encounterType {
	case model.OvertakingStandOn:
		return uniform(g.rng, c.Theta15[0], c.Theta15[1])
	case model.OvertakingGiveWay:
		return uniform(g.rng, -c.Theta13Criteria, c.Theta13Criteria)
	case model.HeadOn:
		return uniform(g.rng, -c.Theta14Criteria, c.Theta14Criteria)
	case model.CrossingGiveWay:
		return uniform(g.rng, 0, c.Theta15[0])
	case model.CrossingStandOn:
		return wrapTo2Pi(uniform(g.rng, -c.Theta15[1], c.Theta15Criteria))
	}
	return 0
}

// propagateOwnShip projects the own ship forward by vectorTime, following its
// waypoint track when it has one and a straight line otherwise.
func (g *EncounterGenerator) propagateOwnShip(ownShip model.Ship, ref model.GeoPosition, vectorTime float64) model.GeoPosition {
	if len(ownShip.Waypoints) >= 2 {
		return PositionAlongTrack(ownShip.Waypoints, ownShip.Initial.SOG, vectorTime, ref)
	}
	return PositionAtTime(ownShip.Initial.Position, ref, ownShip.Initial.SOG, ownShip.Initial.COG, vectorTime)
}

// assignFuturePosition scatters the target's meeting point uniformly inside a
// disk of radius MaxMeetingDistance around the own ship's future position.
// The radius draw is uniform in distance, deliberately biasing samples toward
// the centre of the disk.
func (g *EncounterGenerator) assignFuturePosition(ownFuture model.GeoPosition, ref model.GeoPosition) model.GeoPosition {
	angle := g.rng.Float64() * 2 * math.Pi
	distance := g.rng.Float64() * g.settings.MaxMeetingDistance

	local := LLH2Flat(ownFuture, ref)
	local.North += distance * math.Cos(angle)
	local.East += distance * math.Sin(angle)
	return Flat2LLH(local, ref)
}

// assignSOGToTargetShip draws a target speed from the encounter type's
// relative speed range scaled by the own ship speed. When the minimum
// feasible speed falls inside the range, the lower bound is tightened to it
// so infeasible draws are avoided.
func (g *EncounterGenerator) assignSOGToTargetShip(encounterType model.EncounterType, ownSpeed, minTargetSpeed float64) float64 {
	rsr := g.settings.RelativeSpeed.ForEncounter(encounterType)
	low, high := rsr[0], rsr[1]

	minRatio := minTargetSpeed / ownSpeed
	if minRatio > low && minRatio < high {
		low = minRatio
	}

	return uniform(g.rng, low, high) * ownSpeed
}

// checkEncounterEvolvement rewinds both ships from their future meeting
// positions by EvolveTime and reclassifies. The encounter is kept only if the
// pre-encounter geometry already classifies as the desired type; this rejects
// placements that satisfy the type only momentarily at the rendezvous instant.
func (g *EncounterGenerator) checkEncounterEvolvement(
	ownShip model.Ship,
	ownFuture model.GeoPosition,
	targetSpeed, targetCourse float64,
	targetFuture model.GeoPosition,
	desiredType model.EncounterType,
	ref model.GeoPosition,
) bool {
	evolveTime := g.settings.EvolveTime

	ownPre := PositionAtTime(ownFuture, ref, ownShip.Initial.SOG, ownShip.Initial.COG, -evolveTime)
	targetPre := PositionAtTime(targetFuture, ref, targetSpeed, targetCourse, -evolveTime)

	preBeta, preAlpha := CalculateRelativeBearing(ownPre, ownShip.Initial.COG, targetPre, targetCourse, ref)
	preColreg := DetermineColreg(preAlpha, preBeta, g.settings.Classification)

	return preColreg == desiredType
}
