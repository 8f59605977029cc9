package core

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/seawaysim/traffic-generator/internal/logging"
	"github.com/seawaysim/traffic-generator/model"
)

const tracerName = "github.com/seawaysim/traffic-generator/core"

// TrafficGenerator assembles complete traffic situations: it defines the own
// ship, runs the encounter search for every requested encounter, and collects
// the target ships that were found.
type TrafficGenerator struct {
	settings model.EncounterSettings
	land     LandChecker
	log      logging.Logger
	metrics  GenerationMetrics
	seed     int64
}

// NewTrafficGenerator builds a generator. land may be nil when the land check
// is disabled; log and metrics may be nil.
func NewTrafficGenerator(
	settings model.EncounterSettings,
	land LandChecker,
	log logging.Logger,
	metrics GenerationMetrics,
	seed int64,
) *TrafficGenerator {
	if land == nil {
		land = OpenSea{}
	}
	if log == nil {
		log = logging.Noop()
	}
	return &TrafficGenerator{
		settings: settings,
		land:     land,
		log:      log,
		metrics:  metrics,
		seed:     seed,
	}
}

// GenerateSituations expands the requested situations (honouring
// NumSituations) and generates each one. Situations are generated
// concurrently, one worker per situation, each with an independently derived
// seed so the output is reproducible regardless of scheduling.
func (t *TrafficGenerator) GenerateSituations(
	ctx context.Context,
	requests []model.Situation,
	ownShip model.Ship,
	templates []model.ShipStatic,
) ([]model.Situation, error) {
	if len(templates) == 0 {
		return nil, fmt.Errorf("generate situations: no target ship templates")
	}
	if ownShip.Initial == nil {
		return nil, fmt.Errorf("generate situations: own ship has no initial state")
	}

	// Expand num_situations up front so every run gets a stable index and a
	// stable derived seed.
	type job struct {
		request model.Situation
		index   int
	}
	var jobs []job
	for _, request := range requests {
		n := request.NumSituations
		if n < 1 {
			n = 1
		}
		for i := 0; i < n; i++ {
			jobs = append(jobs, job{request: request, index: len(jobs)})
		}
	}

	results := make([]model.Situation, len(jobs))
	group, groupCtx := errgroup.WithContext(ctx)
	for _, j := range jobs {
		j := j
		group.Go(func() error {
			situation, err := t.generateSituation(groupCtx, j.request, ownShip, templates, t.seed+int64(j.index))
			if err != nil {
				return err
			}
			results[j.index] = situation
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// generateSituation produces one traffic situation from a request. Encounters
// within a situation run strictly sequentially against a single seeded Rand,
// so a fixed seed yields a fixed sequence of attempts.
func (t *TrafficGenerator) generateSituation(
	ctx context.Context,
	request model.Situation,
	ownShip model.Ship,
	templates []model.ShipStatic,
	seed int64,
) (model.Situation, error) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "GenerateSituation")
	span.SetAttributes(
		attribute.String("situation.title", request.Title),
		attribute.Int("situation.encounters", len(request.Encounters)),
		attribute.Int64("situation.seed", seed),
	)
	defer span.End()

	commonVector := request.CommonVector
	if commonVector <= 0 {
		commonVector = t.settings.CommonVector
	}

	// A request may override the own ship's initial pose while keeping the
	// configured static data and track handling.
	if request.OwnShip != nil && request.OwnShip.Initial != nil {
		initial := *request.OwnShip.Initial
		ownShip.Initial = &initial
		if len(request.OwnShip.Waypoints) > 0 {
			ownShip.Waypoints = append([]model.Waypoint(nil), request.OwnShip.Waypoints...)
		}
	}
	if ownShip.Initial.SOG <= 0 {
		return model.Situation{}, fmt.Errorf("situation %q: own ship speed must be positive", request.Title)
	}

	situation := model.Situation{
		Title:         request.Title,
		InputFileName: request.InputFileName,
		CommonVector:  commonVector,
		Origin:        ownShip.Initial.Position,
		Encounters:    request.Encounters,
	}

	situation.OwnShip = t.defineOwnShip(ownShip, commonVector)

	rng := NewRand(seed)
	generator := NewEncounterGenerator(t.settings, t.land, rng, t.log, t.metrics)

	for k, encounter := range request.Encounters {
		targetShipID := k + 1
		target, found, err := generator.Generate(ctx, encounter, ownShip, templates, targetShipID)
		if err != nil {
			span.RecordError(err)
			return model.Situation{}, fmt.Errorf("situation %q encounter %d: %w", request.Title, targetShipID, err)
		}
		if !found {
			// The situation is still emitted, just with fewer target ships.
			t.log.Info(ctx, "encounter not found",
				logging.String("situation", request.Title),
				logging.String("type", string(encounter.DesiredEncounterType)),
				logging.Int("target_ship_id", targetShipID),
			)
			continue
		}
		situation.TargetShips = append(situation.TargetShips, target)
	}

	return situation, nil
}

// defineOwnShip returns a copy of the own ship with a two-point track covering
// the common vector time, leaving the caller's ship untouched. Ships that
// already carry a multi-leg track keep it.
func (t *TrafficGenerator) defineOwnShip(ownShip model.Ship, commonVector float64) *model.Ship {
	ship := ownShip
	if ship.Initial != nil {
		initial := *ship.Initial
		ship.Initial = &initial
	}

	if len(ship.Waypoints) >= 2 {
		waypoints := make([]model.Waypoint, len(ship.Waypoints))
		copy(waypoints, ship.Waypoints)
		ship.Waypoints = waypoints
		return &ship
	}

	ref := ship.Initial.Position
	future := PositionAtTime(ref, ref, ship.Initial.SOG, ship.Initial.COG, commonVector)
	ship.Waypoints = []model.Waypoint{
		{Position: ref},
		{Position: future},
	}
	return &ship
}
