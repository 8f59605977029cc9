// Package config reads and writes the files a generation run is described by:
// encounter settings, the own ship, target ship templates, and the requested
// traffic situations. All unit normalization between the mariner-facing file
// formats and the solver's SI/radian conventions happens here.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/seawaysim/traffic-generator/model"
)

// File shapes are kept unexported so the on-disk format can evolve
// independently of the model types.

type classificationJSON struct {
	Theta13Criteria float64    `json:"theta13_criteria" yaml:"theta13_criteria"`
	Theta14Criteria float64    `json:"theta14_criteria" yaml:"theta14_criteria"`
	Theta15Criteria float64    `json:"theta15_criteria" yaml:"theta15_criteria"`
	Theta15         [2]float64 `json:"theta15" yaml:"theta15"`
}

type relativeSpeedJSON struct {
	OvertakingStandOn [2]float64 `json:"overtaking_stand_on" yaml:"overtaking_stand_on"`
	OvertakingGiveWay [2]float64 `json:"overtaking_give_way" yaml:"overtaking_give_way"`
	HeadOn            [2]float64 `json:"head_on" yaml:"head_on"`
	CrossingGiveWay   [2]float64 `json:"crossing_give_way" yaml:"crossing_give_way"`
	CrossingStandOn   [2]float64 `json:"crossing_stand_on" yaml:"crossing_stand_on"`
}

type settingsJSON struct {
	Classification     classificationJSON `json:"classification" yaml:"classification"`
	RelativeSpeed      relativeSpeedJSON  `json:"relative_speed" yaml:"relative_speed"`
	VectorRange        [2]float64         `json:"vector_range" yaml:"vector_range"`                 // minutes
	SituationLength    float64            `json:"situation_length" yaml:"situation_length"`         // minutes
	MaxMeetingDistance float64            `json:"max_meeting_distance" yaml:"max_meeting_distance"` // nautical miles
	EvolveTime         float64            `json:"evolve_time" yaml:"evolve_time"`                   // minutes
	CommonVector       float64            `json:"common_vector" yaml:"common_vector"`               // minutes
	DisableLandCheck   bool               `json:"disable_land_check" yaml:"disable_land_check"`
}

type positionJSON struct {
	Latitude  float64 `json:"latitude"`  // degrees
	Longitude float64 `json:"longitude"` // degrees
}

type initialJSON struct {
	Position positionJSON `json:"position"`
	SOG      float64      `json:"sog"`     // knots
	COG      float64      `json:"cog"`     // degrees
	Heading  float64      `json:"heading"` // degrees
}

type legJSON struct {
	Speed        *float64 `json:"speed"`         // knots
	XTDPort      *float64 `json:"xtd_port"`      // metres
	XTDStarboard *float64 `json:"xtd_starboard"` // metres
}

type waypointJSON struct {
	Position   positionJSON `json:"position"`
	TurnRadius *float64     `json:"turn_radius"` // metres
	Leg        *legJSON     `json:"leg"`
}

type staticJSON struct {
	ID       int     `json:"id"`
	Length   float64 `json:"length"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	SpeedMax float64 `json:"speed_max"` // knots
	SpeedMin float64 `json:"speed_min"` // knots
	MMSI     int     `json:"mmsi"`
	Name     string  `json:"name"`
	ShipType string  `json:"ship_type"`
}

type shipJSON struct {
	Static    *staticJSON    `json:"static"`
	Initial   *initialJSON   `json:"initial"`
	Waypoints []waypointJSON `json:"waypoints"`
}

type encounterJSON struct {
	DesiredEncounterType string          `json:"desired_encounter_type"`
	Beta                 json.RawMessage `json:"beta"`           // degrees: number, [min, max], or absent
	RelativeSpeed        *float64        `json:"relative_speed"` // ratio
	VectorTime           *float64        `json:"vector_time"`    // minutes
}

type situationJSON struct {
	Title         string          `json:"title"`
	CommonVector  float64         `json:"common_vector"` // minutes
	NumSituations int             `json:"num_situations"`
	OwnShip       *shipJSON       `json:"own_ship"`
	Encounters    []encounterJSON `json:"encounter"`
}

// ReadEncounterSettings reads the settings file, accepting JSON or YAML
// depending on the file extension, and normalizes all units.
func ReadEncounterSettings(path string) (model.EncounterSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.EncounterSettings{}, fmt.Errorf("read settings %q: %w", path, err)
	}

	var payload settingsJSON
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &payload); err != nil {
			return model.EncounterSettings{}, fmt.Errorf("parse settings %q: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &payload); err != nil {
			return model.EncounterSettings{}, fmt.Errorf("parse settings %q: %w", path, err)
		}
	}

	settings := model.EncounterSettings{
		Classification: model.EncounterClassification{
			Theta13Criteria: degToRad(payload.Classification.Theta13Criteria),
			Theta14Criteria: degToRad(payload.Classification.Theta14Criteria),
			Theta15Criteria: degToRad(payload.Classification.Theta15Criteria),
			Theta15: [2]float64{
				degToRad(payload.Classification.Theta15[0]),
				degToRad(payload.Classification.Theta15[1]),
			},
		},
		RelativeSpeed: model.EncounterRelativeSpeed{
			OvertakingStandOn: model.RelativeSpeedRange(payload.RelativeSpeed.OvertakingStandOn),
			OvertakingGiveWay: model.RelativeSpeedRange(payload.RelativeSpeed.OvertakingGiveWay),
			HeadOn:            model.RelativeSpeedRange(payload.RelativeSpeed.HeadOn),
			CrossingGiveWay:   model.RelativeSpeedRange(payload.RelativeSpeed.CrossingGiveWay),
			CrossingStandOn:   model.RelativeSpeedRange(payload.RelativeSpeed.CrossingStandOn),
		},
		VectorRange: [2]float64{
			minutesToSeconds(payload.VectorRange[0]),
			minutesToSeconds(payload.VectorRange[1]),
		},
		SituationLength:    minutesToSeconds(payload.SituationLength),
		MaxMeetingDistance: nmToMeters(payload.MaxMeetingDistance),
		EvolveTime:         minutesToSeconds(payload.EvolveTime),
		CommonVector:       minutesToSeconds(payload.CommonVector),
		DisableLandCheck:   payload.DisableLandCheck,
	}

	if settings.VectorRange[1] < settings.VectorRange[0] {
		return model.EncounterSettings{}, fmt.Errorf("settings %q: vector_range max below min", path)
	}
	if settings.SituationLength <= 0 {
		return model.EncounterSettings{}, fmt.Errorf("settings %q: situation_length must be positive", path)
	}

	return settings, nil
}

// ReadOwnShip reads the own ship file.
func ReadOwnShip(path string) (model.Ship, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Ship{}, fmt.Errorf("read own ship %q: %w", path, err)
	}

	var payload shipJSON
	if err := json.Unmarshal(data, &payload); err != nil {
		return model.Ship{}, fmt.Errorf("parse own ship %q: %w", path, err)
	}
	ship, err := shipFromJSON(payload)
	if err != nil {
		return model.Ship{}, fmt.Errorf("own ship %q: %w", path, err)
	}
	if ship.Initial == nil {
		return model.Ship{}, fmt.Errorf("own ship %q: missing initial state", path)
	}
	return ship, nil
}

// ReadTargetShipFolder reads every *.json file in the folder as a target ship
// template, sorted by file name so template order is stable.
func ReadTargetShipFolder(folder string) ([]model.ShipStatic, error) {
	names, err := jsonFilesIn(folder)
	if err != nil {
		return nil, fmt.Errorf("read target ships: %w", err)
	}

	templates := make([]model.ShipStatic, 0, len(names))
	for _, name := range names {
		path := filepath.Join(folder, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read target ship %q: %w", path, err)
		}
		var payload shipJSON
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("parse target ship %q: %w", path, err)
		}
		if payload.Static == nil {
			return nil, fmt.Errorf("target ship %q: missing static data", path)
		}
		templates = append(templates, staticFromJSON(*payload.Static))
	}
	return templates, nil
}

// ReadSituationFolder reads every *.json file in the folder as a requested
// traffic situation, recording the source file name on each.
func ReadSituationFolder(folder string) ([]model.Situation, error) {
	names, err := jsonFilesIn(folder)
	if err != nil {
		return nil, fmt.Errorf("read situations: %w", err)
	}

	situations := make([]model.Situation, 0, len(names))
	for _, name := range names {
		path := filepath.Join(folder, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read situation %q: %w", path, err)
		}
		situation, err := ParseSituation(data)
		if err != nil {
			return nil, fmt.Errorf("situation %q: %w", path, err)
		}
		situation.InputFileName = name
		situations = append(situations, situation)
	}
	return situations, nil
}

// ParseSituation decodes one situation request from JSON and normalizes its
// units. It is used both by the folder reader and the HTTP API.
func ParseSituation(data []byte) (model.Situation, error) {
	var payload situationJSON
	if err := json.Unmarshal(data, &payload); err != nil {
		return model.Situation{}, fmt.Errorf("parse situation: %w", err)
	}

	situation := model.Situation{
		Title:         payload.Title,
		CommonVector:  minutesToSeconds(payload.CommonVector),
		NumSituations: payload.NumSituations,
	}

	if payload.OwnShip != nil {
		ship, err := shipFromJSON(*payload.OwnShip)
		if err != nil {
			return model.Situation{}, err
		}
		situation.OwnShip = &ship
	}

	for i, enc := range payload.Encounters {
		encounterType := model.EncounterType(enc.DesiredEncounterType)
		if !encounterType.Valid() {
			return model.Situation{}, fmt.Errorf("encounter %d: unknown type %q", i+1, enc.DesiredEncounterType)
		}

		beta, err := betaFromJSON(enc.Beta)
		if err != nil {
			return model.Situation{}, fmt.Errorf("encounter %d: %w", i+1, err)
		}

		encounter := model.Encounter{
			DesiredEncounterType: encounterType,
			Beta:                 beta,
			RelativeSpeed:        enc.RelativeSpeed,
		}
		if enc.VectorTime != nil {
			seconds := minutesToSeconds(*enc.VectorTime)
			encounter.VectorTime = &seconds
		}
		situation.Encounters = append(situation.Encounters, encounter)
	}

	return situation, nil
}

// betaFromJSON resolves the polymorphic beta field: a number is a fixed
// bearing, a two-element array is a sampling range, and absence leaves the
// bearing to the generator.
func betaFromJSON(raw json.RawMessage) (model.BetaSpec, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return model.BetaSpec{}, nil
	}

	var fixed float64
	if err := json.Unmarshal(raw, &fixed); err == nil {
		return model.FixedBeta(degToRad(fixed)), nil
	}

	var bounds [2]float64
	if err := json.Unmarshal(raw, &bounds); err == nil {
		if bounds[1] < bounds[0] {
			return model.BetaSpec{}, fmt.Errorf("beta range max below min")
		}
		return model.BetaWithin(degToRad(bounds[0]), degToRad(bounds[1])), nil
	}

	return model.BetaSpec{}, fmt.Errorf("beta must be a number or a [min, max] pair")
}

func shipFromJSON(payload shipJSON) (model.Ship, error) {
	var ship model.Ship

	if payload.Static != nil {
		static := staticFromJSON(*payload.Static)
		ship.Static = &static
	}

	if payload.Initial != nil {
		ship.Initial = &model.Initial{
			Position: model.GeoPosition{
				Latitude:  degToRad(payload.Initial.Position.Latitude),
				Longitude: degToRad(payload.Initial.Position.Longitude),
			},
			SOG:       knotsToMS(payload.Initial.SOG),
			COG:       degToRad(payload.Initial.COG),
			Heading:   degToRad(payload.Initial.Heading),
			NavStatus: model.NavStatusUnderWayUsingEngine,
		}
	}

	for _, wp := range payload.Waypoints {
		waypoint := model.Waypoint{
			Position: model.GeoPosition{
				Latitude:  degToRad(wp.Position.Latitude),
				Longitude: degToRad(wp.Position.Longitude),
			},
			TurnRadius: wp.TurnRadius,
		}
		if wp.Leg != nil {
			leg := &model.Leg{
				XTDPort:      wp.Leg.XTDPort,
				XTDStarboard: wp.Leg.XTDStarboard,
			}
			if wp.Leg.Speed != nil {
				speed := knotsToMS(*wp.Leg.Speed)
				leg.Speed = &speed
			}
			waypoint.Leg = leg
		}
		ship.Waypoints = append(ship.Waypoints, waypoint)
	}

	return ship, nil
}

func staticFromJSON(payload staticJSON) model.ShipStatic {
	return model.ShipStatic{
		ID:       payload.ID,
		Length:   payload.Length,
		Width:    payload.Width,
		Height:   payload.Height,
		SpeedMax: knotsToMS(payload.SpeedMax),
		SpeedMin: knotsToMS(payload.SpeedMin),
		MMSI:     payload.MMSI,
		Name:     payload.Name,
		ShipType: model.ShipType(payload.ShipType),
	}
}

// jsonFilesIn lists the *.json file names in a folder, sorted.
func jsonFilesIn(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}
