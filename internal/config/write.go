package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/seawaysim/traffic-generator/model"
)

// Output shapes mirror the input shapes, back in mariner units. Latitude and
// longitude are rounded to six decimals (roughly a tenth of a metre).

type outInitialJSON struct {
	Position  positionJSON `json:"position"`
	SOG       float64      `json:"sog"`     // knots
	COG       float64      `json:"cog"`     // degrees
	Heading   float64      `json:"heading"` // degrees
	NavStatus string       `json:"nav_status"`
}

type outShipJSON struct {
	Static    *staticJSON     `json:"static,omitempty"`
	Initial   *outInitialJSON `json:"initial,omitempty"`
	Waypoints []waypointJSON  `json:"waypoints,omitempty"`
}

type outTargetShipJSON struct {
	ID int `json:"id"`
	outShipJSON
}

type outSituationJSON struct {
	Title         string              `json:"title"`
	InputFileName string              `json:"input_file_name,omitempty"`
	CommonVector  float64             `json:"common_vector"` // minutes
	LatLon0       [2]float64          `json:"lat_lon_0"`     // degrees
	OwnShip       *outShipJSON        `json:"own_ship,omitempty"`
	TargetShips   []outTargetShipJSON `json:"target_ship"`
}

// MarshalSituation serializes one generated situation to indented JSON in the
// on-disk output format.
func MarshalSituation(situation model.Situation) ([]byte, error) {
	payload := situationToJSON(situation)
	data, err := json.MarshalIndent(payload, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("marshal situation %q: %w", situation.Title, err)
	}
	return data, nil
}

// MarshalSituations serializes a list of generated situations, used by the
// HTTP API response.
func MarshalSituations(situations []model.Situation) ([]byte, error) {
	payloads := make([]outSituationJSON, 0, len(situations))
	for _, s := range situations {
		payloads = append(payloads, situationToJSON(s))
	}
	data, err := json.Marshal(payloads)
	if err != nil {
		return nil, fmt.Errorf("marshal situations: %w", err)
	}
	return data, nil
}

// WriteTrafficSituations writes each situation to
// <folder>/traffic_situation_NN.json, creating the folder when missing.
func WriteTrafficSituations(folder string, situations []model.Situation) error {
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return fmt.Errorf("create output folder %q: %w", folder, err)
	}

	for i, situation := range situations {
		data, err := MarshalSituation(situation)
		if err != nil {
			return err
		}
		name := fmt.Sprintf("traffic_situation_%02d.json", i+1)
		path := filepath.Join(folder, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write situation %q: %w", path, err)
		}
	}
	return nil
}

func situationToJSON(situation model.Situation) outSituationJSON {
	out := outSituationJSON{
		Title:         situation.Title,
		InputFileName: situation.InputFileName,
		CommonVector:  secondsToMinutes(situation.CommonVector),
		LatLon0: [2]float64{
			roundDeg(radToDeg(situation.Origin.Latitude)),
			roundDeg(radToDeg(situation.Origin.Longitude)),
		},
		TargetShips: []outTargetShipJSON{},
	}

	if situation.OwnShip != nil {
		ship := shipToJSON(*situation.OwnShip)
		out.OwnShip = &ship
	}
	for _, target := range situation.TargetShips {
		out.TargetShips = append(out.TargetShips, outTargetShipJSON{
			ID:          target.ID,
			outShipJSON: shipToJSON(target.Ship),
		})
	}
	return out
}

func shipToJSON(ship model.Ship) outShipJSON {
	var out outShipJSON

	if ship.Static != nil {
		out.Static = &staticJSON{
			ID:       ship.Static.ID,
			Length:   ship.Static.Length,
			Width:    ship.Static.Width,
			Height:   ship.Static.Height,
			SpeedMax: msToKnots(ship.Static.SpeedMax),
			SpeedMin: msToKnots(ship.Static.SpeedMin),
			MMSI:     ship.Static.MMSI,
			Name:     ship.Static.Name,
			ShipType: string(ship.Static.ShipType),
		}
	}

	if ship.Initial != nil {
		out.Initial = &outInitialJSON{
			Position: positionJSON{
				Latitude:  roundDeg(radToDeg(ship.Initial.Position.Latitude)),
				Longitude: roundDeg(radToDeg(ship.Initial.Position.Longitude)),
			},
			SOG:       msToKnots(ship.Initial.SOG),
			COG:       radToDeg(ship.Initial.COG),
			Heading:   radToDeg(ship.Initial.Heading),
			NavStatus: navStatusString(ship.Initial.NavStatus),
		}
	}

	for _, wp := range ship.Waypoints {
		waypoint := waypointJSON{
			Position: positionJSON{
				Latitude:  roundDeg(radToDeg(wp.Position.Latitude)),
				Longitude: roundDeg(radToDeg(wp.Position.Longitude)),
			},
			TurnRadius: wp.TurnRadius,
		}
		if wp.Leg != nil {
			leg := &legJSON{
				XTDPort:      wp.Leg.XTDPort,
				XTDStarboard: wp.Leg.XTDStarboard,
			}
			if wp.Leg.Speed != nil {
				speed := msToKnots(*wp.Leg.Speed)
				leg.Speed = &speed
			}
			waypoint.Leg = leg
		}
		out.Waypoints = append(out.Waypoints, waypoint)
	}

	return out
}

func navStatusString(status model.NavStatus) string {
	switch status {
	case model.NavStatusUnderWayUsingEngine:
		return "Under way using engine"
	case model.NavStatusAtAnchor:
		return "At anchor"
	case model.NavStatusNotUnderCommand:
		return "Not under command"
	case model.NavStatusMoored:
		return "Moored"
	}
	return "Undefined"
}

// roundDeg rounds degrees to six decimals.
func roundDeg(deg float64) float64 {
	return math.Round(deg*1e6) / 1e6
}
