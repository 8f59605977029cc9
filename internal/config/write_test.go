package config

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/seawaysim/traffic-generator/model"
)

func sampleSituation() model.Situation {
	origin := model.GeoPosition{Latitude: degToRad(59), Longitude: degToRad(10.5)}
	speed := knotsToMS(12)

	ownShip := &model.Ship{
		Static: &model.ShipStatic{
			ID: 0, Length: 190, Width: 28, SpeedMax: knotsToMS(18),
			Name: "BASTO VI", ShipType: model.ShipTypePassengerRoRo,
		},
		Initial: &model.Initial{
			Position:  origin,
			SOG:       knotsToMS(10),
			COG:       degToRad(45),
			Heading:   degToRad(45),
			NavStatus: model.NavStatusUnderWayUsingEngine,
		},
	}

	target := model.TargetShip{
		ID: 1,
		Ship: model.Ship{
			Static: &model.ShipStatic{ID: 1, SpeedMax: knotsToMS(14), Name: "TENTO", ShipType: model.ShipTypeGeneralCargo},
			Initial: &model.Initial{
				Position:  model.GeoPosition{Latitude: degToRad(59.05), Longitude: degToRad(10.52)},
				SOG:       knotsToMS(8),
				COG:       degToRad(225),
				Heading:   degToRad(225),
				NavStatus: model.NavStatusUnderWayUsingEngine,
			},
			Waypoints: []model.Waypoint{
				{Position: model.GeoPosition{Latitude: degToRad(59.05), Longitude: degToRad(10.52)}},
				{Position: model.GeoPosition{Latitude: degToRad(59.0), Longitude: degToRad(10.48)},
					Leg: &model.Leg{Speed: &speed}},
			},
		},
	}

	return model.Situation{
		Title:         "sample",
		InputFileName: "situation_01.json",
		CommonVector:  600,
		Origin:        origin,
		OwnShip:       ownShip,
		TargetShips:   []model.TargetShip{target},
	}
}

func TestMarshalSituation(t *testing.T) {
	data, err := MarshalSituation(sampleSituation())
	if err != nil {
		t.Fatalf("MarshalSituation: %v", err)
	}

	var out struct {
		Title        string     `json:"title"`
		CommonVector float64    `json:"common_vector"`
		LatLon0      [2]float64 `json:"lat_lon_0"`
		OwnShip      struct {
			Initial struct {
				SOG       float64 `json:"sog"`
				COG       float64 `json:"cog"`
				NavStatus string  `json:"nav_status"`
			} `json:"initial"`
		} `json:"own_ship"`
		TargetShips []struct {
			ID      int `json:"id"`
			Initial struct {
				Position struct {
					Latitude  float64 `json:"latitude"`
					Longitude float64 `json:"longitude"`
				} `json:"position"`
				SOG float64 `json:"sog"`
				COG float64 `json:"cog"`
			} `json:"initial"`
			Waypoints []struct {
				Leg *struct {
					Speed *float64 `json:"speed"`
				} `json:"leg"`
			} `json:"waypoints"`
		} `json:"target_ship"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}

	if out.Title != "sample" {
		t.Errorf("title = %q", out.Title)
	}
	if out.CommonVector != 10 {
		t.Errorf("common vector = %v minutes, want 10", out.CommonVector)
	}
	if math.Abs(out.LatLon0[0]-59) > 1e-6 || math.Abs(out.LatLon0[1]-10.5) > 1e-6 {
		t.Errorf("lat_lon_0 = %v, want degrees [59 10.5]", out.LatLon0)
	}
	if math.Abs(out.OwnShip.Initial.SOG-10) > 1e-9 {
		t.Errorf("own ship sog = %v knots, want 10", out.OwnShip.Initial.SOG)
	}
	if math.Abs(out.OwnShip.Initial.COG-45) > 1e-9 {
		t.Errorf("own ship cog = %v degrees, want 45", out.OwnShip.Initial.COG)
	}
	if out.OwnShip.Initial.NavStatus != "Under way using engine" {
		t.Errorf("nav status = %q", out.OwnShip.Initial.NavStatus)
	}

	if len(out.TargetShips) != 1 {
		t.Fatalf("got %d target ships, want 1", len(out.TargetShips))
	}
	ts := out.TargetShips[0]
	if ts.ID != 1 {
		t.Errorf("target id = %d", ts.ID)
	}
	if math.Abs(ts.Initial.Position.Latitude-59.05) > 1e-6 {
		t.Errorf("target latitude = %v degrees, want 59.05", ts.Initial.Position.Latitude)
	}
	if math.Abs(ts.Initial.SOG-8) > 1e-9 {
		t.Errorf("target sog = %v knots, want 8", ts.Initial.SOG)
	}
	if math.Abs(ts.Initial.COG-225) > 1e-9 {
		t.Errorf("target cog = %v degrees, want 225", ts.Initial.COG)
	}
	if len(ts.Waypoints) != 2 {
		t.Fatalf("got %d waypoints, want 2", len(ts.Waypoints))
	}
	if ts.Waypoints[1].Leg == nil || ts.Waypoints[1].Leg.Speed == nil {
		t.Fatal("second waypoint lost its leg speed")
	}
	if math.Abs(*ts.Waypoints[1].Leg.Speed-12) > 1e-9 {
		t.Errorf("leg speed = %v knots, want 12", *ts.Waypoints[1].Leg.Speed)
	}
}

func TestMarshalSituationEmptyTargets(t *testing.T) {
	situation := sampleSituation()
	situation.TargetShips = nil

	data, err := MarshalSituation(situation)
	if err != nil {
		t.Fatalf("MarshalSituation: %v", err)
	}

	var out struct {
		TargetShips []json.RawMessage `json:"target_ship"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}
	// The field must be present as an empty array, not null.
	if out.TargetShips == nil {
		t.Error("target_ship missing or null for a situation without targets")
	}
}

func TestWriteTrafficSituations(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	situations := []model.Situation{sampleSituation(), sampleSituation()}

	if err := WriteTrafficSituations(dir, situations); err != nil {
		t.Fatalf("WriteTrafficSituations: %v", err)
	}

	for _, name := range []string{"traffic_situation_01.json", "traffic_situation_02.json"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		var payload map[string]any
		if err := json.Unmarshal(data, &payload); err != nil {
			t.Fatalf("%s does not parse: %v", name, err)
		}
		if payload["title"] != "sample" {
			t.Errorf("%s title = %v", name, payload["title"])
		}
	}
}
