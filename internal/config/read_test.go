package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/seawaysim/traffic-generator/model"
)

const settingsBodyJSON = `{
	"classification": {
		"theta13_criteria": 67.5,
		"theta14_criteria": 10.0,
		"theta15_criteria": 112.5,
		"theta15": [112.5, 247.5]
	},
	"relative_speed": {
		"overtaking_stand_on": [1.5, 2.0],
		"overtaking_give_way": [0.4, 0.8],
		"head_on": [0.8, 1.2],
		"crossing_give_way": [0.8, 1.2],
		"crossing_stand_on": [0.8, 1.2]
	},
	"vector_range": [10, 30],
	"situation_length": 60,
	"max_meeting_distance": 1.0,
	"evolve_time": 10,
	"common_vector": 10,
	"disable_land_check": true
}`

const settingsBodyYAML = `classification:
  theta13_criteria: 67.5
  theta14_criteria: 10.0
  theta15_criteria: 112.5
  theta15: [112.5, 247.5]
relative_speed:
  overtaking_stand_on: [1.5, 2.0]
  overtaking_give_way: [0.4, 0.8]
  head_on: [0.8, 1.2]
  crossing_give_way: [0.8, 1.2]
  crossing_stand_on: [0.8, 1.2]
vector_range: [10, 30]
situation_length: 60
max_meeting_distance: 1.0
evolve_time: 10
common_vector: 10
disable_land_check: true
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func checkSettings(t *testing.T, settings model.EncounterSettings) {
	t.Helper()

	if got, want := settings.Classification.Theta13Criteria, degToRad(67.5); math.Abs(got-want) > 1e-12 {
		t.Errorf("Theta13Criteria = %v, want %v", got, want)
	}
	if got, want := settings.Classification.Theta15[1], degToRad(247.5); math.Abs(got-want) > 1e-12 {
		t.Errorf("Theta15[1] = %v, want %v", got, want)
	}
	if settings.VectorRange != [2]float64{600, 1800} {
		t.Errorf("VectorRange = %v, want seconds [600 1800]", settings.VectorRange)
	}
	if settings.SituationLength != 3600 {
		t.Errorf("SituationLength = %v, want 3600 s", settings.SituationLength)
	}
	if math.Abs(settings.MaxMeetingDistance-1852) > 1e-9 {
		t.Errorf("MaxMeetingDistance = %v, want 1852 m", settings.MaxMeetingDistance)
	}
	if settings.EvolveTime != 600 || settings.CommonVector != 600 {
		t.Errorf("EvolveTime/CommonVector = %v/%v, want 600/600", settings.EvolveTime, settings.CommonVector)
	}
	if settings.RelativeSpeed.HeadOn != (model.RelativeSpeedRange{0.8, 1.2}) {
		t.Errorf("head-on relative speed = %v", settings.RelativeSpeed.HeadOn)
	}
	if !settings.DisableLandCheck {
		t.Error("DisableLandCheck not carried over")
	}
}

func TestReadEncounterSettingsJSON(t *testing.T) {
	path := writeFile(t, "settings.json", settingsBodyJSON)
	settings, err := ReadEncounterSettings(path)
	if err != nil {
		t.Fatalf("ReadEncounterSettings: %v", err)
	}
	checkSettings(t, settings)
}

func TestReadEncounterSettingsYAML(t *testing.T) {
	path := writeFile(t, "settings.yaml", settingsBodyYAML)
	settings, err := ReadEncounterSettings(path)
	if err != nil {
		t.Fatalf("ReadEncounterSettings: %v", err)
	}
	checkSettings(t, settings)
}

func TestReadEncounterSettingsErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if _, err := ReadEncounterSettings(filepath.Join(t.TempDir(), "absent.json")); err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("inverted vector range", func(t *testing.T) {
		path := writeFile(t, "settings.json", `{"vector_range": [30, 10], "situation_length": 60}`)
		if _, err := ReadEncounterSettings(path); err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("zero situation length", func(t *testing.T) {
		path := writeFile(t, "settings.json", `{"vector_range": [10, 30], "situation_length": 0}`)
		if _, err := ReadEncounterSettings(path); err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		path := writeFile(t, "settings.json", `{`)
		if _, err := ReadEncounterSettings(path); err == nil {
			t.Fatal("expected an error")
		}
	})
}

func TestReadOwnShip(t *testing.T) {
	body := `{
		"static": {"id": 0, "length": 190, "width": 28, "speed_max": 18, "name": "BASTO VI", "ship_type": "Passenger/Ro-Ro Cargo Ship"},
		"initial": {"position": {"latitude": 59.0, "longitude": 10.5}, "sog": 10, "cog": 45, "heading": 45}
	}`
	path := writeFile(t, "own_ship.json", body)

	ship, err := ReadOwnShip(path)
	if err != nil {
		t.Fatalf("ReadOwnShip: %v", err)
	}
	if ship.Static == nil || ship.Static.Name != "BASTO VI" {
		t.Errorf("static data = %+v", ship.Static)
	}
	if math.Abs(ship.Initial.Position.Latitude-degToRad(59)) > 1e-12 {
		t.Errorf("latitude = %v, want %v rad", ship.Initial.Position.Latitude, degToRad(59))
	}
	if math.Abs(ship.Initial.SOG-knotsToMS(10)) > 1e-12 {
		t.Errorf("SOG = %v m/s, want %v", ship.Initial.SOG, knotsToMS(10))
	}
	if math.Abs(ship.Initial.COG-math.Pi/4) > 1e-12 {
		t.Errorf("COG = %v, want pi/4", ship.Initial.COG)
	}
	if ship.Initial.NavStatus != model.NavStatusUnderWayUsingEngine {
		t.Errorf("nav status = %v", ship.Initial.NavStatus)
	}
}

func TestReadOwnShipMissingInitial(t *testing.T) {
	path := writeFile(t, "own_ship.json", `{"static": {"name": "X"}}`)
	if _, err := ReadOwnShip(path); err == nil {
		t.Fatal("expected an error for a ship without an initial state")
	}
}

func TestReadTargetShipFolder(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	write("b_tanker.json", `{"static": {"id": 2, "speed_max": 14, "name": "TANKER", "ship_type": "General Cargo Ship"}}`)
	write("a_cargo.json", `{"static": {"id": 1, "speed_max": 20, "name": "CARGO", "ship_type": "General Cargo Ship"}}`)
	write("readme.txt", "not a template")

	templates, err := ReadTargetShipFolder(dir)
	if err != nil {
		t.Fatalf("ReadTargetShipFolder: %v", err)
	}
	if len(templates) != 2 {
		t.Fatalf("got %d templates, want 2", len(templates))
	}
	// Sorted by file name, so the cargo ship comes first.
	if templates[0].Name != "CARGO" || templates[1].Name != "TANKER" {
		t.Errorf("template order = %q, %q", templates[0].Name, templates[1].Name)
	}
	if math.Abs(templates[0].SpeedMax-knotsToMS(20)) > 1e-12 {
		t.Errorf("SpeedMax = %v m/s, want %v", templates[0].SpeedMax, knotsToMS(20))
	}
}

func TestReadTargetShipFolderMissingStatic(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "empty.json"), []byte(`{}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadTargetShipFolder(dir); err == nil {
		t.Fatal("expected an error for a template without static data")
	}
}

func TestParseSituation(t *testing.T) {
	body := `{
		"title": "head on and crossing",
		"common_vector": 10,
		"num_situations": 2,
		"encounter": [
			{"desired_encounter_type": "head-on", "beta": 180.0, "vector_time": 15},
			{"desired_encounter_type": "crossing-give-way", "beta": [45, 90], "relative_speed": 1.2},
			{"desired_encounter_type": "overtaking-stand-on"}
		]
	}`

	situation, err := ParseSituation([]byte(body))
	if err != nil {
		t.Fatalf("ParseSituation: %v", err)
	}
	if situation.Title != "head on and crossing" {
		t.Errorf("title = %q", situation.Title)
	}
	if situation.CommonVector != 600 {
		t.Errorf("common vector = %v s, want 600", situation.CommonVector)
	}
	if situation.NumSituations != 2 {
		t.Errorf("num situations = %d, want 2", situation.NumSituations)
	}
	if len(situation.Encounters) != 3 {
		t.Fatalf("got %d encounters, want 3", len(situation.Encounters))
	}

	first := situation.Encounters[0]
	if first.DesiredEncounterType != model.HeadOn {
		t.Errorf("first type = %v", first.DesiredEncounterType)
	}
	if first.Beta.Kind != model.BetaFixed || math.Abs(first.Beta.Value-math.Pi) > 1e-12 {
		t.Errorf("first beta = %+v, want fixed pi", first.Beta)
	}
	if first.VectorTime == nil || *first.VectorTime != 900 {
		t.Errorf("first vector time = %v, want 900 s", first.VectorTime)
	}

	second := situation.Encounters[1]
	if second.Beta.Kind != model.BetaRange {
		t.Fatalf("second beta kind = %v, want range", second.Beta.Kind)
	}
	if math.Abs(second.Beta.Min-degToRad(45)) > 1e-12 || math.Abs(second.Beta.Max-degToRad(90)) > 1e-12 {
		t.Errorf("second beta range = [%v, %v]", second.Beta.Min, second.Beta.Max)
	}
	if second.RelativeSpeed == nil || *second.RelativeSpeed != 1.2 {
		t.Errorf("second relative speed = %v", second.RelativeSpeed)
	}

	third := situation.Encounters[2]
	if third.Beta.Kind != model.BetaUnset {
		t.Errorf("third beta kind = %v, want unset", third.Beta.Kind)
	}
	if third.VectorTime != nil || third.RelativeSpeed != nil {
		t.Errorf("third encounter should leave sampling to the generator: %+v", third)
	}
}

func TestParseSituationErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"unknown encounter type", `{"encounter": [{"desired_encounter_type": "broadside"}]}`},
		{"beta wrong type", `{"encounter": [{"desired_encounter_type": "head-on", "beta": "ahead"}]}`},
		{"beta range inverted", `{"encounter": [{"desired_encounter_type": "head-on", "beta": [90, 45]}]}`},
		{"malformed json", `{"title":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseSituation([]byte(tc.body)); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestReadSituationFolderRecordsFileName(t *testing.T) {
	dir := t.TempDir()
	body := `{"title": "one", "encounter": [{"desired_encounter_type": "head-on"}]}`
	if err := os.WriteFile(filepath.Join(dir, "situation_01.json"), []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	situations, err := ReadSituationFolder(dir)
	if err != nil {
		t.Fatalf("ReadSituationFolder: %v", err)
	}
	if len(situations) != 1 {
		t.Fatalf("got %d situations, want 1", len(situations))
	}
	if situations[0].InputFileName != "situation_01.json" {
		t.Errorf("input file name = %q", situations[0].InputFileName)
	}
}

func TestUnitConversionsRoundTrip(t *testing.T) {
	if got := nmToMeters(1); math.Abs(got-1852) > 1e-9 {
		t.Errorf("1 nm = %v m", got)
	}
	if got := knotsToMS(1); math.Abs(got-0.5144) > 1e-9 {
		t.Errorf("1 knot = %v m/s", got)
	}
	for _, v := range []float64{0, 1, 12.5, 360} {
		if got := radToDeg(degToRad(v)); math.Abs(got-v) > 1e-9 {
			t.Errorf("deg round trip of %v gave %v", v, got)
		}
	}
	for _, v := range []float64{0, 10, 90.5} {
		if got := secondsToMinutes(minutesToSeconds(v)); math.Abs(got-v) > 1e-9 {
			t.Errorf("minutes round trip of %v gave %v", v, got)
		}
	}
	if got := metersToNM(nmToMeters(2.7)); math.Abs(got-2.7) > 1e-9 {
		t.Errorf("nm round trip gave %v", got)
	}
	if got := msToKnots(knotsToMS(14)); math.Abs(got-14) > 1e-9 {
		t.Errorf("knots round trip gave %v", got)
	}
}
