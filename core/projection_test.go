package core

import (
	"math"
	"testing"

	"github.com/seawaysim/traffic-generator/model"
)

func TestSsa(t *testing.T) {
	cases := []struct {
		name  string
		angle float64
		want  float64
	}{
		{"zero", 0, 0},
		{"quarter turn", math.Pi / 2, math.Pi / 2},
		{"pi maps to minus pi", math.Pi, -math.Pi},
		{"minus pi stays", -math.Pi, -math.Pi},
		{"three half pi", 3 * math.Pi / 2, -math.Pi / 2},
		{"full turn", 2 * math.Pi, 0},
		{"beyond full turn", 5 * math.Pi / 2, math.Pi / 2},
		{"large negative", -5 * math.Pi / 2, -math.Pi / 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Ssa(tc.angle)
			if math.Abs(got-tc.want) > 1e-12 {
				t.Errorf("Ssa(%v) = %v, want %v", tc.angle, got, tc.want)
			}
		})
	}
}

func TestFlatLLHRoundTrip(t *testing.T) {
	refs := []model.GeoPosition{
		{Latitude: 0, Longitude: 0},
		{Latitude: 59 * math.Pi / 180, Longitude: 10.5 * math.Pi / 180},
		{Latitude: -33.8 * math.Pi / 180, Longitude: 151.2 * math.Pi / 180},
	}
	offsets := []model.LocalPosition{
		{North: 0, East: 0},
		{North: 1000, East: 0},
		{North: 0, East: -2500},
		{North: -12000, East: 7500},
	}

	for _, ref := range refs {
		for _, offset := range offsets {
			pos := Flat2LLH(offset, ref)
			back := LLH2Flat(pos, ref)
			if math.Abs(back.North-offset.North) > 1e-6 || math.Abs(back.East-offset.East) > 1e-6 {
				t.Errorf("round trip at ref %+v for offset %+v gave %+v", ref, offset, back)
			}
		}
	}
}

func TestFlat2LLHDirections(t *testing.T) {
	ref := model.GeoPosition{Latitude: 59 * math.Pi / 180, Longitude: 10.5 * math.Pi / 180}

	north := Flat2LLH(model.LocalPosition{North: 1000}, ref)
	if north.Latitude <= ref.Latitude {
		t.Errorf("northward offset should raise latitude, got %v <= %v", north.Latitude, ref.Latitude)
	}
	if math.Abs(north.Longitude-ref.Longitude) > 1e-15 {
		t.Errorf("northward offset should keep longitude, got %v", north.Longitude)
	}

	east := Flat2LLH(model.LocalPosition{East: 1000}, ref)
	if east.Longitude <= ref.Longitude {
		t.Errorf("eastward offset should raise longitude, got %v <= %v", east.Longitude, ref.Longitude)
	}
	if math.Abs(east.Latitude-ref.Latitude) > 1e-15 {
		t.Errorf("eastward offset should keep latitude, got %v", east.Latitude)
	}
}

func TestEarthRadiiAtEquator(t *testing.T) {
	rn, rm := earthRadii(0)
	if math.Abs(rn-semiMajorAxis) > 1e-6 {
		t.Errorf("rn at equator = %v, want %v", rn, semiMajorAxis)
	}
	wantRm := semiMajorAxis * (1 - eccentricitySq)
	if math.Abs(rm-wantRm) > 1e-6 {
		t.Errorf("rm at equator = %v, want %v", rm, wantRm)
	}
	if rm >= rn {
		t.Errorf("meridian radius should be smaller than prime vertical radius at the equator, got rm=%v rn=%v", rm, rn)
	}
}
