package kb

import (
	"math"
	"testing"

	"github.com/seawaysim/traffic-generator/model"
)

func ownShipFixture() model.Ship {
	return model.Ship{
		Static: &model.ShipStatic{Name: "BASTO VI", SpeedMax: 9},
		Initial: &model.Initial{
			Position: model.GeoPosition{Latitude: 59 * math.Pi / 180, Longitude: 10.5 * math.Pi / 180},
			SOG:      7,
		},
	}
}

func TestSetOwnShipRequiresInitialState(t *testing.T) {
	store := NewShipStore()
	if err := store.SetOwnShip(model.Ship{}); err == nil {
		t.Fatal("expected an error for a ship without an initial state")
	}
	if _, ok := store.OwnShip(); ok {
		t.Error("store should stay empty after a rejected own ship")
	}
}

func TestOwnShipReturnsCopies(t *testing.T) {
	store := NewShipStore()
	original := ownShipFixture()
	if err := store.SetOwnShip(original); err != nil {
		t.Fatalf("SetOwnShip: %v", err)
	}

	// Mutating the caller's ship after registration must not leak in.
	original.Initial.SOG = 99
	got, ok := store.OwnShip()
	if !ok {
		t.Fatal("own ship missing")
	}
	if got.Initial.SOG != 7 {
		t.Errorf("stored own ship mutated through the caller: SOG = %v", got.Initial.SOG)
	}

	// Mutating the returned copy must not leak back.
	got.Initial.SOG = 1
	again, _ := store.OwnShip()
	if again.Initial.SOG != 7 {
		t.Errorf("stored own ship mutated through a returned copy: SOG = %v", again.Initial.SOG)
	}
}

func TestAddTemplateValidation(t *testing.T) {
	store := NewShipStore()

	if err := store.AddTemplate(model.ShipStatic{SpeedMax: 10}); err == nil {
		t.Error("expected an error for a nameless template")
	}
	if err := store.AddTemplate(model.ShipStatic{Name: "ADRIFT", SpeedMax: 0}); err == nil {
		t.Error("expected an error for a non-positive max speed")
	}
	if err := store.AddTemplate(model.ShipStatic{Name: "TENTO", SpeedMax: 10}); err != nil {
		t.Fatalf("AddTemplate: %v", err)
	}
	if err := store.AddTemplate(model.ShipStatic{Name: "TENTO", SpeedMax: 12}); err == nil {
		t.Error("expected an error for a duplicate template name")
	}
}

func TestTemplatesSnapshot(t *testing.T) {
	store := NewShipStore()
	for _, name := range []string{"TENTO", "MOL CHARISMA"} {
		if err := store.AddTemplate(model.ShipStatic{Name: name, SpeedMax: 10}); err != nil {
			t.Fatalf("AddTemplate(%s): %v", name, err)
		}
	}

	templates := store.Templates()
	if len(templates) != 2 {
		t.Fatalf("got %d templates, want 2", len(templates))
	}

	// The snapshot is decoupled from the store.
	templates[0].Name = "changed"
	fresh := store.Templates()
	if fresh[0].Name != "TENTO" {
		t.Errorf("store mutated through a snapshot: %+v", fresh[0])
	}
}

func TestTemplateByName(t *testing.T) {
	store := NewShipStore()
	if err := store.AddTemplate(model.ShipStatic{Name: "TENTO", SpeedMax: 10}); err != nil {
		t.Fatalf("AddTemplate: %v", err)
	}

	got, ok := store.TemplateByName("TENTO")
	if !ok || got.SpeedMax != 10 {
		t.Errorf("TemplateByName = %+v, %v", got, ok)
	}
	if _, ok := store.TemplateByName("GHOST"); ok {
		t.Error("lookup of an unknown template should fail")
	}
}
