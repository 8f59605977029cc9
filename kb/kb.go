// Package kb holds the in-memory knowledge base of ship data a generation run
// works from: the own ship definition and the target ship templates read from
// configuration files.
package kb

import (
	"fmt"
	"sync"

	"github.com/seawaysim/traffic-generator/model"
)

// ShipStore is an in-memory, thread-safe store for the own ship and target
// ship templates. The generator reads snapshots; nothing is mutated during a
// generation run.
type ShipStore struct {
	mu sync.RWMutex

	ownShip   *model.Ship
	templates []model.ShipStatic
	byName    map[string]int
}

// NewShipStore constructs an empty store.
func NewShipStore() *ShipStore {
	return &ShipStore{
		byName: make(map[string]int),
	}
}

// SetOwnShip registers the own ship. The ship must carry an initial state.
func (s *ShipStore) SetOwnShip(ship model.Ship) error {
	if ship.Initial == nil {
		return fmt.Errorf("own ship has no initial state")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	copied := ship
	initial := *ship.Initial
	copied.Initial = &initial
	if len(ship.Waypoints) > 0 {
		copied.Waypoints = append([]model.Waypoint(nil), ship.Waypoints...)
	}
	s.ownShip = &copied
	return nil
}

// OwnShip returns a copy of the registered own ship, or false when none is set.
func (s *ShipStore) OwnShip() (model.Ship, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.ownShip == nil {
		return model.Ship{}, false
	}
	ship := *s.ownShip
	initial := *s.ownShip.Initial
	ship.Initial = &initial
	if len(s.ownShip.Waypoints) > 0 {
		ship.Waypoints = append([]model.Waypoint(nil), s.ownShip.Waypoints...)
	}
	return ship, true
}

// AddTemplate registers a target ship template. It returns an error when a
// template with the same name already exists.
func (s *ShipStore) AddTemplate(static model.ShipStatic) error {
	if static.Name == "" {
		return fmt.Errorf("target ship template has no name")
	}
	if static.SpeedMax <= 0 {
		return fmt.Errorf("target ship template %q has non-positive max speed", static.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[static.Name]; exists {
		return fmt.Errorf("target ship template %q already exists", static.Name)
	}
	s.byName[static.Name] = len(s.templates)
	s.templates = append(s.templates, static)
	return nil
}

// Templates returns a snapshot slice of all target ship templates.
func (s *ShipStore) Templates() []model.ShipStatic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.ShipStatic(nil), s.templates...)
}

// TemplateByName returns the template with the given name.
func (s *ShipStore) TemplateByName(name string) (model.ShipStatic, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byName[name]
	if !ok {
		return model.ShipStatic{}, false
	}
	return s.templates[idx], true
}
