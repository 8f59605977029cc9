package model

// NavStatus enumerates AIS navigational status values used by generated ships.
type NavStatus int

const (
	NavStatusUnderWayUsingEngine NavStatus = iota
	NavStatusAtAnchor
	NavStatusNotUnderCommand
	NavStatusMoored
)

// ShipType enumerates the vessel categories available as target ship templates.
type ShipType string

const (
	ShipTypePassengerRoRo ShipType = "Passenger/Ro-Ro Cargo Ship"
	ShipTypeGeneralCargo  ShipType = "General Cargo Ship"
	ShipTypeFishing       ShipType = "Fishing"
	ShipTypeMilitary      ShipType = "Military ops"
)

// GeoPosition is a WGS-84 geodetic position. Latitude and longitude are in
// radians; latitude in [-pi/2, pi/2], longitude normalized to (-pi, pi].
type GeoPosition struct {
	Latitude  float64
	Longitude float64
}

// LocalPosition is a position in a local flat-earth frame, in metres north and
// east of an implicit reference GeoPosition.
type LocalPosition struct {
	North float64
	East  float64
}

// Leg carries per-leg overrides for the track segment starting at a waypoint.
// A nil Speed means the ship keeps its initial speed on that leg.
type Leg struct {
	Speed        *float64 // m/s
	XTDPort      *float64 // metres
	XTDStarboard *float64 // metres
}

// Waypoint is one point of a ship's planned track.
type Waypoint struct {
	Position   GeoPosition
	TurnRadius *float64 // metres
	Leg        *Leg
}

// Initial is a ship's kinematic state at the start of a situation.
// Angles are radians, speed is m/s.
type Initial struct {
	Position  GeoPosition
	SOG       float64 // speed over ground
	COG       float64 // course over ground, [0, 2*pi)
	Heading   float64
	NavStatus NavStatus
}

// ShipStatic is immutable template data for a vessel. The encounter solver
// only reads SpeedMax; the remaining fields pass through to the output.
type ShipStatic struct {
	ID       int
	Length   float64 // metres
	Width    float64 // metres
	Height   float64 // metres
	SpeedMax float64 // m/s
	SpeedMin float64 // m/s
	MMSI     int
	Name     string
	ShipType ShipType
}

// Ship combines static template data with an initial pose and planned track.
type Ship struct {
	Static    *ShipStatic
	Initial   *Initial
	Waypoints []Waypoint
}

// TargetShip is a ship generated to meet the own ship in a desired encounter.
type TargetShip struct {
	Ship
	ID int
}
