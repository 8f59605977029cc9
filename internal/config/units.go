package config

import "math"

// File payloads use mariner-friendly units: degrees, knots, minutes, and
// nautical miles. The solver works in radians, m/s, seconds, and metres, so
// everything is normalized here, before the core ever sees it.

const (
	metersPerNauticalMile  = 1852.0
	metersPerSecondPerKnot = 0.5144
)

func degToRad(deg float64) float64 { return deg * math.Pi / 180 }

func radToDeg(rad float64) float64 { return rad * 180 / math.Pi }

func knotsToMS(knots float64) float64 { return knots * metersPerSecondPerKnot }

func msToKnots(ms float64) float64 { return ms / metersPerSecondPerKnot }

func minutesToSeconds(minutes float64) float64 { return minutes * 60 }

func secondsToMinutes(seconds float64) float64 { return seconds / 60 }

func nmToMeters(nm float64) float64 { return nm * metersPerNauticalMile }

func metersToNM(m float64) float64 { return m / metersPerNauticalMile }
