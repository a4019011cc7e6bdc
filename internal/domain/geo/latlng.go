package geo

import (
	"fmt"
	"math"
)

// LatLng is a WGS84 position in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Origin is where hidden markers are parked.
var Origin = LatLng{}

// NewLatLng validates and creates a LatLng.
func NewLatLng(lat, lng float64) (LatLng, error) {
	p := LatLng{Lat: lat, Lng: lng}
	if !p.Valid() {
		return LatLng{}, fmt.Errorf("invalid coordinates (%g, %g)", lat, lng)
	}
	return p, nil
}

// Valid reports whether the position is a finite coordinate within WGS84 bounds.
func (p LatLng) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// IsOrigin reports whether the position is (0,0).
func (p LatLng) IsOrigin() bool { return p == Origin }

// String formats the position as "lat,lng".
func (p LatLng) String() string { return fmt.Sprintf("%g,%g", p.Lat, p.Lng) }
