package geo

import (
	"errors"
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula
const EarthRadiusKm = 6371.0

var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Coordinate is a WGS 84 point in degrees
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewCoordinate builds a validated Coordinate
func NewCoordinate(latitude, longitude float64) (Coordinate, error) {
	c := Coordinate{Latitude: latitude, Longitude: longitude}
	if err := Validate(c); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

// IsValidLatitude reports whether latitude lies in [-90, 90]
func IsValidLatitude(latitude float64) bool {
	return latitude >= -90.0 && latitude <= 90.0
}

// IsValidLongitude reports whether longitude lies in [-180, 180]
func IsValidLongitude(longitude float64) bool {
	return longitude >= -180.0 && longitude <= 180.0
}

// Validate rejects out-of-range coordinates. NaN fails both range checks.
func Validate(c Coordinate) error {
	if !IsValidLatitude(c.Latitude) {
		return fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrInvalidCoordinate, c.Latitude)
	}
	if !IsValidLongitude(c.Longitude) {
		return fmt.Errorf("%w: longitude %v out of range [-180, 180]", ErrInvalidCoordinate, c.Longitude)
	}
	return nil
}

// DistanceKm returns the great-circle distance between a and b in kilometers
func DistanceKm(a, b Coordinate) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

func toRadians(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}
