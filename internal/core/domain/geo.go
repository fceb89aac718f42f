package domain

// Coordinate is a geographic point in degrees (WGS 84).
// Latitude is in [-90, 90] and Longitude in [-180, 180]; values come straight
// from the directory API and are not range-checked.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// FromLonLat builds a Coordinate from a GeoJSON-ordered [lon, lat] pair.
func FromLonLat(lon, lat float64) Coordinate {
	return Coordinate{Latitude: lat, Longitude: lon}
}
