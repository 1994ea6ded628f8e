package models

import "github.com/paulmach/orb"

type Provider string

const (
	ProviderKandilli Provider = "Kandilli"
	ProviderAFAD     Provider = "AFAD"
	ProviderUSGS     Provider = "USGS"
)

// Earthquake is one event as normalized from a feed. Values are replaced
// wholesale on every fetch and never modified in place.
type Earthquake struct {
	ID        string   `json:"id"`
	Date      string   `json:"date"` // YYYY-MM-DD, feed-local
	Time      string   `json:"time"` // HH:MM:SS, feed-local
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Depth     float64  `json:"depth"` // km
	Magnitude float64  `json:"magnitude"`
	Location  string   `json:"location"`
	Provider  Provider `json:"provider"`
}

// Point returns the epicentre in GeoJSON axis order (longitude, latitude).
func (e Earthquake) Point() orb.Point {
	return orb.Point{e.Longitude, e.Latitude}
}
