// Package overlay turns earthquakes, province risk and fault geometry into
// map layers. Paint order is choropleth, then faults, then markers.
package overlay

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/mr1hm/go-quake-risk/internal/faults"
	"github.com/mr1hm/go-quake-risk/internal/models"
	"github.com/mr1hm/go-quake-risk/internal/risk"
	"github.com/mr1hm/go-quake-risk/internal/severity"
)

const (
	RegionOpacity      = 0.4
	RegionHoverOpacity = 0.6
	FaultColor         = "#7C2D12"
	FaultOpacity       = 0.8
)

const (
	LayerChoropleth = "choropleth"
	LayerFaults     = "faults"
	LayerMarkers    = "markers"
)

type RegionStyle struct {
	RegionID     int          `json:"region_id"`
	Name         string       `json:"name"`
	Tier         risk.Tier    `json:"tier"`
	FillColor    string       `json:"fill_color"`
	Opacity      float64      `json:"opacity"`
	HoverOpacity float64      `json:"hover_opacity"`
	Label        string       `json:"label"`
	Geometry     orb.Geometry `json:"-"`
}

type FaultStyle struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Importance  faults.Importance `json:"importance"`
	Weight      int               `json:"weight"`
	Color       string            `json:"color"`
	Opacity     float64           `json:"opacity"`
	Lines       []orb.LineString  `json:"-"`
}

type Marker struct {
	EarthquakeID string        `json:"earthquake_id"`
	Latitude     float64       `json:"latitude"`
	Longitude    float64       `json:"longitude"`
	Magnitude    float64       `json:"magnitude"`
	Depth        float64       `json:"depth"`
	Label        string        `json:"label"`
	Severity     severity.Tier `json:"severity"`
	Color        string        `json:"color"`
	ProvinceID   int           `json:"province_id,omitempty"`
	ProvinceName string        `json:"province_name,omitempty"`
}

type Layers struct {
	Choropleth []RegionStyle `json:"choropleth"`
	Faults     []FaultStyle  `json:"faults"`
	Markers    []Marker      `json:"markers"`
}

// Compose builds all three layers. regions may be nil, in which case the
// choropleth is empty and markers carry no province.
func Compose(events []models.Earthquake, regions *Regions, segments []faults.Segment) Layers {
	return Layers{
		Choropleth: Choropleth(regions),
		Faults:     FaultLines(segments),
		Markers:    Markers(events, regions),
	}
}

// Choropleth styles every region feature. Features whose id cannot be read
// still get a style, using the fallback tier.
func Choropleth(regions *Regions) []RegionStyle {
	features := regions.Features()
	styles := make([]RegionStyle, 0, len(features))
	for _, f := range features {
		id, _ := RegionID(f)
		tier := risk.TierOf(id)
		name := RegionName(f)
		if name == "" {
			if p, ok := risk.ProvinceOf(id); ok {
				name = p.Name
			}
		}
		styles = append(styles, RegionStyle{
			RegionID:     id,
			Name:         name,
			Tier:         tier,
			FillColor:    tier.Color(),
			Opacity:      RegionOpacity,
			HoverOpacity: RegionHoverOpacity,
			Label:        tier.Label(),
			Geometry:     f.Geometry,
		})
	}
	return styles
}

func FaultLines(segments []faults.Segment) []FaultStyle {
	styles := make([]FaultStyle, 0, len(segments))
	for _, s := range segments {
		styles = append(styles, FaultStyle{
			Name:        s.Name,
			Description: s.Description,
			Importance:  s.Importance,
			Weight:      s.Importance.Weight(),
			Color:       FaultColor,
			Opacity:     FaultOpacity,
			Lines:       s.Lines(),
		})
	}
	return styles
}

func Markers(events []models.Earthquake, regions *Regions) []Marker {
	markers := make([]Marker, 0, len(events))
	for _, e := range events {
		c := severity.Classify(e.Magnitude)
		m := Marker{
			EarthquakeID: e.ID,
			Latitude:     e.Latitude,
			Longitude:    e.Longitude,
			Magnitude:    e.Magnitude,
			Depth:        e.Depth,
			Label:        MarkerLabel(e),
			Severity:     c.Tier,
			Color:        c.Color,
		}
		if id, name, ok := regions.Locate(e.Latitude, e.Longitude); ok {
			m.ProvinceID = id
			m.ProvinceName = name
		}
		markers = append(markers, m)
	}
	return markers
}

func MarkerLabel(e models.Earthquake) string {
	return fmt.Sprintf("%s · M%.1f · %g km", e.Location, e.Magnitude, e.Depth)
}

// FeatureCollection flattens the layers into one GeoJSON collection in paint
// order. Multi-part faults become one feature per part.
func (l Layers) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, r := range l.Choropleth {
		if r.Geometry == nil {
			continue
		}
		f := geojson.NewFeature(r.Geometry)
		f.Properties["layer"] = LayerChoropleth
		f.Properties["region_id"] = r.RegionID
		f.Properties["name"] = r.Name
		f.Properties["risk_tier"] = r.Tier.Degree()
		f.Properties["fillColor"] = r.FillColor
		f.Properties["fillOpacity"] = r.Opacity
		f.Properties["hoverOpacity"] = r.HoverOpacity
		f.Properties["label"] = r.Label
		fc.Append(f)
	}

	for _, s := range l.Faults {
		for i, line := range s.Lines {
			f := geojson.NewFeature(line)
			f.Properties["layer"] = LayerFaults
			f.Properties["name"] = s.Name
			f.Properties["description"] = s.Description
			f.Properties["importance"] = string(s.Importance)
			f.Properties["part"] = i
			f.Properties["color"] = s.Color
			f.Properties["weight"] = s.Weight
			f.Properties["opacity"] = s.Opacity
			fc.Append(f)
		}
	}

	for _, m := range l.Markers {
		f := geojson.NewFeature(orb.Point{m.Longitude, m.Latitude})
		f.ID = m.EarthquakeID
		f.Properties["layer"] = LayerMarkers
		f.Properties["earthquake_id"] = m.EarthquakeID
		f.Properties["label"] = m.Label
		f.Properties["magnitude"] = m.Magnitude
		f.Properties["depth"] = m.Depth
		f.Properties["severity"] = m.Severity.String()
		f.Properties["color"] = m.Color
		if m.ProvinceID != 0 {
			f.Properties["province_id"] = m.ProvinceID
			f.Properties["province_name"] = m.ProvinceName
		}
		fc.Append(f)
	}

	return fc
}
