// Package faults holds simplified geometry for Turkey's main active fault systems.
package faults

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

type Importance string

const (
	Major     Importance = "major"
	Secondary Importance = "secondary"
)

// Weight is the polyline stroke width used on the map.
func (i Importance) Weight() int {
	if i == Major {
		return 3
	}
	return 2
}

// Segment is a named fault. Geometry is an orb.LineString or an
// orb.MultiLineString, points ordered (longitude, latitude).
type Segment struct {
	Name        string
	Description string
	Importance  Importance
	Geometry    orb.Geometry
}

// Lines splits the segment into independently drawable polylines.
func (s Segment) Lines() []orb.LineString {
	switch g := s.Geometry.(type) {
	case orb.LineString:
		return []orb.LineString{g}
	case orb.MultiLineString:
		lines := make([]orb.LineString, len(g))
		copy(lines, g)
		return lines
	default:
		return nil
	}
}

var dataset = []Segment{
	{
		Name:        "Kuzey Anadolu Fay Hattı (NAF)",
		Description: "Türkiye'nin en aktif fay hatlarından biri",
		Importance:  Major,
		// İzmit Gulf east to Horasan
		Geometry: orb.LineString{
			{29.92, 40.76}, // İzmit Körfezi
			{30.32, 40.75}, // Düzce
			{30.79, 40.84}, // Bolu
			{31.45, 40.76}, // Bayramören
			{32.86, 40.55}, // Çerkeş
			{33.62, 40.50}, // Ilgaz
			{34.79, 40.51}, // Tosya
			{35.50, 40.58}, // Merzifon
			{36.55, 40.63}, // Niksar
			{37.97, 40.49}, // Reşadiye
			{39.49, 39.75}, // Erzincan
			{40.79, 39.65}, // Horasan
		},
	},
	{
		Name:        "Doğu Anadolu Fay Hattı (EAF)",
		Description: "Türkiye'nin önemli fay hatlarından biri",
		Importance:  Major,
		// Karlıova south-west to Antakya
		Geometry: orb.LineString{
			{41.03, 39.30}, // Karlıova
			{40.15, 39.20}, // Bingöl
			{39.22, 38.88}, // Palu
			{38.93, 38.68}, // Elazığ
			{38.50, 38.42}, // Pütürge
			{38.10, 38.18}, // Doğanşehir
			{37.65, 38.00}, // Gölbaşı
			{37.18, 37.77}, // Malatya
			{36.95, 37.58}, // Nurhak
			{36.63, 37.48}, // Gölbaşı (Adıyaman)
			{36.90, 37.25}, // Göksun
			{37.12, 37.12}, // Elbistan
			{36.82, 37.02}, // Pazarcık
			{36.58, 36.85}, // Nurdağı
			{36.37, 36.63}, // İslahiye
			{36.25, 36.42}, // Kırıkhan
			{36.18, 36.25}, // Antakya
		},
	},
	{
		Name:        "Batı Anadolu Fay Sistemleri",
		Description: "Ege bölgesindeki fay hatları",
		Importance:  Secondary,
		Geometry: orb.MultiLineString{
			// Gediz Graben
			{{26.80, 38.45}, {27.43, 38.62}, {28.04, 38.70}, {28.88, 38.75}},
			// Büyük Menderes Graben
			{{27.25, 37.85}, {27.85, 37.92}, {28.36, 37.88}, {28.88, 37.85}},
		},
	},
}

// Segments returns the dataset in a fixed order. Each call hands out a deep
// copy, so callers can never alter what later callers see.
func Segments() []Segment {
	out := make([]Segment, len(dataset))
	for i, s := range dataset {
		s.Geometry = orb.Clone(s.Geometry)
		out[i] = s
	}
	return out
}

// FeatureCollection renders the dataset as GeoJSON with name, description
// and importance properties.
func FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, s := range Segments() {
		f := geojson.NewFeature(s.Geometry)
		f.Properties["name"] = s.Name
		f.Properties["description"] = s.Description
		f.Properties["type"] = string(s.Importance)
		fc.Append(f)
	}
	return fc
}
