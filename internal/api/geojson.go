package api

import (
	"github.com/paulmach/orb/geojson"

	"github.com/mr1hm/go-quake-risk/internal/models"
	"github.com/mr1hm/go-quake-risk/internal/severity"
)

func toGeoJSON(events []models.Earthquake) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, e := range events {
		c := severity.Classify(e.Magnitude)
		f := geojson.NewFeature(e.Point())
		f.ID = e.ID
		f.Properties = geojson.Properties{
			"id":        e.ID,
			"location":  e.Location,
			"magnitude": e.Magnitude,
			"depth":     e.Depth,
			"date":      e.Date,
			"time":      e.Time,
			"severity":  c.Tier.String(),
			"color":     c.Color,
			"source":    e.Provider,
		}
		fc.Append(f)
	}

	return fc
}
