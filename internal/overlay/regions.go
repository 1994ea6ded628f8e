package overlay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

const maxRegionsBytes = 64 << 20

// Regions is a read-only set of administrative boundaries, one feature per
// province.
type Regions struct {
	fc *geojson.FeatureCollection
}

func NewRegions(fc *geojson.FeatureCollection) *Regions {
	if fc == nil {
		fc = geojson.NewFeatureCollection()
	}
	return &Regions{fc: fc}
}

func ParseRegions(data []byte) (*Regions, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("error decoding regions: %w", err)
	}
	return NewRegions(fc), nil
}

// LoadRegions reads a FeatureCollection from an http(s) URL or a file path.
func LoadRegions(ctx context.Context, source string, client *http.Client) (*Regions, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("error reading regions file: %w", err)
		}
		return ParseRegions(data)
	}

	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRegionsBytes))
	if err != nil {
		return nil, fmt.Errorf("error reading resp.Body: %w", err)
	}
	return ParseRegions(data)
}

func (r *Regions) Features() []*geojson.Feature {
	if r == nil {
		return nil
	}
	return r.fc.Features
}

func (r *Regions) Len() int {
	return len(r.Features())
}

// RegionID extracts the province plate code from a feature: its top-level
// id, or an "id", "number" or "plate" property.
func RegionID(f *geojson.Feature) (int, bool) {
	if id, ok := toInt(f.ID); ok {
		return id, true
	}
	for _, key := range []string{"id", "number", "plate"} {
		if v, present := f.Properties[key]; present {
			if id, ok := toInt(v); ok {
				return id, true
			}
		}
	}
	return 0, false
}

func RegionName(f *geojson.Feature) string {
	return f.Properties.MustString("name", "")
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	default:
		return 0, false
	}
}

// Locate finds the region containing the point. Features without an id are
// skipped.
func (r *Regions) Locate(lat, lon float64) (id int, name string, ok bool) {
	pt := orb.Point{lon, lat}
	for _, f := range r.Features() {
		if f.Geometry == nil || !f.Geometry.Bound().Contains(pt) {
			continue
		}
		if !contains(f.Geometry, pt) {
			continue
		}
		if id, ok := RegionID(f); ok {
			return id, RegionName(f), true
		}
	}
	return 0, "", false
}

func contains(g orb.Geometry, pt orb.Point) bool {
	switch geom := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(geom, pt)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(geom, pt)
	case orb.Ring:
		return planar.RingContains(geom, pt)
	default:
		return false
	}
}
