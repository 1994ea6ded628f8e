package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mr1hm/go-quake-risk/internal/models"
)

var (
	// ErrFeedStatus means the feed answered but flagged the payload as unusable
	// (status false, or no result array).
	ErrFeedStatus = errors.New("feed reported unsuccessful status")
	// ErrMalformedRecord means a record did not match the expected schema.
	ErrMalformedRecord = errors.New("malformed feed record")
)

const maxBodyBytes = 8 << 20

type kandilliResponse struct {
	Status *bool             `json:"status"`
	Result *[]kandilliRecord `json:"result"`
}

type kandilliRecord struct {
	EarthquakeID string          `json:"earthquake_id"`
	DateTime     string          `json:"date_time"` // "YYYY-MM-DD HH:MM:SS"
	GeoJSON      kandilliGeoJSON `json:"geojson"`
	Depth        float64         `json:"depth"`
	Mag          float64         `json:"mag"`
	Title        string          `json:"title"`
}

type kandilliGeoJSON struct {
	Coordinates []float64 `json:"coordinates"` // [lon, lat]
}

// Client reads the Kandilli Observatory live feed.
type Client struct {
	url        string
	timeout    time.Duration
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(url string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		url:        url,
		timeout:    timeout,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch performs one request and reports failures. A successful fetch with
// no events returns an empty, non-nil slice and a nil error.
func (c *Client) Fetch(ctx context.Context) ([]models.Earthquake, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var data kandilliResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	return normalize(data)
}

// FetchRecent never fails: any error is logged and an empty slice returned,
// so callers cannot tell "no earthquakes" from "feed down". Use Fetch when
// the difference matters.
func (c *Client) FetchRecent(ctx context.Context) []models.Earthquake {
	events, err := c.Fetch(ctx)
	if err != nil {
		slog.Warn("earthquake feed fetch failed", "url", c.url, "error", err)
		return []models.Earthquake{}
	}
	return events
}

func normalize(data kandilliResponse) ([]models.Earthquake, error) {
	if data.Status == nil || !*data.Status || data.Result == nil {
		return nil, ErrFeedStatus
	}

	records := *data.Result
	events := make([]models.Earthquake, 0, len(records))
	for i, r := range records {
		e, err := r.toEarthquake()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		events = append(events, e)
	}
	return events, nil
}

func (r kandilliRecord) toEarthquake() (models.Earthquake, error) {
	if r.EarthquakeID == "" {
		return models.Earthquake{}, fmt.Errorf("%w: missing earthquake_id", ErrMalformedRecord)
	}

	date, clock, ok := strings.Cut(r.DateTime, " ")
	if !ok || date == "" || clock == "" {
		return models.Earthquake{}, fmt.Errorf("%w: date_time %q for %s", ErrMalformedRecord, r.DateTime, r.EarthquakeID)
	}

	if len(r.GeoJSON.Coordinates) < 2 {
		return models.Earthquake{}, fmt.Errorf("%w: coordinates for %s", ErrMalformedRecord, r.EarthquakeID)
	}

	return models.Earthquake{
		ID:        r.EarthquakeID,
		Date:      date,
		Time:      clock,
		Longitude: r.GeoJSON.Coordinates[0],
		Latitude:  r.GeoJSON.Coordinates[1],
		Depth:     r.Depth,
		Magnitude: r.Mag,
		Location:  r.Title,
		Provider:  models.ProviderKandilli,
	}, nil
}
