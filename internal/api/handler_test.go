package api

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"

	"github.com/mr1hm/go-quake-risk/internal/auth"
	"github.com/mr1hm/go-quake-risk/internal/ingestion"
	"github.com/mr1hm/go-quake-risk/internal/models"
	"github.com/mr1hm/go-quake-risk/internal/overlay"
	"github.com/mr1hm/go-quake-risk/internal/repository"
	"github.com/mr1hm/go-quake-risk/internal/severity"
)

// mockSource implements SnapshotSource for testing
type mockSource struct {
	snap      ingestion.Snapshot
	refreshes int
}

func (m *mockSource) Latest() ingestion.Snapshot {
	return m.snap
}

func (m *mockSource) Refresh(ctx context.Context) ingestion.Snapshot {
	m.refreshes++
	return m.snap
}

// mockAlertRepo implements repository.AlertRepository for testing
type mockAlertRepo struct {
	alerts   []models.Alert
	lastOpts repository.AlertFilter
	err      error
}

func (m *mockAlertRepo) AddAlert(ctx context.Context, a *models.Alert) (bool, error) {
	m.alerts = append(m.alerts, *a)
	return true, nil
}

func (m *mockAlertRepo) ListAlerts(ctx context.Context, opts repository.AlertFilter) ([]models.Alert, error) {
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.alerts, nil
}

// mockAuth implements Authenticator for testing
type mockAuth struct {
	registerErr error
	loginErr    error
}

func (m *mockAuth) Register(ctx context.Context, name, phone, password string) (*models.User, error) {
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	return &models.User{ID: "user-1", Name: name, Phone: phone}, nil
}

func (m *mockAuth) Login(ctx context.Context, phone, password string) (auth.Identity, error) {
	if m.loginErr != nil {
		return auth.Identity{}, m.loginErr
	}
	return auth.Identity{ID: "user-1", Name: "Ali", Phone: phone}, nil
}

const istanbulRegion = `{
	"type": "FeatureCollection",
	"features": [{
		"type": "Feature",
		"id": 40,
		"properties": {"name": "İstanbul"},
		"geometry": {"type": "Polygon", "coordinates": [[[28, 40], [30, 40], [30, 42], [28, 42], [28, 40]]]}
	}]
}`

func testEvents() []models.Earthquake {
	return []models.Earthquake{
		{ID: "q1", Date: "2024-01-01", Time: "10:00:00", Latitude: 41.0, Longitude: 29.0, Depth: 7, Magnitude: 5.8, Location: "MARMARA DENIZI", Provider: models.ProviderKandilli},
		{ID: "q2", Date: "2024-01-01", Time: "09:00:00", Latitude: 38.0, Longitude: 37.0, Depth: 10, Magnitude: 4.1, Location: "KAHRAMANMARAS", Provider: models.ProviderKandilli},
		{ID: "q3", Date: "2024-01-01", Time: "08:00:00", Latitude: 39.0, Longitude: 27.0, Depth: 5, Magnitude: 2.3, Location: "MANISA", Provider: models.ProviderKandilli},
	}
}

type testDeps struct {
	source *mockSource
	alerts *mockAlertRepo
	auth   *mockAuth
}

func setupTestRouter(t *testing.T) (*gin.Engine, *testDeps) {
	t.Helper()
	regions, err := overlay.ParseRegions([]byte(istanbulRegion))
	if err != nil {
		t.Fatalf("failed to parse regions: %v", err)
	}

	deps := &testDeps{
		source: &mockSource{snap: ingestion.Snapshot{Events: testEvents(), FetchedAt: time.Date(2024, 1, 1, 10, 1, 0, 0, time.UTC)}},
		alerts: &mockAlertRepo{},
		auth:   &mockAuth{},
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewHandler(deps.source, deps.alerts, deps.auth, regions)
	handler.RegisterRoutes(router)
	return router, deps
}

func do(router *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(w, req)
	return w
}

type listResponse struct {
	Earthquakes []struct {
		ID           string `json:"id"`
		Magnitude    float64
		BadgeColor   string `json:"badge_color"`
		ProvinceID   int    `json:"province_id"`
		ProvinceTier *int   `json:"province_tier"`
		Severity     struct {
			Tier  string `json:"tier"`
			Color string `json:"color"`
			Title string `json:"title"`
		} `json:"severity"`
	} `json:"earthquakes"`
	Meta struct {
		Count      int        `json:"count"`
		FetchedAt  *time.Time `json:"fetched_at"`
		FetchError string     `json:"fetch_error"`
	} `json:"meta"`
}

func TestHealth(t *testing.T) {
	router, _ := setupTestRouter(t)
	w := do(router, "GET", "/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

func TestGetEarthquakes_ClassifiesAndLocates(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := do(router, "GET", "/api/earthquakes", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp listResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	if resp.Meta.Count != 3 || len(resp.Earthquakes) != 3 {
		t.Fatalf("expected 3 earthquakes, got %d", len(resp.Earthquakes))
	}
	if resp.Meta.FetchedAt == nil {
		t.Error("expected fetched_at in meta")
	}
	if resp.Meta.FetchError != "" {
		t.Errorf("expected no fetch error, got %q", resp.Meta.FetchError)
	}

	first := resp.Earthquakes[0]
	if first.ID != "q1" {
		t.Errorf("expected feed order preserved, got %s first", first.ID)
	}
	if first.Severity.Tier != "critical" {
		t.Errorf("expected critical severity, got %s", first.Severity.Tier)
	}
	if first.Severity.Color != severity.Classify(5.8).Color {
		t.Errorf("unexpected severity color %s", first.Severity.Color)
	}
	if first.BadgeColor != severity.Badge(5.8) {
		t.Errorf("unexpected badge color %s", first.BadgeColor)
	}
	if first.ProvinceID != 40 || first.ProvinceTier == nil || *first.ProvinceTier != 1 {
		t.Errorf("expected İstanbul tier 1, got id=%d tier=%v", first.ProvinceID, first.ProvinceTier)
	}
	if resp.Earthquakes[1].ProvinceID != 0 {
		t.Errorf("expected no province outside regions, got %d", resp.Earthquakes[1].ProvinceID)
	}
}

func TestGetEarthquakes_Filters(t *testing.T) {
	router, _ := setupTestRouter(t)

	tests := []struct {
		query string
		want  int
	}{
		{"?min_magnitude=4.0", 2},
		{"?severity=warning", 1},
		{"?severity=info", 1},
		{"?limit=1", 1},
		{"?min_magnitude=abc", 3},
		{"?limit=9999", 3},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := do(router, "GET", "/api/earthquakes"+tt.query, nil)
			var resp listResponse
			json.Unmarshal(w.Body.Bytes(), &resp)
			if len(resp.Earthquakes) != tt.want {
				t.Errorf("expected %d earthquakes, got %d", tt.want, len(resp.Earthquakes))
			}
		})
	}
}

func TestGetEarthquakes_FetchErrorSurfaced(t *testing.T) {
	router, deps := setupTestRouter(t)
	deps.source.snap = ingestion.Snapshot{Events: []models.Earthquake{}, Err: errors.New("feed down")}

	w := do(router, "GET", "/api/earthquakes", nil)
	var resp listResponse
	json.Unmarshal(w.Body.Bytes(), &resp)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if resp.Meta.FetchError != "feed down" {
		t.Errorf("expected fetch_error, got %q", resp.Meta.FetchError)
	}
	if len(resp.Earthquakes) != 0 {
		t.Errorf("expected no earthquakes, got %d", len(resp.Earthquakes))
	}
}

func TestGetEarthquake_ByID(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := do(router, "GET", "/api/earthquakes/q2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	w = do(router, "GET", "/api/earthquakes/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestGetEarthquakesGeoJSON(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := do(router, "GET", "/api/earthquakes/geojson", nil)
	if ct := w.Header().Get("Content-Type"); ct != "application/geo+json" {
		t.Errorf("expected content-type application/geo+json, got %s", ct)
	}

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"features"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &fc); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 3 {
		t.Fatalf("expected 3 features, got %d", len(fc.Features))
	}
	if c := fc.Features[0].Geometry.Coordinates; c[0] != 29.0 || c[1] != 41.0 {
		t.Errorf("expected [lon, lat] order, got %v", c)
	}
}

func TestExportCSV(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := do(router, "GET", "/api/earthquakes.csv", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	records, err := csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse csv: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(records))
	}
	if records[1][0] != "q1" || records[1][8] != "critical" {
		t.Errorf("unexpected first row %v", records[1])
	}
}

func TestRefresh(t *testing.T) {
	router, deps := setupTestRouter(t)

	w := do(router, "POST", "/api/earthquakes/refresh", nil)
	if w.Code != http.StatusOK || deps.source.refreshes != 1 {
		t.Errorf("expected one refresh and 200, got %d refreshes and %d", deps.source.refreshes, w.Code)
	}

	deps.source.snap = ingestion.Snapshot{Events: []models.Earthquake{}, Err: errors.New("boom")}
	w = do(router, "POST", "/api/earthquakes/refresh", nil)
	if w.Code != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", w.Code)
	}
}

func TestGetSeverity(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := do(router, "GET", "/api/severity?magnitude=4.0", nil)
	var resp struct {
		Classification struct {
			Tier string `json:"tier"`
		} `json:"classification"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Classification.Tier != "warning" {
		t.Errorf("expected warning at 4.0, got %s", resp.Classification.Tier)
	}

	for _, q := range []string{"big", "", "NaN", "Inf", "-Inf", "1e400"} {
		w = do(router, "GET", "/api/severity?magnitude="+q, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("magnitude=%q: expected status 400, got %d", q, w.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["error"] == "" {
			t.Errorf("magnitude=%q: expected error body, got %q", q, w.Body.String())
		}
	}
}

func TestGetProvinces(t *testing.T) {
	router, _ := setupTestRouter(t)

	var resp struct {
		Provinces []struct {
			ID    int    `json:"id"`
			Tier  int    `json:"tier"`
			Color string `json:"color"`
		} `json:"provinces"`
	}

	w := do(router, "GET", "/api/risk/provinces", nil)
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Provinces) != 81 {
		t.Errorf("expected 81 provinces, got %d", len(resp.Provinces))
	}

	w = do(router, "GET", "/api/risk/provinces?tier=5", nil)
	json.Unmarshal(w.Body.Bytes(), &resp)
	for _, p := range resp.Provinces {
		if p.Tier != 5 {
			t.Errorf("province %d has tier %d, expected 5", p.ID, p.Tier)
		}
	}

	w = do(router, "GET", "/api/risk/provinces?tier=9", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestGetProvince(t *testing.T) {
	router, _ := setupTestRouter(t)

	var p struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
		Tier int    `json:"tier"`
	}

	w := do(router, "GET", "/api/risk/provinces/34", nil)
	json.Unmarshal(w.Body.Bytes(), &p)
	if p.Name != "Giresun" || p.Tier != 5 {
		t.Errorf("expected Giresun tier 5, got %+v", p)
	}

	w = do(router, "GET", "/api/risk/provinces/999", nil)
	json.Unmarshal(w.Body.Bytes(), &p)
	if w.Code != http.StatusOK || p.Tier != 3 {
		t.Errorf("expected fallback tier 3, got %d with %+v", w.Code, p)
	}

	w = do(router, "GET", "/api/risk/provinces/abc", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestGetLegendAndFaults(t *testing.T) {
	router, _ := setupTestRouter(t)

	var legend struct {
		Legend []struct {
			Degree int `json:"degree"`
		} `json:"legend"`
	}
	w := do(router, "GET", "/api/risk/legend", nil)
	json.Unmarshal(w.Body.Bytes(), &legend)
	if len(legend.Legend) != 5 || legend.Legend[0].Degree != 1 {
		t.Errorf("unexpected legend %+v", legend.Legend)
	}

	w = do(router, "GET", "/api/faults", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

func TestGetMap_PaintOrder(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := do(router, "GET", "/api/map", nil)
	var fc struct {
		Features []struct {
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &fc); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	if len(fc.Features) == 0 {
		t.Fatal("expected features")
	}
	if fc.Features[0].Properties["layer"] != overlay.LayerChoropleth {
		t.Errorf("expected choropleth first, got %v", fc.Features[0].Properties["layer"])
	}
	if fc.Features[len(fc.Features)-1].Properties["layer"] != overlay.LayerMarkers {
		t.Errorf("expected markers last")
	}
}

func TestGetAlerts(t *testing.T) {
	router, deps := setupTestRouter(t)
	deps.alerts.alerts = []models.Alert{{ID: "a1", EarthquakeID: "q1", Severity: severity.Critical}}

	w := do(router, "GET", "/api/alerts?severity=critical&limit=5&since=2024-01-01", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	opts := deps.alerts.lastOpts
	if opts.Limit != 5 {
		t.Errorf("expected limit 5, got %d", opts.Limit)
	}
	if opts.MinSeverity == nil || *opts.MinSeverity != severity.Critical {
		t.Errorf("expected critical min severity, got %v", opts.MinSeverity)
	}
	if opts.Since == nil {
		t.Error("expected since filter")
	}

	deps.alerts.err = errors.New("db down")
	w = do(router, "GET", "/api/alerts", nil)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", w.Code)
	}
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		body     string
		wantCode int
		wantMsg  string
	}{
		{"ok", nil, `{"name":"Ali","phone":"0555","password":"pw"}`, http.StatusCreated, msgRegistered},
		{"missing", auth.ErrMissingFields, `{"phone":"0555"}`, http.StatusBadRequest, msgAllFieldsRequired},
		{"taken", auth.ErrPhoneTaken, `{"name":"Ali","phone":"0555","password":"pw"}`, http.StatusBadRequest, msgPhoneTaken},
		{"password too long", auth.ErrPasswordTooLong, `{"name":"Ali","phone":"0555","password":"pw"}`, http.StatusBadRequest, msgPasswordTooLong},
		{"bad json", nil, `{`, http.StatusBadRequest, msgAllFieldsRequired},
		{"internal", errors.New("db"), `{"name":"Ali","phone":"0555","password":"pw"}`, http.StatusInternalServerError, msgInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, deps := setupTestRouter(t)
			deps.auth.registerErr = tt.err

			w := do(router, "POST", "/api/auth/register", []byte(tt.body))
			if w.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, w.Code)
			}
			var resp map[string]string
			json.Unmarshal(w.Body.Bytes(), &resp)
			if resp["message"] != tt.wantMsg && resp["error"] != tt.wantMsg {
				t.Errorf("expected message %q, got %v", tt.wantMsg, resp)
			}
			if tt.wantCode == http.StatusCreated && resp["userId"] != "user-1" {
				t.Errorf("expected userId, got %v", resp)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"ok", nil, http.StatusOK, msgLoggedIn},
		{"missing", auth.ErrMissingFields, http.StatusBadRequest, msgPhonePasswordNeeded},
		{"unknown user", auth.ErrUserNotFound, http.StatusUnauthorized, msgUserNotFound},
		{"wrong password", auth.ErrWrongPassword, http.StatusUnauthorized, msgWrongPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, deps := setupTestRouter(t)
			deps.auth.loginErr = tt.err

			w := do(router, "POST", "/api/auth/login", []byte(`{"phone":"0555","password":"pw"}`))
			if w.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, w.Code)
			}
			var resp struct {
				Message string        `json:"message"`
				Error   string        `json:"error"`
				User    auth.Identity `json:"user"`
			}
			json.Unmarshal(w.Body.Bytes(), &resp)
			if resp.Message != tt.wantMsg && resp.Error != tt.wantMsg {
				t.Errorf("expected message %q, got %+v", tt.wantMsg, resp)
			}
			if tt.err == nil && resp.User.ID != "user-1" {
				t.Errorf("expected identity, got %+v", resp.User)
			}
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware(1))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	first := do(router, "GET", "/ping", nil)
	second := do(router, "GET", "/ping", nil)

	if first.Code != http.StatusOK {
		t.Errorf("expected first request allowed, got %d", first.Code)
	}
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("expected second request limited, got %d", second.Code)
	}
}

func TestIPLimiters_ExpireIdleClients(t *testing.T) {
	clock := clockwork.NewFakeClock()
	limiters := newIPLimiters(1, time.Minute, clock)

	for i := 0; i < 100; i++ {
		limiters.allow(fmt.Sprintf("10.0.0.%d", i))
	}
	if n := limiters.len(); n != 100 {
		t.Fatalf("expected 100 tracked clients, got %d", n)
	}

	clock.Advance(30 * time.Second)
	limiters.allow("10.0.1.1")

	clock.Advance(45 * time.Second)
	limiters.allow("10.0.1.2")

	// only clients seen within the last minute survive the sweep
	if n := limiters.len(); n != 2 {
		t.Errorf("expected 2 tracked clients after sweep, got %d", n)
	}
}

func TestIPLimiters_SeparateBucketsPerClient(t *testing.T) {
	limiters := newIPLimiters(1, time.Minute, clockwork.NewFakeClock())

	if !limiters.allow("10.0.0.1") {
		t.Error("expected first request from client A allowed")
	}
	if limiters.allow("10.0.0.1") {
		t.Error("expected second request from client A limited")
	}
	if !limiters.allow("10.0.0.2") {
		t.Error("expected client B unaffected by client A")
	}
}
