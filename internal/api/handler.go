package api

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-quake-risk/internal/auth"
	"github.com/mr1hm/go-quake-risk/internal/faults"
	"github.com/mr1hm/go-quake-risk/internal/ingestion"
	"github.com/mr1hm/go-quake-risk/internal/models"
	"github.com/mr1hm/go-quake-risk/internal/overlay"
	"github.com/mr1hm/go-quake-risk/internal/repository"
	"github.com/mr1hm/go-quake-risk/internal/risk"
	"github.com/mr1hm/go-quake-risk/internal/severity"
)

const (
	maxLimit          = 500
	defaultAlertLimit = 20
)

// Turkish messages returned by the credential routes.
const (
	msgAllFieldsRequired   = "Tüm alanlar zorunludur."
	msgPhoneTaken          = "Bu telefon numarası zaten kayıtlı."
	msgPasswordTooLong     = "Şifre en fazla 72 bayt olabilir."
	msgRegistered          = "Kayıt başarılı."
	msgPhonePasswordNeeded = "Telefon ve şifre zorunludur."
	msgUserNotFound        = "Kullanıcı bulunamadı veya şifre hatalı."
	msgWrongPassword       = "Şifre hatalı."
	msgLoggedIn            = "Giriş başarılı."
	msgInternal            = "Bir hata oluştu."
)

// SnapshotSource is satisfied by *ingestion.Manager.
type SnapshotSource interface {
	Latest() ingestion.Snapshot
	Refresh(ctx context.Context) ingestion.Snapshot
}

// Authenticator is satisfied by *auth.Service.
type Authenticator interface {
	Register(ctx context.Context, name, phone, password string) (*models.User, error)
	Login(ctx context.Context, phone, password string) (auth.Identity, error)
}

type Handler struct {
	quakes  SnapshotSource
	alerts  repository.AlertRepository
	auth    Authenticator
	regions *overlay.Regions
}

// NewHandler wires the HTTP routes. regions may be nil when the boundary
// file could not be loaded; the map then has no choropleth.
func NewHandler(quakes SnapshotSource, alerts repository.AlertRepository, authn Authenticator, regions *overlay.Regions) *Handler {
	return &Handler{
		quakes:  quakes,
		alerts:  alerts,
		auth:    authn,
		regions: regions,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)

	r.GET("/api/earthquakes", h.getEarthquakes)
	r.GET("/api/earthquakes.csv", h.exportCSV)
	r.GET("/api/earthquakes/geojson", h.getEarthquakesGeoJSON)
	r.GET("/api/earthquakes/:id", h.getEarthquake)
	r.POST("/api/earthquakes/refresh", h.refresh)

	r.GET("/api/severity", h.getSeverity)

	r.GET("/api/risk/provinces", h.getProvinces)
	r.GET("/api/risk/provinces/:id", h.getProvince)
	r.GET("/api/risk/legend", h.getLegend)

	r.GET("/api/faults", h.getFaults)
	r.GET("/api/map", h.getMap)

	r.GET("/api/alerts", h.getAlerts)

	r.POST("/api/auth/register", h.register)
	r.POST("/api/auth/login", h.login)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type earthquakeView struct {
	models.Earthquake
	Severity     severity.Classification `json:"severity"`
	BadgeColor   string                  `json:"badge_color"`
	ProvinceID   int                     `json:"province_id,omitempty"`
	ProvinceName string                  `json:"province_name,omitempty"`
	ProvinceTier *risk.Tier              `json:"province_tier,omitempty"`
}

func (h *Handler) view(e models.Earthquake) earthquakeView {
	v := earthquakeView{
		Earthquake: e,
		Severity:   severity.Classify(e.Magnitude),
		BadgeColor: severity.Badge(e.Magnitude),
	}
	if id, name, ok := h.regions.Locate(e.Latitude, e.Longitude); ok {
		tier := risk.TierOf(id)
		v.ProvinceID = id
		v.ProvinceName = name
		v.ProvinceTier = &tier
	}
	return v
}

type snapshotMeta struct {
	Count      int        `json:"count"`
	FetchedAt  *time.Time `json:"fetched_at,omitempty"`
	FetchError string     `json:"fetch_error,omitempty"`
}

func metaOf(snap ingestion.Snapshot, count int) snapshotMeta {
	m := snapshotMeta{Count: count}
	if !snap.FetchedAt.IsZero() {
		t := snap.FetchedAt
		m.FetchedAt = &t
	}
	if snap.Err != nil {
		m.FetchError = snap.Err.Error()
	}
	return m
}

type earthquakeFilter struct {
	minMagnitude *float64
	severity     *severity.Tier
	limit        int
}

func parseEarthquakeFilter(c *gin.Context) earthquakeFilter {
	var f earthquakeFilter
	if m := c.Query("min_magnitude"); m != "" {
		if mag, err := strconv.ParseFloat(m, 64); err == nil {
			f.minMagnitude = &mag
		}
	}
	if s := c.Query("severity"); s != "" {
		if t, err := severity.ParseTier(s); err == nil {
			f.severity = &t
		}
	}
	if l := c.Query("limit"); l != "" {
		if lim, err := strconv.Atoi(l); err == nil && lim > 0 && lim <= maxLimit {
			f.limit = lim
		}
	}
	return f
}

// apply keeps feed order, which is newest first.
func (f earthquakeFilter) apply(events []models.Earthquake) []models.Earthquake {
	out := make([]models.Earthquake, 0, len(events))
	for _, e := range events {
		if f.minMagnitude != nil && e.Magnitude < *f.minMagnitude {
			continue
		}
		if f.severity != nil && severity.TierOf(e.Magnitude) != *f.severity {
			continue
		}
		out = append(out, e)
		if f.limit > 0 && len(out) == f.limit {
			break
		}
	}
	return out
}

func (h *Handler) getEarthquakes(c *gin.Context) {
	snap := h.quakes.Latest()
	events := parseEarthquakeFilter(c).apply(snap.Events)

	views := make([]earthquakeView, 0, len(events))
	for _, e := range events {
		views = append(views, h.view(e))
	}

	c.JSON(http.StatusOK, gin.H{
		"earthquakes": views,
		"meta":        metaOf(snap, len(views)),
	})
}

func (h *Handler) getEarthquake(c *gin.Context) {
	id := c.Param("id")
	for _, e := range h.quakes.Latest().Events {
		if e.ID == id {
			c.JSON(http.StatusOK, h.view(e))
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "earthquake not found"})
}

func (h *Handler) getEarthquakesGeoJSON(c *gin.Context) {
	events := parseEarthquakeFilter(c).apply(h.quakes.Latest().Events)
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, toGeoJSON(events))
}

func (h *Handler) exportCSV(c *gin.Context) {
	events := parseEarthquakeFilter(c).apply(h.quakes.Latest().Events)

	c.Header("Content-Disposition", "attachment; filename=depremler.csv")
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	w.Write([]string{"id", "date", "time", "location", "latitude", "longitude", "depth_km", "magnitude", "severity"})
	for _, e := range events {
		w.Write([]string{
			e.ID,
			e.Date,
			e.Time,
			e.Location,
			strconv.FormatFloat(e.Latitude, 'f', -1, 64),
			strconv.FormatFloat(e.Longitude, 'f', -1, 64),
			strconv.FormatFloat(e.Depth, 'f', -1, 64),
			fmt.Sprintf("%.1f", e.Magnitude),
			severity.TierOf(e.Magnitude).String(),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		slog.Error("csv export failed", "error", err)
	}
}

func (h *Handler) refresh(c *gin.Context) {
	snap := h.quakes.Refresh(c.Request.Context())
	status := http.StatusOK
	if snap.Err != nil {
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"meta": metaOf(snap, len(snap.Events))})
}

func (h *Handler) getSeverity(c *gin.Context) {
	mag, err := strconv.ParseFloat(c.Query("magnitude"), 64)
	if err != nil || math.IsNaN(mag) || math.IsInf(mag, 0) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "magnitude must be a number"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"classification": severity.Classify(mag),
		"badge_color":    severity.Badge(mag),
	})
}

type provinceView struct {
	risk.Province
	Color string `json:"color"`
	Label string `json:"label"`
}

func toProvinceView(p risk.Province) provinceView {
	return provinceView{Province: p, Color: p.Tier.Color(), Label: p.Tier.Label()}
}

func (h *Handler) getProvinces(c *gin.Context) {
	var want *risk.Tier
	if t := c.Query("tier"); t != "" {
		degree, err := strconv.Atoi(t)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "tier must be a number between 1 and 5"})
			return
		}
		tier, err := risk.ParseTier(degree)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		want = &tier
	}

	views := make([]provinceView, 0, 81)
	for _, p := range risk.Provinces() {
		if want != nil && p.Tier != *want {
			continue
		}
		views = append(views, toProvinceView(p))
	}
	c.JSON(http.StatusOK, gin.H{"provinces": views})
}

// getProvince answers for any numeric id; ids outside the table get the
// fallback tier.
func (h *Handler) getProvince(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "province id must be a number"})
		return
	}
	p, ok := risk.ProvinceOf(id)
	if !ok {
		p = risk.Province{ID: id, Tier: risk.TierOf(id)}
	}
	c.JSON(http.StatusOK, toProvinceView(p))
}

func (h *Handler) getLegend(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"legend": risk.Legend()})
}

func (h *Handler) getFaults(c *gin.Context) {
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, faults.FeatureCollection())
}

func (h *Handler) getMap(c *gin.Context) {
	layers := overlay.Compose(h.quakes.Latest().Events, h.regions, faults.Segments())
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, layers.FeatureCollection())
}

func (h *Handler) getAlerts(c *gin.Context) {
	filter := repository.AlertFilter{
		Limit: defaultAlertLimit,
	}

	if s := c.Query("severity"); s != "" {
		if t, err := severity.ParseTier(s); err == nil {
			filter.MinSeverity = &t
		}
	}
	if s := c.Query("since"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			filter.Since = &t
		}
	}
	if l := c.Query("limit"); l != "" {
		if lim, err := strconv.Atoi(l); err == nil && lim > 0 && lim <= maxLimit {
			filter.Limit = lim
		}
	}

	alerts, err := h.alerts.ListAlerts(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to fetch alerts",
		})
		return
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

type credentials struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (h *Handler) register(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgAllFieldsRequired})
		return
	}

	u, err := h.auth.Register(c.Request.Context(), req.Name, req.Phone, req.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, gin.H{"message": msgRegistered, "userId": u.ID})
	case errors.Is(err, auth.ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgAllFieldsRequired})
	case errors.Is(err, auth.ErrPhoneTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgPhoneTaken})
	case errors.Is(err, auth.ErrPasswordTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgPasswordTooLong})
	default:
		slog.Error("registration error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
	}
}

func (h *Handler) login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgPhonePasswordNeeded})
		return
	}

	id, err := h.auth.Login(c.Request.Context(), req.Phone, req.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": msgLoggedIn, "user": id})
	case errors.Is(err, auth.ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgPhonePasswordNeeded})
	case errors.Is(err, auth.ErrUserNotFound):
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgUserNotFound})
	case errors.Is(err, auth.ErrWrongPassword):
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgWrongPassword})
	default:
		slog.Error("login error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
	}
}
