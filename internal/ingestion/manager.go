package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/mr1hm/go-quake-risk/internal/config"
	"github.com/mr1hm/go-quake-risk/internal/metrics"
	"github.com/mr1hm/go-quake-risk/internal/models"
	"github.com/mr1hm/go-quake-risk/internal/repository"
	"github.com/mr1hm/go-quake-risk/internal/severity"
	"github.com/mr1hm/go-quake-risk/internal/worker"
)

// Fetcher is satisfied by *Client.
type Fetcher interface {
	Fetch(ctx context.Context) ([]models.Earthquake, error)
}

// Snapshot is the result of the most recently completed fetch. A failed
// fetch yields no events and a non-nil Err.
type Snapshot struct {
	Events    []models.Earthquake
	FetchedAt time.Time
	Err       error
}

// Manager polls the feed, keeps the latest snapshot in memory and hands each
// event to the alert workers.
type Manager struct {
	cfg      *config.Config
	feed     Fetcher
	alerts   repository.AlertRepository
	metrics  *metrics.Metrics
	clock    clockwork.Clock
	pool     *worker.WorkerPool[models.Earthquake]
	snapshot atomic.Pointer[Snapshot]
	wg       sync.WaitGroup
}

type ManagerOption func(*Manager)

func WithClock(c clockwork.Clock) ManagerOption {
	return func(m *Manager) {
		m.clock = c
	}
}

func NewManager(cfg *config.Config, feed Fetcher, alerts repository.AlertRepository, m *metrics.Metrics, opts ...ManagerOption) *Manager {
	mgr := &Manager{
		cfg:     cfg,
		feed:    feed,
		alerts:  alerts,
		metrics: m,
		clock:   clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(mgr)
	}
	mgr.snapshot.Store(&Snapshot{Events: []models.Earthquake{}})
	return mgr
}

func (m *Manager) Start(ctx context.Context) {
	m.pool = worker.NewWorkerPool(m.cfg.Worker.Count, m.cfg.Worker.BufferSize, m.recordAlert)
	m.pool.Start(ctx)

	m.wg.Add(1)
	go m.runPoller(ctx, m.cfg.Feed.PollInterval)
}

func (m *Manager) runPoller(ctx context.Context, interval time.Duration) {
	defer m.wg.Done()
	slog.Info("starting poller", "source", models.ProviderKandilli, "interval", interval)

	ticker := m.clock.NewTicker(interval)
	defer ticker.Stop()

	// Initial poll
	m.Refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("poller shutting down", "source", models.ProviderKandilli)
			return
		case <-ticker.Chan():
			m.Refresh(ctx)
		}
	}
}

// Refresh fetches once and replaces the snapshot. Overlapping refreshes are
// allowed; whichever completes last wins.
func (m *Manager) Refresh(ctx context.Context) Snapshot {
	slog.Debug("polling", "source", models.ProviderKandilli)

	start := m.clock.Now()
	events, err := m.feed.Fetch(ctx)
	m.metrics.FeedFetchDuration.Observe(m.clock.Since(start).Seconds())

	snap := Snapshot{Events: events, FetchedAt: m.clock.Now(), Err: err}
	if err != nil {
		snap.Events = []models.Earthquake{}
		m.metrics.FeedFetches.WithLabelValues(metrics.OutcomeError).Inc()
		slog.Error("poll failed", "source", models.ProviderKandilli, "error", err)
	} else if len(events) == 0 {
		m.metrics.FeedFetches.WithLabelValues(metrics.OutcomeEmpty).Inc()
	} else {
		m.metrics.FeedFetches.WithLabelValues(metrics.OutcomeSuccess).Inc()
	}

	m.snapshot.Store(&snap)
	m.metrics.SnapshotEvents.Set(float64(len(snap.Events)))

	if m.pool != nil {
		for _, e := range snap.Events {
			if err := m.pool.Submit(ctx, e); err != nil {
				slog.Warn("alert queue abandoned", "error", err)
				break
			}
		}
	}

	slog.Debug("poll complete", "source", models.ProviderKandilli, "count", len(snap.Events))
	return snap
}

// Latest returns the most recent snapshot. Its Events slice is shared and
// must be treated as read-only.
func (m *Manager) Latest() Snapshot {
	return *m.snapshot.Load()
}

func (m *Manager) Stop() {
	m.wg.Wait()
	if m.pool != nil {
		m.pool.Stop()
	}
	slog.Info("ingestion manager stopped")
}

func (m *Manager) recordAlert(ctx context.Context, e models.Earthquake) error {
	c := severity.Classify(e.Magnitude)
	if !c.Tier.AtLeast(m.cfg.Alerts.MinSeverity) {
		return nil
	}

	a := &models.Alert{
		ID:           uuid.NewString(),
		EarthquakeID: e.ID,
		Severity:     c.Tier,
		Magnitude:    e.Magnitude,
		Location:     e.Location,
		Latitude:     e.Latitude,
		Longitude:    e.Longitude,
		CreatedAt:    m.clock.Now(),
	}
	inserted, err := m.alerts.AddAlert(ctx, a)
	if err != nil {
		return fmt.Errorf("error recording alert for %s: %w", e.ID, err)
	}
	if !inserted {
		return nil
	}

	m.metrics.AlertsRecorded.WithLabelValues(c.Tier.String()).Inc()
	slog.Info("recorded alert", "earthquake_id", e.ID, "severity", c.Tier, "magnitude", e.Magnitude, "location", e.Location)
	return nil
}
