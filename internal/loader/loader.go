package loader

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/houseboard/internal/metrics"
	"github.com/dukerupert/houseboard/internal/model"
)

// State is the catalog loading state shown by the board.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
	StateFailed  State = "failed"
)

// Status is a point-in-time view of the loader.
type Status struct {
	State      State     `json:"state"`
	HouseCount int       `json:"house_count"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// Fetcher loads the house catalog.
type Fetcher interface {
	FetchHouses(ctx context.Context) ([]model.House, error)
}

// Recorder persists fetch attempts.
type Recorder interface {
	Record(r model.FetchRecord) (*model.FetchRecord, error)
}

// DoneCallback runs once the fetch finishes. houses is nil on failure.
type DoneCallback func(s Status, houses []model.House)

// Loader fetches the catalog exactly once. There are no retries: a failed
// fetch leaves the board empty until the process restarts.
type Loader struct {
	fetcher  Fetcher
	recorder Recorder
	metrics  *metrics.Metrics
	callback DoneCallback
	logger   *slog.Logger

	once   sync.Once
	done   chan struct{}
	mu     sync.RWMutex
	status Status
	houses []model.House
}

func New(f Fetcher, rec Recorder, m *metrics.Metrics, cb DoneCallback, logger *slog.Logger) *Loader {
	return &Loader{
		fetcher:  f,
		recorder: rec,
		metrics:  m,
		callback: cb,
		logger:   logger,
		done:     make(chan struct{}),
		status:   Status{State: StateIdle},
	}
}

// Start kicks off the fetch in the background. Only the first call does anything.
func (l *Loader) Start(ctx context.Context) {
	l.once.Do(func() {
		l.setStatus(Status{State: StateLoading, StartedAt: time.Now()})
		go l.run(ctx)
	})
}

// Wait blocks until the fetch has finished or ctx is done.
func (l *Loader) Wait(ctx context.Context) error {
	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loader) Status() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.status
}

// Houses returns the fetched catalog, or nil before a successful load.
func (l *Loader) Houses() []model.House {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.houses
}

func (l *Loader) run(ctx context.Context) {
	defer close(l.done)

	started := l.Status().StartedAt
	houses, err := l.fetcher.FetchHouses(ctx)
	finished := time.Now()

	rec := model.FetchRecord{StartedAt: started, FinishedAt: finished}
	status := Status{StartedAt: started, FinishedAt: finished}

	if err != nil {
		l.logger.Error("fetch houses", "error", err)
		rec.Status = model.FetchError
		rec.Error = err.Error()
		status.State = StateFailed
		status.Error = err.Error()
		houses = nil
	} else {
		l.logger.Info("houses loaded", "count", len(houses), "duration", finished.Sub(started))
		rec.Status = model.FetchOK
		rec.HouseCount = len(houses)
		status.State = StateLoaded
		status.HouseCount = len(houses)
	}

	if l.metrics != nil {
		l.metrics.FetchTotal.WithLabelValues(string(rec.Status)).Inc()
		l.metrics.FetchDuration.Observe(finished.Sub(started).Seconds())
		l.metrics.CatalogHouses.Set(float64(len(houses)))
	}

	if l.recorder != nil {
		if _, err := l.recorder.Record(rec); err != nil {
			l.logger.Warn("record fetch", "error", err)
		}
	}

	l.mu.Lock()
	l.status = status
	l.houses = houses
	l.mu.Unlock()

	if l.callback != nil {
		l.callback(status, houses)
	}
}

func (l *Loader) setStatus(s Status) {
	l.mu.Lock()
	l.status = s
	l.mu.Unlock()
}
