package loader

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dukerupert/houseboard/internal/metrics"
	"github.com/dukerupert/houseboard/internal/model"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeFetcher struct {
	calls  atomic.Int32
	houses []model.House
	err    error
	gate   chan struct{}
}

func (f *fakeFetcher) FetchHouses(ctx context.Context) ([]model.House, error) {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	return f.houses, f.err
}

type memRecorder struct {
	mu      sync.Mutex
	records []model.FetchRecord
}

func (r *memRecorder) Record(rec model.FetchRecord) (*model.FetchRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return &rec, nil
}

func waitFor(t *testing.T, l *Loader) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := l.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}
}

func TestLoaderSuccess(t *testing.T) {
	f := &fakeFetcher{houses: []model.House{{ID: "1", Name: "Gryffindor"}, {ID: "2", Name: "Slytherin"}}}
	rec := &memRecorder{}
	m := metrics.New()

	var got Status
	var gotHouses []model.House
	l := New(f, rec, m, func(s Status, houses []model.House) {
		got = s
		gotHouses = houses
	}, slog.Default())

	l.Start(context.Background())
	waitFor(t, l)

	if got.State != StateLoaded || got.HouseCount != 2 {
		t.Errorf("callback status = %+v", got)
	}
	if len(gotHouses) != 2 {
		t.Errorf("callback houses = %d, want 2", len(gotHouses))
	}
	if s := l.Status(); s.State != StateLoaded {
		t.Errorf("state = %s, want loaded", s.State)
	}
	if len(rec.records) != 1 || rec.records[0].Status != model.FetchOK || rec.records[0].HouseCount != 2 {
		t.Errorf("records = %+v", rec.records)
	}
	if v := testutil.ToFloat64(m.FetchTotal.WithLabelValues("ok")); v != 1 {
		t.Errorf("fetch ok metric = %v, want 1", v)
	}
}

func TestLoaderFailure(t *testing.T) {
	f := &fakeFetcher{err: errors.New("houses API returned status 503")}
	rec := &memRecorder{}

	var gotHouses []model.House
	called := false
	l := New(f, rec, nil, func(s Status, houses []model.House) {
		called = true
		gotHouses = houses
	}, slog.Default())

	l.Start(context.Background())
	waitFor(t, l)

	s := l.Status()
	if s.State != StateFailed {
		t.Errorf("state = %s, want failed", s.State)
	}
	if s.Error == "" {
		t.Error("expected error text")
	}
	if !called || gotHouses != nil {
		t.Errorf("callback called=%v houses=%v", called, gotHouses)
	}
	if l.Houses() != nil {
		t.Error("expected no houses after failure")
	}
	if len(rec.records) != 1 || rec.records[0].Status != model.FetchError {
		t.Errorf("records = %+v", rec.records)
	}
}

func TestLoaderFetchesOnce(t *testing.T) {
	f := &fakeFetcher{gate: make(chan struct{})}
	l := New(f, nil, nil, nil, slog.Default())

	l.Start(context.Background())
	if s := l.Status(); s.State != StateLoading {
		t.Errorf("state = %s, want loading", s.State)
	}
	l.Start(context.Background())
	l.Start(context.Background())
	close(f.gate)
	waitFor(t, l)

	l.Start(context.Background())
	if n := f.calls.Load(); n != 1 {
		t.Errorf("fetch calls = %d, want 1", n)
	}
}

func TestLoaderIdleBeforeStart(t *testing.T) {
	l := New(&fakeFetcher{}, nil, nil, nil, slog.Default())
	if s := l.Status(); s.State != StateIdle {
		t.Errorf("state = %s, want idle", s.State)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx); err == nil {
		t.Error("wait should time out before start")
	}
}
