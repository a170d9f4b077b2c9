package game

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/pokeguess/pokeguess/internal/catalog"
	"github.com/pokeguess/pokeguess/internal/errors"
	"github.com/pokeguess/pokeguess/internal/logger"
	"github.com/pokeguess/pokeguess/internal/observability/metrics"
)

// fakeCatalog serves records from a map. Ids without a record fail as not found.
type fakeCatalog struct {
	minID, maxID int
	records      map[int]catalog.Record

	mu    sync.Mutex
	calls []int
}

func newFakeCatalog(minID, maxID int, names map[int]string) *fakeCatalog {
	records := make(map[int]catalog.Record, len(names))
	for id, name := range names {
		records[id] = catalog.Record{
			ID:         id,
			Name:       name,
			ArtworkURL: fmt.Sprintf("https://example.com/artwork/%d.png", id),
		}
	}
	return &fakeCatalog{minID: minID, maxID: maxID, records: records}
}

// namedRange returns names "mon-<id>" for every id in [minID, maxID].
func namedRange(minID, maxID int) map[int]string {
	names := make(map[int]string)
	for id := minID; id <= maxID; id++ {
		names[id] = fmt.Sprintf("mon-%d", id)
	}
	return names
}

func (f *fakeCatalog) Range() (int, int) {
	return f.minID, f.maxID
}

func (f *fakeCatalog) CheckID(id *int) error {
	if id == nil {
		return errors.New(catalog.ErrMissingID).Category(errors.CategoryValidation).Build()
	}
	if *id < f.minID || *id > f.maxID {
		return errors.New(catalog.ErrOutOfRange).Category(errors.CategoryValidation).Build()
	}
	return nil
}

func (f *fakeCatalog) ResolveID(_ context.Context, id int) (catalog.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, id)
	record, ok := f.records[id]
	if !ok {
		return catalog.Record{}, errors.New(fmt.Errorf("%w: id %d", catalog.ErrNotFound, id)).
			Category(errors.CategoryNotFound).
			Build()
	}
	return record, nil
}

func (f *fakeCatalog) resolved() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.calls...)
}

// fakeImages returns deterministic asset URLs or a configured error.
type fakeImages struct {
	err error

	mu          sync.Mutex
	silhouettes []int
	reals       []int
}

func (f *fakeImages) EnsureRealImage(_ context.Context, id int, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reals = append(f.reals, id)
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("http://127.0.0.1:5000/static/realImages/%d.png", id), nil
}

func (f *fakeImages) EnsureSilhouette(_ context.Context, id int, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.silhouettes = append(f.silhouettes, id)
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("http://127.0.0.1:5000/static/silhouettes/%d.png", id), nil
}

type publishedEvent struct {
	kind    string
	payload any
}

type recordingPublisher struct {
	err error

	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) PublishEvent(_ context.Context, kind string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{kind: kind, payload: payload})
	return p.err
}

func newTestService(cfg Config, c Catalog, images Images, publisher EventPublisher, m *metrics.GameMetrics) *Service {
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewPCG(1, 2))
	}
	return NewService(cfg, c, images, publisher, m, logger.NewDiscardLogger())
}

func ptr[T any](v T) *T {
	return &v
}
