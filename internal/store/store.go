package store

import (
	"context"
	"errors"

	"minesweeper_webapp/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrVersionConflict = errors.New("document version conflict")
)

// DocumentStore keeps one GameDocument per instance key. Versions are
// monotonic per key; Save succeeds only when expectVersion matches the
// stored version, with 0 meaning "create, must not exist yet".
type DocumentStore interface {
	Load(ctx context.Context, key string) (*domain.GameDocument, int64, error)
	Save(ctx context.Context, key string, doc *domain.GameDocument, expectVersion int64) error
	Ping(ctx context.Context) error
	Close()
}

const updateRetries = 5

var storeConflicts = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "store_version_conflicts_total",
		Help: "Total conditional saves rejected on a stale version",
	},
)

func init() {
	prometheus.MustRegister(storeConflicts)
}

// Update loads the document under key (a fresh one if none exists yet),
// applies fn and saves the result, retrying the whole cycle on version
// conflicts. When fn returns an error nothing is saved. On a save
// failure the mutated document is still returned so callers can reply
// from it and log the error.
func Update(ctx context.Context, s DocumentStore, key string, fn func(doc *domain.GameDocument) error) (*domain.GameDocument, error) {
	var (
		doc     *domain.GameDocument
		lastErr error
	)

	for attempt := 0; attempt < updateRetries; attempt++ {
		loaded, version, err := s.Load(ctx, key)
		if errors.Is(err, ErrNotFound) {
			loaded, version = domain.NewGameDocument(), 0
		} else if err != nil {
			return nil, err
		}
		doc = loaded

		if err := fn(doc); err != nil {
			return nil, err
		}

		err = s.Save(ctx, key, doc, version)
		if err == nil {
			return doc, nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return doc, err
		}
		storeConflicts.Inc()
		lastErr = err
	}

	return doc, lastErr
}
