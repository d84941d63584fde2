// Package storage keeps a local history of completed predictions.
package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/tweet-likes-predictor/internal/domain"
)

// Store persists prediction records.
type Store interface {
	Close() error
	SavePrediction(rec domain.PredictionRecord) error
	// RecentPredictions returns up to limit records, newest first.
	RecentPredictions(limit int) ([]domain.PredictionRecord, error)
}

// Options controls retention. MemoryCapacity only applies to the memory backend.
type Options struct {
	HistoryTTL      time.Duration
	CleanupInterval time.Duration
	MemoryCapacity  int
}

const (
	defaultHistoryTTL      = 30 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
	defaultMemoryCapacity  = 100
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "memory":
		return newMemoryStore(opts), nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.HistoryTTL <= 0 {
		opts.HistoryTTL = defaultHistoryTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	if opts.MemoryCapacity <= 0 {
		opts.MemoryCapacity = defaultMemoryCapacity
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                                             { return nil }
func (noopStore) SavePrediction(domain.PredictionRecord) error             { return nil }
func (noopStore) RecentPredictions(int) ([]domain.PredictionRecord, error) { return nil, nil }
