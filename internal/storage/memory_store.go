package storage

import (
	"sync"
	"time"

	"github.com/samvad-hq/tweet-likes-predictor/internal/domain"
)

// memoryStore keeps the last MemoryCapacity records for the process lifetime.
type memoryStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	ring []domain.PredictionRecord
	next int
	size int
	now  func() time.Time
}

func newMemoryStore(opts Options) *memoryStore {
	return &memoryStore{
		ttl:  opts.HistoryTTL,
		ring: make([]domain.PredictionRecord, opts.MemoryCapacity),
		now:  time.Now,
	}
}

func (m *memoryStore) Close() error { return nil }

// SavePrediction overwrites the oldest record once the ring is full.
func (m *memoryStore) SavePrediction(rec domain.PredictionRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = m.now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.ring[m.next] = rec
	m.next = (m.next + 1) % len(m.ring)
	if m.size < len(m.ring) {
		m.size++
	}
	return nil
}

func (m *memoryStore) RecentPredictions(limit int) ([]domain.PredictionRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.PredictionRecord, 0, min(limit, m.size))
	for i := 1; i <= m.size && len(out) < limit; i++ {
		rec := m.ring[(m.next-i+len(m.ring))%len(m.ring)]
		if !rec.CreatedAt.After(cutoff) {
			break
		}
		out = append(out, rec)
	}
	return out, nil
}
