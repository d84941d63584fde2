package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samvad-hq/tweet-likes-predictor/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const (
	predictionBucket = "predictions"
	timestampBytes   = 8
)

// boltStore implements a Store backed by BoltDB.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	historyTTL      time.Duration
	cleanupInterval time.Duration
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(predictionBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	store := &boltStore{
		db:              db,
		historyTTL:      opts.HistoryTTL,
		cleanupInterval: opts.CleanupInterval,
	}
	store.lastCleanup.Store(time.Now().Unix())
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// SavePrediction appends a record keyed by its creation time so cursor order is chronological.
func (b *boltStore) SavePrediction(rec domain.PredictionRecord) error {
	if b == nil || b.db == nil {
		return nil
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	if err := b.maybeCleanupExpired(time.Now()); err != nil {
		return err
	}

	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode prediction: %w", err)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(predictionBucket))
		if bucket == nil {
			return fmt.Errorf("prediction bucket missing")
		}
		return bucket.Put(recordKey(rec), value)
	})
}

// RecentPredictions walks the bucket backwards, skipping expired records.
func (b *boltStore) RecentPredictions(limit int) ([]domain.PredictionRecord, error) {
	if b == nil || b.db == nil || limit <= 0 {
		return nil, nil
	}

	cutoff := time.Now().Add(-b.historyTTL)
	out := make([]domain.PredictionRecord, 0, limit)
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(predictionBucket))
		if bucket == nil {
			return fmt.Errorf("prediction bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.Last(); k != nil && len(out) < limit; k, v = cursor.Prev() {
			created, ok := decodeTimestamp(k)
			if !ok {
				continue
			}
			if !created.After(cutoff) {
				// everything before this key is older still
				break
			}
			var rec domain.PredictionRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decode prediction %q: %w", k, err)
			}
			out = append(out, rec)
		}
		return nil
	})
	return out, err
}

// maybeCleanupExpired removes records past the history TTL on a fixed cadence to avoid unbounded growth.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	if b == nil || b.db == nil {
		return nil
	}

	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	cutoff := now.Add(-b.historyTTL)
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(predictionBucket))
		if bucket == nil {
			return fmt.Errorf("prediction bucket missing")
		}

		// keys sort by creation time, so expired records form a prefix
		cursor := bucket.Cursor()
		for k, _ := cursor.First(); k != nil; k, _ = cursor.First() {
			created, ok := decodeTimestamp(k)
			if ok && created.After(cutoff) {
				break
			}
			if err := cursor.Delete(); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

// recordKey is the big-endian creation time in nanoseconds followed by the record ID.
func recordKey(rec domain.PredictionRecord) []byte {
	key := make([]byte, timestampBytes, timestampBytes+len(rec.ID))
	binary.BigEndian.PutUint64(key, uint64(rec.CreatedAt.UnixNano()))
	return append(key, rec.ID...)
}

// decodeTimestamp decodes the creation time prefix of a record key.
func decodeTimestamp(key []byte) (time.Time, bool) {
	if len(key) < timestampBytes {
		return time.Time{}, false
	}
	nanos := int64(binary.BigEndian.Uint64(key[:timestampBytes]))
	if nanos <= 0 {
		return time.Time{}, false
	}
	return time.Unix(0, nanos), true
}
