package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/rainfall-prediction/internal/prediction"
	"github.com/i474232898/rainfall-prediction/internal/weather"
)

var (
	// ErrNotFound is returned when no predictions are stored for a given location.
	ErrNotFound = errors.New("no predictions for location")
)

// RecordHistory holds a time-ordered list of prediction records for a location.
type RecordHistory struct {
	Records []prediction.Record
}

// MemoryStore is a concurrency-safe in-memory store of watch predictions.
type MemoryStore struct {
	mu sync.RWMutex

	// key: location key, value: history
	data map[string]*RecordHistory

	maxHistory int           // max number of records per location
	maxAge     time.Duration // optional max age for records

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory or maxAge is <= 0, that limit is disabled.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*RecordHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveRecord appends a record for a location and enforces retention.
func (s *MemoryStore) SaveRecord(loc weather.Location, rec prediction.Record) {
	key := loc.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[key]
	if !ok {
		history = &RecordHistory{}
		s.data[key] = history
	}

	history.Records = append(history.Records, rec)

	if s.maxHistory > 0 && len(history.Records) > s.maxHistory {
		over := len(history.Records) - s.maxHistory
		history.Records = history.Records[over:]
	}

	// The newest record is always kept, however old it is.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.Records)-1; i++ {
			if !history.Records[i].CreatedAt.Before(cutoff) {
				break
			}
		}
		history.Records = history.Records[i:]
	}
}

// GetLatest returns the most recent record for a location.
func (s *MemoryStore) GetLatest(loc weather.Location) (prediction.Record, error) {
	key := loc.Key()

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key]
	if !ok || len(history.Records) == 0 {
		return prediction.Record{}, ErrNotFound
	}
	return history.Records[len(history.Records)-1], nil
}

// GetRange returns all records for a location created between from and to (inclusive).
func (s *MemoryStore) GetRange(loc weather.Location, from, to time.Time) ([]prediction.Record, error) {
	key := loc.Key()

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key]
	if !ok || len(history.Records) == 0 {
		return nil, ErrNotFound
	}

	var result []prediction.Record
	for _, rec := range history.Records {
		if !rec.CreatedAt.Before(from) && !rec.CreatedAt.After(to) {
			result = append(result, rec)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}
