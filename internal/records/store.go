// internal/records/store.go
package records

import (
	"sync"

	"go.uber.org/zap"

	"github.com/xkilldash9x/navscribe/api/schemas"
)

// Store is the process-lifetime, ordered sequence of finalized navigation records.
// It's the source of truth for listing, export and the running total.
type Store struct {
	mu      sync.RWMutex
	records []schemas.NavigationRecord
	// index holds the identity of every record ever stored, cleared ones included, so
	// a batch retried after a failed processed-log write doesn't produce it again.
	index map[schemas.EventIdentity]struct{}
	// generation advances on every Clear.
	generation uint64
	log        *zap.Logger
}

// NewStore creates an empty store.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		index: make(map[schemas.EventIdentity]struct{}),
		log:   logger.Named("records"),
	}
}

// Generation returns the current generation. Capture it before preparing a batch
// and hand it to AppendBatch.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// AppendAll appends records in order and returns how many were added. Records whose
// identity is already stored are skipped.
func (s *Store) AppendAll(records []schemas.NavigationRecord) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(records)
}

// AppendBatch appends records only if no Clear happened since generation was read.
// A stale batch is dropped whole and committed is false.
func (s *Store) AppendBatch(generation uint64, records []schemas.NavigationRecord) (appended int, committed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		s.log.Info("Discarding batch prepared before the store was cleared.",
			zap.Int("records", len(records)),
			zap.Uint64("batch_generation", generation),
			zap.Uint64("store_generation", s.generation))
		return 0, false
	}
	return s.appendLocked(records), true
}

// appendLocked assumes the caller holds the write lock.
func (s *Store) appendLocked(records []schemas.NavigationRecord) int {
	added := 0
	for _, r := range records {
		if r.Identity != "" {
			if _, dup := s.index[r.Identity]; dup {
				s.log.Debug("Skipping record already stored.", zap.String("identity", string(r.Identity)))
				continue
			}
			s.index[r.Identity] = struct{}{}
		}
		s.records = append(s.records, r)
		added++
	}
	return added
}

// All returns a copy of the stored records in insertion order.
func (s *Store) All() []schemas.NavigationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]schemas.NavigationRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Clear empties the store and starts a new generation. It leaves the session and the
// page's processed log untouched. The identity index survives, so a click recorded
// before the clear never comes back, even one whose processed mark was lost.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cleared := len(s.records)
	s.records = nil
	s.generation++
	s.log.Info("Navigation records cleared.", zap.Int("cleared", cleared), zap.Uint64("generation", s.generation))
}
