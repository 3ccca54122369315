package ids

import (
	"sync"
	"time"

	"github.com/segmentio/ksuid"
)

// New returns a sortable, globally unique string id.
func New() string {
	return ksuid.New().String()
}

// Sequence hands out strictly increasing int64 ids. Values follow the
// millisecond clock while it moves forward; callers in the same
// millisecond get the next integer instead of a duplicate.
type Sequence struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewSequence() *Sequence {
	return &Sequence{now: time.Now}
}

// NewSequenceWithClock is used by tests to pin the clock.
func NewSequenceWithClock(now func() time.Time) *Sequence {
	return &Sequence{now: now}
}

func (s *Sequence) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.now().UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}

// Observe moves the sequence past an id that was allocated elsewhere,
// e.g. fixture or restored snapshot rows.
func (s *Sequence) Observe(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id > s.last {
		s.last = id
	}
}
