package sequence

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/2019UGEC100/matching-core/pkg/model"
)

// Sequencer hands out order identities: a random UUID, a non-decreasing
// arrival time and a strictly increasing sequence number. Two orders stamped
// within the same clock tick get equal times and are told apart by Seq.
//
// Safe for concurrent use.
type Sequencer struct {
	mu   sync.Mutex
	seq  uint64
	last time.Time
	now  func() time.Time
}

// New creates a sequencer whose first stamp carries Seq start+1.
// On a fresh start pass 0.
func New(start uint64) *Sequencer {
	return &Sequencer{seq: start, now: time.Now}
}

// WithClock replaces the time source, mainly for deterministic tests.
func (s *Sequencer) WithClock(now func() time.Time) *Sequencer {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
	return s
}

// Next implements model.IDSource.
func (s *Sequencer) Next() model.Stamp {
	s.mu.Lock()
	defer s.mu.Unlock()

	at := s.now()
	if at.Before(s.last) {
		at = s.last
	}
	s.last = at
	s.seq++

	return model.Stamp{
		ID:  uuid.NewString(),
		At:  at,
		Seq: s.seq,
	}
}

// Current returns the last issued sequence number.
func (s *Sequencer) Current() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// TradeID returns a fresh identifier for an execution record.
func TradeID() string {
	return uuid.NewString()
}
