package relocator

import (
	"sync"

	"github.com/chxlky/webhook-relay/internal/models"
)

// PendingSet tracks the cards of one relocation that still wait for their
// move to complete. It is safe for concurrent use.
type PendingSet struct {
	mu       sync.Mutex
	order    []string
	pending  map[string]struct{}
	outcomes map[string]error
	drained  bool
}

func NewPendingSet(ids []string) *PendingSet {
	s := &PendingSet{
		pending:  make(map[string]struct{}, len(ids)),
		outcomes: make(map[string]error, len(ids)),
	}
	for _, id := range ids {
		if _, ok := s.pending[id]; ok {
			continue
		}
		s.pending[id] = struct{}{}
		s.order = append(s.order, id)
	}
	return s
}

// Complete records the outcome of a move and removes the card from the set.
// It returns true for exactly one call: the one that empties the set.
// Unknown or already completed ids are ignored.
func (s *PendingSet) Complete(id string, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pending[id]; !ok {
		return false
	}
	delete(s.pending, id)
	s.outcomes[id] = err

	if len(s.pending) == 0 && !s.drained {
		s.drained = true
		return true
	}
	return false
}

// IDs returns the distinct seeded ids in seeding order.
func (s *PendingSet) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

func (s *PendingSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Outcomes lists the recorded outcomes in seeding order.
func (s *PendingSet) Outcomes() []models.MoveOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.MoveOutcome, 0, len(s.outcomes))
	for _, id := range s.order {
		err, ok := s.outcomes[id]
		if !ok {
			continue
		}
		o := models.MoveOutcome{CardID: id, Moved: err == nil}
		if err != nil {
			o.Error = err.Error()
		}
		out = append(out, o)
	}
	return out
}
