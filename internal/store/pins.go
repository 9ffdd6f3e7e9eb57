package store

import (
	"container/list"
	"sync"

	"pincheck/internal/models"
)

const (
	// DefaultMaxPins bounds the store size.
	DefaultMaxPins = 300

	// HardListCap bounds a single List response regardless of the caller.
	HardListCap = 200
)

// PinStore holds at most one pin per user, most recent first, bounded to
// maxPins entries. A per-user index makes replacement O(1).
type PinStore struct {
	mu      sync.RWMutex
	maxPins int
	order   *list.List
	byUser  map[string]*list.Element
}

// NewPinStore creates an empty store bounded to maxPins.
func NewPinStore(maxPins int) *PinStore {
	if maxPins <= 0 {
		maxPins = DefaultMaxPins
	}
	return &PinStore{
		maxPins: maxPins,
		order:   list.New(),
		byUser:  make(map[string]*list.Element),
	}
}

// Upsert replaces any pin held for pin.User and inserts pin at the front,
// evicting from the tail while the store is over its bound.
func (s *PinStore) Upsert(pin models.Pin) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.byUser[pin.User]; ok {
		s.order.Remove(el)
		delete(s.byUser, pin.User)
	}

	s.byUser[pin.User] = s.insertOrdered(pin)

	for s.order.Len() > s.maxPins {
		tail := s.order.Back()
		s.order.Remove(tail)
		delete(s.byUser, tail.Value.(models.Pin).User)
	}
}

// insertOrdered keeps CreatedAt descending. Fresh pins go to the front; a pin
// stamped earlier than the current head (clock skew between goroutines) is
// placed after every newer pin.
func (s *PinStore) insertOrdered(pin models.Pin) *list.Element {
	for el := s.order.Front(); el != nil; el = el.Next() {
		if !el.Value.(models.Pin).CreatedAt.After(pin.CreatedAt) {
			return s.order.InsertBefore(pin, el)
		}
	}
	return s.order.PushBack(pin)
}

// List returns up to n pins, most recent first. n is clamped to HardListCap.
func (s *PinStore) List(n int) []models.Pin {
	if n > HardListCap {
		n = HardListCap
	}
	if n <= 0 {
		return []models.Pin{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if n > s.order.Len() {
		n = s.order.Len()
	}
	pins := make([]models.Pin, 0, n)
	for el := s.order.Front(); el != nil && len(pins) < n; el = el.Next() {
		pins = append(pins, el.Value.(models.Pin))
	}
	return pins
}

// Get returns the current pin for user.
func (s *PinStore) Get(user string) (models.Pin, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	el, ok := s.byUser[user]
	if !ok {
		return models.Pin{}, false
	}
	return el.Value.(models.Pin), true
}

// Len returns the number of pins held.
func (s *PinStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.order.Len()
}
