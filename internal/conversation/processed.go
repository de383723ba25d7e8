package conversation

import "sync"

const defaultProcessedCapacity = 4096

// processedSet remembers recently handled message IDs so a redelivered
// notification is acknowledged without being answered twice. Once full,
// the oldest IDs are evicted first.
type processedSet struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
	limit int
}

func newProcessedSet(limit int) *processedSet {
	if limit <= 0 {
		limit = defaultProcessedCapacity
	}
	return &processedSet{
		seen:  make(map[string]struct{}, limit),
		limit: limit,
	}
}

// Seen reports whether id was already marked. Empty IDs are never seen.
func (s *processedSet) Seen(id string) bool {
	if id == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[id]
	return ok
}

// Mark records id as handled, evicting the oldest entry when the set is
// full. Empty IDs are ignored.
func (s *processedSet) Mark(id string) {
	if id == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[id]; ok {
		return
	}
	if len(s.order) >= s.limit {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.seen, oldest)
	}
	s.seen[id] = struct{}{}
	s.order = append(s.order, id)
}
