package catalog

import (
	"sort"
	"sync"
	"time"

	"github.com/rickgao/steamlytics/api"
)

// registryState holds the thread-safe item cache.
type registryState struct {
	mu sync.RWMutex

	// All known items indexed by market hash name.
	items map[string]api.Item

	// Last successful sync.
	lastSyncAt time.Time

	changes chan ItemChange
}

func newState() *registryState {
	return &registryState{
		items:   make(map[string]api.Item),
		changes: make(chan ItemChange, ChangeBufferSize),
	}
}

func (s *registryState) getItem(name string) (api.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.items[name]
	return it, ok
}

// getItems returns a sorted copy of all items (read-locked).
func (s *registryState) getItems() []api.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]api.Item, 0, len(s.items))
	for _, it := range s.items {
		result = append(result, it)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].MarketHashName < result[j].MarketHashName
	})
	return result
}

func (s *registryState) size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// replace swaps in a fresh catalog and returns what changed. Entries with
// an empty market hash name are skipped.
func (s *registryState) replace(items []api.Item) (added []api.Item, removed []string) {
	next := make(map[string]api.Item, len(items))
	for _, it := range items {
		if it.MarketHashName == "" {
			continue
		}
		next[it.MarketHashName] = it
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for name, it := range next {
		if _, ok := s.items[name]; !ok {
			added = append(added, it)
		}
	}
	for name := range s.items {
		if _, ok := next[name]; !ok {
			removed = append(removed, name)
		}
	}
	sort.Slice(added, func(i, j int) bool { return added[i].MarketHashName < added[j].MarketHashName })
	sort.Strings(removed)

	s.items = next
	s.lastSyncAt = time.Now()
	return added, removed
}

// notifyChange sends a change to the changes channel (non-blocking).
func (s *registryState) notifyChange(change ItemChange) {
	select {
	case s.changes <- change:
	default:
		// Channel full, drop oldest by consuming one and retrying.
		select {
		case <-s.changes:
			s.changes <- change
		default:
		}
	}
}
