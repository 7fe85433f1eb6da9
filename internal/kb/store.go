package kb

import (
	"sync"

	"github.com/relaydesk/relaydesk/internal/domain"
)

// Store holds the current knowledge-base snapshot per tier. Snapshots are
// immutable; Set swaps the whole snapshot so in-flight queries keep reading
// a consistent view.
type Store struct {
	mu    sync.RWMutex
	tiers map[domain.Tier]*KnowledgeBase
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{tiers: make(map[domain.Tier]*KnowledgeBase)}
}

// Get returns the current snapshot for a tier, or nil if the tier has no
// knowledge base (nil degrades to a permanent no-match downstream).
func (s *Store) Get(tier domain.Tier) *KnowledgeBase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tiers[tier]
}

// Set replaces the snapshot for a tier.
func (s *Store) Set(tier domain.Tier, snapshot *KnowledgeBase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tiers[tier] = snapshot
}
