package jobs

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/relaydesk/relaydesk/internal/domain"
	"github.com/relaydesk/relaydesk/internal/kb"
)

// KBReloader watches knowledge base source files and swaps in a fresh
// snapshot when one changes on disk. A file that fails to parse leaves the
// previous snapshot serving; queries never see a partially loaded tier.
type KBReloader struct {
	store   *kb.Store
	sources map[domain.Tier]string
	modTime map[domain.Tier]time.Time
}

func NewKBReloader(store *kb.Store, sources map[domain.Tier]string) *KBReloader {
	return &KBReloader{
		store:   store,
		sources: sources,
		modTime: make(map[domain.Tier]time.Time, len(sources)),
	}
}

// Prime records the current modification times without reloading, so a
// freshly started worker does not immediately re-read files loaded at boot.
func (r *KBReloader) Prime() {
	for tier, path := range r.sources {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		r.modTime[tier] = info.ModTime()
	}
}

// ProcessJobs checks each source file and reloads the tiers whose files
// changed since the last poll.
func (r *KBReloader) ProcessJobs(ctx context.Context) error {
	for tier, path := range r.sources {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		info, err := os.Stat(path)
		if err != nil {
			log.Printf("kb reload: stat %s failed: %v", path, err)
			continue
		}

		last, seen := r.modTime[tier]
		if seen && !info.ModTime().After(last) {
			continue
		}

		base, err := kb.LoadFile(path, tier)
		if err != nil {
			// Keep serving the previous snapshot.
			log.Printf("kb reload: load %s failed, keeping previous snapshot: %v", path, err)
			r.modTime[tier] = info.ModTime()
			continue
		}

		r.store.Set(tier, base)
		r.modTime[tier] = info.ModTime()
		log.Printf("kb reload: tier %s reloaded from %s (%d entries)", tier, path, base.Len())
	}
	return nil
}
