package scraper

import "sync"

// Ledger is the set of listing URLs already known: those loaded from
// storage at start plus those discovered during the run. URLs are only
// ever added.
type Ledger struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewLedger seeds a ledger with known URLs. The map is copied.
func NewLedger(known map[string]struct{}) *Ledger {
	seen := make(map[string]struct{}, len(known))
	for url := range known {
		if url != "" {
			seen[url] = struct{}{}
		}
	}
	return &Ledger{seen: seen}
}

func (l *Ledger) IsNew(url string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.seen[url]
	return !ok
}

// MarkIfNew marks url and reports whether it was new, as one step.
func (l *Ledger) MarkIfNew(url string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.seen[url]; ok {
		return false
	}
	l.seen[url] = struct{}{}
	return true
}

func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.seen)
}

// Snapshot returns a copy of the known URLs.
func (l *Ledger) Snapshot() map[string]struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]struct{}, len(l.seen))
	for url := range l.seen {
		out[url] = struct{}{}
	}
	return out
}
