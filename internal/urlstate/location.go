package urlstate

import "sync"

// Location is the URL the synchronizer writes to. ReplaceHash replaces the
// current history entry; it must not call back into the Synchronizer.
type Location interface {
	Hash() string
	ReplaceHash(hash string)
}

// MemoryLocation is an in-process Location that counts history writes.
type MemoryLocation struct {
	mu     sync.Mutex
	hash   string
	writes int
}

func NewMemoryLocation(hash string) *MemoryLocation {
	return &MemoryLocation{hash: hash}
}

func (l *MemoryLocation) Hash() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hash
}

func (l *MemoryLocation) ReplaceHash(hash string) {
	l.mu.Lock()
	l.hash = hash
	l.writes++
	l.mu.Unlock()
}

// Writes returns how many times ReplaceHash was called.
func (l *MemoryLocation) Writes() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writes
}
