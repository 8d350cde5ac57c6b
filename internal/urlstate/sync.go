package urlstate

import (
	"log/slog"
	"sync"
	"time"
)

// Section is a named UI region whose state can be reflected in the URL.
type Section struct {
	Defaults State
	// OnRestore is called synchronously by InitFromURL with the restored state.
	OnRestore func(State)
}

type sectionState struct {
	defaults  State
	current   State
	onRestore func(State)
}

type Options struct {
	// Debounce is the trailing-edge window for Debounced updates.
	Debounce  time.Duration
	Scheduler Scheduler
	Logger    *slog.Logger
}

// Synchronizer batches section state changes into one URL write.
//
// Only the active section's state is written; switching sections keeps the
// previous section's state in memory but drops it from the URL. At most one
// flush task is pending at any time.
type Synchronizer struct {
	loc      Location
	debounce time.Duration
	sched    Scheduler
	log      *slog.Logger

	mu       sync.Mutex
	sections map[string]*sectionState
	active   string
	pending  Timer
	gen      uint64
	closed   bool
}

func New(loc Location, opts Options) *Synchronizer {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 150 * time.Millisecond
	}
	sched := opts.Scheduler
	if sched == nil {
		sched = ClockScheduler()
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Synchronizer{
		loc:      loc,
		debounce: debounce,
		sched:    sched,
		log:      log,
		sections: map[string]*sectionState{},
	}
}

// RegisterSection adds or replaces a section. Re-registering keeps nothing of
// the previous registration.
func (s *Synchronizer) RegisterSection(name string, sec Section) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sections[name] = &sectionState{
		defaults:  sec.Defaults.Clone(),
		current:   sec.Defaults.Clone(),
		onRestore: sec.OnRestore,
	}
}

// UpdateSectionState merges partial into the section's state, makes it the
// active section and schedules a flush.
func (s *Synchronizer) UpdateSectionState(name string, partial State, policy FlushPolicy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	sec := s.sections[name]
	if sec == nil {
		sec = &sectionState{defaults: State{}, current: State{}}
		s.sections[name] = sec
	}
	sec.current = sec.current.Merge(partial)
	s.active = name
	s.scheduleLocked(policy)
}

// SetActiveSection switches URL ownership to name. It is a no-op when name is
// already active, so it can be called on every scroll event.
func (s *Synchronizer) SetActiveSection(name string, policy FlushPolicy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || name == s.active {
		return
	}
	s.active = name
	s.scheduleLocked(policy)
}

func (s *Synchronizer) ActiveSection() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// State returns a copy of a section's current state.
func (s *Synchronizer) State(name string) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sec := s.sections[name]
	if sec == nil {
		return nil, false
	}
	return sec.current.Clone(), true
}

// Pending reports whether a debounced flush is scheduled.
func (s *Synchronizer) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Flush cancels any pending task and writes the active section's hash now.
// It reports whether the location was written.
func (s *Synchronizer) Flush() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	return s.flushLocked()
}

// Hash returns the hash the next flush would write.
func (s *Synchronizer) Hash() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hashLocked()
}

// InitFromURL reads the location once. When the hash names a registered
// section, that section's state is replaced by its defaults overlaid with the
// parsed keys and OnRestore is called. The parsed result is returned either way.
func (s *Synchronizer) InitFromURL() Parsed {
	parsed := Parse(s.loc.Hash())

	s.mu.Lock()
	sec := s.sections[parsed.Section]
	if sec == nil || parsed.Section == "" {
		s.mu.Unlock()
		return parsed
	}
	sec.current = sec.defaults.Merge(parsed.State)
	s.active = parsed.Section
	restored := sec.current.Clone()
	onRestore := sec.onRestore
	s.mu.Unlock()

	s.log.Debug("url state restored", slog.String("section", parsed.Section), slog.Any("state", restored))
	if onRestore != nil {
		onRestore(restored)
	}
	return parsed
}

// Close cancels the pending flush. Later updates are ignored.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	s.closed = true
}

func (s *Synchronizer) scheduleLocked(policy FlushPolicy) {
	if policy == Immediate {
		s.cancelLocked()
		s.flushLocked()
		return
	}
	if s.pending != nil {
		return
	}
	s.gen++
	gen := s.gen
	s.pending = s.sched.AfterFunc(s.debounce, func() { s.onTimer(gen) })
}

func (s *Synchronizer) onTimer(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil || gen != s.gen {
		// Cancelled or superseded.
		return
	}
	s.pending = nil
	s.flushLocked()
}

func (s *Synchronizer) cancelLocked() {
	if s.pending == nil {
		return
	}
	s.pending.Stop()
	s.pending = nil
	s.gen++
}

func (s *Synchronizer) hashLocked() string {
	if s.active == "" {
		return ""
	}
	sec := s.sections[s.active]
	if sec == nil {
		return "#" + s.active
	}
	return Format(s.active, sec.current, sec.defaults)
}

func (s *Synchronizer) flushLocked() bool {
	hash := s.hashLocked()
	if hash == "" || hash == s.loc.Hash() {
		return false
	}
	s.loc.ReplaceHash(hash)
	s.log.Debug("url state written", slog.String("hash", hash))
	return true
}
