package urlstate

import (
	"sync"
	"time"
)

// FlushPolicy selects how a state change reaches the URL.
type FlushPolicy int

const (
	// Debounced coalesces a burst of changes into one trailing flush.
	Debounced FlushPolicy = iota
	// Immediate cancels any pending flush and writes synchronously.
	Immediate
)

func (p FlushPolicy) String() string {
	switch p {
	case Immediate:
		return "immediate"
	default:
		return "debounced"
	}
}

// Timer is a scheduled task that can be cancelled before it runs.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clockScheduler struct{}

func (clockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ClockScheduler schedules on the wall clock.
func ClockScheduler() Scheduler { return clockScheduler{} }

// ManualScheduler only runs tasks when Advance is called. It is used by tests
// and by callers that drive flushing from their own event loop.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	tasks []*manualTask
}

type manualTask struct {
	s       *ManualScheduler
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTask) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (m *ManualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTask{s: m, at: m.now + d, f: f}
	m.tasks = append(m.tasks, t)
	return t
}

// Advance moves the manual clock forward and runs every task that came due,
// outside the scheduler lock.
func (m *ManualScheduler) Advance(d time.Duration) int {
	m.mu.Lock()
	m.now += d
	var due []*manualTask
	kept := m.tasks[:0]
	for _, t := range m.tasks {
		switch {
		case t.stopped:
		case t.at <= m.now:
			t.fired = true
			due = append(due, t)
		default:
			kept = append(kept, t)
		}
	}
	m.tasks = kept
	m.mu.Unlock()

	for _, t := range due {
		t.f()
	}
	return len(due)
}

// Outstanding returns the number of scheduled, not yet run or stopped tasks.
func (m *ManualScheduler) Outstanding() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}
