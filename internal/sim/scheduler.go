package sim

import (
	"sort"
	"sync"
	"time"
)

// Task is a handle to a scheduled callback.
type Task interface {
	Cancel()
}

// Scheduler runs callbacks after a delay or periodically.
type Scheduler interface {
	// Every runs fn every d until the returned task is cancelled.
	Every(d time.Duration, fn func()) Task
	// After runs fn once after d unless the returned task is cancelled first.
	After(d time.Duration, fn func()) Task
}

// ClockScheduler schedules callbacks on the wall clock.
type ClockScheduler struct{}

// Every starts a ticker goroutine.
func (ClockScheduler) Every(d time.Duration, fn func()) Task {
	t := &tickerTask{done: make(chan struct{})}
	ticker := time.NewTicker(d)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-t.done:
				return
			}
		}
	}()
	return t
}

// After arms a timer.
func (ClockScheduler) After(d time.Duration, fn func()) Task {
	return timerTask{time.AfterFunc(d, fn)}
}

type tickerTask struct {
	once sync.Once
	done chan struct{}
}

func (t *tickerTask) Cancel() { t.once.Do(func() { close(t.done) }) }

type timerTask struct{ t *time.Timer }

func (t timerTask) Cancel() { t.t.Stop() }

// ManualScheduler runs callbacks on virtual time moved forward by Advance.
// Callbacks run on the goroutine calling Advance.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	s        *ManualScheduler
	due      time.Duration
	period   time.Duration
	seq      int
	fn       func()
	canceled bool
}

// NewManualScheduler returns a scheduler at virtual time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Every schedules fn at now+d, now+2d, ...
func (m *ManualScheduler) Every(d time.Duration, fn func()) Task {
	if d <= 0 {
		d = time.Nanosecond
	}
	return m.add(d, d, fn)
}

// After schedules fn once at now+d.
func (m *ManualScheduler) After(d time.Duration, fn func()) Task {
	return m.add(d, 0, fn)
}

func (m *ManualScheduler) add(d, period time.Duration, fn func()) *manualTask {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTask{s: m, due: m.now + d, period: period, seq: m.seq, fn: fn}
	m.tasks = append(m.tasks, t)
	return t
}

func (t *manualTask) Cancel() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.canceled = true
}

// Now returns the elapsed virtual time.
func (m *ManualScheduler) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns the number of live tasks.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prune()
	return len(m.tasks)
}

// Advance moves virtual time forward by d, firing every task that falls due
// in order of due time, then scheduling order.
func (m *ManualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()
	for {
		m.mu.Lock()
		m.prune()
		sort.SliceStable(m.tasks, func(i, j int) bool {
			if m.tasks[i].due != m.tasks[j].due {
				return m.tasks[i].due < m.tasks[j].due
			}
			return m.tasks[i].seq < m.tasks[j].seq
		})
		if len(m.tasks) == 0 || m.tasks[0].due > target {
			m.now = target
			m.mu.Unlock()
			return
		}
		t := m.tasks[0]
		m.now = t.due
		if t.period > 0 {
			t.due += t.period
		} else {
			t.canceled = true
		}
		m.mu.Unlock()
		t.fn()
	}
}

func (m *ManualScheduler) prune() {
	live := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.canceled {
			live = append(live, t)
		}
	}
	m.tasks = live
}
