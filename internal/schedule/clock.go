package schedule

import (
	"sort"
	"sync"
	"time"
)

// Timer is a cancelable deferred task.
type Timer interface {
	// Stop prevents the task from running. It reports whether the call
	// stopped the task before it fired.
	Stop() bool
}

// Clock starts deferred tasks.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemClock runs deferred tasks on real time.
type SystemClock struct{}

// AfterFunc wraps time.AfterFunc.
func (SystemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ManualClock is a virtual clock. Tasks run synchronously inside Advance,
// in deadline order.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Duration
	nextID uint64
	tasks  []*manualTimer
}

type manualTimer struct {
	clock    *ManualClock
	id       uint64
	deadline time.Duration
	f        func()
	done     bool
}

// NewManualClock returns a clock positioned at virtual time zero.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// Now returns the elapsed virtual time.
func (c *ManualClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Pending returns the number of tasks that have neither fired nor been stopped.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tasks)
}

// AfterFunc schedules f to run once virtual time reaches now+d.
func (c *ManualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	t := &manualTimer{clock: c, id: c.nextID, deadline: c.now + d, f: f}
	c.tasks = append(c.tasks, t)
	return t
}

// Advance moves virtual time forward by d, running every task whose deadline
// is reached. Tasks scheduled while advancing run too if they fall due.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	for {
		c.mu.Lock()
		next := c.nextDueLocked(target)
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = next.deadline
		next.done = true
		c.removeLocked(next)
		c.mu.Unlock()

		next.f()
	}
}

func (c *ManualClock) nextDueLocked(target time.Duration) *manualTimer {
	due := make([]*manualTimer, 0, len(c.tasks))
	for _, t := range c.tasks {
		if t.deadline <= target {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].deadline != due[j].deadline {
			return due[i].deadline < due[j].deadline
		}
		return due[i].id < due[j].id
	})
	return due[0]
}

func (c *ManualClock) removeLocked(t *manualTimer) {
	for i, cur := range c.tasks {
		if cur == t {
			c.tasks = append(c.tasks[:i], c.tasks[i+1:]...)
			return
		}
	}
}

func (t *manualTimer) Stop() bool {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	c.removeLocked(t)
	return true
}
