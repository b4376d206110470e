// Package schedule implements per-owner deferred tasks advanced by elapsed
// simulation time. Tasks carry plain effect values rather than closures; the
// owner decides what an effect means when it fires.
package schedule

// epsilon absorbs the drift of summing fixed tick lengths, so a task due at d
// fires on the tick where elapsed time reaches d.
const epsilon = 1e-9

// Handle identifies a scheduled task within one Scheduler.
type Handle uint64

type task[E any] struct {
	handle    Handle
	due       float64
	interval  float64 // 0 = one-shot
	effect    E
	cancelled bool
}

// Scheduler is an ordered list of delayed effects owned by a single actor.
type Scheduler[E any] struct {
	now    float64
	next   Handle
	tasks  []*task[E]
	byID   map[Handle]*task[E]
	firing bool
}

// New returns an empty scheduler with its clock at zero.
func New[E any]() *Scheduler[E] {
	return &Scheduler[E]{byID: make(map[Handle]*task[E])}
}

// Schedule arms effect to fire once delay seconds have elapsed. With a
// positive interval the task re-arms after every firing until cancelled.
func (s *Scheduler[E]) Schedule(delay, interval float64, effect E) Handle {
	if delay < 0 {
		delay = 0
	}
	if interval < 0 {
		interval = 0
	}
	s.next++
	t := &task[E]{
		handle:   s.next,
		due:      s.now + delay,
		interval: interval,
		effect:   effect,
	}
	s.tasks = append(s.tasks, t)
	s.byID[t.handle] = t
	return t.handle
}

// Advance moves the clock forward by dt and fires every due task in
// insertion order. A task fires at most once per call. Tasks cancelled by an
// earlier effect in the same call are skipped; tasks scheduled from inside
// fire wait for a later call.
func (s *Scheduler[E]) Advance(dt float64, fire func(Handle, E)) {
	if dt > 0 {
		s.now += dt
	}
	pending := s.tasks[:len(s.tasks):len(s.tasks)]
	s.firing = true
	for _, t := range pending {
		if t.cancelled || s.now+epsilon < t.due {
			continue
		}
		if t.interval > 0 {
			t.due += t.interval
		} else {
			s.retire(t)
		}
		if fire != nil {
			fire(t.handle, t.effect)
		}
	}
	s.firing = false
	s.compact()
}

// Cancel stops the task behind h. Unknown or finished handles are ignored.
func (s *Scheduler[E]) Cancel(h Handle) {
	if t, ok := s.byID[h]; ok {
		s.retire(t)
		if !s.firing {
			s.compact()
		}
	}
}

// CancelAll stops every outstanding task of this owner.
func (s *Scheduler[E]) CancelAll() {
	for _, t := range s.tasks {
		t.cancelled = true
	}
	s.byID = make(map[Handle]*task[E])
	if !s.firing {
		s.tasks = s.tasks[:0]
	}
}

// Active reports whether h is still waiting to fire.
func (s *Scheduler[E]) Active(h Handle) bool {
	_, ok := s.byID[h]
	return ok
}

// Remaining returns the time until h next fires, or 0 if it is not active.
func (s *Scheduler[E]) Remaining(h Handle) float64 {
	t, ok := s.byID[h]
	if !ok {
		return 0
	}
	if r := t.due - s.now; r > 0 {
		return r
	}
	return 0
}

// Len returns the number of outstanding tasks.
func (s *Scheduler[E]) Len() int { return len(s.byID) }

// Now returns the owner's accumulated clock.
func (s *Scheduler[E]) Now() float64 { return s.now }

func (s *Scheduler[E]) retire(t *task[E]) {
	t.cancelled = true
	delete(s.byID, t.handle)
}

func (s *Scheduler[E]) compact() {
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.cancelled {
			kept = append(kept, t)
		}
	}
	for i := len(kept); i < len(s.tasks); i++ {
		s.tasks[i] = nil
	}
	s.tasks = kept
}
