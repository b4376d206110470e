package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collect advances s by dt and returns the effects fired, in order.
func collect(s *Scheduler[string], dt float64) []string {
	var fired []string
	s.Advance(dt, func(_ Handle, e string) { fired = append(fired, e) })
	return fired
}

func TestScheduler_OneShotFiresOnceAtDelay(t *testing.T) {
	s := New[string]()
	h := s.Schedule(1.0, 0, "resume")

	assert.Empty(t, collect(s, 0.25))
	assert.Empty(t, collect(s, 0.25))
	assert.Empty(t, collect(s, 0.25))
	assert.InDelta(t, 0.25, s.Remaining(h), 1e-9)
	assert.Equal(t, []string{"resume"}, collect(s, 0.25), "fires on the tick elapsed reaches the delay")
	assert.False(t, s.Active(h))

	for i := 0; i < 10; i++ {
		assert.Empty(t, collect(s, 0.5))
	}
	assert.Zero(t, s.Len())
}

func TestScheduler_OneShotWithOvershoot(t *testing.T) {
	s := New[string]()
	s.Schedule(0.3, 0, "x")
	// 0.1 thrice accumulates to slightly above 0.3 and must fire on the third step.
	assert.Empty(t, collect(s, 0.1))
	assert.Empty(t, collect(s, 0.1))
	assert.Equal(t, []string{"x"}, collect(s, 0.1))
}

// firstFiringTick advances s by dt until something fires and returns the
// 1-based tick it fired on, or -1.
func firstFiringTick(s *Scheduler[string], dt float64, limit int) int {
	for tick := 1; tick <= limit; tick++ {
		if len(collect(s, dt)) > 0 {
			return tick
		}
	}
	return -1
}

func TestScheduler_FiresOnTickElapsedReachesDelay(t *testing.T) {
	tests := []struct {
		name  string
		delay float64
		dt    float64
		want  int
	}{
		{"tenths", 1.0, 0.1, 10},
		{"sixtieths", 5.0, 1.0 / 60, 300},
		{"thirtieths", 10.0, 1.0 / 30, 300},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := New[string]()
			s.Schedule(tc.delay, 0, "due")
			assert.Equal(t, tc.want, firstFiringTick(s, tc.dt, tc.want+5))
			assert.InDelta(t, tc.delay, s.Now(), 1e-6)
		})
	}
}

func TestScheduler_IntervalDoesNotDriftAtFrameRate(t *testing.T) {
	s := New[string]()
	s.Schedule(5, 5, "fire")
	var ticks []int
	for tick := 1; tick <= 900; tick++ {
		if len(collect(s, 1.0/60)) > 0 {
			ticks = append(ticks, tick)
		}
	}
	assert.Equal(t, []int{300, 600, 900}, ticks)
}

func TestScheduler_CancelledNeverFires(t *testing.T) {
	s := New[string]()
	h := s.Schedule(0.5, 0, "a")
	s.Cancel(h)
	assert.Empty(t, collect(s, 1))
	assert.False(t, s.Active(h))
	assert.Zero(t, s.Remaining(h))
}

func TestScheduler_IntervalRearms(t *testing.T) {
	s := New[string]()
	h := s.Schedule(5, 5, "fire")

	count := 0
	for i := 0; i < 40; i++ { // 20 seconds at 0.5s per tick
		count += len(collect(s, 0.5))
	}
	assert.Equal(t, 4, count)
	assert.True(t, s.Active(h))

	s.Cancel(h)
	for i := 0; i < 20; i++ {
		assert.Empty(t, collect(s, 0.5))
	}
}

func TestScheduler_FiresInInsertionOrder(t *testing.T) {
	s := New[string]()
	s.Schedule(1, 0, "first")
	s.Schedule(0.5, 0, "second")
	s.Schedule(1, 0, "third")
	assert.Equal(t, []string{"first", "second", "third"}, collect(s, 1))
}

func TestScheduler_CancelAllFromInsideDispatch(t *testing.T) {
	s := New[string]()
	s.Schedule(1, 0, "flee")
	s.Schedule(1, 0, "resume")
	s.Schedule(1, 1, "attack")

	var fired []string
	s.Advance(1, func(_ Handle, e string) {
		fired = append(fired, e)
		if e == "flee" {
			s.CancelAll()
			s.Schedule(2, 0, "flee-over")
		}
	})
	assert.Equal(t, []string{"flee"}, fired, "later tasks were cancelled by the first effect")
	require.Equal(t, 1, s.Len())

	assert.Empty(t, collect(s, 1))
	assert.Equal(t, []string{"flee-over"}, collect(s, 1))
}

func TestScheduler_ScheduledDuringDispatchWaits(t *testing.T) {
	s := New[string]()
	s.Schedule(0, 0, "now")
	var fired []string
	s.Advance(0.1, func(_ Handle, e string) {
		fired = append(fired, e)
		s.Schedule(0, 0, "chained")
	})
	assert.Equal(t, []string{"now"}, fired)
	assert.Equal(t, []string{"chained"}, collect(s, 0.1))
}

func TestScheduler_CancelSelfFromInterval(t *testing.T) {
	s := New[string]()
	shots := 0
	for i := 0; i < 10; i++ {
		s.Advance(1, func(h Handle, _ string) {
			shots++
			if shots == 2 {
				s.Cancel(h)
			}
		})
		if i == 0 {
			s.Schedule(1, 1, "shot")
		}
	}
	assert.Equal(t, 2, shots)
	assert.Zero(t, s.Len())
}

func TestScheduler_NegativeDelayClamps(t *testing.T) {
	s := New[string]()
	s.Schedule(-3, -1, "late")
	assert.Equal(t, []string{"late"}, collect(s, 0))
	assert.Empty(t, collect(s, 1))
}
