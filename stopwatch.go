package orbiter

import "time"

// Stopwatch accumulates elapsed simulated time.
type Stopwatch struct {
	elapsed time.Duration
}

// Tick adds the provided duration to the elapsed time.
func (s *Stopwatch) Tick(d time.Duration) {
	if d > 0 {
		s.elapsed += d
	}
}

// Reset sets the elapsed time back to zero.
func (s *Stopwatch) Reset() {
	s.elapsed = 0
}

// Elapsed returns the accumulated time.
func (s Stopwatch) Elapsed() time.Duration {
	return s.elapsed
}

// Throttle lets an action run at most once per Interval of accumulated time.
type Throttle struct {
	Interval time.Duration
	watch    Stopwatch
}

// Tick accumulates d and returns whether the interval has been reached, along with the total
// time accumulated since the previous trigger. The accumulator is reset when it triggers.
func (t *Throttle) Tick(d time.Duration) (time.Duration, bool) {
	t.watch.Tick(d)
	if elapsed := t.watch.Elapsed(); elapsed >= t.Interval {
		t.watch.Reset()
		return elapsed, true
	}
	return 0, false
}
