package orbiter

import (
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	kitlog "github.com/go-kit/kit/log"
)

const (
	// ObjectiveCheckInterval is the minimum simulated time between two objective evaluations.
	ObjectiveCheckInterval = 20 * time.Millisecond
	// LowOrbitMinAltitude is the lowest altitude (m) above the surface which counts as orbiting.
	LowOrbitMinAltitude = 40000.
	// LowOrbitMaxAltitude is the highest altitude (m) above the surface which counts as a low orbit.
	LowOrbitMaxAltitude = 2000000.
	// OrbitalDotThreshold is the maximum |r̂·v̂| of an orbital (rather than radial) velocity, i.e. ~17°.
	OrbitalDotThreshold = 0.3
	// LandingTolerance is the altitude (m) under which the craft is considered landed.
	LandingTolerance = 1000.
)

// Objective defines an enum of the mission objectives, in the order they must be completed.
type Objective uint8

const (
	// EscapeMoon requires the craft to no longer be closest to a moon.
	EscapeMoon Objective = iota + 1
	// OrbitEarth requires a low orbit around the planet.
	OrbitEarth
	// LandOnEarth requires the craft to be at the surface of the planet.
	LandOnEarth
)

// ObjectiveOrder is the canonical order of the objectives.
var ObjectiveOrder = []Objective{EscapeMoon, OrbitEarth, LandOnEarth}

func (o Objective) String() string {
	switch o {
	case EscapeMoon:
		return "Escape Moon"
	case OrbitEarth:
		return "Earth Orbit"
	case LandOnEarth:
		return "Earth Landing"
	}
	return fmt.Sprintf("Objective(%d)", uint8(o))
}

// GuardContext is what the objective guards know of the craft: its situation relative to the
// nearest body.
type GuardContext struct {
	Nearest  int // NoBody if there is nothing around
	Kind     Kind
	Altitude float64 // above the surface of the nearest body
	RelPos   mgl64.Vec3
	RelVel   mgl64.Vec3
}

// NewGuardContext computes the context of the craft from the nearest body to it.
func NewGuardContext(bodies []Body, craft int) GuardContext {
	c := bodies[craft]
	idx, dist := nearestBody(bodies, craft, c.Pos)
	if idx == NoBody {
		return GuardContext{Nearest: NoBody}
	}
	n := bodies[idx]
	return GuardContext{
		Nearest:  idx,
		Kind:     n.Kind,
		Altitude: dist - n.Radius,
		RelPos:   c.Pos.Sub(n.Pos),
		RelVel:   c.Vel.Sub(n.Vel),
	}
}

// RadialDot returns |r̂·v̂|: zero for a purely tangential velocity and one for a radial one.
func (c GuardContext) RadialDot() float64 {
	return math.Abs(unit(c.RelPos).Dot(unit(c.RelVel)))
}

type objectiveRule struct {
	guard    func(c GuardContext) bool
	required time.Duration // how long the guard must hold continuously
}

var objectiveRules = map[Objective]objectiveRule{
	EscapeMoon: {
		guard: func(c GuardContext) bool {
			return c.Nearest == NoBody || c.Kind != Moon
		},
		required: time.Second,
	},
	OrbitEarth: {
		guard: func(c GuardContext) bool {
			if c.Nearest == NoBody || c.Kind != Planet {
				return false
			}
			if c.Altitude < LowOrbitMinAltitude || c.Altitude > LowOrbitMaxAltitude {
				return false
			}
			return c.RadialDot() < OrbitalDotThreshold
		},
		required: time.Second,
	},
	LandOnEarth: {
		guard: func(c GuardContext) bool {
			return c.Nearest != NoBody && c.Kind == Planet && c.Altitude <= LandingTolerance
		},
		required: 0,
	},
}

// RequiredDuration returns how long the guard of the objective must hold.
func (o Objective) RequiredDuration() time.Duration {
	return objectiveRules[o].required
}

// ObjectiveProgress tracks where the craft is in the objective order.
type ObjectiveProgress struct {
	Order       []Objective
	Completed   []Objective     // always a prefix of Order
	CompletedAt []time.Duration // simulated completion time of each Completed objective
	Satisfied   bool            // whether the current objective was satisfied
	SatisfiedAt time.Duration   // simulated time at which the current objective was satisfied
	cursor      int
}

// NewObjectiveProgress returns the progress at the start of the mission.
func NewObjectiveProgress(order []Objective) ObjectiveProgress {
	return ObjectiveProgress{Order: order}
}

// Current returns the objective being worked on, or false if all are completed.
func (p ObjectiveProgress) Current() (Objective, bool) {
	if p.cursor >= len(p.Order) {
		return 0, false
	}
	return p.Order[p.cursor], true
}

// AllCompleted returns whether every objective has been completed.
func (p ObjectiveProgress) AllCompleted() bool {
	return len(p.Completed) == len(p.Order)
}

// IsCompleted returns whether the provided objective has been completed.
func (p ObjectiveProgress) IsCompleted(o Objective) bool {
	for _, c := range p.Completed {
		if c == o {
			return true
		}
	}
	return false
}

func (p *ObjectiveProgress) completeCurrent(at time.Duration) {
	if p.Satisfied || p.cursor >= len(p.Order) {
		return
	}
	p.Completed = append(p.Completed, p.Order[p.cursor])
	p.CompletedAt = append(p.CompletedAt, at)
	p.Satisfied = true
	p.SatisfiedAt = at
}

// advance moves to the next objective. The last one stays satisfied.
func (p *ObjectiveProgress) advance() {
	if !p.Satisfied || p.cursor >= len(p.Order) {
		return
	}
	p.cursor++
	if p.cursor < len(p.Order) {
		p.Satisfied = false
		p.SatisfiedAt = 0
	}
}

// ObjectiveTracker is the state machine which advances the objectives of the craft.
type ObjectiveTracker struct {
	Progress ObjectiveProgress
	check    Throttle
	watches  []Stopwatch // one per objective of the order
	logger   kitlog.Logger
}

// NewObjectiveTracker returns a new tracker of ObjectiveOrder evaluating the objectives every checkInterval.
func NewObjectiveTracker(checkInterval time.Duration, logger kitlog.Logger) *ObjectiveTracker {
	return NewObjectiveTrackerFor(ObjectiveOrder, checkInterval, logger)
}

// NewObjectiveTrackerFor returns a new tracker of the provided objectives, in that order.
func NewObjectiveTrackerFor(order []Objective, checkInterval time.Duration, logger kitlog.Logger) *ObjectiveTracker {
	if checkInterval <= 0 {
		checkInterval = ObjectiveCheckInterval
	}
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	return &ObjectiveTracker{
		Progress: NewObjectiveProgress(order),
		check:    Throttle{Interval: checkInterval},
		watches:  make([]Stopwatch, len(order)),
		logger:   logger,
	}
}

// Elapsed returns how long the guard of the provided objective has been holding.
func (t *ObjectiveTracker) Elapsed(o Objective) time.Duration {
	for i, obj := range t.Progress.Order {
		if obj == o {
			return t.watches[i].Elapsed()
		}
	}
	return 0
}

// Update accumulates dt of simulated time and, once per check interval, evaluates the guard of
// the current objective. now is the current simulated time. Returns the objective completed
// during this call, if any. An invalid craft index makes this a no-op, and an objective without
// a rule is never completed.
func (t *ObjectiveTracker) Update(bodies []Body, craft int, now, dt time.Duration) (Objective, bool) {
	if craft < 0 || craft >= len(bodies) {
		return 0, false
	}
	elapsed, due := t.check.Tick(dt)
	if !due {
		return 0, false
	}
	obj, ok := t.Progress.Current()
	if !ok {
		return 0, false
	}
	rule, ok := objectiveRules[obj]
	if !ok || rule.guard == nil {
		return 0, false
	}
	watch := &t.watches[t.Progress.cursor]
	ctx := NewGuardContext(bodies, craft)
	if !rule.guard(ctx) {
		watch.Reset()
		return 0, false
	}
	watch.Tick(elapsed)
	if watch.Elapsed() < rule.required {
		return 0, false
	}
	t.Progress.completeCurrent(now)
	t.logger.Log("level", "notice", "subsys", "objectives", "completed", obj, "held", watch.Elapsed(), "at", now, "altitude", ctx.Altitude)
	t.Progress.advance()
	return obj, true
}
