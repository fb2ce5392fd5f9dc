package orbiter

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// NoBody is the index used when a body has no resolved central body.
const NoBody = -1

// Body is the physical state of a body of the simulation.
// Bodies live in a slice owned by the host and are addressed by their index in it.
type Body struct {
	Name   string
	Kind   Kind
	Pos    mgl64.Vec3 // z is always zero
	Vel    mgl64.Vec3
	Force  mgl64.Vec3 // accumulated during a tick, consumed by ApplyForces
	Mass   float64
	Radius float64
	// NonGravitating bodies receive gravity but do not exert any (the craft).
	NonGravitating bool
	// Central is the index of the dominant attractor, recomputed every tick.
	Central int
}

// CentralBody returns the index of the central body, if any.
func (b Body) CentralBody() (int, bool) {
	return b.Central, b.Central != NoBody
}

// String implements the Stringer interface.
func (b Body) String() string {
	return fmt.Sprintf("%s r=(%.1f, %.1f) v=(%.3f, %.3f)", b.Name, b.Pos[0], b.Pos[1], b.Vel[0], b.Vel[1])
}

// ApplyForces converts the accumulated force of each body into a velocity change over dt
// (in seconds) and resets the force.
func ApplyForces(bodies []Body, dt float64) {
	for i := range bodies {
		b := &bodies[i]
		if b.Force == (mgl64.Vec3{}) {
			continue
		}
		b.Vel = b.Vel.Add(flat(b.Force).Mul(dt / b.Mass))
		b.Force = mgl64.Vec3{}
	}
}

// nearestBody returns the index of and distance to the closest body (other than skip and
// bodies of kind Craft) to the provided position.
func nearestBody(bodies []Body, skip int, pos mgl64.Vec3) (idx int, distance float64) {
	idx = NoBody
	for i, b := range bodies {
		if i == skip || b.Kind == Craft {
			continue
		}
		if d := b.Pos.Sub(pos).Len(); idx == NoBody || d < distance {
			idx = i
			distance = d
		}
	}
	return
}

// Trail stores a bounded list of past positions of a body, oldest first.
type Trail struct {
	points []mgl64.Vec3
	max    int
}

// NewTrail returns a new trail holding up to max points.
func NewTrail(max int) *Trail {
	return &Trail{make([]mgl64.Vec3, 0, max), max}
}

// Add appends a point and drops the oldest ones beyond the capacity.
func (t *Trail) Add(p mgl64.Vec3) {
	if t.max <= 0 {
		return
	}
	t.points = append(t.points, p)
	if excess := len(t.points) - t.max; excess > 0 {
		t.points = append(t.points[:0], t.points[excess:]...)
	}
}

// Points returns the trail points, oldest first. The slice must not be modified.
func (t *Trail) Points() []mgl64.Vec3 {
	return t.points
}

// Len returns the number of points currently stored.
func (t *Trail) Len() int {
	return len(t.points)
}
