package orbiter

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/floats/scalar"
)

const (
	// Restitution is the coefficient of restitution of all contacts (nearly inelastic).
	Restitution = 0.1
	// minRelMotionSq is the squared relative displacement under which there is no sweep to test.
	minRelMotionSq = 1e-6
)

// Contact describes a resolved collision between two bodies.
type Contact struct {
	A, B    int
	Normal  mgl64.Vec3 // from B to A
	Overlap float64    // penetration depth before the separation
	Impulse float64    // zero if the bodies were separating
}

// ResolveCollisions detects swept-sphere overlaps between every pair of bodies after an
// integration step of dt seconds, separates them and applies an impulse response.
// Returns the contacts which were resolved.
func ResolveCollisions(bodies []Body, dt float64) (contacts []Contact) {
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			if c, ok := resolvePair(bodies, i, j, dt); ok {
				contacts = append(contacts, c)
			}
		}
	}
	return
}

func resolvePair(bodies []Body, i, j int, dt float64) (Contact, bool) {
	a, b := &bodies[i], &bodies[j]
	minDist := a.Radius + b.Radius
	// Previous positions, from a linear backward extrapolation.
	prevA := a.Pos.Sub(a.Vel.Mul(dt))
	prevB := b.Pos.Sub(b.Vel.Mul(dt))
	if !SweptOverlap(prevA, a.Pos, prevB, b.Pos, minDist) {
		return Contact{}, false
	}
	delta := a.Pos.Sub(b.Pos)
	dist := delta.Len()
	if scalar.EqualWithinAbs(dist, 0, zeroε) {
		// Coincident centers: there is no normal to work with this tick.
		return Contact{}, false
	}
	c := Contact{A: i, B: j, Normal: delta.Mul(1 / dist)}
	if overlap := minDist - dist; overlap > 0 {
		c.Overlap = overlap
		sep := c.Normal.Mul(overlap * 0.5)
		a.Pos = a.Pos.Add(sep)
		b.Pos = b.Pos.Sub(sep)
	}
	vAlongN := a.Vel.Sub(b.Vel).Dot(c.Normal)
	if vAlongN < 0 {
		c.Impulse = -(1 + Restitution) * vAlongN / (1/a.Mass + 1/b.Mass)
		impulse := c.Normal.Mul(c.Impulse)
		a.Vel = a.Vel.Add(impulse.Mul(1 / a.Mass))
		b.Vel = b.Vel.Sub(impulse.Mul(1 / b.Mass))
	}
	return c, true
}

// SweptOverlap returns whether two spheres moving linearly from prevA to curA and prevB to curB
// come within minDist of each other during the step.
func SweptOverlap(prevA, curA, prevB, curB mgl64.Vec3, minDist float64) bool {
	if curA.Sub(curB).Len() <= minDist {
		return true
	}
	relPrev := prevA.Sub(prevB)
	if relPrev.Len() <= minDist {
		return true
	}
	relMotion := curA.Sub(prevA).Sub(curB.Sub(prevB))
	motionSq := relMotion.LenSqr()
	if motionSq < minRelMotionSq {
		return false
	}
	// Closest approach, from the derivative of the relative squared distance.
	t := -relPrev.Dot(relMotion) / motionSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return relPrev.Add(relMotion.Mul(t)).Len() <= minDist
}
