package orbiter

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/sync/errgroup"
)

/* Handles the N-body gravitational integration. */

// Gravity is a velocity Verlet (leapfrog) integrator which also resolves the central body of
// every body. It owns the per-body scratch accelerations so that no position is written before
// every acceleration of a pass has been computed from the same snapshot.
type Gravity struct {
	Workers int // Number of goroutines for the acceleration passes (<= 1 is sequential)
	acc0    []mgl64.Vec3
	acc1    []mgl64.Vec3
	central []int
}

// NewGravity returns a new gravity integrator.
func NewGravity(workers int) *Gravity {
	return &Gravity{Workers: workers}
}

// Step advances all the bodies by dt seconds and assigns their central body.
func (g *Gravity) Step(bodies []Body, dt float64) {
	n := len(bodies)
	if cap(g.acc0) < n {
		g.acc0 = make([]mgl64.Vec3, n)
		g.acc1 = make([]mgl64.Vec3, n)
		g.central = make([]int, n)
	}
	g.acc0, g.acc1, g.central = g.acc0[:n], g.acc1[:n], g.central[:n]

	// First pass: a0 and the central body, from the snapshot at the start of the tick.
	g.forEach(n, func(i int) {
		g.acc0[i], g.central[i] = Acceleration(bodies, i)
	})
	for i := range bodies {
		b := &bodies[i]
		b.Pos = flat(b.Pos.Add(b.Vel.Mul(dt)).Add(g.acc0[i].Mul(0.5 * dt * dt)))
		b.Central = g.central[i]
	}
	// Second pass: a1 from the updated positions.
	g.forEach(n, func(i int) {
		g.acc1[i], _ = Acceleration(bodies, i)
	})
	for i := range bodies {
		b := &bodies[i]
		b.Vel = flat(b.Vel.Add(g.acc0[i].Add(g.acc1[i]).Mul(0.5 * dt)))
	}
}

// forEach calls f for every index, fanning out over the workers if there are enough bodies.
// f must only write to the slot of its own index.
func (g *Gravity) forEach(n int, f func(i int)) {
	workers := g.Workers
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}
	var eg errgroup.Group
	chunk := (n + workers - 1) / workers
	for start := 0; start < n; start += chunk {
		start, end := start, start+chunk
		if end > n {
			end = n
		}
		eg.Go(func() error {
			for i := start; i < end; i++ {
				f(i)
			}
			return nil
		})
	}
	eg.Wait() // never errors
}

// Acceleration returns the net gravitational acceleration on bodies[target] and the index of the
// body which contributes the largest acceleration (NoBody if no other body gravitates).
// Ties keep the first body encountered.
func Acceleration(bodies []Body, target int) (acc mgl64.Vec3, central int) {
	central = NoBody
	maxAcc := 0.0
	tgtPos := bodies[target].Pos
	for i, src := range bodies {
		if i == target || src.NonGravitating {
			continue
		}
		a := pointMassAcceleration(src.Mass, src.Pos.Sub(tgtPos))
		if mag := a.LenSqr(); central == NoBody || mag > maxAcc {
			maxAcc = mag
			central = i
		}
		acc = acc.Add(a)
	}
	return
}

// pointMassAcceleration returns the softened acceleration due to a mass at the relative position d.
func pointMassAcceleration(mass float64, d mgl64.Vec3) mgl64.Vec3 {
	distSq := d.LenSqr() + Softening*Softening
	invR3 := math.Pow(distSq, -1.5)
	return d.Mul(G * mass * invR3)
}
