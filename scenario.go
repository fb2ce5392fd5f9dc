package orbiter

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MoonSpeed is the scaled orbital speed of the moons.
var MoonSpeed = 1022. * math.Sqrt(massScale/DistanceScale)

// DefaultBodies returns the default world: the Earth, two moons on opposite sides and the Lander
// resting just above the north pole of the Earth. The velocity of the Earth cancels the total
// momentum so that the barycenter stays put.
func DefaultBodies() []Body {
	bodies := []Body{
		Earth.Body(mgl64.Vec3{}, mgl64.Vec3{}),
		Luna.Body(mgl64.Vec3{MoonOrbitRadius, 0, 0}, mgl64.Vec3{0, MoonSpeed, 0}),
		Selene.Body(mgl64.Vec3{-0.6 * MoonOrbitRadius, 0, 0}, mgl64.Vec3{0, MoonSpeed, 0}),
		Lander.Body(mgl64.Vec3{0, EarthRadius + 100, 0}, mgl64.Vec3{}),
	}
	BalanceMomentum(bodies, 0)
	return bodies
}

// BalanceMomentum sets the velocity of bodies[anchor] such that the total momentum is null.
func BalanceMomentum(bodies []Body, anchor int) {
	var p mgl64.Vec3
	for i, b := range bodies {
		if i == anchor {
			continue
		}
		p = p.Add(b.Vel.Mul(b.Mass))
	}
	bodies[anchor].Vel = p.Mul(-1 / bodies[anchor].Mass)
}

// Momentum returns the total linear momentum of the bodies.
func Momentum(bodies []Body) (p mgl64.Vec3) {
	for _, b := range bodies {
		p = p.Add(b.Vel.Mul(b.Mass))
	}
	return
}
