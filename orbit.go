package orbiter

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

const (
	eccentricityε = 5e-5                         // 0.00005
	angleε        = (5e-3 / 360) * (2 * math.Pi) // 0.005 degrees
	distanceε     = 2e1                          // 20 m
)

// Orbit defines a planar two-body orbit via its orbital elements, relative to its central body.
type Orbit struct {
	a, e, ω, ν float64
	h          float64 // signed specific angular momentum, positive is counter-clockwise
	p          float64 // semi parameter
	μ          float64
}

// NewOrbitFromRV returns the orbital elements from the position and velocity relative to the
// central body, whose gravitational parameter is μ.
// R must not be null and μ must be positive; a purely radial V leads to a degenerate orbit (see Degenerate).
func NewOrbitFromRV(R, V mgl64.Vec3, μ float64) *Orbit {
	r := R.Len()
	v := V.Len()
	h := cross2D(R, V)
	ξ := (v*v)/2 - μ/r
	a := math.Inf(1)
	if !scalar.EqualWithinAbs(ξ, 0, zeroε) {
		a = -μ / (2 * ξ)
	}
	// e = (V × h)/μ - R/r, with h along Z.
	eVec := []float64{V[1]*h/μ - R[0]/r, -V[0]*h/μ - R[1]/r}
	e := floats.Norm(eVec, 2)
	ω := 0.0
	if e > eccentricityε {
		ω = normalizeAngle(math.Atan2(eVec[1], eVec[0]))
	}
	// True anomaly measured in the direction of motion.
	ν := normalizeAngle(sign(h) * (math.Atan2(R[1], R[0]) - ω))
	return &Orbit{a: a, e: e, ω: ω, ν: ν, h: h, p: h * h / μ, μ: μ}
}

// Elements returns the semi-major axis, eccentricity, argument of periapsis and true anomaly.
func (o Orbit) Elements() (a, e, ω, ν float64) {
	return o.a, o.e, o.ω, o.ν
}

// H returns the signed specific angular momentum.
func (o Orbit) H() float64 {
	return o.h
}

// Retrograde returns whether this orbit is clockwise.
func (o Orbit) Retrograde() bool {
	return o.h < 0
}

// Degenerate returns whether this is a radial trajectory which has no orbital shape.
func (o Orbit) Degenerate() bool {
	return scalar.EqualWithinAbs(o.p, 0, zeroε) || math.IsNaN(o.e)
}

// Elliptical returns whether this orbit is closed.
func (o Orbit) Elliptical() bool {
	return o.e < 1
}

// Energyξ returns the specific mechanical energy ξ.
func (o Orbit) Energyξ() float64 {
	if math.IsInf(o.a, 1) {
		return 0
	}
	return -o.μ / (2 * o.a)
}

// SemiParameter returns the semi parameter, i.e. a(1-e²), computed from h so that it remains
// defined for parabolic orbits.
func (o Orbit) SemiParameter() float64 {
	return o.p
}

// Apoapsis returns the apoapsis (infinite for open orbits).
func (o Orbit) Apoapsis() float64 {
	if !o.Elliptical() {
		return math.Inf(1)
	}
	return o.a * (1 + o.e)
}

// Periapsis returns the periapsis.
func (o Orbit) Periapsis() float64 {
	return o.p / (1 + o.e)
}

// Period returns the period of this orbit, or zero if it is not closed.
func (o Orbit) Period() time.Duration {
	if !o.Elliptical() {
		return 0
	}
	seconds := 2 * math.Pi * math.Sqrt(math.Pow(o.a, 3)/o.μ)
	return time.Duration(seconds * float64(time.Second))
}

// RNorm returns the current distance from the central body.
func (o Orbit) RNorm() float64 {
	return o.RAt(o.ν)
}

// RAt returns the distance from the central body at the true anomaly ν, from the polar
// equation of the conic. Returns +Inf where an open orbit does not reach.
func (o Orbit) RAt(ν float64) float64 {
	denom := 1 + o.e*math.Cos(ν)
	if denom <= zeroε {
		return math.Inf(1)
	}
	return o.p / denom
}

// PositionAt returns the position relative to the central body at the true anomaly ν.
func (o Orbit) PositionAt(ν float64) mgl64.Vec3 {
	r := o.RAt(ν)
	sinν, cosν := math.Sincos(ν)
	return PQW2World(o.ω, o.Retrograde(), mgl64.Vec3{r * cosν, r * sinν, 0})
}

// String implements the stringer interface (hence the value receiver)
func (o Orbit) String() string {
	dir := "prograde"
	if o.Retrograde() {
		dir = "retrograde"
	}
	if o.e < eccentricityε {
		return fmt.Sprintf("a=%.1f e=%.4f λ=%.3f (%s)", o.a, o.e, Rad2deg(o.ω+sign(o.h)*o.ν), dir)
	}
	return fmt.Sprintf("a=%.1f e=%.4f ω=%.3f ν=%.3f (%s)", o.a, o.e, Rad2deg(o.ω), Rad2deg(o.ν), dir)
}

// Equals returns whether two orbits are identical with free true anomaly.
func (o Orbit) Equals(o1 Orbit) (bool, error) {
	if !scalar.EqualWithinAbs(o.μ, o1.μ, o.μ*1e-12) {
		return false, errors.New("different central body")
	}
	if o.Retrograde() != o1.Retrograde() {
		return false, errors.New("direction invalid")
	}
	if !scalar.EqualWithinAbs(o.p, o1.p, distanceε) {
		return false, errors.New("semi parameter invalid")
	}
	if !scalar.EqualWithinAbs(o.e, o1.e, eccentricityε) {
		return false, errors.New("eccentricity invalid")
	}
	if o.e > eccentricityε && !scalar.EqualWithinAbs(math.Cos(o.ω-o1.ω), 1, angleε) {
		return false, errors.New("argument of periapsis invalid")
	}
	return true, nil
}
