package orbiter

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/floats/scalar"
)

const (
	deg2rad = math.Pi / 180
	// zeroε is the norm below which a vector is considered degenerate.
	zeroε = 1e-12
)

// unit returns the unit vector of a given vector, or the zero vector if it has no length.
func unit(a mgl64.Vec3) mgl64.Vec3 {
	n := a.Len()
	if scalar.EqualWithinAbs(n, 0, zeroε) {
		return mgl64.Vec3{}
	}
	return a.Mul(1 / n)
}

// sign returns the sign of a given number (zero is positive).
func sign(v float64) float64 {
	if scalar.EqualWithinAbs(v, 0, zeroε) {
		return 1
	}
	return v / math.Abs(v)
}

// cross2D returns the z component of a × b, i.e. the scalar planar angular momentum when a=R and b=V.
func cross2D(a, b mgl64.Vec3) float64 {
	return a[0]*b[1] - a[1]*b[0]
}

// angleBetween returns the unsigned angle between two vectors in [0, π].
// Degenerate vectors have no angle between them.
func angleBetween(a, b mgl64.Vec3) float64 {
	la, lb := a.Len(), b.Len()
	if scalar.EqualWithinAbs(la, 0, zeroε) || scalar.EqualWithinAbs(lb, 0, zeroε) {
		return 0
	}
	cosθ := a.Dot(b) / (la * lb)
	if math.Abs(cosθ) > 1 {
		// Rounding: acos would return NaN.
		cosθ = sign(cosθ)
	}
	return math.Acos(cosθ)
}

// flat drops the out-of-plane component of the provided vector.
func flat(a mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0], a[1], 0}
}

// normalizeAngle returns the provided angle in [0, 2π).
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// Deg2rad converts degrees to radians, and enforced only positive numbers.
func Deg2rad(a float64) float64 {
	return normalizeAngle(a * deg2rad)
}

// Rad2deg converts radians to degrees, and enforced only positive numbers.
func Rad2deg(a float64) float64 {
	return normalizeAngle(a) / deg2rad
}
