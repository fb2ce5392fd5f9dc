package orbiter

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// R3 rotation about the 3rd axis.
func R3(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, s, 0, -s, c, 0, 0, 0, 1})
}

// PQW2World converts a vector from the perifocal frame of a planar orbit to the world frame.
// The argument of periapsis ω is measured counter-clockwise from the world X axis. Retrograde
// (clockwise) orbits have their perifocal Q axis flipped so that the true anomaly always
// increases in the direction of motion.
func PQW2World(ω float64, retrograde bool, v mgl64.Vec3) mgl64.Vec3 {
	if retrograde {
		v[1] = -v[1]
	}
	return MxV33(R3(-ω), v)
}

// MxV33 multiplies a matrix with a vector. Note that there is no dimension check!
func MxV33(m *mat.Dense, v mgl64.Vec3) mgl64.Vec3 {
	vVec := mat.NewVecDense(3, []float64{v[0], v[1], v[2]})
	var rVec mat.VecDense
	rVec.MulVec(m, vVec)
	return mgl64.Vec3{rVec.AtVec(0), rVec.AtVec(1), rVec.AtVec(2)}
}
