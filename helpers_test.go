package orbiter

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/floats"
)

// vectorsEqual returns whether two vectors are equal within 1e-9 of each other.
func vectorsEqual(a, b mgl64.Vec3) bool {
	return floats.EqualApprox(a[:], b[:], 1e-9)
}

func assertPanic(t *testing.T, f func()) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("code did not panic")
		}
	}()
	f()
}

// twoBody returns the Earth at rest and a craft on a circular orbit of radius r around it.
func twoBody(r float64) []Body {
	return []Body{
		Earth.Body(mgl64.Vec3{}, mgl64.Vec3{}),
		Lander.Body(mgl64.Vec3{r, 0, 0}, mgl64.Vec3{0, Earth.CircularSpeed(r), 0}),
	}
}
