package orbiter

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestCelestialObject(t *testing.T) {
	for _, name := range []string{"Earth", "moon", "Selene", "moon2", "lander", "craft"} {
		obj, err := CelestialObjectFromString(name)
		if err != nil {
			t.Fatalf("%s: %s", name, err)
		}
		if obj.Radius <= 0 || obj.Mass <= 0 {
			t.Fatalf("invalid %s", obj)
		}
	}
	if _, err := CelestialObjectFromString("Pluto"); err == nil {
		t.Fatal("Pluto is not part of the catalog")
	}
	if !scalar.EqualWithinRel(Earth.Mass, 5.972e24/8000, 1e-12) {
		t.Fatalf("Earth mass not scaled: %g", Earth.Mass)
	}
	if EarthRadius != 318550 || MoonRadius != 86855 || MoonOrbitRadius != 7688000 {
		t.Fatal("invalid scaled distances")
	}
	v := Earth.CircularSpeed(EarthRadius * 2)
	if !scalar.EqualWithinRel(v*v*EarthRadius*2, Earth.GM(), 1e-12) {
		t.Fatal("invalid circular speed")
	}
}

func TestKind(t *testing.T) {
	for _, k := range []Kind{Planet, Moon, Craft} {
		got, err := KindFromString(k.String())
		if err != nil || got != k {
			t.Fatalf("%s: got %s (%v)", k, got, err)
		}
	}
	if _, err := KindFromString("asteroid"); err == nil {
		t.Fatal("asteroid is not a kind")
	}
}

func TestCelestialBody(t *testing.T) {
	b := Lander.Body(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{4, 5, 6})
	if b.Pos[2] != 0 || b.Vel[2] != 0 {
		t.Fatal("body not in the plane")
	}
	if !b.NonGravitating || b.Kind != Craft {
		t.Fatal("the craft must not gravitate")
	}
	if _, ok := b.CentralBody(); ok {
		t.Fatal("new body has a central body")
	}
	if e := Earth.Body(mgl64.Vec3{}, mgl64.Vec3{}); e.NonGravitating {
		t.Fatal("the Earth must gravitate")
	}
}

func TestDefaultBodies(t *testing.T) {
	bodies := DefaultBodies()
	if len(bodies) != 4 {
		t.Fatalf("got %d bodies", len(bodies))
	}
	craft, err := FindCraft(bodies)
	if err != nil || craft != 3 {
		t.Fatalf("craft: got %d (%v)", craft, err)
	}
	scale := 0.
	for _, b := range bodies {
		scale += b.Mass * b.Vel.Len()
	}
	if p := Momentum(bodies); p.Len() > 1e-12*scale {
		t.Fatalf("momentum not balanced: %v", p)
	}
	if alt := bodies[craft].Pos.Sub(bodies[0].Pos).Len() - EarthRadius; math.Abs(alt-100) > 1e-6 {
		t.Fatalf("craft altitude: got %f exp 100", alt)
	}
}
