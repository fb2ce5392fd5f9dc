package orbiter

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// G is the gravitational constant in m^3/(kg·s^2).
	G = 6.67430e-11
	// Softening prevents singular accelerations when two bodies are (nearly) coincident, in meters.
	Softening = 12.5

	// PlanetScale is the scaling applied to body radii (and to masses, cubed).
	PlanetScale = 1.0 / 20.0
	// DistanceScale is the scaling applied to orbital distances.
	DistanceScale = 1.0 / 50.0

	// EarthRadius is the scaled radius of the Earth in meters.
	EarthRadius = 6371000. * PlanetScale
	// MoonRadius is the scaled radius of the Moon in meters.
	MoonRadius = 1737100. * PlanetScale
	// MoonOrbitRadius is the scaled semi-major axis of the Moon in meters.
	MoonOrbitRadius = 384400000. * DistanceScale
)

// Kind defines the role of a body in the scenario.
type Kind uint8

const (
	// Planet is a primary body one may orbit and land on.
	Planet Kind = iota + 1
	// Moon is a secondary body.
	Moon
	// Craft is the player controlled vehicle.
	Craft
)

func (k Kind) String() string {
	switch k {
	case Planet:
		return "planet"
	case Moon:
		return "moon"
	case Craft:
		return "craft"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// KindFromString returns the kind from its name.
func KindFromString(name string) (Kind, error) {
	switch strings.ToLower(name) {
	case "planet":
		return Planet, nil
	case "moon":
		return Moon, nil
	case "craft":
		return Craft, nil
	}
	return 0, fmt.Errorf("undefined body kind '%s'", name)
}

// CelestialObject defines a (scaled) celestial object.
type CelestialObject struct {
	Name   string
	Kind   Kind
	Radius float64
	Mass   float64
}

// GM returns μ of this object.
func (c CelestialObject) GM() float64 {
	return G * c.Mass
}

// String implements the Stringer interface.
func (c CelestialObject) String() string {
	return c.Name + " body"
}

// Body returns a new body from this object at the provided position and velocity.
func (c CelestialObject) Body(pos, vel mgl64.Vec3) Body {
	return Body{
		Name:           c.Name,
		Kind:           c.Kind,
		Pos:            flat(pos),
		Vel:            flat(vel),
		Mass:           c.Mass,
		Radius:         c.Radius,
		NonGravitating: c.Kind == Craft,
		Central:        NoBody,
	}
}

// CircularSpeed returns the speed of a circular orbit of radius r around this object.
func (c CelestialObject) CircularSpeed(r float64) float64 {
	return math.Sqrt(c.GM() / r)
}

// CelestialObjectFromString returns the object from its name
func CelestialObjectFromString(name string) (CelestialObject, error) {
	switch strings.ToLower(name) {
	case "earth":
		return Earth, nil
	case "moon":
		return Luna, nil
	case "moon2", "selene":
		return Selene, nil
	case "craft", "lander":
		return Lander, nil
	default:
		return CelestialObject{}, fmt.Errorf("undefined object '%s'", name)
	}
}

/* Definitions */

var massScale = math.Pow(PlanetScale, 3)

// Earth is home.
var Earth = CelestialObject{"Earth", Planet, EarthRadius, 5.972e24 * massScale}

// Luna is the Moon we know.
var Luna = CelestialObject{"Moon", Moon, MoonRadius, 7.342e22 * massScale}

// Selene is the lighter second moon of the scenario.
var Selene = CelestialObject{"Moon2", Moon, MoonRadius, 1.5e22 * massScale}

// Lander is the player craft: its mass only matters for collisions and thrust.
var Lander = CelestialObject{"Lander", Craft, 10, 10}
