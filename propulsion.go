package orbiter

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// SteeringStep is the heading change (in radians) of one steering command.
	SteeringStep = 1.0 * deg2rad
	// ThrottleStep is the throttle change of one throttle command.
	ThrottleStep = 0.1
)

// Propulsion is the engine and tank of the craft.
type Propulsion struct {
	MaxThrust       float64 // N
	Throttle        float64 // fraction of MaxThrust in [0, 1]
	Fuel            float64 // kg
	MaxFuel         float64 // kg
	ConsumptionRate float64 // kg/s at full throttle
	Heading         float64 // radians about Z, zero thrusts along +Y
}

// NewPropulsion returns a propulsion with a full tank, throttled down.
func NewPropulsion(maxThrust, maxFuel, consumptionRate float64) *Propulsion {
	return &Propulsion{MaxThrust: maxThrust, Fuel: maxFuel, MaxFuel: maxFuel, ConsumptionRate: consumptionRate}
}

// DefaultPropulsion returns the propulsion of the Lander.
func DefaultPropulsion() *Propulsion {
	return NewPropulsion(10, 1000, 1)
}

// SetThrottle sets the throttle, clamped to [0, 1].
func (p *Propulsion) SetThrottle(t float64) {
	p.Throttle = math.Max(0, math.Min(1, t))
}

// Steer rotates the heading by Δθ radians (positive is counter-clockwise).
func (p *Propulsion) Steer(Δθ float64) {
	p.Heading = normalizeAngle(p.Heading + Δθ)
}

// Refuel adds fuel, up to the capacity of the tank.
func (p *Propulsion) Refuel(fuel float64) {
	p.Fuel = math.Max(0, math.Min(p.MaxFuel, p.Fuel+fuel))
}

// Direction returns the unit thrust direction.
func (p *Propulsion) Direction() mgl64.Vec3 {
	s, c := math.Sincos(p.Heading)
	return mgl64.Vec3{-s, c, 0}
}

// Thrust consumes the fuel needed to thrust for dt seconds and returns the thrust force.
// The throttle actually used is scaled down to what the remaining fuel allows.
func (p *Propulsion) Thrust(dt float64) (force mgl64.Vec3, used float64) {
	if p.Throttle <= 0 || p.Fuel <= 0 || dt <= 0 {
		return
	}
	throttle := p.Throttle
	if p.ConsumptionRate > 0 {
		if needed := p.ConsumptionRate * throttle * dt; needed > p.Fuel {
			throttle = p.Fuel / (p.ConsumptionRate * dt)
		}
		used = p.ConsumptionRate * throttle * dt
		p.Fuel = math.Max(0, p.Fuel-used)
	}
	force = p.Direction().Mul(p.MaxThrust * throttle)
	return
}
