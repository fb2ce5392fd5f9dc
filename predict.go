package orbiter

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// PredictionPoints is the default number of predicted points.
	PredictionPoints = 512
	// MinPredictionStep is the step (in seconds) of the iterative predictor at the surface of the central body.
	MinPredictionStep = 10.
	// MaxPredictionStep is the step (in seconds) of the iterative predictor at MoonOrbitRadius and beyond.
	MaxPredictionStep = 2048.
	// MinPredictionSpeedSq is the squared speed under which no trajectory is predicted.
	MinPredictionSpeedSq = 2.
)

// ErrUnknownPredictor is returned when the prediction method is not supported.
var ErrUnknownPredictor = errors.New("unknown prediction method")

// PredictionMethod defines an enum of trajectory prediction methods.
type PredictionMethod uint8

const (
	// Iterative re-simulates the two-body problem with the (moving) central body.
	Iterative PredictionMethod = iota + 1
	// Analytic samples the conic from the osculating orbital elements.
	Analytic
)

func (m PredictionMethod) String() string {
	switch m {
	case Iterative:
		return "iterative"
	case Analytic:
		return "analytic"
	}
	return fmt.Sprintf("PredictionMethod(%d)", uint8(m))
}

// PredictionMethodFromString returns the method from its name.
func PredictionMethodFromString(name string) (PredictionMethod, error) {
	switch strings.ToLower(name) {
	case "iterative":
		return Iterative, nil
	case "analytic":
		return Analytic, nil
	}
	return 0, fmt.Errorf("%w: '%s'", ErrUnknownPredictor, name)
}

// Prediction is the ordered list of predicted world positions of a body.
// It is cleared and rebuilt entirely every time a predictor runs.
type Prediction struct {
	Points []mgl64.Vec3
}

// Clear removes all points while keeping the allocated storage.
func (p *Prediction) Clear() {
	p.Points = p.Points[:0]
}

// Len returns the number of predicted points.
func (p *Prediction) Len() int {
	return len(p.Points)
}

func (p *Prediction) add(pt mgl64.Vec3) {
	p.Points = append(p.Points, pt)
}

// Predictor defines a trajectory predictor interface.
// Implementations must not modify the bodies.
type Predictor interface {
	Predict(bodies []Body, target int, out *Prediction)
	Method() PredictionMethod
}

// NewPredictor returns the predictor of the provided method, sampling up to points points.
func NewPredictor(method PredictionMethod, points int) (Predictor, error) {
	if points <= 1 {
		points = PredictionPoints
	}
	switch method {
	case Iterative:
		return IterativePredictor{Points: points, MinStep: MinPredictionStep, MaxStep: MaxPredictionStep, ScaleDistance: MoonOrbitRadius}, nil
	case Analytic:
		return AnalyticPredictor{Points: points}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownPredictor, method)
}

// predictionCentral returns the central body of the target if a trajectory can be predicted.
func predictionCentral(bodies []Body, target int) (int, bool) {
	if target < 0 || target >= len(bodies) {
		return NoBody, false
	}
	b := bodies[target]
	if b.Vel.LenSqr() < MinPredictionSpeedSq {
		return NoBody, false
	}
	ci, ok := b.CentralBody()
	if !ok || ci == target || ci >= len(bodies) {
		return NoBody, false
	}
	return ci, true
}

// IterativePredictor steps the two-body problem forward with the central body moving at
// constant velocity. The step size grows linearly with the distance to the central body.
type IterativePredictor struct {
	Points        int
	MinStep       float64 // seconds
	MaxStep       float64 // seconds
	ScaleDistance float64 // distance at which MaxStep is reached
}

// Method implements the Predictor interface.
func (p IterativePredictor) Method() PredictionMethod {
	return Iterative
}

// Step returns the step size in seconds for the provided surface to surface distance.
func (p IterativePredictor) Step(distance float64) float64 {
	norm := distance / p.ScaleDistance
	if norm < 0 || math.IsNaN(norm) {
		norm = 0
	} else if norm > 1 {
		norm = 1
	}
	return p.MinStep + norm*(p.MaxStep-p.MinStep)
}

// Predict implements the Predictor interface.
func (p IterativePredictor) Predict(bodies []Body, target int, out *Prediction) {
	out.Clear()
	ci, ok := predictionCentral(bodies, target)
	if !ok {
		return
	}
	b, c := bodies[target], bodies[ci]
	collisionDist := b.Radius + c.Radius
	dt := p.Step(b.Pos.Sub(c.Pos).Len() - collisionDist)

	simPos, simVel := b.Pos, b.Vel
	simCentral := c.Pos
	prevRel := b.Pos.Sub(c.Pos)
	totalAngle := 0.
	// The current position is the first point so the path starts at the body.
	out.add(b.Pos)
	for i := 0; i < p.Points-1; i++ {
		acc := pointMassAcceleration(c.Mass, simCentral.Sub(simPos))
		simVel = simVel.Add(acc.Mul(dt))
		simPos = flat(simPos.Add(simVel.Mul(dt)))
		simCentral = flat(simCentral.Add(c.Vel.Mul(dt)))
		rel := simPos.Sub(simCentral)
		// Relative to where the central body is now, so that the path stays around it on screen.
		out.add(c.Pos.Add(rel))
		if rel.Len() < collisionDist {
			return
		}
		if totalAngle += angleBetween(prevRel, rel); totalAngle > 2*math.Pi {
			return
		}
		prevRel = rel
	}
}

// AnalyticPredictor samples the osculating two-body conic around the central body.
// It ignores every other body and any thrust.
type AnalyticPredictor struct {
	Points int
}

// Method implements the Predictor interface.
func (p AnalyticPredictor) Method() PredictionMethod {
	return Analytic
}

// Predict implements the Predictor interface.
func (p AnalyticPredictor) Predict(bodies []Body, target int, out *Prediction) {
	out.Clear()
	ci, ok := predictionCentral(bodies, target)
	if !ok {
		return
	}
	b, c := bodies[target], bodies[ci]
	R := flat(b.Pos.Sub(c.Pos))
	V := flat(b.Vel.Sub(c.Vel))
	if R.Len() < zeroε {
		return
	}
	o := NewOrbitFromRV(R, V, G*c.Mass)
	if o.Degenerate() {
		return
	}
	_, _, _, ν0 := o.Elements()
	Δν := 2 * math.Pi / float64(p.Points)
	for k := 0; k < p.Points; k++ {
		ν := ν0 + float64(k)*Δν
		if math.IsInf(o.RAt(ν), 1) {
			// Past the asymptote of an open orbit.
			return
		}
		pt := c.Pos.Add(o.PositionAt(ν))
		out.add(pt)
		if insideAnyBody(bodies, target, pt) {
			return
		}
	}
	// Full revolution without collision: close the loop.
	out.add(out.Points[0])
}

// insideAnyBody returns whether the point is within the radius of any body but skip.
func insideAnyBody(bodies []Body, skip int, pt mgl64.Vec3) bool {
	for i, b := range bodies {
		if i == skip {
			continue
		}
		if b.Pos.Sub(pt).Len() < b.Radius {
			return true
		}
	}
	return false
}
