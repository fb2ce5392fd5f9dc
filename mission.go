package orbiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	kitlog "github.com/go-kit/kit/log"
	"golang.org/x/time/rate"
)

// ErrNoCraft is returned when a scenario does not contain any craft.
var ErrNoCraft = errors.New("no craft in the bodies")

/* Handles the simulation loop. */

// Mission owns the bodies of the simulation and runs every system on them, in order, each tick.
type Mission struct {
	Bodies     []Body
	Craft      int         // index of the craft in Bodies, NoBody for a world without craft
	Propulsion *Propulsion // of the craft, may be nil
	Config     Config
	SimTime    time.Duration
	Epoch      time.Time // date at SimTime zero, only used in the status logs
	gravity    *Gravity
	predictor  Predictor
	tracker    *ObjectiveTracker
	warp       *TimeWarp
	trails     []*Trail
	trailClock Throttle
	preds      []Prediction
	predClock  Throttle
	metrics    *MissionMetrics
	logger     kitlog.Logger
	status     *rate.Limiter // status logs of Run
	central    int // last known central body of the craft
	fuelOut    bool
}

// FindCraft returns the index of the first body of kind Craft.
func FindCraft(bodies []Body) (int, error) {
	for i, b := range bodies {
		if b.Kind == Craft {
			return i, nil
		}
	}
	return NoBody, ErrNoCraft
}

// NewMission returns a new mission on the provided bodies, which it takes ownership of.
// The metrics and the logger may be nil. A craft of NoBody runs the world without any craft, so
// without propulsion, objectives nor warp limits. Panics if craft is any other invalid index.
func NewMission(bodies []Body, craft int, prop *Propulsion, cfg Config, metrics *MissionMetrics, logger kitlog.Logger) (*Mission, error) {
	if craft < NoBody || craft >= len(bodies) {
		panic(fmt.Errorf("craft index %d out of range [0, %d)", craft, len(bodies)))
	}
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	if metrics == nil {
		metrics = NewMissionMetrics(nil)
	}
	predictor, err := NewPredictor(cfg.PredictionMethod, cfg.PredictionPoints)
	if err != nil {
		return nil, err
	}
	if cfg.Multiplier == 0 {
		cfg.Multiplier = 1
	}
	trackerLogger, central := logger, NoBody
	if craft != NoBody {
		trackerLogger = kitlog.With(logger, "craft", bodies[craft].Name)
		central = bodies[craft].Central
	} else {
		prop = nil
	}
	m := &Mission{
		Bodies:     bodies,
		Craft:      craft,
		Propulsion: prop,
		Config:     cfg,
		gravity:    NewGravity(cfg.Workers),
		predictor:  predictor,
		tracker:    NewObjectiveTracker(cfg.CheckInterval, trackerLogger),
		warp:       NewTimeWarp(cfg.WarpStage, logger),
		trails:     make([]*Trail, len(bodies)),
		trailClock: Throttle{Interval: cfg.TrailInterval},
		preds:      make([]Prediction, len(bodies)),
		predClock:  Throttle{Interval: cfg.PredictionInterval},
		metrics:    metrics,
		logger:     logger,
		central:    central,
	}
	if cfg.StatusInterval > 0 {
		m.status = rate.NewLimiter(rate.Every(cfg.StatusInterval), 1)
	}
	for i, b := range bodies {
		m.trails[i] = NewTrail(cfg.TrailLength)
		m.trails[i].Add(b.Pos)
	}
	if cfg.Warp && m.HasCraft() {
		m.warp.Evaluate(m.Bodies, m.Craft)
		m.warp.Apply(&m.Config)
	}
	if prop != nil {
		metrics.SetFuel(prop.Fuel)
	}
	metrics.SetWarpStage(m.warp.Stage)
	return m, nil
}

// HasCraft returns whether the mission flies a craft.
func (m *Mission) HasCraft() bool {
	return m.Craft != NoBody
}

// Tick runs Config.Multiplier physics steps of Config.Step each, then updates the time warp
// which applies from the next tick.
func (m *Mission) Tick() {
	start := time.Now()
	for i := uint32(0); i < m.Config.Multiplier; i++ {
		m.step()
	}
	if m.Config.Warp && m.HasCraft() {
		if m.warp.Evaluate(m.Bodies, m.Craft) {
			m.logger.Log("level", "info", "subsys", "warp", "stage", m.warp.Stage, "at", m.SimTime)
		}
		m.warp.Apply(&m.Config)
		m.metrics.SetWarpStage(m.warp.Stage)
	}
	m.metrics.RecordTick(time.Since(start))
}

func (m *Mission) step() {
	step := m.Config.Step
	dt := step.Seconds()
	if m.Propulsion != nil {
		craft := &m.Bodies[m.Craft]
		force, used := m.Propulsion.Thrust(dt)
		craft.Force = craft.Force.Add(force)
		if used > 0 {
			m.metrics.SetFuel(m.Propulsion.Fuel)
			if m.Propulsion.Fuel <= 0 && !m.fuelOut {
				m.fuelOut = true
				m.logger.Log("level", "critical", "subsys", "prop", "fuel(kg)", m.Propulsion.Fuel, "at", m.SimTime)
			}
		}
	}
	ApplyForces(m.Bodies, dt)
	m.gravity.Step(m.Bodies, dt)
	for _, c := range ResolveCollisions(m.Bodies, dt) {
		a, b := m.Bodies[c.A], m.Bodies[c.B]
		m.logger.Log("level", "warning", "subsys", "collision", "a", a.Name, "b", b.Name, "overlap(m)", c.Overlap, "impulse", c.Impulse, "at", m.SimTime)
		m.metrics.RecordContact(a.Name, b.Name)
	}
	m.SimTime += step

	if _, ok := m.trailClock.Tick(step); ok {
		for i, b := range m.Bodies {
			m.trails[i].Add(b.Pos)
		}
	}
	if _, ok := m.predClock.Tick(step); ok {
		m.Predict()
	}
	if !m.HasCraft() {
		return
	}
	if ci := m.Bodies[m.Craft].Central; ci != m.central {
		name := "none"
		if ci != NoBody {
			name = m.Bodies[ci].Name
		}
		m.logger.Log("level", "info", "subsys", "astro", "central", name, "at", m.SimTime)
		m.central = ci
	}
	if o, ok := m.tracker.Update(m.Bodies, m.Craft, m.SimTime, step); ok {
		m.metrics.RecordObjective(o)
	}
}

// Predict recomputes the predicted trajectory of every body.
func (m *Mission) Predict() {
	for i := range m.Bodies {
		m.predictor.Predict(m.Bodies, i, &m.preds[i])
	}
	if m.HasCraft() {
		m.metrics.SetPredictedPoints(m.preds[m.Craft].Len())
	}
}

// Run ticks the mission n times, or until all objectives are completed if n is not positive.
// The status is logged at most once per Config.StatusInterval of wall time. Returns the context
// error if it is cancelled first. A mission without craft only stops after n ticks.
func (m *Mission) Run(ctx context.Context, n int) error {
	m.LogStatus()
	for i := 0; n <= 0 || i < n; i++ {
		if err := ctx.Err(); err != nil {
			m.logger.Log("level", "warning", "subsys", "astro", "status", "interrupted", "duration", m.SimTime)
			return err
		}
		m.Tick()
		if m.status != nil && m.status.Allow() {
			m.LogStatus()
		}
		if n <= 0 && m.HasCraft() && m.tracker.Progress.AllCompleted() {
			break
		}
	}
	m.logger.Log("level", "notice", "subsys", "astro", "status", "finished", "duration", m.SimTime, "completed", len(m.tracker.Progress.Completed))
	m.LogStatus()
	return nil
}

// LogStatus logs the simulated time and the state of the craft, if any.
func (m *Mission) LogStatus() {
	kv := []interface{}{"level", "info", "subsys", "astro", "at", m.SimTime}
	if !m.Epoch.IsZero() {
		kv = append(kv, "date", m.Epoch.Add(m.SimTime).Format(time.RFC3339))
	}
	if !m.HasCraft() {
		m.logger.Log(append(kv, "bodies", len(m.Bodies))...)
		return
	}
	craft := m.Bodies[m.Craft]
	kv = append(kv, "craft", craft)
	if m.Propulsion != nil {
		kv = append(kv, "fuel(kg)", m.Propulsion.Fuel)
	}
	if ci, ok := craft.CentralBody(); ok {
		c := m.Bodies[ci]
		o := NewOrbitFromRV(craft.Pos.Sub(c.Pos), craft.Vel.Sub(c.Vel), G*c.Mass)
		kv = append(kv, "central", c.Name, "orbit", o)
	}
	if o, ok := m.tracker.Progress.Current(); ok {
		kv = append(kv, "objective", o)
	}
	m.logger.Log(kv...)
}

// Prediction returns the last predicted trajectory of the provided body.
func (m *Mission) Prediction(body int) []mgl64.Vec3 {
	return m.preds[body].Points
}

// Trail returns the past positions of the provided body, oldest first.
func (m *Mission) Trail(body int) []mgl64.Vec3 {
	return m.trails[body].Points()
}

// Objectives returns the objective tracker of the craft.
func (m *Mission) Objectives() *ObjectiveTracker {
	return m.tracker
}

// Warp returns the time warp of the mission.
func (m *Mission) Warp() *TimeWarp {
	return m.warp
}
