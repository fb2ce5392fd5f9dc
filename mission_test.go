package orbiter

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	kitlog "github.com/go-kit/kit/log"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Step = time.Second
	cfg.PredictionInterval = time.Minute
	cfg.TrailInterval = time.Minute
	return cfg
}

func TestMissionLEO(t *testing.T) {
	r0 := EarthRadius + 300000
	bodies := twoBody(r0)
	metrics := NewMissionMetrics(nil)
	m, err := NewMission(bodies, 1, nil, testConfig(), metrics, nil)
	if err != nil {
		t.Fatal(err)
	}
	o := NewOrbitFromRV(bodies[1].Pos, bodies[1].Vel, Earth.GM())
	period := int(o.Period().Seconds())
	minAlt, maxAlt := math.Inf(1), 0.
	for i := 0; i < period; i++ {
		m.Tick()
		alt := m.Bodies[1].Pos.Sub(m.Bodies[0].Pos).Len() - EarthRadius
		minAlt = math.Min(minAlt, alt)
		maxAlt = math.Max(maxAlt, alt)
	}
	if minAlt < LowOrbitMinAltitude || maxAlt > LowOrbitMaxAltitude {
		t.Fatalf("left the low orbit band: [%f, %f]", minAlt, maxAlt)
	}
	if math.Abs(minAlt-300000) > 0.01*r0 || math.Abs(maxAlt-300000) > 0.01*r0 {
		t.Fatalf("orbit drifted: [%f, %f]", minAlt, maxAlt)
	}
	if m.SimTime != time.Duration(period)*time.Second {
		t.Fatalf("simulated %s exp %ds", m.SimTime, period)
	}
	progress := m.Objectives().Progress
	if !progress.IsCompleted(EscapeMoon) || !progress.IsCompleted(OrbitEarth) || progress.IsCompleted(LandOnEarth) {
		t.Fatalf("invalid progress: %v", progress.Completed)
	}
	if got := testutil.ToFloat64(metrics.objectives.WithLabelValues(OrbitEarth.String())); got != 1 {
		t.Fatalf("objective metric: got %f", got)
	}
	if testutil.ToFloat64(metrics.ticks) != float64(period) {
		t.Fatal("invalid tick count")
	}
	if n := len(m.Prediction(1)); n < 100 {
		t.Fatalf("craft prediction has %d points", n)
	}
	if n := len(m.Prediction(0)); n != 0 {
		t.Fatalf("the Earth has no central body but %d predicted points", n)
	}
	if n := len(m.Trail(1)); n != 1+period/60 {
		t.Fatalf("trail has %d points exp %d", n, 1+period/60)
	}
}

func TestMissionDeorbitAndLand(t *testing.T) {
	r0 := EarthRadius + 300000
	bodies := twoBody(r0)
	// Exactly a minute of retrograde burn.
	prop := NewPropulsion(10, 60, 1)
	prop.SetThrottle(1)
	prop.Steer(math.Pi)
	var buf bytes.Buffer
	logger := kitlog.NewLogfmtLogger(&buf)
	metrics := NewMissionMetrics(nil)
	m, err := NewMission(bodies, 1, prop, testConfig(), metrics, logger)
	if err != nil {
		t.Fatal(err)
	}
	contacts := func() float64 { return testutil.ToFloat64(metrics.contacts.WithLabelValues(Lander.Name)) }
	// Landing completes within the tolerance above the ground, so keep going until the touchdown.
	for i := 0; i < 20000 && (!m.Objectives().Progress.AllCompleted() || contacts() == 0); i++ {
		m.Tick()
		if d := m.Bodies[1].Pos.Sub(m.Bodies[0].Pos).Len(); d < EarthRadius {
			t.Fatalf("craft went through the Earth at %s", m.SimTime)
		}
	}
	progress := m.Objectives().Progress
	if !progress.AllCompleted() {
		t.Fatalf("did not land: %v", progress.Completed)
	}
	if contacts() == 0 {
		t.Fatalf("no touchdown by %s", m.SimTime)
	}
	if landedAt := progress.CompletedAt[len(progress.CompletedAt)-1]; landedAt > m.SimTime {
		t.Fatalf("landed at %s after the touchdown at %s", landedAt, m.SimTime)
	}
	if prop.Fuel != 0 {
		t.Fatalf("fuel left: %f", prop.Fuel)
	}
	logs := buf.String()
	for _, exp := range []string{"subsys=prop", "subsys=collision", "subsys=objectives"} {
		if !strings.Contains(logs, exp) {
			t.Fatalf("missing %s in the logs", exp)
		}
	}
	if strings.Count(logs, "subsys=prop") != 1 {
		t.Fatal("fuel exhaustion logged more than once")
	}
}

func TestMissionTouchdown(t *testing.T) {
	var buf bytes.Buffer
	metrics := NewMissionMetrics(nil)
	m, err := NewMission(DefaultBodies(), 3, nil, testConfig(), metrics, kitlog.NewLogfmtLogger(&buf))
	if err != nil {
		t.Fatal(err)
	}
	// The Lander starts 90 m above the ground and touches down in about twenty seconds.
	for i := 0; i < 60; i++ {
		m.Tick()
	}
	if got := testutil.ToFloat64(metrics.contacts.WithLabelValues(Lander.Name)); got == 0 {
		t.Fatal("no contact recorded for the Lander")
	}
	if got := testutil.ToFloat64(metrics.contacts.WithLabelValues(Earth.Name)); got == 0 {
		t.Fatal("no contact recorded for the Earth")
	}
	if !strings.Contains(buf.String(), "subsys=collision a=Earth b=Lander") {
		t.Fatalf("missing contact log:\n%s", buf.String())
	}
	if d := m.Bodies[3].Pos.Sub(m.Bodies[0].Pos).Len(); d < EarthRadius+m.Bodies[3].Radius/2 {
		t.Fatalf("Lander sunk %f m into the Earth", EarthRadius+m.Bodies[3].Radius-d)
	}
}

func TestMissionNoCraft(t *testing.T) {
	bodies := []Body{
		Earth.Body(mgl64.Vec3{}, mgl64.Vec3{}),
		Luna.Body(mgl64.Vec3{MoonOrbitRadius, 0, 0}, mgl64.Vec3{0, MoonSpeed, 0}),
	}
	BalanceMomentum(bodies, 0)
	craft, err := FindCraft(bodies)
	if craft != NoBody || !errors.Is(err, ErrNoCraft) {
		t.Fatalf("found craft %d (%v)", craft, err)
	}
	cfg := testConfig()
	cfg.Warp = true
	cfg.WarpStage = 2
	var buf bytes.Buffer
	m, err := NewMission(bodies, craft, DefaultPropulsion(), cfg, nil, kitlog.NewLogfmtLogger(&buf))
	if err != nil {
		t.Fatal(err)
	}
	if m.HasCraft() || m.Propulsion != nil {
		t.Fatal("mission without craft has a craft")
	}
	if err := m.Run(context.Background(), 120); err != nil {
		t.Fatal(err)
	}
	if m.SimTime != 120*time.Second {
		t.Fatalf("simulated %s exp 120s", m.SimTime)
	}
	if m.Config.Multiplier != 1 || m.Warp().Stage != 2 {
		t.Fatalf("warp changed without craft: %s", m.Config)
	}
	if n := len(m.Prediction(1)); n == 0 {
		t.Fatal("the Moon has no predicted trajectory")
	}
	if m.Bodies[1].Pos == (mgl64.Vec3{MoonOrbitRadius, 0, 0}) {
		t.Fatal("the Moon did not move")
	}
	if len(m.Objectives().Progress.Completed) != 0 {
		t.Fatal("objectives completed without craft")
	}
	logs := buf.String()
	if strings.Contains(logs, "craft=") || !strings.Contains(logs, "bodies=2") {
		t.Fatalf("invalid status logs:\n%s", logs)
	}
}

func TestMissionWarp(t *testing.T) {
	bodies := objectiveWorld(10000, 0, 0)
	cfg := testConfig()
	cfg.Warp = true
	cfg.WarpStage = WarpStages() - 1
	m, err := NewMission(bodies, craftIdx, nil, cfg, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if m.Config.Multiplier != 1 || m.Warp().Stage != 0 {
		t.Fatalf("warp not limited close to the Earth: %s", m.Config)
	}
	m.Bodies[craftIdx].Pos = mgl64.Vec3{0, EarthRadius + 2e6, 0}
	m.Tick()
	if m.Config.Multiplier != 2500 || m.Config.Step != BaseStep {
		t.Fatalf("warp not restored: %s", m.Config)
	}
	before := m.SimTime
	m.Tick()
	if m.SimTime-before != 2500*BaseStep {
		t.Fatalf("tick simulated %s", m.SimTime-before)
	}
}

func TestMissionWorkers(t *testing.T) {
	seqCfg, parCfg := testConfig(), testConfig()
	parCfg.Workers = 4
	seq, _ := NewMission(DefaultBodies(), 3, nil, seqCfg, nil, nil)
	par, _ := NewMission(DefaultBodies(), 3, nil, parCfg, nil, nil)
	for i := 0; i < 500; i++ {
		seq.Tick()
		par.Tick()
	}
	for i := range seq.Bodies {
		if seq.Bodies[i] != par.Bodies[i] {
			t.Fatalf("%s differs with workers", seq.Bodies[i].Name)
		}
	}
}

func TestMissionRun(t *testing.T) {
	m, err := NewMission(twoBody(EarthRadius+300000), 1, nil, testConfig(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Run(context.Background(), 10); err != nil {
		t.Fatal(err)
	}
	if m.SimTime != 10*time.Second {
		t.Fatalf("simulated %s exp 10s", m.SimTime)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.Run(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if m.SimTime != 10*time.Second {
		t.Fatal("cancelled mission ticked")
	}
}

func TestMissionRunStatus(t *testing.T) {
	for _, tt := range []struct {
		interval time.Duration
		exp      int
	}{
		// Initial, one allowed by the burst and final.
		{time.Hour, 3},
		// Initial and final only.
		{0, 2},
	} {
		cfg := testConfig()
		cfg.StatusInterval = tt.interval
		var buf bytes.Buffer
		m, err := NewMission(twoBody(EarthRadius+300000), 1, nil, cfg, nil, kitlog.NewLogfmtLogger(&buf))
		if err != nil {
			t.Fatal(err)
		}
		m.Epoch = time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)
		if err := m.Run(context.Background(), 50); err != nil {
			t.Fatal(err)
		}
		logs := buf.String()
		if got := strings.Count(logs, "level=info subsys=astro at="); got != tt.exp {
			t.Fatalf("interval %s: got %d status logs exp %d", tt.interval, got, tt.exp)
		}
		if !strings.Contains(logs, "date=2000-01-01T12:00:50Z") {
			t.Fatalf("missing final date:\n%s", logs)
		}
		if !strings.Contains(logs, "status=finished") {
			t.Fatal("missing finished log")
		}
	}
}

func TestMissionErrors(t *testing.T) {
	assertPanic(t, func() {
		NewMission(twoBody(EarthRadius*2), 2, nil, testConfig(), nil, nil)
	})
	assertPanic(t, func() {
		NewMission(twoBody(EarthRadius*2), -2, nil, testConfig(), nil, nil)
	})
	cfg := testConfig()
	cfg.PredictionMethod = PredictionMethod(42)
	if _, err := NewMission(twoBody(EarthRadius*2), 1, nil, cfg, nil, nil); !errors.Is(err, ErrUnknownPredictor) {
		t.Fatalf("expected ErrUnknownPredictor, got %v", err)
	}
}
