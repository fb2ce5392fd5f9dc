package orbiter

import (
	"time"

	kitlog "github.com/go-kit/kit/log"
)

// BaseStep is the physics step of a single tick at every warp stage.
const BaseStep = time.Second / 60

// warpMultipliers are the number of physics steps per tick of each warp stage.
var warpMultipliers = []uint32{1, 5, 10, 50, 100, 500, 1000, 2500}

// warpGate limits the warp stage close to a body of a given kind.
type warpGate struct {
	altitude float64 // m above the surface
	stage    int
}

// Gates are sorted by increasing altitude: the first match wins.
var warpGates = map[Kind][]warpGate{
	Planet: {{30000, 0}, {100000, 2}},
	Moon:   {{5000, 0}, {30000, 2}},
}

// WarpStages returns the number of warp stages.
func WarpStages() int {
	return len(warpMultipliers)
}

// WarpStage returns the step and the multiplier of the provided stage, clamped to the known stages.
func WarpStage(stage int) (time.Duration, uint32) {
	return BaseStep, warpMultipliers[clampStage(stage)]
}

func clampStage(stage int) int {
	if stage < 0 {
		return 0
	}
	if stage >= len(warpMultipliers) {
		return len(warpMultipliers) - 1
	}
	return stage
}

// MaxWarpStage returns the highest warp stage allowed for the craft, from its altitude above
// the nearest body.
func MaxWarpStage(bodies []Body, craft int) int {
	max := len(warpMultipliers) - 1
	if craft < 0 || craft >= len(bodies) {
		return max
	}
	ctx := NewGuardContext(bodies, craft)
	if ctx.Nearest == NoBody {
		return max
	}
	for _, gate := range warpGates[ctx.Kind] {
		if ctx.Altitude < gate.altitude {
			return gate.stage
		}
	}
	return max
}

// TimeWarp holds the warp stage requested by the user and the one actually in effect.
type TimeWarp struct {
	Requested int
	Stage     int
	logger    kitlog.Logger
}

// NewTimeWarp returns a time warp at the provided stage.
func NewTimeWarp(stage int, logger kitlog.Logger) *TimeWarp {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	stage = clampStage(stage)
	return &TimeWarp{Requested: stage, Stage: stage, logger: logger}
}

// Request asks for a new warp stage, which only applies at the next Evaluate.
func (w *TimeWarp) Request(stage int) {
	w.Requested = clampStage(stage)
}

// Evaluate sets the stage in effect to the requested one, forced down to what the altitude of the
// craft allows. Returns whether the stage changed.
func (w *TimeWarp) Evaluate(bodies []Body, craft int) bool {
	stage := w.Requested
	if max := MaxWarpStage(bodies, craft); stage > max {
		if w.Stage != max {
			w.logger.Log("level", "warning", "subsys", "warp", "requested", stage, "allowed", max)
		}
		stage = max
	}
	if stage == w.Stage {
		return false
	}
	w.Stage = stage
	return true
}

// Apply writes the step and multiplier of the stage in effect to the provided configuration.
func (w *TimeWarp) Apply(cfg *Config) {
	cfg.Step, cfg.Multiplier = WarpStage(w.Stage)
	cfg.WarpStage = w.Stage
}
