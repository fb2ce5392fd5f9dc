package orbiter

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the tunables of a mission.
type Config struct {
	Step               time.Duration // physics step
	Multiplier         uint32        // physics steps per tick
	Workers            int           // goroutines of the gravity passes
	PredictionMethod   PredictionMethod
	PredictionPoints   int
	PredictionInterval time.Duration // simulated time between two predictions
	CheckInterval      time.Duration // simulated time between two objective evaluations
	TrailLength        int
	TrailInterval      time.Duration // simulated time between two trail points
	Warp               bool          // whether the time warp drives Step and Multiplier
	WarpStage          int
	StatusInterval     time.Duration // wall time between two status logs of Run, none if not positive
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Step:               BaseStep,
		Multiplier:         1,
		Workers:            1,
		PredictionMethod:   Iterative,
		PredictionPoints:   PredictionPoints,
		PredictionInterval: time.Second,
		CheckInterval:      ObjectiveCheckInterval,
		TrailLength:        1000,
		TrailInterval:      10 * time.Second,
		StatusInterval:     10 * time.Second,
	}
}

// Dt returns the physics step in seconds.
func (c Config) Dt() float64 {
	return c.Step.Seconds()
}

// String implements the Stringer interface.
func (c Config) String() string {
	return fmt.Sprintf("step=%s x%d workers=%d prediction=%s(%d)/%s", c.Step, c.Multiplier, c.Workers, c.PredictionMethod, c.PredictionPoints, c.PredictionInterval)
}

func setConfigDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("simulation.step", d.Step)
	v.SetDefault("simulation.multiplier", d.Multiplier)
	v.SetDefault("simulation.workers", d.Workers)
	v.SetDefault("prediction.method", d.PredictionMethod.String())
	v.SetDefault("prediction.points", d.PredictionPoints)
	v.SetDefault("prediction.interval", d.PredictionInterval)
	v.SetDefault("objectives.check_interval", d.CheckInterval)
	v.SetDefault("trail.length", d.TrailLength)
	v.SetDefault("trail.interval", d.TrailInterval)
	v.SetDefault("warp.enabled", d.Warp)
	v.SetDefault("warp.stage", d.WarpStage)
	v.SetDefault("log.status_interval", d.StatusInterval)
}

// LoadConfig reads the configuration file at the provided path. Missing keys take their default value.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	setConfigDefaults(v)
	v.SetConfigName(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
		v.SetConfigType(ext)
	}
	v.AddConfigPath(filepath.Dir(path))
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return ConfigFromViper(v)
}

// ConfigFromViper reads the configuration from an already loaded viper instance.
func ConfigFromViper(v *viper.Viper) (Config, error) {
	setConfigDefaults(v)
	method, err := PredictionMethodFromString(v.GetString("prediction.method"))
	if err != nil {
		return Config{}, err
	}
	c := Config{
		Step:               v.GetDuration("simulation.step"),
		Multiplier:         v.GetUint32("simulation.multiplier"),
		Workers:            v.GetInt("simulation.workers"),
		PredictionMethod:   method,
		PredictionPoints:   v.GetInt("prediction.points"),
		PredictionInterval: v.GetDuration("prediction.interval"),
		CheckInterval:      v.GetDuration("objectives.check_interval"),
		TrailLength:        v.GetInt("trail.length"),
		TrailInterval:      v.GetDuration("trail.interval"),
		Warp:               v.GetBool("warp.enabled"),
		WarpStage:          v.GetInt("warp.stage"),
		StatusInterval:     v.GetDuration("log.status_interval"),
	}
	if c.Step <= 0 {
		return Config{}, fmt.Errorf("simulation.step must be positive, got %s", c.Step)
	}
	if c.Multiplier == 0 {
		c.Multiplier = 1
	}
	if c.WarpStage < 0 || c.WarpStage >= WarpStages() {
		return Config{}, fmt.Errorf("warp.stage must be in [0, %d], got %d", WarpStages()-1, c.WarpStage)
	}
	return c, nil
}
