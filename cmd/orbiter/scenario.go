package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ChristopherRabotin/orbiter"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/spf13/viper"
)

// scene is everything the mission needs from a scenario. craft is NoBody if there is none.
type scene struct {
	start      time.Time
	bodies     []orbiter.Body
	craft      int
	propulsion *orbiter.Propulsion
}

func defaultScene() scene {
	bodies := orbiter.DefaultBodies()
	craft, _ := orbiter.FindCraft(bodies)
	return scene{start: time.Now().UTC(), bodies: bodies, craft: craft, propulsion: orbiter.DefaultPropulsion()}
}

// loadScene reads a scenario such as:
//
//	[mission]
//	start = 2460000.5 # JDE or date
//	[bodies.0]
//	object = "earth"
//	[bodies.1]
//	object = "lander"
//	position = [0, 318650]
//	velocity = [1500, 0]
//	[craft]
//	thrust = 10.0
//	fuel = 1000.0
//	rate = 1.0
func loadScene(path string) (sc scene, err error) {
	v := viper.New()
	v.SetConfigName(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	v.SetConfigType("toml")
	v.AddConfigPath(filepath.Dir(path))
	if err = v.ReadInConfig(); err != nil {
		return
	}
	sc.start = confReadJDEorTime(v, "mission.start")
	for i := 0; v.IsSet(fmt.Sprintf("bodies.%d", i)); i++ {
		key := fmt.Sprintf("bodies.%d", i)
		obj, err := orbiter.CelestialObjectFromString(v.GetString(key + ".object"))
		if err != nil {
			return sc, fmt.Errorf("%s: %w", key, err)
		}
		pos, err := confReadVec(v, key+".position")
		if err != nil {
			return sc, err
		}
		vel, err := confReadVec(v, key+".velocity")
		if err != nil {
			return sc, err
		}
		sc.bodies = append(sc.bodies, obj.Body(pos, vel))
	}
	if len(sc.bodies) == 0 {
		return sc, fmt.Errorf("no bodies defined")
	}
	if v.GetBool("mission.balance") {
		orbiter.BalanceMomentum(sc.bodies, 0)
	}
	// Without craft the world simply runs.
	if sc.craft, err = orbiter.FindCraft(sc.bodies); err != nil {
		return sc, nil
	}
	def := orbiter.DefaultPropulsion()
	v.SetDefault("craft.thrust", def.MaxThrust)
	v.SetDefault("craft.fuel", def.MaxFuel)
	v.SetDefault("craft.rate", def.ConsumptionRate)
	sc.propulsion = orbiter.NewPropulsion(v.GetFloat64("craft.thrust"), v.GetFloat64("craft.fuel"), v.GetFloat64("craft.rate"))
	sc.propulsion.SetThrottle(v.GetFloat64("craft.throttle"))
	sc.propulsion.Steer(orbiter.Deg2rad(v.GetFloat64("craft.heading")))
	return
}

func confReadVec(v *viper.Viper, key string) (mgl64.Vec3, error) {
	var vec mgl64.Vec3
	if !v.IsSet(key) {
		return vec, nil
	}
	comps := v.GetStringSlice(key)
	if len(comps) != 2 {
		return vec, fmt.Errorf("%s: expected two components, got %d", key, len(comps))
	}
	for i, c := range comps {
		if _, err := fmt.Sscanf(c, "%g", &vec[i]); err != nil {
			return vec, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
	}
	return vec, nil
}

func confReadJDEorTime(v *viper.Viper, key string) (dt time.Time) {
	if !v.IsSet(key) {
		return time.Now().UTC()
	}
	jde := v.GetFloat64(key)
	if jde == 0 {
		dt = v.GetTime(key)
	} else {
		dt = julian.JDToTime(jde)
	}
	return
}
