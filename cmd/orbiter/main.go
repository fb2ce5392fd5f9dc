package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"

	"github.com/ChristopherRabotin/orbiter"
	kitlog "github.com/go-kit/kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/soniakeys/meeus/v3/julian"
)

// This code reads the scenario, if any, and runs the mission until all objectives are completed.

const defaultScenario = "~~unset~~"

var (
	scenario    string
	config      string
	metricsAddr string
	ticks       int
	verbose     bool
)

func init() {
	flag.StringVar(&scenario, "scenario", defaultScenario, "scenario TOML file (default world otherwise)")
	flag.StringVar(&config, "config", "", "simulation configuration TOML file")
	flag.StringVar(&metricsAddr, "metrics", "", "address to serve Prometheus metrics on, e.g. :9090")
	flag.IntVar(&ticks, "ticks", 0, "number of ticks to run (until all objectives are completed if not positive)")
	flag.BoolVar(&verbose, "verbose", false, "really verbose (esp. for configuration)")
}

func main() {
	flag.Parse()
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))

	cfg := orbiter.DefaultConfig()
	if config != "" {
		var err error
		if cfg, err = orbiter.LoadConfig(config); err != nil {
			log.Fatalf("could not load configuration: %s", err)
		}
	}
	if verbose {
		log.Printf("[conf] %s", cfg)
	}

	sc := defaultScene()
	if scenario != defaultScenario {
		var err error
		if sc, err = loadScene(scenario); err != nil {
			log.Fatalf("%s: %s", scenario, err)
		}
	}
	if verbose {
		for _, b := range sc.bodies {
			log.Printf("[conf] %s", b)
		}
	}
	logger = kitlog.With(logger, "start(JDE)", julian.TimeToJD(sc.start))

	reg := prometheus.NewRegistry()
	metrics := orbiter.NewMissionMetrics(reg)
	if metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			logger.Log("level", "info", "subsys", "metrics", "addr", metricsAddr)
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				logger.Log("level", "critical", "subsys", "metrics", "err", err)
			}
		}()
	}

	mission, err := orbiter.NewMission(sc.bodies, sc.craft, sc.propulsion, cfg, metrics, logger)
	if err != nil {
		log.Fatalf("could not create mission: %s", err)
	}
	mission.Epoch = sc.start

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := mission.Run(ctx, ticks); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("mission failed: %s", err)
	}
}
