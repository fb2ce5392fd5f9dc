package orbiter

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MissionMetrics are the Prometheus collectors of a mission.
type MissionMetrics struct {
	ticks           prometheus.Counter
	tickDuration    prometheus.Histogram
	contacts        *prometheus.CounterVec
	objectives      *prometheus.CounterVec
	fuel            prometheus.Gauge
	warpStage       prometheus.Gauge
	predictedPoints prometheus.Gauge
}

// NewMissionMetrics creates the mission collectors and registers them with reg.
// A nil registerer leaves them unregistered.
func NewMissionMetrics(reg prometheus.Registerer) *MissionMetrics {
	m := &MissionMetrics{
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orbiter_ticks_total",
			Help: "Total number of simulation ticks",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "orbiter_tick_duration_seconds",
			Help:    "Wall time spent processing a tick",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
		contacts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orbiter_contacts_total",
				Help: "Total number of resolved collisions",
			},
			[]string{"body"},
		),
		objectives: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orbiter_objectives_completed_total",
				Help: "Objectives completed",
			},
			[]string{"objective"},
		),
		fuel: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orbiter_craft_fuel_kg",
			Help: "Remaining fuel of the craft",
		}),
		warpStage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orbiter_warp_stage",
			Help: "Time warp stage in effect",
		}),
		predictedPoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orbiter_predicted_points",
			Help: "Number of points of the last trajectory prediction of the craft",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.ticks, m.tickDuration, m.contacts, m.objectives, m.fuel, m.warpStage, m.predictedPoints)
	}
	return m
}

// RecordTick counts a tick and observes its wall duration.
func (m *MissionMetrics) RecordTick(duration time.Duration) {
	m.ticks.Inc()
	m.tickDuration.Observe(duration.Seconds())
}

// RecordContact counts a collision for both bodies involved.
func (m *MissionMetrics) RecordContact(a, b string) {
	m.contacts.WithLabelValues(a).Inc()
	m.contacts.WithLabelValues(b).Inc()
}

// RecordObjective counts a completed objective.
func (m *MissionMetrics) RecordObjective(o Objective) {
	m.objectives.WithLabelValues(o.String()).Inc()
}

// SetFuel sets the fuel gauge.
func (m *MissionMetrics) SetFuel(kg float64) {
	m.fuel.Set(kg)
}

// SetWarpStage sets the warp stage gauge.
func (m *MissionMetrics) SetWarpStage(stage int) {
	m.warpStage.Set(float64(stage))
}

// SetPredictedPoints sets the prediction size gauge.
func (m *MissionMetrics) SetPredictedPoints(n int) {
	m.predictedPoints.Set(float64(n))
}
