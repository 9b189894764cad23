package main

import (
	"quizapp"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts quiz activity for /metrics
type Metrics struct {
	started     prometheus.Counter
	finished    prometheus.Counter
	expirations prometheus.Counter
	lastScore   prometheus.Gauge
	highScore   prometheus.Gauge
}

// NewMetrics registers the quiz metrics; clients reports open live-update connections
func NewMetrics(reg prometheus.Registerer, clients func() int) *Metrics {
	m := &Metrics{
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quizapp_quizzes_started_total",
			Help: "Quizzes started, including retries.",
		}),
		finished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quizapp_quizzes_finished_total",
			Help: "Quizzes that reached the result view.",
		}),
		expirations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quizapp_timer_expirations_total",
			Help: "Questions closed by the countdown.",
		}),
		lastScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quizapp_last_score",
			Help: "Score of the most recently finished quiz.",
		}),
		highScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quizapp_high_score",
			Help: "Highest score since the process started.",
		}),
	}
	wsClients := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "quizapp_ws_clients",
		Help: "Open websocket connections receiving session updates.",
	}, func() float64 {
		return float64(clients())
	})
	reg.MustRegister(m.started, m.finished, m.expirations, m.lastScore, m.highScore, wsClients)
	return m
}

// Observe updates the metrics from a controller snapshot
func (m *Metrics) Observe(snap quizapp.Snapshot) {
	switch snap.Cause {
	case quizapp.CauseStart:
		m.started.Inc()
	case quizapp.CauseExpire:
		m.expirations.Inc()
	}
	if snap.Finished() {
		m.finished.Inc()
		m.lastScore.Set(float64(snap.Score))
		m.highScore.Set(float64(snap.HighScore))
	}
}
