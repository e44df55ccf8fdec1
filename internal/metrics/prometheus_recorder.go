package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "coffeebot"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg           *prom.Registry
	commands      *prom.CounterVec
	brewOutcomes  *prom.CounterVec
	announcements *prom.CounterVec
	dropped       *prom.CounterVec
	alertsFired   prom.Counter
	readyAt       prom.Gauge
}

// NewPrometheusRecorder constructs and registers the coffee metrics on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		commands: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands handled by source and command",
		}, []string{"source", "command"}),
		brewOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "brew_outcomes_total",
			Help:      "Brew requests by source and outcome",
		}, []string{"source", "outcome"}),
		announcements: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "announcements_total",
			Help:      "Announcement deliveries by channel and result",
		}, []string{"channel", "result"}),
		dropped: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_commands_total",
			Help:      "Chat commands dropped before dispatch",
		}, []string{"reason"}),
		alertsFired: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_fired_total",
			Help:      "Ready alerts that fired and announced",
		}),
		readyAt: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "ready_at_timestamp_seconds",
			Help:      "Unix time the current pot is or was ready, 0 when unknown",
		}),
	}
	reg.MustRegister(pr.commands, pr.brewOutcomes, pr.announcements, pr.dropped, pr.alertsFired, pr.readyAt)
	return pr
}

func (p *PrometheusRecorder) IncCommand(source, command string) {
	if p == nil {
		return
	}
	p.commands.WithLabelValues(source, command).Inc()
}

func (p *PrometheusRecorder) IncBrewOutcome(source, outcome string) {
	if p == nil {
		return
	}
	p.brewOutcomes.WithLabelValues(source, outcome).Inc()
}

func (p *PrometheusRecorder) IncAnnouncement(channel string, success bool) {
	if p == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.announcements.WithLabelValues(channel, res).Inc()
}

func (p *PrometheusRecorder) IncDroppedCommand(reason string) {
	if p == nil {
		return
	}
	p.dropped.WithLabelValues(reason).Inc()
}

func (p *PrometheusRecorder) IncAlertFired() {
	if p == nil {
		return
	}
	p.alertsFired.Inc()
}

func (p *PrometheusRecorder) SetReadyAt(readyAt *time.Time) {
	if p == nil {
		return
	}
	if readyAt == nil {
		p.readyAt.Set(0)
		return
	}
	p.readyAt.Set(float64(readyAt.Unix()))
}

// HTTPHandler serves the recorder's registry.
func (p *PrometheusRecorder) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
