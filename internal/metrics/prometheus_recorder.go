package metrics

import (
	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "battreminder"

var knownStatuses = []string{"Charging", "Discharging", "Full", "Unknown"}

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	percentage      prom.Gauge
	status          *prom.GaugeVec
	readFailures    *prom.CounterVec
	alerts          *prom.CounterVec
	commands        *prom.CounterVec
	plugTransitions *prom.CounterVec
}

// NewPrometheusRecorder constructs the battery metrics and registers them on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		percentage: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "battery_percentage",
			Help:      "Last observed battery charge percentage",
		}),
		status: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "battery_status",
			Help:      "Last observed charging status (1 for the current status)",
		}, []string{"status"}),
		readFailures: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "read_failures_total",
			Help:      "Sensor read failures by loop",
		}, []string{"source"}),
		alerts: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Alerts raised by tier",
		}, []string{"tier"}),
		commands: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "User commands started by trigger and result",
		}, []string{"trigger", "result"}),
		plugTransitions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "plug_transitions_total",
			Help:      "Observed AC plug transitions by direction",
		}, []string{"direction"}),
	}
	reg.MustRegister(pr.percentage, pr.status, pr.readFailures, pr.alerts, pr.commands, pr.plugTransitions)
	return pr
}

func (p *PrometheusRecorder) ObserveReading(percentage int, status string) {
	if p == nil {
		return
	}
	p.percentage.Set(float64(percentage))
	for _, known := range knownStatuses {
		value := 0.0
		if known == status {
			value = 1
		}
		p.status.WithLabelValues(known).Set(value)
	}
}

func (p *PrometheusRecorder) IncReadFailure(source string) {
	if p == nil {
		return
	}
	p.readFailures.WithLabelValues(source).Inc()
}

func (p *PrometheusRecorder) IncAlert(tier string) {
	if p == nil {
		return
	}
	p.alerts.WithLabelValues(tier).Inc()
}

func (p *PrometheusRecorder) IncCommand(trigger string, success bool) {
	if p == nil {
		return
	}
	result := "started"
	if !success {
		result = "failed"
	}
	p.commands.WithLabelValues(trigger, result).Inc()
}

func (p *PrometheusRecorder) IncPlugTransition(direction string) {
	if p == nil {
		return
	}
	p.plugTransitions.WithLabelValues(direction).Inc()
}
