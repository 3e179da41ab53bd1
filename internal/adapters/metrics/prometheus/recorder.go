// Package prometheus exports tracker activity as Prometheus collectors.
package prometheus

import (
	"fmt"

	"github.com/bnema/pnr-status-cli/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pnr"

type Recorder struct {
	searches      *prometheus.CounterVec
	refreshTicks  *prometheus.CounterVec
	waitOutcomes  *prometheus.CounterVec
	refreshActive prometheus.Gauge
	waitActive    prometheus.Gauge
}

var _ ports.Metrics = (*Recorder)(nil)

// NewRecorder registers the tracker collectors with reg. Pass a fresh
// registry when several recorders must coexist, as tests do.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	r := &Recorder{
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "lookups_total",
			Help:      "Initial PNR lookups by result.",
		}, []string{"result"}),
		refreshTicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "ticks_total",
			Help:      "Refresh lookups by result.",
		}, []string{"result"}),
		waitOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wait",
			Name:      "sessions_total",
			Help:      "Message wait sessions by outcome.",
		}, []string{"outcome"}),
		refreshActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "active",
			Help:      "1 while a refresh cycle is scheduled.",
		}),
		waitActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "wait",
			Name:      "active",
			Help:      "1 while a message wait session is open.",
		}),
	}

	for _, c := range []prometheus.Collector{r.searches, r.refreshTicks, r.waitOutcomes, r.refreshActive, r.waitActive} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register pnr collector: %w", err)
		}
	}

	return r, nil
}

func (r *Recorder) SearchCompleted(result string) {
	r.searches.WithLabelValues(result).Inc()
}

func (r *Recorder) RefreshTicked(result string) {
	r.refreshTicks.WithLabelValues(result).Inc()
}

func (r *Recorder) RefreshActive(active bool) {
	r.refreshActive.Set(boolToFloat(active))
}

func (r *Recorder) WaitResolved(outcome string) {
	r.waitOutcomes.WithLabelValues(outcome).Inc()
}

func (r *Recorder) WaitActive(active bool) {
	r.waitActive.Set(boolToFloat(active))
}

func boolToFloat(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
