package pager

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "pagekit"

// Allocation sources.
const (
	sourceFreeList = "freelist"
	sourceGrowth   = "growth"
)

type metrics struct {
	allocations  *prometheus.CounterVec
	frees        prometheus.Counter
	corruptions  prometheus.Counter
	commits      prometheus.Counter
	flushedPages prometheus.Counter
	pages        prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	return &metrics{
		allocations: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "pager",
				Name:      "allocations_total",
				Help:      "Pages handed out, by source (freelist or growth).",
			},
			[]string{"source"},
		)),
		frees: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "pager",
			Name:      "frees_total",
			Help:      "Pages returned to the free list.",
		})),
		corruptions: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "pager",
			Name:      "corruptions_total",
			Help:      "Free list corruption detected.",
		})),
		commits: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "pager",
			Name:      "commits_total",
			Help:      "Completed commits.",
		})),
		flushedPages: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "pager",
			Name:      "flushed_pages_total",
			Help:      "Data pages written by commits.",
		})),
		pages: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "pager",
			Name:      "pages",
			Help:      "Pages in the file, header included.",
		})),
	}
}

// register adds c to reg. When an identical collector is already registered
// (a second pager on the same registry), the existing one is shared.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}
