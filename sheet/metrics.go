package sheet

import (
	"github.com/influxdata/calcsheet/eval"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "calcsheet"

const resultOK = "ok"

type metrics struct {
	parseCacheHits   prometheus.Counter
	parseCacheMisses prometheus.Counter
	planCacheHits    prometheus.Counter
	planCacheMisses  prometheus.Counter
	evaluations      *prometheus.CounterVec
	cyclicFields     prometheus.Counter
	recalcDuration   prometheus.Histogram
}

func newMetrics() *metrics {
	return &metrics{
		parseCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_cache_hits_total",
			Help:      "Formulas served from the parse cache.",
		}),
		parseCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_cache_misses_total",
			Help:      "Formulas parsed because they were not cached.",
		}),
		planCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_cache_hits_total",
			Help:      "Recalculations that reused a cached evaluation plan.",
		}),
		planCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_cache_misses_total",
			Help:      "Recalculations that built a new evaluation plan.",
		}),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Formula evaluations by result, ok or the error code.",
		}, []string{"result"}),
		cyclicFields: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cyclic_fields_total",
			Help:      "Formula fields left unresolved by a reference cycle.",
		}),
		recalcDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recalculation_duration_seconds",
			Help:      "Time spent computing all fields of a sheet.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
	}
}

func (m *metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.parseCacheHits,
		m.parseCacheMisses,
		m.planCacheHits,
		m.planCacheMisses,
		m.evaluations,
		m.cyclicFields,
		m.recalcDuration,
	}
}

func (m *metrics) register(r prometheus.Registerer) error {
	for _, c := range m.collectors() {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *metrics) observeEvaluation(v eval.Value) {
	result := resultOK
	if v.IsError() {
		result = v.ErrorCode().Error()
	}
	m.evaluations.WithLabelValues(result).Inc()
}
