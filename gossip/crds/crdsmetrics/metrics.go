// Package crdsmetrics registers Prometheus instrumentation for a CrdsTable,
// following the same registration style as
// common/dbutils.PreimageCounter/PreimageHitCounter: a handful of
// collectors, created once per Set by NewSet and updated from the hot path.
package crdsmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Set is the metrics surface for one CrdsTable. A nil *Set is valid and
// turns every method into a no-op, so instrumentation is always optional.
type Set struct {
	size      prometheus.Gauge
	cursor    prometheus.Gauge
	purgedLen prometheus.Gauge
	inserts   *prometheus.CounterVec
}

// Outcome labels used on the inserts counter vector.
const (
	OutcomeOk              = "ok"
	OutcomeOldValue        = "old_value"
	OutcomeDuplicateValue  = "duplicate_value"
	OutcomeResourceExceeded = "resource_exceeded"
)

// NewSet creates and registers a Set's collectors against reg. Pass
// prometheus.DefaultRegisterer for the global registry, or a fresh
// prometheus.NewRegistry() in tests that create more than one table.
func NewSet(reg prometheus.Registerer, namespace string) *Set {
	s := &Set{
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "crds_table_size",
			Help:      "Number of distinct labels currently stored in the table.",
		}),
		cursor: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "crds_table_cursor",
			Help:      "Current value of the table's monotonic insertion cursor.",
		}),
		purgedLen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "crds_table_purged_len",
			Help:      "Number of entries currently queued in the purged-hash FIFO.",
		}),
		inserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "crds_table_inserts_total",
			Help:      "Insert attempts by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(s.size, s.cursor, s.purgedLen, s.inserts)
	return s
}

func (s *Set) SetSize(n int) {
	if s == nil {
		return
	}
	s.size.Set(float64(n))
}

func (s *Set) SetCursor(c uint64) {
	if s == nil {
		return
	}
	s.cursor.Set(float64(c))
}

func (s *Set) SetPurgedLen(n int) {
	if s == nil {
		return
	}
	s.purgedLen.Set(float64(n))
}

func (s *Set) ObserveInsert(outcome string) {
	if s == nil {
		return
	}
	s.inserts.WithLabelValues(outcome).Inc()
}

// Snapshot reads back the current gauge values without a scrape, for
// callers (such as crdsctl) that want to print a metric inline rather than
// expose an HTTP endpoint. A nil Set snapshots as all zeros.
func (s *Set) Snapshot() (size, cursor, purgedLen float64) {
	if s == nil {
		return 0, 0, 0
	}
	return gaugeValue(s.size), gaugeValue(s.cursor), gaugeValue(s.purgedLen)
}

func gaugeValue(g prometheus.Gauge) float64 {
	var m dto.Metric
	_ = g.Write(&m)
	return m.GetGauge().GetValue()
}
