package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"escola/internal/students"
)

// Collectors groups the service metrics.
type Collectors struct {
	TableCalls    *prometheus.CounterVec
	TableDuration *prometheus.HistogramVec
	Exports       prometheus.Counter
	Relayed       *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		TableCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "escola",
			Name:      "table_calls_total",
			Help:      "Calls to the student table by operation and outcome.",
		}, []string{"op", "outcome"}),
		TableDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "escola",
			Name:      "table_call_duration_seconds",
			Help:      "Latency of student table calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		Exports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "escola",
			Name:      "csv_exports_total",
			Help:      "CSV exports served or archived.",
		}),
		Relayed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "escola",
			Name:      "notifications_relayed_total",
			Help:      "Notifications handled by the worker by outcome.",
		}, []string{"outcome"}),
	}
	if reg != nil {
		reg.MustRegister(c.TableCalls, c.TableDuration, c.Exports, c.Relayed)
	}
	return c
}

// Table wraps a students.Table and records call counts and latency.
type Table struct {
	next students.Table
	c    *Collectors
}

// Instrument decorates next with c.
func (c *Collectors) Instrument(next students.Table) *Table {
	return &Table{next: next, c: c}
}

func (t *Table) observe(op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	t.c.TableCalls.WithLabelValues(op, outcome).Inc()
	t.c.TableDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Select implements students.Table.
func (t *Table) Select(ctx context.Context, order students.Ordering) (res []students.Student, err error) {
	start := time.Now()
	defer func() { t.observe("select", start, err) }()
	return t.next.Select(ctx, order)
}

// Insert implements students.Table.
func (t *Table) Insert(ctx context.Context, s students.Student) (err error) {
	start := time.Now()
	defer func() { t.observe("insert", start, err) }()
	return t.next.Insert(ctx, s)
}

// Update implements students.Table.
func (t *Table) Update(ctx context.Context, id string, patch students.Patch) (err error) {
	start := time.Now()
	defer func() { t.observe("update", start, err) }()
	return t.next.Update(ctx, id, patch)
}
