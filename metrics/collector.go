// Package metrics exports clock statistics to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"ztimer/board"
	"ztimer/core"
)

const namespace = "ztimer"

type counterDesc struct {
	desc  *prometheus.Desc
	value func(core.Stats) uint64
}

func newCounter(name, help string, value func(core.Stats) uint64) counterDesc {
	return counterDesc{
		desc:  prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, []string{"clock"}, nil),
		value: value,
	}
}

// Collector reports the usage counters and queue state of every clock in
// a registry. Values are read at scrape time.
type Collector struct {
	reg *board.Registry

	counters []counterDesc
	pending  *prometheus.Desc
	users    *prometheus.Desc
	now      *prometheus.Desc
}

// NewCollector creates a collector over reg
func NewCollector(reg *board.Registry) *Collector {
	gauge := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, []string{"clock"}, nil)
	}

	return &Collector{
		reg: reg,
		counters: []counterDesc{
			newCounter("sets_total", "Timers set.", func(s core.Stats) uint64 { return s.Sets }),
			newCounter("removes_total", "Pending timers removed.", func(s core.Stats) uint64 { return s.Removes }),
			newCounter("fires_total", "Timers whose callback ran.", func(s core.Stats) uint64 { return s.Fires }),
			newCounter("arms_total", "Backend alarms programmed.", func(s core.Stats) uint64 { return s.Arms }),
			newCounter("cancels_total", "Backend alarms cancelled.", func(s core.Stats) uint64 { return s.Cancels }),
			newCounter("handler_runs_total", "Alarm handler invocations.", func(s core.Stats) uint64 { return s.Handlers }),
		},
		pending: gauge("pending_timers", "Timers currently queued."),
		users:   gauge("users", "Current users of an on-demand clock."),
		now:     gauge("now_ticks", "Clock value at scrape time."),
	}
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, counter := range c.counters {
		ch <- counter.desc
	}
	ch <- c.pending
	ch <- c.users
	ch <- c.now
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, name := range c.reg.Names() {
		clock, ok := c.reg.Clock(name)
		if !ok {
			continue
		}

		stats := clock.Stats()
		for _, counter := range c.counters {
			ch <- prometheus.MustNewConstMetric(counter.desc, prometheus.CounterValue, float64(counter.value(stats)), name)
		}
		ch <- prometheus.MustNewConstMetric(c.pending, prometheus.GaugeValue, float64(clock.Len()), name)
		ch <- prometheus.MustNewConstMetric(c.users, prometheus.GaugeValue, float64(clock.Users()), name)
		ch <- prometheus.MustNewConstMetric(c.now, prometheus.GaugeValue, float64(clock.Now()), name)
	}
}
