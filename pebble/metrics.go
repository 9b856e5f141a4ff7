// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"time"

	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsInterval = 10 * time.Second

type metrics struct {
	delayStart time.Time
	writeStall metric.Averager

	getLatency   metric.Averager
	writeLatency metric.Averager

	l0Compactions     prometheus.Counter
	otherCompactions  prometheus.Counter
	activeCompactions prometheus.Gauge

	// sampled from [pebble.Metrics] every [metricsInterval]
	tombstones    prometheus.Gauge
	obsoleteBytes *prometheus.GaugeVec
	obsoleteFiles *prometheus.GaugeVec
}

// newMetrics registers the database metrics under [namespace] so several
// databases can share one gatherer.
func newMetrics(namespace string) (*prometheus.Registry, *metrics, error) {
	r := prometheus.NewRegistry()
	writeStall, err := metric.NewAverager(
		namespace+"_write_stall",
		"time spent waiting for disk write",
		r,
	)
	if err != nil {
		return nil, nil, err
	}
	getLatency, err := metric.NewAverager(
		namespace+"_read_latency",
		"time spent waiting for db get",
		r,
	)
	if err != nil {
		return nil, nil, err
	}
	writeLatency, err := metric.NewAverager(
		namespace+"_batch_write_latency",
		"time spent writing a batch",
		r,
	)
	if err != nil {
		return nil, nil, err
	}

	m := &metrics{
		writeStall:   writeStall,
		getLatency:   getLatency,
		writeLatency: writeLatency,
	}
	m.l0Compactions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "l0_compactions",
		Help:      "number of l0 compactions",
	})
	m.otherCompactions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "other_compactions",
		Help:      "number of l1+ compactions",
	})
	m.activeCompactions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_compactions",
		Help:      "number of active compactions",
	})
	m.tombstones = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "tombstone_count",
		Help:      "approximate count of internal tombstones",
	})
	m.obsoleteBytes = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "unreferenced_bytes",
		Help:      "bytes held by files the db no longer needs",
	}, []string{"kind"})
	m.obsoleteFiles = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "unreferenced_files",
		Help:      "number of files the db no longer needs",
	}, []string{"kind"})

	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.l0Compactions),
		r.Register(m.otherCompactions),
		r.Register(m.activeCompactions),
		r.Register(m.tombstones),
		r.Register(m.obsoleteBytes),
		r.Register(m.obsoleteFiles),
	)
	return r, m, errs.Err
}

func (*metrics) now() time.Time {
	return time.Now()
}

func (m *metrics) observeGet(start time.Time) {
	m.getLatency.Observe(float64(time.Since(start)))
}

func (m *metrics) observeWrite(start time.Time) {
	m.writeLatency.Observe(float64(time.Since(start)))
}

// sample copies the point-in-time values of [pm].
func (m *metrics) sample(pm *pebble.Metrics) {
	m.tombstones.Set(float64(pm.Keys.TombstoneCount))
	// obsolete files wait for deletion, zombie files are pinned by
	// open iterators
	m.obsoleteBytes.WithLabelValues("obsolete_table").Set(float64(pm.Table.ObsoleteSize))
	m.obsoleteBytes.WithLabelValues("zombie_table").Set(float64(pm.Table.ZombieSize))
	m.obsoleteBytes.WithLabelValues("obsolete_wal").Set(float64(pm.WAL.ObsoletePhysicalSize))
	m.obsoleteFiles.WithLabelValues("obsolete_table").Set(float64(pm.Table.ObsoleteCount))
	m.obsoleteFiles.WithLabelValues("zombie_table").Set(float64(pm.Table.ZombieCount))
	m.obsoleteFiles.WithLabelValues("obsolete_wal").Set(float64(pm.WAL.ObsoleteFiles))
}

func (db *Database) onCompactionBegin(info pebble.CompactionInfo) {
	db.metrics.activeCompactions.Inc()
	if len(info.Input) > 0 && info.Input[0].Level == 0 {
		db.metrics.l0Compactions.Inc()
	} else {
		db.metrics.otherCompactions.Inc()
	}
}

func (db *Database) onCompactionEnd(pebble.CompactionInfo) {
	db.metrics.activeCompactions.Dec()
}

func (db *Database) onWriteStallBegin(pebble.WriteStallBeginInfo) {
	db.metrics.delayStart = time.Now()
}

func (db *Database) onWriteStallEnd() {
	db.metrics.writeStall.Observe(float64(time.Since(db.metrics.delayStart)))
}

func (db *Database) collectMetrics() {
	t := time.NewTicker(metricsInterval)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			db.metrics.sample(db.db.Metrics())
		case <-db.closing:
			return
		}
	}
}
