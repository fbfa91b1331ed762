package metrics

import (
	badger "github.com/dgraph-io/badger/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// badgerCollector exports BadgerDB size gauges for the embedded backend.
// Sizes are read from the database at scrape time.
type badgerCollector struct {
	db   *badger.DB
	lsm  *prometheus.Desc
	vlog *prometheus.Desc
}

func newBadgerCollector(db *badger.DB) *badgerCollector {
	return &badgerCollector{
		db: db,
		lsm: prometheus.NewDesc(
			"redbiom_badger_lsm_size_bytes",
			"Size of the BadgerDB LSM tree on disk",
			nil, nil,
		),
		vlog: prometheus.NewDesc(
			"redbiom_badger_vlog_size_bytes",
			"Size of the BadgerDB value log on disk",
			nil, nil,
		),
	}
}

// RegisterBadger registers size gauges for an embedded Badger database.
// No-op when metrics are disabled.
func RegisterBadger(db *badger.DB) {
	if !IsEnabled() {
		return
	}
	Registry().MustRegister(newBadgerCollector(db))
}

func (c *badgerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.lsm
	ch <- c.vlog
}

func (c *badgerCollector) Collect(ch chan<- prometheus.Metric) {
	lsm, vlog := c.db.Size()
	ch <- prometheus.MustNewConstMetric(c.lsm, prometheus.GaugeValue, float64(lsm))
	ch <- prometheus.MustNewConstMetric(c.vlog, prometheus.GaugeValue, float64(vlog))
}
