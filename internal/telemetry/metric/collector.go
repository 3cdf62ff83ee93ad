// Package metric provides Prometheus metrics for kvsh.
package metric

import "github.com/prometheus/client_golang/prometheus"

// Collector reports values read from the running shell at scrape time.
type Collector struct {
	historyLen  func() int
	historyDesc *prometheus.Desc
}

// NewCollector creates a collector reading the history size from historyLen.
func NewCollector(historyLen func() int) *Collector {
	return &Collector{
		historyLen: historyLen,
		historyDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "history_entries"),
			"Entries currently held in the command history.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.historyDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	n := 0
	if c.historyLen != nil {
		n = c.historyLen()
	}
	ch <- prometheus.MustNewConstMetric(c.historyDesc, prometheus.GaugeValue, float64(n))
}
