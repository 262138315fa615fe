package metric

import "github.com/prometheus/client_golang/prometheus"

// Sizer reports the number of entries held by a store.
type Sizer interface {
	Len() int
}

// KeysCollector reports the current key count of a store on every scrape.
type KeysCollector struct {
	store Sizer
	desc  *prometheus.Desc
}

// NewKeysCollector creates a collector for store.
func NewKeysCollector(store Sizer) *KeysCollector {
	return &KeysCollector{
		store: store,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "", "keys"),
			"Number of keys in the store.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *KeysCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *KeysCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(c.store.Len()))
}
