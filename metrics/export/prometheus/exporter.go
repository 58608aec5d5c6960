package prometheus

import (
	"net/http"

	otpAuth "github.com/MrEthical07/otpAuth"
	"github.com/MrEthical07/otpAuth/metrics/export/internaldefs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metricsSource interface {
	MetricsSnapshot() otpAuth.MetricsSnapshot
	MailDropped() uint64
}

type counterDesc struct {
	id   otpAuth.MetricID
	desc *prometheus.Desc
}

type histogramDesc struct {
	id   otpAuth.MetricID
	desc *prometheus.Desc
}

// Collector implements prometheus.Collector over engine snapshots.
type Collector struct {
	source      metricsSource
	counters    []counterDesc
	histograms  []histogramDesc
	mailDropped *prometheus.Desc
}

// NewCollector reads from engine.
func NewCollector(engine *otpAuth.Engine) *Collector {
	return NewCollectorFromSource(engine)
}

// NewCollectorFromSource reads from any snapshot source.
func NewCollectorFromSource(source metricsSource) *Collector {
	c := &Collector{
		source:      source,
		counters:    make([]counterDesc, 0, len(internaldefs.CounterDefs)),
		histograms:  make([]histogramDesc, 0, len(internaldefs.HistogramDefs)),
		mailDropped: prometheus.NewDesc(internaldefs.MailDroppedName, internaldefs.MailDroppedHelp, nil, nil),
	}
	for _, def := range internaldefs.CounterDefs {
		c.counters = append(c.counters, counterDesc{id: def.ID, desc: prometheus.NewDesc(def.Name, def.Help, nil, nil)})
	}
	for _, def := range internaldefs.HistogramDefs {
		c.histograms = append(c.histograms, histogramDesc{id: def.ID, desc: prometheus.NewDesc(def.Name, def.Help, nil, nil)})
	}
	return c
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, cd := range c.counters {
		ch <- cd.desc
	}
	for _, hd := range c.histograms {
		ch <- hd.desc
	}
	ch <- c.mailDropped
}

// Collect implements prometheus.Collector. Disabled metrics produce no
// samples.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c.source == nil {
		return
	}
	snapshot := c.source.MetricsSnapshot()
	if len(snapshot.Counters) == 0 && len(snapshot.Histograms) == 0 {
		return
	}

	for _, cd := range c.counters {
		ch <- prometheus.MustNewConstMetric(cd.desc, prometheus.CounterValue, float64(snapshot.Counters[cd.id]))
	}

	for _, hd := range c.histograms {
		raw, ok := snapshot.Histograms[hd.id]
		if !ok {
			continue
		}
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw))
		buckets := make(map[float64]uint64, len(internaldefs.HistogramUpperBounds))
		for i, le := range internaldefs.HistogramUpperBounds {
			buckets[le] = cumulative[i]
		}
		// Sum is not tracked by the engine.
		ch <- prometheus.MustNewConstHistogram(hd.desc, cumulative[len(cumulative)-1], 0, buckets)
	}

	ch <- prometheus.MustNewConstMetric(c.mailDropped, prometheus.CounterValue, float64(c.source.MailDropped()))
}

// Handler serves engine metrics from a dedicated registry, alongside the Go
// runtime and process collectors.
func Handler(engine *otpAuth.Engine) http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		NewCollector(engine),
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

var _ prometheus.Collector = (*Collector)(nil)
