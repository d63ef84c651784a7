package aggregator

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tejusbharadwaj/narodmon-avg/internal/models"
)

const namespace = "narodmon"

// Metrics collects aggregator counters and gauges.
type Metrics struct {
	Cycles       *prometheus.CounterVec
	CatalogLoads *prometheus.CounterVec
	Average      *prometheus.GaugeVec
	Samples      *prometheus.GaugeVec
	Devices      *prometheus.GaugeVec
	Removed      prometheus.Counter
}

// NewMetrics creates the aggregator metrics and registers them with reg
// unless reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "update_cycles_total",
			Help:      "Update cycles by result.",
		}, []string{"result"}),
		CatalogLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_resolutions_total",
			Help:      "Sensor type catalog resolutions by source.",
		}, []string{"source"}),
		Average: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "type_average",
			Help:      "Last published average per sensor type.",
		}, []string{"type"}),
		Samples: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "type_samples",
			Help:      "Number of readings behind the last published average.",
		}, []string{"type"}),
		Devices: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "type_devices",
			Help:      "Number of distinct devices behind the last published average.",
		}, []string{"type"}),
		Removed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "removed_entities_total",
			Help:      "Entities deleted by remove-all.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Cycles, m.CatalogLoads, m.Average, m.Samples, m.Devices, m.Removed)
	}
	return m
}

func (m *Metrics) observe(a models.Aggregate) {
	slug := Slug(a.TypeID)
	m.Average.WithLabelValues(slug).Set(a.Mean)
	m.Samples.WithLabelValues(slug).Set(float64(a.Count))
	m.Devices.WithLabelValues(slug).Set(float64(a.Devices))
}
