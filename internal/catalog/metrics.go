package catalog

import "github.com/prometheus/client_golang/prometheus"

const (
	opPurchase = "purchase"
	opRestock  = "restock"
)

// Metrics tracks stock movements. A nil *Metrics records nothing.
type Metrics struct {
	Movements *prometheus.CounterVec
	Units     *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer, store Store) *Metrics {
	m := &Metrics{
		Movements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sweetshop_stock_movements_total",
				Help: "Purchase and restock attempts by outcome",
			},
			[]string{"op", "outcome"},
		),
		Units: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sweetshop_stock_units_total",
				Help: "Units moved by successful purchases and restocks",
			},
			[]string{"op"},
		),
	}

	items := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "sweetshop_catalog_items",
			Help: "Items currently in the catalog",
		},
		func() float64 { return float64(store.Len()) },
	)

	reg.MustRegister(m.Movements, m.Units, items)
	return m
}

func (m *Metrics) observe(op string, amount int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.Movements.WithLabelValues(op, KindOf(err).String()).Inc()
		return
	}
	m.Movements.WithLabelValues(op, "ok").Inc()
	m.Units.WithLabelValues(op).Add(float64(amount))
}
