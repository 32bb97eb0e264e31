package metrics

import "github.com/prometheus/client_golang/prometheus"

// OrderMetrics counts checkouts handed off to WhatsApp.
type OrderMetrics struct {
	placed   prometheus.Counter
	redeemed prometheus.Counter
	rejected *prometheus.CounterVec
}

func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	placed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders settled and handed off for delivery.",
	})
	redeemed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "loyalty_points_redeemed_total",
		Help: "Loyalty points redeemed at checkout.",
	})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_rejected_total",
		Help: "Checkouts rejected before settlement.",
	}, []string{"reason"})
	reg.MustRegister(placed, redeemed, rejected)
	return &OrderMetrics{placed: placed, redeemed: redeemed, rejected: rejected}
}

// IncPlaced records a settled order and the points it redeemed.
func (m *OrderMetrics) IncPlaced(pointsRedeemed int) {
	if m == nil || m.placed == nil {
		return
	}
	m.placed.Inc()
	if pointsRedeemed > 0 {
		m.redeemed.Add(float64(pointsRedeemed))
	}
}

func (m *OrderMetrics) IncRejected(reason string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(reason)).Inc()
}
