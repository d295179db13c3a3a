package metrics

import "github.com/prometheus/client_golang/prometheus"

// CartMetrics counts cart mutations and degraded loads.
type CartMetrics struct {
	mutations *prometheus.CounterVec
	degraded  prometheus.Counter
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations persisted, by operation.",
	}, []string{"op"})
	degraded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_load_degraded_total",
		Help: "Cart loads that fell back to an empty cart because storage was unreadable.",
	})
	reg.MustRegister(mutations, degraded)
	return &CartMetrics{mutations: mutations, degraded: degraded}
}

// IncMutation counts a persisted mutation.
func (c *CartMetrics) IncMutation(op string) {
	if c == nil || c.mutations == nil {
		return
	}
	c.mutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncDegradedLoad counts a load that fell back to the empty cart.
func (c *CartMetrics) IncDegradedLoad() {
	if c == nil || c.degraded == nil {
		return
	}
	c.degraded.Inc()
}

