package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OrderMetrics tracks the order subsystem. A nil *OrderMetrics is a no-op.
type OrderMetrics struct {
	OrdersPlaced       prometheus.Counter
	OrdersDeleted      prometheus.Counter
	PlacementFailures  *prometheus.CounterVec
	Compensations      prometheus.Counter
	CascadeFailures    prometheus.Counter
	OrphansSwept       prometheus.Counter
	PlacementLatencyMS prometheus.Histogram

	registry *prometheus.Registry
}

// NewOrderMetrics registers the order metrics on a fresh registry.
func NewOrderMetrics() *OrderMetrics {
	m := &OrderMetrics{
		OrdersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eshop", Subsystem: "orders",
			Name: "placed_total", Help: "Orders successfully placed.",
		}),
		OrdersDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eshop", Subsystem: "orders",
			Name: "deleted_total", Help: "Orders deleted.",
		}),
		PlacementFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eshop", Subsystem: "orders",
			Name: "placement_failures_total", Help: "Failed order placements by error kind.",
		}, []string{"kind"}),
		Compensations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eshop", Subsystem: "orders",
			Name: "compensated_line_items_total", Help: "Line items removed by placement compensation.",
		}),
		CascadeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eshop", Subsystem: "orders",
			Name: "cascade_failures_total", Help: "Line items that could not be removed during order deletion.",
		}),
		OrphansSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eshop", Subsystem: "orders",
			Name: "orphans_swept_total", Help: "Unreferenced line items removed by the reconciliation sweep.",
		}),
		PlacementLatencyMS: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "eshop", Subsystem: "orders",
			Name:    "placement_duration_ms",
			Help:    "Order placement latency in milliseconds.",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(
		m.OrdersPlaced, m.OrdersDeleted, m.PlacementFailures, m.Compensations,
		m.CascadeFailures, m.OrphansSwept, m.PlacementLatencyMS,
	)
	return m
}

// ObservePlaced counts a placed order and records its placement latency.
func (m *OrderMetrics) ObservePlaced(durationMS float64) {
	if m == nil {
		return
	}
	m.OrdersPlaced.Inc()
	m.PlacementLatencyMS.Observe(durationMS)
}

// ObservePlacementFailure counts a failed placement by error kind.
func (m *OrderMetrics) ObservePlacementFailure(kind string) {
	if m == nil {
		return
	}
	m.PlacementFailures.WithLabelValues(kind).Inc()
}

// AddCompensated counts line items removed by placement compensation.
func (m *OrderMetrics) AddCompensated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Compensations.Add(float64(n))
}

// ObserveDeleted counts a deleted order and its cascade failures.
func (m *OrderMetrics) ObserveDeleted(cascadeFailures int) {
	if m == nil {
		return
	}
	m.OrdersDeleted.Inc()
	if cascadeFailures > 0 {
		m.CascadeFailures.Add(float64(cascadeFailures))
	}
}

// AddSwept counts line items removed by the orphan sweep.
func (m *OrderMetrics) AddSwept(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.OrphansSwept.Add(float64(n))
}

// Registry exposes the underlying registry, mainly for tests.
func (m *OrderMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format on a fiber route.
func (m *OrderMetrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
