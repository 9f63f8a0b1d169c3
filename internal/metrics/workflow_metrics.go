package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// WorkflowMetrics содержит метрики для order/payment/promotion workflow.
type WorkflowMetrics struct {
	// Счётчики заказов
	ordersCreated  prometheus.Counter
	ordersRejected prometheus.Counter

	// Счётчики платежей по исходам
	payments *prometheus.CounterVec

	// Счётчики применений промокодов
	promotionsApplied  prometheus.Counter
	promotionsRejected *prometheus.CounterVec

	// Гистограмма сумм заказов
	orderAmount prometheus.Histogram
}

// NewWorkflowMetrics создаёт новый экземпляр метрик workflow.
func NewWorkflowMetrics() *WorkflowMetrics {
	return newWorkflowMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newWorkflowMetricsWithRegisterer(registerer prometheus.Registerer) *WorkflowMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &WorkflowMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "foodshop_orders_created_total",
			Help: "Total number of orders created",
		}),
		ordersRejected: registerCounter(registerer, prometheus.CounterOpts{
			Name: "foodshop_orders_rejected_total",
			Help: "Total number of order creations rejected by validation or stock",
		}),
		payments: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "foodshop_payments_total",
			Help: "Total number of payment operations grouped by outcome",
		}, []string{"outcome"}),
		promotionsApplied: registerCounter(registerer, prometheus.CounterOpts{
			Name: "foodshop_promotions_applied_total",
			Help: "Total number of promotion codes applied successfully",
		}),
		promotionsRejected: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "foodshop_promotions_rejected_total",
			Help: "Total number of promotion applications rejected grouped by reason",
		}, []string{"reason"}),
		orderAmount: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "foodshop_order_amount_minor",
			Help:    "Order totals in minor currency units",
			Buckets: []float64{500, 1000, 2500, 5000, 10000, 25000, 50000},
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderCreated увеличивает счётчик заказов и пишет сумму в гистограмму.
func (m *WorkflowMetrics) RecordOrderCreated(amountMinor int64) {
	m.ordersCreated.Inc()
	m.orderAmount.Observe(float64(amountMinor))
}

// RecordOrderRejected увеличивает счётчик отклонённых заказов.
func (m *WorkflowMetrics) RecordOrderRejected() {
	m.ordersRejected.Inc()
}

// RecordPayment увеличивает счётчик платёжных операций по исходу
// (created, completed, failed, refunded).
func (m *WorkflowMetrics) RecordPayment(outcome string) {
	m.payments.WithLabelValues(outcome).Inc()
}

// RecordPromotionApplied увеличивает счётчик успешных применений промокодов.
func (m *WorkflowMetrics) RecordPromotionApplied() {
	m.promotionsApplied.Inc()
}

// RecordPromotionRejected увеличивает счётчик отказов по причине.
func (m *WorkflowMetrics) RecordPromotionRejected(reason string) {
	m.promotionsRejected.WithLabelValues(reason).Inc()
}
