package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewWorkflowMetrics(t *testing.T) {
	m := newWorkflowMetricsWithRegisterer(prometheus.NewRegistry())

	if m.ordersCreated == nil {
		t.Error("ordersCreated counter should not be nil")
	}
	if m.ordersRejected == nil {
		t.Error("ordersRejected counter should not be nil")
	}
	if m.payments == nil {
		t.Error("payments counter vec should not be nil")
	}
	if m.promotionsApplied == nil {
		t.Error("promotionsApplied counter should not be nil")
	}
	if m.promotionsRejected == nil {
		t.Error("promotionsRejected counter vec should not be nil")
	}
	if m.orderAmount == nil {
		t.Error("orderAmount histogram should not be nil")
	}
}

func TestRecordOrderCreated(t *testing.T) {
	m := newWorkflowMetricsWithRegisterer(prometheus.NewRegistry())

	m.RecordOrderCreated(2500)
	m.RecordOrderCreated(500)

	var metric dto.Metric
	if err := m.ordersCreated.Write(&metric); err != nil {
		t.Fatalf("write counter: %v", err)
	}
	if got := metric.GetCounter().GetValue(); got != 2 {
		t.Fatalf("expected 2 orders created, got %v", got)
	}
}

func TestRecordPaymentOutcomes(t *testing.T) {
	m := newWorkflowMetricsWithRegisterer(prometheus.NewRegistry())

	m.RecordPayment("completed")
	m.RecordPayment("completed")
	m.RecordPayment("failed")

	var metric dto.Metric
	if err := m.payments.WithLabelValues("completed").Write(&metric); err != nil {
		t.Fatalf("write counter: %v", err)
	}
	if got := metric.GetCounter().GetValue(); got != 2 {
		t.Fatalf("expected 2 completed payments, got %v", got)
	}
}

func TestDuplicateRegistrationReusesCollector(t *testing.T) {
	registry := prometheus.NewRegistry()

	first := newWorkflowMetricsWithRegisterer(registry)
	second := newWorkflowMetricsWithRegisterer(registry)

	first.RecordPromotionApplied()
	second.RecordPromotionApplied()

	var metric dto.Metric
	if err := second.promotionsApplied.Write(&metric); err != nil {
		t.Fatalf("write counter: %v", err)
	}
	if got := metric.GetCounter().GetValue(); got != 2 {
		t.Fatalf("expected shared counter value 2, got %v", got)
	}
}
