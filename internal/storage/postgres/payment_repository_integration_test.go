package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/foodshop/internal/domain"
)

func samplePayment(id, orderID, reference string, createdAt time.Time) domain.Payment {
	return domain.Payment{
		ID:              id,
		OrderID:         orderID,
		Method:          domain.PaymentMethodCreditCard,
		AmountMinor:     1798,
		Status:          domain.PaymentStatusPending,
		ReferenceNumber: reference,
		CardLastFour:    "4242",
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
}

func TestPaymentRepository_PostgresRoundTrip(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	orders := NewOrderRepository(store)
	repo := NewPaymentRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	if err := orders.Create(sampleOrder("order-1", "payer@example.com", now)); err != nil {
		t.Fatalf("create order: %v", err)
	}

	p1 := samplePayment("pay-1", "order-1", "PAY-AAAA11112222", now.Add(-time.Minute))
	p2 := samplePayment("pay-2", "order-1", "PAY-BBBB33334444", now)
	p2.Method = domain.PaymentMethodCash

	if err := repo.Create(p1); err != nil {
		t.Fatalf("create p1: %v", err)
	}
	if err := repo.Create(p2); err != nil {
		t.Fatalf("create p2: %v", err)
	}

	got, err := repo.Get("pay-1")
	if err != nil {
		t.Fatalf("get payment: %v", err)
	}
	if got.ReferenceNumber != "PAY-AAAA11112222" || got.CardLastFour != "4242" {
		t.Fatalf("unexpected payment payload: %+v", got)
	}

	byOrder, err := repo.ListByOrder("order-1")
	if err != nil {
		t.Fatalf("list by order: %v", err)
	}
	if len(byOrder) != 2 || byOrder[0].ID != "pay-1" {
		t.Fatalf("unexpected list by order: %+v", byOrder)
	}

	cash, err := repo.ListByMethod(domain.PaymentMethodCash, 0, 0)
	if err != nil {
		t.Fatalf("list by method: %v", err)
	}
	if len(cash) != 1 || cash[0].ID != "pay-2" {
		t.Fatalf("unexpected list by method: %+v", cash)
	}

	got.Status = domain.PaymentStatusCompleted
	got.TransactionID = "txn-1"
	got.UpdatedAt = now
	if err := repo.Save(got); err != nil {
		t.Fatalf("save payment: %v", err)
	}

	stale := got
	if err := repo.Save(stale); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("stale save: err = %v, want ErrVersionConflict", err)
	}

	completed, err := repo.ListByStatus(domain.PaymentStatusCompleted, 0, 0)
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if len(completed) != 1 || completed[0].TransactionID != "txn-1" {
		t.Fatalf("unexpected completed list: %+v", completed)
	}

	if err := repo.Delete("pay-2"); err != nil {
		t.Fatalf("delete payment: %v", err)
	}
	if _, err := repo.Get("pay-2"); !errors.Is(err, domain.ErrPaymentNotFound) {
		t.Fatalf("get deleted payment: err = %v, want ErrPaymentNotFound", err)
	}
}
