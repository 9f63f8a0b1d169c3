package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/foodshop/internal/domain"
)

func sampleOrder(id, email string, createdAt time.Time) domain.Order {
	return domain.Order{
		ID:            id,
		CustomerName:  "Integration Customer",
		CustomerEmail: email,
		Status:        domain.OrderStatusPending,
		AmountMinor:   1798,
		Items: []domain.OrderItem{
			{
				ID:            id + "-item-1",
				FoodID:        "food-1",
				FoodName:      "Classic Hamburger",
				Qty:           2,
				PriceMinor:    899,
				SubtotalMinor: 1798,
				CreatedAt:     createdAt,
			},
		},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestOrderRepository_PostgresCreateGetListAndSave(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	order1 := sampleOrder("order-1", "customer@example.com", now.Add(-2*time.Minute))
	order2 := sampleOrder("order-2", "customer@example.com", now.Add(-time.Minute))

	if err := repo.Create(order1); err != nil {
		t.Fatalf("create order1: %v", err)
	}
	if err := repo.Create(order2); err != nil {
		t.Fatalf("create order2: %v", err)
	}

	got, err := repo.Get(order1.ID)
	if err != nil {
		t.Fatalf("get order1: %v", err)
	}
	if got.CustomerEmail != order1.CustomerEmail || got.Status != order1.Status || got.AmountMinor != 1798 {
		t.Fatalf("unexpected order payload: %+v", got)
	}
	if len(got.Items) != 1 || got.Items[0].FoodName != "Classic Hamburger" {
		t.Fatalf("unexpected items: %+v", got.Items)
	}

	listed, err := repo.ListByCustomer("customer@example.com", 1, 1)
	if err != nil {
		t.Fatalf("list by customer with pagination: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != order2.ID {
		t.Fatalf("unexpected paginated list: %+v", listed)
	}

	pending, err := repo.ListByStatus(domain.OrderStatusPending, 0, 0)
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending orders, got %d", len(pending))
	}

	got.Status = domain.OrderStatusConfirmed
	got.UpdatedAt = now
	if err := repo.Save(got); err != nil {
		t.Fatalf("save order: %v", err)
	}

	// Повторный Save с устаревшей version должен отклоняться.
	stale := got
	if err := repo.Save(stale); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("stale save: err = %v, want ErrVersionConflict", err)
	}

	fresh, err := repo.Get(got.ID)
	if err != nil {
		t.Fatalf("get after save: %v", err)
	}
	if fresh.Status != domain.OrderStatusConfirmed || fresh.Version != got.Version+1 {
		t.Fatalf("unexpected saved order: %+v", fresh)
	}
}

func TestOrderRepository_PostgresSetPaidAndDelete(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	order := sampleOrder("order-1", "payer@example.com", now)
	if err := repo.Create(order); err != nil {
		t.Fatalf("create order: %v", err)
	}

	if err := repo.SetPaid(order.ID, true); err != nil {
		t.Fatalf("set paid: %v", err)
	}
	paid, err := repo.Get(order.ID)
	if err != nil {
		t.Fatalf("get after set paid: %v", err)
	}
	if !paid.Paid {
		t.Fatal("order not flagged paid")
	}

	if err := repo.SetPaid("missing", true); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("set paid for missing order: err = %v, want ErrOrderNotFound", err)
	}

	if err := repo.Delete(order.ID); err != nil {
		t.Fatalf("delete order: %v", err)
	}
	if _, err := repo.Get(order.ID); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("get deleted order: err = %v, want ErrOrderNotFound", err)
	}
}
