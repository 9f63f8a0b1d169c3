package order

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/foodshop/internal/domain"
	"github.com/vladislavdragonenkov/foodshop/internal/storage/memory"
)

type fixture struct {
	svc    *Service
	orders domain.OrderRepository
	foods  domain.FoodRepository
	outbox domain.OutboxRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		orders: memory.NewOrderRepository(),
		foods:  memory.NewFoodRepository(),
		outbox: memory.NewOutboxRepository(),
	}
	f.svc = NewServiceWithoutMetrics(f.orders, f.foods, f.outbox, nil)
	return f
}

func (f *fixture) addFood(t *testing.T, id, name string, priceMinor int64, stock int32) {
	t.Helper()
	now := time.Now().UTC()
	err := f.foods.Create(domain.Food{
		ID:         id,
		Name:       name,
		PriceMinor: priceMinor,
		Category:   "Burgers",
		Stock:      stock,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("seed food %s: %v", name, err)
	}
}

func (f *fixture) stockOf(t *testing.T, foodID string) int32 {
	t.Helper()
	food, err := f.foods.Get(foodID)
	if err != nil {
		t.Fatalf("get food %s: %v", foodID, err)
	}
	return food.Stock
}

func TestCreateCapturesPricesAndReservesStock(t *testing.T) {
	f := newFixture(t)
	f.addFood(t, "food-1", "Classic Hamburger", 899, 10)
	f.addFood(t, "food-2", "Caesar Salad", 999, 5)

	order, err := f.svc.Create(CreateInput{
		CustomerName:  "Alice",
		CustomerEmail: "alice@example.com",
		Items: []ItemInput{
			{FoodID: "food-1", Qty: 2},
			{FoodID: "food-2", Qty: 1},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if order.Status != domain.OrderStatusPending {
		t.Errorf("status = %s, want pending", order.Status)
	}
	if order.AmountMinor != 2*899+999 {
		t.Errorf("amount = %d, want %d", order.AmountMinor, 2*899+999)
	}
	if len(order.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(order.Items))
	}
	if order.Items[0].FoodName != "Classic Hamburger" || order.Items[0].SubtotalMinor != 1798 {
		t.Errorf("item snapshot wrong: %+v", order.Items[0])
	}

	if got := f.stockOf(t, "food-1"); got != 8 {
		t.Errorf("food-1 stock = %d, want 8", got)
	}
	if got := f.stockOf(t, "food-2"); got != 4 {
		t.Errorf("food-2 stock = %d, want 4", got)
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	f.addFood(t, "food-1", "Classic Hamburger", 899, 10)

	tests := []struct {
		name  string
		input CreateInput
		want  error
	}{
		{"missing name", CreateInput{CustomerEmail: "a@b.c", Items: []ItemInput{{FoodID: "food-1", Qty: 1}}}, domain.ErrCustomerNameRequired},
		{"missing email", CreateInput{CustomerName: "A", Items: []ItemInput{{FoodID: "food-1", Qty: 1}}}, domain.ErrCustomerEmailRequired},
		{"no items", CreateInput{CustomerName: "A", CustomerEmail: "a@b.c"}, domain.ErrItemsRequired},
		{"zero qty", CreateInput{CustomerName: "A", CustomerEmail: "a@b.c", Items: []ItemInput{{FoodID: "food-1", Qty: 0}}}, domain.ErrItemQtyInvalid},
		{"unknown food", CreateInput{CustomerName: "A", CustomerEmail: "a@b.c", Items: []ItemInput{{FoodID: "ghost", Qty: 1}}}, domain.ErrFoodNotFound},
		{"insufficient stock", CreateInput{CustomerName: "A", CustomerEmail: "a@b.c", Items: []ItemInput{{FoodID: "food-1", Qty: 11}}}, domain.ErrInsufficientStock},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(tc.input)
			if !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}

	// Отклонённые заказы не трогают сток.
	if got := f.stockOf(t, "food-1"); got != 10 {
		t.Errorf("stock after rejections = %d, want 10", got)
	}
}

// racingFoodRepository имитирует конкурирующий заказ: указанная позиция
// проходит валидацию, но её сток исчезает к моменту резервирования.
type racingFoodRepository struct {
	domain.FoodRepository
	drainID string
	once    sync.Once
}

func (r *racingFoodRepository) DecreaseStock(foodID string, qty int32) (domain.Food, error) {
	if foodID == r.drainID {
		r.once.Do(func() {
			_, _ = r.FoodRepository.DecreaseStock(foodID, qty)
		})
	}
	return r.FoodRepository.DecreaseStock(foodID, qty)
}

func TestCreateRollsBackPartialReservation(t *testing.T) {
	f := newFixture(t)
	f.addFood(t, "food-1", "Classic Hamburger", 899, 10)
	f.addFood(t, "food-2", "Caesar Salad", 999, 1)

	racing := &racingFoodRepository{FoodRepository: f.foods, drainID: "food-2"}
	f.svc = NewServiceWithoutMetrics(f.orders, racing, f.outbox, nil)

	_, err := f.svc.Create(CreateInput{
		CustomerName:  "Bob",
		CustomerEmail: "bob@example.com",
		Items: []ItemInput{
			{FoodID: "food-1", Qty: 3},
			{FoodID: "food-2", Qty: 1},
		},
	})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("err = %v, want insufficient stock", err)
	}

	// Частичный дебет откатился, заказ не сохранился.
	if got := f.stockOf(t, "food-1"); got != 10 {
		t.Errorf("food-1 stock = %d, want 10 after rollback", got)
	}
	orders, err := f.orders.List(0, 0)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) != 0 {
		t.Errorf("orders persisted = %d, want 0", len(orders))
	}
}

func TestConcurrentOrdersLastUnit(t *testing.T) {
	f := newFixture(t)
	f.addFood(t, "food-1", "Classic Hamburger", 899, 1)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = f.svc.Create(CreateInput{
				CustomerName:  "Racer",
				CustomerEmail: "racer@example.com",
				Items:         []ItemInput{{FoodID: "food-1", Qty: 1}},
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, domain.ErrInsufficientStock) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("succeeded = %d, want exactly 1", succeeded)
	}
	if got := f.stockOf(t, "food-1"); got != 0 {
		t.Errorf("stock = %d, want 0", got)
	}
}

func TestStatusTransitions(t *testing.T) {
	f := newFixture(t)
	f.addFood(t, "food-1", "Classic Hamburger", 899, 10)

	order, err := f.svc.Create(CreateInput{
		CustomerName:  "Alice",
		CustomerEmail: "alice@example.com",
		Items:         []ItemInput{{FoodID: "food-1", Qty: 1}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// delivered из pending запрещён.
	if _, err := f.svc.MarkDelivered(order.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("deliver from pending: err = %v, want invalid transition", err)
	}

	confirmed, err := f.svc.Confirm(order.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != domain.OrderStatusConfirmed {
		t.Errorf("status = %s, want confirmed", confirmed.Status)
	}

	// Повторный confirm запрещён.
	if _, err := f.svc.Confirm(order.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("double confirm: err = %v, want invalid transition", err)
	}

	delivered, err := f.svc.MarkDelivered(order.ID)
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if delivered.Status != domain.OrderStatusDelivered {
		t.Errorf("status = %s, want delivered", delivered.Status)
	}

	// delivered терминален.
	if _, err := f.svc.Confirm(order.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("confirm delivered: err = %v, want invalid transition", err)
	}
}

func TestDeleteReleasesStock(t *testing.T) {
	f := newFixture(t)
	f.addFood(t, "food-1", "Classic Hamburger", 899, 10)

	order, err := f.svc.Create(CreateInput{
		CustomerName:  "Alice",
		CustomerEmail: "alice@example.com",
		Items:         []ItemInput{{FoodID: "food-1", Qty: 4}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := f.stockOf(t, "food-1"); got != 6 {
		t.Fatalf("stock after create = %d, want 6", got)
	}

	if err := f.svc.Delete(order.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := f.stockOf(t, "food-1"); got != 10 {
		t.Errorf("stock after delete = %d, want 10", got)
	}
	if _, err := f.svc.Get(order.ID); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("get deleted order: err = %v, want not found", err)
	}
}

func TestDeleteRejectedForConfirmed(t *testing.T) {
	f := newFixture(t)
	f.addFood(t, "food-1", "Classic Hamburger", 899, 10)

	order, err := f.svc.Create(CreateInput{
		CustomerName:  "Alice",
		CustomerEmail: "alice@example.com",
		Items:         []ItemInput{{FoodID: "food-1", Qty: 1}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.Confirm(order.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if err := f.svc.Delete(order.ID); !errors.Is(err, domain.ErrOrderNotDeletable) {
		t.Fatalf("delete confirmed: err = %v, want not deletable", err)
	}
	if got := f.stockOf(t, "food-1"); got != 9 {
		t.Errorf("stock = %d, want 9 (unchanged)", got)
	}
}

func TestCreateEmitsOutboxEvent(t *testing.T) {
	f := newFixture(t)
	f.addFood(t, "food-1", "Classic Hamburger", 899, 10)

	order, err := f.svc.Create(CreateInput{
		CustomerName:  "Alice",
		CustomerEmail: "alice@example.com",
		Items:         []ItemInput{{FoodID: "food-1", Qty: 1}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	pending, err := f.outbox.PullPending(10)
	if err != nil {
		t.Fatalf("pull pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending events = %d, want 1", len(pending))
	}
	if pending[0].EventType != domain.EventOrderCreated || pending[0].AggregateID != order.ID {
		t.Errorf("unexpected event: %+v", pending[0])
	}
}
