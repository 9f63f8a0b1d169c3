package catalog

import (
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/foodshop/internal/domain"
	"github.com/vladislavdragonenkov/foodshop/internal/storage/memory"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(memory.NewFoodRepository(), nil)
}

func TestCreateFood(t *testing.T) {
	svc := newTestService(t)

	food, err := svc.CreateFood(CreateFoodInput{
		Name:        "Classic Hamburger",
		Description: "Beef patty with lettuce and tomato",
		PriceMinor:  899,
		Category:    "Burgers",
		Stock:       50,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if food.ID == "" {
		t.Error("id not assigned")
	}

	stored, err := svc.GetFoodByName("Classic Hamburger")
	if err != nil {
		t.Fatalf("get by name: %v", err)
	}
	if stored.PriceMinor != 899 || stored.Stock != 50 {
		t.Errorf("stored food = %+v", stored)
	}
}

func TestCreateFoodValidation(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name  string
		input CreateFoodInput
		want  error
	}{
		{"empty name", CreateFoodInput{PriceMinor: 100, Stock: 1}, domain.ErrFoodNameRequired},
		{"zero price", CreateFoodInput{Name: "Free Lunch", PriceMinor: 0, Stock: 1}, domain.ErrFoodPriceInvalid},
		{"negative stock", CreateFoodInput{Name: "Ghost Dish", PriceMinor: 100, Stock: -1}, domain.ErrFoodStockNegative},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.CreateFood(tc.input); !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestCreateFoodDuplicateName(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.CreateFood(CreateFoodInput{Name: "Caesar Salad", PriceMinor: 999, Category: "Salads", Stock: 5}); err != nil {
		t.Fatalf("create: %v", err)
	}
	// Сравнение названий не зависит от регистра.
	if _, err := svc.CreateFood(CreateFoodInput{Name: "caesar salad", PriceMinor: 999, Category: "Salads", Stock: 5}); !errors.Is(err, domain.ErrDuplicateFoodName) {
		t.Fatalf("duplicate: err = %v, want duplicate name", err)
	}
}

func TestUpdateFoodPartial(t *testing.T) {
	svc := newTestService(t)

	food, err := svc.CreateFood(CreateFoodInput{Name: "Pepperoni Pizza", PriceMinor: 1299, Category: "Pizza", Stock: 20})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	price := int64(1399)
	updated, err := svc.UpdateFood(food.ID, UpdateFoodInput{PriceMinor: &price})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.PriceMinor != 1399 {
		t.Errorf("price = %d, want 1399", updated.PriceMinor)
	}
	if updated.Name != "Pepperoni Pizza" || updated.Stock != 20 {
		t.Errorf("untouched fields changed: %+v", updated)
	}
}

func TestListFoodsByCategory(t *testing.T) {
	svc := newTestService(t)

	seed := []CreateFoodInput{
		{Name: "Pepperoni Pizza", PriceMinor: 1299, Category: "Pizza", Stock: 20},
		{Name: "Margherita Pizza", PriceMinor: 1199, Category: "Pizza", Stock: 20},
		{Name: "Caesar Salad", PriceMinor: 999, Category: "Salads", Stock: 5},
	}
	for _, input := range seed {
		if _, err := svc.CreateFood(input); err != nil {
			t.Fatalf("seed %s: %v", input.Name, err)
		}
	}

	pizzas, err := svc.ListFoods("Pizza", 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pizzas) != 2 {
		t.Errorf("pizzas = %d, want 2", len(pizzas))
	}

	all, err := svc.ListFoods("", 0, 0)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all = %d, want 3", len(all))
	}
}

func TestReserveAndRelease(t *testing.T) {
	svc := newTestService(t)

	food, err := svc.CreateFood(CreateFoodInput{Name: "Vegetarian Wrap", PriceMinor: 799, Category: "Wraps", Stock: 3})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	after, err := svc.Reserve(food.ID, 2)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if after.Stock != 1 {
		t.Errorf("stock = %d, want 1", after.Stock)
	}

	if _, err := svc.Reserve(food.ID, 2); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("over-reserve: err = %v, want insufficient stock", err)
	}

	released, err := svc.Release(food.ID, 2)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if released.Stock != 3 {
		t.Errorf("stock = %d, want 3", released.Stock)
	}

	if _, err := svc.Reserve(food.ID, 0); !errors.Is(err, domain.ErrItemQtyInvalid) {
		t.Fatalf("zero qty: err = %v, want qty invalid", err)
	}
}

func TestDeleteFood(t *testing.T) {
	svc := newTestService(t)

	food, err := svc.CreateFood(CreateFoodInput{Name: "Grilled Chicken Burger", PriceMinor: 1099, Category: "Burgers", Stock: 10})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.DeleteFood(food.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetFood(food.ID); !errors.Is(err, domain.ErrFoodNotFound) {
		t.Fatalf("get deleted: err = %v, want not found", err)
	}
}
