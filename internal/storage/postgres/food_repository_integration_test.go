package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/foodshop/internal/domain"
)

func sampleFood(id, name string, priceMinor int64, stock int32, createdAt time.Time) domain.Food {
	return domain.Food{
		ID:          id,
		Name:        name,
		Description: "integration fixture",
		PriceMinor:  priceMinor,
		Category:    "Burgers",
		Stock:       stock,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func TestFoodRepository_PostgresCreateGetListUpdateDelete(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewFoodRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	burger := sampleFood("food-1", "Classic Hamburger", 899, 50, now.Add(-2*time.Minute))
	salad := sampleFood("food-2", "Caesar Salad", 999, 30, now.Add(-time.Minute))
	salad.Category = "Salads"

	if err := repo.Create(burger); err != nil {
		t.Fatalf("create burger: %v", err)
	}
	if err := repo.Create(salad); err != nil {
		t.Fatalf("create salad: %v", err)
	}

	got, err := repo.Get("food-1")
	if err != nil {
		t.Fatalf("get food: %v", err)
	}
	if got.Name != "Classic Hamburger" || got.PriceMinor != 899 || got.Stock != 50 {
		t.Fatalf("unexpected food payload: %+v", got)
	}

	byName, err := repo.GetByName("classic hamburger")
	if err != nil {
		t.Fatalf("get by name (case-insensitive): %v", err)
	}
	if byName.ID != "food-1" {
		t.Fatalf("unexpected food by name: %+v", byName)
	}

	dup := sampleFood("food-3", "CLASSIC HAMBURGER", 899, 1, now)
	if err := repo.Create(dup); !errors.Is(err, domain.ErrDuplicateFoodName) {
		t.Fatalf("duplicate name: err = %v, want ErrDuplicateFoodName", err)
	}

	burgersOnly, err := repo.ListByCategory("Burgers", 0, 0)
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if len(burgersOnly) != 1 || burgersOnly[0].ID != "food-1" {
		t.Fatalf("unexpected category list: %+v", burgersOnly)
	}

	page, err := repo.List(1, 1)
	if err != nil {
		t.Fatalf("list with pagination: %v", err)
	}
	if len(page) != 1 || page[0].ID != "food-2" {
		t.Fatalf("unexpected page: %+v", page)
	}

	got.PriceMinor = 949
	got.UpdatedAt = now
	if err := repo.Update(got); err != nil {
		t.Fatalf("update food: %v", err)
	}
	updated, err := repo.Get("food-1")
	if err != nil {
		t.Fatalf("get updated: %v", err)
	}
	if updated.PriceMinor != 949 {
		t.Fatalf("price not updated: %+v", updated)
	}

	if err := repo.Delete("food-2"); err != nil {
		t.Fatalf("delete food: %v", err)
	}
	if _, err := repo.Get("food-2"); !errors.Is(err, domain.ErrFoodNotFound) {
		t.Fatalf("get deleted: err = %v, want ErrFoodNotFound", err)
	}
}

func TestFoodRepository_PostgresStockOperations(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewFoodRepository(store)

	now := time.Now().UTC().Round(time.Microsecond)
	if err := repo.Create(sampleFood("food-1", "Pepperoni Pizza", 1299, 2, now)); err != nil {
		t.Fatalf("create: %v", err)
	}

	after, err := repo.DecreaseStock("food-1", 2)
	if err != nil {
		t.Fatalf("decrease stock: %v", err)
	}
	if after.Stock != 0 {
		t.Fatalf("stock after decrease: %d, want 0", after.Stock)
	}

	if _, err := repo.DecreaseStock("food-1", 1); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("decrease below zero: err = %v, want ErrInsufficientStock", err)
	}
	if _, err := repo.DecreaseStock("missing", 1); !errors.Is(err, domain.ErrFoodNotFound) {
		t.Fatalf("decrease missing food: err = %v, want ErrFoodNotFound", err)
	}

	restored, err := repo.IncreaseStock("food-1", 5)
	if err != nil {
		t.Fatalf("increase stock: %v", err)
	}
	if restored.Stock != 5 {
		t.Fatalf("stock after increase: %d, want 5", restored.Stock)
	}
}
