package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/foodshop/internal/domain"
)

// foodRepositoryInMemory — простая in-memory реализация FoodRepository.
type foodRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Food
}

// NewFoodRepository возвращает in-memory каталог для локальной разработки и тестов.
func NewFoodRepository() domain.FoodRepository {
	return &foodRepositoryInMemory{
		items: make(map[string]domain.Food),
	}
}

// Create сохраняет новую позицию, проверяя уникальность названия.
func (r *foodRepositoryInMemory) Create(food domain.Food) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if strings.EqualFold(existing.Name, food.Name) {
			return domain.ErrDuplicateFoodName
		}
	}
	r.items[food.ID] = food
	return nil
}

// Get возвращает позицию или ErrFoodNotFound, если её нет.
func (r *foodRepositoryInMemory) Get(id string) (domain.Food, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	food, ok := r.items[id]
	if !ok {
		return domain.Food{}, domain.ErrFoodNotFound
	}
	return food, nil
}

// GetByName возвращает позицию по названию без учёта регистра.
func (r *foodRepositoryInMemory) GetByName(name string) (domain.Food, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, food := range r.items {
		if strings.EqualFold(food.Name, name) {
			return food, nil
		}
	}
	return domain.Food{}, domain.ErrFoodNotFound
}

// List возвращает позиции каталога в порядке создания с пагинацией.
func (r *foodRepositoryInMemory) List(skip, limit int) ([]domain.Food, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginateFoods(r.collect(func(domain.Food) bool { return true }), skip, limit), nil
}

// ListByCategory возвращает позиции категории с пагинацией.
func (r *foodRepositoryInMemory) ListByCategory(category string, skip, limit int) ([]domain.Food, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginateFoods(r.collect(func(f domain.Food) bool { return f.Category == category }), skip, limit), nil
}

// Update перезаписывает позицию каталога.
func (r *foodRepositoryInMemory) Update(food domain.Food) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[food.ID]; !ok {
		return domain.ErrFoodNotFound
	}
	for id, existing := range r.items {
		if id != food.ID && strings.EqualFold(existing.Name, food.Name) {
			return domain.ErrDuplicateFoodName
		}
	}
	food.UpdatedAt = time.Now().UTC()
	r.items[food.ID] = food
	return nil
}

// Delete удаляет позицию каталога.
func (r *foodRepositoryInMemory) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return domain.ErrFoodNotFound
	}
	delete(r.items, id)
	return nil
}

// DecreaseStock атомарно уменьшает остаток. Проверка и запись выполняются
// под одним lock, поэтому два конкурентных заказа не продадут последний
// экземпляр дважды.
func (r *foodRepositoryInMemory) DecreaseStock(id string, qty int32) (domain.Food, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	food, ok := r.items[id]
	if !ok {
		return domain.Food{}, domain.ErrFoodNotFound
	}
	if food.Stock < qty {
		return domain.Food{}, domain.ErrInsufficientStock
	}
	food.Stock -= qty
	food.UpdatedAt = time.Now().UTC()
	r.items[id] = food
	return food, nil
}

// IncreaseStock атомарно возвращает qty единиц на склад.
func (r *foodRepositoryInMemory) IncreaseStock(id string, qty int32) (domain.Food, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	food, ok := r.items[id]
	if !ok {
		return domain.Food{}, domain.ErrFoodNotFound
	}
	food.Stock += qty
	food.UpdatedAt = time.Now().UTC()
	r.items[id] = food
	return food, nil
}

func (r *foodRepositoryInMemory) collect(match func(domain.Food) bool) []domain.Food {
	result := make([]domain.Food, 0, len(r.items))
	for _, food := range r.items {
		if match(food) {
			result = append(result, food)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

func paginateFoods(foods []domain.Food, skip, limit int) []domain.Food {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(foods) {
		return []domain.Food{}
	}
	foods = foods[skip:]
	if limit > 0 && len(foods) > limit {
		foods = foods[:limit]
	}
	return foods
}

var _ domain.FoodRepository = (*foodRepositoryInMemory)(nil)
