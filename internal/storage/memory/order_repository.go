package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/foodshop/internal/domain"
)

// orderRepositoryInMemory — простая in-memory реализация OrderRepository.
type orderRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Order
}

// NewOrderRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewOrderRepository() domain.OrderRepository {
	return &orderRepositoryInMemory{
		items: make(map[string]domain.Order),
	}
}

// Create сохраняет новый заказ, если ID ещё не занят.
func (r *orderRepositoryInMemory) Create(order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[order.ID]; exists {
		return domain.ErrVersionConflict
	}
	// Сохраняем копию позиций, чтобы избежать мутаций извне.
	order.Items = append([]domain.OrderItem(nil), order.Items...)
	r.items[order.ID] = order
	return nil
}

// Get возвращает заказ или ErrOrderNotFound, если его нет.
func (r *orderRepositoryInMemory) Get(id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	order.Items = append([]domain.OrderItem(nil), order.Items...)
	return order, nil
}

// List возвращает заказы в порядке создания с пагинацией skip/limit.
func (r *orderRepositoryInMemory) List(skip, limit int) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginateOrders(r.collect(func(domain.Order) bool { return true }), skip, limit), nil
}

// ListByCustomer возвращает заказы клиента по email с пагинацией.
func (r *orderRepositoryInMemory) ListByCustomer(email string, skip, limit int) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginateOrders(r.collect(func(o domain.Order) bool { return o.CustomerEmail == email }), skip, limit), nil
}

// ListByStatus возвращает заказы в заданном статусе с пагинацией.
func (r *orderRepositoryInMemory) ListByStatus(status domain.OrderStatus, skip, limit int) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginateOrders(r.collect(func(o domain.Order) bool { return o.Status == status }), skip, limit), nil
}

// Save перезаписывает заказ, проверяя версию (optimistic locking).
func (r *orderRepositoryInMemory) Save(order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[order.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if current.Version != order.Version {
		return domain.ErrVersionConflict
	}
	// Инкрементируем версию перед сохранением.
	order.Version++
	order.Items = append([]domain.OrderItem(nil), order.Items...)
	r.items[order.ID] = order
	return nil
}

// SetPaid выставляет флаг оплаты без version check: единственная точка
// записи — платёжный workflow.
func (r *orderRepositoryInMemory) SetPaid(id string, paid bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.items[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.Paid = paid
	order.UpdatedAt = time.Now().UTC()
	r.items[id] = order
	return nil
}

// Delete удаляет заказ.
func (r *orderRepositoryInMemory) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *orderRepositoryInMemory) collect(match func(domain.Order) bool) []domain.Order {
	result := make([]domain.Order, 0, len(r.items))
	for _, order := range r.items {
		if match(order) {
			order.Items = append([]domain.OrderItem(nil), order.Items...)
			result = append(result, order)
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

func paginateOrders(orders []domain.Order, skip, limit int) []domain.Order {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(orders) {
		return []domain.Order{}
	}
	orders = orders[skip:]
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
