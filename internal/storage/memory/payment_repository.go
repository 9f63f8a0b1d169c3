package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/foodshop/internal/domain"
)

// paymentRepositoryInMemory — простая in-memory реализация PaymentRepository.
type paymentRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Payment
}

// NewPaymentRepository возвращает in-memory репозиторий платежей.
func NewPaymentRepository() domain.PaymentRepository {
	return &paymentRepositoryInMemory{
		items: make(map[string]domain.Payment),
	}
}

// Create сохраняет новый платёж, если ID ещё не занят.
func (r *paymentRepositoryInMemory) Create(payment domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[payment.ID]; exists {
		return domain.ErrVersionConflict
	}
	if r.transactionIDTaken(payment.TransactionID, payment.ID) {
		return domain.ErrDuplicateTransactionID
	}
	r.items[payment.ID] = payment
	return nil
}

// transactionIDTaken проверяет, закреплён ли непустой transaction id за
// другим платежом. Вызывается под мьютексом.
func (r *paymentRepositoryInMemory) transactionIDTaken(transactionID, exceptID string) bool {
	if transactionID == "" {
		return false
	}
	for _, payment := range r.items {
		if payment.ID != exceptID && payment.TransactionID == transactionID {
			return true
		}
	}
	return false
}

// Get возвращает платёж или ErrPaymentNotFound, если его нет.
func (r *paymentRepositoryInMemory) Get(id string) (domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	payment, ok := r.items[id]
	if !ok {
		return domain.Payment{}, domain.ErrPaymentNotFound
	}
	return payment, nil
}

// List возвращает платежи в порядке создания с пагинацией skip/limit.
func (r *paymentRepositoryInMemory) List(skip, limit int) ([]domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginatePayments(r.collect(func(domain.Payment) bool { return true }), skip, limit), nil
}

// ListByOrder возвращает все платежи заказа: заказ может накопить
// несколько попыток оплаты.
func (r *paymentRepositoryInMemory) ListByOrder(orderID string) ([]domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(p domain.Payment) bool { return p.OrderID == orderID }), nil
}

// ListByStatus возвращает платежи в заданном статусе с пагинацией.
func (r *paymentRepositoryInMemory) ListByStatus(status domain.PaymentStatus, skip, limit int) ([]domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginatePayments(r.collect(func(p domain.Payment) bool { return p.Status == status }), skip, limit), nil
}

// ListByMethod возвращает платежи по способу оплаты с пагинацией.
func (r *paymentRepositoryInMemory) ListByMethod(method domain.PaymentMethod, skip, limit int) ([]domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginatePayments(r.collect(func(p domain.Payment) bool { return p.Method == method }), skip, limit), nil
}

// Save перезаписывает платёж, проверяя версию (optimistic locking).
func (r *paymentRepositoryInMemory) Save(payment domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[payment.ID]
	if !ok {
		return domain.ErrPaymentNotFound
	}
	if current.Version != payment.Version {
		return domain.ErrVersionConflict
	}
	if r.transactionIDTaken(payment.TransactionID, payment.ID) {
		return domain.ErrDuplicateTransactionID
	}
	payment.Version++
	r.items[payment.ID] = payment
	return nil
}

// Delete удаляет платёж.
func (r *paymentRepositoryInMemory) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return domain.ErrPaymentNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *paymentRepositoryInMemory) collect(match func(domain.Payment) bool) []domain.Payment {
	result := make([]domain.Payment, 0, len(r.items))
	for _, payment := range r.items {
		if match(payment) {
			result = append(result, payment)
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

func paginatePayments(payments []domain.Payment, skip, limit int) []domain.Payment {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(payments) {
		return []domain.Payment{}
	}
	payments = payments[skip:]
	if limit > 0 && len(payments) > limit {
		payments = payments[:limit]
	}
	return payments
}

var _ domain.PaymentRepository = (*paymentRepositoryInMemory)(nil)
