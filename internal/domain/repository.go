package domain

// FoodRepository описывает требования к хранилищу каталога.
type FoodRepository interface {
	// Create сохраняет новую позицию. Возвращает ErrDuplicateFoodName при конфликте названия.
	Create(food Food) error
	// Get возвращает позицию по идентификатору или ErrFoodNotFound.
	Get(id string) (Food, error)
	// GetByName возвращает позицию по уникальному названию или ErrFoodNotFound.
	GetByName(name string) (Food, error)
	// List возвращает позиции каталога с пагинацией skip/limit.
	List(skip, limit int) ([]Food, error)
	// ListByCategory возвращает позиции категории с пагинацией.
	ListByCategory(category string, skip, limit int) ([]Food, error)
	// Update перезаписывает позицию каталога.
	Update(food Food) error
	// Delete удаляет позицию или возвращает ErrFoodNotFound.
	Delete(id string) error
	// DecreaseStock атомарно уменьшает остаток: читает и пишет в один шаг,
	// возвращает ErrInsufficientStock, если остаток меньше qty.
	DecreaseStock(id string, qty int32) (Food, error)
	// IncreaseStock атомарно возвращает qty единиц на склад (компенсация).
	IncreaseStock(id string, qty int32) (Food, error)
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет новый заказ вместе с позициями.
	Create(order Order) error
	// Get возвращает заказ по идентификатору или ErrOrderNotFound.
	Get(id string) (Order, error)
	// List возвращает заказы с пагинацией skip/limit в порядке создания.
	List(skip, limit int) ([]Order, error)
	// ListByCustomer возвращает заказы клиента по email с пагинацией.
	ListByCustomer(email string, skip, limit int) ([]Order, error)
	// ListByStatus возвращает заказы в заданном статусе с пагинацией.
	ListByStatus(status OrderStatus, skip, limit int) ([]Order, error)
	// Save применяет обновления к заказу с учётом optimistic locking.
	Save(order Order) error
	// SetPaid выставляет флаг оплаты, минуя version check: вызывается
	// только платёжным workflow.
	SetPaid(id string, paid bool) error
	// Delete удаляет заказ или возвращает ErrOrderNotFound.
	Delete(id string) error
}

// PaymentRepository описывает требования к хранилищу платежей.
type PaymentRepository interface {
	// Create сохраняет новый платёж.
	Create(payment Payment) error
	// Get возвращает платёж по идентификатору или ErrPaymentNotFound.
	Get(id string) (Payment, error)
	// List возвращает платежи с пагинацией skip/limit.
	List(skip, limit int) ([]Payment, error)
	// ListByOrder возвращает все платежи, когда-либо созданные для заказа.
	ListByOrder(orderID string) ([]Payment, error)
	// ListByStatus возвращает платежи в заданном статусе с пагинацией.
	ListByStatus(status PaymentStatus, skip, limit int) ([]Payment, error)
	// ListByMethod возвращает платежи по способу оплаты с пагинацией.
	ListByMethod(method PaymentMethod, skip, limit int) ([]Payment, error)
	// Save применяет обновления к платежу с учётом optimistic locking.
	Save(payment Payment) error
	// Delete удаляет платёж или возвращает ErrPaymentNotFound.
	Delete(id string) error
}

// PromotionRepository описывает требования к хранилищу промокодов.
type PromotionRepository interface {
	// Create сохраняет новый промокод. Возвращает ErrDuplicateCode при конфликте.
	Create(promotion Promotion) error
	// Get возвращает промокод по идентификатору или ErrPromotionNotFound.
	Get(id string) (Promotion, error)
	// GetByCode возвращает промокод по коду без учёта регистра.
	GetByCode(code string) (Promotion, error)
	// List возвращает промокоды с пагинацией skip/limit.
	List(skip, limit int) ([]Promotion, error)
	// Save перезаписывает промокод.
	Save(promotion Promotion) error
	// Delete удаляет промокод или возвращает ErrPromotionNotFound.
	Delete(id string) error
	// IncrementUsage атомарно увеличивает usage_count на 1, не допуская
	// превышения usage_limit; возвращает ErrUsageLimitReached при исчерпании.
	IncrementUsage(id string) error
}
