package domain

import "errors"

var (
	// Ошибка отсутствующего имени клиента.
	ErrCustomerNameRequired = errors.New("customer_name is required")
	// Ошибка отсутствующего email клиента.
	ErrCustomerEmailRequired = errors.New("customer_email is required")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка количества позиции (<= 0).
	ErrItemQtyInvalid = errors.New("item quantity must be greater than zero")
	// Ошибка несоответствия суммы заказа и сумм позиций.
	ErrAmountInconsistent = errors.New("order amount does not match items sum")

	// Ошибка отсутствующего названия блюда.
	ErrFoodNameRequired = errors.New("food name is required")
	// Ошибка цены блюда (<= 0).
	ErrFoodPriceInvalid = errors.New("food price must be greater than zero")
	// Ошибка отрицательного остатка.
	ErrFoodStockNegative = errors.New("food stock must be non-negative")

	// ErrFoodNotFound возвращается, если блюдо не найдено в каталоге.
	ErrFoodNotFound = errors.New("food not found")
	// ErrDuplicateFoodName — блюдо с таким названием уже существует.
	ErrDuplicateFoodName = errors.New("food name already exists")
	// ErrInsufficientStock — запрошенное количество превышает остаток на складе.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderNotDeletable — заказ уже оплачен или продвинулся по статусам.
	ErrOrderNotDeletable = errors.New("only unpaid pending orders can be deleted")

	// ErrPaymentNotFound возвращается, если платёж не найден.
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrInvalidPaymentMethod — способ оплаты вне допустимого набора.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	// ErrAmountMismatch — сумма платежа не равна сумме заказа.
	ErrAmountMismatch = errors.New("payment amount does not match order total")
	// ErrOrderAlreadyPaid — у заказа уже есть завершённый платёж.
	ErrOrderAlreadyPaid = errors.New("order already has a completed payment")
	// ErrDuplicateTransactionID — внешний transaction id уже закреплён за другим платежом.
	ErrDuplicateTransactionID = errors.New("transaction id already used by another payment")

	// ErrInvalidTransition — запрошенный переход статуса запрещён state machine.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrPromotionNotFound возвращается, если промокод не найден.
	ErrPromotionNotFound = errors.New("promotion not found")
	// ErrDuplicateCode — промокод уже зарегистрирован.
	ErrDuplicateCode = errors.New("promotion code already exists")
	// ErrUsageLimitReached — лимит использований промокода исчерпан.
	ErrUsageLimitReached = errors.New("promotion usage limit reached")
	// Ошибка отсутствующего промокода при создании.
	ErrPromotionCodeRequired = errors.New("promotion code is required")
	// Ошибка неизвестного типа скидки.
	ErrDiscountTypeInvalid = errors.New("discount type must be percentage or fixed")
	// Ошибка значения скидки (<= 0).
	ErrDiscountValueInvalid = errors.New("discount value must be greater than zero")

	// ErrVersionConflict сигнализирует о конфликте optimistic locking при сохранении.
	ErrVersionConflict = errors.New("version conflict")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// IsVersionConflict проверяет, является ли ошибка конфликтом версий.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}
