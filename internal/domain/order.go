package domain

import "time"

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, сток зарезервирован, оплата не подтверждена.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusConfirmed — заказ подтверждён и передан на исполнение.
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusDelivered — заказ доставлен клиенту.
	OrderStatusDelivered OrderStatus = "delivered"
)

// OrderItem представляет одну позицию заказа. Цена фиксируется в момент
// создания заказа и не пересчитывается при правках каталога.
type OrderItem struct {
	ID       string
	FoodID   string
	FoodName string
	Qty      int32
	// PriceMinor — цена за единицу на момент заказа, в минимальных единицах.
	PriceMinor int64
	// SubtotalMinor = Qty * PriceMinor, зафиксировано при создании.
	SubtotalMinor int64
	CreatedAt     time.Time
}

// Order агрегирует состояние заказа и его позиции.
type Order struct {
	ID            string
	CustomerName  string
	CustomerEmail string
	Status        OrderStatus
	// AmountMinor — сумма subtotal всех позиций, зафиксированная при создании.
	AmountMinor int64
	// Paid истинно, когда у заказа есть завершённый платёж без последующего возврата.
	Paid      bool
	Items     []OrderItem
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerName == "" {
		errs = append(errs, ErrCustomerNameRequired)
	}
	if o.CustomerEmail == "" {
		errs = append(errs, ErrCustomerEmailRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}

	// Сверяем сумму заказа с суммой позиций: qty * price.
	var calc int64
	for _, item := range o.Items {
		if item.Qty <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		calc += item.SubtotalMinor
	}
	if calc != o.AmountMinor {
		errs = append(errs, ErrAmountInconsistent)
	}

	return errs
}

// CanTransition проверяет допустимость перехода статуса. Статусы двигаются
// только вперёд: pending → confirmed → delivered.
func (o *Order) CanTransition(next OrderStatus) bool {
	switch next {
	case OrderStatusConfirmed:
		return o.Status == OrderStatusPending
	case OrderStatusDelivered:
		return o.Status == OrderStatusConfirmed
	default:
		return false
	}
}
