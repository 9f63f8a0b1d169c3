package domain

import "time"

// PaymentStatus описывает состояние платежа.
type PaymentStatus string

const (
	// PaymentStatusPending — платёж создан, но не подтверждён.
	PaymentStatusPending PaymentStatus = "pending"
	// PaymentStatusProcessing — платёж в обработке у провайдера.
	PaymentStatusProcessing PaymentStatus = "processing"
	// PaymentStatusCompleted — платёж подтверждён, заказ оплачен.
	PaymentStatusCompleted PaymentStatus = "completed"
	// PaymentStatusFailed — платёж отклонён или завершился ошибкой.
	PaymentStatusFailed PaymentStatus = "failed"
	// PaymentStatusRefunded — средства возвращены клиенту.
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// PaymentMethod описывает способ оплаты.
type PaymentMethod string

const (
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodDebitCard    PaymentMethod = "debit_card"
	PaymentMethodPayPal       PaymentMethod = "paypal"
	PaymentMethodApplePay     PaymentMethod = "apple_pay"
	PaymentMethodGooglePay    PaymentMethod = "google_pay"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCash         PaymentMethod = "cash"
)

// ValidPaymentMethod проверяет, входит ли способ оплаты в допустимый набор.
func ValidPaymentMethod(method PaymentMethod) bool {
	switch method {
	case PaymentMethodCreditCard, PaymentMethodDebitCard, PaymentMethodPayPal,
		PaymentMethodApplePay, PaymentMethodGooglePay, PaymentMethodBankTransfer,
		PaymentMethodCash:
		return true
	default:
		return false
	}
}

// Payment описывает платёж, связанный с заказом. Сумма неизменяема после
// создания и равна сумме заказа на момент создания платежа.
type Payment struct {
	ID      string
	OrderID string
	Method  PaymentMethod
	// AmountMinor — сумма платежа в минимальных денежных единицах.
	AmountMinor int64
	Status      PaymentStatus
	// TransactionID присваивается внешним провайдером при подтверждении.
	TransactionID string
	// ReferenceNumber — системный номер для связи с клиентом, уникален.
	ReferenceNumber string
	CardLastFour    string
	Notes           string
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Validate проверяет корректность полей платежа и возвращает ошибки, если они есть.
func (p *Payment) Validate() []error {
	var errs []error

	if p.OrderID == "" {
		errs = append(errs, ErrOrderNotFound)
	}
	if !ValidPaymentMethod(p.Method) {
		errs = append(errs, ErrInvalidPaymentMethod)
	}
	if p.AmountMinor <= 0 {
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}

// PaymentStats агрегирует показатели по всему множеству платежей.
type PaymentStats struct {
	TotalPayments        int
	TotalAmountMinor     int64
	CompletedAmountMinor int64
	PendingAmountMinor   int64
	CompletedCount       int
	PendingCount         int
	FailedCount          int
	RefundedCount        int
}
