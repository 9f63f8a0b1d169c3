package payment

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodshop/internal/domain"
	"github.com/vladislavdragonenkov/foodshop/internal/metrics"
)

const (
	// referencePrefix — префикс системного номера платежа, формат
	// сохранён: PAY- плюс 12 hex-символов в верхнем регистре.
	referencePrefix = "PAY-"

	paidFlagRetryAttempts  = 3
	paidFlagRetryBaseDelay = 10 * time.Millisecond
)

// Service реализует платёжный workflow: создание платежа, подтверждение,
// отказ, возврат и агрегированную статистику.
type Service struct {
	payments domain.PaymentRepository
	orders   domain.OrderRepository
	outbox   domain.OutboxRepository
	logger   *log.Entry
	metrics  *metrics.WorkflowMetrics
}

// NewService создаёт платёжный сервис. outbox может быть nil — тогда события
// не публикуются.
func NewService(payments domain.PaymentRepository, orders domain.OrderRepository, outbox domain.OutboxRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "payment")
	}
	return &Service{
		payments: payments,
		orders:   orders,
		outbox:   outbox,
		logger:   logger,
		metrics:  metrics.NewWorkflowMetrics(),
	}
}

// NewServiceWithoutMetrics создаёт сервис без метрик (для тестов).
func NewServiceWithoutMetrics(payments domain.PaymentRepository, orders domain.OrderRepository, outbox domain.OutboxRepository, logger *log.Entry) *Service {
	svc := NewService(payments, orders, outbox, logger)
	svc.metrics = nil
	return svc
}

// CreateInput — запрос на создание платежа.
type CreateInput struct {
	OrderID      string
	Method       domain.PaymentMethod
	AmountMinor  int64
	CardLastFour string
	Notes        string
}

// Create создаёт платёж в статусе pending. Сумма должна в точности равняться
// сумме заказа на момент создания; сравнение целочисленное, в минимальных
// единицах.
func (s *Service) Create(input CreateInput) (domain.Payment, error) {
	order, err := s.orders.Get(input.OrderID)
	if err != nil {
		return domain.Payment{}, err
	}
	if !domain.ValidPaymentMethod(input.Method) {
		return domain.Payment{}, fmt.Errorf("%s: %w", input.Method, domain.ErrInvalidPaymentMethod)
	}
	if input.AmountMinor != order.AmountMinor {
		return domain.Payment{}, fmt.Errorf("amount %s, order total %s: %w",
			domain.FormatMinor(input.AmountMinor), domain.FormatMinor(order.AmountMinor), domain.ErrAmountMismatch)
	}

	now := time.Now().UTC()
	payment := domain.Payment{
		ID:              uuid.NewString(),
		OrderID:         order.ID,
		Method:          input.Method,
		AmountMinor:     input.AmountMinor,
		Status:          domain.PaymentStatusPending,
		ReferenceNumber: generateReferenceNumber(),
		CardLastFour:    input.CardLastFour,
		Notes:           input.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.payments.Create(payment); err != nil {
		return domain.Payment{}, err
	}

	s.recordPayment("created")
	s.emitEvent(&payment, domain.EventPaymentCreated, map[string]interface{}{
		"method": string(payment.Method),
	})
	s.logger.WithFields(log.Fields{
		"payment_id": payment.ID,
		"order_id":   payment.OrderID,
		"reference":  payment.ReferenceNumber,
	}).Info("payment created")
	return payment, nil
}

// generateReferenceNumber возвращает новый номер вида PAY-1A2B3C4D5E6F.
func generateReferenceNumber() string {
	hex := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return referencePrefix + hex[:12]
}

// Confirm переводит pending-платёж в completed, сохраняет внешний
// transaction id (уникален среди всех платежей, иначе
// ErrDuplicateTransactionID) и помечает заказ оплаченным. Две записи меняются вместе:
// если флаг заказа не удалось выставить после retry, статус платежа
// откатывается, чтобы completed-платёж не существовал при неоплаченном заказе.
func (s *Service) Confirm(paymentID, transactionID string) (domain.Payment, error) {
	payment, err := s.payments.Get(paymentID)
	if err != nil {
		return domain.Payment{}, err
	}
	if payment.Status != domain.PaymentStatusPending {
		return domain.Payment{}, fmt.Errorf("confirm from %s: %w", payment.Status, domain.ErrInvalidTransition)
	}

	// У заказа может быть только один завершённый платёж.
	siblings, err := s.payments.ListByOrder(payment.OrderID)
	if err != nil {
		return domain.Payment{}, err
	}
	for _, sibling := range siblings {
		if sibling.ID != payment.ID && sibling.Status == domain.PaymentStatusCompleted {
			return domain.Payment{}, domain.ErrOrderAlreadyPaid
		}
	}

	prev := payment
	payment.Status = domain.PaymentStatusCompleted
	payment.TransactionID = transactionID
	payment.UpdatedAt = time.Now().UTC()
	if err := s.payments.Save(payment); err != nil {
		return domain.Payment{}, err
	}
	payment.Version++

	if err := s.setOrderPaid(payment.OrderID, true); err != nil {
		// Компенсация: возвращаем платёж в pending.
		s.revertPayment(payment, prev)
		return domain.Payment{}, fmt.Errorf("mark order paid: %w", err)
	}

	s.recordPayment("completed")
	s.emitEvent(&payment, domain.EventPaymentCompleted, map[string]interface{}{
		"transaction_id": payment.TransactionID,
	})
	s.logger.WithFields(log.Fields{
		"payment_id": payment.ID,
		"order_id":   payment.OrderID,
	}).Info("payment confirmed")
	return payment, nil
}

// Fail переводит платёж в failed из любого статуса; заказ не затрагивается.
func (s *Service) Fail(paymentID, reason string) (domain.Payment, error) {
	payment, err := s.payments.Get(paymentID)
	if err != nil {
		return domain.Payment{}, err
	}

	payment.Status = domain.PaymentStatusFailed
	if reason != "" {
		payment.Notes = reason
	}
	payment.UpdatedAt = time.Now().UTC()
	if err := s.payments.Save(payment); err != nil {
		return domain.Payment{}, err
	}
	payment.Version++

	s.recordPayment("failed")
	s.emitEvent(&payment, domain.EventPaymentFailed, map[string]interface{}{
		"reason": reason,
	})
	return payment, nil
}

// Refund переводит completed-платёж в refunded и снимает с заказа флаг
// оплаты. Требования к согласованности те же, что у Confirm.
func (s *Service) Refund(paymentID string) (domain.Payment, error) {
	payment, err := s.payments.Get(paymentID)
	if err != nil {
		return domain.Payment{}, err
	}
	if payment.Status != domain.PaymentStatusCompleted {
		return domain.Payment{}, fmt.Errorf("refund from %s: %w", payment.Status, domain.ErrInvalidTransition)
	}

	prev := payment
	payment.Status = domain.PaymentStatusRefunded
	payment.UpdatedAt = time.Now().UTC()
	if err := s.payments.Save(payment); err != nil {
		return domain.Payment{}, err
	}
	payment.Version++

	if err := s.setOrderPaid(payment.OrderID, false); err != nil {
		s.revertPayment(payment, prev)
		return domain.Payment{}, fmt.Errorf("mark order unpaid: %w", err)
	}

	s.recordPayment("refunded")
	s.emitEvent(&payment, domain.EventPaymentRefunded, nil)
	s.logger.WithFields(log.Fields{
		"payment_id": payment.ID,
		"order_id":   payment.OrderID,
	}).Info("payment refunded")
	return payment, nil
}

// setOrderPaid выставляет флаг оплаты с bounded retry: completed-платёж при
// неоплаченном заказе — тихое нарушение согласованности.
func (s *Service) setOrderPaid(orderID string, paid bool) error {
	var lastErr error
	for attempt := 0; attempt < paidFlagRetryAttempts; attempt++ {
		lastErr = s.orders.SetPaid(orderID, paid)
		if lastErr == nil {
			return nil
		}
		s.logger.WithError(lastErr).WithFields(log.Fields{
			"order_id": orderID,
			"attempt":  attempt + 1,
		}).Warn("failed to update order paid flag, retrying")
		time.Sleep(paidFlagRetryBaseDelay * time.Duration(1<<uint(attempt)))
	}
	return lastErr
}

// revertPayment откатывает статус платежа после неудавшегося dual write.
func (s *Service) revertPayment(current, prev domain.Payment) {
	prev.Version = current.Version
	prev.UpdatedAt = time.Now().UTC()
	if err := s.payments.Save(prev); err != nil {
		s.logger.WithError(err).WithField("payment_id", prev.ID).Error("failed to revert payment status")
	}
}

// Get возвращает платёж по идентификатору.
func (s *Service) Get(paymentID string) (domain.Payment, error) {
	return s.payments.Get(paymentID)
}

// List возвращает платежи с пагинацией skip/limit.
func (s *Service) List(skip, limit int) ([]domain.Payment, error) {
	return s.payments.List(skip, limit)
}

// ListByOrder возвращает все платежи заказа, включая неудавшиеся попытки.
func (s *Service) ListByOrder(orderID string) ([]domain.Payment, error) {
	return s.payments.ListByOrder(orderID)
}

// ListByStatus возвращает платежи в заданном статусе.
func (s *Service) ListByStatus(status domain.PaymentStatus, skip, limit int) ([]domain.Payment, error) {
	return s.payments.ListByStatus(status, skip, limit)
}

// ListByMethod возвращает платежи по способу оплаты.
func (s *Service) ListByMethod(method domain.PaymentMethod, skip, limit int) ([]domain.Payment, error) {
	return s.payments.ListByMethod(method, skip, limit)
}

// Delete удаляет платёж.
func (s *Service) Delete(paymentID string) error {
	return s.payments.Delete(paymentID)
}

// Statistics пересчитывает агрегаты по полному множеству платежей;
// выборка не кешируется.
func (s *Service) Statistics() (domain.PaymentStats, error) {
	payments, err := s.payments.List(0, 0)
	if err != nil {
		return domain.PaymentStats{}, err
	}

	var stats domain.PaymentStats
	stats.TotalPayments = len(payments)
	for _, p := range payments {
		stats.TotalAmountMinor += p.AmountMinor
		switch p.Status {
		case domain.PaymentStatusCompleted:
			stats.CompletedCount++
			stats.CompletedAmountMinor += p.AmountMinor
		case domain.PaymentStatusPending:
			stats.PendingCount++
			stats.PendingAmountMinor += p.AmountMinor
		case domain.PaymentStatusFailed:
			stats.FailedCount++
		case domain.PaymentStatusRefunded:
			stats.RefundedCount++
		}
	}
	return stats, nil
}

func (s *Service) recordPayment(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordPayment(outcome)
	}
}

func (s *Service) emitEvent(payment *domain.Payment, eventType string, metadata map[string]interface{}) {
	if s.outbox == nil {
		return
	}
	event := domain.NewPaymentEvent(eventType, *payment, metadata)
	data, err := json.Marshal(event)
	if err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"payment_id": payment.ID,
			"event":      eventType,
		}).Error("marshal event failed")
		return
	}

	msg := domain.OutboxMessage{
		AggregateType: "payment",
		AggregateID:   payment.ID,
		EventType:     eventType,
		Payload:       data,
	}
	if _, err := s.outbox.Enqueue(msg); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"payment_id": payment.ID,
			"event":      eventType,
		}).Error("enqueue event failed")
	}
}
