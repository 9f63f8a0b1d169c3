package order

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodshop/internal/domain"
	"github.com/vladislavdragonenkov/foodshop/internal/metrics"
)

const (
	statusRetryAttempts  = 3
	statusRetryBaseDelay = 10 * time.Millisecond
)

// Service реализует workflow заказа: создание с резервированием стока,
// переходы статусов и выборки.
type Service struct {
	orders  domain.OrderRepository
	foods   domain.FoodRepository
	outbox  domain.OutboxRepository
	logger  *log.Entry
	metrics *metrics.WorkflowMetrics
}

// NewService создаёт сервис заказов. outbox может быть nil — тогда события
// не публикуются.
func NewService(orders domain.OrderRepository, foods domain.FoodRepository, outbox domain.OutboxRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "order")
	}
	return &Service{
		orders:  orders,
		foods:   foods,
		outbox:  outbox,
		logger:  logger,
		metrics: metrics.NewWorkflowMetrics(),
	}
}

// NewServiceWithoutMetrics создаёт сервис без метрик (для тестов).
func NewServiceWithoutMetrics(orders domain.OrderRepository, foods domain.FoodRepository, outbox domain.OutboxRepository, logger *log.Entry) *Service {
	svc := NewService(orders, foods, outbox, logger)
	svc.metrics = nil
	return svc
}

// ItemInput — позиция запроса на создание заказа.
type ItemInput struct {
	FoodID string
	Qty    int32
}

// CreateInput — запрос на создание заказа.
type CreateInput struct {
	CustomerName  string
	CustomerEmail string
	Items         []ItemInput
}

// Create создаёт заказ в два этапа: сначала все позиции валидируются по
// каталогу и цены фиксируются, затем, когда запись заказа сохранена,
// резервируется сток. Если конкурирующий заказ успел забрать сток между
// валидацией и резервом, уже списанные позиции возвращаются на склад,
// запись заказа удаляется и вся операция завершается ErrInsufficientStock.
func (s *Service) Create(input CreateInput) (domain.Order, error) {
	if input.CustomerName == "" {
		return domain.Order{}, domain.ErrCustomerNameRequired
	}
	if input.CustomerEmail == "" {
		return domain.Order{}, domain.ErrCustomerEmailRequired
	}
	if len(input.Items) == 0 {
		return domain.Order{}, domain.ErrItemsRequired
	}

	now := time.Now().UTC()
	items := make([]domain.OrderItem, 0, len(input.Items))
	var total int64

	// Этап 1: валидация всех позиций до любого списания стока.
	for _, item := range input.Items {
		if item.Qty <= 0 {
			return domain.Order{}, domain.ErrItemQtyInvalid
		}
		food, err := s.foods.Get(item.FoodID)
		if err != nil {
			s.recordRejected()
			return domain.Order{}, fmt.Errorf("food %s: %w", item.FoodID, err)
		}
		if food.Stock < item.Qty {
			s.recordRejected()
			return domain.Order{}, fmt.Errorf("food %s: %w", item.FoodID, domain.ErrInsufficientStock)
		}

		subtotal := int64(item.Qty) * food.PriceMinor
		items = append(items, domain.OrderItem{
			ID:            uuid.NewString(),
			FoodID:        food.ID,
			FoodName:      food.Name,
			Qty:           item.Qty,
			PriceMinor:    food.PriceMinor,
			SubtotalMinor: subtotal,
			CreatedAt:     now,
		})
		total += subtotal
	}

	order := domain.Order{
		ID:            uuid.NewString(),
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		Status:        domain.OrderStatusPending,
		AmountMinor:   total,
		Paid:          false,
		Items:         items,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.orders.Create(order); err != nil {
		return domain.Order{}, err
	}

	// Этап 2: резервирование стока после сохранения заказа.
	if err := s.reserveStock(order); err != nil {
		if delErr := s.orders.Delete(order.ID); delErr != nil {
			s.logger.WithError(delErr).WithField("order_id", order.ID).Error("failed to remove order after reservation failure")
		}
		s.recordRejected()
		return domain.Order{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordOrderCreated(order.AmountMinor)
	}
	s.emitEvent(&order, domain.EventOrderCreated, map[string]interface{}{
		"amount_minor": order.AmountMinor,
		"items_count":  len(order.Items),
	})
	s.logger.WithFields(log.Fields{
		"order_id":     order.ID,
		"amount_minor": order.AmountMinor,
	}).Info("order created")
	return order, nil
}

// reserveStock списывает сток по каждой позиции. При сбое на середине
// возвращает уже списанные позиции обратно, чтобы не оставить частичный дебет.
func (s *Service) reserveStock(order domain.Order) error {
	reserved := make([]domain.OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		if _, err := s.foods.DecreaseStock(item.FoodID, item.Qty); err != nil {
			s.logger.WithError(err).WithFields(log.Fields{
				"order_id": order.ID,
				"food_id":  item.FoodID,
			}).Warn("stock reservation failed, rolling back")
			s.releaseStock(order.ID, reserved)
			return fmt.Errorf("food %s: %w", item.FoodID, domain.ErrInsufficientStock)
		}
		reserved = append(reserved, item)
	}
	return nil
}

func (s *Service) releaseStock(orderID string, items []domain.OrderItem) {
	for _, item := range items {
		if _, err := s.foods.IncreaseStock(item.FoodID, item.Qty); err != nil {
			s.logger.WithError(err).WithFields(log.Fields{
				"order_id": orderID,
				"food_id":  item.FoodID,
			}).Error("stock release failed")
		}
	}
}

// Confirm переводит заказ pending → confirmed.
func (s *Service) Confirm(orderID string) (domain.Order, error) {
	return s.transition(orderID, domain.OrderStatusConfirmed, domain.EventOrderConfirmed)
}

// MarkDelivered переводит заказ confirmed → delivered.
func (s *Service) MarkDelivered(orderID string) (domain.Order, error) {
	return s.transition(orderID, domain.OrderStatusDelivered, domain.EventOrderDelivered)
}

func (s *Service) transition(orderID string, next domain.OrderStatus, eventType string) (domain.Order, error) {
	order, err := s.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if !order.CanTransition(next) {
		return domain.Order{}, fmt.Errorf("%s -> %s: %w", order.Status, next, domain.ErrInvalidTransition)
	}

	if err := s.updateStatus(&order, next); err != nil {
		return domain.Order{}, err
	}
	s.emitEvent(&order, eventType, nil)
	return order, nil
}

// updateStatus меняет статус заказа с retry на version conflict:
// конкурирующее обновление перезагружает свежую версию и повторяет переход.
func (s *Service) updateStatus(order *domain.Order, next domain.OrderStatus) error {
	for attempt := 0; attempt < statusRetryAttempts; attempt++ {
		order.Status = next
		order.UpdatedAt = time.Now().UTC()
		prevVersion := order.Version

		err := s.orders.Save(*order)
		if err == nil {
			order.Version = prevVersion + 1
			return nil
		}
		if !domain.IsVersionConflict(err) || attempt == statusRetryAttempts-1 {
			s.logger.WithError(err).WithField("order_id", order.ID).Error("failed to persist status")
			return err
		}

		fresh, loadErr := s.orders.Get(order.ID)
		if loadErr != nil {
			return loadErr
		}
		if !fresh.CanTransition(next) {
			return fmt.Errorf("%s -> %s: %w", fresh.Status, next, domain.ErrInvalidTransition)
		}
		*order = fresh
		time.Sleep(statusRetryBaseDelay * time.Duration(1<<uint(attempt)))
	}
	return domain.ErrVersionConflict
}

// Get возвращает заказ по идентификатору.
func (s *Service) Get(orderID string) (domain.Order, error) {
	return s.orders.Get(orderID)
}

// List возвращает заказы с пагинацией skip/limit.
func (s *Service) List(skip, limit int) ([]domain.Order, error) {
	return s.orders.List(skip, limit)
}

// ListByCustomer возвращает заказы клиента по email.
func (s *Service) ListByCustomer(email string, skip, limit int) ([]domain.Order, error) {
	return s.orders.ListByCustomer(email, skip, limit)
}

// ListByStatus возвращает заказы в заданном статусе.
func (s *Service) ListByStatus(status domain.OrderStatus, skip, limit int) ([]domain.Order, error) {
	return s.orders.ListByStatus(status, skip, limit)
}

// Delete удаляет заказ. Разрешено только для неоплаченных pending-заказов;
// зарезервированный сток возвращается на склад.
func (s *Service) Delete(orderID string) error {
	order, err := s.orders.Get(orderID)
	if err != nil {
		return err
	}
	if order.Status != domain.OrderStatusPending || order.Paid {
		return domain.ErrOrderNotDeletable
	}
	if err := s.orders.Delete(orderID); err != nil {
		return err
	}
	s.releaseStock(order.ID, order.Items)
	s.logger.WithField("order_id", orderID).Info("order deleted, stock released")
	return nil
}

func (s *Service) recordRejected() {
	if s.metrics != nil {
		s.metrics.RecordOrderRejected()
	}
}

func (s *Service) emitEvent(order *domain.Order, eventType string, metadata map[string]interface{}) {
	if s.outbox == nil {
		return
	}
	event := domain.NewOrderEvent(eventType, *order, metadata)
	data, err := json.Marshal(event)
	if err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id": order.ID,
			"event":    eventType,
		}).Error("marshal event failed")
		return
	}

	msg := domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   order.ID,
		EventType:     eventType,
		Payload:       data,
	}
	if _, err := s.outbox.Enqueue(msg); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id": order.ID,
			"event":    eventType,
		}).Error("enqueue event failed")
	}
}
