package promotion

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodshop/internal/domain"
	"github.com/vladislavdragonenkov/foodshop/internal/metrics"
)

// Service реализует применение промокодов и их администрирование.
type Service struct {
	promotions domain.PromotionRepository
	outbox     domain.OutboxRepository
	logger     *log.Entry
	metrics    *metrics.WorkflowMetrics
	// now подменяется в тестах для проверки временных окон.
	now func() time.Time
}

// NewService создаёт сервис промокодов. outbox может быть nil.
func NewService(promotions domain.PromotionRepository, outbox domain.OutboxRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "promotion")
	}
	return &Service{
		promotions: promotions,
		outbox:     outbox,
		logger:     logger,
		metrics:    metrics.NewWorkflowMetrics(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// NewServiceWithoutMetrics создаёт сервис без метрик (для тестов).
func NewServiceWithoutMetrics(promotions domain.PromotionRepository, outbox domain.OutboxRepository, logger *log.Entry) *Service {
	svc := NewService(promotions, outbox, logger)
	svc.metrics = nil
	return svc
}

// SetClock подменяет источник времени (для тестов).
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Apply проверяет промокод против суммы заказа и считает скидку. Отказ — не
// ошибка: результат всегда возвращается, с первым непройденным правилом в
// Message. При успехе счётчик применений увеличивается ровно на единицу.
func (s *Service) Apply(code string, orderTotalMinor int64) (domain.PromotionResult, error) {
	reject := func(reason domain.RejectionReason, message string) (domain.PromotionResult, error) {
		if s.metrics != nil {
			s.metrics.RecordPromotionRejected(string(reason))
		}
		return domain.PromotionResult{
			Valid:           false,
			Reason:          reason,
			Message:         message,
			FinalTotalMinor: orderTotalMinor,
		}, nil
	}

	promo, err := s.promotions.GetByCode(code)
	if err != nil {
		if errors.Is(err, domain.ErrPromotionNotFound) {
			return reject(domain.RejectionNotFound, fmt.Sprintf("Promotion code '%s' not found", code))
		}
		return domain.PromotionResult{}, err
	}

	now := s.now()
	switch {
	case !promo.Active:
		return reject(domain.RejectionInactive, fmt.Sprintf("Promotion code '%s' is inactive", code))
	case now.Before(promo.ValidFrom):
		return reject(domain.RejectionNotYetValid, fmt.Sprintf("Promotion code '%s' is not yet valid", code))
	case promo.ValidUntil != nil && now.After(*promo.ValidUntil):
		return reject(domain.RejectionExpired, fmt.Sprintf("Promotion code '%s' has expired", code))
	case promo.UsageLimit > 0 && promo.UsageCount >= promo.UsageLimit:
		return reject(domain.RejectionUsageLimitReached, fmt.Sprintf("Promotion code '%s' has reached its usage limit", code))
	case orderTotalMinor < promo.MinOrderMinor:
		return reject(domain.RejectionBelowMinimum, fmt.Sprintf("Minimum order amount of $%s required", domain.FormatMinor(promo.MinOrderMinor)))
	}

	discount := promo.DiscountFor(orderTotalMinor)
	finalTotal := orderTotalMinor - discount
	if finalTotal < 0 {
		finalTotal = 0
	}

	// Инкремент атомарный на уровне хранилища; конкурентное применение у
	// самого лимита проигрывает здесь, а не теряет обновление.
	if err := s.promotions.IncrementUsage(promo.ID); err != nil {
		if errors.Is(err, domain.ErrUsageLimitReached) {
			return reject(domain.RejectionUsageLimitReached, fmt.Sprintf("Promotion code '%s' has reached its usage limit", code))
		}
		return domain.PromotionResult{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordPromotionApplied()
	}
	s.emitApplied(promo, discount, finalTotal)
	s.logger.WithFields(log.Fields{
		"code":           promo.Code,
		"discount_minor": discount,
	}).Info("promotion applied")

	return domain.PromotionResult{
		Valid:           true,
		PromotionID:     promo.ID,
		Code:            promo.Code,
		Title:           promo.Title,
		DiscountType:    promo.DiscountType,
		DiscountValue:   promo.DiscountValue,
		DiscountMinor:   discount,
		FinalTotalMinor: finalTotal,
		Message:         fmt.Sprintf("Promotion applied successfully! Saved $%s", domain.FormatMinor(discount)),
	}, nil
}

// CreateInput — данные для создания промокода.
type CreateInput struct {
	Code                 string
	Title                string
	Description          string
	DiscountType         domain.DiscountType
	DiscountValue        float64
	MinOrderMinor        int64
	MaxDiscountMinor     int64
	ApplicableCategories []string
	Active               bool
	UsageLimit           int32
	ValidFrom            time.Time
	ValidUntil           *time.Time
}

// Create регистрирует промокод; код нормализуется в верхний регистр.
func (s *Service) Create(input CreateInput) (domain.Promotion, error) {
	now := s.now()
	validFrom := input.ValidFrom
	if validFrom.IsZero() {
		validFrom = now
	}

	promo := domain.Promotion{
		ID:                   uuid.NewString(),
		Code:                 strings.ToUpper(input.Code),
		Title:                input.Title,
		Description:          input.Description,
		DiscountType:         input.DiscountType,
		DiscountValue:        input.DiscountValue,
		MinOrderMinor:        input.MinOrderMinor,
		MaxDiscountMinor:     input.MaxDiscountMinor,
		ApplicableCategories: input.ApplicableCategories,
		Active:               input.Active,
		UsageLimit:           input.UsageLimit,
		ValidFrom:            validFrom,
		ValidUntil:           input.ValidUntil,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if errs := promo.Validate(); len(errs) > 0 {
		return domain.Promotion{}, errors.Join(errs...)
	}
	if err := s.promotions.Create(promo); err != nil {
		return domain.Promotion{}, err
	}

	s.logger.WithField("code", promo.Code).Info("promotion created")
	return promo, nil
}

// UpdateInput — частичное обновление: применяются только заданные поля.
type UpdateInput struct {
	Title                *string
	Description          *string
	DiscountType         *domain.DiscountType
	DiscountValue        *float64
	MinOrderMinor        *int64
	MaxDiscountMinor     *int64
	ApplicableCategories *[]string
	Active               *bool
	UsageLimit           *int32
	ValidFrom            *time.Time
	ValidUntil           *time.Time
}

// Update применяет частичное обновление к промокоду.
func (s *Service) Update(id string, input UpdateInput) (domain.Promotion, error) {
	promo, err := s.promotions.Get(id)
	if err != nil {
		return domain.Promotion{}, err
	}

	if input.Title != nil {
		promo.Title = *input.Title
	}
	if input.Description != nil {
		promo.Description = *input.Description
	}
	if input.DiscountType != nil {
		promo.DiscountType = *input.DiscountType
	}
	if input.DiscountValue != nil {
		promo.DiscountValue = *input.DiscountValue
	}
	if input.MinOrderMinor != nil {
		promo.MinOrderMinor = *input.MinOrderMinor
	}
	if input.MaxDiscountMinor != nil {
		promo.MaxDiscountMinor = *input.MaxDiscountMinor
	}
	if input.ApplicableCategories != nil {
		promo.ApplicableCategories = *input.ApplicableCategories
	}
	if input.Active != nil {
		promo.Active = *input.Active
	}
	if input.UsageLimit != nil {
		promo.UsageLimit = *input.UsageLimit
	}
	if input.ValidFrom != nil {
		promo.ValidFrom = *input.ValidFrom
	}
	if input.ValidUntil != nil {
		promo.ValidUntil = input.ValidUntil
	}

	if errs := promo.Validate(); len(errs) > 0 {
		return domain.Promotion{}, errors.Join(errs...)
	}
	promo.UpdatedAt = s.now()
	if err := s.promotions.Save(promo); err != nil {
		return domain.Promotion{}, err
	}
	return promo, nil
}

// Get возвращает промокод по идентификатору.
func (s *Service) Get(id string) (domain.Promotion, error) {
	return s.promotions.Get(id)
}

// List возвращает промокоды; activeOnly оставляет только активные в текущем
// временном окне (лимит использований и минимальная сумма не учитываются).
func (s *Service) List(skip, limit int, activeOnly bool) ([]domain.Promotion, error) {
	promos, err := s.promotions.List(skip, limit)
	if err != nil {
		return nil, err
	}
	if !activeOnly {
		return promos, nil
	}

	now := s.now()
	filtered := make([]domain.Promotion, 0, len(promos))
	for _, promo := range promos {
		if promo.CurrentlyValid(now) {
			filtered = append(filtered, promo)
		}
	}
	return filtered, nil
}

// Delete удаляет промокод.
func (s *Service) Delete(id string) error {
	return s.promotions.Delete(id)
}

func (s *Service) emitApplied(promo domain.Promotion, discountMinor, finalTotalMinor int64) {
	if s.outbox == nil {
		return
	}
	payload := map[string]interface{}{
		"promotion_id":      promo.ID,
		"code":              promo.Code,
		"discount_minor":    discountMinor,
		"final_total_minor": finalTotalMinor,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.WithError(err).WithField("code", promo.Code).Error("marshal event failed")
		return
	}
	msg := domain.OutboxMessage{
		AggregateType: "promotion",
		AggregateID:   promo.ID,
		EventType:     domain.EventPromotionApplied,
		Payload:       data,
	}
	if _, err := s.outbox.Enqueue(msg); err != nil {
		s.logger.WithError(err).WithField("code", promo.Code).Error("enqueue event failed")
	}
}
