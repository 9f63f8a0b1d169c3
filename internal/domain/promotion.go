package domain

import (
	"math"
	"time"
)

// DiscountType определяет способ расчёта скидки.
type DiscountType string

const (
	// DiscountTypePercentage — скидка как процент от суммы заказа.
	DiscountTypePercentage DiscountType = "percentage"
	// DiscountTypeFixed — фиксированная скидка в деньгах.
	DiscountTypeFixed DiscountType = "fixed"
)

// Promotion описывает промокод и правила его применения.
type Promotion struct {
	ID string
	// Code хранится в верхнем регистре; поиск не зависит от регистра.
	Code         string
	Title        string
	Description  string
	DiscountType DiscountType
	// DiscountValue — процент (0-100) для percentage или сумма в основных
	// единицах (долларах) для fixed.
	DiscountValue float64
	// MinOrderMinor — минимальная сумма заказа для применения.
	MinOrderMinor int64
	// MaxDiscountMinor ограничивает процентную скидку сверху; 0 — без лимита.
	MaxDiscountMinor int64
	// ApplicableCategories хранится, но на расчёт скидки не влияет.
	ApplicableCategories []string
	Active               bool
	// UsageLimit — максимум применений; 0 — без лимита.
	UsageLimit int32
	UsageCount int32
	ValidFrom  time.Time
	// ValidUntil == nil означает бессрочный промокод.
	ValidUntil *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate проверяет базовые инварианты промокода.
func (p *Promotion) Validate() []error {
	var errs []error

	if p.Code == "" {
		errs = append(errs, ErrPromotionCodeRequired)
	}
	if p.DiscountType != DiscountTypePercentage && p.DiscountType != DiscountTypeFixed {
		errs = append(errs, ErrDiscountTypeInvalid)
	}
	if p.DiscountValue <= 0 {
		errs = append(errs, ErrDiscountValueInvalid)
	}

	return errs
}

// CurrentlyValid проверяет активность и временное окно промокода.
// Лимит использований и минимальная сумма здесь не учитываются:
// они требуют контекста заказа.
func (p *Promotion) CurrentlyValid(now time.Time) bool {
	if !p.Active {
		return false
	}
	if now.Before(p.ValidFrom) {
		return false
	}
	if p.ValidUntil != nil && now.After(*p.ValidUntil) {
		return false
	}
	return true
}

// DiscountFor вычисляет скидку для заказа на totalMinor. Процентная скидка
// ограничивается MaxDiscountMinor, фиксированная — суммой заказа, так что
// итог никогда не уходит ниже нуля.
func (p *Promotion) DiscountFor(totalMinor int64) int64 {
	var discount int64
	switch p.DiscountType {
	case DiscountTypePercentage:
		discount = int64(math.Round(float64(totalMinor) * p.DiscountValue / 100))
		if p.MaxDiscountMinor > 0 && discount > p.MaxDiscountMinor {
			discount = p.MaxDiscountMinor
		}
	case DiscountTypeFixed:
		discount = MinorFromMajor(p.DiscountValue)
		if discount > totalMinor {
			discount = totalMinor
		}
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

// RejectionReason классифицирует причину отказа в применении промокода.
type RejectionReason string

const (
	RejectionNone              RejectionReason = ""
	RejectionNotFound          RejectionReason = "not_found"
	RejectionInactive          RejectionReason = "inactive"
	RejectionNotYetValid       RejectionReason = "not_yet_valid"
	RejectionExpired           RejectionReason = "expired"
	RejectionUsageLimitReached RejectionReason = "usage_limit_reached"
	RejectionBelowMinimum      RejectionReason = "below_minimum"
)

// PromotionResult — результат применения промокода. Отказ не является
// ошибкой: результат всегда возвращается с заполненным Message.
type PromotionResult struct {
	Valid           bool
	Reason          RejectionReason
	Message         string
	PromotionID     string
	Code            string
	Title           string
	DiscountType    DiscountType
	DiscountValue   float64
	DiscountMinor   int64
	FinalTotalMinor int64
}
