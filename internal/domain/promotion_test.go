package domain_test

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/foodshop/internal/domain"
)

func TestPromotionDiscountFor_Fixed(t *testing.T) {
	promo := domain.Promotion{
		Code:          "SAVE5",
		DiscountType:  domain.DiscountTypeFixed,
		DiscountValue: 5,
		MinOrderMinor: 2500,
	}

	if got := promo.DiscountFor(3000); got != 500 {
		t.Fatalf("expected discount 500, got %d", got)
	}
	// Фиксированная скидка не опускает итог ниже нуля.
	if got := promo.DiscountFor(300); got != 300 {
		t.Fatalf("expected discount 300, got %d", got)
	}
}

func TestPromotionDiscountFor_PercentageCapped(t *testing.T) {
	promo := domain.Promotion{
		Code:             "WEEKEND20",
		DiscountType:     domain.DiscountTypePercentage,
		DiscountValue:    20,
		MinOrderMinor:    2000,
		MaxDiscountMinor: 1000,
	}

	if got := promo.DiscountFor(10000); got != 1000 {
		t.Fatalf("expected capped discount 1000, got %d", got)
	}
	if got := promo.DiscountFor(3000); got != 600 {
		t.Fatalf("expected discount 600, got %d", got)
	}
}

func TestPromotionDiscountFor_PercentageUncapped(t *testing.T) {
	promo := domain.Promotion{
		DiscountType:  domain.DiscountTypePercentage,
		DiscountValue: 15,
	}

	// 15% от 9.99 = 1.4985, округляем до цента.
	if got := promo.DiscountFor(999); got != 150 {
		t.Fatalf("expected discount 150, got %d", got)
	}
}

func TestPromotionCurrentlyValid(t *testing.T) {
	now := time.Now().UTC()
	until := now.Add(24 * time.Hour)

	promo := domain.Promotion{
		Active:     true,
		ValidFrom:  now.Add(-time.Hour),
		ValidUntil: &until,
	}
	if !promo.CurrentlyValid(now) {
		t.Fatal("expected promotion to be valid")
	}

	promo.Active = false
	if promo.CurrentlyValid(now) {
		t.Fatal("inactive promotion must not be valid")
	}

	promo.Active = true
	promo.ValidFrom = now.Add(time.Hour)
	if promo.CurrentlyValid(now) {
		t.Fatal("future promotion must not be valid")
	}

	promo.ValidFrom = now.Add(-2 * time.Hour)
	expired := now.Add(-time.Hour)
	promo.ValidUntil = &expired
	if promo.CurrentlyValid(now) {
		t.Fatal("expired promotion must not be valid")
	}

	// Бессрочный промокод валиден без ValidUntil.
	promo.ValidUntil = nil
	if !promo.CurrentlyValid(now) {
		t.Fatal("open-ended promotion must be valid")
	}
}

func TestPromotionValidate(t *testing.T) {
	promo := domain.Promotion{}
	if errs := promo.Validate(); len(errs) != 3 {
		t.Fatalf("expected 3 errors, got %v", errs)
	}

	promo = domain.Promotion{
		Code:          "SAVE5",
		DiscountType:  domain.DiscountTypeFixed,
		DiscountValue: 5,
	}
	if errs := promo.Validate(); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidPaymentMethod(t *testing.T) {
	for _, m := range []domain.PaymentMethod{
		domain.PaymentMethodCreditCard, domain.PaymentMethodDebitCard,
		domain.PaymentMethodPayPal, domain.PaymentMethodApplePay,
		domain.PaymentMethodGooglePay, domain.PaymentMethodBankTransfer,
		domain.PaymentMethodCash,
	} {
		if !domain.ValidPaymentMethod(m) {
			t.Fatalf("expected %s to be valid", m)
		}
	}
	if domain.ValidPaymentMethod("bitcoin") {
		t.Fatal("expected bitcoin to be rejected")
	}
}
