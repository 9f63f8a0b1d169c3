package domain

import "time"

// Food описывает позицию каталога с ценой и остатком на складе.
type Food struct {
	ID          string
	Name        string
	Description string
	// PriceMinor — цена за единицу в минимальных денежных единицах (центы).
	PriceMinor int64
	Category   string
	// Stock — доступный остаток; никогда не уходит в минус.
	Stock     int32
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate проверяет базовые инварианты позиции каталога.
func (f *Food) Validate() []error {
	var errs []error

	if f.Name == "" {
		errs = append(errs, ErrFoodNameRequired)
	}
	if f.PriceMinor <= 0 {
		errs = append(errs, ErrFoodPriceInvalid)
	}
	if f.Stock < 0 {
		errs = append(errs, ErrFoodStockNegative)
	}

	return errs
}
