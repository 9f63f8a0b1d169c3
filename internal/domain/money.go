package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatMinor печатает сумму в минимальных единицах как десятичную строку
// с двумя знаками, например 2599 → "25.99".
func FormatMinor(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
}

// MinorFromMajor переводит сумму в основных единицах в минимальные
// с округлением до цента.
func MinorFromMajor(major float64) int64 {
	return int64(math.Round(major * 100))
}

// ParseMinor разбирает десятичную строку вида "12.99" в минимальные единицы.
// Допускается не более двух знаков после точки.
func ParseMinor(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("amount is empty")
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	total := w*100 + f
	if neg {
		total = -total
	}
	return total, nil
}
