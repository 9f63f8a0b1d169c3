package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/vladislavdragonenkov/foodshop/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON сериализует payload и выставляет статус ответа.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError переводит доменную ошибку в HTTP-статус. Внутренние ошибки
// не раскрываются клиенту.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(http.StatusInternalServerError)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeBadRequest отвечает 400 на некорректную форму запроса.
func writeBadRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrFoodNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrPaymentNotFound),
		errors.Is(err, domain.ErrPromotionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateFoodName),
		errors.Is(err, domain.ErrDuplicateCode),
		errors.Is(err, domain.ErrOrderAlreadyPaid),
		errors.Is(err, domain.ErrDuplicateTransactionID),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrOrderNotDeletable),
		errors.Is(err, domain.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrAmountMismatch),
		errors.Is(err, domain.ErrInvalidPaymentMethod),
		errors.Is(err, domain.ErrUsageLimitReached),
		errors.Is(err, domain.ErrCustomerNameRequired),
		errors.Is(err, domain.ErrCustomerEmailRequired),
		errors.Is(err, domain.ErrItemsRequired),
		errors.Is(err, domain.ErrItemQtyInvalid),
		errors.Is(err, domain.ErrAmountInconsistent),
		errors.Is(err, domain.ErrFoodNameRequired),
		errors.Is(err, domain.ErrFoodPriceInvalid),
		errors.Is(err, domain.ErrFoodStockNegative),
		errors.Is(err, domain.ErrPromotionCodeRequired),
		errors.Is(err, domain.ErrDiscountTypeInvalid),
		errors.Is(err, domain.ErrDiscountValueInvalid):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON разбирает тело запроса в dst, отклоняя неизвестные поля.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// listParams извлекает skip/limit из query-параметров; отрицательные и
// нечисловые значения трактуются как ноль.
func listParams(r *http.Request) (skip, limit int) {
	if v := r.URL.Query().Get("skip"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			skip = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	return skip, limit
}
