package rest

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodshop/internal/domain"
	"github.com/vladislavdragonenkov/foodshop/internal/service/payment"
)

// PaymentHandler обслуживает REST-операции платежей.
type PaymentHandler struct {
	svc    *payment.Service
	logger *log.Entry
}

func NewPaymentHandler(svc *payment.Service, logger *log.Entry) *PaymentHandler {
	if logger == nil {
		logger = log.New().WithField("component", "rest.payments")
	}
	return &PaymentHandler{svc: svc, logger: logger}
}

func (h *PaymentHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/statistics", h.Statistics)
	r.Get("/order/{orderID}", h.ListByOrder)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/confirm", h.Confirm)
	r.Post("/{id}/fail", h.Fail)
	r.Post("/{id}/refund", h.Refund)
	r.Delete("/{id}", h.Delete)
	return r
}

type paymentRequest struct {
	OrderID      string `json:"order_id"`
	Method       string `json:"method"`
	Amount       string `json:"amount"`
	CardLastFour string `json:"card_last_four"`
	Notes        string `json:"notes"`
}

type paymentConfirmRequest struct {
	TransactionID string `json:"transaction_id"`
}

type paymentFailRequest struct {
	Reason string `json:"reason"`
}

type paymentResponse struct {
	ID              string    `json:"id"`
	OrderID         string    `json:"order_id"`
	Method          string    `json:"method"`
	Amount          string    `json:"amount"`
	Status          string    `json:"status"`
	TransactionID   string    `json:"transaction_id,omitempty"`
	ReferenceNumber string    `json:"reference_number"`
	CardLastFour    string    `json:"card_last_four,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type paymentStatsResponse struct {
	TotalPayments   int    `json:"total_payments"`
	TotalAmount     string `json:"total_amount"`
	CompletedAmount string `json:"completed_amount"`
	PendingAmount   string `json:"pending_amount"`
	CompletedCount  int    `json:"completed_count"`
	PendingCount    int    `json:"pending_count"`
	FailedCount     int    `json:"failed_count"`
	RefundedCount   int    `json:"refunded_count"`
}

func toPaymentResponse(p domain.Payment) paymentResponse {
	return paymentResponse{
		ID:              p.ID,
		OrderID:         p.OrderID,
		Method:          string(p.Method),
		Amount:          domain.FormatMinor(p.AmountMinor),
		Status:          string(p.Status),
		TransactionID:   p.TransactionID,
		ReferenceNumber: p.ReferenceNumber,
		CardLastFour:    p.CardLastFour,
		Notes:           p.Notes,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	amountMinor, err := domain.ParseMinor(req.Amount)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	created, err := h.svc.Create(payment.CreateInput{
		OrderID:      req.OrderID,
		Method:       domain.PaymentMethod(req.Method),
		AmountMinor:  amountMinor,
		CardLastFour: req.CardLastFour,
		Notes:        req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPaymentResponse(created))
}

func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit := listParams(r)

	var (
		payments []domain.Payment
		err      error
	)
	switch {
	case r.URL.Query().Get("status") != "":
		payments, err = h.svc.ListByStatus(domain.PaymentStatus(r.URL.Query().Get("status")), skip, limit)
	case r.URL.Query().Get("method") != "":
		payments, err = h.svc.ListByMethod(domain.PaymentMethod(r.URL.Query().Get("method")), skip, limit)
	default:
		payments, err = h.svc.List(skip, limit)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]paymentResponse, 0, len(payments))
	for _, p := range payments {
		resp = append(resp, toPaymentResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PaymentHandler) ListByOrder(w http.ResponseWriter, r *http.Request) {
	payments, err := h.svc.ListByOrder(chi.URLParam(r, "orderID"))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]paymentResponse, 0, len(payments))
	for _, p := range payments {
		resp = append(resp, toPaymentResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResponse(p))
}

func (h *PaymentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req paymentConfirmRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	p, err := h.svc.Confirm(chi.URLParam(r, "id"), req.TransactionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResponse(p))
}

func (h *PaymentHandler) Fail(w http.ResponseWriter, r *http.Request) {
	var req paymentFailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	p, err := h.svc.Fail(chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResponse(p))
}

func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Refund(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResponse(p))
}

func (h *PaymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PaymentHandler) Statistics(w http.ResponseWriter, _ *http.Request) {
	stats, err := h.svc.Statistics()
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, paymentStatsResponse{
		TotalPayments:   stats.TotalPayments,
		TotalAmount:     domain.FormatMinor(stats.TotalAmountMinor),
		CompletedAmount: domain.FormatMinor(stats.CompletedAmountMinor),
		PendingAmount:   domain.FormatMinor(stats.PendingAmountMinor),
		CompletedCount:  stats.CompletedCount,
		PendingCount:    stats.PendingCount,
		FailedCount:     stats.FailedCount,
		RefundedCount:   stats.RefundedCount,
	})
}
