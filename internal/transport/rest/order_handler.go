package rest

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodshop/internal/domain"
	"github.com/vladislavdragonenkov/foodshop/internal/service/order"
)

// OrderHandler обслуживает REST-операции заказов.
type OrderHandler struct {
	svc    *order.Service
	logger *log.Entry
}

func NewOrderHandler(svc *order.Service, logger *log.Entry) *OrderHandler {
	if logger == nil {
		logger = log.New().WithField("component", "rest.orders")
	}
	return &OrderHandler{svc: svc, logger: logger}
}

func (h *OrderHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/confirm", h.Confirm)
	r.Post("/{id}/deliver", h.Deliver)
	r.Delete("/{id}", h.Delete)
	return r
}

type orderItemRequest struct {
	FoodID string `json:"food_id"`
	Qty    int32  `json:"qty"`
}

type orderRequest struct {
	CustomerName  string             `json:"customer_name"`
	CustomerEmail string             `json:"customer_email"`
	Items         []orderItemRequest `json:"items"`
}

type orderItemResponse struct {
	ID       string `json:"id"`
	FoodID   string `json:"food_id"`
	FoodName string `json:"food_name"`
	Qty      int32  `json:"qty"`
	Price    string `json:"price"`
	Subtotal string `json:"subtotal"`
}

type orderResponse struct {
	ID            string              `json:"id"`
	CustomerName  string              `json:"customer_name"`
	CustomerEmail string              `json:"customer_email"`
	Status        string              `json:"status"`
	Amount        string              `json:"amount"`
	Paid          bool                `json:"paid"`
	Items         []orderItemResponse `json:"items"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func toOrderResponse(o domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemResponse{
			ID:       item.ID,
			FoodID:   item.FoodID,
			FoodName: item.FoodName,
			Qty:      item.Qty,
			Price:    domain.FormatMinor(item.PriceMinor),
			Subtotal: domain.FormatMinor(item.SubtotalMinor),
		})
	}
	return orderResponse{
		ID:            o.ID,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		Status:        string(o.Status),
		Amount:        domain.FormatMinor(o.AmountMinor),
		Paid:          o.Paid,
		Items:         items,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	items := make([]order.ItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, order.ItemInput{FoodID: item.FoodID, Qty: item.Qty})
	}

	created, err := h.svc.Create(order.CreateInput{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Items:         items,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(created))
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit := listParams(r)

	var (
		orders []domain.Order
		err    error
	)
	switch {
	case r.URL.Query().Get("status") != "":
		orders, err = h.svc.ListByStatus(domain.OrderStatus(r.URL.Query().Get("status")), skip, limit)
	case r.URL.Query().Get("customer_email") != "":
		orders, err = h.svc.ListByCustomer(r.URL.Query().Get("customer_email"), skip, limit)
	default:
		orders, err = h.svc.List(skip, limit)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.Confirm(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.MarkDelivered(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
