package rest

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodshop/internal/domain"
	"github.com/vladislavdragonenkov/foodshop/internal/service/promotion"
)

// PromotionHandler обслуживает REST-операции промокодов.
type PromotionHandler struct {
	svc    *promotion.Service
	logger *log.Entry
}

func NewPromotionHandler(svc *promotion.Service, logger *log.Entry) *PromotionHandler {
	if logger == nil {
		logger = log.New().WithField("component", "rest.promotions")
	}
	return &PromotionHandler{svc: svc, logger: logger}
}

func (h *PromotionHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Post("/apply", h.Apply)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}

type promotionRequest struct {
	Code                 string     `json:"code"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	DiscountType         string     `json:"discount_type"`
	DiscountValue        float64    `json:"discount_value"`
	MinOrderAmount       string     `json:"min_order_amount"`
	MaxDiscountAmount    string     `json:"max_discount_amount"`
	ApplicableCategories []string   `json:"applicable_categories"`
	Active               bool       `json:"active"`
	UsageLimit           int32      `json:"usage_limit"`
	ValidFrom            *time.Time `json:"valid_from"`
	ValidUntil           *time.Time `json:"valid_until"`
}

type promotionUpdateRequest struct {
	Title                *string    `json:"title"`
	Description          *string    `json:"description"`
	DiscountType         *string    `json:"discount_type"`
	DiscountValue        *float64   `json:"discount_value"`
	MinOrderAmount       *string    `json:"min_order_amount"`
	MaxDiscountAmount    *string    `json:"max_discount_amount"`
	ApplicableCategories *[]string  `json:"applicable_categories"`
	Active               *bool      `json:"active"`
	UsageLimit           *int32     `json:"usage_limit"`
	ValidFrom            *time.Time `json:"valid_from"`
	ValidUntil           *time.Time `json:"valid_until"`
}

type applyRequest struct {
	Code       string `json:"code"`
	OrderTotal string `json:"order_total"`
}

type promotionResponse struct {
	ID                   string     `json:"id"`
	Code                 string     `json:"code"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	DiscountType         string     `json:"discount_type"`
	DiscountValue        float64    `json:"discount_value"`
	MinOrderAmount       string     `json:"min_order_amount"`
	MaxDiscountAmount    string     `json:"max_discount_amount"`
	ApplicableCategories []string   `json:"applicable_categories"`
	Active               bool       `json:"active"`
	UsageLimit           int32      `json:"usage_limit"`
	UsageCount           int32      `json:"usage_count"`
	ValidFrom            time.Time  `json:"valid_from"`
	ValidUntil           *time.Time `json:"valid_until,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

type applyResponse struct {
	Valid         bool    `json:"valid"`
	Reason        string  `json:"reason,omitempty"`
	Message       string  `json:"message"`
	PromotionID   string  `json:"promotion_id,omitempty"`
	Code          string  `json:"code,omitempty"`
	Title         string  `json:"title,omitempty"`
	DiscountType  string  `json:"discount_type,omitempty"`
	DiscountValue float64 `json:"discount_value,omitempty"`
	Discount      string  `json:"discount"`
	FinalTotal    string  `json:"final_total"`
}

func toPromotionResponse(p domain.Promotion) promotionResponse {
	return promotionResponse{
		ID:                   p.ID,
		Code:                 p.Code,
		Title:                p.Title,
		Description:          p.Description,
		DiscountType:         string(p.DiscountType),
		DiscountValue:        p.DiscountValue,
		MinOrderAmount:       domain.FormatMinor(p.MinOrderMinor),
		MaxDiscountAmount:    domain.FormatMinor(p.MaxDiscountMinor),
		ApplicableCategories: p.ApplicableCategories,
		Active:               p.Active,
		UsageLimit:           p.UsageLimit,
		UsageCount:           p.UsageCount,
		ValidFrom:            p.ValidFrom,
		ValidUntil:           p.ValidUntil,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

func (h *PromotionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req promotionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	input := promotion.CreateInput{
		Code:                 req.Code,
		Title:                req.Title,
		Description:          req.Description,
		DiscountType:         domain.DiscountType(req.DiscountType),
		DiscountValue:        req.DiscountValue,
		ApplicableCategories: req.ApplicableCategories,
		Active:               req.Active,
		UsageLimit:           req.UsageLimit,
		ValidUntil:           req.ValidUntil,
	}
	if req.ValidFrom != nil {
		input.ValidFrom = *req.ValidFrom
	}
	if req.MinOrderAmount != "" {
		minOrder, err := domain.ParseMinor(req.MinOrderAmount)
		if err != nil {
			writeBadRequest(w, err)
			return
		}
		input.MinOrderMinor = minOrder
	}
	if req.MaxDiscountAmount != "" {
		maxDiscount, err := domain.ParseMinor(req.MaxDiscountAmount)
		if err != nil {
			writeBadRequest(w, err)
			return
		}
		input.MaxDiscountMinor = maxDiscount
	}

	created, err := h.svc.Create(input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPromotionResponse(created))
}

func (h *PromotionHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit := listParams(r)
	activeOnly := r.URL.Query().Get("active_only") == "true"

	promotions, err := h.svc.List(skip, limit, activeOnly)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]promotionResponse, 0, len(promotions))
	for _, p := range promotions {
		resp = append(resp, toPromotionResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PromotionHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPromotionResponse(p))
}

func (h *PromotionHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req promotionUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	input := promotion.UpdateInput{
		Title:                req.Title,
		Description:          req.Description,
		DiscountValue:        req.DiscountValue,
		ApplicableCategories: req.ApplicableCategories,
		Active:               req.Active,
		UsageLimit:           req.UsageLimit,
		ValidFrom:            req.ValidFrom,
		ValidUntil:           req.ValidUntil,
	}
	if req.DiscountType != nil {
		dt := domain.DiscountType(*req.DiscountType)
		input.DiscountType = &dt
	}
	if req.MinOrderAmount != nil {
		minOrder, err := domain.ParseMinor(*req.MinOrderAmount)
		if err != nil {
			writeBadRequest(w, err)
			return
		}
		input.MinOrderMinor = &minOrder
	}
	if req.MaxDiscountAmount != nil {
		maxDiscount, err := domain.ParseMinor(*req.MaxDiscountAmount)
		if err != nil {
			writeBadRequest(w, err)
			return
		}
		input.MaxDiscountMinor = &maxDiscount
	}

	p, err := h.svc.Update(chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPromotionResponse(p))
}

func (h *PromotionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Apply применяет промокод к сумме заказа. Отказ по бизнес-правилам не
// является ошибкой HTTP: ответ всегда 200 с valid=false и причиной.
func (h *PromotionHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	total, err := domain.ParseMinor(req.OrderTotal)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	result, err := h.svc.Apply(req.Code, total)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, applyResponse{
		Valid:         result.Valid,
		Reason:        string(result.Reason),
		Message:       result.Message,
		PromotionID:   result.PromotionID,
		Code:          result.Code,
		Title:         result.Title,
		DiscountType:  string(result.DiscountType),
		DiscountValue: result.DiscountValue,
		Discount:      domain.FormatMinor(result.DiscountMinor),
		FinalTotal:    domain.FormatMinor(result.FinalTotalMinor),
	})
}
