package rest

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodshop/internal/domain"
	"github.com/vladislavdragonenkov/foodshop/internal/service/catalog"
)

// FoodHandler обслуживает REST-операции каталога.
type FoodHandler struct {
	svc    *catalog.Service
	logger *log.Entry
}

func NewFoodHandler(svc *catalog.Service, logger *log.Entry) *FoodHandler {
	if logger == nil {
		logger = log.New().WithField("component", "rest.foods")
	}
	return &FoodHandler{svc: svc, logger: logger}
}

func (h *FoodHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}

type foodRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Category    string `json:"category"`
	Stock       int32  `json:"stock"`
}

type foodUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *string `json:"price"`
	Category    *string `json:"category"`
	Stock       *int32  `json:"stock"`
}

type foodResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Category    string    `json:"category"`
	Stock       int32     `json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toFoodResponse(f domain.Food) foodResponse {
	return foodResponse{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		Price:       domain.FormatMinor(f.PriceMinor),
		Category:    f.Category,
		Stock:       f.Stock,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

func (h *FoodHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req foodRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	priceMinor, err := domain.ParseMinor(req.Price)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	food, err := h.svc.CreateFood(catalog.CreateFoodInput{
		Name:        req.Name,
		Description: req.Description,
		PriceMinor:  priceMinor,
		Category:    req.Category,
		Stock:       req.Stock,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toFoodResponse(food))
}

func (h *FoodHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit := listParams(r)
	category := r.URL.Query().Get("category")

	foods, err := h.svc.ListFoods(category, skip, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]foodResponse, 0, len(foods))
	for _, f := range foods {
		resp = append(resp, toFoodResponse(f))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *FoodHandler) Get(w http.ResponseWriter, r *http.Request) {
	food, err := h.svc.GetFood(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toFoodResponse(food))
}

func (h *FoodHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req foodUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	input := catalog.UpdateFoodInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Stock:       req.Stock,
	}
	if req.Price != nil {
		priceMinor, err := domain.ParseMinor(*req.Price)
		if err != nil {
			writeBadRequest(w, err)
			return
		}
		input.PriceMinor = &priceMinor
	}

	food, err := h.svc.UpdateFood(chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toFoodResponse(food))
}

func (h *FoodHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteFood(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
