package catalog

import (
	"errors"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodshop/internal/domain"
)

// Service реализует операции над каталогом блюд, включая резервирование стока.
type Service struct {
	foods  domain.FoodRepository
	logger *log.Entry
}

// NewService создаёт сервис каталога.
func NewService(foods domain.FoodRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "catalog")
	}
	return &Service{foods: foods, logger: logger}
}

// CreateFoodInput — данные для создания позиции каталога.
type CreateFoodInput struct {
	Name        string
	Description string
	PriceMinor  int64
	Category    string
	Stock       int32
}

// UpdateFoodInput — частичное обновление: применяются только заданные поля.
type UpdateFoodInput struct {
	Name        *string
	Description *string
	PriceMinor  *int64
	Category    *string
	Stock       *int32
}

// CreateFood добавляет позицию каталога, проверяя инварианты и уникальность названия.
func (s *Service) CreateFood(input CreateFoodInput) (domain.Food, error) {
	now := time.Now().UTC()
	food := domain.Food{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		PriceMinor:  input.PriceMinor,
		Category:    input.Category,
		Stock:       input.Stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if errs := food.Validate(); len(errs) > 0 {
		return domain.Food{}, errors.Join(errs...)
	}
	if err := s.foods.Create(food); err != nil {
		return domain.Food{}, err
	}

	s.logger.WithFields(log.Fields{
		"food_id": food.ID,
		"name":    food.Name,
	}).Info("food created")
	return food, nil
}

// GetFood возвращает позицию каталога по идентификатору.
func (s *Service) GetFood(id string) (domain.Food, error) {
	return s.foods.Get(id)
}

// GetFoodByName возвращает позицию каталога по уникальному названию.
func (s *Service) GetFoodByName(name string) (domain.Food, error) {
	return s.foods.GetByName(name)
}

// ListFoods возвращает каталог с пагинацией; category фильтрует выборку,
// если непустая.
func (s *Service) ListFoods(category string, skip, limit int) ([]domain.Food, error) {
	if category != "" {
		return s.foods.ListByCategory(category, skip, limit)
	}
	return s.foods.List(skip, limit)
}

// UpdateFood применяет частичное обновление к позиции каталога.
func (s *Service) UpdateFood(id string, input UpdateFoodInput) (domain.Food, error) {
	food, err := s.foods.Get(id)
	if err != nil {
		return domain.Food{}, err
	}

	if input.Name != nil {
		food.Name = *input.Name
	}
	if input.Description != nil {
		food.Description = *input.Description
	}
	if input.PriceMinor != nil {
		food.PriceMinor = *input.PriceMinor
	}
	if input.Category != nil {
		food.Category = *input.Category
	}
	if input.Stock != nil {
		food.Stock = *input.Stock
	}

	if errs := food.Validate(); len(errs) > 0 {
		return domain.Food{}, errors.Join(errs...)
	}
	if err := s.foods.Update(food); err != nil {
		return domain.Food{}, err
	}
	return food, nil
}

// DeleteFood удаляет позицию каталога.
func (s *Service) DeleteFood(id string) error {
	if err := s.foods.Delete(id); err != nil {
		return err
	}
	s.logger.WithField("food_id", id).Info("food deleted")
	return nil
}

// Reserve атомарно списывает qty единиц со склада.
func (s *Service) Reserve(foodID string, qty int32) (domain.Food, error) {
	if qty <= 0 {
		return domain.Food{}, domain.ErrItemQtyInvalid
	}
	return s.foods.DecreaseStock(foodID, qty)
}

// Release возвращает qty единиц на склад (компенсация неудавшегося заказа).
func (s *Service) Release(foodID string, qty int32) (domain.Food, error) {
	if qty <= 0 {
		return domain.Food{}, domain.ErrItemQtyInvalid
	}
	return s.foods.IncreaseStock(foodID, qty)
}
