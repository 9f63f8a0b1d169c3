package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/vladislavdragonenkov/foodshop/internal/domain"
)

// promotionRepositoryInMemory — простая in-memory реализация PromotionRepository.
type promotionRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Promotion
	// byCode индексирует промокоды по коду в верхнем регистре.
	byCode map[string]string
}

// NewPromotionRepository возвращает in-memory репозиторий промокодов.
func NewPromotionRepository() domain.PromotionRepository {
	return &promotionRepositoryInMemory{
		items:  make(map[string]domain.Promotion),
		byCode: make(map[string]string),
	}
}

// Create сохраняет новый промокод, проверяя уникальность кода.
func (r *promotionRepositoryInMemory) Create(promotion domain.Promotion) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	code := strings.ToUpper(promotion.Code)
	if _, exists := r.byCode[code]; exists {
		return domain.ErrDuplicateCode
	}
	promotion.Code = code
	r.items[promotion.ID] = promotion
	r.byCode[code] = promotion.ID
	return nil
}

// Get возвращает промокод или ErrPromotionNotFound, если его нет.
func (r *promotionRepositoryInMemory) Get(id string) (domain.Promotion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	promotion, ok := r.items[id]
	if !ok {
		return domain.Promotion{}, domain.ErrPromotionNotFound
	}
	return promotion, nil
}

// GetByCode возвращает промокод по коду без учёта регистра.
func (r *promotionRepositoryInMemory) GetByCode(code string) (domain.Promotion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byCode[strings.ToUpper(code)]
	if !ok {
		return domain.Promotion{}, domain.ErrPromotionNotFound
	}
	return r.items[id], nil
}

// List возвращает промокоды в порядке создания с пагинацией skip/limit.
func (r *promotionRepositoryInMemory) List(skip, limit int) ([]domain.Promotion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Promotion, 0, len(r.items))
	for _, promotion := range r.items {
		result = append(result, promotion)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	if skip < 0 {
		skip = 0
	}
	if skip >= len(result) {
		return []domain.Promotion{}, nil
	}
	result = result[skip:]
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Save перезаписывает промокод, поддерживая индекс кода.
func (r *promotionRepositoryInMemory) Save(promotion domain.Promotion) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[promotion.ID]
	if !ok {
		return domain.ErrPromotionNotFound
	}

	code := strings.ToUpper(promotion.Code)
	if existingID, exists := r.byCode[code]; exists && existingID != promotion.ID {
		return domain.ErrDuplicateCode
	}
	if current.Code != code {
		delete(r.byCode, current.Code)
		r.byCode[code] = promotion.ID
	}
	promotion.Code = code
	r.items[promotion.ID] = promotion
	return nil
}

// Delete удаляет промокод вместе с индексом кода.
func (r *promotionRepositoryInMemory) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	promotion, ok := r.items[id]
	if !ok {
		return domain.ErrPromotionNotFound
	}
	delete(r.byCode, promotion.Code)
	delete(r.items, id)
	return nil
}

// IncrementUsage атомарно увеличивает счётчик применений. Проверка лимита и
// инкремент выполняются под одним lock, чтобы конкурентные применения около
// лимита не потеряли обновления.
func (r *promotionRepositoryInMemory) IncrementUsage(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	promotion, ok := r.items[id]
	if !ok {
		return domain.ErrPromotionNotFound
	}
	if promotion.UsageLimit > 0 && promotion.UsageCount >= promotion.UsageLimit {
		return domain.ErrUsageLimitReached
	}
	promotion.UsageCount++
	r.items[id] = promotion
	return nil
}

var _ domain.PromotionRepository = (*promotionRepositoryInMemory)(nil)
