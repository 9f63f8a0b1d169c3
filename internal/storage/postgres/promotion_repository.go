package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/foodshop/internal/domain"
)

type promotionRepository struct {
	db *sql.DB
}

// NewPromotionRepository создаёт PostgreSQL-реализацию PromotionRepository.
func NewPromotionRepository(store *Store) domain.PromotionRepository {
	return &promotionRepository{db: store.DB()}
}

const promotionColumns = `id, code, title, description, discount_type, discount_value, min_order_minor, max_discount_minor, applicable_categories, active, usage_limit, usage_count, valid_from, valid_until, created_at, updated_at`

func (r *promotionRepository) Create(promotion domain.Promotion) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	categories, err := marshalCategories(promotion.ApplicableCategories)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO promotions (`+promotionColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`,
		promotion.ID, promotion.Code, promotion.Title, promotion.Description,
		string(promotion.DiscountType), promotion.DiscountValue,
		promotion.MinOrderMinor, promotion.MaxDiscountMinor, categories,
		promotion.Active, promotion.UsageLimit, promotion.UsageCount,
		promotion.ValidFrom, promotion.ValidUntil,
		promotion.CreatedAt, promotion.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateCode
		}
		return fmt.Errorf("insert promotion: %w", err)
	}
	return nil
}

func (r *promotionRepository) Get(id string) (domain.Promotion, error) {
	return r.getWhere(`id = $1`, id)
}

// GetByCode ищет промокод без учёта регистра.
func (r *promotionRepository) GetByCode(code string) (domain.Promotion, error) {
	return r.getWhere(`UPPER(code) = UPPER($1)`, code)
}

func (r *promotionRepository) getWhere(where string, arg interface{}) (domain.Promotion, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	promotion, err := r.scanPromotion(r.db.QueryRowContext(ctx, `
		SELECT `+promotionColumns+`
		FROM promotions
		WHERE `+where,
		arg,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Promotion{}, domain.ErrPromotionNotFound
		}
		return domain.Promotion{}, fmt.Errorf("select promotion: %w", err)
	}
	return promotion, nil
}

func (r *promotionRepository) List(skip, limit int) ([]domain.Promotion, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := `SELECT ` + promotionColumns + ` FROM promotions ORDER BY created_at ASC, id ASC`
	query, args := appendPagination(query, nil, skip, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}
	defer rows.Close()

	promotions := make([]domain.Promotion, 0)
	for rows.Next() {
		promotion, err := r.scanPromotion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan promotion row: %w", err)
		}
		promotions = append(promotions, promotion)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate promotion rows: %w", err)
	}

	return promotions, nil
}

func (r *promotionRepository) Save(promotion domain.Promotion) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	categories, err := marshalCategories(promotion.ApplicableCategories)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE promotions
		SET code = $1,
		    title = $2,
		    description = $3,
		    discount_type = $4,
		    discount_value = $5,
		    min_order_minor = $6,
		    max_discount_minor = $7,
		    applicable_categories = $8,
		    active = $9,
		    usage_limit = $10,
		    valid_from = $11,
		    valid_until = $12,
		    updated_at = $13
		WHERE id = $14
	`,
		promotion.Code, promotion.Title, promotion.Description,
		string(promotion.DiscountType), promotion.DiscountValue,
		promotion.MinOrderMinor, promotion.MaxDiscountMinor, categories,
		promotion.Active, promotion.UsageLimit,
		promotion.ValidFrom, promotion.ValidUntil, promotion.UpdatedAt,
		promotion.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateCode
		}
		return fmt.Errorf("update promotion: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrPromotionNotFound
	}
	return nil
}

func (r *promotionRepository) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM promotions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete promotion: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrPromotionNotFound
	}
	return nil
}

// IncrementUsage атомарно увеличивает счётчик применений одним условным
// UPDATE: конкурентные применения около лимита не теряют обновления.
func (r *promotionRepository) IncrementUsage(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE promotions
		SET usage_count = usage_count + 1,
		    updated_at = NOW()
		WHERE id = $1
		  AND (usage_limit = 0 OR usage_count < usage_limit)
	`, id)
	if err != nil {
		return fmt.Errorf("increment promotion usage: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// UPDATE никого не нашёл: либо промокода нет, либо лимит исчерпан.
	if _, getErr := r.Get(id); getErr != nil {
		return getErr
	}
	return domain.ErrUsageLimitReached
}

func (r *promotionRepository) scanPromotion(row rowScanner) (domain.Promotion, error) {
	var (
		promotion    domain.Promotion
		discountType string
		categories   []byte
		validUntil   sql.NullTime
	)
	if err := row.Scan(
		&promotion.ID, &promotion.Code, &promotion.Title, &promotion.Description,
		&discountType, &promotion.DiscountValue,
		&promotion.MinOrderMinor, &promotion.MaxDiscountMinor, &categories,
		&promotion.Active, &promotion.UsageLimit, &promotion.UsageCount,
		&promotion.ValidFrom, &validUntil,
		&promotion.CreatedAt, &promotion.UpdatedAt,
	); err != nil {
		return domain.Promotion{}, err
	}
	promotion.DiscountType = domain.DiscountType(discountType)
	if validUntil.Valid {
		t := validUntil.Time.UTC()
		promotion.ValidUntil = &t
	}
	if len(categories) > 0 {
		if err := json.Unmarshal(categories, &promotion.ApplicableCategories); err != nil {
			return domain.Promotion{}, fmt.Errorf("decode applicable categories: %w", err)
		}
	}
	return promotion, nil
}

func marshalCategories(categories []string) ([]byte, error) {
	if categories == nil {
		categories = []string{}
	}
	data, err := json.Marshal(categories)
	if err != nil {
		return nil, fmt.Errorf("encode applicable categories: %w", err)
	}
	return data, nil
}

var _ domain.PromotionRepository = (*promotionRepository)(nil)
