package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/foodshop/internal/domain"
)

type foodRepository struct {
	db *sql.DB
}

// NewFoodRepository создаёт PostgreSQL-реализацию FoodRepository.
func NewFoodRepository(store *Store) domain.FoodRepository {
	return &foodRepository{db: store.DB()}
}

const foodColumns = `id, name, description, price_minor, category, stock, created_at, updated_at`

func (r *foodRepository) Create(food domain.Food) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO foods (`+foodColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		food.ID, food.Name, food.Description, food.PriceMinor,
		food.Category, food.Stock, food.CreatedAt, food.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateFoodName
		}
		return fmt.Errorf("insert food: %w", err)
	}
	return nil
}

func (r *foodRepository) Get(id string) (domain.Food, error) {
	return r.getWhere(`id = $1`, id)
}

func (r *foodRepository) GetByName(name string) (domain.Food, error) {
	return r.getWhere(`LOWER(name) = LOWER($1)`, name)
}

func (r *foodRepository) getWhere(where string, arg interface{}) (domain.Food, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var food domain.Food
	err := r.db.QueryRowContext(ctx, `
		SELECT `+foodColumns+`
		FROM foods
		WHERE `+where,
		arg,
	).Scan(
		&food.ID, &food.Name, &food.Description, &food.PriceMinor,
		&food.Category, &food.Stock, &food.CreatedAt, &food.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Food{}, domain.ErrFoodNotFound
		}
		return domain.Food{}, fmt.Errorf("select food: %w", err)
	}
	return food, nil
}

func (r *foodRepository) List(skip, limit int) ([]domain.Food, error) {
	return r.listWhere("", nil, skip, limit)
}

func (r *foodRepository) ListByCategory(category string, skip, limit int) ([]domain.Food, error) {
	return r.listWhere("WHERE category = $1", []interface{}{category}, skip, limit)
}

func (r *foodRepository) listWhere(where string, args []interface{}, skip, limit int) ([]domain.Food, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := `SELECT ` + foodColumns + ` FROM foods ` + where + ` ORDER BY created_at ASC, id ASC`
	query, args = appendPagination(query, args, skip, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}
	defer rows.Close()

	foods := make([]domain.Food, 0)
	for rows.Next() {
		var food domain.Food
		if err := rows.Scan(
			&food.ID, &food.Name, &food.Description, &food.PriceMinor,
			&food.Category, &food.Stock, &food.CreatedAt, &food.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan food row: %w", err)
		}
		foods = append(foods, food)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate food rows: %w", err)
	}

	return foods, nil
}

func (r *foodRepository) Update(food domain.Food) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE foods
		SET name = $1,
		    description = $2,
		    price_minor = $3,
		    category = $4,
		    stock = $5,
		    updated_at = $6
		WHERE id = $7
	`,
		food.Name, food.Description, food.PriceMinor,
		food.Category, food.Stock, food.UpdatedAt, food.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateFoodName
		}
		return fmt.Errorf("update food: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrFoodNotFound
	}
	return nil
}

func (r *foodRepository) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM foods WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete food: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrFoodNotFound
	}
	return nil
}

// DecreaseStock атомарно списывает qty единиц одним условным UPDATE:
// два конкурентных заказа не продадут последний экземпляр дважды.
func (r *foodRepository) DecreaseStock(id string, qty int32) (domain.Food, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var food domain.Food
	err := r.db.QueryRowContext(ctx, `
		UPDATE foods
		SET stock = stock - $2,
		    updated_at = $3
		WHERE id = $1
		  AND stock >= $2
		RETURNING `+foodColumns,
		id, qty, time.Now().UTC(),
	).Scan(
		&food.ID, &food.Name, &food.Description, &food.PriceMinor,
		&food.Category, &food.Stock, &food.CreatedAt, &food.UpdatedAt,
	)
	if err == nil {
		return food, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.Food{}, fmt.Errorf("decrease stock: %w", err)
	}

	// UPDATE никого не нашёл: либо позиции нет, либо остатка не хватает.
	if _, getErr := r.Get(id); getErr != nil {
		return domain.Food{}, getErr
	}
	return domain.Food{}, domain.ErrInsufficientStock
}

// IncreaseStock атомарно возвращает qty единиц на склад.
func (r *foodRepository) IncreaseStock(id string, qty int32) (domain.Food, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var food domain.Food
	err := r.db.QueryRowContext(ctx, `
		UPDATE foods
		SET stock = stock + $2,
		    updated_at = $3
		WHERE id = $1
		RETURNING `+foodColumns,
		id, qty, time.Now().UTC(),
	).Scan(
		&food.ID, &food.Name, &food.Description, &food.PriceMinor,
		&food.Category, &food.Stock, &food.CreatedAt, &food.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Food{}, domain.ErrFoodNotFound
		}
		return domain.Food{}, fmt.Errorf("increase stock: %w", err)
	}
	return food, nil
}

var _ domain.FoodRepository = (*foodRepository)(nil)
