package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodshop/internal/domain"
	"github.com/vladislavdragonenkov/foodshop/internal/storage/memory"
	"github.com/vladislavdragonenkov/foodshop/internal/storage/postgres"
)

// Dependencies содержит хранилища приложения. Store не nil только при
// работе поверх PostgreSQL.
type Dependencies struct {
	Foods      domain.FoodRepository
	Orders     domain.OrderRepository
	Payments   domain.PaymentRepository
	Promotions domain.PromotionRepository
	Outbox     domain.OutboxRepository
	Store      *postgres.Store
	Logger     *log.Entry
}

// NewDependencies выбирает хранилище по DSN: при пустом DSN всё живёт
// в памяти, иначе открывается PostgreSQL и применяются миграции.
func NewDependencies(ctx context.Context, cfg *Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	if cfg.DatabaseDSN == "" {
		logger.Info("DATABASE_URL не задан, используем in-memory хранилище")
		return &Dependencies{
			Foods:      memory.NewFoodRepository(),
			Orders:     memory.NewOrderRepository(),
			Payments:   memory.NewPaymentRepository(),
			Promotions: memory.NewPromotionRepository(),
			Outbox:     memory.NewOutboxRepository(),
			Logger:     logger,
		}, nil
	}

	store, err := postgres.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	logger.Info("postgres хранилище инициализировано")

	return &Dependencies{
		Foods:      postgres.NewFoodRepository(store),
		Orders:     postgres.NewOrderRepository(store),
		Payments:   postgres.NewPaymentRepository(store),
		Promotions: postgres.NewPromotionRepository(store),
		Outbox:     postgres.NewOutboxRepository(store),
		Store:      store,
		Logger:     logger,
	}, nil
}

// Close освобождает ресурсы хранилища.
func (d *Dependencies) Close() error {
	if d == nil || d.Store == nil {
		return nil
	}
	return d.Store.Close()
}
