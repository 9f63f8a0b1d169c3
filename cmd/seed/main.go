package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodshop/internal/domain"
	"github.com/vladislavdragonenkov/foodshop/internal/service/catalog"
	"github.com/vladislavdragonenkov/foodshop/internal/service/promotion"
	"github.com/vladislavdragonenkov/foodshop/internal/storage/postgres"
)

const defaultTimeout = 30 * time.Second

func main() {
	_ = godotenv.Load()
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	var dsn string
	flag.StringVar(&dsn, "dsn", "", "PostgreSQL DSN (fallback: DATABASE_URL)")
	flag.Parse()

	if strings.TrimSpace(dsn) == "" {
		dsn = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if dsn == "" {
		log.Fatal("DATABASE_URL (or -dsn) is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	store, err := postgres.Open(ctx, dsn)
	if err != nil {
		log.WithError(err).Fatal("open postgres store")
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		log.WithError(err).Fatal("apply migrations")
	}

	logger := log.WithField("component", "seed")
	seedFoods(catalog.NewService(postgres.NewFoodRepository(store), logger), logger)
	seedPromotions(promotion.NewService(postgres.NewPromotionRepository(store), nil, logger), logger)
}

func seedFoods(svc *catalog.Service, logger *log.Entry) {
	foods := []catalog.CreateFoodInput{
		{Name: "Classic Hamburger", Description: "Beef patty with lettuce, tomato and house sauce", PriceMinor: 899, Category: "Burgers", Stock: 50},
		{Name: "Grilled Chicken Burger", Description: "Grilled chicken breast with avocado", PriceMinor: 1099, Category: "Burgers", Stock: 40},
		{Name: "Pepperoni Pizza", Description: "Pepperoni, mozzarella and tomato sauce", PriceMinor: 1299, Category: "Pizza", Stock: 25},
		{Name: "Margherita Pizza", Description: "Fresh mozzarella, basil and tomato sauce", PriceMinor: 1199, Category: "Pizza", Stock: 25},
		{Name: "Caesar Salad", Description: "Romaine lettuce, croutons and parmesan", PriceMinor: 999, Category: "Salads", Stock: 30},
		{Name: "Vegetarian Wrap", Description: "Grilled vegetables with hummus", PriceMinor: 799, Category: "Wraps", Stock: 35},
	}

	for _, input := range foods {
		food, err := svc.CreateFood(input)
		switch {
		case errors.Is(err, domain.ErrDuplicateFoodName):
			logger.WithField("name", input.Name).Info("позиция уже существует, пропускаем")
		case err != nil:
			logger.WithError(err).WithField("name", input.Name).Fatal("не удалось создать позицию")
		default:
			logger.WithFields(log.Fields{"id": food.ID, "name": food.Name}).Info("позиция создана")
		}
	}
}

func seedPromotions(svc *promotion.Service, logger *log.Entry) {
	promotions := []promotion.CreateInput{
		{
			Code:          "SAVE5",
			Title:         "Save $5",
			Description:   "Flat $5 off orders of $25 or more",
			DiscountType:  domain.DiscountTypeFixed,
			DiscountValue: 5,
			MinOrderMinor: 2500,
			Active:        true,
		},
		{
			Code:                 "WEEKEND20",
			Title:                "Weekend 20% off",
			Description:          "20% off orders of $20 or more, capped at $10",
			DiscountType:         domain.DiscountTypePercentage,
			DiscountValue:        20,
			MinOrderMinor:        2000,
			MaxDiscountMinor:     1000,
			ApplicableCategories: []string{"Burgers", "Pizza"},
			Active:               true,
		},
	}

	for _, input := range promotions {
		promo, err := svc.Create(input)
		switch {
		case errors.Is(err, domain.ErrDuplicateCode):
			logger.WithField("code", input.Code).Info("промокод уже существует, пропускаем")
		case err != nil:
			logger.WithError(err).WithField("code", input.Code).Fatal("не удалось создать промокод")
		default:
			logger.WithFields(log.Fields{"id": promo.ID, "code": promo.Code}).Info("промокод создан")
		}
	}
}
