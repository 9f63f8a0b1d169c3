package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// NewRouter собирает HTTP API по агрегатам под префиксом /api.
func NewRouter(foods *FoodHandler, orders *OrderHandler, payments *PaymentHandler, promotions *PromotionHandler, logger *log.Entry) chi.Router {
	if logger == nil {
		logger = log.New().WithField("component", "rest")
	}

	r := chi.NewRouter()
	r.Use(requestLogger(logger))
	r.Use(chimiddleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/foods", foods.Routes())
		r.Mount("/orders", orders.Routes())
		r.Mount("/payments", payments.Routes())
		r.Mount("/promotions", promotions.Routes())
	})

	return r
}

// requestLogger пишет метод, путь, статус и длительность каждого запроса.
func requestLogger(logger *log.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.WithFields(log.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   ww.Status(),
				"duration": time.Since(start).String(),
			}).Info("http request")
		})
	}
}
