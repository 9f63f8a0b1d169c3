package app

import (
	"flag"
	"os"
	"time"

	"github.com/caarlos0/env"
)

// Config описывает настройки запуска приложения. Значения читаются из
// переменных окружения и могут быть переопределены флагами.
type Config struct {
	HTTPAddr           string        `env:"FOODSHOP_HTTP_ADDR" envDefault:":8080"`
	MetricsAddr        string        `env:"FOODSHOP_METRICS_ADDR" envDefault:":9090"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	DatabaseDSN        string        `env:"DATABASE_URL"`
	KafkaBrokers       string        `env:"KAFKA_BROKERS"`
	KafkaTopic         string        `env:"KAFKA_TOPIC"`
	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"1s"`
}

// NewConfig читает окружение и os.Args.
func NewConfig() (*Config, error) {
	return ParseConfig(flag.CommandLine, os.Args[1:])
}

// ParseConfig разбирает конфигурацию с явным FlagSet, что позволяет
// тестировать разбор без глобального состояния flag.
func ParseConfig(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	httpAddr := fs.String("a", cfg.HTTPAddr, "{host:port} for the HTTP API")
	metricsAddr := fs.String("m", cfg.MetricsAddr, "{host:port} for metrics and health endpoints")
	logLevel := fs.String("l", cfg.LogLevel, "log level")
	databaseDSN := fs.String("d", cfg.DatabaseDSN, "PostgreSQL DSN (empty: in-memory storage)")
	kafkaBrokers := fs.String("k", cfg.KafkaBrokers, "comma-separated Kafka brokers (empty: events disabled)")
	pollInterval := fs.Duration("i", cfg.OutboxPollInterval, "outbox poll interval")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.HTTPAddr = *httpAddr
	cfg.MetricsAddr = *metricsAddr
	cfg.LogLevel = *logLevel
	cfg.DatabaseDSN = *databaseDSN
	cfg.KafkaBrokers = *kafkaBrokers
	cfg.OutboxPollInterval = *pollInterval

	return cfg, nil
}
