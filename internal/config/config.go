// Package config resolves process settings from defaults, an optional YAML
// file named by CONFIG_FILE, and environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServiceName       string        `yaml:"service_name"`
	Env               string        `yaml:"env"`
	HTTPAddr          string        `yaml:"http_addr"`
	LogFile           string        `yaml:"log_file"`
	LogLevel          string        `yaml:"log_level"`
	CatalogFile       string        `yaml:"catalog_file"`
	OrderIDStart      int           `yaml:"order_id_start"`
	PaymentIDBase     int           `yaml:"payment_id_base"`
	LowStockThreshold int           `yaml:"low_stock_threshold"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

func Default() Config {
	return Config{
		ServiceName:       "minishop",
		Env:               "dev",
		HTTPAddr:          ":8080",
		LogLevel:          "info",
		OrderIDStart:      0,
		PaymentIDBase:     100,
		LowStockThreshold: 5,
		ShutdownTimeout:   10 * time.Second,
	}
}

// Load reads the process environment.
func Load() (Config, error) {
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path, ok := lookup("CONFIG_FILE"); ok && path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("config: %s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	str("SERVICE_NAME", &cfg.ServiceName)
	str("ENV", &cfg.Env)
	str("HTTP_ADDR", &cfg.HTTPAddr)
	str("LOG_FILE", &cfg.LogFile)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("CATALOG_FILE", &cfg.CatalogFile)
	num("ORDER_ID_START", &cfg.OrderIDStart)
	num("PAYMENT_ID_BASE", &cfg.PaymentIDBase)
	num("LOW_STOCK_THRESHOLD", &cfg.LowStockThreshold)
	if v, ok := lookup("SHUTDOWN_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("config: SHUTDOWN_TIMEOUT: %w", err))
		} else {
			cfg.ShutdownTimeout = d
		}
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.ServiceName == "" {
		errs = append(errs, errors.New("config: service name is required"))
	}
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("config: http addr is required"))
	}
	if c.OrderIDStart < 0 {
		errs = append(errs, errors.New("config: order id start must not be negative"))
	}
	if c.PaymentIDBase < 0 {
		errs = append(errs, errors.New("config: payment id base must not be negative"))
	}
	if c.LowStockThreshold < 0 {
		errs = append(errs, errors.New("config: low stock threshold must not be negative"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("config: shutdown timeout must be positive"))
	}
	return errors.Join(errs...)
}
