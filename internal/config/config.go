// Package config provides runtime configuration values for the service.
package config

import "os"

// Config holds the table names, index names and integration knobs injected
// into the handlers. There is no ambient global; main loads it once and passes
// it down.
type Config struct {
	HTTPAddr          string
	ProductsTable     string
	ProductNameIndex  string
	OrdersTable       string
	OrdersByUserIndex string
	OrdersQueueURL    string // empty disables the order-placed event publisher
	MetricsNamespace  string // empty disables CloudWatch counters
	DefaultUserID     string // owner identity fallback when no X-User-Id header is sent
	RunLocal          bool
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		ProductsTable:     getenv("PRODUCTS_TABLE", "products"),
		ProductNameIndex:  getenv("PRODUCT_NAME_INDEX", "name-index"),
		OrdersTable:       getenv("ORDERS_TABLE", "orders"),
		OrdersByUserIndex: getenv("ORDERS_USER_INDEX", "user_id-index"),
		OrdersQueueURL:    os.Getenv("ORDERS_QUEUE_URL"),
		MetricsNamespace:  os.Getenv("METRICS_NAMESPACE"),
		DefaultUserID:     getenv("DEFAULT_USER_ID", "user123"),
		RunLocal:          os.Getenv("RUN_LOCAL") == "true",
	}
}
