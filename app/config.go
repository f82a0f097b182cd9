package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Config holds the runtime settings read from the environment
type Config struct {
	Port                   string
	CatalogPath            string // YAML catalog file; empty loads the catalog from PostgreSQL
	FallbackEnabled        bool
	DefaultPreparationCost *decimal.Decimal
	DefaultWarehouseID     string
	DefaultDepartmentID    string
}

// LoadConfig reads the configuration from environment variables.
// Database settings are read by db.InitDB.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:                os.Getenv("PORT"),
		CatalogPath:         strings.TrimSpace(os.Getenv("CATALOG_PATH")),
		DefaultWarehouseID:  os.Getenv("DEFAULT_WAREHOUSE_ID"),
		DefaultDepartmentID: os.Getenv("DEFAULT_DEPARTMENT_ID"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	// Remove leading colon if present (PORT from Render doesn't include it)
	cfg.Port = strings.TrimPrefix(cfg.Port, ":")

	if raw := os.Getenv("COSTING_FALLBACK_ENABLED"); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid COSTING_FALLBACK_ENABLED %q: %w", raw, err)
		}
		cfg.FallbackEnabled = enabled
	}

	if raw := os.Getenv("COSTING_DEFAULT_PREPARATION_COST"); raw != "" {
		cost, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid COSTING_DEFAULT_PREPARATION_COST %q: %w", raw, err)
		}
		if cost.IsNegative() {
			return nil, fmt.Errorf("COSTING_DEFAULT_PREPARATION_COST must not be negative, got %s", raw)
		}
		cfg.DefaultPreparationCost = &cost
	}

	return cfg, nil
}
