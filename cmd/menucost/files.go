package main

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"menu-costing/fifo"
	"menu-costing/models"
)

// saleFile is the YAML form of a sale
type saleFile struct {
	WarehouseID  string                 `yaml:"warehouseId"`
	DepartmentID string                 `yaml:"departmentId"`
	Reference    string                 `yaml:"reference"`
	Lines        []models.MenuItemInput `yaml:"lines"`
}

// lotsFile is the YAML form of the opening lot balances
type lotsFile struct {
	Lots []struct {
		ID           string    `yaml:"id"`
		Kind         string    `yaml:"kind"`
		EntityID     string    `yaml:"entityId"`
		WarehouseID  string    `yaml:"warehouseId"`
		DepartmentID string    `yaml:"departmentId"`
		ReceivedAt   time.Time `yaml:"receivedAt"`
		Quantity     float64   `yaml:"quantity"`
		UnitCost     string    `yaml:"unitCost"`
	} `yaml:"lots"`
}

func loadSale(path string) (*saleFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sale file: %w", err)
	}
	var sale saleFile
	if err := yaml.Unmarshal(raw, &sale); err != nil {
		return nil, fmt.Errorf("failed to parse sale file: %w", err)
	}
	if len(sale.Lines) == 0 {
		return nil, fmt.Errorf("sale file %s has no lines", path)
	}
	return &sale, nil
}

// loadLots fills a memory lot store from a YAML file
func loadLots(path string) (*fifo.MemoryLotStore, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lots file: %w", err)
	}
	var file lotsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse lots file: %w", err)
	}

	store := fifo.NewMemoryLotStore()
	for i, lot := range file.Lots {
		cost, err := decimal.NewFromString(lot.UnitCost)
		if err != nil {
			return nil, fmt.Errorf("lot %d: invalid unitCost %q: %w", i, lot.UnitCost, err)
		}
		kind := lot.Kind
		if kind == "" {
			kind = models.NodeProduct
		}
		store.AddLot(models.Lot{
			ID:                lot.ID,
			Kind:              kind,
			EntityID:          lot.EntityID,
			WarehouseID:       lot.WarehouseID,
			DepartmentID:      lot.DepartmentID,
			ReceivedAt:        lot.ReceivedAt,
			RemainingQuantity: lot.Quantity,
			UnitCost:          cost,
		})
	}
	return store, nil
}
