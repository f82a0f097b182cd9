package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lot is a dated quantity-at-cost record: a product receipt lot or a preparation production lot
type Lot struct {
	ID                string          `json:"id"`
	Kind              string          `json:"kind"` // product or preparation
	EntityID          string          `json:"entityId"`
	WarehouseID       string          `json:"warehouseId"`
	DepartmentID      string          `json:"departmentId,omitempty"`
	ReceivedAt        time.Time       `json:"receivedAt"`
	InitialQuantity   float64         `json:"initialQuantity"`
	RemainingQuantity float64         `json:"remainingQuantity"`
	UnitCost          decimal.Decimal `json:"unitCost"`
}

// LotScope restricts allocation to one warehouse and, optionally, one department
type LotScope struct {
	WarehouseID  string `json:"warehouseId"`
	DepartmentID string `json:"departmentId,omitempty"`
}

// BatchAllocation is the consumption of a single lot
type BatchAllocation struct {
	BatchID          string          `json:"batchId"`
	QuantityConsumed float64         `json:"quantityConsumed"`
	UnitCost         decimal.Decimal `json:"unitCost"`
	LineCost         decimal.Decimal `json:"lineCost"`
}

// AllocationResult is the outcome of draining lots for one entity.
// A shortfall is either priced at a fallback (FallbackQuantity) or left in UnallocatedQuantity.
type AllocationResult struct {
	Allocations         []BatchAllocation `json:"allocations"`
	AllocatedQuantity   float64           `json:"allocatedQuantity"`
	TotalCost           decimal.Decimal   `json:"totalCost"`
	UnallocatedQuantity float64           `json:"unallocatedQuantity"`
	FallbackQuantity    float64           `json:"fallbackQuantity,omitempty"`
	FallbackUnitCost    decimal.Decimal   `json:"fallbackUnitCost,omitempty"`
}
