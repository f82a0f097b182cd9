package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WriteOffItem represents a single inventory write-off line
type WriteOffItem struct {
	Kind            string          `json:"kind"`
	EntityID        string          `json:"entityId"`
	Name            string          `json:"name"`
	Quantity        float64         `json:"quantity"`
	Unit            string          `json:"unit"`
	BaseCostPerUnit decimal.Decimal `json:"baseCostPerUnit"` // Zero for preparations, resolved later through FIFO
	TotalCost       decimal.Decimal `json:"totalCost"`
	Path            []string        `json:"path,omitempty"`
}

// WriteOffResult represents the write-off instructions for one sale line
// Example response:
// {
//   "id": "5f0c...",
//   "menuItemName": "Fried Rice",
//   "variantName": "Regular",
//   "quantity": 3,
//   "items": [
//     {"kind": "product", "entityId": "rice", "name": "Rice", "quantity": 450, "unit": "gram", "baseCostPerUnit": "0.002", "totalCost": "0.9"}
//   ],
//   "totalProducts": 1,
//   "totalPreparations": 0,
//   "totalBaseCost": "0.9"
// }
type WriteOffResult struct {
	ID                string          `json:"id"`
	MenuItemName      string          `json:"menuItemName"`
	VariantName       string          `json:"variantName"`
	Quantity          int             `json:"quantity"`
	Items             []WriteOffItem  `json:"items"`
	TotalProducts     int             `json:"totalProducts"`
	TotalPreparations int             `json:"totalPreparations"`
	TotalBaseCost     decimal.Decimal `json:"totalBaseCost"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// ActualCostLine is the realized cost of one decomposed node.
// Quantity and Unit are the decomposed amount; allocations, UnitCost and the
// shortfall quantities are in LotUnit, the unit the entity's lots are counted in.
type ActualCostLine struct {
	Kind                string            `json:"kind"`
	EntityID            string            `json:"entityId"`
	Name                string            `json:"name"`
	Quantity            float64           `json:"quantity"`
	Unit                string            `json:"unit"`
	LotQuantity         float64           `json:"lotQuantity"`
	LotUnit             string            `json:"lotUnit"`
	Allocations         []BatchAllocation `json:"allocations"`
	UnitCost            decimal.Decimal   `json:"unitCost"` // Weighted average per LotUnit
	LineCost            decimal.Decimal   `json:"lineCost"`
	UnallocatedQuantity float64           `json:"unallocatedQuantity"`
	FallbackQuantity    float64           `json:"fallbackQuantity,omitempty"`
}

// ActualCostBreakdown is the FIFO cost of goods sold for one sale line
type ActualCostBreakdown struct {
	MenuItemName     string           `json:"menuItemName"`
	VariantName      string           `json:"variantName"`
	Quantity         int              `json:"quantity"`
	Scope            LotScope         `json:"scope"`
	Lines            []ActualCostLine `json:"lines"`
	TotalCost        decimal.Decimal  `json:"totalCost"`
	TotalUnallocated float64          `json:"totalUnallocated"`
	HasShortfall     bool             `json:"hasShortfall"`
}

// CostSaleRequest represents the request body for costing a sale
// Example: {"lines": [{"menuItemId": "fried-rice", "variantId": "regular", "quantity": 2}], "warehouseId": "main", "reference": "bill-1042"}
type CostSaleRequest struct {
	Lines        []MenuItemInput `json:"lines"`
	WarehouseID  string          `json:"warehouseId"`
	DepartmentID string          `json:"departmentId,omitempty"`
	Reference    string          `json:"reference,omitempty"` // Bill or order reference
}

// SaleCostResponse represents the result of a costed sale
type SaleCostResponse struct {
	Reference string                `json:"reference,omitempty"`
	WriteOffs []WriteOffResult      `json:"writeOffs"`
	Costs     []ActualCostBreakdown `json:"costs"`
	TotalCost decimal.Decimal       `json:"totalCost"`
}
