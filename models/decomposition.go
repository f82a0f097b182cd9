package models

import "time"

// Node kinds
const (
	NodeProduct     = "product"
	NodePreparation = "preparation"
)

// Preparation strategies
const (
	PreparationKeep      = "keep"
	PreparationDecompose = "decompose"
)

// DecomposedNode is one consumed product or preparation.
// Products carry BaseCostPerUnit, preparations carry OutputUnit.
// StockUnit is the catalog unit the entity's lots are counted and priced in.
type DecomposedNode struct {
	Kind            string   `json:"kind"` // product or preparation
	EntityID        string   `json:"entityId"`
	Name            string   `json:"name"`
	Quantity        float64  `json:"quantity"`
	Unit            string   `json:"unit"`
	BaseCostPerUnit float64  `json:"baseCostPerUnit,omitempty"` // Per Unit, not per StockUnit
	OutputUnit      string   `json:"outputUnit,omitempty"`
	StockUnit       string   `json:"stockUnit,omitempty"`
	Path            []string `json:"path,omitempty"`
}

// ProductID returns the product id, or "" for preparation nodes
func (n DecomposedNode) ProductID() string {
	if n.Kind != NodeProduct {
		return ""
	}
	return n.EntityID
}

// PreparationID returns the preparation id, or "" for product nodes
func (n DecomposedNode) PreparationID() string {
	if n.Kind != NodePreparation {
		return ""
	}
	return n.EntityID
}

// TraversalOptions controls how a menu item is decomposed
type TraversalOptions struct {
	ApplyYield          bool   `json:"applyYield"`
	ConvertPortions     bool   `json:"convertPortions"`
	IncludePath         bool   `json:"includePath"`
	PreparationStrategy string `json:"preparationStrategy"` // keep or decompose
}

// DefaultWriteOffOptions keeps preparations as discrete inventory entries
func DefaultWriteOffOptions() TraversalOptions {
	return TraversalOptions{
		ApplyYield:          true,
		ConvertPortions:     true,
		IncludePath:         true,
		PreparationStrategy: PreparationKeep,
	}
}

// DefaultCostOptions is used when costing a sale through FIFO lots
func DefaultCostOptions() TraversalOptions {
	return TraversalOptions{
		ApplyYield:          true,
		ConvertPortions:     true,
		PreparationStrategy: PreparationKeep,
	}
}

// TraversalMetadata describes the decomposed sale line
type TraversalMetadata struct {
	MenuItemName        string    `json:"menuItemName"`
	VariantName         string    `json:"variantName"`
	Quantity            int       `json:"quantity"`
	ModifiersApplied    int       `json:"modifiersApplied"`
	ReplacementsApplied int       `json:"replacementsApplied"`
	ProducedAt          time.Time `json:"producedAt"`
}

// TraversalResult is the merged decomposition of one sale line
type TraversalResult struct {
	Nodes    []DecomposedNode  `json:"nodes"`
	Metadata TraversalMetadata `json:"metadata"`
}

// DecomposeRequest represents the request body for POST /admin/decompose
// Example: {"menuItemId": "fried-rice", "variantId": "large", "quantity": 2, "options": {"applyYield": true, "convertPortions": true, "preparationStrategy": "decompose"}}
type DecomposeRequest struct {
	MenuItemInput
	Options *TraversalOptions `json:"options,omitempty"` // Defaults to DefaultWriteOffOptions
}
