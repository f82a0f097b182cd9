package service

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/shopspring/decimal"

	"menu-costing/fifo"
	"menu-costing/models"
	"menu-costing/utils"
)

// CostAdapterConfig controls how shortfalls are priced
type CostAdapterConfig struct {
	UseCatalogFallback     bool             // Price product shortfall at the catalog base cost
	DefaultPreparationCost *decimal.Decimal // Price preparation shortfall per output unit, nil leaves it unallocated
}

// lotMeasure is a node restated in the unit its lots are counted in
type lotMeasure struct {
	quantity float64
	unit     string
	factor   float64 // node units per lot unit
}

// CostAdapter computes the realized cost of a decomposition by draining FIFO lots
type CostAdapter struct {
	config CostAdapterConfig
}

// NewCostAdapter creates a new CostAdapter
func NewCostAdapter(config CostAdapterConfig) *CostAdapter {
	return &CostAdapter{config: config}
}

// Transform allocates one FIFO request per node through session.
// Nodes are allocated in lock-key order so concurrent sessions acquire entity locks
// in the same order; lines are returned in decomposition order.
func (a *CostAdapter) Transform(ctx context.Context, session *fifo.Session, result *models.TraversalResult, scope models.LotScope) (*models.ActualCostBreakdown, error) {
	breakdown := &models.ActualCostBreakdown{
		MenuItemName: result.Metadata.MenuItemName,
		VariantName:  result.Metadata.VariantName,
		Quantity:     result.Metadata.Quantity,
		Scope:        scope,
		Lines:        make([]models.ActualCostLine, len(result.Nodes)),
		TotalCost:    decimal.Zero,
	}

	order := make([]int, len(result.Nodes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		ni, nj := result.Nodes[order[i]], result.Nodes[order[j]]
		return fifo.LockKey(ni.Kind, ni.EntityID, scope) < fifo.LockKey(nj.Kind, nj.EntityID, scope)
	})

	for _, idx := range order {
		node := result.Nodes[idx]
		measure := lotMeasureOf(node)
		allocation, err := session.Allocate(ctx, fifo.AllocationRequest{
			Kind:             node.Kind,
			EntityID:         node.EntityID,
			Quantity:         measure.quantity,
			Scope:            scope,
			FallbackUnitCost: a.fallbackFor(node, measure),
		})
		if err != nil {
			log.Printf("❌ CostAdapter: Error allocating %s %s: %v", node.Kind, node.EntityID, err)
			return nil, fmt.Errorf("failed to allocate %s %s: %w", node.Kind, node.EntityID, err)
		}

		line := models.ActualCostLine{
			Kind:                node.Kind,
			EntityID:            node.EntityID,
			Name:                node.Name,
			Quantity:            node.Quantity,
			Unit:                node.Unit,
			LotQuantity:         measure.quantity,
			LotUnit:             measure.unit,
			Allocations:         allocation.Allocations,
			UnitCost:            decimal.Zero,
			LineCost:            allocation.TotalCost,
			UnallocatedQuantity: allocation.UnallocatedQuantity,
			FallbackQuantity:    allocation.FallbackQuantity,
		}
		if priced := allocation.AllocatedQuantity + allocation.FallbackQuantity; priced > 0 {
			line.UnitCost = allocation.TotalCost.Div(decimal.NewFromFloat(priced))
		}
		breakdown.Lines[idx] = line
	}

	for _, line := range breakdown.Lines {
		breakdown.TotalCost = breakdown.TotalCost.Add(line.LineCost)
		breakdown.TotalUnallocated += line.UnallocatedQuantity
		if line.UnallocatedQuantity > 0 || line.FallbackQuantity > 0 {
			breakdown.HasShortfall = true
		}
	}

	log.Printf("💰 CostAdapter: %s (%s) x%d actual cost %s, unallocated %.4f",
		breakdown.MenuItemName, breakdown.VariantName, breakdown.Quantity,
		breakdown.TotalCost.String(), breakdown.TotalUnallocated)
	return breakdown, nil
}

// lotMeasureOf converts a node from its decomposed unit (grams, milliliters) into
// the catalog stock unit its lots are kept in, e.g. 150 gram of a kg product is 0.15.
// Nodes whose stock unit is in another unit family are allocated as decomposed.
func lotMeasureOf(node models.DecomposedNode) lotMeasure {
	same := lotMeasure{quantity: node.Quantity, unit: node.Unit, factor: 1}
	if node.StockUnit == "" || node.StockUnit == node.Unit {
		return same
	}

	factor, base := utils.ToBaseUnit(1, node.StockUnit)
	if base != utils.NormalizeUnit(node.Unit) || factor <= 0 {
		log.Printf("⚠️ CostAdapter: %s %s decomposed in %s but stocked in %s, allocating as %s",
			node.Kind, node.EntityID, node.Unit, node.StockUnit, node.Unit)
		return same
	}
	return lotMeasure{quantity: node.Quantity / factor, unit: node.StockUnit, factor: factor}
}

// fallbackFor returns the cost per lot unit used for a node's shortfall, or nil
func (a *CostAdapter) fallbackFor(node models.DecomposedNode, measure lotMeasure) *decimal.Decimal {
	switch node.Kind {
	case models.NodeProduct:
		if a.config.UseCatalogFallback && node.BaseCostPerUnit > 0 {
			cost := decimal.NewFromFloat(node.BaseCostPerUnit).Mul(decimal.NewFromFloat(measure.factor))
			return &cost
		}
	case models.NodePreparation:
		return a.config.DefaultPreparationCost
	}
	return nil
}
