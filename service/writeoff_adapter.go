package service

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"menu-costing/decomposition"
	"menu-costing/models"
)

// WriteOffAdapter turns a decomposition into inventory write-off instructions
type WriteOffAdapter struct {
	Consolidate bool // Re-merge nodes by (kind, id, unit) before building lines
}

// NewWriteOffAdapter creates a new WriteOffAdapter
func NewWriteOffAdapter(consolidate bool) *WriteOffAdapter {
	return &WriteOffAdapter{Consolidate: consolidate}
}

// Transform builds a write-off document valued at catalog base cost.
// Preparations carry zero cost; their value is resolved from production lots.
func (a *WriteOffAdapter) Transform(result *models.TraversalResult) *models.WriteOffResult {
	nodes := result.Nodes
	if a.Consolidate {
		nodes = decomposition.MergeNodes(nodes)
	}

	createdAt := result.Metadata.ProducedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	writeOff := &models.WriteOffResult{
		ID:            uuid.New().String(),
		MenuItemName:  result.Metadata.MenuItemName,
		VariantName:   result.Metadata.VariantName,
		Quantity:      result.Metadata.Quantity,
		Items:         make([]models.WriteOffItem, 0, len(nodes)),
		TotalBaseCost: decimal.Zero,
		CreatedAt:     createdAt,
	}

	for _, node := range nodes {
		item := models.WriteOffItem{
			Kind:            node.Kind,
			EntityID:        node.EntityID,
			Name:            node.Name,
			Quantity:        node.Quantity,
			Unit:            node.Unit,
			BaseCostPerUnit: decimal.Zero,
			TotalCost:       decimal.Zero,
			Path:            node.Path,
		}

		switch node.Kind {
		case models.NodeProduct:
			writeOff.TotalProducts++
			if node.BaseCostPerUnit > 0 {
				item.BaseCostPerUnit = decimal.NewFromFloat(node.BaseCostPerUnit)
				item.TotalCost = item.BaseCostPerUnit.Mul(decimal.NewFromFloat(node.Quantity))
			} else {
				log.Printf("⚠️ WriteOff: product %s (%s) has no base cost, valuing at zero", node.EntityID, node.Name)
			}
		case models.NodePreparation:
			writeOff.TotalPreparations++
		}

		writeOff.TotalBaseCost = writeOff.TotalBaseCost.Add(item.TotalCost)
		writeOff.Items = append(writeOff.Items, item)
	}

	log.Printf("✅ WriteOff: %s (%s) x%d -> %d products, %d preparations, base cost %s",
		writeOff.MenuItemName, writeOff.VariantName, writeOff.Quantity,
		writeOff.TotalProducts, writeOff.TotalPreparations, writeOff.TotalBaseCost.String())
	return writeOff
}
