package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"menu-costing/models"
)

// WriteOffRepository handles database operations for inventory write-offs
type WriteOffRepository struct {
	q DBTX
}

// NewWriteOffRepository creates a WriteOffRepository bound to q, normally a *sql.Tx
func NewWriteOffRepository(q DBTX) *WriteOffRepository {
	return &WriteOffRepository{q: q}
}

// Ensure WriteOffRepository implements WriteOffRepositoryInterface
var _ WriteOffRepositoryInterface = (*WriteOffRepository)(nil)

// Create stores a write-off document with one line per item
func (r *WriteOffRepository) Create(ctx context.Context, writeOff *models.WriteOffResult, reference string) error {
	log.Printf("📦 CreateWriteOff: id=%s, item=%s (%s) x%d, lines=%d",
		writeOff.ID, writeOff.MenuItemName, writeOff.VariantName, writeOff.Quantity, len(writeOff.Items))

	queryHeader := `
		INSERT INTO write_offs (id, reference, menu_item_name, variant_name, quantity, total_base_cost, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.q.ExecContext(ctx, queryHeader,
		writeOff.ID,
		sql.NullString{String: reference, Valid: reference != ""},
		writeOff.MenuItemName,
		writeOff.VariantName,
		writeOff.Quantity,
		writeOff.TotalBaseCost,
		writeOff.CreatedAt,
	)
	if err != nil {
		log.Printf("❌ CreateWriteOff: Error inserting write-off: %v", err)
		return fmt.Errorf("failed to insert write-off: %w", err)
	}

	queryLine := `
		INSERT INTO write_off_lines (write_off_id, kind, entity_id, name, quantity, unit, base_cost_per_unit, total_cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for _, item := range writeOff.Items {
		_, err = r.q.ExecContext(ctx, queryLine,
			writeOff.ID,
			item.Kind,
			item.EntityID,
			item.Name,
			item.Quantity,
			item.Unit,
			item.BaseCostPerUnit,
			item.TotalCost,
		)
		if err != nil {
			log.Printf("❌ CreateWriteOff: Error inserting line %s/%s: %v", item.Kind, item.EntityID, err)
			return fmt.Errorf("failed to insert write-off line: %w", err)
		}
	}

	return nil
}

// RecordCost stores the lot allocations behind a write-off and its realized cost
func (r *WriteOffRepository) RecordCost(ctx context.Context, writeOffID string, breakdown *models.ActualCostBreakdown) error {
	queryAllocation := `
		INSERT INTO cost_allocations (write_off_id, kind, entity_id, lot_id, quantity, unit_cost, line_cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, line := range breakdown.Lines {
		for _, allocation := range line.Allocations {
			_, err := r.q.ExecContext(ctx, queryAllocation,
				writeOffID,
				line.Kind,
				line.EntityID,
				allocation.BatchID,
				allocation.QuantityConsumed,
				allocation.UnitCost,
				allocation.LineCost,
			)
			if err != nil {
				log.Printf("❌ RecordCost: Error inserting allocation for lot %s: %v", allocation.BatchID, err)
				return fmt.Errorf("failed to insert cost allocation: %w", err)
			}
		}
	}

	queryUpdate := `
		UPDATE write_offs
		SET actual_cost = $1, unallocated_quantity = $2
		WHERE id = $3
	`
	_, err := r.q.ExecContext(ctx, queryUpdate, breakdown.TotalCost, breakdown.TotalUnallocated, writeOffID)
	if err != nil {
		log.Printf("❌ RecordCost: Error updating write-off %s: %v", writeOffID, err)
		return fmt.Errorf("failed to update write-off cost: %w", err)
	}

	log.Printf("✅ RecordCost: write-off %s actual cost %s", writeOffID, breakdown.TotalCost.String())
	return nil
}
