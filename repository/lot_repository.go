package repository

import (
	"context"
	"fmt"
	"log"

	"menu-costing/fifo"
	"menu-costing/models"
)

// lotTables maps a lot kind to its table and entity column
var lotTables = map[string]struct {
	table    string
	entity   string
	received string
}{
	models.NodeProduct:     {table: "product_receipt_lots", entity: "product_id", received: "received_at"},
	models.NodePreparation: {table: "preparation_production_lots", entity: "preparation_id", received: "produced_at"},
}

// LotRepository reads and consumes inventory lots inside one transaction.
// Lots are read with FOR UPDATE, so their rows stay locked until the transaction ends.
type LotRepository struct {
	q     DBTX
	kinds map[string]string // lot id -> kind, filled by ListOpenLots
}

// NewLotRepository creates a LotRepository bound to q, normally a *sql.Tx
func NewLotRepository(q DBTX) *LotRepository {
	return &LotRepository{
		q:     q,
		kinds: make(map[string]string),
	}
}

// Ensure LotRepository implements fifo.LotSource
var _ fifo.LotSource = (*LotRepository)(nil)

// ListOpenLots locks and returns the lots with remaining quantity, oldest first
func (r *LotRepository) ListOpenLots(ctx context.Context, kind, entityID string, scope models.LotScope) ([]models.Lot, error) {
	lt, ok := lotTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown lot kind %q", kind)
	}

	query := fmt.Sprintf(`
		SELECT id, %[2]s, warehouse_id, COALESCE(department_id, ''), %[3]s,
		       initial_quantity, remaining_quantity, unit_cost
		FROM %[1]s
		WHERE %[2]s = $1
		  AND warehouse_id = $2
		  AND ($3 = '' OR department_id = $3)
		  AND remaining_quantity > 0
		ORDER BY %[3]s ASC, id ASC
		FOR UPDATE`, lt.table, lt.entity, lt.received)

	rows, err := r.q.QueryContext(ctx, query, entityID, scope.WarehouseID, scope.DepartmentID)
	if err != nil {
		log.Printf("❌ ListOpenLots: Error querying %s for %s: %v", lt.table, entityID, err)
		return nil, fmt.Errorf("failed to query lots: %w", err)
	}
	defer rows.Close()

	var lots []models.Lot
	for rows.Next() {
		lot := models.Lot{Kind: kind}
		if err := rows.Scan(
			&lot.ID,
			&lot.EntityID,
			&lot.WarehouseID,
			&lot.DepartmentID,
			&lot.ReceivedAt,
			&lot.InitialQuantity,
			&lot.RemainingQuantity,
			&lot.UnitCost,
		); err != nil {
			log.Printf("❌ ListOpenLots: Error scanning lot: %v", err)
			return nil, fmt.Errorf("failed to scan lot: %w", err)
		}
		r.kinds[lot.ID] = kind
		lots = append(lots, lot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lots: %w", err)
	}
	return lots, nil
}

// ConsumeLot decrements a lot previously returned by ListOpenLots
func (r *LotRepository) ConsumeLot(ctx context.Context, lotID string, quantity float64) error {
	kind, ok := r.kinds[lotID]
	if !ok {
		return fmt.Errorf("lot %s was not locked by this transaction", lotID)
	}
	lt := lotTables[kind]

	query := fmt.Sprintf(`
		UPDATE %s
		SET remaining_quantity = remaining_quantity - $1
		WHERE id = $2 AND remaining_quantity >= $1`, lt.table)

	res, err := r.q.ExecContext(ctx, query, quantity, lotID)
	if err != nil {
		log.Printf("❌ ConsumeLot: Error updating lot %s: %v", lotID, err)
		return fmt.Errorf("failed to consume lot: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to consume lot: %w", err)
	}
	if affected != 1 {
		return fmt.Errorf("insufficient remaining quantity in lot %s", lotID)
	}
	return nil
}
