package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menu-costing/decomposition"
	"menu-costing/fifo"
	"menu-costing/models"
)

var receiptLotColumns = []string{"id", "product_id", "warehouse_id", "department_id", "received_at",
	"initial_quantity", "remaining_quantity", "unit_cost"}

func newSaleService(t *testing.T, db *sql.DB, config CostAdapterConfig) *SaleCostingService {
	t.Helper()
	return NewSaleCostingService(
		db,
		newTestEngine(t),
		fifo.NewAllocator(nil),
		NewWriteOffAdapter(false),
		NewCostAdapter(config),
		models.LotScope{WarehouseID: "main"},
	)
}

func friedRiceSale() *models.CostSaleRequest {
	return &models.CostSaleRequest{
		Lines:     []models.MenuItemInput{{MenuItemID: "fried-rice", VariantID: "regular", Quantity: 2}},
		Reference: "bill-1042",
	}
}

func TestProcessSale_CommitsWriteOffAndCost(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	received := time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO write_offs")).
		WithArgs(sqlmock.AnyArg(), "bill-1042", "Fried Rice", "Regular", 2, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO write_off_lines")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO write_off_lines")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// egg sorts before rice by lock key
	mock.ExpectQuery(regexp.QuoteMeta("FROM product_receipt_lots")).
		WithArgs("egg", "main", "").
		WillReturnRows(sqlmock.NewRows(receiptLotColumns).
			AddRow("egg-1", "egg", "main", "", received, 12.0, 12.0, "0.4"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE product_receipt_lots")).
		WithArgs(2.0, "egg-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM product_receipt_lots")).
		WithArgs("rice", "main", "").
		WillReturnRows(sqlmock.NewRows(receiptLotColumns).
			AddRow("rice-1", "rice", "main", "", received, 1000.0, 1000.0, "0.01"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE product_receipt_lots")).
		WithArgs(300.0, "rice-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO cost_allocations")).
		WithArgs(sqlmock.AnyArg(), models.NodeProduct, "rice", "rice-1", 300.0, "0.01", "3").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO cost_allocations")).
		WithArgs(sqlmock.AnyArg(), models.NodeProduct, "egg", "egg-1", 2.0, "0.4", "0.8").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE write_offs")).
		WithArgs("3.8", 0.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	response, err := newSaleService(t, db, CostAdapterConfig{}).ProcessSale(context.Background(), friedRiceSale())
	require.NoError(t, err)

	assert.Equal(t, "bill-1042", response.Reference)
	require.Len(t, response.WriteOffs, 1)
	require.Len(t, response.Costs, 1)
	assert.Equal(t, models.LotScope{WarehouseID: "main"}, response.Costs[0].Scope)
	assert.True(t, response.TotalCost.Equal(decimal.RequireFromString("3.8")), response.TotalCost.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessSale_RollsBackOnConsumeFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO write_offs")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO write_off_lines")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO write_off_lines")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM product_receipt_lots")).
		WillReturnRows(sqlmock.NewRows(receiptLotColumns).
			AddRow("egg-1", "egg", "main", "", time.Now(), 12.0, 12.0, "0.4"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE product_receipt_lots")).
		WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	_, err = newSaleService(t, db, CostAdapterConfig{}).ProcessSale(context.Background(), friedRiceSale())
	assert.ErrorContains(t, err, "deadlock detected")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessSale_RollsBackOnWriteOffFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO write_offs")).
		WillReturnError(errors.New("relation does not exist"))
	mock.ExpectRollback()

	_, err = newSaleService(t, db, CostAdapterConfig{}).ProcessSale(context.Background(), friedRiceSale())
	assert.ErrorContains(t, err, "failed to insert write-off")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessSale_RejectsBadInputBeforeTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	svc := newSaleService(t, db, CostAdapterConfig{})
	ctx := context.Background()

	_, err = svc.ProcessSale(ctx, &models.CostSaleRequest{})
	assert.ErrorIs(t, err, ErrEmptySale)

	_, err = svc.ProcessSale(ctx, &models.CostSaleRequest{
		Lines: []models.MenuItemInput{{MenuItemID: "pizza", VariantID: "regular", Quantity: 1}},
	})
	assert.ErrorIs(t, err, decomposition.ErrMenuItemNotFound)

	noDefault := NewSaleCostingService(db, newTestEngine(t), fifo.NewAllocator(nil),
		NewWriteOffAdapter(false), NewCostAdapter(CostAdapterConfig{}), models.LotScope{})
	_, err = noDefault.ProcessSale(ctx, friedRiceSale())
	assert.ErrorIs(t, err, ErrMissingWarehouse)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleCostingService_PreviewAndDecompose(t *testing.T) {
	svc := newSaleService(t, nil, CostAdapterConfig{})
	input := models.MenuItemInput{MenuItemID: "fried-rice", VariantID: "regular", Quantity: 1}

	preview, err := svc.PreviewWriteOff(input)
	require.NoError(t, err)
	assert.True(t, preview.TotalBaseCost.Equal(decimal.RequireFromString("2")), preview.TotalBaseCost.String())

	result, err := svc.Decompose(input, models.TraversalOptions{})
	require.NoError(t, err)
	require.Len(t, result.Nodes, 2)
	assert.Empty(t, result.Nodes[0].Path)

	_, err = svc.Decompose(models.MenuItemInput{MenuItemID: "fried-rice", VariantID: "jumbo", Quantity: 1}, models.TraversalOptions{})
	assert.ErrorIs(t, err, decomposition.ErrVariantNotFound)
}
