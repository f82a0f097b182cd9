package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menu-costing/models"
)

func sampleWriteOff() *models.WriteOffResult {
	return &models.WriteOffResult{
		ID:           "wo-1",
		MenuItemName: "Fried Rice",
		VariantName:  "Regular",
		Quantity:     3,
		Items: []models.WriteOffItem{
			{Kind: models.NodeProduct, EntityID: "rice", Name: "Rice", Quantity: 450, Unit: "gram",
				BaseCostPerUnit: decimal.RequireFromString("0.002"), TotalCost: decimal.RequireFromString("0.9")},
			{Kind: models.NodePreparation, EntityID: "curry", Name: "Curry", Quantity: 300, Unit: "gram"},
		},
		TotalProducts:     1,
		TotalPreparations: 1,
		TotalBaseCost:     decimal.RequireFromString("0.9"),
		CreatedAt:         time.Date(2026, 1, 4, 10, 30, 0, 0, time.UTC),
	}
}

func TestWriteOffRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO write_offs")).
		WithArgs("wo-1", "bill-7", "Fried Rice", "Regular", 3, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO write_off_lines")).
		WithArgs("wo-1", models.NodeProduct, "rice", "Rice", 450.0, "gram", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO write_off_lines")).
		WithArgs("wo-1", models.NodePreparation, "curry", "Curry", 300.0, "gram", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewWriteOffRepository(db).Create(context.Background(), sampleWriteOff(), "bill-7")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteOffRepository_CreateLineFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO write_offs")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO write_off_lines")).
		WillReturnError(errors.New("constraint violation"))

	err = NewWriteOffRepository(db).Create(context.Background(), sampleWriteOff(), "")
	assert.ErrorContains(t, err, "failed to insert write-off line")
}

func TestWriteOffRepository_RecordCost(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	breakdown := &models.ActualCostBreakdown{
		Lines: []models.ActualCostLine{{
			Kind:     models.NodeProduct,
			EntityID: "rice",
			Allocations: []models.BatchAllocation{
				{BatchID: "lot-1", QuantityConsumed: 5, UnitCost: decimal.NewFromInt(10), LineCost: decimal.NewFromInt(50)},
				{BatchID: "lot-2", QuantityConsumed: 2, UnitCost: decimal.NewFromInt(12), LineCost: decimal.NewFromInt(24)},
			},
		}},
		TotalCost:        decimal.NewFromInt(74),
		TotalUnallocated: 0,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO cost_allocations")).
		WithArgs("wo-1", models.NodeProduct, "rice", "lot-1", 5.0, "10", "50").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO cost_allocations")).
		WithArgs("wo-1", models.NodeProduct, "rice", "lot-2", 2.0, "12", "24").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE write_offs")).
		WithArgs("74", 0.0, "wo-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewWriteOffRepository(db).RecordCost(context.Background(), "wo-1", breakdown)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
