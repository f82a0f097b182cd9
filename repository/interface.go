package repository

import (
	"context"
	"database/sql"

	"menu-costing/catalog"
	"menu-costing/models"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so repositories can join a transaction
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// CatalogRepositoryInterface defines the contract for loading the decomposition catalog
type CatalogRepositoryInterface interface {
	LoadSnapshot(ctx context.Context) (*catalog.Snapshot, error)
}

// WriteOffRepositoryInterface defines the contract for persisting write-offs and their FIFO cost
type WriteOffRepositoryInterface interface {
	Create(ctx context.Context, writeOff *models.WriteOffResult, reference string) error
	RecordCost(ctx context.Context, writeOffID string, breakdown *models.ActualCostBreakdown) error
}
