package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"menu-costing/fifo"
	"menu-costing/models"
	"menu-costing/repository"
)

var (
	// ErrEmptySale is returned when a sale has no lines
	ErrEmptySale = errors.New("sale has no lines")
	// ErrMissingWarehouse is returned when neither the sale nor the config names a warehouse
	ErrMissingWarehouse = errors.New("warehouse is required")
)

// Decomposer expands a sale line into consumed products and preparations
type Decomposer interface {
	Traverse(input models.MenuItemInput, opts models.TraversalOptions) (*models.TraversalResult, error)
}

// TxBeginner starts database transactions, normally *sql.DB
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// SaleCostingService decomposes sales, writes off inventory and costs it through FIFO lots.
// Implements SaleCostingServiceInterface
type SaleCostingService struct {
	db           TxBeginner
	engine       Decomposer
	allocator    *fifo.Allocator
	writeOffs    *WriteOffAdapter
	costs        *CostAdapter
	defaultScope models.LotScope
}

// NewSaleCostingService creates a new SaleCostingService
func NewSaleCostingService(
	db TxBeginner,
	engine Decomposer,
	allocator *fifo.Allocator,
	writeOffs *WriteOffAdapter,
	costs *CostAdapter,
	defaultScope models.LotScope,
) *SaleCostingService {
	return &SaleCostingService{
		db:           db,
		engine:       engine,
		allocator:    allocator,
		writeOffs:    writeOffs,
		costs:        costs,
		defaultScope: defaultScope,
	}
}

// Ensure SaleCostingService implements SaleCostingServiceInterface
var _ SaleCostingServiceInterface = (*SaleCostingService)(nil)

// Decompose returns the merged nodes for one sale line
func (s *SaleCostingService) Decompose(input models.MenuItemInput, opts models.TraversalOptions) (*models.TraversalResult, error) {
	if opts.PreparationStrategy == "" {
		opts.PreparationStrategy = models.PreparationKeep
	}
	return s.engine.Traverse(input, opts)
}

// PreviewWriteOff builds write-off instructions valued at catalog base cost
func (s *SaleCostingService) PreviewWriteOff(input models.MenuItemInput) (*models.WriteOffResult, error) {
	result, err := s.engine.Traverse(input, models.DefaultWriteOffOptions())
	if err != nil {
		return nil, err
	}
	return s.writeOffs.Transform(result), nil
}

// ProcessSale decomposes every line, persists its write-off, drains FIFO lots and records
// the realized cost, all in one transaction. Any failure rolls the whole sale back.
func (s *SaleCostingService) ProcessSale(ctx context.Context, req *models.CostSaleRequest) (*models.SaleCostResponse, error) {
	if len(req.Lines) == 0 {
		return nil, ErrEmptySale
	}
	scope := s.scopeFor(req)
	if scope.WarehouseID == "" {
		return nil, ErrMissingWarehouse
	}

	log.Printf("💰 ProcessSale: reference=%s, lines=%d, scope=%s/%s",
		req.Reference, len(req.Lines), scope.WarehouseID, scope.DepartmentID)

	// Decompose before opening the transaction so catalog errors never hold locks
	results := make([]*models.TraversalResult, 0, len(req.Lines))
	for i, line := range req.Lines {
		result, err := s.engine.Traverse(line, models.DefaultWriteOffOptions())
		if err != nil {
			log.Printf("❌ ProcessSale: Error decomposing line %d (%s/%s): %v", i, line.MenuItemID, line.VariantID, err)
			return nil, fmt.Errorf("failed to decompose line %d: %w", i, err)
		}
		results = append(results, result)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	session := s.allocator.NewSessionWithSource(repository.NewLotRepository(tx))
	defer session.Close()

	if err := session.Acquire(lockKeys(results, scope)...); err != nil {
		return nil, err
	}

	writeOffRepo := repository.NewWriteOffRepository(tx)
	response := &models.SaleCostResponse{
		Reference: req.Reference,
		WriteOffs: make([]models.WriteOffResult, 0, len(results)),
		Costs:     make([]models.ActualCostBreakdown, 0, len(results)),
		TotalCost: decimal.Zero,
	}

	for _, result := range results {
		writeOff := s.writeOffs.Transform(result)
		if err := writeOffRepo.Create(ctx, writeOff, req.Reference); err != nil {
			return nil, err
		}

		breakdown, err := s.costs.Transform(ctx, session, result, scope)
		if err != nil {
			return nil, err
		}
		if err := writeOffRepo.RecordCost(ctx, writeOff.ID, breakdown); err != nil {
			return nil, err
		}

		response.WriteOffs = append(response.WriteOffs, *writeOff)
		response.Costs = append(response.Costs, *breakdown)
		response.TotalCost = response.TotalCost.Add(breakdown.TotalCost)
	}

	if err := tx.Commit(); err != nil {
		log.Printf("❌ ProcessSale: Error committing transaction: %v", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("✅ ProcessSale: reference=%s, total cost %s", req.Reference, response.TotalCost.String())
	return response, nil
}

func (s *SaleCostingService) scopeFor(req *models.CostSaleRequest) models.LotScope {
	scope := models.LotScope{WarehouseID: req.WarehouseID, DepartmentID: req.DepartmentID}
	if scope.WarehouseID == "" {
		scope.WarehouseID = s.defaultScope.WarehouseID
	}
	if scope.DepartmentID == "" {
		scope.DepartmentID = s.defaultScope.DepartmentID
	}
	return scope
}

// lockKeys lists every entity a sale will draw lots from
func lockKeys(results []*models.TraversalResult, scope models.LotScope) []string {
	var keys []string
	for _, result := range results {
		for _, node := range result.Nodes {
			keys = append(keys, fifo.LockKey(node.Kind, node.EntityID, scope))
		}
	}
	return keys
}
