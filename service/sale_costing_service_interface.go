package service

import (
	"context"

	"menu-costing/models"
)

// SaleCostingServiceInterface defines the contract for decomposing and costing sales
type SaleCostingServiceInterface interface {
	// Decompose returns the merged product/preparation nodes for one sale line
	Decompose(input models.MenuItemInput, opts models.TraversalOptions) (*models.TraversalResult, error)
	// PreviewWriteOff builds write-off instructions without touching inventory
	PreviewWriteOff(input models.MenuItemInput) (*models.WriteOffResult, error)
	// ProcessSale writes off and FIFO-costs every line of a sale in one transaction
	ProcessSale(ctx context.Context, req *models.CostSaleRequest) (*models.SaleCostResponse, error)
}
