package app

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"menu-costing/app/controller"
	"menu-costing/app/router"
	"menu-costing/catalog"
	"menu-costing/db"
	"menu-costing/decomposition"
	"menu-costing/fifo"
	"menu-costing/models"
	"menu-costing/repository"
	"menu-costing/service"
)

// Initialize initializes the application
func Initialize(cfg *Config) error {
	// Initialize database connection
	if err := db.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// Load the decomposition catalog
	snapshot, err := loadCatalog(context.Background(), cfg)
	if err != nil {
		return err
	}

	engine, err := decomposition.NewEngine(snapshot)
	if err != nil {
		return fmt.Errorf("failed to create decomposition engine: %w", err)
	}

	// Lots are read through a repository bound to each sale's transaction
	allocator := fifo.NewAllocator(nil)

	costingService := service.NewSaleCostingService(
		db.DB,
		engine,
		allocator,
		service.NewWriteOffAdapter(false),
		service.NewCostAdapter(service.CostAdapterConfig{
			UseCatalogFallback:     cfg.FallbackEnabled,
			DefaultPreparationCost: cfg.DefaultPreparationCost,
		}),
		models.LotScope{WarehouseID: cfg.DefaultWarehouseID, DepartmentID: cfg.DefaultDepartmentID},
	)

	// Create controllers
	controllers := &router.Controllers{
		Costing: controller.NewCostingController(costingService),
	}

	// Setup routes using standard http router
	router.SetupRoutes(http.DefaultServeMux, controllers)

	return nil
}

func loadCatalog(ctx context.Context, cfg *Config) (*catalog.Snapshot, error) {
	if cfg.CatalogPath != "" {
		log.Printf("📦 Loading catalog from %s", cfg.CatalogPath)
		snapshot, err := catalog.LoadYAML(cfg.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		return snapshot, nil
	}

	snapshot, err := repository.NewCatalogRepository(db.DB).LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return snapshot, nil
}
