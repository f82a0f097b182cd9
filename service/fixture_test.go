package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"menu-costing/catalog"
	"menu-costing/decomposition"
	"menu-costing/fifo"
	"menu-costing/models"
)

var mainWarehouse = models.LotScope{WarehouseID: "main"}

func diningCatalog(t *testing.T) *catalog.Snapshot {
	t.Helper()
	snapshot, err := catalog.NewSnapshot(catalog.Data{
		MenuItems: []models.MenuItemForDecomposition{
			{ID: "fried-rice", Name: "Fried Rice", Variants: []models.VariantForDecomposition{
				{ID: "regular", Name: "Regular", Composition: []models.MenuComposition{
					{ComponentType: models.ComponentRecipe, ComponentID: "r1", Quantity: 1},
				}},
			}},
			{ID: "curry-bowl", Name: "Curry Bowl", Variants: []models.VariantForDecomposition{
				{ID: "regular", Name: "Regular", Composition: []models.MenuComposition{
					{ComponentType: models.ComponentPreparation, ComponentID: "curry", Quantity: 1, Unit: "portion"},
				}},
			}},
			{ID: "jasmine-bowl", Name: "Jasmine Bowl", Variants: []models.VariantForDecomposition{
				{ID: "regular", Name: "Regular", Composition: []models.MenuComposition{
					{ComponentType: models.ComponentProduct, ComponentID: "jasmine", Quantity: 0.15, Unit: "kg"},
				}},
			}},
			{ID: "water", Name: "Water", Variants: []models.VariantForDecomposition{
				{ID: "bottle", Name: "Bottle", Composition: []models.MenuComposition{
					{ComponentType: models.ComponentProduct, ComponentID: "water", Quantity: 1, Unit: "pc"},
				}},
			}},
		},
		Recipes: []models.RecipeForDecomposition{
			{ID: "r1", Name: "Fried Rice Base", Components: []models.MenuComposition{
				{ComponentType: models.ComponentProduct, ComponentID: "rice", Quantity: 150, Unit: "g"},
				{ComponentType: models.ComponentProduct, ComponentID: "egg", Quantity: 1, Unit: "pc"},
			}},
		},
		Preparations: []models.PreparationForDecomposition{
			{ID: "curry", Name: "Curry", OutputQuantity: 1, OutputUnit: "kg", PortionType: models.PortionTypePortion, PortionSize: 150},
		},
		Products: []models.ProductForDecomposition{
			{ID: "rice", Name: "Rice", Unit: "g", BaseCostPerUnit: 0.01},
			{ID: "egg", Name: "Egg", Unit: "pc", BaseCostPerUnit: 0.5},
			{ID: "jasmine", Name: "Jasmine Rice", Unit: "kg", BaseCostPerUnit: 2},
			{ID: "water", Name: "Water", Unit: "pc"},
		},
	})
	require.NoError(t, err)
	return snapshot
}

func newTestEngine(t *testing.T) *decomposition.Engine {
	t.Helper()
	engine, err := decomposition.NewEngine(diningCatalog(t))
	require.NoError(t, err)
	return engine
}

func traverse(t *testing.T, menuItemID, variantID string, qty int) *models.TraversalResult {
	t.Helper()
	result, err := newTestEngine(t).Traverse(models.MenuItemInput{
		MenuItemID: menuItemID,
		VariantID:  variantID,
		Quantity:   qty,
	}, models.DefaultWriteOffOptions())
	require.NoError(t, err)
	return result
}

func addLot(store *fifo.MemoryLotStore, id, kind, entityID string, age time.Duration, qty float64, cost string) {
	store.AddLot(models.Lot{
		ID:                id,
		Kind:              kind,
		EntityID:          entityID,
		WarehouseID:       mainWarehouse.WarehouseID,
		ReceivedAt:        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(age),
		RemainingQuantity: qty,
		UnitCost:          decimal.RequireFromString(cost),
	})
}
