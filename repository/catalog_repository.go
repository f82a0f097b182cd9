package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"menu-costing/catalog"
	"menu-costing/models"
)

// CatalogRepository loads the decomposition catalog from PostgreSQL
type CatalogRepository struct {
	q DBTX
}

// NewCatalogRepository creates a new CatalogRepository
func NewCatalogRepository(q DBTX) *CatalogRepository {
	return &CatalogRepository{q: q}
}

// Ensure CatalogRepository implements CatalogRepositoryInterface
var _ CatalogRepositoryInterface = (*CatalogRepository)(nil)

// Composition owner types in the compositions table
const (
	ownerVariant     = "variant"
	ownerRecipe      = "recipe"
	ownerPreparation = "preparation"
)

// LoadSnapshot reads products, preparations, recipes, menu items, variants and
// compositions and indexes them into an immutable snapshot
func (r *CatalogRepository) LoadSnapshot(ctx context.Context) (*catalog.Snapshot, error) {
	log.Printf("🔍 LoadSnapshot: Loading decomposition catalog")

	var data catalog.Data
	var err error

	if data.Products, err = r.loadProducts(ctx); err != nil {
		return nil, err
	}
	if data.Preparations, err = r.loadPreparations(ctx); err != nil {
		return nil, err
	}
	if data.Recipes, err = r.loadRecipes(ctx); err != nil {
		return nil, err
	}
	if data.MenuItems, err = r.loadMenuItems(ctx); err != nil {
		return nil, err
	}

	compositions, err := r.loadCompositions(ctx)
	if err != nil {
		return nil, err
	}

	for i := range data.Preparations {
		data.Preparations[i].Ingredients = compositions[ownerPreparation+":"+data.Preparations[i].ID]
	}
	for i := range data.Recipes {
		data.Recipes[i].Components = compositions[ownerRecipe+":"+data.Recipes[i].ID]
	}
	for i := range data.MenuItems {
		for j := range data.MenuItems[i].Variants {
			variant := &data.MenuItems[i].Variants[j]
			variant.Composition = compositions[ownerVariant+":"+variant.ID]
		}
	}

	snapshot, err := catalog.NewSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("failed to index catalog: %w", err)
	}

	log.Printf("✅ LoadSnapshot: %d menu items, %d recipes, %d preparations, %d products",
		len(data.MenuItems), len(data.Recipes), len(data.Preparations), len(data.Products))
	return snapshot, nil
}

func (r *CatalogRepository) loadProducts(ctx context.Context) ([]models.ProductForDecomposition, error) {
	query := `
		SELECT id, name, unit, COALESCE(base_cost_per_unit, 0), yield_percentage
		FROM products
		WHERE is_active = true
		ORDER BY id ASC
	`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		log.Printf("❌ LoadSnapshot: Error querying products: %v", err)
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []models.ProductForDecomposition
	for rows.Next() {
		var p models.ProductForDecomposition
		var yield sql.NullFloat64
		if err := rows.Scan(&p.ID, &p.Name, &p.Unit, &p.BaseCostPerUnit, &yield); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if yield.Valid {
			v := yield.Float64
			p.YieldPercentage = &v
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *CatalogRepository) loadPreparations(ctx context.Context) ([]models.PreparationForDecomposition, error) {
	query := `
		SELECT id, name, output_quantity, output_unit, portion_type, COALESCE(portion_size, 0)
		FROM preparations
		WHERE is_active = true
		ORDER BY id ASC
	`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		log.Printf("❌ LoadSnapshot: Error querying preparations: %v", err)
		return nil, fmt.Errorf("failed to query preparations: %w", err)
	}
	defer rows.Close()

	var preps []models.PreparationForDecomposition
	for rows.Next() {
		var p models.PreparationForDecomposition
		var portionType sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &p.OutputQuantity, &p.OutputUnit, &portionType, &p.PortionSize); err != nil {
			return nil, fmt.Errorf("failed to scan preparation: %w", err)
		}
		p.PortionType = scanNullString(portionType)
		preps = append(preps, p)
	}
	return preps, rows.Err()
}

func (r *CatalogRepository) loadRecipes(ctx context.Context) ([]models.RecipeForDecomposition, error) {
	query := `SELECT id, name FROM recipes WHERE is_active = true ORDER BY id ASC`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		log.Printf("❌ LoadSnapshot: Error querying recipes: %v", err)
		return nil, fmt.Errorf("failed to query recipes: %w", err)
	}
	defer rows.Close()

	var recipes []models.RecipeForDecomposition
	for rows.Next() {
		var rec models.RecipeForDecomposition
		if err := rows.Scan(&rec.ID, &rec.Name); err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, rec)
	}
	return recipes, rows.Err()
}

func (r *CatalogRepository) loadMenuItems(ctx context.Context) ([]models.MenuItemForDecomposition, error) {
	query := `
		SELECT mi.id, mi.name, v.id, v.name, COALESCE(v.portion_multiplier, 1)
		FROM menu_items mi
		LEFT JOIN menu_variants v ON v.menu_item_id = mi.id
		WHERE mi.is_active = true
		ORDER BY mi.id ASC, v.position ASC
	`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		log.Printf("❌ LoadSnapshot: Error querying menu items: %v", err)
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	var items []models.MenuItemForDecomposition
	index := make(map[string]int)
	for rows.Next() {
		var itemID, itemName string
		var variantID, variantName sql.NullString
		var multiplier float64
		if err := rows.Scan(&itemID, &itemName, &variantID, &variantName, &multiplier); err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		pos, ok := index[itemID]
		if !ok {
			items = append(items, models.MenuItemForDecomposition{ID: itemID, Name: itemName})
			pos = len(items) - 1
			index[itemID] = pos
		}
		// Items without variants are kept so a sale reports the missing variant
		if !variantID.Valid {
			log.Printf("⚠️ LoadSnapshot: Menu item %s has no variants", itemID)
			continue
		}
		items[pos].Variants = append(items[pos].Variants, models.VariantForDecomposition{
			ID:                variantID.String,
			Name:              scanNullString(variantName),
			PortionMultiplier: multiplier,
		})
	}
	return items, rows.Err()
}

// loadCompositions returns composition slots keyed by "{ownerType}:{ownerId}"
func (r *CatalogRepository) loadCompositions(ctx context.Context) (map[string][]models.MenuComposition, error) {
	query := `
		SELECT owner_type, owner_id, component_type, component_id, quantity, unit,
		       use_yield_percentage, COALESCE(role, '')
		FROM compositions
		ORDER BY owner_type ASC, owner_id ASC, position ASC
	`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		log.Printf("❌ LoadSnapshot: Error querying compositions: %v", err)
		return nil, fmt.Errorf("failed to query compositions: %w", err)
	}
	defer rows.Close()

	compositions := make(map[string][]models.MenuComposition)
	for rows.Next() {
		var ownerType, ownerID string
		var c models.MenuComposition
		if err := rows.Scan(&ownerType, &ownerID, &c.ComponentType, &c.ComponentID, &c.Quantity, &c.Unit,
			&c.UseYieldPercentage, &c.Role); err != nil {
			return nil, fmt.Errorf("failed to scan composition: %w", err)
		}
		key := ownerType + ":" + ownerID
		compositions[key] = append(compositions[key], c)
	}
	return compositions, rows.Err()
}

// scanNullString returns "" for NULL
func scanNullString(s sql.NullString) string {
	if s.Valid {
		return s.String
	}
	return ""
}
