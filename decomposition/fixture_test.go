package decomposition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"menu-costing/catalog"
	"menu-costing/models"
)

func yieldOf(v float64) *float64 { return &v }

func product(id string, qty float64, unit string) models.MenuComposition {
	return models.MenuComposition{ComponentType: models.ComponentProduct, ComponentID: id, Quantity: qty, Unit: unit}
}

func recipe(id string, qty float64) models.MenuComposition {
	return models.MenuComposition{ComponentType: models.ComponentRecipe, ComponentID: id, Quantity: qty, Unit: "portion"}
}

func preparation(id string, qty float64, unit string) models.MenuComposition {
	return models.MenuComposition{ComponentType: models.ComponentPreparation, ComponentID: id, Quantity: qty, Unit: unit}
}

func kitchenCatalog() catalog.Data {
	return catalog.Data{
		MenuItems: []models.MenuItemForDecomposition{
			{
				ID:   "fried-rice",
				Name: "Fried Rice",
				Variants: []models.VariantForDecomposition{
					{ID: "regular", Name: "Regular", Composition: []models.MenuComposition{recipe("r1", 1)}},
					{ID: "large", Name: "Large", PortionMultiplier: 1.5, Composition: []models.MenuComposition{recipe("r1", 1.5)}},
				},
			},
			{
				ID:   "stir-fry",
				Name: "Chicken Stir Fry",
				Variants: []models.VariantForDecomposition{
					{ID: "regular", Name: "Regular", Composition: []models.MenuComposition{
						recipe("r2", 1),
						product("cola", 1, "pc"),
					}},
				},
			},
			{
				ID:   "curry-bowl",
				Name: "Curry Bowl",
				Variants: []models.VariantForDecomposition{
					{ID: "regular", Name: "Regular", Composition: []models.MenuComposition{
						preparation("curry", 1, "portion"),
						product("rice", 200, "g"),
					}},
				},
			},
			{
				ID:   "onion-rings",
				Name: "Onion Rings",
				Variants: []models.VariantForDecomposition{
					{ID: "regular", Name: "Regular", Composition: []models.MenuComposition{
						{ComponentType: models.ComponentProduct, ComponentID: "onion", Quantity: 100, Unit: "g", UseYieldPercentage: true},
					}},
				},
			},
			{
				ID:   "broken",
				Name: "Broken Plate",
				Variants: []models.VariantForDecomposition{
					{ID: "regular", Name: "Regular", Composition: []models.MenuComposition{
						product("ghost", 10, "g"),
						recipe("missing-recipe", 1),
						preparation("missing-prep", 1, "g"),
						product("rice", 100, "g"),
					}},
				},
			},
			{
				ID:   "loop",
				Name: "Loop",
				Variants: []models.VariantForDecomposition{
					{ID: "regular", Name: "Regular", Composition: []models.MenuComposition{recipe("loop-a", 1)}},
				},
			},
		},
		Recipes: []models.RecipeForDecomposition{
			{ID: "r1", Name: "Fried rice base", Components: []models.MenuComposition{
				product("rice", 150, "g"),
				product("egg", 1, "pc"),
				product("soy", 10, "ml"),
			}},
			{ID: "r2", Name: "Stir fry base", Components: []models.MenuComposition{
				product("chicken", 100, "g"),
				product("peppers", 50, "g"),
				product("soy", 5, "ml"),
			}},
			{ID: "chili-paste", Name: "Chili paste", Components: []models.MenuComposition{
				product("chili", 20, "g"),
			}},
			{ID: "loop-a", Name: "Loop A", Components: []models.MenuComposition{recipe("loop-b", 1)}},
			{ID: "loop-b", Name: "Loop B", Components: []models.MenuComposition{recipe("loop-a", 1)}},
		},
		Preparations: []models.PreparationForDecomposition{
			{
				ID:             "curry",
				Name:           "Curry sauce",
				OutputQuantity: 1,
				OutputUnit:     "kg",
				PortionType:    models.PortionTypePortion,
				PortionSize:    150,
				Ingredients: []models.MenuComposition{
					product("coconut-milk", 600, "ml"),
					product("curry-paste", 100, "g"),
					recipe("chili-paste", 1),
				},
			},
		},
		Products: []models.ProductForDecomposition{
			{ID: "rice", Name: "Rice", Unit: "kg", BaseCostPerUnit: 2},
			{ID: "egg", Name: "Egg", Unit: "pc", BaseCostPerUnit: 0.25},
			{ID: "soy", Name: "Soy sauce", Unit: "ml", BaseCostPerUnit: 0.01},
			{ID: "chicken", Name: "Chicken", Unit: "g", BaseCostPerUnit: 0.012},
			{ID: "peppers", Name: "Peppers", Unit: "g", BaseCostPerUnit: 0.004},
			{ID: "tofu", Name: "Tofu", Unit: "g", BaseCostPerUnit: 0.008},
			{ID: "sesame", Name: "Sesame", Unit: "g", BaseCostPerUnit: 0.02},
			{ID: "cola", Name: "Cola", Unit: "pc", BaseCostPerUnit: 0.6},
			{ID: "onion", Name: "Onion", Unit: "g", BaseCostPerUnit: 0.002, YieldPercentage: yieldOf(80)},
			{ID: "coconut-milk", Name: "Coconut milk", Unit: "ml", BaseCostPerUnit: 0.005},
			{ID: "curry-paste", Name: "Curry paste", Unit: "g", BaseCostPerUnit: 0.03},
			{ID: "chili", Name: "Chili", Unit: "g", BaseCostPerUnit: 0.01},
		},
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	snap, err := catalog.NewSnapshot(kitchenCatalog())
	require.NoError(t, err)
	engine, err := NewEngine(snap)
	require.NoError(t, err)
	engine.now = func() time.Time { return time.Date(2026, 1, 4, 10, 30, 0, 0, time.UTC) }
	return engine
}

// byKey indexes nodes by MergeKey and fails on duplicate groups
func byKey(t *testing.T, nodes []models.DecomposedNode) map[string]models.DecomposedNode {
	t.Helper()
	out := make(map[string]models.DecomposedNode, len(nodes))
	for _, n := range nodes {
		key := MergeKey(n.Kind, n.EntityID, n.Unit)
		require.NotContains(t, out, key, "merged result has duplicate group %s", key)
		out[key] = n
	}
	return out
}

func productKey(id, unit string) string { return MergeKey(models.NodeProduct, id, unit) }
