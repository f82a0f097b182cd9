// Package decomposition expands a sold menu item into the products and preparations it consumes.
package decomposition

import (
	"fmt"
	"log"
	"strings"
	"time"

	"menu-costing/catalog"
	"menu-costing/models"
	"menu-costing/utils"
)

// Engine decomposes menu items against a catalog snapshot.
// It never mutates the provider's objects and is safe for concurrent use.
type Engine struct {
	catalog catalog.Provider
	now     func() time.Time
}

// NewEngine creates a decomposition engine over a ready catalog provider
func NewEngine(provider catalog.Provider) (*Engine, error) {
	if provider == nil {
		return nil, ErrStoreNotInitialized
	}
	return &Engine{
		catalog: provider,
		now:     time.Now,
	}, nil
}

// traversal holds the state of one Traverse call
type traversal struct {
	catalog catalog.Provider
	opts    models.TraversalOptions

	nodes        []models.DecomposedNode
	stack        []string
	onStack      map[string]bool
	replacements int
}

// Traverse decomposes one sale line into merged product and preparation nodes.
// A missing menu item or variant fails the call; missing nested recipes, preparations
// or products are logged and contribute nothing.
func (e *Engine) Traverse(input models.MenuItemInput, opts models.TraversalOptions) (*models.TraversalResult, error) {
	if input.Quantity < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidQuantity, input.Quantity)
	}

	menuItem, ok := e.catalog.GetMenuItem(input.MenuItemID)
	if !ok {
		log.Printf("❌ Traverse: Menu item not found: id=%s", input.MenuItemID)
		return nil, fmt.Errorf("%w: %s", ErrMenuItemNotFound, input.MenuItemID)
	}

	variant, ok := menuItem.Variant(input.VariantID)
	if !ok {
		log.Printf("❌ Traverse: Variant not found: menuItem=%s variant=%s", input.MenuItemID, input.VariantID)
		return nil, fmt.Errorf("%w: %s/%s", ErrVariantNotFound, input.MenuItemID, input.VariantID)
	}

	replacements := BuildReplacementMap(input.SelectedModifiers)
	addons := AddonModifiers(input.SelectedModifiers)
	portionMultiplier := utils.GetPortionMultiplier(variant.PortionMultiplier)
	quantity := float64(input.Quantity)

	t := &traversal{
		catalog: e.catalog,
		opts:    opts,
		onStack: make(map[string]bool),
	}

	root := t.extendPath(nil, menuItem.Name, variant.Name)

	for _, slot := range variant.Composition {
		entry, replaced := LookupVariantReplacement(slot.ComponentID, replacements)
		if !replaced {
			if err := t.expand(slot, quantity, replacements, root); err != nil {
				return nil, err
			}
			continue
		}
		if !entry.IsInsertionTarget {
			continue
		}
		if err := t.insertReplacement(entry, quantity, replacements, root); err != nil {
			return nil, err
		}
	}

	empty := ReplacementMap{}
	for _, addon := range addons {
		path := t.extendPath(root, addon.OptionName)
		for _, slot := range addon.Composition {
			if err := t.expand(slot, portionMultiplier*quantity, empty, path); err != nil {
				return nil, err
			}
		}
	}

	result := &models.TraversalResult{
		Nodes: MergeNodes(t.nodes),
		Metadata: models.TraversalMetadata{
			MenuItemName:        menuItem.Name,
			VariantName:         variant.Name,
			Quantity:            input.Quantity,
			ModifiersApplied:    len(addons) + replacements.distinctModifiers(),
			ReplacementsApplied: t.replacements,
			ProducedAt:          e.now(),
		},
	}

	log.Printf("✅ Traverse: %s (%s) x%d -> %d nodes, %d replacements",
		menuItem.Name, variant.Name, input.Quantity, len(result.Nodes), t.replacements)
	return result, nil
}

// expand dispatches a composition slot on its component type
func (t *traversal) expand(slot models.MenuComposition, multiplier float64, replacements ReplacementMap, path []string) error {
	switch slot.ComponentType {
	case models.ComponentProduct:
		t.emitProduct(slot, multiplier, path)
		return nil
	case models.ComponentRecipe:
		return t.expandRecipe(slot, multiplier, replacements, path)
	case models.ComponentPreparation:
		return t.expandPreparation(slot, multiplier, path)
	default:
		log.Printf("⚠️ Traverse: Unknown component type %q for component %s, skipping", slot.ComponentType, slot.ComponentID)
		return nil
	}
}

func (t *traversal) emitProduct(slot models.MenuComposition, multiplier float64, path []string) {
	product, ok := t.catalog.GetProduct(slot.ComponentID)
	if !ok {
		log.Printf("⚠️ Traverse: Product %s not found, skipping (path=%s)", slot.ComponentID, strings.Join(path, " > "))
		return
	}

	quantity := slot.Quantity * multiplier
	if t.opts.ApplyYield && slot.UseYieldPercentage {
		quantity = utils.ApplyYieldAdjustment(quantity, product, true).AdjustedQuantity
	}

	unit := slot.Unit
	if unit == "" {
		unit = product.Unit
	}
	quantity, unit = utils.ToBaseUnit(quantity, unit)

	t.nodes = append(t.nodes, models.DecomposedNode{
		Kind:            models.NodeProduct,
		EntityID:        product.ID,
		Name:            product.Name,
		Quantity:        quantity,
		Unit:            unit,
		BaseCostPerUnit: costPerBaseUnit(product),
		StockUnit:       utils.NormalizeUnit(product.Unit),
		Path:            t.extendPath(path, product.Name),
	})
}

// costPerBaseUnit restates the catalog cost per gram/milliliter when the product is
// priced per kilogram/liter
func costPerBaseUnit(product *models.ProductForDecomposition) float64 {
	factor, _ := utils.ToBaseUnit(1, product.Unit)
	return product.BaseCostPerUnit / factor
}

func (t *traversal) expandRecipe(slot models.MenuComposition, multiplier float64, replacements ReplacementMap, path []string) error {
	recipe, ok := t.catalog.GetRecipe(slot.ComponentID)
	if !ok {
		log.Printf("⚠️ Traverse: Recipe %s not found, skipping (path=%s)", slot.ComponentID, strings.Join(path, " > "))
		return nil
	}

	if err := t.push(models.ComponentRecipe, recipe.ID); err != nil {
		return err
	}
	defer t.pop(models.ComponentRecipe, recipe.ID)

	childMultiplier := multiplier * slot.Quantity
	recipePath := t.extendPath(path, recipe.Name)

	for _, component := range recipe.Components {
		entry, replaced := LookupReplacement(recipe.ID, component.ComponentID, replacements)
		if !replaced {
			if err := t.expand(component, childMultiplier, replacements, recipePath); err != nil {
				return err
			}
			continue
		}
		if !entry.IsInsertionTarget {
			continue
		}
		if err := t.insertReplacement(entry, childMultiplier, replacements, recipePath); err != nil {
			return err
		}
	}
	return nil
}

func (t *traversal) insertReplacement(entry ReplacementEntry, multiplier float64, replacements ReplacementMap, path []string) error {
	t.replacements++
	modifierPath := t.extendPath(path, entry.Modifier.OptionName)
	for _, slot := range entry.Modifier.Composition {
		if err := t.expand(slot, multiplier, replacements, modifierPath); err != nil {
			return err
		}
	}
	return nil
}

func (t *traversal) expandPreparation(slot models.MenuComposition, multiplier float64, path []string) error {
	prep, ok := t.catalog.GetPreparation(slot.ComponentID)
	if !ok {
		log.Printf("⚠️ Traverse: Preparation %s not found, skipping (path=%s)", slot.ComponentID, strings.Join(path, " > "))
		return nil
	}

	var requested utils.PortionConversion
	if t.opts.ConvertPortions {
		requested = utils.ConvertPortionToGrams(slot, prep, multiplier)
	} else {
		requested = utils.PortionConversion{
			Quantity: slot.Quantity * multiplier,
			Unit:     utils.PreparationSlotUnit(slot, prep),
		}
	}
	quantity, unit := utils.ToBaseUnit(requested.Quantity, requested.Unit)

	if t.opts.PreparationStrategy != models.PreparationDecompose {
		t.nodes = append(t.nodes, models.DecomposedNode{
			Kind:       models.NodePreparation,
			EntityID:   prep.ID,
			Name:       prep.Name,
			Quantity:   quantity,
			Unit:       unit,
			OutputUnit: utils.NormalizeUnit(prep.OutputUnit),
			StockUnit:  utils.NormalizeUnit(prep.OutputUnit),
			Path:       t.extendPath(path, prep.Name),
		})
		return nil
	}

	if err := t.push(models.ComponentPreparation, prep.ID); err != nil {
		return err
	}
	defer t.pop(models.ComponentPreparation, prep.ID)

	scale := 1.0
	output, _ := utils.ToBaseUnit(prep.OutputQuantity, prep.OutputUnit)
	if output > 0 {
		scale = quantity / output
	} else {
		log.Printf("⚠️ Traverse: Preparation %s has no output quantity, using one batch", prep.ID)
	}

	// Modifiers never reach inside a preparation.
	empty := ReplacementMap{}
	prepPath := t.extendPath(path, prep.Name)
	for _, ingredient := range prep.Ingredients {
		if err := t.expand(ingredient, scale, empty, prepPath); err != nil {
			return err
		}
	}
	return nil
}

func (t *traversal) push(kind, id string) error {
	key := kind + ":" + id
	if t.onStack[key] {
		chain := append(append([]string{}, t.stack...), key)
		log.Printf("❌ Traverse: Composition cycle: %s", strings.Join(chain, " > "))
		return fmt.Errorf("%w: %s", ErrCompositionCycle, strings.Join(chain, " > "))
	}
	t.onStack[key] = true
	t.stack = append(t.stack, key)
	return nil
}

func (t *traversal) pop(kind, id string) {
	delete(t.onStack, kind+":"+id)
	t.stack = t.stack[:len(t.stack)-1]
}

// extendPath returns a new path with names appended, or nil when paths are disabled
func (t *traversal) extendPath(path []string, names ...string) []string {
	if !t.opts.IncludePath {
		return nil
	}
	extended := make([]string, 0, len(path)+len(names))
	extended = append(extended, path...)
	for _, name := range names {
		if name != "" {
			extended = append(extended, name)
		}
	}
	return extended
}
