package decomposition

import (
	"fmt"
	"log"

	"menu-costing/models"
)

// ReplacementEntry is the modifier replacing a composition slot.
// IsInsertionTarget is true for exactly one slot of a multi-target modifier: the slot
// where the modifier's composition is inserted. The other targeted slots are dropped.
type ReplacementEntry struct {
	Modifier          *models.SelectedModifier
	IsInsertionTarget bool
}

// ReplacementMap indexes replacement modifiers by ReplacementKey
type ReplacementMap map[string]ReplacementEntry

// ReplacementKey returns "{recipeId}:{componentId}" for recipe slots and
// "variant:{componentId}" for slots directly on the variant
func ReplacementKey(target models.TargetComponent) string {
	if target.SourceType == models.SourceRecipe {
		return fmt.Sprintf("%s:%s", target.RecipeID, target.ComponentID)
	}
	return fmt.Sprintf("variant:%s", target.ComponentID)
}

func isReplacement(m *models.SelectedModifier) bool {
	return m.GroupType == models.GroupReplacement && len(m.TargetComponents) > 0
}

// BuildReplacementMap indexes the non-default replacement modifiers by target slot.
// When two modifiers target the same slot the later one wins.
func BuildReplacementMap(modifiers []models.SelectedModifier) ReplacementMap {
	replacements := make(ReplacementMap)

	for i := range modifiers {
		modifier := &modifiers[i]
		if !isReplacement(modifier) || modifier.IsDefault {
			continue
		}

		for j, target := range modifier.TargetComponents {
			key := ReplacementKey(target)
			if existing, exists := replacements[key]; exists && existing.Modifier != modifier {
				log.Printf("⚠️ BuildReplacementMap: slot %s targeted by %q and %q, keeping %q",
					key, existing.Modifier.OptionName, modifier.OptionName, modifier.OptionName)
			}
			replacements[key] = ReplacementEntry{
				Modifier:          modifier,
				IsInsertionTarget: j == 0,
			}
		}
	}

	return replacements
}

// LookupReplacement finds the replacement for a component nested in a recipe
func LookupReplacement(recipeID, componentID string, replacements ReplacementMap) (ReplacementEntry, bool) {
	entry, ok := replacements[ReplacementKey(models.TargetComponent{
		SourceType:  models.SourceRecipe,
		RecipeID:    recipeID,
		ComponentID: componentID,
	})]
	return entry, ok
}

// LookupVariantReplacement finds the replacement for a slot directly on the variant
func LookupVariantReplacement(componentID string, replacements ReplacementMap) (ReplacementEntry, bool) {
	entry, ok := replacements[ReplacementKey(models.TargetComponent{
		SourceType:  models.SourceVariant,
		ComponentID: componentID,
	})]
	return entry, ok
}

// AddonModifiers returns the modifiers that append composition: everything that is
// not a replacement with at least one target
func AddonModifiers(modifiers []models.SelectedModifier) []*models.SelectedModifier {
	var addons []*models.SelectedModifier
	for i := range modifiers {
		if !isReplacement(&modifiers[i]) {
			addons = append(addons, &modifiers[i])
		}
	}
	return addons
}

// distinctModifiers counts the modifiers present in the map
func (m ReplacementMap) distinctModifiers() int {
	seen := make(map[*models.SelectedModifier]struct{}, len(m))
	for _, entry := range m {
		seen[entry.Modifier] = struct{}{}
	}
	return len(seen)
}
