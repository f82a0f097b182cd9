package decomposition

import (
	"menu-costing/models"
	"menu-costing/utils"
)

// MergeKey identifies a merge group: node kind, entity id and canonical unit
func MergeKey(kind, entityID, unit string) string {
	return kind + "|" + entityID + "|" + utils.NormalizeUnit(unit)
}

// MergeNodes consolidates nodes sharing kind, entity and canonical unit.
// Quantities are summed and paths unioned; groups keep first-seen order.
// Nodes for the same entity in different units are never merged.
func MergeNodes(nodes []models.DecomposedNode) []models.DecomposedNode {
	merged := make([]models.DecomposedNode, 0, len(nodes))
	index := make(map[string]int, len(nodes))
	seenPaths := make(map[string]map[string]struct{})

	for _, node := range nodes {
		key := MergeKey(node.Kind, node.EntityID, node.Unit)

		pos, exists := index[key]
		if !exists {
			node.Unit = utils.NormalizeUnit(node.Unit)
			paths := node.Path
			node.Path = nil
			merged = append(merged, node)
			pos = len(merged) - 1
			index[key] = pos
			seenPaths[key] = make(map[string]struct{})
			mergePath(&merged[pos], paths, seenPaths[key])
			continue
		}

		target := &merged[pos]
		target.Quantity += node.Quantity
		if target.BaseCostPerUnit <= 0 && node.BaseCostPerUnit > 0 {
			target.BaseCostPerUnit = node.BaseCostPerUnit
		}
		mergePath(target, node.Path, seenPaths[key])
	}

	return merged
}

func mergePath(target *models.DecomposedNode, path []string, seen map[string]struct{}) {
	for _, segment := range path {
		if _, dup := seen[segment]; dup {
			continue
		}
		seen[segment] = struct{}{}
		target.Path = append(target.Path, segment)
	}
}
