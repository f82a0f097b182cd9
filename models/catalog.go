package models

// Preparation portion types
const (
	PortionTypeWeight  = "weight"
	PortionTypePortion = "portion"
)

// MenuItemForDecomposition is the catalog view of a sellable menu item
type MenuItemForDecomposition struct {
	ID       string                    `json:"id" yaml:"id"`
	Name     string                    `json:"name" yaml:"name"`
	Variants []VariantForDecomposition `json:"variants" yaml:"variants"`
}

// Variant returns the variant with the given id
func (m *MenuItemForDecomposition) Variant(id string) (*VariantForDecomposition, bool) {
	for i := range m.Variants {
		if m.Variants[i].ID == id {
			return &m.Variants[i], true
		}
	}
	return nil, false
}

// VariantForDecomposition is one purchasable size/configuration of a menu item
type VariantForDecomposition struct {
	ID                string            `json:"id" yaml:"id"`
	Name              string            `json:"name" yaml:"name"`
	PortionMultiplier float64           `json:"portionMultiplier" yaml:"portionMultiplier"` // Scales addon quantities, 0 means 1.0
	Composition       []MenuComposition `json:"composition" yaml:"composition"`
}

// RecipeForDecomposition is a reusable composition yielding one portion
type RecipeForDecomposition struct {
	ID         string            `json:"id" yaml:"id"`
	Name       string            `json:"name" yaml:"name"`
	Components []MenuComposition `json:"components" yaml:"components"`
}

// PreparationForDecomposition is a batch-produced intermediate good
type PreparationForDecomposition struct {
	ID             string            `json:"id" yaml:"id"`
	Name           string            `json:"name" yaml:"name"`
	OutputQuantity float64           `json:"outputQuantity" yaml:"outputQuantity"` // Quantity one batch of Ingredients yields
	OutputUnit     string            `json:"outputUnit" yaml:"outputUnit"`
	PortionType    string            `json:"portionType" yaml:"portionType"` // weight or portion
	PortionSize    float64           `json:"portionSize" yaml:"portionSize"` // Grams per portion when PortionType is portion
	Ingredients    []MenuComposition `json:"ingredients" yaml:"ingredients"`
}

// ProductForDecomposition is an atomic purchased ingredient
type ProductForDecomposition struct {
	ID              string   `json:"id" yaml:"id"`
	Name            string   `json:"name" yaml:"name"`
	Unit            string   `json:"unit" yaml:"unit"`
	BaseCostPerUnit float64  `json:"baseCostPerUnit" yaml:"baseCostPerUnit"`
	YieldPercentage *float64 `json:"yieldPercentage,omitempty" yaml:"yieldPercentage,omitempty"` // nil means no trim/cook loss
}
