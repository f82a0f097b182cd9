package models

// Component types used in MenuComposition.ComponentType
const (
	ComponentProduct     = "product"
	ComponentRecipe      = "recipe"
	ComponentPreparation = "preparation"
)

// Modifier group types used in SelectedModifier.GroupType
const (
	GroupReplacement = "replacement"
	GroupAddon       = "addon"
)

// Target source types used in TargetComponent.SourceType
const (
	SourceRecipe  = "recipe"
	SourceVariant = "variant"
)

// MenuItemInput represents one sale line to decompose
// Example: {"menuItemId": "fried-rice", "variantId": "regular", "quantity": 3, "selectedModifiers": []}
type MenuItemInput struct {
	MenuItemID        string             `json:"menuItemId" yaml:"menuItemId"`
	VariantID         string             `json:"variantId" yaml:"variantId"`
	Quantity          int                `json:"quantity" yaml:"quantity"` // Units sold, >= 1
	SelectedModifiers []SelectedModifier `json:"selectedModifiers" yaml:"selectedModifiers"`
}

// MenuComposition represents one ingredient slot of a variant, recipe, preparation or modifier
type MenuComposition struct {
	ComponentType      string  `json:"componentType" yaml:"componentType"` // product, recipe or preparation
	ComponentID        string  `json:"componentId" yaml:"componentId"`
	Quantity           float64 `json:"quantity" yaml:"quantity"` // Per one sold unit
	Unit               string  `json:"unit" yaml:"unit"`
	UseYieldPercentage bool    `json:"useYieldPercentage" yaml:"useYieldPercentage"`
	Role               string  `json:"role,omitempty" yaml:"role,omitempty"` // Display only
}

// TargetComponent identifies a composition slot replaced by a modifier.
// SourceType "recipe" needs RecipeID and ComponentID, "variant" only ComponentID.
type TargetComponent struct {
	SourceType  string `json:"sourceType" yaml:"sourceType"`
	RecipeID    string `json:"recipeId,omitempty" yaml:"recipeId,omitempty"`
	ComponentID string `json:"componentId" yaml:"componentId"`
}

// SelectedModifier represents a customer-selected modifier option
// Example replacement: {"optionName": "Tofu instead of chicken", "groupType": "replacement",
//   "targetComponents": [{"sourceType": "recipe", "recipeId": "r1", "componentId": "chicken"}],
//   "composition": [{"componentType": "product", "componentId": "tofu", "quantity": 80, "unit": "g"}]}
type SelectedModifier struct {
	OptionName       string            `json:"optionName" yaml:"optionName"`
	GroupType        string            `json:"groupType" yaml:"groupType"` // replacement or addon
	TargetComponents []TargetComponent `json:"targetComponents,omitempty" yaml:"targetComponents,omitempty"`
	Composition      []MenuComposition `json:"composition" yaml:"composition"`
	IsDefault        bool              `json:"isDefault" yaml:"isDefault"`
}
