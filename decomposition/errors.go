package decomposition

import "errors"

var (
	// ErrMenuItemNotFound is returned when the sold menu item is not in the catalog
	ErrMenuItemNotFound = errors.New("menu item not found")
	// ErrVariantNotFound is returned when the sold variant does not belong to the menu item
	ErrVariantNotFound = errors.New("variant not found")
	// ErrStoreNotInitialized is returned when no catalog provider was supplied
	ErrStoreNotInitialized = errors.New("catalog store not initialized")
	// ErrCompositionCycle is returned when a recipe or preparation contains itself
	ErrCompositionCycle = errors.New("composition cycle detected")
	// ErrInvalidQuantity is returned when fewer than one unit is sold
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)
