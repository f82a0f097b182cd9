// Package catalog exposes read-only menu, recipe, preparation and product lookups
// used by the decomposition engine.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"menu-costing/models"
)

// Provider is the read-only catalog capability consumed by the decomposition engine.
// Returned objects are shared snapshots and must not be mutated.
type Provider interface {
	GetMenuItem(id string) (*models.MenuItemForDecomposition, bool)
	GetRecipe(id string) (*models.RecipeForDecomposition, bool)
	GetPreparation(id string) (*models.PreparationForDecomposition, bool)
	GetProduct(id string) (*models.ProductForDecomposition, bool)
}

// Snapshot is an immutable in-memory Provider
type Snapshot struct {
	menuItems    map[string]*models.MenuItemForDecomposition
	recipes      map[string]*models.RecipeForDecomposition
	preparations map[string]*models.PreparationForDecomposition
	products     map[string]*models.ProductForDecomposition
}

// Ensure Snapshot implements Provider
var _ Provider = (*Snapshot)(nil)

// Data is the serialized form of a Snapshot
type Data struct {
	MenuItems    []models.MenuItemForDecomposition    `json:"menuItems" yaml:"menuItems"`
	Recipes      []models.RecipeForDecomposition      `json:"recipes" yaml:"recipes"`
	Preparations []models.PreparationForDecomposition `json:"preparations" yaml:"preparations"`
	Products     []models.ProductForDecomposition     `json:"products" yaml:"products"`
}

// NewSnapshot indexes data by id. Duplicate ids are rejected.
func NewSnapshot(data Data) (*Snapshot, error) {
	s := &Snapshot{
		menuItems:    make(map[string]*models.MenuItemForDecomposition, len(data.MenuItems)),
		recipes:      make(map[string]*models.RecipeForDecomposition, len(data.Recipes)),
		preparations: make(map[string]*models.PreparationForDecomposition, len(data.Preparations)),
		products:     make(map[string]*models.ProductForDecomposition, len(data.Products)),
	}

	for i := range data.MenuItems {
		item := &data.MenuItems[i]
		if _, exists := s.menuItems[item.ID]; exists {
			return nil, fmt.Errorf("duplicate menu item id %q", item.ID)
		}
		s.menuItems[item.ID] = item
	}
	for i := range data.Recipes {
		recipe := &data.Recipes[i]
		if _, exists := s.recipes[recipe.ID]; exists {
			return nil, fmt.Errorf("duplicate recipe id %q", recipe.ID)
		}
		s.recipes[recipe.ID] = recipe
	}
	for i := range data.Preparations {
		prep := &data.Preparations[i]
		if _, exists := s.preparations[prep.ID]; exists {
			return nil, fmt.Errorf("duplicate preparation id %q", prep.ID)
		}
		s.preparations[prep.ID] = prep
	}
	for i := range data.Products {
		product := &data.Products[i]
		if _, exists := s.products[product.ID]; exists {
			return nil, fmt.Errorf("duplicate product id %q", product.ID)
		}
		s.products[product.ID] = product
	}

	return s, nil
}

// LoadYAML reads a catalog snapshot from a YAML file
func LoadYAML(path string) (*Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return ParseYAML(raw)
}

// ParseYAML decodes a catalog snapshot
func ParseYAML(raw []byte) (*Snapshot, error) {
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return NewSnapshot(data)
}

func (s *Snapshot) GetMenuItem(id string) (*models.MenuItemForDecomposition, bool) {
	item, ok := s.menuItems[id]
	return item, ok
}

func (s *Snapshot) GetRecipe(id string) (*models.RecipeForDecomposition, bool) {
	recipe, ok := s.recipes[id]
	return recipe, ok
}

func (s *Snapshot) GetPreparation(id string) (*models.PreparationForDecomposition, bool) {
	prep, ok := s.preparations[id]
	return prep, ok
}

func (s *Snapshot) GetProduct(id string) (*models.ProductForDecomposition, bool) {
	product, ok := s.products[id]
	return product, ok
}

// Counts returns the number of menu items, recipes, preparations and products
func (s *Snapshot) Counts() (menuItems, recipes, preparations, products int) {
	return len(s.menuItems), len(s.recipes), len(s.preparations), len(s.products)
}
