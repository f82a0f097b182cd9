package utils

import (
	"strings"

	"golang.org/x/text/cases"
)

// Canonical unit tokens
const (
	UnitGram       = "gram"
	UnitKilogram   = "kilogram"
	UnitMilliliter = "milliliter"
	UnitLiter      = "liter"
	UnitPiece      = "piece"
	UnitPortion    = "portion"
)

var unitFolder = cases.Fold()

var unitAliases = map[string]string{
	"g":           UnitGram,
	"gr":          UnitGram,
	"grs":         UnitGram,
	"gram":        UnitGram,
	"grams":       UnitGram,
	"gramo":       UnitGram,
	"gramos":      UnitGram,
	"kg":          UnitKilogram,
	"kgs":         UnitKilogram,
	"kilo":        UnitKilogram,
	"kilos":       UnitKilogram,
	"kilogram":    UnitKilogram,
	"kilograms":   UnitKilogram,
	"ml":          UnitMilliliter,
	"milliliter":  UnitMilliliter,
	"milliliters": UnitMilliliter,
	"millilitre":  UnitMilliliter,
	"millilitres": UnitMilliliter,
	"l":           UnitLiter,
	"lt":          UnitLiter,
	"liter":       UnitLiter,
	"liters":      UnitLiter,
	"litre":       UnitLiter,
	"litres":      UnitLiter,
	"pc":          UnitPiece,
	"pcs":         UnitPiece,
	"piece":       UnitPiece,
	"pieces":      UnitPiece,
	"unit":        UnitPiece,
	"units":       UnitPiece,
	"ea":          UnitPiece,
	"each":        UnitPiece,
	"portion":     UnitPortion,
	"portions":    UnitPortion,
	"serving":     UnitPortion,
	"servings":    UnitPortion,
}

// NormalizeUnit maps spelling and abbreviation variants to one canonical token.
// Unknown units are returned case-folded and trimmed.
// g, gram, grams -> gram; ml, milliliters -> milliliter
func NormalizeUnit(unit string) string {
	folded := unitFolder.String(strings.TrimSpace(unit))
	folded = strings.TrimSuffix(folded, ".")

	if canonical, exists := unitAliases[folded]; exists {
		return canonical
	}
	return folded
}

// ToBaseUnit converts kilograms and liters into grams and milliliters.
// Other units are only normalized.
func ToBaseUnit(quantity float64, unit string) (float64, string) {
	switch normalized := NormalizeUnit(unit); normalized {
	case UnitKilogram:
		return quantity * 1000, UnitGram
	case UnitLiter:
		return quantity * 1000, UnitMilliliter
	default:
		return quantity, normalized
	}
}
