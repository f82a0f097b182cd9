package utils

import (
	"log"

	"menu-costing/models"
)

// PortionConversion is the result of ConvertPortionToGrams
type PortionConversion struct {
	Quantity     float64
	Unit         string
	WasConverted bool
}

// GetPortionMultiplier returns value if positive, otherwise 1.0
func GetPortionMultiplier(value float64) float64 {
	if value > 0 {
		return value
	}
	return 1.0
}

// ConvertPortionToGrams converts a slot measured in portions into grams using the
// preparation's declared portion size. Only slots in "portion" pointing at a
// preparation whose PortionType is "portion" with a positive PortionSize are converted.
// A slot in a measured unit keeps that unit, so 0.2 kg stays 0.2 kilogram. Portion or
// unitless slots take the preparation's output unit.
func ConvertPortionToGrams(slot models.MenuComposition, prep *models.PreparationForDecomposition, multiplier float64) PortionConversion {
	quantity := slot.Quantity * multiplier

	if prep != nil &&
		NormalizeUnit(slot.Unit) == UnitPortion &&
		prep.PortionType == models.PortionTypePortion &&
		prep.PortionSize > 0 {
		return PortionConversion{
			Quantity:     quantity * prep.PortionSize,
			Unit:         UnitGram,
			WasConverted: true,
		}
	}

	return PortionConversion{Quantity: quantity, Unit: PreparationSlotUnit(slot, prep)}
}

// PreparationSlotUnit is the canonical unit a preparation slot is measured in.
// Measured slots keep their own unit; portion or unitless slots read as the
// preparation's output unit.
func PreparationSlotUnit(slot models.MenuComposition, prep *models.PreparationForDecomposition) string {
	unit := NormalizeUnit(slot.Unit)
	if prep == nil || prep.OutputUnit == "" {
		return unit
	}
	if unit == "" || unit == UnitPortion {
		return NormalizeUnit(prep.OutputUnit)
	}
	if baseUnitOf(unit) != baseUnitOf(prep.OutputUnit) {
		log.Printf("⚠️ PreparationSlotUnit: Slot unit %s does not match preparation %s output unit %s",
			unit, prep.ID, prep.OutputUnit)
	}
	return unit
}

func baseUnitOf(unit string) string {
	_, base := ToBaseUnit(1, unit)
	return base
}
