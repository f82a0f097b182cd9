package utils

import "menu-costing/models"

// YieldAdjustment is the result of ApplyYieldAdjustment
type YieldAdjustment struct {
	AdjustedQuantity float64
	YieldPercentage  float64
	WasAdjusted      bool
}

// ApplyYieldAdjustment grosses a net quantity up to the raw quantity that has to be
// taken from stock, given the product's yield after trim or cooking loss.
// Disabled, missing or >= 100 yields leave the quantity unchanged.
func ApplyYieldAdjustment(quantity float64, product *models.ProductForDecomposition, enabled bool) YieldAdjustment {
	unchanged := YieldAdjustment{AdjustedQuantity: quantity, YieldPercentage: 100}

	if !enabled || product == nil || product.YieldPercentage == nil {
		return unchanged
	}

	pct := *product.YieldPercentage
	if pct >= 100 || pct <= 0 {
		unchanged.YieldPercentage = pct
		return unchanged
	}

	return YieldAdjustment{
		AdjustedQuantity: quantity / (pct / 100),
		YieldPercentage:  pct,
		WasAdjusted:      true,
	}
}

// GrossFromNet returns the gross quantity needed to obtain net after yield loss
func GrossFromNet(net float64, yieldPercentage float64) float64 {
	if !validYield(yieldPercentage) {
		return net
	}
	return net / (yieldPercentage / 100)
}

// NetFromGross returns the usable quantity left from gross after yield loss
func NetFromGross(gross float64, yieldPercentage float64) float64 {
	if !validYield(yieldPercentage) {
		return gross
	}
	return gross * (yieldPercentage / 100)
}

func validYield(pct float64) bool {
	return pct > 0 && pct <= 100
}
