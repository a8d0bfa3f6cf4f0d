package replenish

import (
	"math"

	"github.com/clinvita/clinstock/internal/domain"
)

// ClassifyStatus positions the current stock against safety stock and
// reorder point. Both boundaries are inclusive on the low side: stock equal
// to safety stock is already CRITICAL, stock equal to the reorder point
// still needs replenishment. Any absent input yields VERIFY.
func ClassifyStatus(stock, safetyStock, reorderPoint *float64) domain.Status {
	if stock == nil || safetyStock == nil || reorderPoint == nil {
		return domain.StatusVerify
	}
	if math.IsNaN(*stock) || math.IsNaN(*safetyStock) || math.IsNaN(*reorderPoint) {
		return domain.StatusVerify
	}
	if *stock <= *safetyStock {
		return domain.StatusCritical
	}
	if *stock <= *reorderPoint {
		return domain.StatusReplenish
	}
	return domain.StatusOK
}

// RoundUpToMultiple rounds x up to the nearest multiple of m. Rounding is
// always upward, since under-ordering defeats the safety margin. With m
// absent or non-positive, x is returned unchanged.
func RoundUpToMultiple(x float64, m *float64) float64 {
	if m == nil || *m <= 0 {
		return x
	}
	return math.Ceil(x / *m) * *m
}

// ApplyLotPolicy rounds a shortfall up to the product's lot multiple and
// raises it to the lot minimum when one is declared.
func ApplyLotPolicy(qty float64, lotMinimum, lotMultiple *float64) float64 {
	out := RoundUpToMultiple(qty, lotMultiple)
	if out > 0 && lotMinimum != nil && out < *lotMinimum {
		out = *lotMinimum
	}
	return out
}
