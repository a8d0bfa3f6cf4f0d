// Package stock consolidates lot-level physical stock into per-product
// totals on both unit scales.
package stock

import "github.com/clinvita/clinstock/internal/domain"

// Consolidate sums lot snapshots per product. All lots of a product share
// the same presentation unit by data-entry convention, so any non-empty unit
// code seen is representative. Lot totals are sums of recorded entries and
// never negative by construction. Callers must treat a missing product as
// zero stock on both scales, not as absence of data.
func Consolidate(lots []domain.LotSnapshot) map[string]domain.ConsolidatedStock {
	out := make(map[string]domain.ConsolidatedStock)
	for _, lot := range lots {
		if lot.Code == "" {
			continue
		}
		c := out[lot.Code]
		c.Code = lot.Code
		if lot.PresentationQty != nil {
			c.PresentationQty += *lot.PresentationQty
		}
		if c.PresentationUnit == "" && lot.PresentationUnit != "" {
			c.PresentationUnit = lot.PresentationUnit
		}
		if lot.ClinicalQty != nil {
			c.ClinicalQty += *lot.ClinicalQty
		}
		if c.ClinicalUnit == "" && lot.ClinicalUnit != "" {
			c.ClinicalUnit = lot.ClinicalUnit
		}
		out[lot.Code] = c
	}
	return out
}
