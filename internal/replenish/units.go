package replenish

import (
	"strings"

	"github.com/clinvita/clinstock/internal/domain"
)

// Convert moves a quantity between a product's two declared units of
// measure. Multiplying by the conversion factor goes presentation ->
// clinical; dividing goes the other way. The second return value reports
// whether the conversion resolved: callers must treat an unresolved
// conversion as "exclude this observation", never as zero.
func Convert(qty float64, srcUnit, dstUnit string, dim domain.ConsumptionDimension) (float64, bool) {
	src := NormalizeUnit(srcUnit)
	dst := NormalizeUnit(dstUnit)
	if src == "" || dst == "" {
		return 0, false
	}
	if src == dst {
		return qty, true
	}
	if dim.ConversionFactor == nil || *dim.ConversionFactor == 0 {
		return 0, false
	}

	present := NormalizeUnit(dim.PresentationUnit)
	clinical := NormalizeUnit(dim.ClinicalUnit)
	switch {
	case src == present && dst == clinical:
		return qty * *dim.ConversionFactor, true
	case src == clinical && dst == present:
		return qty / *dim.ConversionFactor, true
	}
	// Units outside the declared pair cannot be converted safely.
	return 0, false
}

// NormalizeUnit folds a unit code to its canonical uppercase form.
func NormalizeUnit(u string) string {
	return strings.ToUpper(strings.TrimSpace(u))
}
