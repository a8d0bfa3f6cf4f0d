package replenish

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clinvita/clinstock/internal/domain"
)

func fractionalDim(factor *float64) domain.ConsumptionDimension {
	return domain.ConsumptionDimension{
		Code:             "P1",
		ConsumptionType:  domain.ConsumptionFractionalDose,
		PresentationUnit: "FR",
		ClinicalUnit:     "ML",
		ConversionFactor: factor,
	}
}

func TestConvertSameUnitIsIdentity(t *testing.T) {
	got, ok := Convert(3.5, "ML", "ml", fractionalDim(nil))
	assert.True(t, ok)
	assert.Equal(t, 3.5, got)
}

func TestConvertPresentationToClinicalMultiplies(t *testing.T) {
	got, ok := Convert(2, "FR", "ML", fractionalDim(f(10)))
	assert.True(t, ok)
	assert.Equal(t, 20.0, got)
}

func TestConvertClinicalToPresentationDivides(t *testing.T) {
	got, ok := Convert(30, "ML", "FR", fractionalDim(f(10)))
	assert.True(t, ok)
	assert.Equal(t, 3.0, got)
}

func TestConvertUnresolvedIsNotZero(t *testing.T) {
	// Missing factor on a cross-unit conversion.
	_, ok := Convert(2, "FR", "ML", fractionalDim(nil))
	assert.False(t, ok)

	// Zero factor would divide by zero.
	_, ok = Convert(30, "ML", "FR", fractionalDim(f(0)))
	assert.False(t, ok)

	// Missing units.
	_, ok = Convert(2, "", "ML", fractionalDim(f(10)))
	assert.False(t, ok)
	_, ok = Convert(2, "FR", "", fractionalDim(f(10)))
	assert.False(t, ok)

	// A unit outside the declared pair is never guessed.
	_, ok = Convert(2, "MG", "ML", fractionalDim(f(10)))
	assert.False(t, ok)
}
