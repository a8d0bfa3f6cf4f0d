package replenish

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinvita/clinstock/internal/domain"
)

func TestNewCalculatorRejectsBadServiceLevel(t *testing.T) {
	_, err := NewCalculator(domain.Params{ServiceLevel: 1.2, LeadTimeMean: 6, LeadTimeStdDev: 1})
	assert.Error(t, err)
}

// Fractional-dose product: presentation FR, clinical ML, factor 10. Two lots
// totalling 30 ML on hand; daily exits of 4, 5, 4, 3 ML give mu=4 and
// population sigma=sqrt(0.5). The whole numeric chain is asserted, not just
// the final label.
func TestCalculateFractionalDoseChain(t *testing.T) {
	calc, err := NewCalculator(domain.Params{ServiceLevel: 0.95, LeadTimeMean: 6, LeadTimeStdDev: 1})
	require.NoError(t, err)

	in := Input{
		Product:      domain.Product{Code: "P1", Name: "Ampoule"},
		Dimension:    fractionalDim(f(10)),
		CurrentStock: 30,
		DemandMean:   4,
		DemandStdDev: math.Sqrt(0.5),
	}
	m := calc.Calculate(in)

	assert.InDelta(t, 1.6449, m.ZScore, 1e-3)
	assert.InDelta(t, 24.0, m.LeadTimeDemand, 1e-9)
	assert.InDelta(t, math.Sqrt(19), m.LeadTimeSigma, 1e-9) // sqrt(6*0.5 + 16*1)
	assert.InDelta(t, 7.1699, m.SafetyStock, 1e-3)
	assert.InDelta(t, 31.1699, m.ReorderPoint, 1e-3)
	assert.InDelta(t, 1.1699, m.Shortfall, 1e-3)

	// Stock is above safety stock but at or below the reorder point.
	assert.Equal(t, domain.StatusReplenish, m.Status)

	require.NotNil(t, m.SuggestedClinical)
	assert.InDelta(t, m.Shortfall, *m.SuggestedClinical, 1e-9)
	require.NotNil(t, m.SuggestedPresentation)
	assert.InDelta(t, m.Shortfall/10, *m.SuggestedPresentation, 1e-9)

	require.NotNil(t, m.CoverageDays)
	assert.InDelta(t, 7.5, *m.CoverageDays, 1e-9)
}

func TestCalculateLotPolicyRoundsSuggestionsUp(t *testing.T) {
	calc, err := NewCalculator(domain.Params{ServiceLevel: 0.95, LeadTimeMean: 6, LeadTimeStdDev: 1})
	require.NoError(t, err)

	in := Input{
		Product: domain.Product{
			Code:        "P1",
			LotMinimum:  f(5),
			LotMultiple: f(2),
		},
		Dimension:    fractionalDim(f(10)),
		CurrentStock: 10,
		DemandMean:   4,
		DemandStdDev: math.Sqrt(0.5),
	}
	m := calc.Calculate(in)

	// Shortfall ~= 21.17 rounds up to 22 on the clinical scale.
	require.NotNil(t, m.SuggestedClinical)
	assert.Equal(t, 22.0, *m.SuggestedClinical)

	// 22 ML / 10 = 2.2 FR rounds to 4, then the lot minimum of 5 applies.
	require.NotNil(t, m.SuggestedPresentation)
	assert.Equal(t, 5.0, *m.SuggestedPresentation)

	// Stock of 10 sits between safety stock (~7.17) and the reorder point.
	assert.Equal(t, domain.StatusReplenish, m.Status)
}

func TestCalculateSingleDoseConvertsToClinical(t *testing.T) {
	calc, err := NewCalculator(domain.Params{ServiceLevel: 0.95, LeadTimeMean: 6, LeadTimeStdDev: 1})
	require.NoError(t, err)

	dim := domain.ConsumptionDimension{
		Code:             "P2",
		ConsumptionType:  domain.ConsumptionSingleDose,
		PresentationUnit: "CP",
		ClinicalUnit:     "MG",
		ConversionFactor: f(50),
	}
	m := calc.Calculate(Input{
		Product:      domain.Product{Code: "P2"},
		Dimension:    dim,
		CurrentStock: 0,
		DemandMean:   2,
		DemandStdDev: 0,
	})

	require.NotNil(t, m.SuggestedPresentation)
	require.NotNil(t, m.SuggestedClinical)
	assert.InDelta(t, *m.SuggestedPresentation*50, *m.SuggestedClinical, 1e-9)
	assert.Equal(t, domain.StatusCritical, m.Status)
}

func TestCalculateUnresolvedCrossUnitSideIsAbsent(t *testing.T) {
	calc, err := NewCalculator(domain.Params{ServiceLevel: 0.95, LeadTimeMean: 6, LeadTimeStdDev: 1})
	require.NoError(t, err)

	m := calc.Calculate(Input{
		Product:      domain.Product{Code: "P3"},
		Dimension:    fractionalDim(nil), // no conversion factor
		CurrentStock: 0,
		DemandMean:   4,
		DemandStdDev: 1,
	})

	assert.NotNil(t, m.SuggestedClinical)
	assert.Nil(t, m.SuggestedPresentation)
}

func TestCalculateZeroDemandHasNoCoverage(t *testing.T) {
	calc, err := NewCalculator(domain.Params{ServiceLevel: 0.95, LeadTimeMean: 6, LeadTimeStdDev: 1})
	require.NoError(t, err)

	m := calc.Calculate(Input{
		Product:      domain.Product{Code: "P4"},
		Dimension:    fractionalDim(f(10)),
		CurrentStock: 12,
		DemandMean:   0,
		DemandStdDev: 0,
	})
	assert.Nil(t, m.CoverageDays)
	// mu=0, sigma=0 => SS=0, ROP=0, stock above both.
	assert.Equal(t, domain.StatusOK, m.Status)
}
