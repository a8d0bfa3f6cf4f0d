package verify

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinvita/clinstock/internal/demand"
	"github.com/clinvita/clinstock/internal/domain"
	"github.com/clinvita/clinstock/internal/replenish"
)

func f(v float64) *float64 { return &v }

func newCalc(t *testing.T) *replenish.Calculator {
	t.Helper()
	calc, err := replenish.NewCalculator(domain.Params{
		ServiceLevel:   0.95,
		LeadTimeMean:   6,
		LeadTimeStdDev: 1,
	})
	require.NoError(t, err)
	return calc
}

func TestRunComputesFullChain(t *testing.T) {
	in := Input{
		Products: []domain.Product{{Code: "P1", Name: "Soro"}},
		Dimensions: map[string]domain.ConsumptionDimension{
			"P1": {
				Code:             "P1",
				ConsumptionType:  domain.ConsumptionFractionalDose,
				PresentationUnit: "FR",
				ClinicalUnit:     "ML",
				ConversionFactor: f(10),
			},
		},
		Stocks: map[string]domain.ConsolidatedStock{
			"P1": {Code: "P1", ClinicalQty: 30, ClinicalUnit: "ML", PresentationQty: 3, PresentationUnit: "FR"},
		},
		Stats: map[demand.SeriesKey]demand.Stats{
			{Code: "P1", Unit: "ML"}: {Mean: 4, StdDev: math.Sqrt(0.5)},
		},
	}

	rows := Run(in, newCalc(t))
	require.Len(t, rows, 1)
	row := rows[0]

	assert.Equal(t, "P1", row.Code)
	assert.Equal(t, "ML", row.TargetUnit)
	require.NotNil(t, row.CurrentStock)
	assert.Equal(t, 30.0, *row.CurrentStock)

	require.NotNil(t, row.SafetyStock)
	require.NotNil(t, row.ReorderPoint)
	require.NotNil(t, row.Shortfall)
	assert.InDelta(t, 1.6449*math.Sqrt(19), *row.SafetyStock, 1e-3)
	assert.InDelta(t, 24+1.6449*math.Sqrt(19), *row.ReorderPoint, 1e-3)
	assert.InDelta(t, *row.ReorderPoint-30, *row.Shortfall, 1e-9)

	require.NotNil(t, row.CoverageDays)
	assert.InDelta(t, 7.5, *row.CoverageDays, 1e-9)
	assert.Equal(t, domain.StatusReplenish, row.Status)
}

func TestRunFlagsMissingInputs(t *testing.T) {
	in := Input{
		Products: []domain.Product{
			{Code: "A", Name: "Sem dimensão"},
			{Code: "B", Name: "Sem histórico"},
		},
		Dimensions: map[string]domain.ConsumptionDimension{
			"B": {Code: "B", ConsumptionType: domain.ConsumptionSingleDose, PresentationUnit: "CP"},
		},
		Stocks: map[string]domain.ConsolidatedStock{},
		Stats:  map[demand.SeriesKey]demand.Stats{},
	}

	rows := Run(in, newCalc(t))
	require.Len(t, rows, 2)

	byCode := map[string]domain.ReportRow{}
	for _, r := range rows {
		byCode[r.Code] = r
	}

	a := byCode["A"]
	assert.Equal(t, domain.StatusVerify, a.Status)
	assert.Equal(t, "no consumption dimension", a.Reason)
	assert.Nil(t, a.CurrentStock)
	assert.Nil(t, a.SafetyStock)

	b := byCode["B"]
	assert.Equal(t, domain.StatusVerify, b.Status)
	assert.Equal(t, "no demand history", b.Reason)
	require.NotNil(t, b.CurrentStock)
	assert.Equal(t, 0.0, *b.CurrentStock)
	assert.Nil(t, b.ReorderPoint)
}

func TestRunSkipsExcludedProducts(t *testing.T) {
	in := Input{
		Products: []domain.Product{{Code: "PX", Name: "Material administrativo"}},
		Dimensions: map[string]domain.ConsumptionDimension{
			"PX": {Code: "PX", ConsumptionType: domain.ConsumptionExcluded},
		},
	}
	rows := Run(in, newCalc(t))
	assert.Empty(t, rows)
}

func TestRunOrdersByUrgencyThenCoverage(t *testing.T) {
	dims := map[string]domain.ConsumptionDimension{}
	products := []domain.Product{}
	stocks := map[string]domain.ConsolidatedStock{}
	stats := map[demand.SeriesKey]demand.Stats{}

	add := func(code string, stock, mean float64) {
		products = append(products, domain.Product{Code: code, Name: code})
		dims[code] = domain.ConsumptionDimension{
			Code:             code,
			ConsumptionType:  domain.ConsumptionSingleDose,
			PresentationUnit: "CP",
		}
		stocks[code] = domain.ConsolidatedStock{Code: code, PresentationQty: stock, PresentationUnit: "CP"}
		stats[demand.SeriesKey{Code: code, Unit: "CP"}] = demand.Stats{Mean: mean}
	}

	// With sigma=0 the chain is deterministic: SS=0, ROP=6*mean.
	add("OK1", 100, 2)   // coverage 50, OK
	add("CRIT", 0, 5)    // stock <= SS, CRITICAL
	add("REPL", 20, 4)   // SS < stock <= ROP=24, coverage 5, REPLENISH
	add("OK2", 60, 3)    // coverage 20, OK
	products = append(products, domain.Product{Code: "VER", Name: "VER"}) // no dimension

	rows := Run(Input{Products: products, Dimensions: dims, Stocks: stocks, Stats: stats}, newCalc(t))
	require.Len(t, rows, 5)

	order := make([]string, len(rows))
	for i, r := range rows {
		order[i] = r.Code
	}
	assert.Equal(t, []string{"CRIT", "REPL", "OK2", "OK1", "VER"}, order)
}
