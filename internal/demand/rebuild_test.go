package demand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinvita/clinstock/internal/domain"
	"github.com/clinvita/clinstock/internal/ingest"
)

func f(v float64) *float64 { return &v }

func parseQty(raw string) (float64, string, bool) {
	q, ok := ingest.ParseQuantity(raw)
	return q.Amount, q.Unit, ok
}

func testDims() map[string]domain.ConsumptionDimension {
	return map[string]domain.ConsumptionDimension{
		"P1": {
			Code:             "P1",
			ConsumptionType:  domain.ConsumptionFractionalDose,
			PresentationUnit: "FR",
			ClinicalUnit:     "ML",
			ConversionFactor: f(10),
		},
		"P2": {
			Code:             "P2",
			ConsumptionType:  domain.ConsumptionSingleDose,
			PresentationUnit: "CP",
		},
		"PX": {
			Code:            "PX",
			ConsumptionType: domain.ConsumptionExcluded,
		},
	}
}

func TestRebuildAggregatesByDayAndTargetUnit(t *testing.T) {
	exits := []domain.ExitRecord{
		{ExitDate: "2024-03-01", Code: "P1", RawQuantity: "4 ML - mililitro"},
		{ExitDate: "2024-03-01", Code: "P1", RawQuantity: "1 FR - frasco"}, // 10 ML
		{ExitDate: "2024-03-02", Code: "P1", RawQuantity: "5 ML"},
		{ExitDate: "2024-03-02", Code: "P2", RawQuantity: "2 CP - comprimido"},
	}

	daily, monthly := Rebuild(exits, testDims(), parseQty, ingest.ParseDate)

	assert.Equal(t, 14.0, daily[DailyKey{"2024-03-01", "P1", "ML"}])
	assert.Equal(t, 5.0, daily[DailyKey{"2024-03-02", "P1", "ML"}])
	assert.Equal(t, 2.0, daily[DailyKey{"2024-03-02", "P2", "CP"}])
	assert.Len(t, daily, 3)

	assert.Equal(t, 19.0, monthly[MonthlyKey{"2024-03", "P1", "ML"}])
	assert.Equal(t, 2.0, monthly[MonthlyKey{"2024-03", "P2", "CP"}])
	assert.Len(t, monthly, 2)
}

func TestRebuildExcludesDiscardedExits(t *testing.T) {
	exits := []domain.ExitRecord{
		{ExitDate: "2024-03-01", Code: "P1", RawQuantity: "4 ML", Discarded: true},
		{ExitDate: "2024-03-01", Code: "P1", RawQuantity: "4 ML"},
	}
	daily, monthly := Rebuild(exits, testDims(), parseQty, ingest.ParseDate)

	// Only the non-discarded exit of equal quantity contributes.
	assert.Equal(t, 4.0, daily[DailyKey{"2024-03-01", "P1", "ML"}])
	assert.Equal(t, 4.0, monthly[MonthlyKey{"2024-03", "P1", "ML"}])
}

func TestRebuildSkipsDataQualityGaps(t *testing.T) {
	exits := []domain.ExitRecord{
		{ExitDate: "2024-03-01", Code: "NOPE", RawQuantity: "4 ML"},     // no dimension
		{ExitDate: "2024-03-01", Code: "PX", RawQuantity: "4 UN"},       // excluded product
		{ExitDate: "2024-03-01", Code: "P1", RawQuantity: "quatro ML"},  // unparsable quantity
		{ExitDate: "2024-03-01", Code: "P1", RawQuantity: "4 MG"},       // unresolvable conversion
		{ExitDate: "não sei quando", Code: "P1", RawQuantity: "4 ML"},   // malformed date
		{ExitDate: "2024-03-01", Code: "", RawQuantity: "4 ML"},         // missing code
	}
	daily, monthly := Rebuild(exits, testDims(), parseQty, ingest.ParseDate)
	assert.Empty(t, daily)
	assert.Empty(t, monthly)
}

func TestRebuildIsIdempotent(t *testing.T) {
	exits := []domain.ExitRecord{
		{ExitDate: "2024-03-01", Code: "P1", RawQuantity: "4 ML"},
		{ExitDate: "2024-03-02", Code: "P1", RawQuantity: "5 ML"},
		{ExitDate: "2024-03-02", Code: "P2", RawQuantity: "1 CP"},
	}
	d1, m1 := Rebuild(exits, testDims(), parseQty, ingest.ParseDate)
	d2, m2 := Rebuild(exits, testDims(), parseQty, ingest.ParseDate)
	assert.Equal(t, d1, d2)
	assert.Equal(t, m1, m2)
}

func TestDailyAndMonthlyRows(t *testing.T) {
	daily := map[DailyKey]float64{{"2024-03-01", "P1", "ML"}: 4}
	rows := DailyRows(daily)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.DailyDemand{Date: "2024-03-01", Code: "P1", Unit: "ML", Quantity: 4}, rows[0])

	monthly := map[MonthlyKey]float64{{"2024-03", "P1", "ML"}: 4}
	mrows := MonthlyRows(monthly)
	require.Len(t, mrows, 1)
	assert.Equal(t, domain.MonthlyDemand{YearMonth: "2024-03", Code: "P1", Unit: "ML", Quantity: 4}, mrows[0])
}
