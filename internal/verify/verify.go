// Package verify runs the replenishment check across the whole catalog and
// assembles the verification report. It is pure over pre-loaded inputs; the
// service layer owns loading and caching.
package verify

import (
	"math"
	"sort"

	"github.com/clinvita/clinstock/internal/demand"
	"github.com/clinvita/clinstock/internal/domain"
	"github.com/clinvita/clinstock/internal/replenish"
)

// Input is the full dataset one verification run operates on. Stocks and
// demand stats are keyed by product code; a product absent from Stocks holds
// zero stock, while a product absent from Stats has no demand history at all.
type Input struct {
	Products   []domain.Product
	Dimensions map[string]domain.ConsumptionDimension
	Stocks     map[string]domain.ConsolidatedStock
	Stats      map[demand.SeriesKey]demand.Stats
}

// Run evaluates every non-excluded product and returns the report sorted
// most-urgent first: by status, then ascending coverage (products whose
// coverage cannot be computed sort last within their status), then code.
func Run(in Input, calc *replenish.Calculator) []domain.ReportRow {
	params := calc.Params()
	rows := make([]domain.ReportRow, 0, len(in.Products))

	for _, p := range in.Products {
		dim, hasDim := in.Dimensions[p.Code]
		if hasDim && dim.ConsumptionType == domain.ConsumptionExcluded {
			continue
		}

		row := domain.ReportRow{Code: p.Code, Name: p.Name}

		if !hasDim || dim.TargetUnit() == "" {
			row.Status = domain.StatusVerify
			row.Reason = "no consumption dimension"
			rows = append(rows, row)
			continue
		}

		row.ConsumptionType = string(dim.ConsumptionType)
		row.TargetUnit = dim.TargetUnit()
		row.PresentationUnit = dim.PresentationUnit
		row.ClinicalUnit = dim.ClinicalUnit

		stock := stockInTargetUnit(in.Stocks[p.Code], dim)
		row.CurrentStock = &stock

		stats, hasStats := in.Stats[demand.SeriesKey{Code: p.Code, Unit: replenish.NormalizeUnit(dim.TargetUnit())}]
		if !hasStats {
			row.Status = domain.StatusVerify
			row.Reason = "no demand history"
			rows = append(rows, row)
			continue
		}
		row.DemandMean = &stats.Mean
		row.DemandStdDev = &stats.StdDev
		row.LeadTimeMean = &params.LeadTimeMean
		row.LeadTimeStdDev = &params.LeadTimeStdDev

		m := calc.Calculate(replenish.Input{
			Product:      p,
			Dimension:    dim,
			CurrentStock: stock,
			DemandMean:   stats.Mean,
			DemandStdDev: stats.StdDev,
		})
		row.ZScore = &m.ZScore
		row.LeadTimeDemand = &m.LeadTimeDemand
		row.LeadTimeSigma = &m.LeadTimeSigma
		row.SafetyStock = &m.SafetyStock
		row.ReorderPoint = &m.ReorderPoint
		row.Shortfall = &m.Shortfall
		row.SuggestedPresent = m.SuggestedPresentation
		row.SuggestedClinic = m.SuggestedClinical
		row.CoverageDays = m.CoverageDays
		row.Status = m.Status

		rows = append(rows, row)
	}

	sortRows(rows)
	return rows
}

// stockInTargetUnit picks the consolidated total on the scale demand is
// tracked in. A product with no lot snapshots counts as zero stock, not as a
// missing input.
func stockInTargetUnit(s domain.ConsolidatedStock, dim domain.ConsumptionDimension) float64 {
	if dim.ConsumptionType == domain.ConsumptionFractionalDose {
		return s.ClinicalQty
	}
	return s.PresentationQty
}

func sortRows(rows []domain.ReportRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		pi, pj := rows[i].Status.Priority(), rows[j].Status.Priority()
		if pi != pj {
			return pi < pj
		}
		ci, cj := coverageOrInf(rows[i]), coverageOrInf(rows[j])
		if ci != cj {
			return ci < cj
		}
		return rows[i].Code < rows[j].Code
	})
}

func coverageOrInf(r domain.ReportRow) float64 {
	if r.CoverageDays == nil {
		return math.Inf(1)
	}
	return *r.CoverageDays
}
