// Package demand reconstructs normalized daily and monthly demand series
// from raw exit records. The rebuild is total-replacement: its output is the
// entire new state of the daily and monthly aggregates, so stale entries can
// never linger.
package demand

import (
	"github.com/clinvita/clinstock/internal/domain"
	"github.com/clinvita/clinstock/internal/replenish"
)

// DailyKey identifies one daily demand bucket.
type DailyKey struct {
	Date string // YYYY-MM-DD
	Code string
	Unit string
}

// MonthlyKey identifies one monthly demand bucket.
type MonthlyKey struct {
	YearMonth string // YYYY-MM
	Code      string
	Unit      string
}

// QuantityParser extracts (amount, unit) from a raw quantity-with-unit
// string. The boolean reports whether the text was parseable; the
// aggregation logic stays independent of the messy parsing rules.
type QuantityParser func(raw string) (float64, string, bool)

// DateParser normalizes a raw date string to YYYY-MM-DD.
type DateParser func(raw string) (string, bool)

// Rebuild scans exit records and aggregates them into daily and monthly
// buckets keyed by (date, product code, target unit). Discarded exits,
// records without a consumption dimension, unparsable quantities or dates,
// and unresolved unit conversions contribute no demand signal and are
// skipped. Imported spreadsheets vary widely in quality, so the skip is
// deliberate best-effort policy, not a failure.
func Rebuild(
	exits []domain.ExitRecord,
	dims map[string]domain.ConsumptionDimension,
	parseQuantity QuantityParser,
	parseDate DateParser,
) (map[DailyKey]float64, map[MonthlyKey]float64) {
	daily := make(map[DailyKey]float64)

	for _, exit := range exits {
		if exit.Discarded || exit.Code == "" {
			continue
		}
		dim, ok := dims[exit.Code]
		if !ok || dim.ConsumptionType == domain.ConsumptionExcluded {
			continue
		}
		target := replenish.NormalizeUnit(dim.TargetUnit())
		if target == "" {
			continue
		}

		amount, unit, ok := parseQuantity(exit.RawQuantity)
		if !ok {
			continue
		}
		converted, ok := replenish.Convert(amount, unit, target, dim)
		if !ok {
			continue
		}

		date, ok := parseDate(exit.ExitDate)
		if !ok {
			continue
		}
		daily[DailyKey{Date: date, Code: exit.Code, Unit: target}] += converted
	}

	monthly := make(map[MonthlyKey]float64, len(daily))
	for k, qty := range daily {
		monthly[MonthlyKey{YearMonth: k.Date[:7], Code: k.Code, Unit: k.Unit}] += qty
	}

	return daily, monthly
}

// DailyRows flattens a daily bucket map into persistable rows.
func DailyRows(daily map[DailyKey]float64) []domain.DailyDemand {
	rows := make([]domain.DailyDemand, 0, len(daily))
	for k, qty := range daily {
		rows = append(rows, domain.DailyDemand{Date: k.Date, Code: k.Code, Unit: k.Unit, Quantity: qty})
	}
	return rows
}

// MonthlyRows flattens a monthly bucket map into persistable rows.
func MonthlyRows(monthly map[MonthlyKey]float64) []domain.MonthlyDemand {
	rows := make([]domain.MonthlyDemand, 0, len(monthly))
	for k, qty := range monthly {
		rows = append(rows, domain.MonthlyDemand{YearMonth: k.YearMonth, Code: k.Code, Unit: k.Unit, Quantity: qty})
	}
	return rows
}
