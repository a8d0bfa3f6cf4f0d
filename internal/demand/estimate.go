package demand

import (
	"math"

	"github.com/clinvita/clinstock/internal/domain"
)

// SeriesKey identifies one (product, unit) demand series.
type SeriesKey struct {
	Code string
	Unit string
}

// Stats are the per-series demand statistics feeding the replenishment
// calculator.
type Stats struct {
	Mean   float64
	StdDev float64
}

// Estimate computes the arithmetic mean and population standard deviation of
// the daily totals per (code, unit). Only days with recorded consumption are
// present in the series: days without an exit row are absent, not zero. For
// sparse, bursty products this inflates the mean relative to a true
// per-calendar-day average; downstream safety-stock sizing depends on that
// behavior, so it must not be "fixed" here.
func Estimate(daily []domain.DailyDemand) map[SeriesKey]Stats {
	series := make(map[SeriesKey][]float64)
	for _, row := range daily {
		key := SeriesKey{Code: row.Code, Unit: row.Unit}
		series[key] = append(series[key], row.Quantity)
	}

	out := make(map[SeriesKey]Stats, len(series))
	for key, values := range series {
		if len(values) == 0 {
			continue
		}
		var sum float64
		for _, v := range values {
			sum += v
		}
		mean := sum / float64(len(values))

		sigma := 0.0
		if len(values) > 1 {
			var ss float64
			for _, v := range values {
				d := v - mean
				ss += d * d
			}
			sigma = math.Sqrt(ss / float64(len(values)))
		}
		out[key] = Stats{Mean: mean, StdDev: sigma}
	}
	return out
}
