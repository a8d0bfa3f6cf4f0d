package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/clinvita/clinstock/internal/domain"
	"github.com/clinvita/clinstock/internal/ingest"
	"github.com/clinvita/clinstock/internal/repository"
)

// ExpiringLot is one lot inside the expiry window, annotated with the days
// left until it expires.
type ExpiringLot struct {
	domain.LotSnapshot
	ExpiresAt string `json:"expires_at"`
	DaysLeft  int    `json:"days_left"`
}

// ConsumptionTotal is the aggregated consumption of one product over a month
// range, on its target unit scale.
type ConsumptionTotal struct {
	Code     string  `json:"code"`
	Unit     string  `json:"unit"`
	Quantity float64 `json:"quantity"`
}

// ReportService derives the operational reports. Every report is a filter or
// sort over data the verification run and the repositories already produce.
type ReportService struct {
	verifier *VerifyService
	lots     repository.LotRepository
	demand   repository.DemandRepository
}

func NewReportService(verifier *VerifyService, lots repository.LotRepository, demandRepo repository.DemandRepository) *ReportService {
	return &ReportService{verifier: verifier, lots: lots, demand: demandRepo}
}

// RuptureAlert lists products whose stock covers at most horizonDays of
// demand.
func (s *ReportService) RuptureAlert(ctx context.Context, horizonDays float64) ([]domain.ReportRow, error) {
	rows, err := s.verifier.Run(ctx)
	if err != nil {
		return nil, err
	}
	return FilterRupture(rows, horizonDays), nil
}

// ReplenishmentList lists products at or below their reorder point, largest
// shortfall first.
func (s *ReportService) ReplenishmentList(ctx context.Context) ([]domain.ReportRow, error) {
	rows, err := s.verifier.Run(ctx)
	if err != nil {
		return nil, err
	}
	return FilterReplenishment(rows), nil
}

// ExpiringLots lists lots expiring within the window, soonest first.
func (s *ReportService) ExpiringLots(ctx context.Context, withinDays int) ([]ExpiringLot, error) {
	lots, err := s.lots.GetSnapshots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load lot snapshots: %w", err)
	}
	return FilterExpiring(lots, withinDays, time.Now()), nil
}

// TopConsumed ranks products by total consumption over an inclusive
// YYYY-MM month range.
func (s *ReportService) TopConsumed(ctx context.Context, fromMonth, toMonth string, limit int) ([]ConsumptionTotal, error) {
	monthly, err := s.demand.GetMonthly(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load monthly demand: %w", err)
	}
	return RankConsumption(monthly, fromMonth, toMonth, limit), nil
}

// FilterRupture keeps rows with coverage at or under the horizon. Rows
// without a computable coverage never appear here, whatever their status;
// they surface through the verification report instead.
func FilterRupture(rows []domain.ReportRow, horizonDays float64) []domain.ReportRow {
	out := make([]domain.ReportRow, 0)
	for _, r := range rows {
		if r.CoverageDays != nil && *r.CoverageDays <= horizonDays {
			out = append(out, r)
		}
	}
	return out
}

// FilterReplenishment keeps CRITICAL and REPLENISH rows, CRITICAL first,
// then shortfall descending within each status.
func FilterReplenishment(rows []domain.ReportRow) []domain.ReportRow {
	out := make([]domain.ReportRow, 0)
	for _, r := range rows {
		if r.Status == domain.StatusCritical || r.Status == domain.StatusReplenish {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Status != out[j].Status {
			return out[i].Status.Priority() < out[j].Status.Priority()
		}
		return shortfallOrZero(out[i]) > shortfallOrZero(out[j])
	})
	return out
}

// FilterExpiring keeps lots whose expiry date parses and falls within
// [today, today+withinDays]. Already-expired lots are included at negative
// days left, they need action even more urgently.
func FilterExpiring(lots []domain.LotSnapshot, withinDays int, now time.Time) []ExpiringLot {
	today := now.Truncate(24 * time.Hour)
	out := make([]ExpiringLot, 0)
	for _, l := range lots {
		normalized, ok := ingest.ParseDate(l.ExpiryDate)
		if !ok {
			continue
		}
		expiry, err := time.Parse("2006-01-02", normalized)
		if err != nil {
			continue
		}
		daysLeft := int(expiry.Sub(today).Hours() / 24)
		if daysLeft > withinDays {
			continue
		}
		out = append(out, ExpiringLot{LotSnapshot: l, ExpiresAt: normalized, DaysLeft: daysLeft})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DaysLeft != out[j].DaysLeft {
			return out[i].DaysLeft < out[j].DaysLeft
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// RankConsumption sums monthly demand per (code, unit) over the inclusive
// month range and returns the top consumers. Empty bounds leave that side of
// the range open; limit <= 0 means no cap.
func RankConsumption(monthly []domain.MonthlyDemand, fromMonth, toMonth string, limit int) []ConsumptionTotal {
	type key struct{ code, unit string }
	totals := make(map[key]float64)
	for _, m := range monthly {
		if fromMonth != "" && m.YearMonth < fromMonth {
			continue
		}
		if toMonth != "" && m.YearMonth > toMonth {
			continue
		}
		totals[key{m.Code, m.Unit}] += m.Quantity
	}

	out := make([]ConsumptionTotal, 0, len(totals))
	for k, qty := range totals {
		out = append(out, ConsumptionTotal{Code: k.code, Unit: k.unit, Quantity: qty})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].Code < out[j].Code
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func shortfallOrZero(r domain.ReportRow) float64 {
	if r.Shortfall == nil {
		return 0
	}
	return *r.Shortfall
}
