package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/clinvita/clinstock/internal/cache"
	"github.com/clinvita/clinstock/internal/config"
	"github.com/clinvita/clinstock/internal/demand"
	"github.com/clinvita/clinstock/internal/domain"
	"github.com/clinvita/clinstock/internal/ingest"
	"github.com/clinvita/clinstock/internal/replenish"
	"github.com/clinvita/clinstock/internal/repository"
	"github.com/clinvita/clinstock/internal/stock"
	"github.com/clinvita/clinstock/internal/verify"
)

// VerifyService wires the demand rebuild and the replenishment check to
// storage. All arithmetic lives in the pure packages; this layer only loads,
// delegates and caches.
type VerifyService struct {
	catalog   repository.CatalogRepository
	movements repository.MovementRepository
	lots      repository.LotRepository
	demand    repository.DemandRepository
	params    repository.ParamsRepository
	cache     cache.ReportCache
	fallback  config.ReplenishConfig
}

func NewVerifyService(
	catalog repository.CatalogRepository,
	movements repository.MovementRepository,
	lots repository.LotRepository,
	demandRepo repository.DemandRepository,
	params repository.ParamsRepository,
	reportCache cache.ReportCache,
	fallback config.ReplenishConfig,
) *VerifyService {
	if reportCache == nil {
		reportCache = cache.NewNoopReportCache()
	}
	return &VerifyService{
		catalog:   catalog,
		movements: movements,
		lots:      lots,
		demand:    demandRepo,
		params:    params,
		cache:     reportCache,
		fallback:  fallback,
	}
}

// ResolveParams merges stored parameters over the configured fallbacks.
// A key that is absent or does not parse keeps its fallback value.
func (s *VerifyService) ResolveParams(ctx context.Context) (domain.Params, error) {
	resolved := domain.Params{
		ServiceLevel:   s.fallback.ServiceLevel,
		LeadTimeMean:   s.fallback.LeadTimeMean,
		LeadTimeStdDev: s.fallback.LeadTimeStdDev,
	}

	stored, err := s.params.All(ctx)
	if err != nil {
		return domain.Params{}, fmt.Errorf("failed to load params: %w", err)
	}

	assign := func(key string, dst *float64) {
		raw, ok := stored[key]
		if !ok {
			return
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			log.Warn().Str("key", key).Str("value", raw).Msg("ignoring unparsable stored param")
			return
		}
		*dst = v
	}
	assign(repository.ParamServiceLevel, &resolved.ServiceLevel)
	assign(repository.ParamLeadTimeMean, &resolved.LeadTimeMean)
	assign(repository.ParamLeadTimeStdDev, &resolved.LeadTimeStdDev)

	return resolved, nil
}

// SetParam stores one replenishment parameter and drops the cached report,
// since any parameter change shifts every threshold.
func (s *VerifyService) SetParam(ctx context.Context, key string, value float64) error {
	switch key {
	case repository.ParamServiceLevel, repository.ParamLeadTimeMean, repository.ParamLeadTimeStdDev:
	default:
		return fmt.Errorf("unknown parameter %q", key)
	}
	if err := s.params.Set(ctx, key, strconv.FormatFloat(value, 'g', -1, 64)); err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("verification: cache invalidate failed")
	}
	return nil
}

// RebuildDemand regenerates the daily and monthly aggregates from the exit
// history and swaps them into storage.
func (s *VerifyService) RebuildDemand(ctx context.Context) error {
	exits, err := s.movements.GetExits(ctx)
	if err != nil {
		return fmt.Errorf("failed to load exits: %w", err)
	}
	dims, err := s.catalog.GetDimensions(ctx)
	if err != nil {
		return fmt.Errorf("failed to load consumption dimensions: %w", err)
	}

	daily, monthly := demand.Rebuild(exits, dims, quantityParser, ingest.ParseDate)
	if err := s.demand.ReplaceAll(ctx, demand.DailyRows(daily), demand.MonthlyRows(monthly)); err != nil {
		return fmt.Errorf("failed to store demand aggregates: %w", err)
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("verification: cache invalidate failed")
	}

	log.Info().
		Int("exits", len(exits)).
		Int("daily_buckets", len(daily)).
		Int("monthly_buckets", len(monthly)).
		Msg("demand rebuilt")
	return nil
}

// Run produces the verification report, preferring the cached copy.
func (s *VerifyService) Run(ctx context.Context) ([]domain.ReportRow, error) {
	if rows, ok, err := s.cache.Get(ctx); err == nil && ok {
		return rows, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("verification: cache get failed")
	}

	params, err := s.ResolveParams(ctx)
	if err != nil {
		return nil, err
	}
	calc, err := replenish.NewCalculator(params)
	if err != nil {
		return nil, fmt.Errorf("invalid replenishment parameters: %w", err)
	}

	products, err := s.catalog.GetProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	dims, err := s.catalog.GetDimensions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load consumption dimensions: %w", err)
	}
	lots, err := s.lots.GetSnapshots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load lot snapshots: %w", err)
	}
	daily, err := s.demand.GetDaily(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily demand: %w", err)
	}

	rows := verify.Run(verify.Input{
		Products:   products,
		Dimensions: dims,
		Stocks:     stock.Consolidate(lots),
		Stats:      demand.Estimate(daily),
	}, calc)

	if err := s.cache.Set(ctx, rows); err != nil {
		log.Warn().Err(err).Msg("verification: cache set failed")
	}

	return rows, nil
}

func quantityParser(raw string) (float64, string, bool) {
	q, ok := ingest.ParseQuantity(raw)
	return q.Amount, q.Unit, ok
}
