// internal/repository/repository.go
package repository

import (
	"context"

	"github.com/clinvita/clinstock/internal/domain"
)

// Parameter keys in the params table. Values are string-encoded floats.
const (
	ParamServiceLevel   = "nivel_servico"
	ParamLeadTimeMean   = "lead_time_media"
	ParamLeadTimeStdDev = "lead_time_desvio"
)

type CatalogRepository interface {
	UpsertProduct(ctx context.Context, p *domain.Product) error
	UpsertDimension(ctx context.Context, d *domain.ConsumptionDimension) error
	GetProducts(ctx context.Context) ([]domain.Product, error)
	GetDimensions(ctx context.Context) (map[string]domain.ConsumptionDimension, error)
}

type MovementRepository interface {
	InsertEntries(ctx context.Context, entries []domain.EntryRecord) error
	InsertExits(ctx context.Context, exits []domain.ExitRecord) error
	GetEntries(ctx context.Context) ([]domain.EntryRecord, error)
	GetExits(ctx context.Context) ([]domain.ExitRecord, error)
}

type LotRepository interface {
	ReplaceSnapshots(ctx context.Context, lots []domain.LotSnapshot) error
	GetSnapshots(ctx context.Context) ([]domain.LotSnapshot, error)
}

// DemandRepository persists the derived demand aggregates. ReplaceAll swaps
// the whole daily and monthly state in one transaction so readers never see
// a half-rebuilt series.
type DemandRepository interface {
	ReplaceAll(ctx context.Context, daily []domain.DailyDemand, monthly []domain.MonthlyDemand) error
	GetDaily(ctx context.Context) ([]domain.DailyDemand, error)
	GetMonthly(ctx context.Context) ([]domain.MonthlyDemand, error)
}

type ParamsRepository interface {
	All(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
}
