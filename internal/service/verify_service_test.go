package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinvita/clinstock/internal/cache"
	"github.com/clinvita/clinstock/internal/config"
	"github.com/clinvita/clinstock/internal/domain"
)

func f(v float64) *float64 { return &v }

type fakeCatalog struct {
	products []domain.Product
	dims     map[string]domain.ConsumptionDimension
}

func (r *fakeCatalog) UpsertProduct(_ context.Context, p *domain.Product) error {
	r.products = append(r.products, *p)
	return nil
}

func (r *fakeCatalog) UpsertDimension(_ context.Context, d *domain.ConsumptionDimension) error {
	if r.dims == nil {
		r.dims = map[string]domain.ConsumptionDimension{}
	}
	r.dims[d.Code] = *d
	return nil
}

func (r *fakeCatalog) GetProducts(context.Context) ([]domain.Product, error) {
	return r.products, nil
}

func (r *fakeCatalog) GetDimensions(context.Context) (map[string]domain.ConsumptionDimension, error) {
	return r.dims, nil
}

type fakeMovements struct {
	entries []domain.EntryRecord
	exits   []domain.ExitRecord
}

func (r *fakeMovements) InsertEntries(_ context.Context, entries []domain.EntryRecord) error {
	r.entries = append(r.entries, entries...)
	return nil
}

func (r *fakeMovements) InsertExits(_ context.Context, exits []domain.ExitRecord) error {
	r.exits = append(r.exits, exits...)
	return nil
}

func (r *fakeMovements) GetEntries(context.Context) ([]domain.EntryRecord, error) {
	return r.entries, nil
}

func (r *fakeMovements) GetExits(context.Context) ([]domain.ExitRecord, error) {
	return r.exits, nil
}

type fakeLots struct {
	lots []domain.LotSnapshot
}

func (r *fakeLots) ReplaceSnapshots(_ context.Context, lots []domain.LotSnapshot) error {
	r.lots = lots
	return nil
}

func (r *fakeLots) GetSnapshots(context.Context) ([]domain.LotSnapshot, error) {
	return r.lots, nil
}

type fakeDemand struct {
	daily   []domain.DailyDemand
	monthly []domain.MonthlyDemand
}

func (r *fakeDemand) ReplaceAll(_ context.Context, daily []domain.DailyDemand, monthly []domain.MonthlyDemand) error {
	r.daily = daily
	r.monthly = monthly
	return nil
}

func (r *fakeDemand) GetDaily(context.Context) ([]domain.DailyDemand, error) {
	return r.daily, nil
}

func (r *fakeDemand) GetMonthly(context.Context) ([]domain.MonthlyDemand, error) {
	return r.monthly, nil
}

type fakeParams struct {
	values map[string]string
}

func (r *fakeParams) All(context.Context) (map[string]string, error) {
	return r.values, nil
}

func (r *fakeParams) Set(_ context.Context, key, value string) error {
	if r.values == nil {
		r.values = map[string]string{}
	}
	r.values[key] = value
	return nil
}

func defaultFallback() config.ReplenishConfig {
	return config.ReplenishConfig{ServiceLevel: 0.95, LeadTimeMean: 6, LeadTimeStdDev: 1}
}

func TestResolveParamsFallsBackToConfig(t *testing.T) {
	svc := NewVerifyService(&fakeCatalog{}, &fakeMovements{}, &fakeLots{}, &fakeDemand{}, &fakeParams{}, cache.NewNoopReportCache(), defaultFallback())

	params, err := svc.ResolveParams(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.95, params.ServiceLevel)
	assert.Equal(t, 6.0, params.LeadTimeMean)
	assert.Equal(t, 1.0, params.LeadTimeStdDev)
}

func TestResolveParamsPrefersStoredValues(t *testing.T) {
	stored := &fakeParams{values: map[string]string{
		"nivel_servico":    "0.99",
		"lead_time_media":  "10",
		"lead_time_desvio": "garbage",
	}}
	svc := NewVerifyService(&fakeCatalog{}, &fakeMovements{}, &fakeLots{}, &fakeDemand{}, stored, cache.NewNoopReportCache(), defaultFallback())

	params, err := svc.ResolveParams(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.99, params.ServiceLevel)
	assert.Equal(t, 10.0, params.LeadTimeMean)
	// Unparsable stored value keeps the fallback.
	assert.Equal(t, 1.0, params.LeadTimeStdDev)
}

func TestSetParamRejectsUnknownKeys(t *testing.T) {
	svc := NewVerifyService(&fakeCatalog{}, &fakeMovements{}, &fakeLots{}, &fakeDemand{}, &fakeParams{}, cache.NewNoopReportCache(), defaultFallback())
	assert.Error(t, svc.SetParam(context.Background(), "nivel_errado", 0.9))
	assert.NoError(t, svc.SetParam(context.Background(), "nivel_servico", 0.9))
}

func TestRebuildDemandStoresAggregates(t *testing.T) {
	movements := &fakeMovements{exits: []domain.ExitRecord{
		{ExitDate: "2024-03-01", Code: "P1", RawQuantity: "4 ML"},
		{ExitDate: "2024-03-01", Code: "P1", RawQuantity: "6 ML"},
		{ExitDate: "2024-03-01", Code: "P1", RawQuantity: "99 ML", Discarded: true},
	}}
	catalog := &fakeCatalog{dims: map[string]domain.ConsumptionDimension{
		"P1": {Code: "P1", ConsumptionType: domain.ConsumptionFractionalDose, PresentationUnit: "FR", ClinicalUnit: "ML", ConversionFactor: f(10)},
	}}
	demandRepo := &fakeDemand{}
	svc := NewVerifyService(catalog, movements, &fakeLots{}, demandRepo, &fakeParams{}, cache.NewNoopReportCache(), defaultFallback())

	require.NoError(t, svc.RebuildDemand(context.Background()))
	require.Len(t, demandRepo.daily, 1)
	assert.Equal(t, 10.0, demandRepo.daily[0].Quantity)
	require.Len(t, demandRepo.monthly, 1)
	assert.Equal(t, "2024-03", demandRepo.monthly[0].YearMonth)
}

func TestRunProducesReport(t *testing.T) {
	catalog := &fakeCatalog{
		products: []domain.Product{{Code: "P1", Name: "Soro"}},
		dims: map[string]domain.ConsumptionDimension{
			"P1": {Code: "P1", ConsumptionType: domain.ConsumptionFractionalDose, PresentationUnit: "FR", ClinicalUnit: "ML", ConversionFactor: f(10)},
		},
	}
	lots := &fakeLots{lots: []domain.LotSnapshot{
		{Code: "P1", Lot: "L1", ClinicalQty: f(30), ClinicalUnit: "ML", PresentationQty: f(3), PresentationUnit: "FR"},
	}}
	demandRepo := &fakeDemand{daily: []domain.DailyDemand{
		{Date: "2024-03-01", Code: "P1", Unit: "ML", Quantity: 4},
		{Date: "2024-03-02", Code: "P1", Unit: "ML", Quantity: 5},
		{Date: "2024-03-03", Code: "P1", Unit: "ML", Quantity: 4},
		{Date: "2024-03-04", Code: "P1", Unit: "ML", Quantity: 3},
	}}
	svc := NewVerifyService(catalog, &fakeMovements{}, lots, demandRepo, &fakeParams{}, cache.NewNoopReportCache(), defaultFallback())

	rows, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "P1", rows[0].Code)
	assert.Equal(t, domain.StatusReplenish, rows[0].Status)
	require.NotNil(t, rows[0].CoverageDays)
	assert.InDelta(t, 7.5, *rows[0].CoverageDays, 1e-9)
}

func TestRunRejectsBadServiceLevel(t *testing.T) {
	stored := &fakeParams{values: map[string]string{"nivel_servico": "1.5"}}
	svc := NewVerifyService(&fakeCatalog{}, &fakeMovements{}, &fakeLots{}, &fakeDemand{}, stored, cache.NewNoopReportCache(), defaultFallback())

	_, err := svc.Run(context.Background())
	assert.Error(t, err)
}
