package replenish

import (
	"math"

	"github.com/clinvita/clinstock/internal/domain"
)

// Calculator derives safety stock, reorder point, order suggestions and an
// urgency status from demand statistics under fixed global parameters. The
// z-score is resolved once at construction so an out-of-range service level
// fails fast instead of poisoning every row.
type Calculator struct {
	params domain.Params
	z      float64
}

// NewCalculator validates the global parameters and precomputes the z-score.
func NewCalculator(params domain.Params) (*Calculator, error) {
	z, err := ZScore(params.ServiceLevel)
	if err != nil {
		return nil, err
	}
	return &Calculator{params: params, z: z}, nil
}

// Z exposes the precomputed z-score.
func (c *Calculator) Z() float64 { return c.z }

// Params exposes the parameters the calculator was built with.
func (c *Calculator) Params() domain.Params { return c.params }

// Input is everything the calculator needs for one product, already in the
// product's target unit scale.
type Input struct {
	Product      domain.Product
	Dimension    domain.ConsumptionDimension
	CurrentStock float64
	DemandMean   float64
	DemandStdDev float64
}

// Metrics is the full calculated chain for one product.
type Metrics struct {
	ZScore                float64
	LeadTimeDemand        float64
	LeadTimeSigma         float64
	SafetyStock           float64
	ReorderPoint          float64
	Shortfall             float64
	SuggestedPresentation *float64
	SuggestedClinical     *float64
	CoverageDays          *float64
	Status                domain.Status
}

// Calculate runs the replenishment chain for one product. It is pure and
// never touches storage.
func (c *Calculator) Calculate(in Input) Metrics {
	m := Metrics{ZScore: c.z}

	m.LeadTimeDemand = LeadTimeDemand(in.DemandMean, c.params.LeadTimeMean)
	m.LeadTimeSigma = LeadTimeSigma(in.DemandMean, in.DemandStdDev, c.params.LeadTimeMean, c.params.LeadTimeStdDev)
	m.SafetyStock = SafetyStock(c.z, m.LeadTimeSigma)
	m.ReorderPoint = ReorderPoint(m.LeadTimeDemand, m.SafetyStock)
	m.Shortfall = math.Max(0, m.ReorderPoint-in.CurrentStock)

	suggested := ApplyLotPolicy(m.Shortfall, in.Product.LotMinimum, in.Product.LotMultiple)

	targetUnit := in.Dimension.TargetUnit()
	if in.Dimension.ConsumptionType == domain.ConsumptionFractionalDose {
		m.SuggestedClinical = ptr(suggested)
		// Purchases typically happen in presentation units, so the clinical
		// suggestion is also reported on the presentation scale, re-rounded
		// under the same lot policy.
		if conv, ok := Convert(suggested, targetUnit, in.Dimension.PresentationUnit, in.Dimension); ok {
			m.SuggestedPresentation = ptr(ApplyLotPolicy(conv, in.Product.LotMinimum, in.Product.LotMultiple))
		}
	} else {
		m.SuggestedPresentation = ptr(suggested)
		if conv, ok := Convert(suggested, targetUnit, in.Dimension.ClinicalUnit, in.Dimension); ok {
			m.SuggestedClinical = ptr(ApplyLotPolicy(conv, in.Product.LotMinimum, in.Product.LotMultiple))
		}
	}

	if in.DemandMean > 0 {
		m.CoverageDays = ptr(in.CurrentStock / in.DemandMean)
	}

	m.Status = ClassifyStatus(ptr(in.CurrentStock), ptr(m.SafetyStock), ptr(m.ReorderPoint))
	return m
}

func ptr(v float64) *float64 { return &v }
